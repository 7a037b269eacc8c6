package ports

import (
	"context"
	"io"
	"mime/multipart"

	"videonet/internal/core/domain"
)

// Sender delivers an outbound signaling event to a single connection. The
// delivery is fire-and-forget: a false return means the target is gone or its
// buffer is full, and the event is dropped without retry.
type Sender interface {
	SendTo(id domain.ConnectionID, event interface{}) bool
}

type ConnectionRegistry interface {
	Register(id domain.ConnectionID)
	SetUserInfo(id domain.ConnectionID, info domain.UserInfo)
	Exists(id domain.ConnectionID) bool
	UserInfo(id domain.ConnectionID) (domain.UserInfo, bool)
	Count() int
}

type PresenceService interface {
	Join(id domain.ConnectionID, roomID domain.RoomID, info domain.UserInfo)
	Leave(id domain.ConnectionID, roomID domain.RoomID)
	Disconnect(id domain.ConnectionID)
	MembersExcept(roomID domain.RoomID, except domain.ConnectionID) []domain.ConnectionID
	ListRooms() []domain.RoomInfo
	RoomCount() int
}

type QualityService interface {
	Set(value int) error
	Get() int
}

type AssetService interface {
	Store(ctx context.Context, header *multipart.FileHeader, roomID domain.RoomID) (*domain.FileMetadata, error)
	Open(fileID string) (io.ReadCloser, *domain.FileMetadata, error)
	Metadata(fileID string) (*domain.FileMetadata, error)
	Verify(fileID, clientHash string) (bool, *domain.FileMetadata, error)
	Delete(fileID string) error
}
