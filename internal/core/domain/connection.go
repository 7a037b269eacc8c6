package domain

type ConnectionID string

type RoomID string

// UserInfo is an opaque blob supplied by the client on join. The core never
// interprets its contents, it is only echoed back in presence events.
type UserInfo map[string]interface{}

// Connection is a single client's live transport session.
type Connection struct {
	ID    ConnectionID
	Rooms map[RoomID]struct{}
	Info  UserInfo
}

func NewConnection(id ConnectionID) *Connection {
	return &Connection{
		ID:    id,
		Rooms: make(map[RoomID]struct{}),
	}
}

// RoomMember is one entry of the membership snapshot sent to a joiner.
type RoomMember struct {
	UserID   ConnectionID `json:"userId"`
	UserInfo UserInfo     `json:"userInfo"`
}
