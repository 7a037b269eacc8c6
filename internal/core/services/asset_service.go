package services

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"sync"

	"go.uber.org/zap"

	"videonet/internal/core/domain"
	"videonet/pkg/validation"
)

// AssetStore keeps uploaded files on local disk with in-memory metadata.
// File ids are content-derived (first 16 hex chars of the SHA-256 hash), so
// clients can verify integrity after a transfer.
type AssetStore struct {
	dir    string
	logger *zap.SugaredLogger

	mu    sync.RWMutex
	files map[string]*domain.FileMetadata
}

func NewAssetStore(dir string, logger *zap.SugaredLogger) (*AssetStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create upload directory: %w", err)
	}

	return &AssetStore{
		dir:    dir,
		logger: logger,
		files:  make(map[string]*domain.FileMetadata),
	}, nil
}

// Store writes the uploaded file to disk, hashing it as it streams.
func (s *AssetStore) Store(ctx context.Context, header *multipart.FileHeader, roomID domain.RoomID) (*domain.FileMetadata, error) {
	name := filepath.Base(header.Filename)
	if err := validation.ValidateFilename(name); err != nil {
		return nil, err
	}

	src, err := header.Open()
	if err != nil {
		return nil, fmt.Errorf("failed to open upload: %w", err)
	}
	defer src.Close()
	path := filepath.Join(s.dir, name)

	dst, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("failed to create file: %w", err)
	}
	defer dst.Close()

	hasher := sha256.New()
	size, err := io.Copy(io.MultiWriter(dst, hasher), src)
	if err != nil {
		os.Remove(path)
		return nil, fmt.Errorf("failed to write file: %w", err)
	}

	hash := hex.EncodeToString(hasher.Sum(nil))
	meta := &domain.FileMetadata{
		FileID:   hash[:16],
		Filename: name,
		Size:     size,
		Hash:     hash,
		Path:     path,
		RoomID:   roomID,
	}

	s.mu.Lock()
	s.files[meta.FileID] = meta
	s.mu.Unlock()

	s.logger.Infow("file stored",
		"file_id", meta.FileID,
		"filename", meta.Filename,
		"size", meta.Size,
		"room_id", roomID,
	)

	return meta, nil
}

func (s *AssetStore) Open(fileID string) (io.ReadCloser, *domain.FileMetadata, error) {
	meta, err := s.Metadata(fileID)
	if err != nil {
		return nil, nil, err
	}

	f, err := os.Open(meta.Path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil, domain.ErrFileNotFound
		}
		return nil, nil, fmt.Errorf("failed to open file: %w", err)
	}
	return f, meta, nil
}

func (s *AssetStore) Metadata(fileID string) (*domain.FileMetadata, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	meta, ok := s.files[fileID]
	if !ok {
		return nil, domain.ErrFileNotFound
	}
	return meta, nil
}

// Verify compares a client-computed hash against the stored one.
func (s *AssetStore) Verify(fileID, clientHash string) (bool, *domain.FileMetadata, error) {
	meta, err := s.Metadata(fileID)
	if err != nil {
		return false, nil, err
	}
	return clientHash == meta.Hash, meta, nil
}

func (s *AssetStore) Delete(fileID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	meta, ok := s.files[fileID]
	if !ok {
		return domain.ErrFileNotFound
	}

	if err := os.Remove(meta.Path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove file: %w", err)
	}

	delete(s.files, fileID)
	s.logger.Infow("file deleted", "file_id", fileID, "filename", meta.Filename)
	return nil
}
