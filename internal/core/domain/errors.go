package domain

import "errors"

var (
	ErrConnectionNotFound = errors.New("connection not found")
	ErrRoomNotFound       = errors.New("room not found")
	ErrInvalidQuality     = errors.New("quality must be between 0 and 100")
	ErrFileNotFound       = errors.New("file not found")
)
