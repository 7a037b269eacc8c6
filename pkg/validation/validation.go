package validation

import (
	"fmt"
	"strings"
	"unicode"
)

const (
	maxRoomIDLength   = 100
	maxFilenameLength = 255
)

// ValidateRoomID checks a client-supplied room identifier. Room ids are
// otherwise opaque; only empty, oversized, or control-character ids are
// rejected.
func ValidateRoomID(roomID string) error {
	if roomID == "" {
		return fmt.Errorf("roomId is required")
	}
	if len(roomID) > maxRoomIDLength {
		return fmt.Errorf("roomId must be at most %d characters", maxRoomIDLength)
	}
	for _, r := range roomID {
		if unicode.IsControl(r) {
			return fmt.Errorf("roomId contains control characters")
		}
	}
	return nil
}

// ValidateFilename checks an uploaded file's base name before it touches
// the filesystem.
func ValidateFilename(name string) error {
	if name == "" || name == "." || name == ".." {
		return fmt.Errorf("invalid filename")
	}
	if len(name) > maxFilenameLength {
		return fmt.Errorf("filename must be at most %d characters", maxFilenameLength)
	}
	if strings.ContainsAny(name, "/\\") {
		return fmt.Errorf("filename must not contain path separators")
	}
	return nil
}
