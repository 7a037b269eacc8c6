package domain

// FileMetadata describes an uploaded asset. The file id is derived from the
// content hash, so re-uploading identical content yields the same id.
type FileMetadata struct {
	FileID   string `json:"file_id"`
	Filename string `json:"filename"`
	Size     int64  `json:"size"`
	Hash     string `json:"hash"`
	Path     string `json:"path"`
	RoomID   RoomID `json:"room_id,omitempty"`
}
