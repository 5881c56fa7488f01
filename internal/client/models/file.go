package models

import (
	"strings"
	"time"
)

// File is an uploaded object belonging to a folder.
type File struct {
	ID         int64
	Name       string
	MimeType   string
	Size       int64
	UploadedAt time.Time
	FolderID   int64

	// BadTimestamp holds an uploaded_at value that could not be parsed.
	// UploadedAt is zero then.
	BadTimestamp string
}

// IsVideo reports whether the file should be shown by a video player.
func (f File) IsVideo() bool {
	return strings.HasPrefix(f.MimeType, "video/")
}

// IsImage reports whether the file has an image media type.
func (f File) IsImage() bool {
	return strings.HasPrefix(f.MimeType, "image/")
}
