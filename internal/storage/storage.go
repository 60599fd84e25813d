package storage

import (
	"context"
	"io"
	"strconv"
	"time"
)

// Default expiry duration for presigned URLs
const DefaultPresignedURLExpiry = 15 * time.Minute

// FileStorage defines the interface for object storage operations.
type FileStorage interface {
	// GeneratePresignedDownloadURL creates a temporary URL that allows GET requests
	// for downloading/viewing an object directly from the storage provider.
	GeneratePresignedDownloadURL(ctx context.Context, objectKey string, expires time.Duration) (string, error)

	// UploadObject stores body under objectKey, replacing any existing object.
	UploadObject(ctx context.Context, objectKey, contentType string, body io.Reader) error
}

// GifKey is the object key of the GIF for a sequential id.
func GifKey(prefix string, sequentialID int) string {
	return prefix + strconv.Itoa(sequentialID) + ".gif"
}
