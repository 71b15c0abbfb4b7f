package domain

import (
	"context"
	"mime/multipart"
	"time"
)

// Uploader writes request attachments to durable blob storage. Upload
// returns the storage path (<category>/<generated key>) that gets persisted
// in the Documents row. Remove is used only for best-effort compensation
// when a later pipeline step fails.
type Uploader interface {
	Upload(ctx context.Context, file *multipart.FileHeader, category string) (string, error)
	PresignedURL(ctx context.Context, path string, expiry time.Duration) (string, error)
	Remove(ctx context.Context, path string) error
}
