package service

import (
	"context"
	"io"
)

// Uploader pushes a blob to an offsite store and returns its public URL.
// Backup snapshots use it when an offsite provider is configured.
type Uploader interface {
	Upload(ctx context.Context, file io.Reader, folder string, publicID string) (string, error)
	Delete(ctx context.Context, publicID string) error
}
