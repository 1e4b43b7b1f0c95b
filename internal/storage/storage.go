package storage

import (
	"context"
	"errors"
	"fmt"
	"io"

	cfg "github.com/JankoLoL/Get-a-pic/internal/config"
)

// ErrNotFound is returned when no blob exists at the requested path.
var ErrNotFound = errors.New("blob not found")

// Storage is the blob store for originals and derived files. The core only
// needs "write bytes under a path" and "read bytes from a path"; Delete
// exists for image removal and upload rollback.
type Storage interface {
	Save(ctx context.Context, path string, r io.Reader) error
	Read(ctx context.Context, path string) ([]byte, error)
	Delete(ctx context.Context, path string) error
}

// New selects a storage backend from app config: local filesystem for
// development, S3-compatible for everything else.
func New(c *cfg.Config) (Storage, error) {
	switch c.StorageDriver {
	case "local":
		return NewLocalStorage(c.LocalMediaDir)
	case "s3":
		return NewS3Storage(S3Config{
			Region:    c.S3Region,
			Bucket:    c.S3Bucket,
			AccessKey: c.S3AccessKey,
			SecretKey: c.S3SecretKey,
			Endpoint:  c.S3Endpoint,
		})
	default:
		return nil, fmt.Errorf("unknown storage driver %q", c.StorageDriver)
	}
}
