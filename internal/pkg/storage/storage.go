package storage

import (
	"context"
	"io"
)

type FileStorage interface {
	// Upload stores file under path and returns the cleaned key
	Upload(ctx context.Context, file io.Reader, path string, contentType string) (string, error)

	// Delete removes a file; a missing file is not an error
	Delete(ctx context.Context, path string) error

	// URL returns the public URL of a stored key
	URL(path string) string
}
