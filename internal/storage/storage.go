package storage

import (
	"context"
	"io"
)

// Storage keeps uploaded import files so an import can be audited later.
type Storage interface {
	// Save writes data under key and returns the location it was stored at.
	// key is a slash-separated relative path (e.g. "imports/<uuid>.csv").
	Save(ctx context.Context, key string, data io.Reader, contentType string) (location string, err error)

	// Delete removes the file stored under key. A missing file is not an error.
	Delete(ctx context.Context, key string) error
}
