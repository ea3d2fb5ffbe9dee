// Package storage holds uploaded document content.
package storage

import (
	"context"
	"errors"
	"io"
)

// ErrObjectNotFound is returned when a stored key does not exist
var ErrObjectNotFound = errors.New("object not found")

// ContentStore reads and writes raw document bytes by stored key.
type ContentStore interface {
	Exists(ctx context.Context, key string) (bool, error)
	Get(ctx context.Context, key string) (io.ReadCloser, error)
	Put(ctx context.Context, key, contentType string, body io.Reader) error
	Delete(ctx context.Context, key string) error
}
