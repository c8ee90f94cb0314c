package storage

import (
	"context"
	"errors"
	"io"
)

// ErrNotFound indicates no value is stored under the key.
var ErrNotFound = errors.New("storage: key not found")

// Storage is a small key/value store for whole-value snapshots.
//
// Put replaces the value atomically: a concurrent or later Get observes either
// the previous value or the new one, never a partial write.
type Storage interface {
	io.Closer

	// Get returns the value stored under key or ErrNotFound.
	Get(ctx context.Context, key string) ([]byte, error)
	// Put replaces the value stored under key.
	Put(ctx context.Context, key string, value []byte) error
	// Delete removes key. Deleting an absent key is not an error.
	Delete(ctx context.Context, key string) error
}
