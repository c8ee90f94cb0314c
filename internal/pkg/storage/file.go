package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/natefinch/atomic"
)

// FileOptions configures the file backend.
type FileOptions struct {
	// Dir is the directory holding one file per key. It is created if missing.
	Dir string
}

// File implements Storage with one file per key. Writes go to a temporary
// file that is renamed over the target, so readers never see a torn value.
type File struct {
	dir string
	mu  sync.Mutex
}

// NewFile prepares opts.Dir and returns a File store rooted there.
func NewFile(opts FileOptions) (*File, error) {
	dir := strings.TrimSpace(opts.Dir)
	if dir == "" {
		return nil, errors.New("storage: file dir is required")
	}
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("storage: create dir: %w", err)
	}
	return &File{dir: dir}, nil
}

// Get reads the file for key.
func (f *File) Get(_ context.Context, key string) ([]byte, error) {
	// #nosec G304 -- the file name is derived from the key, not user input.
	data, err := os.ReadFile(f.path(key))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("storage: read %s: %w", key, err)
	}
	return data, nil
}

// Put atomically replaces the file for key. Writes are serialized.
func (f *File) Put(_ context.Context, key string, value []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := atomic.WriteFile(f.path(key), bytes.NewReader(value)); err != nil {
		return fmt.Errorf("storage: write %s: %w", key, err)
	}
	return nil
}

// Delete removes the file for key.
func (f *File) Delete(_ context.Context, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := os.Remove(f.path(key)); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("storage: delete %s: %w", key, err)
	}
	return nil
}

// Close is a no-op.
func (f *File) Close() error {
	return nil
}

// path maps key to a file name that is safe on every platform.
func (f *File) path(key string) string {
	name := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '.', r == '-', r == '_':
			return r
		default:
			return '_'
		}
	}, key)
	return filepath.Join(f.dir, name+".json")
}
