// Package storage defines the read-only FileStore that classifier artifacts
// are loaded from. It abstracts the backend so model files can live in a
// local directory or in an S3-compatible bucket without changing the
// loading code.
package storage

import (
	"context"
	"fmt"
	"io"
)

// FileStore is a minimal interface for reading named files.
//
// Paths are forward-slash separated and relative to the store root.
// Implementations must be safe for concurrent use.
type FileStore interface {
	// Read opens the named file for reading.
	// The caller must close the returned ReadCloser when done.
	// If the file does not exist, an error wrapping os.ErrNotExist is returned.
	Read(ctx context.Context, path string) (io.ReadCloser, error)

	// Exists reports whether the named file exists.
	Exists(ctx context.Context, path string) (bool, error)
}

// ReadFile reads the whole named file from store, limited to maxSize bytes
// when maxSize > 0.
func ReadFile(ctx context.Context, store FileStore, path string, maxSize int64) ([]byte, error) {
	rc, err := store.Read(ctx, path)
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	var r io.Reader = rc
	if maxSize > 0 {
		r = io.LimitReader(rc, maxSize+1)
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("storage: read %s: %w", path, err)
	}
	if maxSize > 0 && int64(len(data)) > maxSize {
		return nil, fmt.Errorf("storage: %s exceeds %d bytes", path, maxSize)
	}
	return data, nil
}
