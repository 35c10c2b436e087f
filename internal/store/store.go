// Package store provides the persistent blob store the registry
// snapshots are written to and restored from.
package store

import "context"

// Store resolves logical blob names to concrete paths and moves bytes
// in and out of them.
type Store interface {
	// Resolve maps a logical blob name to a concrete path.
	Resolve(logical string) (string, error)
	// WriteAll replaces the blob's contents atomically from the
	// caller's point of view (a partial write never survives).
	WriteAll(ctx context.Context, path string, data []byte) error
	// ReadAll returns the blob's full contents. A missing blob is
	// reported with an error wrapping fs.ErrNotExist.
	ReadAll(ctx context.Context, path string) ([]byte, error)
}
