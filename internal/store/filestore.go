package store

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/afero"
)

// FileStore implements Store on top of a filesystem rooted at a single
// configuration directory.
type FileStore struct {
	fs   afero.Fs
	root string
}

// NewFileStore creates a FileStore over the OS filesystem.
func NewFileStore(root string) *FileStore {
	return NewFileStoreFs(afero.NewOsFs(), root)
}

// NewFileStoreFs creates a FileStore over the given filesystem. Used
// by tests with an in-memory filesystem.
func NewFileStoreFs(fs afero.Fs, root string) *FileStore {
	return &FileStore{fs: fs, root: root}
}

// DefaultRoot returns the per-user configuration directory for the
// application.
func DefaultRoot() (string, error) {
	base, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("resolving user config dir: %w", err)
	}
	return filepath.Join(base, "kprof"), nil
}

// Resolve maps a logical blob name to a path under the store root.
func (s *FileStore) Resolve(logical string) (string, error) {
	if s.root == "" {
		return "", fmt.Errorf("store root is not set")
	}
	if logical == "" {
		return "", fmt.Errorf("logical blob name is empty")
	}
	return filepath.Join(s.root, logical), nil
}

// WriteAll writes the blob with owner-only permissions, creating the
// store root if needed.
func (s *FileStore) WriteAll(_ context.Context, path string, data []byte) error {
	if err := s.fs.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("failed to create store directory: %w", err)
	}

	// Write to a temp file and rename so readers never observe a
	// partial snapshot.
	tmp := path + ".tmp"
	if err := afero.WriteFile(s.fs, tmp, data, 0600); err != nil {
		return fmt.Errorf("failed to write blob: %w", err)
	}
	if err := s.fs.Rename(tmp, path); err != nil {
		return fmt.Errorf("failed to commit blob: %w", err)
	}
	return nil
}

// ReadAll returns the blob's contents.
func (s *FileStore) ReadAll(_ context.Context, path string) ([]byte, error) {
	data, err := afero.ReadFile(s.fs, path)
	if err != nil {
		return nil, fmt.Errorf("failed to read blob: %w", err)
	}
	return data, nil
}
