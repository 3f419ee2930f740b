package store

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// Backend abstracts where the serialized snapshot blob lives.
// Implementations must be safe for use from the saver goroutine.
type Backend interface {
	// Load returns the last written snapshot. A missing snapshot is not an
	// error; it returns (nil, nil).
	Load(ctx context.Context) ([]byte, error)
	// Save durably writes the snapshot, replacing any previous one.
	Save(ctx context.Context, data []byte) error
}

// FileBackend keeps the snapshot in a single local file.
type FileBackend struct {
	path string
}

// NewFileBackend returns a file backend writing to path.
func NewFileBackend(path string) (*FileBackend, error) {
	if path == "" {
		return nil, fmt.Errorf("snapshot file path cannot be empty")
	}
	return &FileBackend{path: path}, nil
}

func (b *FileBackend) Load(_ context.Context) ([]byte, error) {
	data, err := os.ReadFile(b.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read snapshot %s: %w", b.path, err)
	}
	return data, nil
}

// Save writes to a temp file in the same directory and renames it over the
// target, so a crash mid-write never leaves a truncated snapshot.
func (b *FileBackend) Save(_ context.Context, data []byte) error {
	dir := filepath.Dir(b.path)
	tmp, err := os.CreateTemp(dir, filepath.Base(b.path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create temp snapshot: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("failed to write snapshot: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to close snapshot: %w", err)
	}
	if err := os.Rename(tmpName, b.path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to replace snapshot %s: %w", b.path, err)
	}
	return nil
}
