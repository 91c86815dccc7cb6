package store

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// FileBackend stores one JSON file per key under a base directory.
type FileBackend struct {
	baseDir string
}

// NewFileBackend ensures the base directory exists and returns a handle.
func NewFileBackend(baseDir string) (*FileBackend, error) {
	if baseDir == "" {
		baseDir = "./data"
	}
	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		return nil, fmt.Errorf("create store directory: %w", err)
	}
	return &FileBackend{baseDir: baseDir}, nil
}

func (f *FileBackend) Name() string { return "file" }

func (f *FileBackend) Get(ctx context.Context, key string) ([]byte, bool, error) {
	payload, err := os.ReadFile(f.resolve(key))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("read store file: %w", err)
	}
	return payload, true, nil
}

// Put writes through a temp file and rename so readers never see a partial file.
func (f *FileBackend) Put(ctx context.Context, key string, payload []byte) error {
	path := f.resolve(key)
	tmp, err := os.CreateTemp(f.baseDir, ".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp store file: %w", err)
	}
	defer os.Remove(tmp.Name()) //nolint:errcheck
	if _, err := tmp.Write(payload); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("write store file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close store file: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("replace store file: %w", err)
	}
	return nil
}

func (f *FileBackend) resolve(key string) string {
	safe := strings.NewReplacer("/", "_", "\\", "_", ":", "_", "..", "_").Replace(key)
	return filepath.Join(f.baseDir, safe+".json")
}
