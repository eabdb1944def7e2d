package kv

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/oshokin/owner-guard/internal/config"
)

// FileStore persists every key as its own file inside a directory.
// Values are written to a temporary file and renamed into place, so a reader
// never observes a partially written record.
type FileStore struct {
	// dir is the directory holding one file per key.
	dir string
	// mu protects concurrent access to the key files.
	mu sync.Mutex
}

// recordExtension is appended to every key file name.
const recordExtension = ".rec"

// NewFileStore creates a store rooted at dir. The directory is created on first save.
func NewFileStore(dir string) *FileStore {
	return &FileStore{
		dir: filepath.Clean(dir),
	}
}

// Load reads the value saved under key from disk.
func (s *FileStore) Load(_ context.Context, key string) ([]byte, error) {
	if err := ValidateKey(key); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	contents, err := os.ReadFile(s.path(key))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, ErrNotFound
		}

		return nil, fmt.Errorf("read %s: %w", key, err)
	}

	return contents, nil
}

// Save atomically replaces the file for key with value.
func (s *FileStore) Save(_ context.Context, key string, value []byte) error {
	if err := ValidateKey(key); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.MkdirAll(s.dir, config.DefaultDirPermissions); err != nil {
		return fmt.Errorf("create store directory: %w", err)
	}

	tmp, err := os.CreateTemp(s.dir, key+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file for %s: %w", key, err)
	}

	tmpName := tmp.Name()

	// Remove the temp file on any failure below; after rename it no longer exists.
	defer func() {
		_ = os.Remove(tmpName)
	}()

	if _, err = tmp.Write(value); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("write %s: %w", key, err)
	}

	if err = tmp.Sync(); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("sync %s: %w", key, err)
	}

	if err = tmp.Close(); err != nil {
		return fmt.Errorf("close %s: %w", key, err)
	}

	if err = os.Chmod(tmpName, config.DefaultFilePermissions); err != nil {
		return fmt.Errorf("chmod %s: %w", key, err)
	}

	if err = os.Rename(tmpName, s.path(key)); err != nil {
		return fmt.Errorf("replace %s: %w", key, err)
	}

	return nil
}

// path returns the file location for key.
func (s *FileStore) path(key string) string {
	return filepath.Join(s.dir, key+recordExtension)
}
