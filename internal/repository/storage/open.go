// Package storage opens the key-value backend selected in the configuration.
package storage

import (
	"fmt"

	"github.com/oshokin/owner-guard/internal/config"
	"github.com/oshokin/owner-guard/internal/repository/kv"
	"github.com/oshokin/owner-guard/internal/repository/kv/sqlitekv"
)

// CloseFunc releases the backend.
type CloseFunc func() error

// noopClose is returned for backends without resources to release.
func noopClose() error { return nil }

// Open returns the store described by settings. The caller must call the
// returned CloseFunc once the store is no longer used.
func Open(settings config.Storage) (kv.Store, CloseFunc, error) {
	switch settings.Backend {
	case config.BackendFile, "":
		path := settings.Path
		if path == "" {
			path = config.DefaultStoragePath
		}

		return kv.NewFileStore(path), noopClose, nil
	case config.BackendSQLite:
		path := settings.Path
		if path == "" {
			path = config.DefaultSQLitePath
		}

		store, err := sqlitekv.Open(path)
		if err != nil {
			return nil, nil, err
		}

		return store, store.Close, nil
	case config.BackendMemory:
		return kv.NewMemoryStore(), noopClose, nil
	default:
		return nil, nil, fmt.Errorf("unknown storage backend %q", settings.Backend)
	}
}
