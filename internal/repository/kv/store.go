package kv

import (
	"context"
	"errors"
	"fmt"
	"regexp"
)

// Store defines single-key persistence used by the domain state machines.
type Store interface {
	Load(ctx context.Context, key string) ([]byte, error)
	Save(ctx context.Context, key string, value []byte) error
}

var (
	// ErrNotFound is returned when no value has been saved under the key yet.
	ErrNotFound = errors.New("key not found")
	// ErrInvalidKey is returned for keys that cannot be stored by a backend.
	ErrInvalidKey = errors.New("invalid key")
)

// keyPattern limits keys to names that are safe as file names and SQL values.
var keyPattern = regexp.MustCompile(`^[a-z0-9][a-z0-9_.-]{0,127}$`)

// ValidateKey reports whether key is acceptable for every backend.
func ValidateKey(key string) error {
	if !keyPattern.MatchString(key) {
		return fmt.Errorf("%w: %q", ErrInvalidKey, key)
	}

	return nil
}
