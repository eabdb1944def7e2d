package kv

import (
	"bytes"
	"context"
	"slices"
	"sync"
)

// MemoryStore keeps values in process memory. It is used by tests and by the
// "memory" storage backend for throwaway servers.
type MemoryStore struct {
	// values maps keys to private copies of the saved bytes.
	values map[string][]byte
	// mu protects values.
	mu sync.RWMutex
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		values: make(map[string][]byte),
	}
}

// Load returns a copy of the value saved under key.
func (m *MemoryStore) Load(_ context.Context, key string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	value, ok := m.values[key]
	if !ok {
		return nil, ErrNotFound
	}

	return bytes.Clone(value), nil
}

// Save replaces the value under key with a copy of value.
func (m *MemoryStore) Save(_ context.Context, key string, value []byte) error {
	if err := ValidateKey(key); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.values[key] = bytes.Clone(value)

	return nil
}

// Keys returns the stored keys in ascending order.
func (m *MemoryStore) Keys() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	keys := make([]string, 0, len(m.values))
	for key := range m.values {
		keys = append(keys, key)
	}

	slices.Sort(keys)

	return keys
}
