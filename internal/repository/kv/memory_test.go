package kv

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

// TestMemoryStore_CopiesValues verifies callers cannot mutate stored bytes.
func TestMemoryStore_CopiesValues(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := NewMemoryStore()

	_, err := store.Load(ctx, "owner")
	require.ErrorIs(t, err, ErrNotFound)

	value := []byte("alice")
	require.NoError(t, store.Save(ctx, "owner", value))

	value[0] = 'X'

	got, err := store.Load(ctx, "owner")
	require.NoError(t, err)
	require.Equal(t, []byte("alice"), got)

	got[0] = 'Y'

	again, err := store.Load(ctx, "owner")
	require.NoError(t, err)
	require.Equal(t, []byte("alice"), again)
}

// TestMemoryStore_Keys checks keys are listed in sorted order.
func TestMemoryStore_Keys(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := NewMemoryStore()

	for _, key := range []string{"owner", "contract_info", "alpha"} {
		require.NoError(t, store.Save(ctx, key, []byte(key)))
	}

	require.Equal(t, []string{"alpha", "contract_info", "owner"}, store.Keys())
}
