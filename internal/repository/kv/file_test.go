package kv

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

// TestFileStore_NotFound verifies Load returns ErrNotFound for a missing key.
func TestFileStore_NotFound(t *testing.T) {
	t.Parallel()

	store := NewFileStore(filepath.Join(t.TempDir(), "missing"))

	v, err := store.Load(context.Background(), "owner")
	require.ErrorIs(t, err, ErrNotFound)
	require.Nil(t, v)
}

// TestFileStore_SaveLoad_Roundtrip ensures Save followed by Load returns the same bytes.
func TestFileStore_SaveLoad_Roundtrip(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	dir := filepath.Join(t.TempDir(), "store")
	store := NewFileStore(dir)

	require.NoError(t, store.Save(ctx, "owner", []byte("first")))
	require.NoError(t, store.Save(ctx, "owner", []byte("second")))

	got, err := store.Load(ctx, "owner")
	require.NoError(t, err)
	require.Equal(t, []byte("second"), got)

	// Only the record file remains; temp files are cleaned up.
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	require.Equal(t, "owner"+recordExtension, entries[0].Name())
}

// TestFileStore_InvalidKey rejects keys that would escape the directory.
func TestFileStore_InvalidKey(t *testing.T) {
	t.Parallel()

	store := NewFileStore(t.TempDir())

	require.ErrorIs(t, store.Save(context.Background(), "../owner", nil), ErrInvalidKey)

	_, err := store.Load(context.Background(), "")
	require.ErrorIs(t, err, ErrInvalidKey)
}
