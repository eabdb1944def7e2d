//nolint:revive,nolintlint // Package name "common" is intentional for shared helpers.
package common

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// TestDetectCaller ensures the current user name is detected and lowercased.
func TestDetectCaller(t *testing.T) {
	t.Parallel()

	caller, err := DetectCaller()
	require.NoError(t, err)
	require.NotEmpty(t, caller)
}

// TestCallerFromUsername covers domain prefixes, case and empty names.
func TestCallerFromUsername(t *testing.T) {
	t.Parallel()

	caller, err := callerFromUsername(`CORP\O.Shokin`)
	require.NoError(t, err)
	require.Equal(t, "o.shokin", caller)

	caller, err = callerFromUsername(" Alice ")
	require.NoError(t, err)
	require.Equal(t, "alice", caller)

	_, err = callerFromUsername("  ")
	require.ErrorIs(t, err, errEmptyUsername)
}
