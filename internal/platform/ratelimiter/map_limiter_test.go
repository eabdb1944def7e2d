package ratelimiter

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// TestNew_Disabled verifies invalid settings disable limiting.
func TestNew_Disabled(t *testing.T) {
	t.Parallel()

	l := New(0, 1, 0)
	require.Nil(t, l)
	require.True(t, l.Allow("alice", time.Now()))
	require.Zero(t, l.Len())
}

// TestMapLimiter_PerKeyBuckets ensures each caller gets its own bucket.
func TestMapLimiter_PerKeyBuckets(t *testing.T) {
	t.Parallel()

	l := New(1, 2, time.Minute)
	now := time.Unix(1_700_000_000, 0)

	require.True(t, l.Allow("alice", now))
	require.True(t, l.Allow("alice", now))
	require.False(t, l.Allow("alice", now))

	// Another caller is unaffected.
	require.True(t, l.Allow("bob", now))

	// Tokens refill with time.
	require.True(t, l.Allow("alice", now.Add(time.Second)))
	require.Equal(t, 2, l.Len())
}

// TestMapLimiter_EvictsIdle checks idle buckets are dropped during sweeps.
func TestMapLimiter_EvictsIdle(t *testing.T) {
	t.Parallel()

	l := New(1000, 1000, time.Second)
	start := time.Unix(1_700_000_000, 0)

	require.True(t, l.Allow("idle", start))

	later := start.Add(time.Minute)
	for i := 0; i < sweepEvery; i++ {
		l.Allow("busy", later)
	}

	require.Equal(t, 1, l.Len())
}
