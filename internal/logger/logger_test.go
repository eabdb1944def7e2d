package logger

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

// TestParseLogLevel verifies mapping from strings to zapcore.Level and handling of unknown values.
func TestParseLogLevel(t *testing.T) {
	t.Parallel()

	cases := map[string]zapcore.Level{
		"debug":  zapcore.DebugLevel,
		" INFO ": zapcore.InfoLevel,
		"warn":   zapcore.WarnLevel,
		"error":  zapcore.ErrorLevel,
		"panic":  zapcore.PanicLevel,
		"fatal":  zapcore.FatalLevel,
	}
	for s, lvl := range cases {
		got, ok := ParseLogLevel(s)
		require.True(t, ok, s)
		require.Equal(t, lvl, got)
	}

	_, ok := ParseLogLevel("unknown")
	require.False(t, ok)
}

// TestContextHelpers ensures names and fields attached to a context reach the output.
func TestContextHelpers(t *testing.T) {
	t.Parallel()

	core, logs := observer.New(zapcore.DebugLevel)
	ctx := ToContext(context.Background(), zap.New(core).Sugar())

	ctx = WithName(ctx, "owner-server")
	ctx = WithKV(ctx, "caller", "alice")

	InfoKV(ctx, "Owner updated", "action", "update_owner")

	entries := logs.All()
	require.Len(t, entries, 1)
	require.Equal(t, "owner-server", entries[0].LoggerName)
	require.Equal(t, "Owner updated", entries[0].Message)

	fields := entries[0].ContextMap()
	require.Equal(t, "alice", fields["caller"])
	require.Equal(t, "update_owner", fields["action"])
}

// TestFromContext_Fallback verifies the global logger is used when none is attached.
func TestFromContext_Fallback(t *testing.T) {
	t.Parallel()

	require.Same(t, Logger(), FromContext(context.Background()))
}
