package integration

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/oshokin/owner-guard/internal/config"
	domain "github.com/oshokin/owner-guard/internal/domain/owner"
	"github.com/oshokin/owner-guard/internal/service/watcher"
)

// TestWatcher_ObservesTransfer runs the watcher against a live server and
// checks it reports the initial record and a later transfer.
func TestWatcher_ObservesTransfer(t *testing.T) {
	t.Parallel()

	addr, stop := startServer(t, &config.Config{
		Storage:      config.Storage{Backend: config.BackendMemory},
		InitialOwner: "alice",
	})
	defer func() {
		require.NoError(t, stop())
	}()

	cfgPath := writeConfig(t, &config.Config{ServerAddress: addr, Timeout: time.Second})

	runCtx, cancel := context.WithCancel(context.Background())
	defer cancel()

	changes := make(chan *domain.Response, 4)
	done := make(chan error, 1)

	go func() {
		done <- watcher.Run(runCtx, &watcher.Options{
			ConfigPath:   cfgPath,
			PollInterval: 20 * time.Millisecond,
			OnChange: func(_, current *domain.Response) {
				changes <- current
			},
		})
	}()

	select {
	case first := <-changes:
		require.Equal(t, "alice", first.Owner)
	case <-time.After(startupTimeout):
		t.Fatal("watcher did not report the initial record")
	}

	_, err := dial(t, addr).Update(context.Background(), "alice", domain.UpdateOwner{NewOwner: "bob"})
	require.NoError(t, err)

	select {
	case next := <-changes:
		require.Equal(t, "bob", next.Owner)
	case <-time.After(startupTimeout):
		t.Fatal("watcher did not report the transfer")
	}

	cancel()
	require.NoError(t, <-done)
}
