package integration

import (
	"context"
	"net"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/oshokin/owner-guard/internal/config"
	"github.com/oshokin/owner-guard/internal/service/common"
	"github.com/oshokin/owner-guard/internal/service/server"
)

// startupTimeout bounds how long a test waits for the server to listen.
const startupTimeout = 5 * time.Second

// writeConfig saves settings into a temporary file and returns its path.
func writeConfig(t *testing.T, settings *config.Config) string {
	t.Helper()

	if settings.ServerAddress == "" {
		settings.ServerAddress = "127.0.0.1:1"
	}

	cfgPath := filepath.Join(t.TempDir(), config.DefaultConfigFilename)
	require.NoError(t, config.Save(cfgPath, settings))

	return cfgPath
}

// startServer runs owner-server on a random local port.
// The returned stop function shuts it down and reports the Run error.
func startServer(t *testing.T, settings *config.Config) (addr string, stop func() error) {
	t.Helper()

	cfgPath := writeConfig(t, settings)

	ctx, cancel := context.WithCancel(context.Background())
	listening := make(chan net.Addr, 1)
	result := make(chan error, 1)

	go func() {
		result <- server.Run(ctx, &server.Options{
			ConfigPath:    cfgPath,
			ListenAddress: "127.0.0.1:0",
			OnListen: func(a net.Addr) {
				listening <- a
			},
		})
	}()

	select {
	case a := <-listening:
		addr = a.String()
	case err := <-result:
		cancel()
		require.NoError(t, err, "server exited before listening")
	case <-time.After(startupTimeout):
		cancel()
		t.Fatal("server did not start listening")
	}

	return addr, func() error {
		cancel()

		return <-result
	}
}

// dial connects a client to addr and closes it at the end of the test.
func dial(t *testing.T, addr string) *common.Client {
	t.Helper()

	c, err := common.Dial(context.Background(), addr, common.WithCallTimeout(3*time.Second))
	require.NoError(t, err)

	t.Cleanup(func() {
		_ = c.Close()
	})

	return c
}
