package integration

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/oshokin/owner-guard/internal/config"
	"github.com/oshokin/owner-guard/internal/domain/contract"
	domain "github.com/oshokin/owner-guard/internal/domain/owner"
	"github.com/oshokin/owner-guard/internal/repository/storage"
	"github.com/oshokin/owner-guard/internal/service/server"
	"github.com/oshokin/owner-guard/internal/version"
)

// runServerOnce starts the server with an already canceled context, so only
// the start-up steps run.
func runServerOnce(cfgPath string) error {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	return server.Run(ctx, &server.Options{
		ConfigPath:    cfgPath,
		ListenAddress: "127.0.0.1:0",
	})
}

// seedStore writes an owner record and contract info at storedVersion.
func seedStore(t *testing.T, settings config.Storage, storedVersion string) {
	t.Helper()

	store, closeStore, err := storage.Open(settings)
	require.NoError(t, err)

	defer func() {
		require.NoError(t, closeStore())
	}()

	ctx := context.Background()
	require.NoError(t, domain.NewMachine(domain.DefaultKey, nil).Initialize(ctx, store, "alice", nil))
	require.NoError(t, contract.Set(ctx, store, version.Name, storedVersion))
}

// TestMigrate_UpgradesOlderStore verifies the server refuses a stale store until it is migrated.
func TestMigrate_UpgradesOlderStore(t *testing.T) {
	t.Parallel()

	settings := config.Storage{Backend: config.BackendSQLite, Path: filepath.Join(t.TempDir(), "owner.db")}
	seedStore(t, settings, "0.1.0")

	cfgPath := writeConfig(t, &config.Config{Storage: settings})

	require.ErrorIs(t, runServerOnce(cfgPath), contract.ErrMigrationRequired)

	require.NoError(t, server.Migrate(context.Background(), &server.Options{ConfigPath: cfgPath}))

	addr, stop := startServer(t, &config.Config{Storage: settings})
	defer func() {
		require.NoError(t, stop())
	}()

	resp, err := dial(t, addr).GetOwner(context.Background())
	require.NoError(t, err)
	require.Equal(t, "alice", resp.Owner)
}

// TestMigrate_RefusesNewerStore checks a downgrade is rejected and leaves the store untouched.
func TestMigrate_RefusesNewerStore(t *testing.T) {
	t.Parallel()

	settings := config.Storage{Backend: config.BackendFile, Path: filepath.Join(t.TempDir(), "state")}
	seedStore(t, settings, "99.0.0")

	cfgPath := writeConfig(t, &config.Config{Storage: settings})

	err := server.Migrate(context.Background(), &server.Options{ConfigPath: cfgPath})
	require.ErrorIs(t, err, contract.ErrDowngrade)

	store, closeStore, err := storage.Open(settings)
	require.NoError(t, err)

	defer func() {
		require.NoError(t, closeStore())
	}()

	info, err := contract.Get(context.Background(), store)
	require.NoError(t, err)
	require.Equal(t, "99.0.0", info.Version)
}
