package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/oshokin/owner-guard/internal/config"
	"github.com/oshokin/owner-guard/internal/service/server"
	"github.com/oshokin/owner-guard/internal/version"
)

var (
	// configPath to the configuration YAML file.
	configPath string
	// storagePath overrides the configured storage location.
	storagePath string
	// initialOwner overrides the configured initial owner.
	initialOwner string

	// rootCmd represents the base command for running the gRPC server.
	rootCmd = &cobra.Command{
		Use:   "owner-server [listen-address]",
		Short: "Run the owner gRPC server and guard the owner record.",
		Long: `Starts the gRPC owner server that answers ownership queries and applies
transfers and status updates sent by the current owner.

The server listens on the specified address or uses settings from configuration file.
Only the port from ServerAddress config is used for listening (e.g., :8080).
Listen address can be provided as argument to override config (e.g., :9090, 0.0.0.0:8080).
On first start with an empty store the initial owner is recorded with status "initializer".`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
			defer stop()

			var listenAddress string
			if len(args) > 0 {
				listenAddress = args[0]
			}

			return server.Run(ctx, &server.Options{
				ConfigPath:    configPath,
				ListenAddress: listenAddress,
				StoragePath:   storagePath,
				InitialOwner:  initialOwner,
			})
		},
	}

	// migrateCmd upgrades the store to the running version.
	migrateCmd = &cobra.Command{
		Use:   "migrate",
		Short: "Record the running version in the store's contract info.",
		Long: `Checks that the store belongs to this program and was not written by a newer
version, then records the running version. Run it after upgrading the binary.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return server.Migrate(cmd.Context(), &server.Options{
				ConfigPath:  configPath,
				StoragePath: storagePath,
			})
		},
	}
)

// Execute runs the owner-server CLI and exits with non-zero status on error.
func Execute() {
	version.AttachCobraVersionCommand(rootCmd)
	rootCmd.AddCommand(migrateCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

//nolint:gochecknoinits // Required by Cobra CLI framework architecture.
func init() {
	rootCmd.PersistentFlags().
		StringVarP(&configPath, "config", "c", config.DefaultConfigFilename, "path to configuration file")
	rootCmd.PersistentFlags().
		StringVarP(&storagePath, "storage-path", "s", "", "override the configured storage location")
	rootCmd.Flags().
		StringVar(&initialOwner, "initial-owner", "", "owner recorded when the store is empty")
}
