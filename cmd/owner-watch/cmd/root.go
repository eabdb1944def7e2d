package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/oshokin/owner-guard/internal/config"
	"github.com/oshokin/owner-guard/internal/service/watcher"
	"github.com/oshokin/owner-guard/internal/version"
)

var (
	// configPath stores the path to the configuration YAML file.
	configPath string
	// interval between polls.
	interval time.Duration

	// rootCmd represents the base command for watching the owner record.
	rootCmd = &cobra.Command{
		Use:   "owner-watch [server-address]",
		Short: "Log every change of the owner record.",
		Long: `Polls the owner server at a fixed interval and logs each ownership transfer
and status change. Server address can be provided as argument or loaded from
configuration file.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
			defer stop()

			var serverAddress string
			if len(args) > 0 {
				serverAddress = args[0]
			}

			return watcher.Run(ctx, &watcher.Options{
				ConfigPath:    configPath,
				ServerAddress: serverAddress,
				PollInterval:  interval,
			})
		},
	}
)

// Execute runs the owner-watch CLI and exits with non-zero status on error.
func Execute() {
	version.AttachCobraVersionCommand(rootCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

//nolint:gochecknoinits // Required by Cobra CLI framework architecture.
func init() {
	rootCmd.Flags().StringVarP(&configPath, "config", "c", config.DefaultConfigFilename, "path to configuration file")
	rootCmd.Flags().DurationVarP(&interval, "interval", "i", watcher.DefaultPollInterval, "poll interval")
}
