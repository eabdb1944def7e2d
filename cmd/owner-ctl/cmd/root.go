package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/oshokin/owner-guard/internal/config"
	domain "github.com/oshokin/owner-guard/internal/domain/owner"
	"github.com/oshokin/owner-guard/internal/service/client"
	"github.com/oshokin/owner-guard/internal/version"
)

var (
	// configPath stores the path to the configuration YAML file.
	configPath string
	// serverAddress overrides the configured server address.
	serverAddress string
	// caller overrides the account detected from the local user.
	caller string
	// jsonOutput prints wire messages as JSON.
	jsonOutput bool

	// rootCmd represents the base command for owner-ctl.
	rootCmd = &cobra.Command{
		Use:   "owner-ctl",
		Short: "Query and update the owner record.",
		Long: `Talks to the owner server. Queries are open to everyone; transfers and
status changes are accepted only from the current owner.

Updates are sent as the local user name in lower case unless --as is given.`,
	}

	queryCmd = &cobra.Command{
		Use:   "query",
		Short: "Print the current owner and status.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return client.Query(cmd.Context(), options(cmd))
		},
	}

	isOwnerCmd = &cobra.Command{
		Use:   "is-owner [account]",
		Short: "Print whether the account (default: caller) is the owner.",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var account string
			if len(args) > 0 {
				account = args[0]
			}

			return client.IsOwner(cmd.Context(), options(cmd), account)
		},
	}

	transferCmd = &cobra.Command{
		Use:   "transfer <new-owner>",
		Short: "Hand the record over to another account.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return client.Update(cmd.Context(), options(cmd), domain.UpdateOwner{NewOwner: args[0]})
		},
	}

	setStatusCmd = &cobra.Command{
		Use:   "set-status <status>",
		Short: "Replace the status text.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return client.Update(cmd.Context(), options(cmd), domain.UpdateStatus{NewStatus: args[0]})
		},
	}

	clearStatusCmd = &cobra.Command{
		Use:   "clear-status",
		Short: "Remove the status.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return client.Update(cmd.Context(), options(cmd), domain.ClearStatus{})
		},
	}
)

// options collects the persistent flags for a subcommand.
func options(cmd *cobra.Command) *client.Options {
	return &client.Options{
		ConfigPath:    configPath,
		ServerAddress: serverAddress,
		As:            caller,
		Output:        cmd.OutOrStdout(),
		JSON:          jsonOutput,
	}
}

// Execute runs the owner-ctl CLI and exits with non-zero status on error.
func Execute() {
	version.AttachCobraVersionCommand(rootCmd)
	rootCmd.AddCommand(queryCmd, isOwnerCmd, transferCmd, setStatusCmd, clearStatusCmd)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1) //nolint:gocritic // stop is called explicitly above.
	}
}

//nolint:gochecknoinits // Required by Cobra CLI framework architecture.
func init() {
	rootCmd.PersistentFlags().
		StringVarP(&configPath, "config", "c", config.DefaultConfigFilename, "path to configuration file")
	rootCmd.PersistentFlags().StringVarP(&serverAddress, "server", "a", "", "override the configured server address")
	rootCmd.PersistentFlags().StringVar(&caller, "as", "", "send updates as this account instead of the local user")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "print results as JSON")
}
