// Command ecertctl drives the certificate contract from the command line.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"ecert/config"
	"ecert/internal/adapters/logger"
	"ecert/internal/app"
)

// options holds the persistent flags shared by every subcommand.
type options struct {
	envFile   string
	walletURL string
	verbose   bool
}

func newRootCmd() *cobra.Command {
	opts := &options{}

	root := &cobra.Command{
		Use:   "ecertctl",
		Short: "Manage e-certificates on the certificate contract",
		Long: `ecertctl talks to a wallet provider over JSON-RPC, brings it onto the
configured chain and calls the certificate contract.

Configuration is read from the environment and an optional .env file.
State-changing commands require WALLET_PRIVATE_KEY.`,
		SilenceUsage: true,
	}

	root.PersistentFlags().StringVar(&opts.envFile, "env-file", ".env", "dotenv file to read configuration from")
	root.PersistentFlags().StringVar(&opts.walletURL, "wallet-url", "", "wallet provider URL (overrides WALLET_URL)")
	root.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "log to stderr")

	root.AddCommand(
		newTokenCmd(),
		newNetworkCmd(opts),
		newOwnerCmd(opts),
		newMinterCmd(opts),
		newCertCmd(opts),
		newStatusCmd(opts),
	)
	return root
}

// connect loads configuration and returns a connected application. The
// caller must Close it.
func connect(cmd *cobra.Command, opts *options) (*app.App, error) {
	cfg, err := config.Load(opts.envFile)
	if err != nil {
		return nil, err
	}
	if opts.walletURL != "" {
		cfg.Wallet.URL = opts.walletURL
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration error: %w", err)
	}

	log := logger.NewNopLogger()
	if opts.verbose {
		if log, err = logger.NewLogger(true); err != nil {
			return nil, err
		}
	}

	return app.New(commandContext(cmd), cfg, log)
}

func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}
