package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/awnumar/memguard"
	"github.com/spf13/cobra"

	"github.com/systmms/passmng/cmd/passmng/commands"
	"github.com/systmms/passmng/internal/config"
	pmerrors "github.com/systmms/passmng/internal/errors"
	"github.com/systmms/passmng/internal/logging"
	"github.com/systmms/passmng/internal/metrics"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	code := run(os.Args[1:], os.Stderr)
	memguard.Purge()
	os.Exit(code)
}

func run(args []string, stderr io.Writer) int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg := &config.Config{}
	rootCmd := newRootCommand(cfg)
	rootCmd.SetArgs(args)

	err := rootCmd.ExecuteContext(ctx)
	if werr := writeMetrics(cfg); werr != nil && cfg.Logger != nil {
		cfg.Logger.Warn("Failed to write metrics: %v", werr)
	}
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", pmerrors.Friendly(err))
		return 1
	}
	return 0
}

func newRootCommand(cfg *config.Config) *cobra.Command {
	// Global flags
	var (
		configFile     string
		storeDir       string
		metricsFile    string
		noColor        bool
		debug          bool
		nonInteractive bool
	)

	rootCmd := &cobra.Command{
		Use:   "passmng",
		Short: "Local encrypted password store",
		Long: `passmng keeps secrets encrypted on disk under hierarchical keys such as
email/work. Each secret is one file, encrypted with gpg for RECIPIENT.`,
		Version:       fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, date),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			logger := logging.New(debug, noColor)

			if configFile == "" {
				configFile = config.DefaultPath()
			}
			cfg.Path = configFile
			cfg.Logger = logger
			cfg.NonInteractive = nonInteractive
			cfg.StoreFlag = storeDir
			cfg.MetricsFileFlag = metricsFile
			cfg.Metrics = metrics.New()

			if err := cfg.Load(); err != nil {
				return err
			}
			logger.Debug("Loaded configuration from %s", cfg.Path)
			return nil
		},
	}

	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "Config file path (default: $PASSMNG_CONFIG or <user config dir>/passmng/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&storeDir, "store", "", "Password store directory (overrides $PASSMNG_STORE_DIR)")
	rootCmd.PersistentFlags().StringVar(&metricsFile, "metrics-file", "", "Write Prometheus metrics to this file after each command")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "Disable colored output")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "Enable debug logging")
	rootCmd.PersistentFlags().BoolVar(&nonInteractive, "non-interactive", false, "Never prompt; read secrets from stdin")

	rootCmd.AddCommand(
		commands.NewInitCommand(cfg),
		commands.NewInsertCommand(cfg),
		commands.NewShowCommand(cfg),
		commands.NewRemoveCommand(cfg),
		commands.NewListCommand(cfg),
		commands.NewGenerateCommand(cfg),
	)

	return rootCmd
}

func writeMetrics(cfg *config.Config) error {
	if cfg.Metrics == nil {
		return nil
	}
	path := cfg.MetricsFile()
	if path == "" {
		return nil
	}
	return cfg.Metrics.WriteTextfile(path)
}
