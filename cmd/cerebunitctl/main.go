package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"cerebunit/internal/config"
	"cerebunit/internal/logging"
	"cerebunit/pkg/cerebunit"
)

var version = "0.1.0-dev"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		stop()
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "cerebunitctl",
		Short: "Validate Purkinje cell models against experimental firing rates",
		Long: `cerebunitctl judges Purkinje cell models with validation tests.

Each test drives the model through a fixed simulation protocol, reduces the
recorded soma spike train to a mean firing rate and scores it against an
observed rate. Scores are kept in a store and can be listed or exported.`,
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().Bool("json", false, "Output as JSON")
	rootCmd.PersistentFlags().String("config", "", "Path to a YAML config file")
	rootCmd.PersistentFlags().String("store", "", "Score store backend (memory, sqlite)")
	rootCmd.PersistentFlags().String("db-path", "", "SQLite database path")

	rootCmd.AddCommand(
		newVersionCmd(),
		newTestsCmd(),
		newJudgeCmd(),
		newScoresCmd(),
		newExportCmd(),
	)
	return rootCmd
}

// openClient builds a client from the persistent flags. Flags win over the
// config file and environment.
func openClient(cmd *cobra.Command) (*cerebunit.Client, error) {
	configPath, _ := cmd.Flags().GetString("config")
	storeKind, _ := cmd.Flags().GetString("store")
	dbPath, _ := cmd.Flags().GetString("db-path")

	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return cerebunit.New(cmd.Context(), cerebunit.Options{
		StoreKind: storeKind,
		DBPath:    dbPath,
		Config:    cfg,
		Logger:    logging.NewLogger(cfg.Logging.Level, cmd.ErrOrStderr()),
	})
}

func writeJSON(w io.Writer, value any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(value)
}
