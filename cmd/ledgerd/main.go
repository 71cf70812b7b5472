// Command ledgerd runs the event-sourced double-entry ledger.
package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/dranzd/storebunk-accounting/internal/platform/config"
	"github.com/spf13/cobra"
)

// @title Storebunk Accounting Ledger API
// @version 1.0
// @description Event-sourced double-entry journal and ledger.

// @BasePath /api/v1

var (
	cfg    *config.Config
	logger *slog.Logger
)

var rootCmd = &cobra.Command{
	Use:   "ledgerd",
	Short: "Event-sourced double-entry ledger service",
	Long: `ledgerd records balanced journal entries as events and projects
posted entries into per-account ledgers. Without a subcommand it serves the
HTTP API.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.LoadConfig()
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		logger = newLogger(cfg.LogLevel)
		slog.SetDefault(logger)
		return nil
	},
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd, migrateCmd, rebuildCmd)
}

func newLogger(level string) *slog.Logger {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		lvl = slog.LevelInfo
	}
	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: lvl}))
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
