package main

import (
	"fmt"

	"github.com/dranzd/storebunk-accounting/internal/platform/config"
	"github.com/dranzd/storebunk-accounting/migrations"
	"github.com/dranzd/storebunk-accounting/pkg/database"
	"github.com/spf13/cobra"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply PostgreSQL schema migrations",
	Long: `Applies the embedded PostgreSQL migrations to PGSQL_URL. SQLite databases
are migrated automatically when opened.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if cfg.EventStoreDriver != config.DriverPostgres {
			return fmt.Errorf("migrate requires EVENT_STORE_DRIVER=%s, got %q", config.DriverPostgres, cfg.EventStoreDriver)
		}
		logger.Info("Running database migrations...")
		return database.MigratePostgres(cfg.DatabaseURL, migrations.Postgres, logger)
	},
}
