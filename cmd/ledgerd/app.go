package main

import (
	"context"
	"fmt"
	"log/slog"

	portsrepo "github.com/dranzd/storebunk-accounting/internal/core/ports/repositories"
	"github.com/dranzd/storebunk-accounting/internal/eventstore"
	"github.com/dranzd/storebunk-accounting/internal/platform/config"
	"github.com/dranzd/storebunk-accounting/internal/projection"
	"github.com/dranzd/storebunk-accounting/internal/readmodel"
	"github.com/dranzd/storebunk-accounting/internal/repositories/database/memory"
	"github.com/dranzd/storebunk-accounting/internal/repositories/database/pgsql"
	"github.com/dranzd/storebunk-accounting/internal/repositories/database/sqlite"
	"github.com/dranzd/storebunk-accounting/internal/repositories/eventsourced"
	"github.com/dranzd/storebunk-accounting/pkg/database"
)

// application is the wired ledger core shared by the subcommands.
type application struct {
	repos      portsrepo.RepositoryProvider
	store      *eventstore.Store
	entries    *eventsourced.JournalEntryRepository
	ledger     *readmodel.Ledger
	projection *projection.LedgerProjection
}

func newApplication(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*application, error) {
	repos, err := openRepositories(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}

	store := eventstore.New(repos.EventBackend,
		eventstore.WithBackendName(cfg.EventStoreDriver),
		eventstore.WithRetry(cfg.DeliveryMaxAttempts, cfg.DeliveryRetryBackoff),
		eventstore.WithLogger(logger),
	)
	entries := eventsourced.NewJournalEntryRepository(store)
	ledger := readmodel.NewLedger()

	return &application{
		repos:   repos,
		store:   store,
		entries: entries,
		ledger:  ledger,
		projection: projection.NewLedgerProjection(entries, ledger,
			projection.WithDefaultTenant(cfg.DefaultTenant),
			projection.WithLogger(logger),
		),
	}, nil
}

// rebuild replays the event store into the empty read model.
func (a *application) rebuild(ctx context.Context) (int, error) {
	return a.projection.Rebuild(ctx, a.store)
}

// close drains event delivery, then releases storage.
func (a *application) close(ctx context.Context) error {
	storeErr := a.store.Close(ctx)
	if err := a.repos.Close(); err != nil {
		return err
	}
	return storeErr
}

func openRepositories(ctx context.Context, cfg *config.Config, logger *slog.Logger) (portsrepo.RepositoryProvider, error) {
	switch cfg.EventStoreDriver {
	case config.DriverMemory:
		return memory.NewRepositoryProvider(), nil
	case config.DriverSQLite:
		db, err := sqlite.Open(cfg.SQLitePath)
		if err != nil {
			return portsrepo.RepositoryProvider{}, err
		}
		logger.Info("SQLite database opened", slog.String("path", cfg.SQLitePath))
		return sqlite.NewRepositoryProvider(db), nil
	case config.DriverPostgres:
		pool, err := database.NewPgxPool(ctx, cfg.DatabaseURL, logger)
		if err != nil {
			return portsrepo.RepositoryProvider{}, err
		}
		return pgsql.NewRepositoryProvider(pool), nil
	default:
		return portsrepo.RepositoryProvider{}, fmt.Errorf("unknown event store driver %q", cfg.EventStoreDriver)
	}
}
