package repositories

import "github.com/dranzd/storebunk-accounting/internal/eventstore"

// RepositoryProvider holds the storage a driver supplies to the application.
// This makes passing dependencies to the service container constructor cleaner.
type RepositoryProvider struct {
	AccountRepo  AccountRepositoryFacade
	EventBackend eventstore.Backend
	// Close releases the driver's connections.
	Close func() error
}
