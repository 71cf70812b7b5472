package memory

import (
	portsrepo "github.com/dranzd/storebunk-accounting/internal/core/ports/repositories"
	"github.com/dranzd/storebunk-accounting/internal/eventstore"
)

// NewRepositoryProvider returns empty in-memory storage. Nothing survives the process.
func NewRepositoryProvider() portsrepo.RepositoryProvider {
	return portsrepo.RepositoryProvider{
		AccountRepo:  NewAccountRepository(),
		EventBackend: eventstore.NewMemoryBackend(),
		Close:        func() error { return nil },
	}
}
