package sqlite

import (
	"database/sql"

	portsrepo "github.com/dranzd/storebunk-accounting/internal/core/ports/repositories"
)

// NewRepositoryProvider wires the SQLite repositories over db. Close closes db.
func NewRepositoryProvider(db *sql.DB) portsrepo.RepositoryProvider {
	return portsrepo.RepositoryProvider{
		AccountRepo:  newAccountRepository(db),
		EventBackend: NewEventBackend(db),
		Close:        db.Close,
	}
}
