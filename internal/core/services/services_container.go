package services

import (
	portsrepo "github.com/dranzd/storebunk-accounting/internal/core/ports/repositories"
	portssvc "github.com/dranzd/storebunk-accounting/internal/core/ports/services"
	"github.com/dranzd/storebunk-accounting/internal/platform/config"
)

// NewServiceContainer creates a new service container with properly initialized dependencies
func NewServiceContainer(
	cfg *config.Config,
	repos portsrepo.RepositoryProvider,
	entries portsrepo.JournalEntryRepositoryFacade,
	ledger portsrepo.LedgerReader,
) *portssvc.ServiceContainer {
	return &portssvc.ServiceContainer{
		Account: NewAccountService(repos.AccountRepo, cfg.DefaultTenant),
		Journal: NewJournalService(entries, repos.AccountRepo, cfg.DefaultTenant),
		Ledger:  NewLedgerService(ledger, repos.AccountRepo, cfg.DefaultTenant),
	}
}
