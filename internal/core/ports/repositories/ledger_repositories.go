package repositories

import (
	"context"
	"time"

	"github.com/dranzd/storebunk-accounting/internal/core/domain"
)

// LedgerReader is the query side of the ledger read model.
type LedgerReader interface {
	// GetAccountBalance returns the signed balance, zero if never posted.
	GetAccountBalance(ctx context.Context, tenantID, accountID string) (domain.Money, error)

	// GetLedgerPostings returns postings in posting order, filtered by an
	// inclusive date range. A nil bound is open.
	GetLedgerPostings(ctx context.Context, tenantID, accountID string, from, to *time.Time) ([]domain.Posting, error)

	// GetAllAccountBalances returns every posted account's balance for a tenant.
	GetAllAccountBalances(ctx context.Context, tenantID string) (map[string]domain.Money, error)
}

// LedgerWriter is the update side of the ledger read model, used only by the projection.
type LedgerWriter interface {
	// AddPosting applies one posting line. Exactly one of debit and credit must be non-nil.
	AddPosting(ctx context.Context, tenantID, accountID, entryID string, date time.Time, description string, debit, credit *domain.Money) error
}

// LedgerReadModel combines the read model interfaces
type LedgerReadModel interface {
	LedgerReader
	LedgerWriter
	// Reset discards every balance and posting.
	Reset()
}
