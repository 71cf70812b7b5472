package services

import (
	"context"

	"github.com/dranzd/storebunk-accounting/internal/dto"
)

// LedgerSvcFacade answers queries against the ledger read model. Results are
// eventually consistent with posted journal entries.
type LedgerSvcFacade interface {
	// GetAccountBalance returns an account's balance, zero if nothing was posted to it.
	GetAccountBalance(ctx context.Context, accountID string) (*dto.AccountBalanceResponse, error)

	// ListAccountPostings returns a page of an account's postings in posting order.
	ListAccountPostings(ctx context.Context, accountID string, params dto.ListPostingsParams) (*dto.ListPostingsResponse, error)

	// GetTrialBalance returns the balance of every posted account.
	GetTrialBalance(ctx context.Context) (*dto.ListBalancesResponse, error)
}
