// Package readmodel holds the in-memory ledger read model: account balances
// and posting history, written only by the ledger projection.
package readmodel

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/dranzd/storebunk-accounting/internal/apperrors"
	"github.com/dranzd/storebunk-accounting/internal/core/domain"
	portsrepo "github.com/dranzd/storebunk-accounting/internal/core/ports/repositories"
)

type accountLedger struct {
	mu       sync.Mutex
	balance  domain.Money
	postings []domain.Posting
}

// Ledger is safe for concurrent use. Updates to one (tenant, account) pair are
// serialized by that account's lock; different accounts proceed in parallel.
type Ledger struct {
	mu      sync.RWMutex
	tenants map[string]map[string]*accountLedger
}

var _ portsrepo.LedgerReadModel = (*Ledger)(nil)

func NewLedger() *Ledger {
	return &Ledger{tenants: make(map[string]map[string]*accountLedger)}
}

// AddPosting adds debit or credit (exactly one, positive) to the account's
// balance and appends a posting carrying the new running balance.
func (l *Ledger) AddPosting(ctx context.Context, tenantID, accountID, entryID string, date time.Time, description string, debit, credit *domain.Money) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := validatePosting(tenantID, accountID, entryID, debit, credit); err != nil {
		return err
	}

	acct := l.account(tenantID, accountID)
	acct.mu.Lock()
	defer acct.mu.Unlock()

	balance := acct.balance
	var err error
	if debit != nil {
		balance, err = balance.CheckedAdd(*debit)
	} else {
		balance, err = balance.CheckedSub(*credit)
	}
	if err != nil {
		return fmt.Errorf("%w: balance of %s overflows", apperrors.ErrValidation, accountID)
	}
	acct.balance = balance
	acct.postings = append(acct.postings, domain.Posting{
		TenantID:       tenantID,
		AccountID:      accountID,
		EntryID:        entryID,
		Date:           domain.DateOnly(date),
		Description:    description,
		Debit:          cloneMoney(debit),
		Credit:         cloneMoney(credit),
		RunningBalance: balance,
	})
	return nil
}

func validatePosting(tenantID, accountID, entryID string, debit, credit *domain.Money) error {
	switch {
	case strings.TrimSpace(tenantID) == "":
		return fmt.Errorf("%w: posting requires a tenant", apperrors.ErrValidation)
	case strings.TrimSpace(accountID) == "":
		return fmt.Errorf("%w: posting requires an account", apperrors.ErrValidation)
	case strings.TrimSpace(entryID) == "":
		return fmt.Errorf("%w: posting requires an entry", apperrors.ErrValidation)
	case (debit == nil) == (credit == nil):
		return fmt.Errorf("%w: posting to %s must carry exactly one of debit or credit", apperrors.ErrValidation, accountID)
	case debit != nil && !debit.IsPositive():
		return fmt.Errorf("%w: debit to %s must be positive, got %s", apperrors.ErrValidation, accountID, debit)
	case credit != nil && !credit.IsPositive():
		return fmt.Errorf("%w: credit to %s must be positive, got %s", apperrors.ErrValidation, accountID, credit)
	}
	return nil
}

// account returns the ledger for (tenantID, accountID), creating it if needed.
func (l *Ledger) account(tenantID, accountID string) *accountLedger {
	l.mu.RLock()
	acct := l.tenants[tenantID][accountID]
	l.mu.RUnlock()
	if acct != nil {
		return acct
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	accounts, ok := l.tenants[tenantID]
	if !ok {
		accounts = make(map[string]*accountLedger)
		l.tenants[tenantID] = accounts
	}
	if acct, ok = accounts[accountID]; !ok {
		acct = &accountLedger{}
		accounts[accountID] = acct
	}
	return acct
}

func (l *Ledger) lookup(tenantID, accountID string) *accountLedger {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.tenants[tenantID][accountID]
}

// GetAccountBalance returns zero for an account that was never posted to.
func (l *Ledger) GetAccountBalance(ctx context.Context, tenantID, accountID string) (domain.Money, error) {
	if err := ctx.Err(); err != nil {
		return domain.ZeroMoney, err
	}
	acct := l.lookup(tenantID, accountID)
	if acct == nil {
		return domain.ZeroMoney, nil
	}
	acct.mu.Lock()
	defer acct.mu.Unlock()
	return acct.balance, nil
}

// GetLedgerPostings returns the account's postings in posting order whose date
// falls within [from, to]. Bounds compare calendar dates; nil means open.
func (l *Ledger) GetLedgerPostings(ctx context.Context, tenantID, accountID string, from, to *time.Time) ([]domain.Posting, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	out := []domain.Posting{}
	acct := l.lookup(tenantID, accountID)
	if acct == nil {
		return out, nil
	}

	var fromDate, toDate time.Time
	if from != nil {
		fromDate = domain.DateOnly(*from)
	}
	if to != nil {
		toDate = domain.DateOnly(*to)
	}

	acct.mu.Lock()
	defer acct.mu.Unlock()
	for _, p := range acct.postings {
		if from != nil && p.Date.Before(fromDate) {
			continue
		}
		if to != nil && p.Date.After(toDate) {
			continue
		}
		p.Debit = cloneMoney(p.Debit)
		p.Credit = cloneMoney(p.Credit)
		out = append(out, p)
	}
	return out, nil
}

// GetAllAccountBalances returns every account of the tenant that has postings.
func (l *Ledger) GetAllAccountBalances(ctx context.Context, tenantID string) (map[string]domain.Money, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	l.mu.RLock()
	accounts := make(map[string]*accountLedger, len(l.tenants[tenantID]))
	for id, acct := range l.tenants[tenantID] {
		accounts[id] = acct
	}
	l.mu.RUnlock()

	out := make(map[string]domain.Money, len(accounts))
	for id, acct := range accounts {
		acct.mu.Lock()
		out[id] = acct.balance
		acct.mu.Unlock()
	}
	return out, nil
}

// Tenants lists tenants with at least one posting, sorted.
func (l *Ledger) Tenants() []string {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make([]string, 0, len(l.tenants))
	for t := range l.tenants {
		out = append(out, t)
	}
	sort.Strings(out)
	return out
}

// Reset clears every tenant. Callers must not post concurrently.
func (l *Ledger) Reset() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.tenants = make(map[string]map[string]*accountLedger)
}

func cloneMoney(m *domain.Money) *domain.Money {
	if m == nil {
		return nil
	}
	c := *m
	return &c
}
