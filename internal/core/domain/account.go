package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/dranzd/storebunk-accounting/internal/apperrors"
)

// AccountType defines the fundamental accounting type of an account.
type AccountType string

const (
	Asset     AccountType = "ASSET"
	Liability AccountType = "LIABILITY"
	Equity    AccountType = "EQUITY"
	Revenue   AccountType = "REVENUE"
	Expense   AccountType = "EXPENSE"
)

// ParseAccountType accepts any case.
func ParseAccountType(s string) (AccountType, error) {
	t := AccountType(strings.ToUpper(strings.TrimSpace(s)))
	if !t.IsValid() {
		return "", fmt.Errorf("%w: invalid account type %q", apperrors.ErrValidation, s)
	}
	return t, nil
}

func (t AccountType) IsValid() bool {
	switch t {
	case Asset, Liability, Equity, Revenue, Expense:
		return true
	}
	return false
}

// NormalSide is the side that increases an account of this type.
func (t AccountType) NormalSide() Side {
	switch t {
	case Asset, Expense:
		return Debit
	default:
		return Credit
	}
}

func (t AccountType) IsBalanceSheet() bool {
	return t == Asset || t == Liability || t == Equity
}

func (t AccountType) IsIncomeStatement() bool {
	return t == Revenue || t == Expense
}

// Account represents an entry in the chart of accounts.
type Account struct {
	AccountID   string      `json:"accountID"`
	TenantID    string      `json:"tenantID"`
	Name        string      `json:"name"`
	AccountType AccountType `json:"accountType"`
	AuditFields
}

// NewAccount validates and builds an account.
func NewAccount(tenantID, accountID, name string, accountType AccountType, now time.Time) (Account, error) {
	accountID = strings.TrimSpace(accountID)
	name = strings.TrimSpace(name)
	if accountID == "" {
		return Account{}, fmt.Errorf("%w: account ID cannot be empty", apperrors.ErrValidation)
	}
	if name == "" {
		return Account{}, fmt.Errorf("%w: account name cannot be empty", apperrors.ErrValidation)
	}
	if !accountType.IsValid() {
		return Account{}, fmt.Errorf("%w: invalid account type %q", apperrors.ErrValidation, accountType)
	}
	return Account{
		AccountID:   accountID,
		TenantID:    tenantID,
		Name:        name,
		AccountType: accountType,
		AuditFields: AuditFields{CreatedAt: now, LastUpdatedAt: now},
	}, nil
}

// NormalBalance presents a signed ledger balance (debits minus credits) on the
// account's normal side, so a credit-normal account with credits shows positive.
func (a Account) NormalBalance(balance Money) Money {
	if a.AccountType.NormalSide() == Credit {
		return balance.Neg()
	}
	return balance
}
