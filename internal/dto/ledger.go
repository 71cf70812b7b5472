package dto

import (
	"github.com/dranzd/storebunk-accounting/internal/core/domain"
)

// AccountBalanceResponse defines the data returned for an account balance query.
// Balance is signed (debits minus credits). NormalBalance is the same amount
// shown on the account's normal side and is omitted for accounts missing from
// the chart of accounts.
type AccountBalanceResponse struct {
	AccountID     string             `json:"accountID"`
	Balance       domain.Money       `json:"balance"`
	AccountType   domain.AccountType `json:"accountType,omitempty"`
	NormalBalance *domain.Money      `json:"normalBalance,omitempty"`
}

// ListBalancesResponse is a trial balance: every posted account plus the
// debit and credit column totals, which are equal for a consistent ledger.
type ListBalancesResponse struct {
	Balances    []AccountBalanceResponse `json:"balances"`
	TotalDebit  domain.Money             `json:"totalDebit"`
	TotalCredit domain.Money             `json:"totalCredit"`
}

// ListPostingsParams defines query parameters for an account's ledger postings.
type ListPostingsParams struct {
	From      string `form:"from" validate:"omitempty,datetime=2006-01-02"`
	To        string `form:"to" validate:"omitempty,datetime=2006-01-02"`
	Limit     int    `form:"limit,default=50" validate:"min=1,max=500"`
	NextToken string `form:"nextToken"`
}

// PostingResponse is one ledger line of an account.
type PostingResponse struct {
	EntryID        string        `json:"entryID"`
	Date           string        `json:"date"`
	Description    string        `json:"description"`
	Debit          *domain.Money `json:"debit,omitempty"`
	Credit         *domain.Money `json:"credit,omitempty"`
	RunningBalance domain.Money  `json:"runningBalance"`
}

// ListPostingsResponse wraps a page of postings. NextToken is empty on the last page.
type ListPostingsResponse struct {
	AccountID string            `json:"accountID"`
	Postings  []PostingResponse `json:"postings"`
	NextToken string            `json:"nextToken,omitempty"`
}

// ToPostingResponse converts a domain.Posting to PostingResponse DTO
func ToPostingResponse(p domain.Posting) PostingResponse {
	return PostingResponse{
		EntryID:        p.EntryID,
		Date:           p.Date.Format(EntryDateLayout),
		Description:    p.Description,
		Debit:          p.Debit,
		Credit:         p.Credit,
		RunningBalance: p.RunningBalance,
	}
}
