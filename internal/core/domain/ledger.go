package domain

import "time"

// Posting is one line of an account's ledger, derived from a posted entry.
// Exactly one of Debit and Credit is set.
type Posting struct {
	TenantID       string    `json:"tenantID"`
	AccountID      string    `json:"accountID"`
	EntryID        string    `json:"entryID"`
	Date           time.Time `json:"date"`
	Description    string    `json:"description"`
	Debit          *Money    `json:"debit,omitempty"`
	Credit         *Money    `json:"credit,omitempty"`
	RunningBalance Money     `json:"runningBalance"`
}

// Amount returns the signed effect of the posting on the balance.
func (p Posting) Amount() Money {
	var m Money
	if p.Debit != nil {
		m = m.Add(*p.Debit)
	}
	if p.Credit != nil {
		m = m.Sub(*p.Credit)
	}
	return m
}
