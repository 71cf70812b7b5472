package dto

import (
	"time"

	"github.com/dranzd/storebunk-accounting/internal/core/domain"
)

// EntryDateLayout is the wire format of journal entry dates.
const EntryDateLayout = "2006-01-02"

// JournalLineRequest is one line of a new journal entry. Amount is a decimal
// string with at most two fractional digits.
type JournalLineRequest struct {
	AccountID string `json:"accountID" binding:"required" validate:"required"`
	Amount    string `json:"amount" binding:"required" validate:"required,numeric"`
	Side      string `json:"side" binding:"required" validate:"required,oneof=debit credit DEBIT CREDIT"`
}

// CreateJournalEntryRequest defines the data needed to create a journal entry.
// EntryID is generated when empty; Post posts the entry in the same request.
type CreateJournalEntryRequest struct {
	EntryID     string               `json:"entryID" validate:"omitempty,max=64"`
	Date        string               `json:"date" binding:"required" validate:"required,datetime=2006-01-02"`
	Description string               `json:"description" binding:"required" validate:"required,max=500"`
	Lines       []JournalLineRequest `json:"lines" binding:"required,dive" validate:"required,min=2,dive"`
	Post        bool                 `json:"post"`
}

// ReverseJournalEntryRequest defines the data needed to reverse a posted entry.
type ReverseJournalEntryRequest struct {
	EntryID string `json:"entryID" validate:"omitempty,max=64"`
	Date    string `json:"date" binding:"required" validate:"required,datetime=2006-01-02"`
	Post    bool   `json:"post"`
}

// JournalLineResponse is one line of a journal entry.
type JournalLineResponse struct {
	AccountID string       `json:"accountID"`
	Amount    domain.Money `json:"amount"`
	Side      domain.Side  `json:"side"`
}

// JournalEntryResponse defines the data returned for a journal entry.
type JournalEntryResponse struct {
	EntryID     string                `json:"entryID"`
	Date        string                `json:"date"`
	Description string                `json:"description"`
	Status      domain.EntryStatus    `json:"status"`
	PostedAt    *time.Time            `json:"postedAt,omitempty"`
	Version     int                   `json:"version"`
	TotalDebit  domain.Money          `json:"totalDebit"`
	TotalCredit domain.Money          `json:"totalCredit"`
	Lines       []JournalLineResponse `json:"lines"`
}

// ToJournalEntryResponse converts a domain.Entry to JournalEntryResponse DTO
func ToJournalEntryResponse(e *domain.Entry) JournalEntryResponse {
	lines := e.Lines()
	res := JournalEntryResponse{
		EntryID:     e.ID(),
		Date:        e.Date().Format(EntryDateLayout),
		Description: e.Description(),
		Status:      e.Status(),
		Version:     e.Version(),
		Lines:       make([]JournalLineResponse, len(lines)),
	}
	res.TotalDebit, res.TotalCredit = e.Totals()
	if postedAt, ok := e.PostedAt(); ok {
		res.PostedAt = &postedAt
	}
	for i, l := range lines {
		res.Lines[i] = JournalLineResponse{AccountID: l.AccountID(), Amount: l.Amount(), Side: l.Side()}
	}
	return res
}
