package services

import (
	"context"

	"github.com/dranzd/storebunk-accounting/internal/core/domain"
	"github.com/dranzd/storebunk-accounting/internal/dto"
)

// JournalReaderSvc defines read operations for journal entries
type JournalReaderSvc interface {
	// GetJournalEntry reconstitutes an entry from its event stream.
	GetJournalEntry(ctx context.Context, entryID string) (*domain.Entry, error)
}

// JournalWriterSvc defines the journal entry commands
type JournalWriterSvc interface {
	// CreateJournalEntry validates the request, checks every referenced account
	// exists and saves a new draft entry, posting it when requested.
	CreateJournalEntry(ctx context.Context, req dto.CreateJournalEntryRequest) (*domain.Entry, error)

	// PostJournalEntry posts a draft entry.
	PostJournalEntry(ctx context.Context, entryID string) (*domain.Entry, error)

	// ReverseJournalEntry creates an entry that undoes a posted one.
	ReverseJournalEntry(ctx context.Context, entryID string, req dto.ReverseJournalEntryRequest) (*domain.Entry, error)
}

// JournalSvcFacade combines all journal-related service interfaces
type JournalSvcFacade interface {
	JournalReaderSvc
	JournalWriterSvc
}
