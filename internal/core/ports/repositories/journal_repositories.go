package repositories

import (
	"context"

	"github.com/dranzd/storebunk-accounting/internal/core/domain"
)

// JournalEntryReader loads journal entries from their event streams.
type JournalEntryReader interface {
	// Load reconstitutes an entry, failing with ErrNotFound when its stream is empty.
	Load(ctx context.Context, entryID string) (*domain.Entry, error)

	// Exists reports whether the entry's stream has any events.
	Exists(ctx context.Context, entryID string) (bool, error)
}

// JournalEntryWriter persists journal entries.
type JournalEntryWriter interface {
	// Save appends the entry's staged events and clears them. Saving an entry
	// with nothing staged is a no-op.
	Save(ctx context.Context, entry *domain.Entry) error
}

// JournalEntryRepositoryFacade combines all journal entry repository interfaces
type JournalEntryRepositoryFacade interface {
	JournalEntryReader
	JournalEntryWriter
}
