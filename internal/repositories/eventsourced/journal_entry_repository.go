// Package eventsourced persists journal entries as event streams.
package eventsourced

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/dranzd/storebunk-accounting/internal/apperrors"
	"github.com/dranzd/storebunk-accounting/internal/core/domain"
	portsrepo "github.com/dranzd/storebunk-accounting/internal/core/ports/repositories"
	"github.com/dranzd/storebunk-accounting/internal/eventstore"
	"github.com/dranzd/storebunk-accounting/internal/platform/requestctx"
)

const streamPrefix = "journal-entry-"

// StreamID names the stream holding an entry's events.
func StreamID(entryID string) string {
	return streamPrefix + entryID
}

// EventStore is the part of the event store the repository needs.
type EventStore interface {
	AppendToStream(ctx context.Context, streamID string, expectedVersion int, records []eventstore.Record) ([]eventstore.Record, error)
	ReadStream(ctx context.Context, streamID string) ([]eventstore.Record, error)
	StreamExists(ctx context.Context, streamID string) (bool, error)
}

var _ EventStore = (*eventstore.Store)(nil)

// JournalEntryRepository stores entries in the event store, one stream per entry.
type JournalEntryRepository struct {
	store EventStore
}

// NewJournalEntryRepository creates a repository over store.
func NewJournalEntryRepository(store EventStore) *JournalEntryRepository {
	return &JournalEntryRepository{store: store}
}

var _ portsrepo.JournalEntryRepositoryFacade = (*JournalEntryRepository)(nil)

// Save appends the entry's staged events with an optimistic check against the
// version the entry was loaded at. The events stay staged if the append fails.
// The tenant in ctx is recorded in each record's metadata.
func (r *JournalEntryRepository) Save(ctx context.Context, entry *domain.Entry) error {
	staged := entry.StagedEvents()
	if len(staged) == 0 {
		return nil
	}

	var metadata map[string]string
	if tenant := requestctx.TenantIDFromContext(ctx); tenant != "" {
		metadata = map[string]string{eventstore.MetadataTenantID: tenant}
	}

	records := make([]eventstore.Record, len(staged))
	for i, evt := range staged {
		rec, err := EncodeEvent(evt)
		if err != nil {
			return err
		}
		rec.Metadata = metadata
		records[i] = rec
	}

	if _, err := r.store.AppendToStream(ctx, StreamID(entry.ID()), entry.PersistedVersion(), records); err != nil {
		return fmt.Errorf("failed to save journal entry %s: %w", entry.ID(), err)
	}
	entry.DrainStagedEvents()

	requestctx.LoggerFromContext(ctx).Debug("Journal entry saved",
		slog.String("entry_id", entry.ID()),
		slog.Int("events", len(records)),
		slog.Int("version", entry.Version()),
	)
	return nil
}

// Load reads and replays an entry's stream. When ctx carries a tenant, an
// entry created for a different tenant is reported as not found.
func (r *JournalEntryRepository) Load(ctx context.Context, entryID string) (*domain.Entry, error) {
	records, err := r.store.ReadStream(ctx, StreamID(entryID))
	if err != nil {
		return nil, fmt.Errorf("failed to read journal entry %s: %w", entryID, err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("%w: journal entry %s", apperrors.ErrNotFound, entryID)
	}
	if tenant := requestctx.TenantIDFromContext(ctx); tenant != "" {
		if owner := records[0].Tenant(); owner != "" && owner != tenant {
			return nil, fmt.Errorf("%w: journal entry %s", apperrors.ErrNotFound, entryID)
		}
	}

	events := make([]domain.Event, len(records))
	for i, rec := range records {
		evt, err := DecodeEvent(rec)
		if err != nil {
			return nil, err
		}
		events[i] = evt
	}
	return domain.Reconstitute(events)
}

// Exists reports whether any event was stored for entryID.
func (r *JournalEntryRepository) Exists(ctx context.Context, entryID string) (bool, error) {
	return r.store.StreamExists(ctx, StreamID(entryID))
}
