// Package projection folds posted journal entries into the ledger read model.
package projection

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/dranzd/storebunk-accounting/internal/apperrors"
	"github.com/dranzd/storebunk-accounting/internal/core/domain"
	portsrepo "github.com/dranzd/storebunk-accounting/internal/core/ports/repositories"
	"github.com/dranzd/storebunk-accounting/internal/eventstore"
	"github.com/dranzd/storebunk-accounting/internal/platform/metrics"
	"github.com/dranzd/storebunk-accounting/internal/platform/requestctx"
)

// SubscriptionName identifies the projection's event store subscription.
const SubscriptionName = "ledger-projection"

// Ledger is the read model the projection writes to.
type Ledger interface {
	portsrepo.LedgerWriter
	Reset()
}

// RecordSource supplies the full event history for a rebuild.
type RecordSource interface {
	ReadAll(ctx context.Context) ([]eventstore.Record, error)
}

// Option configures a LedgerProjection.
type Option func(*LedgerProjection)

// WithDefaultTenant sets the tenant used for records that carry none.
func WithDefaultTenant(tenantID string) Option {
	return func(p *LedgerProjection) {
		if tenantID != "" {
			p.defaultTenant = tenantID
		}
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(p *LedgerProjection) {
		if logger != nil {
			p.logger = logger
		}
	}
}

type deliveryKey struct {
	entryID string
	eventID string
}

// LedgerProjection turns each posted event into one posting per entry line.
//
// The posted event carries no lines, so the entry is reloaded through the
// repository. Deliveries are de-duplicated by (entry ID, event ID), and progress
// is tracked per line so a retry after a partial failure resumes where it left
// off instead of posting earlier lines twice.
type LedgerProjection struct {
	entries       portsrepo.JournalEntryReader
	ledger        Ledger
	defaultTenant string
	logger        *slog.Logger

	mu       sync.Mutex
	progress map[deliveryKey]int
	done     map[deliveryKey]struct{}
}

// NewLedgerProjection creates a projection reading entries from entries and
// writing postings to ledger.
func NewLedgerProjection(entries portsrepo.JournalEntryReader, ledger Ledger, opts ...Option) *LedgerProjection {
	p := &LedgerProjection{
		entries:       entries,
		ledger:        ledger,
		defaultTenant: requestctx.DefaultTenant,
		logger:        slog.Default(),
		progress:      make(map[deliveryKey]int),
		done:          make(map[deliveryKey]struct{}),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Subscribe registers the projection with store.
func (p *LedgerProjection) Subscribe(store *eventstore.Store) *eventstore.Subscription {
	return store.Subscribe(SubscriptionName, p.Handle)
}

// Handle projects one record. Records other than posted events are ignored.
func (p *LedgerProjection) Handle(ctx context.Context, rec eventstore.Record) error {
	if domain.EventKind(rec.Kind) != domain.EventEntryPosted {
		return nil
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	return p.apply(ctx, rec)
}

func (p *LedgerProjection) apply(ctx context.Context, rec eventstore.Record) error {
	key := deliveryKey{entryID: rec.AggregateID, eventID: rec.EventID}
	if _, ok := p.done[key]; ok {
		metrics.DuplicateDeliveries.Inc()
		p.logger.Debug("Skipping already projected event",
			slog.String("entry_id", rec.AggregateID), slog.String("event_id", rec.EventID))
		return nil
	}

	entry, err := p.entries.Load(ctx, rec.AggregateID)
	if err != nil {
		return fmt.Errorf("failed to load journal entry %s for projection: %w", rec.AggregateID, err)
	}
	if entry.Status() != domain.Posted {
		return fmt.Errorf("%w: journal entry %s has a posted event but status %q", apperrors.ErrIntegrity, entry.ID(), entry.Status())
	}

	tenant := rec.Tenant()
	if tenant == "" {
		tenant = p.defaultTenant
	}

	lines := entry.Lines()
	for i := p.progress[key]; i < len(lines); i++ {
		line := lines[i]
		amount := line.Amount()
		var debit, credit *domain.Money
		if line.Side() == domain.Debit {
			debit = &amount
		} else {
			credit = &amount
		}
		if err := p.ledger.AddPosting(ctx, tenant, line.AccountID(), entry.ID(), entry.Date(), entry.Description(), debit, credit); err != nil {
			return fmt.Errorf("failed to post line %d of journal entry %s: %w", i, entry.ID(), err)
		}
		p.progress[key] = i + 1
		metrics.PostingsRecorded.Inc()
	}

	delete(p.progress, key)
	p.done[key] = struct{}{}
	p.logger.Info("Projected journal entry",
		slog.String("entry_id", entry.ID()),
		slog.String("tenant_id", tenant),
		slog.Int("lines", len(lines)),
	)
	return nil
}

// Rebuild clears the ledger and replays every posted event from source.
// Live deliveries are held off until the rebuild finishes.
func (p *LedgerProjection) Rebuild(ctx context.Context, source RecordSource) (int, error) {
	records, err := source.ReadAll(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to read event history: %w", err)
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	p.ledger.Reset()
	p.progress = make(map[deliveryKey]int)
	p.done = make(map[deliveryKey]struct{})

	projected := 0
	for _, rec := range records {
		if domain.EventKind(rec.Kind) != domain.EventEntryPosted {
			continue
		}
		if err := p.apply(ctx, rec); err != nil {
			return projected, err
		}
		projected++
	}
	p.logger.Info("Ledger rebuilt", slog.Int("records", len(records)), slog.Int("posted_entries", projected))
	return projected, nil
}
