// Package pgsql provides PostgreSQL-backed repositories on pgx.
package pgsql

import (
	"context"
	"errors"
	"fmt"

	"github.com/dranzd/storebunk-accounting/internal/apperrors"
	"github.com/dranzd/storebunk-accounting/internal/eventstore"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const (
	uniqueViolation       = "23505"
	eventIDConstraint     = "journal_events_event_id_key"
	selectRecordColumns   = `position, event_id, stream_id, version, aggregate_id, kind, payload, metadata, occurred_at`
	selectStreamVersion   = `SELECT COALESCE(MAX(version), 0) FROM journal_events WHERE stream_id = $1`
	insertRecordStatement = `
		INSERT INTO journal_events (event_id, stream_id, version, aggregate_id, kind, payload, metadata, occurred_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING position;
	`
)

// EventBackend stores event records in the journal_events table created by
// the migrations package.
type EventBackend struct {
	BaseRepository
}

var _ eventstore.Backend = (*EventBackend)(nil)

// NewEventBackend creates a backend over an open pool.
func NewEventBackend(pool *pgxpool.Pool) *EventBackend {
	return &EventBackend{BaseRepository: BaseRepository{Pool: pool}}
}

// Append writes records in one transaction. A transaction-scoped advisory lock
// on the stream serializes writers to the same stream across processes.
func (b *EventBackend) Append(ctx context.Context, streamID string, expectedVersion int, records []eventstore.Record) ([]eventstore.Record, error) {
	tx, err := b.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = b.Rollback(ctx, tx)
	}()

	if _, err := tx.Exec(ctx, `SELECT pg_advisory_xact_lock(hashtext($1))`, streamID); err != nil {
		return nil, fmt.Errorf("failed to lock stream %s: %w", streamID, err)
	}

	var current int
	if err := tx.QueryRow(ctx, selectStreamVersion, streamID).Scan(&current); err != nil {
		return nil, fmt.Errorf("failed to read version of stream %s: %w", streamID, err)
	}
	if err := eventstore.CheckExpectedVersion(streamID, expectedVersion, current); err != nil {
		return nil, err
	}
	prepared, err := eventstore.PrepareRecords(streamID, current, records)
	if err != nil {
		return nil, err
	}

	batch := &pgx.Batch{}
	for _, r := range prepared {
		meta := r.Metadata
		if meta == nil {
			meta = map[string]string{}
		}
		batch.Queue(insertRecordStatement,
			r.EventID,
			r.StreamID,
			r.Version,
			r.AggregateID,
			r.Kind,
			r.Payload,
			meta,
			r.OccurredAt.UTC(),
		)
	}

	br := tx.SendBatch(ctx, batch)
	for i := range prepared {
		if err := br.QueryRow().Scan(&prepared[i].Position); err != nil {
			_ = br.Close()
			return nil, mapInsertError(streamID, prepared[i], err)
		}
	}
	if err := br.Close(); err != nil {
		return nil, fmt.Errorf("failed to execute event batch for stream %s: %w", streamID, err)
	}

	if err := b.Commit(ctx, tx); err != nil {
		return nil, err
	}
	return prepared, nil
}

func (b *EventBackend) Read(ctx context.Context, streamID string) ([]eventstore.Record, error) {
	query := `SELECT ` + selectRecordColumns + ` FROM journal_events WHERE stream_id = $1 ORDER BY version`
	return b.query(ctx, query, streamID)
}

func (b *EventBackend) Version(ctx context.Context, streamID string) (int, error) {
	var v int
	if err := b.Pool.QueryRow(ctx, selectStreamVersion, streamID).Scan(&v); err != nil {
		return 0, fmt.Errorf("failed to read version of stream %s: %w", streamID, err)
	}
	return v, nil
}

func (b *EventBackend) ReadAll(ctx context.Context) ([]eventstore.Record, error) {
	return b.query(ctx, `SELECT `+selectRecordColumns+` FROM journal_events ORDER BY position`)
}

func (b *EventBackend) query(ctx context.Context, query string, args ...any) ([]eventstore.Record, error) {
	rows, err := b.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query events: %w", err)
	}
	defer rows.Close()

	out := []eventstore.Record{}
	for rows.Next() {
		var r eventstore.Record
		if err := rows.Scan(
			&r.Position,
			&r.EventID,
			&r.StreamID,
			&r.Version,
			&r.AggregateID,
			&r.Kind,
			&r.Payload,
			&r.Metadata,
			&r.OccurredAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan event: %w", err)
		}
		r.OccurredAt = r.OccurredAt.UTC()
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate events: %w", err)
	}
	return out, nil
}

// mapInsertError maps unique violations to ErrDuplicate for a reused event ID
// and ErrConcurrency for a taken stream version.
func mapInsertError(streamID string, r eventstore.Record, err error) error {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) || pgErr.Code != uniqueViolation {
		return fmt.Errorf("failed to insert event %s: %w", r.EventID, err)
	}
	if pgErr.ConstraintName == eventIDConstraint {
		return fmt.Errorf("%w: event %s already appended", apperrors.ErrDuplicate, r.EventID)
	}
	return fmt.Errorf("%w: stream %s version %d was written concurrently", apperrors.ErrConcurrency, streamID, r.Version)
}
