package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/dranzd/storebunk-accounting/internal/apperrors"
	"github.com/dranzd/storebunk-accounting/internal/eventstore"
)

// EventBackend stores event records in the journal_events table.
type EventBackend struct {
	db *sql.DB
}

var _ eventstore.Backend = (*EventBackend)(nil)

func NewEventBackend(db *sql.DB) *EventBackend {
	return &EventBackend{db: db}
}

func (b *EventBackend) Append(ctx context.Context, streamID string, expectedVersion int, records []eventstore.Record) ([]eventstore.Record, error) {
	tx, err := b.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	var current int
	if err := tx.QueryRowContext(ctx,
		`SELECT COALESCE(MAX(version), 0) FROM journal_events WHERE stream_id = ?`, streamID,
	).Scan(&current); err != nil {
		return nil, fmt.Errorf("read stream version: %w", err)
	}
	if err := eventstore.CheckExpectedVersion(streamID, expectedVersion, current); err != nil {
		return nil, err
	}
	prepared, err := eventstore.PrepareRecords(streamID, current, records)
	if err != nil {
		return nil, err
	}

	stmt, err := tx.PrepareContext(ctx, `
INSERT INTO journal_events (event_id, stream_id, version, aggregate_id, kind, payload, metadata, occurred_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return nil, fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	for i, r := range prepared {
		meta, err := encodeMetadata(r.Metadata)
		if err != nil {
			return nil, err
		}
		res, err := stmt.ExecContext(ctx,
			r.EventID, r.StreamID, r.Version, r.AggregateID, r.Kind, r.Payload, meta, r.OccurredAt.UTC().UnixNano())
		if err != nil {
			return nil, mapInsertError(streamID, r, err)
		}
		pos, err := res.LastInsertId()
		if err != nil {
			return nil, fmt.Errorf("read position: %w", err)
		}
		prepared[i].Position = pos
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit append: %w", err)
	}
	return prepared, nil
}

func (b *EventBackend) Read(ctx context.Context, streamID string) ([]eventstore.Record, error) {
	return b.query(ctx, `
SELECT position, event_id, stream_id, version, aggregate_id, kind, payload, metadata, occurred_at
FROM journal_events WHERE stream_id = ? ORDER BY version`, streamID)
}

func (b *EventBackend) Version(ctx context.Context, streamID string) (int, error) {
	var v int
	if err := b.db.QueryRowContext(ctx,
		`SELECT COALESCE(MAX(version), 0) FROM journal_events WHERE stream_id = ?`, streamID,
	).Scan(&v); err != nil {
		return 0, fmt.Errorf("read stream version: %w", err)
	}
	return v, nil
}

func (b *EventBackend) ReadAll(ctx context.Context) ([]eventstore.Record, error) {
	return b.query(ctx, `
SELECT position, event_id, stream_id, version, aggregate_id, kind, payload, metadata, occurred_at
FROM journal_events ORDER BY position`)
}

func (b *EventBackend) query(ctx context.Context, query string, args ...any) ([]eventstore.Record, error) {
	rows, err := b.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query events: %w", err)
	}
	defer rows.Close()

	out := []eventstore.Record{}
	for rows.Next() {
		var (
			r          eventstore.Record
			meta       string
			occurredAt int64
		)
		if err := rows.Scan(&r.Position, &r.EventID, &r.StreamID, &r.Version, &r.AggregateID,
			&r.Kind, &r.Payload, &meta, &occurredAt); err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}
		if r.Metadata, err = decodeMetadata(meta); err != nil {
			return nil, fmt.Errorf("%w: event %s: %w", apperrors.ErrIntegrity, r.EventID, err)
		}
		r.OccurredAt = time.Unix(0, occurredAt).UTC()
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate events: %w", err)
	}
	return out, nil
}

func encodeMetadata(meta map[string]string) (string, error) {
	if len(meta) == 0 {
		return "{}", nil
	}
	data, err := json.Marshal(meta)
	if err != nil {
		return "", fmt.Errorf("encode metadata: %w", err)
	}
	return string(data), nil
}

func decodeMetadata(raw string) (map[string]string, error) {
	meta := map[string]string{}
	if raw == "" {
		return meta, nil
	}
	if err := json.Unmarshal([]byte(raw), &meta); err != nil {
		return nil, err
	}
	return meta, nil
}

// mapInsertError turns unique violations into ErrConcurrency (another writer
// took the version) or ErrDuplicate (the event ID was already stored).
func mapInsertError(streamID string, r eventstore.Record, err error) error {
	if !isConstraintError(err) {
		return fmt.Errorf("insert event: %w", err)
	}
	if strings.Contains(err.Error(), "event_id") {
		return fmt.Errorf("%w: event %s already appended", apperrors.ErrDuplicate, r.EventID)
	}
	return fmt.Errorf("%w: stream %s version %d was written concurrently", apperrors.ErrConcurrency, streamID, r.Version)
}
