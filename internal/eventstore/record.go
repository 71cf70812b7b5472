// Package eventstore is an append-only, per-stream ordered log of journal
// events with optimistic concurrency and queued subscriber delivery.
package eventstore

import (
	"context"
	"fmt"
	"time"

	"github.com/dranzd/storebunk-accounting/internal/apperrors"
	"github.com/google/uuid"
)

// AnyVersion disables the optimistic concurrency check on append.
const AnyVersion = -1

// MetadataTenantID is the record metadata key carrying the tenant the event
// was written for.
const MetadataTenantID = "tenant_id"

// Record is the persisted form of an event.
type Record struct {
	EventID     string
	StreamID    string
	AggregateID string
	Kind        string
	// Version is the 1-based position of the record within its stream.
	Version int
	// Position is the global append order across all streams.
	Position   int64
	Payload    []byte
	Metadata   map[string]string
	OccurredAt time.Time
}

// Tenant returns the tenant recorded in the metadata, or "".
func (r Record) Tenant() string {
	return r.Metadata[MetadataTenantID]
}

// Backend is the storage behind a Store. Implementations must apply an append
// atomically: either every record is stored or none is.
type Backend interface {
	// Append stores records after the stream's current version and returns them
	// with StreamID, Version and Position assigned.
	Append(ctx context.Context, streamID string, expectedVersion int, records []Record) ([]Record, error)
	// Read returns the stream in version order, or an empty slice.
	Read(ctx context.Context, streamID string) ([]Record, error)
	// Version returns the stream's last version, 0 for an unknown stream.
	Version(ctx context.Context, streamID string) (int, error)
	// ReadAll returns every record in global position order.
	ReadAll(ctx context.Context) ([]Record, error)
}

// CheckExpectedVersion returns ErrConcurrency when expected is not AnyVersion
// and differs from current.
func CheckExpectedVersion(streamID string, expected, current int) error {
	if expected == AnyVersion || expected == current {
		return nil
	}
	return fmt.Errorf("%w: stream %s is at version %d, expected %d", apperrors.ErrConcurrency, streamID, current, expected)
}

// PrepareRecords stamps records for appending after version current. Missing
// event IDs, timestamps and payloads are filled in; the input is not modified.
func PrepareRecords(streamID string, current int, records []Record) ([]Record, error) {
	out := make([]Record, len(records))
	for i, r := range records {
		if r.Kind == "" {
			return nil, fmt.Errorf("%w: record %d for stream %s has no kind", apperrors.ErrValidation, i, streamID)
		}
		if r.EventID == "" {
			r.EventID = uuid.NewString()
		}
		if r.OccurredAt.IsZero() {
			r.OccurredAt = time.Now().UTC()
		}
		if r.Payload == nil {
			r.Payload = []byte("{}")
		}
		r.StreamID = streamID
		r.Version = current + i + 1
		out[i] = r
	}
	return out, nil
}
