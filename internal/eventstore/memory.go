package eventstore

import (
	"context"
	"fmt"
	"sync"

	"github.com/dranzd/storebunk-accounting/internal/apperrors"
)

// MemoryBackend keeps records in process memory. It is the default backend
// and the one used by tests.
type MemoryBackend struct {
	mu       sync.RWMutex
	streams  map[string][]Record
	all      []Record
	eventIDs map[string]struct{}
}

var _ Backend = (*MemoryBackend)(nil)

func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{
		streams:  make(map[string][]Record),
		eventIDs: make(map[string]struct{}),
	}
}

func (b *MemoryBackend) Append(ctx context.Context, streamID string, expectedVersion int, records []Record) ([]Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	b.mu.Lock()
	defer b.mu.Unlock()

	current := len(b.streams[streamID])
	if err := CheckExpectedVersion(streamID, expectedVersion, current); err != nil {
		return nil, err
	}
	prepared, err := PrepareRecords(streamID, current, records)
	if err != nil {
		return nil, err
	}
	seen := make(map[string]struct{}, len(prepared))
	for _, r := range prepared {
		_, stored := b.eventIDs[r.EventID]
		_, dup := seen[r.EventID]
		if stored || dup {
			return nil, fmt.Errorf("%w: event %s already appended", apperrors.ErrDuplicate, r.EventID)
		}
		seen[r.EventID] = struct{}{}
	}

	for i := range prepared {
		prepared[i].Position = int64(len(b.all) + 1)
		b.all = append(b.all, prepared[i])
		b.streams[streamID] = append(b.streams[streamID], prepared[i])
		b.eventIDs[prepared[i].EventID] = struct{}{}
	}
	return cloneRecords(prepared), nil
}

func (b *MemoryBackend) Read(ctx context.Context, streamID string) ([]Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	b.mu.RLock()
	defer b.mu.RUnlock()
	return cloneRecords(b.streams[streamID]), nil
}

func (b *MemoryBackend) Version(ctx context.Context, streamID string) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.streams[streamID]), nil
}

func (b *MemoryBackend) ReadAll(ctx context.Context) ([]Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	b.mu.RLock()
	defer b.mu.RUnlock()
	return cloneRecords(b.all), nil
}

func cloneRecords(in []Record) []Record {
	out := make([]Record, len(in))
	copy(out, in)
	return out
}
