package eventstore

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/dranzd/storebunk-accounting/internal/apperrors"
	"github.com/dranzd/storebunk-accounting/internal/platform/metrics"
)

const (
	defaultMaxAttempts = 5
	defaultBackoff     = 50 * time.Millisecond
)

// Option configures a Store.
type Option func(*Store)

// WithLogger sets the logger used for delivery failures.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Store) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithRetry sets how many times a handler is attempted per record and the base
// delay between attempts. The delay grows linearly with the attempt number.
func WithRetry(maxAttempts int, backoff time.Duration) Option {
	return func(s *Store) {
		if maxAttempts > 0 {
			s.maxAttempts = maxAttempts
		}
		if backoff >= 0 {
			s.backoff = backoff
		}
	}
}

// WithBackendName labels append metrics.
func WithBackendName(name string) Option {
	return func(s *Store) { s.backendName = name }
}

// Store appends records through a Backend and fans them out to subscribers.
// Each subscription has its own unbounded queue and goroutine, so appends never
// wait on handlers.
type Store struct {
	backend     Backend
	backendName string
	logger      *slog.Logger
	maxAttempts int
	backoff     time.Duration

	// ctx is cancelled when Close gives up waiting, aborting pending retries.
	ctx    context.Context
	cancel context.CancelFunc

	// mu serializes append+enqueue so every subscriber sees global append order.
	mu     sync.Mutex
	subs   []*Subscription
	closed bool
}

// New returns a Store over backend.
func New(backend Backend, opts ...Option) *Store {
	ctx, cancel := context.WithCancel(context.Background())
	s := &Store{
		backend:     backend,
		backendName: "memory",
		logger:      slog.Default(),
		maxAttempts: defaultMaxAttempts,
		backoff:     defaultBackoff,
		ctx:         ctx,
		cancel:      cancel,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// AppendToStream appends records to streamID in order. With expectedVersion
// other than AnyVersion the append fails with ErrConcurrency, storing nothing,
// unless the stream is exactly at that version. Appending no records is a no-op.
func (s *Store) AppendToStream(ctx context.Context, streamID string, expectedVersion int, records []Record) ([]Record, error) {
	if streamID == "" {
		return nil, fmt.Errorf("%w: stream ID cannot be empty", apperrors.ErrValidation)
	}
	if len(records) == 0 {
		return nil, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil, fmt.Errorf("%w: event store is closed", apperrors.ErrState)
	}

	start := time.Now()
	stored, err := s.backend.Append(ctx, streamID, expectedVersion, records)
	metrics.ObserveSince(metrics.AppendDuration.WithLabelValues(s.backendName), start)
	if err != nil {
		if errors.Is(err, apperrors.ErrConcurrency) {
			metrics.AppendConflicts.Inc()
		}
		return nil, err
	}

	for _, r := range stored {
		metrics.EventsAppended.WithLabelValues(r.Kind).Inc()
	}
	for _, sub := range s.subs {
		sub.enqueue(stored)
	}
	return stored, nil
}

// ReadStream returns the stream in order; an unknown stream yields an empty slice.
func (s *Store) ReadStream(ctx context.Context, streamID string) ([]Record, error) {
	return s.backend.Read(ctx, streamID)
}

// StreamExists reports whether at least one record was appended to streamID.
func (s *Store) StreamExists(ctx context.Context, streamID string) (bool, error) {
	v, err := s.backend.Version(ctx, streamID)
	if err != nil {
		return false, err
	}
	return v > 0, nil
}

// ReadAll returns every record in global append order.
func (s *Store) ReadAll(ctx context.Context) ([]Record, error) {
	return s.backend.ReadAll(ctx)
}

// Subscribe registers handler for every record appended from now on. Records
// are delivered in global append order, at least once.
func (s *Store) Subscribe(name string, handler Handler) *Subscription {
	sub := newSubscription(s, name, handler)

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		sub.stop()
		return sub
	}
	s.subs = append(s.subs, sub)
	go sub.run()
	return sub
}

// WaitIdle blocks until every subscription has handled everything queued so
// far, or ctx is done.
func (s *Store) WaitIdle(ctx context.Context) error {
	s.mu.Lock()
	subs := append([]*Subscription(nil), s.subs...)
	s.mu.Unlock()

	for _, sub := range subs {
		if err := sub.WaitIdle(ctx); err != nil {
			return err
		}
	}
	return nil
}

// Close rejects further appends, lets every subscription drain its queue and
// stops the delivery goroutines. If ctx ends first, pending retries are
// abandoned and ctx's error is returned.
func (s *Store) Close(ctx context.Context) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	subs := append([]*Subscription(nil), s.subs...)
	s.mu.Unlock()

	for _, sub := range subs {
		sub.stop()
	}
	for _, sub := range subs {
		select {
		case <-sub.stopped:
		case <-ctx.Done():
			s.cancel()
			return ctx.Err()
		}
	}
	s.cancel()
	return nil
}
