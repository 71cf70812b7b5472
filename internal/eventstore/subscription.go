package eventstore

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/dranzd/storebunk-accounting/internal/platform/metrics"
)

// Handler processes one record. A returned error (or panic) causes the record
// to be retried.
type Handler func(ctx context.Context, rec Record) error

// DeadLetter is a record whose handler kept failing.
type DeadLetter struct {
	Record   Record
	Err      error
	Attempts int
	FailedAt time.Time
}

// Subscription delivers records to one handler from its own queue.
type Subscription struct {
	name    string
	handler Handler
	store   *Store

	mu          sync.Mutex
	queue       []Record
	pending     int
	idle        chan struct{}
	deadLetters []DeadLetter
	stopping    bool

	wake    chan struct{}
	stopped chan struct{}
}

func newSubscription(store *Store, name string, handler Handler) *Subscription {
	idle := make(chan struct{})
	close(idle)
	return &Subscription{
		name:    name,
		handler: handler,
		store:   store,
		idle:    idle,
		wake:    make(chan struct{}, 1),
		stopped: make(chan struct{}),
	}
}

func (s *Subscription) Name() string { return s.name }

// Pending is the number of records queued or being handled.
func (s *Subscription) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pending
}

// DeadLetters returns the records parked so far.
func (s *Subscription) DeadLetters() []DeadLetter {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]DeadLetter, len(s.deadLetters))
	copy(out, s.deadLetters)
	return out
}

// WaitIdle blocks until the queue is empty and no record is being handled.
func (s *Subscription) WaitIdle(ctx context.Context) error {
	s.mu.Lock()
	idle := s.idle
	s.mu.Unlock()

	select {
	case <-idle:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *Subscription) enqueue(records []Record) {
	s.mu.Lock()
	if s.pending == 0 {
		s.idle = make(chan struct{})
	}
	s.queue = append(s.queue, records...)
	s.pending += len(records)
	metrics.DeliveryQueueDepth.WithLabelValues(s.name).Set(float64(s.pending))
	s.mu.Unlock()
	s.signal()
}

func (s *Subscription) stop() {
	s.mu.Lock()
	s.stopping = true
	s.mu.Unlock()
	s.signal()
}

func (s *Subscription) signal() {
	select {
	case s.wake <- struct{}{}:
	default:
	}
}

func (s *Subscription) run() {
	defer close(s.stopped)
	for {
		rec, ok := s.next()
		if !ok {
			return
		}
		s.deliver(rec)

		s.mu.Lock()
		s.pending--
		if s.pending == 0 {
			close(s.idle)
		}
		metrics.DeliveryQueueDepth.WithLabelValues(s.name).Set(float64(s.pending))
		s.mu.Unlock()
	}
}

// next blocks for the next queued record. It returns false once the
// subscription is stopping and the queue is drained.
func (s *Subscription) next() (Record, bool) {
	for {
		s.mu.Lock()
		if len(s.queue) > 0 {
			rec := s.queue[0]
			s.queue[0] = Record{}
			s.queue = s.queue[1:]
			s.mu.Unlock()
			return rec, true
		}
		stopping := s.stopping
		s.mu.Unlock()
		if stopping {
			return Record{}, false
		}
		<-s.wake
	}
}

func (s *Subscription) deliver(rec Record) {
	ctx := s.store.ctx
	logger := s.store.logger.With(
		slog.String("subscription", s.name),
		slog.String("event_id", rec.EventID),
		slog.String("stream_id", rec.StreamID),
		slog.String("kind", rec.Kind),
	)

	var err error
	attempts := 0
	for attempts < s.store.maxAttempts {
		attempts++
		if err = s.invoke(ctx, rec); err == nil {
			return
		}
		if ctx.Err() != nil || attempts == s.store.maxAttempts {
			break
		}
		metrics.DeliveryRetries.WithLabelValues(s.name).Inc()
		logger.Warn("Subscriber failed, retrying", slog.Int("attempt", attempts), slog.String("error", err.Error()))
		select {
		case <-time.After(s.store.backoff * time.Duration(attempts)):
		case <-ctx.Done():
		}
	}

	logger.Error("Subscriber gave up on record", slog.Int("attempts", attempts), slog.String("error", err.Error()))
	metrics.DeadLetters.WithLabelValues(s.name).Inc()
	s.mu.Lock()
	s.deadLetters = append(s.deadLetters, DeadLetter{
		Record:   rec,
		Err:      err,
		Attempts: attempts,
		FailedAt: time.Now().UTC(),
	})
	s.mu.Unlock()
}

func (s *Subscription) invoke(ctx context.Context, rec Record) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("subscriber %s panicked: %v", s.name, r)
		}
	}()
	return s.handler(ctx, rec)
}
