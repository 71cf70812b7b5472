package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/dranzd/storebunk-accounting/internal/apperrors"
	"github.com/google/uuid"
)

// EntryStatus indicates the lifecycle state of a journal entry.
type EntryStatus string

const (
	Draft  EntryStatus = "draft"
	Posted EntryStatus = "posted"
)

// CanPost reports whether an entry in this status may be posted.
func (s EntryStatus) CanPost() bool {
	return s == Draft
}

// MinLines is the minimum number of lines a journal entry must carry.
const MinLines = 2

// Entry is the journal entry aggregate root. It records one balanced financial
// transaction and is the unit of consistency and concurrency.
//
// Entries are built with NewEntry or Reconstitute; the zero value is not usable.
// An Entry is not safe for concurrent use.
type Entry struct {
	id          string
	date        time.Time
	description string
	lines       []Line
	status      EntryStatus
	postedAt    time.Time

	version int
	staged  []Event
}

// NewEntry validates the input and returns a Draft entry with one staged
// EntryCreated event. Every failure wraps apperrors.ErrValidation.
func NewEntry(id string, date time.Time, description string, lines []Line) (*Entry, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, fmt.Errorf("%w: journal entry ID cannot be empty", apperrors.ErrValidation)
	}
	description = strings.TrimSpace(description)
	if description == "" {
		return nil, fmt.Errorf("%w: journal entry description cannot be empty", apperrors.ErrValidation)
	}
	if date.IsZero() {
		return nil, fmt.Errorf("%w: journal entry date is required", apperrors.ErrValidation)
	}
	if err := validateLines(lines); err != nil {
		return nil, err
	}

	data := make([]LineData, len(lines))
	for i, l := range lines {
		data[i] = l.Data()
	}

	e := &Entry{}
	if err := e.record(id, EntryCreated{
		Date:        DateOnly(date),
		Description: description,
		Lines:       data,
	}); err != nil {
		return nil, err
	}
	return e, nil
}

// Reconstitute rebuilds an entry by replaying its history in order.
func Reconstitute(events []Event) (*Entry, error) {
	if len(events) == 0 {
		return nil, fmt.Errorf("%w: cannot reconstitute journal entry from empty history", apperrors.ErrIntegrity)
	}
	if _, ok := events[0].Payload.(EntryCreated); !ok {
		return nil, fmt.Errorf("%w: journal entry history for %s must start with %s, got %q",
			apperrors.ErrIntegrity, events[0].AggregateID, EventEntryCreated, events[0].Kind())
	}
	e := &Entry{}
	for _, evt := range events {
		if err := e.Apply(evt); err != nil {
			return nil, err
		}
	}
	return e, nil
}

// Post transitions a Draft entry to Posted and stages an EntryPosted event.
func (e *Entry) Post() error {
	if !e.status.CanPost() {
		return fmt.Errorf("%w: journal entry %s cannot be posted in status %q", apperrors.ErrState, e.id, e.status)
	}
	if err := validateBalance(e.lines); err != nil {
		return err
	}
	return e.record(e.id, EntryPosted{PostedAt: time.Now().UTC()})
}

// Apply folds one event into the entry's state. It is used both for freshly
// staged events and for replay, and rejects unknown events with ErrIntegrity.
func (e *Entry) Apply(evt Event) error {
	switch p := evt.Payload.(type) {
	case EntryCreated:
		if err := e.applyCreated(evt, p); err != nil {
			return err
		}
	case EntryPosted:
		if err := e.applyPosted(evt, p); err != nil {
			return err
		}
	default:
		return fmt.Errorf("%w: unrecognized event %q (%s) for journal entry %s",
			apperrors.ErrIntegrity, evt.Kind(), evt.ID, evt.AggregateID)
	}
	e.version++
	return nil
}

func (e *Entry) applyCreated(evt Event, p EntryCreated) error {
	if e.id != "" {
		return fmt.Errorf("%w: journal entry %s was already created", apperrors.ErrIntegrity, e.id)
	}
	if strings.TrimSpace(evt.AggregateID) == "" {
		return fmt.Errorf("%w: created event %s has no aggregate ID", apperrors.ErrIntegrity, evt.ID)
	}
	lines := make([]Line, len(p.Lines))
	for i, data := range p.Lines {
		l, err := LineFromData(data)
		if err != nil {
			return fmt.Errorf("%w: created event %s carries invalid line %d: %w", apperrors.ErrIntegrity, evt.ID, i, err)
		}
		lines[i] = l
	}
	if err := validateLines(lines); err != nil {
		return fmt.Errorf("%w: created event %s: %w", apperrors.ErrIntegrity, evt.ID, err)
	}

	e.id = evt.AggregateID
	e.date = DateOnly(p.Date)
	e.description = p.Description
	e.lines = lines
	e.status = Draft
	return nil
}

func (e *Entry) applyPosted(evt Event, p EntryPosted) error {
	if e.id == "" || evt.AggregateID != e.id {
		return fmt.Errorf("%w: posted event %s does not belong to journal entry %q", apperrors.ErrIntegrity, evt.ID, e.id)
	}
	if e.status != Draft {
		return fmt.Errorf("%w: journal entry %s posted while in status %q", apperrors.ErrIntegrity, e.id, e.status)
	}
	e.status = Posted
	e.postedAt = p.PostedAt
	return nil
}

// record applies a new event and stages it for persistence. State only changes
// when apply succeeds, so a failed operation leaves nothing staged.
func (e *Entry) record(aggregateID string, payload EventPayload) error {
	evt := Event{
		ID:          uuid.NewString(),
		AggregateID: aggregateID,
		OccurredAt:  time.Now().UTC(),
		Payload:     payload,
	}
	if err := e.Apply(evt); err != nil {
		return err
	}
	e.staged = append(e.staged, evt)
	return nil
}

// StagedEvents returns a copy of the events not yet persisted.
func (e *Entry) StagedEvents() []Event {
	out := make([]Event, len(e.staged))
	copy(out, e.staged)
	return out
}

// DrainStagedEvents returns the staged events and clears them.
func (e *Entry) DrainStagedEvents() []Event {
	out := e.staged
	e.staged = nil
	return out
}

// Version is the number of events applied to this entry, staged ones included.
func (e *Entry) Version() int { return e.version }

// PersistedVersion is the stream version this entry was loaded at, i.e. the
// expected version for appending its staged events.
func (e *Entry) PersistedVersion() int { return e.version - len(e.staged) }

func (e *Entry) ID() string          { return e.id }
func (e *Entry) Date() time.Time     { return e.date }
func (e *Entry) Description() string { return e.description }
func (e *Entry) Status() EntryStatus { return e.status }

// Lines returns a copy of the entry's lines in order.
func (e *Entry) Lines() []Line {
	out := make([]Line, len(e.lines))
	copy(out, e.lines)
	return out
}

// PostedAt returns the posting time; ok is false while the entry is a draft.
func (e *Entry) PostedAt() (postedAt time.Time, ok bool) {
	return e.postedAt, e.status == Posted
}

// Totals returns the debit and credit sums. Entries built by NewEntry or
// Reconstitute always have sums that fit.
func (e *Entry) Totals() (debits, credits Money) {
	debits, credits, _ = sumSides(e.lines)
	return debits, credits
}

// Reverse builds a Draft entry that undoes a posted one: same accounts and
// amounts with every side flipped.
func Reverse(id string, date time.Time, original *Entry) (*Entry, error) {
	if original == nil {
		return nil, fmt.Errorf("%w: nothing to reverse", apperrors.ErrValidation)
	}
	if original.status != Posted {
		return nil, fmt.Errorf("%w: journal entry %s must be posted to be reversed, status is %q", apperrors.ErrState, original.id, original.status)
	}
	lines := make([]Line, len(original.lines))
	for i, l := range original.lines {
		lines[i] = Line{accountID: l.accountID, amount: l.amount, side: l.side.Opposite()}
	}
	return NewEntry(id, date, "Reversal of "+original.description, lines)
}

func validateLines(lines []Line) error {
	if len(lines) < MinLines {
		return fmt.Errorf("%w: journal entry must have at least %d lines, got %d", apperrors.ErrValidation, MinLines, len(lines))
	}
	for _, l := range lines {
		if err := l.validate(); err != nil {
			return err
		}
	}
	return validateBalance(lines)
}

func validateBalance(lines []Line) error {
	debits, credits, err := sumSides(lines)
	if err != nil {
		return err
	}
	if !debits.Equal(credits) {
		return fmt.Errorf("%w: journal entry must balance, debits %s, credits %s", apperrors.ErrValidation, debits, credits)
	}
	return nil
}

func sumSides(lines []Line) (debits, credits Money, err error) {
	for _, l := range lines {
		if l.side == Debit {
			debits, err = debits.CheckedAdd(l.amount)
		} else {
			credits, err = credits.CheckedAdd(l.amount)
		}
		if err != nil {
			return Money{}, Money{}, fmt.Errorf("%w: journal entry %s total overflows", apperrors.ErrValidation, l.side)
		}
	}
	return debits, credits, nil
}

// DateOnly returns the calendar date of t in t's own location, expressed as
// midnight UTC.
func DateOnly(t time.Time) time.Time {
	if t.IsZero() {
		return t
	}
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
