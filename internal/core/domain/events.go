package domain

import "time"

// EventKind discriminates journal entry events.
type EventKind string

const (
	// EventEntryCreated records a new draft entry with its lines.
	EventEntryCreated EventKind = "journal_entry.created"
	// EventEntryPosted records that an entry was posted to the ledger.
	EventEntryPosted EventKind = "journal_entry.posted"
)

// EventPayload is the kind-specific body of an Event.
type EventPayload interface {
	Kind() EventKind
}

// Event is an immutable fact about a journal entry.
type Event struct {
	ID          string
	AggregateID string
	OccurredAt  time.Time
	Payload     EventPayload
}

// Kind returns the payload kind, or "" for an event without payload.
func (e Event) Kind() EventKind {
	if e.Payload == nil {
		return ""
	}
	return e.Payload.Kind()
}

// EntryCreated carries everything needed to rebuild a draft entry.
type EntryCreated struct {
	Date        time.Time
	Description string
	Lines       []LineData
}

func (EntryCreated) Kind() EventKind { return EventEntryCreated }

// EntryPosted carries no line data; consumers reload the entry.
type EntryPosted struct {
	PostedAt time.Time
}

func (EntryPosted) Kind() EventKind { return EventEntryPosted }
