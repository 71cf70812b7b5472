package eventsourced

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/dranzd/storebunk-accounting/internal/apperrors"
	"github.com/dranzd/storebunk-accounting/internal/core/domain"
	"github.com/dranzd/storebunk-accounting/internal/eventstore"
)

const dateLayout = "2006-01-02"

type createdPayload struct {
	Date        string            `json:"date"`
	Description string            `json:"description"`
	Lines       []domain.LineData `json:"lines"`
}

type postedPayload struct {
	PostedAt time.Time `json:"postedAt"`
}

// EncodeEvent converts a domain event into a record ready for appending.
func EncodeEvent(evt domain.Event) (eventstore.Record, error) {
	var body any
	switch p := evt.Payload.(type) {
	case domain.EntryCreated:
		body = createdPayload{
			Date:        p.Date.Format(dateLayout),
			Description: p.Description,
			Lines:       p.Lines,
		}
	case domain.EntryPosted:
		body = postedPayload{PostedAt: p.PostedAt.UTC()}
	default:
		return eventstore.Record{}, fmt.Errorf("%w: cannot encode event %q", apperrors.ErrIntegrity, evt.Kind())
	}

	data, err := json.Marshal(body)
	if err != nil {
		return eventstore.Record{}, fmt.Errorf("failed to encode event %s: %w", evt.ID, err)
	}
	return eventstore.Record{
		EventID:     evt.ID,
		AggregateID: evt.AggregateID,
		Kind:        string(evt.Kind()),
		Payload:     data,
		OccurredAt:  evt.OccurredAt,
	}, nil
}

// DecodeEvent converts a stored record back into a domain event. Unknown kinds
// and malformed payloads are integrity errors.
func DecodeEvent(rec eventstore.Record) (domain.Event, error) {
	evt := domain.Event{
		ID:          rec.EventID,
		AggregateID: rec.AggregateID,
		OccurredAt:  rec.OccurredAt,
	}

	switch domain.EventKind(rec.Kind) {
	case domain.EventEntryCreated:
		var body createdPayload
		if err := json.Unmarshal(rec.Payload, &body); err != nil {
			return domain.Event{}, malformed(rec, err)
		}
		date, err := time.Parse(dateLayout, body.Date)
		if err != nil {
			return domain.Event{}, malformed(rec, err)
		}
		evt.Payload = domain.EntryCreated{Date: date, Description: body.Description, Lines: body.Lines}
	case domain.EventEntryPosted:
		var body postedPayload
		if err := json.Unmarshal(rec.Payload, &body); err != nil {
			return domain.Event{}, malformed(rec, err)
		}
		evt.Payload = domain.EntryPosted{PostedAt: body.PostedAt.UTC()}
	default:
		return domain.Event{}, fmt.Errorf("%w: unrecognized event kind %q in stream %s (event %s)",
			apperrors.ErrIntegrity, rec.Kind, rec.StreamID, rec.EventID)
	}
	return evt, nil
}

func malformed(rec eventstore.Record, err error) error {
	return fmt.Errorf("%w: malformed %s payload for event %s: %w", apperrors.ErrIntegrity, rec.Kind, rec.EventID, err)
}
