package eventsourced

import (
	"context"
	"testing"
	"time"

	"github.com/dranzd/storebunk-accounting/internal/apperrors"
	"github.com/dranzd/storebunk-accounting/internal/core/domain"
	"github.com/dranzd/storebunk-accounting/internal/eventstore"
	"github.com/dranzd/storebunk-accounting/internal/platform/requestctx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

type JournalEntryRepositoryTestSuite struct {
	suite.Suite
	ctx   context.Context
	store *eventstore.Store
	repo  *JournalEntryRepository
}

func (s *JournalEntryRepositoryTestSuite) SetupTest() {
	s.ctx = requestctx.WithTenantID(context.Background(), "acme")
	s.store = eventstore.New(eventstore.NewMemoryBackend())
	s.repo = NewJournalEntryRepository(s.store)
}

func (s *JournalEntryRepositoryTestSuite) TearDownTest() {
	s.Require().NoError(s.store.Close(context.Background()))
}

func TestJournalEntryRepositoryTestSuite(t *testing.T) {
	suite.Run(t, new(JournalEntryRepositoryTestSuite))
}

func (s *JournalEntryRepositoryTestSuite) newEntry(id string) *domain.Entry {
	debit, err := domain.NewLine("1000", domain.MoneyFromCents(10000), domain.Debit)
	s.Require().NoError(err)
	credit, err := domain.NewLine("4000", domain.MoneyFromCents(10000), domain.Credit)
	s.Require().NoError(err)
	e, err := domain.NewEntry(id, time.Date(2025, 11, 20, 0, 0, 0, 0, time.UTC), "Cash sale", []domain.Line{debit, credit})
	s.Require().NoError(err)
	return e
}

func (s *JournalEntryRepositoryTestSuite) TestSaveAndLoad() {
	entry := s.newEntry("JE-001")
	s.Require().NoError(entry.Post())

	s.Require().NoError(s.repo.Save(s.ctx, entry))
	s.Empty(entry.StagedEvents(), "save drains staged events")

	records, err := s.store.ReadStream(s.ctx, "journal-entry-JE-001")
	s.Require().NoError(err)
	s.Require().Len(records, 2)
	s.Equal(string(domain.EventEntryCreated), records[0].Kind)
	s.Equal(string(domain.EventEntryPosted), records[1].Kind)
	s.Equal("acme", records[0].Tenant())
	s.Equal("JE-001", records[1].AggregateID)

	loaded, err := s.repo.Load(s.ctx, "JE-001")
	s.Require().NoError(err)
	s.Equal(entry.ID(), loaded.ID())
	s.Equal(entry.Date(), loaded.Date())
	s.Equal(entry.Description(), loaded.Description())
	s.Equal(entry.Lines(), loaded.Lines())
	s.Equal(domain.Posted, loaded.Status())
	want, _ := entry.PostedAt()
	got, _ := loaded.PostedAt()
	s.True(want.Equal(got))
	s.Equal(2, loaded.Version())
}

func (s *JournalEntryRepositoryTestSuite) TestSaveWithNothingStagedIsNoop() {
	entry := s.newEntry("JE-001")
	s.Require().NoError(s.repo.Save(s.ctx, entry))
	s.Require().NoError(s.repo.Save(s.ctx, entry))

	records, err := s.store.ReadStream(s.ctx, StreamID("JE-001"))
	s.Require().NoError(err)
	s.Len(records, 1)
}

func (s *JournalEntryRepositoryTestSuite) TestSaveDraftThenPostAcrossLoads() {
	s.Require().NoError(s.repo.Save(s.ctx, s.newEntry("JE-002")))

	loaded, err := s.repo.Load(s.ctx, "JE-002")
	s.Require().NoError(err)
	s.Equal(domain.Draft, loaded.Status())
	s.Require().NoError(loaded.Post())
	s.Require().NoError(s.repo.Save(s.ctx, loaded))

	reloaded, err := s.repo.Load(s.ctx, "JE-002")
	s.Require().NoError(err)
	s.Equal(domain.Posted, reloaded.Status())
}

func (s *JournalEntryRepositoryTestSuite) TestConcurrentPostOfSameEntryConflicts() {
	s.Require().NoError(s.repo.Save(s.ctx, s.newEntry("JE-003")))

	first, err := s.repo.Load(s.ctx, "JE-003")
	s.Require().NoError(err)
	second, err := s.repo.Load(s.ctx, "JE-003")
	s.Require().NoError(err)

	s.Require().NoError(first.Post())
	s.Require().NoError(second.Post())
	s.Require().NoError(s.repo.Save(s.ctx, first))

	err = s.repo.Save(s.ctx, second)
	s.ErrorIs(err, apperrors.ErrConcurrency)
	s.Len(second.StagedEvents(), 1, "a failed save keeps events staged")

	records, err := s.store.ReadStream(s.ctx, StreamID("JE-003"))
	s.Require().NoError(err)
	s.Len(records, 2)
}

func (s *JournalEntryRepositoryTestSuite) TestCreatingSameIDTwiceConflicts() {
	s.Require().NoError(s.repo.Save(s.ctx, s.newEntry("JE-004")))
	err := s.repo.Save(s.ctx, s.newEntry("JE-004"))
	s.ErrorIs(err, apperrors.ErrConcurrency)
}

func (s *JournalEntryRepositoryTestSuite) TestLoadMissing() {
	_, err := s.repo.Load(s.ctx, "nope")
	s.ErrorIs(err, apperrors.ErrNotFound)

	exists, err := s.repo.Exists(s.ctx, "nope")
	s.Require().NoError(err)
	s.False(exists)
}

func (s *JournalEntryRepositoryTestSuite) TestLoadFromOtherTenantIsNotFound() {
	s.Require().NoError(s.repo.Save(s.ctx, s.newEntry("JE-007")))

	_, err := s.repo.Load(requestctx.WithTenantID(context.Background(), "globex"), "JE-007")
	s.ErrorIs(err, apperrors.ErrNotFound)

	_, err = s.repo.Load(context.Background(), "JE-007")
	s.NoError(err, "loads without a tenant, as the projection does, see every entry")
}

func (s *JournalEntryRepositoryTestSuite) TestLoadCorruptedStream() {
	_, err := s.store.AppendToStream(s.ctx, StreamID("JE-005"), 0, []eventstore.Record{
		{AggregateID: "JE-005", Kind: "journal_entry.voided", Payload: []byte(`{}`)},
	})
	s.Require().NoError(err)

	_, err = s.repo.Load(s.ctx, "JE-005")
	s.ErrorIs(err, apperrors.ErrIntegrity)
}

func (s *JournalEntryRepositoryTestSuite) TestSaveWithoutTenantOmitsMetadata() {
	s.Require().NoError(s.repo.Save(context.Background(), s.newEntry("JE-006")))
	records, err := s.store.ReadStream(s.ctx, StreamID("JE-006"))
	s.Require().NoError(err)
	s.Empty(records[0].Tenant())
}

func TestDecodeEventErrors(t *testing.T) {
	tests := []struct {
		name string
		rec  eventstore.Record
	}{
		{"unknown kind", eventstore.Record{Kind: "journal_entry.deleted", Payload: []byte(`{}`)}},
		{"bad created json", eventstore.Record{Kind: string(domain.EventEntryCreated), Payload: []byte(`{`)}},
		{"bad created date", eventstore.Record{Kind: string(domain.EventEntryCreated), Payload: []byte(`{"date":"20/11/2025"}`)}},
		{"bad posted json", eventstore.Record{Kind: string(domain.EventEntryPosted), Payload: []byte(`[]`)}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecodeEvent(tt.rec)
			assert.ErrorIs(t, err, apperrors.ErrIntegrity)
		})
	}
}

func TestEncodeDecodeCreated(t *testing.T) {
	evt := domain.Event{
		ID:          "evt-1",
		AggregateID: "JE-1",
		OccurredAt:  time.Date(2025, 11, 20, 8, 0, 0, 0, time.UTC),
		Payload: domain.EntryCreated{
			Date:        time.Date(2025, 11, 19, 0, 0, 0, 0, time.UTC),
			Description: "Cash sale",
			Lines: []domain.LineData{
				{AccountID: "1000", Amount: "100.00", Side: "debit"},
				{AccountID: "4000", Amount: "100.00", Side: "credit"},
			},
		},
	}
	rec, err := EncodeEvent(evt)
	require.NoError(t, err)
	assert.Equal(t, "journal_entry.created", rec.Kind)
	assert.JSONEq(t, `{
		"date": "2025-11-19",
		"description": "Cash sale",
		"lines": [
			{"accountId": "1000", "amount": "100.00", "side": "debit"},
			{"accountId": "4000", "amount": "100.00", "side": "credit"}
		]
	}`, string(rec.Payload))

	decoded, err := DecodeEvent(rec)
	require.NoError(t, err)
	assert.Equal(t, evt, decoded)
}
