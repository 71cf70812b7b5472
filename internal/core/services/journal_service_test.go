package services_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/dranzd/storebunk-accounting/internal/apperrors"
	"github.com/dranzd/storebunk-accounting/internal/core/domain"
	portssvc "github.com/dranzd/storebunk-accounting/internal/core/ports/services"
	"github.com/dranzd/storebunk-accounting/internal/core/services"
	"github.com/dranzd/storebunk-accounting/internal/dto"
	"github.com/dranzd/storebunk-accounting/internal/platform/requestctx"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

type JournalServiceTestSuite struct {
	suite.Suite
	ctx         context.Context
	entryRepo   *MockJournalEntryRepository
	accountRepo *MockAccountRepository
	service     portssvc.JournalSvcFacade
}

func (suite *JournalServiceTestSuite) SetupTest() {
	suite.ctx = requestctx.WithTenantID(context.Background(), "acme")
	suite.entryRepo = new(MockJournalEntryRepository)
	suite.accountRepo = new(MockAccountRepository)
	suite.service = services.NewJournalService(suite.entryRepo, suite.accountRepo, "default")
}

func TestJournalServiceTestSuite(t *testing.T) {
	suite.Run(t, new(JournalServiceTestSuite))
}

func tenantIs(tenantID string) any {
	return mock.MatchedBy(func(ctx context.Context) bool {
		return requestctx.TenantIDFromContext(ctx) == tenantID
	})
}

func cashSaleRequest(amounts ...string) dto.CreateJournalEntryRequest {
	debit, credit := "100.00", "100.00"
	if len(amounts) == 2 {
		debit, credit = amounts[0], amounts[1]
	}
	return dto.CreateJournalEntryRequest{
		Date:        "2025-11-20",
		Description: "Cash sale",
		Lines: []dto.JournalLineRequest{
			{AccountID: "1000", Amount: debit, Side: "debit"},
			{AccountID: "4000", Amount: credit, Side: "credit"},
		},
	}
}

func (suite *JournalServiceTestSuite) expectAccounts(ids ...string) {
	found := map[string]domain.Account{}
	for _, id := range ids {
		found[id] = domain.Account{AccountID: id, TenantID: "acme"}
	}
	suite.accountRepo.On("FindAccountsByIDs", mock.Anything, "acme", []string{"1000", "4000"}).Return(found, nil).Once()
}

func (suite *JournalServiceTestSuite) postedEntry(id string) *domain.Entry {
	debit, err := domain.NewLine("1000", domain.MoneyFromCents(10000), domain.Debit)
	suite.Require().NoError(err)
	credit, err := domain.NewLine("4000", domain.MoneyFromCents(10000), domain.Credit)
	suite.Require().NoError(err)
	entry, err := domain.NewEntry(id, time.Date(2025, 11, 20, 0, 0, 0, 0, time.UTC), "Cash sale", []domain.Line{debit, credit})
	suite.Require().NoError(err)
	suite.Require().NoError(entry.Post())
	entry.DrainStagedEvents()
	return entry
}

func (suite *JournalServiceTestSuite) TestCreateJournalEntry_Draft() {
	suite.expectAccounts("1000", "4000")
	suite.entryRepo.On("Save", tenantIs("acme"), mock.AnythingOfType("*domain.Entry")).Return(nil).Once()

	entry, err := suite.service.CreateJournalEntry(suite.ctx, cashSaleRequest())

	suite.Require().NoError(err)
	suite.NotEmpty(entry.ID())
	suite.Equal(domain.Draft, entry.Status())
	suite.Equal(time.Date(2025, 11, 20, 0, 0, 0, 0, time.UTC), entry.Date())
	suite.Len(entry.Lines(), 2)
	suite.entryRepo.AssertExpectations(suite.T())
	suite.accountRepo.AssertExpectations(suite.T())
}

func (suite *JournalServiceTestSuite) TestCreateJournalEntry_PostImmediately() {
	req := cashSaleRequest()
	req.EntryID = "JE-001"
	req.Post = true

	suite.expectAccounts("1000", "4000")
	suite.entryRepo.On("Exists", mock.Anything, "JE-001").Return(false, nil).Once()
	suite.entryRepo.On("Save", mock.Anything, mock.MatchedBy(func(e *domain.Entry) bool {
		return len(e.StagedEvents()) == 2
	})).Return(nil).Once()

	entry, err := suite.service.CreateJournalEntry(suite.ctx, req)

	suite.Require().NoError(err)
	suite.Equal("JE-001", entry.ID())
	suite.Equal(domain.Posted, entry.Status())
	suite.entryRepo.AssertExpectations(suite.T())
}

func (suite *JournalServiceTestSuite) TestCreateJournalEntry_RequestValidation() {
	oneLine := cashSaleRequest()
	oneLine.Lines = oneLine.Lines[:1]
	badDate := cashSaleRequest()
	badDate.Date = "20/11/2025"
	badSide := cashSaleRequest()
	badSide.Lines[0].Side = "left"
	badAmount := cashSaleRequest("ten", "10.00")
	noDescription := cashSaleRequest()
	noDescription.Description = ""

	tests := []struct {
		name string
		req  dto.CreateJournalEntryRequest
	}{
		{"one line", oneLine},
		{"bad date", badDate},
		{"bad side", badSide},
		{"bad amount", badAmount},
		{"no description", noDescription},
	}
	for _, tt := range tests {
		suite.Run(tt.name, func() {
			_, err := suite.service.CreateJournalEntry(suite.ctx, tt.req)
			suite.ErrorIs(err, apperrors.ErrValidation)
		})
	}
	suite.accountRepo.AssertNotCalled(suite.T(), "FindAccountsByIDs", mock.Anything, mock.Anything, mock.Anything)
	suite.entryRepo.AssertNotCalled(suite.T(), "Save", mock.Anything, mock.Anything)
}

func (suite *JournalServiceTestSuite) TestCreateJournalEntry_DomainValidation() {
	tests := []struct {
		name    string
		req     dto.CreateJournalEntryRequest
		wantMsg string
	}{
		{"unbalanced", cashSaleRequest("100.00", "50.00"), "must balance"},
		{"three decimals", cashSaleRequest("100.001", "100.001"), "decimal places"},
		{"negative", cashSaleRequest("-100.00", "-100.00"), "positive"},
	}
	for _, tt := range tests {
		suite.Run(tt.name, func() {
			suite.accountRepo.On("FindAccountsByIDs", mock.Anything, "acme", []string{"1000", "4000"}).
				Return(map[string]domain.Account{"1000": {}, "4000": {}}, nil).Maybe()

			_, err := suite.service.CreateJournalEntry(suite.ctx, tt.req)
			suite.ErrorIs(err, apperrors.ErrValidation)
			suite.Contains(err.Error(), tt.wantMsg)
		})
	}
	suite.entryRepo.AssertNotCalled(suite.T(), "Save", mock.Anything, mock.Anything)
}

func (suite *JournalServiceTestSuite) TestCreateJournalEntry_UnknownAccount() {
	suite.expectAccounts("1000")

	_, err := suite.service.CreateJournalEntry(suite.ctx, cashSaleRequest())

	suite.ErrorIs(err, apperrors.ErrValidation)
	suite.Contains(err.Error(), "account not found: 4000")
	suite.entryRepo.AssertNotCalled(suite.T(), "Save", mock.Anything, mock.Anything)
}

func (suite *JournalServiceTestSuite) TestCreateJournalEntry_DuplicateID() {
	req := cashSaleRequest()
	req.EntryID = "JE-001"
	suite.expectAccounts("1000", "4000")
	suite.entryRepo.On("Exists", mock.Anything, "JE-001").Return(true, nil).Once()

	_, err := suite.service.CreateJournalEntry(suite.ctx, req)

	suite.ErrorIs(err, apperrors.ErrDuplicate)
	suite.entryRepo.AssertNotCalled(suite.T(), "Save", mock.Anything, mock.Anything)
}

func (suite *JournalServiceTestSuite) TestPostJournalEntry() {
	debit, _ := domain.NewLine("1000", domain.MoneyFromCents(500), domain.Debit)
	credit, _ := domain.NewLine("4000", domain.MoneyFromCents(500), domain.Credit)
	draft, err := domain.NewEntry("JE-002", time.Date(2025, 11, 21, 0, 0, 0, 0, time.UTC), "Draft", []domain.Line{debit, credit})
	suite.Require().NoError(err)
	draft.DrainStagedEvents()

	suite.entryRepo.On("Load", tenantIs("acme"), "JE-002").Return(draft, nil).Once()
	suite.entryRepo.On("Save", tenantIs("acme"), draft).Return(nil).Once()

	entry, err := suite.service.PostJournalEntry(suite.ctx, "JE-002")

	suite.Require().NoError(err)
	suite.Equal(domain.Posted, entry.Status())
	suite.entryRepo.AssertExpectations(suite.T())
}

func (suite *JournalServiceTestSuite) TestPostJournalEntry_Errors() {
	suite.Run("already posted", func() {
		suite.entryRepo.On("Load", mock.Anything, "JE-003").Return(suite.postedEntry("JE-003"), nil).Once()
		_, err := suite.service.PostJournalEntry(suite.ctx, "JE-003")
		suite.ErrorIs(err, apperrors.ErrState)
	})

	suite.Run("missing", func() {
		suite.entryRepo.On("Load", mock.Anything, "JE-404").Return(nil, apperrors.ErrNotFound).Once()
		_, err := suite.service.PostJournalEntry(suite.ctx, "JE-404")
		suite.ErrorIs(err, apperrors.ErrNotFound)
	})

	suite.Run("lost race", func() {
		debit, _ := domain.NewLine("1000", domain.MoneyFromCents(500), domain.Debit)
		credit, _ := domain.NewLine("4000", domain.MoneyFromCents(500), domain.Credit)
		draft, err := domain.NewEntry("JE-005", time.Date(2025, 11, 21, 0, 0, 0, 0, time.UTC), "Draft", []domain.Line{debit, credit})
		suite.Require().NoError(err)
		draft.DrainStagedEvents()

		suite.entryRepo.On("Load", mock.Anything, "JE-005").Return(draft, nil).Once()
		suite.entryRepo.On("Save", mock.Anything, draft).
			Return(fmt.Errorf("failed to save journal entry JE-005: %w", apperrors.ErrConcurrency)).Once()

		_, err = suite.service.PostJournalEntry(suite.ctx, "JE-005")
		suite.ErrorIs(err, apperrors.ErrConcurrency)
	})
}

func (suite *JournalServiceTestSuite) TestReverseJournalEntry() {
	suite.entryRepo.On("Load", mock.Anything, "JE-001").Return(suite.postedEntry("JE-001"), nil).Once()
	suite.entryRepo.On("Exists", mock.Anything, "JE-001-R").Return(false, nil).Once()
	suite.entryRepo.On("Save", tenantIs("acme"), mock.AnythingOfType("*domain.Entry")).Return(nil).Once()

	reversal, err := suite.service.ReverseJournalEntry(suite.ctx, "JE-001", dto.ReverseJournalEntryRequest{
		EntryID: "JE-001-R",
		Date:    "2025-11-30",
		Post:    true,
	})

	suite.Require().NoError(err)
	suite.Equal("JE-001-R", reversal.ID())
	suite.Equal("Reversal of Cash sale", reversal.Description())
	suite.Equal(domain.Posted, reversal.Status())
	lines := reversal.Lines()
	suite.Equal(domain.Credit, lines[0].Side())
	suite.Equal(domain.Debit, lines[1].Side())
	suite.entryRepo.AssertExpectations(suite.T())
}

func (suite *JournalServiceTestSuite) TestReverseDraftIsStateError() {
	debit, _ := domain.NewLine("1000", domain.MoneyFromCents(500), domain.Debit)
	credit, _ := domain.NewLine("4000", domain.MoneyFromCents(500), domain.Credit)
	draft, err := domain.NewEntry("JE-006", time.Date(2025, 11, 21, 0, 0, 0, 0, time.UTC), "Draft", []domain.Line{debit, credit})
	suite.Require().NoError(err)
	suite.entryRepo.On("Load", mock.Anything, "JE-006").Return(draft, nil).Once()

	_, err = suite.service.ReverseJournalEntry(suite.ctx, "JE-006", dto.ReverseJournalEntryRequest{Date: "2025-11-30"})
	suite.ErrorIs(err, apperrors.ErrState)
	suite.entryRepo.AssertNotCalled(suite.T(), "Save", mock.Anything, mock.Anything)
}

func (suite *JournalServiceTestSuite) TestGetJournalEntry() {
	suite.entryRepo.On("Load", tenantIs("acme"), "JE-001").Return(suite.postedEntry("JE-001"), nil).Once()

	entry, err := suite.service.GetJournalEntry(suite.ctx, "JE-001")
	suite.Require().NoError(err)
	suite.Equal("JE-001", entry.ID())
}
