package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/dranzd/storebunk-accounting/internal/apperrors"
	"github.com/dranzd/storebunk-accounting/internal/core/domain"
	portssvc "github.com/dranzd/storebunk-accounting/internal/core/ports/services"
	"github.com/dranzd/storebunk-accounting/internal/core/services"
	"github.com/dranzd/storebunk-accounting/internal/dto"
	"github.com/dranzd/storebunk-accounting/internal/platform/requestctx"
	"github.com/dranzd/storebunk-accounting/internal/readmodel"
	"github.com/dranzd/storebunk-accounting/internal/repositories/database/memory"
	"github.com/stretchr/testify/suite"
)

type LedgerServiceTestSuite struct {
	suite.Suite
	ctx      context.Context
	ledger   *readmodel.Ledger
	accounts *memory.AccountRepository
	service  portssvc.LedgerSvcFacade
}

func (suite *LedgerServiceTestSuite) SetupTest() {
	suite.ctx = requestctx.WithTenantID(context.Background(), "acme")
	suite.ledger = readmodel.NewLedger()
	suite.accounts = memory.NewAccountRepository()
	suite.service = services.NewLedgerService(suite.ledger, suite.accounts, "default")

	now := time.Date(2025, 11, 1, 0, 0, 0, 0, time.UTC)
	for _, a := range []struct {
		id  string
		typ domain.AccountType
	}{
		{"1000", domain.Asset},
		{"4000", domain.Revenue},
	} {
		account, err := domain.NewAccount("acme", a.id, "Account "+a.id, a.typ, now)
		suite.Require().NoError(err)
		suite.Require().NoError(suite.accounts.SaveAccount(suite.ctx, account))
	}
}

func TestLedgerServiceTestSuite(t *testing.T) {
	suite.Run(t, new(LedgerServiceTestSuite))
}

func (suite *LedgerServiceTestSuite) post(entryID string, day int, debitAccount, creditAccount string, cents int64) {
	amount := domain.MoneyFromCents(cents)
	date := time.Date(2025, 11, day, 0, 0, 0, 0, time.UTC)
	suite.Require().NoError(suite.ledger.AddPosting(suite.ctx, "acme", debitAccount, entryID, date, entryID, &amount, nil))
	suite.Require().NoError(suite.ledger.AddPosting(suite.ctx, "acme", creditAccount, entryID, date, entryID, nil, &amount))
}

func (suite *LedgerServiceTestSuite) TestGetAccountBalance_NormalSide() {
	suite.post("JE-1", 20, "1000", "4000", 15000)

	resp, err := suite.service.GetAccountBalance(suite.ctx, "4000")
	suite.Require().NoError(err)
	suite.Equal(domain.MoneyFromCents(-15000), resp.Balance)
	suite.Equal(domain.Revenue, resp.AccountType)
	suite.Require().NotNil(resp.NormalBalance)
	suite.Equal(domain.MoneyFromCents(15000), *resp.NormalBalance)
}

func (suite *LedgerServiceTestSuite) TestGetAccountBalance_UnknownAccount() {
	resp, err := suite.service.GetAccountBalance(suite.ctx, "9999")
	suite.Require().NoError(err)
	suite.True(resp.Balance.IsZero())
	suite.Nil(resp.NormalBalance)
	suite.Empty(resp.AccountType)
}

func (suite *LedgerServiceTestSuite) TestGetAccountBalance_TenantScoped() {
	suite.post("JE-1", 20, "1000", "4000", 15000)

	resp, err := suite.service.GetAccountBalance(context.Background(), "1000")
	suite.Require().NoError(err)
	suite.True(resp.Balance.IsZero(), "default tenant sees nothing from acme")
}

func (suite *LedgerServiceTestSuite) TestListAccountPostings_Pagination() {
	suite.post("JE-1", 19, "1000", "4000", 100)
	suite.post("JE-2", 20, "1000", "4000", 200)
	suite.post("JE-3", 21, "1000", "4000", 300)

	first, err := suite.service.ListAccountPostings(suite.ctx, "1000", dto.ListPostingsParams{Limit: 2})
	suite.Require().NoError(err)
	suite.Require().Len(first.Postings, 2)
	suite.Equal("JE-1", first.Postings[0].EntryID)
	suite.NotEmpty(first.NextToken)

	second, err := suite.service.ListAccountPostings(suite.ctx, "1000", dto.ListPostingsParams{Limit: 2, NextToken: first.NextToken})
	suite.Require().NoError(err)
	suite.Require().Len(second.Postings, 1)
	suite.Equal("JE-3", second.Postings[0].EntryID)
	suite.Equal(domain.MoneyFromCents(600), second.Postings[0].RunningBalance)
	suite.Empty(second.NextToken)

	_, err = suite.service.ListAccountPostings(suite.ctx, "4000", dto.ListPostingsParams{Limit: 2, NextToken: first.NextToken})
	suite.ErrorIs(err, apperrors.ErrValidation, "token is bound to its account")

	_, err = suite.service.ListAccountPostings(suite.ctx, "1000", dto.ListPostingsParams{From: "2025-11-19", Limit: 2, NextToken: first.NextToken})
	suite.ErrorIs(err, apperrors.ErrValidation, "token is bound to its date range")

	_, err = suite.service.ListAccountPostings(context.Background(), "1000", dto.ListPostingsParams{Limit: 2, NextToken: first.NextToken})
	suite.ErrorIs(err, apperrors.ErrValidation, "token is bound to its tenant")
}

func (suite *LedgerServiceTestSuite) TestListAccountPostings_DateRange() {
	suite.post("JE-1", 19, "1000", "4000", 100)
	suite.post("JE-2", 21, "1000", "4000", 200)

	resp, err := suite.service.ListAccountPostings(suite.ctx, "1000", dto.ListPostingsParams{From: "2025-11-20", Limit: 50})
	suite.Require().NoError(err)
	suite.Require().Len(resp.Postings, 1)
	suite.Equal("JE-2", resp.Postings[0].EntryID)
}

func (suite *LedgerServiceTestSuite) TestListAccountPostings_Invalid() {
	tests := []struct {
		name   string
		params dto.ListPostingsParams
	}{
		{"from after to", dto.ListPostingsParams{From: "2025-11-21", To: "2025-11-20", Limit: 50}},
		{"bad date", dto.ListPostingsParams{From: "yesterday", Limit: 50}},
		{"bad token", dto.ListPostingsParams{NextToken: "%%%", Limit: 50}},
		{"limit too large", dto.ListPostingsParams{Limit: 1000}},
	}
	for _, tt := range tests {
		suite.Run(tt.name, func() {
			_, err := suite.service.ListAccountPostings(suite.ctx, "1000", tt.params)
			suite.ErrorIs(err, apperrors.ErrValidation)
		})
	}
}

func (suite *LedgerServiceTestSuite) TestListAccountPostings_Empty() {
	resp, err := suite.service.ListAccountPostings(suite.ctx, "1000", dto.ListPostingsParams{Limit: 50})
	suite.Require().NoError(err)
	suite.NotNil(resp.Postings)
	suite.Empty(resp.Postings)
}

func (suite *LedgerServiceTestSuite) TestGetTrialBalance() {
	suite.post("JE-1", 19, "1000", "4000", 120000)
	suite.post("JE-2", 20, "5000", "1000", 30000)

	resp, err := suite.service.GetTrialBalance(suite.ctx)
	suite.Require().NoError(err)
	suite.Require().Len(resp.Balances, 3)
	suite.Equal("1000", resp.Balances[0].AccountID)
	suite.Equal(domain.MoneyFromCents(90000), resp.Balances[0].Balance)
	suite.Equal("5000", resp.Balances[2].AccountID)
	suite.Nil(resp.Balances[2].NormalBalance, "5000 is not in the chart of accounts")
	suite.Equal(domain.MoneyFromCents(120000), resp.TotalDebit)
	suite.Equal(resp.TotalDebit, resp.TotalCredit)
}
