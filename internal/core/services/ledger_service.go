package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/dranzd/storebunk-accounting/internal/apperrors"
	"github.com/dranzd/storebunk-accounting/internal/core/domain"
	portsrepo "github.com/dranzd/storebunk-accounting/internal/core/ports/repositories"
	portssvc "github.com/dranzd/storebunk-accounting/internal/core/ports/services"
	"github.com/dranzd/storebunk-accounting/internal/dto"
	"github.com/dranzd/storebunk-accounting/internal/utils/pagination"
)

type ledgerService struct {
	BaseService
	ledger      portsrepo.LedgerReader
	accountRepo portsrepo.AccountReader
}

// NewLedgerService creates the ledger query service.
func NewLedgerService(ledger portsrepo.LedgerReader, accountRepo portsrepo.AccountReader, defaultTenant string) portssvc.LedgerSvcFacade {
	return &ledgerService{
		BaseService: BaseService{DefaultTenant: defaultTenant},
		ledger:      ledger,
		accountRepo: accountRepo,
	}
}

var _ portssvc.LedgerSvcFacade = (*ledgerService)(nil)

func (s *ledgerService) GetAccountBalance(ctx context.Context, accountID string) (*dto.AccountBalanceResponse, error) {
	tenantID := s.TenantID(ctx)
	balance, err := s.ledger.GetAccountBalance(ctx, tenantID, accountID)
	if err != nil {
		s.LogError(ctx, err, "Failed to read account balance", slog.String("account_id", accountID))
		return nil, err
	}

	resp := &dto.AccountBalanceResponse{AccountID: accountID, Balance: balance}
	account, err := s.accountRepo.FindAccountByID(ctx, tenantID, accountID)
	switch {
	case err == nil:
		withNormalBalance(resp, *account)
	case !errors.Is(err, apperrors.ErrNotFound):
		return nil, err
	}
	return resp, nil
}

func (s *ledgerService) ListAccountPostings(ctx context.Context, accountID string, params dto.ListPostingsParams) (*dto.ListPostingsResponse, error) {
	if err := validateRequest(ctx, params); err != nil {
		return nil, err
	}

	from, err := parseBound(params.From)
	if err != nil {
		return nil, err
	}
	to, err := parseBound(params.To)
	if err != nil {
		return nil, err
	}
	if from != nil && to != nil && from.After(*to) {
		return nil, fmt.Errorf("%w: from %s is after to %s", apperrors.ErrValidation, params.From, params.To)
	}

	tenantID := s.TenantID(ctx)
	scope := []string{tenantID, accountID, params.From, params.To}
	offset, err := pagination.DecodeOffsetToken(params.NextToken, scope...)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrValidation, err)
	}

	postings, err := s.ledger.GetLedgerPostings(ctx, tenantID, accountID, from, to)
	if err != nil {
		s.LogError(ctx, err, "Failed to read ledger postings", slog.String("account_id", accountID))
		return nil, err
	}

	resp := &dto.ListPostingsResponse{AccountID: accountID, Postings: []dto.PostingResponse{}}
	if offset >= len(postings) {
		return resp, nil
	}
	end := offset + params.Limit
	if end < len(postings) {
		resp.NextToken = pagination.EncodeOffsetToken(end, scope...)
	} else {
		end = len(postings)
	}
	for _, p := range postings[offset:end] {
		resp.Postings = append(resp.Postings, dto.ToPostingResponse(p))
	}
	return resp, nil
}

func (s *ledgerService) GetTrialBalance(ctx context.Context) (*dto.ListBalancesResponse, error) {
	tenantID := s.TenantID(ctx)
	balances, err := s.ledger.GetAllAccountBalances(ctx, tenantID)
	if err != nil {
		s.LogError(ctx, err, "Failed to read account balances")
		return nil, err
	}

	ids := make([]string, 0, len(balances))
	for id := range balances {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	accounts, err := s.accountRepo.FindAccountsByIDs(ctx, tenantID, ids)
	if err != nil {
		return nil, err
	}

	resp := &dto.ListBalancesResponse{Balances: make([]dto.AccountBalanceResponse, 0, len(ids))}
	for _, id := range ids {
		row := dto.AccountBalanceResponse{AccountID: id, Balance: balances[id]}
		if account, ok := accounts[id]; ok {
			withNormalBalance(&row, account)
		}
		if row.Balance.IsNegative() {
			resp.TotalCredit = resp.TotalCredit.Add(row.Balance.Neg())
		} else {
			resp.TotalDebit = resp.TotalDebit.Add(row.Balance)
		}
		resp.Balances = append(resp.Balances, row)
	}

	if !resp.TotalDebit.Equal(resp.TotalCredit) {
		s.GetLogger(ctx).Error("Trial balance does not balance",
			slog.String("tenant_id", tenantID),
			slog.String("total_debit", resp.TotalDebit.String()),
			slog.String("total_credit", resp.TotalCredit.String()),
		)
	}
	return resp, nil
}

// parseBound parses an optional YYYY-MM-DD query bound; empty means unbounded.
func parseBound(raw string) (*time.Time, error) {
	if raw == "" {
		return nil, nil
	}
	t, err := parseEntryDate(raw)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func withNormalBalance(resp *dto.AccountBalanceResponse, account domain.Account) {
	normal := account.NormalBalance(resp.Balance)
	resp.AccountType = account.AccountType
	resp.NormalBalance = &normal
}
