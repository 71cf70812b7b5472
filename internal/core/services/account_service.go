package services

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/dranzd/storebunk-accounting/internal/apperrors"
	"github.com/dranzd/storebunk-accounting/internal/core/domain"
	portsrepo "github.com/dranzd/storebunk-accounting/internal/core/ports/repositories"
	portssvc "github.com/dranzd/storebunk-accounting/internal/core/ports/services"
	"github.com/dranzd/storebunk-accounting/internal/dto"
)

type accountService struct {
	BaseService
	accountRepo portsrepo.AccountRepositoryFacade
}

// NewAccountService creates the chart of accounts service.
func NewAccountService(repo portsrepo.AccountRepositoryFacade, defaultTenant string) portssvc.AccountSvcFacade {
	return &accountService{
		BaseService: BaseService{DefaultTenant: defaultTenant},
		accountRepo: repo,
	}
}

var _ portssvc.AccountSvcFacade = (*accountService)(nil)

func (s *accountService) CreateAccount(ctx context.Context, req dto.CreateAccountRequest) (*domain.Account, error) {
	logger := s.GetLogger(ctx)
	if err := validateRequest(ctx, req); err != nil {
		logger.Warn("Invalid create account request", slog.String("error", err.Error()))
		return nil, err
	}

	accountType, err := domain.ParseAccountType(req.AccountType)
	if err != nil {
		return nil, err
	}
	account, err := domain.NewAccount(s.TenantID(ctx), req.AccountID, req.Name, accountType, time.Now().UTC())
	if err != nil {
		return nil, err
	}

	if err := s.accountRepo.SaveAccount(ctx, account); err != nil {
		if !errors.Is(err, apperrors.ErrDuplicate) {
			s.LogError(ctx, err, "Failed to save account in repository", slog.String("account_id", account.AccountID))
		}
		return nil, err
	}

	logger.Info("Account created", slog.String("account_id", account.AccountID), slog.String("account_type", string(account.AccountType)))
	return &account, nil
}

func (s *accountService) GetAccountByID(ctx context.Context, accountID string) (*domain.Account, error) {
	account, err := s.accountRepo.FindAccountByID(ctx, s.TenantID(ctx), accountID)
	if err != nil {
		// Not found is an expected outcome.
		if !errors.Is(err, apperrors.ErrNotFound) {
			s.LogError(ctx, err, "Failed to find account by ID in repository", slog.String("account_id", accountID))
		}
		return nil, err
	}
	return account, nil
}

func (s *accountService) ListAccounts(ctx context.Context, params dto.ListAccountsParams) ([]domain.Account, error) {
	if err := validateRequest(ctx, params); err != nil {
		return nil, err
	}
	accounts, err := s.accountRepo.ListAccounts(ctx, s.TenantID(ctx), params.Limit, params.Offset)
	if err != nil {
		s.LogError(ctx, err, "Failed to list accounts from repository", slog.Int("limit", params.Limit), slog.Int("offset", params.Offset))
		return nil, err
	}
	if accounts == nil {
		return []domain.Account{}, nil
	}
	return accounts, nil
}
