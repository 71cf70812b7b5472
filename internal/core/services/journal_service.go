package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/dranzd/storebunk-accounting/internal/apperrors"
	"github.com/dranzd/storebunk-accounting/internal/core/domain"
	portsrepo "github.com/dranzd/storebunk-accounting/internal/core/ports/repositories"
	portssvc "github.com/dranzd/storebunk-accounting/internal/core/ports/services"
	"github.com/dranzd/storebunk-accounting/internal/dto"
	"github.com/dranzd/storebunk-accounting/internal/platform/requestctx"
	"github.com/google/uuid"
)

// journalService runs the journal entry commands against the event-sourced repository.
type journalService struct {
	BaseService
	entryRepo   portsrepo.JournalEntryRepositoryFacade
	accountRepo portsrepo.AccountReader
}

// NewJournalService creates a new JournalService.
func NewJournalService(entryRepo portsrepo.JournalEntryRepositoryFacade, accountRepo portsrepo.AccountReader, defaultTenant string) portssvc.JournalSvcFacade {
	return &journalService{
		BaseService: BaseService{DefaultTenant: defaultTenant},
		entryRepo:   entryRepo,
		accountRepo: accountRepo,
	}
}

var _ portssvc.JournalSvcFacade = (*journalService)(nil)

func (s *journalService) CreateJournalEntry(ctx context.Context, req dto.CreateJournalEntryRequest) (*domain.Entry, error) {
	logger := s.GetLogger(ctx)
	if err := validateRequest(ctx, req); err != nil {
		logger.Warn("Invalid create journal entry request", slog.String("error", err.Error()))
		return nil, err
	}

	tenantID := s.TenantID(ctx)
	ctx = requestctx.WithTenantID(ctx, tenantID)

	date, err := parseEntryDate(req.Date)
	if err != nil {
		return nil, err
	}
	lines, err := buildLines(req.Lines)
	if err != nil {
		return nil, err
	}
	if err := s.ensureAccountsExist(ctx, tenantID, lines); err != nil {
		return nil, err
	}

	entryID, err := s.newEntryID(ctx, req.EntryID)
	if err != nil {
		return nil, err
	}

	entry, err := domain.NewEntry(entryID, date, req.Description, lines)
	if err != nil {
		return nil, err
	}
	if req.Post {
		if err := entry.Post(); err != nil {
			return nil, err
		}
	}

	if err := s.entryRepo.Save(ctx, entry); err != nil {
		s.LogError(ctx, err, "Failed to save journal entry", slog.String("entry_id", entryID))
		return nil, err
	}

	logger.Info("Journal entry created",
		slog.String("entry_id", entry.ID()),
		slog.String("status", string(entry.Status())),
		slog.Int("lines", len(lines)),
	)
	return entry, nil
}

func (s *journalService) PostJournalEntry(ctx context.Context, entryID string) (*domain.Entry, error) {
	ctx = requestctx.WithTenantID(ctx, s.TenantID(ctx))

	entry, err := s.entryRepo.Load(ctx, entryID)
	if err != nil {
		return nil, err
	}
	if err := entry.Post(); err != nil {
		return nil, err
	}
	if err := s.entryRepo.Save(ctx, entry); err != nil {
		if !errors.Is(err, apperrors.ErrConcurrency) {
			s.LogError(ctx, err, "Failed to save posted journal entry", slog.String("entry_id", entryID))
		}
		return nil, err
	}

	s.GetLogger(ctx).Info("Journal entry posted", slog.String("entry_id", entryID))
	return entry, nil
}

func (s *journalService) ReverseJournalEntry(ctx context.Context, entryID string, req dto.ReverseJournalEntryRequest) (*domain.Entry, error) {
	if err := validateRequest(ctx, req); err != nil {
		return nil, err
	}
	ctx = requestctx.WithTenantID(ctx, s.TenantID(ctx))

	date, err := parseEntryDate(req.Date)
	if err != nil {
		return nil, err
	}
	original, err := s.entryRepo.Load(ctx, entryID)
	if err != nil {
		return nil, err
	}
	reversalID, err := s.newEntryID(ctx, req.EntryID)
	if err != nil {
		return nil, err
	}

	reversal, err := domain.Reverse(reversalID, date, original)
	if err != nil {
		return nil, err
	}
	if req.Post {
		if err := reversal.Post(); err != nil {
			return nil, err
		}
	}
	if err := s.entryRepo.Save(ctx, reversal); err != nil {
		s.LogError(ctx, err, "Failed to save reversal", slog.String("entry_id", reversalID), slog.String("original_entry_id", entryID))
		return nil, err
	}

	s.GetLogger(ctx).Info("Journal entry reversed",
		slog.String("entry_id", reversalID),
		slog.String("original_entry_id", entryID),
	)
	return reversal, nil
}

func (s *journalService) GetJournalEntry(ctx context.Context, entryID string) (*domain.Entry, error) {
	ctx = requestctx.WithTenantID(ctx, s.TenantID(ctx))
	entry, err := s.entryRepo.Load(ctx, entryID)
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			s.LogError(ctx, err, "Failed to load journal entry", slog.String("entry_id", entryID))
		}
		return nil, err
	}
	return entry, nil
}

// newEntryID returns requested, or a fresh ID when it is empty. A requested ID
// that is already in use is rejected with ErrDuplicate.
func (s *journalService) newEntryID(ctx context.Context, requested string) (string, error) {
	id := strings.TrimSpace(requested)
	if id == "" {
		return uuid.NewString(), nil
	}
	exists, err := s.entryRepo.Exists(ctx, id)
	if err != nil {
		return "", err
	}
	if exists {
		return "", fmt.Errorf("%w: journal entry %s already exists", apperrors.ErrDuplicate, id)
	}
	return id, nil
}

// ensureAccountsExist rejects lines that reference accounts missing from the
// tenant's chart of accounts.
func (s *journalService) ensureAccountsExist(ctx context.Context, tenantID string, lines []domain.Line) error {
	ids := make([]string, 0, len(lines))
	seen := make(map[string]struct{}, len(lines))
	for _, l := range lines {
		if _, ok := seen[l.AccountID()]; !ok {
			seen[l.AccountID()] = struct{}{}
			ids = append(ids, l.AccountID())
		}
	}

	found, err := s.accountRepo.FindAccountsByIDs(ctx, tenantID, ids)
	if err != nil {
		s.LogError(ctx, err, "Failed to look up journal entry accounts")
		return err
	}
	for _, id := range ids {
		if _, ok := found[id]; !ok {
			return fmt.Errorf("%w: account not found: %s", apperrors.ErrValidation, id)
		}
	}
	return nil
}

func parseEntryDate(raw string) (time.Time, error) {
	date, err := time.Parse(dto.EntryDateLayout, strings.TrimSpace(raw))
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: invalid entry date %q, expected YYYY-MM-DD", apperrors.ErrValidation, raw)
	}
	return date, nil
}

func buildLines(reqs []dto.JournalLineRequest) ([]domain.Line, error) {
	lines := make([]domain.Line, len(reqs))
	for i, r := range reqs {
		amount, err := domain.ParseMoney(r.Amount)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", i+1, err)
		}
		side, err := domain.ParseSide(r.Side)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", i+1, err)
		}
		line, err := domain.NewLine(r.AccountID, amount, side)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", i+1, err)
		}
		lines[i] = line
	}
	return lines, nil
}
