package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dranzd/storebunk-accounting/internal/apperrors"
	"github.com/dranzd/storebunk-accounting/internal/core/domain"
	portsrepo "github.com/dranzd/storebunk-accounting/internal/core/ports/repositories"
)

const selectAccountColumns = `tenant_id, account_id, name, account_type, created_at, last_updated_at`

type AccountRepository struct {
	db *sql.DB
}

func newAccountRepository(db *sql.DB) *AccountRepository {
	return &AccountRepository{db: db}
}

var _ portsrepo.AccountRepositoryFacade = (*AccountRepository)(nil)

func (r *AccountRepository) SaveAccount(ctx context.Context, account domain.Account) error {
	_, err := r.db.ExecContext(ctx, `
INSERT INTO accounts (`+selectAccountColumns+`)
VALUES (?, ?, ?, ?, ?, ?)`,
		account.TenantID,
		account.AccountID,
		account.Name,
		string(account.AccountType),
		account.CreatedAt.UTC().UnixNano(),
		account.LastUpdatedAt.UTC().UnixNano(),
	)
	if err != nil {
		if isConstraintError(err) {
			return fmt.Errorf("%w: account with ID %s already exists", apperrors.ErrDuplicate, account.AccountID)
		}
		return fmt.Errorf("save account %s: %w", account.AccountID, err)
	}
	return nil
}

func (r *AccountRepository) FindAccountByID(ctx context.Context, tenantID, accountID string) (*domain.Account, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+selectAccountColumns+` FROM accounts WHERE tenant_id = ? AND account_id = ?`, tenantID, accountID)
	account, err := scanAccount(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: account %s", apperrors.ErrNotFound, accountID)
		}
		return nil, err
	}
	return &account, nil
}

func (r *AccountRepository) FindAccountsByIDs(ctx context.Context, tenantID string, accountIDs []string) (map[string]domain.Account, error) {
	out := make(map[string]domain.Account, len(accountIDs))
	if len(accountIDs) == 0 {
		return out, nil
	}

	args := make([]any, 0, len(accountIDs)+1)
	args = append(args, tenantID)
	for _, id := range accountIDs {
		args = append(args, id)
	}
	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(accountIDs)), ",")

	rows, err := r.db.QueryContext(ctx,
		`SELECT `+selectAccountColumns+` FROM accounts WHERE tenant_id = ? AND account_id IN (`+placeholders+`)`, args...)
	if err != nil {
		return nil, fmt.Errorf("query accounts: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		account, err := scanAccount(rows)
		if err != nil {
			return nil, err
		}
		out[account.AccountID] = account
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate accounts: %w", err)
	}
	return out, nil
}

func (r *AccountRepository) ListAccounts(ctx context.Context, tenantID string, limit, offset int) ([]domain.Account, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+selectAccountColumns+` FROM accounts WHERE tenant_id = ? ORDER BY account_id LIMIT ? OFFSET ?`,
		tenantID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("query accounts: %w", err)
	}
	defer rows.Close()

	accounts := []domain.Account{}
	for rows.Next() {
		account, err := scanAccount(rows)
		if err != nil {
			return nil, err
		}
		accounts = append(accounts, account)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate accounts: %w", err)
	}
	return accounts, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanAccount(row rowScanner) (domain.Account, error) {
	var (
		a                  domain.Account
		accountType        string
		created, lastUpdAt int64
	)
	if err := row.Scan(&a.TenantID, &a.AccountID, &a.Name, &accountType, &created, &lastUpdAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return a, err
		}
		return a, fmt.Errorf("scan account: %w", err)
	}
	a.AccountType = domain.AccountType(accountType)
	a.CreatedAt = time.Unix(0, created).UTC()
	a.LastUpdatedAt = time.Unix(0, lastUpdAt).UTC()
	return a, nil
}
