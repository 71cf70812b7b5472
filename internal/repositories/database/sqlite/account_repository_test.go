package sqlite

import (
	"context"
	"testing"
	"time"

	"github.com/dranzd/storebunk-accounting/internal/apperrors"
	"github.com/dranzd/storebunk-accounting/internal/core/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestAccount(t *testing.T, tenant, id string, accountType domain.AccountType) domain.Account {
	t.Helper()
	a, err := domain.NewAccount(tenant, id, "Account "+id, accountType, time.Date(2025, 11, 20, 9, 30, 0, 0, time.UTC))
	require.NoError(t, err)
	return a
}

func TestAccountRepository(t *testing.T) {
	db, _ := openTestDB(t)
	provider := NewRepositoryProvider(db)
	repo := provider.AccountRepo
	ctx := context.Background()

	cash := newTestAccount(t, "acme", "1000", domain.Asset)
	sales := newTestAccount(t, "acme", "4000", domain.Revenue)
	require.NoError(t, repo.SaveAccount(ctx, sales))
	require.NoError(t, repo.SaveAccount(ctx, cash))
	require.NoError(t, repo.SaveAccount(ctx, newTestAccount(t, "globex", "1000", domain.Asset)))

	t.Run("duplicate", func(t *testing.T) {
		err := repo.SaveAccount(ctx, cash)
		assert.ErrorIs(t, err, apperrors.ErrDuplicate)
	})

	t.Run("find by id", func(t *testing.T) {
		got, err := repo.FindAccountByID(ctx, "acme", "1000")
		require.NoError(t, err)
		assert.Equal(t, cash, *got)
	})

	t.Run("find in other tenant", func(t *testing.T) {
		_, err := repo.FindAccountByID(ctx, "initech", "1000")
		assert.ErrorIs(t, err, apperrors.ErrNotFound)
	})

	t.Run("find many", func(t *testing.T) {
		got, err := repo.FindAccountsByIDs(ctx, "acme", []string{"1000", "4000", "9999"})
		require.NoError(t, err)
		assert.Len(t, got, 2)
		assert.Equal(t, domain.Revenue, got["4000"].AccountType)
	})

	t.Run("list is ordered and paged", func(t *testing.T) {
		page, err := repo.ListAccounts(ctx, "acme", 1, 0)
		require.NoError(t, err)
		require.Len(t, page, 1)
		assert.Equal(t, "1000", page[0].AccountID)

		page, err = repo.ListAccounts(ctx, "acme", 10, 1)
		require.NoError(t, err)
		require.Len(t, page, 1)
		assert.Equal(t, "4000", page[0].AccountID)
	})
}
