package pgsql

import (
	"testing"
	"time"

	"github.com/dranzd/storebunk-accounting/internal/core/domain"
	"github.com/dranzd/storebunk-accounting/internal/models"
	"github.com/stretchr/testify/assert"
)

func TestAccountRowMapping(t *testing.T) {
	loc := time.FixedZone("UTC+8", 8*60*60)
	row := models.Account{
		TenantID:      "acme",
		AccountID:     "1000",
		Name:          "Cash",
		AccountType:   "ASSET",
		CreatedAt:     time.Date(2025, 11, 20, 17, 0, 0, 0, loc),
		LastUpdatedAt: time.Date(2025, 11, 20, 18, 0, 0, 0, loc),
	}

	account := toDomainAccount(row)
	assert.Equal(t, domain.Asset, account.AccountType)
	assert.Equal(t, time.UTC, account.CreatedAt.Location())
	assert.Equal(t, time.Date(2025, 11, 20, 9, 0, 0, 0, time.UTC), account.CreatedAt)

	back := toModelAccount(account)
	assert.Equal(t, row.AccountType, back.AccountType)
	assert.True(t, row.LastUpdatedAt.Equal(back.LastUpdatedAt))
}
