// Package models holds the row shapes of the SQL tables.
package models

import "time"

// Account is a row of the accounts table.
type Account struct {
	TenantID      string    `db:"tenant_id"`
	AccountID     string    `db:"account_id"`
	Name          string    `db:"name"`
	AccountType   string    `db:"account_type"`
	CreatedAt     time.Time `db:"created_at"`
	LastUpdatedAt time.Time `db:"last_updated_at"`
}
