package dto

import (
	"time"

	"github.com/dranzd/storebunk-accounting/internal/core/domain"
)

// CreateAccountRequest defines the data needed to add an account to the chart of accounts.
type CreateAccountRequest struct {
	AccountID   string `json:"accountID" binding:"required" validate:"required,max=64"`
	Name        string `json:"name" binding:"required" validate:"required,max=255"`
	AccountType string `json:"accountType" binding:"required" validate:"required,oneof=ASSET LIABILITY EQUITY REVENUE EXPENSE asset liability equity revenue expense"`
}

// AccountResponse defines the data returned for an account.
type AccountResponse struct {
	AccountID     string             `json:"accountID"`
	Name          string             `json:"name"`
	AccountType   domain.AccountType `json:"accountType"`
	NormalSide    domain.Side        `json:"normalSide"`
	CreatedAt     time.Time          `json:"createdAt"`
	LastUpdatedAt time.Time          `json:"lastUpdatedAt"`
}

// ToAccountResponse converts a domain.Account to AccountResponse DTO
func ToAccountResponse(acc *domain.Account) AccountResponse {
	return AccountResponse{
		AccountID:     acc.AccountID,
		Name:          acc.Name,
		AccountType:   acc.AccountType,
		NormalSide:    acc.AccountType.NormalSide(),
		CreatedAt:     acc.CreatedAt,
		LastUpdatedAt: acc.LastUpdatedAt,
	}
}

// ToListAccountResponse converts a slice of domain.Account to a slice of AccountResponse DTOs
func ToListAccountResponse(accounts []domain.Account) []AccountResponse {
	res := make([]AccountResponse, len(accounts))
	for i := range accounts {
		res[i] = ToAccountResponse(&accounts[i])
	}
	return res
}

// ListAccountsParams defines query parameters for listing accounts.
type ListAccountsParams struct {
	Limit  int `form:"limit,default=20" validate:"min=1,max=100"`
	Offset int `form:"offset,default=0" validate:"min=0"`
}

// ListAccountsResponse wraps a page of accounts.
type ListAccountsResponse struct {
	Accounts []AccountResponse `json:"accounts"`
}
