package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// AccountType classifies a money holding.
type AccountType string

const (
	AccountChecking   AccountType = "checking"
	AccountSavings    AccountType = "savings"
	AccountWallet     AccountType = "wallet"
	AccountInvestment AccountType = "investment"
	AccountOther      AccountType = "other"
)

// Account represents a place where money is held.
// CurrentBalance is derived from InitialBalance and the account's transactions.
type Account struct {
	ID             uuid.UUID       `json:"id"`
	UserID         uuid.UUID       `json:"user_id"`
	Name           string          `json:"name"`
	Type           AccountType     `json:"type"`
	Institution    *string         `json:"institution"`
	InitialBalance decimal.Decimal `json:"initial_balance"`
	CurrentBalance decimal.Decimal `json:"current_balance"`
	Color          *string         `json:"color"`
	IsActive       bool            `json:"is_active"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
}

// AccountList is the listing response with the balance of active accounts.
type AccountList struct {
	Accounts     []Account       `json:"accounts"`
	Total        int             `json:"total"`
	TotalBalance decimal.Decimal `json:"total_balance"`
}
