package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// EntryType is the direction of an investment movement.
type EntryType string

const (
	EntryDeposit    EntryType = "deposit"
	EntryWithdrawal EntryType = "withdrawal"
)

// Portfolio groups investment entries. The totals are computed on read.
type Portfolio struct {
	ID             uuid.UUID       `json:"id"`
	UserID         uuid.UUID       `json:"user_id"`
	Name           string          `json:"name"`
	Type           *string         `json:"type"`
	Description    *string         `json:"description"`
	IsActive       bool            `json:"is_active"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
	TotalInvested  decimal.Decimal `json:"total_invested"`
	TotalWithdrawn decimal.Decimal `json:"total_withdrawn"`
	CurrentBalance decimal.Decimal `json:"current_balance"`
}

// InvestmentEntry is a deposit into or withdrawal from a portfolio.
type InvestmentEntry struct {
	ID          uuid.UUID       `json:"id"`
	PortfolioID uuid.UUID       `json:"portfolio_id"`
	Type        EntryType       `json:"type"`
	Amount      decimal.Decimal `json:"amount"`
	Date        Date            `json:"date"`
	Description *string         `json:"description"`
	CreatedAt   time.Time       `json:"created_at"`
}

// PortfolioTotals are the summed entries of a portfolio.
type PortfolioTotals struct {
	Deposits    decimal.Decimal
	Withdrawals decimal.Decimal
}
