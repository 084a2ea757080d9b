package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CreditCard represents a credit line. CurrentInvoice and AvailableLimit are
// computed when the card is read, never stored.
type CreditCard struct {
	ID             uuid.UUID       `json:"id"`
	UserID         uuid.UUID       `json:"user_id"`
	Name           string          `json:"name"`
	Institution    string          `json:"institution"`
	Limit          decimal.Decimal `json:"limit"`
	ClosingDay     int             `json:"closing_day"`
	DueDay         int             `json:"due_day"`
	Color          *string         `json:"color"`
	IsActive       bool            `json:"is_active"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
	CurrentInvoice decimal.Decimal `json:"current_invoice"`
	AvailableLimit decimal.Decimal `json:"available_limit"`
}

// CardList is the listing response.
type CardList struct {
	Cards      []CreditCard    `json:"cards"`
	Total      int             `json:"total"`
	TotalLimit decimal.Decimal `json:"total_limit"`
}

// Invoice is the open amount of a card.
type Invoice struct {
	CardID         uuid.UUID       `json:"card_id"`
	Limit          decimal.Decimal `json:"limit"`
	CurrentInvoice decimal.Decimal `json:"current_invoice"`
	AvailableLimit decimal.Decimal `json:"available_limit"`
}
