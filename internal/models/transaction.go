package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// TransactionType is the direction of a money movement.
type TransactionType string

const (
	TypeIncome  TransactionType = "income"
	TypeExpense TransactionType = "expense"
)

// TransactionStatus controls whether a transaction counts in totals.
type TransactionStatus string

const (
	StatusPending   TransactionStatus = "pending"
	StatusPaid      TransactionStatus = "paid"
	StatusCancelled TransactionStatus = "cancelled"
)

// Transaction represents a single income or expense.
type Transaction struct {
	ID          uuid.UUID         `json:"id"`
	UserID      uuid.UUID         `json:"user_id"`
	Source      FundingSource     `json:"-"`
	CategoryID  *uuid.UUID        `json:"category_id"`
	Type        TransactionType   `json:"type"`
	Description string            `json:"description"`
	Amount      decimal.Decimal   `json:"amount"`
	Date        Date              `json:"date"`
	Status      TransactionStatus `json:"status"`
	IsRecurring bool              `json:"is_recurring"`
	RecurringID *uuid.UUID        `json:"recurring_id"`
	Notes       *string           `json:"notes"`
	ExternalRef *string           `json:"-"`
	CreatedAt   time.Time         `json:"created_at"`
	UpdatedAt   time.Time         `json:"updated_at"`

	// Filled on reads.
	AccountName    *string `json:"account_name,omitempty"`
	CreditCardName *string `json:"credit_card_name,omitempty"`
	CategoryName   *string `json:"category_name,omitempty"`
	CategoryColor  *string `json:"category_color,omitempty"`
}

// Counts reports whether the transaction participates in balances and totals.
func (t Transaction) Counts() bool {
	return t.Status != StatusCancelled
}

// SourceColumns returns the nullable (account_id, credit_card_id) pair.
func (t Transaction) SourceColumns() (*uuid.UUID, *uuid.UUID) {
	if t.Source == nil {
		return nil, nil
	}
	return t.Source.Columns()
}

type transactionFields Transaction

func (t Transaction) MarshalJSON() ([]byte, error) {
	accountID, cardID := t.SourceColumns()
	return json.Marshal(struct {
		transactionFields
		AccountID    *uuid.UUID `json:"account_id"`
		CreditCardID *uuid.UUID `json:"credit_card_id"`
	}{transactionFields(t), accountID, cardID})
}

// TransactionFilter narrows transaction listings. Limit <= 0 means no limit.
type TransactionFilter struct {
	Window       Window
	Type         *TransactionType
	Status       *TransactionStatus
	AccountID    *uuid.UUID
	CreditCardID *uuid.UUID
	CategoryID   *uuid.UUID
	RecurringID  *uuid.UUID
	Limit        int
	Offset       int
}

// Unpaged returns the filter without limit and offset.
func (f TransactionFilter) Unpaged() TransactionFilter {
	f.Limit, f.Offset = 0, 0
	return f
}

// Matches applies every predicate except pagination.
func (f TransactionFilter) Matches(t Transaction) bool {
	if !f.Window.Contains(t.Date) {
		return false
	}
	if f.Type != nil && t.Type != *f.Type {
		return false
	}
	if f.Status != nil && t.Status != *f.Status {
		return false
	}
	accountID, cardID := t.SourceColumns()
	if f.AccountID != nil && (accountID == nil || *accountID != *f.AccountID) {
		return false
	}
	if f.CreditCardID != nil && (cardID == nil || *cardID != *f.CreditCardID) {
		return false
	}
	if f.CategoryID != nil && (t.CategoryID == nil || *t.CategoryID != *f.CategoryID) {
		return false
	}
	if f.RecurringID != nil && (t.RecurringID == nil || *t.RecurringID != *f.RecurringID) {
		return false
	}
	return true
}

// TransactionList is the listing response.
type TransactionList struct {
	Transactions []Transaction   `json:"transactions"`
	Total        int             `json:"total"`
	TotalIncome  decimal.Decimal `json:"total_income"`
	TotalExpense decimal.Decimal `json:"total_expense"`
	Balance      decimal.Decimal `json:"balance"`
}

// ImportResult reports a statement import.
type ImportResult struct {
	Imported int `json:"imported"`
	Skipped  int `json:"skipped"`
}
