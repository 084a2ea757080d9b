package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// IntegrationStatus is the connection state of a bank integration.
type IntegrationStatus string

const (
	IntegrationDisconnected IntegrationStatus = "disconnected"
	IntegrationConnected    IntegrationStatus = "connected"
	IntegrationError        IntegrationStatus = "error"
)

// BankProvider is a bank that can be connected.
type BankProvider struct {
	Code      string `json:"code"`
	Name      string `json:"name"`
	LogoURL   string `json:"logo_url"`
	Available bool   `json:"available"`
}

// BankIntegration is a user's connection to a provider. Config holds the
// encrypted provider settings.
type BankIntegration struct {
	ID          uuid.UUID         `json:"id"`
	UserID      uuid.UUID         `json:"user_id"`
	Provider    string            `json:"provider"`
	Status      IntegrationStatus `json:"status"`
	ConnectedAt *time.Time        `json:"connected_at"`
	LastSyncAt  *time.Time        `json:"last_sync_at"`
	Config      *string           `json:"-"`
	CreatedAt   time.Time         `json:"created_at"`
	UpdatedAt   time.Time         `json:"updated_at"`
}

// WhatsAppSettings are a user's notification preferences.
type WhatsAppSettings struct {
	ID                   *uuid.UUID       `json:"id"`
	UserID               uuid.UUID        `json:"user_id"`
	PhoneNumber          *string          `json:"phone_number"`
	IsActive             bool             `json:"is_active"`
	AlertOnHighExpense   bool             `json:"alert_on_high_expense"`
	HighExpenseThreshold *decimal.Decimal `json:"high_expense_threshold"`
	DailySummary         bool             `json:"daily_summary"`
	WeeklySummary        bool             `json:"weekly_summary"`
	CreatedAt            *time.Time       `json:"created_at"`
	UpdatedAt            *time.Time       `json:"updated_at"`
}

// SummarySubscriber is a user that receives periodic summaries.
type SummarySubscriber struct {
	UserID uuid.UUID
	Email  string
	Name   string
	Daily  bool
	Weekly bool
}
