package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// IndicatorType drives how an indicator value is formatted.
type IndicatorType string

const (
	IndicatorPercentage IndicatorType = "percentage"
	IndicatorCurrency   IndicatorType = "currency"
	IndicatorNumber     IndicatorType = "number"
)

// System indicator codes.
const (
	IndicatorIncomeCommitted = "income_committed_pct"
	IndicatorIncomeAvailable = "income_invested_pct"
	IndicatorMonthlySavings  = "monthly_savings"
	IndicatorExpenseCount    = "expense_count"
)

// Indicator describes a metric. System indicators have no owner.
type Indicator struct {
	ID          uuid.UUID     `json:"id"`
	UserID      *uuid.UUID    `json:"user_id"`
	Name        string        `json:"name"`
	Code        string        `json:"code"`
	Description *string       `json:"description"`
	Type        IndicatorType `json:"type"`
	IsActive    bool          `json:"is_active"`
	CreatedAt   time.Time     `json:"created_at"`
}

// IndicatorValue is an indicator evaluated over a period.
type IndicatorValue struct {
	Code           string          `json:"code"`
	Name           string          `json:"name"`
	Value          decimal.Decimal `json:"value"`
	Type           IndicatorType   `json:"type"`
	FormattedValue string          `json:"formatted_value"`
}

// IndicatorValues is the response of the indicator evaluation.
type IndicatorValues struct {
	Indicators  []IndicatorValue `json:"indicators"`
	PeriodStart *Date            `json:"period_start"`
	PeriodEnd   *Date            `json:"period_end"`
}
