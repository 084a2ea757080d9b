package models

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// TypeTotals holds summed income and expense amounts.
type TypeTotals struct {
	Income  decimal.Decimal `json:"total_income"`
	Expense decimal.Decimal `json:"total_expense"`
}

// Net returns income minus expense.
func (t TypeTotals) Net() decimal.Decimal {
	return t.Income.Sub(t.Expense)
}

// Add accumulates amount under typ.
func (t *TypeTotals) Add(typ TransactionType, amount decimal.Decimal) {
	switch typ {
	case TypeIncome:
		t.Income = t.Income.Add(amount)
	case TypeExpense:
		t.Expense = t.Expense.Add(amount)
	}
}

// CategoryTotal is the sum of one category's transactions.
type CategoryTotal struct {
	CategoryID uuid.UUID       `json:"category_id"`
	Name       string          `json:"name"`
	Color      *string         `json:"color"`
	Total      decimal.Decimal `json:"total"`
}

// CategoryBreakdown is a category total with its share of the whole.
type CategoryBreakdown struct {
	CategoryID    uuid.UUID       `json:"category_id"`
	CategoryName  string          `json:"category_name"`
	CategoryColor *string         `json:"category_color"`
	Total         decimal.Decimal `json:"total"`
	Percentage    decimal.Decimal `json:"percentage"`
}

// DailyCashFlow is the movement of a single day.
type DailyCashFlow struct {
	Date    Date            `json:"date"`
	Income  decimal.Decimal `json:"income"`
	Expense decimal.Decimal `json:"expense"`
	Balance decimal.Decimal `json:"balance"`
}

// MonthlyComparison is the income and expense of a calendar month.
type MonthlyComparison struct {
	Month   string          `json:"month"` // Format: YYYY-MM
	Income  decimal.Decimal `json:"income"`
	Expense decimal.Decimal `json:"expense"`
	Balance decimal.Decimal `json:"balance"`
}

// DashboardSummary represents the headline figures of a period.
type DashboardSummary struct {
	TotalBalance       decimal.Decimal `json:"total_balance"`
	TotalIncome        decimal.Decimal `json:"total_income"`
	TotalExpense       decimal.Decimal `json:"total_expense"`
	Balance            decimal.Decimal `json:"balance"`
	IncomeCommittedPct decimal.Decimal `json:"income_committed_pct"`
	AccountCount       int             `json:"account_count"`
	TransactionCount   int             `json:"transaction_count"`
}

// DashboardData bundles every dashboard section.
type DashboardData struct {
	Summary            DashboardSummary    `json:"summary"`
	ExpensesByCategory []CategoryBreakdown `json:"expenses_by_category"`
	IncomeByCategory   []CategoryBreakdown `json:"income_by_category"`
	CashFlow           []DailyCashFlow     `json:"cash_flow"`
	MonthlyComparison  []MonthlyComparison `json:"monthly_comparison"`
}

// TransactionSummary represents the totals of a period.
type TransactionSummary struct {
	TotalIncome        decimal.Decimal     `json:"total_income"`
	TotalExpense       decimal.Decimal     `json:"total_expense"`
	Balance            decimal.Decimal     `json:"balance"`
	TransactionCount   int                 `json:"transaction_count"`
	ExpensesByCategory []CategoryBreakdown `json:"expenses_by_category"`
	IncomeByCategory   []CategoryBreakdown `json:"income_by_category"`
}

// CashFlowReport represents daily flow over a closed period.
type CashFlowReport struct {
	PeriodStart  Date            `json:"period_start"`
	PeriodEnd    Date            `json:"period_end"`
	DailyFlow    []DailyCashFlow `json:"daily_flow"`
	TotalIncome  decimal.Decimal `json:"total_income"`
	TotalExpense decimal.Decimal `json:"total_expense"`
	NetFlow      decimal.Decimal `json:"net_flow"`
}

// PeriodDigest is the summary mailed to a subscriber.
type PeriodDigest struct {
	Subscriber       SummarySubscriber
	Period           Window
	Totals           TypeTotals
	TransactionCount int
	TopExpenses      []CategoryBreakdown
}
