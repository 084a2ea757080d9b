package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Dan9191/finance-service/internal/models"
)

func TestCategoryBreakdown(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	u := f.user(t, "ana@example.com")
	a := f.account(t, u.ID, "0")
	food := f.category(t, u.ID, "Food", models.TypeExpense)
	transport := f.category(t, u.ID, "Transport", models.TypeExpense)

	f.tx(t, u.ID, a.ID, models.TypeExpense, "100", withCategory(food.ID))
	f.tx(t, u.ID, a.ID, models.TypeExpense, "200", withCategory(food.ID))
	f.tx(t, u.ID, a.ID, models.TypeExpense, "100", withCategory(transport.ID))
	// Outside the window.
	f.tx(t, u.ID, a.ID, models.TypeExpense, "900", withCategory(transport.ID), onDate(models.NewDate(2024, time.April, 1)))

	breakdown, err := f.svc.ExpensesByCategory(ctx, u.ID, march())
	require.NoError(t, err)
	require.Len(t, breakdown, 2)
	assert.Equal(t, "Food", breakdown[0].CategoryName)
	assert.Equal(t, "300.00", breakdown[0].Total.StringFixed(2))
	assert.Equal(t, "75.00", breakdown[0].Percentage.StringFixed(2))
	assert.Equal(t, "Transport", breakdown[1].CategoryName)
	assert.Equal(t, "25.00", breakdown[1].Percentage.StringFixed(2))

	income, err := f.svc.IncomeByCategory(ctx, u.ID, march())
	require.NoError(t, err)
	assert.Empty(t, income)

	summary, err := f.svc.TransactionSummary(ctx, u.ID, march())
	require.NoError(t, err)
	assert.Equal(t, "400.00", summary.TotalExpense.StringFixed(2))
	assert.Equal(t, 3, summary.TransactionCount)
	assert.Len(t, summary.ExpensesByCategory, 2)
}

func TestDashboardRequiresWindow(t *testing.T) {
	f := newFixture(t)
	u := f.user(t, "ana@example.com")

	_, err := f.svc.Dashboard(context.Background(), u.ID, models.Window{})
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "is required", verr.Fields["start_date"])
	assert.Equal(t, "is required", verr.Fields["end_date"])
}

func TestDashboardSummaryAndInvalidation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	u := f.user(t, "ana@example.com")
	a := f.account(t, u.ID, "1000")
	f.account(t, u.ID, "500")
	f.tx(t, u.ID, a.ID, models.TypeIncome, "800")
	f.tx(t, u.ID, a.ID, models.TypeExpense, "200")

	summary, err := f.svc.DashboardSummary(ctx, u.ID, march())
	require.NoError(t, err)
	assert.Equal(t, "2100.00", summary.TotalBalance.StringFixed(2))
	assert.Equal(t, "800.00", summary.TotalIncome.StringFixed(2))
	assert.Equal(t, "200.00", summary.TotalExpense.StringFixed(2))
	assert.Equal(t, "600.00", summary.Balance.StringFixed(2))
	assert.Equal(t, "25.00", summary.IncomeCommittedPct.StringFixed(2))
	assert.Equal(t, 2, summary.AccountCount)
	assert.Equal(t, 2, summary.TransactionCount)

	// A new transaction must not be hidden by the cached report.
	f.tx(t, u.ID, a.ID, models.TypeExpense, "200")
	summary, err = f.svc.DashboardSummary(ctx, u.ID, march())
	require.NoError(t, err)
	assert.Equal(t, "400.00", summary.TotalExpense.StringFixed(2))
	assert.Equal(t, "50.00", summary.IncomeCommittedPct.StringFixed(2))
	assert.Equal(t, "1900.00", summary.TotalBalance.StringFixed(2))
}

func TestFullDashboard(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	u := f.user(t, "ana@example.com")
	a := f.account(t, u.ID, "0")
	food := f.category(t, u.ID, "Food", models.TypeExpense)
	f.tx(t, u.ID, a.ID, models.TypeIncome, "500", onDate(models.NewDate(2024, time.March, 2)))
	f.tx(t, u.ID, a.ID, models.TypeExpense, "120", withCategory(food.ID), onDate(models.NewDate(2024, time.March, 2)))
	f.tx(t, u.ID, a.ID, models.TypeExpense, "30", onDate(models.NewDate(2024, time.March, 9)))

	data, err := f.svc.Dashboard(ctx, u.ID, march())
	require.NoError(t, err)
	assert.Equal(t, "150.00", data.Summary.TotalExpense.StringFixed(2))
	require.Len(t, data.ExpensesByCategory, 1)
	assert.Equal(t, "100.00", data.ExpensesByCategory[0].Percentage.StringFixed(2))
	assert.Empty(t, data.IncomeByCategory)

	require.Len(t, data.CashFlow, 2)
	assert.Equal(t, "2024-03-02", data.CashFlow[0].Date.String())
	assert.Equal(t, "380.00", data.CashFlow[0].Balance.StringFixed(2))
	assert.Equal(t, "2024-03-09", data.CashFlow[1].Date.String())

	require.Len(t, data.MonthlyComparison, 6)
	assert.Equal(t, "2023-10", data.MonthlyComparison[0].Month)
	assert.Equal(t, "2024-03", data.MonthlyComparison[5].Month)
}

func TestMonthlyComparison(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	u := f.user(t, "ana@example.com")
	a := f.account(t, u.ID, "0")
	f.tx(t, u.ID, a.ID, models.TypeIncome, "500", onDate(models.NewDate(2024, time.February, 29)))
	f.tx(t, u.ID, a.ID, models.TypeExpense, "80", onDate(models.NewDate(2024, time.March, 1)))
	f.tx(t, u.ID, a.ID, models.TypeExpense, "999", onDate(models.NewDate(2023, time.December, 31)))

	months, err := f.svc.MonthlyComparison(ctx, u.ID, 3)
	require.NoError(t, err)
	require.Len(t, months, 3)
	assert.Equal(t, []string{"2024-01", "2024-02", "2024-03"}, []string{months[0].Month, months[1].Month, months[2].Month})
	assert.True(t, months[0].Income.IsZero())
	assert.True(t, months[0].Expense.IsZero())
	assert.Equal(t, "500.00", months[1].Income.StringFixed(2))
	assert.Equal(t, "80.00", months[2].Expense.StringFixed(2))
	assert.Equal(t, "-80.00", months[2].Balance.StringFixed(2))

	_, err = f.svc.MonthlyComparison(ctx, u.ID, 13)
	requireField(t, err, "months")
}

func TestCashFlowReport(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	u := f.user(t, "ana@example.com")
	a := f.account(t, u.ID, "0")
	f.tx(t, u.ID, a.ID, models.TypeIncome, "100", onDate(models.NewDate(2024, time.March, 3)))
	f.tx(t, u.ID, a.ID, models.TypeExpense, "40", onDate(models.NewDate(2024, time.March, 3)))
	f.tx(t, u.ID, a.ID, models.TypeExpense, "10", onDate(models.NewDate(2024, time.March, 20)))

	report, err := f.svc.CashFlow(ctx, u.ID, march())
	require.NoError(t, err)
	require.Len(t, report.DailyFlow, 2)
	assert.Equal(t, "60.00", report.DailyFlow[0].Balance.StringFixed(2))
	assert.Equal(t, "50.00", report.NetFlow.StringFixed(2))
	assert.Equal(t, "2024-03-01", report.PeriodStart.String())

	_, err = f.svc.CashFlow(ctx, u.ID, models.Window{})
	requireField(t, err, "start_date")
}

func TestIndicatorValues(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	u := f.user(t, "ana@example.com")
	a := f.account(t, u.ID, "0")
	f.tx(t, u.ID, a.ID, models.TypeIncome, "1000")
	f.tx(t, u.ID, a.ID, models.TypeExpense, "250")
	f.tx(t, u.ID, a.ID, models.TypeExpense, "150")

	_, err := f.svc.CreateIndicator(ctx, u.ID, CreateIndicatorInput{Name: "Custom", Code: "custom_ratio", Type: models.IndicatorNumber})
	require.NoError(t, err)
	_, err = f.svc.CreateIndicator(ctx, u.ID, CreateIndicatorInput{Name: "Again", Code: "custom_ratio", Type: models.IndicatorNumber})
	assert.ErrorIs(t, err, ErrConflict)
	_, err = f.svc.CreateIndicator(ctx, u.ID, CreateIndicatorInput{Name: "Bad", Code: "Bad Code", Type: models.IndicatorNumber})
	requireField(t, err, "code")

	listed, err := f.svc.ListIndicators(ctx, u.ID)
	require.NoError(t, err)
	assert.Len(t, listed, 5)

	values, err := f.svc.IndicatorValues(ctx, u.ID, march())
	require.NoError(t, err)
	require.Len(t, values.Indicators, 4)

	byCode := map[string]models.IndicatorValue{}
	for _, v := range values.Indicators {
		byCode[v.Code] = v
	}
	assert.Equal(t, "40.00", byCode[models.IndicatorIncomeCommitted].Value.StringFixed(2))
	assert.Equal(t, "40.0%", byCode[models.IndicatorIncomeCommitted].FormattedValue)
	assert.Equal(t, "60.0%", byCode[models.IndicatorIncomeAvailable].FormattedValue)
	assert.Equal(t, "$ 600.00", byCode[models.IndicatorMonthlySavings].FormattedValue)
	assert.Equal(t, "2", byCode[models.IndicatorExpenseCount].FormattedValue)
	assert.Equal(t, "2024-03-01", values.PeriodStart.String())
}
