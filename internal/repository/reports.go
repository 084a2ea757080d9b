package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/Dan9191/finance-service/internal/ledger"
	"github.com/Dan9191/finance-service/internal/models"
)

// TotalsByType sums non-cancelled transactions matching the filter.
func (r *Repository) TotalsByType(ctx context.Context, userID uuid.UUID, filter models.TransactionFilter) (models.TypeTotals, error) {
	c := transactionConditions(userID, filter)
	c.raw("t.status <> 'cancelled'")
	return r.sumByType(ctx, "sum transactions by type",
		`SELECT t.type, COALESCE(SUM(t.amount), 0) FROM transactions t WHERE `+c.where()+` GROUP BY t.type`, c.args...)
}

func (r *Repository) TotalsByCategory(ctx context.Context, userID uuid.UUID, typ models.TransactionType, window models.Window) ([]models.CategoryTotal, error) {
	c := transactionConditions(userID, models.TransactionFilter{Window: window, Type: &typ})
	c.raw("t.status <> 'cancelled'")
	rows, err := r.q.QueryContext(ctx, `
		SELECT cat.id, cat.name, cat.color, SUM(t.amount) AS total
		FROM transactions t
		JOIN categories cat ON cat.id = t.category_id
		WHERE `+c.where()+`
		GROUP BY cat.id, cat.name, cat.color
		ORDER BY total DESC, cat.name`, c.args...)
	if err != nil {
		return nil, wrap("sum transactions by category", err)
	}
	defer rows.Close()

	totals := []models.CategoryTotal{}
	for rows.Next() {
		var t models.CategoryTotal
		if err := rows.Scan(&t.CategoryID, &t.Name, &t.Color, &t.Total); err != nil {
			return nil, wrap("scan category total", err)
		}
		totals = append(totals, t)
	}
	return totals, wrapRows(rows, "sum transactions by category")
}

func (r *Repository) DailyCashFlow(ctx context.Context, userID uuid.UUID, window models.Window) ([]models.DailyCashFlow, error) {
	c := transactionConditions(userID, models.TransactionFilter{Window: window})
	c.raw("t.status <> 'cancelled'")
	rows, err := r.q.QueryContext(ctx, `
		SELECT t.date, t.type, SUM(t.amount)
		FROM transactions t
		WHERE `+c.where()+`
		GROUP BY t.date, t.type
		ORDER BY t.date`, c.args...)
	if err != nil {
		return nil, wrap("daily cash flow", err)
	}
	defer rows.Close()

	flow := []models.DailyCashFlow{}
	var day models.Date
	var totals models.TypeTotals
	started := false
	for rows.Next() {
		var date models.Date
		var typ models.TransactionType
		var sum decimal.Decimal
		if err := rows.Scan(&date, &typ, &sum); err != nil {
			return nil, wrap("scan daily cash flow", err)
		}
		if started && !date.Equal(day) {
			flow = append(flow, ledger.FlowEntry(day, totals))
			totals = models.TypeTotals{}
		}
		day, started = date, true
		totals.Add(typ, sum)
	}
	if err := wrapRows(rows, "daily cash flow"); err != nil {
		return nil, err
	}
	if started {
		flow = append(flow, ledger.FlowEntry(day, totals))
	}
	return flow, nil
}
