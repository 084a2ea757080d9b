// Package ledger holds the money arithmetic shared by every store: balances,
// invoices, totals and percentages over transaction sets.
package ledger

import (
	"sort"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/Dan9191/finance-service/internal/models"
)

var hundred = decimal.NewFromInt(100)

// Balance applies ledger totals to an opening balance.
func Balance(initial decimal.Decimal, totals models.TypeTotals) decimal.Decimal {
	return initial.Add(totals.Income).Sub(totals.Expense)
}

// AccountTotals sums the counted transactions funded by accountID.
func AccountTotals(txs []models.Transaction, accountID uuid.UUID) models.TypeTotals {
	var totals models.TypeTotals
	for _, tx := range txs {
		if !tx.Counts() {
			continue
		}
		if id, ok := models.SourceAccount(tx.Source); ok && id == accountID {
			totals.Add(tx.Type, tx.Amount)
		}
	}
	return totals
}

// Invoice sums the pending expenses charged to cardID.
func Invoice(txs []models.Transaction, cardID uuid.UUID) decimal.Decimal {
	total := decimal.Zero
	for _, tx := range txs {
		if tx.Type != models.TypeExpense || tx.Status != models.StatusPending {
			continue
		}
		if id, ok := models.SourceCard(tx.Source); ok && id == cardID {
			total = total.Add(tx.Amount)
		}
	}
	return total
}

// AvailableLimit is the card limit minus its open invoice. It may be negative.
func AvailableLimit(limit, invoice decimal.Decimal) decimal.Decimal {
	return limit.Sub(invoice)
}

// Percent returns part/whole*100 rounded to two places, or zero when whole is zero.
func Percent(part, whole decimal.Decimal) decimal.Decimal {
	if whole.IsZero() {
		return decimal.Zero
	}
	return part.Mul(hundred).DivRound(whole, 2)
}

// CommittedPercent is the share of income spent.
func CommittedPercent(totals models.TypeTotals) decimal.Decimal {
	if !totals.Income.IsPositive() {
		return decimal.Zero
	}
	return Percent(totals.Expense, totals.Income)
}

// AvailablePercent is the share of income left over, zero when nothing is left.
func AvailablePercent(totals models.TypeTotals) decimal.Decimal {
	savings := totals.Net()
	if !totals.Income.IsPositive() || !savings.IsPositive() {
		return decimal.Zero
	}
	return Percent(savings, totals.Income)
}

// Totals sums the counted transactions inside the window.
func Totals(txs []models.Transaction, window models.Window) models.TypeTotals {
	var totals models.TypeTotals
	for _, tx := range txs {
		if tx.Counts() && window.Contains(tx.Date) {
			totals.Add(tx.Type, tx.Amount)
		}
	}
	return totals
}

// CategoryTotals groups counted transactions of typ by category. Transactions
// without a known category are left out. The result is ordered by total
// descending, then by name.
func CategoryTotals(txs []models.Transaction, categories map[uuid.UUID]models.Category, typ models.TransactionType, window models.Window) []models.CategoryTotal {
	byID := make(map[uuid.UUID]*models.CategoryTotal)
	for _, tx := range txs {
		if !tx.Counts() || tx.Type != typ || tx.CategoryID == nil || !window.Contains(tx.Date) {
			continue
		}
		cat, ok := categories[*tx.CategoryID]
		if !ok {
			continue
		}
		total, ok := byID[cat.ID]
		if !ok {
			total = &models.CategoryTotal{CategoryID: cat.ID, Name: cat.Name, Color: cat.Color}
			byID[cat.ID] = total
		}
		total.Total = total.Total.Add(tx.Amount)
	}

	out := make([]models.CategoryTotal, 0, len(byID))
	for _, total := range byID {
		out = append(out, *total)
	}
	SortCategoryTotals(out)
	return out
}

// SortCategoryTotals orders totals by amount descending, then name.
func SortCategoryTotals(totals []models.CategoryTotal) {
	sort.SliceStable(totals, func(i, j int) bool {
		if c := totals[i].Total.Cmp(totals[j].Total); c != 0 {
			return c > 0
		}
		return totals[i].Name < totals[j].Name
	})
}

// Breakdown attaches each category's share of the summed totals.
func Breakdown(totals []models.CategoryTotal) []models.CategoryBreakdown {
	whole := decimal.Zero
	for _, t := range totals {
		whole = whole.Add(t.Total)
	}
	out := make([]models.CategoryBreakdown, 0, len(totals))
	for _, t := range totals {
		out = append(out, models.CategoryBreakdown{
			CategoryID:    t.CategoryID,
			CategoryName:  t.Name,
			CategoryColor: t.Color,
			Total:         t.Total,
			Percentage:    Percent(t.Total, whole),
		})
	}
	return out
}

// DailyFlow returns one entry per date holding at least one counted
// transaction inside the window, ascending by date.
func DailyFlow(txs []models.Transaction, window models.Window) []models.DailyCashFlow {
	byDay := make(map[models.Date]*models.TypeTotals)
	for _, tx := range txs {
		if !tx.Counts() || !window.Contains(tx.Date) {
			continue
		}
		day, ok := byDay[tx.Date]
		if !ok {
			day = &models.TypeTotals{}
			byDay[tx.Date] = day
		}
		day.Add(tx.Type, tx.Amount)
	}

	out := make([]models.DailyCashFlow, 0, len(byDay))
	for date, totals := range byDay {
		out = append(out, FlowEntry(date, *totals))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out
}

// FlowEntry builds a daily entry from a day's totals.
func FlowEntry(date models.Date, totals models.TypeTotals) models.DailyCashFlow {
	return models.DailyCashFlow{
		Date:    date,
		Income:  totals.Income,
		Expense: totals.Expense,
		Balance: totals.Net(),
	}
}

// FlowTotals sums a daily flow.
func FlowTotals(flow []models.DailyCashFlow) models.TypeTotals {
	var totals models.TypeTotals
	for _, day := range flow {
		totals.Income = totals.Income.Add(day.Income)
		totals.Expense = totals.Expense.Add(day.Expense)
	}
	return totals
}
