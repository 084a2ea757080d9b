package service

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"github.com/Dan9191/finance-service/internal/ledger"
	"github.com/Dan9191/finance-service/internal/models"
)

const (
	defaultComparisonMonths = 6
	maxComparisonMonths     = 12
)

// DashboardSummary returns the headline figures of a window.
func (s *Service) DashboardSummary(ctx context.Context, userID uuid.UUID, window models.Window) (*models.DashboardSummary, error) {
	if err := checkWindow(window, true); err != nil {
		return nil, err
	}
	return s.dashboardSummary(ctx, userID, window)
}

func (s *Service) dashboardSummary(ctx context.Context, userID uuid.UUID, window models.Window) (*models.DashboardSummary, error) {
	key := s.reportKey(ctx, userID, "dashboard-summary", window.Key())
	return cached(ctx, s, key, func() (*models.DashboardSummary, error) {
		filter := models.TransactionFilter{Window: window}
		totals, err := s.store.TotalsByType(ctx, userID, filter)
		if err != nil {
			return nil, err
		}
		count, err := s.store.CountTransactions(ctx, userID, filter)
		if err != nil {
			return nil, err
		}
		accounts, err := s.store.ListAccounts(ctx, userID, false)
		if err != nil {
			return nil, err
		}
		balance := decimal.Zero
		for _, a := range accounts {
			balance = balance.Add(a.CurrentBalance)
		}
		return &models.DashboardSummary{
			TotalBalance:       balance,
			TotalIncome:        totals.Income,
			TotalExpense:       totals.Expense,
			Balance:            totals.Net(),
			IncomeCommittedPct: ledger.CommittedPercent(totals),
			AccountCount:       len(accounts),
			TransactionCount:   count,
		}, nil
	})
}

func (s *Service) ExpensesByCategory(ctx context.Context, userID uuid.UUID, window models.Window) ([]models.CategoryBreakdown, error) {
	return s.cachedBreakdown(ctx, userID, models.TypeExpense, window)
}

func (s *Service) IncomeByCategory(ctx context.Context, userID uuid.UUID, window models.Window) ([]models.CategoryBreakdown, error) {
	return s.cachedBreakdown(ctx, userID, models.TypeIncome, window)
}

func (s *Service) cachedBreakdown(ctx context.Context, userID uuid.UUID, typ models.TransactionType, window models.Window) ([]models.CategoryBreakdown, error) {
	if err := checkWindow(window, true); err != nil {
		return nil, err
	}
	key := s.reportKey(ctx, userID, "by-category", typ, window.Key())
	return cached(ctx, s, key, func() ([]models.CategoryBreakdown, error) {
		return s.categoryBreakdown(ctx, userID, typ, window)
	})
}

// DashboardCashFlow returns the sparse daily flow of a window.
func (s *Service) DashboardCashFlow(ctx context.Context, userID uuid.UUID, window models.Window) ([]models.DailyCashFlow, error) {
	if err := checkWindow(window, true); err != nil {
		return nil, err
	}
	return s.dailyFlow(ctx, userID, window)
}

// MonthlyComparison returns the trailing calendar months ending with the
// current one, oldest first. Zero months means the default of six.
func (s *Service) MonthlyComparison(ctx context.Context, userID uuid.UUID, months int) ([]models.MonthlyComparison, error) {
	if months == 0 {
		months = defaultComparisonMonths
	}
	if months < 1 || months > maxComparisonMonths {
		return nil, invalidField("months", "must be between 1 and 12")
	}

	windows := ledger.LastMonths(s.today(), months)
	key := s.reportKey(ctx, userID, "monthly", months, windows[len(windows)-1].Key)
	return cached(ctx, s, key, func() ([]models.MonthlyComparison, error) {
		out := make([]models.MonthlyComparison, 0, len(windows))
		for _, m := range windows {
			totals, err := s.store.TotalsByType(ctx, userID, models.TransactionFilter{Window: m.Window})
			if err != nil {
				return nil, err
			}
			out = append(out, models.MonthlyComparison{
				Month:   m.Key,
				Income:  totals.Income,
				Expense: totals.Expense,
				Balance: totals.Net(),
			})
		}
		return out, nil
	})
}

// Dashboard computes every section of the dashboard concurrently. Any
// failing section fails the whole request.
func (s *Service) Dashboard(ctx context.Context, userID uuid.UUID, window models.Window) (*models.DashboardData, error) {
	if err := checkWindow(window, true); err != nil {
		return nil, err
	}

	var data models.DashboardData
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		summary, err := s.dashboardSummary(gctx, userID, window)
		if err != nil {
			return err
		}
		data.Summary = *summary
		return nil
	})
	g.Go(func() (err error) {
		data.ExpensesByCategory, err = s.cachedBreakdown(gctx, userID, models.TypeExpense, window)
		return err
	})
	g.Go(func() (err error) {
		data.IncomeByCategory, err = s.cachedBreakdown(gctx, userID, models.TypeIncome, window)
		return err
	})
	g.Go(func() (err error) {
		data.CashFlow, err = s.dailyFlow(gctx, userID, window)
		return err
	})
	g.Go(func() (err error) {
		data.MonthlyComparison, err = s.MonthlyComparison(gctx, userID, defaultComparisonMonths)
		return err
	})
	if err := g.Wait(); err != nil {
		s.logError("Dashboard", "computing sections", userID, err)
		return nil, err
	}
	return &data, nil
}
