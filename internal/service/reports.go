package service

import (
	"context"

	"github.com/google/uuid"

	"github.com/Dan9191/finance-service/internal/ledger"
	"github.com/Dan9191/finance-service/internal/models"
)

// TransactionSummary totals a window by type and by category.
func (s *Service) TransactionSummary(ctx context.Context, userID uuid.UUID, window models.Window) (*models.TransactionSummary, error) {
	if err := checkWindow(window, false); err != nil {
		return nil, err
	}
	key := s.reportKey(ctx, userID, "summary", window.Key())
	return cached(ctx, s, key, func() (*models.TransactionSummary, error) {
		filter := models.TransactionFilter{Window: window}
		totals, err := s.store.TotalsByType(ctx, userID, filter)
		if err != nil {
			return nil, err
		}
		count, err := s.store.CountTransactions(ctx, userID, filter)
		if err != nil {
			return nil, err
		}
		expenses, err := s.categoryBreakdown(ctx, userID, models.TypeExpense, window)
		if err != nil {
			return nil, err
		}
		income, err := s.categoryBreakdown(ctx, userID, models.TypeIncome, window)
		if err != nil {
			return nil, err
		}
		return &models.TransactionSummary{
			TotalIncome:        totals.Income,
			TotalExpense:       totals.Expense,
			Balance:            totals.Net(),
			TransactionCount:   count,
			ExpensesByCategory: expenses,
			IncomeByCategory:   income,
		}, nil
	})
}

// CashFlow reports the daily movement of a closed window.
func (s *Service) CashFlow(ctx context.Context, userID uuid.UUID, window models.Window) (*models.CashFlowReport, error) {
	if err := checkWindow(window, true); err != nil {
		return nil, err
	}
	flow, err := s.dailyFlow(ctx, userID, window)
	if err != nil {
		return nil, err
	}
	totals := ledger.FlowTotals(flow)
	return &models.CashFlowReport{
		PeriodStart:  *window.Start,
		PeriodEnd:    *window.End,
		DailyFlow:    flow,
		TotalIncome:  totals.Income,
		TotalExpense: totals.Expense,
		NetFlow:      totals.Net(),
	}, nil
}

func (s *Service) categoryBreakdown(ctx context.Context, userID uuid.UUID, typ models.TransactionType, window models.Window) ([]models.CategoryBreakdown, error) {
	totals, err := s.store.TotalsByCategory(ctx, userID, typ, window)
	if err != nil {
		return nil, err
	}
	return ledger.Breakdown(totals), nil
}

func (s *Service) dailyFlow(ctx context.Context, userID uuid.UUID, window models.Window) ([]models.DailyCashFlow, error) {
	key := s.reportKey(ctx, userID, "cash-flow", window.Key())
	return cached(ctx, s, key, func() ([]models.DailyCashFlow, error) {
		flow, err := s.store.DailyCashFlow(ctx, userID, window)
		if err != nil {
			return nil, err
		}
		if flow == nil {
			flow = []models.DailyCashFlow{}
		}
		return flow, nil
	})
}
