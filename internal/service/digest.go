package service

import (
	"context"

	"github.com/Dan9191/finance-service/internal/ledger"
	"github.com/Dan9191/finance-service/internal/models"
)

// DigestPeriod selects which subscribers a digest run serves.
type DigestPeriod string

const (
	DigestDaily  DigestPeriod = "daily"
	DigestWeekly DigestPeriod = "weekly"
)

const digestTopExpenses = 3

// Days is the number of whole days a digest covers.
func (p DigestPeriod) Days() int {
	if p == DigestWeekly {
		return 7
	}
	return 1
}

// BuildDigests summarizes the days before today for every subscriber of the
// period.
func (s *Service) BuildDigests(ctx context.Context, period DigestPeriod) ([]models.PeriodDigest, error) {
	subscribers, err := s.store.ListSummarySubscribers(ctx)
	if err != nil {
		return nil, err
	}
	window := ledger.PreviousDays(models.DateOf(s.today()), period.Days())

	digests := make([]models.PeriodDigest, 0, len(subscribers))
	for _, sub := range subscribers {
		if (period == DigestDaily && !sub.Daily) || (period == DigestWeekly && !sub.Weekly) {
			continue
		}
		filter := models.TransactionFilter{Window: window}
		totals, err := s.store.TotalsByType(ctx, sub.UserID, filter)
		if err != nil {
			return nil, err
		}
		count, err := s.store.CountTransactions(ctx, sub.UserID, filter)
		if err != nil {
			return nil, err
		}
		top, err := s.categoryBreakdown(ctx, sub.UserID, models.TypeExpense, window)
		if err != nil {
			return nil, err
		}
		if len(top) > digestTopExpenses {
			top = top[:digestTopExpenses]
		}
		digests = append(digests, models.PeriodDigest{
			Subscriber:       sub,
			Period:           window,
			Totals:           totals,
			TransactionCount: count,
			TopExpenses:      top,
		})
	}
	return digests, nil
}
