package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/Dan9191/finance-service/internal/ledger"
	"github.com/Dan9191/finance-service/internal/models"
	"github.com/Dan9191/finance-service/internal/repository"
)

type CreateIndicatorInput struct {
	Name        string               `json:"name" validate:"required,notblank,max=100"`
	Code        string               `json:"code" validate:"required,max=50,code"`
	Description *string              `json:"description" validate:"omitempty,max=500"`
	Type        models.IndicatorType `json:"type" validate:"required,oneof=percentage currency number"`
}

// ListIndicators returns the system indicators followed by the user's own.
func (s *Service) ListIndicators(ctx context.Context, userID uuid.UUID) ([]models.Indicator, error) {
	return s.store.ListIndicators(ctx, userID)
}

func (s *Service) CreateIndicator(ctx context.Context, userID uuid.UUID, in CreateIndicatorInput) (*models.Indicator, error) {
	if err := s.check(in); err != nil {
		return nil, err
	}
	owner := userID
	indicator := &models.Indicator{
		ID:          uuid.New(),
		UserID:      &owner,
		Name:        strings.TrimSpace(in.Name),
		Code:        in.Code,
		Description: in.Description,
		Type:        in.Type,
		IsActive:    true,
	}
	if err := s.store.CreateIndicator(ctx, indicator); err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return nil, fmt.Errorf("%w: indicator code %q already exists", ErrConflict, in.Code)
		}
		s.logError("CreateIndicator", "creating indicator", userID, err)
		return nil, err
	}
	return indicator, nil
}

// DeleteIndicator removes an own indicator. System indicators are not found.
func (s *Service) DeleteIndicator(ctx context.Context, userID, indicatorID uuid.UUID) error {
	return s.store.DeleteIndicator(ctx, indicatorID, userID)
}

// IndicatorValues evaluates the system indicators over a closed window.
// User-defined indicators carry no formula and are not evaluated.
func (s *Service) IndicatorValues(ctx context.Context, userID uuid.UUID, window models.Window) (*models.IndicatorValues, error) {
	if err := checkWindow(window, true); err != nil {
		return nil, err
	}
	key := s.reportKey(ctx, userID, "indicators", window.Key())
	values, err := cached(ctx, s, key, func() ([]models.IndicatorValue, error) {
		return s.evaluateIndicators(ctx, userID, window)
	})
	if err != nil {
		return nil, err
	}
	return &models.IndicatorValues{Indicators: values, PeriodStart: window.Start, PeriodEnd: window.End}, nil
}

func (s *Service) evaluateIndicators(ctx context.Context, userID uuid.UUID, window models.Window) ([]models.IndicatorValue, error) {
	indicators, err := s.store.ListIndicators(ctx, userID)
	if err != nil {
		return nil, err
	}
	totals, err := s.store.TotalsByType(ctx, userID, models.TransactionFilter{Window: window})
	if err != nil {
		return nil, err
	}
	expense := models.TypeExpense
	expenseCount, err := s.store.CountTransactions(ctx, userID, models.TransactionFilter{Window: window, Type: &expense})
	if err != nil {
		return nil, err
	}

	values := make([]models.IndicatorValue, 0, len(indicators))
	for _, ind := range indicators {
		if ind.UserID != nil {
			continue
		}
		value := models.IndicatorValue{Code: ind.Code, Name: ind.Name, Type: ind.Type}
		switch ind.Code {
		case models.IndicatorIncomeCommitted:
			value.Value = ledger.CommittedPercent(totals)
		case models.IndicatorIncomeAvailable:
			value.Value = ledger.AvailablePercent(totals)
		case models.IndicatorMonthlySavings:
			value.Value = totals.Net()
		case models.IndicatorExpenseCount:
			value.Value = decimal.NewFromInt(int64(expenseCount))
		default:
			continue
		}
		value.FormattedValue = s.formatValue(ind.Type, value.Value)
		values = append(values, value)
	}
	return values, nil
}

func (s *Service) formatValue(typ models.IndicatorType, v decimal.Decimal) string {
	switch typ {
	case models.IndicatorPercentage:
		return s.format.Percent(v)
	case models.IndicatorCurrency:
		return s.format.Currency(v)
	default:
		return s.format.Count(int(v.IntPart()))
	}
}
