package service

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/Dan9191/finance-service/internal/models"
	"github.com/Dan9191/finance-service/internal/repository"
)

type CreatePortfolioInput struct {
	Name        string  `json:"name" validate:"required,notblank,max=100"`
	Type        *string `json:"type" validate:"omitempty,max=50"`
	Description *string `json:"description" validate:"omitempty,max=500"`
}

type UpdatePortfolioInput struct {
	Name        *string `json:"name" validate:"omitempty,notblank,min=1,max=100"`
	Type        *string `json:"type" validate:"omitempty,max=50"`
	Description *string `json:"description" validate:"omitempty,max=500"`
	IsActive    *bool   `json:"is_active"`
}

type CreateEntryInput struct {
	Type        models.EntryType `json:"type" validate:"required,oneof=deposit withdrawal"`
	Amount      decimal.Decimal  `json:"amount" validate:"money_pos"`
	Date        models.Date      `json:"date" validate:"required"`
	Description *string          `json:"description" validate:"omitempty,max=500"`
}

// withTotals fills the computed totals of a portfolio.
func withTotals(ctx context.Context, store repository.Store, p *models.Portfolio) error {
	totals, err := store.PortfolioTotals(ctx, p.ID)
	if err != nil {
		return err
	}
	p.TotalInvested = totals.Deposits
	p.TotalWithdrawn = totals.Withdrawals
	p.CurrentBalance = totals.Deposits.Sub(totals.Withdrawals)
	return nil
}

func (s *Service) CreatePortfolio(ctx context.Context, userID uuid.UUID, in CreatePortfolioInput) (*models.Portfolio, error) {
	if err := s.check(in); err != nil {
		return nil, err
	}
	portfolio := &models.Portfolio{
		ID:             uuid.New(),
		UserID:         userID,
		Name:           strings.TrimSpace(in.Name),
		Type:           in.Type,
		Description:    in.Description,
		IsActive:       true,
		TotalInvested:  decimal.Zero,
		TotalWithdrawn: decimal.Zero,
		CurrentBalance: decimal.Zero,
	}
	if err := s.store.CreatePortfolio(ctx, portfolio); err != nil {
		s.logError("CreatePortfolio", "creating portfolio", userID, err)
		return nil, err
	}
	s.log.Infof("Portfolio created for user %s: %s", userID, portfolio.ID)
	return portfolio, nil
}

func (s *Service) GetPortfolio(ctx context.Context, userID, portfolioID uuid.UUID) (*models.Portfolio, error) {
	portfolio, err := s.store.GetPortfolio(ctx, portfolioID, userID)
	if err != nil {
		return nil, err
	}
	if err := withTotals(ctx, s.store, portfolio); err != nil {
		return nil, err
	}
	return portfolio, nil
}

func (s *Service) ListPortfolios(ctx context.Context, userID uuid.UUID, includeInactive bool) ([]models.Portfolio, error) {
	portfolios, err := s.store.ListPortfolios(ctx, userID, includeInactive)
	if err != nil {
		return nil, err
	}
	for i := range portfolios {
		if err := withTotals(ctx, s.store, &portfolios[i]); err != nil {
			return nil, err
		}
	}
	return portfolios, nil
}

func (s *Service) UpdatePortfolio(ctx context.Context, userID, portfolioID uuid.UUID, in UpdatePortfolioInput) (*models.Portfolio, error) {
	if err := s.check(in); err != nil {
		return nil, err
	}
	portfolio, err := s.store.GetPortfolio(ctx, portfolioID, userID)
	if err != nil {
		return nil, err
	}
	if in.Name != nil {
		portfolio.Name = strings.TrimSpace(*in.Name)
	}
	if in.Type != nil {
		portfolio.Type = in.Type
	}
	if in.Description != nil {
		portfolio.Description = in.Description
	}
	if in.IsActive != nil {
		portfolio.IsActive = *in.IsActive
	}
	if err := s.store.UpdatePortfolio(ctx, portfolio); err != nil {
		s.logError("UpdatePortfolio", "updating portfolio", portfolioID, err)
		return nil, err
	}
	if err := withTotals(ctx, s.store, portfolio); err != nil {
		return nil, err
	}
	return portfolio, nil
}

// DeletePortfolio removes the portfolio and its entries.
func (s *Service) DeletePortfolio(ctx context.Context, userID, portfolioID uuid.UUID) error {
	return s.store.DeletePortfolio(ctx, portfolioID, userID)
}

// AddEntry records a deposit or withdrawal in an owned portfolio.
func (s *Service) AddEntry(ctx context.Context, userID, portfolioID uuid.UUID, in CreateEntryInput) (*models.InvestmentEntry, error) {
	if err := s.check(in); err != nil {
		return nil, err
	}
	if _, err := s.store.GetPortfolio(ctx, portfolioID, userID); err != nil {
		return nil, err
	}
	entry := &models.InvestmentEntry{
		ID:          uuid.New(),
		PortfolioID: portfolioID,
		Type:        in.Type,
		Amount:      in.Amount,
		Date:        in.Date,
		Description: in.Description,
	}
	if err := s.store.CreateEntry(ctx, entry); err != nil {
		s.logError("AddEntry", "creating entry", portfolioID, err)
		return nil, err
	}
	return entry, nil
}

// ListEntries returns the entries of an owned portfolio, newest first.
func (s *Service) ListEntries(ctx context.Context, userID, portfolioID uuid.UUID) ([]models.InvestmentEntry, error) {
	if _, err := s.store.GetPortfolio(ctx, portfolioID, userID); err != nil {
		return nil, err
	}
	return s.store.ListEntries(ctx, portfolioID)
}

func (s *Service) DeleteEntry(ctx context.Context, userID, portfolioID, entryID uuid.UUID) error {
	if _, err := s.store.GetPortfolio(ctx, portfolioID, userID); err != nil {
		return err
	}
	return s.store.DeleteEntry(ctx, entryID, portfolioID)
}
