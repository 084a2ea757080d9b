package service

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/Dan9191/finance-service/internal/models"
)

type CreateCardInput struct {
	Name        string          `json:"name" validate:"required,notblank,max=100"`
	Institution string          `json:"institution" validate:"required,notblank,max=100"`
	Limit       decimal.Decimal `json:"limit" validate:"money"`
	ClosingDay  int             `json:"closing_day" validate:"required,min=1,max=31"`
	DueDay      int             `json:"due_day" validate:"required,min=1,max=31"`
	Color       *string         `json:"color" validate:"omitempty,color"`
}

type UpdateCardInput struct {
	Name        *string          `json:"name" validate:"omitempty,notblank,min=1,max=100"`
	Institution *string          `json:"institution" validate:"omitempty,notblank,min=1,max=100"`
	Limit       *decimal.Decimal `json:"limit" validate:"omitempty,money"`
	ClosingDay  *int             `json:"closing_day" validate:"omitempty,min=1,max=31"`
	DueDay      *int             `json:"due_day" validate:"omitempty,min=1,max=31"`
	Color       *string          `json:"color" validate:"omitempty,color"`
	IsActive    *bool            `json:"is_active"`
}

func (s *Service) CreateCard(ctx context.Context, userID uuid.UUID, in CreateCardInput) (*models.CreditCard, error) {
	if err := s.check(in); err != nil {
		return nil, err
	}

	card := &models.CreditCard{
		ID:             uuid.New(),
		UserID:         userID,
		Name:           strings.TrimSpace(in.Name),
		Institution:    strings.TrimSpace(in.Institution),
		Limit:          in.Limit,
		ClosingDay:     in.ClosingDay,
		DueDay:         in.DueDay,
		Color:          in.Color,
		IsActive:       true,
		CurrentInvoice: decimal.Zero,
		AvailableLimit: in.Limit,
	}
	if err := s.store.CreateCard(ctx, card); err != nil {
		s.logError("CreateCard", "creating card", userID, err)
		return nil, err
	}

	s.log.Infof("Credit card created for user %s: %s", userID, card.ID)
	return card, nil
}

func (s *Service) GetCard(ctx context.Context, userID, cardID uuid.UUID) (*models.CreditCard, error) {
	card, err := s.store.GetCard(ctx, cardID, userID)
	if err != nil {
		return nil, err
	}
	if err := withInvoice(ctx, s.store, card); err != nil {
		return nil, err
	}
	return card, nil
}

// ListCards returns the user's cards with their invoices. TotalLimit covers
// active cards only.
func (s *Service) ListCards(ctx context.Context, userID uuid.UUID, includeInactive bool) (*models.CardList, error) {
	cards, err := s.store.ListCards(ctx, userID, includeInactive)
	if err != nil {
		return nil, err
	}
	list := &models.CardList{Cards: cards, Total: len(cards), TotalLimit: decimal.Zero}
	for i := range cards {
		if err := withInvoice(ctx, s.store, &cards[i]); err != nil {
			return nil, err
		}
		if cards[i].IsActive {
			list.TotalLimit = list.TotalLimit.Add(cards[i].Limit)
		}
	}
	return list, nil
}

func (s *Service) UpdateCard(ctx context.Context, userID, cardID uuid.UUID, in UpdateCardInput) (*models.CreditCard, error) {
	if err := s.check(in); err != nil {
		return nil, err
	}
	card, err := s.store.GetCard(ctx, cardID, userID)
	if err != nil {
		return nil, err
	}

	if in.Name != nil {
		card.Name = strings.TrimSpace(*in.Name)
	}
	if in.Institution != nil {
		card.Institution = strings.TrimSpace(*in.Institution)
	}
	if in.Limit != nil {
		card.Limit = *in.Limit
	}
	if in.ClosingDay != nil {
		card.ClosingDay = *in.ClosingDay
	}
	if in.DueDay != nil {
		card.DueDay = *in.DueDay
	}
	if in.Color != nil {
		card.Color = in.Color
	}
	if in.IsActive != nil {
		card.IsActive = *in.IsActive
	}

	if err := s.store.UpdateCard(ctx, card); err != nil {
		s.logError("UpdateCard", "updating card", cardID, err)
		return nil, err
	}
	if err := withInvoice(ctx, s.store, card); err != nil {
		return nil, err
	}
	return card, nil
}

// DeleteCard removes the card and every transaction charged to it.
func (s *Service) DeleteCard(ctx context.Context, userID, cardID uuid.UUID) error {
	if err := s.store.DeleteCard(ctx, cardID, userID); err != nil {
		return err
	}
	s.invalidateReports(ctx, userID)
	s.log.Infof("Credit card %s deleted for user %s", cardID, userID)
	return nil
}

// GetInvoice returns the open invoice of an owned card.
func (s *Service) GetInvoice(ctx context.Context, userID, cardID uuid.UUID) (*models.Invoice, error) {
	card, err := s.GetCard(ctx, userID, cardID)
	if err != nil {
		return nil, err
	}
	return &models.Invoice{
		CardID:         card.ID,
		Limit:          card.Limit,
		CurrentInvoice: card.CurrentInvoice,
		AvailableLimit: card.AvailableLimit,
	}, nil
}
