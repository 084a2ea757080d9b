package service

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"github.com/Dan9191/finance-service/internal/models"
)

type CreateCategoryInput struct {
	Name  string                 `json:"name" validate:"required,notblank,max=100"`
	Type  models.TransactionType `json:"type" validate:"required,oneof=income expense"`
	Icon  *string                `json:"icon" validate:"omitempty,max=50"`
	Color *string                `json:"color" validate:"omitempty,color"`
}

type UpdateCategoryInput struct {
	Name     *string `json:"name" validate:"omitempty,notblank,min=1,max=100"`
	Icon     *string `json:"icon" validate:"omitempty,max=50"`
	Color    *string `json:"color" validate:"omitempty,color"`
	IsActive *bool   `json:"is_active"`
}

// ListCategories returns the global and own active categories, optionally of one type.
func (s *Service) ListCategories(ctx context.Context, userID uuid.UUID, typ *models.TransactionType) ([]models.Category, error) {
	if typ != nil && *typ != models.TypeIncome && *typ != models.TypeExpense {
		return nil, invalidField("type", "must be one of: income, expense")
	}
	return s.store.ListCategories(ctx, userID, typ)
}

func (s *Service) GetCategory(ctx context.Context, userID, categoryID uuid.UUID) (*models.Category, error) {
	return s.store.GetCategory(ctx, categoryID, userID)
}

func (s *Service) CreateCategory(ctx context.Context, userID uuid.UUID, in CreateCategoryInput) (*models.Category, error) {
	if err := s.check(in); err != nil {
		return nil, err
	}
	owner := userID
	category := &models.Category{
		ID:       uuid.New(),
		UserID:   &owner,
		Name:     strings.TrimSpace(in.Name),
		Type:     in.Type,
		Icon:     in.Icon,
		Color:    in.Color,
		IsActive: true,
	}
	if err := s.store.CreateCategory(ctx, category); err != nil {
		s.logError("CreateCategory", "creating category", userID, err)
		return nil, err
	}
	s.log.Infof("Category created for user %s: %s", userID, category.Name)
	return category, nil
}

// UpdateCategory changes an own category. Global categories are read-only
// and reported as not found.
func (s *Service) UpdateCategory(ctx context.Context, userID, categoryID uuid.UUID, in UpdateCategoryInput) (*models.Category, error) {
	if err := s.check(in); err != nil {
		return nil, err
	}
	category, err := s.store.GetCategory(ctx, categoryID, userID)
	if err != nil {
		return nil, err
	}
	if !category.OwnedBy(userID) {
		return nil, notFound("category")
	}

	if in.Name != nil {
		category.Name = strings.TrimSpace(*in.Name)
	}
	if in.Icon != nil {
		category.Icon = in.Icon
	}
	if in.Color != nil {
		category.Color = in.Color
	}
	if in.IsActive != nil {
		category.IsActive = *in.IsActive
	}

	if err := s.store.UpdateCategory(ctx, category); err != nil {
		s.logError("UpdateCategory", "updating category", categoryID, err)
		return nil, err
	}
	s.invalidateReports(ctx, userID)
	return category, nil
}

// DeleteCategory removes an own category; its transactions become uncategorized.
func (s *Service) DeleteCategory(ctx context.Context, userID, categoryID uuid.UUID) error {
	if err := s.store.DeleteCategory(ctx, categoryID, userID); err != nil {
		return err
	}
	s.invalidateReports(ctx, userID)
	s.log.Infof("Category %s deleted for user %s", categoryID, userID)
	return nil
}
