package repository

import (
	"context"

	"github.com/google/uuid"

	"github.com/Dan9191/finance-service/internal/models"
)

// ListIndicators returns the active system indicators followed by the user's own.
func (r *Repository) ListIndicators(ctx context.Context, userID uuid.UUID) ([]models.Indicator, error) {
	rows, err := r.q.QueryContext(ctx, `
		SELECT id, user_id, name, code, description, type, is_active, created_at
		FROM indicators
		WHERE is_active AND (user_id IS NULL OR user_id = $1)
		ORDER BY user_id NULLS FIRST, created_at, code`, userID)
	if err != nil {
		return nil, wrap("list indicators", err)
	}
	defer rows.Close()

	indicators := []models.Indicator{}
	for rows.Next() {
		var i models.Indicator
		if err := rows.Scan(&i.ID, &i.UserID, &i.Name, &i.Code, &i.Description, &i.Type, &i.IsActive, &i.CreatedAt); err != nil {
			return nil, wrap("scan indicator", err)
		}
		indicators = append(indicators, i)
	}
	return indicators, wrapRows(rows, "list indicators")
}

func (r *Repository) CreateIndicator(ctx context.Context, indicator *models.Indicator) error {
	query := `
		INSERT INTO indicators (id, user_id, name, code, description, type, is_active)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING created_at`
	err := r.q.QueryRowContext(ctx, query, indicator.ID, indicator.UserID, indicator.Name, indicator.Code,
		indicator.Description, indicator.Type, indicator.IsActive).Scan(&indicator.CreatedAt)
	if err != nil {
		return wrap("create indicator", err)
	}
	return nil
}

func (r *Repository) DeleteIndicator(ctx context.Context, id, userID uuid.UUID) error {
	res, err := r.q.ExecContext(ctx, `DELETE FROM indicators WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return wrap("delete indicator", err)
	}
	return expectRow(res, "delete indicator")
}
