package repository

import (
	"context"

	"github.com/google/uuid"

	"github.com/Dan9191/finance-service/internal/models"
)

const categoryColumns = `id, user_id, name, type, icon, color, is_active, created_at`

func scanCategory(row interface{ Scan(...any) error }) (*models.Category, error) {
	var c models.Category
	if err := row.Scan(&c.ID, &c.UserID, &c.Name, &c.Type, &c.Icon, &c.Color, &c.IsActive, &c.CreatedAt); err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *Repository) CreateCategory(ctx context.Context, category *models.Category) error {
	query := `
		INSERT INTO categories (id, user_id, name, type, icon, color, is_active)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING created_at`
	err := r.q.QueryRowContext(ctx, query, category.ID, category.UserID, category.Name, category.Type,
		category.Icon, category.Color, category.IsActive).Scan(&category.CreatedAt)
	if err != nil {
		return wrap("create category", err)
	}
	return nil
}

// GetCategory returns a global category or one owned by userID.
func (r *Repository) GetCategory(ctx context.Context, id, userID uuid.UUID) (*models.Category, error) {
	row := r.q.QueryRowContext(ctx, `
		SELECT `+categoryColumns+` FROM categories
		WHERE id = $1 AND (user_id IS NULL OR user_id = $2)`, id, userID)
	category, err := scanCategory(row)
	if err != nil {
		return nil, wrap("get category", err)
	}
	return category, nil
}

func (r *Repository) ListCategories(ctx context.Context, userID uuid.UUID, typ *models.TransactionType) ([]models.Category, error) {
	c := conditions{}
	c.raw("is_active")
	c.add("(user_id IS NULL OR user_id = $%d)", userID)
	if typ != nil {
		c.add("type = $%d", *typ)
	}
	rows, err := r.q.QueryContext(ctx, `SELECT `+categoryColumns+` FROM categories WHERE `+c.where()+
		` ORDER BY type, name, id`, c.args...)
	if err != nil {
		return nil, wrap("list categories", err)
	}
	defer rows.Close()

	categories := []models.Category{}
	for rows.Next() {
		category, err := scanCategory(rows)
		if err != nil {
			return nil, wrap("scan category", err)
		}
		categories = append(categories, *category)
	}
	return categories, wrapRows(rows, "list categories")
}

// UpdateCategory changes a category owned by category.UserID.
func (r *Repository) UpdateCategory(ctx context.Context, category *models.Category) error {
	if category.UserID == nil {
		return ErrNotFound
	}
	res, err := r.q.ExecContext(ctx, `
		UPDATE categories SET name = $3, icon = $4, color = $5, is_active = $6
		WHERE id = $1 AND user_id = $2`,
		category.ID, *category.UserID, category.Name, category.Icon, category.Color, category.IsActive)
	if err != nil {
		return wrap("update category", err)
	}
	return expectRow(res, "update category")
}

func (r *Repository) DeleteCategory(ctx context.Context, id, userID uuid.UUID) error {
	res, err := r.q.ExecContext(ctx, `DELETE FROM categories WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return wrap("delete category", err)
	}
	return expectRow(res, "delete category")
}
