package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/Dan9191/finance-service/internal/models"
)

const cardColumns = `id, user_id, name, institution, "limit", closing_day, due_day, color, is_active, created_at, updated_at`

func scanCard(row interface{ Scan(...any) error }) (*models.CreditCard, error) {
	var c models.CreditCard
	err := row.Scan(&c.ID, &c.UserID, &c.Name, &c.Institution, &c.Limit, &c.ClosingDay, &c.DueDay,
		&c.Color, &c.IsActive, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// CreateCard creates a new credit card in the database
func (r *Repository) CreateCard(ctx context.Context, card *models.CreditCard) error {
	query := `
		INSERT INTO credit_cards (id, user_id, name, institution, "limit", closing_day, due_day, color, is_active)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING created_at, updated_at`
	err := r.q.QueryRowContext(ctx, query, card.ID, card.UserID, card.Name, card.Institution, card.Limit,
		card.ClosingDay, card.DueDay, card.Color, card.IsActive).
		Scan(&card.CreatedAt, &card.UpdatedAt)
	if err != nil {
		return wrap("create card", err)
	}
	return nil
}

func (r *Repository) GetCard(ctx context.Context, id, userID uuid.UUID) (*models.CreditCard, error) {
	row := r.q.QueryRowContext(ctx, `SELECT `+cardColumns+` FROM credit_cards WHERE id = $1 AND user_id = $2`, id, userID)
	card, err := scanCard(row)
	if err != nil {
		return nil, wrap("get card", err)
	}
	return card, nil
}

func (r *Repository) ListCards(ctx context.Context, userID uuid.UUID, includeInactive bool) ([]models.CreditCard, error) {
	rows, err := r.q.QueryContext(ctx, `
		SELECT `+cardColumns+` FROM credit_cards
		WHERE user_id = $1 AND (is_active OR $2)
		ORDER BY name, id`, userID, includeInactive)
	if err != nil {
		return nil, wrap("list cards", err)
	}
	defer rows.Close()

	cards := []models.CreditCard{}
	for rows.Next() {
		card, err := scanCard(rows)
		if err != nil {
			return nil, wrap("scan card", err)
		}
		cards = append(cards, *card)
	}
	return cards, wrapRows(rows, "list cards")
}

func (r *Repository) UpdateCard(ctx context.Context, card *models.CreditCard) error {
	query := `
		UPDATE credit_cards
		SET name = $3, institution = $4, "limit" = $5, closing_day = $6, due_day = $7, color = $8, is_active = $9,
		    updated_at = CURRENT_TIMESTAMP
		WHERE id = $1 AND user_id = $2
		RETURNING updated_at`
	err := r.q.QueryRowContext(ctx, query, card.ID, card.UserID, card.Name, card.Institution, card.Limit,
		card.ClosingDay, card.DueDay, card.Color, card.IsActive).Scan(&card.UpdatedAt)
	if err != nil {
		return wrap("update card", err)
	}
	return nil
}

func (r *Repository) DeleteCard(ctx context.Context, id, userID uuid.UUID) error {
	res, err := r.q.ExecContext(ctx, `DELETE FROM credit_cards WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return wrap("delete card", err)
	}
	return expectRow(res, "delete card")
}

func (r *Repository) PendingCardExpenses(ctx context.Context, cardID uuid.UUID) (decimal.Decimal, error) {
	var total decimal.Decimal
	err := r.q.QueryRowContext(ctx, `
		SELECT COALESCE(SUM(amount), 0) FROM transactions
		WHERE credit_card_id = $1 AND type = 'expense' AND status = 'pending'`, cardID).Scan(&total)
	if err != nil {
		return decimal.Zero, wrap("sum card invoice", err)
	}
	return total, nil
}
