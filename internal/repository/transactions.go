package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/Dan9191/finance-service/internal/models"
)

const transactionSelect = `
	SELECT t.id, t.user_id, t.account_id, t.credit_card_id, t.category_id, t.type, t.description, t.amount,
	       t.date, t.status, t.is_recurring, t.recurring_id, t.notes, t.external_ref, t.created_at, t.updated_at,
	       a.name, cc.name, cat.name, cat.color
	FROM transactions t
	LEFT JOIN accounts a ON a.id = t.account_id
	LEFT JOIN credit_cards cc ON cc.id = t.credit_card_id
	LEFT JOIN categories cat ON cat.id = t.category_id`

func scanTransaction(row interface{ Scan(...any) error }) (*models.Transaction, error) {
	var t models.Transaction
	var accountID, cardID *uuid.UUID
	err := row.Scan(&t.ID, &t.UserID, &accountID, &cardID, &t.CategoryID, &t.Type, &t.Description, &t.Amount,
		&t.Date, &t.Status, &t.IsRecurring, &t.RecurringID, &t.Notes, &t.ExternalRef, &t.CreatedAt, &t.UpdatedAt,
		&t.AccountName, &t.CreditCardName, &t.CategoryName, &t.CategoryColor)
	if err != nil {
		return nil, err
	}
	source, err := models.NewFundingSource(accountID, cardID)
	if err != nil {
		return nil, fmt.Errorf("transaction %s: %w", t.ID, err)
	}
	t.Source = source
	return &t, nil
}

// transactionConditions renders every filter predicate except pagination.
func transactionConditions(userID uuid.UUID, f models.TransactionFilter) *conditions {
	c := &conditions{}
	c.add("t.user_id = $%d", userID)
	if f.Window.Start != nil {
		c.add("t.date >= $%d", *f.Window.Start)
	}
	if f.Window.End != nil {
		c.add("t.date <= $%d", *f.Window.End)
	}
	if f.Type != nil {
		c.add("t.type = $%d", *f.Type)
	}
	if f.Status != nil {
		c.add("t.status = $%d", *f.Status)
	}
	if f.AccountID != nil {
		c.add("t.account_id = $%d", *f.AccountID)
	}
	if f.CreditCardID != nil {
		c.add("t.credit_card_id = $%d", *f.CreditCardID)
	}
	if f.CategoryID != nil {
		c.add("t.category_id = $%d", *f.CategoryID)
	}
	if f.RecurringID != nil {
		c.add("t.recurring_id = $%d", *f.RecurringID)
	}
	return c
}

// CreateTransaction creates a new transaction in the database
func (r *Repository) CreateTransaction(ctx context.Context, tx *models.Transaction) error {
	accountID, cardID := tx.SourceColumns()
	query := `
		INSERT INTO transactions (id, user_id, account_id, credit_card_id, category_id, type, description, amount,
		                          date, status, is_recurring, recurring_id, notes, external_ref)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		RETURNING created_at, updated_at`
	err := r.q.QueryRowContext(ctx, query, tx.ID, tx.UserID, accountID, cardID, tx.CategoryID, tx.Type,
		tx.Description, tx.Amount, tx.Date, tx.Status, tx.IsRecurring, tx.RecurringID, tx.Notes, tx.ExternalRef).
		Scan(&tx.CreatedAt, &tx.UpdatedAt)
	if err != nil {
		return wrap("create transaction", err)
	}
	return nil
}

func (r *Repository) GetTransaction(ctx context.Context, id, userID uuid.UUID) (*models.Transaction, error) {
	tx, err := scanTransaction(r.q.QueryRowContext(ctx, transactionSelect+` WHERE t.id = $1 AND t.user_id = $2`, id, userID))
	if err != nil {
		return nil, wrap("get transaction", err)
	}
	return tx, nil
}

// ListTransactions returns matching transactions, newest first.
func (r *Repository) ListTransactions(ctx context.Context, userID uuid.UUID, filter models.TransactionFilter) ([]models.Transaction, error) {
	c := transactionConditions(userID, filter)
	query := transactionSelect + ` WHERE ` + c.where() + ` ORDER BY t.date DESC, t.created_at DESC, t.id`
	if filter.Limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", filter.Limit)
	}
	if filter.Offset > 0 {
		query += fmt.Sprintf(" OFFSET %d", filter.Offset)
	}

	rows, err := r.q.QueryContext(ctx, query, c.args...)
	if err != nil {
		return nil, wrap("list transactions", err)
	}
	defer rows.Close()

	txs := []models.Transaction{}
	for rows.Next() {
		tx, err := scanTransaction(rows)
		if err != nil {
			return nil, wrap("scan transaction", err)
		}
		txs = append(txs, *tx)
	}
	return txs, wrapRows(rows, "list transactions")
}

func (r *Repository) CountTransactions(ctx context.Context, userID uuid.UUID, filter models.TransactionFilter) (int, error) {
	c := transactionConditions(userID, filter)
	var count int
	if err := r.q.QueryRowContext(ctx, `SELECT COUNT(*) FROM transactions t WHERE `+c.where(), c.args...).Scan(&count); err != nil {
		return 0, wrap("count transactions", err)
	}
	return count, nil
}

// UpdateTransaction stores every mutable column including the funding source.
func (r *Repository) UpdateTransaction(ctx context.Context, tx *models.Transaction) error {
	accountID, cardID := tx.SourceColumns()
	query := `
		UPDATE transactions
		SET account_id = $3, credit_card_id = $4, category_id = $5, description = $6, amount = $7, date = $8,
		    status = $9, notes = $10, updated_at = CURRENT_TIMESTAMP
		WHERE id = $1 AND user_id = $2
		RETURNING updated_at`
	err := r.q.QueryRowContext(ctx, query, tx.ID, tx.UserID, accountID, cardID, tx.CategoryID, tx.Description,
		tx.Amount, tx.Date, tx.Status, tx.Notes).Scan(&tx.UpdatedAt)
	if err != nil {
		return wrap("update transaction", err)
	}
	return nil
}

func (r *Repository) DeleteTransaction(ctx context.Context, id, userID uuid.UUID) error {
	res, err := r.q.ExecContext(ctx, `DELETE FROM transactions WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return wrap("delete transaction", err)
	}
	return expectRow(res, "delete transaction")
}

func (r *Repository) ExternalRefExists(ctx context.Context, userID uuid.UUID, ref string) (bool, error) {
	var exists bool
	err := r.q.QueryRowContext(ctx, `
		SELECT EXISTS (SELECT 1 FROM transactions WHERE user_id = $1 AND external_ref = $2)`, userID, ref).Scan(&exists)
	if err != nil {
		return false, wrap("check external ref", err)
	}
	return exists, nil
}
