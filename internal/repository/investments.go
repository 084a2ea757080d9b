package repository

import (
	"context"

	"github.com/google/uuid"

	"github.com/Dan9191/finance-service/internal/models"
)

const portfolioColumns = `id, user_id, name, type, description, is_active, created_at, updated_at`

func scanPortfolio(row interface{ Scan(...any) error }) (*models.Portfolio, error) {
	var p models.Portfolio
	if err := row.Scan(&p.ID, &p.UserID, &p.Name, &p.Type, &p.Description, &p.IsActive, &p.CreatedAt, &p.UpdatedAt); err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *Repository) CreatePortfolio(ctx context.Context, portfolio *models.Portfolio) error {
	query := `
		INSERT INTO investment_portfolios (id, user_id, name, type, description, is_active)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at, updated_at`
	err := r.q.QueryRowContext(ctx, query, portfolio.ID, portfolio.UserID, portfolio.Name, portfolio.Type,
		portfolio.Description, portfolio.IsActive).Scan(&portfolio.CreatedAt, &portfolio.UpdatedAt)
	if err != nil {
		return wrap("create portfolio", err)
	}
	return nil
}

func (r *Repository) GetPortfolio(ctx context.Context, id, userID uuid.UUID) (*models.Portfolio, error) {
	row := r.q.QueryRowContext(ctx, `SELECT `+portfolioColumns+` FROM investment_portfolios WHERE id = $1 AND user_id = $2`, id, userID)
	portfolio, err := scanPortfolio(row)
	if err != nil {
		return nil, wrap("get portfolio", err)
	}
	return portfolio, nil
}

func (r *Repository) ListPortfolios(ctx context.Context, userID uuid.UUID, includeInactive bool) ([]models.Portfolio, error) {
	rows, err := r.q.QueryContext(ctx, `
		SELECT `+portfolioColumns+` FROM investment_portfolios
		WHERE user_id = $1 AND (is_active OR $2)
		ORDER BY name, id`, userID, includeInactive)
	if err != nil {
		return nil, wrap("list portfolios", err)
	}
	defer rows.Close()

	portfolios := []models.Portfolio{}
	for rows.Next() {
		portfolio, err := scanPortfolio(rows)
		if err != nil {
			return nil, wrap("scan portfolio", err)
		}
		portfolios = append(portfolios, *portfolio)
	}
	return portfolios, wrapRows(rows, "list portfolios")
}

func (r *Repository) UpdatePortfolio(ctx context.Context, portfolio *models.Portfolio) error {
	query := `
		UPDATE investment_portfolios
		SET name = $3, type = $4, description = $5, is_active = $6, updated_at = CURRENT_TIMESTAMP
		WHERE id = $1 AND user_id = $2
		RETURNING updated_at`
	err := r.q.QueryRowContext(ctx, query, portfolio.ID, portfolio.UserID, portfolio.Name, portfolio.Type,
		portfolio.Description, portfolio.IsActive).Scan(&portfolio.UpdatedAt)
	if err != nil {
		return wrap("update portfolio", err)
	}
	return nil
}

func (r *Repository) DeletePortfolio(ctx context.Context, id, userID uuid.UUID) error {
	res, err := r.q.ExecContext(ctx, `DELETE FROM investment_portfolios WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return wrap("delete portfolio", err)
	}
	return expectRow(res, "delete portfolio")
}

func (r *Repository) CreateEntry(ctx context.Context, entry *models.InvestmentEntry) error {
	query := `
		INSERT INTO investment_entries (id, portfolio_id, type, amount, date, description)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at`
	err := r.q.QueryRowContext(ctx, query, entry.ID, entry.PortfolioID, entry.Type, entry.Amount, entry.Date,
		entry.Description).Scan(&entry.CreatedAt)
	if err != nil {
		return wrap("create investment entry", err)
	}
	return nil
}

// ListEntries returns a portfolio's entries, newest first.
func (r *Repository) ListEntries(ctx context.Context, portfolioID uuid.UUID) ([]models.InvestmentEntry, error) {
	rows, err := r.q.QueryContext(ctx, `
		SELECT id, portfolio_id, type, amount, date, description, created_at
		FROM investment_entries
		WHERE portfolio_id = $1
		ORDER BY date DESC, created_at DESC, id`, portfolioID)
	if err != nil {
		return nil, wrap("list investment entries", err)
	}
	defer rows.Close()

	entries := []models.InvestmentEntry{}
	for rows.Next() {
		var e models.InvestmentEntry
		if err := rows.Scan(&e.ID, &e.PortfolioID, &e.Type, &e.Amount, &e.Date, &e.Description, &e.CreatedAt); err != nil {
			return nil, wrap("scan investment entry", err)
		}
		entries = append(entries, e)
	}
	return entries, wrapRows(rows, "list investment entries")
}

func (r *Repository) DeleteEntry(ctx context.Context, id, portfolioID uuid.UUID) error {
	res, err := r.q.ExecContext(ctx, `DELETE FROM investment_entries WHERE id = $1 AND portfolio_id = $2`, id, portfolioID)
	if err != nil {
		return wrap("delete investment entry", err)
	}
	return expectRow(res, "delete investment entry")
}

func (r *Repository) PortfolioTotals(ctx context.Context, portfolioID uuid.UUID) (models.PortfolioTotals, error) {
	var totals models.PortfolioTotals
	err := r.q.QueryRowContext(ctx, `
		SELECT COALESCE(SUM(amount) FILTER (WHERE type = 'deposit'), 0),
		       COALESCE(SUM(amount) FILTER (WHERE type = 'withdrawal'), 0)
		FROM investment_entries
		WHERE portfolio_id = $1`, portfolioID).Scan(&totals.Deposits, &totals.Withdrawals)
	if err != nil {
		return totals, wrap("sum portfolio entries", err)
	}
	return totals, nil
}
