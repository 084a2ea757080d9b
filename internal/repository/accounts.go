package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/Dan9191/finance-service/internal/models"
)

const accountColumns = `id, user_id, name, type, institution, initial_balance, current_balance, color, is_active, created_at, updated_at`

func scanAccount(row interface{ Scan(...any) error }) (*models.Account, error) {
	var a models.Account
	err := row.Scan(&a.ID, &a.UserID, &a.Name, &a.Type, &a.Institution, &a.InitialBalance, &a.CurrentBalance,
		&a.Color, &a.IsActive, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &a, nil
}

// CreateAccount creates a new account in the database
func (r *Repository) CreateAccount(ctx context.Context, account *models.Account) error {
	query := `
		INSERT INTO accounts (id, user_id, name, type, institution, initial_balance, current_balance, color, is_active)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING created_at, updated_at`
	err := r.q.QueryRowContext(ctx, query, account.ID, account.UserID, account.Name, account.Type, account.Institution,
		account.InitialBalance, account.CurrentBalance, account.Color, account.IsActive).
		Scan(&account.CreatedAt, &account.UpdatedAt)
	if err != nil {
		return wrap("create account", err)
	}
	return nil
}

func (r *Repository) GetAccount(ctx context.Context, id, userID uuid.UUID) (*models.Account, error) {
	row := r.q.QueryRowContext(ctx, `SELECT `+accountColumns+` FROM accounts WHERE id = $1 AND user_id = $2`, id, userID)
	account, err := scanAccount(row)
	if err != nil {
		return nil, wrap("get account", err)
	}
	return account, nil
}

// LockAccount reads the account with FOR UPDATE so concurrent balance
// recomputations of the same account run one after the other.
func (r *Repository) LockAccount(ctx context.Context, id, userID uuid.UUID) (*models.Account, error) {
	row := r.q.QueryRowContext(ctx, `SELECT `+accountColumns+` FROM accounts WHERE id = $1 AND user_id = $2 FOR UPDATE`, id, userID)
	account, err := scanAccount(row)
	if err != nil {
		return nil, wrap("lock account", err)
	}
	return account, nil
}

func (r *Repository) ListAccounts(ctx context.Context, userID uuid.UUID, includeInactive bool) ([]models.Account, error) {
	rows, err := r.q.QueryContext(ctx, `
		SELECT `+accountColumns+` FROM accounts
		WHERE user_id = $1 AND (is_active OR $2)
		ORDER BY name, id`, userID, includeInactive)
	if err != nil {
		return nil, wrap("list accounts", err)
	}
	defer rows.Close()

	accounts := []models.Account{}
	for rows.Next() {
		account, err := scanAccount(rows)
		if err != nil {
			return nil, wrap("scan account", err)
		}
		accounts = append(accounts, *account)
	}
	return accounts, wrapRows(rows, "list accounts")
}

// UpdateAccount stores the editable fields. Balances are not touched here.
func (r *Repository) UpdateAccount(ctx context.Context, account *models.Account) error {
	query := `
		UPDATE accounts
		SET name = $3, type = $4, institution = $5, color = $6, is_active = $7, updated_at = CURRENT_TIMESTAMP
		WHERE id = $1 AND user_id = $2
		RETURNING updated_at`
	err := r.q.QueryRowContext(ctx, query, account.ID, account.UserID, account.Name, account.Type, account.Institution,
		account.Color, account.IsActive).Scan(&account.UpdatedAt)
	if err != nil {
		return wrap("update account", err)
	}
	return nil
}

func (r *Repository) DeleteAccount(ctx context.Context, id, userID uuid.UUID) error {
	res, err := r.q.ExecContext(ctx, `DELETE FROM accounts WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return wrap("delete account", err)
	}
	return expectRow(res, "delete account")
}

func (r *Repository) AccountLedger(ctx context.Context, accountID uuid.UUID) (models.TypeTotals, error) {
	return r.sumByType(ctx, "account ledger", `
		SELECT type, COALESCE(SUM(amount), 0) FROM transactions
		WHERE account_id = $1 AND status <> 'cancelled'
		GROUP BY type`, accountID)
}

func (r *Repository) SetAccountBalance(ctx context.Context, accountID uuid.UUID, balance decimal.Decimal) error {
	res, err := r.q.ExecContext(ctx, `
		UPDATE accounts SET current_balance = $2, updated_at = CURRENT_TIMESTAMP WHERE id = $1`, accountID, balance)
	if err != nil {
		return wrap("set account balance", err)
	}
	return expectRow(res, "set account balance")
}

// sumByType folds (type, sum) rows into totals.
func (r *Repository) sumByType(ctx context.Context, op, query string, args ...any) (models.TypeTotals, error) {
	var totals models.TypeTotals
	rows, err := r.q.QueryContext(ctx, query, args...)
	if err != nil {
		return totals, wrap(op, err)
	}
	defer rows.Close()
	for rows.Next() {
		var typ models.TransactionType
		var sum decimal.Decimal
		if err := rows.Scan(&typ, &sum); err != nil {
			return totals, wrap(op, err)
		}
		totals.Add(typ, sum)
	}
	return totals, wrapRows(rows, op)
}
