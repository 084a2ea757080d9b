package repository

import (
	"context"

	"github.com/google/uuid"

	"github.com/Dan9191/finance-service/internal/models"
)

const integrationColumns = `id, user_id, provider, status, connected_at, last_sync_at, config, created_at, updated_at`

func scanIntegration(row interface{ Scan(...any) error }) (*models.BankIntegration, error) {
	var b models.BankIntegration
	err := row.Scan(&b.ID, &b.UserID, &b.Provider, &b.Status, &b.ConnectedAt, &b.LastSyncAt, &b.Config,
		&b.CreatedAt, &b.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &b, nil
}

func (r *Repository) ListBankIntegrations(ctx context.Context, userID uuid.UUID) ([]models.BankIntegration, error) {
	rows, err := r.q.QueryContext(ctx, `SELECT `+integrationColumns+` FROM bank_integrations WHERE user_id = $1 ORDER BY provider`, userID)
	if err != nil {
		return nil, wrap("list bank integrations", err)
	}
	defer rows.Close()

	integrations := []models.BankIntegration{}
	for rows.Next() {
		integration, err := scanIntegration(rows)
		if err != nil {
			return nil, wrap("scan bank integration", err)
		}
		integrations = append(integrations, *integration)
	}
	return integrations, wrapRows(rows, "list bank integrations")
}

func (r *Repository) GetBankIntegration(ctx context.Context, userID uuid.UUID, provider string) (*models.BankIntegration, error) {
	row := r.q.QueryRowContext(ctx, `SELECT `+integrationColumns+` FROM bank_integrations WHERE user_id = $1 AND provider = $2`, userID, provider)
	integration, err := scanIntegration(row)
	if err != nil {
		return nil, wrap("get bank integration", err)
	}
	return integration, nil
}

// SaveBankIntegration inserts or replaces the (user, provider) integration.
func (r *Repository) SaveBankIntegration(ctx context.Context, b *models.BankIntegration) error {
	query := `
		INSERT INTO bank_integrations (id, user_id, provider, status, connected_at, last_sync_at, config)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (user_id, provider) DO UPDATE
		SET status = EXCLUDED.status, connected_at = EXCLUDED.connected_at, last_sync_at = EXCLUDED.last_sync_at,
		    config = EXCLUDED.config, updated_at = CURRENT_TIMESTAMP
		RETURNING id, created_at, updated_at`
	err := r.q.QueryRowContext(ctx, query, b.ID, b.UserID, b.Provider, b.Status, b.ConnectedAt, b.LastSyncAt, b.Config).
		Scan(&b.ID, &b.CreatedAt, &b.UpdatedAt)
	if err != nil {
		return wrap("save bank integration", err)
	}
	return nil
}

func (r *Repository) GetWhatsAppSettings(ctx context.Context, userID uuid.UUID) (*models.WhatsAppSettings, error) {
	var s models.WhatsAppSettings
	err := r.q.QueryRowContext(ctx, `
		SELECT id, user_id, phone_number, is_active, alert_on_high_expense, high_expense_threshold,
		       daily_summary, weekly_summary, created_at, updated_at
		FROM whatsapp_settings WHERE user_id = $1`, userID).
		Scan(&s.ID, &s.UserID, &s.PhoneNumber, &s.IsActive, &s.AlertOnHighExpense, &s.HighExpenseThreshold,
			&s.DailySummary, &s.WeeklySummary, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		return nil, wrap("get whatsapp settings", err)
	}
	return &s, nil
}

// SaveWhatsAppSettings inserts or replaces the user's settings.
func (r *Repository) SaveWhatsAppSettings(ctx context.Context, s *models.WhatsAppSettings) error {
	if s.ID == nil {
		id := uuid.New()
		s.ID = &id
	}
	query := `
		INSERT INTO whatsapp_settings (id, user_id, phone_number, is_active, alert_on_high_expense,
		                               high_expense_threshold, daily_summary, weekly_summary)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (user_id) DO UPDATE
		SET phone_number = EXCLUDED.phone_number, is_active = EXCLUDED.is_active,
		    alert_on_high_expense = EXCLUDED.alert_on_high_expense,
		    high_expense_threshold = EXCLUDED.high_expense_threshold,
		    daily_summary = EXCLUDED.daily_summary, weekly_summary = EXCLUDED.weekly_summary,
		    updated_at = CURRENT_TIMESTAMP
		RETURNING id, created_at, updated_at`
	err := r.q.QueryRowContext(ctx, query, *s.ID, s.UserID, s.PhoneNumber, s.IsActive, s.AlertOnHighExpense,
		s.HighExpenseThreshold, s.DailySummary, s.WeeklySummary).Scan(&s.ID, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		return wrap("save whatsapp settings", err)
	}
	return nil
}

// ListSummarySubscribers returns active users that asked for a daily or weekly summary.
func (r *Repository) ListSummarySubscribers(ctx context.Context) ([]models.SummarySubscriber, error) {
	rows, err := r.q.QueryContext(ctx, `
		SELECT u.id, u.email, u.name, w.daily_summary, w.weekly_summary
		FROM whatsapp_settings w
		JOIN users u ON u.id = w.user_id
		WHERE u.is_active AND (w.daily_summary OR w.weekly_summary)
		ORDER BY u.email`)
	if err != nil {
		return nil, wrap("list summary subscribers", err)
	}
	defer rows.Close()

	subscribers := []models.SummarySubscriber{}
	for rows.Next() {
		var s models.SummarySubscriber
		if err := rows.Scan(&s.UserID, &s.Email, &s.Name, &s.Daily, &s.Weekly); err != nil {
			return nil, wrap("scan summary subscriber", err)
		}
		subscribers = append(subscribers, s)
	}
	return subscribers, wrapRows(rows, "list summary subscribers")
}
