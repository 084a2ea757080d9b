package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/Dan9191/finance-service/internal/integrations/ofx"
	"github.com/Dan9191/finance-service/internal/models"
	"github.com/Dan9191/finance-service/internal/repository"
	"github.com/Dan9191/finance-service/internal/utils"
)

var bankProviders = []models.BankProvider{
	{Code: "nubank", Name: "Nubank", LogoURL: "/images/banks/nubank.svg", Available: true},
	{Code: "itau", Name: "Itaú", LogoURL: "/images/banks/itau.svg", Available: true},
	{Code: "bradesco", Name: "Bradesco", LogoURL: "/images/banks/bradesco.svg", Available: true},
	{Code: "santander", Name: "Santander", LogoURL: "/images/banks/santander.svg", Available: true},
	{Code: "bb", Name: "Banco do Brasil", LogoURL: "/images/banks/bb.svg", Available: true},
	{Code: "caixa", Name: "Caixa", LogoURL: "/images/banks/caixa.svg", Available: true},
	{Code: "inter", Name: "Banco Inter", LogoURL: "/images/banks/inter.svg", Available: true},
	{Code: "c6", Name: "C6 Bank", LogoURL: "/images/banks/c6.svg", Available: true},
	{Code: "open_finance", Name: "Open Finance", LogoURL: "/images/banks/open-finance.svg", Available: true},
}

type UpdateWhatsAppInput struct {
	PhoneNumber          *string          `json:"phone_number" validate:"omitempty,phone"`
	IsActive             *bool            `json:"is_active"`
	AlertOnHighExpense   *bool            `json:"alert_on_high_expense"`
	HighExpenseThreshold *decimal.Decimal `json:"high_expense_threshold" validate:"omitempty,money"`
	DailySummary         *bool            `json:"daily_summary"`
	WeeklySummary        *bool            `json:"weekly_summary"`
}

// BankProviders lists the banks that can be connected.
func (s *Service) BankProviders() []models.BankProvider {
	out := make([]models.BankProvider, len(bankProviders))
	copy(out, bankProviders)
	return out
}

func checkProvider(code string) error {
	for _, p := range bankProviders {
		if p.Code == code {
			return nil
		}
	}
	return invalidField("provider", fmt.Sprintf("%q is not supported", code))
}

func (s *Service) ListBankIntegrations(ctx context.Context, userID uuid.UUID) ([]models.BankIntegration, error) {
	return s.store.ListBankIntegrations(ctx, userID)
}

// ConnectBank marks the provider connected. A non-empty settings document is
// stored encrypted.
func (s *Service) ConnectBank(ctx context.Context, userID uuid.UUID, provider string, settings json.RawMessage) (*models.BankIntegration, error) {
	if err := checkProvider(provider); err != nil {
		return nil, err
	}

	integration, err := s.store.GetBankIntegration(ctx, userID, provider)
	if errors.Is(err, repository.ErrNotFound) {
		integration = &models.BankIntegration{ID: uuid.New(), UserID: userID, Provider: provider}
	} else if err != nil {
		return nil, err
	}

	if trimmed := strings.TrimSpace(string(settings)); trimmed != "" && trimmed != "null" {
		if !json.Valid(settings) {
			return nil, invalidField("config", "must be a JSON document")
		}
		key, err := s.config.EncryptionKeyBytes()
		if err != nil {
			return nil, err
		}
		encrypted, err := utils.Encrypt(trimmed, key)
		if err != nil {
			return nil, fmt.Errorf("failed to encrypt integration config: %w", err)
		}
		integration.Config = &encrypted
	}

	now := s.now().UTC()
	integration.Status = models.IntegrationConnected
	integration.ConnectedAt = &now
	if err := s.store.SaveBankIntegration(ctx, integration); err != nil {
		s.logError("ConnectBank", "saving integration", provider, err)
		return nil, err
	}
	s.log.Infof("Bank %s connected for user %s", provider, userID)
	return integration, nil
}

// DisconnectBank marks the provider disconnected. Disconnecting a provider
// that was never connected is a no-op.
func (s *Service) DisconnectBank(ctx context.Context, userID uuid.UUID, provider string) error {
	if err := checkProvider(provider); err != nil {
		return err
	}
	integration, err := s.store.GetBankIntegration(ctx, userID, provider)
	if errors.Is(err, repository.ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	integration.Status = models.IntegrationDisconnected
	integration.Config = nil
	if err := s.store.SaveBankIntegration(ctx, integration); err != nil {
		s.logError("DisconnectBank", "saving integration", provider, err)
		return err
	}
	s.log.Infof("Bank %s disconnected for user %s", provider, userID)
	return nil
}

// connected loads an integration and requires it to be connected.
func (s *Service) connected(ctx context.Context, store repository.Store, userID uuid.UUID, provider string) (*models.BankIntegration, error) {
	if err := checkProvider(provider); err != nil {
		return nil, err
	}
	integration, err := store.GetBankIntegration(ctx, userID, provider)
	if errors.Is(err, repository.ErrNotFound) || (err == nil && integration.Status != models.IntegrationConnected) {
		return nil, invalidField("provider", "is not connected")
	}
	if err != nil {
		return nil, err
	}
	return integration, nil
}

// SyncBank records a synchronization of a connected provider. The stored
// settings must still decrypt, otherwise the integration is flagged as failed.
func (s *Service) SyncBank(ctx context.Context, userID uuid.UUID, provider string) (*models.BankIntegration, error) {
	integration, err := s.connected(ctx, s.store, userID, provider)
	if err != nil {
		return nil, err
	}

	if integration.Config != nil {
		key, err := s.config.EncryptionKeyBytes()
		if err != nil {
			return nil, err
		}
		if _, err := utils.Decrypt(*integration.Config, key); err != nil {
			s.logError("SyncBank", "decrypting integration config", provider, err)
			integration.Status = models.IntegrationError
			if saveErr := s.store.SaveBankIntegration(ctx, integration); saveErr != nil {
				return nil, saveErr
			}
			return nil, invalidField("config", "stored settings are unreadable, reconnect the bank")
		}
	}

	now := s.now().UTC()
	integration.LastSyncAt = &now
	if err := s.store.SaveBankIntegration(ctx, integration); err != nil {
		s.logError("SyncBank", "saving integration", provider, err)
		return nil, err
	}
	return integration, nil
}

// ImportStatement books the lines of an OFX statement as paid transactions on
// an account. Lines already imported are skipped.
func (s *Service) ImportStatement(ctx context.Context, userID uuid.UUID, provider string, accountID uuid.UUID, body io.Reader) (*models.ImportResult, error) {
	statement, err := ofx.Parse(body)
	if err != nil {
		return nil, invalidField("statement", err.Error())
	}

	result := &models.ImportResult{}
	err = s.store.WithTx(ctx, func(tx repository.Store) error {
		integration, err := s.connected(ctx, tx, userID, provider)
		if err != nil {
			return err
		}
		account, err := tx.LockAccount(ctx, accountID, userID)
		if errors.Is(err, repository.ErrNotFound) {
			return notFound("account")
		}
		if err != nil {
			return err
		}

		for _, line := range statement.Lines {
			ref := utils.Fingerprint(s.config.HMACSecret, account.ID.String(), line.FITID, line.Posted.String(), line.Amount.String())
			exists, err := tx.ExternalRefExists(ctx, userID, ref)
			if err != nil {
				return err
			}
			if exists {
				result.Skipped++
				continue
			}
			t := &models.Transaction{
				ID:          uuid.New(),
				UserID:      userID,
				Source:      models.AccountSource{AccountID: account.ID},
				Type:        line.Type(),
				Description: line.Description(),
				Amount:      line.Amount.Abs().Round(2),
				Date:        line.Posted,
				Status:      models.StatusPaid,
				ExternalRef: &ref,
			}
			if line.Memo != "" && line.Memo != t.Description {
				memo := line.Memo
				t.Notes = &memo
			}
			if err := tx.CreateTransaction(ctx, t); err != nil {
				return err
			}
			result.Imported++
		}

		if _, err := recalculateBalance(ctx, tx, account); err != nil {
			return err
		}
		now := s.now().UTC()
		integration.LastSyncAt = &now
		return tx.SaveBankIntegration(ctx, integration)
	})
	if err != nil {
		return nil, err
	}

	s.invalidateReports(ctx, userID)
	s.log.Infof("Statement imported for user %s from %s: %d imported, %d skipped", userID, provider, result.Imported, result.Skipped)
	return result, nil
}

// GetWhatsAppSettings returns the stored settings or the defaults.
func (s *Service) GetWhatsAppSettings(ctx context.Context, userID uuid.UUID) (*models.WhatsAppSettings, error) {
	settings, err := s.store.GetWhatsAppSettings(ctx, userID)
	if errors.Is(err, repository.ErrNotFound) {
		return &models.WhatsAppSettings{UserID: userID}, nil
	}
	return settings, err
}

// UpdateWhatsAppSettings applies the present fields, creating the settings on
// first use. Phone numbers are stored in E.164; an empty number clears it.
func (s *Service) UpdateWhatsAppSettings(ctx context.Context, userID uuid.UUID, in UpdateWhatsAppInput) (*models.WhatsAppSettings, error) {
	if err := s.check(in); err != nil {
		return nil, err
	}
	settings, err := s.GetWhatsAppSettings(ctx, userID)
	if err != nil {
		return nil, err
	}

	if in.PhoneNumber != nil {
		if *in.PhoneNumber == "" {
			settings.PhoneNumber = nil
		} else {
			phone, err := normalizePhone(*in.PhoneNumber, s.config.DefaultPhoneRegion)
			if err != nil {
				return nil, invalidField("phone_number", "must be a valid phone number")
			}
			settings.PhoneNumber = &phone
		}
	}
	if in.IsActive != nil {
		settings.IsActive = *in.IsActive
	}
	if in.AlertOnHighExpense != nil {
		settings.AlertOnHighExpense = *in.AlertOnHighExpense
	}
	if in.HighExpenseThreshold != nil {
		settings.HighExpenseThreshold = in.HighExpenseThreshold
	}
	if in.DailySummary != nil {
		settings.DailySummary = *in.DailySummary
	}
	if in.WeeklySummary != nil {
		settings.WeeklySummary = *in.WeeklySummary
	}

	if err := s.store.SaveWhatsAppSettings(ctx, settings); err != nil {
		s.logError("UpdateWhatsAppSettings", "saving settings", userID, err)
		return nil, err
	}
	return settings, nil
}
