package service

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/Dan9191/finance-service/internal/models"
	"github.com/Dan9191/finance-service/internal/repository"
)

type CreateAccountInput struct {
	Name           string             `json:"name" validate:"required,notblank,max=100"`
	Type           models.AccountType `json:"type" validate:"required,oneof=checking savings wallet investment other"`
	Institution    *string            `json:"institution" validate:"omitempty,max=100"`
	InitialBalance decimal.Decimal    `json:"initial_balance" validate:"money"`
	Color          *string            `json:"color" validate:"omitempty,color"`
}

// UpdateAccountInput changes the present fields only. The initial balance is
// fixed at creation.
type UpdateAccountInput struct {
	Name        *string             `json:"name" validate:"omitempty,notblank,min=1,max=100"`
	Type        *models.AccountType `json:"type" validate:"omitempty,oneof=checking savings wallet investment other"`
	Institution *string             `json:"institution" validate:"omitempty,max=100"`
	Color       *string             `json:"color" validate:"omitempty,color"`
	IsActive    *bool               `json:"is_active"`
}

// BalanceResult is returned by an explicit recalculation.
type BalanceResult struct {
	AccountID      uuid.UUID       `json:"account_id"`
	CurrentBalance decimal.Decimal `json:"current_balance"`
}

// CreateAccount creates a new account for the authenticated user
func (s *Service) CreateAccount(ctx context.Context, userID uuid.UUID, in CreateAccountInput) (*models.Account, error) {
	if err := s.check(in); err != nil {
		return nil, err
	}

	account := &models.Account{
		ID:             uuid.New(),
		UserID:         userID,
		Name:           strings.TrimSpace(in.Name),
		Type:           in.Type,
		Institution:    in.Institution,
		InitialBalance: in.InitialBalance,
		CurrentBalance: in.InitialBalance,
		Color:          in.Color,
		IsActive:       true,
	}
	if err := s.store.CreateAccount(ctx, account); err != nil {
		s.logError("CreateAccount", "creating account", userID, err)
		return nil, err
	}

	s.invalidateReports(ctx, userID)
	s.log.Infof("Account created for user %s: %s", userID, account.ID)
	return account, nil
}

func (s *Service) GetAccount(ctx context.Context, userID, accountID uuid.UUID) (*models.Account, error) {
	return s.store.GetAccount(ctx, accountID, userID)
}

// ListAccounts returns the user's accounts ordered by name. TotalBalance
// covers active accounts only.
func (s *Service) ListAccounts(ctx context.Context, userID uuid.UUID, includeInactive bool) (*models.AccountList, error) {
	accounts, err := s.store.ListAccounts(ctx, userID, includeInactive)
	if err != nil {
		return nil, err
	}
	list := &models.AccountList{Accounts: accounts, Total: len(accounts), TotalBalance: decimal.Zero}
	for _, a := range accounts {
		if a.IsActive {
			list.TotalBalance = list.TotalBalance.Add(a.CurrentBalance)
		}
	}
	return list, nil
}

func (s *Service) UpdateAccount(ctx context.Context, userID, accountID uuid.UUID, in UpdateAccountInput) (*models.Account, error) {
	if err := s.check(in); err != nil {
		return nil, err
	}
	account, err := s.store.GetAccount(ctx, accountID, userID)
	if err != nil {
		return nil, err
	}

	if in.Name != nil {
		account.Name = strings.TrimSpace(*in.Name)
	}
	if in.Type != nil {
		account.Type = *in.Type
	}
	if in.Institution != nil {
		account.Institution = in.Institution
	}
	if in.Color != nil {
		account.Color = in.Color
	}
	if in.IsActive != nil {
		account.IsActive = *in.IsActive
	}

	if err := s.store.UpdateAccount(ctx, account); err != nil {
		s.logError("UpdateAccount", "updating account", accountID, err)
		return nil, err
	}
	s.invalidateReports(ctx, userID)
	return account, nil
}

// DeleteAccount removes the account and its transactions.
func (s *Service) DeleteAccount(ctx context.Context, userID, accountID uuid.UUID) error {
	if err := s.store.DeleteAccount(ctx, accountID, userID); err != nil {
		return err
	}
	s.invalidateReports(ctx, userID)
	s.log.Infof("Account %s deleted for user %s", accountID, userID)
	return nil
}

// RecalculateAccountBalance recomputes and stores the balance of an owned account.
func (s *Service) RecalculateAccountBalance(ctx context.Context, userID, accountID uuid.UUID) (*BalanceResult, error) {
	var balance decimal.Decimal
	err := s.store.WithTx(ctx, func(tx repository.Store) error {
		account, err := tx.LockAccount(ctx, accountID, userID)
		if err != nil {
			return err
		}
		balance, err = recalculateBalance(ctx, tx, account)
		return err
	})
	if err != nil {
		return nil, err
	}
	s.invalidateReports(ctx, userID)
	return &BalanceResult{AccountID: accountID, CurrentBalance: balance}, nil
}
