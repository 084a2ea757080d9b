package service

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/Dan9191/finance-service/internal/ledger"
	"github.com/Dan9191/finance-service/internal/models"
	"github.com/Dan9191/finance-service/internal/repository"
)

const (
	defaultPageSize = 100
	maxPageSize     = 500
)

type CreateTransactionInput struct {
	AccountID    *uuid.UUID               `json:"account_id"`
	CreditCardID *uuid.UUID               `json:"credit_card_id"`
	CategoryID   *uuid.UUID               `json:"category_id"`
	Type         models.TransactionType   `json:"type" validate:"required,oneof=income expense"`
	Description  string                   `json:"description" validate:"required,notblank,max=255"`
	Amount       decimal.Decimal          `json:"amount" validate:"money_pos"`
	Date         models.Date              `json:"date" validate:"required"`
	Status       models.TransactionStatus `json:"status" validate:"omitempty,oneof=pending paid cancelled"`
	Notes        *string                  `json:"notes" validate:"omitempty,max=2000"`
	Recurrence   *RecurrenceInput         `json:"recurrence"`
}

// RecurrenceInput expands one transaction into a series. Schedule is a
// five-field cron expression or a descriptor such as @monthly.
type RecurrenceInput struct {
	Schedule    string `json:"schedule" validate:"required,max=100"`
	Occurrences int    `json:"occurrences" validate:"min=2,max=60"`
}

// UpdateTransactionInput changes the present fields only. Setting either
// account_id or credit_card_id moves the transaction to that source.
type UpdateTransactionInput struct {
	AccountID    *uuid.UUID                `json:"account_id"`
	CreditCardID *uuid.UUID                `json:"credit_card_id"`
	CategoryID   *uuid.UUID                `json:"category_id"`
	Description  *string                   `json:"description" validate:"omitempty,notblank,min=1,max=255"`
	Amount       *decimal.Decimal          `json:"amount" validate:"omitempty,money_pos"`
	Date         *models.Date              `json:"date" validate:"omitempty"`
	Status       *models.TransactionStatus `json:"status" validate:"omitempty,oneof=pending paid cancelled"`
	Notes        *string                   `json:"notes" validate:"omitempty,max=2000"`
}

// TransactionSeries is the result of creating a transaction, recurring or not.
type TransactionSeries struct {
	RecurringID  *uuid.UUID           `json:"recurring_id"`
	Transactions []models.Transaction `json:"transactions"`
}

// refs are the records a transaction points at, resolved for one write.
type refs struct {
	source   models.FundingSource
	account  *models.Account
	card     *models.CreditCard
	category *models.Category
}

func (r refs) apply(t *models.Transaction) {
	t.Source = r.source
	t.AccountName, t.CreditCardName = nil, nil
	if r.account != nil {
		t.AccountName = &r.account.Name
	}
	if r.card != nil {
		t.CreditCardName = &r.card.Name
	}
	if r.category != nil {
		t.CategoryID = &r.category.ID
		t.CategoryName = &r.category.Name
		t.CategoryColor = r.category.Color
	}
}

// resolveSource enforces the single-source rule and loads the owned source.
func resolveSource(ctx context.Context, store repository.Store, userID uuid.UUID, accountID, cardID *uuid.UUID, typ models.TransactionType) (refs, error) {
	var r refs
	source, err := models.NewFundingSource(accountID, cardID)
	if err != nil {
		field := "account_id"
		if errors.Is(err, models.ErrSourceBoth) {
			field = "credit_card_id"
		}
		return r, invalidField(field, err.Error())
	}
	r.source = source

	switch src := source.(type) {
	case models.AccountSource:
		r.account, err = store.GetAccount(ctx, src.AccountID, userID)
		if errors.Is(err, repository.ErrNotFound) {
			return r, notFound("account")
		}
	case models.CardSource:
		if typ == models.TypeIncome {
			return r, invalidField("credit_card_id", "income cannot be charged to a credit card")
		}
		r.card, err = store.GetCard(ctx, src.CardID, userID)
		if errors.Is(err, repository.ErrNotFound) {
			return r, notFound("credit card")
		}
	}
	return r, err
}

// resolveCategory loads a visible category of the transaction's type.
func resolveCategory(ctx context.Context, store repository.Store, userID uuid.UUID, categoryID *uuid.UUID, typ models.TransactionType) (*models.Category, error) {
	if categoryID == nil {
		return nil, nil
	}
	category, err := store.GetCategory(ctx, *categoryID, userID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, notFound("category")
	}
	if err != nil {
		return nil, err
	}
	if category.Type != typ {
		return nil, invalidField("category_id", "must be a category of type "+string(typ))
	}
	return category, nil
}

// CreateTransaction records a transaction, or a recurring series of them, and
// recomputes the funding account balance in the same unit of work.
func (s *Service) CreateTransaction(ctx context.Context, userID uuid.UUID, in CreateTransactionInput) (*TransactionSeries, error) {
	if err := s.check(in); err != nil {
		return nil, err
	}
	if in.Status == "" {
		in.Status = models.StatusPaid
	}

	series := &TransactionSeries{}
	dates := []models.Date{in.Date}
	if in.Recurrence != nil {
		var err error
		dates, err = ledger.Occurrences(in.Recurrence.Schedule, in.Date, in.Recurrence.Occurrences)
		if err != nil {
			return nil, invalidField("recurrence.schedule", err.Error())
		}
		id := uuid.New()
		series.RecurringID = &id
	}

	err := s.store.WithTx(ctx, func(tx repository.Store) error {
		r, err := resolveSource(ctx, tx, userID, in.AccountID, in.CreditCardID, in.Type)
		if err != nil {
			return err
		}
		if r.category, err = resolveCategory(ctx, tx, userID, in.CategoryID, in.Type); err != nil {
			return err
		}

		for _, date := range dates {
			t := &models.Transaction{
				ID:          uuid.New(),
				UserID:      userID,
				Type:        in.Type,
				Description: strings.TrimSpace(in.Description),
				Amount:      in.Amount,
				Date:        date,
				Status:      in.Status,
				IsRecurring: series.RecurringID != nil,
				RecurringID: series.RecurringID,
				Notes:       in.Notes,
			}
			r.apply(t)
			if err := tx.CreateTransaction(ctx, t); err != nil {
				return err
			}
			series.Transactions = append(series.Transactions, *t)
		}
		return recalculateSources(ctx, tx, userID, r.source)
	})
	if err != nil {
		return nil, err
	}

	s.invalidateReports(ctx, userID)
	s.log.Infof("Transaction created for user %s: %d row(s)", userID, len(series.Transactions))
	return series, nil
}

func (s *Service) GetTransaction(ctx context.Context, userID, transactionID uuid.UUID) (*models.Transaction, error) {
	return s.store.GetTransaction(ctx, transactionID, userID)
}

// UpdateTransaction applies a partial change. Both the previous and the new
// funding account are recomputed.
func (s *Service) UpdateTransaction(ctx context.Context, userID, transactionID uuid.UUID, in UpdateTransactionInput) (*models.Transaction, error) {
	if err := s.check(in); err != nil {
		return nil, err
	}

	var updated *models.Transaction
	err := s.store.WithTx(ctx, func(tx repository.Store) error {
		current, err := tx.GetTransaction(ctx, transactionID, userID)
		if err != nil {
			return err
		}
		previous := current.Source

		if in.AccountID != nil || in.CreditCardID != nil {
			r, err := resolveSource(ctx, tx, userID, in.AccountID, in.CreditCardID, current.Type)
			if err != nil {
				return err
			}
			current.Source = r.source
		}
		if in.CategoryID != nil {
			category, err := resolveCategory(ctx, tx, userID, in.CategoryID, current.Type)
			if err != nil {
				return err
			}
			current.CategoryID = &category.ID
		}
		if in.Description != nil {
			current.Description = strings.TrimSpace(*in.Description)
		}
		if in.Amount != nil {
			current.Amount = *in.Amount
		}
		if in.Date != nil {
			current.Date = *in.Date
		}
		if in.Status != nil {
			current.Status = *in.Status
		}
		if in.Notes != nil {
			current.Notes = in.Notes
		}

		if err := tx.UpdateTransaction(ctx, current); err != nil {
			return err
		}
		if err := recalculateSources(ctx, tx, userID, previous, current.Source); err != nil {
			return err
		}
		updated, err = tx.GetTransaction(ctx, transactionID, userID)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.invalidateReports(ctx, userID)
	return updated, nil
}

// DeleteTransaction removes a transaction and recomputes its account.
func (s *Service) DeleteTransaction(ctx context.Context, userID, transactionID uuid.UUID) error {
	err := s.store.WithTx(ctx, func(tx repository.Store) error {
		current, err := tx.GetTransaction(ctx, transactionID, userID)
		if err != nil {
			return err
		}
		if err := tx.DeleteTransaction(ctx, transactionID, userID); err != nil {
			return err
		}
		return recalculateSources(ctx, tx, userID, current.Source)
	})
	if err != nil {
		return err
	}
	s.invalidateReports(ctx, userID)
	return nil
}

// DeleteRecurringGroup removes every transaction of a recurring series.
func (s *Service) DeleteRecurringGroup(ctx context.Context, userID, recurringID uuid.UUID) (int, error) {
	var deleted int
	err := s.store.WithTx(ctx, func(tx repository.Store) error {
		group, err := tx.ListTransactions(ctx, userID, models.TransactionFilter{RecurringID: &recurringID})
		if err != nil {
			return err
		}
		if len(group) == 0 {
			return notFound("recurring transaction group")
		}
		sources := make([]models.FundingSource, 0, len(group))
		for _, t := range group {
			if err := tx.DeleteTransaction(ctx, t.ID, userID); err != nil {
				return err
			}
			sources = append(sources, t.Source)
		}
		deleted = len(group)
		return recalculateSources(ctx, tx, userID, sources...)
	})
	if err != nil {
		return 0, err
	}
	s.invalidateReports(ctx, userID)
	s.log.Infof("Recurring group %s deleted for user %s: %d row(s)", recurringID, userID, deleted)
	return deleted, nil
}

// ListTransactions returns one page of matching transactions. Total and the
// sums cover every matching row regardless of the page.
func (s *Service) ListTransactions(ctx context.Context, userID uuid.UUID, filter models.TransactionFilter) (*models.TransactionList, error) {
	if filter.Limit == 0 {
		filter.Limit = defaultPageSize
	}
	if filter.Limit < 1 || filter.Limit > maxPageSize {
		return nil, invalidField("limit", "must be between 1 and 500")
	}
	if filter.Offset < 0 {
		return nil, invalidField("offset", "must not be negative")
	}
	if err := checkWindow(filter.Window, false); err != nil {
		return nil, err
	}

	txs, err := s.store.ListTransactions(ctx, userID, filter)
	if err != nil {
		return nil, err
	}
	total, err := s.store.CountTransactions(ctx, userID, filter.Unpaged())
	if err != nil {
		return nil, err
	}
	totals, err := s.store.TotalsByType(ctx, userID, filter.Unpaged())
	if err != nil {
		return nil, err
	}

	return &models.TransactionList{
		Transactions: txs,
		Total:        total,
		TotalIncome:  totals.Income,
		TotalExpense: totals.Expense,
		Balance:      totals.Net(),
	}, nil
}

// checkWindow rejects inverted windows and, when required, open ones.
func checkWindow(w models.Window, required bool) error {
	if required {
		fields := map[string]string{}
		if w.Start == nil {
			fields["start_date"] = "is required"
		}
		if w.End == nil {
			fields["end_date"] = "is required"
		}
		if len(fields) > 0 {
			return &ValidationError{Fields: fields}
		}
	}
	if w.Closed() && w.End.Before(*w.Start) {
		return invalidField("end_date", "must not be before start_date")
	}
	return nil
}
