package service

import (
	"context"
	"fmt"
	"sort"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/Dan9191/finance-service/internal/ledger"
	"github.com/Dan9191/finance-service/internal/models"
	"github.com/Dan9191/finance-service/internal/repository"
)

// recalculateBalance derives the account balance from its ledger and stores it.
func recalculateBalance(ctx context.Context, store repository.Store, account *models.Account) (decimal.Decimal, error) {
	totals, err := store.AccountLedger(ctx, account.ID)
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to sum account %s: %w", account.ID, err)
	}
	balance := ledger.Balance(account.InitialBalance, totals)
	if err := store.SetAccountBalance(ctx, account.ID, balance); err != nil {
		return decimal.Zero, fmt.Errorf("failed to store balance of account %s: %w", account.ID, err)
	}
	account.CurrentBalance = balance
	return balance, nil
}

// recalculateSources locks and recomputes every distinct account among the
// sources. Accounts are locked in id order so concurrent units cannot deadlock.
func recalculateSources(ctx context.Context, store repository.Store, userID uuid.UUID, sources ...models.FundingSource) error {
	seen := make(map[uuid.UUID]bool)
	var ids []uuid.UUID
	for _, src := range sources {
		accountID, ok := models.SourceAccount(src)
		if !ok || seen[accountID] {
			continue
		}
		seen[accountID] = true
		ids = append(ids, accountID)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i].String() < ids[j].String() })

	for _, accountID := range ids {
		account, err := store.LockAccount(ctx, accountID, userID)
		if err != nil {
			return err
		}
		if _, err := recalculateBalance(ctx, store, account); err != nil {
			return err
		}
	}
	return nil
}

// withInvoice fills the computed invoice fields of a card.
func withInvoice(ctx context.Context, store repository.Store, card *models.CreditCard) error {
	invoice, err := store.PendingCardExpenses(ctx, card.ID)
	if err != nil {
		return fmt.Errorf("failed to sum invoice of card %s: %w", card.ID, err)
	}
	card.CurrentInvoice = invoice
	card.AvailableLimit = ledger.AvailableLimit(card.Limit, invoice)
	return nil
}
