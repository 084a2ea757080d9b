package repository

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Dan9191/finance-service/internal/models"
)

func newUser(t *testing.T, s *MemoryStore, email string) models.User {
	t.Helper()
	u := models.User{ID: uuid.New(), Email: email, Name: "Test", PasswordHash: "x", IsActive: true}
	require.NoError(t, s.CreateUser(context.Background(), &u))
	return u
}

func newAccount(t *testing.T, s *MemoryStore, userID uuid.UUID, name string) models.Account {
	t.Helper()
	a := models.Account{ID: uuid.New(), UserID: userID, Name: name, Type: models.AccountChecking, IsActive: true}
	require.NoError(t, s.CreateAccount(context.Background(), &a))
	return a
}

func newTx(t *testing.T, s *MemoryStore, userID uuid.UUID, source models.FundingSource, typ models.TransactionType, amount string, date models.Date) models.Transaction {
	t.Helper()
	tx := models.Transaction{
		ID:          uuid.New(),
		UserID:      userID,
		Source:      source,
		Type:        typ,
		Description: "tx",
		Amount:      decimal.RequireFromString(amount),
		Date:        date,
		Status:      models.StatusPaid,
	}
	require.NoError(t, s.CreateTransaction(context.Background(), &tx))
	return tx
}

func TestMemoryStoreSeedsDefaults(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	categories, err := s.ListCategories(ctx, uuid.New(), nil)
	require.NoError(t, err)
	assert.Len(t, categories, 14)

	income := models.TypeIncome
	categories, err = s.ListCategories(ctx, uuid.New(), &income)
	require.NoError(t, err)
	assert.Len(t, categories, 5)

	indicators, err := s.ListIndicators(ctx, uuid.New())
	require.NoError(t, err)
	assert.Len(t, indicators, 4)
}

func TestMemoryStoreScopesByOwner(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()
	alice := newUser(t, s, "alice@example.com")
	bob := newUser(t, s, "bob@example.com")
	account := newAccount(t, s, alice.ID, "Main")

	_, err := s.GetAccount(ctx, account.ID, bob.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, s.DeleteAccount(ctx, account.ID, bob.ID), ErrNotFound)

	tx := newTx(t, s, alice.ID, models.AccountSource{AccountID: account.ID}, models.TypeIncome, "10", models.NewDate(2024, 1, 1))
	_, err = s.GetTransaction(ctx, tx.ID, bob.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	got, err := s.GetTransaction(ctx, tx.ID, alice.ID)
	require.NoError(t, err)
	require.NotNil(t, got.AccountName)
	assert.Equal(t, "Main", *got.AccountName)
}

func TestMemoryStoreDuplicateEmail(t *testing.T) {
	s := NewMemoryStore()
	newUser(t, s, "dup@example.com")
	u := models.User{ID: uuid.New(), Email: "dup@example.com"}
	assert.ErrorIs(t, s.CreateUser(context.Background(), &u), ErrConflict)
}

func TestMemoryStoreListOrderingAndPaging(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()
	u := newUser(t, s, "a@example.com")
	account := newAccount(t, s, u.ID, "Main")
	source := models.AccountSource{AccountID: account.ID}

	first := newTx(t, s, u.ID, source, models.TypeIncome, "1", models.NewDate(2024, 1, 5))
	second := newTx(t, s, u.ID, source, models.TypeIncome, "2", models.NewDate(2024, 1, 5))
	oldest := newTx(t, s, u.ID, source, models.TypeExpense, "3", models.NewDate(2024, 1, 1))

	txs, err := s.ListTransactions(ctx, u.ID, models.TransactionFilter{})
	require.NoError(t, err)
	require.Len(t, txs, 3)
	assert.Equal(t, second.ID, txs[0].ID)
	assert.Equal(t, first.ID, txs[1].ID)
	assert.Equal(t, oldest.ID, txs[2].ID)

	page, err := s.ListTransactions(ctx, u.ID, models.TransactionFilter{Limit: 1, Offset: 1})
	require.NoError(t, err)
	require.Len(t, page, 1)
	assert.Equal(t, first.ID, page[0].ID)

	count, err := s.CountTransactions(ctx, u.ID, models.TransactionFilter{Limit: 1})
	require.NoError(t, err)
	assert.Equal(t, 3, count)
}

func TestMemoryStoreCascades(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()
	u := newUser(t, s, "c@example.com")
	account := newAccount(t, s, u.ID, "Main")
	category := models.Category{ID: uuid.New(), UserID: &u.ID, Name: "Pets", Type: models.TypeExpense, IsActive: true}
	require.NoError(t, s.CreateCategory(ctx, &category))

	tx := newTx(t, s, u.ID, models.AccountSource{AccountID: account.ID}, models.TypeExpense, "5", models.NewDate(2024, 1, 1))
	tx.CategoryID = &category.ID
	require.NoError(t, s.UpdateTransaction(ctx, &tx))

	require.NoError(t, s.DeleteCategory(ctx, category.ID, u.ID))
	got, err := s.GetTransaction(ctx, tx.ID, u.ID)
	require.NoError(t, err)
	assert.Nil(t, got.CategoryID)

	require.NoError(t, s.DeleteAccount(ctx, account.ID, u.ID))
	_, err = s.GetTransaction(ctx, tx.ID, u.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, s.DeleteUser(ctx, u.ID))
	_, err = s.GetUserByID(ctx, u.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryStoreGlobalCategoryIsReadOnly(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()
	u := newUser(t, s, "g@example.com")
	global := DefaultCategories()[0]

	got, err := s.GetCategory(ctx, global.ID, u.ID)
	require.NoError(t, err)
	assert.True(t, got.IsGlobal())

	assert.ErrorIs(t, s.DeleteCategory(ctx, global.ID, u.ID), ErrNotFound)
	got.UserID = &u.ID
	assert.ErrorIs(t, s.UpdateCategory(ctx, got), ErrNotFound)
}

func TestMemoryStoreWithTxRollsBack(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()
	u := newUser(t, s, "tx@example.com")
	boom := errors.New("boom")

	err := s.WithTx(ctx, func(tx Store) error {
		a := models.Account{ID: uuid.New(), UserID: u.ID, Name: "Ghost", IsActive: true}
		if err := tx.CreateAccount(ctx, &a); err != nil {
			return err
		}
		return tx.WithTx(ctx, func(Store) error { return boom })
	})
	assert.ErrorIs(t, err, boom)

	accounts, err := s.ListAccounts(ctx, u.ID, true)
	require.NoError(t, err)
	assert.Empty(t, accounts)
}

func TestMemoryStoreRollbackKeepsConcurrentWrites(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()
	u := newUser(t, s, "concurrent@example.com")
	boom := errors.New("boom")

	other := models.Account{ID: uuid.New(), UserID: u.ID, Name: "Other request", IsActive: true}
	done := make(chan error, 1)
	err := s.WithTx(ctx, func(tx Store) error {
		go func() { done <- s.CreateAccount(ctx, &other) }()
		ghost := models.Account{ID: uuid.New(), UserID: u.ID, Name: "Ghost", IsActive: true}
		if err := tx.CreateAccount(ctx, &ghost); err != nil {
			return err
		}
		return boom
	})
	assert.ErrorIs(t, err, boom)
	require.NoError(t, <-done)

	accounts, err := s.ListAccounts(ctx, u.ID, true)
	require.NoError(t, err)
	require.Len(t, accounts, 1)
	assert.Equal(t, other.ID, accounts[0].ID)
}

func TestMemoryStoreWithTxPublishesOnCommit(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()
	u := newUser(t, s, "commit@example.com")

	err := s.WithTx(ctx, func(tx Store) error {
		a := models.Account{ID: uuid.New(), UserID: u.ID, Name: "Savings", IsActive: true}
		if err := tx.CreateAccount(ctx, &a); err != nil {
			return err
		}
		inside, err := tx.ListAccounts(ctx, u.ID, true)
		require.NoError(t, err)
		assert.Len(t, inside, 1)

		outside, err := s.ListAccounts(ctx, u.ID, true)
		require.NoError(t, err)
		assert.Empty(t, outside)
		return nil
	})
	require.NoError(t, err)

	accounts, err := s.ListAccounts(ctx, u.ID, true)
	require.NoError(t, err)
	assert.Len(t, accounts, 1)
}

func TestMemoryStoreReports(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()
	u := newUser(t, s, "r@example.com")
	account := newAccount(t, s, u.ID, "Main")
	source := models.AccountSource{AccountID: account.ID}

	newTx(t, s, u.ID, source, models.TypeIncome, "1000", models.NewDate(2024, 1, 2))
	newTx(t, s, u.ID, source, models.TypeExpense, "250", models.NewDate(2024, 1, 2))
	cancelled := newTx(t, s, u.ID, source, models.TypeExpense, "99", models.NewDate(2024, 1, 3))
	cancelled.Status = models.StatusCancelled
	require.NoError(t, s.UpdateTransaction(ctx, &cancelled))

	window := models.NewWindow(models.NewDate(2024, 1, 1), models.NewDate(2024, 1, 31))
	totals, err := s.TotalsByType(ctx, u.ID, models.TransactionFilter{Window: window})
	require.NoError(t, err)
	assert.True(t, decimal.NewFromInt(1000).Equal(totals.Income))
	assert.True(t, decimal.NewFromInt(250).Equal(totals.Expense))

	flow, err := s.DailyCashFlow(ctx, u.ID, window)
	require.NoError(t, err)
	require.Len(t, flow, 1)
	assert.True(t, decimal.NewFromInt(750).Equal(flow[0].Balance))

	ledgerTotals, err := s.AccountLedger(ctx, account.ID)
	require.NoError(t, err)
	assert.True(t, decimal.NewFromInt(750).Equal(ledgerTotals.Net()))
}
