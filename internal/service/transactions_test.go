package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Dan9191/finance-service/internal/models"
)

func balanceOf(t *testing.T, f *fixture, userID, accountID uuid.UUID) string {
	t.Helper()
	a, err := f.svc.GetAccount(context.Background(), userID, accountID)
	require.NoError(t, err)
	return a.CurrentBalance.StringFixed(2)
}

func TestAccountBalanceFollowsLedger(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	u := f.user(t, "ana@example.com")
	a := f.account(t, u.ID, "1000.00")
	assert.Equal(t, "1000.00", balanceOf(t, f, u.ID, a.ID))

	f.tx(t, u.ID, a.ID, models.TypeIncome, "500.00")
	f.tx(t, u.ID, a.ID, models.TypeExpense, "200.00")
	assert.Equal(t, "1300.00", balanceOf(t, f, u.ID, a.ID))

	f.tx(t, u.ID, a.ID, models.TypeExpense, "100.00", withStatus(models.StatusCancelled))
	assert.Equal(t, "1300.00", balanceOf(t, f, u.ID, a.ID))

	first, err := f.svc.RecalculateAccountBalance(ctx, u.ID, a.ID)
	require.NoError(t, err)
	second, err := f.svc.RecalculateAccountBalance(ctx, u.ID, a.ID)
	require.NoError(t, err)
	assert.True(t, first.CurrentBalance.Equal(second.CurrentBalance))
	assert.Equal(t, "1300.00", second.CurrentBalance.StringFixed(2))
}

func TestFundingSourceRules(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	u := f.user(t, "ana@example.com")
	a := f.account(t, u.ID, "0")
	c := f.card(t, u.ID, "2000")

	base := CreateTransactionInput{
		Type:        models.TypeExpense,
		Description: "Lunch",
		Amount:      dec("10"),
		Date:        models.NewDate(2024, time.March, 1),
	}

	_, err := f.svc.CreateTransaction(ctx, u.ID, base)
	requireField(t, err, "account_id")

	both := base
	both.AccountID, both.CreditCardID = &a.ID, &c.ID
	_, err = f.svc.CreateTransaction(ctx, u.ID, both)
	requireField(t, err, "credit_card_id")

	income := base
	income.Type = models.TypeIncome
	income.CreditCardID = &c.ID
	_, err = f.svc.CreateTransaction(ctx, u.ID, income)
	requireField(t, err, "credit_card_id")

	zero := base
	zero.AccountID = &a.ID
	zero.Amount = dec("0")
	_, err = f.svc.CreateTransaction(ctx, u.ID, zero)
	requireField(t, err, "amount")

	fraction := base
	fraction.AccountID = &a.ID
	fraction.Amount = dec("1.005")
	_, err = f.svc.CreateTransaction(ctx, u.ID, fraction)
	requireField(t, err, "amount")

	list, err := f.svc.ListTransactions(ctx, u.ID, models.TransactionFilter{})
	require.NoError(t, err)
	assert.Equal(t, 0, list.Total)
}

func TestCardInvoice(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	u := f.user(t, "ana@example.com")
	a := f.account(t, u.ID, "0")
	c := f.card(t, u.ID, "2000.00")

	first := f.tx(t, u.ID, a.ID, models.TypeExpense, "300.00", onCard(c.ID), withStatus(models.StatusPending))
	f.tx(t, u.ID, a.ID, models.TypeExpense, "150.00", onCard(c.ID), withStatus(models.StatusPending))
	f.tx(t, u.ID, a.ID, models.TypeExpense, "999.00", onCard(c.ID), withStatus(models.StatusCancelled))

	inv, err := f.svc.GetInvoice(ctx, u.ID, c.ID)
	require.NoError(t, err)
	assert.Equal(t, "450.00", inv.CurrentInvoice.StringFixed(2))
	assert.Equal(t, "1550.00", inv.AvailableLimit.StringFixed(2))

	paid := models.StatusPaid
	_, err = f.svc.UpdateTransaction(ctx, u.ID, first.ID, UpdateTransactionInput{Status: &paid})
	require.NoError(t, err)

	card, err := f.svc.GetCard(ctx, u.ID, c.ID)
	require.NoError(t, err)
	assert.Equal(t, "150.00", card.CurrentInvoice.StringFixed(2))
	assert.Equal(t, "1850.00", card.AvailableLimit.StringFixed(2))

	// Card purchases never touch account balances.
	assert.Equal(t, "0.00", balanceOf(t, f, u.ID, a.ID))
}

func TestCrossTenantIsolation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	owner := f.user(t, "owner@example.com")
	other := f.user(t, "other@example.com")
	a := f.account(t, owner.ID, "10")
	c := f.card(t, owner.ID, "100")
	tx := f.tx(t, owner.ID, a.ID, models.TypeIncome, "5")

	_, err := f.svc.GetAccount(ctx, other.ID, a.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = f.svc.GetCard(ctx, other.ID, c.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = f.svc.GetTransaction(ctx, other.ID, tx.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, f.svc.DeleteTransaction(ctx, other.ID, tx.ID), ErrNotFound)

	// Booking on someone else's account looks like a missing account.
	otherAccount := f.account(t, other.ID, "0")
	_, err = f.svc.CreateTransaction(ctx, owner.ID, CreateTransactionInput{
		AccountID:   &otherAccount.ID,
		Type:        models.TypeIncome,
		Description: "sneaky",
		Amount:      dec("1"),
		Date:        models.NewDate(2024, time.March, 1),
	})
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Equal(t, "0.00", balanceOf(t, f, other.ID, otherAccount.ID))
}

func TestUpdateMovesBetweenAccounts(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	u := f.user(t, "ana@example.com")
	from := f.account(t, u.ID, "100")
	to := f.account(t, u.ID, "50")
	tx := f.tx(t, u.ID, from.ID, models.TypeExpense, "30")
	assert.Equal(t, "70.00", balanceOf(t, f, u.ID, from.ID))

	amount := dec("40")
	updated, err := f.svc.UpdateTransaction(ctx, u.ID, tx.ID, UpdateTransactionInput{AccountID: &to.ID, Amount: &amount})
	require.NoError(t, err)
	accountID, cardID := updated.SourceColumns()
	require.NotNil(t, accountID)
	assert.Equal(t, to.ID, *accountID)
	assert.Nil(t, cardID)
	assert.Equal(t, "Checking 50", *updated.AccountName)

	assert.Equal(t, "100.00", balanceOf(t, f, u.ID, from.ID))
	assert.Equal(t, "10.00", balanceOf(t, f, u.ID, to.ID))
}

func TestUpdateRejectsIncomeOnCard(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	u := f.user(t, "ana@example.com")
	a := f.account(t, u.ID, "0")
	c := f.card(t, u.ID, "100")
	tx := f.tx(t, u.ID, a.ID, models.TypeIncome, "30")

	_, err := f.svc.UpdateTransaction(ctx, u.ID, tx.ID, UpdateTransactionInput{CreditCardID: &c.ID})
	requireField(t, err, "credit_card_id")
	assert.Equal(t, "30.00", balanceOf(t, f, u.ID, a.ID))
}

func TestDeleteTransactionRecomputes(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	u := f.user(t, "ana@example.com")
	a := f.account(t, u.ID, "100")
	tx := f.tx(t, u.ID, a.ID, models.TypeExpense, "25")
	assert.Equal(t, "75.00", balanceOf(t, f, u.ID, a.ID))

	require.NoError(t, f.svc.DeleteTransaction(ctx, u.ID, tx.ID))
	assert.Equal(t, "100.00", balanceOf(t, f, u.ID, a.ID))
}

func TestCategoryMustMatchType(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	u := f.user(t, "ana@example.com")
	a := f.account(t, u.ID, "0")
	salary := f.category(t, u.ID, "Salary", models.TypeIncome)

	_, err := f.svc.CreateTransaction(ctx, u.ID, CreateTransactionInput{
		AccountID:   &a.ID,
		CategoryID:  &salary.ID,
		Type:        models.TypeExpense,
		Description: "Groceries",
		Amount:      dec("10"),
		Date:        models.NewDate(2024, time.March, 1),
	})
	requireField(t, err, "category_id")

	tx := f.tx(t, u.ID, a.ID, models.TypeIncome, "10", withCategory(salary.ID))
	assert.Equal(t, "Salary", *tx.CategoryName)

	foreign := f.category(t, f.user(t, "other@example.com").ID, "Mine", models.TypeIncome)
	_, err = f.svc.CreateTransaction(ctx, u.ID, CreateTransactionInput{
		AccountID:   &a.ID,
		CategoryID:  &foreign.ID,
		Type:        models.TypeIncome,
		Description: "Bonus",
		Amount:      dec("10"),
		Date:        models.NewDate(2024, time.March, 1),
	})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRecurringSeries(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	u := f.user(t, "ana@example.com")
	a := f.account(t, u.ID, "0")

	series, err := f.svc.CreateTransaction(ctx, u.ID, CreateTransactionInput{
		AccountID:   &a.ID,
		Type:        models.TypeExpense,
		Description: "Rent",
		Amount:      dec("1000"),
		Date:        models.NewDate(2024, time.January, 15),
		Recurrence:  &RecurrenceInput{Schedule: "0 0 15 * *", Occurrences: 3},
	})
	require.NoError(t, err)
	require.NotNil(t, series.RecurringID)
	require.Len(t, series.Transactions, 3)

	var dates []string
	for _, tx := range series.Transactions {
		assert.True(t, tx.IsRecurring)
		assert.Equal(t, *series.RecurringID, *tx.RecurringID)
		dates = append(dates, tx.Date.String())
	}
	assert.Equal(t, []string{"2024-01-15", "2024-02-15", "2024-03-15"}, dates)
	assert.Equal(t, "-3000.00", balanceOf(t, f, u.ID, a.ID))

	_, err = f.svc.CreateTransaction(ctx, u.ID, CreateTransactionInput{
		AccountID:   &a.ID,
		Type:        models.TypeExpense,
		Description: "Rent",
		Amount:      dec("1000"),
		Date:        models.NewDate(2024, time.January, 15),
		Recurrence:  &RecurrenceInput{Schedule: "every month", Occurrences: 3},
	})
	requireField(t, err, "recurrence.schedule")

	_, err = f.svc.CreateTransaction(ctx, u.ID, CreateTransactionInput{
		AccountID:   &a.ID,
		Type:        models.TypeExpense,
		Description: "Rent",
		Amount:      dec("1000"),
		Date:        models.NewDate(2024, time.January, 15),
		Recurrence:  &RecurrenceInput{Schedule: "@monthly", Occurrences: 1},
	})
	requireField(t, err, "recurrence.occurrences")

	deleted, err := f.svc.DeleteRecurringGroup(ctx, u.ID, *series.RecurringID)
	require.NoError(t, err)
	assert.Equal(t, 3, deleted)
	assert.Equal(t, "0.00", balanceOf(t, f, u.ID, a.ID))

	_, err = f.svc.DeleteRecurringGroup(ctx, u.ID, *series.RecurringID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestListTransactionsTotalsIgnorePaging(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	u := f.user(t, "ana@example.com")
	a := f.account(t, u.ID, "0")
	for day := 1; day <= 5; day++ {
		f.tx(t, u.ID, a.ID, models.TypeIncome, "100", onDate(models.NewDate(2024, time.March, day)))
	}
	f.tx(t, u.ID, a.ID, models.TypeExpense, "50", onDate(models.NewDate(2024, time.March, 6)))
	f.tx(t, u.ID, a.ID, models.TypeExpense, "70", onDate(models.NewDate(2024, time.March, 7)), withStatus(models.StatusCancelled))

	list, err := f.svc.ListTransactions(ctx, u.ID, models.TransactionFilter{Limit: 2, Offset: 1})
	require.NoError(t, err)
	require.Len(t, list.Transactions, 2)
	assert.Equal(t, "2024-03-06", list.Transactions[0].Date.String())
	assert.Equal(t, 7, list.Total)
	assert.Equal(t, "500.00", list.TotalIncome.StringFixed(2))
	assert.Equal(t, "50.00", list.TotalExpense.StringFixed(2))
	assert.Equal(t, "450.00", list.Balance.StringFixed(2))

	_, err = f.svc.ListTransactions(ctx, u.ID, models.TransactionFilter{Limit: 501})
	requireField(t, err, "limit")

	start, end := models.NewDate(2024, time.March, 5), models.NewDate(2024, time.March, 1)
	_, err = f.svc.ListTransactions(ctx, u.ID, models.TransactionFilter{Window: models.Window{Start: &start, End: &end}})
	requireField(t, err, "end_date")
}

func TestBlankTextIsRejected(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	u := f.user(t, "ana@example.com")
	a := f.account(t, u.ID, "0")
	blank := "   "

	_, err := f.svc.CreateTransaction(ctx, u.ID, CreateTransactionInput{
		AccountID:   &a.ID,
		Type:        models.TypeExpense,
		Description: blank,
		Amount:      dec("10"),
		Date:        models.NewDate(2024, time.March, 1),
	})
	requireField(t, err, "description")

	tx := f.tx(t, u.ID, a.ID, models.TypeExpense, "10")
	_, err = f.svc.UpdateTransaction(ctx, u.ID, tx.ID, UpdateTransactionInput{Description: &blank})
	requireField(t, err, "description")

	_, err = f.svc.CreateAccount(ctx, u.ID, CreateAccountInput{Name: blank, Type: models.AccountChecking})
	requireField(t, err, "name")
	_, err = f.svc.UpdateAccount(ctx, u.ID, a.ID, UpdateAccountInput{Name: &blank})
	requireField(t, err, "name")

	_, err = f.svc.CreateCategory(ctx, u.ID, CreateCategoryInput{Name: blank, Type: models.TypeExpense})
	requireField(t, err, "name")

	got, err := f.svc.GetTransaction(ctx, u.ID, tx.ID)
	require.NoError(t, err)
	assert.Equal(t, "expense 10", got.Description)
}
