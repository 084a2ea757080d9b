package service

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/Dan9191/finance-service/internal/cache"
	"github.com/Dan9191/finance-service/internal/config"
	"github.com/Dan9191/finance-service/internal/models"
	"github.com/Dan9191/finance-service/internal/repository"
)

var fixedNow = time.Date(2024, time.March, 15, 12, 0, 0, 0, time.UTC)

type fixture struct {
	svc   *Service
	store *repository.MemoryStore
	now   time.Time
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	cfg := &config.Config{
		JWTSecret:          "test-secret",
		TokenTTL:           time.Hour,
		HMACSecret:         "test-hmac",
		EncryptionKey:      "00112233445566778899aabbccddeeff",
		ReportCacheTTL:     time.Minute,
		Locale:             "en-US",
		CurrencySymbol:     "$",
		DefaultPhoneRegion: "BR",
	}
	logger := logrus.New()
	logger.SetOutput(io.Discard)

	f := &fixture{store: repository.NewMemoryStore(), now: fixedNow}
	f.svc = NewService(f.store, cache.NewLRU(100, time.Minute), logger, cfg,
		WithHashCost(bcrypt.MinCost),
		WithClock(func() time.Time { return f.now }))
	return f
}

func (f *fixture) user(t *testing.T, email string) *models.User {
	t.Helper()
	u, err := f.svc.Register(context.Background(), RegisterInput{Email: email, Password: "secret123", Name: "Test User"})
	require.NoError(t, err)
	return u
}

func (f *fixture) account(t *testing.T, userID uuid.UUID, initial string) *models.Account {
	t.Helper()
	a, err := f.svc.CreateAccount(context.Background(), userID, CreateAccountInput{
		Name:           "Checking " + initial,
		Type:           models.AccountChecking,
		InitialBalance: decimal.RequireFromString(initial),
	})
	require.NoError(t, err)
	return a
}

func (f *fixture) card(t *testing.T, userID uuid.UUID, limit string) *models.CreditCard {
	t.Helper()
	c, err := f.svc.CreateCard(context.Background(), userID, CreateCardInput{
		Name:        "Gold",
		Institution: "Bank",
		Limit:       decimal.RequireFromString(limit),
		ClosingDay:  5,
		DueDay:      15,
	})
	require.NoError(t, err)
	return c
}

func (f *fixture) category(t *testing.T, userID uuid.UUID, name string, typ models.TransactionType) *models.Category {
	t.Helper()
	c, err := f.svc.CreateCategory(context.Background(), userID, CreateCategoryInput{Name: name, Type: typ})
	require.NoError(t, err)
	return c
}

type txOpt func(*CreateTransactionInput)

func onCard(id uuid.UUID) txOpt {
	return func(in *CreateTransactionInput) { in.AccountID, in.CreditCardID = nil, &id }
}

func withStatus(st models.TransactionStatus) txOpt {
	return func(in *CreateTransactionInput) { in.Status = st }
}

func withCategory(id uuid.UUID) txOpt {
	return func(in *CreateTransactionInput) { in.CategoryID = &id }
}

func onDate(d models.Date) txOpt {
	return func(in *CreateTransactionInput) { in.Date = d }
}

func (f *fixture) tx(t *testing.T, userID, accountID uuid.UUID, typ models.TransactionType, amount string, opts ...txOpt) models.Transaction {
	t.Helper()
	in := CreateTransactionInput{
		AccountID:   &accountID,
		Type:        typ,
		Description: string(typ) + " " + amount,
		Amount:      decimal.RequireFromString(amount),
		Date:        models.NewDate(2024, time.March, 10),
	}
	for _, opt := range opts {
		opt(&in)
	}
	series, err := f.svc.CreateTransaction(context.Background(), userID, in)
	require.NoError(t, err)
	require.Len(t, series.Transactions, 1)
	return series.Transactions[0]
}

func march() models.Window {
	return models.NewWindow(models.NewDate(2024, time.March, 1), models.NewDate(2024, time.March, 31))
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func requireField(t *testing.T, err error, field string) {
	t.Helper()
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	require.Contains(t, verr.Fields, field)
}
