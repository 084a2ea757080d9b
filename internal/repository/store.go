package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/Dan9191/finance-service/internal/models"
)

var (
	// ErrNotFound is returned when a row does not exist or belongs to another user.
	ErrNotFound = errors.New("not found")
	// ErrConflict is returned when a unique constraint is violated.
	ErrConflict = errors.New("conflict")
)

// UserStore persists users.
type UserStore interface {
	CreateUser(ctx context.Context, user *models.User) error
	GetUserByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	UpdateUser(ctx context.Context, user *models.User) error
	DeleteUser(ctx context.Context, id uuid.UUID) error
}

// AccountStore persists accounts. Every lookup is scoped by owner.
type AccountStore interface {
	CreateAccount(ctx context.Context, account *models.Account) error
	GetAccount(ctx context.Context, id, userID uuid.UUID) (*models.Account, error)
	// LockAccount is GetAccount holding the row until the unit of work ends.
	LockAccount(ctx context.Context, id, userID uuid.UUID) (*models.Account, error)
	ListAccounts(ctx context.Context, userID uuid.UUID, includeInactive bool) ([]models.Account, error)
	UpdateAccount(ctx context.Context, account *models.Account) error
	DeleteAccount(ctx context.Context, id, userID uuid.UUID) error
	// AccountLedger sums the non-cancelled transactions funded by the account.
	AccountLedger(ctx context.Context, accountID uuid.UUID) (models.TypeTotals, error)
	SetAccountBalance(ctx context.Context, accountID uuid.UUID, balance decimal.Decimal) error
}

// CardStore persists credit cards.
type CardStore interface {
	CreateCard(ctx context.Context, card *models.CreditCard) error
	GetCard(ctx context.Context, id, userID uuid.UUID) (*models.CreditCard, error)
	ListCards(ctx context.Context, userID uuid.UUID, includeInactive bool) ([]models.CreditCard, error)
	UpdateCard(ctx context.Context, card *models.CreditCard) error
	DeleteCard(ctx context.Context, id, userID uuid.UUID) error
	// PendingCardExpenses sums the pending expenses charged to the card.
	PendingCardExpenses(ctx context.Context, cardID uuid.UUID) (decimal.Decimal, error)
}

// CategoryStore persists categories. Reads see global and own categories;
// writes touch own categories only.
type CategoryStore interface {
	CreateCategory(ctx context.Context, category *models.Category) error
	GetCategory(ctx context.Context, id, userID uuid.UUID) (*models.Category, error)
	ListCategories(ctx context.Context, userID uuid.UUID, typ *models.TransactionType) ([]models.Category, error)
	UpdateCategory(ctx context.Context, category *models.Category) error
	DeleteCategory(ctx context.Context, id, userID uuid.UUID) error
}

// TransactionStore persists transactions. Reads are enriched with the names
// of the referenced account, card and category.
type TransactionStore interface {
	CreateTransaction(ctx context.Context, tx *models.Transaction) error
	GetTransaction(ctx context.Context, id, userID uuid.UUID) (*models.Transaction, error)
	ListTransactions(ctx context.Context, userID uuid.UUID, filter models.TransactionFilter) ([]models.Transaction, error)
	CountTransactions(ctx context.Context, userID uuid.UUID, filter models.TransactionFilter) (int, error)
	UpdateTransaction(ctx context.Context, tx *models.Transaction) error
	DeleteTransaction(ctx context.Context, id, userID uuid.UUID) error
	ExternalRefExists(ctx context.Context, userID uuid.UUID, ref string) (bool, error)
}

// ReportStore computes aggregates over a user's non-cancelled transactions.
type ReportStore interface {
	TotalsByType(ctx context.Context, userID uuid.UUID, filter models.TransactionFilter) (models.TypeTotals, error)
	TotalsByCategory(ctx context.Context, userID uuid.UUID, typ models.TransactionType, window models.Window) ([]models.CategoryTotal, error)
	DailyCashFlow(ctx context.Context, userID uuid.UUID, window models.Window) ([]models.DailyCashFlow, error)
}

// InvestmentStore persists portfolios and their entries.
type InvestmentStore interface {
	CreatePortfolio(ctx context.Context, portfolio *models.Portfolio) error
	GetPortfolio(ctx context.Context, id, userID uuid.UUID) (*models.Portfolio, error)
	ListPortfolios(ctx context.Context, userID uuid.UUID, includeInactive bool) ([]models.Portfolio, error)
	UpdatePortfolio(ctx context.Context, portfolio *models.Portfolio) error
	DeletePortfolio(ctx context.Context, id, userID uuid.UUID) error
	CreateEntry(ctx context.Context, entry *models.InvestmentEntry) error
	ListEntries(ctx context.Context, portfolioID uuid.UUID) ([]models.InvestmentEntry, error)
	DeleteEntry(ctx context.Context, id, portfolioID uuid.UUID) error
	PortfolioTotals(ctx context.Context, portfolioID uuid.UUID) (models.PortfolioTotals, error)
}

// IndicatorStore persists indicator descriptors.
type IndicatorStore interface {
	ListIndicators(ctx context.Context, userID uuid.UUID) ([]models.Indicator, error)
	CreateIndicator(ctx context.Context, indicator *models.Indicator) error
	DeleteIndicator(ctx context.Context, id, userID uuid.UUID) error
}

// IntegrationStore persists bank integrations and notification settings.
type IntegrationStore interface {
	ListBankIntegrations(ctx context.Context, userID uuid.UUID) ([]models.BankIntegration, error)
	GetBankIntegration(ctx context.Context, userID uuid.UUID, provider string) (*models.BankIntegration, error)
	SaveBankIntegration(ctx context.Context, integration *models.BankIntegration) error
	GetWhatsAppSettings(ctx context.Context, userID uuid.UUID) (*models.WhatsAppSettings, error)
	SaveWhatsAppSettings(ctx context.Context, settings *models.WhatsAppSettings) error
	ListSummarySubscribers(ctx context.Context) ([]models.SummarySubscriber, error)
}

// Store is the full persistence surface.
type Store interface {
	UserStore
	AccountStore
	CardStore
	CategoryStore
	TransactionStore
	ReportStore
	InvestmentStore
	IndicatorStore
	IntegrationStore

	// WithTx runs fn against a store whose writes commit together or not at
	// all. Calling WithTx on the store passed to fn joins the same unit.
	WithTx(ctx context.Context, fn func(Store) error) error
}

var (
	_ Store = (*Repository)(nil)
	_ Store = (*MemoryStore)(nil)
	_ Store = memoryTx{}
)
