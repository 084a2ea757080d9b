package repository

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/Dan9191/finance-service/internal/ledger"
	"github.com/Dan9191/finance-service/internal/models"
)

// MemoryStore keeps every entity in maps. It backs tests and the memory
// backend and follows the same ownership, ordering and cascade rules as the
// PostgreSQL schema.
type MemoryStore struct {
	mu   sync.RWMutex
	txMu sync.Mutex
	data *memoryData
	now  func() time.Time
}

type memoryData struct {
	seq          int64
	users        map[uuid.UUID]models.User
	accounts     map[uuid.UUID]models.Account
	cards        map[uuid.UUID]models.CreditCard
	categories   map[uuid.UUID]models.Category
	transactions map[uuid.UUID]models.Transaction
	txOrder      map[uuid.UUID]int64
	portfolios   map[uuid.UUID]models.Portfolio
	entries      map[uuid.UUID]models.InvestmentEntry
	indicators   map[uuid.UUID]models.Indicator
	integrations map[uuid.UUID]models.BankIntegration
	whatsapp     map[uuid.UUID]models.WhatsAppSettings // keyed by user id
}

// NewMemoryStore returns an empty store holding the default categories and
// system indicators.
func NewMemoryStore() *MemoryStore {
	data := &memoryData{
		users:        map[uuid.UUID]models.User{},
		accounts:     map[uuid.UUID]models.Account{},
		cards:        map[uuid.UUID]models.CreditCard{},
		categories:   map[uuid.UUID]models.Category{},
		transactions: map[uuid.UUID]models.Transaction{},
		txOrder:      map[uuid.UUID]int64{},
		portfolios:   map[uuid.UUID]models.Portfolio{},
		entries:      map[uuid.UUID]models.InvestmentEntry{},
		indicators:   map[uuid.UUID]models.Indicator{},
		integrations: map[uuid.UUID]models.BankIntegration{},
		whatsapp:     map[uuid.UUID]models.WhatsAppSettings{},
	}
	now := time.Now().UTC()
	for _, c := range DefaultCategories() {
		c.CreatedAt = now
		data.categories[c.ID] = c
	}
	for _, i := range defaultIndicators {
		i.CreatedAt = now
		data.indicators[i.ID] = i
	}
	return &MemoryStore{data: data, now: func() time.Time { return time.Now().UTC() }}
}

func (d *memoryData) clone() *memoryData {
	return &memoryData{
		seq:          d.seq,
		users:        cloneMap(d.users),
		accounts:     cloneMap(d.accounts),
		cards:        cloneMap(d.cards),
		categories:   cloneMap(d.categories),
		transactions: cloneMap(d.transactions),
		txOrder:      cloneMap(d.txOrder),
		portfolios:   cloneMap(d.portfolios),
		entries:      cloneMap(d.entries),
		indicators:   cloneMap(d.indicators),
		integrations: cloneMap(d.integrations),
		whatsapp:     cloneMap(d.whatsapp),
	}
}

func cloneMap[K comparable, V any](m map[K]V) map[K]V {
	out := make(map[K]V, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// lockWrite takes the write locks and returns the function releasing them.
// Writers wait for a running unit of work, so committing its working copy
// never overwrites their changes.
func (m *MemoryStore) lockWrite() func() {
	m.txMu.Lock()
	m.mu.Lock()
	return func() {
		m.mu.Unlock()
		m.txMu.Unlock()
	}
}

// WithTx runs fn against a working copy of the data and publishes the copy
// only if fn succeeds. Readers outside the unit keep seeing committed state.
func (m *MemoryStore) WithTx(ctx context.Context, fn func(Store) error) error {
	m.txMu.Lock()
	defer m.txMu.Unlock()

	m.mu.RLock()
	work := &MemoryStore{data: m.data.clone(), now: m.now}
	m.mu.RUnlock()

	if err := fn(memoryTx{work}); err != nil {
		return err
	}
	m.mu.Lock()
	m.data = work.data
	m.mu.Unlock()
	return nil
}

// memoryTx is the store handed to a unit of work. Its locks guard only the
// working copy.
type memoryTx struct {
	*MemoryStore
}

func (t memoryTx) WithTx(ctx context.Context, fn func(Store) error) error {
	return fn(t)
}

// Users

func (m *MemoryStore) CreateUser(ctx context.Context, user *models.User) error {
	defer m.lockWrite()()
	for _, u := range m.data.users {
		if strings.EqualFold(u.Email, user.Email) {
			return ErrConflict
		}
	}
	user.CreatedAt = m.now()
	user.UpdatedAt = user.CreatedAt
	m.data.users[user.ID] = *user
	return nil
}

func (m *MemoryStore) GetUserByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	u, ok := m.data.users[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &u, nil
}

func (m *MemoryStore) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, u := range m.data.users {
		if u.Email == email {
			return &u, nil
		}
	}
	return nil, ErrNotFound
}

func (m *MemoryStore) UpdateUser(ctx context.Context, user *models.User) error {
	defer m.lockWrite()()
	current, ok := m.data.users[user.ID]
	if !ok {
		return ErrNotFound
	}
	current.Name = user.Name
	current.AvatarURL = user.AvatarURL
	current.PasswordHash = user.PasswordHash
	current.IsActive = user.IsActive
	current.UpdatedAt = m.now()
	m.data.users[user.ID] = current
	user.UpdatedAt = current.UpdatedAt
	return nil
}

// DeleteUser removes the user and everything the user owns.
func (m *MemoryStore) DeleteUser(ctx context.Context, id uuid.UUID) error {
	defer m.lockWrite()()
	d := m.data
	if _, ok := d.users[id]; !ok {
		return ErrNotFound
	}
	delete(d.users, id)
	for k, v := range d.transactions {
		if v.UserID == id {
			delete(d.transactions, k)
			delete(d.txOrder, k)
		}
	}
	for k, v := range d.accounts {
		if v.UserID == id {
			delete(d.accounts, k)
		}
	}
	for k, v := range d.cards {
		if v.UserID == id {
			delete(d.cards, k)
		}
	}
	for k, v := range d.categories {
		if v.OwnedBy(id) {
			delete(d.categories, k)
		}
	}
	for k, v := range d.portfolios {
		if v.UserID == id {
			m.deletePortfolioLocked(k)
		}
	}
	for k, v := range d.indicators {
		if v.UserID != nil && *v.UserID == id {
			delete(d.indicators, k)
		}
	}
	for k, v := range d.integrations {
		if v.UserID == id {
			delete(d.integrations, k)
		}
	}
	delete(d.whatsapp, id)
	return nil
}

// Accounts

func (m *MemoryStore) CreateAccount(ctx context.Context, account *models.Account) error {
	defer m.lockWrite()()
	account.CreatedAt = m.now()
	account.UpdatedAt = account.CreatedAt
	m.data.accounts[account.ID] = *account
	return nil
}

func (m *MemoryStore) GetAccount(ctx context.Context, id, userID uuid.UUID) (*models.Account, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	a, ok := m.data.accounts[id]
	if !ok || a.UserID != userID {
		return nil, ErrNotFound
	}
	return &a, nil
}

// LockAccount is GetAccount; units of work are already serialized.
func (m *MemoryStore) LockAccount(ctx context.Context, id, userID uuid.UUID) (*models.Account, error) {
	return m.GetAccount(ctx, id, userID)
}

func (m *MemoryStore) ListAccounts(ctx context.Context, userID uuid.UUID, includeInactive bool) ([]models.Account, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	accounts := []models.Account{}
	for _, a := range m.data.accounts {
		if a.UserID == userID && (a.IsActive || includeInactive) {
			accounts = append(accounts, a)
		}
	}
	sort.Slice(accounts, func(i, j int) bool {
		return byName(accounts[i].Name, accounts[j].Name, accounts[i].ID, accounts[j].ID)
	})
	return accounts, nil
}

func (m *MemoryStore) UpdateAccount(ctx context.Context, account *models.Account) error {
	defer m.lockWrite()()
	current, ok := m.data.accounts[account.ID]
	if !ok || current.UserID != account.UserID {
		return ErrNotFound
	}
	current.Name = account.Name
	current.Type = account.Type
	current.Institution = account.Institution
	current.Color = account.Color
	current.IsActive = account.IsActive
	current.UpdatedAt = m.now()
	m.data.accounts[account.ID] = current
	account.UpdatedAt = current.UpdatedAt
	return nil
}

func (m *MemoryStore) DeleteAccount(ctx context.Context, id, userID uuid.UUID) error {
	defer m.lockWrite()()
	a, ok := m.data.accounts[id]
	if !ok || a.UserID != userID {
		return ErrNotFound
	}
	delete(m.data.accounts, id)
	for k, tx := range m.data.transactions {
		if accountID, ok := models.SourceAccount(tx.Source); ok && accountID == id {
			delete(m.data.transactions, k)
			delete(m.data.txOrder, k)
		}
	}
	return nil
}

func (m *MemoryStore) AccountLedger(ctx context.Context, accountID uuid.UUID) (models.TypeTotals, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return ledger.AccountTotals(m.allTransactionsLocked(), accountID), nil
}

func (m *MemoryStore) SetAccountBalance(ctx context.Context, accountID uuid.UUID, balance decimal.Decimal) error {
	defer m.lockWrite()()
	a, ok := m.data.accounts[accountID]
	if !ok {
		return ErrNotFound
	}
	a.CurrentBalance = balance
	a.UpdatedAt = m.now()
	m.data.accounts[accountID] = a
	return nil
}

// Credit cards

func (m *MemoryStore) CreateCard(ctx context.Context, card *models.CreditCard) error {
	defer m.lockWrite()()
	card.CreatedAt = m.now()
	card.UpdatedAt = card.CreatedAt
	m.data.cards[card.ID] = *card
	return nil
}

func (m *MemoryStore) GetCard(ctx context.Context, id, userID uuid.UUID) (*models.CreditCard, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	c, ok := m.data.cards[id]
	if !ok || c.UserID != userID {
		return nil, ErrNotFound
	}
	return &c, nil
}

func (m *MemoryStore) ListCards(ctx context.Context, userID uuid.UUID, includeInactive bool) ([]models.CreditCard, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	cards := []models.CreditCard{}
	for _, c := range m.data.cards {
		if c.UserID == userID && (c.IsActive || includeInactive) {
			cards = append(cards, c)
		}
	}
	sort.Slice(cards, func(i, j int) bool {
		return byName(cards[i].Name, cards[j].Name, cards[i].ID, cards[j].ID)
	})
	return cards, nil
}

func (m *MemoryStore) UpdateCard(ctx context.Context, card *models.CreditCard) error {
	defer m.lockWrite()()
	current, ok := m.data.cards[card.ID]
	if !ok || current.UserID != card.UserID {
		return ErrNotFound
	}
	current.Name = card.Name
	current.Institution = card.Institution
	current.Limit = card.Limit
	current.ClosingDay = card.ClosingDay
	current.DueDay = card.DueDay
	current.Color = card.Color
	current.IsActive = card.IsActive
	current.UpdatedAt = m.now()
	m.data.cards[card.ID] = current
	card.UpdatedAt = current.UpdatedAt
	return nil
}

func (m *MemoryStore) DeleteCard(ctx context.Context, id, userID uuid.UUID) error {
	defer m.lockWrite()()
	c, ok := m.data.cards[id]
	if !ok || c.UserID != userID {
		return ErrNotFound
	}
	delete(m.data.cards, id)
	for k, tx := range m.data.transactions {
		if cardID, ok := models.SourceCard(tx.Source); ok && cardID == id {
			delete(m.data.transactions, k)
			delete(m.data.txOrder, k)
		}
	}
	return nil
}

func (m *MemoryStore) PendingCardExpenses(ctx context.Context, cardID uuid.UUID) (decimal.Decimal, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return ledger.Invoice(m.allTransactionsLocked(), cardID), nil
}

// Categories

func (m *MemoryStore) CreateCategory(ctx context.Context, category *models.Category) error {
	defer m.lockWrite()()
	category.CreatedAt = m.now()
	m.data.categories[category.ID] = *category
	return nil
}

func (m *MemoryStore) GetCategory(ctx context.Context, id, userID uuid.UUID) (*models.Category, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	c, ok := m.data.categories[id]
	if !ok || !c.VisibleTo(userID) {
		return nil, ErrNotFound
	}
	return &c, nil
}

func (m *MemoryStore) ListCategories(ctx context.Context, userID uuid.UUID, typ *models.TransactionType) ([]models.Category, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	categories := []models.Category{}
	for _, c := range m.data.categories {
		if !c.IsActive || !c.VisibleTo(userID) {
			continue
		}
		if typ != nil && c.Type != *typ {
			continue
		}
		categories = append(categories, c)
	}
	sort.Slice(categories, func(i, j int) bool {
		if categories[i].Type != categories[j].Type {
			return categories[i].Type < categories[j].Type
		}
		return byName(categories[i].Name, categories[j].Name, categories[i].ID, categories[j].ID)
	})
	return categories, nil
}

func (m *MemoryStore) UpdateCategory(ctx context.Context, category *models.Category) error {
	defer m.lockWrite()()
	current, ok := m.data.categories[category.ID]
	if !ok || category.UserID == nil || !current.OwnedBy(*category.UserID) {
		return ErrNotFound
	}
	current.Name = category.Name
	current.Icon = category.Icon
	current.Color = category.Color
	current.IsActive = category.IsActive
	m.data.categories[category.ID] = current
	return nil
}

// DeleteCategory removes an own category and detaches it from transactions.
func (m *MemoryStore) DeleteCategory(ctx context.Context, id, userID uuid.UUID) error {
	defer m.lockWrite()()
	c, ok := m.data.categories[id]
	if !ok || !c.OwnedBy(userID) {
		return ErrNotFound
	}
	delete(m.data.categories, id)
	for k, tx := range m.data.transactions {
		if tx.CategoryID != nil && *tx.CategoryID == id {
			tx.CategoryID = nil
			m.data.transactions[k] = tx
		}
	}
	return nil
}

// Transactions

func (m *MemoryStore) CreateTransaction(ctx context.Context, tx *models.Transaction) error {
	defer m.lockWrite()()
	if tx.ExternalRef != nil {
		for _, other := range m.data.transactions {
			if other.UserID == tx.UserID && other.ExternalRef != nil && *other.ExternalRef == *tx.ExternalRef {
				return ErrConflict
			}
		}
	}
	tx.CreatedAt = m.now()
	tx.UpdatedAt = tx.CreatedAt
	stored := *tx
	stored.AccountName, stored.CreditCardName, stored.CategoryName, stored.CategoryColor = nil, nil, nil, nil
	m.data.seq++
	m.data.transactions[tx.ID] = stored
	m.data.txOrder[tx.ID] = m.data.seq
	return nil
}

func (m *MemoryStore) GetTransaction(ctx context.Context, id, userID uuid.UUID) (*models.Transaction, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	tx, ok := m.data.transactions[id]
	if !ok || tx.UserID != userID {
		return nil, ErrNotFound
	}
	enriched := m.enrichLocked(tx)
	return &enriched, nil
}

func (m *MemoryStore) ListTransactions(ctx context.Context, userID uuid.UUID, filter models.TransactionFilter) ([]models.Transaction, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	matched := m.matchLocked(userID, filter)
	sort.Slice(matched, func(i, j int) bool {
		a, b := matched[i], matched[j]
		if !a.Date.Equal(b.Date) {
			return a.Date.After(b.Date)
		}
		return m.data.txOrder[a.ID] > m.data.txOrder[b.ID]
	})

	if filter.Offset > 0 {
		if filter.Offset >= len(matched) {
			matched = matched[:0]
		} else {
			matched = matched[filter.Offset:]
		}
	}
	if filter.Limit > 0 && len(matched) > filter.Limit {
		matched = matched[:filter.Limit]
	}

	out := make([]models.Transaction, 0, len(matched))
	for _, tx := range matched {
		out = append(out, m.enrichLocked(tx))
	}
	return out, nil
}

func (m *MemoryStore) CountTransactions(ctx context.Context, userID uuid.UUID, filter models.TransactionFilter) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.matchLocked(userID, filter)), nil
}

func (m *MemoryStore) UpdateTransaction(ctx context.Context, tx *models.Transaction) error {
	defer m.lockWrite()()
	current, ok := m.data.transactions[tx.ID]
	if !ok || current.UserID != tx.UserID {
		return ErrNotFound
	}
	current.Source = tx.Source
	current.CategoryID = tx.CategoryID
	current.Description = tx.Description
	current.Amount = tx.Amount
	current.Date = tx.Date
	current.Status = tx.Status
	current.Notes = tx.Notes
	current.UpdatedAt = m.now()
	m.data.transactions[tx.ID] = current
	tx.UpdatedAt = current.UpdatedAt
	return nil
}

func (m *MemoryStore) DeleteTransaction(ctx context.Context, id, userID uuid.UUID) error {
	defer m.lockWrite()()
	tx, ok := m.data.transactions[id]
	if !ok || tx.UserID != userID {
		return ErrNotFound
	}
	delete(m.data.transactions, id)
	delete(m.data.txOrder, id)
	return nil
}

func (m *MemoryStore) ExternalRefExists(ctx context.Context, userID uuid.UUID, ref string) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, tx := range m.data.transactions {
		if tx.UserID == userID && tx.ExternalRef != nil && *tx.ExternalRef == ref {
			return true, nil
		}
	}
	return false, nil
}

// Reports

func (m *MemoryStore) TotalsByType(ctx context.Context, userID uuid.UUID, filter models.TransactionFilter) (models.TypeTotals, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return ledger.Totals(m.matchLocked(userID, filter.Unpaged()), models.Window{}), nil
}

func (m *MemoryStore) TotalsByCategory(ctx context.Context, userID uuid.UUID, typ models.TransactionType, window models.Window) ([]models.CategoryTotal, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return ledger.CategoryTotals(m.userTransactionsLocked(userID), m.data.categories, typ, window), nil
}

func (m *MemoryStore) DailyCashFlow(ctx context.Context, userID uuid.UUID, window models.Window) ([]models.DailyCashFlow, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return ledger.DailyFlow(m.userTransactionsLocked(userID), window), nil
}

func (m *MemoryStore) allTransactionsLocked() []models.Transaction {
	out := make([]models.Transaction, 0, len(m.data.transactions))
	for _, tx := range m.data.transactions {
		out = append(out, tx)
	}
	return out
}

func (m *MemoryStore) userTransactionsLocked(userID uuid.UUID) []models.Transaction {
	out := []models.Transaction{}
	for _, tx := range m.data.transactions {
		if tx.UserID == userID {
			out = append(out, tx)
		}
	}
	return out
}

func (m *MemoryStore) matchLocked(userID uuid.UUID, filter models.TransactionFilter) []models.Transaction {
	out := []models.Transaction{}
	for _, tx := range m.data.transactions {
		if tx.UserID == userID && filter.Matches(tx) {
			out = append(out, tx)
		}
	}
	return out
}

func (m *MemoryStore) enrichLocked(tx models.Transaction) models.Transaction {
	if id, ok := models.SourceAccount(tx.Source); ok {
		if a, ok := m.data.accounts[id]; ok {
			tx.AccountName = strPtr(a.Name)
		}
	}
	if id, ok := models.SourceCard(tx.Source); ok {
		if c, ok := m.data.cards[id]; ok {
			tx.CreditCardName = strPtr(c.Name)
		}
	}
	if tx.CategoryID != nil {
		if c, ok := m.data.categories[*tx.CategoryID]; ok {
			tx.CategoryName = strPtr(c.Name)
			tx.CategoryColor = c.Color
		}
	}
	return tx
}

// Investments

func (m *MemoryStore) CreatePortfolio(ctx context.Context, portfolio *models.Portfolio) error {
	defer m.lockWrite()()
	portfolio.CreatedAt = m.now()
	portfolio.UpdatedAt = portfolio.CreatedAt
	m.data.portfolios[portfolio.ID] = *portfolio
	return nil
}

func (m *MemoryStore) GetPortfolio(ctx context.Context, id, userID uuid.UUID) (*models.Portfolio, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	p, ok := m.data.portfolios[id]
	if !ok || p.UserID != userID {
		return nil, ErrNotFound
	}
	return &p, nil
}

func (m *MemoryStore) ListPortfolios(ctx context.Context, userID uuid.UUID, includeInactive bool) ([]models.Portfolio, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	portfolios := []models.Portfolio{}
	for _, p := range m.data.portfolios {
		if p.UserID == userID && (p.IsActive || includeInactive) {
			portfolios = append(portfolios, p)
		}
	}
	sort.Slice(portfolios, func(i, j int) bool {
		return byName(portfolios[i].Name, portfolios[j].Name, portfolios[i].ID, portfolios[j].ID)
	})
	return portfolios, nil
}

func (m *MemoryStore) UpdatePortfolio(ctx context.Context, portfolio *models.Portfolio) error {
	defer m.lockWrite()()
	current, ok := m.data.portfolios[portfolio.ID]
	if !ok || current.UserID != portfolio.UserID {
		return ErrNotFound
	}
	current.Name = portfolio.Name
	current.Type = portfolio.Type
	current.Description = portfolio.Description
	current.IsActive = portfolio.IsActive
	current.UpdatedAt = m.now()
	m.data.portfolios[portfolio.ID] = current
	portfolio.UpdatedAt = current.UpdatedAt
	return nil
}

func (m *MemoryStore) DeletePortfolio(ctx context.Context, id, userID uuid.UUID) error {
	defer m.lockWrite()()
	p, ok := m.data.portfolios[id]
	if !ok || p.UserID != userID {
		return ErrNotFound
	}
	m.deletePortfolioLocked(id)
	return nil
}

func (m *MemoryStore) deletePortfolioLocked(id uuid.UUID) {
	delete(m.data.portfolios, id)
	for k, e := range m.data.entries {
		if e.PortfolioID == id {
			delete(m.data.entries, k)
		}
	}
}

func (m *MemoryStore) CreateEntry(ctx context.Context, entry *models.InvestmentEntry) error {
	defer m.lockWrite()()
	if _, ok := m.data.portfolios[entry.PortfolioID]; !ok {
		return ErrNotFound
	}
	entry.CreatedAt = m.now()
	m.data.entries[entry.ID] = *entry
	return nil
}

func (m *MemoryStore) ListEntries(ctx context.Context, portfolioID uuid.UUID) ([]models.InvestmentEntry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	entries := []models.InvestmentEntry{}
	for _, e := range m.data.entries {
		if e.PortfolioID == portfolioID {
			entries = append(entries, e)
		}
	}
	sort.Slice(entries, func(i, j int) bool {
		if !entries[i].Date.Equal(entries[j].Date) {
			return entries[i].Date.After(entries[j].Date)
		}
		return entries[i].CreatedAt.After(entries[j].CreatedAt)
	})
	return entries, nil
}

func (m *MemoryStore) DeleteEntry(ctx context.Context, id, portfolioID uuid.UUID) error {
	defer m.lockWrite()()
	e, ok := m.data.entries[id]
	if !ok || e.PortfolioID != portfolioID {
		return ErrNotFound
	}
	delete(m.data.entries, id)
	return nil
}

func (m *MemoryStore) PortfolioTotals(ctx context.Context, portfolioID uuid.UUID) (models.PortfolioTotals, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	totals := models.PortfolioTotals{Deposits: decimal.Zero, Withdrawals: decimal.Zero}
	for _, e := range m.data.entries {
		if e.PortfolioID != portfolioID {
			continue
		}
		switch e.Type {
		case models.EntryDeposit:
			totals.Deposits = totals.Deposits.Add(e.Amount)
		case models.EntryWithdrawal:
			totals.Withdrawals = totals.Withdrawals.Add(e.Amount)
		}
	}
	return totals, nil
}

// Indicators

func (m *MemoryStore) ListIndicators(ctx context.Context, userID uuid.UUID) ([]models.Indicator, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	indicators := []models.Indicator{}
	for _, i := range m.data.indicators {
		if i.IsActive && (i.UserID == nil || *i.UserID == userID) {
			indicators = append(indicators, i)
		}
	}
	sort.Slice(indicators, func(a, b int) bool {
		x, y := indicators[a], indicators[b]
		if (x.UserID == nil) != (y.UserID == nil) {
			return x.UserID == nil
		}
		if !x.CreatedAt.Equal(y.CreatedAt) {
			return x.CreatedAt.Before(y.CreatedAt)
		}
		return x.Code < y.Code
	})
	return indicators, nil
}

func (m *MemoryStore) CreateIndicator(ctx context.Context, indicator *models.Indicator) error {
	defer m.lockWrite()()
	for _, i := range m.data.indicators {
		if i.Code == indicator.Code {
			return ErrConflict
		}
	}
	indicator.CreatedAt = m.now()
	m.data.indicators[indicator.ID] = *indicator
	return nil
}

func (m *MemoryStore) DeleteIndicator(ctx context.Context, id, userID uuid.UUID) error {
	defer m.lockWrite()()
	i, ok := m.data.indicators[id]
	if !ok || i.UserID == nil || *i.UserID != userID {
		return ErrNotFound
	}
	delete(m.data.indicators, id)
	return nil
}

// Integrations

func (m *MemoryStore) ListBankIntegrations(ctx context.Context, userID uuid.UUID) ([]models.BankIntegration, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	integrations := []models.BankIntegration{}
	for _, b := range m.data.integrations {
		if b.UserID == userID {
			integrations = append(integrations, b)
		}
	}
	sort.Slice(integrations, func(i, j int) bool { return integrations[i].Provider < integrations[j].Provider })
	return integrations, nil
}

func (m *MemoryStore) GetBankIntegration(ctx context.Context, userID uuid.UUID, provider string) (*models.BankIntegration, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, b := range m.data.integrations {
		if b.UserID == userID && b.Provider == provider {
			return &b, nil
		}
	}
	return nil, ErrNotFound
}

func (m *MemoryStore) SaveBankIntegration(ctx context.Context, b *models.BankIntegration) error {
	defer m.lockWrite()()
	now := m.now()
	for id, existing := range m.data.integrations {
		if existing.UserID == b.UserID && existing.Provider == b.Provider {
			b.ID = id
			b.CreatedAt = existing.CreatedAt
			b.UpdatedAt = now
			m.data.integrations[id] = *b
			return nil
		}
	}
	b.CreatedAt = now
	b.UpdatedAt = now
	m.data.integrations[b.ID] = *b
	return nil
}

func (m *MemoryStore) GetWhatsAppSettings(ctx context.Context, userID uuid.UUID) (*models.WhatsAppSettings, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.data.whatsapp[userID]
	if !ok {
		return nil, ErrNotFound
	}
	return &s, nil
}

func (m *MemoryStore) SaveWhatsAppSettings(ctx context.Context, s *models.WhatsAppSettings) error {
	defer m.lockWrite()()
	now := m.now()
	if existing, ok := m.data.whatsapp[s.UserID]; ok {
		s.ID = existing.ID
		s.CreatedAt = existing.CreatedAt
	} else {
		if s.ID == nil {
			id := uuid.New()
			s.ID = &id
		}
		s.CreatedAt = &now
	}
	s.UpdatedAt = &now
	m.data.whatsapp[s.UserID] = *s
	return nil
}

func (m *MemoryStore) ListSummarySubscribers(ctx context.Context) ([]models.SummarySubscriber, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	subscribers := []models.SummarySubscriber{}
	for userID, s := range m.data.whatsapp {
		u, ok := m.data.users[userID]
		if !ok || !u.IsActive || !(s.DailySummary || s.WeeklySummary) {
			continue
		}
		subscribers = append(subscribers, models.SummarySubscriber{
			UserID: u.ID,
			Email:  u.Email,
			Name:   u.Name,
			Daily:  s.DailySummary,
			Weekly: s.WeeklySummary,
		})
	}
	sort.Slice(subscribers, func(i, j int) bool { return subscribers[i].Email < subscribers[j].Email })
	return subscribers, nil
}

func byName(a, b string, idA, idB uuid.UUID) bool {
	if a != b {
		return a < b
	}
	return idA.String() < idB.String()
}
