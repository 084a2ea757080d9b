package handler

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"

	"github.com/Dan9191/finance-service/internal/middleware"
)

const (
	AppName    = "finance-service"
	AppVersion = "1.0.0"
)

const (
	idPattern = "{id:[0-9a-fA-F-]{36}}"
	provider  = "{provider:[a-z0-9_]+}"
)

// NewRouter wires every route. Everything under /api except registration,
// login and the provider list requires a bearer token.
func NewRouter(h *Handler, auth middleware.Authenticator, loginLimiter *middleware.RateLimiter, logger *logrus.Logger) *mux.Router {
	r := mux.NewRouter()
	r.Use(middleware.RequestLogger(logger))
	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "route not found"})
	})
	r.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
	})

	r.HandleFunc("/", Root).Methods(http.MethodGet)
	r.HandleFunc("/health", Health).Methods(http.MethodGet)

	api := r.PathPrefix("/api").Subrouter()
	api.HandleFunc("/health", Health).Methods(http.MethodGet)

	// Public routes
	api.HandleFunc("/auth/register", h.Register).Methods(http.MethodPost)
	api.Handle("/auth/login", loginLimiter.Middleware(http.HandlerFunc(h.Login))).Methods(http.MethodPost)
	api.HandleFunc("/integrations/banks/providers", h.BankProviders).Methods(http.MethodGet)

	// Protected routes
	p := api.NewRoute().Subrouter()
	p.Use(middleware.AuthMiddleware(auth))

	p.HandleFunc("/auth/me", h.Me).Methods(http.MethodGet)
	p.HandleFunc("/users/me", h.UpdateProfile).Methods(http.MethodPut)
	p.HandleFunc("/users/me", h.DeleteMe).Methods(http.MethodDelete)
	p.HandleFunc("/users/me/password", h.ChangePassword).Methods(http.MethodPut)

	p.HandleFunc("/accounts", h.ListAccounts).Methods(http.MethodGet)
	p.HandleFunc("/accounts", h.CreateAccount).Methods(http.MethodPost)
	p.HandleFunc("/accounts/"+idPattern, h.GetAccount).Methods(http.MethodGet)
	p.HandleFunc("/accounts/"+idPattern, h.UpdateAccount).Methods(http.MethodPut)
	p.HandleFunc("/accounts/"+idPattern, h.DeleteAccount).Methods(http.MethodDelete)
	p.HandleFunc("/accounts/"+idPattern+"/recalculate", h.RecalculateAccount).Methods(http.MethodPost)

	p.HandleFunc("/credit-cards", h.ListCards).Methods(http.MethodGet)
	p.HandleFunc("/credit-cards", h.CreateCard).Methods(http.MethodPost)
	p.HandleFunc("/credit-cards/"+idPattern, h.GetCard).Methods(http.MethodGet)
	p.HandleFunc("/credit-cards/"+idPattern, h.UpdateCard).Methods(http.MethodPut)
	p.HandleFunc("/credit-cards/"+idPattern, h.DeleteCard).Methods(http.MethodDelete)
	p.HandleFunc("/credit-cards/"+idPattern+"/invoice", h.CardInvoice).Methods(http.MethodGet)

	p.HandleFunc("/categories", h.ListCategories).Methods(http.MethodGet)
	p.HandleFunc("/categories", h.CreateCategory).Methods(http.MethodPost)
	p.HandleFunc("/categories/"+idPattern, h.GetCategory).Methods(http.MethodGet)
	p.HandleFunc("/categories/"+idPattern, h.UpdateCategory).Methods(http.MethodPut)
	p.HandleFunc("/categories/"+idPattern, h.DeleteCategory).Methods(http.MethodDelete)

	p.HandleFunc("/transactions", h.ListTransactions).Methods(http.MethodGet)
	p.HandleFunc("/transactions", h.CreateTransaction).Methods(http.MethodPost)
	p.HandleFunc("/transactions/summary", h.TransactionSummary).Methods(http.MethodGet)
	p.HandleFunc("/transactions/cash-flow", h.CashFlow).Methods(http.MethodGet)
	p.HandleFunc("/transactions/export", h.ExportTransactions).Methods(http.MethodGet)
	p.HandleFunc("/transactions/recurring/{recurring_id:[0-9a-fA-F-]{36}}", h.DeleteRecurringGroup).Methods(http.MethodDelete)
	p.HandleFunc("/transactions/"+idPattern, h.GetTransaction).Methods(http.MethodGet)
	p.HandleFunc("/transactions/"+idPattern, h.UpdateTransaction).Methods(http.MethodPut)
	p.HandleFunc("/transactions/"+idPattern, h.DeleteTransaction).Methods(http.MethodDelete)

	p.HandleFunc("/investments/portfolios", h.ListPortfolios).Methods(http.MethodGet)
	p.HandleFunc("/investments/portfolios", h.CreatePortfolio).Methods(http.MethodPost)
	p.HandleFunc("/investments/portfolios/"+idPattern, h.GetPortfolio).Methods(http.MethodGet)
	p.HandleFunc("/investments/portfolios/"+idPattern, h.UpdatePortfolio).Methods(http.MethodPut)
	p.HandleFunc("/investments/portfolios/"+idPattern, h.DeletePortfolio).Methods(http.MethodDelete)
	p.HandleFunc("/investments/portfolios/"+idPattern+"/entries", h.ListEntries).Methods(http.MethodGet)
	p.HandleFunc("/investments/portfolios/"+idPattern+"/entries", h.AddEntry).Methods(http.MethodPost)
	p.HandleFunc("/investments/portfolios/"+idPattern+"/entries/{entry_id:[0-9a-fA-F-]{36}}", h.DeleteEntry).Methods(http.MethodDelete)

	p.HandleFunc("/indicators", h.ListIndicators).Methods(http.MethodGet)
	p.HandleFunc("/indicators", h.CreateIndicator).Methods(http.MethodPost)
	p.HandleFunc("/indicators/values", h.IndicatorValues).Methods(http.MethodGet)
	p.HandleFunc("/indicators/"+idPattern, h.DeleteIndicator).Methods(http.MethodDelete)

	p.HandleFunc("/dashboard", h.Dashboard).Methods(http.MethodGet)
	p.HandleFunc("/dashboard/summary", h.DashboardSummary).Methods(http.MethodGet)
	p.HandleFunc("/dashboard/expenses-by-category", h.ExpensesByCategory).Methods(http.MethodGet)
	p.HandleFunc("/dashboard/income-by-category", h.IncomeByCategory).Methods(http.MethodGet)
	p.HandleFunc("/dashboard/cash-flow", h.DashboardCashFlow).Methods(http.MethodGet)
	p.HandleFunc("/dashboard/monthly-comparison", h.MonthlyComparison).Methods(http.MethodGet)

	p.HandleFunc("/integrations/banks", h.ListBankIntegrations).Methods(http.MethodGet)
	p.HandleFunc("/integrations/banks/"+provider+"/connect", h.ConnectBank).Methods(http.MethodPost)
	p.HandleFunc("/integrations/banks/"+provider+"/disconnect", h.DisconnectBank).Methods(http.MethodPost)
	p.HandleFunc("/integrations/banks/"+provider+"/sync", h.SyncBank).Methods(http.MethodPost)
	p.HandleFunc("/integrations/banks/"+provider+"/statements", h.ImportStatement).Methods(http.MethodPost)
	p.HandleFunc("/integrations/whatsapp", h.GetWhatsAppSettings).Methods(http.MethodGet)
	p.HandleFunc("/integrations/whatsapp", h.UpdateWhatsAppSettings).Methods(http.MethodPut)

	return r
}

// Health reports that the process is serving requests
func Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func Root(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"name": AppName, "version": AppVersion, "health": "/api/health"})
}
