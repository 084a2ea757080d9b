package handler

import (
	"context"
	"net/http"

	"github.com/google/uuid"

	"github.com/Dan9191/finance-service/internal/models"
)

// windowReport serves a report computed over the start_date/end_date window.
func (h *Handler) windowReport(compute func(ctx context.Context, userID uuid.UUID, w models.Window) (any, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, err := currentUser(r)
		if err != nil {
			h.writeError(w, r, err)
			return
		}
		window, err := queryWindow(r)
		if err != nil {
			h.writeError(w, r, err)
			return
		}
		report, err := compute(r.Context(), userID, window)
		if err != nil {
			h.writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, report)
	}
}

func (h *Handler) Dashboard(w http.ResponseWriter, r *http.Request) {
	h.windowReport(func(ctx context.Context, userID uuid.UUID, win models.Window) (any, error) {
		return h.svc.Dashboard(ctx, userID, win)
	})(w, r)
}

func (h *Handler) DashboardSummary(w http.ResponseWriter, r *http.Request) {
	h.windowReport(func(ctx context.Context, userID uuid.UUID, win models.Window) (any, error) {
		return h.svc.DashboardSummary(ctx, userID, win)
	})(w, r)
}

func (h *Handler) ExpensesByCategory(w http.ResponseWriter, r *http.Request) {
	h.windowReport(func(ctx context.Context, userID uuid.UUID, win models.Window) (any, error) {
		return h.svc.ExpensesByCategory(ctx, userID, win)
	})(w, r)
}

func (h *Handler) IncomeByCategory(w http.ResponseWriter, r *http.Request) {
	h.windowReport(func(ctx context.Context, userID uuid.UUID, win models.Window) (any, error) {
		return h.svc.IncomeByCategory(ctx, userID, win)
	})(w, r)
}

func (h *Handler) DashboardCashFlow(w http.ResponseWriter, r *http.Request) {
	h.windowReport(func(ctx context.Context, userID uuid.UUID, win models.Window) (any, error) {
		return h.svc.DashboardCashFlow(ctx, userID, win)
	})(w, r)
}

// MonthlyComparison reports the trailing months; ?months= defaults to 6
func (h *Handler) MonthlyComparison(w http.ResponseWriter, r *http.Request) {
	userID, err := currentUser(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	months, err := queryInt(r, "months")
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	comparison, err := h.svc.MonthlyComparison(r.Context(), userID, months)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, comparison)
}
