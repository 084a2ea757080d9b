package handler

import (
	"fmt"
	"net/http"

	"github.com/Dan9191/finance-service/internal/service"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// ListTransactions returns a filtered page plus totals over every match
func (h *Handler) ListTransactions(w http.ResponseWriter, r *http.Request) {
	userID, err := currentUser(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	filter, err := transactionFilter(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	list, err := h.svc.ListTransactions(r.Context(), userID, filter)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (h *Handler) CreateTransaction(w http.ResponseWriter, r *http.Request) {
	userID, err := currentUser(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	var in service.CreateTransactionInput
	if err := decodeJSON(w, r, &in); err != nil {
		h.writeError(w, r, err)
		return
	}
	series, err := h.svc.CreateTransaction(r.Context(), userID, in)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	// A single transaction is returned as is; a recurring series as a whole.
	if series.RecurringID == nil && len(series.Transactions) == 1 {
		writeJSON(w, http.StatusCreated, series.Transactions[0])
		return
	}
	writeJSON(w, http.StatusCreated, series)
}

func (h *Handler) GetTransaction(w http.ResponseWriter, r *http.Request) {
	userID, id, err := userAndID(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	tx, err := h.svc.GetTransaction(r.Context(), userID, id)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, tx)
}

func (h *Handler) UpdateTransaction(w http.ResponseWriter, r *http.Request) {
	userID, id, err := userAndID(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	var in service.UpdateTransactionInput
	if err := decodeJSON(w, r, &in); err != nil {
		h.writeError(w, r, err)
		return
	}
	tx, err := h.svc.UpdateTransaction(r.Context(), userID, id, in)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, tx)
}

func (h *Handler) DeleteTransaction(w http.ResponseWriter, r *http.Request) {
	userID, id, err := userAndID(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	if err := h.svc.DeleteTransaction(r.Context(), userID, id); err != nil {
		h.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// DeleteRecurringGroup removes every transaction of a recurring series
func (h *Handler) DeleteRecurringGroup(w http.ResponseWriter, r *http.Request) {
	userID, err := currentUser(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	recurringID, err := pathID(r, "recurring_id")
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	if _, err := h.svc.DeleteRecurringGroup(r.Context(), userID, recurringID); err != nil {
		h.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) TransactionSummary(w http.ResponseWriter, r *http.Request) {
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
	summary, err := h.svc.TransactionSummary(r.Context(), userID, window)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

func (h *Handler) CashFlow(w http.ResponseWriter, r *http.Request) {
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
	report, err := h.svc.CashFlow(r.Context(), userID, window)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

// ExportTransactions streams the filtered transactions as an XLSX workbook
func (h *Handler) ExportTransactions(w http.ResponseWriter, r *http.Request) {
	userID, err := currentUser(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	filter, err := transactionFilter(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	buf, err := h.svc.ExportTransactions(r.Context(), userID, filter)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", xlsxContentType)
	w.Header().Set("Content-Disposition", `attachment; filename="transactions.xlsx"`)
	w.Header().Set("Content-Length", fmt.Sprint(buf.Len()))
	w.WriteHeader(http.StatusOK)
	buf.WriteTo(w)
}
