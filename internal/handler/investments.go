package handler

import (
	"net/http"

	"github.com/Dan9191/finance-service/internal/service"
)

func (h *Handler) ListPortfolios(w http.ResponseWriter, r *http.Request) {
	userID, err := currentUser(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	includeInactive, err := queryBool(r, "include_inactive")
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	portfolios, err := h.svc.ListPortfolios(r.Context(), userID, includeInactive)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, portfolios)
}

func (h *Handler) CreatePortfolio(w http.ResponseWriter, r *http.Request) {
	userID, err := currentUser(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	var in service.CreatePortfolioInput
	if err := decodeJSON(w, r, &in); err != nil {
		h.writeError(w, r, err)
		return
	}
	portfolio, err := h.svc.CreatePortfolio(r.Context(), userID, in)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, portfolio)
}

func (h *Handler) GetPortfolio(w http.ResponseWriter, r *http.Request) {
	userID, id, err := userAndID(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	portfolio, err := h.svc.GetPortfolio(r.Context(), userID, id)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, portfolio)
}

func (h *Handler) UpdatePortfolio(w http.ResponseWriter, r *http.Request) {
	userID, id, err := userAndID(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	var in service.UpdatePortfolioInput
	if err := decodeJSON(w, r, &in); err != nil {
		h.writeError(w, r, err)
		return
	}
	portfolio, err := h.svc.UpdatePortfolio(r.Context(), userID, id, in)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, portfolio)
}

func (h *Handler) DeletePortfolio(w http.ResponseWriter, r *http.Request) {
	userID, id, err := userAndID(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	if err := h.svc.DeletePortfolio(r.Context(), userID, id); err != nil {
		h.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) ListEntries(w http.ResponseWriter, r *http.Request) {
	userID, id, err := userAndID(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	entries, err := h.svc.ListEntries(r.Context(), userID, id)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, entries)
}

func (h *Handler) AddEntry(w http.ResponseWriter, r *http.Request) {
	userID, id, err := userAndID(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	var in service.CreateEntryInput
	if err := decodeJSON(w, r, &in); err != nil {
		h.writeError(w, r, err)
		return
	}
	entry, err := h.svc.AddEntry(r.Context(), userID, id, in)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, entry)
}

func (h *Handler) DeleteEntry(w http.ResponseWriter, r *http.Request) {
	userID, id, err := userAndID(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	entryID, err := pathID(r, "entry_id")
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	if err := h.svc.DeleteEntry(r.Context(), userID, id, entryID); err != nil {
		h.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
