package handler

import (
	"net/http"

	"github.com/Dan9191/finance-service/internal/service"
)

func (h *Handler) ListIndicators(w http.ResponseWriter, r *http.Request) {
	userID, err := currentUser(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	indicators, err := h.svc.ListIndicators(r.Context(), userID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, indicators)
}

func (h *Handler) CreateIndicator(w http.ResponseWriter, r *http.Request) {
	userID, err := currentUser(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	var in service.CreateIndicatorInput
	if err := decodeJSON(w, r, &in); err != nil {
		h.writeError(w, r, err)
		return
	}
	indicator, err := h.svc.CreateIndicator(r.Context(), userID, in)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, indicator)
}

func (h *Handler) DeleteIndicator(w http.ResponseWriter, r *http.Request) {
	userID, id, err := userAndID(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	if err := h.svc.DeleteIndicator(r.Context(), userID, id); err != nil {
		h.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// IndicatorValues evaluates the system indicators over a period
func (h *Handler) IndicatorValues(w http.ResponseWriter, r *http.Request) {
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
	values, err := h.svc.IndicatorValues(r.Context(), userID, window)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, values)
}
