package handler

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/Dan9191/finance-service/internal/service"
)

func (h *Handler) BankProviders(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.svc.BankProviders())
}

func (h *Handler) ListBankIntegrations(w http.ResponseWriter, r *http.Request) {
	userID, err := currentUser(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	integrations, err := h.svc.ListBankIntegrations(r.Context(), userID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, integrations)
}

// ConnectBank accepts an optional JSON settings document
func (h *Handler) ConnectBank(w http.ResponseWriter, r *http.Request) {
	userID, err := currentUser(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	settings, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		h.writeError(w, r, malformed("invalid request body: %v", err))
		return
	}
	integration, err := h.svc.ConnectBank(r.Context(), userID, mux.Vars(r)["provider"], json.RawMessage(settings))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, integration)
}

func (h *Handler) DisconnectBank(w http.ResponseWriter, r *http.Request) {
	userID, err := currentUser(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	if err := h.svc.DisconnectBank(r.Context(), userID, mux.Vars(r)["provider"]); err != nil {
		h.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) SyncBank(w http.ResponseWriter, r *http.Request) {
	userID, err := currentUser(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	integration, err := h.svc.SyncBank(r.Context(), userID, mux.Vars(r)["provider"])
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, integration)
}

// ImportStatement books an OFX statement body on ?account_id=
func (h *Handler) ImportStatement(w http.ResponseWriter, r *http.Request) {
	userID, err := currentUser(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	accountID, err := queryUUID(r, "account_id")
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	if accountID == nil {
		h.writeError(w, r, malformed("account_id is required"))
		return
	}
	result, err := h.svc.ImportStatement(r.Context(), userID, mux.Vars(r)["provider"], *accountID, http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (h *Handler) GetWhatsAppSettings(w http.ResponseWriter, r *http.Request) {
	userID, err := currentUser(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	settings, err := h.svc.GetWhatsAppSettings(r.Context(), userID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, settings)
}

func (h *Handler) UpdateWhatsAppSettings(w http.ResponseWriter, r *http.Request) {
	userID, err := currentUser(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	var in service.UpdateWhatsAppInput
	if err := decodeJSON(w, r, &in); err != nil {
		h.writeError(w, r, err)
		return
	}
	settings, err := h.svc.UpdateWhatsAppSettings(r.Context(), userID, in)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, settings)
}
