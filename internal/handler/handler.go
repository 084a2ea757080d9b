package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"

	"github.com/Dan9191/finance-service/internal/config"
	"github.com/Dan9191/finance-service/internal/middleware"
	"github.com/Dan9191/finance-service/internal/models"
	"github.com/Dan9191/finance-service/internal/service"
)

// maxBodyBytes caps JSON bodies and statement uploads.
const maxBodyBytes = 5 << 20

type Handler struct {
	svc *service.Service
	log *logrus.Logger
}

func NewHandler(svc *service.Service, log *logrus.Logger) *Handler {
	return &Handler{svc: svc, log: log}
}

// badRequest marks a malformed body, path or query parameter.
type badRequest struct {
	msg string
}

func (e *badRequest) Error() string { return e.msg }

func malformed(format string, args ...any) error {
	return &badRequest{msg: fmt.Sprintf(format, args...)}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v == nil {
		return
	}
	json.NewEncoder(w).Encode(v)
}

// writeError maps service errors to status codes. Unexpected errors are
// logged and hidden behind a generic message.
func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	var verr *service.ValidationError
	var bad *badRequest
	switch {
	case errors.As(err, &verr):
		writeJSON(w, http.StatusUnprocessableEntity, map[string]any{"error": "validation failed", "fields": verr.Fields})
	case errors.As(err, &bad):
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": bad.msg})
	case errors.Is(err, service.ErrNotFound):
		writeJSON(w, http.StatusNotFound, map[string]string{"error": err.Error()})
	case errors.Is(err, service.ErrConflict):
		writeJSON(w, http.StatusConflict, map[string]string{"error": err.Error()})
	case errors.Is(err, service.ErrInvalidCredentials), errors.Is(err, service.ErrUnauthorized):
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": err.Error()})
	case errors.Is(err, service.ErrForbidden):
		writeJSON(w, http.StatusForbidden, map[string]string{"error": err.Error()})
	default:
		config.LogError(h.log, "handler", r.Method+" "+r.URL.Path, "request failed", middleware.RequestID(r.Context()), err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
	}
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dest any) error {
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(dest); err != nil {
		return malformed("invalid request body: %v", err)
	}
	return nil
}

// currentUser returns the user resolved by the auth middleware.
func currentUser(r *http.Request) (uuid.UUID, error) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		return uuid.Nil, service.ErrUnauthorized
	}
	return user.ID, nil
}

func pathID(r *http.Request, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(mux.Vars(r)[name])
	if err != nil {
		return uuid.Nil, malformed("invalid %s", name)
	}
	return id, nil
}

// userAndID resolves the current user and the {id} path variable.
func userAndID(r *http.Request) (uuid.UUID, uuid.UUID, error) {
	userID, err := currentUser(r)
	if err != nil {
		return uuid.Nil, uuid.Nil, err
	}
	id, err := pathID(r, "id")
	if err != nil {
		return uuid.Nil, uuid.Nil, err
	}
	return userID, id, nil
}

func queryUUID(r *http.Request, name string) (*uuid.UUID, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return nil, nil
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return nil, malformed("invalid %s: must be a UUID", name)
	}
	return &id, nil
}

func queryDate(r *http.Request, name string) (*models.Date, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return nil, nil
	}
	d, err := models.ParseDate(raw)
	if err != nil {
		return nil, malformed("invalid %s: %v", name, err)
	}
	return &d, nil
}

func queryInt(r *http.Request, name string) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, malformed("invalid %s: must be an integer", name)
	}
	return n, nil
}

func queryBool(r *http.Request, name string) (bool, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return false, nil
	}
	b, err := strconv.ParseBool(raw)
	if err != nil {
		return false, malformed("invalid %s: must be a boolean", name)
	}
	return b, nil
}

func queryWindow(r *http.Request) (models.Window, error) {
	start, err := queryDate(r, "start_date")
	if err != nil {
		return models.Window{}, err
	}
	end, err := queryDate(r, "end_date")
	if err != nil {
		return models.Window{}, err
	}
	return models.Window{Start: start, End: end}, nil
}

func queryType(r *http.Request) (*models.TransactionType, error) {
	raw := r.URL.Query().Get("type")
	if raw == "" {
		return nil, nil
	}
	typ := models.TransactionType(raw)
	if typ != models.TypeIncome && typ != models.TypeExpense {
		return nil, malformed("invalid type: must be income or expense")
	}
	return &typ, nil
}

// transactionFilter reads the listing filters shared by the list and export endpoints.
func transactionFilter(r *http.Request) (models.TransactionFilter, error) {
	var (
		f   models.TransactionFilter
		err error
	)
	if f.Window, err = queryWindow(r); err != nil {
		return f, err
	}
	if f.Type, err = queryType(r); err != nil {
		return f, err
	}
	if raw := r.URL.Query().Get("status"); raw != "" {
		status := models.TransactionStatus(raw)
		switch status {
		case models.StatusPending, models.StatusPaid, models.StatusCancelled:
			f.Status = &status
		default:
			return f, malformed("invalid status: must be pending, paid or cancelled")
		}
	}
	if f.AccountID, err = queryUUID(r, "account_id"); err != nil {
		return f, err
	}
	if f.CreditCardID, err = queryUUID(r, "credit_card_id"); err != nil {
		return f, err
	}
	if f.CategoryID, err = queryUUID(r, "category_id"); err != nil {
		return f, err
	}
	if f.Limit, err = queryInt(r, "limit"); err != nil {
		return f, err
	}
	if f.Offset, err = queryInt(r, "offset"); err != nil {
		return f, err
	}
	return f, nil
}
