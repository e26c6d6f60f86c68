package httpadapter

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"adbarter/internal/core/domain"
)

// errorBody is the JSON shape of every error response. Code is a stable
// machine-readable identifier so the UI can pick messages without parsing
// the text.
type errorBody struct {
	Code  string `json:"code"`
	Error string `json:"error"`
}

// respondError maps domain errors to HTTP statuses. Retryable failures
// (store unavailable, conflict retries exhausted) get 503 so clients back
// off; everything else is terminal for that input.
func (h *Handler) respondError(w http.ResponseWriter, r *http.Request, err error) {
	var (
		status int
		code   string
	)
	switch {
	case errors.Is(err, domain.ErrInvalidBudget):
		status, code = http.StatusBadRequest, "invalid_budget"
	case errors.Is(err, domain.ErrInsufficientCredits):
		status, code = http.StatusPaymentRequired, "insufficient_credits"
	case errors.Is(err, domain.ErrNotFound):
		status, code = http.StatusNotFound, "not_found"
	case errors.Is(err, domain.ErrInvalidState):
		status, code = http.StatusConflict, "invalid_state"
	case errors.Is(err, domain.ErrForbidden):
		status, code = http.StatusForbidden, "forbidden"
	case errors.Is(err, domain.ErrBudgetExhausted):
		status, code = http.StatusConflict, "budget_exhausted"
	case errors.Is(err, domain.ErrIneligible):
		status, code = http.StatusConflict, "ineligible"
	case errors.Is(err, domain.ErrProfileExists):
		status, code = http.StatusConflict, "profile_exists"
	case errors.Is(err, domain.ErrStoreUnavailable), errors.Is(err, domain.ErrConcurrencyConflict):
		status, code = http.StatusServiceUnavailable, "retry_later"
	default:
		h.logger.Error("internal error", slog.String("path", r.URL.Path), slog.Any("error", err))
		status, code = http.StatusInternalServerError, "internal"
		err = errors.New("internal error")
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(errorBody{Code: code, Error: err.Error()})
}

// respondJSON writes v as the response body with the given status.
func (h *Handler) respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		// encoding should rarely fail; log and move on
		h.logger.Error("encode response error", slog.Any("error", err))
	}
}
