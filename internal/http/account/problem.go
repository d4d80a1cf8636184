package account

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"

	"github.com/MrJamesThe3rd/conta/internal/ledger"
)

// problem is an RFC 9457 problem details body.
type problem struct {
	Type     string `json:"type"`
	Title    string `json:"title"`
	Status   int    `json:"status"`
	Detail   string `json:"detail,omitempty"`
	Instance string `json:"instance,omitempty"`
	Errors   any    `json:"errors,omitempty"`
}

func writeProblem(w http.ResponseWriter, r *http.Request, status int, title, detail string, errs any) {
	w.Header().Set("Content-Type", "application/problem+json")
	w.WriteHeader(status)

	p := problem{
		Type:     "about:blank",
		Title:    title,
		Status:   status,
		Detail:   detail,
		Instance: r.URL.Path,
		Errors:   errs,
	}

	if err := json.NewEncoder(w).Encode(p); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

func statusFor(err error) (int, string) {
	switch {
	case errors.Is(err, ledger.ErrValidation):
		return http.StatusBadRequest, "Validation failed"
	case errors.Is(err, ledger.ErrNotFound):
		return http.StatusNotFound, "Not found"
	case errors.Is(err, ledger.ErrAlreadyExists):
		return http.StatusConflict, "Already exists"
	case errors.Is(err, ledger.ErrInsufficientFunds):
		return http.StatusUnprocessableEntity, "Insufficient funds"
	case errors.Is(err, ledger.ErrConcurrencyConflict):
		return http.StatusConflict, "Concurrent update"
	}

	return http.StatusInternalServerError, "Internal error"
}

// writeError renders a ledger error. Internal failures are logged and their detail is withheld.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status, title := statusFor(err)

	if errors.Is(err, ledger.ErrConcurrencyConflict) {
		w.Header().Set("Retry-After", "1")
	}

	detail := err.Error()

	if status == http.StatusInternalServerError {
		slog.Error("request failed",
			"method", r.Method,
			"path", r.URL.Path,
			"request_id", middleware.GetReqID(r.Context()),
			"error", err,
		)

		detail = ""
	}

	writeProblem(w, r, status, title, detail, nil)
}
