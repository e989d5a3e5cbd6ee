package http

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"kakeibo/internal/core"
	applog "kakeibo/internal/log"
)

type errorBody struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if v == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("Failed to encode response", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorBody{Error: msg})
}

// writeDomainError maps the engine's error taxonomy onto HTTP status codes:
// not-found 404, constraint 409, validation 422, anything else 500.
func writeDomainError(ctx context.Context, w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, core.ErrNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, core.ErrConstraint):
		writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, core.ErrValidation):
		writeError(w, http.StatusUnprocessableEntity, err.Error())
	default:
		applog.FromContext(ctx).ErrorContext(ctx, "Unexpected handler error",
			applog.FieldError, err.Error(),
			"error_type", applog.ErrorTypePersistence)
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}
