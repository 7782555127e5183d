package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/sakif/devhub/internal/apperror"
)

// ErrorResponse is the standard error format returned by all API endpoints:
//
//	{"error": "not_found", "message": "profile not found with id u1"}
//
// A fixed shape means the frontend always knows what fields to expect,
// regardless of status code.
type ErrorResponse struct {
	Error   string `json:"error"`   // Machine-readable error type (e.g., "not_found")
	Message string `json:"message"` // Human-readable description
}

// writeJSON sends a JSON response with the given status code. Headers and
// status must be written before the body — Encode's first Write flushes
// them.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			slog.Error("failed to encode JSON response", slog.String("error", err.Error()))
		}
	}
}

// writeError maps a domain error to an HTTP status code and sends it.
//
// This is the single place domain errors meet HTTP. The service layer
// returns apperror sentinels; errors.Is walks the wrap chain (including the
// multi-wrapped SyncFailed) to find them.
func writeError(w http.ResponseWriter, err error) {
	var appErr *apperror.AppError

	if errors.As(err, &appErr) {
		status := http.StatusInternalServerError
		errorType := "internal_error"

		switch {
		case errors.Is(err, apperror.ErrValidation):
			status = http.StatusBadRequest
			errorType = "validation_error"
		case errors.Is(err, apperror.ErrInvalidOperation):
			status = http.StatusBadRequest
			errorType = "invalid_operation"
		case errors.Is(err, apperror.ErrNotAuthorized):
			status = http.StatusUnauthorized
			errorType = "not_authorized"
		case errors.Is(err, apperror.ErrNotFound):
			status = http.StatusNotFound
			errorType = "not_found"
		case errors.Is(err, apperror.ErrNoAccessToken):
			// The session is fine; it just isn't GitHub-linked. 409 keeps
			// it distinct from auth failures so the UI can suggest
			// re-linking instead of re-logging-in.
			status = http.StatusConflict
			errorType = "no_access_token"
		case errors.Is(err, apperror.ErrSyncFailed):
			status = http.StatusBadGateway
			errorType = "sync_failed"
		}

		writeJSON(w, status, ErrorResponse{
			Error:   errorType,
			Message: appErr.Message,
		})
		return
	}

	// Unknown error — never expose internals (SQL, file paths, tokens).
	writeJSON(w, http.StatusInternalServerError, ErrorResponse{
		Error:   "internal_error",
		Message: "An internal error occurred",
	})
}
