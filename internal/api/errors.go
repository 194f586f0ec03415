// Package api provides HTTP handlers for the deal feed API, including
// standardized error handling.
package api

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/forkful/dealfeed/internal/middleware"
)

// Common error codes used throughout the API.
const (
	// ErrCodeValidation indicates input validation failure.
	ErrCodeValidation = "validation_error"

	// ErrCodeBadRequest indicates a malformed request.
	ErrCodeBadRequest = "bad_request"

	// ErrCodeAuthFailed indicates authentication failure.
	ErrCodeAuthFailed = "auth_failed"

	// ErrCodeNotFound indicates the requested resource was not found.
	ErrCodeNotFound = "not_found"

	// ErrCodeDealExpired indicates the referenced deal is past its expiry.
	ErrCodeDealExpired = "deal_expired"

	// ErrCodeInvalidInteraction indicates an unrecognized interaction kind.
	ErrCodeInvalidInteraction = "invalid_interaction"

	// ErrCodeInvalidLocation indicates coordinates outside valid ranges.
	ErrCodeInvalidLocation = "invalid_location"

	// ErrCodeInternal indicates an internal server error.
	ErrCodeInternal = "internal_error"
)

// ErrorResponse is the standard error body: a stable machine-readable
// code plus a human-readable detail string.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// WriteError writes a standardized JSON error response with the given
// status. The code should be one of the ErrCode constants.
func WriteError(w http.ResponseWriter, ctx context.Context, status int, code, details string) {
	data, err := json.Marshal(ErrorResponse{Error: code, Details: details})
	if err != nil {
		slog.ErrorContext(ctx, "failed to marshal error response", "error", err)
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte("Internal server error"))
		return
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if _, err := w.Write(data); err != nil {
		slog.ErrorContext(ctx, "failed to write error response", "error", err)
	}
}

// Error stamps the error code on the request context so the logging
// middleware records it, then writes the response.
func Error(w http.ResponseWriter, r *http.Request, status int, code, details string) {
	ctx := middleware.SetErrorCode(r.Context(), code)
	*r = *r.WithContext(ctx)
	WriteError(w, ctx, status, code, details)
}

// writeJSON encodes v as the response body with the given status.
func writeJSON(w http.ResponseWriter, ctx context.Context, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.ErrorContext(ctx, "failed to encode response", "error", err)
	}
}
