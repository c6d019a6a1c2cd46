package handler

// RESPONSE HELPERS:
// These functions standardise how we send JSON responses and errors.
//
// Without helpers, every handler repeats the same boilerplate:
//   w.Header().Set("Content-Type", "application/json")
//   w.WriteHeader(statusCode)
//   json.NewEncoder(w).Encode(data)
//
// With helpers, handlers are cleaner and more consistent:
//   writeJSON(w, http.StatusOK, data)
//   writeError(w, err)
//
// CONSISTENT ERROR FORMAT:
// Every error response from our API has the same shape:
//   {"error": "not_found", "message": "application not found with id abc123"}
//
// The résumé intake middleware is the one exception; it answers with
// {"error": "Only PDF files are allowed"} because existing clients read that key.

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/sujiiiiit/collabhub-backend/internal/apperror"
)

// ErrorResponse is the standard error format returned by all API endpoints.
type ErrorResponse struct {
	Error   string `json:"error"`   // Machine-readable error type (e.g., "not_found")
	Message string `json:"message"` // Human-readable description
}

// MessageResponse acknowledges a write that returns no resource.
type MessageResponse struct {
	Message string `json:"message"`
}

const internalErrorMessage = "An internal error occurred"

// writeJSON sends a JSON response with the given status code.
//
// HEADER ORDER MATTERS:
// Headers and status code must be set BEFORE writing the body.
// Once the body is written, header changes are silently ignored.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			// Headers are already sent, so this can only be logged.
			slog.Error("failed to encode JSON response", slog.String("error", err.Error()))
		}
	}
}

// writeRawJSON relays a body that is already JSON, such as a provider
// response, without decoding it.
func writeRawJSON(w http.ResponseWriter, status int, body []byte) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if _, err := w.Write(body); err != nil {
		slog.Error("failed to write JSON response", slog.String("error", err.Error()))
	}
}

// writeError maps a domain error to the appropriate HTTP status code and sends it.
//
// ERROR MAPPING:
//
//	apperror.ErrValidation       → 400 validation_error
//	apperror.ErrUnauthenticated  → 401 unauthenticated
//	apperror.ErrForbidden        → 403 forbidden
//	apperror.ErrNotFound         → 404 not_found
//	apperror.ErrUpstreamTimeout  → 504 upstream_timeout
//	apperror.ErrUpstream, other  → 500 internal_error, generic message
//
// errors.Is() walks the whole chain, so a service error such as
// fmt.Errorf("service/application: getting x: %w", apperror.NotFound(...))
// still matches ErrNotFound.
func writeError(w http.ResponseWriter, err error) {
	var appErr *apperror.AppError
	if !errors.As(err, &appErr) {
		// NEVER expose internal error details to the client: the raw message
		// might contain queries, hostnames or file paths.
		slog.Error("unhandled error", slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, ErrorResponse{
			Error:   "internal_error",
			Message: internalErrorMessage,
		})
		return
	}

	status := http.StatusInternalServerError
	errorType := "internal_error"
	message := internalErrorMessage

	switch {
	case errors.Is(err, apperror.ErrValidation):
		status, errorType, message = http.StatusBadRequest, "validation_error", appErr.Message
	case errors.Is(err, apperror.ErrUnauthenticated):
		status, errorType, message = http.StatusUnauthorized, "unauthenticated", appErr.Message
	case errors.Is(err, apperror.ErrForbidden):
		status, errorType, message = http.StatusForbidden, "forbidden", appErr.Message
	case errors.Is(err, apperror.ErrNotFound):
		status, errorType, message = http.StatusNotFound, "not_found", appErr.Message
	case errors.Is(err, apperror.ErrUpstreamTimeout):
		status, errorType, message = http.StatusGatewayTimeout, "upstream_timeout", appErr.Message
	default:
		attrs := []any{slog.String("error", err.Error())}
		if appErr.Cause != nil {
			attrs = append(attrs, slog.String("cause", appErr.Cause.Error()))
		}
		slog.Error("request failed", attrs...)
	}

	writeJSON(w, status, ErrorResponse{Error: errorType, Message: message})
}

// decodeJSON reads a JSON request body into dst.
func decodeJSON(r *http.Request, dst any) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return apperror.ValidationFailed("body", "Invalid JSON body")
	}
	return nil
}
