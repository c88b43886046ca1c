// Package response provides utilities for sending consistent HTTP responses.
// It includes helpers for JSON responses, standardized error responses,
// and the mapping from typed ledger errors to HTTP status codes.
package response

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/avries/Asset-Ledger-Backend/internal/apperrors"
)

// ErrorResponse represents a structured error response returned by the API.
// The Details field is optional and can contain additional context about the error.
type ErrorResponse struct {
	Error   string      `json:"error"`
	Details interface{} `json:"details,omitempty"`
}

// RespondJSON sends a JSON response with the given status code.
// Sets the Content-Type header to application/json and writes the status code.
// If data is nil, only the status code is sent (useful for 204 No Content).
// Logs encoding errors but does not fail the response.
func RespondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			log.Printf("failed to encode JSON response: %v", err)
		}
	}
}

// RespondError sends a structured error response with the given status code.
// The message should be a user-friendly error description.
func RespondError(w http.ResponseWriter, status int, message string, details interface{}) {
	response := ErrorResponse{
		Error:   message,
		Details: details,
	}
	RespondJSON(w, status, response)
}

// StatusForError maps the typed error taxonomy to an HTTP status code.
// Unmatched errors map to 500: opaque persistence failures included.
func StatusForError(err error) int {
	switch {
	case errors.Is(err, apperrors.ErrInvalidQuantity),
		errors.Is(err, apperrors.ErrInvalidPrice),
		errors.Is(err, apperrors.ErrUnknownAsset),
		errors.Is(err, apperrors.ErrInvalidDateRange):
		return http.StatusBadRequest
	case errors.Is(err, apperrors.ErrPositionNotFound),
		errors.Is(err, apperrors.ErrProviderConfigNotFound):
		return http.StatusNotFound
	case errors.Is(err, apperrors.ErrPositionExists),
		errors.Is(err, apperrors.ErrInsufficientQuantity),
		errors.Is(err, apperrors.ErrConcurrencyConflict),
		errors.Is(err, apperrors.ErrRefreshSuperseded):
		return http.StatusConflict
	case errors.Is(err, apperrors.ErrQuoteUnavailable):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// RespondLedgerError sends an error response with the status derived from
// the typed error taxonomy.
func RespondLedgerError(w http.ResponseWriter, message string, err error) {
	RespondError(w, StatusForError(err), message, err.Error())
}
