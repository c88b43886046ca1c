package handlers

import (
	"net/http"

	"github.com/avries/Asset-Ledger-Backend/internal/api/response"
)

// respondJSON sends a JSON response with the given status code
func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	response.RespondJSON(w, status, data)
}

// respondLedgerError sends an error response with the HTTP status derived
// from the typed error taxonomy.
func respondLedgerError(w http.ResponseWriter, message string, err error) {
	response.RespondLedgerError(w, message, err)
}
