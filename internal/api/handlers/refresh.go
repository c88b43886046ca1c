package handlers

import (
	"net/http"

	"github.com/avries/Asset-Ledger-Backend/internal/service"
)

// RefreshHandler handles market price refresh requests
type RefreshHandler struct {
	refreshService *service.RefreshService
}

// NewRefreshHandler creates a new RefreshHandler
func NewRefreshHandler(refreshService *service.RefreshService) *RefreshHandler {
	return &RefreshHandler{
		refreshService: refreshService,
	}
}

// Refresh handles POST /api/refresh: fetches current quotes for all held
// assets and applies them in one batch. Starting a refresh while another
// is in flight cancels the older one.
func (h *RefreshHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	result, err := h.refreshService.RefreshAll(r.Context())
	if err != nil {
		respondLedgerError(w, "refresh failed", err)
		return
	}

	respondJSON(w, http.StatusOK, result)
}

// Cancel handles POST /api/refresh/cancel and aborts any in-flight
// refresh cycle.
func (h *RefreshHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	h.refreshService.Cancel()
	respondJSON(w, http.StatusAccepted, map[string]string{
		"status": "cancelled",
	})
}
