package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/avries/Asset-Ledger-Backend/internal/model"
	"github.com/avries/Asset-Ledger-Backend/internal/repository"
)

// ProviderHandler handles quote provider configuration requests
type ProviderHandler struct {
	repo *repository.ProviderConfigRepository
}

// NewProviderHandler creates a new ProviderHandler
func NewProviderHandler(repo *repository.ProviderConfigRepository) *ProviderHandler {
	return &ProviderHandler{
		repo: repo,
	}
}

// ProviderConfigResponse is the read view of the provider configuration.
// The API key is write-only: responses only reveal whether one is set.
type ProviderConfigResponse struct {
	ID            string `json:"id"`
	BaseURL       string `json:"baseUrl"`
	QuoteCurrency string `json:"quoteCurrency"`
	APIKeySet     bool   `json:"apiKeySet"`
	UpdatedAt     string `json:"updatedAt"`
}

func toProviderConfigResponse(cfg model.ProviderConfig) ProviderConfigResponse {
	return ProviderConfigResponse{
		ID:            cfg.ID,
		BaseURL:       cfg.BaseURL,
		QuoteCurrency: cfg.QuoteCurrency,
		APIKeySet:     cfg.APIKey != "",
		UpdatedAt:     cfg.UpdatedAt.UTC().Format("2006-01-02T15:04:05Z07:00"),
	}
}

// Get handles GET /api/provider/config.
func (h *ProviderHandler) Get(w http.ResponseWriter, r *http.Request) {
	cfg, err := h.repo.Get()
	if err != nil {
		respondLedgerError(w, "failed to retrieve provider configuration", err)
		return
	}

	respondJSON(w, http.StatusOK, toProviderConfigResponse(cfg))
}

// ProviderConfigRequest is the body of PUT /api/provider/config. An empty
// APIKey keeps the stored key; any other value replaces it.
type ProviderConfigRequest struct {
	BaseURL       string `json:"baseUrl"`
	QuoteCurrency string `json:"quoteCurrency"`
	APIKey        string `json:"apiKey"`
}

// Put handles PUT /api/provider/config and replaces the provider
// settings, re-encrypting the API key at rest.
func (h *ProviderHandler) Put(w http.ResponseWriter, r *http.Request) {
	var req ProviderConfigRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondJSON(w, http.StatusBadRequest, map[string]string{
			"error":  "invalid request body",
			"detail": err.Error(),
		})
		return
	}

	if strings.TrimSpace(req.BaseURL) == "" {
		respondJSON(w, http.StatusBadRequest, map[string]string{
			"error": "baseUrl is required",
		})
		return
	}

	cfg := model.ProviderConfig{
		BaseURL:       strings.TrimRight(req.BaseURL, "/"),
		QuoteCurrency: strings.ToUpper(req.QuoteCurrency),
		APIKey:        req.APIKey,
	}
	if cfg.QuoteCurrency == "" {
		cfg.QuoteCurrency = "USD"
	}

	if cfg.APIKey == "" {
		existing, err := h.repo.Get()
		if err == nil {
			cfg.APIKey = existing.APIKey
		}
	}

	saved, err := h.repo.Save(cfg)
	if err != nil {
		respondLedgerError(w, "failed to save provider configuration", err)
		return
	}

	respondJSON(w, http.StatusOK, toProviderConfigResponse(saved))
}
