package handlers

import (
	"fmt"
	"net/http"

	"github.com/avries/Asset-Ledger-Backend/internal/ledger"
	"github.com/avries/Asset-Ledger-Backend/internal/model"
)

// PortfolioHandler handles portfolio-level HTTP requests
type PortfolioHandler struct {
	ledger *ledger.PositionLedger
}

// NewPortfolioHandler creates a new PortfolioHandler
func NewPortfolioHandler(l *ledger.PositionLedger) *PortfolioHandler {
	return &PortfolioHandler{
		ledger: l,
	}
}

// Summary handles GET /api/portfolio/summary and returns the aggregate
// view over all positions.
func (h *PortfolioHandler) Summary(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, h.ledger.Aggregate())
}

// DistributionEntryResponse is one asset's share of the portfolio,
// enriched with display metadata. DisplayPercent renders shares below
// 0.01 as "<0.01%" so tiny holdings stay visible in UIs.
type DistributionEntryResponse struct {
	Asset          model.AssetType `json:"asset"`
	DisplayName    string          `json:"displayName"`
	Value          float64         `json:"value"`
	Percent        float64         `json:"percent"`
	DisplayPercent string          `json:"displayPercent"`
}

func toDistributionResponse(entries []model.DistributionEntry) []DistributionEntryResponse {
	response := make([]DistributionEntryResponse, len(entries))
	for i, e := range entries {
		response[i] = DistributionEntryResponse{
			Asset:          e.Asset,
			DisplayName:    e.Asset.Info().DisplayName,
			Value:          e.Value,
			Percent:        e.Percent,
			DisplayPercent: formatPercent(e.Percent),
		}
	}
	return response
}

func formatPercent(pct float64) string {
	if pct > 0 && pct < 0.01 {
		return "<0.01%"
	}
	return fmt.Sprintf("%.2f%%", pct)
}

// Distribution handles GET /api/portfolio/distribution and returns each
// positive-value position's share of the total, normalized to sum to 100.
func (h *PortfolioHandler) Distribution(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, toDistributionResponse(h.ledger.Distribution()))
}
