package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/avries/Asset-Ledger-Backend/internal/apperrors"
	"github.com/avries/Asset-Ledger-Backend/internal/ledger"
	"github.com/avries/Asset-Ledger-Backend/internal/model"
	"github.com/avries/Asset-Ledger-Backend/internal/validation"
)

// PositionHandler handles position-related HTTP requests
type PositionHandler struct {
	ledger *ledger.PositionLedger
}

// NewPositionHandler creates a new PositionHandler
func NewPositionHandler(l *ledger.PositionLedger) *PositionHandler {
	return &PositionHandler{
		ledger: l,
	}
}

// PositionResponse represents a position in API responses, enriched with
// the asset's fixed metadata and derived values.
type PositionResponse struct {
	Asset       model.AssetType `json:"asset"`
	DisplayName string          `json:"displayName"`
	Unit        string          `json:"unit"`
	Kind        model.AssetKind `json:"kind"`
	Quantity    float64         `json:"quantity"`
	AvgCost     float64         `json:"avgCost"`
	MarketPrice float64         `json:"marketPrice"`
	MarketValue float64         `json:"marketValue"`
	CreatedAt   time.Time       `json:"createdAt"`
	LastUpdated time.Time       `json:"lastUpdated"`
}

func toPositionResponse(p model.Position) PositionResponse {
	info := p.Asset.Info()
	return PositionResponse{
		Asset:       p.Asset,
		DisplayName: info.DisplayName,
		Unit:        info.Unit,
		Kind:        info.Kind,
		Quantity:    p.Quantity,
		AvgCost:     p.AvgCost,
		MarketPrice: p.MarketPrice,
		MarketValue: p.MarketValue(),
		CreatedAt:   p.CreatedAt,
		LastUpdated: p.LastUpdated,
	}
}

// assetParam parses the validated {asset} URL parameter.
func assetParam(r *http.Request) model.AssetType {
	asset, _ := model.ParseAssetType(chi.URLParam(r, "asset"))
	return asset
}

// Positions handles GET /api/position/ and returns all positions.
func (h *PositionHandler) Positions(w http.ResponseWriter, r *http.Request) {
	positions := h.ledger.Positions()

	response := make([]PositionResponse, len(positions))
	for i, p := range positions {
		response[i] = toPositionResponse(p)
	}

	respondJSON(w, http.StatusOK, response)
}

// Position handles GET /api/position/{asset}.
func (h *PositionHandler) Position(w http.ResponseWriter, r *http.Request) {
	position, err := h.ledger.Position(assetParam(r))
	if err != nil {
		respondLedgerError(w, "failed to retrieve position", err)
		return
	}

	respondJSON(w, http.StatusOK, toPositionResponse(position))
}

// BuyRequest is the body of POST /api/position/{asset}/buy. UnitPrice is
// optional: when omitted, the position's current market price is used.
type BuyRequest struct {
	Quantity  float64  `json:"quantity"`
	UnitPrice *float64 `json:"unitPrice"`
}

// Buy handles POST /api/position/{asset}/buy with open-or-increase
// semantics: the first purchase opens the position, later ones increase
// it and recompute the weighted-average cost basis.
func (h *PositionHandler) Buy(w http.ResponseWriter, r *http.Request) {
	asset := assetParam(r)

	var req BuyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondJSON(w, http.StatusBadRequest, map[string]string{
			"error":  "invalid request body",
			"detail": err.Error(),
		})
		return
	}

	unitPrice, err := h.resolveUnitPrice(asset, req.UnitPrice)
	if err != nil {
		respondLedgerError(w, "unit price is required for the first purchase", err)
		return
	}

	record, err := h.ledger.Increase(asset, req.Quantity, unitPrice)
	if err != nil {
		respondLedgerError(w, "failed to record purchase", err)
		return
	}

	respondJSON(w, http.StatusCreated, record)
}

// resolveUnitPrice falls back to the position's market price when the
// request carries no unit price.
func (h *PositionHandler) resolveUnitPrice(asset model.AssetType, unitPrice *float64) (float64, error) {
	if unitPrice != nil {
		return *unitPrice, nil
	}
	position, err := h.ledger.Position(asset)
	if err != nil {
		return 0, err
	}
	if err := validation.ValidateMarketPrice(position.MarketPrice); err != nil {
		return 0, err
	}
	return position.MarketPrice, nil
}

// SellRequest is the body of POST /api/position/{asset}/sell.
type SellRequest struct {
	Quantity float64 `json:"quantity"`
}

// Sell handles POST /api/position/{asset}/sell. The cost basis of the
// remaining units is left untouched (strict average-cost method).
func (h *PositionHandler) Sell(w http.ResponseWriter, r *http.Request) {
	var req SellRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondJSON(w, http.StatusBadRequest, map[string]string{
			"error":  "invalid request body",
			"detail": err.Error(),
		})
		return
	}

	record, err := h.ledger.Decrease(assetParam(r), req.Quantity)
	if err != nil {
		respondLedgerError(w, "failed to record sale", err)
		return
	}

	respondJSON(w, http.StatusCreated, record)
}

// AdjustRequest is the body of POST /api/position/{asset}/adjust.
type AdjustRequest struct {
	Quantity float64 `json:"quantity"`
}

// Adjust handles POST /api/position/{asset}/adjust: an explicit quantity
// correction that does not touch the cost basis.
func (h *PositionHandler) Adjust(w http.ResponseWriter, r *http.Request) {
	var req AdjustRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondJSON(w, http.StatusBadRequest, map[string]string{
			"error":  "invalid request body",
			"detail": err.Error(),
		})
		return
	}

	record, err := h.ledger.Adjust(assetParam(r), req.Quantity)
	if err != nil {
		respondLedgerError(w, "failed to adjust quantity", err)
		return
	}

	respondJSON(w, http.StatusCreated, record)
}

// PriceRequest is the body of POST /api/position/{asset}/price.
type PriceRequest struct {
	Price float64 `json:"price"`
}

// RecordPrice handles POST /api/position/{asset}/price: a manual market
// price update, upserting today's snapshot without appending a
// transaction.
func (h *PositionHandler) RecordPrice(w http.ResponseWriter, r *http.Request) {
	var req PriceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondJSON(w, http.StatusBadRequest, map[string]string{
			"error":  "invalid request body",
			"detail": err.Error(),
		})
		return
	}

	asset := assetParam(r)
	if err := h.ledger.SetMarketPrice(asset, req.Price); err != nil {
		respondLedgerError(w, "failed to record market price", err)
		return
	}

	position, err := h.ledger.Position(asset)
	if err != nil {
		respondLedgerError(w, "failed to retrieve position", err)
		return
	}

	respondJSON(w, http.StatusOK, toPositionResponse(position))
}

// Delete handles DELETE /api/position/{asset}: removes the position and
// its histories.
func (h *PositionHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.ledger.Remove(assetParam(r)); err != nil {
		respondLedgerError(w, "failed to remove position", err)
		return
	}

	respondJSON(w, http.StatusNoContent, nil)
}

// Transactions handles GET /api/position/{asset}/transactions and returns
// the retained transaction history, ascending by time.
func (h *PositionHandler) Transactions(w http.ResponseWriter, r *http.Request) {
	records, err := h.ledger.Transactions(assetParam(r))
	if err != nil {
		respondLedgerError(w, "failed to retrieve transactions", err)
		return
	}

	respondJSON(w, http.StatusOK, records)
}

// Prices handles GET /api/position/{asset}/prices and returns the
// retained price history. Optional query parameters narrow the result:
// start/end (YYYY-MM-DD) select a date range, days=N selects the last N
// calendar days.
func (h *PositionHandler) Prices(w http.ResponseWriter, r *http.Request) {
	asset := assetParam(r)

	startStr := r.URL.Query().Get("start")
	endStr := r.URL.Query().Get("end")
	daysStr := r.URL.Query().Get("days")

	var snapshots []model.PriceSnapshot
	var err error

	switch {
	case startStr != "" || endStr != "":
		var start, end time.Time
		start, end, err = parsePriceRange(startStr, endStr)
		if err == nil {
			snapshots, err = h.ledger.PriceHistoryRange(asset, start, end)
		}
	case daysStr != "":
		var days int
		days, err = strconv.Atoi(daysStr)
		if err != nil || days < 1 {
			respondJSON(w, http.StatusBadRequest, map[string]string{
				"error": "days must be a positive integer",
			})
			return
		}
		end := time.Now().UTC()
		snapshots, err = h.ledger.PriceHistoryRange(asset, end.AddDate(0, 0, -(days-1)), end)
	default:
		snapshots, err = h.ledger.PriceHistory(asset)
	}

	if err != nil {
		respondLedgerError(w, "failed to retrieve price history", err)
		return
	}

	respondJSON(w, http.StatusOK, snapshots)
}

func parsePriceRange(startStr, endStr string) (time.Time, time.Time, error) {
	start := time.Time{}
	end := time.Now().UTC()
	var err error

	if startStr != "" {
		start, err = validation.ParseTime(startStr)
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("%w: %v", apperrors.ErrInvalidDateRange, err)
		}
	}
	if endStr != "" {
		end, err = validation.ParseTime(endStr)
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("%w: %v", apperrors.ErrInvalidDateRange, err)
		}
	}
	if err := validation.ValidateDateRange(start, end); err != nil {
		return time.Time{}, time.Time{}, err
	}
	return start, end, nil
}
