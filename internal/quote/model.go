package quote

import (
	"time"

	"github.com/avries/Asset-Ledger-Backend/internal/model"
)

// Quote is one asset's market price as reported by a provider, expressed
// in the configured quote currency per unit of the asset.
type Quote struct {
	Asset model.AssetType
	Price float64
	AsOf  time.Time
}

// latestResponse represents the raw JSON response of the rates API's
// /latest endpoint. Rates are expressed as units of the symbol per one
// unit of the base currency, so the price of one unit of the symbol is
// the reciprocal of its rate.
type latestResponse struct {
	Success   bool               `json:"success"`
	Timestamp int64              `json:"timestamp"`
	Base      string             `json:"base"`
	Rates     map[string]float64 `json:"rates"`
	Error     *struct {
		Code int    `json:"code"`
		Info string `json:"info"`
	} `json:"error"`
}
