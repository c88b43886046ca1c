package model

import "time"

// AggregateSummary is the recomputed view over all positions. It is
// transient: the aggregator derives it on demand and never persists it.
// Monetary values are rounded to two decimal places at this boundary.
type AggregateSummary struct {
	TotalValue        float64   `json:"totalValue"`
	TotalInvestment   float64   `json:"totalInvestment"`
	ProfitLoss        float64   `json:"profitLoss"`
	ProfitLossPercent float64   `json:"profitLossPercent"`
	PositionCount     int       `json:"positionCount"`
	RefreshedAt       time.Time `json:"refreshedAt"`
}

// DistributionEntry is one asset's share of the portfolio value.
// RawPercent is the independently computed share; Percent is the share
// after normalization, so that the entries of a distribution sum to
// exactly 100 despite floating-point rounding.
type DistributionEntry struct {
	Asset      AssetType `json:"asset"`
	Value      float64   `json:"value"`
	RawPercent float64   `json:"rawPercent"`
	Percent    float64   `json:"percent"`
}

// ProviderConfig holds the quote provider settings. APIKey is stored
// encrypted at rest and is never serialized in responses.
type ProviderConfig struct {
	ID            string    `json:"id"`
	BaseURL       string    `json:"baseUrl"`
	APIKey        string    `json:"-"`
	QuoteCurrency string    `json:"quoteCurrency"`
	UpdatedAt     time.Time `json:"updatedAt"`
}
