package model

import "time"

// Position represents the aggregate holding of one asset type.
//
// AvgCost is the weighted-average cost per unit across all additions and is
// meaningful only while Quantity > 0; it is cleared to zero when the
// quantity returns to exactly zero so a later reopen starts fresh.
// Version supports optimistic concurrency in the persistence layer and is
// incremented on every committed mutation.
type Position struct {
	Asset       AssetType `json:"asset"`
	Quantity    float64   `json:"quantity"`
	AvgCost     float64   `json:"avgCost"`
	MarketPrice float64   `json:"marketPrice"`
	CreatedAt   time.Time `json:"createdAt"`
	LastUpdated time.Time `json:"lastUpdated"`
	Version     int64     `json:"-"`
}

// MarketValue returns the position's value at the current market price.
func (p Position) MarketValue() float64 {
	return p.Quantity * p.MarketPrice
}

// Invested returns the amount invested in the position. When no cost basis
// is known (price-only positions loaded before any recorded purchase), the
// current market price stands in for it; unknown cost is never treated as
// zero, which would fabricate a gain of the entire position value.
func (p Position) Invested() float64 {
	if p.AvgCost > 0 {
		return p.Quantity * p.AvgCost
	}
	return p.Quantity * p.MarketPrice
}
