package model

import "time"

// PriceSnapshot is one entry in the per-asset price history: the market
// price and position value observed on a calendar day. At most one
// snapshot exists per asset per day; recording again within the same day
// updates the existing entry in place.
type PriceSnapshot struct {
	ID         string    `json:"id"`
	Asset      AssetType `json:"asset"`
	Day        time.Time `json:"day"`
	Price      float64   `json:"price"`
	Quantity   float64   `json:"quantity"`
	TotalValue float64   `json:"totalValue"`
	RecordedAt time.Time `json:"recordedAt"`
}

// Day truncates a timestamp to its UTC calendar day, the key under which
// price snapshots are stored.
func Day(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
