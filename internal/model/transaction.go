package model

import "time"

// TransactionKind classifies ledger transactions.
type TransactionKind string

const (
	// TransactionInitial is the founding record of a holding period: the
	// first purchase of an asset, or the first purchase after the quantity
	// returned to zero. It doubles as the retention sentinel of the
	// transaction log.
	TransactionInitial TransactionKind = "initial"

	// TransactionIncrease records an addition to an open position.
	TransactionIncrease TransactionKind = "increase"

	// TransactionDecrease records a disposal from an open position.
	TransactionDecrease TransactionKind = "decrease"

	// TransactionAdjust records an explicit quantity correction that does
	// not touch the cost basis.
	TransactionAdjust TransactionKind = "adjust"
)

// TransactionRecord is one immutable entry in the per-asset transaction
// log. DeltaQuantity is always positive; Kind and PreviousQuantity carry
// the direction. TotalValue is the value of the whole position after the
// transaction: ResultingQuantity times UnitPrice.
type TransactionRecord struct {
	ID                string          `json:"id"`
	Asset             AssetType       `json:"asset"`
	Timestamp         time.Time       `json:"timestamp"`
	Kind              TransactionKind `json:"kind"`
	DeltaQuantity     float64         `json:"deltaQuantity"`
	PreviousQuantity  float64         `json:"previousQuantity"`
	ResultingQuantity float64         `json:"resultingQuantity"`
	UnitPrice         float64         `json:"unitPrice"`
	TotalValue        float64         `json:"totalValue"`
}

// SignedDelta returns the quantity change with its direction applied:
// negative when the transaction lowered the quantity, positive otherwise.
// Summing signed deltas over a holding period (since the last initial
// record) reproduces the held quantity.
func (t TransactionRecord) SignedDelta() float64 {
	if t.ResultingQuantity < t.PreviousQuantity {
		return -t.DeltaQuantity
	}
	return t.DeltaQuantity
}
