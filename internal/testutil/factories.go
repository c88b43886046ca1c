package testutil

import (
	"database/sql"
	"testing"
	"time"

	"github.com/avries/Asset-Ledger-Backend/internal/model"
	"github.com/avries/Asset-Ledger-Backend/internal/repository"
)

// PositionBuilder provides a fluent interface for creating test positions.
//
// Example usage:
//
//	// Simple creation with defaults
//	position := testutil.NewPosition().Build(t, db)
//
//	// Customized position
//	position := testutil.NewPosition().
//	    WithAsset(model.Silver).
//	    WithQuantity(20).
//	    WithAvgCost(25).
//	    Build(t, db)
type PositionBuilder struct {
	Asset       model.AssetType
	Quantity    float64
	AvgCost     float64
	MarketPrice float64
	CreatedAt   time.Time
	Version     int64
}

// NewPosition creates a PositionBuilder with sensible defaults.
func NewPosition() *PositionBuilder {
	return &PositionBuilder{
		Asset:       model.Gold,
		Quantity:    10,
		AvgCost:     1900,
		MarketPrice: 2000,
		CreatedAt:   time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC),
		Version:     1,
	}
}

// WithAsset sets the asset type.
func (b *PositionBuilder) WithAsset(asset model.AssetType) *PositionBuilder {
	b.Asset = asset
	return b
}

// WithQuantity sets the held quantity.
func (b *PositionBuilder) WithQuantity(quantity float64) *PositionBuilder {
	b.Quantity = quantity
	return b
}

// WithAvgCost sets the weighted-average cost basis.
func (b *PositionBuilder) WithAvgCost(avgCost float64) *PositionBuilder {
	b.AvgCost = avgCost
	return b
}

// WithMarketPrice sets the current market price.
func (b *PositionBuilder) WithMarketPrice(price float64) *PositionBuilder {
	b.MarketPrice = price
	return b
}

// WithCreatedAt sets the position's creation timestamp.
func (b *PositionBuilder) WithCreatedAt(at time.Time) *PositionBuilder {
	b.CreatedAt = at
	return b
}

// WithVersion sets the optimistic-concurrency version.
func (b *PositionBuilder) WithVersion(version int64) *PositionBuilder {
	b.Version = version
	return b
}

// Model returns the built position without persisting it.
func (b *PositionBuilder) Model() model.Position {
	return model.Position{
		Asset:       b.Asset,
		Quantity:    b.Quantity,
		AvgCost:     b.AvgCost,
		MarketPrice: b.MarketPrice,
		CreatedAt:   b.CreatedAt,
		LastUpdated: b.CreatedAt,
		Version:     b.Version,
	}
}

// Build persists the position and returns it.
func (b *PositionBuilder) Build(t *testing.T, db *sql.DB) model.Position {
	t.Helper()

	position := b.Model()
	_, err := db.Exec(`
		INSERT INTO position (asset, quantity, avg_cost, market_price, created_at, last_updated, version)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		position.Asset.String(),
		position.Quantity,
		position.AvgCost,
		position.MarketPrice,
		repository.FormatTime(position.CreatedAt),
		repository.FormatTime(position.LastUpdated),
		position.Version,
	)
	if err != nil {
		t.Fatalf("Failed to insert test position: %v", err)
	}

	return position
}

// TransactionBuilder provides a fluent interface for creating test
// transaction records. The position row must exist first.
type TransactionBuilder struct {
	Asset             model.AssetType
	Timestamp         time.Time
	Kind              model.TransactionKind
	DeltaQuantity     float64
	PreviousQuantity  float64
	ResultingQuantity float64
	UnitPrice         float64
}

// NewTransaction creates a TransactionBuilder describing an initial purchase.
func NewTransaction() *TransactionBuilder {
	return &TransactionBuilder{
		Asset:             model.Gold,
		Timestamp:         time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC),
		Kind:              model.TransactionInitial,
		DeltaQuantity:     10,
		PreviousQuantity:  0,
		ResultingQuantity: 10,
		UnitPrice:         1900,
	}
}

// WithAsset sets the asset type.
func (b *TransactionBuilder) WithAsset(asset model.AssetType) *TransactionBuilder {
	b.Asset = asset
	return b
}

// WithTimestamp sets the record's timestamp.
func (b *TransactionBuilder) WithTimestamp(at time.Time) *TransactionBuilder {
	b.Timestamp = at
	return b
}

// WithKind sets the transaction kind.
func (b *TransactionBuilder) WithKind(kind model.TransactionKind) *TransactionBuilder {
	b.Kind = kind
	return b
}

// WithQuantities sets the delta and the quantities around it.
func (b *TransactionBuilder) WithQuantities(delta, previous, resulting float64) *TransactionBuilder {
	b.DeltaQuantity = delta
	b.PreviousQuantity = previous
	b.ResultingQuantity = resulting
	return b
}

// WithUnitPrice sets the per-unit price.
func (b *TransactionBuilder) WithUnitPrice(price float64) *TransactionBuilder {
	b.UnitPrice = price
	return b
}

// Model returns the built record without persisting it.
func (b *TransactionBuilder) Model() model.TransactionRecord {
	return model.TransactionRecord{
		ID:                MakeID(),
		Asset:             b.Asset,
		Timestamp:         b.Timestamp,
		Kind:              b.Kind,
		DeltaQuantity:     b.DeltaQuantity,
		PreviousQuantity:  b.PreviousQuantity,
		ResultingQuantity: b.ResultingQuantity,
		UnitPrice:         b.UnitPrice,
		TotalValue:        b.ResultingQuantity * b.UnitPrice,
	}
}

// Build persists the record and returns it.
func (b *TransactionBuilder) Build(t *testing.T, db *sql.DB) model.TransactionRecord {
	t.Helper()

	record := b.Model()
	_, err := db.Exec(`
		INSERT INTO asset_transaction
			(id, asset, timestamp, kind, delta_quantity, previous_quantity, resulting_quantity, unit_price, total_value)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		record.ID,
		record.Asset.String(),
		repository.FormatTime(record.Timestamp),
		string(record.Kind),
		record.DeltaQuantity,
		record.PreviousQuantity,
		record.ResultingQuantity,
		record.UnitPrice,
		record.TotalValue,
	)
	if err != nil {
		t.Fatalf("Failed to insert test transaction: %v", err)
	}

	return record
}

// SnapshotBuilder provides a fluent interface for creating test price
// snapshots. The position row must exist first.
type SnapshotBuilder struct {
	Asset      model.AssetType
	Day        time.Time
	Price      float64
	Quantity   float64
	RecordedAt time.Time
}

// NewSnapshot creates a SnapshotBuilder with sensible defaults.
func NewSnapshot() *SnapshotBuilder {
	day := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	return &SnapshotBuilder{
		Asset:      model.Gold,
		Day:        day,
		Price:      2000,
		Quantity:   10,
		RecordedAt: day.Add(12 * time.Hour),
	}
}

// WithAsset sets the asset type.
func (b *SnapshotBuilder) WithAsset(asset model.AssetType) *SnapshotBuilder {
	b.Asset = asset
	return b
}

// WithDay sets the calendar day, truncating to UTC midnight.
func (b *SnapshotBuilder) WithDay(day time.Time) *SnapshotBuilder {
	b.Day = model.Day(day)
	b.RecordedAt = b.Day.Add(12 * time.Hour)
	return b
}

// WithPrice sets the observed market price.
func (b *SnapshotBuilder) WithPrice(price float64) *SnapshotBuilder {
	b.Price = price
	return b
}

// WithQuantity sets the quantity held on that day.
func (b *SnapshotBuilder) WithQuantity(quantity float64) *SnapshotBuilder {
	b.Quantity = quantity
	return b
}

// Model returns the built snapshot without persisting it.
func (b *SnapshotBuilder) Model() model.PriceSnapshot {
	return model.PriceSnapshot{
		ID:         MakeID(),
		Asset:      b.Asset,
		Day:        b.Day,
		Price:      b.Price,
		Quantity:   b.Quantity,
		TotalValue: b.Price * b.Quantity,
		RecordedAt: b.RecordedAt,
	}
}

// Build persists the snapshot and returns it.
func (b *SnapshotBuilder) Build(t *testing.T, db *sql.DB) model.PriceSnapshot {
	t.Helper()

	snapshot := b.Model()
	_, err := db.Exec(`
		INSERT INTO price_snapshot (id, asset, day, price, quantity, total_value, recorded_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		snapshot.ID,
		snapshot.Asset.String(),
		repository.FormatDay(snapshot.Day),
		snapshot.Price,
		snapshot.Quantity,
		snapshot.TotalValue,
		repository.FormatTime(snapshot.RecordedAt),
	)
	if err != nil {
		t.Fatalf("Failed to insert test snapshot: %v", err)
	}

	return snapshot
}
