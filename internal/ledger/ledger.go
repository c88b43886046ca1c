// Package ledger implements the portfolio ledger core: per-asset positions
// with weighted-average cost basis, bounded transaction and price-snapshot
// histories, and the aggregate/distribution views derived from them.
//
// A single PositionLedger instance owns all mutable portfolio state for a
// process. Mutations run under an exclusive lock and commit through the
// Store before touching in-memory state, so readers always observe a fully
// applied mutation or none of it.
package ledger

import (
	"fmt"
	"sync"
	"time"

	"github.com/avries/Asset-Ledger-Backend/internal/apperrors"
	"github.com/avries/Asset-Ledger-Backend/internal/model"
	"github.com/avries/Asset-Ledger-Backend/internal/retention"
	"github.com/avries/Asset-Ledger-Backend/internal/validation"
)

const (
	// SnapshotLogSize bounds the per-asset price history: the first
	// snapshot ever taken plus a sliding window of recent days.
	SnapshotLogSize = 30

	// TransactionLogSize bounds the per-asset transaction history: the
	// founding initial-kind record plus the most recent transactions.
	TransactionLogSize = 10
)

// assetState bundles one asset's position with its two retained logs.
type assetState struct {
	pos     model.Position
	txLog   *retention.RetainedLog[model.TransactionRecord]
	snapLog *retention.RetainedLog[model.PriceSnapshot]
}

// PositionLedger is the single writer of positions, transaction records,
// and price snapshots. Reads return copies and may run concurrently.
type PositionLedger struct {
	mu          sync.RWMutex
	store       Store
	assets      map[model.AssetType]*assetState
	refreshedAt time.Time
	subscribers []chan model.AggregateSummary
	now         func() time.Time
}

// New builds a ledger backed by the given store and restores its persisted
// state.
func New(store Store) (*PositionLedger, error) {
	state, err := store.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load ledger state: %w", err)
	}

	l := &PositionLedger{
		store:  store,
		assets: make(map[model.AssetType]*assetState),
		now:    time.Now,
	}

	for _, pos := range state.Positions {
		st := &assetState{
			pos:     pos,
			txLog:   newTransactionLog(),
			snapLog: newSnapshotLog(),
		}
		st.txLog.Reset(state.Transactions[pos.Asset])
		st.snapLog.Reset(state.Snapshots[pos.Asset])
		l.assets[pos.Asset] = st
	}

	return l, nil
}

func newTransactionLog() *retention.RetainedLog[model.TransactionRecord] {
	return retention.NewWithSentinel(
		TransactionLogSize,
		func(t model.TransactionRecord) time.Time { return t.Timestamp },
		// The sentinel is the founding record of the current holding
		// period: the most recent initial-kind transaction.
		func(entries []model.TransactionRecord) int {
			for i := len(entries) - 1; i >= 0; i-- {
				if entries[i].Kind == model.TransactionInitial {
					return i
				}
			}
			return -1
		},
	)
}

func newSnapshotLog() *retention.RetainedLog[model.PriceSnapshot] {
	return retention.New(
		SnapshotLogSize,
		func(s model.PriceSnapshot) time.Time { return s.Day },
	)
}

// Position returns a copy of the position for the asset.
func (l *PositionLedger) Position(asset model.AssetType) (model.Position, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	st, ok := l.assets[asset]
	if !ok {
		return model.Position{}, fmt.Errorf("%w: %s", apperrors.ErrPositionNotFound, asset)
	}
	return st.pos, nil
}

// Positions returns copies of all positions in asset declaration order.
func (l *PositionLedger) Positions() []model.Position {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.positionsLocked()
}

func (l *PositionLedger) positionsLocked() []model.Position {
	out := make([]model.Position, 0, len(l.assets))
	for _, asset := range model.AllAssetTypes() {
		if st, ok := l.assets[asset]; ok {
			out = append(out, st.pos)
		}
	}
	return out
}

// Transactions returns the retained transaction history for the asset,
// ascending by time.
func (l *PositionLedger) Transactions(asset model.AssetType) ([]model.TransactionRecord, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	st, ok := l.assets[asset]
	if !ok {
		return nil, fmt.Errorf("%w: %s", apperrors.ErrPositionNotFound, asset)
	}
	return st.txLog.Entries(), nil
}

// PriceHistory returns the retained price snapshots for the asset,
// ascending by day.
func (l *PositionLedger) PriceHistory(asset model.AssetType) ([]model.PriceSnapshot, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	st, ok := l.assets[asset]
	if !ok {
		return nil, fmt.Errorf("%w: %s", apperrors.ErrPositionNotFound, asset)
	}
	return st.snapLog.Entries(), nil
}

// PriceHistoryRange returns the retained price snapshots whose day falls
// in [start, end].
func (l *PositionLedger) PriceHistoryRange(asset model.AssetType, start, end time.Time) ([]model.PriceSnapshot, error) {
	if err := validation.ValidateDateRange(start, end); err != nil {
		return nil, err
	}

	l.mu.RLock()
	defer l.mu.RUnlock()

	st, ok := l.assets[asset]
	if !ok {
		return nil, fmt.Errorf("%w: %s", apperrors.ErrPositionNotFound, asset)
	}
	return st.snapLog.QueryRange(model.Day(start), model.Day(end)), nil
}

// Aggregate recomputes the portfolio totals over all positions.
func (l *PositionLedger) Aggregate() model.AggregateSummary {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.aggregateLocked()
}

func (l *PositionLedger) aggregateLocked() model.AggregateSummary {
	summary := Recompute(l.positionsLocked())
	summary.RefreshedAt = l.refreshedAt
	return summary
}

// Distribution returns the normalized value distribution over all
// positions with positive value, sorted descending by value.
func (l *PositionLedger) Distribution() []model.DistributionEntry {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return Distribution(l.positionsLocked())
}

// RefreshedAt returns the time of the last successful full price refresh.
func (l *PositionLedger) RefreshedAt() time.Time {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.refreshedAt
}
