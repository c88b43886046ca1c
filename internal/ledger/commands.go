package ledger

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/avries/Asset-Ledger-Backend/internal/apperrors"
	"github.com/avries/Asset-Ledger-Backend/internal/model"
	"github.com/avries/Asset-Ledger-Backend/internal/validation"
)

// Open creates a position for the asset with the unit price as its initial
// weighted-average cost. It fails with apperrors.ErrPositionExists when a
// position with a nonzero quantity is already held; callers that want
// open-or-increase semantics should call Increase.
func (l *PositionLedger) Open(asset model.AssetType, quantity, unitPrice float64) (model.TransactionRecord, error) {
	if err := validation.ValidateQuantity(quantity); err != nil {
		return model.TransactionRecord{}, err
	}
	if err := validation.ValidatePrice(unitPrice); err != nil {
		return model.TransactionRecord{}, err
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if st, ok := l.assets[asset]; ok && st.pos.Quantity > 0 {
		return model.TransactionRecord{}, fmt.Errorf("%w: %s", apperrors.ErrPositionExists, asset)
	}
	return l.openLocked(asset, quantity, unitPrice)
}

// Increase adds quantity to the asset's position at the given unit price,
// recomputing the weighted-average cost basis. When no position is held,
// or the held quantity is zero, it behaves as Open.
func (l *PositionLedger) Increase(asset model.AssetType, quantity, unitPrice float64) (model.TransactionRecord, error) {
	if err := validation.ValidateQuantity(quantity); err != nil {
		return model.TransactionRecord{}, err
	}
	if err := validation.ValidatePrice(unitPrice); err != nil {
		return model.TransactionRecord{}, err
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	st, ok := l.assets[asset]
	if !ok || st.pos.Quantity == 0 {
		return l.openLocked(asset, quantity, unitPrice)
	}

	now := l.now()
	pos := st.pos
	newQuantity := pos.Quantity + quantity
	pos.AvgCost = (pos.AvgCost*pos.Quantity + unitPrice*quantity) / newQuantity
	pos.Quantity = newQuantity
	pos.LastUpdated = now

	rec := model.TransactionRecord{
		ID:                uuid.NewString(),
		Asset:             asset,
		Timestamp:         now,
		Kind:              model.TransactionIncrease,
		DeltaQuantity:     quantity,
		PreviousQuantity:  st.pos.Quantity,
		ResultingQuantity: newQuantity,
		UnitPrice:         unitPrice,
		TotalValue:        newQuantity * unitPrice,
	}

	if err := l.commitLocked(st, pos, rec, nil); err != nil {
		return model.TransactionRecord{}, err
	}
	return rec, nil
}

// openLocked creates or re-founds a position and appends the initial-kind
// record. A pre-existing zero-quantity position keeps its identity (and
// histories) but starts a fresh holding period with a fresh cost basis.
func (l *PositionLedger) openLocked(asset model.AssetType, quantity, unitPrice float64) (model.TransactionRecord, error) {
	now := l.now()

	st, ok := l.assets[asset]
	if !ok {
		st = &assetState{
			pos:     model.Position{Asset: asset, CreatedAt: now},
			txLog:   newTransactionLog(),
			snapLog: newSnapshotLog(),
		}
	}

	pos := st.pos
	pos.Quantity = quantity
	pos.AvgCost = unitPrice
	pos.LastUpdated = now
	if pos.MarketPrice == 0 {
		// No quote seen yet; the purchase price is the best estimate.
		pos.MarketPrice = unitPrice
	}

	rec := model.TransactionRecord{
		ID:                uuid.NewString(),
		Asset:             asset,
		Timestamp:         now,
		Kind:              model.TransactionInitial,
		DeltaQuantity:     quantity,
		PreviousQuantity:  0,
		ResultingQuantity: quantity,
		UnitPrice:         unitPrice,
		TotalValue:        quantity * unitPrice,
	}

	if err := l.commitLocked(st, pos, rec, nil); err != nil {
		return model.TransactionRecord{}, err
	}
	if !ok {
		l.assets[asset] = st
	}
	return rec, nil
}

// Decrease removes quantity from the asset's position. The cost basis of
// the remaining units is not recalculated (strict average-cost method).
// Reaching exactly zero clears the stored cost basis so a later reopen
// starts fresh.
func (l *PositionLedger) Decrease(asset model.AssetType, quantity float64) (model.TransactionRecord, error) {
	if err := validation.ValidateQuantity(quantity); err != nil {
		return model.TransactionRecord{}, err
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	st, ok := l.assets[asset]
	if !ok {
		return model.TransactionRecord{}, fmt.Errorf("%w: %s", apperrors.ErrPositionNotFound, asset)
	}
	if quantity > st.pos.Quantity {
		return model.TransactionRecord{}, fmt.Errorf("%w: %v held, %v requested",
			apperrors.ErrInsufficientQuantity, st.pos.Quantity, quantity)
	}

	now := l.now()
	pos := st.pos
	pos.Quantity -= quantity
	pos.LastUpdated = now
	if pos.Quantity == 0 {
		pos.AvgCost = 0
	}

	unitPrice := st.pos.MarketPrice
	if unitPrice == 0 {
		unitPrice = st.pos.AvgCost
	}

	rec := model.TransactionRecord{
		ID:                uuid.NewString(),
		Asset:             asset,
		Timestamp:         now,
		Kind:              model.TransactionDecrease,
		DeltaQuantity:     quantity,
		PreviousQuantity:  st.pos.Quantity,
		ResultingQuantity: pos.Quantity,
		UnitPrice:         unitPrice,
		TotalValue:        pos.Quantity * unitPrice,
	}

	if err := l.commitLocked(st, pos, rec, nil); err != nil {
		return model.TransactionRecord{}, err
	}
	return rec, nil
}

// Adjust corrects the asset's quantity to target without touching the
// weighted-average cost basis. The correction is recorded as an
// adjust-kind transaction carrying the absolute quantity change.
func (l *PositionLedger) Adjust(asset model.AssetType, target float64) (model.TransactionRecord, error) {
	if err := validation.ValidateTargetQuantity(target); err != nil {
		return model.TransactionRecord{}, err
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	st, ok := l.assets[asset]
	if !ok {
		return model.TransactionRecord{}, fmt.Errorf("%w: %s", apperrors.ErrPositionNotFound, asset)
	}
	if target == st.pos.Quantity {
		return model.TransactionRecord{}, fmt.Errorf("%w: adjustment target equals held quantity", apperrors.ErrInvalidQuantity)
	}

	now := l.now()
	pos := st.pos
	delta := target - pos.Quantity
	if delta < 0 {
		delta = -delta
	}
	pos.Quantity = target
	pos.LastUpdated = now
	if pos.Quantity == 0 {
		pos.AvgCost = 0
	}

	unitPrice := st.pos.MarketPrice
	if unitPrice == 0 {
		unitPrice = st.pos.AvgCost
	}

	rec := model.TransactionRecord{
		ID:                uuid.NewString(),
		Asset:             asset,
		Timestamp:         now,
		Kind:              model.TransactionAdjust,
		DeltaQuantity:     delta,
		PreviousQuantity:  st.pos.Quantity,
		ResultingQuantity: target,
		UnitPrice:         unitPrice,
		TotalValue:        target * unitPrice,
	}

	if err := l.commitLocked(st, pos, rec, nil); err != nil {
		return model.TransactionRecord{}, err
	}
	return rec, nil
}

// SetMarketPrice updates the asset's market price and upserts the price
// snapshot for today. It does not append a transaction.
func (l *PositionLedger) SetMarketPrice(asset model.AssetType, price float64) error {
	if err := validation.ValidateMarketPrice(price); err != nil {
		return err
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	st, ok := l.assets[asset]
	if !ok {
		return fmt.Errorf("%w: %s", apperrors.ErrPositionNotFound, asset)
	}

	now := l.now()
	pos := st.pos
	pos.MarketPrice = price
	pos.LastUpdated = now

	snap := l.snapshotFor(st, pos, now)
	return l.commitLocked(st, pos, model.TransactionRecord{}, &snap)
}

// RefreshAll applies one refresh cycle's price map in a single atomic
// commit. Assets without a position or without a usable price are skipped;
// a skipped asset keeps its previous price. The returned slice lists the
// assets that were updated.
func (l *PositionLedger) RefreshAll(prices map[model.AssetType]float64) ([]model.AssetType, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()

	type staged struct {
		st   *assetState
		pos  model.Position
		snap model.PriceSnapshot
	}

	var applied []model.AssetType
	var stagedMuts []staged
	var muts []Mutation

	for _, asset := range model.AllAssetTypes() {
		price, ok := prices[asset]
		if !ok {
			continue
		}
		st, ok := l.assets[asset]
		if !ok {
			continue
		}
		if err := validation.ValidateMarketPrice(price); err != nil {
			// A bad quote is treated like an unavailable one.
			continue
		}

		pos := st.pos
		pos.MarketPrice = price
		pos.LastUpdated = now
		snap := l.snapshotFor(st, pos, now)

		snapLog := st.snapLog.Clone()
		snapLog.UpsertForKey(sameDay(snap), snap)

		pos.Version = st.pos.Version + 1
		muts = append(muts, Mutation{
			Asset:           asset,
			ExpectedVersion: st.pos.Version,
			Position:        pos,
			Transactions:    st.txLog.Entries(),
			Snapshots:       snapLog.Entries(),
		})
		stagedMuts = append(stagedMuts, staged{st: st, pos: pos, snap: snap})
		applied = append(applied, asset)
	}

	if len(muts) == 0 {
		return nil, nil
	}

	if err := l.store.Commit(muts); err != nil {
		return nil, fmt.Errorf("failed to commit refresh cycle: %w", err)
	}

	for _, s := range stagedMuts {
		s.st.pos = s.pos
		s.st.snapLog.UpsertForKey(sameDay(s.snap), s.snap)
	}
	l.refreshedAt = now
	l.notifyLocked()

	return applied, nil
}

// Remove deletes the position and both of its histories.
func (l *PositionLedger) Remove(asset model.AssetType) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	st, ok := l.assets[asset]
	if !ok {
		return fmt.Errorf("%w: %s", apperrors.ErrPositionNotFound, asset)
	}

	mut := Mutation{
		Asset:           asset,
		Remove:          true,
		ExpectedVersion: st.pos.Version,
	}
	if err := l.store.Commit([]Mutation{mut}); err != nil {
		return fmt.Errorf("failed to remove position: %w", err)
	}

	delete(l.assets, asset)
	l.notifyLocked()
	return nil
}

// snapshotFor builds today's snapshot for the staged position, reusing the
// existing snapshot ID when one was already taken today so the upsert
// replaces in place.
func (l *PositionLedger) snapshotFor(st *assetState, pos model.Position, at time.Time) model.PriceSnapshot {
	day := model.Day(at)
	snap := model.PriceSnapshot{
		ID:         uuid.NewString(),
		Asset:      pos.Asset,
		Day:        day,
		Price:      pos.MarketPrice,
		Quantity:   pos.Quantity,
		TotalValue: pos.Quantity * pos.MarketPrice,
		RecordedAt: at,
	}
	for _, existing := range st.snapLog.Query(sameDay(snap)) {
		snap.ID = existing.ID
	}
	return snap
}

func sameDay(snap model.PriceSnapshot) func(model.PriceSnapshot) bool {
	return func(other model.PriceSnapshot) bool {
		return other.Day.Equal(snap.Day)
	}
}

// commitLocked stages one asset's mutation, persists it, and swaps it into
// memory on success. rec is appended to the transaction log unless it is
// the zero record; snap, when non-nil, is upserted into the snapshot log.
func (l *PositionLedger) commitLocked(st *assetState, pos model.Position, rec model.TransactionRecord, snap *model.PriceSnapshot) error {
	txLog := st.txLog
	if rec.ID != "" {
		txLog = st.txLog.Clone()
		txLog.Append(rec)
	}

	snapLog := st.snapLog
	if snap != nil {
		snapLog = st.snapLog.Clone()
		snapLog.UpsertForKey(sameDay(*snap), *snap)
	}

	mut := Mutation{
		Asset:           pos.Asset,
		ExpectedVersion: st.pos.Version,
		Position:        pos,
		Transactions:    txLog.Entries(),
		Snapshots:       snapLog.Entries(),
	}
	mut.Position.Version = st.pos.Version + 1

	if err := l.store.Commit([]Mutation{mut}); err != nil {
		return fmt.Errorf("failed to commit ledger mutation: %w", err)
	}

	st.pos = mut.Position
	st.txLog = txLog
	st.snapLog = snapLog
	l.notifyLocked()
	return nil
}
