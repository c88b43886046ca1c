package ledger

import "github.com/avries/Asset-Ledger-Backend/internal/model"

// State is the full persisted ledger state, loaded once at startup.
// Transactions and snapshots are keyed by asset and ordered ascending by
// time, ready to seed the retained logs.
type State struct {
	Positions    []model.Position
	Transactions map[model.AssetType][]model.TransactionRecord
	Snapshots    map[model.AssetType][]model.PriceSnapshot
}

// Mutation describes the complete post-mutation state of one asset: the
// position and the full contents of both retained logs (already trimmed).
// The store persists a batch of mutations in a single transaction, which
// gives the ledger its all-or-nothing commit semantics.
type Mutation struct {
	Asset model.AssetType

	// Remove drops the position and both of its histories.
	Remove bool

	// ExpectedVersion is the position version the mutation was computed
	// from, zero for a newly opened position. A store that finds a
	// different version on disk must fail the whole batch with
	// apperrors.ErrConcurrencyConflict.
	ExpectedVersion int64

	Position     model.Position
	Transactions []model.TransactionRecord
	Snapshots    []model.PriceSnapshot
}

// Store is the persistence collaborator. The ledger is agnostic to the
// storage technology; the repository package implements Store over sqlite.
type Store interface {
	// Load restores the persisted state.
	Load() (State, error)

	// Commit atomically persists a batch of mutations: either every
	// mutation is applied or none is.
	Commit(muts []Mutation) error
}
