package repository

import (
	"database/sql"
	"fmt"

	"github.com/avries/Asset-Ledger-Backend/internal/apperrors"
	"github.com/avries/Asset-Ledger-Backend/internal/ledger"
)

// LedgerStore implements ledger.Store over SQLite. Every mutation batch is
// persisted in a single SQL transaction with optimistic version checks, so
// the ledger's all-or-nothing contract holds across process crashes.
type LedgerStore struct {
	db           *sql.DB
	positions    *PositionRepository
	transactions *TransactionRepository
	snapshots    *SnapshotRepository
}

// NewLedgerStore creates a LedgerStore with the provided database connection.
func NewLedgerStore(db *sql.DB) *LedgerStore {
	return &LedgerStore{
		db:           db,
		positions:    NewPositionRepository(db),
		transactions: NewTransactionRepository(db),
		snapshots:    NewSnapshotRepository(db),
	}
}

// Load restores the full persisted ledger state.
func (s *LedgerStore) Load() (ledger.State, error) {
	positions, err := s.positions.GetPositions()
	if err != nil {
		return ledger.State{}, err
	}
	transactions, err := s.transactions.GetTransactions()
	if err != nil {
		return ledger.State{}, err
	}
	snapshots, err := s.snapshots.GetSnapshots()
	if err != nil {
		return ledger.State{}, err
	}

	return ledger.State{
		Positions:    positions,
		Transactions: transactions,
		Snapshots:    snapshots,
	}, nil
}

// Commit persists a batch of mutations atomically. A version mismatch on
// any mutation rolls back the whole batch with
// apperrors.ErrConcurrencyConflict.
func (s *LedgerStore) Commit(muts []ledger.Mutation) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // rollback after commit is a no-op

	for _, mut := range muts {
		version, exists, err := s.positions.GetVersionTx(tx, mut.Asset)
		if err != nil {
			return err
		}
		current := int64(0)
		if exists {
			current = version
		}
		if current != mut.ExpectedVersion {
			return fmt.Errorf("%w: %s at version %d, expected %d",
				apperrors.ErrConcurrencyConflict, mut.Asset, current, mut.ExpectedVersion)
		}

		if mut.Remove {
			// Transaction and snapshot rows cascade with the position.
			if err := s.positions.DeleteTx(tx, mut.Asset); err != nil {
				return err
			}
			continue
		}

		if err := s.positions.UpsertTx(tx, mut.Position); err != nil {
			return err
		}
		if err := s.transactions.ReplaceTx(tx, mut.Asset, mut.Transactions); err != nil {
			return err
		}
		if err := s.snapshots.ReplaceTx(tx, mut.Asset, mut.Snapshots); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}
