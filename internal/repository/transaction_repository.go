package repository

import (
	"database/sql"
	"fmt"

	"github.com/avries/Asset-Ledger-Backend/internal/model"
)

// TransactionRepository provides data access methods for the
// asset_transaction table, which holds the retained transaction log of
// every asset.
type TransactionRepository struct {
	db *sql.DB
}

// NewTransactionRepository creates a new TransactionRepository with the provided database connection.
func NewTransactionRepository(db *sql.DB) *TransactionRepository {
	return &TransactionRepository{db: db}
}

const transactionColumns = `id, asset, timestamp, kind, delta_quantity, previous_quantity, resulting_quantity, unit_price, total_value`

// GetTransactions retrieves all retained transactions grouped by asset,
// sorted ascending by timestamp within each group.
func (r *TransactionRepository) GetTransactions() (map[model.AssetType][]model.TransactionRecord, error) {
	query := `
		SELECT ` + transactionColumns + `
		FROM asset_transaction
		ORDER BY timestamp ASC
	`

	rows, err := r.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to query asset_transaction table: %w", err)
	}
	defer rows.Close()

	byAsset := make(map[model.AssetType][]model.TransactionRecord)
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, err
		}
		byAsset[t.Asset] = append(byAsset[t.Asset], t)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating asset_transaction table: %w", err)
	}

	return byAsset, nil
}

// GetTransactionsForAsset retrieves the retained transaction log of one
// asset, sorted ascending by timestamp.
func (r *TransactionRepository) GetTransactionsForAsset(asset model.AssetType) ([]model.TransactionRecord, error) {
	query := `
		SELECT ` + transactionColumns + `
		FROM asset_transaction
		WHERE asset = ?
		ORDER BY timestamp ASC
	`

	rows, err := r.db.Query(query, asset.String())
	if err != nil {
		return nil, fmt.Errorf("failed to query asset_transaction table: %w", err)
	}
	defer rows.Close()

	records := []model.TransactionRecord{}
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, t)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating asset_transaction table: %w", err)
	}

	return records, nil
}

// ReplaceTx rewrites one asset's transaction log inside a transaction.
// The retained log is small by construction, so a delete-and-insert keeps
// the stored log byte-equal to the in-memory one.
func (r *TransactionRepository) ReplaceTx(tx *sql.Tx, asset model.AssetType, records []model.TransactionRecord) error {
	if _, err := tx.Exec(`DELETE FROM asset_transaction WHERE asset = ?`, asset.String()); err != nil {
		return fmt.Errorf("failed to clear asset_transaction rows: %w", err)
	}

	insert := `
		INSERT INTO asset_transaction (` + transactionColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	for _, t := range records {
		_, err := tx.Exec(insert,
			t.ID,
			t.Asset.String(),
			FormatTime(t.Timestamp),
			string(t.Kind),
			t.DeltaQuantity,
			t.PreviousQuantity,
			t.ResultingQuantity,
			t.UnitPrice,
			t.TotalValue,
		)
		if err != nil {
			return fmt.Errorf("failed to insert asset_transaction row: %w", err)
		}
	}
	return nil
}

func scanTransaction(rows *sql.Rows) (model.TransactionRecord, error) {
	var assetStr, timestampStr, kindStr string
	var t model.TransactionRecord

	err := rows.Scan(
		&t.ID,
		&assetStr,
		&timestampStr,
		&kindStr,
		&t.DeltaQuantity,
		&t.PreviousQuantity,
		&t.ResultingQuantity,
		&t.UnitPrice,
		&t.TotalValue,
	)
	if err != nil {
		return model.TransactionRecord{}, fmt.Errorf("failed to scan asset_transaction results: %w", err)
	}

	t.Asset, err = model.ParseAssetType(assetStr)
	if err != nil {
		return model.TransactionRecord{}, fmt.Errorf("failed to parse stored asset: %w", err)
	}
	t.Kind = model.TransactionKind(kindStr)
	t.Timestamp, err = ParseTime(timestampStr)
	if err != nil {
		return model.TransactionRecord{}, err
	}

	return t, nil
}
