package repository

import (
	"database/sql"
	"fmt"

	"github.com/avries/Asset-Ledger-Backend/internal/model"
)

// PositionRepository provides data access methods for the position table.
type PositionRepository struct {
	db *sql.DB
}

// NewPositionRepository creates a new PositionRepository with the provided database connection.
func NewPositionRepository(db *sql.DB) *PositionRepository {
	return &PositionRepository{db: db}
}

// GetPositions retrieves all stored positions.
func (r *PositionRepository) GetPositions() ([]model.Position, error) {
	query := `
		SELECT asset, quantity, avg_cost, market_price, created_at, last_updated, version
		FROM position
		ORDER BY asset ASC
	`

	rows, err := r.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to query position table: %w", err)
	}
	defer rows.Close()

	positions := []model.Position{}

	for rows.Next() {
		var assetStr, createdAtStr, lastUpdatedStr string
		var p model.Position

		err := rows.Scan(
			&assetStr,
			&p.Quantity,
			&p.AvgCost,
			&p.MarketPrice,
			&createdAtStr,
			&lastUpdatedStr,
			&p.Version,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan position table results: %w", err)
		}

		p.Asset, err = model.ParseAssetType(assetStr)
		if err != nil {
			return nil, fmt.Errorf("failed to parse stored asset: %w", err)
		}
		p.CreatedAt, err = ParseTime(createdAtStr)
		if err != nil {
			return nil, err
		}
		p.LastUpdated, err = ParseTime(lastUpdatedStr)
		if err != nil {
			return nil, err
		}

		positions = append(positions, p)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating position table: %w", err)
	}

	return positions, nil
}

// GetVersionTx reads the stored version of a position inside a
// transaction. It reports false when no row exists for the asset.
func (r *PositionRepository) GetVersionTx(tx *sql.Tx, asset model.AssetType) (int64, bool, error) {
	var version int64
	err := tx.QueryRow(`SELECT version FROM position WHERE asset = ?`, asset.String()).Scan(&version)
	if err == sql.ErrNoRows {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("failed to read position version: %w", err)
	}
	return version, true, nil
}

// UpsertTx writes the position row inside a transaction, inserting or
// replacing it.
func (r *PositionRepository) UpsertTx(tx *sql.Tx, p model.Position) error {
	query := `
		INSERT INTO position (asset, quantity, avg_cost, market_price, created_at, last_updated, version)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(asset) DO UPDATE SET
			quantity = excluded.quantity,
			avg_cost = excluded.avg_cost,
			market_price = excluded.market_price,
			last_updated = excluded.last_updated,
			version = excluded.version
	`

	_, err := tx.Exec(query,
		p.Asset.String(),
		p.Quantity,
		p.AvgCost,
		p.MarketPrice,
		FormatTime(p.CreatedAt),
		FormatTime(p.LastUpdated),
		p.Version,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert position: %w", err)
	}
	return nil
}

// DeleteTx removes the position row inside a transaction. The transaction
// and snapshot rows cascade.
func (r *PositionRepository) DeleteTx(tx *sql.Tx, asset model.AssetType) error {
	if _, err := tx.Exec(`DELETE FROM position WHERE asset = ?`, asset.String()); err != nil {
		return fmt.Errorf("failed to delete position: %w", err)
	}
	return nil
}
