package repository

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/avries/Asset-Ledger-Backend/internal/model"
)

// SnapshotRepository provides data access methods for the price_snapshot
// table, which holds the retained daily price history of every asset.
type SnapshotRepository struct {
	db *sql.DB
}

// NewSnapshotRepository creates a new SnapshotRepository with the provided database connection.
func NewSnapshotRepository(db *sql.DB) *SnapshotRepository {
	return &SnapshotRepository{db: db}
}

const snapshotColumns = `id, asset, day, price, quantity, total_value, recorded_at`

// GetSnapshots retrieves all retained price snapshots grouped by asset,
// sorted ascending by day within each group.
func (r *SnapshotRepository) GetSnapshots() (map[model.AssetType][]model.PriceSnapshot, error) {
	query := `
		SELECT ` + snapshotColumns + `
		FROM price_snapshot
		ORDER BY day ASC
	`

	rows, err := r.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to query price_snapshot table: %w", err)
	}
	defer rows.Close()

	byAsset := make(map[model.AssetType][]model.PriceSnapshot)
	for rows.Next() {
		s, err := scanSnapshot(rows)
		if err != nil {
			return nil, err
		}
		byAsset[s.Asset] = append(byAsset[s.Asset], s)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating price_snapshot table: %w", err)
	}

	return byAsset, nil
}

// GetSnapshotsInRange retrieves one asset's retained snapshots with days
// inside [startDate, endDate], sorted ascending by day.
func (r *SnapshotRepository) GetSnapshotsInRange(asset model.AssetType, startDate, endDate time.Time) ([]model.PriceSnapshot, error) {
	query := `
		SELECT ` + snapshotColumns + `
		FROM price_snapshot
		WHERE asset = ?
		AND day >= ?
		AND day <= ?
		ORDER BY day ASC
	`

	rows, err := r.db.Query(query, asset.String(), FormatDay(startDate), FormatDay(endDate))
	if err != nil {
		return nil, fmt.Errorf("failed to query price_snapshot table: %w", err)
	}
	defer rows.Close()

	snapshots := []model.PriceSnapshot{}
	for rows.Next() {
		s, err := scanSnapshot(rows)
		if err != nil {
			return nil, err
		}
		snapshots = append(snapshots, s)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating price_snapshot table: %w", err)
	}

	return snapshots, nil
}

// ReplaceTx rewrites one asset's snapshot log inside a transaction.
func (r *SnapshotRepository) ReplaceTx(tx *sql.Tx, asset model.AssetType, snapshots []model.PriceSnapshot) error {
	if _, err := tx.Exec(`DELETE FROM price_snapshot WHERE asset = ?`, asset.String()); err != nil {
		return fmt.Errorf("failed to clear price_snapshot rows: %w", err)
	}

	insert := `
		INSERT INTO price_snapshot (` + snapshotColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`
	for _, s := range snapshots {
		_, err := tx.Exec(insert,
			s.ID,
			s.Asset.String(),
			FormatDay(s.Day),
			s.Price,
			s.Quantity,
			s.TotalValue,
			FormatTime(s.RecordedAt),
		)
		if err != nil {
			return fmt.Errorf("failed to insert price_snapshot row: %w", err)
		}
	}
	return nil
}

func scanSnapshot(rows *sql.Rows) (model.PriceSnapshot, error) {
	var assetStr, dayStr, recordedAtStr string
	var s model.PriceSnapshot

	err := rows.Scan(
		&s.ID,
		&assetStr,
		&dayStr,
		&s.Price,
		&s.Quantity,
		&s.TotalValue,
		&recordedAtStr,
	)
	if err != nil {
		return model.PriceSnapshot{}, fmt.Errorf("failed to scan price_snapshot results: %w", err)
	}

	s.Asset, err = model.ParseAssetType(assetStr)
	if err != nil {
		return model.PriceSnapshot{}, fmt.Errorf("failed to parse stored asset: %w", err)
	}
	s.Day, err = ParseTime(dayStr)
	if err != nil {
		return model.PriceSnapshot{}, err
	}
	s.RecordedAt, err = ParseTime(recordedAtStr)
	if err != nil {
		return model.PriceSnapshot{}, err
	}

	return s, nil
}
