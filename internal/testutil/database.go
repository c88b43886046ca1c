package testutil

import (
	"database/sql"
	"testing"

	_ "modernc.org/sqlite" // Test Package
)

// SetupTestDB creates an in-memory SQLite database for testing.
// The database is automatically cleaned up when the test completes.
//
// Example usage:
//
//	func TestSomething(t *testing.T) {
//	    db := testutil.SetupTestDB(t)
//	    // db is ready to use with schema created
//	}
func SetupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	// In-memory database (destroyed when connection closes)
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}

	if err := db.Ping(); err != nil {
		t.Fatalf("Failed to ping test database: %v", err)
	}

	pragmas := []string{
		"PRAGMA foreign_keys = ON",
		"PRAGMA timezone = 'UTC'",
		"PRAGMA journal_mode = MEMORY", // Faster for tests
	}

	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			t.Fatalf("Failed to set pragma: %v", err)
		}
	}

	if err := createTestSchema(db); err != nil {
		t.Fatalf("Failed to create test schema: %v", err)
	}

	t.Cleanup(func() {
		db.Close()
	})

	return db
}

// createTestSchema creates all database tables for testing.
// Schema is synchronized with the production migrations.
func createTestSchema(db *sql.DB) error {
	schema := `
		-- Position table
		CREATE TABLE position (
			asset VARCHAR(10) NOT NULL PRIMARY KEY,
			quantity FLOAT NOT NULL,
			avg_cost FLOAT NOT NULL,
			market_price FLOAT NOT NULL,
			created_at DATETIME NOT NULL,
			last_updated DATETIME NOT NULL,
			version INTEGER NOT NULL DEFAULT 1
		);

		-- Asset transaction table
		CREATE TABLE asset_transaction (
			id VARCHAR(36) NOT NULL PRIMARY KEY,
			asset VARCHAR(10) NOT NULL,
			timestamp DATETIME NOT NULL,
			kind VARCHAR(10) NOT NULL,
			delta_quantity FLOAT NOT NULL,
			previous_quantity FLOAT NOT NULL,
			resulting_quantity FLOAT NOT NULL,
			unit_price FLOAT NOT NULL,
			total_value FLOAT NOT NULL,
			FOREIGN KEY(asset) REFERENCES position(asset) ON DELETE CASCADE
		);

		CREATE INDEX idx_asset_transaction_asset ON asset_transaction(asset, timestamp);

		-- Price snapshot table
		CREATE TABLE price_snapshot (
			id VARCHAR(36) NOT NULL PRIMARY KEY,
			asset VARCHAR(10) NOT NULL,
			day DATE NOT NULL,
			price FLOAT NOT NULL,
			quantity FLOAT NOT NULL,
			total_value FLOAT NOT NULL,
			recorded_at DATETIME NOT NULL,
			FOREIGN KEY(asset) REFERENCES position(asset) ON DELETE CASCADE,
			CONSTRAINT unique_asset_day UNIQUE (asset, day)
		);

		-- Quote provider configuration
		CREATE TABLE provider_config (
			id VARCHAR(36) NOT NULL PRIMARY KEY,
			base_url VARCHAR(255) NOT NULL,
			api_key VARCHAR(500) NOT NULL,
			quote_currency VARCHAR(3) NOT NULL,
			updated_at DATETIME NOT NULL
		);
	`

	_, err := db.Exec(schema)
	return err
}
