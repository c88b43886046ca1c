package repository_test

import (
	"errors"
	"testing"

	"github.com/avries/Asset-Ledger-Backend/internal/apperrors"
	"github.com/avries/Asset-Ledger-Backend/internal/model"
	"github.com/avries/Asset-Ledger-Backend/internal/repository"
	"github.com/avries/Asset-Ledger-Backend/internal/testutil"
)

// TestProviderConfigRepository_SaveAndGet tests the encrypt-store-decrypt
// round trip.
//
// WHY: The API key must come back byte-identical after a round trip
// through fernet and SQLite, and the ciphertext in the database must not
// contain the plaintext.
func TestProviderConfigRepository_SaveAndGet(t *testing.T) {
	t.Run("round-trips the configuration", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		repo := testutil.NewTestProviderRepo(t, db)

		saved, err := repo.Save(model.ProviderConfig{
			BaseURL:       "https://api.metals.example",
			APIKey:        "super-secret-key",
			QuoteCurrency: "USD",
		})
		if err != nil {
			t.Fatalf("Save() failed: %v", err)
		}
		if saved.ID == "" {
			t.Error("Expected a generated ID")
		}
		if saved.UpdatedAt.IsZero() {
			t.Error("Expected UpdatedAt to be stamped")
		}

		got, err := repo.Get()
		if err != nil {
			t.Fatalf("Get() failed: %v", err)
		}
		if got.APIKey != "super-secret-key" {
			t.Errorf("API key did not round-trip: %q", got.APIKey)
		}
		if got.BaseURL != "https://api.metals.example" || got.QuoteCurrency != "USD" {
			t.Errorf("Config mismatch: %+v", got)
		}
	})

	t.Run("stores the key encrypted at rest", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		repo := testutil.NewTestProviderRepo(t, db)

		if _, err := repo.Save(model.ProviderConfig{
			BaseURL: "https://api.metals.example",
			APIKey:  "super-secret-key",
		}); err != nil {
			t.Fatalf("Save() failed: %v", err)
		}

		var stored string
		if err := db.QueryRow(`SELECT api_key FROM provider_config`).Scan(&stored); err != nil {
			t.Fatalf("Raw query failed: %v", err)
		}
		if stored == "super-secret-key" {
			t.Error("API key stored in plaintext")
		}
	})

	t.Run("saving again replaces the previous configuration", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		repo := testutil.NewTestProviderRepo(t, db)

		repo.Save(model.ProviderConfig{BaseURL: "https://old.example", APIKey: "old"})
		repo.Save(model.ProviderConfig{BaseURL: "https://new.example", APIKey: "new"})

		var count int
		if err := db.QueryRow(`SELECT COUNT(*) FROM provider_config`).Scan(&count); err != nil {
			t.Fatalf("Count query failed: %v", err)
		}
		if count != 1 {
			t.Errorf("Expected single-row table, got %d rows", count)
		}

		got, err := repo.Get()
		if err != nil {
			t.Fatalf("Get() failed: %v", err)
		}
		if got.BaseURL != "https://new.example" || got.APIKey != "new" {
			t.Errorf("Expected replacement config, got %+v", got)
		}
	})

	t.Run("reports not found before any save", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		repo := testutil.NewTestProviderRepo(t, db)

		if _, err := repo.Get(); !errors.Is(err, apperrors.ErrProviderConfigNotFound) {
			t.Errorf("Expected ErrProviderConfigNotFound, got %v", err)
		}
	})
}

// TestNewProviderConfigRepository_InvalidKey tests key validation.
func TestNewProviderConfigRepository_InvalidKey(t *testing.T) {
	db := testutil.SetupTestDB(t)

	if _, err := repository.NewProviderConfigRepository(db, "not-a-fernet-key"); err == nil {
		t.Error("Expected error for malformed fernet key, got nil")
	}
}
