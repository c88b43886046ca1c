package testutil

import (
	"database/sql"
	"testing"

	"github.com/google/uuid"

	"github.com/avries/Asset-Ledger-Backend/internal/ledger"
	"github.com/avries/Asset-Ledger-Backend/internal/repository"
	"github.com/avries/Asset-Ledger-Backend/internal/service"
)

// NewTestLedger creates a PositionLedger backed by the given test
// database, loading whatever state the test has seeded.
func NewTestLedger(t *testing.T, db *sql.DB) *ledger.PositionLedger {
	t.Helper()

	l, err := ledger.New(repository.NewLedgerStore(db))
	if err != nil {
		t.Fatalf("Failed to create test ledger: %v", err)
	}
	return l
}

// NewTestRefreshService creates a RefreshService over a fresh test
// ledger and the given quote provider.
func NewTestRefreshService(t *testing.T, db *sql.DB, provider *MockQuoteProvider) (*service.RefreshService, *ledger.PositionLedger) {
	t.Helper()

	l := NewTestLedger(t, db)
	return service.NewRefreshService(l, provider), l
}

// NewTestSystemService creates a SystemService over a test database.
func NewTestSystemService(t *testing.T, db *sql.DB) *service.SystemService {
	t.Helper()
	return service.NewSystemService(db)
}

// TestFernetKey is a fixed, valid fernet key for tests. It is 32 bytes
// of zeros, base64url-encoded.
const TestFernetKey = "AAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAA="

// NewTestProviderRepo creates a ProviderConfigRepository using the fixed
// test encryption key.
func NewTestProviderRepo(t *testing.T, db *sql.DB) *repository.ProviderConfigRepository {
	t.Helper()

	repo, err := repository.NewProviderConfigRepository(db, TestFernetKey)
	if err != nil {
		t.Fatalf("Failed to create test provider repository: %v", err)
	}
	return repo
}

// MakeID generates a UUID string for use in tests.
//
// Example usage:
//
//	id := testutil.MakeID()
func MakeID() string {
	return uuid.New().String()
}
