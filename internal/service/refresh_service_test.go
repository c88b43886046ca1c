package service_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/avries/Asset-Ledger-Backend/internal/apperrors"
	"github.com/avries/Asset-Ledger-Backend/internal/model"
	"github.com/avries/Asset-Ledger-Backend/internal/testutil"
)

// TestRefreshService_RefreshAll tests the happy-path refresh cycle.
//
// WHY: The cycle must fetch quotes for every held asset, apply them in
// one batch, and stamp the refresh time, so readers either see all new
// prices or none of them.
func TestRefreshService_RefreshAll(t *testing.T) {
	t.Run("updates every held asset", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		provider := testutil.NewMockQuoteProvider(map[model.AssetType]float64{
			model.Gold:   2000,
			model.Silver: 25,
		})
		svc, l := testutil.NewTestRefreshService(t, db, provider)

		l.Open(model.Gold, 10, 1900)
		l.Open(model.Silver, 100, 20)

		result, err := svc.RefreshAll(context.Background())
		if err != nil {
			t.Fatalf("RefreshAll() failed: %v", err)
		}

		if len(result.Updated) != 2 {
			t.Errorf("Expected 2 updated assets, got %d", len(result.Updated))
		}
		if len(result.Skipped) != 0 {
			t.Errorf("Expected no skipped assets, got %v", result.Skipped)
		}
		if result.RefreshedAt.IsZero() {
			t.Error("Expected refresh timestamp to be set")
		}

		gold, _ := l.Position(model.Gold)
		if gold.MarketPrice != 2000 {
			t.Errorf("Expected gold price 2000, got %v", gold.MarketPrice)
		}
		silver, _ := l.Position(model.Silver)
		if silver.MarketPrice != 25 {
			t.Errorf("Expected silver price 25, got %v", silver.MarketPrice)
		}
	})

	t.Run("empty portfolio is a no-op", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		provider := testutil.NewMockQuoteProvider(nil)
		svc, _ := testutil.NewTestRefreshService(t, db, provider)

		result, err := svc.RefreshAll(context.Background())
		if err != nil {
			t.Fatalf("RefreshAll() failed: %v", err)
		}
		if provider.QueryCount != 0 {
			t.Errorf("Expected no quote requests, got %d", provider.QueryCount)
		}
		if len(result.Updated) != 0 {
			t.Errorf("Expected no updates, got %v", result.Updated)
		}
	})

	t.Run("records a price snapshot per updated asset", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		provider := testutil.NewMockQuoteProvider(map[model.AssetType]float64{
			model.Gold: 2000,
		})
		svc, l := testutil.NewTestRefreshService(t, db, provider)

		l.Open(model.Gold, 10, 1900)

		if _, err := svc.RefreshAll(context.Background()); err != nil {
			t.Fatalf("RefreshAll() failed: %v", err)
		}

		history, err := l.PriceHistory(model.Gold)
		if err != nil {
			t.Fatalf("PriceHistory() failed: %v", err)
		}
		if len(history) != 1 || history[0].Price != 2000 {
			t.Errorf("Expected one snapshot at 2000, got %v", history)
		}
	})
}

// TestRefreshService_UnavailableQuotes tests partial availability.
//
// WHY: A provider missing one symbol must not block the rest of the
// cycle, and the skipped asset has to keep its previous price rather
// than dropping to zero.
func TestRefreshService_UnavailableQuotes(t *testing.T) {
	t.Run("skips assets without a quote", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		provider := testutil.NewMockQuoteProvider(map[model.AssetType]float64{
			model.Gold: 2000,
			// No silver price configured.
		})
		svc, l := testutil.NewTestRefreshService(t, db, provider)

		l.Open(model.Gold, 10, 1900)
		l.Open(model.Silver, 100, 20)

		result, err := svc.RefreshAll(context.Background())
		if err != nil {
			t.Fatalf("RefreshAll() failed: %v", err)
		}

		if len(result.Updated) != 1 || result.Updated[0] != model.Gold {
			t.Errorf("Expected only gold updated, got %v", result.Updated)
		}
		if len(result.Skipped) != 1 || result.Skipped[0] != model.Silver {
			t.Errorf("Expected silver skipped, got %v", result.Skipped)
		}

		silver, _ := l.Position(model.Silver)
		if silver.MarketPrice != 20 {
			t.Errorf("Skipped asset lost its previous price: %v", silver.MarketPrice)
		}
	})

	t.Run("all quotes unavailable leaves state untouched", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		provider := testutil.NewMockQuoteProvider(nil).
			WithError(apperrors.ErrQuoteUnavailable)
		svc, l := testutil.NewTestRefreshService(t, db, provider)

		l.Open(model.Gold, 10, 1900)

		result, err := svc.RefreshAll(context.Background())
		if err != nil {
			t.Fatalf("RefreshAll() failed: %v", err)
		}
		if len(result.Updated) != 0 {
			t.Errorf("Expected no updates, got %v", result.Updated)
		}

		gold, _ := l.Position(model.Gold)
		if gold.MarketPrice != 1900 {
			t.Errorf("Expected untouched price 1900, got %v", gold.MarketPrice)
		}
	})
}

// TestRefreshService_Cancellation tests in-flight cancellation.
//
// WHY: Cancellation must land before the sole commit point: a cancelled
// cycle leaves every price stale instead of applying a half-fetched set.
func TestRefreshService_Cancellation(t *testing.T) {
	t.Run("external cancel aborts before applying", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		provider := testutil.NewMockQuoteProvider(map[model.AssetType]float64{
			model.Gold: 2000,
		}).WithDelay(5 * time.Second)
		provider.Fetched = make(chan struct{}, 1)
		svc, l := testutil.NewTestRefreshService(t, db, provider)

		l.Open(model.Gold, 10, 1900)

		ctx, cancel := context.WithCancel(context.Background())
		done := make(chan error, 1)
		go func() {
			_, err := svc.RefreshAll(ctx)
			done <- err
		}()

		<-provider.Fetched
		cancel()

		err := <-done
		if err == nil {
			t.Fatal("Expected error from cancelled refresh, got nil")
		}
		if errors.Is(err, apperrors.ErrRefreshSuperseded) {
			t.Error("External cancel misreported as supersession")
		}

		gold, _ := l.Position(model.Gold)
		if gold.MarketPrice != 1900 {
			t.Errorf("Cancelled cycle applied a price: %v", gold.MarketPrice)
		}
	})

	t.Run("newer cycle supersedes the one in flight", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		provider := testutil.NewMockQuoteProvider(map[model.AssetType]float64{
			model.Gold: 2000,
		}).WithDelay(5 * time.Second)
		provider.Fetched = make(chan struct{}, 2)
		svc, l := testutil.NewTestRefreshService(t, db, provider)

		l.Open(model.Gold, 10, 1900)

		first := make(chan error, 1)
		go func() {
			_, err := svc.RefreshAll(context.Background())
			first <- err
		}()
		<-provider.Fetched

		// The second cycle cancels the first; give it a fast quote so it
		// completes.
		provider.SetDelay(0)
		provider.SetPrice(model.Gold, 2100)
		if _, err := svc.RefreshAll(context.Background()); err != nil {
			t.Fatalf("Superseding refresh failed: %v", err)
		}

		if err := <-first; !errors.Is(err, apperrors.ErrRefreshSuperseded) {
			t.Errorf("Expected ErrRefreshSuperseded, got %v", err)
		}

		gold, _ := l.Position(model.Gold)
		if gold.MarketPrice != 2100 {
			t.Errorf("Expected the newer cycle's price 2100, got %v", gold.MarketPrice)
		}
	})

	t.Run("cancel without a cycle in flight is a no-op", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		provider := testutil.NewMockQuoteProvider(nil)
		svc, _ := testutil.NewTestRefreshService(t, db, provider)

		svc.Cancel()
	})
}
