package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/avries/Asset-Ledger-Backend/internal/ledger"
	"github.com/avries/Asset-Ledger-Backend/internal/model"
	"github.com/avries/Asset-Ledger-Backend/internal/testutil"
)

func setupPortfolioHandler(t *testing.T) (*PortfolioHandler, *ledger.PositionLedger) {
	t.Helper()
	db := testutil.SetupTestDB(t)
	l := testutil.NewTestLedger(t, db)
	return NewPortfolioHandler(l), l
}

func TestPortfolioHandler_Summary(t *testing.T) {
	t.Run("returns aggregate totals", func(t *testing.T) {
		handler, l := setupPortfolioHandler(t)
		l.Open(model.Gold, 10, 100)
		l.SetMarketPrice(model.Gold, 150)

		req := httptest.NewRequest(http.MethodGet, "/api/portfolio/summary", nil)
		w := httptest.NewRecorder()

		handler.Summary(w, req)

		if w.Code != http.StatusOK {
			t.Fatalf("Expected 200, got %d: %s", w.Code, w.Body.String())
		}

		var summary model.AggregateSummary
		testutil.DecodeJSONResponse(t, w, &summary)

		if summary.TotalValue != 1500 {
			t.Errorf("Expected total value 1500, got %v", summary.TotalValue)
		}
		if summary.TotalInvestment != 1000 {
			t.Errorf("Expected total investment 1000, got %v", summary.TotalInvestment)
		}
		if summary.ProfitLoss != 500 {
			t.Errorf("Expected P/L 500, got %v", summary.ProfitLoss)
		}
	})

	t.Run("empty portfolio returns a zero summary", func(t *testing.T) {
		handler, _ := setupPortfolioHandler(t)

		req := httptest.NewRequest(http.MethodGet, "/api/portfolio/summary", nil)
		w := httptest.NewRecorder()

		handler.Summary(w, req)

		if w.Code != http.StatusOK {
			t.Fatalf("Expected 200, got %d: %s", w.Code, w.Body.String())
		}

		var summary model.AggregateSummary
		testutil.DecodeJSONResponse(t, w, &summary)
		if summary.PositionCount != 0 {
			t.Errorf("Expected zero positions, got %d", summary.PositionCount)
		}
	})
}

func TestPortfolioHandler_Distribution(t *testing.T) {
	t.Run("returns normalized shares with display strings", func(t *testing.T) {
		handler, l := setupPortfolioHandler(t)
		l.Open(model.Gold, 7, 100)   // value 700
		l.Open(model.Silver, 3, 100) // value 300

		req := httptest.NewRequest(http.MethodGet, "/api/portfolio/distribution", nil)
		w := httptest.NewRecorder()

		handler.Distribution(w, req)

		if w.Code != http.StatusOK {
			t.Fatalf("Expected 200, got %d: %s", w.Code, w.Body.String())
		}

		var entries []DistributionEntryResponse
		testutil.DecodeJSONResponse(t, w, &entries)

		if len(entries) != 2 {
			t.Fatalf("Expected 2 entries, got %d", len(entries))
		}
		if entries[0].Asset != model.Gold || entries[0].Percent != 70 {
			t.Errorf("Unexpected first entry: %+v", entries[0])
		}
		if entries[0].DisplayPercent != "70.00%" {
			t.Errorf("Expected display '70.00%%', got %q", entries[0].DisplayPercent)
		}
	})

	t.Run("tiny shares display as a floor marker", func(t *testing.T) {
		handler, l := setupPortfolioHandler(t)
		l.Open(model.Gold, 1, 1000000) // dominates the portfolio
		l.Open(model.Silver, 1, 1)     // ~0.0001%

		req := httptest.NewRequest(http.MethodGet, "/api/portfolio/distribution", nil)
		w := httptest.NewRecorder()

		handler.Distribution(w, req)

		var entries []DistributionEntryResponse
		testutil.DecodeJSONResponse(t, w, &entries)

		if len(entries) != 2 {
			t.Fatalf("Expected 2 entries, got %d", len(entries))
		}
		if entries[1].DisplayPercent != "<0.01%" {
			t.Errorf("Expected '<0.01%%', got %q", entries[1].DisplayPercent)
		}
	})

	t.Run("empty portfolio returns an empty list", func(t *testing.T) {
		handler, _ := setupPortfolioHandler(t)

		req := httptest.NewRequest(http.MethodGet, "/api/portfolio/distribution", nil)
		w := httptest.NewRecorder()

		handler.Distribution(w, req)

		if w.Code != http.StatusOK {
			t.Fatalf("Expected 200, got %d: %s", w.Code, w.Body.String())
		}

		var entries []DistributionEntryResponse
		testutil.DecodeJSONResponse(t, w, &entries)
		if len(entries) != 0 {
			t.Errorf("Expected no entries, got %d", len(entries))
		}
	})
}
