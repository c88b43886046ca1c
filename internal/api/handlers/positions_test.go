package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/avries/Asset-Ledger-Backend/internal/ledger"
	"github.com/avries/Asset-Ledger-Backend/internal/model"
	"github.com/avries/Asset-Ledger-Backend/internal/testutil"
)

func goldParams() map[string]string {
	return map[string]string{"asset": "gold"}
}

func setupPositionHandler(t *testing.T) (*PositionHandler, *ledger.PositionLedger) {
	t.Helper()
	db := testutil.SetupTestDB(t)
	l := testutil.NewTestLedger(t, db)
	return NewPositionHandler(l), l
}

func TestPositionHandler_Buy(t *testing.T) {
	t.Run("first purchase opens the position", func(t *testing.T) {
		handler, l := setupPositionHandler(t)

		req := testutil.NewJSONRequestWithURLParams(t, http.MethodPost, "/api/position/gold/buy",
			BuyRequest{Quantity: 10, UnitPrice: floatPtr(1900)}, goldParams())
		w := httptest.NewRecorder()

		handler.Buy(w, req)

		if w.Code != http.StatusCreated {
			t.Fatalf("Expected 201, got %d: %s", w.Code, w.Body.String())
		}

		var record model.TransactionRecord
		testutil.DecodeJSONResponse(t, w, &record)
		if record.Kind != model.TransactionInitial {
			t.Errorf("Expected initial kind, got %q", record.Kind)
		}

		position, err := l.Position(model.Gold)
		if err != nil {
			t.Fatalf("Position() failed: %v", err)
		}
		if position.Quantity != 10 || position.AvgCost != 1900 {
			t.Errorf("Unexpected position: qty=%v avgCost=%v", position.Quantity, position.AvgCost)
		}
	})

	t.Run("later purchases blend the cost basis", func(t *testing.T) {
		handler, l := setupPositionHandler(t)
		l.Open(model.Gold, 10, 100)

		req := testutil.NewJSONRequestWithURLParams(t, http.MethodPost, "/api/position/gold/buy",
			BuyRequest{Quantity: 20, UnitPrice: floatPtr(175)}, goldParams())
		w := httptest.NewRecorder()

		handler.Buy(w, req)

		if w.Code != http.StatusCreated {
			t.Fatalf("Expected 201, got %d: %s", w.Code, w.Body.String())
		}

		position, _ := l.Position(model.Gold)
		if position.AvgCost != 150 {
			t.Errorf("Expected blended avg cost 150, got %v", position.AvgCost)
		}
	})

	t.Run("omitted unit price falls back to market price", func(t *testing.T) {
		handler, l := setupPositionHandler(t)
		l.Open(model.Gold, 10, 100)
		l.SetMarketPrice(model.Gold, 120)

		req := testutil.NewJSONRequestWithURLParams(t, http.MethodPost, "/api/position/gold/buy",
			BuyRequest{Quantity: 10}, goldParams())
		w := httptest.NewRecorder()

		handler.Buy(w, req)

		if w.Code != http.StatusCreated {
			t.Fatalf("Expected 201, got %d: %s", w.Code, w.Body.String())
		}

		position, _ := l.Position(model.Gold)
		if position.AvgCost != 110 {
			t.Errorf("Expected avg cost 110 from market-price fallback, got %v", position.AvgCost)
		}
	})

	t.Run("omitted unit price without a position is rejected", func(t *testing.T) {
		handler, _ := setupPositionHandler(t)

		req := testutil.NewJSONRequestWithURLParams(t, http.MethodPost, "/api/position/gold/buy",
			BuyRequest{Quantity: 10}, goldParams())
		w := httptest.NewRecorder()

		handler.Buy(w, req)

		if w.Code != http.StatusNotFound {
			t.Errorf("Expected 404, got %d: %s", w.Code, w.Body.String())
		}
	})

	t.Run("invalid quantity returns 400", func(t *testing.T) {
		handler, _ := setupPositionHandler(t)

		req := testutil.NewJSONRequestWithURLParams(t, http.MethodPost, "/api/position/gold/buy",
			BuyRequest{Quantity: -5, UnitPrice: floatPtr(1900)}, goldParams())
		w := httptest.NewRecorder()

		handler.Buy(w, req)

		if w.Code != http.StatusBadRequest {
			t.Errorf("Expected 400, got %d: %s", w.Code, w.Body.String())
		}
	})

	t.Run("malformed body returns 400", func(t *testing.T) {
		handler, _ := setupPositionHandler(t)

		req := testutil.NewRequestWithURLParams(http.MethodPost, "/api/position/gold/buy", goldParams())
		w := httptest.NewRecorder()

		handler.Buy(w, req)

		if w.Code != http.StatusBadRequest {
			t.Errorf("Expected 400, got %d: %s", w.Code, w.Body.String())
		}
	})
}

func TestPositionHandler_Sell(t *testing.T) {
	t.Run("reduces the position", func(t *testing.T) {
		handler, l := setupPositionHandler(t)
		l.Open(model.Gold, 30, 150)

		req := testutil.NewJSONRequestWithURLParams(t, http.MethodPost, "/api/position/gold/sell",
			SellRequest{Quantity: 10}, goldParams())
		w := httptest.NewRecorder()

		handler.Sell(w, req)

		if w.Code != http.StatusCreated {
			t.Fatalf("Expected 201, got %d: %s", w.Code, w.Body.String())
		}

		position, _ := l.Position(model.Gold)
		if position.Quantity != 20 {
			t.Errorf("Expected quantity 20, got %v", position.Quantity)
		}
	})

	t.Run("overselling returns 409", func(t *testing.T) {
		handler, l := setupPositionHandler(t)
		l.Open(model.Gold, 5, 150)

		req := testutil.NewJSONRequestWithURLParams(t, http.MethodPost, "/api/position/gold/sell",
			SellRequest{Quantity: 10}, goldParams())
		w := httptest.NewRecorder()

		handler.Sell(w, req)

		if w.Code != http.StatusConflict {
			t.Errorf("Expected 409, got %d: %s", w.Code, w.Body.String())
		}
	})

	t.Run("unknown position returns 404", func(t *testing.T) {
		handler, _ := setupPositionHandler(t)

		req := testutil.NewJSONRequestWithURLParams(t, http.MethodPost, "/api/position/gold/sell",
			SellRequest{Quantity: 10}, goldParams())
		w := httptest.NewRecorder()

		handler.Sell(w, req)

		if w.Code != http.StatusNotFound {
			t.Errorf("Expected 404, got %d: %s", w.Code, w.Body.String())
		}
	})
}

func TestPositionHandler_Queries(t *testing.T) {
	t.Run("lists all positions with metadata", func(t *testing.T) {
		handler, l := setupPositionHandler(t)
		l.Open(model.Gold, 10, 1900)
		l.Open(model.Silver, 100, 20)

		req := httptest.NewRequest(http.MethodGet, "/api/position/", nil)
		w := httptest.NewRecorder()

		handler.Positions(w, req)

		if w.Code != http.StatusOK {
			t.Fatalf("Expected 200, got %d: %s", w.Code, w.Body.String())
		}

		var response []PositionResponse
		testutil.DecodeJSONResponse(t, w, &response)

		if len(response) != 2 {
			t.Fatalf("Expected 2 positions, got %d", len(response))
		}
		if response[0].DisplayName != "Gold" || response[0].Unit != "troy ounce" {
			t.Errorf("Missing asset metadata: %+v", response[0])
		}
		if response[0].MarketValue != 19000 {
			t.Errorf("Expected market value 19000, got %v", response[0].MarketValue)
		}
	})

	t.Run("returns retained transactions", func(t *testing.T) {
		handler, l := setupPositionHandler(t)
		l.Open(model.Gold, 10, 1900)
		l.Increase(model.Gold, 5, 2000)

		req := testutil.NewRequestWithURLParams(http.MethodGet, "/api/position/gold/transactions", goldParams())
		w := httptest.NewRecorder()

		handler.Transactions(w, req)

		if w.Code != http.StatusOK {
			t.Fatalf("Expected 200, got %d: %s", w.Code, w.Body.String())
		}

		var records []model.TransactionRecord
		testutil.DecodeJSONResponse(t, w, &records)
		if len(records) != 2 {
			t.Errorf("Expected 2 records, got %d", len(records))
		}
	})

	t.Run("price history honors start and end", func(t *testing.T) {
		handler, l := setupPositionHandler(t)
		l.Open(model.Gold, 10, 1900)
		l.SetMarketPrice(model.Gold, 2000)

		req := testutil.NewRequestWithURLParams(http.MethodGet,
			"/api/position/gold/prices?start=2000-01-01&end=2100-01-01", goldParams())
		w := httptest.NewRecorder()

		handler.Prices(w, req)

		if w.Code != http.StatusOK {
			t.Fatalf("Expected 200, got %d: %s", w.Code, w.Body.String())
		}

		var snapshots []model.PriceSnapshot
		testutil.DecodeJSONResponse(t, w, &snapshots)
		if len(snapshots) != 1 {
			t.Errorf("Expected 1 snapshot, got %d", len(snapshots))
		}
	})

	t.Run("inverted date range returns 400", func(t *testing.T) {
		handler, l := setupPositionHandler(t)
		l.Open(model.Gold, 10, 1900)

		req := testutil.NewRequestWithURLParams(http.MethodGet,
			"/api/position/gold/prices?start=2100-01-01&end=2000-01-01", goldParams())
		w := httptest.NewRecorder()

		handler.Prices(w, req)

		if w.Code != http.StatusBadRequest {
			t.Errorf("Expected 400, got %d: %s", w.Code, w.Body.String())
		}
	})

	t.Run("invalid days parameter returns 400", func(t *testing.T) {
		handler, l := setupPositionHandler(t)
		l.Open(model.Gold, 10, 1900)

		req := testutil.NewRequestWithURLParams(http.MethodGet,
			"/api/position/gold/prices?days=zero", goldParams())
		w := httptest.NewRecorder()

		handler.Prices(w, req)

		if w.Code != http.StatusBadRequest {
			t.Errorf("Expected 400, got %d: %s", w.Code, w.Body.String())
		}
	})
}

func TestPositionHandler_Delete(t *testing.T) {
	t.Run("removes the position", func(t *testing.T) {
		handler, l := setupPositionHandler(t)
		l.Open(model.Gold, 10, 1900)

		req := testutil.NewRequestWithURLParams(http.MethodDelete, "/api/position/gold", goldParams())
		w := httptest.NewRecorder()

		handler.Delete(w, req)

		if w.Code != http.StatusNoContent {
			t.Fatalf("Expected 204, got %d: %s", w.Code, w.Body.String())
		}
		if _, err := l.Position(model.Gold); err == nil {
			t.Error("Position still present after delete")
		}
	})

	t.Run("unknown position returns 404", func(t *testing.T) {
		handler, _ := setupPositionHandler(t)

		req := testutil.NewRequestWithURLParams(http.MethodDelete, "/api/position/gold", goldParams())
		w := httptest.NewRecorder()

		handler.Delete(w, req)

		if w.Code != http.StatusNotFound {
			t.Errorf("Expected 404, got %d: %s", w.Code, w.Body.String())
		}
	})
}

func TestPositionHandler_RecordPrice(t *testing.T) {
	t.Run("updates the market price", func(t *testing.T) {
		handler, l := setupPositionHandler(t)
		l.Open(model.Gold, 10, 1900)

		req := testutil.NewJSONRequestWithURLParams(t, http.MethodPost, "/api/position/gold/price",
			PriceRequest{Price: 2000}, goldParams())
		w := httptest.NewRecorder()

		handler.RecordPrice(w, req)

		if w.Code != http.StatusOK {
			t.Fatalf("Expected 200, got %d: %s", w.Code, w.Body.String())
		}

		var response PositionResponse
		testutil.DecodeJSONResponse(t, w, &response)
		if response.MarketPrice != 2000 {
			t.Errorf("Expected market price 2000, got %v", response.MarketPrice)
		}
	})

	t.Run("non-positive price returns 400", func(t *testing.T) {
		handler, l := setupPositionHandler(t)
		l.Open(model.Gold, 10, 1900)

		req := testutil.NewJSONRequestWithURLParams(t, http.MethodPost, "/api/position/gold/price",
			PriceRequest{Price: 0}, goldParams())
		w := httptest.NewRecorder()

		handler.RecordPrice(w, req)

		if w.Code != http.StatusBadRequest {
			t.Errorf("Expected 400, got %d: %s", w.Code, w.Body.String())
		}
	})
}

func floatPtr(v float64) *float64 {
	return &v
}
