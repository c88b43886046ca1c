package testutil

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/avries/Asset-Ledger-Backend/internal/apperrors"
	"github.com/avries/Asset-Ledger-Backend/internal/model"
	"github.com/avries/Asset-Ledger-Backend/internal/quote"
)

// MockQuoteProvider is a mock implementation of quote.Provider for
// testing. It returns configured per-asset prices instead of calling a
// real rates API, and can simulate unavailable quotes and slow fetches.
type MockQuoteProvider struct {
	mu sync.Mutex

	// Prices maps assets to the price the mock returns for them. Assets
	// without an entry report ErrQuoteUnavailable.
	Prices map[model.AssetType]float64

	// Err, when set, is returned for every quote request.
	Err error

	// Delay makes each quote request block, honoring context
	// cancellation. Useful for testing in-flight cancellation.
	Delay time.Duration

	// QueryCount tracks how many quote requests were made.
	QueryCount int

	// Fetched, when non-nil, receives one signal per quote request once
	// the request has started. Useful for synchronizing cancellation.
	Fetched chan struct{}
}

// NewMockQuoteProvider creates a mock provider with the given prices.
func NewMockQuoteProvider(prices map[model.AssetType]float64) *MockQuoteProvider {
	return &MockQuoteProvider{Prices: prices}
}

// Quote returns the configured price for the asset, or
// ErrQuoteUnavailable when none is configured.
func (m *MockQuoteProvider) Quote(ctx context.Context, asset model.AssetType) (quote.Quote, error) {
	m.mu.Lock()
	m.QueryCount++
	err := m.Err
	price, ok := m.Prices[asset]
	delay := m.Delay
	fetched := m.Fetched
	m.mu.Unlock()

	if fetched != nil {
		fetched <- struct{}{}
	}

	if delay > 0 {
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return quote.Quote{}, ctx.Err()
		}
	}

	if err != nil {
		return quote.Quote{}, err
	}
	if !ok {
		return quote.Quote{}, fmt.Errorf("%w: no mock price for %s", apperrors.ErrQuoteUnavailable, asset)
	}

	return quote.Quote{Asset: asset, Price: price, AsOf: time.Now().UTC()}, nil
}

// SetPrice updates the configured price for an asset.
func (m *MockQuoteProvider) SetPrice(asset model.AssetType, price float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Prices == nil {
		m.Prices = make(map[model.AssetType]float64)
	}
	m.Prices[asset] = price
}

// WithError configures the mock to return the specified error.
func (m *MockQuoteProvider) WithError(err error) *MockQuoteProvider {
	m.Err = err
	return m
}

// SetDelay updates the per-request delay, synchronizing with in-flight
// requests.
func (m *MockQuoteProvider) SetDelay(d time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Delay = d
}

// WithDelay configures the mock to block each request for d.
func (m *MockQuoteProvider) WithDelay(d time.Duration) *MockQuoteProvider {
	m.Delay = d
	return m
}
