// Package quote defines the price quote collaborator consumed by the
// refresh cycle, and an HTTP client for metal and currency rates APIs.
package quote

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/avries/Asset-Ledger-Backend/internal/apperrors"
	"github.com/avries/Asset-Ledger-Backend/internal/model"
)

// Provider supplies market prices. A provider that has no usable quote
// for an asset reports apperrors.ErrQuoteUnavailable; the caller skips
// the asset for that cycle and keeps its previous price.
type Provider interface {
	Quote(ctx context.Context, asset model.AssetType) (Quote, error)
}

// ConfigSource supplies the provider configuration on demand, so key
// rotations are picked up without restarting.
type ConfigSource interface {
	Get() (model.ProviderConfig, error)
}

// RatesClient fetches quotes from a metals/FX rates API. It wraps an HTTP
// client and reads its endpoint and credentials from a ConfigSource.
type RatesClient struct {
	httpClient *http.Client
	config     ConfigSource
}

// NewRatesClient creates a rates API client with default HTTP settings.
func NewRatesClient(config ConfigSource) *RatesClient {
	return &RatesClient{
		httpClient: &http.Client{Timeout: 15 * time.Second},
		config:     config,
	}
}

// Quote fetches the latest price for one asset in the configured quote
// currency. Missing rates, provider-side errors, and non-positive rates
// all surface as apperrors.ErrQuoteUnavailable.
func (c *RatesClient) Quote(ctx context.Context, asset model.AssetType) (Quote, error) {
	cfg, err := c.config.Get()
	if err != nil {
		return Quote{}, err
	}

	symbol := asset.Info().ProviderSymbol
	if symbol == cfg.QuoteCurrency {
		// The quote currency is worth exactly one unit of itself.
		return Quote{Asset: asset, Price: 1, AsOf: time.Now().UTC()}, nil
	}

	result, err := c.queryLatest(ctx, cfg, symbol)
	if err != nil {
		return Quote{}, err
	}

	if !result.Success {
		info := "provider reported failure"
		if result.Error != nil {
			info = fmt.Sprintf("provider error %d: %s", result.Error.Code, result.Error.Info)
		}
		return Quote{}, fmt.Errorf("%w: %s: %s", apperrors.ErrQuoteUnavailable, asset, info)
	}

	rate, ok := result.Rates[symbol]
	if !ok || rate <= 0 {
		return Quote{}, fmt.Errorf("%w: %s: no usable rate returned", apperrors.ErrQuoteUnavailable, asset)
	}

	asOf := time.Now().UTC()
	if result.Timestamp > 0 {
		asOf = time.Unix(result.Timestamp, 0).UTC()
	}

	// Rates come back as units of the symbol per one unit of the base
	// currency; invert to price one unit of the asset.
	return Quote{Asset: asset, Price: 1 / rate, AsOf: asOf}, nil
}

func (c *RatesClient) queryLatest(ctx context.Context, cfg model.ProviderConfig, symbol string) (latestResponse, error) {
	endpoint := fmt.Sprintf("%s/latest?access_key=%s&base=%s&symbols=%s",
		strings.TrimRight(cfg.BaseURL, "/"),
		url.QueryEscape(cfg.APIKey),
		url.QueryEscape(cfg.QuoteCurrency),
		url.QueryEscape(symbol),
	)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return latestResponse{}, fmt.Errorf("failed to build rates request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return latestResponse{}, fmt.Errorf("rates request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return latestResponse{}, fmt.Errorf("failed to read rates response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return latestResponse{}, fmt.Errorf("%w: rates API returned status %d",
			apperrors.ErrQuoteUnavailable, resp.StatusCode)
	}

	var result latestResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return latestResponse{}, fmt.Errorf("failed to decode rates response: %w", err)
	}
	return result, nil
}
