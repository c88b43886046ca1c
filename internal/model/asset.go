package model

import (
	"fmt"

	"github.com/avries/Asset-Ledger-Backend/internal/apperrors"
)

// AssetKind distinguishes the two families of tracked assets.
type AssetKind string

const (
	KindMetal    AssetKind = "metal"
	KindCurrency AssetKind = "currency"
)

// AssetType enumerates the supported asset types. The set is closed on
// purpose: handlers and repositories parse symbols into this enum once at
// the boundary, and everything past that point is exhaustive over it.
type AssetType int

const (
	Gold AssetType = iota
	Silver
	Platinum
	Palladium
	USD
	EUR
	GBP
	CHF
)

// AssetInfo carries the fixed metadata of an asset type: the wire/storage
// symbol, a display name, the unit quantities are measured in, and the
// provider symbol used when requesting quotes.
type AssetInfo struct {
	Symbol         string
	DisplayName    string
	Unit           string
	Kind           AssetKind
	ProviderSymbol string
}

var assetInfo = [...]AssetInfo{
	Gold:      {Symbol: "gold", DisplayName: "Gold", Unit: "troy ounce", Kind: KindMetal, ProviderSymbol: "XAU"},
	Silver:    {Symbol: "silver", DisplayName: "Silver", Unit: "troy ounce", Kind: KindMetal, ProviderSymbol: "XAG"},
	Platinum:  {Symbol: "platinum", DisplayName: "Platinum", Unit: "troy ounce", Kind: KindMetal, ProviderSymbol: "XPT"},
	Palladium: {Symbol: "palladium", DisplayName: "Palladium", Unit: "troy ounce", Kind: KindMetal, ProviderSymbol: "XPD"},
	USD:       {Symbol: "usd", DisplayName: "US Dollar", Unit: "dollar", Kind: KindCurrency, ProviderSymbol: "USD"},
	EUR:       {Symbol: "eur", DisplayName: "Euro", Unit: "euro", Kind: KindCurrency, ProviderSymbol: "EUR"},
	GBP:       {Symbol: "gbp", DisplayName: "British Pound", Unit: "pound", Kind: KindCurrency, ProviderSymbol: "GBP"},
	CHF:       {Symbol: "chf", DisplayName: "Swiss Franc", Unit: "franc", Kind: KindCurrency, ProviderSymbol: "CHF"},
}

var assetBySymbol = func() map[string]AssetType {
	m := make(map[string]AssetType, len(assetInfo))
	for i, info := range assetInfo {
		m[info.Symbol] = AssetType(i)
	}
	return m
}()

// Info returns the fixed metadata for the asset type.
func (a AssetType) Info() AssetInfo {
	return assetInfo[a]
}

// String returns the canonical symbol, e.g. "gold". It is the form used
// in URLs, JSON payloads, and database rows.
func (a AssetType) String() string {
	return assetInfo[a].Symbol
}

// MarshalText implements encoding.TextMarshaler so the enum serializes as
// its symbol in JSON responses.
func (a AssetType) MarshalText() ([]byte, error) {
	return []byte(a.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (a *AssetType) UnmarshalText(text []byte) error {
	parsed, err := ParseAssetType(string(text))
	if err != nil {
		return err
	}
	*a = parsed
	return nil
}

// ParseAssetType resolves a symbol like "gold" or "usd" to its AssetType.
// Unknown symbols fail with apperrors.ErrUnknownAsset.
func ParseAssetType(symbol string) (AssetType, error) {
	a, ok := assetBySymbol[symbol]
	if !ok {
		return 0, fmt.Errorf("%w: %q", apperrors.ErrUnknownAsset, symbol)
	}
	return a, nil
}

// AllAssetTypes returns every supported asset type in declaration order.
func AllAssetTypes() []AssetType {
	all := make([]AssetType, len(assetInfo))
	for i := range assetInfo {
		all[i] = AssetType(i)
	}
	return all
}
