// Package apperrors defines the typed sentinel errors shared across the
// ledger core, repositories, and HTTP handlers. Callers match them with
// errors.Is; lower layers wrap them with %w to add context.
package apperrors

import "errors"

// Domain entity errors represent missing or invalid entities in the system.
// These errors indicate that a requested resource does not exist.
var (
	// ErrPositionNotFound indicates that no position is held for the given asset type.
	ErrPositionNotFound = errors.New("position not found")

	// ErrPositionExists indicates that a position for the asset type is already open.
	// Callers that want open-or-increase semantics should use Increase instead of Open.
	ErrPositionExists = errors.New("position already exists")

	// ErrUnknownAsset indicates that a symbol does not name a supported asset type.
	ErrUnknownAsset = errors.New("unknown asset type")

	// ErrProviderConfigNotFound indicates the quote provider has not been configured.
	ErrProviderConfigNotFound = errors.New("quote provider configuration not found")
)

// Business logic errors represent validation failures or constraint violations.
// These errors indicate that an operation cannot be completed due to business rules.
var (
	// ErrInvalidQuantity indicates a quantity that is zero, negative, NaN, or infinite.
	ErrInvalidQuantity = errors.New("invalid quantity")

	// ErrInvalidPrice indicates a price that is negative, NaN, or infinite.
	ErrInvalidPrice = errors.New("invalid price")

	// ErrInsufficientQuantity indicates that a decrease exceeds the held quantity.
	ErrInsufficientQuantity = errors.New("insufficient quantity for decrease")

	// ErrInvalidDateRange indicates that the provided date range is invalid
	// (e.g., start date is after end date).
	ErrInvalidDateRange = errors.New("invalid date range")
)

// Collaborator errors represent failures in external collaborators:
// the persistence store and the price quote provider.
var (
	// ErrConcurrencyConflict indicates that a write was based on a stale
	// version of a position. The caller should reload and retry.
	ErrConcurrencyConflict = errors.New("concurrent modification detected")

	// ErrQuoteUnavailable indicates that the provider has no quote for an
	// asset this cycle. The asset is skipped; its price is never set to zero.
	ErrQuoteUnavailable = errors.New("quote unavailable")

	// ErrRefreshSuperseded indicates that a refresh cycle was cancelled
	// because a newer one was started before it could commit.
	ErrRefreshSuperseded = errors.New("refresh superseded by a newer cycle")
)
