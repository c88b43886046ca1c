// Package validation provides input validation shared by the ledger core
// and the HTTP layer. All failures wrap the typed sentinels from
// apperrors so callers can match them with errors.Is.
package validation

import (
	"fmt"
	"math"

	"github.com/avries/Asset-Ledger-Backend/internal/apperrors"
)

// ValidateQuantity checks a transaction quantity: it must be a finite
// number greater than zero.
func ValidateQuantity(quantity float64) error {
	if math.IsNaN(quantity) || math.IsInf(quantity, 0) {
		return fmt.Errorf("%w: quantity is not finite", apperrors.ErrInvalidQuantity)
	}
	if quantity <= 0 {
		return fmt.Errorf("%w: quantity must be positive, got %v", apperrors.ErrInvalidQuantity, quantity)
	}
	return nil
}

// ValidateTargetQuantity checks an adjustment target: it must be a finite
// number of zero or more.
func ValidateTargetQuantity(quantity float64) error {
	if math.IsNaN(quantity) || math.IsInf(quantity, 0) {
		return fmt.Errorf("%w: quantity is not finite", apperrors.ErrInvalidQuantity)
	}
	if quantity < 0 {
		return fmt.Errorf("%w: quantity cannot be negative, got %v", apperrors.ErrInvalidQuantity, quantity)
	}
	return nil
}

// ValidatePrice checks a unit price supplied with a purchase: it must be a
// finite number of zero or more. Zero is allowed so acquisitions without a
// cost (gifts, transfers in) can be recorded.
func ValidatePrice(price float64) error {
	if math.IsNaN(price) || math.IsInf(price, 0) {
		return fmt.Errorf("%w: price is not finite", apperrors.ErrInvalidPrice)
	}
	if price < 0 {
		return fmt.Errorf("%w: price cannot be negative, got %v", apperrors.ErrInvalidPrice, price)
	}
	return nil
}

// ValidateMarketPrice checks a quoted market price: it must be a finite
// number greater than zero. An unavailable quote must be skipped, never
// recorded as zero.
func ValidateMarketPrice(price float64) error {
	if err := ValidatePrice(price); err != nil {
		return err
	}
	if price == 0 {
		return fmt.Errorf("%w: market price must be positive", apperrors.ErrInvalidPrice)
	}
	return nil
}
