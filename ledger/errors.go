/*
errors.go - Error types for the ledger engine

ERROR CATEGORIES:
  1. Validation errors - malformed input rejected before reaching the store
  2. Stock errors - oversell when the strict sale policy is active
  3. Lookup errors - a required row is missing
  4. Store errors - wrapped driver/IO failures (not declared here)

Update and delete of a missing id are NOT errors: they report zero rows
affected.

USAGE:
    if errors.Is(err, ledger.ErrValidation) {
        // 400
    }
    var stockErr *ledger.InsufficientStockError
    if errors.As(err, &stockErr) {
        // stockErr.Available, stockErr.Requested
    }
*/
package ledger

import (
	"errors"
	"fmt"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrValidation is wrapped by every ValidationError.
	ErrValidation = errors.New("validation failed")

	// ErrInsufficientStock is returned by the strict sale policy.
	ErrInsufficientStock = errors.New("insufficient stock")

	// ErrItemNotFound is returned by lookups that require the item to exist.
	ErrItemNotFound = errors.New("item not found")

	// ErrInvalidBackup is returned when a restore source is not a database file.
	ErrInvalidBackup = errors.New("invalid backup file")

	// ErrStoreClosed is returned by stores used after Close.
	ErrStoreClosed = errors.New("store closed")
)

// =============================================================================
// STRUCTURED ERRORS
// =============================================================================

// ValidationError describes one rejected field. Row is the 1-based input row
// for bulk imports and zero otherwise.
type ValidationError struct {
	Row     int
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Row > 0 {
		return fmt.Sprintf("row %d: %s: %s", e.Row, e.Field, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func (e *ValidationError) Unwrap() error {
	return ErrValidation
}

func invalid(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

// InsufficientStockError provides details about an oversell.
type InsufficientStockError struct {
	ItemID    ItemID
	Available int64
	Requested int64
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for item %d: available %d, requested %d",
		e.ItemID, e.Available, e.Requested)
}

func (e *InsufficientStockError) Unwrap() error {
	return ErrInsufficientStock
}

// =============================================================================
// ERROR HELPERS
// =============================================================================

// IsClientError returns true if the error is due to invalid caller input.
func IsClientError(err error) bool {
	return errors.Is(err, ErrValidation) ||
		errors.Is(err, ErrInsufficientStock) ||
		errors.Is(err, ErrInvalidBackup)
}

// IsNotFound returns true if the error indicates a missing row.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrItemNotFound)
}
