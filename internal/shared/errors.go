package shared

import (
	"errors"
	"fmt"
	"time"
)

// ValidationError reports malformed or missing input.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation: %s %s", e.Field, e.Reason)
}

// NewValidationError builds a ValidationError for a field.
func NewValidationError(field, reason string) error {
	return &ValidationError{Field: field, Reason: reason}
}

// NotFoundError reports an unknown entity id.
type NotFoundError struct {
	Entity string
	ID     string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %s not found", e.Entity, e.ID)
}

// NewNotFoundError builds a NotFoundError.
func NewNotFoundError(entity, id string) error {
	return &NotFoundError{Entity: entity, ID: id}
}

// InsufficientStockError reports a debit exceeding aggregate stock.
// Line is the zero-based usage line index, or -1 for single debits.
type InsufficientStockError struct {
	ItemID    int64
	Line      int
	Requested int64
	Available int64
}

func (e *InsufficientStockError) Error() string {
	if e.Line >= 0 {
		return fmt.Sprintf("insufficient stock for item %d (line %d): requested %d, available %d", e.ItemID, e.Line, e.Requested, e.Available)
	}
	return fmt.Sprintf("insufficient stock for item %d: requested %d, available %d", e.ItemID, e.Requested, e.Available)
}

// InvalidStateError reports a workflow transition attempted from a wrong state.
type InvalidStateError struct {
	State  string
	Event  string
	Reason string
}

func (e *InvalidStateError) Error() string {
	return fmt.Sprintf("invalid state: %s not allowed in %s: %s", e.Event, e.State, e.Reason)
}

// FutureDateError reports a usage date after the provider clock.
type FutureDateError struct {
	Date time.Time
	Now  time.Time
}

func (e *FutureDateError) Error() string {
	return fmt.Sprintf("date %s is after current date %s", e.Date.Format("2006-01-02"), e.Now.Format("2006-01-02"))
}

// IsNotFound reports whether err wraps a NotFoundError.
func IsNotFound(err error) bool {
	var nf *NotFoundError
	return errors.As(err, &nf)
}

// IsValidation reports whether err wraps a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
