package models

import (
	"errors"
	"fmt"
)

// Error families surfaced by the services. Handlers map each family to a transport status.
var (
	ErrValidation        = errors.New("validation error")
	ErrNotFound          = errors.New("not found")
	ErrStateConflict     = errors.New("state conflict")
	ErrInsufficientStock = errors.New("insufficient stock")
	ErrForbidden         = errors.New("forbidden")
	ErrTooOld            = errors.New("document too old")
	ErrInternal          = errors.New("internal error")
)

// Refinements. Each wraps its family so errors.Is matches both levels.
var (
	ErrFinalized        = fmt.Errorf("%w: document finalized", ErrStateConflict)
	ErrStatusGateClosed = fmt.Errorf("%w: status gate closed", ErrStateConflict)
	ErrInvalidState     = fmt.Errorf("%w: invalid state", ErrStateConflict)
	ErrAlreadySigned    = fmt.Errorf("%w: already signed", ErrStateConflict)
	ErrInvalidQuantity  = fmt.Errorf("%w: invalid quantity", ErrValidation)
	ErrDuplicate        = fmt.Errorf("%w: duplicate record", ErrStateConflict)
)

// Errorf decorates a sentinel with a formatted detail message.
func Errorf(kind error, format string, args ...any) error {
	return fmt.Errorf("%w: %s", kind, fmt.Sprintf(format, args...))
}

// Internal wraps a storage failure so callers only see the generic family.
func Internal(op string, err error) error {
	return fmt.Errorf("%w: %s: %w", ErrInternal, op, err)
}
