package domain

import (
	"errors"
	"fmt"
)

// Error kinds surfaced by the booking workflow. Transports map them to status codes.
var (
	ErrNotFound         = errors.New("not found")
	ErrInvalidRange     = errors.New("invalid date range")
	ErrCapacityExceeded = errors.New("guest count exceeds capacity")
	ErrDoubleBooked     = errors.New("dates are not available")
	ErrForbidden        = errors.New("forbidden")
	ErrConflict         = errors.New("conflict")
	ErrInvalidInput     = errors.New("invalid input")

	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidToken       = errors.New("invalid or expired token")
	ErrTooManyAttempts    = errors.New("too many attempts")
)

// Conflict refinements. errors.Is(err, ErrConflict) holds for each of them.
var (
	ErrEmailTaken             = fmt.Errorf("%w: email already registered", ErrConflict)
	ErrListingLocked          = fmt.Errorf("%w: price and capacity are locked while reservations are active", ErrConflict)
	ErrHasActiveReservations  = fmt.Errorf("%w: listing has upcoming reservations", ErrConflict)
	ErrConcurrentModification = fmt.Errorf("%w: record was modified concurrently", ErrConflict)
)
