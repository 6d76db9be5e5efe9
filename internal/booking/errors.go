package booking

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrEmptySelection rejects a reservation with no seats, or with the
	// same seat listed twice.
	ErrEmptySelection = errors.New("please select at least one seat")

	ErrEventNotFound    = errors.New("event not found")
	ErrBookingNotFound  = errors.New("booking not found")
	ErrAlreadyCancelled = errors.New("booking is already cancelled")
)

// SeatOutOfBoundsError reports a label that decodes fine but lands outside
// the event's grid.
type SeatOutOfBoundsError struct {
	Label string
	Row   int
	Col   int
}

func (e *SeatOutOfBoundsError) Error() string {
	return fmt.Sprintf("seat %s (%d,%d) is outside the event grid", e.Label, e.Row, e.Col)
}

// SeatsUnavailableError carries every requested seat that was not bookable,
// so the caller can re-render its seat picker.
type SeatsUnavailableError struct {
	Seats []string
}

func (e *SeatsUnavailableError) Error() string {
	return fmt.Sprintf("seats already booked or unavailable: %s", strings.Join(e.Seats, ", "))
}

// PersistenceError wraps a storage failure after validation passed. The
// whole transaction was rolled back; the caller should retry the
// reservation.
type PersistenceError struct {
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("could not persist reservation: %v", e.Err)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}
