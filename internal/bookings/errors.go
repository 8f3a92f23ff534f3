package bookings

import "errors"

var (
	ErrBookingNotFound  = errors.New("bookings: booking not found")
	ErrInvalidName      = errors.New("bookings: name is required")
	ErrMissingContact   = errors.New("bookings: email or phone is required")
	ErrInvalidEventDate = errors.New("bookings: event_date must be YYYY-MM-DD")
	ErrInvalidEventTime = errors.New("bookings: event_time must be HH:MM")
	ErrInvalidPartySize = errors.New("bookings: party_size must be positive")
	ErrInvalidDuration  = errors.New("bookings: duration_minutes must be positive")
	ErrInvalidStatus    = errors.New("bookings: unknown status")

	// ErrSlotConflict is returned when the storage overlap constraint rejects
	// an insert. The availability projection is advisory; this is the gate.
	ErrSlotConflict = errors.New("bookings: slot already taken")
)
