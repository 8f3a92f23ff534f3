package bookings

import (
	"strings"
	"time"
)

// Booking statuses. Pending, confirmed and deposit_paid bookings occupy
// their time slot; the rest do not.
const (
	StatusPending     = "pending"
	StatusConfirmed   = "confirmed"
	StatusDepositPaid = "deposit_paid"
	StatusCompleted   = "completed"
	StatusCancelled   = "cancelled"
	StatusNoShow      = "no_show"
)

// OccupyingStatuses are the statuses that block a time slot.
var OccupyingStatuses = []string{StatusPending, StatusConfirmed, StatusDepositPaid}

// Booking represents a reservation for a class or private dinner.
type Booking struct {
	ID              string    `json:"id"`
	Name            string    `json:"name"`
	Email           string    `json:"email"`
	Phone           string    `json:"phone"`
	ClassSlug       string    `json:"class_slug"`
	EventDate       string    `json:"event_date"`
	EventTime       string    `json:"event_time"`
	DurationMinutes *int      `json:"duration_minutes,omitempty"`
	PartySize       int       `json:"party_size"`
	Status          string    `json:"status"`
	Notes           string    `json:"notes,omitempty"`
	AmountCents     int64     `json:"amount_cents"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// CreateBookingRequest represents the request body for creating a booking
type CreateBookingRequest struct {
	Name            string `json:"name"`
	Email           string `json:"email"`
	Phone           string `json:"phone"`
	ClassSlug       string `json:"class_slug"`
	EventDate       string `json:"event_date"`
	EventTime       string `json:"event_time"`
	DurationMinutes *int   `json:"duration_minutes,omitempty"`
	PartySize       int    `json:"party_size"`
	Notes           string `json:"notes,omitempty"`
}

// Validate validates the create booking request
func (r *CreateBookingRequest) Validate() error {
	if strings.TrimSpace(r.Name) == "" {
		return ErrInvalidName
	}
	if r.Email == "" && r.Phone == "" {
		return ErrMissingContact
	}
	if _, err := time.Parse("2006-01-02", r.EventDate); err != nil {
		return ErrInvalidEventDate
	}
	if _, err := time.Parse("15:04", r.EventTime); err != nil {
		return ErrInvalidEventTime
	}
	if r.PartySize <= 0 {
		return ErrInvalidPartySize
	}
	if r.DurationMinutes != nil && *r.DurationMinutes <= 0 {
		return ErrInvalidDuration
	}
	return nil
}

// ValidStatus reports whether s is a known booking status.
func ValidStatus(s string) bool {
	switch s {
	case StatusPending, StatusConfirmed, StatusDepositPaid, StatusCompleted, StatusCancelled, StatusNoShow:
		return true
	default:
		return false
	}
}
