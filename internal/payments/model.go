package payments

import (
	"errors"
	"time"
)

// Deposit statuses.
const (
	StatusPending   = "pending"
	StatusSucceeded = "succeeded"
	StatusExpired   = "expired"
	StatusRefunded  = "refunded"
)

var (
	// ErrDepositNotFound is returned when no deposit matches the lookup.
	ErrDepositNotFound = errors.New("payments: deposit not found")
	// ErrInvalidAmount is returned for non-positive deposit amounts.
	ErrInvalidAmount = errors.New("payments: amount must be positive")
)

// Deposit records a payment link issued for a booking and its lifecycle.
type Deposit struct {
	ID          string    `json:"id"`
	BookingID   string    `json:"booking_id"`
	AmountCents int64     `json:"amount_cents"`
	Currency    string    `json:"currency"`
	Status      string    `json:"status"`
	LinkURL     string    `json:"link_url"`
	ProviderRef string    `json:"provider_ref,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}
