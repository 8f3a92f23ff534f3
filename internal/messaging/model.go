package messaging

import (
	"errors"
	"time"
)

// Message directions.
const (
	DirectionInbound  = "inbound"
	DirectionOutbound = "outbound"
)

// Message provider statuses.
const (
	StatusReceived = "received"
	StatusSent     = "sent"
	StatusFailed   = "failed"
)

var (
	// ErrMessageNotFound is returned when no message matches the lookup.
	ErrMessageNotFound = errors.New("messaging: message not found")
	// ErrEmptyBody is returned when sending a blank message.
	ErrEmptyBody = errors.New("messaging: message body is empty")
	// ErrInvalidPhone is returned when a phone number cannot be normalized.
	ErrInvalidPhone = errors.New("messaging: invalid phone number")
)

// Message is a single WhatsApp message on a lead's thread.
type Message struct {
	ID                string    `json:"id"`
	LeadID            string    `json:"lead_id"`
	From              string    `json:"from"`
	To                string    `json:"to"`
	Direction         string    `json:"direction"`
	Body              string    `json:"body"`
	ProviderMessageID string    `json:"provider_message_id,omitempty"`
	Status            string    `json:"status"`
	CreatedAt         time.Time `json:"created_at"`
}
