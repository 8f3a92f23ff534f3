package invoices

import (
	"errors"
	"strings"
	"time"
)

// Invoice statuses.
const (
	StatusDraft = "draft"
	StatusSent  = "sent"
	StatusPaid  = "paid"
	StatusVoid  = "void"
)

var (
	// ErrInvoiceNotFound is returned when no invoice matches the lookup.
	ErrInvoiceNotFound = errors.New("invoices: invoice not found")
	// ErrInvalidStatus is returned for unknown invoice statuses.
	ErrInvalidStatus = errors.New("invoices: invalid status")
	// ErrNotDraft is returned when issuing an invoice that already left draft.
	ErrNotDraft = errors.New("invoices: invoice is not a draft")
	// ErrNoLineItems is returned for invoices without any line items.
	ErrNoLineItems = errors.New("invoices: at least one line item required")
	// ErrMissingCustomer is returned when the customer name is blank.
	ErrMissingCustomer = errors.New("invoices: customer name is required")
)

// LineItem is a single billed line on an invoice.
type LineItem struct {
	Description string `json:"description"`
	Quantity    int    `json:"quantity"`
	UnitCents   int64  `json:"unit_cents"`
}

// Invoice is a customer invoice. Draft invoices have no number; issuing
// assigns the next sequential number for the year.
type Invoice struct {
	ID            string     `json:"id"`
	Number        string     `json:"number,omitempty"`
	BookingID     string     `json:"booking_id,omitempty"`
	CustomerName  string     `json:"customer_name"`
	CustomerEmail string     `json:"customer_email,omitempty"`
	LineItems     []LineItem `json:"line_items"`
	TotalCents    int64      `json:"total_cents"`
	Currency      string     `json:"currency"`
	Status        string     `json:"status"`
	IssuedAt      *time.Time `json:"issued_at,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

// CreateInvoiceRequest is the payload for creating a draft invoice.
type CreateInvoiceRequest struct {
	BookingID     string     `json:"booking_id,omitempty"`
	CustomerName  string     `json:"customer_name"`
	CustomerEmail string     `json:"customer_email,omitempty"`
	LineItems     []LineItem `json:"line_items"`
	Currency      string     `json:"currency,omitempty"`
}

// Validate checks the draft for required fields.
func (r *CreateInvoiceRequest) Validate() error {
	if strings.TrimSpace(r.CustomerName) == "" {
		return ErrMissingCustomer
	}
	if len(r.LineItems) == 0 {
		return ErrNoLineItems
	}
	for _, item := range r.LineItems {
		if strings.TrimSpace(item.Description) == "" || item.Quantity <= 0 || item.UnitCents < 0 {
			return ErrNoLineItems
		}
	}
	return nil
}

// Total sums the line items.
func (r *CreateInvoiceRequest) Total() int64 {
	var total int64
	for _, item := range r.LineItems {
		total += int64(item.Quantity) * item.UnitCents
	}
	return total
}

// ValidStatus reports whether s is a known invoice status.
func ValidStatus(s string) bool {
	switch s {
	case StatusDraft, StatusSent, StatusPaid, StatusVoid:
		return true
	}
	return false
}
