package invoices

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// ListFilter narrows admin invoice listings.
type ListFilter struct {
	Status string
	Limit  int
	Offset int
}

// Repository stores invoices.
type Repository interface {
	Create(ctx context.Context, req *CreateInvoiceRequest) (*Invoice, error)
	GetByID(ctx context.Context, id string) (*Invoice, error)
	List(ctx context.Context, filter ListFilter) ([]*Invoice, error)
	// Issue assigns the next number for the year and moves the draft to sent.
	Issue(ctx context.Context, id string, issuedAt time.Time) (*Invoice, error)
	UpdateStatus(ctx context.Context, id string, status string) (*Invoice, error)
}

// InMemoryRepository is an in-memory Repository for tests and offline runs.
type InMemoryRepository struct {
	mu       sync.RWMutex
	invoices map[string]*Invoice
	counters map[int]int
}

// NewInMemoryRepository creates a new in-memory repository.
func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{
		invoices: make(map[string]*Invoice),
		counters: make(map[int]int),
	}
}

// Create stores a draft invoice.
func (r *InMemoryRepository) Create(ctx context.Context, req *CreateInvoiceRequest) (*Invoice, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	currency := req.Currency
	if currency == "" {
		currency = "eur"
	}
	now := time.Now().UTC()
	inv := &Invoice{
		ID:            uuid.New().String(),
		BookingID:     req.BookingID,
		CustomerName:  req.CustomerName,
		CustomerEmail: req.CustomerEmail,
		LineItems:     req.LineItems,
		TotalCents:    req.Total(),
		Currency:      currency,
		Status:        StatusDraft,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	r.mu.Lock()
	r.invoices[inv.ID] = inv
	r.mu.Unlock()
	return inv, nil
}

// GetByID fetches an invoice.
func (r *InMemoryRepository) GetByID(ctx context.Context, id string) (*Invoice, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	inv, ok := r.invoices[id]
	if !ok {
		return nil, ErrInvoiceNotFound
	}
	return inv, nil
}

// List returns invoices matching the filter, newest first.
func (r *InMemoryRepository) List(ctx context.Context, filter ListFilter) ([]*Invoice, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []*Invoice
	for _, inv := range r.invoices {
		if filter.Status != "" && inv.Status != filter.Status {
			continue
		}
		out = append(out, inv)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })

	if filter.Offset > 0 {
		if filter.Offset >= len(out) {
			return []*Invoice{}, nil
		}
		out = out[filter.Offset:]
	}
	if filter.Limit > 0 && len(out) > filter.Limit {
		out = out[:filter.Limit]
	}
	return out, nil
}

// Issue numbers a draft and marks it sent.
func (r *InMemoryRepository) Issue(ctx context.Context, id string, issuedAt time.Time) (*Invoice, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	inv, ok := r.invoices[id]
	if !ok {
		return nil, ErrInvoiceNotFound
	}
	if inv.Status != StatusDraft {
		return nil, ErrNotDraft
	}

	year := issuedAt.UTC().Year()
	r.counters[year]++
	inv.Number = fmt.Sprintf("%d-%04d", year, r.counters[year])
	inv.Status = StatusSent
	issued := issuedAt.UTC()
	inv.IssuedAt = &issued
	inv.UpdatedAt = time.Now().UTC()
	return inv, nil
}

// UpdateStatus transitions an invoice.
func (r *InMemoryRepository) UpdateStatus(ctx context.Context, id string, status string) (*Invoice, error) {
	if !ValidStatus(status) {
		return nil, ErrInvalidStatus
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	inv, ok := r.invoices[id]
	if !ok {
		return nil, ErrInvoiceNotFound
	}
	inv.Status = status
	inv.UpdatedAt = time.Now().UTC()
	return inv, nil
}
