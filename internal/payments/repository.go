package payments

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Repository stores deposit records.
type Repository interface {
	Create(ctx context.Context, deposit *Deposit) error
	GetByProviderRef(ctx context.Context, providerRef string) (*Deposit, error)
	ListByBooking(ctx context.Context, bookingID string) ([]*Deposit, error)
	UpdateStatus(ctx context.Context, id string, status string) (*Deposit, error)
}

// InMemoryRepository is an in-memory Repository for tests and offline runs.
type InMemoryRepository struct {
	mu       sync.RWMutex
	deposits map[string]*Deposit
}

// NewInMemoryRepository creates a new in-memory repository.
func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{deposits: make(map[string]*Deposit)}
}

// Create stores a deposit, assigning an ID when absent.
func (r *InMemoryRepository) Create(ctx context.Context, deposit *Deposit) error {
	if deposit.AmountCents <= 0 {
		return ErrInvalidAmount
	}
	if deposit.ID == "" {
		deposit.ID = uuid.New().String()
	}
	now := time.Now().UTC()
	deposit.CreatedAt = now
	deposit.UpdatedAt = now
	if deposit.Status == "" {
		deposit.Status = StatusPending
	}

	r.mu.Lock()
	r.deposits[deposit.ID] = deposit
	r.mu.Unlock()
	return nil
}

// GetByProviderRef finds the deposit tied to a provider reference.
func (r *InMemoryRepository) GetByProviderRef(ctx context.Context, providerRef string) (*Deposit, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, d := range r.deposits {
		if d.ProviderRef == providerRef {
			return d, nil
		}
	}
	return nil, ErrDepositNotFound
}

// ListByBooking returns deposits for a booking.
func (r *InMemoryRepository) ListByBooking(ctx context.Context, bookingID string) ([]*Deposit, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []*Deposit
	for _, d := range r.deposits {
		if d.BookingID == bookingID {
			out = append(out, d)
		}
	}
	return out, nil
}

// UpdateStatus transitions a deposit.
func (r *InMemoryRepository) UpdateStatus(ctx context.Context, id string, status string) (*Deposit, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	d, ok := r.deposits[id]
	if !ok {
		return nil, ErrDepositNotFound
	}
	d.Status = status
	d.UpdatedAt = time.Now().UTC()
	return d, nil
}
