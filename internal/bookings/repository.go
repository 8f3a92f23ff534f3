package bookings

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// ListFilter narrows admin booking listings.
type ListFilter struct {
	Status    string
	EventDate string
	Limit     int
	Offset    int
}

// Repository defines the interface for booking storage
type Repository interface {
	Create(ctx context.Context, req *CreateBookingRequest) (*Booking, error)
	GetByID(ctx context.Context, id string) (*Booking, error)
	List(ctx context.Context, filter ListFilter) ([]*Booking, error)
	UpdateStatus(ctx context.Context, id string, status string) (*Booking, error)
	ListOccupyingByDate(ctx context.Context, date string) ([]*Booking, error)
}

// InMemoryRepository stores bookings in memory for tests and offline runs.
type InMemoryRepository struct {
	mu       sync.RWMutex
	bookings map[string]*Booking
}

// NewInMemoryRepository creates a new in-memory repository
func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{bookings: make(map[string]*Booking)}
}

// Create creates a new booking in memory. Slot conflicts are rejected the
// same way the database exclusion constraint rejects them.
func (r *InMemoryRepository) Create(ctx context.Context, req *CreateBookingRequest) (*Booking, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	existing, err := r.ListOccupyingByDate(ctx, req.EventDate)
	if err != nil {
		return nil, err
	}
	if overlapsAny(req.EventTime, req.DurationMinutes, existing) {
		return nil, ErrSlotConflict
	}

	now := time.Now().UTC()
	booking := &Booking{
		ID:              uuid.New().String(),
		Name:            req.Name,
		Email:           req.Email,
		Phone:           req.Phone,
		ClassSlug:       req.ClassSlug,
		EventDate:       req.EventDate,
		EventTime:       req.EventTime,
		DurationMinutes: req.DurationMinutes,
		PartySize:       req.PartySize,
		Status:          StatusPending,
		Notes:           req.Notes,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	r.mu.Lock()
	r.bookings[booking.ID] = booking
	r.mu.Unlock()

	return booking, nil
}

// GetByID retrieves a booking by ID
func (r *InMemoryRepository) GetByID(ctx context.Context, id string) (*Booking, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	booking, ok := r.bookings[id]
	if !ok {
		return nil, ErrBookingNotFound
	}
	return booking, nil
}

// List returns bookings matching the filter, newest first.
func (r *InMemoryRepository) List(ctx context.Context, filter ListFilter) ([]*Booking, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []*Booking
	for _, b := range r.bookings {
		if filter.Status != "" && b.Status != filter.Status {
			continue
		}
		if filter.EventDate != "" && b.EventDate != filter.EventDate {
			continue
		}
		out = append(out, b)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })

	if filter.Offset > 0 {
		if filter.Offset >= len(out) {
			return []*Booking{}, nil
		}
		out = out[filter.Offset:]
	}
	if filter.Limit > 0 && len(out) > filter.Limit {
		out = out[:filter.Limit]
	}
	return out, nil
}

// UpdateStatus transitions a booking to a new status.
func (r *InMemoryRepository) UpdateStatus(ctx context.Context, id string, status string) (*Booking, error) {
	if !ValidStatus(status) {
		return nil, ErrInvalidStatus
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	booking, ok := r.bookings[id]
	if !ok {
		return nil, ErrBookingNotFound
	}
	booking.Status = status
	booking.UpdatedAt = time.Now().UTC()
	return booking, nil
}

// ListOccupyingByDate returns the bookings that block slots on a date.
func (r *InMemoryRepository) ListOccupyingByDate(ctx context.Context, date string) ([]*Booking, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	occupying := map[string]bool{}
	for _, s := range OccupyingStatuses {
		occupying[s] = true
	}

	var out []*Booking
	for _, b := range r.bookings {
		if b.EventDate == date && occupying[b.Status] {
			out = append(out, b)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].EventTime < out[j].EventTime })
	return out, nil
}
