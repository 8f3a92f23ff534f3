package bookings

import (
	"context"
	"testing"
)

func validRequest() *CreateBookingRequest {
	return &CreateBookingRequest{
		Name:      "Giulia Rossi",
		Email:     "giulia@example.com",
		Phone:     "+393331234567",
		ClassSlug: "fresh-pasta-masterclass",
		EventDate: "2026-03-14",
		EventTime: "18:30",
		PartySize: 2,
	}
}

func TestRepository_Create(t *testing.T) {
	repo := NewInMemoryRepository()
	ctx := context.Background()

	booking, err := repo.Create(ctx, validRequest())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if booking.ID == "" {
		t.Error("expected booking ID to be set")
	}
	if booking.Status != StatusPending {
		t.Errorf("expected pending status, got %s", booking.Status)
	}
	if booking.CreatedAt.IsZero() {
		t.Error("expected CreatedAt to be set")
	}
}

func TestRepository_CreateValidation(t *testing.T) {
	repo := NewInMemoryRepository()
	ctx := context.Background()

	tests := []struct {
		name    string
		mutate  func(*CreateBookingRequest)
		wantErr error
	}{
		{"missing name", func(r *CreateBookingRequest) { r.Name = " " }, ErrInvalidName},
		{"missing contact", func(r *CreateBookingRequest) { r.Email = ""; r.Phone = "" }, ErrMissingContact},
		{"bad date", func(r *CreateBookingRequest) { r.EventDate = "14/03/2026" }, ErrInvalidEventDate},
		{"bad time", func(r *CreateBookingRequest) { r.EventTime = "six pm" }, ErrInvalidEventTime},
		{"zero party", func(r *CreateBookingRequest) { r.PartySize = 0 }, ErrInvalidPartySize},
		{"negative duration", func(r *CreateBookingRequest) { d := -30; r.DurationMinutes = &d }, ErrInvalidDuration},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := validRequest()
			tt.mutate(req)
			if _, err := repo.Create(ctx, req); err != tt.wantErr {
				t.Errorf("expected %v, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestRepository_UpdateStatus(t *testing.T) {
	repo := NewInMemoryRepository()
	ctx := context.Background()

	created, err := repo.Create(ctx, validRequest())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	updated, err := repo.UpdateStatus(ctx, created.ID, StatusConfirmed)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if updated.Status != StatusConfirmed {
		t.Errorf("expected confirmed, got %s", updated.Status)
	}

	if _, err := repo.UpdateStatus(ctx, created.ID, "vanished"); err != ErrInvalidStatus {
		t.Errorf("expected ErrInvalidStatus, got %v", err)
	}
	if _, err := repo.UpdateStatus(ctx, "nonexistent", StatusConfirmed); err != ErrBookingNotFound {
		t.Errorf("expected ErrBookingNotFound, got %v", err)
	}
}

func TestRepository_ListOccupyingByDate(t *testing.T) {
	repo := NewInMemoryRepository()
	ctx := context.Background()

	first, _ := repo.Create(ctx, validRequest())

	second := validRequest()
	second.EventTime = "11:00"
	b2, _ := repo.Create(ctx, second)

	other := validRequest()
	other.EventDate = "2026-03-15"
	if _, err := repo.Create(ctx, other); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Cancelled bookings stop occupying their slot.
	if _, err := repo.UpdateStatus(ctx, first.ID, StatusCancelled); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	occupying, err := repo.ListOccupyingByDate(ctx, "2026-03-14")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(occupying) != 1 {
		t.Fatalf("expected 1 occupying booking, got %d", len(occupying))
	}
	if occupying[0].ID != b2.ID {
		t.Errorf("expected booking %s, got %s", b2.ID, occupying[0].ID)
	}
}

func TestRepository_ListFilters(t *testing.T) {
	repo := NewInMemoryRepository()
	ctx := context.Background()

	a, _ := repo.Create(ctx, validRequest())
	morning := validRequest()
	morning.EventTime = "11:00"
	repo.Create(ctx, morning)
	if _, err := repo.UpdateStatus(ctx, a.ID, StatusConfirmed); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	confirmed, err := repo.List(ctx, ListFilter{Status: StatusConfirmed})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(confirmed) != 1 {
		t.Errorf("expected 1 confirmed booking, got %d", len(confirmed))
	}

	limited, err := repo.List(ctx, ListFilter{Limit: 1})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(limited) != 1 {
		t.Errorf("expected limit to apply, got %d", len(limited))
	}
}

func TestRepository_CreateRejectsOverlap(t *testing.T) {
	repo := NewInMemoryRepository()
	ctx := context.Background()

	if _, err := repo.Create(ctx, validRequest()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// 19:30 lands inside the 18:30 booking plus its turnaround buffer.
	overlapping := validRequest()
	overlapping.EventTime = "19:30"
	if _, err := repo.Create(ctx, overlapping); err != ErrSlotConflict {
		t.Fatalf("expected ErrSlotConflict, got %v", err)
	}

	// 21:30 starts exactly when the buffered slot ends.
	adjacent := validRequest()
	adjacent.EventTime = "21:30"
	if _, err := repo.Create(ctx, adjacent); err != nil {
		t.Errorf("back-to-back booking after the buffer must succeed: %v", err)
	}

	// Cancelling frees the slot.
	otherDay := validRequest()
	otherDay.EventDate = "2026-03-20"
	first, err := repo.Create(ctx, otherDay)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := repo.UpdateStatus(ctx, first.ID, StatusCancelled); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	retry := validRequest()
	retry.EventDate = "2026-03-20"
	if _, err := repo.Create(ctx, retry); err != nil {
		t.Errorf("cancelled booking must not block the slot: %v", err)
	}
}
