package bookings

import (
	"context"
	"fmt"

	"github.com/bellacucina/platform/internal/availability"
)

// ReservationAdapter presents the booking store as the availability engine's
// reservation source. Status filtering happens in the repository; the engine
// only ever sees occupying records.
type ReservationAdapter struct {
	repo Repository
}

// NewReservationAdapter wraps a repository for the availability handler.
func NewReservationAdapter(repo Repository) *ReservationAdapter {
	if repo == nil {
		panic("bookings: repository required")
	}
	return &ReservationAdapter{repo: repo}
}

// ListOccupyingByDate implements availability.ReservationSource.
func (a *ReservationAdapter) ListOccupyingByDate(ctx context.Context, date string) ([]availability.Reservation, error) {
	rows, err := a.repo.ListOccupyingByDate(ctx, date)
	if err != nil {
		return nil, fmt.Errorf("bookings: reservation lookup: %w", err)
	}
	reservations := make([]availability.Reservation, 0, len(rows))
	for _, b := range rows {
		reservations = append(reservations, availability.Reservation{
			EventTime:       b.EventTime,
			DurationMinutes: b.DurationMinutes,
		})
	}
	return reservations, nil
}

var _ availability.ReservationSource = (*ReservationAdapter)(nil)
