package bookings

import (
	"time"

	"github.com/bellacucina/platform/internal/availability"
)

func minutesOf(clock string) (int, bool) {
	t, err := time.Parse("15:04", clock)
	if err != nil {
		return 0, false
	}
	return t.Hour()*60 + t.Minute(), true
}

func durationOrDefault(d *int) int {
	if d != nil && *d > 0 {
		return *d
	}
	return availability.DefaultReservationMinutes
}

// overlapsAny reports whether a booking at eventTime collides with any of the
// occupying bookings once the turnaround buffer extends each end. The math
// mirrors the availability engine and the storage exclusion constraint, so
// the answer only goes stale if a competing insert lands in between.
func overlapsAny(eventTime string, duration *int, existing []*Booking) bool {
	newStart, ok := minutesOf(eventTime)
	if !ok {
		return false
	}
	newEnd := newStart + durationOrDefault(duration) + availability.DefaultBufferMinutes

	for _, b := range existing {
		exStart, ok := minutesOf(b.EventTime)
		if !ok {
			continue
		}
		exEnd := exStart + durationOrDefault(b.DurationMinutes) + availability.DefaultBufferMinutes
		if newStart < exEnd && newEnd > exStart {
			return true
		}
	}
	return false
}
