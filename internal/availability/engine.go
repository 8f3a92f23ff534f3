package availability

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

const (
	// DefaultBufferMinutes is the turnaround margin applied after every slot
	// and reservation. One shared kitchen, so the buffer is global.
	DefaultBufferMinutes = 60

	// DefaultReservationMinutes is assumed when a reservation record carries
	// no duration. Older records legitimately omit it.
	DefaultReservationMinutes = 120
)

// ErrInvalidDate is returned when the requested date cannot be parsed.
var ErrInvalidDate = errors.New("availability: invalid date")

// TimeSlotDefinition describes one bookable window of the day.
type TimeSlotDefinition struct {
	Start           string `json:"start"`
	End             string `json:"end"`
	DurationMinutes int    `json:"duration_minutes"`
	Label           string `json:"label"`
	Days            []int  `json:"days"`
}

// OfferedOn reports whether the slot runs on the given weekday (0=Sunday).
func (s TimeSlotDefinition) OfferedOn(weekday int) bool {
	for _, d := range s.Days {
		if d == weekday {
			return true
		}
	}
	return false
}

// Reservation is the view of an occupying booking the engine needs.
// DurationMinutes may be nil for older records.
type Reservation struct {
	EventTime       string
	DurationMinutes *int
}

// Result is the computed availability for one date.
type Result struct {
	Date           string               `json:"date"`
	DayOfWeek      int                  `json:"day_of_week"`
	AllSlots       []TimeSlotDefinition `json:"all_slots"`
	AvailableSlots []TimeSlotDefinition `json:"available_slots"`
	BlockedSlots   []TimeSlotDefinition `json:"blocked_slots"`
	BufferMinutes  int                  `json:"buffer_minutes"`
}

// Compute partitions the day's offered slots into available and blocked,
// given the occupying reservations for that date. The computation is pure:
// no I/O, safe for concurrent use. The result is advisory only; the insert
// path must enforce conflicts at the storage layer.
func Compute(date string, calendar []TimeSlotDefinition, reservations []Reservation, bufferMinutes int) (*Result, error) {
	day, err := time.Parse("2006-01-02", strings.TrimSpace(date))
	if err != nil {
		return nil, fmt.Errorf("%w: %q", ErrInvalidDate, date)
	}
	weekday := int(day.Weekday())

	result := &Result{
		Date:           day.Format("2006-01-02"),
		DayOfWeek:      weekday,
		AllSlots:       []TimeSlotDefinition{},
		AvailableSlots: []TimeSlotDefinition{},
		BlockedSlots:   []TimeSlotDefinition{},
		BufferMinutes:  bufferMinutes,
	}

	for _, slot := range calendar {
		if !slot.OfferedOn(weekday) {
			continue
		}
		result.AllSlots = append(result.AllSlots, slot)
		if blockedBy(slot, reservations, bufferMinutes) {
			result.BlockedSlots = append(result.BlockedSlots, slot)
		} else {
			result.AvailableSlots = append(result.AvailableSlots, slot)
		}
	}

	return result, nil
}

// blockedBy reports whether any reservation overlaps the slot. The buffer is
// appended once to each end (slot end and reservation end), never subtracted
// from starts: the margin covers cleanup after a window, not setup before it.
func blockedBy(slot TimeSlotDefinition, reservations []Reservation, bufferMinutes int) bool {
	slotStart, err := minutesOfDay(slot.Start)
	if err != nil {
		return false
	}
	slotEnd, err := minutesOfDay(slot.End)
	if err != nil {
		return false
	}
	slotEnd += bufferMinutes

	for _, res := range reservations {
		if strings.TrimSpace(res.EventTime) == "" {
			continue
		}
		resStart, err := minutesOfDay(res.EventTime)
		if err != nil {
			continue
		}
		duration := DefaultReservationMinutes
		if res.DurationMinutes != nil {
			duration = *res.DurationMinutes
		}
		resEnd := resStart + duration + bufferMinutes

		// Half-open interval overlap test.
		if slotStart < resEnd && slotEnd > resStart {
			return true
		}
	}
	return false
}

// minutesOfDay converts "HH:MM" to minutes since midnight.
func minutesOfDay(clock string) (int, error) {
	parts := strings.SplitN(strings.TrimSpace(clock), ":", 2)
	if len(parts) != 2 {
		return 0, fmt.Errorf("availability: malformed time %q", clock)
	}
	hour, err := strconv.Atoi(parts[0])
	if err != nil {
		return 0, fmt.Errorf("availability: malformed hour in %q", clock)
	}
	minute, err := strconv.Atoi(parts[1])
	if err != nil {
		return 0, fmt.Errorf("availability: malformed minute in %q", clock)
	}
	if hour < 0 || hour > 23 || minute < 0 || minute > 59 {
		return 0, fmt.Errorf("availability: time out of range %q", clock)
	}
	return hour*60 + minute, nil
}
