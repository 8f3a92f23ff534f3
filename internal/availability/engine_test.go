package availability

import (
	"errors"
	"testing"
)

func intPtr(v int) *int { return &v }

// 2026-01-05 is a Monday, 2026-01-07 a Wednesday, 2026-01-08 a Thursday.
const (
	monday    = "2026-01-05"
	wednesday = "2026-01-07"
	thursday  = "2026-01-08"
)

func TestCompute_NoReservationsAllAvailable(t *testing.T) {
	result, err := Compute(monday, DefaultCalendar(), nil, DefaultBufferMinutes)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(result.AllSlots) != 4 {
		t.Fatalf("expected 4 slots on Monday, got %d", len(result.AllSlots))
	}
	if len(result.AvailableSlots) != len(result.AllSlots) {
		t.Errorf("expected all slots available, got %d of %d", len(result.AvailableSlots), len(result.AllSlots))
	}
	if len(result.BlockedSlots) != 0 {
		t.Errorf("expected no blocked slots, got %d", len(result.BlockedSlots))
	}
}

func TestCompute_PartitionCoversAllSlots(t *testing.T) {
	reservations := []Reservation{
		{EventTime: "11:30", DurationMinutes: intPtr(60)},
		{EventTime: "18:00", DurationMinutes: intPtr(120)},
	}
	result, err := Compute(monday, DefaultCalendar(), reservations, DefaultBufferMinutes)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := len(result.AvailableSlots) + len(result.BlockedSlots); got != len(result.AllSlots) {
		t.Errorf("partition does not cover all slots: %d + %d != %d",
			len(result.AvailableSlots), len(result.BlockedSlots), len(result.AllSlots))
	}
	seen := map[string]bool{}
	for _, s := range result.AvailableSlots {
		seen[s.Start] = true
	}
	for _, s := range result.BlockedSlots {
		if seen[s.Start] {
			t.Errorf("slot %s appears in both partitions", s.Start)
		}
	}
}

func TestCompute_DayFilter(t *testing.T) {
	result, err := Compute(wednesday, DefaultCalendar(), nil, DefaultBufferMinutes)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.DayOfWeek != 3 {
		t.Fatalf("expected weekday 3, got %d", result.DayOfWeek)
	}
	for _, slot := range result.AllSlots {
		if slot.Start == "21:00" {
			t.Error("late slot offered Thu/Fri must not appear on Wednesday")
		}
	}

	result, err = Compute(thursday, DefaultCalendar(), nil, DefaultBufferMinutes)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	found := false
	for _, slot := range result.AllSlots {
		if slot.Start == "21:00" {
			found = true
		}
	}
	if !found {
		t.Error("late slot missing on Thursday")
	}
}

func TestCompute_OverlapBoundary(t *testing.T) {
	// Reservation 11:00 + 90min + 60min buffer ends 12:30. A slot starting
	// 12:29 is blocked, 12:31 is not; 12:30 exactly is open (strict <).
	calendar := []TimeSlotDefinition{
		{Start: "12:29", End: "13:59", Label: "early", Days: allWeek},
		{Start: "12:30", End: "14:00", Label: "exact", Days: allWeek},
		{Start: "12:31", End: "14:01", Label: "late", Days: allWeek},
	}
	reservations := []Reservation{{EventTime: "11:00", DurationMinutes: intPtr(90)}}

	result, err := Compute(monday, calendar, reservations, 60)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(result.BlockedSlots) != 1 || result.BlockedSlots[0].Label != "early" {
		t.Fatalf("expected only the 12:29 slot blocked, got %+v", result.BlockedSlots)
	}
}

func TestCompute_BufferOnlyAfter(t *testing.T) {
	// Reservation ends (pre-buffer) exactly at slot start. Without buffer the
	// slot is open; the buffer pushes the effective end past the start.
	calendar := []TimeSlotDefinition{{Start: "13:00", End: "14:30", Label: "slot", Days: allWeek}}
	reservations := []Reservation{{EventTime: "11:00", DurationMinutes: intPtr(120)}}

	noBuffer, err := Compute(monday, calendar, reservations, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(noBuffer.BlockedSlots) != 0 {
		t.Error("back-to-back reservation must not block with zero buffer")
	}

	withBuffer, err := Compute(monday, calendar, reservations, 60)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(withBuffer.BlockedSlots) != 1 {
		t.Error("buffer past slot start must block")
	}
}

func TestCompute_DefaultDuration(t *testing.T) {
	// Missing duration occupies 120 minutes: 10:00 + 120 = 12:00, no buffer.
	calendar := []TimeSlotDefinition{
		{Start: "11:59", End: "13:00", Label: "inside", Days: allWeek},
		{Start: "12:00", End: "13:30", Label: "outside", Days: allWeek},
	}
	reservations := []Reservation{{EventTime: "10:00"}}

	result, err := Compute(monday, calendar, reservations, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(result.BlockedSlots) != 1 || result.BlockedSlots[0].Label != "inside" {
		t.Fatalf("expected only the 11:59 slot blocked, got %+v", result.BlockedSlots)
	}
}

func TestCompute_SingleReservationScenario(t *testing.T) {
	// One 13:30 reservation for 90 minutes with a 60 minute buffer blocks
	// only the 13:30 slot; the 16:00 slot sits exactly on the boundary.
	reservations := []Reservation{{EventTime: "13:30", DurationMinutes: intPtr(90)}}
	result, err := Compute(monday, DefaultCalendar(), reservations, 60)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(result.BlockedSlots) != 1 {
		t.Fatalf("expected exactly one blocked slot, got %d", len(result.BlockedSlots))
	}
	if result.BlockedSlots[0].Start != "13:30" {
		t.Errorf("expected 13:30 slot blocked, got %s", result.BlockedSlots[0].Start)
	}
	for _, s := range result.AvailableSlots {
		if s.Start == "13:30" {
			t.Error("13:30 slot must not be available")
		}
	}
	if len(result.AvailableSlots) != 3 {
		t.Errorf("expected 3 available slots, got %d", len(result.AvailableSlots))
	}
}

func TestCompute_EmptyEventTimeSkipped(t *testing.T) {
	reservations := []Reservation{{EventTime: ""}, {EventTime: "  "}}
	result, err := Compute(monday, DefaultCalendar(), reservations, DefaultBufferMinutes)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(result.BlockedSlots) != 0 {
		t.Errorf("reservations without event time must not block, got %d blocked", len(result.BlockedSlots))
	}
}

func TestCompute_NoSlotsOfferedIsNotAnError(t *testing.T) {
	calendar := []TimeSlotDefinition{{Start: "21:00", End: "22:30", Label: "late", Days: []int{4, 5}}}
	result, err := Compute(monday, calendar, nil, DefaultBufferMinutes)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(result.AllSlots) != 0 || len(result.AvailableSlots) != 0 || len(result.BlockedSlots) != 0 {
		t.Errorf("expected empty result for a day with no offered slots, got %+v", result)
	}
}

func TestCompute_InvalidDate(t *testing.T) {
	for _, date := range []string{"", "not-a-date", "2026-13-40", "07/01/2026"} {
		result, err := Compute(date, DefaultCalendar(), nil, DefaultBufferMinutes)
		if !errors.Is(err, ErrInvalidDate) {
			t.Errorf("date %q: expected ErrInvalidDate, got %v", date, err)
		}
		if result != nil {
			t.Errorf("date %q: expected no partial result", date)
		}
	}
}

func TestCompute_OrderPreserved(t *testing.T) {
	result, err := Compute(thursday, DefaultCalendar(), nil, DefaultBufferMinutes)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []string{"11:00", "13:30", "16:00", "18:30", "21:00"}
	if len(result.AllSlots) != len(want) {
		t.Fatalf("expected %d slots, got %d", len(want), len(result.AllSlots))
	}
	for i, s := range result.AllSlots {
		if s.Start != want[i] {
			t.Errorf("slot %d: expected %s, got %s", i, want[i], s.Start)
		}
	}
}
