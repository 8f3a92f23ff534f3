package availability

import (
	"encoding/json"
	"fmt"
	"os"
)

var allWeek = []int{0, 1, 2, 3, 4, 5, 6}

// DefaultCalendar returns the slot table the venue runs when no override file
// is configured. The late slot only runs Thursday and Friday.
func DefaultCalendar() []TimeSlotDefinition {
	return []TimeSlotDefinition{
		{Start: "11:00", End: "12:30", DurationMinutes: 90, Label: "Lunch service", Days: allWeek},
		{Start: "13:30", End: "15:00", DurationMinutes: 90, Label: "Afternoon class", Days: allWeek},
		{Start: "16:00", End: "17:30", DurationMinutes: 90, Label: "Early evening class", Days: allWeek},
		{Start: "18:30", End: "20:00", DurationMinutes: 90, Label: "Dinner service", Days: allWeek},
		{Start: "21:00", End: "22:30", DurationMinutes: 90, Label: "Late tasting", Days: []int{4, 5}},
	}
}

// LoadCalendar reads a slot calendar from a JSON file. An empty path yields
// the default calendar.
func LoadCalendar(path string) ([]TimeSlotDefinition, error) {
	if path == "" {
		return DefaultCalendar(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("availability: read calendar: %w", err)
	}
	var calendar []TimeSlotDefinition
	if err := json.Unmarshal(data, &calendar); err != nil {
		return nil, fmt.Errorf("availability: parse calendar: %w", err)
	}
	for i, slot := range calendar {
		if err := validateSlot(slot); err != nil {
			return nil, fmt.Errorf("availability: calendar entry %d: %w", i, err)
		}
	}
	return calendar, nil
}

func validateSlot(slot TimeSlotDefinition) error {
	start, err := minutesOfDay(slot.Start)
	if err != nil {
		return err
	}
	end, err := minutesOfDay(slot.End)
	if err != nil {
		return err
	}
	if start >= end {
		return fmt.Errorf("availability: slot %q ends before it starts", slot.Label)
	}
	if len(slot.Days) == 0 {
		return fmt.Errorf("availability: slot %q offered on no days", slot.Label)
	}
	for _, d := range slot.Days {
		if d < 0 || d > 6 {
			return fmt.Errorf("availability: slot %q has invalid weekday %d", slot.Label, d)
		}
	}
	return nil
}
