package scheduling

import "time"

// Shift is one of the three fixed day parts used by availability rules.
type Shift string

const (
	ShiftMorning   Shift = "morning"   // [00:00, 12:00)
	ShiftAfternoon Shift = "afternoon" // [12:00, 18:00)
	ShiftEvening   Shift = "evening"   // [18:00, 24:00)
)

var shiftOrder = []Shift{ShiftMorning, ShiftAfternoon, ShiftEvening}

var shiftHours = map[Shift][2]int{
	ShiftMorning:   {0, 12},
	ShiftAfternoon: {12, 18},
	ShiftEvening:   {18, 24},
}

// ValidShift reports whether s names a known shift.
func ValidShift(s string) bool {
	_, ok := shiftHours[Shift(s)]
	return ok
}

// Slot is one (calendar date, shift) bucket that a schedule window overlaps.
type Slot struct {
	Date  time.Time // midnight in the window's location
	Shift Shift
}

// Weekday returns the slot's day of week (Sunday = 0).
func (s Slot) Weekday() time.Weekday {
	return s.Date.Weekday()
}

// SlotsInWindow maps a schedule's [start, end] window to the (date, shift)
// buckets it overlaps. A zero-length window still yields the bucket containing
// start. Returns nil when end precedes start.
func SlotsInWindow(start, end time.Time) []Slot {
	if end.Before(start) {
		return nil
	}
	if !end.After(start) {
		end = start.Add(time.Minute)
	}

	var slots []Slot
	day := time.Date(start.Year(), start.Month(), start.Day(), 0, 0, 0, 0, start.Location())
	for day.Before(end) {
		for _, sh := range shiftOrder {
			bounds := shiftHours[sh]
			segStart := time.Date(day.Year(), day.Month(), day.Day(), bounds[0], 0, 0, 0, day.Location())
			segEnd := time.Date(day.Year(), day.Month(), day.Day(), bounds[1], 0, 0, 0, day.Location())
			if segStart.Before(end) && segEnd.After(start) {
				slots = append(slots, Slot{Date: day, Shift: sh})
			}
		}
		day = day.AddDate(0, 0, 1)
	}
	return slots
}
