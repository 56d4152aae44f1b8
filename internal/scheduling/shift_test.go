package scheduling

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func date(y int, m time.Month, d, hour, min int) time.Time {
	return time.Date(y, m, d, hour, min, 0, 0, time.UTC)
}

func TestSlotsInWindow(t *testing.T) {
	// 2026-09-06 is a Sunday.
	tests := []struct {
		name  string
		start time.Time
		end   time.Time
		want  []Slot
	}{
		{
			name:  "sunday morning service",
			start: date(2026, time.September, 6, 9, 0),
			end:   date(2026, time.September, 6, 11, 0),
			want: []Slot{
				{Date: date(2026, time.September, 6, 0, 0), Shift: ShiftMorning},
			},
		},
		{
			name:  "window ending exactly at noon stays in the morning",
			start: date(2026, time.September, 6, 9, 0),
			end:   date(2026, time.September, 6, 12, 0),
			want: []Slot{
				{Date: date(2026, time.September, 6, 0, 0), Shift: ShiftMorning},
			},
		},
		{
			name:  "window starting at noon is afternoon only",
			start: date(2026, time.September, 6, 12, 0),
			end:   date(2026, time.September, 6, 14, 0),
			want: []Slot{
				{Date: date(2026, time.September, 6, 0, 0), Shift: ShiftAfternoon},
			},
		},
		{
			name:  "afternoon into evening",
			start: date(2026, time.September, 6, 16, 0),
			end:   date(2026, time.September, 6, 21, 0),
			want: []Slot{
				{Date: date(2026, time.September, 6, 0, 0), Shift: ShiftAfternoon},
				{Date: date(2026, time.September, 6, 0, 0), Shift: ShiftEvening},
			},
		},
		{
			name:  "overnight vigil crosses midnight",
			start: date(2026, time.September, 5, 22, 0),
			end:   date(2026, time.September, 6, 2, 0),
			want: []Slot{
				{Date: date(2026, time.September, 5, 0, 0), Shift: ShiftEvening},
				{Date: date(2026, time.September, 6, 0, 0), Shift: ShiftMorning},
			},
		},
		{
			name:  "zero-length window keeps its containing bucket",
			start: date(2026, time.September, 6, 9, 0),
			end:   date(2026, time.September, 6, 9, 0),
			want: []Slot{
				{Date: date(2026, time.September, 6, 0, 0), Shift: ShiftMorning},
			},
		},
		{
			name:  "end before start yields nothing",
			start: date(2026, time.September, 6, 11, 0),
			end:   date(2026, time.September, 6, 9, 0),
			want:  nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, SlotsInWindow(tt.start, tt.end))
		})
	}
}

func TestSlotWeekday(t *testing.T) {
	slot := Slot{Date: date(2026, time.September, 6, 0, 0), Shift: ShiftMorning}
	require.Equal(t, time.Sunday, slot.Weekday())
}

func TestValidShift(t *testing.T) {
	require.True(t, ValidShift("morning"))
	require.True(t, ValidShift("afternoon"))
	require.True(t, ValidShift("evening"))
	require.False(t, ValidShift("night"))
	require.False(t, ValidShift(""))
}
