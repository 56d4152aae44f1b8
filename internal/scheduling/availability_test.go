package scheduling

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func TestResolverWeeklyRule(t *testing.T) {
	userID := uuid.New()
	// Blocked on Sunday mornings.
	resolver := NewResolver(
		[]uuid.UUID{userID},
		map[uuid.UUID][]WeeklyRule{
			userID: {{Weekday: 0, Shift: ShiftMorning, Blocked: true}},
		},
		nil,
	)

	sundayMorning := date(2026, time.September, 6, 9, 0)
	require.False(t, resolver.IsAvailable(userID, sundayMorning, sundayMorning.Add(2*time.Hour)))

	sundayEvening := date(2026, time.September, 6, 19, 0)
	require.True(t, resolver.IsAvailable(userID, sundayEvening, sundayEvening.Add(2*time.Hour)))

	mondayMorning := date(2026, time.September, 7, 9, 0)
	require.True(t, resolver.IsAvailable(userID, mondayMorning, mondayMorning.Add(2*time.Hour)))
}

func TestResolverNoRecordsMeansAvailable(t *testing.T) {
	userID := uuid.New()
	resolver := NewResolver([]uuid.UUID{userID}, nil, nil)

	start := date(2026, time.September, 6, 9, 0)
	require.True(t, resolver.IsAvailable(userID, start, start.Add(2*time.Hour)))
}

func TestResolverUnknownUserIsUnavailable(t *testing.T) {
	resolver := NewResolver(nil, nil, nil)

	start := date(2026, time.September, 6, 9, 0)
	require.False(t, resolver.IsAvailable(uuid.New(), start, start.Add(2*time.Hour)))
}

func TestResolverExceptionOverridesWeeklyRule(t *testing.T) {
	userID := uuid.New()
	sunday := date(2026, time.September, 6, 0, 0)
	nextSunday := date(2026, time.September, 13, 0, 0)

	// Blocked every Sunday morning, but opened for Sep 6 specifically.
	resolver := NewResolver(
		[]uuid.UUID{userID},
		map[uuid.UUID][]WeeklyRule{
			userID: {{Weekday: 0, Shift: ShiftMorning, Blocked: true}},
		},
		map[uuid.UUID][]Exception{
			userID: {{Date: sunday, IsAvailable: true}},
		},
	)

	require.True(t, resolver.IsAvailable(userID, sunday.Add(9*time.Hour), sunday.Add(11*time.Hour)))
	// Next Sunday falls back to the weekly rule.
	require.False(t, resolver.IsAvailable(userID, nextSunday.Add(9*time.Hour), nextSunday.Add(11*time.Hour)))
}

func TestResolverExceptionBlocksOpenDate(t *testing.T) {
	userID := uuid.New()
	sunday := date(2026, time.September, 6, 0, 0)

	// No weekly rules at all, but Sep 6 is blocked by exception.
	resolver := NewResolver(
		[]uuid.UUID{userID},
		nil,
		map[uuid.UUID][]Exception{
			userID: {{Date: sunday, IsAvailable: false}},
		},
	)

	require.False(t, resolver.IsAvailable(userID, sunday.Add(9*time.Hour), sunday.Add(11*time.Hour)))
}

func TestResolverAnyBlockedBucketBlocksWindow(t *testing.T) {
	userID := uuid.New()
	// Blocked Sunday evenings only.
	resolver := NewResolver(
		[]uuid.UUID{userID},
		map[uuid.UUID][]WeeklyRule{
			userID: {{Weekday: 0, Shift: ShiftEvening, Blocked: true}},
		},
		nil,
	)

	// Window spans afternoon and evening; the evening block makes the whole
	// window unavailable.
	start := date(2026, time.September, 6, 16, 0)
	require.False(t, resolver.IsAvailable(userID, start, start.Add(5*time.Hour)))
}
