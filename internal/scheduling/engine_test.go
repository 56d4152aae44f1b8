package scheduling

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/escalei/backend/internal/models"
)

var (
	worshipArea  = uuid.MustParse("10000000-0000-0000-0000-000000000001")
	vocalistRole = uuid.MustParse("20000000-0000-0000-0000-000000000001")
	drummerRole  = uuid.MustParse("20000000-0000-0000-0000-000000000002")

	userA = uuid.MustParse("00000000-0000-0000-0000-0000000000a1")
	userB = uuid.MustParse("00000000-0000-0000-0000-0000000000b1")
	userC = uuid.MustParse("00000000-0000-0000-0000-0000000000c1")
	userX = uuid.MustParse("00000000-0000-0000-0000-0000000000d1")
	userY = uuid.MustParse("00000000-0000-0000-0000-0000000000e1")

	requester = uuid.MustParse("90000000-0000-0000-0000-000000000001")
)

// seedDraftSchedule stores a draft schedule for Sunday 2026-09-06 09:00-11:00
// and registers the worship roles under the worship area.
func seedDraftSchedule(env *testEnv) *models.Schedule {
	schedule := &models.Schedule{
		ID:        uuid.MustParse("30000000-0000-0000-0000-000000000001"),
		Name:      "Sunday Service",
		Type:      "Louvor",
		StartsAt:  date(2026, time.September, 6, 9, 0),
		EndsAt:    date(2026, time.September, 6, 11, 0),
		Status:    models.ScheduleStatusDraft,
		CreatedBy: requester,
	}
	env.schedules.schedules[schedule.ID] = schedule
	env.memberships.roleAreas[vocalistRole] = worshipArea
	env.memberships.roleAreas[drummerRole] = worshipArea
	return schedule
}

func userIDs(assignments []models.Assignment) []uuid.UUID {
	out := make([]uuid.UUID, len(assignments))
	for i, a := range assignments {
		out[i] = a.UserID
	}
	return out
}

// Scenario: two vocalist slots requested; A is free, B is blocked on Sunday
// mornings, C is in the area but lacks the role. Only A is assigned and the
// requirement reports unfulfilled without erroring.
func TestGenerateFiltersEligibilityAndAvailability(t *testing.T) {
	env := newTestEnv()
	schedule := seedDraftSchedule(env)

	env.addMember(worshipArea, userA, map[uuid.UUID]int{vocalistRole: 1})
	env.addMember(worshipArea, userB, map[uuid.UUID]int{vocalistRole: 1})
	env.addMember(worshipArea, userC, nil)
	env.availability.weekly[userB] = []WeeklyRule{{Weekday: 0, Shift: ShiftMorning, Blocked: true}}

	result, err := env.service.Generate(context.Background(), schedule.ID, requester, []Requirement{
		{AreaID: worshipArea, RoleID: vocalistRole, Count: 2, Order: 1},
	})
	require.NoError(t, err)
	require.Equal(t, RunCompleted, result.State)

	require.Equal(t, []uuid.UUID{userA}, userIDs(result.Assignments))
	require.Equal(t, []RequirementStat{
		{AreaID: worshipArea, RoleID: vocalistRole, Requested: 2, Selected: 1, Fulfilled: false},
	}, result.Statistics)

	stored, err := env.assignments.ListBySchedule(context.Background(), schedule.ID)
	require.NoError(t, err)
	require.Equal(t, []uuid.UUID{userA}, userIDs(stored))
}

// Scenario: two one-slot tiers for the same (area, role). The first tier takes
// X; the second tier's pool excludes X and takes Y. Both fulfilled.
func TestGenerateTieredQuotas(t *testing.T) {
	env := newTestEnv()
	schedule := seedDraftSchedule(env)

	env.addMember(worshipArea, userX, map[uuid.UUID]int{vocalistRole: 1})
	env.addMember(worshipArea, userY, map[uuid.UUID]int{vocalistRole: 2})

	result, err := env.service.Generate(context.Background(), schedule.ID, requester, []Requirement{
		{AreaID: worshipArea, RoleID: vocalistRole, Count: 1, Order: 1},
		{AreaID: worshipArea, RoleID: vocalistRole, Count: 1, Order: 2},
	})
	require.NoError(t, err)

	require.Equal(t, []uuid.UUID{userX, userY}, userIDs(result.Assignments))
	for _, st := range result.Statistics {
		require.True(t, st.Fulfilled)
		require.Equal(t, 1, st.Selected)
	}
}

func TestGenerateNoUserAssignedTwice(t *testing.T) {
	env := newTestEnv()
	schedule := seedDraftSchedule(env)

	// A holds both roles; B only drums.
	env.addMember(worshipArea, userA, map[uuid.UUID]int{vocalistRole: 1, drummerRole: 2})
	env.addMember(worshipArea, userB, map[uuid.UUID]int{drummerRole: 1})

	result, err := env.service.Generate(context.Background(), schedule.ID, requester, []Requirement{
		{AreaID: worshipArea, RoleID: vocalistRole, Count: 1, Order: 1},
		{AreaID: worshipArea, RoleID: drummerRole, Count: 1, Order: 2},
	})
	require.NoError(t, err)

	seen := make(map[uuid.UUID]int)
	for _, a := range result.Assignments {
		seen[a.UserID]++
	}
	for userID, n := range seen {
		require.Equal(t, 1, n, "user %s assigned more than once", userID)
	}
	require.Len(t, result.Assignments, 2)
}

func TestGenerateRequirementOrderIsExplicit(t *testing.T) {
	env := newTestEnv()
	schedule := seedDraftSchedule(env)

	// Only one vocalist available; the requirement with the lower Order wins
	// them even when listed last.
	env.addMember(worshipArea, userA, map[uuid.UUID]int{vocalistRole: 1})

	result, err := env.service.Generate(context.Background(), schedule.ID, requester, []Requirement{
		{AreaID: worshipArea, RoleID: vocalistRole, Count: 1, Order: 2},
		{AreaID: worshipArea, RoleID: vocalistRole, Count: 1, Order: 1},
	})
	require.NoError(t, err)

	require.Equal(t, []RequirementStat{
		{AreaID: worshipArea, RoleID: vocalistRole, Requested: 1, Selected: 1, Fulfilled: true},
		{AreaID: worshipArea, RoleID: vocalistRole, Requested: 1, Selected: 0, Fulfilled: false},
	}, result.Statistics)
}

func TestGenerateDeterministic(t *testing.T) {
	env := newTestEnv()
	schedule := seedDraftSchedule(env)

	for _, id := range []uuid.UUID{userC, userA, userY, userB, userX} {
		env.addMember(worshipArea, id, map[uuid.UUID]int{vocalistRole: 3})
	}
	reqs := []Requirement{{AreaID: worshipArea, RoleID: vocalistRole, Count: 3, Order: 1}}

	first, err := env.service.Generate(context.Background(), schedule.ID, requester, reqs)
	require.NoError(t, err)
	second, err := env.service.Generate(context.Background(), schedule.ID, requester, reqs)
	require.NoError(t, err)

	require.Equal(t, userIDs(first.Assignments), userIDs(second.Assignments))
	require.Equal(t, first.Statistics, second.Statistics)
}

func TestGenerateReplacesPriorAssignmentSet(t *testing.T) {
	env := newTestEnv()
	schedule := seedDraftSchedule(env)

	env.addMember(worshipArea, userA, map[uuid.UUID]int{vocalistRole: 1})
	env.addMember(worshipArea, userB, map[uuid.UUID]int{drummerRole: 1})

	_, err := env.service.Generate(context.Background(), schedule.ID, requester, []Requirement{
		{AreaID: worshipArea, RoleID: vocalistRole, Count: 1, Order: 1},
	})
	require.NoError(t, err)

	// Second run asks only for a drummer; the vocalist assignment must not
	// survive it.
	_, err = env.service.Generate(context.Background(), schedule.ID, requester, []Requirement{
		{AreaID: worshipArea, RoleID: drummerRole, Count: 1, Order: 1},
	})
	require.NoError(t, err)

	stored, err := env.assignments.ListBySchedule(context.Background(), schedule.ID)
	require.NoError(t, err)
	require.Equal(t, []uuid.UUID{userB}, userIDs(stored))
}

func TestGenerateStorageFailureLeavesOldSetUntouched(t *testing.T) {
	env := newTestEnv()
	schedule := seedDraftSchedule(env)

	env.addMember(worshipArea, userA, map[uuid.UUID]int{vocalistRole: 1})
	reqs := []Requirement{{AreaID: worshipArea, RoleID: vocalistRole, Count: 1, Order: 1}}

	first, err := env.service.Generate(context.Background(), schedule.ID, requester, reqs)
	require.NoError(t, err)
	require.Len(t, first.Assignments, 1)

	env.assignments.failReplace = true
	result, err := env.service.Generate(context.Background(), schedule.ID, requester, reqs)
	require.ErrorIs(t, err, ErrStorageFailure)
	require.Equal(t, RunFailed, result.State)

	stored, listErr := env.assignments.ListBySchedule(context.Background(), schedule.ID)
	require.NoError(t, listErr)
	require.Equal(t, []uuid.UUID{userA}, userIDs(stored))
}

func TestGenerateEmptyPoolIsNotAnError(t *testing.T) {
	env := newTestEnv()
	schedule := seedDraftSchedule(env)

	result, err := env.service.Generate(context.Background(), schedule.ID, requester, []Requirement{
		{AreaID: worshipArea, RoleID: vocalistRole, Count: 2, Order: 1},
	})
	require.NoError(t, err)
	require.Equal(t, RunCompleted, result.State)
	require.Empty(t, result.Assignments)
	require.Equal(t, []RequirementStat{
		{AreaID: worshipArea, RoleID: vocalistRole, Requested: 2, Selected: 0, Fulfilled: false},
	}, result.Statistics)
}
