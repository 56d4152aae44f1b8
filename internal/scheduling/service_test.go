package scheduling

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/escalei/backend/internal/models"
)

func TestGenerateScheduleNotFound(t *testing.T) {
	env := newTestEnv()

	_, err := env.service.Generate(context.Background(), uuid.New(), requester, nil)
	require.ErrorIs(t, err, ErrScheduleNotFound)
}

func TestGeneratePermissionDenied(t *testing.T) {
	env := newTestEnv()
	schedule := seedDraftSchedule(env)
	env.service.perms = denyAllPerms{}

	_, err := env.service.Generate(context.Background(), schedule.ID, requester, nil)
	require.ErrorIs(t, err, ErrPermissionDenied)
}

func TestGenerateRejectedWhenActive(t *testing.T) {
	env := newTestEnv()
	schedule := seedDraftSchedule(env)
	env.schedules.schedules[schedule.ID].Status = models.ScheduleStatusActive

	_, err := env.service.Generate(context.Background(), schedule.ID, requester, []Requirement{
		{AreaID: worshipArea, RoleID: vocalistRole, Count: 1, Order: 1},
	})
	require.ErrorIs(t, err, ErrScheduleNotDraft)
}

func TestGenerateRejectsNonPositiveCount(t *testing.T) {
	env := newTestEnv()
	schedule := seedDraftSchedule(env)

	_, err := env.service.Generate(context.Background(), schedule.ID, requester, []Requirement{
		{AreaID: worshipArea, RoleID: vocalistRole, Count: 0, Order: 1},
	})
	require.ErrorIs(t, err, ErrInvalidRequirement)
}

func TestGenerateRejectsRoleAreaMismatch(t *testing.T) {
	env := newTestEnv()
	schedule := seedDraftSchedule(env)
	otherArea := uuid.New()

	// Validation fails fast: nothing is committed even though an earlier,
	// valid requirement could have produced assignments.
	env.addMember(worshipArea, userA, map[uuid.UUID]int{vocalistRole: 1})
	_, err := env.service.Generate(context.Background(), schedule.ID, requester, []Requirement{
		{AreaID: worshipArea, RoleID: vocalistRole, Count: 1, Order: 1},
		{AreaID: otherArea, RoleID: vocalistRole, Count: 1, Order: 2},
	})
	require.ErrorIs(t, err, ErrInvalidRequirement)

	stored, listErr := env.assignments.ListBySchedule(context.Background(), schedule.ID)
	require.NoError(t, listErr)
	require.Empty(t, stored)
}

func TestPublishDraftSchedule(t *testing.T) {
	env := newTestEnv()
	schedule := seedDraftSchedule(env)

	updated, err := env.service.Publish(context.Background(), schedule.ID, requester)
	require.NoError(t, err)
	require.Equal(t, models.ScheduleStatusActive, updated.Status)
}

func TestPublishAllowedWithUnfulfilledRequirements(t *testing.T) {
	env := newTestEnv()
	schedule := seedDraftSchedule(env)

	// Generate with an unfillable requirement, then publish anyway.
	result, err := env.service.Generate(context.Background(), schedule.ID, requester, []Requirement{
		{AreaID: worshipArea, RoleID: vocalistRole, Count: 3, Order: 1},
	})
	require.NoError(t, err)
	require.False(t, result.Statistics[0].Fulfilled)

	updated, err := env.service.Publish(context.Background(), schedule.ID, requester)
	require.NoError(t, err)
	require.Equal(t, models.ScheduleStatusActive, updated.Status)
}

// Publishing an already active schedule is an explicit state error and leaves
// the assignment set byte-for-byte unchanged.
func TestPublishAlreadyActive(t *testing.T) {
	env := newTestEnv()
	schedule := seedDraftSchedule(env)
	env.addMember(worshipArea, userA, map[uuid.UUID]int{vocalistRole: 1})

	_, err := env.service.Generate(context.Background(), schedule.ID, requester, []Requirement{
		{AreaID: worshipArea, RoleID: vocalistRole, Count: 1, Order: 1},
	})
	require.NoError(t, err)
	before, err := env.assignments.ListBySchedule(context.Background(), schedule.ID)
	require.NoError(t, err)

	_, err = env.service.Publish(context.Background(), schedule.ID, requester)
	require.NoError(t, err)

	_, err = env.service.Publish(context.Background(), schedule.ID, requester)
	require.ErrorIs(t, err, ErrScheduleAlreadyActive)

	after, err := env.assignments.ListBySchedule(context.Background(), schedule.ID)
	require.NoError(t, err)
	require.Equal(t, before, after)
}

func TestPublishNotFound(t *testing.T) {
	env := newTestEnv()

	_, err := env.service.Publish(context.Background(), uuid.New(), requester)
	require.ErrorIs(t, err, ErrScheduleNotFound)
}

func TestPublishPermissionDenied(t *testing.T) {
	env := newTestEnv()
	schedule := seedDraftSchedule(env)
	env.service.perms = denyAllPerms{}

	_, err := env.service.Publish(context.Background(), schedule.ID, requester)
	require.ErrorIs(t, err, ErrPermissionDenied)
}

func TestGenerateLockBusy(t *testing.T) {
	env := newTestEnv()
	schedule := seedDraftSchedule(env)
	env.service.locker = busyLocker{}

	_, err := env.service.Generate(context.Background(), schedule.ID, requester, []Requirement{
		{AreaID: worshipArea, RoleID: vocalistRole, Count: 1, Order: 1},
	})
	require.ErrorIs(t, err, ErrGenerationInProgress)
}

type busyLocker struct{}

func (busyLocker) Acquire(context.Context, string) (func(), error) {
	return nil, ErrGenerationInProgress
}
