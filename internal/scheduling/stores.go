package scheduling

import (
	"context"

	"github.com/google/uuid"

	"github.com/escalei/backend/internal/models"
)

// MembershipStore provides area membership and role possession lookups.
type MembershipStore interface {
	// AreaMemberIDs returns the IDs of all users belonging to the area.
	AreaMemberIDs(ctx context.Context, areaID uuid.UUID) ([]uuid.UUID, error)
	// RoleHolders returns userID -> personal priority for everyone holding the role.
	RoleHolders(ctx context.Context, roleID uuid.UUID) (map[uuid.UUID]int, error)
	// RoleBelongsToArea reports whether the role is configured under the area.
	RoleBelongsToArea(ctx context.Context, roleID, areaID uuid.UUID) (bool, error)
}

// AvailabilityStore provides weekly rules and exception dates for a set of users.
type AvailabilityStore interface {
	WeeklyRules(ctx context.Context, userIDs []uuid.UUID) (map[uuid.UUID][]WeeklyRule, error)
	Exceptions(ctx context.Context, userIDs []uuid.UUID) (map[uuid.UUID][]Exception, error)
}

// AssignmentStore reads and transactionally replaces a schedule's assignments.
type AssignmentStore interface {
	ListBySchedule(ctx context.Context, scheduleID uuid.UUID) ([]models.Assignment, error)
	// ReplaceForSchedule swaps the schedule's whole assignment set in one
	// transaction: either the new set fully replaces the old one, or the old
	// set survives untouched.
	ReplaceForSchedule(ctx context.Context, scheduleID uuid.UUID, assignments []models.Assignment) error
}

// ScheduleStore reads schedules and advances their lifecycle status.
type ScheduleStore interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.Schedule, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status models.ScheduleStatus) (*models.Schedule, error)
}

// PermissionChecker decides whether a user may run staffing operations on a
// schedule. The engine itself never re-derives permissions.
type PermissionChecker interface {
	CanManageSchedule(ctx context.Context, userID uuid.UUID, schedule *models.Schedule) (bool, error)
}

// Locker serializes generation runs for one schedule. Acquire fails with
// ErrGenerationInProgress when another run holds the key.
type Locker interface {
	Acquire(ctx context.Context, key string) (release func(), err error)
}
