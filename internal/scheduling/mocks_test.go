package scheduling

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/escalei/backend/internal/models"
)

// In-memory stores used by the engine and service tests. Seed the exported
// maps directly.

type mockMembershipStore struct {
	areaMembers map[uuid.UUID][]uuid.UUID
	roleHolders map[uuid.UUID]map[uuid.UUID]int
	roleAreas   map[uuid.UUID]uuid.UUID // roleID -> owning areaID
	err         error
}

func newMockMembershipStore() *mockMembershipStore {
	return &mockMembershipStore{
		areaMembers: make(map[uuid.UUID][]uuid.UUID),
		roleHolders: make(map[uuid.UUID]map[uuid.UUID]int),
		roleAreas:   make(map[uuid.UUID]uuid.UUID),
	}
}

func (m *mockMembershipStore) AreaMemberIDs(_ context.Context, areaID uuid.UUID) ([]uuid.UUID, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.areaMembers[areaID], nil
}

func (m *mockMembershipStore) RoleHolders(_ context.Context, roleID uuid.UUID) (map[uuid.UUID]int, error) {
	if m.err != nil {
		return nil, m.err
	}
	out := make(map[uuid.UUID]int, len(m.roleHolders[roleID]))
	for id, prio := range m.roleHolders[roleID] {
		out[id] = prio
	}
	return out, nil
}

func (m *mockMembershipStore) RoleBelongsToArea(_ context.Context, roleID, areaID uuid.UUID) (bool, error) {
	if m.err != nil {
		return false, m.err
	}
	return m.roleAreas[roleID] == areaID, nil
}

type mockAvailabilityStore struct {
	weekly     map[uuid.UUID][]WeeklyRule
	exceptions map[uuid.UUID][]Exception
}

func newMockAvailabilityStore() *mockAvailabilityStore {
	return &mockAvailabilityStore{
		weekly:     make(map[uuid.UUID][]WeeklyRule),
		exceptions: make(map[uuid.UUID][]Exception),
	}
}

func (m *mockAvailabilityStore) WeeklyRules(_ context.Context, userIDs []uuid.UUID) (map[uuid.UUID][]WeeklyRule, error) {
	out := make(map[uuid.UUID][]WeeklyRule)
	for _, id := range userIDs {
		if rules, ok := m.weekly[id]; ok {
			out[id] = rules
		}
	}
	return out, nil
}

func (m *mockAvailabilityStore) Exceptions(_ context.Context, userIDs []uuid.UUID) (map[uuid.UUID][]Exception, error) {
	out := make(map[uuid.UUID][]Exception)
	for _, id := range userIDs {
		if excs, ok := m.exceptions[id]; ok {
			out[id] = excs
		}
	}
	return out, nil
}

var errReplaceBoom = errors.New("replace failed")

type mockAssignmentStore struct {
	bySchedule  map[uuid.UUID][]models.Assignment
	failReplace bool
}

func newMockAssignmentStore() *mockAssignmentStore {
	return &mockAssignmentStore{bySchedule: make(map[uuid.UUID][]models.Assignment)}
}

func (m *mockAssignmentStore) ListBySchedule(_ context.Context, scheduleID uuid.UUID) ([]models.Assignment, error) {
	return m.bySchedule[scheduleID], nil
}

func (m *mockAssignmentStore) ReplaceForSchedule(_ context.Context, scheduleID uuid.UUID, assignments []models.Assignment) error {
	if m.failReplace {
		return errReplaceBoom
	}
	m.bySchedule[scheduleID] = assignments
	return nil
}

type mockScheduleStore struct {
	schedules map[uuid.UUID]*models.Schedule
}

func newMockScheduleStore() *mockScheduleStore {
	return &mockScheduleStore{schedules: make(map[uuid.UUID]*models.Schedule)}
}

func (m *mockScheduleStore) GetByID(_ context.Context, id uuid.UUID) (*models.Schedule, error) {
	if s, ok := m.schedules[id]; ok {
		copied := *s
		return &copied, nil
	}
	return nil, pgx.ErrNoRows
}

func (m *mockScheduleStore) UpdateStatus(_ context.Context, id uuid.UUID, status models.ScheduleStatus) (*models.Schedule, error) {
	s, ok := m.schedules[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	s.Status = status
	copied := *s
	return &copied, nil
}

type allowAllPerms struct{}

func (allowAllPerms) CanManageSchedule(context.Context, uuid.UUID, *models.Schedule) (bool, error) {
	return true, nil
}

type denyAllPerms struct{}

func (denyAllPerms) CanManageSchedule(context.Context, uuid.UUID, *models.Schedule) (bool, error) {
	return false, nil
}

// testEnv aggregates the mocks behind a wired Service for seeding.
type testEnv struct {
	memberships  *mockMembershipStore
	availability *mockAvailabilityStore
	assignments  *mockAssignmentStore
	schedules    *mockScheduleStore
	service      *Service
}

func newTestEnv() *testEnv {
	env := &testEnv{
		memberships:  newMockMembershipStore(),
		availability: newMockAvailabilityStore(),
		assignments:  newMockAssignmentStore(),
		schedules:    newMockScheduleStore(),
	}
	engine := NewEngine(env.memberships, env.availability, env.assignments, zap.NewNop())
	env.service = NewService(env.schedules, engine, allowAllPerms{}, NopLocker{}, zap.NewNop())
	return env
}

// addMember puts the user in the area and optionally gives them a role with a
// personal priority.
func (env *testEnv) addMember(areaID uuid.UUID, userID uuid.UUID, roles map[uuid.UUID]int) {
	env.memberships.areaMembers[areaID] = append(env.memberships.areaMembers[areaID], userID)
	for roleID, prio := range roles {
		if env.memberships.roleHolders[roleID] == nil {
			env.memberships.roleHolders[roleID] = make(map[uuid.UUID]int)
		}
		env.memberships.roleHolders[roleID][userID] = prio
	}
}
