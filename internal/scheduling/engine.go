package scheduling

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/escalei/backend/internal/models"
)

// Requirement is one staffing need: Count slots of RoleID within AreaID.
// Order is the requirement's explicit priority within a run (lower is staffed
// first); it is a required wire field so priority never depends on array order
// surviving serialization. Duplicate (area, role) rows are legal and are
// processed independently, which expresses tiered quotas.
type Requirement struct {
	AreaID uuid.UUID `json:"area_id" binding:"required"`
	RoleID uuid.UUID `json:"role_id" binding:"required"`
	Count  int       `json:"count" binding:"required"`
	Order  int       `json:"order"`
}

// RequirementStat is the per-requirement fulfillment record of a run.
type RequirementStat struct {
	AreaID    uuid.UUID `json:"area_id"`
	RoleID    uuid.UUID `json:"role_id"`
	Requested int       `json:"requested"`
	Selected  int       `json:"selected"`
	Fulfilled bool      `json:"fulfilled"`
}

// RunState is the lifecycle of one generation run.
type RunState string

const (
	RunIdle      RunState = "idle"
	RunRunning   RunState = "running"
	RunCompleted RunState = "completed"
	RunFailed    RunState = "failed"
)

// RunResult is the outcome of a completed generation run.
type RunResult struct {
	State       RunState            `json:"state"`
	Assignments []models.Assignment `json:"assignments"`
	Statistics  []RequirementStat   `json:"statistics"`
}

// Engine computes and commits participant assignments for a schedule. It walks
// the requirement list in priority order, narrowing the pool per requirement
// with eligibility and availability filters, ranking the survivors for
// fairness, and taking the head of the list.
type Engine struct {
	memberships  MembershipStore
	availability AvailabilityStore
	assignments  AssignmentStore
	logger       *zap.Logger
}

// NewEngine creates an assignment engine over the given stores.
func NewEngine(memberships MembershipStore, availability AvailabilityStore, assignments AssignmentStore, logger *zap.Logger) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{
		memberships:  memberships,
		availability: availability,
		assignments:  assignments,
		logger:       logger,
	}
}

// Run executes one generation run for a draft schedule. The requirement list
// must already be validated and sorted by Order. A requirement with too few
// candidates is not a failure: it records Fulfilled=false and the run still
// commits whatever was assignable. The commit replaces the schedule's entire
// assignment set transactionally; on any storage error the old set survives
// untouched and the run reports RunFailed.
func (e *Engine) Run(ctx context.Context, schedule *models.Schedule, reqs []Requirement) (*RunResult, error) {
	state := RunRunning

	areaMembers := make(map[uuid.UUID][]uuid.UUID)
	roleHolders := make(map[uuid.UUID]map[uuid.UUID]int)
	for _, req := range reqs {
		if _, ok := areaMembers[req.AreaID]; !ok {
			members, err := e.memberships.AreaMemberIDs(ctx, req.AreaID)
			if err != nil {
				return e.fail(schedule, fmt.Errorf("load area members: %w", err))
			}
			areaMembers[req.AreaID] = members
		}
		if _, ok := roleHolders[req.RoleID]; !ok {
			holders, err := e.memberships.RoleHolders(ctx, req.RoleID)
			if err != nil {
				return e.fail(schedule, fmt.Errorf("load role holders: %w", err))
			}
			roleHolders[req.RoleID] = holders
		}
	}

	resolver, err := e.buildResolver(ctx, areaMembers)
	if err != nil {
		return e.fail(schedule, err)
	}

	assigned := make(map[uuid.UUID]struct{})
	load := make(map[uuid.UUID]int)
	assignments := make([]models.Assignment, 0)
	stats := make([]RequirementStat, 0, len(reqs))

	for _, req := range reqs {
		pool := EligibleCandidates(areaMembers[req.AreaID], roleHolders[req.RoleID], assigned)
		available := pool[:0]
		for _, cand := range pool {
			if resolver.IsAvailable(cand.UserID, schedule.StartsAt, schedule.EndsAt) {
				available = append(available, cand)
			}
		}
		ranked := Rank(available, load)

		selected := ranked
		if len(selected) > req.Count {
			selected = selected[:req.Count]
		}
		for _, cand := range selected {
			assignments = append(assignments, models.Assignment{
				ScheduleID: schedule.ID,
				UserID:     cand.UserID,
				RoleID:     req.RoleID,
				AreaID:     req.AreaID,
			})
			assigned[cand.UserID] = struct{}{}
			load[cand.UserID]++
		}
		stats = append(stats, RequirementStat{
			AreaID:    req.AreaID,
			RoleID:    req.RoleID,
			Requested: req.Count,
			Selected:  len(selected),
			Fulfilled: len(selected) == req.Count,
		})
	}

	if err := e.assignments.ReplaceForSchedule(ctx, schedule.ID, assignments); err != nil {
		return e.fail(schedule, fmt.Errorf("%w: %v", ErrStorageFailure, err))
	}

	state = RunCompleted
	e.logger.Info("generation run completed",
		zap.String("schedule_id", schedule.ID.String()),
		zap.Int("requirements", len(reqs)),
		zap.Int("assignments", len(assignments)),
	)
	return &RunResult{State: state, Assignments: assignments, Statistics: stats}, nil
}

func (e *Engine) buildResolver(ctx context.Context, areaMembers map[uuid.UUID][]uuid.UUID) (*Resolver, error) {
	seen := make(map[uuid.UUID]struct{})
	var userIDs []uuid.UUID
	for _, members := range areaMembers {
		for _, id := range members {
			if _, ok := seen[id]; ok {
				continue
			}
			seen[id] = struct{}{}
			userIDs = append(userIDs, id)
		}
	}
	weekly, err := e.availability.WeeklyRules(ctx, userIDs)
	if err != nil {
		return nil, fmt.Errorf("load weekly rules: %w", err)
	}
	exceptions, err := e.availability.Exceptions(ctx, userIDs)
	if err != nil {
		return nil, fmt.Errorf("load exception dates: %w", err)
	}
	return NewResolver(userIDs, weekly, exceptions), nil
}

func (e *Engine) fail(schedule *models.Schedule, err error) (*RunResult, error) {
	e.logger.Error("generation run failed",
		zap.String("schedule_id", schedule.ID.String()),
		zap.Error(err),
	)
	return &RunResult{State: RunFailed}, err
}
