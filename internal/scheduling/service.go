package scheduling

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/escalei/backend/internal/models"
)

// Service gates the assignment engine behind the schedule lifecycle: only
// draft schedules can be generated, only draft schedules can be published, and
// concurrent runs for the same schedule are serialized through the locker.
type Service struct {
	schedules ScheduleStore
	engine    *Engine
	perms     PermissionChecker
	locker    Locker
	logger    *zap.Logger
}

// NewService wires the generation service.
func NewService(schedules ScheduleStore, engine *Engine, perms PermissionChecker, locker Locker, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		schedules: schedules,
		engine:    engine,
		perms:     perms,
		locker:    locker,
		logger:    logger,
	}
}

// Generate runs the assignment engine for a draft schedule and returns the
// run's statistics. Each run atomically replaces the schedule's entire prior
// assignment set; it never merges.
func (s *Service) Generate(ctx context.Context, scheduleID, requesterID uuid.UUID, reqs []Requirement) (*RunResult, error) {
	schedule, err := s.getSchedule(ctx, scheduleID)
	if err != nil {
		return nil, err
	}
	if err := s.authorize(ctx, requesterID, schedule); err != nil {
		return nil, err
	}
	if schedule.Status != models.ScheduleStatusDraft {
		return nil, ErrScheduleNotDraft
	}
	if err := s.validateRequirements(ctx, reqs); err != nil {
		return nil, err
	}

	release, err := s.locker.Acquire(ctx, "schedule:"+scheduleID.String())
	if err != nil {
		return nil, err
	}
	defer release()

	// Re-read under the lock: a concurrent publish may have flipped the status.
	schedule, err = s.getSchedule(ctx, scheduleID)
	if err != nil {
		return nil, err
	}
	if schedule.Status != models.ScheduleStatusDraft {
		return nil, ErrScheduleNotDraft
	}

	ordered := make([]Requirement, len(reqs))
	copy(ordered, reqs)
	sort.SliceStable(ordered, func(i, j int) bool { return ordered[i].Order < ordered[j].Order })

	return s.engine.Run(ctx, schedule, ordered)
}

// Publish transitions a draft schedule to active, freezing its assignments.
// Unfulfilled requirements do not block publication: a partially staffed
// schedule is a valid, shippable state.
func (s *Service) Publish(ctx context.Context, scheduleID, requesterID uuid.UUID) (*models.Schedule, error) {
	schedule, err := s.getSchedule(ctx, scheduleID)
	if err != nil {
		return nil, err
	}
	if err := s.authorize(ctx, requesterID, schedule); err != nil {
		return nil, err
	}
	if schedule.Status == models.ScheduleStatusActive {
		return nil, ErrScheduleAlreadyActive
	}

	release, err := s.locker.Acquire(ctx, "schedule:"+scheduleID.String())
	if err != nil {
		return nil, err
	}
	defer release()

	schedule, err = s.getSchedule(ctx, scheduleID)
	if err != nil {
		return nil, err
	}
	if schedule.Status == models.ScheduleStatusActive {
		return nil, ErrScheduleAlreadyActive
	}

	updated, err := s.schedules.UpdateStatus(ctx, scheduleID, models.ScheduleStatusActive)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStorageFailure, err)
	}
	s.logger.Info("schedule published", zap.String("schedule_id", scheduleID.String()))
	return updated, nil
}

func (s *Service) getSchedule(ctx context.Context, id uuid.UUID) (*models.Schedule, error) {
	schedule, err := s.schedules.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrScheduleNotFound
		}
		return nil, err
	}
	if schedule == nil {
		return nil, ErrScheduleNotFound
	}
	return schedule, nil
}

func (s *Service) authorize(ctx context.Context, userID uuid.UUID, schedule *models.Schedule) error {
	ok, err := s.perms.CanManageSchedule(ctx, userID, schedule)
	if err != nil {
		return err
	}
	if !ok {
		return ErrPermissionDenied
	}
	return nil
}

// validateRequirements rejects malformed input before any run starts: a
// non-positive count, or a role not configured under the stated area.
func (s *Service) validateRequirements(ctx context.Context, reqs []Requirement) error {
	for _, req := range reqs {
		if req.Count < 1 {
			return fmt.Errorf("%w: count must be at least 1 for role %s", ErrInvalidRequirement, req.RoleID)
		}
		ok, err := s.engine.memberships.RoleBelongsToArea(ctx, req.RoleID, req.AreaID)
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("%w: role %s is not configured under area %s", ErrInvalidRequirement, req.RoleID, req.AreaID)
		}
	}
	return nil
}
