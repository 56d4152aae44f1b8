package schedules

import (
	"errors"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/escalei/backend/internal/middleware"
	"github.com/escalei/backend/internal/models"
	"github.com/escalei/backend/internal/scheduling"
	"github.com/escalei/backend/pkg/queue"
	"github.com/escalei/backend/pkg/response"
)

// CreateRequest is the body for POST /schedules.
type CreateRequest struct {
	Name     string `json:"name" binding:"required"`
	Type     string `json:"type"`
	StartsAt string `json:"starts_at" binding:"required"`
	EndsAt   string `json:"ends_at" binding:"required"`
}

// UpdateRequest is the body for PATCH /schedules/:id.
type UpdateRequest struct {
	Name     string `json:"name" binding:"required"`
	Type     string `json:"type"`
	StartsAt string `json:"starts_at" binding:"required"`
	EndsAt   string `json:"ends_at" binding:"required"`
}

// GenerateRequest is the body for POST /schedules/:id/generate. Requirement
// priority is the explicit order field, not array position.
type GenerateRequest struct {
	Requirements []scheduling.Requirement `json:"requirements" binding:"required"`
}

// GenerateResponse is the result of a generation run.
type GenerateResponse struct {
	Statistics []scheduling.RequirementStat `json:"statistics"`
	Summary    scheduling.Summary           `json:"summary"`
	Message    string                       `json:"message"`
}

// Handler handles schedule HTTP endpoints.
type Handler struct {
	repo    *Repository
	service *scheduling.Service
	queue   *queue.Queue
	logger  *zap.Logger
}

// NewHandler creates a schedule handler.
func NewHandler(repo *Repository, service *scheduling.Service, q *queue.Queue, logger *zap.Logger) *Handler {
	return &Handler{repo: repo, service: service, queue: q, logger: logger}
}

func parseWindow(startsAt, endsAt string) (time.Time, time.Time, error) {
	start, err := time.Parse(time.RFC3339, startsAt)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	end, err := time.Parse(time.RFC3339, endsAt)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	if end.Before(start) {
		return time.Time{}, time.Time{}, errors.New("ends_at precedes starts_at")
	}
	return start, end, nil
}

// Create handles POST /schedules (leader or admin).
func (h *Handler) Create(c *gin.Context) {
	var req CreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}
	start, end, err := parseWindow(req.StartsAt, req.EndsAt)
	if err != nil {
		response.BadRequest(c, "invalid window: "+err.Error())
		return
	}
	userID := c.MustGet(middleware.ContextUserID).(uuid.UUID)

	s := &models.Schedule{
		Name:      req.Name,
		Type:      req.Type,
		StartsAt:  start,
		EndsAt:    end,
		CreatedBy: userID,
	}
	if err := h.repo.Create(c.Request.Context(), s); err != nil {
		response.Internal(c, "failed to create schedule")
		return
	}
	response.Created(c, s)
}

// List handles GET /schedules?status=draft|active.
func (h *Handler) List(c *gin.Context) {
	var status *models.ScheduleStatus
	if s := c.Query("status"); s != "" {
		st := models.ScheduleStatus(s)
		if st != models.ScheduleStatusDraft && st != models.ScheduleStatusActive {
			response.BadRequest(c, "invalid status filter")
			return
		}
		status = &st
	}
	list, err := h.repo.List(c.Request.Context(), status)
	if err != nil {
		response.Internal(c, "failed to list schedules")
		return
	}
	response.OK(c, list)
}

// GetByID handles GET /schedules/:id.
func (h *Handler) GetByID(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid schedule id")
		return
	}
	s, err := h.repo.GetByID(c.Request.Context(), id)
	if err != nil {
		response.NotFound(c, "schedule not found")
		return
	}
	response.OK(c, s)
}

// Update handles PATCH /schedules/:id (draft only).
func (h *Handler) Update(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid schedule id")
		return
	}
	var req UpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}
	start, end, err := parseWindow(req.StartsAt, req.EndsAt)
	if err != nil {
		response.BadRequest(c, "invalid window: "+err.Error())
		return
	}
	s := &models.Schedule{Name: req.Name, Type: req.Type, StartsAt: start, EndsAt: end}
	if err := h.repo.Update(c.Request.Context(), id, s); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			response.Conflict(c, "schedule not found or not in draft")
			return
		}
		response.Internal(c, "failed to update schedule")
		return
	}
	response.OK(c, s)
}

// Delete handles DELETE /schedules/:id.
func (h *Handler) Delete(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid schedule id")
		return
	}
	if err := h.repo.Delete(c.Request.Context(), id); err != nil {
		response.Internal(c, "failed to delete schedule")
		return
	}
	response.NoContent(c)
}

// Generate handles POST /schedules/:id/generate. Partial fulfillment is a
// success: the statistics tell the client which requirements came up short.
func (h *Handler) Generate(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid schedule id")
		return
	}
	var req GenerateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}
	userID := c.MustGet(middleware.ContextUserID).(uuid.UUID)

	result, err := h.service.Generate(c.Request.Context(), id, userID, req.Requirements)
	if err != nil {
		h.respondSchedulingError(c, err)
		return
	}

	summary := scheduling.Summarize(result.Statistics)
	response.OK(c, GenerateResponse{
		Statistics: result.Statistics,
		Summary:    summary,
		Message:    summary.Message(),
	})
}

// Publish handles POST /schedules/:id/publish. Publication succeeds regardless
// of fulfillment completeness and enqueues notification emails for the
// assigned members.
func (h *Handler) Publish(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid schedule id")
		return
	}
	userID := c.MustGet(middleware.ContextUserID).(uuid.UUID)

	s, err := h.service.Publish(c.Request.Context(), id, userID)
	if err != nil {
		h.respondSchedulingError(c, err)
		return
	}

	if h.queue != nil {
		if err := h.queue.EnqueueSchedulePublished(c.Request.Context(), queue.SchedulePublishedPayload{ScheduleID: s.ID}); err != nil {
			h.logger.Warn("enqueue publish notification failed", zap.Error(err), zap.String("schedule_id", s.ID.String()))
		}
	}
	response.OK(c, s)
}

// ListAssignments handles GET /schedules/:id/assignments.
func (h *Handler) ListAssignments(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid schedule id")
		return
	}
	if _, err := h.repo.GetByID(c.Request.Context(), id); err != nil {
		response.NotFound(c, "schedule not found")
		return
	}
	list, err := h.repo.ListBySchedule(c.Request.Context(), id)
	if err != nil {
		response.Internal(c, "failed to list assignments")
		return
	}
	response.OK(c, list)
}

func (h *Handler) respondSchedulingError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, scheduling.ErrScheduleNotFound):
		response.NotFound(c, "schedule not found")
	case errors.Is(err, scheduling.ErrPermissionDenied):
		response.Forbidden(c, "you may not manage this schedule")
	case errors.Is(err, scheduling.ErrScheduleNotDraft):
		response.Forbidden(c, "schedule is not in draft")
	case errors.Is(err, scheduling.ErrScheduleAlreadyActive):
		response.Conflict(c, "schedule is already active")
	case errors.Is(err, scheduling.ErrInvalidRequirement):
		response.BadRequest(c, err.Error())
	case errors.Is(err, scheduling.ErrGenerationInProgress):
		response.Conflict(c, "a generation run is already in progress")
	case errors.Is(err, scheduling.ErrStorageFailure):
		response.ServiceUnavailable(c, "assignment commit failed, please retry")
	default:
		h.logger.Error("scheduling operation failed", zap.Error(err))
		response.Internal(c, "scheduling operation failed")
	}
}
