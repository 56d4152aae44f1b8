package availability

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/escalei/backend/internal/middleware"
	"github.com/escalei/backend/internal/models"
	"github.com/escalei/backend/internal/scheduling"
	"github.com/escalei/backend/pkg/response"
)

// WeeklyRequest is the body for PUT /users/:id/availability/weekly.
type WeeklyRequest struct {
	Weekday int    `json:"weekday"`
	Shift   string `json:"shift" binding:"required"`
	Blocked bool   `json:"blocked"`
}

// ExceptionRequest is the body for PUT /users/:id/availability/exceptions.
type ExceptionRequest struct {
	Date        string `json:"date" binding:"required"` // YYYY-MM-DD
	IsAvailable bool   `json:"is_available"`
}

// Handler handles availability HTTP endpoints.
type Handler struct {
	repo *Repository
}

// NewHandler creates an availability handler.
func NewHandler(repo *Repository) *Handler {
	return &Handler{repo: repo}
}

// targetUser resolves the :id path param and enforces owner-or-admin access.
func targetUser(c *gin.Context) (uuid.UUID, bool) {
	target, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid user id")
		return uuid.Nil, false
	}
	callerID := c.MustGet(middleware.ContextUserID).(uuid.UUID)
	callerRole, _ := c.MustGet(middleware.ContextUserRole).(string)
	if callerID != target && callerRole != string(models.UserRoleAdmin) {
		response.Forbidden(c, "you may only manage your own availability")
		return uuid.Nil, false
	}
	return target, true
}

// UpsertWeekly handles PUT /users/:id/availability/weekly.
func (h *Handler) UpsertWeekly(c *gin.Context) {
	userID, ok := targetUser(c)
	if !ok {
		return
	}
	var req WeeklyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}
	if req.Weekday < 0 || req.Weekday > 6 {
		response.BadRequest(c, "weekday must be between 0 and 6")
		return
	}
	if !scheduling.ValidShift(req.Shift) {
		response.BadRequest(c, "shift must be morning, afternoon or evening")
		return
	}
	w := &models.WeeklyUnavailability{
		UserID:  userID,
		Weekday: req.Weekday,
		Shift:   req.Shift,
		Blocked: req.Blocked,
	}
	if err := h.repo.UpsertWeekly(c.Request.Context(), w); err != nil {
		response.Internal(c, "failed to save weekly rule")
		return
	}
	response.OK(c, w)
}

// DeleteWeekly handles DELETE /users/:id/availability/weekly?weekday=&shift=.
func (h *Handler) DeleteWeekly(c *gin.Context) {
	userID, ok := targetUser(c)
	if !ok {
		return
	}
	var req WeeklyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}
	if err := h.repo.DeleteWeekly(c.Request.Context(), userID, req.Weekday, req.Shift); err != nil {
		response.Internal(c, "failed to delete weekly rule")
		return
	}
	response.NoContent(c)
}

// ListWeekly handles GET /users/:id/availability/weekly.
func (h *Handler) ListWeekly(c *gin.Context) {
	userID, ok := targetUser(c)
	if !ok {
		return
	}
	list, err := h.repo.ListWeekly(c.Request.Context(), userID)
	if err != nil {
		response.Internal(c, "failed to list weekly rules")
		return
	}
	response.OK(c, list)
}

// UpsertException handles PUT /users/:id/availability/exceptions.
func (h *Handler) UpsertException(c *gin.Context) {
	userID, ok := targetUser(c)
	if !ok {
		return
	}
	var req ExceptionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}
	date, err := time.Parse("2006-01-02", req.Date)
	if err != nil {
		response.BadRequest(c, "date must be YYYY-MM-DD")
		return
	}
	e := &models.ExceptionDate{UserID: userID, Date: date, IsAvailable: req.IsAvailable}
	if err := h.repo.UpsertException(c.Request.Context(), e); err != nil {
		response.Internal(c, "failed to save exception date")
		return
	}
	response.OK(c, e)
}

// DeleteException handles DELETE /users/:id/availability/exceptions/:exceptionId.
func (h *Handler) DeleteException(c *gin.Context) {
	userID, ok := targetUser(c)
	if !ok {
		return
	}
	exceptionID, err := uuid.Parse(c.Param("exceptionId"))
	if err != nil {
		response.BadRequest(c, "invalid exception id")
		return
	}
	if err := h.repo.DeleteException(c.Request.Context(), userID, exceptionID); err != nil {
		response.Internal(c, "failed to delete exception date")
		return
	}
	response.NoContent(c)
}

// ListExceptions handles GET /users/:id/availability/exceptions.
func (h *Handler) ListExceptions(c *gin.Context) {
	userID, ok := targetUser(c)
	if !ok {
		return
	}
	list, err := h.repo.ListExceptions(c.Request.Context(), userID)
	if err != nil {
		response.Internal(c, "failed to list exception dates")
		return
	}
	response.OK(c, list)
}
