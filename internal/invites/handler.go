package invites

import (
	"crypto/rand"
	"encoding/hex"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/escalei/backend/internal/areas"
	"github.com/escalei/backend/internal/middleware"
	"github.com/escalei/backend/internal/models"
	"github.com/escalei/backend/pkg/queue"
	"github.com/escalei/backend/pkg/response"
)

// InviteTTL is how long an invite stays redeemable.
const InviteTTL = 7 * 24 * time.Hour

// CreateRequest is the body for POST /areas/:id/invites.
type CreateRequest struct {
	Email string `json:"email" binding:"required,email"`
}

// Handler handles invite HTTP endpoints.
type Handler struct {
	repo   *Repository
	areas  *areas.Repository
	queue  *queue.Queue
	logger *zap.Logger
}

// NewHandler creates an invite handler.
func NewHandler(repo *Repository, areaRepo *areas.Repository, q *queue.Queue, logger *zap.Logger) *Handler {
	return &Handler{repo: repo, areas: areaRepo, queue: q, logger: logger}
}

func newCode() (string, error) {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}

// Create handles POST /areas/:id/invites (leader or admin). The email goes out
// through the worker queue.
func (h *Handler) Create(c *gin.Context) {
	areaID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid area id")
		return
	}
	var req CreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}
	area, err := h.areas.GetByID(c.Request.Context(), areaID)
	if err != nil {
		response.NotFound(c, "area not found")
		return
	}
	userID := c.MustGet(middleware.ContextUserID).(uuid.UUID)

	code, err := newCode()
	if err != nil {
		response.Internal(c, "failed to generate invite code")
		return
	}
	inv := &models.Invite{
		Email:     strings.ToLower(req.Email),
		AreaID:    areaID,
		Code:      code,
		CreatedBy: userID,
		ExpiresAt: time.Now().Add(InviteTTL),
	}
	if err := h.repo.Create(c.Request.Context(), inv); err != nil {
		response.Internal(c, "failed to create invite")
		return
	}

	if h.queue != nil {
		payload := queue.InviteEmailPayload{
			InviteID:       inv.ID,
			RecipientEmail: inv.Email,
			Code:           inv.Code,
			AreaName:       area.Name,
		}
		if err := h.queue.EnqueueInviteEmail(c.Request.Context(), payload); err != nil {
			h.logger.Warn("enqueue invite email failed", zap.Error(err), zap.String("invite_id", inv.ID.String()))
		}
	}
	response.Created(c, inv)
}

// ListByArea handles GET /areas/:id/invites (leader or admin).
func (h *Handler) ListByArea(c *gin.Context) {
	areaID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid area id")
		return
	}
	list, err := h.repo.ListByArea(c.Request.Context(), areaID)
	if err != nil {
		response.Internal(c, "failed to list invites")
		return
	}
	response.OK(c, list)
}

// Accept handles POST /invites/:code/accept. The caller must be logged in with
// the invited email; acceptance adds them to the area.
func (h *Handler) Accept(c *gin.Context) {
	code := c.Param("code")
	inv, err := h.repo.GetByCode(c.Request.Context(), code)
	if err != nil {
		response.NotFound(c, "invite not found")
		return
	}
	if inv.AcceptedAt != nil {
		response.Conflict(c, "invite already accepted")
		return
	}
	if inv.Expired(time.Now()) {
		response.Conflict(c, "invite has expired")
		return
	}

	callerEmail, _ := c.MustGet(middleware.ContextUserEmail).(string)
	if !strings.EqualFold(callerEmail, inv.Email) {
		response.Forbidden(c, "invite was sent to a different email")
		return
	}
	userID := c.MustGet(middleware.ContextUserID).(uuid.UUID)

	n, err := h.repo.MarkAccepted(c.Request.Context(), inv.ID, time.Now())
	if err != nil {
		response.Internal(c, "failed to accept invite")
		return
	}
	if n == 0 {
		response.Conflict(c, "invite already accepted")
		return
	}
	if err := h.areas.AddMember(c.Request.Context(), inv.AreaID, userID); err != nil {
		response.Internal(c, "failed to join area")
		return
	}
	response.OK(c, gin.H{"area_id": inv.AreaID})
}

// Delete handles DELETE /areas/:id/invites/:inviteId (leader or admin).
func (h *Handler) Delete(c *gin.Context) {
	inviteID, err := uuid.Parse(c.Param("inviteId"))
	if err != nil {
		response.BadRequest(c, "invalid invite id")
		return
	}
	if err := h.repo.Delete(c.Request.Context(), inviteID); err != nil {
		response.Internal(c, "failed to delete invite")
		return
	}
	response.NoContent(c)
}
