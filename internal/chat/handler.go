package chat

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/escalei/backend/internal/areas"
	"github.com/escalei/backend/internal/middleware"
	"github.com/escalei/backend/internal/models"
	"github.com/escalei/backend/pkg/response"
)

const defaultHistoryLimit = 50

// Handler handles chat history HTTP endpoints.
type Handler struct {
	repo  *Repository
	areas *areas.Repository
}

// NewHandler creates a chat handler.
func NewHandler(repo *Repository, areaRepo *areas.Repository) *Handler {
	return &Handler{repo: repo, areas: areaRepo}
}

// History handles GET /areas/:id/messages?before=RFC3339&limit=n. Members and
// admins only.
func (h *Handler) History(c *gin.Context) {
	areaID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid area id")
		return
	}
	userID := c.MustGet(middleware.ContextUserID).(uuid.UUID)
	role, _ := c.MustGet(middleware.ContextUserRole).(string)
	if role != string(models.UserRoleAdmin) {
		ok, err := h.areas.IsMember(c.Request.Context(), areaID, userID)
		if err != nil || !ok {
			response.Forbidden(c, "not a member of this area")
			return
		}
	}

	var before *time.Time
	if b := c.Query("before"); b != "" {
		t, err := time.Parse(time.RFC3339, b)
		if err != nil {
			response.BadRequest(c, "before must be RFC3339")
			return
		}
		before = &t
	}
	limit := defaultHistoryLimit
	if l := c.Query("limit"); l != "" {
		n, err := strconv.Atoi(l)
		if err != nil || n < 1 || n > 200 {
			response.BadRequest(c, "limit must be between 1 and 200")
			return
		}
		limit = n
	}

	list, err := h.repo.History(c.Request.Context(), areaID, before, limit)
	if err != nil {
		response.Internal(c, "failed to load messages")
		return
	}
	response.OK(c, list)
}
