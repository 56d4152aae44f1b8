package songs

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/escalei/backend/internal/middleware"
	"github.com/escalei/backend/internal/models"
	"github.com/escalei/backend/pkg/response"
)

// SongRequest is the body for POST /areas/:id/songs and PATCH /songs/:id.
type SongRequest struct {
	Title          string `json:"title" binding:"required"`
	Artist         string `json:"artist"`
	Tone           string `json:"tone"`
	SpotifyTrackID string `json:"spotify_track_id"`
}

// Handler handles song HTTP endpoints.
type Handler struct {
	repo *Repository
}

// NewHandler creates a song handler.
func NewHandler(repo *Repository) *Handler {
	return &Handler{repo: repo}
}

// Create handles POST /areas/:id/songs (leader or admin).
func (h *Handler) Create(c *gin.Context) {
	areaID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid area id")
		return
	}
	var req SongRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}
	userID := c.MustGet(middleware.ContextUserID).(uuid.UUID)

	s := &models.Song{
		AreaID:         areaID,
		Title:          req.Title,
		Artist:         req.Artist,
		Tone:           req.Tone,
		SpotifyTrackID: req.SpotifyTrackID,
		CreatedBy:      userID,
	}
	if err := h.repo.Create(c.Request.Context(), s); err != nil {
		response.Internal(c, "failed to create song")
		return
	}
	response.Created(c, s)
}

// ListByArea handles GET /areas/:id/songs?q=term.
func (h *Handler) ListByArea(c *gin.Context) {
	areaID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid area id")
		return
	}
	list, err := h.repo.ListByArea(c.Request.Context(), areaID, c.Query("q"))
	if err != nil {
		response.Internal(c, "failed to list songs")
		return
	}
	response.OK(c, list)
}

// GetByID handles GET /songs/:id.
func (h *Handler) GetByID(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid song id")
		return
	}
	s, err := h.repo.GetByID(c.Request.Context(), id)
	if err != nil {
		response.NotFound(c, "song not found")
		return
	}
	response.OK(c, s)
}

// Update handles PATCH /songs/:id (leader or admin).
func (h *Handler) Update(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid song id")
		return
	}
	var req SongRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}
	s := &models.Song{
		Title:          req.Title,
		Artist:         req.Artist,
		Tone:           req.Tone,
		SpotifyTrackID: req.SpotifyTrackID,
	}
	if err := h.repo.Update(c.Request.Context(), id, s); err != nil {
		response.Internal(c, "failed to update song")
		return
	}
	response.OK(c, gin.H{"id": id})
}

// Delete handles DELETE /songs/:id (leader or admin).
func (h *Handler) Delete(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid song id")
		return
	}
	if err := h.repo.Delete(c.Request.Context(), id); err != nil {
		response.Internal(c, "failed to delete song")
		return
	}
	response.NoContent(c)
}
