package areas

import (
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/escalei/backend/internal/middleware"
	"github.com/escalei/backend/internal/models"
	"github.com/escalei/backend/pkg/response"
	"github.com/escalei/backend/pkg/storage"
)

// CreateRequest is the body for POST /areas.
type CreateRequest struct {
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
}

// CreateRoleRequest is the body for POST /areas/:id/roles.
type CreateRoleRequest struct {
	Name string `json:"name" binding:"required"`
}

// MemberRequest is the body for POST /areas/:id/members.
type MemberRequest struct {
	UserID string `json:"user_id" binding:"required,uuid"`
}

// AssignRoleRequest is the body for POST /areas/:id/roles/:roleId/assignments.
// Priority is the member's personal preference rank across their own roles;
// lower is more preferred and must be unique per user.
type AssignRoleRequest struct {
	UserID   string `json:"user_id" binding:"required,uuid"`
	Priority int    `json:"priority" binding:"required"`
}

// Handler handles area HTTP endpoints.
type Handler struct {
	repo *Repository
	s3   *storage.S3
}

// NewHandler creates an area handler. s3 may be nil, disabling cover uploads.
func NewHandler(repo *Repository, s3 *storage.S3) *Handler {
	return &Handler{repo: repo, s3: s3}
}

// Create handles POST /areas (leader or admin).
func (h *Handler) Create(c *gin.Context) {
	var req CreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}
	userID := c.MustGet(middleware.ContextUserID).(uuid.UUID)

	a := &models.Area{Name: req.Name, Description: req.Description, CreatedBy: userID}
	if err := h.repo.Create(c.Request.Context(), a); err != nil {
		response.Internal(c, "failed to create area")
		return
	}
	response.Created(c, a)
}

// List handles GET /areas.
func (h *Handler) List(c *gin.Context) {
	list, err := h.repo.List(c.Request.Context())
	if err != nil {
		response.Internal(c, "failed to list areas")
		return
	}
	response.OK(c, list)
}

// GetByID handles GET /areas/:id.
func (h *Handler) GetByID(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid area id")
		return
	}
	a, err := h.repo.GetByID(c.Request.Context(), id)
	if err != nil {
		response.NotFound(c, "area not found")
		return
	}
	response.OK(c, a)
}

// Update handles PATCH /areas/:id.
func (h *Handler) Update(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid area id")
		return
	}
	var req CreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}
	if err := h.repo.Update(c.Request.Context(), id, req.Name, req.Description); err != nil {
		response.Internal(c, "failed to update area")
		return
	}
	response.OK(c, gin.H{"id": id})
}

// Delete handles DELETE /areas/:id (admin only).
func (h *Handler) Delete(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid area id")
		return
	}
	if err := h.repo.Delete(c.Request.Context(), id); err != nil {
		response.Internal(c, "failed to delete area")
		return
	}
	response.NoContent(c)
}

// UploadCover handles POST /areas/:id/cover (multipart form, field "file").
func (h *Handler) UploadCover(c *gin.Context) {
	if h.s3 == nil {
		response.ServiceUnavailable(c, "object storage is not configured")
		return
	}
	areaID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid area id")
		return
	}
	if _, err := h.repo.GetByID(c.Request.Context(), areaID); err != nil {
		response.NotFound(c, "area not found")
		return
	}

	file, err := c.FormFile("file")
	if err != nil {
		response.BadRequest(c, "missing file")
		return
	}
	if file.Size > storage.MaxImageFileSize {
		response.BadRequest(c, "file too large")
		return
	}
	contentType := file.Header.Get("Content-Type")
	if !storage.ValidateImageFileType(contentType, file.Filename) {
		response.BadRequest(c, "unsupported image type")
		return
	}

	src, err := file.Open()
	if err != nil {
		response.Internal(c, "failed to read upload")
		return
	}
	defer src.Close()

	key := storage.CoverKey(areaID.String(), fmt.Sprintf("%d%s", time.Now().Unix(), storage.AllowedImageTypes[contentType]))
	url, err := h.s3.Upload(c.Request.Context(), h.s3.CoversBucket(), key, storage.ContentTypeForFilename(file.Filename), src, file.Size, true)
	if err != nil {
		response.Internal(c, "failed to upload cover")
		return
	}
	if err := h.repo.SetCoverKey(c.Request.Context(), areaID, key); err != nil {
		response.Internal(c, "failed to save cover")
		return
	}
	response.OK(c, gin.H{"cover_url": url})
}

// CreateRole handles POST /areas/:id/roles.
func (h *Handler) CreateRole(c *gin.Context) {
	areaID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid area id")
		return
	}
	var req CreateRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}
	role := &models.Role{AreaID: areaID, Name: req.Name}
	if err := h.repo.CreateRole(c.Request.Context(), role); err != nil {
		response.Internal(c, "failed to create role")
		return
	}
	response.Created(c, role)
}

// ListRoles handles GET /areas/:id/roles.
func (h *Handler) ListRoles(c *gin.Context) {
	areaID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid area id")
		return
	}
	list, err := h.repo.ListRoles(c.Request.Context(), areaID)
	if err != nil {
		response.Internal(c, "failed to list roles")
		return
	}
	response.OK(c, list)
}

// DeleteRole handles DELETE /areas/:id/roles/:roleId.
func (h *Handler) DeleteRole(c *gin.Context) {
	roleID, err := uuid.Parse(c.Param("roleId"))
	if err != nil {
		response.BadRequest(c, "invalid role id")
		return
	}
	if err := h.repo.DeleteRole(c.Request.Context(), roleID); err != nil {
		response.Internal(c, "failed to delete role")
		return
	}
	response.NoContent(c)
}

// AddMember handles POST /areas/:id/members.
func (h *Handler) AddMember(c *gin.Context) {
	areaID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid area id")
		return
	}
	var req MemberRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}
	userID, _ := uuid.Parse(req.UserID)
	if err := h.repo.AddMember(c.Request.Context(), areaID, userID); err != nil {
		response.Internal(c, "failed to add member")
		return
	}
	response.Created(c, gin.H{"area_id": areaID, "user_id": userID})
}

// RemoveMember handles DELETE /areas/:id/members/:userId.
func (h *Handler) RemoveMember(c *gin.Context) {
	areaID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid area id")
		return
	}
	userID, err := uuid.Parse(c.Param("userId"))
	if err != nil {
		response.BadRequest(c, "invalid user id")
		return
	}
	if err := h.repo.RemoveMember(c.Request.Context(), areaID, userID); err != nil {
		response.Internal(c, "failed to remove member")
		return
	}
	response.NoContent(c)
}

// ListMembers handles GET /areas/:id/members.
func (h *Handler) ListMembers(c *gin.Context) {
	areaID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid area id")
		return
	}
	members, err := h.repo.ListMembers(c.Request.Context(), areaID)
	if err != nil {
		response.Internal(c, "failed to list members")
		return
	}
	response.OK(c, members)
}

// AssignRole handles POST /areas/:id/roles/:roleId/assignments.
func (h *Handler) AssignRole(c *gin.Context) {
	areaID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid area id")
		return
	}
	roleID, err := uuid.Parse(c.Param("roleId"))
	if err != nil {
		response.BadRequest(c, "invalid role id")
		return
	}
	var req AssignRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}
	if req.Priority < 1 {
		response.BadRequest(c, "priority must be at least 1")
		return
	}
	ok, err := h.repo.RoleBelongsToArea(c.Request.Context(), roleID, areaID)
	if err != nil || !ok {
		response.NotFound(c, "role not found under area")
		return
	}
	userID, _ := uuid.Parse(req.UserID)
	if err := h.repo.AssignRole(c.Request.Context(), userID, roleID, req.Priority); err != nil {
		response.Conflict(c, "priority already used by another of the user's roles")
		return
	}
	response.Created(c, gin.H{"user_id": userID, "role_id": roleID, "priority": req.Priority})
}

// UnassignRole handles DELETE /areas/:id/roles/:roleId/assignments/:userId.
func (h *Handler) UnassignRole(c *gin.Context) {
	roleID, err := uuid.Parse(c.Param("roleId"))
	if err != nil {
		response.BadRequest(c, "invalid role id")
		return
	}
	userID, err := uuid.Parse(c.Param("userId"))
	if err != nil {
		response.BadRequest(c, "invalid user id")
		return
	}
	if err := h.repo.UnassignRole(c.Request.Context(), userID, roleID); err != nil {
		response.Internal(c, "failed to unassign role")
		return
	}
	response.NoContent(c)
}
