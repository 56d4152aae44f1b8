package auth

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/escalei/backend/internal/models"
	"github.com/escalei/backend/pkg/response"
	"github.com/escalei/backend/pkg/storage"
	"github.com/escalei/backend/pkg/utils"
)

// contextUserID must stay in sync with middleware.ContextUserID; the
// middleware package imports auth, so auth cannot import it back.
const contextUserID = "user_id"

// RegisterRequest is the body for POST /auth/register.
type RegisterRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6"`
	FullName string `json:"full_name" binding:"required"`
	Phone    string `json:"phone"`
}

// LoginRequest is the body for POST /auth/login.
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// UpdateProfileRequest is the body for PATCH /auth/me.
type UpdateProfileRequest struct {
	FullName string `json:"full_name" binding:"required"`
	Phone    string `json:"phone"`
}

// SetRoleRequest is the body for PATCH /users/:id/role (admin only).
type SetRoleRequest struct {
	Role string `json:"role" binding:"required"`
}

// TokenResponse is the auth response with JWT.
type TokenResponse struct {
	Token string            `json:"token"`
	User  models.UserPublic `json:"user"`
}

// Handler handles auth HTTP endpoints.
type Handler struct {
	repo   *Repository
	jwt    *JWTService
	s3     *storage.S3
	logger *zap.Logger
}

// NewHandler creates an auth handler. s3 may be nil, disabling avatar uploads.
func NewHandler(repo *Repository, jwt *JWTService, s3 *storage.S3, logger *zap.Logger) *Handler {
	return &Handler{repo: repo, jwt: jwt, s3: s3, logger: logger}
}

// Register handles POST /auth/register. New accounts always start as members;
// leaders and admins are promoted via PATCH /users/:id/role.
func (h *Handler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}

	_, err := h.repo.GetByEmail(c.Request.Context(), req.Email)
	if err == nil {
		response.BadRequest(c, "email already registered")
		return
	}

	hash, err := utils.HashPassword(req.Password)
	if err != nil {
		response.Internal(c, "failed to hash password")
		return
	}

	user, err := h.repo.Create(c.Request.Context(), req.Email, hash, req.FullName, models.UserRoleMember, req.Phone)
	if err != nil {
		response.Internal(c, "failed to create user")
		return
	}

	token, err := h.jwt.Generate(user.ID, user.Email, string(user.Role))
	if err != nil {
		response.Internal(c, "failed to generate token")
		return
	}

	response.Created(c, TokenResponse{Token: token, User: user.ToPublic()})
}

// Login handles POST /auth/login.
func (h *Handler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}

	user, err := h.repo.GetByEmail(c.Request.Context(), req.Email)
	if err != nil {
		response.Unauthorized(c, "invalid email or password")
		return
	}

	if !utils.CheckPassword(req.Password, user.Password) {
		response.Unauthorized(c, "invalid email or password")
		return
	}

	token, err := h.jwt.Generate(user.ID, user.Email, string(user.Role))
	if err != nil {
		response.Internal(c, "failed to generate token")
		return
	}

	c.JSON(http.StatusOK, response.Body{Success: true, Data: TokenResponse{Token: token, User: user.ToPublic()}})
}

// Me handles GET /auth/me.
func (h *Handler) Me(c *gin.Context) {
	userID := c.MustGet(contextUserID).(uuid.UUID)
	user, err := h.repo.GetByID(c.Request.Context(), userID)
	if err != nil {
		response.NotFound(c, "user not found")
		return
	}
	h.fillAvatarURL(user)
	response.OK(c, user.ToPublic())
}

// UpdateProfile handles PATCH /auth/me.
func (h *Handler) UpdateProfile(c *gin.Context) {
	userID := c.MustGet(contextUserID).(uuid.UUID)
	var req UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}
	if err := h.repo.UpdateProfile(c.Request.Context(), userID, req.FullName, req.Phone); err != nil {
		response.Internal(c, "failed to update profile")
		return
	}
	user, err := h.repo.GetByID(c.Request.Context(), userID)
	if err != nil {
		response.Internal(c, "failed to load profile")
		return
	}
	h.fillAvatarURL(user)
	response.OK(c, user.ToPublic())
}

// UploadAvatar handles POST /auth/me/avatar (multipart form, field "file").
func (h *Handler) UploadAvatar(c *gin.Context) {
	if h.s3 == nil {
		response.ServiceUnavailable(c, "object storage is not configured")
		return
	}
	userID := c.MustGet(contextUserID).(uuid.UUID)

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

	key := storage.AvatarKey(userID.String(), fmt.Sprintf("%d%s", time.Now().Unix(), storage.AllowedImageTypes[contentType]))
	url, err := h.s3.Upload(c.Request.Context(), h.s3.AvatarsBucket(), key, storage.ContentTypeForFilename(file.Filename), src, file.Size, true)
	if err != nil {
		h.logger.Error("avatar upload failed", zap.Error(err), zap.String("user_id", userID.String()))
		response.Internal(c, "failed to upload avatar")
		return
	}
	if err := h.repo.SetAvatarKey(c.Request.Context(), userID, key); err != nil {
		response.Internal(c, "failed to save avatar")
		return
	}
	response.OK(c, gin.H{"avatar_url": url})
}

// List handles GET /users (leader or admin).
func (h *Handler) List(c *gin.Context) {
	list, err := h.repo.List(c.Request.Context())
	if err != nil {
		response.Internal(c, "failed to list users")
		return
	}
	c.JSON(http.StatusOK, response.Body{Success: true, Data: list})
}

// SetRole handles PATCH /users/:id/role (admin only).
func (h *Handler) SetRole(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid user id")
		return
	}
	var req SetRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}
	role := models.UserRole(req.Role)
	switch role {
	case models.UserRoleAdmin, models.UserRoleLeader, models.UserRoleMember:
	default:
		response.BadRequest(c, "invalid role")
		return
	}
	if _, err := h.repo.GetByID(c.Request.Context(), id); err != nil {
		response.NotFound(c, "user not found")
		return
	}
	if err := h.repo.SetRole(c.Request.Context(), id, role); err != nil {
		response.Internal(c, "failed to set role")
		return
	}
	response.OK(c, gin.H{"id": id, "role": role})
}

func (h *Handler) fillAvatarURL(u *models.User) {
	if h.s3 != nil && u.AvatarKey != "" {
		u.AvatarURL = h.s3.PublicObjectURL(h.s3.AvatarsBucket(), u.AvatarKey)
	}
}
