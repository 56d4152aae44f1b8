package models

import (
	"time"

	"github.com/google/uuid"
)

// Area is a ministry/department grouping members and roles (e.g. Worship, Kids).
type Area struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	CoverKey    string    `json:"-"`
	CoverURL    string    `json:"cover_url,omitempty"`
	CreatedBy   uuid.UUID `json:"created_by"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Role is a named function within an area that a member may hold (e.g. Vocalist).
type Role struct {
	ID        uuid.UUID `json:"id"`
	AreaID    uuid.UUID `json:"area_id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

// Membership links a user to an area.
type Membership struct {
	UserID    uuid.UUID `json:"user_id"`
	AreaID    uuid.UUID `json:"area_id"`
	CreatedAt time.Time `json:"created_at"`
}

// RoleAssignment links a user to a role they can perform. Priority is the
// user's personal preference ranking across their own roles; lower is more
// preferred and the value is unique per user.
type RoleAssignment struct {
	UserID    uuid.UUID `json:"user_id"`
	RoleID    uuid.UUID `json:"role_id"`
	Priority  int       `json:"priority"`
	CreatedAt time.Time `json:"created_at"`
}

// AreaMember is a member of an area with the roles they hold there,
// for the area roster endpoint.
type AreaMember struct {
	User  UserPublic       `json:"user"`
	Roles []RoleAssignment `json:"roles"`
}
