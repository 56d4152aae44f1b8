package models

import (
	"time"

	"github.com/google/uuid"
)

// Invite is an emailed invitation to join an area, redeemed by code.
type Invite struct {
	ID         uuid.UUID  `json:"id"`
	Email      string     `json:"email"`
	AreaID     uuid.UUID  `json:"area_id"`
	Code       string     `json:"code"`
	CreatedBy  uuid.UUID  `json:"created_by"`
	ExpiresAt  time.Time  `json:"expires_at"`
	AcceptedAt *time.Time `json:"accepted_at,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
}

// Expired reports whether the invite can no longer be redeemed.
func (i *Invite) Expired(now time.Time) bool {
	return now.After(i.ExpiresAt)
}
