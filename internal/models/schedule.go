package models

import (
	"time"

	"github.com/google/uuid"
)

// ScheduleStatus is the lifecycle state of a schedule.
type ScheduleStatus string

const (
	// ScheduleStatusDraft allows assignment generation and edits.
	ScheduleStatusDraft ScheduleStatus = "draft"
	// ScheduleStatusActive is published; assignments are frozen.
	ScheduleStatusActive ScheduleStatus = "active"
)

// Schedule is one staffed service event with a time window and a lifecycle
// status. Type is free-form metadata (e.g. "Geral", "Louvor") and has no effect
// on staffing.
type Schedule struct {
	ID        uuid.UUID      `json:"id"`
	Name      string         `json:"name"`
	Type      string         `json:"type,omitempty"`
	StartsAt  time.Time      `json:"starts_at"`
	EndsAt    time.Time      `json:"ends_at"`
	Status    ScheduleStatus `json:"status"`
	CreatedBy uuid.UUID      `json:"created_by"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
}

// Assignment binds a user to a (schedule, area, role) slot. The full set for a
// schedule is replaced atomically on every generation run.
type Assignment struct {
	ID         uuid.UUID `json:"id"`
	ScheduleID uuid.UUID `json:"schedule_id"`
	UserID     uuid.UUID `json:"user_id"`
	RoleID     uuid.UUID `json:"role_id"`
	AreaID     uuid.UUID `json:"area_id"`
	CreatedAt  time.Time `json:"created_at"`
}
