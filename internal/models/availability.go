package models

import (
	"time"

	"github.com/google/uuid"
)

// WeeklyUnavailability marks a recurring (weekday, shift) bucket as blocked for
// a user. Absence of a record means the user is available (opt-out model).
type WeeklyUnavailability struct {
	ID        uuid.UUID `json:"id"`
	UserID    uuid.UUID `json:"user_id"`
	Weekday   int       `json:"weekday"` // 0 = Sunday .. 6 = Saturday
	Shift     string    `json:"shift"`   // morning, afternoon, evening
	Blocked   bool      `json:"blocked"`
	CreatedAt time.Time `json:"created_at"`
}

// ExceptionDate overrides the weekly rule for one calendar date, in either
// direction (a blocked weekday can be opened, an open one can be blocked).
type ExceptionDate struct {
	ID          uuid.UUID `json:"id"`
	UserID      uuid.UUID `json:"user_id"`
	Date        time.Time `json:"date"` // date only; time part is ignored
	IsAvailable bool      `json:"is_available"`
	CreatedAt   time.Time `json:"created_at"`
}
