package scheduling

import "errors"

var (
	ErrScheduleNotFound      = errors.New("schedule not found")
	ErrPermissionDenied      = errors.New("caller may not manage this schedule")
	ErrScheduleNotDraft      = errors.New("schedule is not in draft")
	ErrScheduleAlreadyActive = errors.New("schedule is already active")
	ErrInvalidRequirement    = errors.New("invalid staffing requirement")
	ErrStorageFailure        = errors.New("assignment commit failed")
	ErrGenerationInProgress  = errors.New("another generation run holds this schedule")
)
