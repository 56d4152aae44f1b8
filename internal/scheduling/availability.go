package scheduling

import (
	"time"

	"github.com/google/uuid"
)

// WeeklyRule is a recurring (weekday, shift) availability rule for one user.
// Only Blocked=true rules restrict anything; a missing rule means available.
type WeeklyRule struct {
	Weekday int
	Shift   Shift
	Blocked bool
}

// Exception overrides the weekly rules for one calendar date, in either
// direction.
type Exception struct {
	Date        time.Time
	IsAvailable bool
}

type weekdayShift struct {
	weekday int
	shift   Shift
}

// Resolver decides whether a member is free for a schedule window by combining
// weekly default rules with date-specific exceptions. It is built once per
// generation run from a snapshot of the candidate pool's availability data.
type Resolver struct {
	known      map[uuid.UUID]struct{}
	blocked    map[uuid.UUID]map[weekdayShift]bool
	exceptions map[uuid.UUID]map[string]bool // date key -> is_available
}

// NewResolver builds a resolver for the given users. Users absent from userIDs
// are reported unavailable (fail-safe), never an error.
func NewResolver(userIDs []uuid.UUID, weekly map[uuid.UUID][]WeeklyRule, exceptions map[uuid.UUID][]Exception) *Resolver {
	r := &Resolver{
		known:      make(map[uuid.UUID]struct{}, len(userIDs)),
		blocked:    make(map[uuid.UUID]map[weekdayShift]bool),
		exceptions: make(map[uuid.UUID]map[string]bool),
	}
	for _, id := range userIDs {
		r.known[id] = struct{}{}
	}
	for userID, rules := range weekly {
		m := make(map[weekdayShift]bool)
		for _, rule := range rules {
			if rule.Blocked {
				m[weekdayShift{rule.Weekday, rule.Shift}] = true
			}
		}
		if len(m) > 0 {
			r.blocked[userID] = m
		}
	}
	for userID, excs := range exceptions {
		m := make(map[string]bool, len(excs))
		for _, exc := range excs {
			m[dateKey(exc.Date)] = exc.IsAvailable
		}
		r.exceptions[userID] = m
	}
	return r
}

func dateKey(t time.Time) string {
	return t.Format("2006-01-02")
}

// IsAvailable reports whether the user is free for every bucket the window
// overlaps. An exception for the exact calendar date wins over the weekly rule
// for that date; otherwise a Blocked weekly rule on any overlapped bucket makes
// the user unavailable.
func (r *Resolver) IsAvailable(userID uuid.UUID, start, end time.Time) bool {
	if _, ok := r.known[userID]; !ok {
		return false
	}
	for _, slot := range SlotsInWindow(start, end) {
		if avail, ok := r.exceptions[userID][dateKey(slot.Date)]; ok {
			if !avail {
				return false
			}
			continue
		}
		if r.blocked[userID][weekdayShift{int(slot.Weekday()), slot.Shift}] {
			return false
		}
	}
	return true
}
