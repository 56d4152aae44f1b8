package scheduling

import "github.com/google/uuid"

// Candidate is a user eligible for one requirement, carrying their personal
// priority for the requirement's role.
type Candidate struct {
	UserID       uuid.UUID
	RolePriority int
}

// EligibleCandidates returns members of the requirement's area who hold its
// role and were not assigned earlier in the current run. An empty result is a
// normal outcome, not an error.
func EligibleCandidates(areaMembers []uuid.UUID, roleHolders map[uuid.UUID]int, alreadyAssigned map[uuid.UUID]struct{}) []Candidate {
	out := make([]Candidate, 0, len(areaMembers))
	for _, id := range areaMembers {
		priority, holds := roleHolders[id]
		if !holds {
			continue
		}
		if _, used := alreadyAssigned[id]; used {
			continue
		}
		out = append(out, Candidate{UserID: id, RolePriority: priority})
	}
	return out
}
