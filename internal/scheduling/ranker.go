package scheduling

import (
	"sort"

	"github.com/google/uuid"
)

// Rank orders candidates ascending by run-local load counter, then by the
// user's personal priority for the role, then by user ID. There is no
// randomness anywhere: equal inputs always produce the same order.
func Rank(candidates []Candidate, load map[uuid.UUID]int) []Candidate {
	ranked := make([]Candidate, len(candidates))
	copy(ranked, candidates)
	sort.SliceStable(ranked, func(i, j int) bool {
		a, b := ranked[i], ranked[j]
		if la, lb := load[a.UserID], load[b.UserID]; la != lb {
			return la < lb
		}
		if a.RolePriority != b.RolePriority {
			return a.RolePriority < b.RolePriority
		}
		return a.UserID.String() < b.UserID.String()
	})
	return ranked
}
