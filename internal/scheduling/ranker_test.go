package scheduling

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

var (
	rankUserA = uuid.MustParse("00000000-0000-0000-0000-00000000000a")
	rankUserB = uuid.MustParse("00000000-0000-0000-0000-00000000000b")
	rankUserC = uuid.MustParse("00000000-0000-0000-0000-00000000000c")
)

func ids(candidates []Candidate) []uuid.UUID {
	out := make([]uuid.UUID, len(candidates))
	for i, c := range candidates {
		out[i] = c.UserID
	}
	return out
}

func TestRankByLoadFirst(t *testing.T) {
	candidates := []Candidate{
		{UserID: rankUserA, RolePriority: 1},
		{UserID: rankUserB, RolePriority: 2},
	}
	load := map[uuid.UUID]int{rankUserA: 2, rankUserB: 0}

	ranked := Rank(candidates, load)
	require.Equal(t, []uuid.UUID{rankUserB, rankUserA}, ids(ranked))
}

func TestRankByRolePriorityOnEqualLoad(t *testing.T) {
	candidates := []Candidate{
		{UserID: rankUserB, RolePriority: 2},
		{UserID: rankUserA, RolePriority: 1},
	}

	ranked := Rank(candidates, map[uuid.UUID]int{})
	require.Equal(t, []uuid.UUID{rankUserA, rankUserB}, ids(ranked))
}

func TestRankTieBreakByUserID(t *testing.T) {
	candidates := []Candidate{
		{UserID: rankUserC, RolePriority: 1},
		{UserID: rankUserB, RolePriority: 1},
		{UserID: rankUserA, RolePriority: 1},
	}

	ranked := Rank(candidates, map[uuid.UUID]int{})
	require.Equal(t, []uuid.UUID{rankUserA, rankUserB, rankUserC}, ids(ranked))
}

func TestRankDoesNotMutateInput(t *testing.T) {
	candidates := []Candidate{
		{UserID: rankUserC, RolePriority: 1},
		{UserID: rankUserA, RolePriority: 1},
	}

	_ = Rank(candidates, map[uuid.UUID]int{})
	require.Equal(t, rankUserC, candidates[0].UserID)
}
