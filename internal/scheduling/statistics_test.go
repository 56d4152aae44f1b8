package scheduling

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func TestSummarizeComplete(t *testing.T) {
	stats := []RequirementStat{
		{AreaID: uuid.New(), RoleID: uuid.New(), Requested: 2, Selected: 2, Fulfilled: true},
		{AreaID: uuid.New(), RoleID: uuid.New(), Requested: 1, Selected: 1, Fulfilled: true},
	}

	summary := Summarize(stats)
	require.True(t, summary.Complete)
	require.Equal(t, 3, summary.TotalRequested)
	require.Equal(t, 3, summary.TotalSelected)
	require.Empty(t, summary.Unfulfilled)
	require.Equal(t, "all 3 requested slots assigned", summary.Message())
}

func TestSummarizePartial(t *testing.T) {
	short := RequirementStat{AreaID: uuid.New(), RoleID: uuid.New(), Requested: 4, Selected: 2, Fulfilled: false}
	stats := []RequirementStat{
		{AreaID: uuid.New(), RoleID: uuid.New(), Requested: 6, Selected: 6, Fulfilled: true},
		short,
	}

	summary := Summarize(stats)
	require.False(t, summary.Complete)
	require.Equal(t, 10, summary.TotalRequested)
	require.Equal(t, 8, summary.TotalSelected)
	require.Equal(t, []RequirementStat{short}, summary.Unfulfilled)
	require.Equal(t, "generated partially: 8 of 10 slots assigned", summary.Message())
}

func TestSummarizeEmpty(t *testing.T) {
	summary := Summarize(nil)
	require.True(t, summary.Complete)
	require.Zero(t, summary.TotalRequested)
}
