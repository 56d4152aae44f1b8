package scheduling

import "fmt"

// Summary aggregates a run's per-requirement statistics for caller-facing
// messaging. It is pure aggregation; nothing here touches storage.
type Summary struct {
	TotalRequested int               `json:"total_requested"`
	TotalSelected  int               `json:"total_selected"`
	Unfulfilled    []RequirementStat `json:"unfulfilled,omitempty"`
	Complete       bool              `json:"complete"`
}

// Summarize folds per-requirement statistics into a Summary.
func Summarize(stats []RequirementStat) Summary {
	s := Summary{Complete: true}
	for _, st := range stats {
		s.TotalRequested += st.Requested
		s.TotalSelected += st.Selected
		if !st.Fulfilled {
			s.Unfulfilled = append(s.Unfulfilled, st)
			s.Complete = false
		}
	}
	return s
}

// Message returns a human-readable result line for the client.
func (s Summary) Message() string {
	if s.Complete {
		return fmt.Sprintf("all %d requested slots assigned", s.TotalRequested)
	}
	return fmt.Sprintf("generated partially: %d of %d slots assigned", s.TotalSelected, s.TotalRequested)
}
