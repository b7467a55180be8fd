package catalog

import (
	"github.com/montanaflynn/stats"
)

// Summary holds descriptive statistics for the in-window portion of a
// catalog. It is advisory output for callers (CLI, HTTP façade); none of
// the conformance tests consume it.
type Summary struct {
	Events   int     `json:"events"`
	Rate     float64 `json:"rate"` // events per time unit
	MeanGap  float64 `json:"mean_gap"`
	MaxGap   float64 `json:"max_gap"`
	FirstAt  float64 `json:"first_at"`
	LastAt   float64 `json:"last_at"`
	Duration float64 `json:"duration"`
}

// Summarize computes descriptive statistics over the events inside the
// window. A catalog with no in-window events yields a zero-valued summary
// apart from the window duration.
func Summarize(c Catalog, w Window) Summary {
	s := Summary{Duration: w.Duration()}

	var inside Catalog
	for _, t := range c {
		if w.Contains(t) {
			inside = append(inside, t)
		}
	}
	if len(inside) == 0 {
		return s
	}

	s.Events = len(inside)
	s.Rate = float64(len(inside)) / w.Duration()
	s.FirstAt = inside[0]
	s.LastAt = inside[len(inside)-1]

	if gaps := inside.Gaps(); len(gaps) > 0 {
		s.MeanGap, _ = stats.Mean(gaps)
		s.MaxGap, _ = stats.Max(gaps)
	}
	return s
}
