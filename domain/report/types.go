package report

import (
	"time"

	"poissonkit/domain/catalog"
	"poissonkit/domain/conformance"
	"poissonkit/domain/core"
)

// ZoneResult carries the per-zone outcome of a battery run. Skipped maps a
// test that could not run on this zone (usually insufficient data) to the
// reason; a skipped test simply contributes nothing to the combined
// p-values.
type ZoneResult struct {
	Zone    core.ZoneKey                    `json:"zone"`
	Summary catalog.Summary                 `json:"summary"`
	Results []conformance.TestResult        `json:"results"`
	Skipped map[conformance.TestName]string `json:"skipped,omitempty"`
}

// BatteryReport is the aggregate output of running the full conformance
// battery across one or more zone catalogs: every per-zone result plus one
// Fisher-combined p-value per test across zones.
type BatteryReport struct {
	ID        core.ReportID                                       `json:"id"`
	CreatedAt time.Time                                           `json:"created_at"`
	RuntimeMs int64                                               `json:"runtime_ms"`
	Zones     []ZoneResult                                        `json:"zones"`
	Combined  map[conformance.TestName]conformance.CombinedResult `json:"combined"`
}

// PValues returns the p-values gathered across zones for one test, in zone
// order, skipping zones where the test did not run.
func (r *BatteryReport) PValues(test conformance.TestName) []float64 {
	var ps []float64
	for _, z := range r.Zones {
		for _, res := range z.Results {
			if res.Test == test {
				ps = append(ps, res.PValue)
			}
		}
	}
	return ps
}
