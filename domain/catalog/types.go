package catalog

import (
	"poissonkit/domain/core"
)

// Catalog is an ordered sequence of event timestamps in physical time units
// (decimal years for seismic catalogs). Timestamps must be non-decreasing;
// ties are permitted. A Catalog is treated as immutable once constructed.
type Catalog []float64

// Validate checks the ordering invariant.
func (c Catalog) Validate() error {
	for i := 1; i < len(c); i++ {
		if c[i] < c[i-1] {
			return core.ErrUnorderedCatalog
		}
	}
	return nil
}

// Len returns the number of events in the catalog.
func (c Catalog) Len() int {
	return len(c)
}

// Gaps returns the inter-event wait times (differences between consecutive
// timestamps). A catalog with fewer than two events has no gaps.
func (c Catalog) Gaps() []float64 {
	if len(c) < 2 {
		return nil
	}
	gaps := make([]float64, len(c)-1)
	for i := 1; i < len(c); i++ {
		gaps[i-1] = c[i] - c[i-1]
	}
	return gaps
}

// Window defines the observation interval over which the Poisson hypothesis
// is evaluated.
type Window struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
}

// Validate checks that the window is non-degenerate.
func (w Window) Validate() error {
	if w.Start >= w.End {
		return core.NewInvalidWindowError(w.Start, w.End)
	}
	return nil
}

// Duration returns the window length.
func (w Window) Duration() float64 {
	return w.End - w.Start
}

// Contains reports whether t falls inside the window (closed on both ends).
func (w Window) Contains(t float64) bool {
	return t >= w.Start && t <= w.End
}

// CountEvents returns the number of catalog events inside the window.
func (w Window) CountEvents(c Catalog) int {
	n := 0
	for _, t := range c {
		if w.Contains(t) {
			n++
		}
	}
	return n
}

// CountSeries is the per-bin event count derived from a catalog, a window
// and a bin width. It holds no reference back to the catalog it came from.
type CountSeries []int

// Sum returns the total number of counted events.
func (s CountSeries) Sum() int {
	total := 0
	for _, c := range s {
		total += c
	}
	return total
}

// Floats returns the counts as float64 values for the numeric routines.
func (s CountSeries) Floats() []float64 {
	out := make([]float64, len(s))
	for i, c := range s {
		out[i] = float64(c)
	}
	return out
}
