package catalog

import (
	"math"

	"poissonkit/domain/core"
)

// DefaultBinWidth is one time unit (one year for catalogs in decimal years).
const DefaultBinWidth = 1.0

// Binning holds a count series together with the bin edges it was computed
// over. Edges are evenly spaced at Width starting from the window start; the
// final bin is truncated to the exact window end when the window length is
// not a multiple of Width, so the last edge always equals Window.End.
type Binning struct {
	Counts CountSeries `json:"counts"`
	Edges  []float64   `json:"edges"`
	Width  float64     `json:"width"`
}

// Bin partitions the window into ceil(duration/width) bins and counts the
// catalog events falling into each. Events outside the window are silently
// excluded. Bins are half-open [edge_i, edge_i+1) except the last, which is
// closed at the window end so that the series sum equals the number of
// in-window events. An empty catalog yields an all-zero series.
func Bin(c Catalog, w Window, width float64) (Binning, error) {
	if err := w.Validate(); err != nil {
		return Binning{}, err
	}
	if width <= 0 {
		return Binning{}, core.ErrInvalidBinWidth
	}
	if err := c.Validate(); err != nil {
		return Binning{}, err
	}

	nBins := int(math.Ceil(w.Duration() / width))
	if nBins < 1 {
		nBins = 1
	}

	edges := make([]float64, nBins+1)
	for i := 0; i < nBins; i++ {
		edges[i] = w.Start + float64(i)*width
	}
	edges[nBins] = w.End

	counts := make(CountSeries, nBins)
	for _, t := range c {
		if !w.Contains(t) {
			continue
		}
		idx := int((t - w.Start) / width)
		if idx >= nBins {
			idx = nBins - 1
		}
		counts[idx]++
	}

	return Binning{Counts: counts, Edges: edges, Width: width}, nil
}
