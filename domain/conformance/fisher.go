package conformance

import (
	"math"

	"poissonkit/domain/core"
)

// CombineMethod selects the meta-analytic combination procedure.
type CombineMethod string

const (
	// MethodFisher is the default: -2 sum(ln p_i) against chi-square with
	// 2k degrees of freedom.
	MethodFisher CombineMethod = "fisher"
	// MethodStouffer combines via the sum of normal quantiles (Stouffer's Z).
	MethodStouffer CombineMethod = "stouffer"
)

// CombinedResult is the outcome of combining independent p-values into one
// joint significance test.
type CombinedResult struct {
	Method    CombineMethod `json:"method"`
	Statistic float64       `json:"statistic"`
	PValue    float64       `json:"p_value"`
	Combined  int           `json:"combined"` // number of input p-values
}

// Fisher combines a flat collection of independently computed p-values
// (e.g., one per spatial zone) using Fisher's method. The inputs must each
// be individually valid under their own null; the combined p-value tests
// the joint null that all of them are.
//
// The combination is defined only for a flat collection: combining
// [p1, p2] and then folding in p3 is not equivalent to combining
// [p1, p2, p3] directly.
func Fisher(pValues []float64) (CombinedResult, error) {
	return Combine(pValues, MethodFisher)
}

// Combine validates and combines p-values with the selected method. Every
// p must lie in (0,1]; a zero (undefined log) or out-of-range value fails
// the whole collection atomically with core.ErrInvalidPValue.
func Combine(pValues []float64, method CombineMethod) (CombinedResult, error) {
	if len(pValues) < 1 {
		return CombinedResult{}, core.NewInsufficientDataError("combiner", 1, 0)
	}
	for i, p := range pValues {
		if p <= 0 || p > 1 || math.IsNaN(p) {
			return CombinedResult{}, core.NewInvalidPValueError(i, p)
		}
	}

	k := len(pValues)
	dist := NewDistributions()

	switch method {
	case MethodFisher:
		statistic := 0.0
		for _, p := range pValues {
			statistic += math.Log(p)
		}
		statistic *= -2
		return CombinedResult{
			Method:    MethodFisher,
			Statistic: statistic,
			PValue:    dist.ChiSquareSurvival(statistic, 2*k),
			Combined:  k,
		}, nil

	case MethodStouffer:
		z := 0.0
		for _, p := range pValues {
			z += dist.StdNormalQuantile(1 - p)
		}
		z /= math.Sqrt(float64(k))
		return CombinedResult{
			Method:    MethodStouffer,
			Statistic: z,
			PValue:    dist.NormalSurvival(z, 0, 1),
			Combined:  k,
		}, nil

	default:
		return CombinedResult{}, core.ErrUnsupportedCombiner
	}
}
