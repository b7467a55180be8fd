package conformance

import (
	"fmt"
	"math"

	"github.com/montanaflynn/stats"

	"poissonkit/domain/catalog"
	"poissonkit/domain/core"
	"poissonkit/internal"
)

// Dispersion runs the conditional chi-square test of Brown & Zhao (2002)
// and Luen & Stark (2012): under the Poisson hypothesis the variance of the
// per-bin counts equals their mean, so the statistic
//
//	sum((c_i - mean)^2) / mean  ==  (n-1) * variance / mean
//
// follows a chi-square distribution with n-1 degrees of freedom. The upper
// tail captures over-dispersion (clustering); a caller interested in
// under-dispersion uses the complementary tail of the same statistic.
//
// Known property: the test is less sensitive to smooth, gradual rate
// changes than to short-term clustering (Brown & Zhao 2002, p. 693).
func Dispersion(c catalog.Catalog, w catalog.Window, opts BinOptions) (TestResult, error) {
	binning, err := catalog.Bin(c, w, opts.width())
	if err != nil {
		return TestResult{}, err
	}
	counts := binning.Counts
	n := len(counts)
	if n < 2 {
		return TestResult{}, core.NewInsufficientDataError(string(TestDispersion), 2, n)
	}

	mean, _ := stats.Mean(counts.Floats())
	if mean == 0 {
		return TestResult{}, fmt.Errorf("%w: %s requires a non-zero mean count", core.ErrInsufficientData, TestDispersion)
	}

	statistic := 0.0
	for _, count := range counts {
		diff := float64(count) - mean
		statistic += diff * diff / mean
	}
	pValue := NewDistributions().ChiSquareSurvival(statistic, n-1)

	if math.IsNaN(statistic) || math.IsNaN(pValue) {
		return TestResult{}, fmt.Errorf("%w: %s produced a degenerate statistic", core.ErrInsufficientData, TestDispersion)
	}

	result := TestResult{
		Test:       TestDispersion,
		Statistic:  statistic,
		PValue:     pValue,
		SampleSize: n,
		Diagnostic: fmt.Sprintf("X_mean, chi-squared, p-value: %g, %g, %.2g", mean, statistic, pValue),
	}
	if opts.Verbose {
		internal.DefaultLogger.Info("[%s] %s", TestDispersion, result.Diagnostic)
	}
	return result, nil
}
