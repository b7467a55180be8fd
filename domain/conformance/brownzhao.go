package conformance

import (
	"fmt"
	"math"

	"github.com/montanaflynn/stats"

	"poissonkit/domain/catalog"
	"poissonkit/domain/core"
	"poissonkit/internal"
)

// BrownZhao runs the variance-stabilized alternative to Dispersion, after
// Brown & Zhao (2002). Each bin count is passed through the Anscombe
// transform y_i = sqrt(c_i + 3/8), which renders the transformed values
// approximately normal with variance 1/4, and the statistic
//
//	4 * sum((y_i - mean(y))^2)
//
// (Luen & Stark 2012, eq. 8) is then evaluated against the survival of a
// unit-variance normal located at n-1.
//
// Known issue: this reference is empirically over-sensitive; the
// location/scale may reflect a subtly incorrect constant, but the published
// behavior is reproduced exactly rather than second-guessed. Prefer
// Dispersion when a calibrated p-value matters.
func BrownZhao(c catalog.Catalog, w catalog.Window, opts BinOptions) (TestResult, error) {
	binning, err := catalog.Bin(c, w, opts.width())
	if err != nil {
		return TestResult{}, err
	}
	counts := binning.Counts
	n := len(counts)
	if n < 2 {
		return TestResult{}, core.NewInsufficientDataError(string(TestBrownZhao), 2, n)
	}

	// Variance-stabilizing transform, Brown & Zhao (2002) eq. (4).
	transformed := make([]float64, n)
	for i, count := range counts {
		transformed[i] = math.Sqrt(float64(count) + 3.0/8.0)
	}

	mean, _ := stats.Mean(transformed)
	statistic := 0.0
	for _, y := range transformed {
		diff := y - mean
		statistic += 4 * diff * diff
	}
	pValue := NewDistributions().NormalSurvival(statistic, float64(n-1), 1)

	if math.IsNaN(statistic) || math.IsNaN(pValue) {
		return TestResult{}, fmt.Errorf("%w: %s produced a degenerate statistic", core.ErrInsufficientData, TestBrownZhao)
	}

	result := TestResult{
		Test:       TestBrownZhao,
		Statistic:  statistic,
		PValue:     pValue,
		SampleSize: n,
		Diagnostic: fmt.Sprintf("Y_mean, chi-squared, p-value: %g, %g, %.2g", mean, statistic, pValue),
	}
	if opts.Verbose {
		internal.DefaultLogger.Info("[%s] %s", TestBrownZhao, result.Diagnostic)
	}
	return result, nil
}
