package conformance

import (
	"fmt"
	"math"
	"sort"

	"poissonkit/domain/catalog"
	"poissonkit/domain/core"
	"poissonkit/internal"
)

// ExponentialWait compares the inter-event wait times against an
// exponential distribution via the one-sample Kolmogorov-Smirnov statistic.
// Under the Poisson hypothesis the gaps between consecutive raw timestamps
// (not binned) are exponential with rate 1/meanWait (Michael 2011).
//
// When opts.MeanWait is zero the mean wait is inferred from the data as
// window duration over event count, exactly as the reference does. An
// inferred parameter makes the p-value anti-conservative (Lilliefors 1969);
// the result is still reported but carries WarningInferredParameter.
//
// Known property: sensitive to short-term clustering but not to long-term
// rate changes (Daub 2015); UniformOrder has the opposite profile.
func ExponentialWait(c catalog.Catalog, w catalog.Window, opts KSOptions) (TestResult, error) {
	if err := w.Validate(); err != nil {
		return TestResult{}, err
	}
	if err := c.Validate(); err != nil {
		return TestResult{}, err
	}
	if c.Len() < 2 {
		return TestResult{}, core.NewInsufficientDataError(string(TestExponentialWait), 2, c.Len())
	}

	var warnings []WarningCode
	meanWait := opts.MeanWait
	if meanWait <= 0 {
		meanWait = w.Duration() / float64(c.Len())
		warnings = append(warnings, WarningInferredParameter)
		if opts.Verbose {
			internal.DefaultLogger.Warn("[%s] using inferred mean wait %g; p-value is approximate", TestExponentialWait, meanWait)
		}
	}

	gaps := c.Gaps()
	normalized := make([]float64, len(gaps))
	for i, g := range gaps {
		normalized[i] = g / meanWait
	}

	dist := NewDistributions()
	statistic, pValue, err := ksOneSample(normalized, func(x float64) float64 {
		return dist.ExponentialCDF(x, 1)
	})
	if err != nil {
		return TestResult{}, fmt.Errorf("%s: %w", TestExponentialWait, err)
	}

	result := TestResult{
		Test:       TestExponentialWait,
		Statistic:  statistic,
		PValue:     pValue,
		SampleSize: len(gaps),
		Warnings:   warnings,
		Diagnostic: fmt.Sprintf("mean wait, statistic, p-value: %g, %g, %.2g", meanWait, statistic, pValue),
	}
	if opts.Verbose {
		internal.DefaultLogger.Info("[%s] %s", TestExponentialWait, result.Diagnostic)
	}
	return result, nil
}

// UniformOrder compares the normalized event times (t_i - start)/duration
// against the uniform distribution on [0,1] via the one-sample
// Kolmogorov-Smirnov statistic. Under the Poisson hypothesis, event times
// conditional on their count are uniform on the window (Luen & Stark 2012).
//
// All events must lie inside the window; this test requires pre-filtered
// input and reports ErrInvalidWindow otherwise.
//
// Known property: more sensitive to long-term rate drift than
// ExponentialWait (Daub 2015).
func UniformOrder(c catalog.Catalog, w catalog.Window, opts KSOptions) (TestResult, error) {
	if err := w.Validate(); err != nil {
		return TestResult{}, err
	}
	if err := c.Validate(); err != nil {
		return TestResult{}, err
	}
	if c.Len() < 1 {
		return TestResult{}, core.NewInsufficientDataError(string(TestUniformOrder), 1, 0)
	}

	duration := w.Duration()
	normalized := make([]float64, c.Len())
	for i, t := range c {
		if !w.Contains(t) {
			return TestResult{}, fmt.Errorf("%w: event %g outside [%g, %g]", core.ErrEventOutsideWindow, t, w.Start, w.End)
		}
		normalized[i] = (t - w.Start) / duration
	}

	dist := NewDistributions()
	statistic, pValue, err := ksOneSample(normalized, dist.UniformCDF)
	if err != nil {
		return TestResult{}, fmt.Errorf("%s: %w", TestUniformOrder, err)
	}

	result := TestResult{
		Test:       TestUniformOrder,
		Statistic:  statistic,
		PValue:     pValue,
		SampleSize: c.Len(),
		Diagnostic: fmt.Sprintf("statistic, p-value: %g, %.2g", statistic, pValue),
	}
	if opts.Verbose {
		internal.DefaultLogger.Info("[%s] %s", TestUniformOrder, result.Diagnostic)
	}
	return result, nil
}

// ksOneSample computes the one-sample Kolmogorov-Smirnov statistic (maximum
// absolute distance between the empirical CDF and the reference CDF) and
// its asymptotic p-value with the Stephens (1970) small-sample correction
// (sqrt(n) + 0.12 + 0.11/sqrt(n)) * D.
func ksOneSample(sample []float64, cdf func(float64) float64) (statistic, pValue float64, err error) {
	n := len(sample)
	if n == 0 {
		return 0, 0, core.NewInsufficientDataError("kolmogorov-smirnov", 1, 0)
	}

	sorted := make([]float64, n)
	copy(sorted, sample)
	sort.Float64s(sorted)

	en := float64(n)
	d := 0.0
	for i, x := range sorted {
		ff := cdf(x)
		below := ff - float64(i)/en
		above := float64(i+1)/en - ff
		if below > d {
			d = below
		}
		if above > d {
			d = above
		}
	}

	sqrtN := math.Sqrt(en)
	pValue = NewDistributions().KolmogorovSurvival((sqrtN + 0.12 + 0.11/sqrtN) * d)

	if math.IsNaN(d) || math.IsNaN(pValue) {
		return 0, 0, fmt.Errorf("%w: degenerate sample", core.ErrInsufficientData)
	}
	return d, pValue, nil
}
