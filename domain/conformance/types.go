// Package conformance implements statistical tests for deciding whether an
// observed sequence of event times is consistent with a stationary
// (homogeneous) Poisson process, the null model underlying probabilistic
// seismic hazard analysis.
//
// Every test is a pure function of its inputs: no shared state, no I/O.
// Callers may run independent tests (e.g., across spatial zones) in
// parallel with no coordination; see the app package for a battery runner
// that does exactly that.
package conformance

import (
	"poissonkit/domain/catalog"
)

// TestName identifies a conformance test
type TestName string

const (
	TestDispersion      TestName = "dispersion"
	TestBrownZhao       TestName = "brown_zhao"
	TestExponentialWait TestName = "ks_exponential_wait"
	TestUniformOrder    TestName = "ks_uniform_order"
)

// WarningCode represents structured, non-fatal warning types
type WarningCode string

const (
	// WarningInferredParameter signals that a distributional parameter was
	// estimated from the same sample being tested, so the reported p-value
	// is anti-conservative (approximate).
	WarningInferredParameter WarningCode = "INFERRED_PARAMETER"
)

// TestResult holds the outcome of a single conformance test. Results are
// produced fresh per call and carry no shared mutable state. A low p-value
// is evidence against the Poisson hypothesis.
type TestResult struct {
	Test       TestName      `json:"test"`
	Statistic  float64       `json:"statistic"`
	PValue     float64       `json:"p_value"`
	SampleSize int           `json:"sample_size"` // bins for binned tests, gaps/events for KS
	Warnings   []WarningCode `json:"warnings,omitempty"`
	Diagnostic string        `json:"diagnostic,omitempty"` // advisory one-liner, no contract
}

// BinOptions configures the binned tests (dispersion and Brown-Zhao).
type BinOptions struct {
	// Width is the bin width; zero selects catalog.DefaultBinWidth.
	Width float64
	// Verbose emits the result diagnostic through the package logger.
	Verbose bool
}

func (o BinOptions) width() float64 {
	if o.Width <= 0 {
		return catalog.DefaultBinWidth
	}
	return o.Width
}

// KSOptions configures the Kolmogorov-Smirnov interval tests.
type KSOptions struct {
	// MeanWait is the a-priori mean inter-event wait for the exponential
	// sub-test. Zero means "infer from the data", which is flagged with
	// WarningInferredParameter on the result.
	MeanWait float64
	Verbose  bool
}
