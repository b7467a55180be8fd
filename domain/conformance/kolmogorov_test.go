package conformance

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"poissonkit/domain/catalog"
	"poissonkit/domain/core"
	"poissonkit/internal/testkit"
)

func TestUniformOrder_KnownStatistic(t *testing.T) {
	// Normalized times [0.25, 0.5, 0.75, 1.0]: the empirical CDF leads the
	// uniform CDF by exactly 0.25 before every step.
	events := catalog.Catalog{1, 2, 3, 4}
	res, err := UniformOrder(events, catalog.Window{Start: 0, End: 4}, KSOptions{})
	require.NoError(t, err)

	assert.Equal(t, TestUniformOrder, res.Test)
	assert.InDelta(t, 0.25, res.Statistic, 1e-12)
	assert.Empty(t, res.Warnings)
}

func TestUniformOrder_RejectsEventOutsideWindow(t *testing.T) {
	_, err := UniformOrder(catalog.Catalog{1, 2, 11}, catalog.Window{Start: 0, End: 10}, KSOptions{})
	require.Error(t, err)
	assert.True(t, core.IsInvalidWindowError(err))
}

func TestUniformOrder_EmptyCatalog(t *testing.T) {
	_, err := UniformOrder(catalog.Catalog{}, catalog.Window{Start: 0, End: 10}, KSOptions{})
	assert.True(t, core.IsInsufficientDataError(err))
}

func TestExponentialWait_InferredMeanWaitIsFlagged(t *testing.T) {
	events := catalog.Catalog{0.5, 1.5, 2.0, 3.7, 5.1}
	w := catalog.Window{Start: 0, End: 10}

	inferred, err := ExponentialWait(events, w, KSOptions{})
	require.NoError(t, err)
	assert.Contains(t, inferred.Warnings, WarningInferredParameter)

	known, err := ExponentialWait(events, w, KSOptions{MeanWait: 2.0})
	require.NoError(t, err)
	assert.Empty(t, known.Warnings)
	assert.Equal(t, len(events)-1, known.SampleSize)
}

func TestExponentialWait_NeedsTwoEvents(t *testing.T) {
	_, err := ExponentialWait(catalog.Catalog{1}, catalog.Window{Start: 0, End: 10}, KSOptions{})
	require.Error(t, err)
	assert.True(t, core.IsInsufficientDataError(err))
}

// Short-term clustering is caught by the dispersion and exponential-wait
// tests far more often than by the uniform-order test; long-term rate
// drift shows the opposite asymmetry.
func TestClusteringSensitivityProfile(t *testing.T) {
	w := catalog.Window{Start: 1900, End: 2000}
	trials := 20
	alpha := 0.05

	var dispersionHits, expWaitHits, uniformHits int
	for seed := 0; seed < trials; seed++ {
		rng := rand.New(rand.NewSource(int64(seed)))
		events := testkit.ClusteredCatalog(rng, w, 5.0, 1e-4)

		d, err := Dispersion(events, w, BinOptions{})
		require.NoError(t, err)
		e, err := ExponentialWait(events, w, KSOptions{})
		require.NoError(t, err)
		u, err := UniformOrder(events, w, KSOptions{})
		require.NoError(t, err)

		if d.PValue < alpha {
			dispersionHits++
		}
		if e.PValue < alpha {
			expWaitHits++
		}
		if u.PValue < alpha {
			uniformHits++
		}
	}

	assert.GreaterOrEqual(t, dispersionHits, 16, "dispersion should reject clustered catalogs")
	assert.GreaterOrEqual(t, expWaitHits, 16, "exponential-wait should reject clustered catalogs")
	assert.LessOrEqual(t, uniformHits, 12, "uniform-order is insensitive to short-term clustering")
	assert.Greater(t, dispersionHits, uniformHits)
}

func TestUniformOrder_DetectsRateDrift(t *testing.T) {
	w := catalog.Window{Start: 0, End: 100}
	trials := 20
	alpha := 0.05

	hits := 0
	for seed := 0; seed < trials; seed++ {
		rng := rand.New(rand.NewSource(int64(500 + seed)))
		events := testkit.DriftingCatalog(rng, w, 1.0, 9.0)
		u, err := UniformOrder(events, w, KSOptions{})
		require.NoError(t, err)
		if u.PValue < alpha {
			hits++
		}
	}
	assert.GreaterOrEqual(t, hits, 16, "a 9x linear rate ramp concentrates events late in the window")
}

func TestExponentialWait_HomogeneousCalibration(t *testing.T) {
	// Under the null, with the mean wait known a priori, the p-value is
	// approximately uniform on (0,1); its mean over repeated trials should
	// sit near 1/2. Loose bounds keep this a calibration check, not a flake.
	w := catalog.Window{Start: 0, End: 100}
	rate := 3.0
	trials := 50
	sum := 0.0
	for seed := 0; seed < trials; seed++ {
		rng := rand.New(rand.NewSource(int64(2000 + seed)))
		events := testkit.PoissonCatalog(rng, w, rate)
		res, err := ExponentialWait(events, w, KSOptions{MeanWait: 1 / rate})
		require.NoError(t, err)
		require.Empty(t, res.Warnings)
		require.Greater(t, res.PValue, 0.0)
		require.LessOrEqual(t, res.PValue, 1.0)
		sum += res.PValue
	}
	mean := sum / float64(trials)
	assert.Greater(t, mean, 0.3)
	assert.Less(t, mean, 0.7)
}

func TestUniformOrder_HomogeneousCalibration(t *testing.T) {
	// Conditional on the count, homogeneous Poisson event times are uniform
	// on the window, so the null p-value is approximately uniform on (0,1).
	w := catalog.Window{Start: 0, End: 100}
	trials := 50
	sum := 0.0
	for seed := 0; seed < trials; seed++ {
		rng := rand.New(rand.NewSource(int64(3000 + seed)))
		events := testkit.PoissonCatalog(rng, w, 3.0)
		res, err := UniformOrder(events, w, KSOptions{})
		require.NoError(t, err)
		require.Greater(t, res.PValue, 0.0)
		require.LessOrEqual(t, res.PValue, 1.0)
		sum += res.PValue
	}
	mean := sum / float64(trials)
	assert.Greater(t, mean, 0.3)
	assert.Less(t, mean, 0.7)
}

func TestKSOneSample_PerfectFit(t *testing.T) {
	// Sample placed exactly at the uniform quantile midpoints minimizes D.
	sample := []float64{0.125, 0.375, 0.625, 0.875}
	d, p, err := ksOneSample(sample, NewDistributions().UniformCDF)
	require.NoError(t, err)
	assert.InDelta(t, 0.125, d, 1e-12)
	assert.Greater(t, p, 0.99)
}
