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

func TestDispersion_KnownCounts(t *testing.T) {
	// Counts per unit bin: [2, 0, 1, 1]; mean = 1.
	// statistic = (1 + 1 + 0 + 0) / 1 = 2, df = 3.
	events := catalog.Catalog{0.1, 0.2, 2.5, 3.5}
	res, err := Dispersion(events, catalog.Window{Start: 0, End: 4}, BinOptions{})
	require.NoError(t, err)

	assert.Equal(t, TestDispersion, res.Test)
	assert.InDelta(t, 2.0, res.Statistic, 1e-12)
	assert.Equal(t, 4, res.SampleSize)
	// chi-square(3) survival at 2: exp(-1) * (1 + sqrt(2/pi) * ...) ~ 0.5724
	assert.InDelta(t, 0.5724, res.PValue, 1e-3)
}

func TestDispersion_SingleEventCatalog(t *testing.T) {
	// One event over a single-bin window cannot be tested.
	_, err := Dispersion(catalog.Catalog{0.5}, catalog.Window{Start: 0, End: 1}, BinOptions{})
	require.Error(t, err)
	assert.True(t, core.IsInsufficientDataError(err))
}

func TestDispersion_EmptyWindow(t *testing.T) {
	_, err := Dispersion(catalog.Catalog{}, catalog.Window{Start: 0, End: 10}, BinOptions{})
	require.Error(t, err)
	assert.True(t, core.IsInsufficientDataError(err), "zero mean count must be a domain error, got %v", err)
}

func TestDispersion_InvalidWindow(t *testing.T) {
	_, err := Dispersion(catalog.Catalog{1}, catalog.Window{Start: 10, End: 0}, BinOptions{})
	assert.True(t, core.IsInvalidWindowError(err))
}

func TestDispersion_DetectsClustering(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	w := catalog.Window{Start: 1900, End: 2000}
	events := testkit.ClusteredCatalog(rng, w, 5.0, 1e-4)

	res, err := Dispersion(events, w, BinOptions{})
	require.NoError(t, err)
	assert.Less(t, res.PValue, 0.01, "paired events double the variance-to-mean ratio")
}

func TestDispersion_HomogeneousCalibration(t *testing.T) {
	// Under the null the p-value is approximately uniform on (0,1); over
	// repeated trials its mean should sit near 1/2 and extremes should be
	// rare. Loose bounds keep this a calibration check, not a flake.
	w := catalog.Window{Start: 0, End: 100}
	trials := 50
	sum := 0.0
	for seed := 0; seed < trials; seed++ {
		rng := rand.New(rand.NewSource(int64(1000 + seed)))
		events := testkit.PoissonCatalog(rng, w, 3.0)
		res, err := Dispersion(events, w, BinOptions{})
		require.NoError(t, err)
		require.Greater(t, res.PValue, 0.0)
		require.LessOrEqual(t, res.PValue, 1.0)
		sum += res.PValue
	}
	mean := sum / float64(trials)
	assert.Greater(t, mean, 0.3)
	assert.Less(t, mean, 0.7)
}
