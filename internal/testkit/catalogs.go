// Package testkit provides deterministic synthetic catalogs for the
// conformance tests' own test suites. Generators take an explicit *rand.Rand
// so every fixture is reproducible from a seed.
package testkit

import (
	"math/rand"
	"sort"

	"poissonkit/domain/catalog"
)

// PoissonCatalog generates a homogeneous Poisson catalog with the given
// rate (events per time unit) over the window, by accumulating exponential
// waits.
func PoissonCatalog(rng *rand.Rand, w catalog.Window, rate float64) catalog.Catalog {
	var events catalog.Catalog
	t := w.Start
	for {
		t += rng.ExpFloat64() / rate
		if t > w.End {
			break
		}
		events = append(events, t)
	}
	return events
}

// ClusteredCatalog generates a Poisson parent process and attaches one
// aftershock at a fixed short offset after every parent, injecting the
// short-term clustering the dispersion and exponential-wait tests are
// sensitive to.
func ClusteredCatalog(rng *rand.Rand, w catalog.Window, parentRate, offset float64) catalog.Catalog {
	parents := PoissonCatalog(rng, w, parentRate)
	events := make(catalog.Catalog, 0, 2*len(parents))
	for _, t := range parents {
		events = append(events, t)
		if child := t + offset; child <= w.End {
			events = append(events, child)
		}
	}
	sort.Float64s(events)
	return events
}

// DriftingCatalog generates an inhomogeneous process whose rate rises
// linearly from startRate to endRate across the window (thinning of a
// homogeneous process at the peak rate). This is the long-term drift the
// uniform-order test is sensitive to.
func DriftingCatalog(rng *rand.Rand, w catalog.Window, startRate, endRate float64) catalog.Catalog {
	peak := startRate
	if endRate > peak {
		peak = endRate
	}
	candidate := PoissonCatalog(rng, w, peak)
	var events catalog.Catalog
	for _, t := range candidate {
		frac := (t - w.Start) / w.Duration()
		rate := startRate + frac*(endRate-startRate)
		if rng.Float64() < rate/peak {
			events = append(events, t)
		}
	}
	return events
}

// NormalSample draws a deterministic normal sample for the goodness-of-fit
// tests.
func NormalSample(rng *rand.Rand, n int, mu, sigma float64) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = mu + sigma*rng.NormFloat64()
	}
	return out
}

// ExponentialSample draws a deterministic exponential sample with the given
// mean.
func ExponentialSample(rng *rand.Rand, n int, mean float64) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = mean * rng.ExpFloat64()
	}
	return out
}
