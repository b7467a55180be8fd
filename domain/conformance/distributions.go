package conformance

import (
	"math"

	"gonum.org/v1/gonum/stat/distuv"
)

// Distributions provides unified access to the reference distributions the
// conformance tests compare against. This keeps every CDF/survival lookup
// in one place instead of scattering distuv calls through the tests.
type Distributions struct{}

// NewDistributions creates a new distributions utility
func NewDistributions() *Distributions {
	return &Distributions{}
}

// ChiSquareSurvival computes the upper-tail probability of the chi-square
// distribution with the given degrees of freedom.
func (d *Distributions) ChiSquareSurvival(x float64, degreesOfFreedom int) float64 {
	if degreesOfFreedom <= 0 {
		return 1.0
	}
	chiDist := distuv.ChiSquared{K: float64(degreesOfFreedom)}
	return chiDist.Survival(x)
}

// NormalSurvival computes the upper-tail probability of a normal
// distribution with the given location and scale.
func (d *Distributions) NormalSurvival(x, mu, sigma float64) float64 {
	if sigma <= 0 {
		return 1.0
	}
	return distuv.Normal{Mu: mu, Sigma: sigma}.Survival(x)
}

// StdNormalCDF computes the standard normal cumulative distribution.
func (d *Distributions) StdNormalCDF(x float64) float64 {
	return distuv.UnitNormal.CDF(x)
}

// StdNormalQuantile computes the standard normal inverse CDF.
func (d *Distributions) StdNormalQuantile(p float64) float64 {
	return distuv.UnitNormal.Quantile(p)
}

// ExponentialCDF computes the exponential cumulative distribution with the
// given rate.
func (d *Distributions) ExponentialCDF(x, rate float64) float64 {
	if x <= 0 {
		return 0
	}
	return distuv.Exponential{Rate: rate}.CDF(x)
}

// UniformCDF computes the uniform cumulative distribution on [0,1].
func (d *Distributions) UniformCDF(x float64) float64 {
	if x <= 0 {
		return 0
	}
	if x >= 1 {
		return 1
	}
	return x
}

// KolmogorovSurvival computes the upper-tail probability of the asymptotic
// Kolmogorov distribution, Q(lambda) = 2 sum_j (-1)^(j-1) exp(-2 j^2 lambda^2).
func (d *Distributions) KolmogorovSurvival(lambda float64) float64 {
	if lambda < 1e-8 {
		return 1.0
	}
	sum := 0.0
	sign := 1.0
	for j := 1; j <= 100; j++ {
		term := math.Exp(-2 * float64(j*j) * lambda * lambda)
		sum += sign * term
		if term < 1e-10 {
			break
		}
		sign = -sign
	}
	p := 2 * sum
	if p < 0 {
		return 0
	}
	if p > 1 {
		return 1
	}
	return p
}
