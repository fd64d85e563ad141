package spectral

import (
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat/distuv"
)

// Default KDE settings.
const (
	DefaultBandwidth = 10.0
	DefaultKDEPoints = 1000
)

// Density is a kernel density estimate evaluated on a regular grid.
type Density struct {
	Points    []float64 `json:"points"`
	Densities []float64 `json:"densities"`
}

// GaussianKDE evaluates a Gaussian kernel density estimate of values at
// points equally spaced between their minimum and maximum.
// Non-positive bandwidth or points select the defaults.
func GaussianKDE(values []float64, bandwidth float64, points int) *Density {
	if len(values) == 0 {
		return &Density{}
	}
	if bandwidth <= 0 {
		bandwidth = DefaultBandwidth
	}
	if points <= 0 {
		points = DefaultKDEPoints
	}

	grid := make([]float64, points)
	lo, hi := floats.Min(values), floats.Max(values)
	if points == 1 || lo == hi {
		for i := range grid {
			grid[i] = lo
		}
	} else {
		floats.Span(grid, lo, hi)
	}

	densities := make([]float64, points)
	inv := 1 / float64(len(values))
	for _, v := range values {
		kernel := distuv.Normal{Mu: v, Sigma: bandwidth}
		for i, x := range grid {
			densities[i] += kernel.Prob(x) * inv
		}
	}

	return &Density{Points: grid, Densities: densities}
}
