package stats

import (
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// NDiffs determines the number of first differences required for stationarity.
// Uses KPSS test by default. Returns 0, 1, or 2.
// maxD is the maximum number of differences to consider (default 2).
// testType can be "kpss" (default) or "adf".
func NDiffs(values []float64, maxD int, testType string) int {
	if maxD <= 0 {
		maxD = 2
	}
	if testType == "" {
		testType = "kpss"
	}

	current := values
	for d := 0; d < maxD; d++ {
		isStationary := false

		if testType == "adf" {
			result := ADF(current, 0)
			if result != nil && result.IsStationary {
				isStationary = true
			}
		} else {
			result := KPSS(current, "c", 0)
			if result != nil && result.IsStationary {
				isStationary = true
			}
		}

		if isStationary {
			return d
		}

		current = difference(current)
		if len(current) < 10 {
			return d
		}
	}

	return maxD
}

// NSDiffs determines the number of seasonal differences required.
// One seasonal difference is suggested while the STL seasonal strength is at least 0.64.
func NSDiffs(values []float64, period int, maxD int) int {
	if maxD <= 0 {
		maxD = 1
	}
	if period <= 1 || len(values) < 2*period {
		return 0
	}

	current := values
	for d := 0; d < maxD; d++ {
		decomp, err := STL(current, period, nil)
		if err != nil || Strength(decomp.Seasonal, decomp.Residual) < 0.64 {
			return d
		}

		current = seasonalDifference(current, period)
		if len(current) < 2*period {
			return d
		}
	}

	return maxD
}

// Strength measures how much of the variation of component+residual is
// explained by the component: max(0, 1 - Var(R) / Var(C+R)).
// A constant component+residual yields 0.
func Strength(component, residual []float64) float64 {
	if len(component) != len(residual) || len(residual) < 2 {
		return 0
	}

	sum := make([]float64, len(component))
	for i := range sum {
		sum[i] = component[i] + residual[i]
	}
	// Variance at rounding level is treated as none.
	scale := floats.Norm(sum, math.Inf(1))
	varSum := stat.Variance(sum, nil)
	if math.IsNaN(varSum) || varSum <= 1e-20*math.Max(1, scale*scale) {
		return 0
	}

	strength := 1 - stat.Variance(residual, nil)/varSum
	if strength < 0 || math.IsNaN(strength) {
		return 0
	}
	return strength
}

func seasonalDifference(values []float64, period int) []float64 {
	if len(values) <= period {
		return nil
	}
	out := make([]float64, len(values)-period)
	for i := range out {
		out[i] = values[i+period] - values[i]
	}
	return out
}
