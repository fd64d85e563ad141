package stats

import (
	"math"
	"sort"
	"strings"

	"gonum.org/v1/gonum/stat"

	"github.com/sartorproj/featurespace/errs"
)

// Method selects a decomposition algorithm.
type Method string

const (
	MethodSTL       Method = "stl"
	MethodClassical Method = "classical"
)

// ParseMethod converts a configuration string to a Method. The empty string
// selects STL.
func ParseMethod(s string) (Method, error) {
	switch Method(strings.ToLower(strings.TrimSpace(s))) {
	case "", MethodSTL:
		return MethodSTL, nil
	case MethodClassical:
		return MethodClassical, nil
	}
	return "", errs.InvalidParameter("unknown decomposition method %q", s)
}

// Decomposer decomposes a series for a given period.
type Decomposer func(values []float64, period int) (*STLResult, error)

// NewDecomposer returns the Decomposer for method.
func NewDecomposer(method Method, robust bool) (Decomposer, error) {
	switch method {
	case "", MethodSTL:
		return func(values []float64, period int) (*STLResult, error) {
			return STL(values, period, &STLOptions{Robust: robust})
		}, nil
	case MethodClassical:
		return Decompose, nil
	}
	return nil, errs.InvalidParameter("unknown decomposition method %q", method)
}

// Decompose performs classical additive decomposition of a series.
// The trend is a centered moving average of length period, extended to the
// ends by a straight line fitted to the nearest period trend values.
func Decompose(values []float64, period int) (*STLResult, error) {
	if period < 1 {
		return nil, errs.InvalidParameter("period must be a positive integer, got %d", period)
	}
	n := len(values)
	if n < 3 || n < 2*period {
		return nil, errs.Decomposition("%d observations are too few for period %d", n, period)
	}
	for i, v := range values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return nil, errs.Decomposition("non-finite value at position %d", i)
		}
	}

	y := make([]float64, n)
	copy(y, values)

	// Step 1: Calculate trend using centered moving average
	trend := calculateTrend(y, period)
	extrapolateTrend(trend, period)

	// Step 2: Average the detrended series within each position of the cycle
	seasonalPattern := make([]float64, period)
	counts := make([]int, period)
	for i := 0; i < n; i++ {
		seasonIdx := i % period
		seasonalPattern[seasonIdx] += y[i] - trend[i]
		counts[seasonIdx]++
	}
	for i := 0; i < period; i++ {
		if counts[i] > 0 {
			seasonalPattern[i] /= float64(counts[i])
		}
	}

	// Normalize seasonal component
	mean := stat.Mean(seasonalPattern, nil)
	for i := range seasonalPattern {
		seasonalPattern[i] -= mean
	}

	seasonal := make([]float64, n)
	for i := 0; i < n; i++ {
		seasonal[i] = seasonalPattern[i%period]
	}

	return newSTLResult(y, trend, seasonal, period, nil), nil
}

// calculateTrend calculates trend using centered moving average.
// Positions without a full window are NaN.
func calculateTrend(values []float64, period int) []float64 {
	n := len(values)
	trend := make([]float64, n)
	for i := range trend {
		trend[i] = math.NaN()
	}

	halfPeriod := period / 2

	if period%2 == 0 {
		// Even period: use 2xperiod MA (centered)
		for i := halfPeriod; i < n-halfPeriod; i++ {
			sum := 0.0
			// First and last values get half weight
			sum += values[i-halfPeriod] * 0.5
			sum += values[i+halfPeriod] * 0.5
			for j := i - halfPeriod + 1; j < i+halfPeriod; j++ {
				sum += values[j]
			}
			trend[i] = sum / float64(period)
		}
	} else {
		// Odd period: simple centered MA
		for i := halfPeriod; i < n-halfPeriod; i++ {
			sum := 0.0
			for j := i - halfPeriod; j <= i+halfPeriod; j++ {
				sum += values[j]
			}
			trend[i] = sum / float64(period)
		}
	}

	return trend
}

// extrapolateTrend replaces the NaN ends of a moving-average trend with a
// least-squares line through the nearest valid values.
func extrapolateTrend(trend []float64, period int) {
	first, last := -1, -1
	for i, v := range trend {
		if !math.IsNaN(v) {
			if first < 0 {
				first = i
			}
			last = i
		}
	}
	if first < 0 {
		return
	}

	k := min(period, last-first+1)
	if k < 2 {
		for i := range trend {
			if math.IsNaN(trend[i]) {
				trend[i] = trend[first]
			}
		}
		return
	}

	xs := make([]float64, k)
	for i := range xs {
		xs[i] = float64(first + i)
	}
	alpha, beta := stat.LinearRegression(xs, trend[first:first+k], nil, false)
	for i := 0; i < first; i++ {
		trend[i] = alpha + beta*float64(i)
	}

	for i := range xs {
		xs[i] = float64(last - k + 1 + i)
	}
	alpha, beta = stat.LinearRegression(xs, trend[last-k+1:last+1], nil, false)
	for i := last + 1; i < len(trend); i++ {
		trend[i] = alpha + beta*float64(i)
	}
}

// median calculates the median of a slice.
func median(data []float64) float64 {
	n := len(data)
	if n == 0 {
		return 0
	}

	sorted := make([]float64, n)
	copy(sorted, data)
	sort.Float64s(sorted)

	if n%2 == 0 {
		return (sorted[n/2-1] + sorted[n/2]) / 2
	}
	return sorted[n/2]
}
