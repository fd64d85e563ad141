package features

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"

	"github.com/sartorproj/featurespace/spectral"
	"github.com/sartorproj/featurespace/stats"
)

// Source tells which part of the input an extractor reads.
type Source int

const (
	// Raw extractors read the observed values only.
	Raw Source = iota
	// Decomposed extractors need a decomposition and are filled when it failed.
	Decomposed
)

// Input is everything an extractor may read for one series.
type Input struct {
	Values        []float64
	Decomposition *stats.STLResult // nil when the decomposition failed
	Period        int
	TileWidth     int // 0 selects the period when >= 2, else DefaultTileWidth

	quad  *[2]float64
	tiles *[2]float64
	eacf  []float64
}

// Extractor computes one named scalar from an Input.
type Extractor struct {
	Name    string
	Source  Source
	Compute func(in *Input) float64
}

var canonical = []Extractor{
	{Length, Raw, func(in *Input) float64 { return float64(len(in.Values)) }},
	{TrendStrength, Decomposed, func(in *Input) float64 {
		return stats.Strength(in.Decomposition.Trend, in.Decomposition.Residual)
	}},
	{SeasonalStrength, Decomposed, func(in *Input) float64 {
		if in.Period < 2 {
			return 0
		}
		return stats.Strength(in.Decomposition.Seasonal, in.Decomposition.Residual)
	}},
	{Linearity, Raw, func(in *Input) float64 { return in.quadratic()[0] }},
	{Curvature, Raw, func(in *Input) float64 { return in.quadratic()[1] }},
	{Spikiness, Decomposed, func(in *Input) float64 { return spikiness(in.Decomposition.Residual) }},
	{EACF1, Decomposed, func(in *Input) float64 { return lag(in.residualACF(), 1) }},
	{EACF10, Decomposed, func(in *Input) float64 { return lag(in.residualACF(), 10) }},
	{Stability, Raw, func(in *Input) float64 { return in.tiled()[0] }},
	{Lumpiness, Raw, func(in *Input) float64 { return in.tiled()[1] }},
	{Entropy, Raw, func(in *Input) float64 { return spectral.Entropy(in.Values) }},
}

var supplementary = []Extractor{
	{XACF1, Raw, func(in *Input) float64 { return lag(stats.ACF(in.Values, 10), 1) }},
	{XACF10, Raw, func(in *Input) float64 { return sumSquares(stats.ACF(in.Values, 10), 10) }},
	{Diff1ACF1, Raw, func(in *Input) float64 { return lag(stats.ACF(diff(in.Values, 1), 10), 1) }},
	{Diff1ACF10, Raw, func(in *Input) float64 { return sumSquares(stats.ACF(diff(in.Values, 1), 10), 10) }},
	{Diff2ACF1, Raw, func(in *Input) float64 { return lag(stats.ACF(diff(in.Values, 2), 10), 1) }},
	{Diff2ACF10, Raw, func(in *Input) float64 { return sumSquares(stats.ACF(diff(in.Values, 2), 10), 10) }},
	{SeasACF1, Raw, func(in *Input) float64 {
		if in.Period < 2 {
			return 0
		}
		return lag(stats.ACF(in.Values, in.Period), in.Period)
	}},
	{XPACF5, Raw, func(in *Input) float64 { return sumSquares(stats.PACF(in.Values, 5), 5) }},
	{Diff1XPACF5, Raw, func(in *Input) float64 { return sumSquares(stats.PACF(diff(in.Values, 1), 5), 5) }},
	{Diff2XPACF5, Raw, func(in *Input) float64 { return sumSquares(stats.PACF(diff(in.Values, 2), 5), 5) }},
	{SeasPACF, Raw, func(in *Input) float64 {
		if in.Period < 2 {
			return 0
		}
		return lag(stats.PACF(in.Values, in.Period), in.Period)
	}},
	{UnitrootKPSS, Raw, func(in *Input) float64 {
		if r := stats.KPSS(in.Values, "c", 0); r != nil {
			return r.Statistic
		}
		return 0
	}},
	{UnitrootPP, Raw, func(in *Input) float64 {
		if r := stats.PhillipsPerron(in.Values, 0); r != nil {
			return r.Statistic
		}
		return 0
	}},
	{CrossingPoints, Raw, func(in *Input) float64 { return crossingPoints(in.Values) }},
	{FlatSpots, Raw, func(in *Input) float64 { return flatSpots(in.Values) }},
	{NPeriods, Decomposed, func(in *Input) float64 {
		if in.Period < 2 {
			return 0
		}
		return 1
	}},
	{SeasonalPeriod, Decomposed, func(in *Input) float64 { return float64(in.Period) }},
	{Peak, Decomposed, func(in *Input) float64 { return in.cycleExtreme(floats.MaxIdx) }},
	{Trough, Decomposed, func(in *Input) float64 { return in.cycleExtreme(floats.MinIdx) }},
}

// Canonical returns the canonical extractors in output order.
func Canonical() []Extractor {
	return append([]Extractor(nil), canonical...)
}

// Extractors returns the canonical extractors followed by the supplementary ones.
func Extractors() []Extractor {
	all := make([]Extractor, 0, len(canonical)+len(supplementary))
	all = append(all, canonical...)
	return append(all, supplementary...)
}

// Names returns the names of extractors in order.
func Names(extractors []Extractor) []string {
	names := make([]string, len(extractors))
	for i, e := range extractors {
		names[i] = e.Name
	}
	return names
}

// Extract runs every extractor on in. Decomposition-dependent features are
// fill when in.Decomposition is nil, and any non-finite result becomes fill.
func Extract(in *Input, extractors []Extractor, fill float64) Vector {
	v := make(Vector, len(extractors))
	for _, e := range extractors {
		if e.Source == Decomposed && in.Decomposition == nil {
			v[e.Name] = fill
			continue
		}
		x := e.Compute(in)
		if math.IsNaN(x) || math.IsInf(x, 0) {
			x = fill
		}
		v[e.Name] = x
	}
	return v
}

// quadratic returns b1 and b2 of the least-squares fit y = b0 + b1 t + b2 t²
// over t = 0..n-1. The fit runs on t/(n-1) and is rescaled for conditioning.
func (in *Input) quadratic() [2]float64 {
	if in.quad != nil {
		return *in.quad
	}
	in.quad = &[2]float64{}
	n := len(in.Values)
	if n < 3 {
		return *in.quad
	}

	span := float64(n - 1)
	x := mat.NewDense(n, 3, nil)
	for i := 0; i < n; i++ {
		s := float64(i) / span
		x.Set(i, 0, 1)
		x.Set(i, 1, s)
		x.Set(i, 2, s*s)
	}
	var beta mat.VecDense
	if err := beta.SolveVec(x, mat.NewVecDense(n, append([]float64(nil), in.Values...))); err != nil {
		return *in.quad
	}
	in.quad[0] = beta.AtVec(1) / span
	in.quad[1] = beta.AtVec(2) / (span * span)
	return *in.quad
}

// tiled returns the variance of tile means and the variance of tile
// variances over non-overlapping tiles. The trailing partial tile is dropped.
func (in *Input) tiled() [2]float64 {
	if in.tiles != nil {
		return *in.tiles
	}
	in.tiles = &[2]float64{}

	width := in.TileWidth
	if width <= 0 {
		width = DefaultTileWidth
		if in.Period >= 2 {
			width = in.Period
		}
	}
	count := len(in.Values) / width
	if count < 1 {
		return *in.tiles
	}

	means := make([]float64, count)
	variances := make([]float64, count)
	for i := 0; i < count; i++ {
		tile := in.Values[i*width : (i+1)*width]
		means[i], variances[i] = stat.PopMeanVariance(tile, nil)
	}
	in.tiles[0] = stat.PopVariance(means, nil)
	in.tiles[1] = stat.PopVariance(variances, nil)
	return *in.tiles
}

func (in *Input) residualACF() []float64 {
	if in.eacf == nil {
		in.eacf = stats.ACF(in.Decomposition.Residual, 10)
	}
	return in.eacf
}

// cycleExtreme returns the 1-based position in the first seasonal cycle
// chosen by pick.
func (in *Input) cycleExtreme(pick func([]float64) int) float64 {
	s := in.Decomposition.Seasonal
	if in.Period < 2 || len(s) < in.Period {
		return 0
	}
	return float64(pick(s[:in.Period]) + 1)
}

// spikiness is the variance of the leave-one-out variances of r.
func spikiness(r []float64) float64 {
	n := len(r)
	if n < 3 {
		return 0
	}
	mean := stat.Mean(r, nil)
	centered := make([]float64, n)
	for i, v := range r {
		centered[i] = v - mean
	}
	sum := floats.Sum(centered)
	sumSq := floats.Dot(centered, centered)

	m := float64(n - 1)
	loo := make([]float64, n)
	for i, v := range centered {
		s := sum - v
		q := sumSq - v*v
		loo[i] = (q - s*s/m) / (m - 1)
	}
	return stat.Variance(loo, nil)
}

func lag(acf []float64, k int) float64 {
	if k < len(acf) {
		return acf[k]
	}
	return 0
}

// sumSquares is the sum of squared values at lags 1..k.
func sumSquares(values []float64, k int) float64 {
	if len(values) <= k {
		return 0
	}
	return floats.Dot(values[1:k+1], values[1:k+1])
}

func diff(values []float64, order int) []float64 {
	out := values
	for d := 0; d < order; d++ {
		if len(out) < 2 {
			return nil
		}
		next := make([]float64, len(out)-1)
		floats.SubTo(next, out[1:], out[:len(out)-1])
		out = next
	}
	return out
}

// crossingPoints counts how often the series crosses its median.
func crossingPoints(values []float64) float64 {
	n := len(values)
	if n < 2 {
		return 0
	}
	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)
	mid := sorted[n/2]
	if n%2 == 0 {
		mid = (sorted[n/2-1] + sorted[n/2]) / 2
	}

	count := 0
	for i := 1; i < n; i++ {
		if (values[i-1] <= mid) != (values[i] <= mid) {
			count++
		}
	}
	return float64(count)
}

// flatSpots is the longest run of consecutive values falling in the same of
// ten equal-width bins.
func flatSpots(values []float64) float64 {
	n := len(values)
	if n == 0 {
		return 0
	}
	lo, hi := floats.Min(values), floats.Max(values)
	if hi == lo {
		return float64(n)
	}

	bin := func(v float64) int {
		return min(int((v-lo)/(hi-lo)*10), 9)
	}
	longest, run := 1, 1
	for i := 1; i < n; i++ {
		if bin(values[i]) == bin(values[i-1]) {
			run++
			longest = max(longest, run)
		} else {
			run = 1
		}
	}
	return float64(longest)
}
