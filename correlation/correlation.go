// Package correlation attributes projected axes to the features that move
// with them.
//
// TopK ranks the feature columns of a matrix by their Kendall τ with each of
// the three projected axes:
//
//	ranking, err := correlation.TopK(projection, matrix, 5)
//	for axis, entries := range ranking.Axes {
//	    fmt.Println(axis+1, entries[0].Feature, entries[0].Tau)
//	}
//
// A constant column has an undefined τ and is ranked with τ = 0.
package correlation

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"

	"github.com/sartorproj/featurespace/errs"
	"github.com/sartorproj/featurespace/features"
)

// DefaultK is the number of features kept per axis.
const DefaultK = 5

// Entry is one ranked feature.
type Entry struct {
	Feature string  `json:"feature"`
	Tau     float64 `json:"tau"`
}

// Ranking holds, for every projected axis, the top features sorted by
// descending τ. Axes[0] is axis 1.
type Ranking struct {
	K    int       `json:"k"`
	Axes [][]Entry `json:"axes"`
}

// TopK returns the k features with the highest Kendall τ for each column of
// proj. Ties keep column order. Fewer than k features returns them all.
func TopK(proj *mat.Dense, feats *features.Matrix, k int) (Ranking, error) {
	if k < 1 {
		return Ranking{}, errs.InvalidParameter("k must be a positive integer, got %d", k)
	}
	if proj == nil || feats == nil {
		return Ranking{}, errs.InvalidParameter("missing projection or feature matrix")
	}
	rows, axes := proj.Dims()
	if rows != feats.Rows() {
		return Ranking{}, errs.InvalidParameter("projection has %d rows, feature matrix %d", rows, feats.Rows())
	}

	columns := make([][]float64, len(feats.Columns))
	for j, name := range feats.Columns {
		columns[j] = feats.Column(name)
	}
	keep := min(k, len(feats.Columns))

	ranking := Ranking{K: keep, Axes: make([][]Entry, axes)}
	axis := make([]float64, rows)
	for d := 0; d < axes; d++ {
		mat.Col(axis, d, proj)
		entries := make([]Entry, len(feats.Columns))
		for j, name := range feats.Columns {
			entries[j] = Entry{Feature: name, Tau: Kendall(axis, columns[j])}
		}
		sort.SliceStable(entries, func(a, b int) bool { return entries[a].Tau > entries[b].Tau })
		ranking.Axes[d] = entries[:keep]
	}
	return ranking, nil
}

// Kendall returns the Kendall τ of x and y, or 0 when it is undefined
// (fewer than two points or a constant input).
func Kendall(x, y []float64) float64 {
	if len(x) < 2 || constant(x) || constant(y) {
		return 0
	}
	tau := stat.Kendall(x, y, nil)
	if math.IsNaN(tau) {
		return 0
	}
	return tau
}

func constant(v []float64) bool {
	return floats.Min(v) == floats.Max(v)
}

// Heatmap is the rank × axis table of a Ranking.
type Heatmap struct {
	Axes     []int       `json:"axes"`
	Features [][]string  `json:"features"` // [rank][axis]
	Values   [][]float64 `json:"values"`   // [rank][axis]
}

// Heatmap lays the ranking out as K rows and one column per axis.
func (r Ranking) Heatmap() Heatmap {
	h := Heatmap{
		Axes:     make([]int, len(r.Axes)),
		Features: make([][]string, r.K),
		Values:   make([][]float64, r.K),
	}
	for d := range r.Axes {
		h.Axes[d] = d + 1
	}
	for rank := 0; rank < r.K; rank++ {
		h.Features[rank] = make([]string, len(r.Axes))
		h.Values[rank] = make([]float64, len(r.Axes))
		for d, entries := range r.Axes {
			h.Features[rank][d] = entries[rank].Feature
			h.Values[rank][d] = entries[rank].Tau
		}
	}
	return h
}
