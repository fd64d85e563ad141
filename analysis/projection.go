package analysis

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"gonum.org/v1/gonum/mat"

	"github.com/sartorproj/featurespace/correlation"
	"github.com/sartorproj/featurespace/errs"
	"github.com/sartorproj/featurespace/features"
	"github.com/sartorproj/featurespace/reduction"
)

// Algorithm names a dimension reduction method.
type Algorithm string

const (
	PCA  Algorithm = "PCA"
	TSNE Algorithm = "TSNE"
	UMAP Algorithm = "UMAP"
)

// Algorithms lists every supported method.
var Algorithms = []Algorithm{PCA, TSNE, UMAP}

// ParseAlgorithm accepts PCA, TSNE, T-SNE and UMAP in any case.
func ParseAlgorithm(s string) (Algorithm, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "PCA":
		return PCA, nil
	case "TSNE", "T-SNE":
		return TSNE, nil
	case "UMAP":
		return UMAP, nil
	}
	return "", errs.InvalidParameter("unknown algorithm %q", s)
}

// ParseAlgorithms parses a comma-separated list. An empty list selects
// every algorithm.
func ParseAlgorithms(s string) ([]Algorithm, error) {
	if strings.TrimSpace(s) == "" {
		return slices.Clone(Algorithms), nil
	}
	var out []Algorithm
	for _, part := range strings.Split(s, ",") {
		a, err := ParseAlgorithm(part)
		if err != nil {
			return nil, err
		}
		if !slices.Contains(out, a) {
			out = append(out, a)
		}
	}
	return out, nil
}

// Params holds the hyperparameters of every algorithm. Zero values select
// the defaults of the reduction package.
type Params struct {
	Perplexity  float64 `json:"perplexity,omitempty"`
	Seed        *uint64 `json:"seed,omitempty"`
	Iterations  int     `json:"iterations,omitempty"`
	NNeighbors  int     `json:"n_neighbors,omitempty"`
	RandomState uint64  `json:"random_state,omitempty"`
	Epochs      int     `json:"epochs,omitempty"`
}

// Reductor returns the reduction.Reductor for a with p applied.
func (a Algorithm) Reductor(p Params) (reduction.Reductor, error) {
	switch a {
	case PCA:
		return reduction.PCA{}, nil
	case TSNE:
		return reduction.TSNE{Perplexity: p.Perplexity, Seed: p.Seed, Iterations: p.Iterations}, nil
	case UMAP:
		return reduction.UMAP{NNeighbors: p.NNeighbors, RandomState: p.RandomState, Epochs: p.Epochs}, nil
	}
	return nil, errs.InvalidParameter("unknown algorithm %q", string(a))
}

// Style marks how a projected series is drawn.
type Style string

const (
	Selected Style = "Selected"
	Added    Style = "Added"
	Base     Style = "Base"
)

// Label returns Selected for a name in selected, Added for a name in added
// and Base otherwise.
func Label(name string, selected, added []string) Style {
	switch {
	case slices.Contains(selected, name):
		return Selected
	case slices.Contains(added, name):
		return Added
	}
	return Base
}

// Row is one projected series.
type Row struct {
	Name  string  `json:"name"`
	X     float64 `json:"x"`
	Y     float64 `json:"y"`
	Z     float64 `json:"z"`
	Style Style   `json:"style"`
}

// Projection is a feature matrix reduced to three axes.
type Projection struct {
	Algorithm Algorithm  `json:"algorithm"`
	Rows      []Row      `json:"rows"`
	Coords    *mat.Dense `json:"-"`
}

// Label sets the style of every row.
func (p *Projection) Label(selected, added []string) {
	for i := range p.Rows {
		p.Rows[i].Style = Label(p.Rows[i].Name, selected, added)
	}
}

// Reduce projects m with algorithm a.
func Reduce(ctx context.Context, m *features.Matrix, a Algorithm, p Params) (*Projection, error) {
	r, err := a.Reductor(p)
	if err != nil {
		return nil, err
	}
	x := m.Dense()
	if x == nil {
		return nil, errs.InvalidParameter("empty feature matrix")
	}
	coords, err := r.FitTransform(ctx, x)
	if err != nil {
		return nil, fmt.Errorf("%s reduction: %w", r.Name(), err)
	}

	proj := &Projection{Algorithm: a, Rows: make([]Row, m.Rows()), Coords: coords}
	for i, name := range m.Names {
		proj.Rows[i] = Row{
			Name:  name,
			X:     coords.At(i, 0),
			Y:     coords.At(i, 1),
			Z:     coords.At(i, 2),
			Style: Base,
		}
	}
	return proj, nil
}

// Correlate ranks the features of m by their Kendall τ with each axis of p.
func Correlate(p *Projection, m *features.Matrix, k int) (correlation.Ranking, error) {
	if p == nil {
		return correlation.Ranking{}, errs.InvalidParameter("missing projection")
	}
	return correlation.TopK(p.Coords, m, k)
}
