package reduction

import (
	"context"
	"math"
	"math/rand/v2"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"github.com/sartorproj/featurespace/errs"
)

// UMAP defaults.
const (
	DefaultNNeighbors = 15
	DefaultEpochs     = 500
	LargeEpochs       = 200 // used above LargeDataset rows
	LargeDataset      = 10000

	// Curve parameters for min_dist 0.1 and spread 1.
	umapA = 1.577
	umapB = 0.895

	negativeSamples = 5
	gradientClip    = 4.0
	smoothKIter     = 64
	smoothKTol      = 1e-5
	minDistScale    = 1e-3
	initMaxCoord    = 10.0
)

// UMAP embeds standardized features with uniform manifold approximation
// and projection over an exact k-nearest-neighbor graph.
//
// Zero values select the defaults. NNeighbors is clamped to n-1.
type UMAP struct {
	NNeighbors  int // default 15, must be >= 2
	RandomState uint64
	Epochs      int // default 500, or 200 above 10 000 rows
}

// Name implements Reductor.
func (UMAP) Name() string { return "UMAP" }

type edge struct {
	head, tail int
	weight     float64
}

// FitTransform implements Reductor.
func (u UMAP) FitTransform(ctx context.Context, x mat.Matrix) (*mat.Dense, error) {
	k := u.NNeighbors
	switch {
	case k == 0:
		k = DefaultNNeighbors
	case k < 2:
		return nil, errs.InvalidParameter("n_neighbors must be at least 2, got %d", u.NNeighbors)
	}
	if u.Epochs < 0 {
		return nil, errs.InvalidParameter("epochs must be positive, got %d", u.Epochs)
	}

	scaled, err := prepare(x)
	if err != nil {
		return nil, err
	}
	n, _ := scaled.Dims()
	if n < 2 {
		return mat.NewDense(n, Components, nil), nil
	}
	k = min(k, n-1)
	epochs := u.Epochs
	if epochs == 0 {
		epochs = DefaultEpochs
		if n > LargeDataset {
			epochs = LargeEpochs
		}
	}
	rng := rand.New(rand.NewPCG(u.RandomState, u.RandomState^0x9e3779b97f4a7c15))

	edges := fuzzyGraph(scaled, k)
	y, err := initialEmbedding(scaled, rng)
	if err != nil {
		return nil, err
	}
	if err := optimizeLayout(ctx, y, edges, epochs, rng); err != nil {
		return nil, err
	}

	out := mat.NewDense(n, Components, nil)
	for i := range y {
		out.SetRow(i, y[i][:])
	}
	return out, nil
}

// fuzzyGraph builds the symmetric fuzzy simplicial set of the k nearest
// neighbors of every row.
func fuzzyGraph(x *mat.Dense, k int) []edge {
	n, _ := x.Dims()
	sq := squaredDistances(x)
	target := math.Log2(float64(k))

	weights := make([]map[int]float64, n)
	order := make([]int, n)
	for i := 0; i < n; i++ {
		for j := range order {
			order[j] = j
		}
		sort.SliceStable(order, func(a, b int) bool { return sq[i][order[a]] < sq[i][order[b]] })

		neighbors := make([]int, 0, k)
		dists := make([]float64, 0, k)
		for _, j := range order {
			if j == i {
				continue
			}
			neighbors = append(neighbors, j)
			dists = append(dists, math.Sqrt(sq[i][j]))
			if len(neighbors) == k {
				break
			}
		}

		rho, sigma := smoothKNN(dists, target)
		weights[i] = make(map[int]float64, k)
		for m, j := range neighbors {
			weights[i][j] = math.Exp(-math.Max(0, dists[m]-rho) / sigma)
		}
	}

	// Fuzzy union: w = a + b - a*b.
	var edges []edge
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			a, b := weights[i][j], weights[j][i]
			if w := a + b - a*b; w > 0 {
				edges = append(edges, edge{head: i, tail: j, weight: w})
			}
		}
	}
	return edges
}

// smoothKNN returns the distance to the nearest neighbor and the bandwidth
// for which the neighbor memberships sum to target.
func smoothKNN(dists []float64, target float64) (rho, sigma float64) {
	for _, d := range dists {
		if d > 0 {
			rho = d
			break
		}
	}

	lo, hi, mid := 0.0, math.Inf(1), 1.0
	for step := 0; step < smoothKIter; step++ {
		sum := 0.0
		for _, d := range dists {
			sum += math.Exp(-math.Max(0, d-rho) / mid)
		}
		if math.Abs(sum-target) < smoothKTol {
			break
		}
		if sum > target {
			hi = mid
			mid = (lo + hi) / 2
		} else {
			lo = mid
			if math.IsInf(hi, 1) {
				mid *= 2
			} else {
				mid = (lo + hi) / 2
			}
		}
	}

	mid = math.Max(mid, minDistScale*floats.Sum(dists)/float64(len(dists)))
	if mid <= 0 {
		mid = minDistScale
	}
	return rho, mid
}

// initialEmbedding places the rows on their principal scores rescaled to
// [0, 10], with a little noise to separate duplicates.
func initialEmbedding(x *mat.Dense, rng *rand.Rand) ([][Components]float64, error) {
	n, _ := x.Dims()
	scores, err := principalScores(x)
	if err != nil {
		return nil, err
	}

	y := make([][Components]float64, n)
	col := make([]float64, n)
	for d := 0; d < Components; d++ {
		mat.Col(col, d, scores)
		lo, hi := floats.Min(col), floats.Max(col)
		for i, v := range col {
			pos := initMaxCoord / 2
			if hi > lo {
				pos = initMaxCoord * (v - lo) / (hi - lo)
			}
			y[i][d] = pos + 1e-4*rng.NormFloat64()
		}
	}
	return y, nil
}

// optimizeLayout runs stochastic gradient descent on the cross entropy
// between the graph and the embedding.
func optimizeLayout(ctx context.Context, y [][Components]float64, edges []edge, epochs int, rng *rand.Rand) error {
	if len(edges) == 0 {
		return nil
	}
	n := len(y)
	maxWeight := 0.0
	for _, e := range edges {
		maxWeight = math.Max(maxWeight, e.weight)
	}

	// Edges are sampled in proportion to their weight; the weakest that
	// would never be sampled are dropped.
	perSample := make([]float64, 0, len(edges))
	var kept []edge
	for _, e := range edges {
		if e.weight < maxWeight/float64(epochs) {
			continue
		}
		kept = append(kept, e)
		perSample = append(perSample, maxWeight/e.weight)
	}
	next := append([]float64(nil), perSample...)

	for epoch := 0; epoch < epochs; epoch++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		alpha := 1 - float64(epoch)/float64(epochs)

		for idx, e := range kept {
			if next[idx] > float64(epoch) {
				continue
			}
			next[idx] += perSample[idx]
			attract(&y[e.head], &y[e.tail], alpha)

			for s := 0; s < negativeSamples; s++ {
				other := rng.IntN(n)
				if other == e.head {
					continue
				}
				repel(&y[e.head], &y[other], alpha)
			}
		}
	}
	return nil
}

func attract(a, b *[Components]float64, alpha float64) {
	d := sqDist(a, b)
	if d <= 0 {
		return
	}
	coeff := -2 * umapA * umapB * math.Pow(d, umapB-1) / (1 + umapA*math.Pow(d, umapB))
	for k := 0; k < Components; k++ {
		g := clip(coeff * (a[k] - b[k]))
		a[k] += g * alpha
		b[k] -= g * alpha
	}
}

func repel(a, b *[Components]float64, alpha float64) {
	d := sqDist(a, b)
	coeff := 0.0
	if d > 0 {
		coeff = 2 * umapB / ((0.001 + d) * (1 + umapA*math.Pow(d, umapB)))
	}
	for k := 0; k < Components; k++ {
		g := gradientClip
		if coeff > 0 {
			g = clip(coeff * (a[k] - b[k]))
		}
		a[k] += g * alpha
	}
}

func sqDist(a, b *[Components]float64) float64 {
	s := 0.0
	for k := 0; k < Components; k++ {
		diff := a[k] - b[k]
		s += diff * diff
	}
	return s
}

func clip(v float64) float64 {
	return math.Max(-gradientClip, math.Min(gradientClip, v))
}
