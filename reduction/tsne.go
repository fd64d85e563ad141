package reduction

import (
	"context"
	"math"
	"math/rand/v2"

	"gonum.org/v1/gonum/mat"

	"github.com/sartorproj/featurespace/errs"
)

// t-SNE defaults.
const (
	DefaultPerplexity     = 30.0
	DefaultTSNEIterations = 1000

	exaggeration     = 12.0
	exaggerationIter = 250
	initialMomentum  = 0.5
	finalMomentum    = 0.8
	minGain          = 0.01
)

// TSNE embeds standardized features with exact t-distributed stochastic
// neighbor embedding.
//
// Zero values select the defaults. Perplexity is clamped to (n-1)/3 for
// small collections. A nil Seed draws a time-based seed, so repeated runs
// differ.
type TSNE struct {
	Perplexity float64 // default 30, must be > 0
	Seed       *uint64
	Iterations int // default 1000
}

// Name implements Reductor.
func (TSNE) Name() string { return "TSNE" }

// FitTransform implements Reductor.
func (t TSNE) FitTransform(ctx context.Context, x mat.Matrix) (*mat.Dense, error) {
	perplexity := t.Perplexity
	switch {
	case perplexity == 0:
		perplexity = DefaultPerplexity
	case perplexity < 0 || math.IsNaN(perplexity):
		return nil, errs.InvalidParameter("perplexity must be positive, got %v", t.Perplexity)
	}
	iterations := t.Iterations
	switch {
	case iterations == 0:
		iterations = DefaultTSNEIterations
	case iterations < 0:
		return nil, errs.InvalidParameter("iterations must be positive, got %d", t.Iterations)
	}

	scaled, err := prepare(x)
	if err != nil {
		return nil, err
	}
	n, _ := scaled.Dims()
	out := mat.NewDense(n, Components, nil)
	if n < 2 {
		return out, nil
	}
	perplexity = math.Min(perplexity, float64(n-1)/3)

	seed := timeSeed()
	if t.Seed != nil {
		seed = *t.Seed
	}
	rng := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))

	p := jointProbabilities(squaredDistances(scaled), perplexity)
	y := make([][Components]float64, n)
	for i := range y {
		for d := range y[i] {
			y[i][d] = 1e-4 * rng.NormFloat64()
		}
	}

	learningRate := math.Max(float64(n)/exaggeration/4, 50)
	update := make([][Components]float64, n)
	gains := make([][Components]float64, n)
	for i := range gains {
		gains[i] = [Components]float64{1, 1, 1}
	}
	grad := make([][Components]float64, n)
	num := make([][]float64, n)
	for i := range num {
		num[i] = make([]float64, n)
	}

	for it := 0; it < iterations; it++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		exag, momentum := 1.0, finalMomentum
		if it < exaggerationIter {
			exag, momentum = exaggeration, initialMomentum
		}

		// Student-t affinities in the embedding.
		z := 0.0
		for i := 0; i < n; i++ {
			for j := i + 1; j < n; j++ {
				d := 0.0
				for k := 0; k < Components; k++ {
					diff := y[i][k] - y[j][k]
					d += diff * diff
				}
				q := 1 / (1 + d)
				num[i][j], num[j][i] = q, q
				z += 2 * q
			}
		}

		for i := 0; i < n; i++ {
			grad[i] = [Components]float64{}
			for j := 0; j < n; j++ {
				if i == j {
					continue
				}
				mult := 4 * (exag*p[i][j] - num[i][j]/z) * num[i][j]
				for k := 0; k < Components; k++ {
					grad[i][k] += mult * (y[i][k] - y[j][k])
				}
			}
		}

		var mean [Components]float64
		for i := 0; i < n; i++ {
			for k := 0; k < Components; k++ {
				if (grad[i][k] > 0) != (update[i][k] > 0) {
					gains[i][k] += 0.2
				} else {
					gains[i][k] *= 0.8
				}
				gains[i][k] = math.Max(gains[i][k], minGain)
				update[i][k] = momentum*update[i][k] - learningRate*gains[i][k]*grad[i][k]
				y[i][k] += update[i][k]
				mean[k] += y[i][k]
			}
		}
		for i := 0; i < n; i++ {
			for k := 0; k < Components; k++ {
				y[i][k] -= mean[k] / float64(n)
			}
		}
	}

	for i := 0; i < n; i++ {
		out.SetRow(i, y[i][:])
	}
	return out, nil
}

// jointProbabilities calibrates a Gaussian per row of the squared distance
// matrix to the target perplexity and symmetrizes the conditionals.
func jointProbabilities(dist [][]float64, perplexity float64) [][]float64 {
	n := len(dist)
	target := math.Log(perplexity)
	cond := make([][]float64, n)

	for i := 0; i < n; i++ {
		row := make([]float64, n)
		beta, lo, hi := 1.0, math.Inf(-1), math.Inf(1)
		for step := 0; step < 100; step++ {
			sum, weighted := 0.0, 0.0
			for j := 0; j < n; j++ {
				if j == i {
					row[j] = 0
					continue
				}
				row[j] = math.Exp(-dist[i][j] * beta)
				sum += row[j]
				weighted += dist[i][j] * row[j]
			}
			if sum == 0 {
				sum = 1e-300
			}
			entropy := math.Log(sum) + beta*weighted/sum
			for j := range row {
				row[j] /= sum
			}

			diff := entropy - target
			if math.Abs(diff) < 1e-5 {
				break
			}
			if diff > 0 {
				lo = beta
				if math.IsInf(hi, 1) {
					beta *= 2
				} else {
					beta = (beta + hi) / 2
				}
			} else {
				hi = beta
				if math.IsInf(lo, -1) {
					beta /= 2
				} else {
					beta = (beta + lo) / 2
				}
			}
		}
		cond[i] = row
	}

	p := make([][]float64, n)
	for i := range p {
		p[i] = make([]float64, n)
	}
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			v := math.Max((cond[i][j]+cond[j][i])/(2*float64(n)), 1e-12)
			p[i][j], p[j][i] = v, v
		}
	}
	return p
}
