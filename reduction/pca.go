package reduction

import (
	"context"
	"errors"
	"math"

	"gonum.org/v1/gonum/mat"
)

// PCA projects standardized features on their first three principal
// components. The result is deterministic: the largest-magnitude loading of
// every component is positive. Components beyond min(rows, columns) are zero.
type PCA struct{}

// Name implements Reductor.
func (PCA) Name() string { return "PCA" }

// FitTransform implements Reductor.
func (PCA) FitTransform(ctx context.Context, x mat.Matrix) (*mat.Dense, error) {
	scaled, err := prepare(x)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return principalScores(scaled)
}

// principalScores returns the scores of x on its first Components principal
// axes. x must already be centered.
func principalScores(x *mat.Dense) (*mat.Dense, error) {
	n, p := x.Dims()
	out := mat.NewDense(n, Components, nil)

	var svd mat.SVD
	if ok := svd.Factorize(x, mat.SVDThin); !ok {
		return nil, errors.New("unable to factorize feature matrix")
	}
	var v mat.Dense
	svd.VTo(&v)

	k := min(Components, n, p)
	loadings := v.Slice(0, p, 0, k).(*mat.Dense)
	flipSigns(loadings)

	var scores mat.Dense
	scores.Mul(x, loadings)
	out.Slice(0, n, 0, k).(*mat.Dense).Copy(&scores)
	return out, nil
}

// flipSigns negates every column whose largest-magnitude entry is negative.
func flipSigns(v *mat.Dense) {
	rows, cols := v.Dims()
	for j := 0; j < cols; j++ {
		best := 0
		for i := 1; i < rows; i++ {
			if math.Abs(v.At(i, j)) > math.Abs(v.At(best, j)) {
				best = i
			}
		}
		if v.At(best, j) < 0 {
			for i := 0; i < rows; i++ {
				v.Set(i, j, -v.At(i, j))
			}
		}
	}
}
