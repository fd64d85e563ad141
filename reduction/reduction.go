package reduction

import (
	"context"
	"math"
	"strconv"
	"strings"
	"time"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"

	"github.com/sartorproj/featurespace/errs"
)

// Components is the dimension of every projection.
const Components = 3

// Reductor projects a feature matrix to Components dimensions.
// FitTransform returns an n×3 matrix row-aligned with x.
type Reductor interface {
	Name() string
	FitTransform(ctx context.Context, x mat.Matrix) (*mat.Dense, error)
}

// ParseMatrix converts string records to a matrix. Any cell that is not a
// finite number fails with errs.ErrNonNumericInput.
func ParseMatrix(records [][]string) (*mat.Dense, error) {
	if len(records) == 0 || len(records[0]) == 0 {
		return nil, errs.InvalidParameter("empty matrix")
	}
	cols := len(records[0])
	m := mat.NewDense(len(records), cols, nil)
	for i, rec := range records {
		if len(rec) != cols {
			return nil, errs.InvalidParameter("row %d has %d cells, want %d", i, len(rec), cols)
		}
		for j, cell := range rec {
			v, err := strconv.ParseFloat(strings.TrimSpace(cell), 64)
			if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
				return nil, errs.NonNumeric("cell (%d, %d) is %q", i, j, cell)
			}
			m.Set(i, j, v)
		}
	}
	return m, nil
}

// validate rejects empty matrices and non-finite cells.
func validate(x mat.Matrix) (rows, cols int, err error) {
	rows, cols = x.Dims()
	if rows == 0 || cols == 0 {
		return 0, 0, errs.InvalidParameter("empty matrix")
	}
	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			if v := x.At(i, j); math.IsNaN(v) || math.IsInf(v, 0) {
				return 0, 0, errs.NonNumeric("cell (%d, %d) is %v", i, j, v)
			}
		}
	}
	return rows, cols, nil
}

// Standardize scales every column of x to zero mean and unit population
// variance. Zero-variance columns become 0.
func Standardize(x mat.Matrix) *mat.Dense {
	rows, cols := x.Dims()
	out := mat.DenseCopyOf(x)
	col := make([]float64, rows)
	for j := 0; j < cols; j++ {
		mat.Col(col, j, out)
		mean, variance := stat.PopMeanVariance(col, nil)
		std := math.Sqrt(variance)
		if std <= 1e-12*math.Max(1, math.Abs(mean)) {
			for i := range col {
				col[i] = 0
			}
		} else {
			for i, v := range col {
				col[i] = (v - mean) / std
			}
		}
		out.SetCol(j, col)
	}
	return out
}

// prepare validates and standardizes x.
func prepare(x mat.Matrix) (*mat.Dense, error) {
	if _, _, err := validate(x); err != nil {
		return nil, err
	}
	return Standardize(x), nil
}

// squaredDistances returns the pairwise squared Euclidean distances between
// the rows of x.
func squaredDistances(x *mat.Dense) [][]float64 {
	n, _ := x.Dims()
	d := make([][]float64, n)
	for i := range d {
		d[i] = make([]float64, n)
	}
	for i := 0; i < n; i++ {
		ri := x.RawRowView(i)
		for j := i + 1; j < n; j++ {
			rj := x.RawRowView(j)
			s := 0.0
			for k := range ri {
				diff := ri[k] - rj[k]
				s += diff * diff
			}
			d[i][j], d[j][i] = s, s
		}
	}
	return d
}

func timeSeed() uint64 {
	return uint64(time.Now().UnixNano())
}
