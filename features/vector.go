package features

import (
	"gonum.org/v1/gonum/mat"

	"github.com/sartorproj/featurespace/errs"
)

// Vector maps feature names to values for one series.
type Vector map[string]float64

// Matrix is the feature table of a collection: one row per series in
// first-seen order, one column per feature in extractor order.
type Matrix struct {
	Names   []string    `json:"names"`
	Columns []string    `json:"columns"`
	Values  [][]float64 `json:"values"` // [row][column]
}

// NewMatrix validates the shape of values against names and columns.
func NewMatrix(names, columns []string, values [][]float64) (*Matrix, error) {
	if len(values) != len(names) {
		return nil, errs.InvalidParameter("%d rows for %d series names", len(values), len(names))
	}
	for i, row := range values {
		if len(row) != len(columns) {
			return nil, errs.InvalidParameter("row %d has %d values, want %d", i, len(row), len(columns))
		}
	}
	return &Matrix{Names: names, Columns: columns, Values: values}, nil
}

// Rows returns the number of series.
func (m *Matrix) Rows() int {
	return len(m.Values)
}

// Dense copies the values into a gonum matrix. It returns nil for an empty
// matrix.
func (m *Matrix) Dense() *mat.Dense {
	if len(m.Values) == 0 || len(m.Columns) == 0 {
		return nil
	}
	d := mat.NewDense(len(m.Values), len(m.Columns), nil)
	for i, row := range m.Values {
		d.SetRow(i, row)
	}
	return d
}

// Column returns a copy of the named column, or nil if it does not exist.
func (m *Matrix) Column(name string) []float64 {
	j := -1
	for i, c := range m.Columns {
		if c == name {
			j = i
			break
		}
	}
	if j < 0 {
		return nil
	}
	out := make([]float64, len(m.Values))
	for i, row := range m.Values {
		out[i] = row[j]
	}
	return out
}

// Vector returns row i as a Vector.
func (m *Matrix) Vector(i int) Vector {
	v := make(Vector, len(m.Columns))
	for j, c := range m.Columns {
		v[c] = m.Values[i][j]
	}
	return v
}
