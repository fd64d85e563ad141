// Package timeseries provides core time series data structures and operations.
package timeseries

import (
	"errors"
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"
)

// Series represents a named time series with indices and values.
type Series struct {
	Name   string
	Index  []Index
	Values []float64
}

// New creates a new time series from values indexed 0..n-1.
func New(values []float64) *Series {
	index := make([]Index, len(values))
	for i := range index {
		index[i] = StepIndex(int64(i))
	}
	return &Series{
		Index:  index,
		Values: values,
	}
}

// NewWithIndex creates a time series with explicit indices.
func NewWithIndex(index []Index, values []float64) (*Series, error) {
	if len(index) != len(values) {
		return nil, errors.New("index and values must have the same length")
	}
	return &Series{
		Index:  index,
		Values: values,
	}, nil
}

// Len returns the length of the series.
func (s *Series) Len() int {
	return len(s.Values)
}

// Mean calculates the arithmetic mean of the series.
func (s *Series) Mean() float64 {
	if len(s.Values) == 0 {
		return 0
	}
	return stat.Mean(s.Values, nil)
}

// Variance calculates the sample variance of the series.
func (s *Series) Variance() float64 {
	if len(s.Values) < 2 {
		return 0
	}
	return stat.Variance(s.Values, nil)
}

// Std calculates the sample standard deviation of the series.
func (s *Series) Std() float64 {
	return math.Sqrt(s.Variance())
}

// Median returns the median value of the series.
func (s *Series) Median() float64 {
	if len(s.Values) == 0 {
		return math.NaN()
	}
	sorted := make([]float64, len(s.Values))
	copy(sorted, s.Values)
	sort.Float64s(sorted)

	n := len(sorted)
	if n%2 == 0 {
		return (sorted[n/2-1] + sorted[n/2]) / 2
	}
	return sorted[n/2]
}

// Diff calculates the first difference of the series (d=1).
func (s *Series) Diff() *Series {
	return s.DiffN(1)
}

// DiffN calculates the lag-n difference of the series.
func (s *Series) DiffN(n int) *Series {
	if n <= 0 || len(s.Values) <= n {
		return &Series{Name: s.Name, Values: []float64{}}
	}

	result := make([]float64, len(s.Values)-n)
	for i := n; i < len(s.Values); i++ {
		result[i-n] = s.Values[i] - s.Values[i-n]
	}

	index := make([]Index, len(result))
	if len(s.Index) > n {
		copy(index, s.Index[n:])
	}

	return &Series{
		Name:   s.Name + "_diff",
		Index:  index,
		Values: result,
	}
}

// Slice returns a slice of the series from start to end (exclusive).
func (s *Series) Slice(start, end int) *Series {
	if start < 0 {
		start = 0
	}
	if end > len(s.Values) {
		end = len(s.Values)
	}
	if start >= end {
		return &Series{Name: s.Name, Values: []float64{}}
	}

	values := make([]float64, end-start)
	copy(values, s.Values[start:end])

	index := make([]Index, len(values))
	if len(s.Index) >= end {
		copy(index, s.Index[start:end])
	}

	return &Series{
		Name:   s.Name,
		Index:  index,
		Values: values,
	}
}

// Copy creates a deep copy of the series.
func (s *Series) Copy() *Series {
	values := make([]float64, len(s.Values))
	copy(values, s.Values)

	index := make([]Index, len(s.Index))
	copy(index, s.Index)

	return &Series{
		Name:   s.Name,
		Index:  index,
		Values: values,
	}
}

// Sorted returns a copy ordered by index. Equal indices keep their
// original relative order.
func (s *Series) Sorted() *Series {
	out := s.Copy()
	if len(out.Index) != len(out.Values) {
		return out
	}
	order := make([]int, len(out.Values))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return s.Index[order[a]].Before(s.Index[order[b]])
	})
	for i, j := range order {
		out.Index[i] = s.Index[j]
		out.Values[i] = s.Values[j]
	}
	return out
}
