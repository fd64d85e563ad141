package timeseries

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Description holds summary statistics of a series.
type Description struct {
	Count    int     `json:"count"`
	Mean     float64 `json:"mean"`
	Std      float64 `json:"std"`
	Min      float64 `json:"min"`
	Q25      float64 `json:"25%"`
	Median   float64 `json:"50%"`
	Q75      float64 `json:"75%"`
	Max      float64 `json:"max"`
	Skew     float64 `json:"skew"`
	Kurtosis float64 `json:"kurt"`
}

// Describe computes count, mean, standard deviation, extrema, quartiles,
// skewness and excess kurtosis. Statistics that are undefined for the
// sample size are reported as 0.
func Describe(s *Series) Description {
	d := Description{Count: s.Len()}
	if d.Count == 0 {
		return d
	}

	sorted := make([]float64, d.Count)
	copy(sorted, s.Values)
	sort.Float64s(sorted)

	d.Mean = stat.Mean(sorted, nil)
	d.Min = floats.Min(sorted)
	d.Max = floats.Max(sorted)
	d.Q25 = stat.Quantile(0.25, stat.LinInterp, sorted, nil)
	d.Median = s.Median()
	d.Q75 = stat.Quantile(0.75, stat.LinInterp, sorted, nil)
	if d.Count > 1 {
		d.Std = stat.StdDev(sorted, nil)
	}
	if d.Count > 2 && d.Std > 0 {
		d.Skew = stat.Skew(sorted, nil)
	}
	if d.Count > 3 && d.Std > 0 {
		d.Kurtosis = stat.ExKurtosis(sorted, nil)
	}
	for _, v := range []*float64{&d.Skew, &d.Kurtosis} {
		if math.IsNaN(*v) || math.IsInf(*v, 0) {
			*v = 0
		}
	}
	return d
}
