package timeseries

import (
	"math"
	"testing"
)

func TestDescribe(t *testing.T) {
	s := New([]float64{1, 2, 3, 4, 5, 6, 7, 8, 9, 100})
	d := Describe(s)

	if d.Count != 10 {
		t.Errorf("Expected count 10, got %d", d.Count)
	}
	if math.Abs(d.Mean-14.5) > 1e-10 {
		t.Errorf("Expected mean 14.5, got %f", d.Mean)
	}
	if d.Min != 1 || d.Max != 100 {
		t.Errorf("Expected min 1 / max 100, got %f / %f", d.Min, d.Max)
	}
	if d.Median != 5.5 {
		t.Errorf("Expected median 5.5, got %f", d.Median)
	}
	if !(d.Q25 <= d.Median && d.Median <= d.Q75) {
		t.Errorf("Quartiles out of order: %f %f %f", d.Q25, d.Median, d.Q75)
	}
	if d.Skew <= 0 {
		t.Errorf("Expected positive skew for a right outlier, got %f", d.Skew)
	}
	if d.Kurtosis <= 0 {
		t.Errorf("Expected positive excess kurtosis, got %f", d.Kurtosis)
	}
}

func TestDescribeDegenerate(t *testing.T) {
	if d := Describe(New(nil)); d.Count != 0 || d.Mean != 0 {
		t.Errorf("Expected zero description for empty series, got %+v", d)
	}

	d := Describe(New([]float64{4, 4, 4, 4, 4}))
	if d.Std != 0 || d.Skew != 0 || d.Kurtosis != 0 {
		t.Errorf("Expected zero spread statistics for constant series, got %+v", d)
	}
}
