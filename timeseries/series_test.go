package timeseries

import (
	"math"
	"testing"
	"time"
)

func TestNew(t *testing.T) {
	values := []float64{1, 2, 3, 4, 5}
	s := New(values)

	if s.Len() != 5 {
		t.Errorf("Expected length 5, got %d", s.Len())
	}

	for i, v := range s.Values {
		if v != values[i] {
			t.Errorf("Expected value %f at index %d, got %f", values[i], i, v)
		}
		if s.Index[i].IsTime || s.Index[i].Step != int64(i) {
			t.Errorf("Expected step index %d, got %v", i, s.Index[i])
		}
	}
}

func TestNewWithIndexLengthMismatch(t *testing.T) {
	_, err := NewWithIndex([]Index{StepIndex(0)}, []float64{1, 2})
	if err == nil {
		t.Fatal("Expected error for mismatched lengths")
	}
}

func TestMean(t *testing.T) {
	tests := []struct {
		name     string
		values   []float64
		expected float64
	}{
		{"simple", []float64{1, 2, 3, 4, 5}, 3.0},
		{"single", []float64{5}, 5.0},
		{"negative", []float64{-1, -2, -3}, -2.0},
		{"mixed", []float64{-1, 0, 1}, 0.0},
		{"empty", []float64{}, 0.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := New(tt.values)
			result := s.Mean()
			if math.Abs(result-tt.expected) > 1e-10 {
				t.Errorf("Expected mean %f, got %f", tt.expected, result)
			}
		})
	}
}

func TestVariance(t *testing.T) {
	s := New([]float64{2, 4, 4, 4, 5, 5, 7, 9})
	expected := 4.571428571428571

	result := s.Variance()
	if math.Abs(result-expected) > 1e-10 {
		t.Errorf("Expected variance %f, got %f", expected, result)
	}

	if New([]float64{3}).Variance() != 0 {
		t.Error("Expected zero variance for a single observation")
	}
}

func TestStd(t *testing.T) {
	s := New([]float64{2, 4, 4, 4, 5, 5, 7, 9})
	expected := math.Sqrt(4.571428571428571)

	result := s.Std()
	if math.Abs(result-expected) > 1e-10 {
		t.Errorf("Expected std %f, got %f", expected, result)
	}
}

func TestMedian(t *testing.T) {
	tests := []struct {
		name     string
		values   []float64
		expected float64
	}{
		{"odd", []float64{3, 1, 2}, 2},
		{"even", []float64{4, 1, 3, 2}, 2.5},
		{"single", []float64{7}, 7},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := New(tt.values).Median(); got != tt.expected {
				t.Errorf("Expected median %f, got %f", tt.expected, got)
			}
		})
	}

	if !math.IsNaN(New(nil).Median()) {
		t.Error("Expected NaN median for empty series")
	}
}

func TestDiff(t *testing.T) {
	s := New([]float64{1, 3, 6, 10, 15})
	diff := s.Diff()

	expected := []float64{2, 3, 4, 5}
	if diff.Len() != len(expected) {
		t.Fatalf("Expected length %d, got %d", len(expected), diff.Len())
	}
	for i, v := range expected {
		if diff.Values[i] != v {
			t.Errorf("Expected diff %f at %d, got %f", v, i, diff.Values[i])
		}
	}
	if diff.Index[0].Step != 1 {
		t.Errorf("Expected diff to start at step 1, got %v", diff.Index[0])
	}

	second := s.Diff().Diff()
	for i, v := range second.Values {
		if v != 1 {
			t.Errorf("Expected second difference 1 at %d, got %f", i, v)
		}
	}

	if s.DiffN(10).Len() != 0 {
		t.Error("Expected empty series when lag exceeds length")
	}
}

func TestSlice(t *testing.T) {
	s := New([]float64{1, 2, 3, 4, 5})

	sub := s.Slice(1, 4)
	if sub.Len() != 3 || sub.Values[0] != 2 || sub.Values[2] != 4 {
		t.Errorf("Unexpected slice %v", sub.Values)
	}

	if s.Slice(4, 2).Len() != 0 {
		t.Error("Expected empty slice for inverted bounds")
	}
}

func TestCopyIsDeep(t *testing.T) {
	s := New([]float64{1, 2, 3})
	c := s.Copy()
	c.Values[0] = 100

	if s.Values[0] != 1 {
		t.Error("Copy shares value storage with the original")
	}
}

func TestSorted(t *testing.T) {
	day := func(d int) Index {
		return TimeIndex(time.Date(2023, 1, d, 0, 0, 0, 0, time.UTC))
	}
	s, err := NewWithIndex([]Index{day(3), day(1), day(2)}, []float64{30, 10, 20})
	if err != nil {
		t.Fatal(err)
	}

	sorted := s.Sorted()
	expected := []float64{10, 20, 30}
	for i, v := range expected {
		if sorted.Values[i] != v {
			t.Errorf("Expected %f at %d, got %f", v, i, sorted.Values[i])
		}
	}
	if s.Values[0] != 30 {
		t.Error("Sorted modified the receiver")
	}
}

func TestParseIndex(t *testing.T) {
	tests := []struct {
		in     string
		isTime bool
		str    string
	}{
		{"12", false, "12"},
		{"3.0", false, "3"},
		{"2023-01-31", true, "2023-01-31"},
		{"\"2023-02-28\"", true, "2023-02-28"},
		{"2023-01-31 12:30:00", true, "2023-01-31T12:30:00Z"},
		{"01/15/2023", true, "2023-01-15"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			idx, err := ParseIndex(tt.in, "")
			if err != nil {
				t.Fatalf("ParseIndex(%q): %v", tt.in, err)
			}
			if idx.IsTime != tt.isTime {
				t.Errorf("Expected IsTime=%v, got %v", tt.isTime, idx.IsTime)
			}
			if idx.String() != tt.str {
				t.Errorf("Expected %q, got %q", tt.str, idx.String())
			}
		})
	}

	if _, err := ParseIndex("not a date", ""); err == nil {
		t.Error("Expected error for unparseable index")
	}
}

func TestIndexOrdering(t *testing.T) {
	a := StepIndex(1)
	b := StepIndex(2)
	ts := TimeIndex(time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC))

	if !a.Before(b) || b.Before(a) {
		t.Error("Expected step 1 before step 2")
	}
	if !b.Before(ts) || ts.Before(b) {
		t.Error("Expected steps to sort before timestamps")
	}
	if !a.Equal(StepIndex(1)) || a.Equal(ts) {
		t.Error("Unexpected equality result")
	}
}

func TestIndexJSON(t *testing.T) {
	for _, idx := range []Index{
		StepIndex(42),
		TimeIndex(time.Date(2023, 3, 1, 0, 0, 0, 0, time.UTC)),
	} {
		data, err := idx.MarshalJSON()
		if err != nil {
			t.Fatal(err)
		}
		var back Index
		if err := back.UnmarshalJSON(data); err != nil {
			t.Fatalf("UnmarshalJSON(%s): %v", data, err)
		}
		if !back.Equal(idx) {
			t.Errorf("Expected %v after JSON round trip, got %v", idx, back)
		}
	}
}
