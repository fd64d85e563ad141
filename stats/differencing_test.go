package stats

import (
	"math"
	"testing"
)

func TestNDiffs(t *testing.T) {
	// Test with stationary data (should need 0 differences)
	n := 100
	stationary := make([]float64, n)
	for i := 0; i < n; i++ {
		stationary[i] = float64(i%10-5) + float64((i*7)%11-5)*0.5
	}

	d := NDiffs(stationary, 2, "kpss")
	t.Logf("Stationary series ndiffs: %d", d)
	if d > 1 {
		t.Errorf("Stationary series should need at most 1 difference, got %d", d)
	}

	// Random walk (non-stationary)
	randomWalk := make([]float64, n)
	for i := 1; i < n; i++ {
		randomWalk[i] = randomWalk[i-1] + float64((i*7)%11-5)*0.3
	}

	d = NDiffs(randomWalk, 2, "kpss")
	t.Logf("Random walk ndiffs: %d", d)
	if d < 1 {
		t.Logf("Random walk may need differencing, got d=%d", d)
	}

	trend := make([]float64, n)
	for i := 0; i < n; i++ {
		trend[i] = 100 + float64(i)*2 + float64((i*3)%7-3)*0.5
	}

	d = NDiffs(trend, 2, "kpss")
	if d < 1 {
		t.Errorf("Trending series should need at least one difference, got %d", d)
	}
}

func TestNSDiffs(t *testing.T) {
	n := 120
	seasonal := make([]float64, n)
	for i := 0; i < n; i++ {
		seasonal[i] = 100 + float64(i)*0.5 + 15*math.Sin(2*math.Pi*float64(i)/12)
	}

	sd := NSDiffs(seasonal, 12, 1)
	t.Logf("Seasonal series (period 12) nsdiffs: %d", sd)
	if sd != 1 {
		t.Errorf("Expected 1 seasonal difference for a strong cycle, got %d", sd)
	}

	if sd := NSDiffs(seasonal, 1, 1); sd != 0 {
		t.Errorf("Expected 0 seasonal differences for period 1, got %d", sd)
	}
}

func TestStrength(t *testing.T) {
	tests := []struct {
		name      string
		component []float64
		residual  []float64
		min, max  float64
	}{
		{
			name:      "constant sum",
			component: []float64{1, 2, 3, 4},
			residual:  []float64{3, 2, 1, 0},
			min:       0, max: 0,
		},
		{
			name:      "no residual",
			component: []float64{1, 5, 2, 8},
			residual:  []float64{0, 0, 0, 0},
			min:       1, max: 1,
		},
		{
			name:      "residual dominates",
			component: []float64{0, 0, 0, 0},
			residual:  []float64{1, -1, 1, -1},
			min:       0, max: 0,
		},
		{
			name:      "length mismatch",
			component: []float64{1, 2},
			residual:  []float64{1},
			min:       0, max: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Strength(tt.component, tt.residual)
			if got < tt.min-1e-12 || got > tt.max+1e-12 {
				t.Errorf("Strength = %f, expected in [%f, %f]", got, tt.min, tt.max)
			}
		})
	}
}

func TestStrengthIgnoresRoundingNoise(t *testing.T) {
	component := []float64{5, 5, 5, 5, 5}
	residual := []float64{1e-16, -1e-16, 0, 2e-16, 0}
	if s := Strength(component, residual); s != 0 {
		t.Errorf("Expected 0 for rounding-level variance, got %g", s)
	}
}
