package features

import (
	"math"
	"testing"

	"github.com/sartorproj/featurespace/stats"
)

func extract(t *testing.T, values []float64, period int) Vector {
	t.Helper()
	in := &Input{Values: values, Period: period}
	if dec, err := stats.STL(values, period, nil); err == nil {
		in.Decomposition = dec
	} else {
		t.Logf("decomposition failed: %v", err)
	}
	return Extract(in, Extractors(), 0)
}

func TestConstantSeries(t *testing.T) {
	values := make([]float64, 50)
	for i := range values {
		values[i] = 5
	}
	v := extract(t, values, 1)

	for _, name := range []string{TrendStrength, SeasonalStrength, Entropy} {
		if v[name] != 0 {
			t.Errorf("%s = %g, want 0", name, v[name])
		}
	}
	for _, name := range []string{Spikiness, Stability, Lumpiness} {
		if math.Abs(v[name]) > 1e-9 {
			t.Errorf("%s = %g, want 0", name, v[name])
		}
	}
	if math.Abs(v[Linearity]) > 1e-9 || math.Abs(v[Curvature]) > 1e-9 {
		t.Errorf("Expected flat fit, got linearity=%g curvature=%g", v[Linearity], v[Curvature])
	}
	if v[Length] != 50 {
		t.Errorf("length = %g, want 50", v[Length])
	}
}

func TestLinearSeries(t *testing.T) {
	values := make([]float64, 100)
	for i := range values {
		values[i] = float64(i)
	}
	v := extract(t, values, 1)

	if v[TrendStrength] <= 0.95 {
		t.Errorf("trend_strength = %g, want > 0.95", v[TrendStrength])
	}
	if math.Abs(v[Linearity]-1) > 1e-6 {
		t.Errorf("linearity = %g, want 1", v[Linearity])
	}
	if math.Abs(v[Curvature]) > 1e-9 {
		t.Errorf("curvature = %g, want 0", v[Curvature])
	}
}

func TestCurvatureSign(t *testing.T) {
	up := make([]float64, 50)
	down := make([]float64, 50)
	for i := range up {
		up[i] = float64(i * i)
		down[i] = -up[i]
	}
	if c := extract(t, up, 1)[Curvature]; math.Abs(c-1) > 1e-6 {
		t.Errorf("curvature of t² = %g, want 1", c)
	}
	if c := extract(t, down, 1)[Curvature]; c >= 0 {
		t.Errorf("curvature of -t² = %g, want < 0", c)
	}
}

func TestSeasonalSine(t *testing.T) {
	values := make([]float64, 300)
	for i := range values {
		values[i] = math.Sin(2 * math.Pi * float64(i) / 10)
	}
	v := extract(t, values, 10)

	if v[SeasonalStrength] <= 0.95 {
		t.Errorf("seasonal_strength = %g, want > 0.95", v[SeasonalStrength])
	}
	if v[NPeriods] != 1 || v[SeasonalPeriod] != 10 {
		t.Errorf("nperiods=%g seasonal_period=%g", v[NPeriods], v[SeasonalPeriod])
	}
	if v[Entropy] >= 0.2 {
		t.Errorf("entropy of a pure tone = %g, want < 0.2", v[Entropy])
	}
}

func TestDecompositionFill(t *testing.T) {
	in := &Input{Values: []float64{1, 2, 3, 4, 5}, Period: 7}
	v := Extract(in, Extractors(), -1)

	for _, e := range Extractors() {
		if e.Source == Decomposed && v[e.Name] != -1 {
			t.Errorf("%s = %g, want fill -1", e.Name, v[e.Name])
		}
	}
	if v[Length] != 5 {
		t.Errorf("length = %g, want 5", v[Length])
	}
	if v[Linearity] <= 0 {
		t.Errorf("Expected positive linearity, got %g", v[Linearity])
	}
}

func TestTiles(t *testing.T) {
	values := make([]float64, 50)
	for i := range values {
		values[i] = float64(i)
	}
	in := &Input{Values: values, TileWidth: 21}
	tiles := in.tiled()

	// Tiles 0..20 and 21..41; 42..49 is dropped.
	if math.Abs(tiles[0]-110.25) > 1e-9 {
		t.Errorf("stability = %g, want 110.25", tiles[0])
	}
	if math.Abs(tiles[1]) > 1e-9 {
		t.Errorf("lumpiness = %g, want 0", tiles[1])
	}

	// Without a tile width the period is used.
	in = &Input{Values: values, Period: 25}
	if got := in.tiled(); math.Abs(got[0]-156.25) > 1e-9 {
		t.Errorf("stability with period 25 = %g, want 156.25", got[0])
	}

	// Fewer values than one tile.
	in = &Input{Values: values[:10], TileWidth: 21}
	if got := in.tiled(); got != [2]float64{} {
		t.Errorf("Expected zero tiles, got %v", got)
	}
}

func TestSpikiness(t *testing.T) {
	flat := make([]float64, 30)
	if s := spikiness(flat); s != 0 {
		t.Errorf("spikiness of zeros = %g, want 0", s)
	}

	spiked := make([]float64, 30)
	for i := range spiked {
		spiked[i] = float64(i%3) - 1
	}
	base := spikiness(spiked)
	spiked[15] = 20
	if s := spikiness(spiked); s <= base {
		t.Errorf("Expected an outlier to raise spikiness, got %g <= %g", s, base)
	}
}

func TestCycleExtreme(t *testing.T) {
	in := &Input{
		Period: 4,
		Decomposition: &stats.STLResult{
			Seasonal: []float64{0, 2, -1, -1, 0, 2, -1, -1},
		},
	}
	var extremes []Extractor
	for _, e := range Extractors() {
		if e.Name == Peak || e.Name == Trough {
			extremes = append(extremes, e)
		}
	}
	v := Extract(in, extremes, 0)
	if v[Peak] != 2 {
		t.Errorf("peak = %g, want 2", v[Peak])
	}
	if v[Trough] != 3 {
		t.Errorf("trough = %g, want 3", v[Trough])
	}
}

func TestShapeFeatures(t *testing.T) {
	if c := crossingPoints([]float64{1, 3, 1, 3}); c != 3 {
		t.Errorf("crossing_points = %g, want 3", c)
	}
	if f := flatSpots([]float64{0, 0, 0, 10}); f != 3 {
		t.Errorf("flat_spots = %g, want 3", f)
	}
	if f := flatSpots([]float64{4, 4}); f != 2 {
		t.Errorf("flat_spots of a constant = %g, want 2", f)
	}
}

func TestColumnOrder(t *testing.T) {
	names := Names(Extractors())
	want := []string{Length, TrendStrength, SeasonalStrength, Linearity, Curvature,
		Spikiness, EACF1, EACF10, Stability, Lumpiness, Entropy}
	for i, name := range want {
		if names[i] != name {
			t.Errorf("column %d = %s, want %s", i, names[i], name)
		}
	}
	seen := make(map[string]bool)
	for _, name := range names {
		if seen[name] {
			t.Errorf("duplicate feature %s", name)
		}
		seen[name] = true
	}
	if len(Canonical()) != len(want) {
		t.Errorf("Expected %d canonical features, got %d", len(want), len(Canonical()))
	}
}
