package stats

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/mat"
)

func ar1(n int, phi float64) []float64 {
	values := make([]float64, n)
	for i := 1; i < n; i++ {
		values[i] = phi*values[i-1] + (float64(i%10)-5)/10
	}
	return values
}

func newDesign(rows [][]float64) *mat.Dense {
	m := mat.NewDense(len(rows), len(rows[0]), nil)
	for i, row := range rows {
		m.SetRow(i, row)
	}
	return m
}

func TestACF(t *testing.T) {
	acf := ACF(ar1(100, 0.8), 10)

	if acf == nil {
		t.Fatal("ACF returned nil")
	}
	if len(acf) != 11 {
		t.Fatalf("Expected 11 lags, got %d", len(acf))
	}

	// ACF at lag 0 should be 1
	if math.Abs(acf[0]-1.0) > 1e-10 {
		t.Errorf("ACF at lag 0 should be 1, got %f", acf[0])
	}
	if acf[1] <= 0 {
		t.Errorf("Expected positive lag-1 autocorrelation, got %f", acf[1])
	}
}

func TestACFConstant(t *testing.T) {
	if acf := ACF([]float64{3, 3, 3, 3}, 2); acf != nil {
		t.Errorf("Expected nil ACF for constant series, got %v", acf)
	}
}

func TestACFTruncatesLags(t *testing.T) {
	acf := ACF([]float64{1, 2, 3}, 10)
	if len(acf) != 3 {
		t.Errorf("Expected lags truncated to n-1, got %d values", len(acf))
	}
}

func TestPACF(t *testing.T) {
	pacf := PACF(ar1(100, 0.7), 10)

	if pacf == nil {
		t.Fatal("PACF returned nil")
	}

	// PACF at lag 0 should be 1
	if math.Abs(pacf[0]-1.0) > 1e-10 {
		t.Errorf("PACF at lag 0 should be 1, got %f", pacf[0])
	}

	// For AR(1), PACF at lag 1 dominates later lags
	if math.Abs(pacf[1]) < 0.3 {
		t.Logf("PACF at lag 1 seems low for AR(1) with phi=0.7: %f", pacf[1])
	}
}

func TestACFWithConfidence(t *testing.T) {
	values := make([]float64, 100)
	for i := range values {
		values[i] = float64(i) + math.Sin(float64(i)/10)
	}

	result := ACFWithConfidence(values, 20)
	if result == nil {
		t.Fatal("ACFWithConfidence returned nil")
	}

	// Confidence bounds should be approximately 1.96/sqrt(n)
	expected := 1.96 / math.Sqrt(100)
	if math.Abs(result.ConfBounds-expected) > 0.01 {
		t.Errorf("Expected confidence bounds ~%f, got %f", expected, result.ConfBounds)
	}
	if len(result.Lags) != len(result.Values) {
		t.Errorf("Lags and values differ in length: %d vs %d", len(result.Lags), len(result.Values))
	}

	if PACFWithConfidence([]float64{1, 1, 1, 1}, 3) != nil {
		t.Error("Expected nil PACF for constant series")
	}
}

func TestSignificantLags(t *testing.T) {
	values := []float64{1.0, 0.5, 0.3, 0.1, 0.05, -0.2, -0.5}

	significant := SignificantLags(values, 0.15)

	expected := []int{1, 2, 5, 6}
	if len(significant) != len(expected) {
		t.Fatalf("Expected %d significant lags, got %d", len(expected), len(significant))
	}
	for i := range expected {
		if significant[i] != expected[i] {
			t.Errorf("Expected lag %d, got %d", expected[i], significant[i])
		}
	}
}

func TestADF(t *testing.T) {
	n := 200
	stationary := make([]float64, n)
	for i := range stationary {
		stationary[i] = 100 + math.Sin(float64(i)/10)*5 + float64(i%5-2)
	}

	result := ADF(stationary, 0)
	if result == nil {
		t.Fatal("ADF returned nil for stationary data")
	}
	t.Logf("ADF Statistic: %f, P-Value: %f, IsStationary: %v",
		result.Statistic, result.PValue, result.IsStationary)

	if ADF(stationary[:5], 0) != nil {
		t.Error("Expected nil ADF for fewer than 10 observations")
	}
}

func TestKPSS(t *testing.T) {
	n := 200
	stationary := make([]float64, n)
	for i := range stationary {
		stationary[i] = math.Sin(float64(i)/10) + float64(i%5-2)/5
	}

	result := KPSS(stationary, "c", 0)
	if result == nil {
		t.Fatal("KPSS returned nil")
	}
	t.Logf("KPSS Stationary - Statistic: %f, P-Value: %f, IsStationary: %v",
		result.Statistic, result.PValue, result.IsStationary)

	nonStationary := make([]float64, n)
	for i := range nonStationary {
		nonStationary[i] = float64(i) * 0.5
	}

	result2 := KPSS(nonStationary, "c", 0)
	if result2 == nil {
		t.Fatal("KPSS returned nil for non-stationary data")
	}
	if result2.IsStationary {
		t.Errorf("Expected a linear trend to reject level stationarity, stat=%f", result2.Statistic)
	}
	if result2.Statistic <= result.Statistic {
		t.Errorf("Expected larger KPSS statistic for trend (%f) than for oscillation (%f)",
			result2.Statistic, result.Statistic)
	}

	if KPSS(nonStationary, "ct", 0) == nil {
		t.Error("KPSS with trend regression returned nil")
	}
}

func TestPhillipsPerron(t *testing.T) {
	n := 200
	stationary := make([]float64, n)
	for i := range stationary {
		stationary[i] = math.Sin(float64(i)/10) + float64(i%5-2)/5
	}

	result := PhillipsPerron(stationary, 0)
	if result == nil {
		t.Fatal("PhillipsPerron returned nil")
	}
	if math.IsNaN(result.Statistic) {
		t.Error("PP statistic is NaN")
	}
	t.Logf("PP Stationary - Statistic: %f, P-Value: %f, IsStationary: %v",
		result.Statistic, result.PValue, result.IsStationary)
}

func TestOLSRegression(t *testing.T) {
	// y = 2 + 3x exactly
	x := [][]float64{{1, 0}, {1, 1}, {1, 2}, {1, 3}, {1, 4}}
	y := []float64{2, 5, 8, 11, 14}

	design := newDesign(x)
	fit := olsRegression(design, y)
	if fit == nil {
		t.Fatal("olsRegression returned nil")
	}
	if math.Abs(fit.coeffs[0]-2) > 1e-9 || math.Abs(fit.coeffs[1]-3) > 1e-9 {
		t.Errorf("Expected coefficients [2 3], got %v", fit.coeffs)
	}
	for i, r := range fit.residuals {
		if math.Abs(r) > 1e-9 {
			t.Errorf("Residual %d should be 0, got %g", i, r)
		}
	}

	// Collinear columns
	if olsRegression(newDesign([][]float64{{1, 1}, {2, 2}, {3, 3}}), []float64{1, 2, 3}) != nil {
		t.Error("Expected nil fit for a singular design")
	}
}

func TestLjungBox(t *testing.T) {
	n := 100
	whiteNoise := make([]float64, n)
	for i := range whiteNoise {
		whiteNoise[i] = float64(i%7-3) / 3
	}

	result := LjungBox(whiteNoise, 10, 0)
	if result == nil {
		t.Fatal("LjungBox returned nil")
	}
	t.Logf("Ljung-Box - Q: %f, P-Value: %f, DOF: %d",
		result.Statistic, result.PValue, result.DOF)

	result2 := LjungBox(ar1(n, 0.9), 10, 0)
	if result2 == nil {
		t.Fatal("LjungBox returned nil for autocorrelated data")
	}
	if result2.PValue >= 0.05 {
		t.Errorf("Expected significant autocorrelation, p=%f", result2.PValue)
	}
	if result2.PValue < 0 || result2.PValue > 1 {
		t.Errorf("p-value out of range: %f", result2.PValue)
	}
}

func TestBoxPierce(t *testing.T) {
	n := 100
	values := make([]float64, n)
	for i := range values {
		values[i] = float64(i%7-3) / 3
	}

	bp := BoxPierce(values, 10, 2)
	lb := LjungBox(values, 10, 2)
	if bp == nil || lb == nil {
		t.Fatal("portmanteau test returned nil")
	}
	if bp.DOF != 8 {
		t.Errorf("Expected 8 degrees of freedom, got %d", bp.DOF)
	}
	if bp.Statistic > lb.Statistic {
		t.Errorf("Box-Pierce Q (%f) should not exceed Ljung-Box Q (%f)", bp.Statistic, lb.Statistic)
	}
}

func TestDurbinWatson(t *testing.T) {
	tests := []struct {
		name      string
		residuals []float64
		high      bool
	}{
		{"negative autocorrelation", []float64{1, -1, 1, -1, 1, -1, 1, -1}, true},
		{"positive autocorrelation", []float64{1, 1, 1, 1, -1, -1, -1, -1}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := DurbinWatson(tt.residuals)
			if result == nil {
				t.Fatal("DurbinWatson returned nil")
			}
			if tt.high && result.Statistic < 2 {
				t.Errorf("Expected high DW, got %f", result.Statistic)
			}
			if !tt.high && result.Statistic > 2 {
				t.Errorf("Expected low DW, got %f", result.Statistic)
			}
		})
	}
}
