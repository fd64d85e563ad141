package stats

import (
	"math"

	"github.com/sartorproj/featurespace/errs"
)

// STLResult holds an additive decomposition: Observed = Trend + Seasonal + Residual.
type STLResult struct {
	Observed []float64 `json:"observed"`
	Trend    []float64 `json:"trend"`
	Seasonal []float64 `json:"seasonal"`
	Residual []float64 `json:"residual"`
	Period   int       `json:"period"`
	Weights  []float64 `json:"weights,omitempty"` // robustness weights, nil unless robust
}

// STLOptions configures STL. Zero values select the defaults.
type STLOptions struct {
	Seasonal int // seasonal smoother length, odd >= 3 (default 7)
	Trend    int // trend smoother length, odd >= 3
	LowPass  int // low-pass smoother length, odd > period
	Inner    int // inner loop passes (default 2, or 1 when robust)
	Outer    int // robustness iterations (default 0, or 15 when robust)
	Robust   bool
}

// STL performs Seasonal and Trend decomposition using Loess
// (Cleveland, Cleveland, McRae & Terpenning, 1990).
//
// A period of 1 gives a non-seasonal decomposition: the seasonal component is
// zero and the trend is a local-linear loess fit.
func STL(values []float64, period int, opts *STLOptions) (*STLResult, error) {
	if period < 1 {
		return nil, errs.InvalidParameter("period must be a positive integer, got %d", period)
	}
	n := len(values)
	if n < 3 || n < 2*period {
		return nil, errs.Decomposition("%d observations are too few for period %d", n, period)
	}
	for i, v := range values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return nil, errs.Decomposition("non-finite value at position %d", i)
		}
	}

	if opts == nil {
		opts = &STLOptions{}
	}
	cfg, err := opts.resolve(period, n)
	if err != nil {
		return nil, err
	}

	y := make([]float64, n)
	copy(y, values)

	trend := make([]float64, n)
	seasonal := make([]float64, n)
	var rw []float64

	if period == 1 {
		for outer := 0; ; outer++ {
			loessSmooth(y, cfg.Trend, rw, trend)
			if outer >= cfg.Outer {
				break
			}
			rw = robustnessWeights(y, trend)
		}
		return newSTLResult(y, trend, seasonal, period, rw), nil
	}

	detrended := make([]float64, n)
	deseasoned := make([]float64, n)
	cycle := make([]float64, n+2*period)

	for outer := 0; ; outer++ {
		for inner := 0; inner < cfg.Inner; inner++ {
			for i := range y {
				detrended[i] = y[i] - trend[i]
			}
			subseriesSmooth(detrended, period, cfg.Seasonal, rw, cycle)
			low := lowPassFilter(cycle, period, cfg.LowPass)
			for i := range y {
				seasonal[i] = cycle[period+i] - low[i]
				deseasoned[i] = y[i] - seasonal[i]
			}
			loessSmooth(deseasoned, cfg.Trend, rw, trend)
		}
		if outer >= cfg.Outer {
			break
		}
		fit := make([]float64, n)
		for i := range fit {
			fit[i] = trend[i] + seasonal[i]
		}
		rw = robustnessWeights(y, fit)
	}

	return newSTLResult(y, trend, seasonal, period, rw), nil
}

func newSTLResult(y, trend, seasonal []float64, period int, rw []float64) *STLResult {
	residual := make([]float64, len(y))
	for i := range y {
		residual[i] = y[i] - trend[i] - seasonal[i]
	}
	return &STLResult{
		Observed: y,
		Trend:    trend,
		Seasonal: seasonal,
		Residual: residual,
		Period:   period,
		Weights:  rw,
	}
}

// resolve fills in defaults and validates smoother lengths.
func (o *STLOptions) resolve(period, n int) (STLOptions, error) {
	cfg := *o
	if cfg.Seasonal == 0 {
		cfg.Seasonal = 7
	}
	if cfg.Seasonal < 3 || cfg.Seasonal%2 == 0 {
		return cfg, errs.InvalidParameter("seasonal smoother must be an odd integer >= 3, got %d", cfg.Seasonal)
	}

	if cfg.Trend == 0 {
		if period == 1 {
			cfg.Trend = nextOdd(max(7, int(math.Ceil(0.1*float64(n)))))
		} else {
			cfg.Trend = nextOdd(int(math.Ceil(1.5 * float64(period) / (1 - 1.5/float64(cfg.Seasonal)))))
		}
	}
	if cfg.Trend < 3 || cfg.Trend%2 == 0 {
		return cfg, errs.InvalidParameter("trend smoother must be an odd integer >= 3, got %d", cfg.Trend)
	}

	if cfg.LowPass == 0 {
		cfg.LowPass = nextOdd(period + 1)
	}
	if cfg.LowPass <= period || cfg.LowPass%2 == 0 {
		return cfg, errs.InvalidParameter("low-pass smoother must be an odd integer > period, got %d", cfg.LowPass)
	}

	if cfg.Inner == 0 {
		cfg.Inner = 2
		if cfg.Robust {
			cfg.Inner = 1
		}
	}
	if cfg.Outer == 0 && cfg.Robust {
		cfg.Outer = 15
	}
	if cfg.Inner < 0 || cfg.Outer < 0 {
		return cfg, errs.InvalidParameter("iteration counts must be non-negative")
	}
	return cfg, nil
}

func nextOdd(x int) int {
	if x%2 == 0 {
		return x + 1
	}
	return x
}

// loessPoint evaluates a local-linear loess fit of y (at positions 0..len-1)
// at position xs using the points left..right. work must be at least len(y)
// long. Returns false when every weight is zero.
func loessPoint(y []float64, span int, xs float64, left, right int, work, rw []float64) (float64, bool) {
	n := len(y)
	rng := float64(n) - 1
	h := math.Max(xs-float64(left), float64(right)-xs)
	if span > n {
		h += float64((span - n) / 2)
	}
	h9 := 0.999 * h
	h1 := 0.001 * h

	total := 0.0
	for j := left; j <= right; j++ {
		work[j] = 0
		r := math.Abs(float64(j) - xs)
		if r > h9 {
			continue
		}
		if r <= h1 {
			work[j] = 1
		} else {
			q := r / h
			q = 1 - q*q*q
			work[j] = q * q * q
		}
		if rw != nil {
			work[j] *= rw[j]
		}
		total += work[j]
	}
	if total <= 0 {
		return 0, false
	}
	for j := left; j <= right; j++ {
		work[j] /= total
	}

	if h > 0 {
		center := 0.0
		for j := left; j <= right; j++ {
			center += work[j] * float64(j)
		}
		slope := xs - center
		spread := 0.0
		for j := left; j <= right; j++ {
			d := float64(j) - center
			spread += work[j] * d * d
		}
		if math.Sqrt(spread) > 0.001*rng {
			slope /= spread
			for j := left; j <= right; j++ {
				work[j] *= slope*(float64(j)-center) + 1
			}
		}
	}

	fit := 0.0
	for j := left; j <= right; j++ {
		fit += work[j] * y[j]
	}
	return fit, true
}

// loessSmooth writes the loess fit of y at every position into out.
func loessSmooth(y []float64, span int, rw, out []float64) {
	n := len(y)
	if n < 2 {
		copy(out, y)
		return
	}
	work := make([]float64, n)

	if span >= n {
		for i := 0; i < n; i++ {
			v, ok := loessPoint(y, span, float64(i), 0, n-1, work, rw)
			if !ok {
				v = y[i]
			}
			out[i] = v
		}
		return
	}

	half := (span + 1) / 2
	left, right := 0, span-1
	for i := 0; i < n; i++ {
		if i+1 > half && right != n-1 {
			left++
			right++
		}
		v, ok := loessPoint(y, span, float64(i), left, right, work, rw)
		if !ok {
			v = y[i]
		}
		out[i] = v
	}
}

// subseriesSmooth smooths every cycle-subseries of w and extends each by one
// value at both ends. cycle has length len(w)+2*period.
func subseriesSmooth(w []float64, period, span int, rw, cycle []float64) {
	n := len(w)
	for j := 0; j < period; j++ {
		k := (n-j-1)/period + 1

		sub := make([]float64, k)
		var subRW []float64
		if rw != nil {
			subRW = make([]float64, k)
		}
		for i := 0; i < k; i++ {
			sub[i] = w[i*period+j]
			if rw != nil {
				subRW[i] = rw[i*period+j]
			}
		}

		smoothed := make([]float64, k+2)
		loessSmooth(sub, span, subRW, smoothed[1:k+1])

		work := make([]float64, k)
		v, ok := loessPoint(sub, span, -1, 0, min(span, k)-1, work, subRW)
		if !ok {
			v = smoothed[1]
		}
		smoothed[0] = v

		v, ok = loessPoint(sub, span, float64(k), max(0, k-span), k-1, work, subRW)
		if !ok {
			v = smoothed[k]
		}
		smoothed[k+1] = v

		for m := 0; m < k+2; m++ {
			cycle[m*period+j] = smoothed[m]
		}
	}
}

// lowPassFilter applies moving averages of length period, period and 3
// followed by a loess smoother. The result has length len(cycle)-2*period.
func lowPassFilter(cycle []float64, period, span int) []float64 {
	out := movingAverage(movingAverage(movingAverage(cycle, period), period), 3)
	smoothed := make([]float64, len(out))
	loessSmooth(out, span, nil, smoothed)
	return smoothed
}

func movingAverage(x []float64, length int) []float64 {
	n := len(x) - length + 1
	if n <= 0 {
		return nil
	}
	out := make([]float64, n)
	sum := 0.0
	for i := 0; i < length; i++ {
		sum += x[i]
	}
	out[0] = sum / float64(length)
	for i := 1; i < n; i++ {
		sum += x[i+length-1] - x[i-1]
		out[i] = sum / float64(length)
	}
	return out
}

// robustnessWeights returns bisquare weights of the absolute residuals
// scaled by six times their median.
func robustnessWeights(y, fit []float64) []float64 {
	n := len(y)
	r := make([]float64, n)
	for i := range y {
		r[i] = math.Abs(y[i] - fit[i])
	}
	h := 6 * median(r)
	h9 := 0.999 * h
	h1 := 0.001 * h

	rw := make([]float64, n)
	for i, v := range r {
		switch {
		case v <= h1:
			rw[i] = 1
		case v <= h9:
			u := v / h
			u = 1 - u*u
			rw[i] = u * u
		default:
			rw[i] = 0
		}
	}
	return rw
}
