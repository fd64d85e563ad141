package stats

import (
	"math"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

// ADFResult represents the result of an Augmented Dickey-Fuller test.
type ADFResult struct {
	Statistic    float64            `json:"statistic"`
	PValue       float64            `json:"p_value"`
	Lags         int                `json:"lags"`
	NObs         int                `json:"n_obs"`
	CriticalVals map[string]float64 `json:"critical_values"` // Critical values at 1%, 5%, 10%
	IsStationary bool               `json:"is_stationary"`
}

// ADF performs the Augmented Dickey-Fuller test for unit root.
// The null hypothesis is that the series has a unit root (is non-stationary).
// If p-value < 0.05, we reject the null and conclude the series is stationary.
func ADF(values []float64, maxLag int) *ADFResult {
	n := len(values)
	if n < 10 {
		return nil
	}

	// Use default lag selection (floor of (n-1)^(1/3))
	if maxLag <= 0 {
		maxLag = int(math.Floor(math.Pow(float64(n-1), 1.0/3.0)))
	}
	if maxLag >= n-1 {
		maxLag = n - 2
	}

	diff := difference(values)

	// delta_y_t = alpha + beta*y_{t-1} + sum(gamma_i * delta_y_{t-i}) + epsilon
	nObs := n - maxLag - 1
	if nObs < 10 {
		return nil
	}

	k := 2 + maxLag
	y := make([]float64, nObs)
	x := mat.NewDense(nObs, k, nil)
	for i := 0; i < nObs; i++ {
		t := i + maxLag
		y[i] = diff[t]
		x.Set(i, 0, 1)         // constant
		x.Set(i, 1, values[t]) // lagged level
		for j := 1; j <= maxLag; j++ {
			x.Set(i, 1+j, diff[t-j]) // lagged differences
		}
	}

	fit := olsRegression(x, y)
	if fit == nil || fit.stdErrors == nil || fit.stdErrors[1] == 0 {
		return nil
	}

	tStat := fit.coeffs[1] / fit.stdErrors[1]
	pValue := mackinnonPValue(tStat)

	return &ADFResult{
		Statistic: tStat,
		PValue:    pValue,
		Lags:      maxLag,
		NObs:      nObs,
		CriticalVals: map[string]float64{
			"1%":  -3.43,
			"5%":  -2.86,
			"10%": -2.57,
		},
		IsStationary: pValue < 0.05,
	}
}

// KPSSResult represents the result of a KPSS test.
type KPSSResult struct {
	Statistic    float64            `json:"statistic"`
	PValue       float64            `json:"p_value"`
	Lags         int                `json:"lags"`
	CriticalVals map[string]float64 `json:"critical_values"`
	IsStationary bool               `json:"is_stationary"`
}

// KPSS performs the Kwiatkowski-Phillips-Schmidt-Shin test for stationarity.
// The null hypothesis is that the series is stationary around a level
// (regression "c") or a linear trend ("ct").
// If p-value < 0.05, we reject the null and conclude the series is non-stationary.
func KPSS(values []float64, regression string, nlags int) *KPSSResult {
	n := len(values)
	if n < 10 {
		return nil
	}

	// Default lag selection
	if nlags <= 0 {
		nlags = int(math.Ceil(12 * math.Pow(float64(n)/100, 0.25)))
	}
	if nlags >= n {
		nlags = n - 1
	}

	residuals := make([]float64, n)
	if regression == "ct" {
		ts := make([]float64, n)
		for i := range ts {
			ts[i] = float64(i)
		}
		a, b := stat.LinearRegression(ts, values, nil, false)
		for i, v := range values {
			residuals[i] = v - a - b*ts[i]
		}
	} else {
		mean := stat.Mean(values, nil)
		for i, v := range values {
			residuals[i] = v - mean
		}
	}

	// Partial sums
	etaSq := 0.0
	cum := 0.0
	for _, r := range residuals {
		cum += r
		etaSq += cum * cum
	}

	s2 := longRunVariance(residuals, nlags)
	if s2 <= 0 {
		s2 = 1e-10 // Prevent division by zero
	}
	kpssStat := etaSq / (float64(n) * float64(n) * s2)

	var criticalVals map[string]float64
	if regression == "ct" {
		criticalVals = map[string]float64{
			"10%": 0.119,
			"5%":  0.146,
			"1%":  0.216,
		}
	} else {
		criticalVals = map[string]float64{
			"10%": 0.347,
			"5%":  0.463,
			"1%":  0.739,
		}
	}

	pValue := kpssPValue(kpssStat, regression)

	return &KPSSResult{
		Statistic:    kpssStat,
		PValue:       pValue,
		Lags:         nlags,
		CriticalVals: criticalVals,
		IsStationary: pValue >= 0.05,
	}
}

// PhillipsPerronResult represents the result of a Phillips-Perron test.
type PhillipsPerronResult struct {
	Statistic    float64            `json:"statistic"`
	PValue       float64            `json:"p_value"`
	Lags         int                `json:"lags"`
	CriticalVals map[string]float64 `json:"critical_values"`
	IsStationary bool               `json:"is_stationary"`
}

// PhillipsPerron performs the Phillips-Perron test for unit root.
// Similar to ADF but corrects the t-statistic for serial correlation with a
// Newey-West long-run variance instead of adding lagged differences.
func PhillipsPerron(values []float64, nlags int) *PhillipsPerronResult {
	n := len(values)
	if n < 10 {
		return nil
	}

	// Default lag selection
	if nlags <= 0 {
		nlags = int(math.Floor(4 * math.Pow(float64(n)/100, 0.25)))
	}

	// delta_y_t = alpha + beta * y_{t-1} + epsilon
	nObs := n - 1
	y := difference(values)
	x := mat.NewDense(nObs, 2, nil)
	lagged := values[:nObs]
	for i := 0; i < nObs; i++ {
		x.Set(i, 0, 1)
		x.Set(i, 1, lagged[i])
	}

	fit := olsRegression(x, y)
	if fit == nil || fit.stdErrors == nil || fit.stdErrors[1] == 0 {
		return nil
	}

	gamma0 := 0.0
	for _, r := range fit.residuals {
		gamma0 += r * r
	}
	gamma0 /= float64(nObs)

	lambda2 := longRunVariance(fit.residuals, nlags)
	if lambda2 <= 0 {
		return nil
	}

	tStat := fit.coeffs[1] / fit.stdErrors[1]

	xMean := stat.Mean(lagged, nil)
	sumXDev2 := 0.0
	for _, v := range lagged {
		d := v - xMean
		sumXDev2 += d * d
	}

	correction := 0.0
	if sumXDev2 > 0 {
		correction = (lambda2 - gamma0) * math.Sqrt(float64(nObs)) / (2 * math.Sqrt(lambda2) * math.Sqrt(sumXDev2))
	}
	ppStat := math.Sqrt(gamma0/lambda2)*tStat - correction
	pValue := mackinnonPValue(ppStat)

	return &PhillipsPerronResult{
		Statistic: ppStat,
		PValue:    pValue,
		Lags:      nlags,
		CriticalVals: map[string]float64{
			"1%":  -3.43,
			"5%":  -2.86,
			"10%": -2.57,
		},
		IsStationary: pValue < 0.05,
	}
}

// longRunVariance is the Newey-West estimator with Bartlett weights.
func longRunVariance(residuals []float64, nlags int) float64 {
	n := len(residuals)
	s2 := 0.0
	for _, r := range residuals {
		s2 += r * r
	}
	s2 /= float64(n)

	for l := 1; l <= nlags && l < n; l++ {
		cov := 0.0
		for i := l; i < n; i++ {
			cov += residuals[i] * residuals[i-l]
		}
		cov /= float64(n)
		weight := 1.0 - float64(l)/float64(nlags+1)
		s2 += 2 * weight * cov
	}
	return s2
}

type olsFit struct {
	coeffs    []float64
	stdErrors []float64
	residuals []float64
}

// olsRegression performs ordinary least squares regression of y on the
// columns of x through a Cholesky factorization of X'X.
// Returns nil when X'X is singular.
func olsRegression(x *mat.Dense, y []float64) *olsFit {
	n, k := x.Dims()
	if n == 0 || len(y) != n {
		return nil
	}

	var xtx mat.SymDense
	xtx.SymOuterK(1, x.T())

	var chol mat.Cholesky
	if ok := chol.Factorize(&xtx); !ok {
		return nil
	}

	yv := mat.NewVecDense(n, y)
	var xty mat.VecDense
	xty.MulVec(x.T(), yv)

	var beta mat.VecDense
	if err := chol.SolveVecTo(&beta, &xty); err != nil {
		return nil
	}

	var fitted mat.VecDense
	fitted.MulVec(x, &beta)

	fit := &olsFit{
		coeffs:    make([]float64, k),
		residuals: make([]float64, n),
	}
	sse := 0.0
	for i := 0; i < n; i++ {
		fit.residuals[i] = y[i] - fitted.AtVec(i)
		sse += fit.residuals[i] * fit.residuals[i]
	}
	for i := 0; i < k; i++ {
		fit.coeffs[i] = beta.AtVec(i)
	}

	if n <= k {
		return fit
	}

	var inv mat.SymDense
	if err := chol.InverseTo(&inv); err != nil {
		return fit
	}
	s2 := sse / float64(n-k)
	fit.stdErrors = make([]float64, k)
	for i := 0; i < k; i++ {
		fit.stdErrors[i] = math.Sqrt(s2 * inv.At(i, i))
	}
	return fit
}

func difference(values []float64) []float64 {
	if len(values) < 2 {
		return nil
	}
	out := make([]float64, len(values)-1)
	for i := range out {
		out[i] = values[i+1] - values[i]
	}
	return out
}

// mackinnonPValue approximates the p-value of a Dickey-Fuller type statistic
// (constant, no trend) by interpolating MacKinnon's asymptotic critical values.
func mackinnonPValue(stat float64) float64 {
	switch {
	case stat < -3.96:
		return 0.001
	case stat < -3.43:
		return 0.01
	case stat < -2.86:
		return 0.05
	case stat < -2.57:
		return 0.10
	case stat < -1.94:
		return 0.25
	case stat < -1.62:
		return 0.50
	default:
		// Linear interpolation towards 1
		return math.Min(0.5+(stat+1.62)*0.25, 0.99)
	}
}

// kpssPValue approximates p-value for KPSS test.
func kpssPValue(stat float64, regression string) float64 {
	if regression == "ct" {
		// Trend stationarity
		switch {
		case stat > 0.216:
			return 0.01
		case stat > 0.146:
			return 0.05
		case stat > 0.119:
			return 0.10
		default:
			return 0.10 + (0.119-stat)*2
		}
	}

	// Level stationarity: 10%: 0.347, 5%: 0.463, 1%: 0.739
	switch {
	case stat > 0.739:
		return 0.01
	case stat > 0.463:
		return 0.05
	case stat > 0.347:
		return 0.10
	default:
		return 0.10 + (0.347-stat)*0.5
	}
}
