// Package stats provides decomposition, correlation and stationarity
// statistics for time series held as plain float64 slices.
//
// # Decomposition
//
// Split a series into trend, seasonal and residual components:
//
//	// STL (loess-based, the default)
//	stl, err := stats.STL(values, 12, nil)
//	if errors.Is(err, errs.ErrDecomposition) {
//	    // series too short or non-finite for this period
//	}
//	// stl.Trend, stl.Seasonal, stl.Residual
//
//	// Robust STL down-weights outliers
//	stl, err = stats.STL(values, 12, &stats.STLOptions{Robust: true})
//
//	// Classical moving-average decomposition
//	classical, err := stats.Decompose(values, 12)
//
// Strength measures how much variation a component explains:
//
//	trendStrength := stats.Strength(stl.Trend, stl.Residual)
//	seasonalStrength := stats.Strength(stl.Seasonal, stl.Residual)
//
// # Autocorrelation Functions
//
//	acf := stats.ACF(values, 10)
//	pacf := stats.PACF(values, 5)
//
//	// ACF with confidence bounds
//	acfResult := stats.ACFWithConfidence(values, 20)
//	significant := stats.SignificantLags(acfResult.Values, acfResult.ConfBounds)
//
// # Stationarity Tests
//
//	// KPSS test, H0: series is stationary
//	kpss := stats.KPSS(values, "c", 0)
//
//	// Phillips-Perron and Augmented Dickey-Fuller, H0: unit root
//	pp := stats.PhillipsPerron(values, 0)
//	adf := stats.ADF(values, 0)
//
//	// Number of differences suggested by KPSS / seasonal strength
//	d := stats.NDiffs(values, 2, "kpss")
//	sd := stats.NSDiffs(values, 12, 1)
//
// # Residual Diagnostics
//
//	lb := stats.LjungBox(stl.Residual, 10, 0)
//	if lb.PValue > 0.05 {
//	    // Residuals are white noise
//	}
//	dw := stats.DurbinWatson(stl.Residual)
package stats
