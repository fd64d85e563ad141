// Package featurespace maps collections of time series into a feature space
// and explains where every series lands.
//
// Each series is summarised by a fixed vector of features computed from its
// STL decomposition (trend and seasonal strength, spikiness, linearity,
// curvature, residual autocorrelation, peak and trough) plus raw-series
// features (lumpiness, stability, spectral entropy, crossing points, flat
// spots). The feature matrix is reduced to three dimensions with PCA, t-SNE
// or UMAP, and every projected axis is explained by the features with the
// strongest Kendall rank correlation.
//
// # Quick Start
//
//	table, _ := features.NewTable(nil, logger, nil)
//	analyzer := analysis.NewAnalyzer(table, nil, logger)
//
//	coll, _ := timeseries.LoadCSV("hourly.csv", nil)
//	report, err := analyzer.Analyze(ctx, coll, 24, 0, analysis.Algorithms, 5)
//	for _, r := range report.Results {
//	    fmt.Println(r.Projection.Algorithm, r.Ranking.Axes[0][0].Feature)
//	}
//
// # Packages
//
//   - timeseries: series, collections, long/wide formats, CSV and XLSX ingestion
//   - stats: STL and classical decomposition, ACF/PACF, stationarity tests
//   - spectral: FFT, periodogram entropy, Welch PSD, kernel density
//   - features: feature extractors and the concurrent feature table
//   - featcache: memory and SQLite caches for feature vectors
//   - reduction: PCA, t-SNE and UMAP reductors
//   - correlation: Kendall top-k attribution of projected axes
//   - analysis: the feature, projection and attribution pipeline
//   - config: YAML and environment configuration
//   - server: HTTP API
//
// The featurespace command in cmd/featurespace serves the API and runs the
// pipeline on local files.
//
// # References
//
//   - Cleveland, R. B., Cleveland, W. S., McRae, J. E., & Terpenning, I. (1990). STL: A Seasonal-Trend Decomposition Procedure Based on Loess
//   - Hyndman, R.J., & Athanasopoulos, G. (2021). Forecasting: Principles and Practice
//   - Wang, X., Smith, K., & Hyndman, R. (2006). Characteristic-based clustering for time series data
package featurespace
