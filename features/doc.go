// Package features computes per-series statistical descriptors and the
// feature matrix of a collection.
//
// # Single Series
//
// Run the extractors on one series and its decomposition:
//
//	stl, err := stats.STL(values, 12, nil)
//	in := &features.Input{Values: values, Period: 12}
//	if err == nil {
//	    in.Decomposition = stl
//	}
//	v := features.Extract(in, features.Extractors(), 0)
//	fmt.Println(v[features.TrendStrength], v[features.Entropy])
//
// Decomposition features (trend_strength, spikiness, e_acf1, ...) take the
// fill value when in.Decomposition is nil. Every feature is finite.
//
// # Feature Table
//
// Compute one row per series, concurrently, in first-seen order:
//
//	table, err := features.NewTable(nil, logger, nil)
//	m, err := table.Compute(ctx, collection, 12, 0)
//	// m.Names[i] is the series of row i, m.Columns the feature names
//
// A series too short for the period keeps its raw features; a period below 1
// fails the whole batch with errs.ErrInvalidParameter.
//
// # Columns
//
// The canonical features come first: length, trend_strength,
// seasonal_strength, linearity, curvature, spikiness, e_acf1, e_acf10,
// stability, lumpiness and entropy. Autocorrelation, unit-root and shape
// features follow (see Extractors).
package features
