// Package analysis wires feature extraction, dimension reduction and
// correlation attribution into one request-scoped pipeline.
//
// # Usage
//
//	table, _ := features.NewTable(nil, logger, nil)
//	a := analysis.NewAnalyzer(table, nil, logger)
//
//	m, err := a.ComputeFeatures(ctx, collection, 24, 0)
//	res, err := a.Project(ctx, m, analysis.UMAP, nil, 5)
//	res.Projection.Label([]string{"H1"}, nil)
//
// Explore runs several algorithms at once, each under the configured
// timeout:
//
//	results, err := a.Explore(ctx, m, analysis.Algorithms, 5)
//
// The package-level Reduce and Correlate do the same without logging or
// timeouts.
package analysis
