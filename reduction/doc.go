// Package reduction projects a feature matrix to three dimensions.
//
// Every Reductor standardizes the columns first (zero mean, unit population
// variance) and rejects matrices with NaN or infinite cells:
//
//	var r reduction.Reductor = reduction.PCA{}
//	y, err := r.FitTransform(ctx, features.Dense())
//	if errors.Is(err, errs.ErrNonNumericInput) {
//	    // the matrix contained NaN or Inf
//	}
//	// y is n×3, row i is the projection of series i
//
// # Variants
//
//	reduction.PCA{}                          // deterministic
//	reduction.TSNE{Perplexity: 30, Seed: &seed}
//	reduction.UMAP{NNeighbors: 15, RandomState: 0}
//
// t-SNE and UMAP check ctx between iterations and return ctx.Err() when it
// is done.
package reduction
