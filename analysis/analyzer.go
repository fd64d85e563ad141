package analysis

import (
	"context"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/sartorproj/featurespace/correlation"
	"github.com/sartorproj/featurespace/errs"
	"github.com/sartorproj/featurespace/features"
	"github.com/sartorproj/featurespace/timeseries"
)

// Config holds configuration for an Analyzer.
type Config struct {
	Timeout time.Duration // Per-algorithm reduction timeout (0: none)
	Params  Params        // Reduction hyperparameters
	TopK    int           // Features kept per axis (default: 5)
}

// DefaultConfig returns the default analyzer configuration.
func DefaultConfig() *Config {
	return &Config{
		Timeout: 2 * time.Minute,
		TopK:    correlation.DefaultK,
	}
}

// Analyzer runs the feature, projection and correlation steps for one
// request at a time. It holds no per-request state.
type Analyzer struct {
	config Config
	table  *features.Table
	logger *zap.SugaredLogger
}

// Result is one projection with its feature attribution.
type Result struct {
	Projection *Projection         `json:"projection"`
	Ranking    correlation.Ranking `json:"ranking"`
	Heatmap    correlation.Heatmap `json:"heatmap"`
}

// Report is the outcome of Analyze.
type Report struct {
	Features *features.Matrix `json:"features"`
	Results  []Result         `json:"results"`
}

// NewAnalyzer returns an Analyzer computing features with table.
func NewAnalyzer(table *features.Table, config *Config, logger *zap.SugaredLogger) *Analyzer {
	if config == nil {
		config = DefaultConfig()
	}
	cfg := *config
	if cfg.TopK < 1 {
		cfg.TopK = correlation.DefaultK
	}
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &Analyzer{config: cfg, table: table, logger: logger}
}

// TopK returns the configured number of features per axis.
func (a *Analyzer) TopK() int {
	return a.config.TopK
}

// ComputeFeatures returns the feature matrix of coll.
func (a *Analyzer) ComputeFeatures(ctx context.Context, coll *timeseries.Collection, period int, fill float64) (*features.Matrix, error) {
	start := time.Now()
	m, err := a.table.Compute(ctx, coll, period, fill)
	if err != nil {
		return nil, err
	}
	a.logger.Infow("Computed features",
		"series", m.Rows(), "columns", len(m.Columns), "period", period, "elapsed", time.Since(start))
	return m, nil
}

// Project reduces m with algorithm alg under the configured timeout and
// ranks the k strongest features of every axis. Callers without a k of
// their own pass TopK(); k below 1 fails with errs.ErrInvalidParameter.
func (a *Analyzer) Project(ctx context.Context, m *features.Matrix, alg Algorithm, params *Params, k int) (*Result, error) {
	if params == nil {
		params = &a.config.Params
	}
	if k < 1 {
		return nil, errs.InvalidParameter("k must be a positive integer, got %d", k)
	}
	if a.config.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, a.config.Timeout)
		defer cancel()
	}

	start := time.Now()
	proj, err := Reduce(ctx, m, alg, *params)
	if err != nil {
		a.logger.Warnw("Reduction failed", "algorithm", alg, "error", err)
		return nil, err
	}
	ranking, err := Correlate(proj, m, k)
	if err != nil {
		return nil, err
	}
	a.logger.Debugw("Projected features", "algorithm", alg, "series", m.Rows(), "elapsed", time.Since(start))
	return &Result{Projection: proj, Ranking: ranking, Heatmap: ranking.Heatmap()}, nil
}

// Explore projects m with every algorithm concurrently. Results follow the
// order of algorithms; the first failure cancels the others.
func (a *Analyzer) Explore(ctx context.Context, m *features.Matrix, algorithms []Algorithm, k int) ([]Result, error) {
	if k < 1 {
		return nil, errs.InvalidParameter("k must be a positive integer, got %d", k)
	}
	results := make([]Result, len(algorithms))
	g, ctx := errgroup.WithContext(ctx)
	for i, alg := range algorithms {
		g.Go(func() error {
			r, err := a.Project(ctx, m, alg, nil, k)
			if err != nil {
				return err
			}
			results[i] = *r
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// Analyze computes the features of coll and explores them with algorithms.
func (a *Analyzer) Analyze(ctx context.Context, coll *timeseries.Collection, period int, fill float64, algorithms []Algorithm, k int) (*Report, error) {
	if k < 1 {
		return nil, errs.InvalidParameter("k must be a positive integer, got %d", k)
	}
	m, err := a.ComputeFeatures(ctx, coll, period, fill)
	if err != nil {
		return nil, err
	}
	results, err := a.Explore(ctx, m, algorithms, k)
	if err != nil {
		return nil, err
	}
	return &Report{Features: m, Results: results}, nil
}
