package features

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"strconv"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/sartorproj/featurespace/errs"
	"github.com/sartorproj/featurespace/featcache"
	"github.com/sartorproj/featurespace/stats"
	"github.com/sartorproj/featurespace/timeseries"
)

// Config holds configuration for feature table computation.
type Config struct {
	TileWidth int          // Tile width for stability/lumpiness (0: period, else 21)
	Workers   int          // Concurrent series (default: runtime.NumCPU())
	Method    stats.Method // Decomposition method (default: stl)
	Robust    bool         // Robust STL fitting
}

// DefaultConfig returns the default feature table configuration.
func DefaultConfig() *Config {
	return &Config{
		Workers: runtime.NumCPU(),
		Method:  stats.MethodSTL,
	}
}

// Table computes feature matrices for series collections.
type Table struct {
	config     Config
	decompose  stats.Decomposer
	extractors []Extractor
	logger     *zap.SugaredLogger
	cache      featcache.Store
}

// NewTable returns a Table. A nil config selects DefaultConfig, a nil logger
// discards output and a nil cache disables caching.
func NewTable(config *Config, logger *zap.SugaredLogger, cache featcache.Store) (*Table, error) {
	if config == nil {
		config = DefaultConfig()
	}
	cfg := *config
	if cfg.TileWidth < 0 {
		return nil, errs.InvalidParameter("tile width must be non-negative, got %d", cfg.TileWidth)
	}
	if cfg.Workers < 1 {
		cfg.Workers = runtime.NumCPU()
	}
	decompose, err := stats.NewDecomposer(cfg.Method, cfg.Robust)
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &Table{
		config:     cfg,
		decompose:  decompose,
		extractors: Extractors(),
		logger:     logger,
		cache:      cache,
	}, nil
}

// Columns returns the feature names in column order.
func (t *Table) Columns() []string {
	return Names(t.extractors)
}

// Compute extracts one feature row per series of coll, in first-seen order.
// Series that cannot be decomposed for period keep their raw features and
// get fill for the decomposition features. Every non-finite value is fill.
func (t *Table) Compute(ctx context.Context, coll *timeseries.Collection, period int, fill float64) (*Matrix, error) {
	if period < 1 {
		return nil, errs.InvalidParameter("period must be a positive integer, got %d", period)
	}

	ids := coll.IDs()
	rows := make([][]float64, len(ids))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(t.config.Workers)
	for i, id := range ids {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			s, err := coll.Select(id)
			if err != nil {
				return err
			}
			v, err := t.vector(ctx, id, s.Values, period, fill)
			if err != nil {
				return err
			}
			row := make([]float64, len(t.extractors))
			for j, e := range t.extractors {
				row[j] = v[e.Name]
			}
			rows[i] = row
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	t.logger.Debugw("Computed feature table", "series", len(ids), "period", period)
	return NewMatrix(ids, t.Columns(), rows)
}

// vector returns the features of one series, consulting the cache first.
func (t *Table) vector(ctx context.Context, id string, values []float64, period int, fill float64) (Vector, error) {
	var key string
	if t.cache != nil {
		key = featcache.Key(values,
			"period="+strconv.Itoa(period),
			"fill="+strconv.FormatFloat(fill, 'g', -1, 64),
			"tile="+strconv.Itoa(t.config.TileWidth),
			"method="+string(t.config.Method),
			"robust="+strconv.FormatBool(t.config.Robust),
		)
		cached, ok, err := t.cache.Get(ctx, key)
		if err != nil {
			t.logger.Warnw("Feature cache read failed", "series", id, "error", err)
		} else if ok && len(cached) == len(t.extractors) {
			return cached, nil
		}
	}

	in := &Input{Values: values, Period: period, TileWidth: t.config.TileWidth}
	dec, err := t.decompose(values, period)
	switch {
	case err == nil:
		in.Decomposition = dec
	case errors.Is(err, errs.ErrDecomposition):
		t.logger.Debugw("Decomposition failed, filling dependent features",
			"series", id, "period", period, "error", err)
	default:
		return nil, fmt.Errorf("failed to decompose series %q: %w", id, err)
	}

	v := Extract(in, t.extractors, fill)
	if t.cache != nil {
		if err := t.cache.Put(ctx, key, v); err != nil {
			t.logger.Warnw("Feature cache write failed", "series", id, "error", err)
		}
	}
	return v, nil
}
