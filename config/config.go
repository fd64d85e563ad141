// Package config loads the featurespace configuration from YAML with
// environment overrides.
//
//	config.LoadDotEnv()                    // optional .env in the working directory
//	cfg, err := config.Load("featurespace.yaml")
//	logger, err := cfg.Log.Build()
//
// A missing file yields the defaults. FEATURESPACE_ADDR,
// FEATURESPACE_LOG_LEVEL, FEATURESPACE_CACHE_PATH and FEATURESPACE_WORKERS
// override the file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/sartorproj/featurespace/analysis"
	"github.com/sartorproj/featurespace/correlation"
	"github.com/sartorproj/featurespace/errs"
	"github.com/sartorproj/featurespace/featcache"
	"github.com/sartorproj/featurespace/features"
	"github.com/sartorproj/featurespace/stats"
)

// Environment variables overriding the file.
const (
	EnvAddr      = "FEATURESPACE_ADDR"
	EnvLogLevel  = "FEATURESPACE_LOG_LEVEL"
	EnvCachePath = "FEATURESPACE_CACHE_PATH"
	EnvWorkers   = "FEATURESPACE_WORKERS"
)

// ServerConfig configures the HTTP service.
type ServerConfig struct {
	Addr        string        `yaml:"addr"`
	ReadTimeout time.Duration `yaml:"read_timeout"`
	MaxUploadMB int64         `yaml:"max_upload_mb"`
}

// FeaturesConfig configures feature extraction.
type FeaturesConfig struct {
	Period        int     `yaml:"period"`
	Fill          float64 `yaml:"fill"`
	TileWidth     int     `yaml:"tile_width"`
	Workers       int     `yaml:"workers"`
	Decomposition string  `yaml:"decomposition"`
	Robust        bool    `yaml:"robust"`
}

// ReductionConfig configures the projections.
type ReductionConfig struct {
	Timeout        time.Duration `yaml:"timeout"`
	Perplexity     float64       `yaml:"perplexity"`
	TSNESeed       *uint64       `yaml:"tsne_seed,omitempty"`
	TSNEIterations int           `yaml:"tsne_iterations"`
	NNeighbors     int           `yaml:"n_neighbors"`
	RandomState    uint64        `yaml:"random_state"`
	UMAPEpochs     int           `yaml:"umap_epochs"`
}

// CorrelationConfig configures the feature attribution.
type CorrelationConfig struct {
	TopK int `yaml:"top_k"`
}

// CacheConfig selects the feature cache.
type CacheConfig struct {
	Type       string `yaml:"type"` // none, memory or sqlite
	Path       string `yaml:"path"`
	MaxEntries int    `yaml:"max_entries"`
}

// LogConfig configures the zap logger.
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"` // json or console
}

// Config is the root configuration.
type Config struct {
	Server      ServerConfig      `yaml:"server"`
	Features    FeaturesConfig    `yaml:"features"`
	Reduction   ReductionConfig   `yaml:"reduction"`
	Correlation CorrelationConfig `yaml:"correlation"`
	Cache       CacheConfig       `yaml:"cache"`
	Log         LogConfig         `yaml:"log"`
}

// Default returns the default configuration.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Addr:        ":8080",
			ReadTimeout: 30 * time.Second,
			MaxUploadMB: 32,
		},
		Features: FeaturesConfig{
			Period:        1,
			Decomposition: string(stats.MethodSTL),
		},
		Reduction: ReductionConfig{
			Timeout:        2 * time.Minute,
			Perplexity:     30,
			TSNEIterations: 1000,
			NNeighbors:     15,
		},
		Correlation: CorrelationConfig{TopK: correlation.DefaultK},
		Cache: CacheConfig{
			Type:       featcache.TypeMemory,
			MaxEntries: featcache.DefaultMaxEntries,
		},
		Log: LogConfig{Level: "info", Format: "json"},
	}
}

// Load reads the configuration at path and applies environment overrides.
// A missing file returns the defaults.
func Load(path string) (*Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
	case err != nil:
		return nil, fmt.Errorf("failed to read config: %w", err)
	default:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
		}
	}
	if err := applyEnv(cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Save writes cfg to path, creating directories as needed.
func Save(path string, cfg *Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// LoadDotEnv loads variables from the given .env files (default ".env").
// Missing files are ignored.
func LoadDotEnv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("failed to load %s: %w", f, err)
		}
	}
	return nil
}

func applyEnv(cfg *Config) error {
	if v := os.Getenv(EnvAddr); v != "" {
		cfg.Server.Addr = v
	}
	if v := os.Getenv(EnvLogLevel); v != "" {
		cfg.Log.Level = v
	}
	if v := os.Getenv(EnvCachePath); v != "" {
		cfg.Cache.Path = v
		if cfg.Cache.Type == "" || cfg.Cache.Type == featcache.TypeNone {
			cfg.Cache.Type = featcache.TypeSQLite
		}
	}
	if v := os.Getenv(EnvWorkers); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return errs.InvalidParameter("%s=%q is not an integer", EnvWorkers, v)
		}
		cfg.Features.Workers = n
	}
	return nil
}

// Validate checks the values that would otherwise fail deep in a request.
func (c *Config) Validate() error {
	if c.Features.Period < 1 {
		return errs.InvalidParameter("features.period must be a positive integer, got %d", c.Features.Period)
	}
	if c.Features.TileWidth < 0 {
		return errs.InvalidParameter("features.tile_width must be non-negative, got %d", c.Features.TileWidth)
	}
	if _, err := stats.ParseMethod(c.Features.Decomposition); err != nil {
		return err
	}
	if c.Correlation.TopK < 1 {
		return errs.InvalidParameter("correlation.top_k must be a positive integer, got %d", c.Correlation.TopK)
	}
	if c.Server.MaxUploadMB < 1 {
		return errs.InvalidParameter("server.max_upload_mb must be positive, got %d", c.Server.MaxUploadMB)
	}
	if _, err := zap.ParseAtomicLevel(c.Log.Level); err != nil {
		return errs.InvalidParameter("log.level: %v", err)
	}
	return nil
}

// FeatureTable returns the features.Config described by c.
func (c *Config) FeatureTable() (*features.Config, error) {
	method, err := stats.ParseMethod(c.Features.Decomposition)
	if err != nil {
		return nil, err
	}
	fc := features.DefaultConfig()
	fc.TileWidth = c.Features.TileWidth
	if c.Features.Workers > 0 {
		fc.Workers = c.Features.Workers
	}
	fc.Method = method
	fc.Robust = c.Features.Robust
	return fc, nil
}

// Analyzer returns the analysis.Config described by c.
func (c *Config) Analyzer() *analysis.Config {
	return &analysis.Config{
		Timeout: c.Reduction.Timeout,
		TopK:    c.Correlation.TopK,
		Params: analysis.Params{
			Perplexity:  c.Reduction.Perplexity,
			Seed:        c.Reduction.TSNESeed,
			Iterations:  c.Reduction.TSNEIterations,
			NNeighbors:  c.Reduction.NNeighbors,
			RandomState: c.Reduction.RandomState,
			Epochs:      c.Reduction.UMAPEpochs,
		},
	}
}

// OpenCache opens the configured feature cache. A nil Store disables caching.
func (c *Config) OpenCache() (featcache.Store, error) {
	return featcache.Open(c.Cache.Type, c.Cache.Path, c.Cache.MaxEntries)
}

// Build returns a zap logger with the configured level and encoding.
func (l LogConfig) Build() (*zap.Logger, error) {
	level, err := zap.ParseAtomicLevel(l.Level)
	if err != nil {
		return nil, errs.InvalidParameter("log.level: %v", err)
	}
	zc := zap.NewProductionConfig()
	if l.Format == "console" {
		zc = zap.NewDevelopmentConfig()
	}
	zc.Level = level
	return zc.Build()
}
