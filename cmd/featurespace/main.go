// Command featurespace computes time-series features, projects them to three
// dimensions and ranks the features behind every axis.
//
//	featurespace [-config featurespace.yaml] serve
//	featurespace features [-period 12] [-fill 0] series.csv
//	featurespace project [-algorithm UMAP] [-k 5] [-period 12] [-selected A,B] series.xlsx
//	featurespace describe [-id A] [-period 12] series.csv
//	featurespace long [-o long.csv] series.xlsx
//
// CSV inputs with non-standard headers can name their columns with
// -id-column, -date-column and -value-column.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"go.uber.org/zap"

	"github.com/sartorproj/featurespace/analysis"
	"github.com/sartorproj/featurespace/config"
	"github.com/sartorproj/featurespace/features"
	"github.com/sartorproj/featurespace/server"
	"github.com/sartorproj/featurespace/timeseries"
)

const usage = `Usage: featurespace [-config file] <command> [flags] [file]

Commands:
  serve      run the HTTP API
  features   print the feature matrix of a .csv or .xlsx file
  project    print one projection with its feature ranking
  describe   print the single-series report
  long       convert a wide table to long format (unique_id,ds,y)
`

func main() {
	if err := config.LoadDotEnv(); err != nil {
		log.Fatalf("failed to load .env: %v", err)
	}

	var cfgPath string
	flag.StringVar(&cfgPath, "config", "featurespace.yaml", "Path to YAML config file (defaults apply when missing)")
	flag.Usage = func() {
		fmt.Fprint(flag.CommandLine.Output(), usage)
		flag.PrintDefaults()
	}
	flag.Parse()
	if flag.NArg() == 0 {
		flag.Usage()
		os.Exit(2)
	}

	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	logger, err := cfg.Log.Build()
	if err != nil {
		log.Fatalf("failed to build logger: %v", err)
	}
	defer logger.Sync()
	sugar := logger.Sugar()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := newApp(cfg, sugar)
	if err != nil {
		sugar.Fatalw("Failed to initialize", "error", err)
	}
	defer app.close()

	cmd, args := flag.Arg(0), flag.Args()[1:]
	switch cmd {
	case "serve":
		err = server.New(cfg, app.analyzer, sugar).Run(ctx)
	case "features":
		err = app.features(ctx, args)
	case "project":
		err = app.project(ctx, args)
	case "describe":
		err = app.describe(args)
	case "long":
		err = app.long(args)
	default:
		flag.Usage()
		os.Exit(2)
	}
	if err != nil {
		sugar.Errorw("Command failed", "command", cmd, "error", err)
		logger.Sync()
		os.Exit(1)
	}
}

type app struct {
	cfg      *config.Config
	analyzer *analysis.Analyzer
	close    func()
}

func newApp(cfg *config.Config, logger *zap.SugaredLogger) (*app, error) {
	fc, err := cfg.FeatureTable()
	if err != nil {
		return nil, err
	}
	cache, err := cfg.OpenCache()
	if err != nil {
		return nil, fmt.Errorf("failed to open feature cache: %w", err)
	}
	closeCache := func() {}
	if cache != nil {
		closeCache = func() {
			if err := cache.Close(); err != nil {
				logger.Warnw("Failed to close feature cache", "error", err)
			}
		}
	}

	table, err := features.NewTable(fc, logger, cache)
	if err != nil {
		closeCache()
		return nil, err
	}
	logger.Debugw("Initialized", "cache", cfg.Cache.Type, "workers", fc.Workers, "decomposition", fc.Method)
	return &app{
		cfg:      cfg,
		analyzer: analysis.NewAnalyzer(table, cfg.Analyzer(), logger),
		close:    closeCache,
	}, nil
}

// input selects how an input file is read.
type input struct {
	idColumn, dateColumn, valueColumn string
	filter                            string // keep one series id (CSV only)
}

func inputFlags(fs *flag.FlagSet) *input {
	in := &input{}
	fs.StringVar(&in.idColumn, "id-column", "", "CSV column holding series ids (default unique_id)")
	fs.StringVar(&in.dateColumn, "date-column", "", "CSV column holding the index (default ds)")
	fs.StringVar(&in.valueColumn, "value-column", "", "CSV column holding values (default y)")
	return in
}

func (a *app) features(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("features", flag.ExitOnError)
	in := inputFlags(fs)
	period := fs.Int("period", a.cfg.Features.Period, "Seasonal period")
	fill := fs.Float64("fill", a.cfg.Features.Fill, "Value for features that cannot be computed")
	fs.Parse(args)

	coll, err := in.read(fs.Arg(0))
	if err != nil {
		return err
	}
	m, err := a.analyzer.ComputeFeatures(ctx, coll, *period, *fill)
	if err != nil {
		return err
	}
	return printJSON(m)
}

func (a *app) project(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("project", flag.ExitOnError)
	in := inputFlags(fs)
	period := fs.Int("period", a.cfg.Features.Period, "Seasonal period")
	fill := fs.Float64("fill", a.cfg.Features.Fill, "Value for features that cannot be computed")
	algorithm := fs.String("algorithm", string(analysis.PCA), "PCA, TSNE or UMAP")
	k := fs.Int("k", a.analyzer.TopK(), "Features ranked per axis")
	selected := fs.String("selected", "", "Comma-separated series ids to highlight")
	fs.Parse(args)

	alg, err := analysis.ParseAlgorithm(*algorithm)
	if err != nil {
		return err
	}
	coll, err := in.read(fs.Arg(0))
	if err != nil {
		return err
	}
	m, err := a.analyzer.ComputeFeatures(ctx, coll, *period, *fill)
	if err != nil {
		return err
	}
	result, err := a.analyzer.Project(ctx, m, alg, nil, *k)
	if err != nil {
		return err
	}
	if *selected != "" {
		result.Projection.Label(strings.Split(*selected, ","), nil)
	}
	return printJSON(result)
}

func (a *app) describe(args []string) error {
	fs := flag.NewFlagSet("describe", flag.ExitOnError)
	in := inputFlags(fs)
	period := fs.Int("period", a.cfg.Features.Period, "Seasonal period")
	id := fs.String("id", "", "Series id (optional when the file holds one series)")
	lags := fs.Int("lags", 0, "Correlogram lags (0: default)")
	fs.Parse(args)
	in.filter = *id

	coll, err := in.read(fs.Arg(0))
	if err != nil {
		return err
	}
	name := *id
	if name == "" {
		if coll.Len() != 1 {
			return fmt.Errorf("-id is required: %s holds %d series", fs.Arg(0), coll.Len())
		}
		name = coll.IDs()[0]
	}
	series, err := coll.Select(name)
	if err != nil {
		return err
	}
	report, err := analysis.DescribeSeries(series, *period, *lags)
	if err != nil {
		return err
	}
	return printJSON(report)
}

func (a *app) long(args []string) error {
	fs := flag.NewFlagSet("long", flag.ExitOnError)
	in := inputFlags(fs)
	out := fs.String("o", "", "Output file (default stdout)")
	fs.Parse(args)

	coll, err := in.read(fs.Arg(0))
	if err != nil {
		return err
	}
	if *out == "" {
		return timeseries.WriteCSV(os.Stdout, coll)
	}
	return timeseries.SaveCSV(coll, *out)
}

// read loads path. CSV files with custom column names go through
// timeseries.LoadCSV; everything else through the upload reader.
func (in *input) read(path string) (*timeseries.Collection, error) {
	if path == "" {
		return nil, errors.New("missing input file")
	}
	if in.idColumn != "" || in.dateColumn != "" || in.valueColumn != "" {
		if !strings.EqualFold(filepath.Ext(path), ".csv") {
			return nil, fmt.Errorf("column flags apply to .csv files only, got %s", path)
		}
		opts := timeseries.DefaultCSVOptions()
		if in.idColumn != "" {
			opts.IDColumn = in.idColumn
		}
		if in.dateColumn != "" {
			opts.DateColumn = in.dateColumn
		}
		if in.valueColumn != "" {
			opts.ValueColumn = in.valueColumn
		}
		opts.IDFilter = in.filter
		return timeseries.LoadCSV(path, opts)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	table, err := timeseries.ReadTable(path, f)
	if err != nil {
		return nil, err
	}
	return timeseries.ToLong(table)
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
