// cmd/sensor-qc/main.go
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/stationlab/sensor-qc/pkg/audit"
	"github.com/stationlab/sensor-qc/pkg/cleaner"
	"github.com/stationlab/sensor-qc/pkg/config"
	"github.com/stationlab/sensor-qc/pkg/connector"
	"github.com/stationlab/sensor-qc/pkg/loader"
	"github.com/stationlab/sensor-qc/pkg/model"
	"github.com/stationlab/sensor-qc/pkg/report"
	"github.com/stationlab/sensor-qc/pkg/runner"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "sensor-qc:", err)
		os.Exit(1)
	}
}

func run() error {
	// Load .env if present; real environments configure directly
	_ = godotenv.Load()

	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	logger, err := buildLogger(cfg)
	if err != nil {
		return fmt.Errorf("failed to build logger: %w", err)
	}
	defer logger.Sync()
	zap.ReplaceGlobals(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	detector, err := cleaner.NewDetector(cfg.Detector, cfg.IQRMultiplier, cfg.ZScoreThreshold)
	if err != nil {
		return err
	}

	pipeline, err := cleaner.NewPipeline(detector, cleaner.PipelineConfig{
		CommentsColumn:      cfg.CommentsColumn,
		HumidityColumn:      cfg.HumidityColumn,
		ExtraOutlierColumns: cfg.ExtraOutlierColumns,
	}, logger)
	if err != nil {
		return err
	}

	ranges := cfg.ReportRanges
	if ranges == nil {
		ranges = report.DefaultRanges()
	}
	reporter := report.NewReporter(ranges, logger)

	ld := loader.NewLoader(cfg.TimestampColumn, []string{cfg.CommentsColumn}, logger)

	jobs, reader, closeSource, err := buildSource(ctx, cfg, ld)
	if err != nil {
		return err
	}
	defer closeSource()

	r := runner.NewRunner(reader, pipeline, reporter, cfg.TargetColumns, logger).
		WithWorkers(cfg.WorkerPoolSize).
		WithOutput(ld, cfg.OutputDir)

	if cfg.AuditEnabled {
		pg, err := connector.NewPostgresConnector(ctx, cfg.Postgres)
		if err != nil {
			return err
		}
		defer pg.Close()
		if err := pg.Validate(); err != nil {
			return err
		}

		tracker, err := audit.NewTracker(pg.Sqlx(), logger)
		if err != nil {
			return err
		}
		r = r.WithTracker(tracker)
	}

	results, err := r.Run(ctx, jobs)
	if err != nil {
		return err
	}

	failures := 0
	for _, res := range results {
		printResult(res)
		if !res.Success {
			failures++
		}
	}
	if failures > 0 {
		return fmt.Errorf("%d of %d sources failed", failures, len(results))
	}
	return nil
}

// buildSource assembles the jobs and the frame reader for the configured
// source kind
func buildSource(ctx context.Context, cfg *config.Config, ld *loader.Loader) ([]runner.SourceJob, runner.SourceReader, func(), error) {
	noop := func() {}

	if cfg.Source == "snowflake" {
		sf, err := connector.NewSnowflakeConnector(ctx, cfg.Snowflake)
		if err != nil {
			return nil, nil, noop, err
		}
		if err := sf.Validate(); err != nil {
			sf.Close()
			return nil, nil, noop, err
		}

		columns := snowflakeColumns(cfg)
		jobs := []runner.SourceJob{runner.NewSourceJob(strings.ToLower(cfg.MeasurementsTable), cfg.MeasurementsTable)}
		reader := func(ctx context.Context, job runner.SourceJob) (*model.Frame, error) {
			return sf.FetchMeasurements(ctx, job.Path, cfg.TimestampColumn, columns)
		}
		return jobs, reader, func() { sf.Close() }, nil
	}

	paths, err := filepath.Glob(filepath.Join(cfg.DataDir, "*.csv"))
	if err != nil {
		return nil, nil, noop, fmt.Errorf("failed to list %s: %w", cfg.DataDir, err)
	}
	if len(paths) == 0 {
		return nil, nil, noop, fmt.Errorf("no CSV files found in %s", cfg.DataDir)
	}

	jobs := make([]runner.SourceJob, 0, len(paths))
	for _, path := range paths {
		site := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
		jobs = append(jobs, runner.NewSourceJob(site, path))
	}
	reader := func(_ context.Context, job runner.SourceJob) (*model.Frame, error) {
		return ld.ReadFile(job.Path)
	}
	return jobs, reader, noop, nil
}

// snowflakeColumns is the numeric column set fetched from the
// measurements table: targets, extras and the humidity column, deduped
func snowflakeColumns(cfg *config.Config) []string {
	seen := make(map[string]bool)
	var columns []string
	for _, group := range [][]string{cfg.TargetColumns, cfg.ExtraOutlierColumns, {cfg.HumidityColumn}} {
		for _, name := range group {
			if name == "" || seen[name] {
				continue
			}
			seen[name] = true
			columns = append(columns, name)
		}
	}
	return columns
}

// printResult renders the before/after quality reports for one source
func printResult(res *runner.RunResult) {
	fmt.Printf("=== %s (%d rows, %d repairs, %s)\n",
		res.Site, res.RowsRead, res.Operations, res.Duration.Round(time.Millisecond))

	if !res.Success {
		for _, msg := range res.Errors {
			fmt.Println("  error:", msg)
		}
		return
	}

	fmt.Println("--- before cleaning")
	fmt.Print(res.Baseline.String())
	fmt.Println("--- after cleaning")
	fmt.Print(res.Cleaned.String())
	if res.OutputPath != "" {
		fmt.Println("cleaned output:", res.OutputPath)
	}
}

// buildLogger constructs the zap logger from configuration
func buildLogger(cfg *config.Config) (*zap.Logger, error) {
	level, err := zapcore.ParseLevel(cfg.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", cfg.LogLevel, err)
	}

	var zapCfg zap.Config
	if cfg.LogFormat == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}
	zapCfg.Level = zap.NewAtomicLevelAt(level)

	return zapCfg.Build()
}
