// pkg/runner/runner.go
package runner

import (
	"context"
	"path/filepath"
	"runtime"
	"sync"

	"go.uber.org/zap"

	"github.com/stationlab/sensor-qc/pkg/audit"
	"github.com/stationlab/sensor-qc/pkg/cleaner"
	"github.com/stationlab/sensor-qc/pkg/loader"
	"github.com/stationlab/sensor-qc/pkg/model"
	"github.com/stationlab/sensor-qc/pkg/report"
)

// SourceReader materializes the frame for a job. CSV and database sources
// plug in behind the same shape.
type SourceReader func(ctx context.Context, job SourceJob) (*model.Frame, error)

// Runner assesses and cleans a batch of measurement sources. Sources are
// processed concurrently by a worker pool; inside one source the cleaning
// steps always run in their documented order, so per-source results are
// identical to a sequential run.
type Runner struct {
	reader   SourceReader
	pipeline *cleaner.Pipeline
	reporter *report.Reporter
	tracker  *audit.Tracker
	writer   *loader.Loader
	logger   *zap.Logger

	columns   []string
	workers   int
	outputDir string
}

// NewRunner creates a runner over the given collaborators. columns is the
// target column set handed to the pipeline and reporter for every source.
func NewRunner(
	reader SourceReader,
	pipeline *cleaner.Pipeline,
	reporter *report.Reporter,
	columns []string,
	logger *zap.Logger,
) *Runner {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Runner{
		reader:   reader,
		pipeline: pipeline,
		reporter: reporter,
		columns:  columns,
		logger:   logger.Named("runner"),
	}
}

// WithTracker sets the optional audit sink and returns the runner
func (r *Runner) WithTracker(tracker *audit.Tracker) *Runner {
	r.tracker = tracker
	return r
}

// WithWorkers sets the worker pool size; 0 selects runtime.NumCPU()
func (r *Runner) WithWorkers(workers int) *Runner {
	r.workers = workers
	return r
}

// WithOutput makes workers write each cleaned frame to
// <dir>/<site>_clean.csv using the given loader
func (r *Runner) WithOutput(ld *loader.Loader, dir string) *Runner {
	r.writer = ld
	r.outputDir = dir
	return r
}

// Run processes all jobs through the worker pool and returns one result
// per job. Per-source failures are recorded on their results; Run only
// returns an error when the context is cancelled before all jobs finish.
func (r *Runner) Run(ctx context.Context, jobs []SourceJob) ([]*RunResult, error) {
	workers := r.workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	if workers > len(jobs) && len(jobs) > 0 {
		workers = len(jobs)
	}

	r.logger.Info("Starting batch run",
		zap.Int("sources", len(jobs)),
		zap.Int("workers", workers))

	jobCh := make(chan SourceJob)
	resultCh := make(chan *RunResult, len(jobs))
	metrics := NewRunMetrics(r.logger)

	var wg sync.WaitGroup
	for id := 1; id <= workers; id++ {
		wg.Add(1)
		go func(workerID int) {
			defer wg.Done()
			for job := range jobCh {
				res := r.process(ctx, job, workerID)
				metrics.RecordResult(res)
				resultCh <- res
			}
		}(id)
	}

	var cancelled error
dispatch:
	for _, job := range jobs {
		select {
		case jobCh <- job:
		case <-ctx.Done():
			cancelled = ctx.Err()
			break dispatch
		}
	}
	close(jobCh)
	wg.Wait()
	close(resultCh)

	results := make([]*RunResult, 0, len(jobs))
	for res := range resultCh {
		results = append(results, res)
	}

	metrics.Finish()
	metrics.LogSummary()

	return results, cancelled
}

// process runs the full assess-clean-assess flow for one source
func (r *Runner) process(ctx context.Context, job SourceJob, workerID int) *RunResult {
	logger := r.logger.With(
		zap.Int("worker_id", workerID),
		zap.String("site", job.Site))
	res := newRunResult(job, workerID)

	frame, err := r.reader(ctx, job)
	if err != nil {
		logger.Error("Failed to load source", zap.Error(err))
		res.AddError(err)
		res.Complete(false)
		return res
	}
	res.RowsRead = frame.NumRows()

	// Baseline quality before any repair
	baseline, err := r.reporter.Report(frame, nil)
	if err != nil {
		res.AddError(err)
		res.Complete(false)
		return res
	}
	res.Baseline = baseline

	cleaned, ops, err := r.pipeline.CleanSource(job.Site, frame, r.columns)
	if err != nil && cleaned == nil {
		// Schema failures abort the source before any mutation
		logger.Error("Cleaning failed", zap.Error(err))
		res.AddError(err)
		res.Complete(false)
		return res
	}
	if err != nil {
		// Per-column data errors: the rest of the frame was still cleaned
		logger.Warn("Some columns could not be assessed", zap.Error(err))
		res.AddError(err)
		res.ColumnErrors = cleaner.CountDataErrors(err)
	}
	res.Frame = cleaned
	res.Operations = len(ops)

	after, err := r.reporter.Report(cleaned, nil)
	if err != nil {
		res.AddError(err)
		res.Complete(false)
		return res
	}
	res.Cleaned = after

	if r.tracker != nil {
		if err := r.tracker.Record(ctx, ops); err != nil {
			logger.Error("Failed to record audit trail", zap.Error(err))
			res.AddError(err)
			res.Complete(false)
			return res
		}
	}

	if r.writer != nil && r.outputDir != "" {
		res.OutputPath = filepath.Join(r.outputDir, job.Site+"_clean.csv")
		if err := r.writer.WriteFile(res.OutputPath, cleaned); err != nil {
			res.AddError(err)
			res.Complete(false)
			return res
		}
	}

	logger.Info("Source processed",
		zap.Int("rows", res.RowsRead),
		zap.Int("operations", res.Operations),
		zap.Int("defects_repaired", res.DefectsRepaired()))

	res.Complete(true)
	return res
}
