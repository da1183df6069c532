// pkg/runner/runner_test.go
package runner

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stationlab/sensor-qc/pkg/cleaner"
	"github.com/stationlab/sensor-qc/pkg/loader"
	"github.com/stationlab/sensor-qc/pkg/model"
	"github.com/stationlab/sensor-qc/pkg/report"
)

func testFrame(t *testing.T) *model.Frame {
	t.Helper()
	f, err := model.NewFrame(
		model.NewNumericSeries("GHI", []float64{1, 2, 3, 100, 4, 5}),
		model.NewNumericSeries("RH", []float64{5, 50, 110, 40, 60, 55}),
	)
	require.NoError(t, err)
	return f
}

func newTestRunner(t *testing.T, reader SourceReader) *Runner {
	t.Helper()

	p, err := cleaner.NewPipeline(nil, cleaner.DefaultPipelineConfig(), nil)
	require.NoError(t, err)
	r := report.NewReporter(report.DefaultRanges(), nil)

	return NewRunner(reader, p, r, []string{"GHI"}, nil)
}

func TestRun(t *testing.T) {
	reader := func(_ context.Context, job SourceJob) (*model.Frame, error) {
		return testFrame(t), nil
	}

	jobs := []SourceJob{
		NewSourceJob("station-a", ""),
		NewSourceJob("station-b", ""),
		NewSourceJob("station-c", ""),
	}

	r := newTestRunner(t, reader).WithWorkers(2)
	results, err := r.Run(context.Background(), jobs)
	require.NoError(t, err)
	require.Len(t, results, 3)

	sites := make(map[string]bool)
	for _, res := range results {
		sites[res.Site] = true
		assert.True(t, res.Success)
		assert.Equal(t, 6, res.RowsRead)
		require.NotNil(t, res.Baseline)
		require.NotNil(t, res.Cleaned)
		// The 100 outlier and the RH excursion were repaired
		assert.Equal(t, 2, res.Operations)
		assert.Positive(t, res.DefectsRepaired())
		assert.Zero(t, res.Cleaned.TotalDefects())
	}
	assert.Len(t, sites, 3)
}

func TestRunFailedSourceDoesNotStopOthers(t *testing.T) {
	reader := func(_ context.Context, job SourceJob) (*model.Frame, error) {
		if job.Site == "station-b" {
			return nil, errors.New("connection reset")
		}
		return testFrame(t), nil
	}

	jobs := []SourceJob{
		NewSourceJob("station-a", ""),
		NewSourceJob("station-b", ""),
		NewSourceJob("station-c", ""),
	}

	r := newTestRunner(t, reader).WithWorkers(1)
	results, err := r.Run(context.Background(), jobs)
	require.NoError(t, err)
	require.Len(t, results, 3)

	for _, res := range results {
		if res.Site == "station-b" {
			assert.False(t, res.Success)
			require.NotEmpty(t, res.Errors)
			assert.Contains(t, res.Errors[0], "connection reset")
			continue
		}
		assert.True(t, res.Success)
	}
}

func TestRunSchemaFailureIsPerSource(t *testing.T) {
	reader := func(_ context.Context, job SourceJob) (*model.Frame, error) {
		// No GHI column, so cleaning fails validation
		return model.NewFrame(model.NewNumericSeries("DNI", []float64{1, 2}))
	}

	r := newTestRunner(t, reader)
	results, err := r.Run(context.Background(), []SourceJob{NewSourceJob("station-a", "")})
	require.NoError(t, err)
	require.Len(t, results, 1)

	assert.False(t, results[0].Success)
	require.NotEmpty(t, results[0].Errors)
	assert.Contains(t, results[0].Errors[0], "GHI")
}

func TestRunWritesOutput(t *testing.T) {
	reader := func(_ context.Context, job SourceJob) (*model.Frame, error) {
		return testFrame(t), nil
	}

	dir := t.TempDir()
	ld := loader.NewLoader("Timestamp", nil, nil)
	r := newTestRunner(t, reader).WithOutput(ld, dir)

	results, err := r.Run(context.Background(), []SourceJob{NewSourceJob("station-a", "")})
	require.NoError(t, err)
	require.Len(t, results, 1)
	require.True(t, results[0].Success)

	want := filepath.Join(dir, "station-a_clean.csv")
	assert.Equal(t, want, results[0].OutputPath)
	_, err = os.Stat(want)
	assert.NoError(t, err)
}

func TestRunCancelledContext(t *testing.T) {
	reader := func(_ context.Context, job SourceJob) (*model.Frame, error) {
		return testFrame(t), nil
	}

	jobs := make([]SourceJob, 20)
	for i := range jobs {
		jobs[i] = NewSourceJob(fmt.Sprintf("station-%d", i), "")
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	r := newTestRunner(t, reader).WithWorkers(1)
	results, err := r.Run(ctx, jobs)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Less(t, len(results), len(jobs))
}

func TestRunResultLifecycle(t *testing.T) {
	job := NewSourceJob("station-a", "data/station-a.csv")
	assert.NotEmpty(t, job.ID)

	res := newRunResult(job, 3)
	assert.Equal(t, job.ID, res.JobID)
	assert.Equal(t, 3, res.WorkerID)

	res.AddError(errors.New("boom"))
	res.Complete(false)
	assert.False(t, res.Success)
	assert.Equal(t, []string{"boom"}, res.Errors)
	assert.False(t, res.EndTime.IsZero())
}

func TestRunMetrics(t *testing.T) {
	m := NewRunMetrics(nil)

	ok := &RunResult{Site: "station-a", Success: true, RowsRead: 10, Operations: 3}
	bad := &RunResult{Site: "station-b", Errors: []string{"boom"}}
	m.RecordResult(ok)
	m.RecordResult(bad)
	m.Finish()

	assert.Equal(t, []string{"station-a"}, m.SuccessfulSources)
	assert.Equal(t, map[string]string{"station-b": "boom"}, m.FailedSources)
	assert.Equal(t, int64(10), m.TotalRowsRead)
	assert.Equal(t, int64(3), m.TotalOperations)
	assert.GreaterOrEqual(t, m.Duration(), time.Duration(0))
}
