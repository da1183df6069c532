// pkg/runner/job.go
package runner

import (
	"time"

	"github.com/google/uuid"

	"github.com/stationlab/sensor-qc/pkg/model"
)

// SourceJob represents one measurement source (a per-site file or table)
// to load, assess and clean
type SourceJob struct {
	ID        string    // Unique job identifier
	Site      string    // Logical site name, recorded on every operation
	Path      string    // Source file path (unused for database sources)
	CreatedAt time.Time // Job creation timestamp
}

// NewSourceJob creates a new source job with defaults
func NewSourceJob(site, path string) SourceJob {
	return SourceJob{
		ID:        uuid.New().String(),
		Site:      site,
		Path:      path,
		CreatedAt: time.Now(),
	}
}

// RunResult represents the outcome of assessing and cleaning one source
type RunResult struct {
	JobID        string
	Site         string
	Success      bool
	RowsRead     int
	Operations   int
	ColumnErrors int
	Baseline     *model.QualityReport // Quality before cleaning
	Cleaned      *model.QualityReport // Quality after cleaning
	Frame        *model.Frame         // The cleaned frame
	OutputPath   string               // Where the cleaned CSV was written, if anywhere
	Errors       []string
	StartTime    time.Time
	EndTime      time.Time
	Duration     time.Duration
	WorkerID     int
}

// newRunResult initializes a result for a job
func newRunResult(job SourceJob, workerID int) *RunResult {
	return &RunResult{
		JobID:     job.ID,
		Site:      job.Site,
		StartTime: time.Now(),
		WorkerID:  workerID,
	}
}

// Complete marks the run as complete and calculates duration
func (r *RunResult) Complete(success bool) {
	r.EndTime = time.Now()
	r.Duration = r.EndTime.Sub(r.StartTime)
	r.Success = success
}

// AddError records an error against the result
func (r *RunResult) AddError(err error) {
	r.Errors = append(r.Errors, err.Error())
}

// DefectsRepaired returns how many defects the cleaning removed, when
// both reports are present
func (r *RunResult) DefectsRepaired() int {
	if r.Baseline == nil || r.Cleaned == nil {
		return 0
	}
	return r.Baseline.TotalDefects() - r.Cleaned.TotalDefects()
}
