// pkg/runner/metrics.go
package runner

import (
	"sync"
	"time"

	"go.uber.org/zap"
)

// RunMetrics tracks aggregate metrics across all sources of a batch run
type RunMetrics struct {
	mu     sync.Mutex
	logger *zap.Logger

	StartTime         time.Time
	EndTime           time.Time
	SuccessfulSources []string
	FailedSources     map[string]string // site name -> first error message
	TotalRowsRead     int64
	TotalOperations   int64
	TotalColumnErrors int64
	DefectsBefore     int64
	DefectsAfter      int64
}

// NewRunMetrics creates a new RunMetrics instance
func NewRunMetrics(logger *zap.Logger) *RunMetrics {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RunMetrics{
		logger:            logger,
		StartTime:         time.Now(),
		SuccessfulSources: make([]string, 0),
		FailedSources:     make(map[string]string),
	}
}

// RecordResult folds one source result into the aggregate
func (m *RunMetrics) RecordResult(res *RunResult) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if res.Success {
		m.SuccessfulSources = append(m.SuccessfulSources, res.Site)
	} else {
		msg := "unknown error"
		if len(res.Errors) > 0 {
			msg = res.Errors[0]
		}
		m.FailedSources[res.Site] = msg
	}

	m.TotalRowsRead += int64(res.RowsRead)
	m.TotalOperations += int64(res.Operations)
	m.TotalColumnErrors += int64(res.ColumnErrors)
	if res.Baseline != nil {
		m.DefectsBefore += int64(res.Baseline.TotalDefects())
	}
	if res.Cleaned != nil {
		m.DefectsAfter += int64(res.Cleaned.TotalDefects())
	}
}

// Duration returns the total duration of the batch run
func (m *RunMetrics) Duration() time.Duration {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.EndTime.IsZero() {
		return time.Since(m.StartTime)
	}
	return m.EndTime.Sub(m.StartTime)
}

// Finish marks the batch run as complete
func (m *RunMetrics) Finish() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.EndTime = time.Now()
}

// LogSummary emits the aggregate metrics of the run
func (m *RunMetrics) LogSummary() {
	m.mu.Lock()
	defer m.mu.Unlock()

	failed := make([]string, 0, len(m.FailedSources))
	for site := range m.FailedSources {
		failed = append(failed, site)
	}

	m.logger.Info("Batch run summary",
		zap.Duration("duration", m.EndTime.Sub(m.StartTime)),
		zap.Int("successful_sources", len(m.SuccessfulSources)),
		zap.Strings("failed_sources", failed),
		zap.Int64("rows_read", m.TotalRowsRead),
		zap.Int64("cleaning_operations", m.TotalOperations),
		zap.Int64("column_errors", m.TotalColumnErrors),
		zap.Int64("defects_before", m.DefectsBefore),
		zap.Int64("defects_after", m.DefectsAfter))
}
