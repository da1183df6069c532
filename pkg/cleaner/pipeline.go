// pkg/cleaner/pipeline.go
package cleaner

import (
	"errors"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/stationlab/sensor-qc/pkg/model"
)

// PipelineConfig names the columns with special roles during cleaning
type PipelineConfig struct {
	// CommentsColumn is the free-text annotation column dropped before
	// filling; its absence is not an error
	CommentsColumn string

	// HumidityColumn is clamped to [0,100] regardless of the caller's
	// column set
	HumidityColumn string

	// ExtraOutlierColumns take part in outlier replacement in addition
	// to the caller's column set (skipped when absent from the frame)
	ExtraOutlierColumns []string
}

// DefaultPipelineConfig returns the column roles of the solar measurement
// layout: Comments annotations, RH relative humidity, Tamb ambient
// temperature
func DefaultPipelineConfig() PipelineConfig {
	return PipelineConfig{
		CommentsColumn:      "Comments",
		HumidityColumn:      "RH",
		ExtraOutlierColumns: []string{"Tamb"},
	}
}

// Pipeline repairs data-quality defects in a fixed, non-configurable step
// order: drop the annotation column, forward-fill missing values, clamp
// values into their domain ranges, then replace statistical outliers with
// the column median.
type Pipeline struct {
	detector OutlierDetector
	cfg      PipelineConfig
	logger   *zap.Logger
}

// NewPipeline creates a cleaning pipeline. A nil detector selects the IQR
// method with the standard 1.5 multiplier.
func NewPipeline(detector OutlierDetector, cfg PipelineConfig, logger *zap.Logger) (*Pipeline, error) {
	if detector == nil {
		d, err := NewIQRDetector(DefaultIQRMultiplier)
		if err != nil {
			return nil, err
		}
		detector = d
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Pipeline{
		detector: detector,
		cfg:      cfg,
		logger:   logger.Named("cleaner"),
	}, nil
}

// Detector returns the outlier detection strategy in use
func (p *Pipeline) Detector() OutlierDetector {
	return p.detector
}

// Clean runs the full pipeline over the frame for the given target
// columns and returns the cleaned frame plus the audit trail of every
// repair. The caller's frame is never mutated; all steps run on a deep
// copy. Column validation happens before any mutation, so a SchemaError
// leaves nothing half-cleaned. Columns that cannot supply statistics for
// outlier detection are left as filled/clipped and reported as
// DataErrors; the cleaned frame is still returned alongside them.
func (p *Pipeline) Clean(f *model.Frame, columns []string) (*model.Frame, []model.CleaningOperation, error) {
	return p.CleanSource("", f, columns)
}

// CleanSource is Clean with a logical source name (site or file) recorded
// on every cleaning operation.
func (p *Pipeline) CleanSource(source string, f *model.Frame, columns []string) (*model.Frame, []model.CleaningOperation, error) {
	// Fail fast before touching anything
	if err := validateNumericColumns(f, columns); err != nil {
		return nil, nil, err
	}

	runID := newRunID()
	out := f.Copy()
	var ops []model.CleaningOperation

	// Step 1: drop the annotation column if present
	out.Drop(p.cfg.CommentsColumn)

	// Step 2: forward-fill missing values across all columns
	ops = append(ops, forwardFill(out, runID, source)...)

	// Step 3: clamp into domain ranges. Caller columns get the
	// non-negative default; the humidity column is always [0,100].
	policy := make(model.RangePolicy, len(columns)+1)
	for _, name := range columns {
		policy[name] = model.NonNegative()
	}
	if p.cfg.HumidityColumn != "" {
		policy[p.cfg.HumidityColumn] = model.Between(0, 100)
	}
	ops = append(ops, applyRangePolicy(out, policy, runID, source)...)

	// Step 4: replace outliers over the caller columns plus the
	// configured extras
	outlierCols := p.outlierColumns(out, columns)
	replaceOps, err := replaceOutliers(out, outlierCols, p.detector, runID, source)
	ops = append(ops, replaceOps...)

	p.logger.Info("Cleaning run complete",
		zap.String("run_id", runID),
		zap.String("source", source),
		zap.String("detector", p.detector.Name()),
		zap.Int("rows", out.NumRows()),
		zap.Int("columns", len(columns)),
		zap.Int("operations", len(ops)),
		zap.Int("column_errors", len(multierr.Errors(err))))

	return out, ops, err
}

// outlierColumns merges the caller's columns with the configured extras,
// dropping duplicates and extras the frame does not carry
func (p *Pipeline) outlierColumns(f *model.Frame, columns []string) []string {
	seen := make(map[string]bool, len(columns))
	merged := make([]string, 0, len(columns)+len(p.cfg.ExtraOutlierColumns))

	for _, name := range columns {
		if !seen[name] {
			seen[name] = true
			merged = append(merged, name)
		}
	}
	for _, name := range p.cfg.ExtraOutlierColumns {
		if seen[name] || !f.HasColumn(name) {
			continue
		}
		if col, _ := f.Column(name); col.Kind != model.KindNumeric {
			continue
		}
		seen[name] = true
		merged = append(merged, name)
	}
	return merged
}

// CountDataErrors returns how many DataErrors an aggregated cleaning
// error carries
func CountDataErrors(err error) int {
	count := 0
	for _, e := range multierr.Errors(err) {
		var de *model.DataError
		if errors.As(e, &de) {
			count++
		}
	}
	return count
}
