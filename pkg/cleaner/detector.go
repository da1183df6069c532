// pkg/cleaner/detector.go
package cleaner

import (
	"errors"
	"fmt"
	"math"

	"go.uber.org/multierr"

	"github.com/stationlab/sensor-qc/pkg/model"
	"github.com/stationlab/sensor-qc/pkg/stats"
)

// Default detector parameters
const (
	DefaultIQRMultiplier   = 1.5
	DefaultZScoreThreshold = 3.0
)

// OutlierDetector flags which values of a column are outliers and computes
// the replacement value: the column median over non-missing values, taken
// before any replacement happens. Missing markers are never flagged.
// Implementations are interchangeable strategies; the pipeline can switch
// method without structural change.
type OutlierDetector interface {
	// Name identifies the detection method
	Name() string

	// Reason returns the cleaning reason recorded for replacements
	Reason() string

	// Detect returns a per-row outlier mask and the replacement value.
	// It returns stats.ErrNoValues when the column has zero non-missing
	// values.
	Detect(values []float64) (mask []bool, replacement float64, err error)
}

// IQRDetector detects outliers using the interquartile range: values
// outside [Q1 - k*IQR, Q3 + k*IQR] are flagged.
type IQRDetector struct {
	Multiplier float64
}

// NewIQRDetector creates an IQR detector with the given multiplier.
// The multiplier must be positive; 1.5 is the box-plot standard.
func NewIQRDetector(multiplier float64) (*IQRDetector, error) {
	if multiplier <= 0 {
		return nil, fmt.Errorf("iqr multiplier must be positive, got %v", multiplier)
	}
	return &IQRDetector{Multiplier: multiplier}, nil
}

// Name identifies the detection method
func (d *IQRDetector) Name() string { return "iqr" }

// Reason returns the cleaning reason recorded for replacements
func (d *IQRDetector) Reason() string { return model.ReasonIQRBounds }

// Detect flags values outside the IQR bounds. When IQR is zero (constant
// or near-constant column) the bounds collapse to Q1 and every value not
// equal to Q1 is flagged; this degenerate behavior is intentional and
// kept as-is.
func (d *IQRDetector) Detect(values []float64) ([]bool, float64, error) {
	kept := nonMissing(values)
	if len(kept) == 0 {
		return nil, 0, stats.ErrNoValues
	}

	q1, err := stats.Percentile(kept, 25)
	if err != nil {
		return nil, 0, err
	}
	q3, err := stats.Percentile(kept, 75)
	if err != nil {
		return nil, 0, err
	}
	median, err := stats.Median(kept)
	if err != nil {
		return nil, 0, err
	}

	iqr := q3 - q1
	low := q1 - d.Multiplier*iqr
	high := q3 + d.Multiplier*iqr

	mask := make([]bool, len(values))
	for i, v := range values {
		if math.IsNaN(v) {
			continue
		}
		mask[i] = v < low || v > high
	}
	return mask, median, nil
}

// ZScoreDetector detects outliers by normalized deviation from the mean:
// values with |value - mean| / stddev above the threshold are flagged.
type ZScoreDetector struct {
	Threshold float64
}

// NewZScoreDetector creates a z-score detector with the given threshold.
// The threshold must be positive; 3 is the usual choice.
func NewZScoreDetector(threshold float64) (*ZScoreDetector, error) {
	if threshold <= 0 {
		return nil, fmt.Errorf("zscore threshold must be positive, got %v", threshold)
	}
	return &ZScoreDetector{Threshold: threshold}, nil
}

// Name identifies the detection method
func (d *ZScoreDetector) Name() string { return "zscore" }

// Reason returns the cleaning reason recorded for replacements
func (d *ZScoreDetector) Reason() string { return model.ReasonZScoreThreshold }

// Detect flags values whose absolute z-score exceeds the threshold. With
// zero standard deviation every z-score is undefined, so every value not
// equal to the mean is flagged instead of dividing by zero; this mirrors
// the IQR detector's degenerate-column handling.
func (d *ZScoreDetector) Detect(values []float64) ([]bool, float64, error) {
	kept := nonMissing(values)
	if len(kept) == 0 {
		return nil, 0, stats.ErrNoValues
	}

	mean, stddev, err := stats.MeanStdDev(kept)
	if err != nil {
		return nil, 0, err
	}
	median, err := stats.Median(kept)
	if err != nil {
		return nil, 0, err
	}

	mask := make([]bool, len(values))
	for i, v := range values {
		if math.IsNaN(v) {
			continue
		}
		if stddev == 0 {
			mask[i] = v != mean
			continue
		}
		mask[i] = math.Abs(v-mean)/stddev > d.Threshold
	}
	return mask, median, nil
}

// DetectAndReplace applies a detector to the given numeric columns of a
// frame and replaces flagged values with the column median. The input
// frame is never mutated; a new frame is returned together with the
// cleaning operations performed. A column that cannot supply statistics
// (zero non-missing values) is left untouched and reported as a DataError
// while the remaining columns still complete.
func DetectAndReplace(f *model.Frame, columns []string, d OutlierDetector) (*model.Frame, []model.CleaningOperation, error) {
	if err := validateNumericColumns(f, columns); err != nil {
		return nil, nil, err
	}

	out := f.Copy()
	ops, err := replaceOutliers(out, columns, d, newRunID(), "")
	return out, ops, err
}

// replaceOutliers mutates the frame in place, replacing flagged values
// with the column median. Per-column DataErrors are aggregated; the
// failing column keeps its original values.
func replaceOutliers(f *model.Frame, columns []string, d OutlierDetector, runID, source string) ([]model.CleaningOperation, error) {
	var ops []model.CleaningOperation
	var errs error

	for _, name := range columns {
		col, ok := f.Column(name)
		if !ok {
			// Callers validate up front; a vanished column here is a bug.
			errs = multierr.Append(errs, model.NewMissingColumnError(name))
			continue
		}

		mask, replacement, err := d.Detect(col.Floats)
		if err != nil {
			if errors.Is(err, stats.ErrNoValues) {
				errs = multierr.Append(errs, model.NewDataError(name, d.Name()+" bounds", err))
				continue
			}
			return ops, err
		}

		for i, isOutlier := range mask {
			if !isOutlier {
				continue
			}
			original := col.Floats[i]
			col.Floats[i] = replacement
			ops = append(ops, newOperation(runID, source, name, i,
				floatPtr(original), formatFloat(replacement),
				model.OpOutlierReplace, d.Reason()))
		}
	}

	return ops, errs
}

// validateNumericColumns fails fast with a SchemaError if any referenced
// column is absent or not numeric, before anything is mutated.
func validateNumericColumns(f *model.Frame, columns []string) error {
	for _, name := range columns {
		col, ok := f.Column(name)
		if !ok {
			return model.NewMissingColumnError(name)
		}
		if col.Kind != model.KindNumeric {
			return model.NewColumnKindError(name, col.Kind)
		}
	}
	return nil
}

// nonMissing filters NaN markers out of a column, preserving order
func nonMissing(values []float64) []float64 {
	kept := make([]float64, 0, len(values))
	for _, v := range values {
		if !math.IsNaN(v) {
			kept = append(kept, v)
		}
	}
	return kept
}
