// pkg/report/reporter.go
package report

import (
	"time"

	"go.uber.org/zap"

	"github.com/stationlab/sensor-qc/pkg/model"
)

// DefaultRanges returns the measurement domains used for out-of-range
// checks: global horizontal irradiance in W/m², relative humidity in
// percent, ambient temperature in °C.
func DefaultRanges() model.RangePolicy {
	return model.RangePolicy{
		"GHI":  model.Between(0, 1500),
		"RH":   model.Between(0, 100),
		"Tamb": model.Between(-20, 60),
	}
}

// Reporter computes per-column defect counts. It never mutates the frame
// it reports on and is deterministic given the same input, so it can run
// both before and after cleaning. The range policy is injected: callers
// decide whether out-of-range counts use pre- or post-cleaning rules.
type Reporter struct {
	policy model.RangePolicy
	logger *zap.Logger
}

// NewReporter creates a reporter with the given range policy. A nil
// policy means no column reports out-of-range defects.
func NewReporter(policy model.RangePolicy, logger *zap.Logger) *Reporter {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Reporter{policy: policy, logger: logger.Named("reporter")}
}

// Report computes missing/zero/negative/out-of-range counts for each of
// the given columns. An empty column set defaults to all numeric columns
// of the frame. A frame with zero rows yields all-zero counts rather than
// an error. Non-numeric columns report missing counts only.
func (r *Reporter) Report(f *model.Frame, columns []string) (*model.QualityReport, error) {
	if len(columns) == 0 {
		columns = f.NumericColumnNames()
	}

	rep := &model.QualityReport{
		GeneratedAt: time.Now(),
		Columns:     make([]model.ColumnQuality, 0, len(columns)),
	}

	for _, name := range columns {
		col, ok := f.Column(name)
		if !ok {
			return nil, model.NewMissingColumnError(name)
		}
		rep.Columns = append(rep.Columns, r.columnQuality(col))
	}

	r.logger.Debug("Quality report generated",
		zap.Int("rows", f.NumRows()),
		zap.Int("columns", len(rep.Columns)),
		zap.Int("total_defects", rep.TotalDefects()))

	return rep, nil
}

// columnQuality counts the defects of one column. A missing cell counts
// only as missing; zero, negative and range checks apply to present
// numeric values.
func (r *Reporter) columnQuality(col *model.Series) model.ColumnQuality {
	q := model.ColumnQuality{Column: col.Name}

	for i := 0; i < col.Len(); i++ {
		if col.IsMissing(i) {
			q.Missing++
			continue
		}
		if col.Kind != model.KindNumeric {
			continue
		}

		v := col.Floats[i]
		if v == 0 {
			q.Zeros++
		}
		if v < 0 {
			q.Negatives++
		}
		if rule, ok := r.policy.Rule(col.Name); ok && !rule.Contains(v) {
			q.OutOfRange++
		}
	}

	return q
}

// ColumnsWithMissingAbove returns the names of columns whose fraction of
// missing values exceeds the threshold (0 to 1). A frame with zero rows
// has no such columns.
func (r *Reporter) ColumnsWithMissingAbove(f *model.Frame, fraction float64) []string {
	if f.NumRows() == 0 {
		return nil
	}

	var names []string
	for _, col := range f.Columns() {
		missing := 0
		for i := 0; i < col.Len(); i++ {
			if col.IsMissing(i) {
				missing++
			}
		}
		if float64(missing)/float64(f.NumRows()) > fraction {
			names = append(names, col.Name)
		}
	}
	return names
}
