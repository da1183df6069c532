// pkg/cleaner/fill.go
package cleaner

import (
	"time"

	"github.com/stationlab/sensor-qc/pkg/model"
)

// forwardFill replaces every missing value with the nearest preceding
// non-missing value in row order, mutating the frame in place. A leading
// run of missing values has no prior value to carry forward and stays
// missing; that is intentional, not a failure. Applying the fill twice
// yields the same frame as applying it once.
func forwardFill(f *model.Frame, runID, source string) []model.CleaningOperation {
	var ops []model.CleaningOperation

	for _, col := range f.Columns() {
		switch col.Kind {
		case model.KindNumeric:
			ops = append(ops, fillNumeric(col, runID, source)...)
		case model.KindTime:
			ops = append(ops, fillTime(col, runID, source)...)
		case model.KindText:
			ops = append(ops, fillText(col, runID, source)...)
		}
	}

	return ops
}

func fillNumeric(col *model.Series, runID, source string) []model.CleaningOperation {
	var ops []model.CleaningOperation
	haveLast := false
	var last float64

	for i := range col.Floats {
		if !col.IsMissing(i) {
			last = col.Floats[i]
			haveLast = true
			continue
		}
		if !haveLast {
			continue
		}
		col.Floats[i] = last
		ops = append(ops, newOperation(runID, source, col.Name, i,
			nil, formatFloat(last), model.OpForwardFill, model.ReasonMissingValue))
	}
	return ops
}

func fillTime(col *model.Series, runID, source string) []model.CleaningOperation {
	var ops []model.CleaningOperation
	var last time.Time

	for i := range col.Times {
		if !col.IsMissing(i) {
			last = col.Times[i]
			continue
		}
		if last.IsZero() {
			continue
		}
		col.Times[i] = last
		ops = append(ops, newOperation(runID, source, col.Name, i,
			nil, last.Format(time.RFC3339), model.OpForwardFill, model.ReasonMissingValue))
	}
	return ops
}

func fillText(col *model.Series, runID, source string) []model.CleaningOperation {
	var ops []model.CleaningOperation
	last := ""

	for i := range col.Texts {
		if !col.IsMissing(i) {
			last = col.Texts[i]
			continue
		}
		if last == "" {
			continue
		}
		col.Texts[i] = last
		ops = append(ops, newOperation(runID, source, col.Name, i,
			nil, last, model.OpForwardFill, model.ReasonMissingValue))
	}
	return ops
}
