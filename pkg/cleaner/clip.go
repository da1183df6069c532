// pkg/cleaner/clip.go
package cleaner

import (
	"github.com/stationlab/sensor-qc/pkg/model"
)

// applyRangePolicy clamps every numeric column named in the policy into
// its configured bounds, mutating the frame in place. Policy columns
// absent from the frame are skipped; the pipeline validates the columns
// it is responsible for before this step runs. Clipping is idempotent.
func applyRangePolicy(f *model.Frame, policy model.RangePolicy, runID, source string) []model.CleaningOperation {
	var ops []model.CleaningOperation

	for _, col := range f.Columns() {
		if col.Kind != model.KindNumeric {
			continue
		}
		rule, ok := policy.Rule(col.Name)
		if !ok {
			continue
		}

		for i, v := range col.Floats {
			if col.IsMissing(i) {
				continue
			}
			clamped := rule.Clamp(v)
			if clamped == v {
				continue
			}

			reason := model.ReasonBelowMinimum
			if v > rule.Max {
				reason = model.ReasonAboveMaximum
			}
			col.Floats[i] = clamped
			ops = append(ops, newOperation(runID, source, col.Name, i,
				floatPtr(v), formatFloat(clamped), model.OpRangeClip, reason))
		}
	}

	return ops
}
