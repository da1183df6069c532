// pkg/cleaner/ops.go
package cleaner

import (
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/stationlab/sensor-qc/pkg/model"
)

// newRunID generates the identifier tagging every operation of one
// cleaning run
func newRunID() string {
	return uuid.New().String()
}

// newOperation builds an audit record for a single repaired cell
func newOperation(runID, source, column string, row int, original *string, newValue, operation, reason string) model.CleaningOperation {
	return model.CleaningOperation{
		RunID:         runID,
		Source:        source,
		Column:        column,
		Row:           row,
		OriginalValue: original,
		NewValue:      newValue,
		Operation:     operation,
		Reason:        reason,
		CleanedAt:     time.Now(),
	}
}

// formatFloat renders a numeric value for the audit trail
func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

// floatPtr returns the formatted value as a nullable string
func floatPtr(v float64) *string {
	s := formatFloat(v)
	return &s
}
