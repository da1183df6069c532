// pkg/model/cleaning.go
package model

import (
	"time"
)

// Cleaning operation types
const (
	OpForwardFill    = "forward_fill"
	OpRangeClip      = "range_clip"
	OpOutlierReplace = "outlier_replace"
)

// Cleaning reasons
const (
	ReasonMissingValue    = "missing_value"
	ReasonBelowMinimum    = "below_minimum"
	ReasonAboveMaximum    = "above_maximum"
	ReasonIQRBounds       = "iqr_bounds_exceeded"
	ReasonZScoreThreshold = "zscore_threshold_exceeded"
)

// CleaningOperation represents a single repaired cell. Operations are
// tagged with the uuid of the cleaning run that produced them so an audit
// sink can group them later.
type CleaningOperation struct {
	RunID         string    `db:"run_id"`         // Cleaning run identifier
	Source        string    `db:"source_name"`    // Logical source (site/file) name
	Column        string    `db:"column_name"`    // Column that was repaired
	Row           int       `db:"row_index"`      // Row position in observation order
	OriginalValue *string   `db:"original_value"` // Original value (nil when missing)
	NewValue      string    `db:"new_value"`      // Value after cleaning
	Operation     string    `db:"operation"`      // Type of repair performed
	Reason        string    `db:"reason"`         // Why the repair applied
	CleanedAt     time.Time `db:"cleaned_at"`     // When the repair occurred
}
