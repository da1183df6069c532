// pkg/loader/values.go
package loader

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// timestampLayout is the layout cleaned output is written with
const timestampLayout = "2006-01-02 15:04"

// isMissingToken determines if a raw CSV token should be treated as a
// missing value
func isMissingToken(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "na", "n/a", "nan", "null", "nil":
		return true
	default:
		return false
	}
}

// parseFloat converts a raw CSV token to float64, mapping missing tokens
// to the NaN marker
func parseFloat(s string) (float64, error) {
	if isMissingToken(s) {
		return math.NaN(), nil
	}

	value, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0, fmt.Errorf("cannot parse '%s' as numeric: %w", s, err)
	}
	return value, nil
}

// parseTime converts a raw CSV token to time.Time, mapping missing tokens
// to the zero-time marker. Common timestamp formats are tried in order.
func parseTime(s string) (time.Time, error) {
	if isMissingToken(s) {
		return time.Time{}, nil
	}

	cleaned := strings.TrimSpace(s)
	formats := []string{
		time.RFC3339,
		"2006-01-02T15:04:05",
		"2006-01-02 15:04:05",
		"2006-01-02 15:04",
		"2006-01-02",
		"01/02/2006 15:04",
		"01/02/2006",
	}

	for _, format := range formats {
		if t, err := time.Parse(format, cleaned); err == nil {
			return t, nil
		}
	}

	return time.Time{}, fmt.Errorf("cannot parse time from '%s'", cleaned)
}

// formatFloat renders a numeric cell for CSV output; the missing marker
// becomes an empty field
func formatFloat(v float64) string {
	if math.IsNaN(v) {
		return ""
	}
	return strconv.FormatFloat(v, 'g', -1, 64)
}

// formatTime renders a temporal cell for CSV output; the missing marker
// becomes an empty field
func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(timestampLayout)
}
