// pkg/model/report.go
package model

import (
	"fmt"
	"strings"
	"time"
)

// ColumnQuality holds the defect counts for a single column
type ColumnQuality struct {
	Column     string
	Missing    int
	Zeros      int
	Negatives  int
	OutOfRange int
}

// Total returns the sum of all defect counts for the column
func (q ColumnQuality) Total() int {
	return q.Missing + q.Zeros + q.Negatives + q.OutOfRange
}

// QualityReport summarizes data-quality defects per column. It is created
// fresh on each report request and never mutated afterward; it holds no
// reference back to the frame it summarizes.
type QualityReport struct {
	GeneratedAt time.Time
	Columns     []ColumnQuality
}

// Column returns the quality row for the named column
func (r *QualityReport) Column(name string) (ColumnQuality, bool) {
	for _, q := range r.Columns {
		if q.Column == name {
			return q, true
		}
	}
	return ColumnQuality{}, false
}

// TotalDefects returns the sum of all defect counts across all columns
func (r *QualityReport) TotalDefects() int {
	total := 0
	for _, q := range r.Columns {
		total += q.Total()
	}
	return total
}

// String renders the report as a fixed-width table suitable for printing
func (r *QualityReport) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%-12s %10s %10s %10s %12s\n",
		"Column", "Missing", "Zeros", "Negatives", "OutOfRange")
	for _, q := range r.Columns {
		fmt.Fprintf(&b, "%-12s %10d %10d %10d %12d\n",
			q.Column, q.Missing, q.Zeros, q.Negatives, q.OutOfRange)
	}
	return b.String()
}
