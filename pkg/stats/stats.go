// pkg/stats/stats.go
package stats

import (
	"errors"
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"
)

// ErrNoValues is returned when a statistic is requested over zero values
var ErrNoValues = errors.New("no values to compute statistic over")

// Percentile returns the p-th percentile (0 <= p <= 100) of values using
// linear interpolation between closest ranks: the rank position is
// (n-1)*p/100 and fractional positions interpolate between neighbours.
// For [1,2,3,4,5,100] this yields Q1 = 2.25 and Q3 = 4.75.
func Percentile(values []float64, p float64) (float64, error) {
	if len(values) == 0 {
		return 0, ErrNoValues
	}
	if p < 0 || p > 100 {
		return 0, errors.New("percentile must be between 0 and 100")
	}

	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)

	pos := (float64(len(sorted)) - 1) * p / 100
	lower := int(math.Floor(pos))
	upper := int(math.Ceil(pos))
	if lower == upper {
		return sorted[lower], nil
	}

	frac := pos - float64(lower)
	return sorted[lower] + frac*(sorted[upper]-sorted[lower]), nil
}

// Median returns the 50th percentile of values
func Median(values []float64) (float64, error) {
	return Percentile(values, 50)
}

// MeanStdDev returns the arithmetic mean and the sample standard deviation
// (divisor n-1) of values. With a single value the standard deviation is
// reported as zero rather than undefined.
func MeanStdDev(values []float64) (mean, stddev float64, err error) {
	if len(values) == 0 {
		return 0, 0, ErrNoValues
	}
	mean, stddev = stat.MeanStdDev(values, nil)
	if math.IsNaN(stddev) {
		stddev = 0
	}
	return mean, stddev, nil
}
