// pkg/cleaner/detector_test.go
package cleaner

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stationlab/sensor-qc/pkg/model"
)

func TestNewIQRDetectorValidation(t *testing.T) {
	_, err := NewIQRDetector(0)
	assert.Error(t, err)
	_, err = NewIQRDetector(-1.5)
	assert.Error(t, err)

	d, err := NewIQRDetector(1.5)
	require.NoError(t, err)
	assert.Equal(t, "iqr", d.Name())
	assert.Equal(t, model.ReasonIQRBounds, d.Reason())
}

func TestIQRDetect(t *testing.T) {
	d, err := NewIQRDetector(1.5)
	require.NoError(t, err)

	// Q1 = 2.25, Q3 = 4.75, IQR = 2.5, bounds [-1.5, 8.5]
	mask, replacement, err := d.Detect([]float64{1, 2, 3, 100, 4, 5})
	require.NoError(t, err)
	assert.Equal(t, []bool{false, false, false, true, false, false}, mask)
	assert.InDelta(t, 3.5, replacement, 1e-12)
}

func TestIQRDetectSkipsMissing(t *testing.T) {
	d, err := NewIQRDetector(1.5)
	require.NoError(t, err)

	mask, _, err := d.Detect([]float64{1, math.NaN(), 3, 1000, 4, 5})
	require.NoError(t, err)
	assert.False(t, mask[1], "missing markers are never outliers")
	assert.True(t, mask[3])
}

func TestIQRDetectDegenerateColumn(t *testing.T) {
	d, err := NewIQRDetector(1.5)
	require.NoError(t, err)

	// Q1 = Q3 = 5, so the bounds collapse and any value != 5 is flagged
	mask, replacement, err := d.Detect([]float64{5, 5, 5, 5, 9})
	require.NoError(t, err)
	assert.Equal(t, []bool{false, false, false, false, true}, mask)
	assert.Equal(t, 5.0, replacement)
}

func TestIQRDetectAllMissing(t *testing.T) {
	d, err := NewIQRDetector(1.5)
	require.NoError(t, err)

	_, _, err = d.Detect([]float64{math.NaN(), math.NaN()})
	assert.Error(t, err)
}

func TestNewZScoreDetectorValidation(t *testing.T) {
	_, err := NewZScoreDetector(0)
	assert.Error(t, err)

	d, err := NewZScoreDetector(3)
	require.NoError(t, err)
	assert.Equal(t, "zscore", d.Name())
	assert.Equal(t, model.ReasonZScoreThreshold, d.Reason())
}

func TestZScoreDetect(t *testing.T) {
	d, err := NewZScoreDetector(2)
	require.NoError(t, err)

	// mean = 19, sample stddev ~ 28.46; z(100) ~ 2.85
	values := []float64{10, 10, 10, 10, 10, 10, 10, 10, 10, 100}
	mask, replacement, err := d.Detect(values)
	require.NoError(t, err)

	want := make([]bool, 10)
	want[9] = true
	assert.Equal(t, want, mask)
	assert.Equal(t, 10.0, replacement)
}

func TestZScoreDetectConstantColumn(t *testing.T) {
	d, err := NewZScoreDetector(3)
	require.NoError(t, err)

	// Zero stddev: nothing deviates from the mean, nothing is flagged
	mask, _, err := d.Detect([]float64{7, 7, 7})
	require.NoError(t, err)
	assert.Equal(t, []bool{false, false, false}, mask)
}

func TestDetectAndReplace(t *testing.T) {
	f, err := model.NewFrame(
		model.NewNumericSeries("GHI", []float64{1, 2, 3, 100, 4, 5}),
	)
	require.NoError(t, err)

	d, err := NewIQRDetector(1.5)
	require.NoError(t, err)

	cleaned, ops, err := DetectAndReplace(f, []string{"GHI"}, d)
	require.NoError(t, err)

	col, ok := cleaned.Column("GHI")
	require.True(t, ok)
	assert.Equal(t, []float64{1, 2, 3, 3.5, 4, 5}, col.Floats)

	require.Len(t, ops, 1)
	assert.Equal(t, "GHI", ops[0].Column)
	assert.Equal(t, 3, ops[0].Row)
	require.NotNil(t, ops[0].OriginalValue)
	assert.Equal(t, "100", *ops[0].OriginalValue)
	assert.Equal(t, "3.5", ops[0].NewValue)
	assert.Equal(t, model.OpOutlierReplace, ops[0].Operation)
	assert.Equal(t, model.ReasonIQRBounds, ops[0].Reason)

	// Input frame is untouched
	original, _ := f.Column("GHI")
	assert.Equal(t, []float64{1, 2, 3, 100, 4, 5}, original.Floats)
}

func TestDetectAndReplaceIdempotent(t *testing.T) {
	f, err := model.NewFrame(
		model.NewNumericSeries("GHI", []float64{1, 2, 3, 100, 4, 5}),
	)
	require.NoError(t, err)

	d, err := NewIQRDetector(1.5)
	require.NoError(t, err)

	once, _, err := DetectAndReplace(f, []string{"GHI"}, d)
	require.NoError(t, err)
	twice, ops, err := DetectAndReplace(once, []string{"GHI"}, d)
	require.NoError(t, err)

	assert.Empty(t, ops, "a cleaned column has no remaining outliers")
	before, _ := once.Column("GHI")
	after, _ := twice.Column("GHI")
	assert.Equal(t, before.Floats, after.Floats)
}

func TestDetectAndReplaceSchemaErrors(t *testing.T) {
	f, err := model.NewFrame(
		model.NewNumericSeries("GHI", []float64{1, 2}),
		model.NewTextSeries("Comments", []string{"", ""}),
	)
	require.NoError(t, err)

	d, err := NewIQRDetector(1.5)
	require.NoError(t, err)

	_, _, err = DetectAndReplace(f, []string{"DNI"}, d)
	assert.True(t, model.IsSchemaError(err))

	_, _, err = DetectAndReplace(f, []string{"Comments"}, d)
	assert.True(t, model.IsSchemaError(err))
}

func TestDetectAndReplaceDataErrorLeavesSiblingsCleaned(t *testing.T) {
	f, err := model.NewFrame(
		model.NewNumericSeries("WSgust", []float64{math.NaN(), math.NaN(), math.NaN(), math.NaN(), math.NaN(), math.NaN()}),
		model.NewNumericSeries("GHI", []float64{1, 2, 3, 100, 4, 5}),
	)
	require.NoError(t, err)

	d, err := NewIQRDetector(1.5)
	require.NoError(t, err)

	cleaned, ops, err := DetectAndReplace(f, []string{"WSgust", "GHI"}, d)
	require.Error(t, err)
	assert.True(t, model.IsDataError(err))
	require.NotNil(t, cleaned)

	// The failing column is untouched, the sibling still completed
	gust, _ := cleaned.Column("WSgust")
	for i := range gust.Floats {
		assert.True(t, math.IsNaN(gust.Floats[i]))
	}
	ghi, _ := cleaned.Column("GHI")
	assert.Equal(t, []float64{1, 2, 3, 3.5, 4, 5}, ghi.Floats)
	assert.Len(t, ops, 1)
}

func TestNewDetector(t *testing.T) {
	d, err := NewDetector("iqr", 1.5, 3)
	require.NoError(t, err)
	assert.Equal(t, "iqr", d.Name())

	d, err = NewDetector("zscore", 1.5, 3)
	require.NoError(t, err)
	assert.Equal(t, "zscore", d.Name())

	_, err = NewDetector("mad", 1.5, 3)
	assert.Error(t, err)
}
