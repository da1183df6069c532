// pkg/cleaner/factory.go
package cleaner

import "fmt"

// NewDetector creates the outlier detection strategy named by the
// configuration
func NewDetector(method string, iqrMultiplier, zscoreThreshold float64) (OutlierDetector, error) {
	switch method {
	case "iqr":
		return NewIQRDetector(iqrMultiplier)
	case "zscore":
		return NewZScoreDetector(zscoreThreshold)
	default:
		return nil, fmt.Errorf("unknown detector %q (expected iqr or zscore)", method)
	}
}
