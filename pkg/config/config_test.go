// pkg/config/config_test.go
package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stationlab/sensor-qc/pkg/model"
)

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "csv", cfg.Source)
	assert.Equal(t, "data", cfg.DataDir)
	assert.Equal(t, "out", cfg.OutputDir)
	assert.Equal(t, "Timestamp", cfg.TimestampColumn)
	assert.Equal(t, "Comments", cfg.CommentsColumn)
	assert.Equal(t, "RH", cfg.HumidityColumn)
	assert.Equal(t, []string{"GHI", "DNI", "DHI", "ModA", "ModB", "WS", "WSgust"}, cfg.TargetColumns)
	assert.Equal(t, []string{"Tamb"}, cfg.ExtraOutlierColumns)
	assert.Equal(t, "iqr", cfg.Detector)
	assert.Equal(t, 1.5, cfg.IQRMultiplier)
	assert.Equal(t, 3.0, cfg.ZScoreThreshold)
	assert.Nil(t, cfg.ReportRanges)
	assert.False(t, cfg.AuditEnabled)
	assert.Nil(t, cfg.Postgres)
	assert.Nil(t, cfg.Snowflake)
}

func TestLoadConfigOverrides(t *testing.T) {
	t.Setenv("QC_DETECTOR", "zscore")
	t.Setenv("QC_ZSCORE_THRESHOLD", "2.5")
	t.Setenv("QC_TARGET_COLUMNS", "GHI, DNI ,")
	t.Setenv("QC_WORKER_POOL_SIZE", "4")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "zscore", cfg.Detector)
	assert.Equal(t, 2.5, cfg.ZScoreThreshold)
	assert.Equal(t, []string{"GHI", "DNI"}, cfg.TargetColumns)
	assert.Equal(t, 4, cfg.WorkerPoolSize)
}

func TestLoadConfigReportRanges(t *testing.T) {
	t.Setenv("QC_REPORT_RANGES", "GHI=0:1500, Tamb=-20:60")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	require.Len(t, cfg.ReportRanges, 2)
	assert.Equal(t, model.Between(0, 1500), cfg.ReportRanges["GHI"])
	assert.Equal(t, model.Between(-20, 60), cfg.ReportRanges["Tamb"])
}

func TestLoadConfigBadReportRanges(t *testing.T) {
	tests := []struct {
		name  string
		value string
	}{
		{"missing equals", "GHI 0:1500"},
		{"missing colon", "GHI=0-1500"},
		{"non-numeric bound", "GHI=low:1500"},
		{"min above max", "GHI=1500:0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("QC_REPORT_RANGES", tt.value)
			_, err := LoadConfig()
			assert.Error(t, err)
		})
	}
}

func TestValidate(t *testing.T) {
	base := func() *Config {
		return &Config{
			Source:          "csv",
			Detector:        "iqr",
			TargetColumns:   []string{"GHI"},
			IQRMultiplier:   1.5,
			ZScoreThreshold: 3,
		}
	}

	assert.NoError(t, base().Validate())

	cfg := base()
	cfg.Source = "parquet"
	assert.Error(t, cfg.Validate())

	cfg = base()
	cfg.Detector = "mad"
	assert.Error(t, cfg.Validate())

	cfg = base()
	cfg.TargetColumns = nil
	assert.Error(t, cfg.Validate())

	cfg = base()
	cfg.IQRMultiplier = 0
	assert.Error(t, cfg.Validate())

	cfg = base()
	cfg.ZScoreThreshold = -1
	assert.Error(t, cfg.Validate())

	cfg = base()
	cfg.WorkerPoolSize = -2
	assert.Error(t, cfg.Validate())

	cfg = base()
	cfg.AuditEnabled = true
	assert.Error(t, cfg.Validate(), "audit requires postgres settings")

	cfg = base()
	cfg.Source = "snowflake"
	assert.Error(t, cfg.Validate(), "snowflake source requires snowflake settings")
}
