// pkg/config/config.go
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/stationlab/sensor-qc/pkg/model"
)

// Config represents the application configuration
type Config struct {
	// Source settings: "csv" reads per-site files from DataDir,
	// "snowflake" queries the measurements table instead
	Source            string
	DataDir           string
	OutputDir         string
	MeasurementsTable string

	// Column roles in the measurement layout
	TimestampColumn     string
	CommentsColumn      string
	HumidityColumn      string
	CleaningFlagColumn  string
	TargetColumns       []string
	ExtraOutlierColumns []string

	// Outlier detection settings
	Detector        string // "iqr" or "zscore"
	IQRMultiplier   float64
	ZScoreThreshold float64

	// Reporting: out-of-range rules per column; nil selects the
	// built-in measurement domains
	ReportRanges model.RangePolicy

	// Run settings
	WorkerPoolSize int

	// Audit trail to Postgres (optional)
	AuditEnabled bool
	Postgres     *PostgresConfig

	// Snowflake source (loaded only when Source is "snowflake")
	Snowflake *SnowflakeConfig

	// Logging
	LogLevel  string
	LogFormat string
}

// LoadConfig loads configuration from environment variables
func LoadConfig() (*Config, error) {
	cfg := &Config{
		Source:            getEnv("QC_SOURCE", "csv"),
		DataDir:           getEnv("QC_DATA_DIR", "data"),
		OutputDir:         getEnv("QC_OUTPUT_DIR", "out"),
		MeasurementsTable: getEnv("QC_MEASUREMENTS_TABLE", "MEASUREMENTS"),

		TimestampColumn:    getEnv("QC_TIMESTAMP_COLUMN", "Timestamp"),
		CommentsColumn:     getEnv("QC_COMMENTS_COLUMN", "Comments"),
		HumidityColumn:     getEnv("QC_HUMIDITY_COLUMN", "RH"),
		CleaningFlagColumn: getEnv("QC_CLEANING_FLAG_COLUMN", "Cleaning"),
		TargetColumns: getEnvAsStringSlice("QC_TARGET_COLUMNS",
			[]string{"GHI", "DNI", "DHI", "ModA", "ModB", "WS", "WSgust"}),
		ExtraOutlierColumns: getEnvAsStringSlice("QC_EXTRA_OUTLIER_COLUMNS",
			[]string{"Tamb"}),

		Detector:        getEnv("QC_DETECTOR", "iqr"),
		IQRMultiplier:   getEnvAsFloat("QC_IQR_MULTIPLIER", 1.5),
		ZScoreThreshold: getEnvAsFloat("QC_ZSCORE_THRESHOLD", 3),

		WorkerPoolSize: getEnvAsInt("QC_WORKER_POOL_SIZE", 0), // 0 means use runtime.NumCPU()

		AuditEnabled: getEnvAsBool("QC_AUDIT_ENABLED", false),

		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "json"),
	}

	ranges, err := getEnvAsRanges("QC_REPORT_RANGES")
	if err != nil {
		return nil, fmt.Errorf("failed to parse QC_REPORT_RANGES: %w", err)
	}
	cfg.ReportRanges = ranges

	if cfg.AuditEnabled {
		pgConfig, err := LoadPostgresConfig()
		if err != nil {
			return nil, errors.New("failed to load PostgreSQL configuration: " + err.Error())
		}
		cfg.Postgres = pgConfig
	}

	if cfg.Source == "snowflake" {
		snowConfig, err := LoadSnowflakeConfig()
		if err != nil {
			return nil, errors.New("failed to load Snowflake configuration: " + err.Error())
		}
		cfg.Snowflake = snowConfig
	}

	// Validate configuration
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate ensures all required configuration is present and valid
func (c *Config) Validate() error {
	switch c.Source {
	case "csv", "snowflake":
	default:
		return fmt.Errorf("unknown source %q (expected csv or snowflake)", c.Source)
	}

	switch c.Detector {
	case "iqr", "zscore":
	default:
		return fmt.Errorf("unknown detector %q (expected iqr or zscore)", c.Detector)
	}

	if len(c.TargetColumns) == 0 {
		return errors.New("at least one target column is required")
	}

	if c.IQRMultiplier <= 0 {
		return errors.New("IQR multiplier must be positive")
	}

	if c.ZScoreThreshold <= 0 {
		return errors.New("z-score threshold must be positive")
	}

	if c.WorkerPoolSize < 0 {
		return errors.New("worker pool size cannot be negative")
	}

	if c.AuditEnabled && c.Postgres == nil {
		return errors.New("postgreSQL configuration is required when audit is enabled")
	}

	if c.Source == "snowflake" && c.Snowflake == nil {
		return errors.New("snowflake configuration is required for the snowflake source")
	}

	return nil
}

// Helper functions for environment variables
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.ParseFloat(valueStr, 64)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

// getEnvAsStringSlice parses a comma-separated environment variable
func getEnvAsStringSlice(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	var result []string
	for _, v := range strings.Split(value, ",") {
		v = strings.TrimSpace(v)
		if v != "" {
			result = append(result, v)
		}
	}

	if len(result) == 0 {
		return defaultValue
	}

	return result
}

// getEnvAsRanges parses per-column range rules from an environment
// variable of the form "GHI=0:1500,RH=0:100,Tamb=-20:60". An unset
// variable returns a nil policy, which callers treat as "use the built-in
// measurement domains".
func getEnvAsRanges(key string) (model.RangePolicy, error) {
	value := os.Getenv(key)
	if value == "" {
		return nil, nil
	}

	policy := make(model.RangePolicy)
	for _, entry := range strings.Split(value, ",") {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}

		name, bounds, ok := strings.Cut(entry, "=")
		if !ok {
			return nil, fmt.Errorf("range entry %q is not of the form column=min:max", entry)
		}

		minStr, maxStr, ok := strings.Cut(bounds, ":")
		if !ok {
			return nil, fmt.Errorf("range bounds %q are not of the form min:max", bounds)
		}

		lo, err := strconv.ParseFloat(strings.TrimSpace(minStr), 64)
		if err != nil {
			return nil, fmt.Errorf("invalid minimum in %q: %w", entry, err)
		}
		hi, err := strconv.ParseFloat(strings.TrimSpace(maxStr), 64)
		if err != nil {
			return nil, fmt.Errorf("invalid maximum in %q: %w", entry, err)
		}
		if lo > hi {
			return nil, fmt.Errorf("range %q has minimum above maximum", entry)
		}

		policy[strings.TrimSpace(name)] = model.Between(lo, hi)
	}

	return policy, nil
}
