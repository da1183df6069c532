// pkg/connector/snowflake.go
package connector

import (
	"context"
	"database/sql"
	"fmt"
	"math"
	"strings"
	"time"

	_ "github.com/snowflakedb/gosnowflake"
	"go.uber.org/zap"

	"github.com/stationlab/sensor-qc/pkg/config"
	"github.com/stationlab/sensor-qc/pkg/model"
)

// SnowflakeConnector implements the DatabaseConnector interface for the
// Snowflake measurement source
type SnowflakeConnector struct {
	db     *sql.DB
	logger *zap.Logger
	cfg    *config.SnowflakeConfig
}

// NewSnowflakeConnector creates a new Snowflake connection
func NewSnowflakeConnector(ctx context.Context, cfg *config.SnowflakeConfig) (*SnowflakeConnector, error) {
	logger := zap.L().Named("snowflake-connector")

	// Log connection attempt (without credentials)
	logger.Info("Connecting to Snowflake",
		zap.String("account", cfg.Account),
		zap.String("user", cfg.User),
		zap.String("database", cfg.Database),
		zap.String("schema", cfg.Schema),
		zap.String("warehouse", cfg.Warehouse))

	dsn, err := cfg.ConnectionString()
	if err != nil {
		return nil, err
	}

	db, err := sql.Open("snowflake", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Snowflake connection: %w", err)
	}

	ApplyConnectionSettings(
		db,
		cfg.MaxOpenConns,
		cfg.MaxIdleConns,
		cfg.ConnMaxLifetime,
		cfg.ConnMaxIdleTime,
	)

	// Set query timeout if configured
	if cfg.QueryTimeout > 0 {
		_, err = db.ExecContext(
			ctx,
			fmt.Sprintf("ALTER SESSION SET STATEMENT_TIMEOUT_IN_SECONDS = %d",
				int(cfg.QueryTimeout.Seconds())),
		)
		if err != nil {
			logger.Warn("Failed to set statement timeout", zap.Error(err))
		}
	}

	// Verify connection
	if err := PingWithTimeout(ctx, db, 10*time.Second); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to Snowflake: %w", err)
	}

	connector := &SnowflakeConnector{
		db:     db,
		logger: logger,
		cfg:    cfg,
	}

	LogConnectionStats(logger, cfg.Database, db)
	return connector, nil
}

// DB returns the underlying database connection
func (c *SnowflakeConnector) DB() *sql.DB {
	return c.db
}

// Validate verifies the Snowflake connection and access rights
func (c *SnowflakeConnector) Validate() error {
	var role, database, warehouse string
	err := c.db.QueryRow("SELECT CURRENT_ROLE(), CURRENT_DATABASE(), CURRENT_WAREHOUSE()").Scan(
		&role, &database, &warehouse)
	if err != nil {
		return fmt.Errorf("failed to verify Snowflake access: %w", err)
	}

	c.logger.Info("Connected to Snowflake",
		zap.String("role", role),
		zap.String("database", database),
		zap.String("warehouse", warehouse))

	if database != c.cfg.Database {
		return fmt.Errorf("connected to wrong database: %s (expected: %s)",
			database, c.cfg.Database)
	}

	return nil
}

// Close closes the database connection
func (c *SnowflakeConnector) Close() error {
	c.logger.Info("Closing Snowflake connection")
	LogConnectionStats(c.logger, c.cfg.Database, c.db)
	return c.db.Close()
}

// QueryWithTimeout executes a query with a timeout
func (c *SnowflakeConnector) QueryWithTimeout(
	ctx context.Context,
	query string,
	timeout time.Duration,
	args ...interface{},
) (*sql.Rows, error) {
	queryCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	return c.db.QueryContext(queryCtx, query, args...)
}

// FetchMeasurements reads a measurement table into a frame, ordered by
// the timestamp column. The timestamp column becomes a temporal series;
// every other requested column is read as numeric with SQL NULLs mapped
// to the missing marker.
func (c *SnowflakeConnector) FetchMeasurements(
	ctx context.Context,
	table string,
	timestampColumn string,
	columns []string,
) (*model.Frame, error) {
	selectCols := make([]string, 0, len(columns)+1)
	selectCols = append(selectCols, quoteIdentifier(timestampColumn))
	for _, col := range columns {
		selectCols = append(selectCols, quoteIdentifier(col))
	}

	query := fmt.Sprintf("SELECT %s FROM %s ORDER BY %s",
		strings.Join(selectCols, ", "),
		quoteIdentifier(table),
		quoteIdentifier(timestampColumn))

	rows, err := c.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query measurements from %s: %w", table, err)
	}
	defer rows.Close()

	var times []time.Time
	values := make([][]float64, len(columns))

	for rows.Next() {
		var ts sql.NullTime
		nums := make([]sql.NullFloat64, len(columns))

		dest := make([]interface{}, 0, len(columns)+1)
		dest = append(dest, &ts)
		for i := range nums {
			dest = append(dest, &nums[i])
		}
		if err := rows.Scan(dest...); err != nil {
			return nil, fmt.Errorf("failed to scan measurement row: %w", err)
		}

		if ts.Valid {
			times = append(times, ts.Time)
		} else {
			times = append(times, time.Time{})
		}
		for i, n := range nums {
			if n.Valid {
				values[i] = append(values[i], n.Float64)
			} else {
				values[i] = append(values[i], math.NaN())
			}
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating measurement rows: %w", err)
	}

	series := make([]*model.Series, 0, len(columns)+1)
	series = append(series, model.NewTimeSeries(timestampColumn, times))
	for i, col := range columns {
		series = append(series, model.NewNumericSeries(col, values[i]))
	}

	frame, err := model.NewFrame(series...)
	if err != nil {
		return nil, err
	}

	c.logger.Info("Fetched measurements",
		zap.String("table", table),
		zap.Int("rows", frame.NumRows()),
		zap.Int("columns", frame.NumColumns()))

	return frame, nil
}

// quoteIdentifier wraps an identifier in double quotes for Snowflake
func quoteIdentifier(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}
