// pkg/audit/tracker.go
package audit

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/stationlab/sensor-qc/pkg/model"
)

// Tracker persists cleaning operations so every repair made on ingress
// can be audited later
type Tracker struct {
	db     *sqlx.DB
	logger *zap.Logger
}

// NewTracker creates a new Tracker and ensures the tracking table exists
func NewTracker(db *sqlx.DB, logger *zap.Logger) (*Tracker, error) {
	if db == nil {
		return nil, errors.New("database connection cannot be nil")
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	tracker := &Tracker{
		db:     db,
		logger: logger.Named("audit"),
	}

	if err := tracker.setupTrackingTable(); err != nil {
		return nil, fmt.Errorf("failed to setup tracking table: %w", err)
	}

	return tracker, nil
}

// setupTrackingTable ensures the cleaning_operations table exists
func (t *Tracker) setupTrackingTable() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	createTableSQL := `
		CREATE TABLE IF NOT EXISTS public.cleaning_operations (
			id SERIAL PRIMARY KEY,
			run_id TEXT NOT NULL,
			source_name TEXT NOT NULL,
			column_name TEXT NOT NULL,
			row_index INTEGER NOT NULL,
			original_value TEXT,
			new_value TEXT NOT NULL,
			operation TEXT NOT NULL,
			reason TEXT NOT NULL,
			cleaned_at TIMESTAMP WITH TIME ZONE DEFAULT CURRENT_TIMESTAMP
		)
	`
	_, err := t.db.ExecContext(ctx, createTableSQL)
	if err != nil {
		return fmt.Errorf("failed to create tracking table: %w", err)
	}

	t.logger.Info("Ensured cleaning_operations table exists")
	return nil
}

// Record batch inserts cleaning operations into the tracking table inside
// a single transaction
func (t *Tracker) Record(ctx context.Context, operations []model.CleaningOperation) error {
	if len(operations) == 0 {
		return nil
	}

	txCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	tx, err := t.db.BeginTxx(txCtx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(); rbErr != nil {
				t.logger.Error("Failed to rollback transaction",
					zap.Error(rbErr),
					zap.Error(err))
			}
		}
	}()

	stmt, err := tx.PrepareNamedContext(txCtx, `
		INSERT INTO public.cleaning_operations
		(run_id, source_name, column_name, row_index, original_value,
		 new_value, operation, reason, cleaned_at)
		VALUES (:run_id, :source_name, :column_name, :row_index, :original_value,
		 :new_value, :operation, :reason, :cleaned_at)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer stmt.Close()

	for _, op := range operations {
		if _, err = stmt.ExecContext(txCtx, op); err != nil {
			return fmt.Errorf("failed to insert cleaning operation: %w", err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	t.logger.Info("Recorded cleaning operations", zap.Int("count", len(operations)))
	return nil
}

// CountByRun returns how many operations a cleaning run produced
func (t *Tracker) CountByRun(ctx context.Context, runID string) (int, error) {
	var count int
	err := t.db.GetContext(ctx, &count,
		"SELECT COUNT(*) FROM public.cleaning_operations WHERE run_id = $1", runID)
	if err != nil {
		return 0, fmt.Errorf("failed to count operations for run %s: %w", runID, err)
	}
	return count, nil
}
