package pipeline

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
)

// RunStore handles persistence for analysis runs.
type RunStore struct {
	db *sqlx.DB
}

// NewRunStore creates a new run store.
func NewRunStore(db *sqlx.DB) *RunStore {
	return &RunStore{db: db}
}

// CreateRun inserts a new run record.
func (s *RunStore) CreateRun(ctx context.Context, run *AnalysisRun) error {
	query := `
		INSERT INTO analysis_runs (
			id, status, lead_time_days, service_level,
			total_components, processed, failed, started_at, error
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	_, err := s.db.ExecContext(
		ctx, query,
		run.ID, run.Status, run.LeadTimeDays, run.ServiceLevel,
		run.TotalComponents, run.Processed, run.Failed, run.StartedAt, run.Error,
	)
	if err != nil {
		return fmt.Errorf("creating analysis run: %w", err)
	}

	return nil
}

// UpdateProgress records how far a running analysis has come.
func (s *RunStore) UpdateProgress(ctx context.Context, runID string, processed, failed int) error {
	query := `
		UPDATE analysis_runs
		SET processed = $1, failed = $2
		WHERE id = $3
	`

	_, err := s.db.ExecContext(ctx, query, processed, failed, runID)
	if err != nil {
		return fmt.Errorf("updating analysis run progress: %w", err)
	}

	return nil
}

// CompleteRun writes the final state of a run.
func (s *RunStore) CompleteRun(ctx context.Context, run *AnalysisRun) error {
	query := `
		UPDATE analysis_runs
		SET status = $1, processed = $2, failed = $3,
		    completed_at = $4, error = $5
		WHERE id = $6
	`

	_, err := s.db.ExecContext(
		ctx, query,
		run.Status, run.Processed, run.Failed,
		run.CompletedAt, run.Error, run.ID,
	)
	if err != nil {
		return fmt.Errorf("completing analysis run: %w", err)
	}

	return nil
}

// GetRun retrieves a run by ID.
func (s *RunStore) GetRun(ctx context.Context, id string) (*AnalysisRun, error) {
	query := `
		SELECT id, status, lead_time_days, service_level,
		       total_components, processed, failed, started_at, completed_at, error
		FROM analysis_runs
		WHERE id = $1
	`

	var run AnalysisRun
	if err := s.db.GetContext(ctx, &run, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s", ErrRunNotFound, id)
		}
		return nil, fmt.Errorf("fetching analysis run: %w", err)
	}

	return &run, nil
}

// ListRuns returns the most recent runs, newest first.
func (s *RunStore) ListRuns(ctx context.Context, limit int) ([]AnalysisRun, error) {
	if limit <= 0 {
		limit = 20
	}

	query := `
		SELECT id, status, lead_time_days, service_level,
		       total_components, processed, failed, started_at, completed_at, error
		FROM analysis_runs
		ORDER BY started_at DESC
		LIMIT $1
	`

	var runs []AnalysisRun
	if err := s.db.SelectContext(ctx, &runs, query, limit); err != nil {
		return nil, fmt.Errorf("listing analysis runs: %w", err)
	}

	return runs, nil
}
