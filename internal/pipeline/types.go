package pipeline

import (
	"context"
	"errors"
	"time"

	"stockplan/internal/domain"
)

// RunStatus represents the current state of an analysis run.
type RunStatus string

const (
	StatusRunning   RunStatus = "running"
	StatusCompleted RunStatus = "completed"
	StatusFailed    RunStatus = "failed"
)

// ErrRunNotFound is returned when a run ID does not exist.
var ErrRunNotFound = errors.New("analysis run not found")

// AnalysisRun tracks a single batch analysis over the catalog.
type AnalysisRun struct {
	ID              string     `json:"id" db:"id"`
	Status          RunStatus  `json:"status" db:"status"`
	LeadTimeDays    int        `json:"lead_time_days" db:"lead_time_days"`
	ServiceLevel    float64    `json:"service_level" db:"service_level"`
	TotalComponents int        `json:"total_components" db:"total_components"`
	Processed       int        `json:"processed" db:"processed"`
	Failed          int        `json:"failed" db:"failed"`
	StartedAt       time.Time  `json:"started_at" db:"started_at"`
	CompletedAt     *time.Time `json:"completed_at,omitempty" db:"completed_at"`
	Error           string     `json:"error,omitempty" db:"error"`
}

// Planner computes one recommendation. *service.PlanningService satisfies
// it.
type Planner interface {
	BuildRecommendation(ctx context.Context, component domain.Component, params domain.PlanningParams) (*domain.Recommendation, error)
}

// CatalogSource lists the components a run analyzes.
type CatalogSource interface {
	Components(ctx context.Context) ([]domain.Component, error)
}

// RunRecorder is the slice of run persistence the orchestrator needs.
// *RunStore satisfies it.
type RunRecorder interface {
	CreateRun(ctx context.Context, run *AnalysisRun) error
	UpdateProgress(ctx context.Context, runID string, processed, failed int) error
	CompleteRun(ctx context.Context, run *AnalysisRun) error
}

// Config holds the tunables of a batch run.
type Config struct {
	Workers   int    // Number of concurrent workers
	BatchSize int    // Recommendations persisted per batch
	OutputDir string // Directory for run CSV artifacts
}

// jobResult carries the outcome of one component job.
type jobResult struct {
	rec *domain.Recommendation
	err error
}
