package pipeline

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"stockplan/internal/domain"
	"stockplan/internal/repository"
	"stockplan/internal/storage"
)

// Orchestrator drives one batch analysis over the whole catalog: fan the
// components out to workers, persist recommendations batch-wise, track the
// run row, and ship the CSV artifact.
type Orchestrator struct {
	source  CatalogSource
	planner Planner
	recs    repository.RecommendationRepository
	runs    RunRecorder
	store   storage.ObjectStorage // nil disables artifact upload
	cfg     Config
}

// NewOrchestrator creates an orchestrator. store may be nil.
func NewOrchestrator(source CatalogSource, planner Planner, recs repository.RecommendationRepository, runs RunRecorder, store storage.ObjectStorage, cfg Config) *Orchestrator {
	if cfg.Workers < 1 {
		cfg.Workers = 1
	}
	if cfg.BatchSize < 1 {
		cfg.BatchSize = 1
	}
	return &Orchestrator{
		source:  source,
		planner: planner,
		recs:    recs,
		runs:    runs,
		store:   store,
		cfg:     cfg,
	}
}

// Run executes a full batch analysis and returns the finished run record.
// Individual component failures are counted, not fatal; the run fails only
// when persistence breaks or nothing at all could be analyzed.
func (o *Orchestrator) Run(ctx context.Context, params domain.PlanningParams) (*AnalysisRun, error) {
	components, err := o.source.Components(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing components: %w", err)
	}

	run := &AnalysisRun{
		ID:              uuid.NewString(),
		Status:          StatusRunning,
		LeadTimeDays:    params.LeadTimeDays,
		ServiceLevel:    params.ServiceLevel,
		TotalComponents: len(components),
		StartedAt:       time.Now().UTC(),
	}
	if err := o.runs.CreateRun(ctx, run); err != nil {
		return nil, err
	}

	runsStarted.Inc()
	log.Info().
		Str("run_id", run.ID).
		Int("components", len(components)).
		Int("workers", o.cfg.Workers).
		Msg("analysis: run started")

	aggregator := NewRunAggregator(run.ID, o.cfg.OutputDir, o.cfg.BatchSize)
	pool := newWorkerPool(o.planner, o.cfg.Workers)

	batch := make([]domain.Recommendation, 0, o.cfg.BatchSize)
	var artifactErr error

	flush := func() error {
		if len(batch) == 0 {
			return nil
		}
		if err := o.recs.SaveBatch(ctx, batch); err != nil {
			return err
		}
		run.Processed += len(batch)
		batch = batch[:0]
		if err := o.runs.UpdateProgress(ctx, run.ID, run.Processed, run.Failed); err != nil {
			log.Warn().Err(err).Str("run_id", run.ID).Msg("analysis: progress update failed")
		}
		return nil
	}

	for res := range pool.run(ctx, components, params) {
		if res.err != nil {
			run.Failed++
			componentsFailed.Inc()
			continue
		}

		rec := *res.rec
		rec.RunID = run.ID
		batch = append(batch, rec)
		componentsProcessed.Inc()

		if artifactErr == nil {
			if err := aggregator.Add(rec); err != nil {
				artifactErr = err
				log.Error().Err(err).Str("run_id", run.ID).Msg("analysis: artifact write failed")
			}
		}

		if len(batch) >= o.cfg.BatchSize {
			if err := flush(); err != nil {
				return o.failRun(ctx, run, fmt.Errorf("persisting recommendations: %w", err))
			}
		}
	}

	if err := ctx.Err(); err != nil {
		return o.failRun(ctx, run, err)
	}

	if err := flush(); err != nil {
		return o.failRun(ctx, run, fmt.Errorf("persisting recommendations: %w", err))
	}

	if run.Processed == 0 && run.Failed > 0 {
		return o.failRun(ctx, run, errors.New("no component could be analyzed"))
	}

	artifact, summary, aggErr := aggregator.Finalize()
	if aggErr != nil {
		log.Error().Err(aggErr).Str("run_id", run.ID).Msg("analysis: artifact finalize failed")
		artifact = ""
	}
	if artifactErr != nil {
		artifact = ""
	}
	if artifact != "" {
		o.uploadArtifact(ctx, run.ID, artifact)
	}

	now := time.Now().UTC()
	run.Status = StatusCompleted
	run.CompletedAt = &now
	if err := o.runs.CompleteRun(ctx, run); err != nil {
		return run, err
	}

	runsFinished.WithLabelValues(string(StatusCompleted)).Inc()
	runDuration.Observe(now.Sub(run.StartedAt).Seconds())

	log.Info().
		Str("run_id", run.ID).
		Int("processed", run.Processed).
		Int("failed", run.Failed).
		Dur("duration", now.Sub(run.StartedAt)).
		Float64("capital_released", summary.CapitalReleased).
		Float64("annual_savings", summary.AnnualSavings).
		Msg("analysis: run completed")

	return run, nil
}

// failRun records the failure and returns the cause. The run row is written
// even when the surrounding context is already cancelled.
func (o *Orchestrator) failRun(ctx context.Context, run *AnalysisRun, cause error) (*AnalysisRun, error) {
	now := time.Now().UTC()
	run.Status = StatusFailed
	run.Error = cause.Error()
	run.CompletedAt = &now

	if err := o.runs.CompleteRun(context.WithoutCancel(ctx), run); err != nil {
		log.Error().Err(err).Str("run_id", run.ID).Msg("analysis: failed to record run failure")
	}

	runsFinished.WithLabelValues(string(StatusFailed)).Inc()
	runDuration.Observe(now.Sub(run.StartedAt).Seconds())

	return run, cause
}

func (o *Orchestrator) uploadArtifact(ctx context.Context, runID, path string) {
	if o.store == nil {
		return
	}

	key := fmt.Sprintf("reports/%s", filepath.Base(path))
	if err := o.store.UploadFile(ctx, key, path, "text/csv"); err != nil {
		log.Error().Err(err).Str("run_id", runID).Str("key", key).Msg("analysis: artifact upload failed")
		return
	}

	log.Info().Str("run_id", runID).Str("key", key).Msg("analysis: artifact uploaded")
}
