package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"stockplan/internal/cache"
	"stockplan/internal/domain"
	"stockplan/internal/engine"
	"stockplan/internal/forecast"
)

// DataSource is the read side the planner works against. Both the
// CSV-backed dataset and the Postgres component repository satisfy it.
type DataSource interface {
	Components(ctx context.Context) ([]domain.Component, error)
	Component(ctx context.Context, componentID string) (domain.Component, error)
	Usage(ctx context.Context, componentID string, days int) ([]domain.UsagePoint, error)
	Demand(ctx context.Context, componentID string) ([]float64, error)
}

// forecastSourceHistMean marks recommendations where the calculator itself
// fell back to the historical mean because no forecast could be produced.
const forecastSourceHistMean = "historical-mean"

type PlanningService struct {
	source   DataSource
	provider forecast.Provider
	calc     *engine.Calculator
	cache    cache.RecommendationCache
	defaults domain.PlanningParams
}

func NewPlanningService(source DataSource, provider forecast.Provider, calc *engine.Calculator, cacheImpl cache.RecommendationCache, defaults domain.PlanningParams) *PlanningService {
	if cacheImpl == nil {
		cacheImpl = cache.NewNoopRecommendationCache()
	}
	return &PlanningService{
		source:   source,
		provider: provider,
		calc:     calc,
		cache:    cacheImpl,
		defaults: defaults,
	}
}

// Defaults returns the configured planning parameter defaults.
func (s *PlanningService) Defaults() domain.PlanningParams {
	return s.defaults
}

// Components lists the catalog, optionally narrowed by category.
func (s *PlanningService) Components(ctx context.Context, category string, limit int) ([]domain.Component, error) {
	components, err := s.source.Components(ctx)
	if err != nil {
		return nil, err
	}

	if category != "" {
		filtered := components[:0]
		for _, c := range components {
			if c.Category == category {
				filtered = append(filtered, c)
			}
		}
		components = filtered
	}

	if limit > 0 && len(components) > limit {
		components = components[:limit]
	}

	return components, nil
}

// Component fetches one catalog entry.
func (s *PlanningService) Component(ctx context.Context, componentID string) (domain.Component, error) {
	return s.source.Component(ctx, componentID)
}

// UsageHistory returns the windowed demand series for a component. days <= 0
// returns the full history.
func (s *PlanningService) UsageHistory(ctx context.Context, componentID string, days int) ([]domain.UsagePoint, error) {
	if _, err := s.source.Component(ctx, componentID); err != nil {
		return nil, err
	}
	return s.source.Usage(ctx, componentID, days)
}

// RecommendComponent computes the planning recommendation for one component,
// consulting the cache first.
func (s *PlanningService) RecommendComponent(ctx context.Context, componentID string, params domain.PlanningParams) (*domain.Recommendation, error) {
	if rec, ok, err := s.cache.Get(ctx, componentID, params); err == nil && ok {
		return rec, nil
	} else if err != nil {
		log.Warn().Err(err).Str("component_id", componentID).Msg("planning: cache get failed")
	}

	component, err := s.source.Component(ctx, componentID)
	if err != nil {
		return nil, err
	}

	rec, err := s.BuildRecommendation(ctx, component, params)
	if err != nil {
		return nil, err
	}

	if err := s.cache.Set(ctx, rec); err != nil {
		log.Warn().Err(err).Str("component_id", componentID).Msg("planning: cache set failed")
	}

	return rec, nil
}

// BuildRecommendation runs the forecast and calculation chain for a component
// already in hand. The batch pipeline calls this directly, bypassing the
// cache.
func (s *PlanningService) BuildRecommendation(ctx context.Context, component domain.Component, params domain.PlanningParams) (*domain.Recommendation, error) {
	leadTimeDays := params.LeadTimeDays
	if component.LeadTimeDays > 0 {
		leadTimeDays = component.LeadTimeDays
	}

	demand, err := s.source.Demand(ctx, component.ComponentID)
	if err != nil {
		return nil, err
	}

	fc, source := s.projectDemand(ctx, component.ComponentID, demand, leadTimeDays)

	metrics, err := s.calc.Compute(engine.Inputs{
		Demand:       demand,
		Forecast:     fc,
		LeadTimeDays: leadTimeDays,
		ServiceLevel: params.ServiceLevel,
		CurrentStock: component.CurrentStock,
		UnitCost:     component.UnitCost,
	})
	if err != nil {
		return nil, fmt.Errorf("computing recommendation for %s: %w", component.ComponentID, err)
	}
	if metrics.UsedDemandFallback {
		source = forecastSourceHistMean
	}

	status := domain.ClassifyStock(component.CurrentStock, metrics.SafetyStock, metrics.OptimalInventory)

	action := "No order needed"
	if metrics.OrderQuantity > 0 {
		action = fmt.Sprintf("Order %.0f units at $%.2f each", metrics.OrderQuantity, component.UnitCost)
	}

	return &domain.Recommendation{
		ID:                 uuid.NewString(),
		ComponentID:        component.ComponentID,
		ComponentName:      component.Name,
		Category:           component.Category,
		LeadTimeDays:       leadTimeDays,
		ServiceLevel:       params.ServiceLevel,
		CurrentStock:       component.CurrentStock,
		UnitCost:           component.UnitCost,
		SafetyStock:        metrics.SafetyStock,
		OptimalInventory:   metrics.OptimalInventory,
		OrderQuantity:      metrics.OrderQuantity,
		BaselineInventory:  metrics.BaselineInventory,
		InventoryReduction: metrics.Savings.InventoryReduction,
		ReductionPct:       metrics.Savings.ReductionPct,
		CapitalReleased:    metrics.Savings.CapitalReleased,
		AnnualSavings:      metrics.Savings.AnnualSavings,
		StockStatus:        status,
		Action:             action,
		DemandObservations: metrics.DemandObservations,
		ForecastSource:     source,
		GeneratedAt:        time.Now().UTC(),
	}, nil
}

// projectDemand asks the configured provider for a forecast and falls back
// to the flat average when the provider cannot produce one. A component with
// no history at all ends up with a zero forecast; the calculator decides
// whether that is an error.
func (s *PlanningService) projectDemand(ctx context.Context, componentID string, demand []float64, leadTimeDays int) (engine.Forecast, string) {
	periods := forecast.Horizon(leadTimeDays)

	fc, err := s.provider.Forecast(ctx, demand, periods)
	if err == nil {
		return fc, s.provider.Name()
	}

	log.Warn().
		Err(err).
		Str("component_id", componentID).
		Str("provider", s.provider.Name()).
		Msg("planning: forecast provider failed, falling back to flat average")

	fallback := forecast.NewFlatAverage()
	fc, err = fallback.Forecast(ctx, demand, periods)
	if err != nil {
		return engine.Forecast{}, forecast.NameFlatAverage
	}

	return fc, forecast.NameFlatAverage
}

// PortfolioOverview computes recommendations for the whole catalog plus the
// aggregate summary. Components without enough history to plan are skipped
// and logged rather than failing the overview.
func (s *PlanningService) PortfolioOverview(ctx context.Context, params domain.PlanningParams) (*domain.PortfolioOverview, error) {
	if overview, ok, err := s.cache.GetOverview(ctx, params); err == nil && ok {
		return overview, nil
	} else if err != nil {
		log.Warn().Err(err).Msg("planning: cache get overview failed")
	}

	components, err := s.source.Components(ctx)
	if err != nil {
		return nil, err
	}

	recs := make([]domain.Recommendation, 0, len(components))
	for _, component := range components {
		rec, err := s.BuildRecommendation(ctx, component, params)
		if err != nil {
			log.Warn().Err(err).Str("component_id", component.ComponentID).Msg("planning: skipping component in overview")
			continue
		}
		recs = append(recs, *rec)
	}

	overview := &domain.PortfolioOverview{
		Summary:         domain.BuildPortfolioSummary(recs),
		Recommendations: recs,
	}

	if err := s.cache.SetOverview(ctx, params, overview); err != nil {
		log.Warn().Err(err).Msg("planning: cache set overview failed")
	}

	return overview, nil
}

// InvalidateCache drops every cached recommendation and overview. Call after
// any dataset write.
func (s *PlanningService) InvalidateCache(ctx context.Context) error {
	return s.cache.InvalidateAll(ctx)
}
