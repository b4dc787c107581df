// internal/repository/repository.go
package repository

import (
	"context"

	"stockplan/internal/domain"
)

// ComponentRepository persists the catalog and its usage history. The
// read side doubles as the planning service's data source.
type ComponentRepository interface {
	Components(ctx context.Context) ([]domain.Component, error)
	Component(ctx context.Context, componentID string) (domain.Component, error)
	Usage(ctx context.Context, componentID string, days int) ([]domain.UsagePoint, error)
	Demand(ctx context.Context, componentID string) ([]float64, error)
	UpsertComponents(ctx context.Context, components []domain.Component) error
	InsertUsage(ctx context.Context, points []domain.UsagePoint) error
}

// RecommendationRepository stores computed recommendations and serves the
// latest figure per component.
type RecommendationRepository interface {
	SaveBatch(ctx context.Context, recs []domain.Recommendation) error
	Latest(ctx context.Context, filter domain.RecommendationFilter) ([]domain.Recommendation, error)
}
