package cache

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stockplan/internal/config"
	"stockplan/internal/domain"
)

func TestBuildRecommendationKey(t *testing.T) {
	params := domain.DefaultPlanningParams()

	key := buildRecommendationKey("CMP-001", params)
	assert.True(t, strings.HasPrefix(key, "reco:item:"))

	// Deterministic for the same inputs, distinct otherwise.
	assert.Equal(t, key, buildRecommendationKey("CMP-001", params))
	assert.NotEqual(t, key, buildRecommendationKey("CMP-002", params))

	bumped := params
	bumped.ServiceLevel = 0.99
	assert.NotEqual(t, key, buildRecommendationKey("CMP-001", bumped))
}

func TestBuildOverviewKey(t *testing.T) {
	a := buildOverviewKey(domain.PlanningParams{LeadTimeDays: 30, ServiceLevel: 0.95})
	b := buildOverviewKey(domain.PlanningParams{LeadTimeDays: 45, ServiceLevel: 0.95})

	assert.True(t, strings.HasPrefix(a, "reco:overview:"))
	assert.NotEqual(t, a, b)
}

func TestNewRecommendationCache_DisabledIsNoop(t *testing.T) {
	c, err := NewRecommendationCache(config.CacheConfig{Enabled: false})
	require.NoError(t, err)

	ctx := context.Background()

	_, hit, err := c.Get(ctx, "CMP-001", domain.DefaultPlanningParams())
	require.NoError(t, err)
	assert.False(t, hit)

	assert.NoError(t, c.Set(ctx, &domain.Recommendation{ComponentID: "CMP-001"}))
	assert.NoError(t, c.InvalidateAll(ctx))

	_, hit, err = c.GetOverview(ctx, domain.DefaultPlanningParams())
	require.NoError(t, err)
	assert.False(t, hit)
}
