package cache

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"stockplan/internal/config"
	"stockplan/internal/domain"
)

const (
	recommendationKeyPrefix = "reco"
	scanBatchSize           = 100
)

// RecommendationCache sits in front of the planning service. Entries are
// keyed by component and parameter set; the portfolio overview is cached
// per parameter set. Any write to the underlying data should be followed
// by InvalidateAll.
type RecommendationCache interface {
	Get(ctx context.Context, componentID string, params domain.PlanningParams) (*domain.Recommendation, bool, error)
	Set(ctx context.Context, rec *domain.Recommendation) error
	GetOverview(ctx context.Context, params domain.PlanningParams) (*domain.PortfolioOverview, bool, error)
	SetOverview(ctx context.Context, params domain.PlanningParams, overview *domain.PortfolioOverview) error
	InvalidateAll(ctx context.Context) error
}

type redisRecommendationCache struct {
	client *redis.Client
	ttl    time.Duration
}

type noopRecommendationCache struct{}

// NewRecommendationCache builds the Redis-backed cache, or the no-op
// implementation when caching is disabled.
func NewRecommendationCache(cfg config.CacheConfig) (RecommendationCache, error) {
	if !cfg.Enabled {
		return &noopRecommendationCache{}, nil
	}

	client, ttl, err := newRedisClient(cfg)
	if err != nil {
		return nil, err
	}

	return &redisRecommendationCache{client: client, ttl: ttl}, nil
}

// NewNoopRecommendationCache returns the pass-through implementation.
func NewNoopRecommendationCache() RecommendationCache {
	return &noopRecommendationCache{}
}

func (c *redisRecommendationCache) Get(ctx context.Context, componentID string, params domain.PlanningParams) (*domain.Recommendation, bool, error) {
	payload, err := c.client.Get(ctx, buildRecommendationKey(componentID, params)).Bytes()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("redis get failed: %w", err)
	}

	var rec domain.Recommendation
	if err := json.Unmarshal(payload, &rec); err != nil {
		return nil, false, fmt.Errorf("cache payload decode failed: %w", err)
	}

	return &rec, true, nil
}

func (c *redisRecommendationCache) Set(ctx context.Context, rec *domain.Recommendation) error {
	if rec == nil {
		return nil
	}

	params := domain.PlanningParams{LeadTimeDays: rec.LeadTimeDays, ServiceLevel: rec.ServiceLevel}
	payload, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("cache payload encode failed: %w", err)
	}

	if err := c.client.Set(ctx, buildRecommendationKey(rec.ComponentID, params), payload, c.ttl).Err(); err != nil {
		return fmt.Errorf("redis set failed: %w", err)
	}

	return nil
}

func (c *redisRecommendationCache) GetOverview(ctx context.Context, params domain.PlanningParams) (*domain.PortfolioOverview, bool, error) {
	payload, err := c.client.Get(ctx, buildOverviewKey(params)).Bytes()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("redis get failed: %w", err)
	}

	var overview domain.PortfolioOverview
	if err := json.Unmarshal(payload, &overview); err != nil {
		return nil, false, fmt.Errorf("cache payload decode failed: %w", err)
	}

	return &overview, true, nil
}

func (c *redisRecommendationCache) SetOverview(ctx context.Context, params domain.PlanningParams, overview *domain.PortfolioOverview) error {
	if overview == nil {
		return nil
	}

	payload, err := json.Marshal(overview)
	if err != nil {
		return fmt.Errorf("cache payload encode failed: %w", err)
	}

	if err := c.client.Set(ctx, buildOverviewKey(params), payload, c.ttl).Err(); err != nil {
		return fmt.Errorf("redis set failed: %w", err)
	}

	return nil
}

func (c *redisRecommendationCache) InvalidateAll(ctx context.Context) error {
	return deleteKeysWithPrefix(ctx, c.client, recommendationKeyPrefix+":", scanBatchSize)
}

func (n *noopRecommendationCache) Get(ctx context.Context, componentID string, params domain.PlanningParams) (*domain.Recommendation, bool, error) {
	return nil, false, nil
}

func (n *noopRecommendationCache) Set(ctx context.Context, rec *domain.Recommendation) error {
	return nil
}

func (n *noopRecommendationCache) GetOverview(ctx context.Context, params domain.PlanningParams) (*domain.PortfolioOverview, bool, error) {
	return nil, false, nil
}

func (n *noopRecommendationCache) SetOverview(ctx context.Context, params domain.PlanningParams, overview *domain.PortfolioOverview) error {
	return nil
}

func (n *noopRecommendationCache) InvalidateAll(ctx context.Context) error {
	return nil
}

func buildRecommendationKey(componentID string, params domain.PlanningParams) string {
	raw := fmt.Sprintf("%s|lt=%d|sl=%g", componentID, params.LeadTimeDays, params.ServiceLevel)
	hash := sha1.Sum([]byte(raw))

	return fmt.Sprintf("%s:item:%s", recommendationKeyPrefix, hex.EncodeToString(hash[:]))
}

func buildOverviewKey(params domain.PlanningParams) string {
	raw := fmt.Sprintf("lt=%d|sl=%g", params.LeadTimeDays, params.ServiceLevel)
	hash := sha1.Sum([]byte(raw))

	return fmt.Sprintf("%s:overview:%s", recommendationKeyPrefix, hex.EncodeToString(hash[:]))
}
