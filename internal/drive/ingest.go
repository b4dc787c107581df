package drive

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"stockplan/internal/cache"
	"stockplan/internal/dataset"
	"stockplan/internal/repository"
)

// IngestService moves dataset exports into the database: it refreshes the
// local dataset directory from Drive, parses it, and writes the catalog
// and its usage history through to the component repository.
type IngestService struct {
	sync    *DatasetSync
	repo    repository.ComponentRepository
	cache   cache.RecommendationCache
	dataDir string
}

// NewIngestService wires the ingest path. sync may be nil; Refresh then
// loads whatever already sits in the dataset directory.
func NewIngestService(sync *DatasetSync, repo repository.ComponentRepository, cacheImpl cache.RecommendationCache, dataDir string) *IngestService {
	if cacheImpl == nil {
		cacheImpl = cache.NewNoopRecommendationCache()
	}
	return &IngestService{
		sync:    sync,
		repo:    repo,
		cache:   cacheImpl,
		dataDir: dataDir,
	}
}

// IngestResult reports what a refresh loaded.
type IngestResult struct {
	FilesRefreshed int       `json:"files_refreshed"`
	Components     int       `json:"components"`
	UsageRows      int       `json:"usage_rows"`
	SkippedRows    int       `json:"skipped_rows"`
	LatestUsage    time.Time `json:"latest_usage"`
}

// Refresh pulls the newest exports when Drive is wired, reloads the
// dataset directory, and upserts it into the database. Cached
// recommendations are invalidated once the load succeeds.
func (s *IngestService) Refresh(ctx context.Context) (IngestResult, error) {
	var result IngestResult

	if s.sync != nil {
		refreshed, err := s.sync.Sync(ctx)
		if err != nil {
			return result, fmt.Errorf("syncing dataset from drive: %w", err)
		}
		result.FilesRefreshed = len(refreshed)
	}

	loader := dataset.NewLoader()
	ds, err := loader.LoadDir(s.dataDir)
	if err != nil {
		return result, fmt.Errorf("loading dataset from %s: %w", s.dataDir, err)
	}
	result.SkippedRows = loader.Skipped()
	result.LatestUsage = ds.LatestDate()

	components, err := ds.Components(ctx)
	if err != nil {
		return result, err
	}

	if err := s.repo.UpsertComponents(ctx, components); err != nil {
		return result, fmt.Errorf("upserting components: %w", err)
	}
	result.Components = len(components)

	for _, component := range components {
		points, err := ds.Usage(ctx, component.ComponentID, 0)
		if err != nil {
			return result, err
		}
		if len(points) == 0 {
			continue
		}
		if err := s.repo.InsertUsage(ctx, points); err != nil {
			return result, fmt.Errorf("inserting usage for %s: %w", component.ComponentID, err)
		}
		result.UsageRows += len(points)
	}

	if err := s.cache.InvalidateAll(ctx); err != nil {
		log.Warn().Err(err).Msg("ingest: cache invalidation failed")
	}

	log.Info().
		Int("components", result.Components).
		Int("usage_rows", result.UsageRows).
		Int("skipped_rows", result.SkippedRows).
		Msg("ingest: dataset loaded into database")

	return result, nil
}
