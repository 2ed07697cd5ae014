package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/glider-ops-api/internal/models"
	appErrors "github.com/noah-isme/glider-ops-api/pkg/errors"
)

const seasonStatisticsKeyPrefix = "season-stats:"

// SeasonStatisticsKey is the cache key holding the frozen statistics of a closed season.
func SeasonStatisticsKey(year int) string {
	return fmt.Sprintf("%s%d", seasonStatisticsKeyPrefix, year)
}

// CacheRepository abstracts persistence for cached JSON payloads.
type CacheRepository interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	DeleteByPattern(ctx context.Context, pattern string) error
}

// CacheService is a best-effort cache of closed-season statistics. Backend failures are logged and
// reported as misses; callers always fall back to computing from the database.
type CacheService struct {
	repo    CacheRepository
	metrics *MetricsService
	ttl     time.Duration
	logger  *zap.Logger
	enabled bool
}

// NewCacheService constructs a cache service. A non-positive ttl defaults to 24h.
func NewCacheService(repo CacheRepository, metrics *MetricsService, ttl time.Duration, logger *zap.Logger, enabled bool) *CacheService {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CacheService{repo: repo, metrics: metrics, ttl: ttl, logger: logger, enabled: enabled}
}

// Enabled indicates whether caching is active. A nil service is disabled.
func (s *CacheService) Enabled() bool {
	return s != nil && s.enabled && s.repo != nil
}

// SeasonStatistics returns the cached document of a closed season.
func (s *CacheService) SeasonStatistics(ctx context.Context, year int) (*models.SeasonStatistics, bool) {
	if !s.Enabled() {
		return nil, false
	}
	var stats models.SeasonStatistics
	key := SeasonStatisticsKey(year)
	start := time.Now()
	err := s.repo.Get(ctx, key, &stats)
	s.metrics.RecordCacheOperation(err == nil, time.Since(start))
	switch {
	case err == nil:
		return &stats, true
	case !errors.Is(err, appErrors.ErrCacheMiss):
		s.logger.Warn("statistics cache read failed", zap.String("key", key), zap.Error(err))
	}
	return nil, false
}

// StoreSeasonStatistics caches the document of a closed season.
func (s *CacheService) StoreSeasonStatistics(ctx context.Context, year int, stats models.SeasonStatistics) {
	if !s.Enabled() {
		return
	}
	key := SeasonStatisticsKey(year)
	start := time.Now()
	err := s.repo.Set(ctx, key, stats, s.ttl)
	s.metrics.ObserveCacheWrite(time.Since(start))
	if err != nil {
		s.logger.Warn("statistics cache write failed", zap.String("key", key), zap.Error(err))
	}
}

// ForgetSeason drops the cached document of year. A failed delete is logged; the stale entry then
// lives until its TTL expires.
func (s *CacheService) ForgetSeason(ctx context.Context, year int) {
	if !s.Enabled() {
		return
	}
	key := SeasonStatisticsKey(year)
	if err := s.repo.DeleteByPattern(ctx, key); err != nil {
		s.logger.Error("statistics cache invalidation failed", zap.String("key", key), zap.Error(err))
	}
}
