package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/glider-ops-api/internal/models"
	appErrors "github.com/noah-isme/glider-ops-api/pkg/errors"
)

// StatisticsResult is a computed statistics document and where it came from.
type StatisticsResult struct {
	Scope      models.SeasonScope
	Statistics models.SeasonStatistics
	Cached     bool
}

// StatisticsService computes season statistics on a consistent read-only snapshot.
type StatisticsService struct {
	seasons  seasonStore
	stations stationStore
	logs     offloadLogStore
	tx       transactor
	cache    *CacheService
	metrics  *MetricsService
	logger   *zap.Logger
}

// NewStatisticsService constructs the statistics service. cache may be nil.
func NewStatisticsService(seasons seasonStore, stations stationStore, logs offloadLogStore, tx transactor, cache *CacheService, metrics *MetricsService, logger *zap.Logger) *StatisticsService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StatisticsService{
		seasons:  seasons,
		stations: stations,
		logs:     logs,
		tx:       tx,
		cache:    cache,
		metrics:  metrics,
		logger:   logger,
	}
}

// Compute returns the statistics of year, or of the current unassigned period when year is nil.
// Closed seasons never change, so their documents are served from cache when available.
func (s *StatisticsService) Compute(ctx context.Context, year *int) (*StatisticsResult, error) {
	if year != nil {
		if cached, hit := s.cache.SeasonStatistics(ctx, *year); hit {
			return &StatisticsResult{Scope: models.SeasonScope{Year: copyInt(year)}, Statistics: *cached, Cached: true}, nil
		}
	}

	var (
		result StatisticsResult
		closed bool
	)
	start := time.Now()
	err := s.tx.WithinReadOnlyTx(ctx, func(ctx context.Context) error {
		scope, season, err := resolveSeasonScope(ctx, s.seasons, year)
		if err != nil {
			return err
		}
		closed = season.IsClosed()
		stats, err := s.collect(ctx, year, scope, false)
		if err != nil {
			return err
		}
		result = StatisticsResult{Scope: scope, Statistics: stats}
		return nil
	})
	s.metrics.ObserveDBQuery("season_statistics", time.Since(start))
	if err != nil {
		return nil, asAppError(err, "failed to compute season statistics")
	}

	if closed {
		s.cache.StoreSeasonStatistics(ctx, *year, result.Statistics)
	}
	return &result, nil
}

// collect loads the rows of scope and aggregates them. forUpdate locks the station rows.
func (s *StatisticsService) collect(ctx context.Context, year *int, scope models.SeasonScope, forUpdate bool) (models.SeasonStatistics, error) {
	stations, err := s.stations.ListByScope(ctx, scope, forUpdate)
	if err != nil {
		return models.SeasonStatistics{}, appErrors.Internal(err, "failed to load season stations")
	}
	logs, err := s.logs.ListByScope(ctx, scope)
	if err != nil {
		return models.SeasonStatistics{}, appErrors.Internal(err, "failed to load season offload logs")
	}
	return BuildSeasonStatistics(year, stations, logs), nil
}

// asAppError keeps typed errors and wraps anything else as internal.
func asAppError(err error, message string) error {
	if err == nil {
		return nil
	}
	var appErr *appErrors.Error
	if errors.As(err, &appErr) {
		return appErr
	}
	return appErrors.Internal(err, message)
}
