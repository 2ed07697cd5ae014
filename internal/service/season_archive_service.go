package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/noah-isme/glider-ops-api/internal/models"
	"github.com/noah-isme/glider-ops-api/internal/repository"
	appErrors "github.com/noah-isme/glider-ops-api/pkg/errors"
)

// SeasonArchiveService closes seasons and maintains their frozen statistics.
type SeasonArchiveService struct {
	seasons  seasonStore
	stations stationStore
	logs     offloadLogStore
	tx       transactor
	stats    *StatisticsService
	cache    *CacheService
	metrics  *MetricsService
	logger   *zap.Logger
	now      func() time.Time
}

// SeasonArchiveServiceParams groups constructor dependencies.
type SeasonArchiveServiceParams struct {
	Seasons  seasonStore
	Stations stationStore
	Logs     offloadLogStore
	Tx       transactor
	Cache    *CacheService
	Metrics  *MetricsService
	Logger   *zap.Logger
	Now      func() time.Time
}

// NewSeasonArchiveService constructs the archiver.
func NewSeasonArchiveService(params SeasonArchiveServiceParams) *SeasonArchiveService {
	logger := params.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	now := params.Now
	if now == nil {
		now = time.Now
	}
	return &SeasonArchiveService{
		seasons:  params.Seasons,
		stations: params.Stations,
		logs:     params.Logs,
		tx:       params.Tx,
		stats:    NewStatisticsService(params.Seasons, params.Stations, params.Logs, params.Tx, nil, nil, logger),
		cache:    params.Cache,
		metrics:  params.Metrics,
		logger:   logger,
		now:      now,
	}
}

type closeOutcome struct {
	season   *models.FieldSeason
	archived int64
	backfill int64
}

// CloseSeason freezes year: it snapshots the statistics, archives every station of the season,
// stamps unassigned logs and marks the season closed, all in one transaction.
func (s *SeasonArchiveService) CloseSeason(ctx context.Context, year int, closedBy string) (*models.FieldSeason, error) {
	closedBy = strings.TrimSpace(closedBy)
	if closedBy == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "closed_by is required")
	}

	opID := uuid.NewString()
	logger := s.logger.With(zap.String("operation_id", opID), zap.Int("year", year), zap.String("closed_by", closedBy))
	start := time.Now()

	var outcome closeOutcome
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		season, err := s.lockOrCreate(ctx, year)
		if err != nil {
			return err
		}
		if season.IsClosed() {
			return appErrors.Clone(appErrors.ErrSeasonAlreadyClosed, fmt.Sprintf("season %d is already closed", year))
		}

		active, err := activeSeason(ctx, s.seasons)
		if err != nil {
			return err
		}
		scope := scopeFor(year, season, active)

		// Station rows are locked before logs are read so concurrent ingestion either lands first or sees the archive.
		stats, err := s.stats.collect(ctx, &year, scope, true)
		if err != nil {
			return err
		}

		closedAt := s.now().UTC()
		if outcome.archived, err = s.stations.ArchiveScope(ctx, scope, year, closedAt); err != nil {
			return appErrors.Internal(err, "failed to archive stations")
		}
		if outcome.backfill, err = s.logs.AssignSeason(ctx, year); err != nil {
			return appErrors.Internal(err, "failed to backfill offload logs")
		}

		err = s.seasons.MarkClosed(ctx, repository.MarkClosedParams{
			Year:       year,
			ClosedAt:   closedAt,
			ClosedBy:   closedBy,
			Statistics: stats,
		})
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return appErrors.Clone(appErrors.ErrSeasonAlreadyClosed, fmt.Sprintf("season %d is already closed", year))
			}
			return appErrors.Internal(err, "failed to mark season closed")
		}

		outcome.season, err = s.seasons.FindByYear(ctx, year)
		if err != nil {
			return appErrors.Internal(err, "failed to reload season")
		}
		return nil
	})
	duration := time.Since(start)
	if err != nil {
		appErr := appErrors.FromError(asSeasonWriteError(err, year))
		result := "failed"
		if appErr.Code == appErrors.ErrSeasonAlreadyClosed.Code {
			result = "already_closed"
			logger.Warn("season close rejected", zap.Error(appErr))
		} else {
			logger.Error("season close failed", zap.Error(appErr))
		}
		s.metrics.ObserveSeasonClose(result, 0, duration)
		return nil, appErr
	}

	s.metrics.ObserveSeasonClose("closed", outcome.archived, duration)
	s.cache.ForgetSeason(ctx, year)
	logger.Info("season closed",
		zap.Int64("stations_archived", outcome.archived),
		zap.Int64("logs_backfilled", outcome.backfill),
		zap.Duration("duration", duration),
	)
	return outcome.season, nil
}

// lockOrCreate locks the season row, creating an inactive one when the year was never registered.
// Racing closers of an unregistered year all end up locking the same row.
func (s *SeasonArchiveService) lockOrCreate(ctx context.Context, year int) (*models.FieldSeason, error) {
	season, err := s.seasons.LockByYear(ctx, year)
	if err == nil {
		return season, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, appErrors.Internal(err, "failed to lock season")
	}
	if err := s.seasons.EnsureExists(ctx, year); err != nil {
		return nil, appErrors.Internal(err, "failed to register season")
	}
	season, err = s.seasons.LockByYear(ctx, year)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to lock season")
	}
	return season, nil
}

// ReprocessStatistics recomputes the frozen statistics of a closed season without touching its archive state.
func (s *SeasonArchiveService) ReprocessStatistics(ctx context.Context, year int) (*models.FieldSeason, error) {
	var season *models.FieldSeason
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		current, err := s.seasons.LockByYear(ctx, year)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return appErrors.Clone(appErrors.ErrNotFound, fmt.Sprintf("season %d not found", year))
			}
			return appErrors.Internal(err, "failed to lock season")
		}
		if !current.IsClosed() {
			return appErrors.Clone(appErrors.ErrSeasonNotClosed, fmt.Sprintf("season %d must be closed before reprocessing", year))
		}

		stats, err := s.stats.collect(ctx, &year, models.SeasonScope{Year: &year}, false)
		if err != nil {
			return err
		}
		if err := s.seasons.ReplaceStatistics(ctx, year, stats); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return appErrors.Clone(appErrors.ErrSeasonNotClosed, fmt.Sprintf("season %d must be closed before reprocessing", year))
			}
			return appErrors.Internal(err, "failed to store season statistics")
		}
		season, err = s.seasons.FindByYear(ctx, year)
		if err != nil {
			return appErrors.Internal(err, "failed to reload season")
		}
		return nil
	})
	if err != nil {
		return nil, asAppError(err, "failed to reprocess season statistics")
	}

	s.cache.ForgetSeason(ctx, year)
	s.logger.Info("season statistics reprocessed", zap.Int("year", year))
	return season, nil
}

// asSeasonWriteError maps a lost race on the season table's unique constraints to a conflict.
func asSeasonWriteError(err error, year int) error {
	var appErr *appErrors.Error
	if errors.As(err, &appErr) {
		return appErr
	}
	if repository.IsUniqueViolation(err) {
		return appErrors.Wrap(err, appErrors.ErrConflict.Code, appErrors.ErrConflict.Status,
			fmt.Sprintf("season %d conflicts with an existing or concurrently activated season", year))
	}
	return appErrors.Internal(err, "failed to write season")
}
