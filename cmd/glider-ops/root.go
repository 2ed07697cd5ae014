package main

import (
	"context"
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/noah-isme/glider-ops-api/internal/repository"
	"github.com/noah-isme/glider-ops-api/internal/service"
	"github.com/noah-isme/glider-ops-api/pkg/cache"
	"github.com/noah-isme/glider-ops-api/pkg/config"
	"github.com/noah-isme/glider-ops-api/pkg/database"
	"github.com/noah-isme/glider-ops-api/pkg/export"
	"github.com/noah-isme/glider-ops-api/pkg/logger"
)

// app holds the process-wide dependencies shared by every subcommand.
type app struct {
	cfg     *config.Config
	logger  *zap.Logger
	db      *sqlx.DB
	redis   *redis.Client
	metrics *service.MetricsService

	seasons    *service.SeasonService
	archiver   *service.SeasonArchiveService
	statistics *service.StatisticsService
	stations   *service.StationService
	masterList *service.MasterListService
}

// RootCommand builds the glider-ops command tree.
func RootCommand() *cobra.Command {
	a := &app{}

	rootCmd := &cobra.Command{
		Use:           "glider-ops",
		Short:         "Field season and station offload status engine",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.init(cmd.Context())
		},
		PersistentPostRun: func(*cobra.Command, []string) {
			a.close()
		},
	}

	rootCmd.AddCommand(
		serveCommand(a),
		seasonCommand(a),
		masterListCommand(a),
	)

	return rootCmd
}

func (a *app) init(ctx context.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	a.cfg = cfg

	logr, err := logger.New(cfg)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	a.logger = logr

	db, err := database.NewPostgres(ctx, cfg.Database)
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}
	a.db = db

	if cfg.Statistics.CacheEnabled {
		client, err := cache.NewRedis(ctx, cfg.Redis)
		if err != nil {
			logr.Warn("redis unavailable, statistics cache disabled", zap.Error(err))
		} else {
			a.redis = client
		}
	}

	a.wire()
	return nil
}

func (a *app) wire() {
	seasonRepo := repository.NewSeasonRepository(a.db)
	stationRepo := repository.NewStationRepository(a.db)
	logRepo := repository.NewOffloadLogRepository(a.db)
	tx := database.NewTransactor(a.db)
	validate := validator.New()

	a.metrics = service.NewMetricsService()

	var cacheRepo service.CacheRepository
	if a.redis != nil {
		cacheRepo = repository.NewCacheRepository(a.redis, a.logger)
	}
	cacheSvc := service.NewCacheService(cacheRepo, a.metrics, a.cfg.Statistics.CacheTTL, a.logger, a.cfg.Statistics.CacheEnabled)

	a.seasons = service.NewSeasonService(seasonRepo, tx, validate, a.logger)
	a.statistics = service.NewStatisticsService(seasonRepo, stationRepo, logRepo, tx, cacheSvc, a.metrics, a.logger)
	a.archiver = service.NewSeasonArchiveService(service.SeasonArchiveServiceParams{
		Seasons:  seasonRepo,
		Stations: stationRepo,
		Logs:     logRepo,
		Tx:       tx,
		Cache:    cacheSvc,
		Metrics:  a.metrics,
		Logger:   a.logger,
	})
	a.stations = service.NewStationService(seasonRepo, stationRepo, logRepo, tx, a.metrics, validate, a.logger)
	a.masterList = service.NewMasterListService(seasonRepo, stationRepo, tx, export.NewCSVExporter(), export.NewXLSXExporter("stations"), a.logger)
}

func (a *app) close() {
	if a.redis != nil {
		_ = a.redis.Close()
	}
	if a.db != nil {
		_ = a.db.Close()
	}
	if a.logger != nil {
		_ = a.logger.Sync()
	}
}
