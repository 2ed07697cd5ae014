package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/noah-isme/glider-ops-api/internal/models"
	"github.com/noah-isme/glider-ops-api/internal/repository"
	appErrors "github.com/noah-isme/glider-ops-api/pkg/errors"
)

type seasonStore interface {
	List(ctx context.Context) ([]models.FieldSeason, error)
	FindByYear(ctx context.Context, year int) (*models.FieldSeason, error)
	LockByYear(ctx context.Context, year int) (*models.FieldSeason, error)
	ListActive(ctx context.Context) ([]models.FieldSeason, error)
	Create(ctx context.Context, season *models.FieldSeason) error
	EnsureExists(ctx context.Context, year int) error
	DeactivateAll(ctx context.Context) (int64, error)
	Activate(ctx context.Context, year int) error
	MarkClosed(ctx context.Context, params repository.MarkClosedParams) error
	ReplaceStatistics(ctx context.Context, year int, stats models.SeasonStatistics) error
}

type stationStore interface {
	FindByID(ctx context.Context, stationID string) (*models.StationRecord, error)
	LockByID(ctx context.Context, stationID string) (*models.StationRecord, error)
	ListByScope(ctx context.Context, scope models.SeasonScope, forUpdate bool) ([]models.StationRecord, error)
	Upsert(ctx context.Context, station *models.StationRecord) error
	SetDisplayStatusOverride(ctx context.Context, stationID string, override *string) error
	UpdateOffloadCache(ctx context.Context, update repository.OffloadCacheUpdate) error
	ArchiveScope(ctx context.Context, scope models.SeasonScope, year int, archivedAt time.Time) (int64, error)
}

type offloadLogStore interface {
	Create(ctx context.Context, attempt *models.OffloadAttempt) error
	ListByStation(ctx context.Context, stationID string, scope models.SeasonScope) ([]models.OffloadAttempt, error)
	ListByScope(ctx context.Context, scope models.SeasonScope) ([]models.OffloadAttempt, error)
	AssignSeason(ctx context.Context, year int) (int64, error)
}

type transactor interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context) error) error
	WithinReadOnlyTx(ctx context.Context, fn func(ctx context.Context) error) error
}

type seasonLookup interface {
	FindByYear(ctx context.Context, year int) (*models.FieldSeason, error)
	ListActive(ctx context.Context) ([]models.FieldSeason, error)
}

// activeSeason returns the single active season, nil when none is active.
func activeSeason(ctx context.Context, seasons seasonLookup) (*models.FieldSeason, error) {
	active, err := seasons.ListActive(ctx)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to load active season")
	}
	switch len(active) {
	case 0:
		return nil, nil
	case 1:
		return &active[0], nil
	default:
		years := make([]int, 0, len(active))
		for _, season := range active {
			years = append(years, season.Year)
		}
		return nil, appErrors.Clone(appErrors.ErrInvariantViolation, fmt.Sprintf("multiple active seasons: %v", years))
	}
}

// resolveSeasonScope maps a requested year (nil for the current unassigned period) onto the rows it owns.
// The returned season is nil when no row exists for the year yet.
func resolveSeasonScope(ctx context.Context, seasons seasonLookup, year *int) (models.SeasonScope, *models.FieldSeason, error) {
	if year == nil {
		return models.SeasonScope{}, nil, nil
	}
	season, err := seasons.FindByYear(ctx, *year)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return models.SeasonScope{}, nil, appErrors.Internal(err, "failed to load season")
	}
	if errors.Is(err, sql.ErrNoRows) {
		season = nil
	}
	active, err := activeSeason(ctx, seasons)
	if err != nil {
		return models.SeasonScope{}, nil, err
	}
	return scopeFor(*year, season, active), season, nil
}

// scopeFor decides whether unassigned rows belong to year: they do when year is the active season,
// or when nothing is active and year has not been closed.
func scopeFor(year int, season, active *models.FieldSeason) models.SeasonScope {
	scope := models.SeasonScope{Year: &year}
	if season.IsClosed() {
		return scope
	}
	if active != nil {
		scope.IncludeUnassigned = active.Year == year
		return scope
	}
	scope.IncludeUnassigned = true
	return scope
}
