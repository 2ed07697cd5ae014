package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/glider-ops-api/internal/dto"
	"github.com/noah-isme/glider-ops-api/internal/models"
	appErrors "github.com/noah-isme/glider-ops-api/pkg/errors"
)

// SeasonService manages field season rows and the single active season.
type SeasonService struct {
	repo      seasonStore
	tx        transactor
	validator *validator.Validate
	logger    *zap.Logger
}

// NewSeasonService creates a new season registry.
func NewSeasonService(repo seasonStore, tx transactor, validate *validator.Validate, logger *zap.Logger) *SeasonService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SeasonService{repo: repo, tx: tx, validator: validate, logger: logger}
}

// List returns every season, most recent year first.
func (s *SeasonService) List(ctx context.Context) ([]models.FieldSeason, error) {
	seasons, err := s.repo.List(ctx)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to list seasons")
	}
	return seasons, nil
}

// Get returns the season registered for year.
func (s *SeasonService) Get(ctx context.Context, year int) (*models.FieldSeason, error) {
	season, err := s.repo.FindByYear(ctx, year)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, fmt.Sprintf("season %d not found", year))
		}
		return nil, appErrors.Internal(err, "failed to load season")
	}
	return season, nil
}

// GetActive returns the active season. More than one active row is reported, never tolerated.
func (s *SeasonService) GetActive(ctx context.Context) (*models.FieldSeason, error) {
	season, err := activeSeason(ctx, s.repo)
	if err != nil {
		if appErrors.FromError(err).Code == appErrors.ErrInvariantViolation.Code {
			s.logger.Error("active season invariant broken", zap.Error(err))
		}
		return nil, err
	}
	if season == nil {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "no active season")
	}
	return season, nil
}

// Create registers a season, optionally making it the active one.
func (s *SeasonService) Create(ctx context.Context, req dto.CreateSeasonRequest) (*models.FieldSeason, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid season payload")
	}

	season := &models.FieldSeason{Year: req.Year, IsActive: req.MakeActive}
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		if _, err := s.repo.FindByYear(ctx, req.Year); err == nil {
			return appErrors.Clone(appErrors.ErrConflict, fmt.Sprintf("season %d already exists", req.Year))
		} else if !errors.Is(err, sql.ErrNoRows) {
			return appErrors.Internal(err, "failed to check season")
		}
		if req.MakeActive {
			if _, err := s.repo.DeactivateAll(ctx); err != nil {
				return appErrors.Internal(err, "failed to deactivate seasons")
			}
		}
		if err := s.repo.Create(ctx, season); err != nil {
			return err
		}
		return nil
	})
	if err != nil {
		return nil, asSeasonWriteError(err, req.Year)
	}

	s.logger.Info("season created", zap.Int("year", season.Year), zap.Bool("active", season.IsActive))
	return season, nil
}

// Activate makes an existing, still open season the active one.
func (s *SeasonService) Activate(ctx context.Context, year int) (*models.FieldSeason, error) {
	var season *models.FieldSeason
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		current, err := s.repo.LockByYear(ctx, year)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return appErrors.Clone(appErrors.ErrNotFound, fmt.Sprintf("season %d not found", year))
			}
			return appErrors.Internal(err, "failed to lock season")
		}
		if current.IsClosed() {
			return appErrors.Clone(appErrors.ErrSeasonAlreadyClosed, fmt.Sprintf("season %d is closed and cannot be activated", year))
		}
		if current.IsActive {
			season = current
			return nil
		}
		if _, err := s.repo.DeactivateAll(ctx); err != nil {
			return appErrors.Internal(err, "failed to deactivate seasons")
		}
		if err := s.repo.Activate(ctx, year); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return appErrors.Clone(appErrors.ErrSeasonAlreadyClosed, fmt.Sprintf("season %d is closed and cannot be activated", year))
			}
			return err
		}
		season, err = s.repo.FindByYear(ctx, year)
		if err != nil {
			return appErrors.Internal(err, "failed to reload season")
		}
		return nil
	})
	if err != nil {
		return nil, asSeasonWriteError(err, year)
	}

	s.logger.Info("season activated", zap.Int("year", year))
	return season, nil
}
