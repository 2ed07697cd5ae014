package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/glider-ops-api/internal/dto"
	"github.com/noah-isme/glider-ops-api/internal/models"
	"github.com/noah-isme/glider-ops-api/internal/repository"
	appErrors "github.com/noah-isme/glider-ops-api/pkg/errors"
)

// StationService owns station metadata, offload ingestion and live status reads.
type StationService struct {
	seasons   seasonStore
	stations  stationStore
	logs      offloadLogStore
	tx        transactor
	metrics   *MetricsService
	validator *validator.Validate
	logger    *zap.Logger
}

// NewStationService constructs the station service.
func NewStationService(seasons seasonStore, stations stationStore, logs offloadLogStore, tx transactor, metrics *MetricsService, validate *validator.Validate, logger *zap.Logger) *StationService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StationService{
		seasons:   seasons,
		stations:  stations,
		logs:      logs,
		tx:        tx,
		metrics:   metrics,
		validator: validate,
		logger:    logger,
	}
}

// RecordOffloadAttempt appends a log entry and refreshes the station's cached outcome atomically.
func (s *StationService) RecordOffloadAttempt(ctx context.Context, stationID string, req dto.RecordOffloadAttemptRequest) (*models.OffloadAttempt, error) {
	stationID = strings.TrimSpace(stationID)
	if stationID == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "station id is required")
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid offload attempt payload")
	}

	attempt := &models.OffloadAttempt{
		StationID:                stationID,
		MissionID:                trimmed(req.MissionID),
		TimeFirstCommandSent:     req.TimeFirstCommandSent,
		OffloadStartTime:         req.OffloadStartTime,
		OffloadEndTime:           req.OffloadEndTime,
		ArrivalTime:              req.ArrivalTime,
		DepartureTime:            req.DepartureTime,
		WasOffloaded:             req.WasOffloaded,
		Notes:                    req.Notes,
		RemoteHealthModemVoltage: req.RemoteHealthModemVoltage,
		RemoteHealthTemperatureC: req.RemoteHealthTemperatureC,
		RemoteHealthTiltDeg:      req.RemoteHealthTiltDeg,
		RemoteHealthHumidity:     req.RemoteHealthHumidity,
	}

	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		station, err := s.stations.LockByID(ctx, stationID)
		if err != nil {
			return stationLookupError(err, stationID)
		}
		if station.IsArchived {
			return archivedError(stationID)
		}

		active, err := activeSeason(ctx, s.seasons)
		if err != nil {
			return err
		}
		if active != nil {
			attempt.FieldSeasonYear = copyInt(&active.Year)
		}

		if err := s.logs.Create(ctx, attempt); err != nil {
			return appErrors.Internal(err, "failed to record offload attempt")
		}

		ts := attempt.LoggedAt
		if attempt.OffloadEndTime != nil {
			ts = *attempt.OffloadEndTime
		}
		err = s.stations.UpdateOffloadCache(ctx, repository.OffloadCacheUpdate{
			StationID:    stationID,
			Timestamp:    ts.UTC(),
			WasOffloaded: attempt.WasOffloaded,
			MissionID:    attempt.MissionID,
		})
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return archivedError(stationID)
			}
			return appErrors.Internal(err, "failed to update station offload status")
		}
		return nil
	})
	if err != nil {
		appErr := appErrors.FromError(err)
		if appErr.Code == appErrors.ErrArchivedReadOnly.Code {
			s.logger.Warn("offload attempt rejected", zap.String("station_id", stationID), zap.Error(appErr))
		}
		return nil, appErr
	}

	s.metrics.RecordOffloadAttempt(attempt.WasOffloaded)
	s.logger.Info("offload attempt recorded",
		zap.String("station_id", stationID),
		zap.Int64("attempt_id", attempt.ID),
	)
	return attempt, nil
}

// UpsertStation creates a station or updates its durable metadata. Archived stations are read-only.
func (s *StationService) UpsertStation(ctx context.Context, stationID string, req dto.UpsertStationRequest) (*models.StationRecord, error) {
	stationID = strings.TrimSpace(stationID)
	if stationID == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "station id is required")
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid station payload")
	}

	var station *models.StationRecord
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		record := &models.StationRecord{
			StationID:            stationID,
			SerialNumber:         trimmed(req.SerialNumber),
			ModemAddress:         req.ModemAddress,
			BottomDepthM:         req.BottomDepthM,
			Latitude:             req.Latitude,
			Longitude:            req.Longitude,
			Waypoint:             trimmed(req.Waypoint),
			Notes:                req.Notes,
			LastOperatingMission: trimmed(req.LastOperatingMission),
		}
		if err := s.stations.Upsert(ctx, record); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return archivedError(stationID)
			}
			return appErrors.Internal(err, "failed to save station")
		}
		var err error
		station, err = s.stations.FindByID(ctx, stationID)
		if err != nil {
			return appErrors.Internal(err, "failed to reload station")
		}
		return nil
	})
	if err != nil {
		return nil, appErrors.FromError(err)
	}
	return station, nil
}

// SetDisplayStatusOverride sets or clears the manual override shown ahead of derived status.
func (s *StationService) SetDisplayStatusOverride(ctx context.Context, stationID string, req dto.SetOverrideRequest) (*models.StationStatus, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid override payload")
	}
	override := trimmed(req.Override)
	if override != nil && strings.EqualFold(*override, models.OverrideSkipped) {
		normalised := models.OverrideSkipped
		override = &normalised
	}

	var status *models.StationStatus
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		station, err := s.stations.LockByID(ctx, stationID)
		if err != nil {
			return stationLookupError(err, stationID)
		}
		if station.IsArchived {
			return archivedError(stationID)
		}
		if err := s.stations.SetDisplayStatusOverride(ctx, stationID, override); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return archivedError(stationID)
			}
			return appErrors.Internal(err, "failed to set display status override")
		}
		status, err = s.loadStatus(ctx, stationID)
		return err
	})
	if err != nil {
		return nil, appErrors.FromError(err)
	}
	return status, nil
}

// GetStatus returns a station with its derived display status and attempt history. The history is
// limited to the logs the station's season listing shows.
func (s *StationService) GetStatus(ctx context.Context, stationID string) (*models.StationStatus, error) {
	var status *models.StationStatus
	err := s.tx.WithinReadOnlyTx(ctx, func(ctx context.Context) error {
		var err error
		status, err = s.loadStatus(ctx, stationID)
		return err
	})
	if err != nil {
		return nil, appErrors.FromError(err)
	}
	return status, nil
}

// ListStatuses returns dashboard rows for the stations of year, or of the current period when year is nil.
func (s *StationService) ListStatuses(ctx context.Context, year *int) ([]models.StationStatus, error) {
	statuses := []models.StationStatus{}
	err := s.tx.WithinReadOnlyTx(ctx, func(ctx context.Context) error {
		scope, _, err := resolveSeasonScope(ctx, s.seasons, year)
		if err != nil {
			return err
		}
		stations, err := s.stations.ListByScope(ctx, scope, false)
		if err != nil {
			return appErrors.Internal(err, "failed to list stations")
		}
		logs, err := s.logs.ListByScope(ctx, scope)
		if err != nil {
			return appErrors.Internal(err, "failed to list offload logs")
		}
		byStation := make(map[string][]models.OffloadAttempt, len(stations))
		for _, entry := range logs {
			byStation[entry.StationID] = append(byStation[entry.StationID], entry)
		}
		for _, station := range stations {
			statuses = append(statuses, buildStationStatus(station, byStation[station.StationID]))
		}
		return nil
	})
	if err != nil {
		return nil, appErrors.FromError(err)
	}
	return statuses, nil
}

func (s *StationService) loadStatus(ctx context.Context, stationID string) (*models.StationStatus, error) {
	station, err := s.stations.FindByID(ctx, stationID)
	if err != nil {
		return nil, stationLookupError(err, stationID)
	}
	scope := models.SeasonScope{}
	if station.FieldSeasonYear != nil {
		if scope, _, err = resolveSeasonScope(ctx, s.seasons, station.FieldSeasonYear); err != nil {
			return nil, err
		}
	}
	logs, err := s.logs.ListByStation(ctx, stationID, scope)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to load offload logs")
	}
	status := buildStationStatus(*station, logs)
	return &status, nil
}

func buildStationStatus(station models.StationRecord, logs []models.OffloadAttempt) models.StationStatus {
	display, color := ClassifyStation(station, len(logs))
	return models.StationStatus{
		Station:       station,
		StationType:   ClassifyStationType(station.StationID),
		DisplayStatus: display,
		StatusColor:   color,
		LogCount:      len(logs),
		Attempts:      ExtractAttempts(logs),
	}
}

func stationLookupError(err error, stationID string) error {
	if errors.Is(err, sql.ErrNoRows) {
		return appErrors.Clone(appErrors.ErrNotFound, fmt.Sprintf("station %s not found", stationID))
	}
	return appErrors.Internal(err, "failed to load station")
}

func archivedError(stationID string) error {
	return appErrors.Clone(appErrors.ErrArchivedReadOnly, fmt.Sprintf("station %s is archived and read-only", stationID))
}

func trimmed(v *string) *string {
	if v == nil {
		return nil
	}
	out := strings.TrimSpace(*v)
	if out == "" {
		return nil
	}
	return &out
}
