package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/glider-ops-api/internal/dto"
	"github.com/noah-isme/glider-ops-api/internal/models"
	appErrors "github.com/noah-isme/glider-ops-api/pkg/errors"
)

type stationServiceMock struct {
	archived  map[string]bool
	listYear  *int
	lastEntry dto.RecordOffloadAttemptRequest
}

func (m *stationServiceMock) RecordOffloadAttempt(ctx context.Context, stationID string, req dto.RecordOffloadAttemptRequest) (*models.OffloadAttempt, error) {
	if m.archived[stationID] {
		return nil, appErrors.Clone(appErrors.ErrArchivedReadOnly, "station is archived and read-only")
	}
	m.lastEntry = req
	return &models.OffloadAttempt{ID: 7, StationID: stationID, WasOffloaded: req.WasOffloaded}, nil
}

func (m *stationServiceMock) UpsertStation(ctx context.Context, stationID string, req dto.UpsertStationRequest) (*models.StationRecord, error) {
	return &models.StationRecord{StationID: stationID, Waypoint: req.Waypoint}, nil
}

func (m *stationServiceMock) SetDisplayStatusOverride(ctx context.Context, stationID string, req dto.SetOverrideRequest) (*models.StationStatus, error) {
	return &models.StationStatus{
		Station:       models.StationRecord{StationID: stationID, DisplayStatusOverride: req.Override},
		DisplayStatus: models.DisplayStatusSkipped,
		StatusColor:   models.StatusColorSecondary,
	}, nil
}

func (m *stationServiceMock) GetStatus(ctx context.Context, stationID string) (*models.StationStatus, error) {
	return nil, appErrors.Clone(appErrors.ErrNotFound, "station not found")
}

func (m *stationServiceMock) ListStatuses(ctx context.Context, year *int) ([]models.StationStatus, error) {
	m.listYear = year
	return []models.StationStatus{{Station: models.StationRecord{StationID: "CBS001"}, DisplayStatus: models.DisplayStatusAwaitingOffload}}, nil
}

func TestStationHandlerRecordOffload(t *testing.T) {
	mock := &stationServiceMock{archived: map[string]bool{"OLD01": true}}
	r := newTestRouter(&seasonServiceMock{}, mock)

	success := true
	start := time.Date(2025, 6, 3, 8, 0, 0, 0, time.UTC)
	w := perform(r, http.MethodPost, "/api/v1/stations/CBS002/offloads", dto.RecordOffloadAttemptRequest{
		OffloadStartTime: &start,
		WasOffloaded:     &success,
	})
	require.Equal(t, http.StatusCreated, w.Code)
	require.NotNil(t, mock.lastEntry.OffloadStartTime)
	assert.True(t, start.Equal(*mock.lastEntry.OffloadStartTime))

	var attempt models.OffloadAttempt
	require.NoError(t, json.Unmarshal(decode(t, w).Data, &attempt))
	assert.Equal(t, int64(7), attempt.ID)

	w = perform(r, http.MethodPost, "/api/v1/stations/OLD01/offloads", dto.RecordOffloadAttemptRequest{WasOffloaded: &success})
	require.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, appErrors.ErrArchivedReadOnly.Code, decode(t, w).Error.Code)
}

func TestStationHandlerListSeasonFilter(t *testing.T) {
	mock := &stationServiceMock{}
	r := newTestRouter(&seasonServiceMock{}, mock)

	w := perform(r, http.MethodGet, "/api/v1/stations", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Nil(t, mock.listYear)

	w = perform(r, http.MethodGet, "/api/v1/stations?season=2024", nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.NotNil(t, mock.listYear)
	assert.Equal(t, 2024, *mock.listYear)

	w = perform(r, http.MethodGet, "/api/v1/stations?season=last", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestStationHandlerUpsertOverrideAndStatus(t *testing.T) {
	r := newTestRouter(&seasonServiceMock{}, &stationServiceMock{})

	waypoint := "WP1"
	w := perform(r, http.MethodPut, "/api/v1/stations/CBS001", dto.UpsertStationRequest{Waypoint: &waypoint})
	require.Equal(t, http.StatusOK, w.Code)

	override := "SKIPPED"
	w = perform(r, http.MethodPut, "/api/v1/stations/CBS001/override", dto.SetOverrideRequest{Override: &override})
	require.Equal(t, http.StatusOK, w.Code)
	var status models.StationStatus
	require.NoError(t, json.Unmarshal(decode(t, w).Data, &status))
	assert.Equal(t, models.DisplayStatusSkipped, status.DisplayStatus)

	w = perform(r, http.MethodGet, "/api/v1/stations/NOPE/status", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}
