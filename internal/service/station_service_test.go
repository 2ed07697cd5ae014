package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/glider-ops-api/internal/dto"
	"github.com/noah-isme/glider-ops-api/internal/models"
	appErrors "github.com/noah-isme/glider-ops-api/pkg/errors"
)

func newStationService(f *fixture) *StationService {
	return NewStationService(f.seasons, f.stations, f.logs, f.tx, NewMetricsService(), nil, nil)
}

func TestStationServiceRecordOffloadAttemptScenarios(t *testing.T) {
	f := newFixture()
	f.state.seasons[2025] = models.FieldSeason{Year: 2025, IsActive: true}
	for _, id := range []string{"CBS001", "CBS002", "CBS003"} {
		f.state.addStation(models.StationRecord{StationID: id})
	}
	svc := newStationService(f)
	ctx := context.Background()

	attempt, err := svc.RecordOffloadAttempt(ctx, "CBS002", dto.RecordOffloadAttemptRequest{
		MissionID:        ptr("dal-2025-03"),
		OffloadStartTime: at(3, 8),
		OffloadEndTime:   at(3, 9),
		WasOffloaded:     ptr(true),
	})
	require.NoError(t, err)
	assert.NotZero(t, attempt.ID)
	require.NotNil(t, attempt.FieldSeasonYear)
	assert.Equal(t, 2025, *attempt.FieldSeasonYear)

	_, err = svc.RecordOffloadAttempt(ctx, "CBS003", dto.RecordOffloadAttemptRequest{TimeFirstCommandSent: at(4, 6)})
	require.NoError(t, err)

	a, err := svc.GetStatus(ctx, "CBS001")
	require.NoError(t, err)
	assert.Equal(t, models.DisplayStatusAwaitingOffload, a.DisplayStatus)
	assert.Equal(t, models.StatusColorWarning, a.StatusColor)

	b, err := svc.GetStatus(ctx, "CBS002")
	require.NoError(t, err)
	assert.Equal(t, models.DisplayStatusOffloaded, b.DisplayStatus)
	require.NotNil(t, b.Station.WasLastOffloadSuccessful)
	assert.True(t, *b.Station.WasLastOffloadSuccessful)
	assert.Equal(t, *at(3, 9), *b.Station.LastOffloadTimestamp)
	assert.Equal(t, "dal-2025-03", *b.Station.LastOperatingMission)
	assert.Equal(t, "CBS", b.StationType)
	assert.Equal(t, 1, b.Attempts.Count)

	c, err := svc.GetStatus(ctx, "CBS003")
	require.NoError(t, err)
	assert.Equal(t, models.DisplayStatusAwaitingStatus, c.DisplayStatus)
	assert.Nil(t, c.Station.WasLastOffloadSuccessful)
	// Without an end time the log timestamp stands in.
	assert.Equal(t, f.state.logs[1].LoggedAt, *c.Station.LastOffloadTimestamp)
}

func TestStationServiceUnknownOutcomeKeepsCachedResult(t *testing.T) {
	f := newFixture()
	f.state.addStation(models.StationRecord{StationID: "CBS002", WasLastOffloadSuccessful: ptr(false)})
	svc := newStationService(f)

	attempt, err := svc.RecordOffloadAttempt(context.Background(), "CBS002", dto.RecordOffloadAttemptRequest{OffloadStartTime: at(5, 1)})
	require.NoError(t, err)
	assert.Nil(t, attempt.FieldSeasonYear)

	station := f.state.stations["CBS002"]
	require.NotNil(t, station.WasLastOffloadSuccessful)
	assert.False(t, *station.WasLastOffloadSuccessful)
	assert.NotNil(t, station.LastOffloadTimestamp)
}

func TestStationServiceRejectsArchivedStation(t *testing.T) {
	f := newFixture()
	f.state.addStation(models.StationRecord{StationID: "OLD01", FieldSeasonYear: ptr(2024), IsArchived: true})
	svc := newStationService(f)
	ctx := context.Background()

	_, err := svc.RecordOffloadAttempt(ctx, "OLD01", dto.RecordOffloadAttemptRequest{WasOffloaded: ptr(true)})
	require.ErrorIs(t, err, appErrors.ErrArchivedReadOnly)
	assert.Empty(t, f.state.logs)

	_, err = svc.UpsertStation(ctx, "OLD01", dto.UpsertStationRequest{Waypoint: ptr("WP9")})
	require.ErrorIs(t, err, appErrors.ErrArchivedReadOnly)

	_, err = svc.SetDisplayStatusOverride(ctx, "OLD01", dto.SetOverrideRequest{Override: ptr("skipped")})
	require.ErrorIs(t, err, appErrors.ErrArchivedReadOnly)
	assert.Nil(t, f.state.stations["OLD01"].DisplayStatusOverride)
}

func TestStationServiceUnknownStation(t *testing.T) {
	svc := newStationService(newFixture())
	ctx := context.Background()

	_, err := svc.RecordOffloadAttempt(ctx, "NOPE1", dto.RecordOffloadAttemptRequest{})
	require.ErrorIs(t, err, appErrors.ErrNotFound)

	_, err = svc.GetStatus(ctx, "NOPE1")
	require.ErrorIs(t, err, appErrors.ErrNotFound)

	_, err = svc.RecordOffloadAttempt(ctx, " ", dto.RecordOffloadAttemptRequest{})
	require.ErrorIs(t, err, appErrors.ErrValidation)
}

func TestStationServiceValidatesTelemetry(t *testing.T) {
	f := newFixture()
	f.state.addStation(models.StationRecord{StationID: "CBS001"})
	svc := newStationService(f)

	_, err := svc.RecordOffloadAttempt(context.Background(), "CBS001", dto.RecordOffloadAttemptRequest{RemoteHealthHumidity: ptr(140.0)})
	require.ErrorIs(t, err, appErrors.ErrValidation)
}

func TestStationServiceUpsertAndOverride(t *testing.T) {
	f := newFixture()
	svc := newStationService(f)
	ctx := context.Background()

	station, err := svc.UpsertStation(ctx, "CBS001", dto.UpsertStationRequest{
		SerialNumber: ptr(" SN-1 "),
		ModemAddress: ptr(4021),
		Latitude:     ptr(44.1),
		Longitude:    ptr(-63.2),
	})
	require.NoError(t, err)
	assert.Equal(t, "SN-1", *station.SerialNumber)
	assert.Nil(t, station.FieldSeasonYear)

	status, err := svc.SetDisplayStatusOverride(ctx, "CBS001", dto.SetOverrideRequest{Override: ptr("skipped")})
	require.NoError(t, err)
	assert.Equal(t, models.DisplayStatusSkipped, status.DisplayStatus)
	assert.Equal(t, models.OverrideSkipped, *status.Station.DisplayStatusOverride)

	status, err = svc.SetDisplayStatusOverride(ctx, "CBS001", dto.SetOverrideRequest{Override: ptr("")})
	require.NoError(t, err)
	assert.Nil(t, status.Station.DisplayStatusOverride)
	assert.Equal(t, models.DisplayStatusAwaitingOffload, status.DisplayStatus)

	_, err = svc.UpsertStation(ctx, "CBS001", dto.UpsertStationRequest{Latitude: ptr(120.0)})
	require.ErrorIs(t, err, appErrors.ErrValidation)
}

func TestStationServiceListStatusesByScope(t *testing.T) {
	f := newFixture()
	seedActiveSeason(f)
	svc := newStationService(f)
	ctx := context.Background()

	current, err := svc.ListStatuses(ctx, nil)
	require.NoError(t, err)
	require.Len(t, current, 3)
	assert.Equal(t, "CBS001", current[0].Station.StationID)
	assert.Equal(t, models.DisplayStatusOffloaded, current[1].DisplayStatus)

	archived, err := svc.ListStatuses(ctx, ptr(2024))
	require.NoError(t, err)
	require.Len(t, archived, 1)
	assert.Equal(t, "OLD01", archived[0].Station.StationID)
	assert.Equal(t, 1, archived[0].LogCount)
}

func TestStationServiceStatusMatchesSeasonListing(t *testing.T) {
	f := newFixture()
	seedActiveSeason(f)
	f.state.addLog(models.OffloadAttempt{StationID: "CBS001", OffloadStartTime: at(1, 2), WasOffloaded: ptr(true), FieldSeasonYear: ptr(2024)})
	svc := newStationService(f)
	ctx := context.Background()

	for _, year := range []*int{nil, ptr(2025), ptr(2024)} {
		listed, err := svc.ListStatuses(ctx, year)
		require.NoError(t, err)
		for _, row := range listed {
			status, err := svc.GetStatus(ctx, row.Station.StationID)
			require.NoError(t, err)
			assert.Equal(t, row.LogCount, status.LogCount, row.Station.StationID)
			assert.Equal(t, row.Attempts, status.Attempts, row.Station.StationID)
			assert.Equal(t, row.DisplayStatus, status.DisplayStatus, row.Station.StationID)
		}
	}

	status, err := svc.GetStatus(ctx, "CBS001")
	require.NoError(t, err)
	assert.Zero(t, status.LogCount)
}
