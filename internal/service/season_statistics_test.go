package service

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/glider-ops-api/internal/models"
)

func seasonFixtureRows() ([]models.StationRecord, []models.OffloadAttempt) {
	stations := []models.StationRecord{
		{StationID: "CBS003", LastOperatingMission: ptr("dal-2025-03")},
		{StationID: "CBS001"},
		{StationID: "CBS002", LastOperatingMission: ptr("dal-2025-03"), WasLastOffloadSuccessful: ptr(true)},
		{StationID: "HFX10", LastOperatingMission: ptr("hfx-2025-01"), DisplayStatusOverride: ptr("SKIPPED")},
		{StationID: "HFX11", LastOperatingMission: ptr("hfx-2025-01")},
	}
	logs := []models.OffloadAttempt{
		{StationID: "CBS002", OffloadStartTime: at(3, 8), OffloadEndTime: at(3, 9), WasOffloaded: ptr(true),
			ArrivalTime: at(3, 7), DepartureTime: at(3, 10), RemoteHealthModemVoltage: ptr(12.4)},
		{StationID: "CBS003", TimeFirstCommandSent: at(4, 6)},
		{StationID: "HFX11", OffloadStartTime: at(2, 5), WasOffloaded: ptr(false), ArrivalTime: at(2, 4), DepartureTime: at(2, 5)},
		{StationID: "HFX11", OffloadStartTime: at(6, 5), OffloadEndTime: at(6, 7), WasOffloaded: ptr(true), RemoteHealthTiltDeg: ptr(3.0)},
		{StationID: "HFX11", OffloadStartTime: at(5, 5)},
	}
	return stations, logs
}

func TestBuildSeasonStatisticsScenarios(t *testing.T) {
	stations, logs := seasonFixtureRows()
	year := 2025
	stats := BuildSeasonStatistics(&year, stations, logs)

	require.NotNil(t, stats.Year)
	assert.Equal(t, 2025, *stats.Year)
	assert.Equal(t, models.StatisticsSchemaVersion, stats.SchemaVersion)
	assert.Equal(t, 5, stats.TotalStations)
	assert.Equal(t, map[string]int{"CBS": 3, "HFX": 2}, stats.StationsByType)

	// CBS001 has no logs and HFX10 is overridden, CBS003 only sent a command.
	assert.Equal(t, 2, stats.SuccessfulStations)
	assert.Equal(t, 1, stats.FailedStations)
	assert.Equal(t, []string{"CBS003"}, stats.FailedStationIDs)
	assert.Equal(t, 2, stats.SkippedStations)

	assert.Equal(t, 5, stats.TotalOffloadAttempts)
	assert.Equal(t, 2, stats.SuccessfulOffloads)
	// HFX11's confirmed failure and its unconfirmed start both count, even though the station succeeded overall.
	assert.Equal(t, 2, stats.FailedOffloads)
	assert.Equal(t, 40.0, stats.SuccessRate)
	assert.Equal(t, 3, stats.UniqueStationsDeployed)

	require.NotNil(t, stats.FirstOffloadDate)
	require.NotNil(t, stats.LastOffloadDate)
	assert.Equal(t, "2025-06-02T05:00:00Z", *stats.FirstOffloadDate)
	assert.Equal(t, "2025-06-06T07:00:00Z", *stats.LastOffloadDate)
	require.NotNil(t, stats.AverageTimeAtStationHours)
	assert.Equal(t, 2.0, *stats.AverageTimeAtStationHours)

	assert.Equal(t, models.OutcomeBucket{Successful: 1, Failed: 1, Skipped: 1, Total: 3, SuccessRate: 33.33}, stats.SuccessByStationType["CBS"])
	assert.Equal(t, models.OutcomeBucket{Successful: 1, Skipped: 1, Total: 2, SuccessRate: 50}, stats.SuccessByStationType["HFX"])
	assert.Equal(t, models.OutcomeBucket{Skipped: 1, Total: 1}, stats.SuccessByMission[models.UnknownBucket])
	assert.Equal(t, models.OutcomeBucket{Successful: 1, Failed: 1, Total: 2, SuccessRate: 50}, stats.SuccessByMission["dal-2025-03"])

	assert.Equal(t, models.RemoteHealthCoverage{LogsWithRemoteHealth: 2, StationsWithRemoteHealth: 2}, stats.RemoteHealth)

	assert.Equal(t, 5, stats.TotalAttempts)
	assert.Equal(t, 1.0, stats.AverageAttemptsPerStation)
	assert.Equal(t, 1, stats.StationsWithMultipleAttempts)
	hfx := stats.StationAttempts["HFX11"]
	assert.Equal(t, 3, hfx.AttemptCount)
	assert.Equal(t, []string{"2025-06-02T05:00:00Z", "2025-06-05T05:00:00Z", "2025-06-06T05:00:00Z"}, hfx.Attempts)
	require.NotNil(t, hfx.FirstAttempt)
	assert.Equal(t, "2025-06-02T05:00:00Z", *hfx.FirstAttempt)
	assert.Equal(t, 0, stats.StationAttempts["CBS001"].AttemptCount)
	assert.Nil(t, stats.StationAttempts["CBS001"].FirstAttempt)
}

func TestBuildSeasonStatisticsConservation(t *testing.T) {
	stations, logs := seasonFixtureRows()
	stats := BuildSeasonStatistics(nil, stations, logs)

	assert.Equal(t, stats.TotalStations, stats.SuccessfulStations+stats.FailedStations+stats.SkippedStations)
	for key, bucket := range stats.SuccessByStationType {
		assert.Equal(t, bucket.Total, bucket.Successful+bucket.Failed+bucket.Skipped, key)
	}
	for key, bucket := range stats.SuccessByMission {
		assert.Equal(t, bucket.Total, bucket.Successful+bucket.Failed+bucket.Skipped, key)
	}
}

func TestBuildSeasonStatisticsIsDeterministicAndPure(t *testing.T) {
	stations, logs := seasonFixtureRows()
	before, err := json.Marshal(stations)
	require.NoError(t, err)

	year := 2025
	first, err := json.Marshal(BuildSeasonStatistics(&year, stations, logs))
	require.NoError(t, err)

	reversed := make([]models.StationRecord, len(stations))
	for i := range stations {
		reversed[len(stations)-1-i] = stations[i]
	}
	second, err := json.Marshal(BuildSeasonStatistics(&year, reversed, logs))
	require.NoError(t, err)
	assert.Equal(t, string(first), string(second))

	after, err := json.Marshal(stations)
	require.NoError(t, err)
	assert.Equal(t, string(before), string(after))
}

func TestBuildSeasonStatisticsEmptySeason(t *testing.T) {
	stats := BuildSeasonStatistics(nil, nil, nil)

	assert.Nil(t, stats.Year)
	assert.Zero(t, stats.TotalStations)
	assert.Zero(t, stats.SuccessRate)
	assert.Zero(t, stats.AverageAttemptsPerStation)
	assert.Nil(t, stats.AverageTimeAtStationHours)
	assert.Nil(t, stats.FirstOffloadDate)
	assert.NotNil(t, stats.FailedStationIDs)
	assert.NotNil(t, stats.StationsByType)

	payload, err := json.Marshal(stats)
	require.NoError(t, err)
	assert.Contains(t, string(payload), `"failed_station_ids":[]`)
}
