package service

import (
	"math"
	"sort"
	"strings"
	"time"

	"github.com/noah-isme/glider-ops-api/internal/models"
)

// BuildSeasonStatistics aggregates the stations and log entries of one season into a statistics document.
// It is pure: the inputs are never mutated and identical inputs always yield an identical document.
func BuildSeasonStatistics(year *int, stations []models.StationRecord, logs []models.OffloadAttempt) models.SeasonStatistics {
	stats := models.SeasonStatistics{
		SchemaVersion:        models.StatisticsSchemaVersion,
		Year:                 copyInt(year),
		TotalStations:        len(stations),
		StationsByType:       map[string]int{},
		FailedStationIDs:     []string{},
		SuccessByStationType: map[string]models.OutcomeBucket{},
		SuccessByMission:     map[string]models.OutcomeBucket{},
		StationAttempts:      map[string]models.StationAttemptDetail{},
	}

	logsByStation := make(map[string][]models.OffloadAttempt, len(stations))
	for _, entry := range logs {
		logsByStation[entry.StationID] = append(logsByStation[entry.StationID], entry)
	}

	ordered := make([]models.StationRecord, len(stations))
	copy(ordered, stations)
	sort.Slice(ordered, func(i, j int) bool { return ordered[i].StationID < ordered[j].StationID })

	for _, station := range ordered {
		stationType := ClassifyStationType(station.StationID)
		stats.StationsByType[stationType]++

		stationLogs := logsByStation[station.StationID]
		outcome := ClassifySeasonOutcome(station, stationLogs)
		switch outcome {
		case models.SeasonOutcomeSuccessful:
			stats.SuccessfulStations++
		case models.SeasonOutcomeFailed:
			stats.FailedStations++
			stats.FailedStationIDs = append(stats.FailedStationIDs, station.StationID)
		default:
			stats.SkippedStations++
		}
		stats.SuccessByStationType[stationType] = addOutcome(stats.SuccessByStationType[stationType], outcome)
		mission := missionBucket(station.LastOperatingMission)
		stats.SuccessByMission[mission] = addOutcome(stats.SuccessByMission[mission], outcome)

		attempts := ExtractAttempts(stationLogs)
		stats.StationAttempts[station.StationID] = attemptDetail(attempts)
		stats.TotalAttempts += attempts.Count
		if attempts.Count > 1 {
			stats.StationsWithMultipleAttempts++
		}
	}
	sort.Strings(stats.FailedStationIDs)
	for key, bucket := range stats.SuccessByStationType {
		stats.SuccessByStationType[key] = finishBucket(bucket)
	}
	for key, bucket := range stats.SuccessByMission {
		stats.SuccessByMission[key] = finishBucket(bucket)
	}
	stats.AverageAttemptsPerStation = ratio(stats.TotalAttempts, stats.TotalStations, 1)

	applyLogTallies(&stats, logs)
	return stats
}

// applyLogTallies fills the counters that are computed per log entry rather than per station.
func applyLogTallies(stats *models.SeasonStatistics, logs []models.OffloadAttempt) {
	var (
		first, last    *time.Time
		dwellTotal     time.Duration
		dwellSamples   int
		deployed       = map[string]struct{}{}
		healthStations = map[string]struct{}{}
	)
	track := func(ts *time.Time) {
		if ts == nil {
			return
		}
		if first == nil || ts.Before(*first) {
			first = ts
		}
		if last == nil || ts.After(*last) {
			last = ts
		}
	}

	for _, entry := range logs {
		stats.TotalOffloadAttempts++
		deployed[entry.StationID] = struct{}{}

		confirmed := entry.WasOffloaded != nil && *entry.WasOffloaded
		switch {
		case confirmed:
			stats.SuccessfulOffloads++
		case entry.WasOffloaded != nil, entry.OffloadStartTime != nil:
			stats.FailedOffloads++
		}

		track(entry.OffloadStartTime)
		track(entry.OffloadEndTime)

		if entry.ArrivalTime != nil && entry.DepartureTime != nil && !entry.DepartureTime.Before(*entry.ArrivalTime) {
			dwellTotal += entry.DepartureTime.Sub(*entry.ArrivalTime)
			dwellSamples++
		}

		if entry.HasRemoteHealth() {
			stats.RemoteHealth.LogsWithRemoteHealth++
			healthStations[entry.StationID] = struct{}{}
		}
	}

	stats.UniqueStationsDeployed = len(deployed)
	stats.RemoteHealth.StationsWithRemoteHealth = len(healthStations)
	stats.SuccessRate = ratio(stats.SuccessfulOffloads, stats.TotalOffloadAttempts, 100)
	stats.FirstOffloadDate = formatTimestamp(first)
	stats.LastOffloadDate = formatTimestamp(last)
	if dwellSamples > 0 {
		hours := round2(dwellTotal.Hours() / float64(dwellSamples))
		stats.AverageTimeAtStationHours = &hours
	}
}

func addOutcome(bucket models.OutcomeBucket, outcome models.SeasonOutcome) models.OutcomeBucket {
	switch outcome {
	case models.SeasonOutcomeSuccessful:
		bucket.Successful++
	case models.SeasonOutcomeFailed:
		bucket.Failed++
	default:
		bucket.Skipped++
	}
	bucket.Total++
	return bucket
}

func finishBucket(bucket models.OutcomeBucket) models.OutcomeBucket {
	bucket.SuccessRate = ratio(bucket.Successful, bucket.Total, 100)
	return bucket
}

func missionBucket(mission *string) string {
	if mission == nil || strings.TrimSpace(*mission) == "" {
		return models.UnknownBucket
	}
	return strings.TrimSpace(*mission)
}

func attemptDetail(set models.AttemptSet) models.StationAttemptDetail {
	detail := models.StationAttemptDetail{AttemptCount: set.Count, Attempts: make([]string, 0, set.Count)}
	for i := range set.Attempts {
		detail.Attempts = append(detail.Attempts, set.Attempts[i].UTC().Format(time.RFC3339))
	}
	if set.Count > 0 {
		detail.FirstAttempt = formatTimestamp(&set.Attempts[0])
		detail.LastAttempt = formatTimestamp(&set.Attempts[set.Count-1])
	}
	return detail
}

func ratio(numerator, denominator int, scale float64) float64 {
	if denominator == 0 {
		return 0
	}
	return round2(float64(numerator) / float64(denominator) * scale)
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func formatTimestamp(ts *time.Time) *string {
	if ts == nil {
		return nil
	}
	formatted := ts.UTC().Format(time.RFC3339)
	return &formatted
}

func copyInt(v *int) *int {
	if v == nil {
		return nil
	}
	out := *v
	return &out
}
