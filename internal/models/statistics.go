package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// StatisticsSchemaVersion tags the shape of SeasonStatistics persisted on closed seasons.
const StatisticsSchemaVersion = 1

// UnknownBucket groups stations or missions without a usable key.
const UnknownBucket = "unknown"

// SeasonOutcome is the coarse season-level classification of one station.
type SeasonOutcome string

const (
	SeasonOutcomeSuccessful SeasonOutcome = "successful"
	SeasonOutcomeFailed     SeasonOutcome = "failed"
	SeasonOutcomeSkipped    SeasonOutcome = "skipped"
)

// OutcomeBucket accumulates station outcomes for one aggregation key.
type OutcomeBucket struct {
	Successful  int     `json:"successful"`
	Failed      int     `json:"failed"`
	Skipped     int     `json:"skipped"`
	Total       int     `json:"total"`
	SuccessRate float64 `json:"success_rate"`
}

// RemoteHealthCoverage counts how much remote-health telemetry the season captured.
type RemoteHealthCoverage struct {
	LogsWithRemoteHealth     int `json:"logs_with_remote_health"`
	StationsWithRemoteHealth int `json:"stations_with_remote_health"`
}

// StationAttemptDetail summarises the connection attempts of one station.
type StationAttemptDetail struct {
	AttemptCount int      `json:"attempt_count"`
	FirstAttempt *string  `json:"first_attempt"`
	LastAttempt  *string  `json:"last_attempt"`
	Attempts     []string `json:"attempts"`
}

// SeasonStatistics is the frozen statistics document for a season.
type SeasonStatistics struct {
	SchemaVersion int  `json:"schema_version"`
	Year          *int `json:"year"`

	TotalStations  int            `json:"total_stations"`
	StationsByType map[string]int `json:"stations_by_type"`

	TotalOffloadAttempts int      `json:"total_offload_attempts"`
	SuccessfulOffloads   int      `json:"successful_offloads"`
	FailedOffloads       int      `json:"failed_offloads"`
	SuccessfulStations   int      `json:"successful_stations"`
	FailedStations       int      `json:"failed_stations"`
	FailedStationIDs     []string `json:"failed_station_ids"`
	SkippedStations      int      `json:"skipped_stations"`
	SuccessRate          float64  `json:"success_rate"`

	AverageTimeAtStationHours *float64 `json:"average_time_at_station_hours"`
	UniqueStationsDeployed    int      `json:"unique_stations_deployed"`
	FirstOffloadDate          *string  `json:"first_offload_date"`
	LastOffloadDate           *string  `json:"last_offload_date"`

	SuccessByStationType map[string]OutcomeBucket `json:"success_by_station_type"`
	SuccessByMission     map[string]OutcomeBucket `json:"success_by_mission"`

	RemoteHealth RemoteHealthCoverage `json:"remote_health"`

	TotalAttempts                int                             `json:"total_attempts"`
	AverageAttemptsPerStation    float64                         `json:"average_attempts_per_station"`
	StationsWithMultipleAttempts int                             `json:"stations_with_multiple_attempts"`
	StationAttempts              map[string]StationAttemptDetail `json:"station_attempts"`
}

// Value stores the document as JSON.
func (s SeasonStatistics) Value() (driver.Value, error) {
	payload, err := json.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("marshal season statistics: %w", err)
	}
	return payload, nil
}

// Scan decodes a JSON column into the document.
func (s *SeasonStatistics) Scan(src interface{}) error {
	var raw []byte
	switch v := src.(type) {
	case nil:
		return nil
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		return fmt.Errorf("scan season statistics: unsupported type %T", src)
	}
	if err := json.Unmarshal(raw, s); err != nil {
		return fmt.Errorf("unmarshal season statistics: %w", err)
	}
	return nil
}
