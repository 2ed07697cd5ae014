package service

import (
	"sort"
	"strings"
	"time"
	"unicode"

	"github.com/noah-isme/glider-ops-api/internal/models"
)

// UnknownStationType is returned for identifiers that start with a digit.
const UnknownStationType = "UNKNOWN"

// ClassifyStationType returns the upper-cased leading non-digit run of a station identifier.
func ClassifyStationType(stationID string) string {
	for i, r := range stationID {
		if !unicode.IsDigit(r) {
			continue
		}
		if i == 0 {
			return UnknownStationType
		}
		return strings.ToUpper(stationID[:i])
	}
	return strings.ToUpper(stationID)
}

var displayStatusColors = map[models.DisplayStatus]models.StatusColor{
	models.DisplayStatusSkipped:         models.StatusColorSecondary,
	models.DisplayStatusOffloaded:       models.StatusColorSuccess,
	models.DisplayStatusFailedOffload:   models.StatusColorDanger,
	models.DisplayStatusAwaitingOffload: models.StatusColorWarning,
	models.DisplayStatusAwaitingStatus:  models.StatusColorInfo,
	models.DisplayStatusUnknown:         models.StatusColorDark,
}

// StatusColorFor returns the severity tag paired with a display status.
func StatusColorFor(status models.DisplayStatus) models.StatusColor {
	if color, ok := displayStatusColors[status]; ok {
		return color
	}
	return models.StatusColorDark
}

// ClassifyDisplayStatus derives the live dashboard status of a station.
// hasHistory is true when the station has any log entry or a cached offload timestamp.
func ClassifyDisplayStatus(override *string, cachedSuccess *bool, hasHistory bool) (models.DisplayStatus, models.StatusColor) {
	status := models.DisplayStatusUnknown
	switch {
	case isSkippedOverride(override):
		status = models.DisplayStatusSkipped
	case cachedSuccess != nil && *cachedSuccess:
		status = models.DisplayStatusOffloaded
	case cachedSuccess != nil && !*cachedSuccess:
		status = models.DisplayStatusFailedOffload
	case !hasHistory:
		status = models.DisplayStatusAwaitingOffload
	case hasHistory:
		status = models.DisplayStatusAwaitingStatus
	}
	return status, StatusColorFor(status)
}

// ClassifyStation applies ClassifyDisplayStatus to a stored station.
func ClassifyStation(station models.StationRecord, logCount int) (models.DisplayStatus, models.StatusColor) {
	hasHistory := logCount > 0 || station.LastOffloadTimestamp != nil
	return ClassifyDisplayStatus(station.DisplayStatusOverride, station.WasLastOffloadSuccessful, hasHistory)
}

func isSkippedOverride(override *string) bool {
	return override != nil && strings.EqualFold(strings.TrimSpace(*override), models.OverrideSkipped)
}

// ExtractAttempts returns the connection attempt timestamps of the given log entries in ascending order.
// Entries without an offload start or first command time are ignored.
func ExtractAttempts(logs []models.OffloadAttempt) models.AttemptSet {
	attempts := make([]time.Time, 0, len(logs))
	for _, entry := range logs {
		if ts := entry.AttemptTime(); ts != nil {
			attempts = append(attempts, ts.UTC())
		}
	}
	sort.SliceStable(attempts, func(i, j int) bool { return attempts[i].Before(attempts[j]) })
	return models.AttemptSet{Count: len(attempts), Attempts: attempts}
}

// ClassifySeasonOutcome buckets a station for season reporting. It is coarser than the display status:
// any confirmed success wins, an unconfirmed attempt is a failure, and no attempt at all is a skip.
func ClassifySeasonOutcome(station models.StationRecord, logs []models.OffloadAttempt) models.SeasonOutcome {
	if isSkippedOverride(station.DisplayStatusOverride) || len(logs) == 0 {
		return models.SeasonOutcomeSkipped
	}
	attempted := false
	for _, entry := range logs {
		if entry.WasOffloaded != nil && *entry.WasOffloaded {
			return models.SeasonOutcomeSuccessful
		}
		if entry.AttemptTime() != nil {
			attempted = true
		}
	}
	if attempted {
		return models.SeasonOutcomeFailed
	}
	return models.SeasonOutcomeSkipped
}
