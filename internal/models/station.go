package models

import "time"

// OverrideSkipped is the operator override that marks a station as skipped.
const OverrideSkipped = "SKIPPED"

// StationRecord is a fixed hardware unit that gliders connect to and offload from.
type StationRecord struct {
	StationID            string   `db:"station_id" json:"station_id"`
	SerialNumber         *string  `db:"serial_number" json:"serial_number,omitempty"`
	ModemAddress         *int     `db:"modem_address" json:"modem_address,omitempty"`
	BottomDepthM         *float64 `db:"bottom_depth_m" json:"bottom_depth_m,omitempty"`
	Latitude             *float64 `db:"latitude" json:"latitude,omitempty"`
	Longitude            *float64 `db:"longitude" json:"longitude,omitempty"`
	Waypoint             *string  `db:"waypoint" json:"waypoint,omitempty"`
	Notes                *string  `db:"notes" json:"notes,omitempty"`
	LastOperatingMission *string  `db:"last_operating_mission" json:"last_operating_mission,omitempty"`

	DisplayStatusOverride    *string    `db:"display_status_override" json:"display_status_override,omitempty"`
	WasLastOffloadSuccessful *bool      `db:"was_last_offload_successful" json:"was_last_offload_successful,omitempty"`
	LastOffloadTimestamp     *time.Time `db:"last_offload_timestamp" json:"last_offload_timestamp,omitempty"`

	FieldSeasonYear *int       `db:"field_season_year" json:"field_season_year,omitempty"`
	IsArchived      bool       `db:"is_archived" json:"is_archived"`
	ArchivedAt      *time.Time `db:"archived_at" json:"archived_at,omitempty"`
	CreatedAt       time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time  `db:"updated_at" json:"updated_at"`
}

// StationExport is the season-independent subset of a station used to seed a new season.
type StationExport struct {
	StationID    string   `json:"station_id" yaml:"station_id"`
	StationType  string   `json:"station_type" yaml:"station_type"`
	SerialNumber *string  `json:"serial_number,omitempty" yaml:"serial_number,omitempty"`
	ModemAddress *int     `json:"modem_address,omitempty" yaml:"modem_address,omitempty"`
	BottomDepthM *float64 `json:"bottom_depth_m,omitempty" yaml:"bottom_depth_m,omitempty"`
	Latitude     *float64 `json:"latitude,omitempty" yaml:"latitude,omitempty"`
	Longitude    *float64 `json:"longitude,omitempty" yaml:"longitude,omitempty"`
	Waypoint     *string  `json:"waypoint,omitempty" yaml:"waypoint,omitempty"`
	Notes        *string  `json:"notes,omitempty" yaml:"notes,omitempty"`
}

// DisplayStatus is the live, derived status shown on dashboards.
type DisplayStatus string

const (
	DisplayStatusSkipped         DisplayStatus = "SKIPPED"
	DisplayStatusOffloaded       DisplayStatus = "OFFLOADED"
	DisplayStatusFailedOffload   DisplayStatus = "FAILED_OFFLOAD"
	DisplayStatusAwaitingOffload DisplayStatus = "AWAITING_OFFLOAD"
	DisplayStatusAwaitingStatus  DisplayStatus = "AWAITING_STATUS"
	DisplayStatusUnknown         DisplayStatus = "UNKNOWN"
)

// StatusColor is the severity tag paired with each display status.
type StatusColor string

const (
	StatusColorSecondary StatusColor = "secondary"
	StatusColorSuccess   StatusColor = "success"
	StatusColorDanger    StatusColor = "danger"
	StatusColorWarning   StatusColor = "warning"
	StatusColorInfo      StatusColor = "info"
	StatusColorDark      StatusColor = "dark"
)

// StationStatus is one dashboard row: the station plus its derived state.
type StationStatus struct {
	Station       StationRecord `json:"station"`
	StationType   string        `json:"station_type"`
	DisplayStatus DisplayStatus `json:"display_status"`
	StatusColor   StatusColor   `json:"status_color"`
	LogCount      int           `json:"log_count"`
	Attempts      AttemptSet    `json:"attempts"`
}
