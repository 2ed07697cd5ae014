package models

import "time"

// OffloadAttempt is one append-only log entry recorded against a station.
type OffloadAttempt struct {
	ID        int64   `db:"id" json:"id"`
	StationID string  `db:"station_id" json:"station_id"`
	MissionID *string `db:"mission_id" json:"mission_id,omitempty"`

	TimeFirstCommandSent *time.Time `db:"time_first_command_sent" json:"time_first_command_sent,omitempty"`
	OffloadStartTime     *time.Time `db:"offload_start_time" json:"offload_start_time,omitempty"`
	OffloadEndTime       *time.Time `db:"offload_end_time" json:"offload_end_time,omitempty"`
	ArrivalTime          *time.Time `db:"arrival_time" json:"arrival_time,omitempty"`
	DepartureTime        *time.Time `db:"departure_time" json:"departure_time,omitempty"`
	WasOffloaded         *bool      `db:"was_offloaded" json:"was_offloaded,omitempty"`
	Notes                *string    `db:"notes" json:"notes,omitempty"`

	RemoteHealthModemVoltage *float64 `db:"remote_health_modem_voltage" json:"remote_health_modem_voltage,omitempty"`
	RemoteHealthTemperatureC *float64 `db:"remote_health_temperature_c" json:"remote_health_temperature_c,omitempty"`
	RemoteHealthTiltDeg      *float64 `db:"remote_health_tilt_deg" json:"remote_health_tilt_deg,omitempty"`
	RemoteHealthHumidity     *float64 `db:"remote_health_humidity" json:"remote_health_humidity,omitempty"`

	FieldSeasonYear *int      `db:"field_season_year" json:"field_season_year,omitempty"`
	LoggedAt        time.Time `db:"logged_at" json:"logged_at"`
}

// AttemptTime is the moment a connection attempt began: offload start, else first command sent.
func (a OffloadAttempt) AttemptTime() *time.Time {
	if a.OffloadStartTime != nil {
		return a.OffloadStartTime
	}
	return a.TimeFirstCommandSent
}

// HasRemoteHealth reports whether the entry carries any remote-health telemetry.
func (a OffloadAttempt) HasRemoteHealth() bool {
	return a.RemoteHealthModemVoltage != nil ||
		a.RemoteHealthTemperatureC != nil ||
		a.RemoteHealthTiltDeg != nil ||
		a.RemoteHealthHumidity != nil
}

// AttemptSet is the ordered list of connection attempts for one station.
type AttemptSet struct {
	Count    int         `json:"count"`
	Attempts []time.Time `json:"attempts"`
}
