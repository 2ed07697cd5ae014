package dto

import "time"

// UpsertStationRequest carries durable station metadata.
type UpsertStationRequest struct {
	SerialNumber         *string  `json:"serial_number" validate:"omitempty,max=100"`
	ModemAddress         *int     `json:"modem_address" validate:"omitempty,gte=0"`
	BottomDepthM         *float64 `json:"bottom_depth_m" validate:"omitempty,gte=0"`
	Latitude             *float64 `json:"latitude" validate:"omitempty,gte=-90,lte=90"`
	Longitude            *float64 `json:"longitude" validate:"omitempty,gte=-180,lte=180"`
	Waypoint             *string  `json:"waypoint" validate:"omitempty,max=100"`
	Notes                *string  `json:"notes"`
	LastOperatingMission *string  `json:"last_operating_mission" validate:"omitempty,max=100"`
}

// SetOverrideRequest sets or clears the manual display status override.
type SetOverrideRequest struct {
	Override *string `json:"override" validate:"omitempty,max=50"`
}

// RecordOffloadAttemptRequest is one offload log entry submitted for a station.
type RecordOffloadAttemptRequest struct {
	MissionID            *string    `json:"mission_id" validate:"omitempty,max=100"`
	TimeFirstCommandSent *time.Time `json:"time_first_command_sent"`
	OffloadStartTime     *time.Time `json:"offload_start_time"`
	OffloadEndTime       *time.Time `json:"offload_end_time"`
	ArrivalTime          *time.Time `json:"arrival_time"`
	DepartureTime        *time.Time `json:"departure_time"`
	WasOffloaded         *bool      `json:"was_offloaded"`
	Notes                *string    `json:"notes"`

	RemoteHealthModemVoltage *float64 `json:"remote_health_modem_voltage"`
	RemoteHealthTemperatureC *float64 `json:"remote_health_temperature_c"`
	RemoteHealthTiltDeg      *float64 `json:"remote_health_tilt_deg" validate:"omitempty,gte=0,lte=180"`
	RemoteHealthHumidity     *float64 `json:"remote_health_humidity" validate:"omitempty,gte=0,lte=100"`
}
