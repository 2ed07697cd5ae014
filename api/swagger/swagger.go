package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "Glider Ops API",
        "description": "Field season lifecycle and station offload status engine for ocean glider missions",
        "version": "1.0.0"
    },
    "basePath": "/api/v1",
    "schemes": [
        "http"
    ],
    "tags": [
        {"name": "Seasons", "description": "Field season registry, closing and statistics"},
        {"name": "Stations", "description": "Station metadata, offload ingestion and display status"}
    ],
    "paths": {
        "/seasons": {
            "get": {
                "tags": ["Seasons"],
                "summary": "List seasons, newest first",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "post": {
                "tags": ["Seasons"],
                "summary": "Register a season",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/CreateSeasonRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "400": {"description": "Validation error", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "Season already exists", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/seasons/active": {
            "get": {
                "tags": ["Seasons"],
                "summary": "Get the active season",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "No active season", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "500": {"description": "More than one active season", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/seasons/{year}": {
            "get": {
                "tags": ["Seasons"],
                "summary": "Get a season",
                "parameters": [
                    {"name": "year", "in": "path", "required": true, "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Not found", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/seasons/{year}/activate": {
            "post": {
                "tags": ["Seasons"],
                "summary": "Make a season the active one",
                "parameters": [
                    {"name": "year", "in": "path", "required": true, "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Not found", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "Season already closed", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/seasons/{year}/close": {
            "post": {
                "tags": ["Seasons"],
                "summary": "Close a season, freezing its statistics and archiving its stations",
                "parameters": [
                    {"name": "year", "in": "path", "required": true, "type": "integer"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/CloseSeasonRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "400": {"description": "Validation error", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "Season already closed", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/seasons/{year}/reprocess": {
            "post": {
                "tags": ["Seasons"],
                "summary": "Recompute the frozen statistics of a closed season",
                "parameters": [
                    {"name": "year", "in": "path", "required": true, "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Not found", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "412": {"description": "Season not closed", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/seasons/{year}/statistics": {
            "get": {
                "tags": ["Seasons"],
                "summary": "Compute season statistics; use current for unassigned stations",
                "parameters": [
                    {"name": "year", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/seasons/{year}/master-list": {
            "get": {
                "tags": ["Seasons"],
                "summary": "Export the station master list",
                "produces": ["application/json", "text/csv", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", "application/yaml"],
                "parameters": [
                    {"name": "year", "in": "path", "required": true, "type": "string"},
                    {"name": "format", "in": "query", "type": "string", "enum": ["json", "csv", "xlsx", "yaml"]}
                ],
                "responses": {
                    "200": {"description": "OK"},
                    "400": {"description": "Unsupported format", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/stations": {
            "get": {
                "tags": ["Stations"],
                "summary": "List station display statuses",
                "parameters": [
                    {"name": "season", "in": "query", "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/stations/{id}": {
            "put": {
                "tags": ["Stations"],
                "summary": "Create or update station metadata",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/UpsertStationRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "Station archived", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/stations/{id}/status": {
            "get": {
                "tags": ["Stations"],
                "summary": "Get a station with its derived display status",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Not found", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/stations/{id}/override": {
            "put": {
                "tags": ["Stations"],
                "summary": "Set or clear the display status override",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/SetOverrideRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "Station archived", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/stations/{id}/offloads": {
            "post": {
                "tags": ["Stations"],
                "summary": "Record an offload attempt",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/RecordOffloadAttemptRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Station not found", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "Station archived", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        }
    },
    "definitions": {
        "CreateSeasonRequest": {
            "type": "object",
            "required": ["year"],
            "properties": {
                "year": {"type": "integer"},
                "make_active": {"type": "boolean"}
            }
        },
        "CloseSeasonRequest": {
            "type": "object",
            "required": ["closed_by"],
            "properties": {
                "closed_by": {"type": "string"}
            }
        },
        "SetOverrideRequest": {
            "type": "object",
            "properties": {
                "override": {"type": "string", "x-nullable": true}
            }
        },
        "UpsertStationRequest": {
            "type": "object",
            "properties": {
                "serial_number": {"type": "string"},
                "modem_address": {"type": "integer"},
                "bottom_depth_m": {"type": "number"},
                "latitude": {"type": "number"},
                "longitude": {"type": "number"},
                "waypoint": {"type": "string"},
                "notes": {"type": "string"},
                "last_operating_mission": {"type": "string"}
            }
        },
        "RecordOffloadAttemptRequest": {
            "type": "object",
            "properties": {
                "mission_id": {"type": "string"},
                "time_first_command_sent": {"type": "string", "format": "date-time"},
                "offload_start_time": {"type": "string", "format": "date-time"},
                "offload_end_time": {"type": "string", "format": "date-time"},
                "arrival_time": {"type": "string", "format": "date-time"},
                "departure_time": {"type": "string", "format": "date-time"},
                "was_offloaded": {"type": "boolean", "x-nullable": true},
                "notes": {"type": "string"},
                "remote_health_modem_voltage": {"type": "number"},
                "remote_health_temperature_c": {"type": "number"},
                "remote_health_tilt_deg": {"type": "number"},
                "remote_health_humidity": {"type": "number"}
            }
        },
        "APIError": {
            "type": "object",
            "properties": {
                "code": {"type": "string"},
                "message": {"type": "string"},
                "status": {"type": "integer"}
            }
        },
        "ResponseEnvelope": {
            "type": "object",
            "properties": {
                "data": {"type": "object"},
                "error": {"$ref": "#/definitions/APIError"},
                "meta": {"type": "object"}
            }
        }
    }
}`

type swaggerDoc struct{}

// ReadDoc returns the Swagger document.
func (s *swaggerDoc) ReadDoc() string {
	return docTemplate
}

func init() {
	swag.Register(swag.Name, &swaggerDoc{})
}
