package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/noah-isme/glider-ops-api/internal/models"
	appErrors "github.com/noah-isme/glider-ops-api/pkg/errors"
	"github.com/noah-isme/glider-ops-api/pkg/export"
)

// MasterListFormat selects how a master list is rendered.
type MasterListFormat string

const (
	MasterListJSON MasterListFormat = "json"
	MasterListCSV  MasterListFormat = "csv"
	MasterListXLSX MasterListFormat = "xlsx"
	MasterListYAML MasterListFormat = "yaml"
)

var masterListHeaders = []string{
	"station_id", "station_type", "serial_number", "modem_address", "bottom_depth_m",
	"latitude", "longitude", "waypoint", "notes",
}

var masterListContentTypes = map[MasterListFormat]string{
	MasterListJSON: "application/json",
	MasterListCSV:  "text/csv",
	MasterListXLSX: "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
	MasterListYAML: "application/yaml",
}

// ParseMasterListFormat validates a user supplied format, defaulting to JSON.
func ParseMasterListFormat(raw string) (MasterListFormat, error) {
	format := MasterListFormat(strings.ToLower(strings.TrimSpace(raw)))
	if format == "" {
		return MasterListJSON, nil
	}
	if format == "yml" {
		return MasterListYAML, nil
	}
	if _, ok := masterListContentTypes[format]; !ok {
		return "", appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unsupported master list format %q", raw))
	}
	return format, nil
}

// ContentType returns the MIME type of the rendered format.
func (f MasterListFormat) ContentType() string {
	return masterListContentTypes[f]
}

type tabularRenderer interface {
	Render(data export.Dataset) ([]byte, error)
}

// MasterListService prepares season-independent station lists used to seed the next season.
type MasterListService struct {
	seasons  seasonStore
	stations stationStore
	tx       transactor
	csv      tabularRenderer
	xlsx     tabularRenderer
	logger   *zap.Logger
}

// NewMasterListService constructs the master list service. Nil renderers fall back to the pkg/export defaults.
func NewMasterListService(seasons seasonStore, stations stationStore, tx transactor, csv, xlsx tabularRenderer, logger *zap.Logger) *MasterListService {
	if csv == nil {
		csv = export.NewCSVExporter()
	}
	if xlsx == nil {
		xlsx = export.NewXLSXExporter("stations")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &MasterListService{seasons: seasons, stations: stations, tx: tx, csv: csv, xlsx: xlsx, logger: logger}
}

// Prepare lists the durable hardware and location metadata of every station in the season.
// Season specific state such as overrides, cached outcomes and archive flags is never included.
func (s *MasterListService) Prepare(ctx context.Context, year *int) ([]models.StationExport, error) {
	records := []models.StationExport{}
	err := s.tx.WithinReadOnlyTx(ctx, func(ctx context.Context) error {
		scope, _, err := resolveSeasonScope(ctx, s.seasons, year)
		if err != nil {
			return err
		}
		stations, err := s.stations.ListByScope(ctx, scope, false)
		if err != nil {
			return appErrors.Internal(err, "failed to list stations")
		}
		for _, station := range stations {
			records = append(records, toStationExport(station))
		}
		return nil
	})
	if err != nil {
		return nil, appErrors.FromError(err)
	}
	return records, nil
}

// Render encodes records in the requested format.
func (s *MasterListService) Render(records []models.StationExport, format MasterListFormat) ([]byte, error) {
	var (
		payload []byte
		err     error
	)
	switch format {
	case MasterListJSON:
		payload, err = json.MarshalIndent(records, "", "  ")
	case MasterListYAML:
		payload, err = yaml.Marshal(records)
	case MasterListCSV:
		payload, err = s.csv.Render(masterListDataset(records))
	case MasterListXLSX:
		payload, err = s.xlsx.Render(masterListDataset(records))
	default:
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unsupported master list format %q", format))
	}
	if err != nil {
		return nil, appErrors.Internal(err, "failed to render master list")
	}
	return payload, nil
}

func toStationExport(station models.StationRecord) models.StationExport {
	return models.StationExport{
		StationID:    station.StationID,
		StationType:  ClassifyStationType(station.StationID),
		SerialNumber: station.SerialNumber,
		ModemAddress: station.ModemAddress,
		BottomDepthM: station.BottomDepthM,
		Latitude:     station.Latitude,
		Longitude:    station.Longitude,
		Waypoint:     station.Waypoint,
		Notes:        station.Notes,
	}
}

func masterListDataset(records []models.StationExport) export.Dataset {
	rows := make([]map[string]string, 0, len(records))
	for _, r := range records {
		rows = append(rows, map[string]string{
			"station_id":     r.StationID,
			"station_type":   r.StationType,
			"serial_number":  deref(r.SerialNumber),
			"modem_address":  formatIntPtr(r.ModemAddress),
			"bottom_depth_m": formatFloatPtr(r.BottomDepthM),
			"latitude":       formatFloatPtr(r.Latitude),
			"longitude":      formatFloatPtr(r.Longitude),
			"waypoint":       deref(r.Waypoint),
			"notes":          deref(r.Notes),
		})
	}
	return export.Dataset{Headers: masterListHeaders, Rows: rows}
}

func deref(v *string) string {
	if v == nil {
		return ""
	}
	return *v
}

func formatIntPtr(v *int) string {
	if v == nil {
		return ""
	}
	return strconv.Itoa(*v)
}

func formatFloatPtr(v *float64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatFloat(*v, 'f', -1, 64)
}
