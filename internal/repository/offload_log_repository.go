package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/glider-ops-api/internal/models"
	"github.com/noah-isme/glider-ops-api/pkg/database"
)

const offloadLogColumns = `id, station_id, mission_id, time_first_command_sent, offload_start_time, offload_end_time,
       arrival_time, departure_time, was_offloaded, notes, remote_health_modem_voltage, remote_health_temperature_c,
       remote_health_tilt_deg, remote_health_humidity, field_season_year, logged_at`

// OffloadLogRepository persists append-only offload attempt logs.
type OffloadLogRepository struct {
	db *sqlx.DB
}

// NewOffloadLogRepository constructs the repository.
func NewOffloadLogRepository(db *sqlx.DB) *OffloadLogRepository {
	return &OffloadLogRepository{db: db}
}

func (r *OffloadLogRepository) conn(ctx context.Context) database.Conn {
	return database.ConnFromContext(ctx, r.db)
}

// Create inserts a log entry and fills in its generated identifier.
func (r *OffloadLogRepository) Create(ctx context.Context, attempt *models.OffloadAttempt) error {
	if attempt.LoggedAt.IsZero() {
		attempt.LoggedAt = time.Now().UTC()
	}
	const query = `INSERT INTO offload_logs
	(station_id, mission_id, time_first_command_sent, offload_start_time, offload_end_time, arrival_time, departure_time,
	 was_offloaded, notes, remote_health_modem_voltage, remote_health_temperature_c, remote_health_tilt_deg,
	 remote_health_humidity, field_season_year, logged_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
	RETURNING id`
	row := r.conn(ctx).QueryRowxContext(ctx, query,
		attempt.StationID,
		attempt.MissionID,
		attempt.TimeFirstCommandSent,
		attempt.OffloadStartTime,
		attempt.OffloadEndTime,
		attempt.ArrivalTime,
		attempt.DepartureTime,
		attempt.WasOffloaded,
		attempt.Notes,
		attempt.RemoteHealthModemVoltage,
		attempt.RemoteHealthTemperatureC,
		attempt.RemoteHealthTiltDeg,
		attempt.RemoteHealthHumidity,
		attempt.FieldSeasonYear,
		attempt.LoggedAt,
	)
	if err := row.Scan(&attempt.ID); err != nil {
		return fmt.Errorf("create offload log: %w", err)
	}
	return nil
}

// ListByStation returns the logs of one station that belong to scope, in logging order.
func (r *OffloadLogRepository) ListByStation(ctx context.Context, stationID string, scope models.SeasonScope) ([]models.OffloadAttempt, error) {
	query, args := scopedLogQuery(scope, stationID)
	query += " ORDER BY l.logged_at, l.id"
	var logs []models.OffloadAttempt
	if err := r.conn(ctx).SelectContext(ctx, &logs, query, args...); err != nil {
		return nil, fmt.Errorf("list station offload logs: %w", err)
	}
	return logs, nil
}

// ListByScope returns the logs owned by the stations of a season.
func (r *OffloadLogRepository) ListByScope(ctx context.Context, scope models.SeasonScope) ([]models.OffloadAttempt, error) {
	query, args := scopedLogQuery(scope, "")
	query += " ORDER BY l.station_id, l.logged_at, l.id"

	var logs []models.OffloadAttempt
	if err := r.conn(ctx).SelectContext(ctx, &logs, query, args...); err != nil {
		return nil, fmt.Errorf("list season offload logs: %w", err)
	}
	return logs, nil
}

// scopedLogQuery selects the logs of the stations in scope. A closed season keeps only entries
// stamped with its year or never stamped. Unassigned stations keep every entry not frozen into a
// closed season, which covers entries left on a season that was switched away from without a close.
// A non-empty stationID narrows the result to that station.
func scopedLogQuery(scope models.SeasonScope, stationID string) (string, []interface{}) {
	var args []interface{}
	filter := ""
	if stationID != "" {
		args = append(args, stationID)
		filter = "l.station_id = $1 AND "
	}
	cond, args := stationScopeCondition("s", scope, args)
	query := fmt.Sprintf(`SELECT %s FROM offload_logs l
	WHERE %sl.station_id IN (SELECT s.station_id FROM stations s WHERE %s)`, prefixed("l", offloadLogColumns), filter, cond)
	switch {
	case scope.Year == nil:
		query += fmt.Sprintf(" AND (l.field_season_year IS NULL OR %s)", openSeasonStamp("l"))
	case scope.IncludeUnassigned:
		args = append(args, *scope.Year)
		query += fmt.Sprintf(" AND (l.field_season_year IS NULL OR l.field_season_year = $%d OR %s)", len(args), openSeasonStamp("l"))
	default:
		args = append(args, *scope.Year)
		query += fmt.Sprintf(" AND (l.field_season_year = $%d OR l.field_season_year IS NULL)", len(args))
	}
	return query, args
}

// AssignSeason stamps year on the logs of stations that belong to that season, covering
// unassigned entries and entries left on a season that was never closed.
func (r *OffloadLogRepository) AssignSeason(ctx context.Context, year int) (int64, error) {
	query := fmt.Sprintf(`UPDATE offload_logs l SET field_season_year = $1
	WHERE (l.field_season_year IS NULL OR (l.field_season_year <> $1 AND %s))
	  AND l.station_id IN (SELECT s.station_id FROM stations s WHERE s.field_season_year = $1)`, openSeasonStamp("l"))
	res, err := r.conn(ctx).ExecContext(ctx, query, year)
	if err != nil {
		return 0, fmt.Errorf("assign log season: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("check log season rows: %w", err)
	}
	return affected, nil
}

// openSeasonStamp matches log entries stamped with a season that has not been closed.
func openSeasonStamp(alias string) string {
	return fmt.Sprintf(`%s.field_season_year NOT IN (SELECT f.year FROM field_seasons f WHERE f.closed_at IS NOT NULL)`, alias)
}
