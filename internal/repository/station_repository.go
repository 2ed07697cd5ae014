package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/glider-ops-api/internal/models"
	"github.com/noah-isme/glider-ops-api/pkg/database"
)

const stationColumns = `station_id, serial_number, modem_address, bottom_depth_m, latitude, longitude, waypoint, notes,
       last_operating_mission, display_status_override, was_last_offload_successful, last_offload_timestamp,
       field_season_year, is_archived, archived_at, created_at, updated_at`

// StationRepository persists station records.
type StationRepository struct {
	db *sqlx.DB
}

// NewStationRepository constructs the repository.
func NewStationRepository(db *sqlx.DB) *StationRepository {
	return &StationRepository{db: db}
}

func (r *StationRepository) conn(ctx context.Context) database.Conn {
	return database.ConnFromContext(ctx, r.db)
}

// FindByID loads a station by its natural key.
func (r *StationRepository) FindByID(ctx context.Context, stationID string) (*models.StationRecord, error) {
	query := fmt.Sprintf(`SELECT %s FROM stations WHERE station_id = $1`, stationColumns)
	var station models.StationRecord
	if err := r.conn(ctx).GetContext(ctx, &station, query, stationID); err != nil {
		return nil, err
	}
	return &station, nil
}

// LockByID loads a station and holds its row lock for the surrounding transaction.
func (r *StationRepository) LockByID(ctx context.Context, stationID string) (*models.StationRecord, error) {
	query := fmt.Sprintf(`SELECT %s FROM stations WHERE station_id = $1 FOR UPDATE`, stationColumns)
	var station models.StationRecord
	if err := r.conn(ctx).GetContext(ctx, &station, query, stationID); err != nil {
		return nil, err
	}
	return &station, nil
}

// ListByScope returns the stations of a season ordered by station id.
// With forUpdate the rows stay locked until the transaction ends.
func (r *StationRepository) ListByScope(ctx context.Context, scope models.SeasonScope, forUpdate bool) ([]models.StationRecord, error) {
	cond, args := stationScopeCondition("", scope, nil)
	query := fmt.Sprintf(`SELECT %s FROM stations WHERE %s ORDER BY station_id`, stationColumns, cond)
	if forUpdate {
		query += " FOR UPDATE"
	}
	var stations []models.StationRecord
	if err := r.conn(ctx).SelectContext(ctx, &stations, query, args...); err != nil {
		return nil, fmt.Errorf("list stations: %w", err)
	}
	return stations, nil
}

// Upsert creates a station or refreshes its durable metadata. Archived rows are left untouched
// and reported as sql.ErrNoRows.
func (r *StationRepository) Upsert(ctx context.Context, station *models.StationRecord) error {
	now := time.Now().UTC()
	if station.CreatedAt.IsZero() {
		station.CreatedAt = now
	}
	station.UpdatedAt = now

	const query = `INSERT INTO stations
	(station_id, serial_number, modem_address, bottom_depth_m, latitude, longitude, waypoint, notes, last_operating_mission, is_archived, created_at, updated_at)
	VALUES (:station_id, :serial_number, :modem_address, :bottom_depth_m, :latitude, :longitude, :waypoint, :notes, :last_operating_mission, FALSE, :created_at, :updated_at)
	ON CONFLICT (station_id) DO UPDATE SET
		serial_number = EXCLUDED.serial_number,
		modem_address = EXCLUDED.modem_address,
		bottom_depth_m = EXCLUDED.bottom_depth_m,
		latitude = EXCLUDED.latitude,
		longitude = EXCLUDED.longitude,
		waypoint = EXCLUDED.waypoint,
		notes = EXCLUDED.notes,
		last_operating_mission = COALESCE(EXCLUDED.last_operating_mission, stations.last_operating_mission),
		updated_at = EXCLUDED.updated_at
	WHERE stations.is_archived = FALSE`
	res, err := r.conn(ctx).NamedExecContext(ctx, query, station)
	if err != nil {
		return fmt.Errorf("upsert station: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("check station upsert rows: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// SetDisplayStatusOverride stores or clears the operator override on a live station.
func (r *StationRepository) SetDisplayStatusOverride(ctx context.Context, stationID string, override *string) error {
	const query = `UPDATE stations SET display_status_override = $2, updated_at = $3 WHERE station_id = $1 AND is_archived = FALSE`
	res, err := r.conn(ctx).ExecContext(ctx, query, stationID, override, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("set station override: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("check override rows: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// OffloadCacheUpdate carries the denormalised outcome written after a new attempt.
type OffloadCacheUpdate struct {
	StationID    string
	Timestamp    time.Time
	WasOffloaded *bool
	MissionID    *string
}

// UpdateOffloadCache refreshes the cached last-offload fields. A nil outcome keeps the previous value.
func (r *StationRepository) UpdateOffloadCache(ctx context.Context, update OffloadCacheUpdate) error {
	const query = `UPDATE stations SET
		last_offload_timestamp = $2,
		was_last_offload_successful = COALESCE($3, was_last_offload_successful),
		last_operating_mission = COALESCE($4, last_operating_mission),
		updated_at = $5
	WHERE station_id = $1 AND is_archived = FALSE`
	res, err := r.conn(ctx).ExecContext(ctx, query, update.StationID, update.Timestamp, update.WasOffloaded, update.MissionID, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("update station offload cache: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("check offload cache rows: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// ArchiveScope archives every live station in scope, stamping year on unassigned rows.
func (r *StationRepository) ArchiveScope(ctx context.Context, scope models.SeasonScope, year int, archivedAt time.Time) (int64, error) {
	args := []interface{}{year, archivedAt}
	cond, args := stationScopeCondition("", scope, args)
	query := fmt.Sprintf(`UPDATE stations SET is_archived = TRUE, archived_at = $2, field_season_year = $1, updated_at = $2
	WHERE is_archived = FALSE AND %s`, cond)
	res, err := r.conn(ctx).ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("archive stations: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("check archive rows: %w", err)
	}
	return affected, nil
}
