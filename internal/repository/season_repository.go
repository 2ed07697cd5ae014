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

const seasonColumns = `year, is_active, closed_at, closed_by, summary_statistics, created_at, updated_at`

// SeasonRepository handles persistence for field seasons.
type SeasonRepository struct {
	db *sqlx.DB
}

// NewSeasonRepository instantiates a season repository.
func NewSeasonRepository(db *sqlx.DB) *SeasonRepository {
	return &SeasonRepository{db: db}
}

func (r *SeasonRepository) conn(ctx context.Context) database.Conn {
	return database.ConnFromContext(ctx, r.db)
}

// List returns all seasons, most recent year first.
func (r *SeasonRepository) List(ctx context.Context) ([]models.FieldSeason, error) {
	query := fmt.Sprintf(`SELECT %s FROM field_seasons ORDER BY year DESC`, seasonColumns)
	var seasons []models.FieldSeason
	if err := r.conn(ctx).SelectContext(ctx, &seasons, query); err != nil {
		return nil, fmt.Errorf("list seasons: %w", err)
	}
	return seasons, nil
}

// FindByYear loads a season by year.
func (r *SeasonRepository) FindByYear(ctx context.Context, year int) (*models.FieldSeason, error) {
	query := fmt.Sprintf(`SELECT %s FROM field_seasons WHERE year = $1`, seasonColumns)
	var season models.FieldSeason
	if err := r.conn(ctx).GetContext(ctx, &season, query, year); err != nil {
		return nil, err
	}
	return &season, nil
}

// LockByYear loads a season and holds a row lock until the surrounding transaction ends.
func (r *SeasonRepository) LockByYear(ctx context.Context, year int) (*models.FieldSeason, error) {
	query := fmt.Sprintf(`SELECT %s FROM field_seasons WHERE year = $1 FOR UPDATE`, seasonColumns)
	var season models.FieldSeason
	if err := r.conn(ctx).GetContext(ctx, &season, query, year); err != nil {
		return nil, err
	}
	return &season, nil
}

// ListActive returns every season flagged active. More than one row means the invariant is broken.
func (r *SeasonRepository) ListActive(ctx context.Context) ([]models.FieldSeason, error) {
	query := fmt.Sprintf(`SELECT %s FROM field_seasons WHERE is_active = TRUE ORDER BY year DESC`, seasonColumns)
	var seasons []models.FieldSeason
	if err := r.conn(ctx).SelectContext(ctx, &seasons, query); err != nil {
		return nil, fmt.Errorf("list active seasons: %w", err)
	}
	return seasons, nil
}

// Create inserts a new season row.
func (r *SeasonRepository) Create(ctx context.Context, season *models.FieldSeason) error {
	now := time.Now().UTC()
	if season.CreatedAt.IsZero() {
		season.CreatedAt = now
	}
	season.UpdatedAt = now

	const query = `INSERT INTO field_seasons (year, is_active, created_at, updated_at) VALUES (:year, :is_active, :created_at, :updated_at)`
	if _, err := r.conn(ctx).NamedExecContext(ctx, query, season); err != nil {
		return fmt.Errorf("create season: %w", err)
	}
	return nil
}

// EnsureExists inserts an inactive row for year unless one exists already. A concurrent insert of
// the same year is waited on rather than raised, so the caller can lock the row afterwards.
func (r *SeasonRepository) EnsureExists(ctx context.Context, year int) error {
	now := time.Now().UTC()
	const query = `INSERT INTO field_seasons (year, is_active, created_at, updated_at) VALUES ($1, FALSE, $2, $2)
	ON CONFLICT (year) DO NOTHING`
	if _, err := r.conn(ctx).ExecContext(ctx, query, year, now); err != nil {
		return fmt.Errorf("ensure season: %w", err)
	}
	return nil
}

// DeactivateAll clears the active flag on every season and returns how many rows changed.
func (r *SeasonRepository) DeactivateAll(ctx context.Context) (int64, error) {
	res, err := r.conn(ctx).ExecContext(ctx, `UPDATE field_seasons SET is_active = FALSE, updated_at = $1 WHERE is_active = TRUE`, time.Now().UTC())
	if err != nil {
		return 0, fmt.Errorf("deactivate seasons: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("check deactivate rows: %w", err)
	}
	return affected, nil
}

// Activate flags an open season as active.
func (r *SeasonRepository) Activate(ctx context.Context, year int) error {
	res, err := r.conn(ctx).ExecContext(ctx, `UPDATE field_seasons SET is_active = TRUE, updated_at = $2 WHERE year = $1 AND closed_at IS NULL`, year, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("activate season: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("check activate rows: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// MarkClosedParams groups the columns frozen when a season closes.
type MarkClosedParams struct {
	Year       int
	ClosedAt   time.Time
	ClosedBy   string
	Statistics models.SeasonStatistics
}

// MarkClosed freezes an open season. It returns sql.ErrNoRows when the season is missing or already closed.
func (r *SeasonRepository) MarkClosed(ctx context.Context, params MarkClosedParams) error {
	const query = `UPDATE field_seasons
	SET is_active = FALSE, closed_at = $2, closed_by = $3, summary_statistics = $4, updated_at = $2
	WHERE year = $1 AND closed_at IS NULL`
	res, err := r.conn(ctx).ExecContext(ctx, query, params.Year, params.ClosedAt, params.ClosedBy, params.Statistics)
	if err != nil {
		return fmt.Errorf("close season: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("check close rows: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// ReplaceStatistics overwrites the snapshot of a closed season.
func (r *SeasonRepository) ReplaceStatistics(ctx context.Context, year int, stats models.SeasonStatistics) error {
	const query = `UPDATE field_seasons SET summary_statistics = $2, updated_at = $3 WHERE year = $1 AND closed_at IS NOT NULL`
	res, err := r.conn(ctx).ExecContext(ctx, query, year, stats, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("replace season statistics: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("check statistics rows: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}
