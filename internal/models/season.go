package models

import (
	"strconv"
	"time"
)

// FieldSeason is a bounded deployment period keyed by year.
type FieldSeason struct {
	Year              int               `db:"year" json:"year"`
	IsActive          bool              `db:"is_active" json:"is_active"`
	ClosedAt          *time.Time        `db:"closed_at" json:"closed_at,omitempty"`
	ClosedBy          *string           `db:"closed_by" json:"closed_by,omitempty"`
	SummaryStatistics *SeasonStatistics `db:"summary_statistics" json:"summary_statistics,omitempty"`
	CreatedAt         time.Time         `db:"created_at" json:"created_at"`
	UpdatedAt         time.Time         `db:"updated_at" json:"updated_at"`
}

// IsClosed reports whether the season has been frozen.
func (s *FieldSeason) IsClosed() bool {
	return s != nil && s.ClosedAt != nil
}

// SeasonScope selects the station and log rows belonging to a season.
// A nil Year selects only unassigned rows; IncludeUnassigned adds NULL-season rows
// that are not archived yet to a concrete year.
type SeasonScope struct {
	Year              *int
	IncludeUnassigned bool
}

// Label renders the scope for logs and cache keys.
func (s SeasonScope) Label() string {
	if s.Year == nil {
		return "current"
	}
	return strconv.Itoa(*s.Year)
}
