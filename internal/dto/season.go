package dto

import "github.com/noah-isme/glider-ops-api/internal/models"

// CreateSeasonRequest describes the payload for registering a field season.
type CreateSeasonRequest struct {
	Year       int  `json:"year" validate:"required,gte=1900,lte=9999"`
	MakeActive bool `json:"make_active"`
}

// CloseSeasonRequest names the operator freezing a season.
type CloseSeasonRequest struct {
	ClosedBy string `json:"closed_by" validate:"required,max=150"`
}

// SeasonStatisticsResponse wraps a statistics document with its provenance.
type SeasonStatisticsResponse struct {
	Scope      string                   `json:"scope"`
	Cached     bool                     `json:"cached"`
	Statistics *models.SeasonStatistics `json:"statistics"`
}
