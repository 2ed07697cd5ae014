package handler

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/glider-ops-api/internal/dto"
	"github.com/noah-isme/glider-ops-api/internal/models"
	"github.com/noah-isme/glider-ops-api/internal/service"
	appErrors "github.com/noah-isme/glider-ops-api/pkg/errors"
	"github.com/noah-isme/glider-ops-api/pkg/response"
)

type seasonRegistry interface {
	List(ctx context.Context) ([]models.FieldSeason, error)
	Get(ctx context.Context, year int) (*models.FieldSeason, error)
	GetActive(ctx context.Context) (*models.FieldSeason, error)
	Create(ctx context.Context, req dto.CreateSeasonRequest) (*models.FieldSeason, error)
	Activate(ctx context.Context, year int) (*models.FieldSeason, error)
}

type seasonArchiver interface {
	CloseSeason(ctx context.Context, year int, closedBy string) (*models.FieldSeason, error)
	ReprocessStatistics(ctx context.Context, year int) (*models.FieldSeason, error)
}

type statisticsComputer interface {
	Compute(ctx context.Context, year *int) (*service.StatisticsResult, error)
}

type masterListPreparer interface {
	Prepare(ctx context.Context, year *int) ([]models.StationExport, error)
	Render(records []models.StationExport, format service.MasterListFormat) ([]byte, error)
}

// SeasonHandler exposes field season endpoints.
type SeasonHandler struct {
	registry   seasonRegistry
	archiver   seasonArchiver
	statistics statisticsComputer
	masterList masterListPreparer
}

// NewSeasonHandler constructs a season handler.
func NewSeasonHandler(registry seasonRegistry, archiver seasonArchiver, statistics statisticsComputer, masterList masterListPreparer) *SeasonHandler {
	return &SeasonHandler{registry: registry, archiver: archiver, statistics: statistics, masterList: masterList}
}

// List godoc
// @Summary List field seasons
// @Tags Seasons
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /seasons [get]
func (h *SeasonHandler) List(c *gin.Context) {
	seasons, err := h.registry.List(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.List(c, seasons, len(seasons))
}

// Create godoc
// @Summary Register a field season
// @Tags Seasons
// @Accept json
// @Produce json
// @Param payload body dto.CreateSeasonRequest true "Season payload"
// @Success 201 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /seasons [post]
func (h *SeasonHandler) Create(c *gin.Context) {
	var req dto.CreateSeasonRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid request body"))
		return
	}
	season, err := h.registry.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, season)
}

// GetActive godoc
// @Summary Get the active field season
// @Tags Seasons
// @Produce json
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /seasons/active [get]
func (h *SeasonHandler) GetActive(c *gin.Context) {
	season, err := h.registry.GetActive(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, season)
}

// Get godoc
// @Summary Get a field season
// @Tags Seasons
// @Produce json
// @Param year path int true "Season year"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /seasons/{year} [get]
func (h *SeasonHandler) Get(c *gin.Context) {
	year, err := yearParam(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	season, err := h.registry.Get(c.Request.Context(), year)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, season)
}

// Activate godoc
// @Summary Make a season the active one
// @Tags Seasons
// @Produce json
// @Param year path int true "Season year"
// @Success 200 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /seasons/{year}/activate [post]
func (h *SeasonHandler) Activate(c *gin.Context) {
	year, err := yearParam(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	season, err := h.registry.Activate(c.Request.Context(), year)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, season)
}

// Close godoc
// @Summary Close and archive a field season
// @Tags Seasons
// @Accept json
// @Produce json
// @Param year path int true "Season year"
// @Param payload body dto.CloseSeasonRequest true "Closing operator"
// @Success 200 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /seasons/{year}/close [post]
func (h *SeasonHandler) Close(c *gin.Context) {
	year, err := yearParam(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	var req dto.CloseSeasonRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid request body"))
		return
	}
	season, err := h.archiver.CloseSeason(c.Request.Context(), year, req.ClosedBy)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, season)
}

// Reprocess godoc
// @Summary Recompute the frozen statistics of a closed season
// @Tags Seasons
// @Produce json
// @Param year path int true "Season year"
// @Success 200 {object} response.Envelope
// @Failure 412 {object} response.Envelope
// @Router /seasons/{year}/reprocess [post]
func (h *SeasonHandler) Reprocess(c *gin.Context) {
	year, err := yearParam(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	season, err := h.archiver.ReprocessStatistics(c.Request.Context(), year)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, season)
}

// Statistics godoc
// @Summary Compute season statistics
// @Tags Seasons
// @Produce json
// @Param year path string true "Season year or 'current'"
// @Success 200 {object} response.Envelope
// @Router /seasons/{year}/statistics [get]
func (h *SeasonHandler) Statistics(c *gin.Context) {
	year, err := seasonParam(c.Param("year"))
	if err != nil {
		response.Error(c, err)
		return
	}
	result, err := h.statistics.Compute(c.Request.Context(), year)
	if err != nil {
		response.Error(c, err)
		return
	}
	stats := result.Statistics
	response.JSON(c, http.StatusOK, dto.SeasonStatisticsResponse{
		Scope:      result.Scope.Label(),
		Cached:     result.Cached,
		Statistics: &stats,
	})
}

// MasterList godoc
// @Summary Export the station master list of a season
// @Tags Seasons
// @Produce json,text/csv,application/yaml,application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Param year path string true "Season year or 'current'"
// @Param format query string false "json, csv, xlsx or yaml"
// @Success 200 {object} response.Envelope
// @Router /seasons/{year}/master-list [get]
func (h *SeasonHandler) MasterList(c *gin.Context) {
	year, err := seasonParam(c.Param("year"))
	if err != nil {
		response.Error(c, err)
		return
	}
	format, err := service.ParseMasterListFormat(c.Query("format"))
	if err != nil {
		response.Error(c, err)
		return
	}
	records, err := h.masterList.Prepare(c.Request.Context(), year)
	if err != nil {
		response.Error(c, err)
		return
	}
	if format == service.MasterListJSON {
		response.List(c, records, len(records))
		return
	}
	payload, err := h.masterList.Render(records, format)
	if err != nil {
		response.Error(c, err)
		return
	}
	label := currentSeasonLabel
	if year != nil {
		label = fmt.Sprintf("%d", *year)
	}
	response.Attachment(c, format.ContentType(), fmt.Sprintf("master-list-%s.%s", label, format), payload)
}
