package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/glider-ops-api/internal/dto"
	"github.com/noah-isme/glider-ops-api/internal/models"
	appErrors "github.com/noah-isme/glider-ops-api/pkg/errors"
	"github.com/noah-isme/glider-ops-api/pkg/response"
)

type stationOperator interface {
	RecordOffloadAttempt(ctx context.Context, stationID string, req dto.RecordOffloadAttemptRequest) (*models.OffloadAttempt, error)
	UpsertStation(ctx context.Context, stationID string, req dto.UpsertStationRequest) (*models.StationRecord, error)
	SetDisplayStatusOverride(ctx context.Context, stationID string, req dto.SetOverrideRequest) (*models.StationStatus, error)
	GetStatus(ctx context.Context, stationID string) (*models.StationStatus, error)
	ListStatuses(ctx context.Context, year *int) ([]models.StationStatus, error)
}

// StationHandler exposes station and offload log endpoints.
type StationHandler struct {
	service stationOperator
}

// NewStationHandler constructs a station handler.
func NewStationHandler(svc stationOperator) *StationHandler {
	return &StationHandler{service: svc}
}

// List godoc
// @Summary List station statuses for a season
// @Tags Stations
// @Produce json
// @Param season query string false "Season year or 'current'"
// @Success 200 {object} response.Envelope
// @Router /stations [get]
func (h *StationHandler) List(c *gin.Context) {
	year, err := seasonParam(c.Query("season"))
	if err != nil {
		response.Error(c, err)
		return
	}
	statuses, err := h.service.ListStatuses(c.Request.Context(), year)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.List(c, statuses, len(statuses))
}

// Upsert godoc
// @Summary Create or update station metadata
// @Tags Stations
// @Accept json
// @Produce json
// @Param id path string true "Station ID"
// @Param payload body dto.UpsertStationRequest true "Station metadata"
// @Success 200 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /stations/{id} [put]
func (h *StationHandler) Upsert(c *gin.Context) {
	var req dto.UpsertStationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid request body"))
		return
	}
	station, err := h.service.UpsertStation(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, station)
}

// Status godoc
// @Summary Get the derived status of a station
// @Tags Stations
// @Produce json
// @Param id path string true "Station ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /stations/{id}/status [get]
func (h *StationHandler) Status(c *gin.Context) {
	status, err := h.service.GetStatus(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, status)
}

// Override godoc
// @Summary Set or clear the display status override
// @Tags Stations
// @Accept json
// @Produce json
// @Param id path string true "Station ID"
// @Param payload body dto.SetOverrideRequest true "Override, null clears it"
// @Success 200 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /stations/{id}/override [put]
func (h *StationHandler) Override(c *gin.Context) {
	var req dto.SetOverrideRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid request body"))
		return
	}
	status, err := h.service.SetDisplayStatusOverride(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, status)
}

// RecordOffload godoc
// @Summary Record an offload attempt against a station
// @Tags Stations
// @Accept json
// @Produce json
// @Param id path string true "Station ID"
// @Param payload body dto.RecordOffloadAttemptRequest true "Offload log entry"
// @Success 201 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /stations/{id}/offloads [post]
func (h *StationHandler) RecordOffload(c *gin.Context) {
	var req dto.RecordOffloadAttemptRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid request body"))
		return
	}
	attempt, err := h.service.RecordOffloadAttempt(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, attempt)
}
