package handler

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	appErrors "github.com/noah-isme/glider-ops-api/pkg/errors"
)

// currentSeasonLabel addresses the unassigned rows of the period that has no closed season yet.
const currentSeasonLabel = "current"

// seasonParam parses a season reference: a year, or "current" (and empty) for the unassigned period.
func seasonParam(raw string) (*int, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" || strings.EqualFold(raw, currentSeasonLabel) {
		return nil, nil
	}
	year, err := strconv.Atoi(raw)
	if err != nil || year <= 0 {
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("invalid season %q", raw))
	}
	return &year, nil
}

// yearParam parses the :year path parameter, which must name a concrete season.
func yearParam(c *gin.Context) (int, error) {
	year, err := seasonParam(c.Param("year"))
	if err != nil {
		return 0, err
	}
	if year == nil {
		return 0, appErrors.Clone(appErrors.ErrValidation, "a concrete season year is required")
	}
	return *year, nil
}
