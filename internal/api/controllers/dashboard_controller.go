package controllers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"gladiadores/internal/models/response_models"
	"gladiadores/internal/services"
	"gladiadores/pkg/utils"
)

const maxLookbackDays = 366

type DashboardController struct {
	dashboardService services.DashboardService
}

func NewDashboardController(dashboardService services.DashboardService) *DashboardController {
	return &DashboardController{
		dashboardService: dashboardService,
	}
}

// GetDashboard godoc
// @Summary Get dashboard report
// @Description Registration and passport KPIs, registration and donation series, top provinces and recent donations
// @Tags Admin
// @Accept json
// @Produce json
// @Param start     query string false "RFC3339 start (e.g. 2026-02-01T00:00:00-04:00)"
// @Param end       query string false "RFC3339 end"
// @Param last_days query int    false "Relative lookback in days (mutually exclusive with start/end). Default 30"
// @Param interval  query string false "Bucket size: day | week | month (default: day)"
// @Param tz        query string false "IANA timezone for bucketing (default: America/Santo_Domingo)"
// @Success 200 {object} utils.APIResponse
// @Failure 400 {object} utils.APIResponse
// @Security BearerAuth
// @Router /admin/dashboard [get]
func (p *DashboardController) GetDashboard(c *gin.Context) {
	tr, err := parseTimeRange(c, time.Now().UTC())
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, err.Error())
		return
	}

	report, err := p.dashboardService.BuildDashboard(c.Request.Context(), tr)
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	utils.RespondSuccess(c, report, "Dashboard data fetched successfully")
}

// parseTimeRange reads either last_days or start/end, never both.
func parseTimeRange(c *gin.Context, now time.Time) (response_models.TimeRange, error) {
	tr := response_models.TimeRange{
		Interval: c.DefaultQuery("interval", "day"),
		Timezone: c.DefaultQuery("tz", utils.DefaultTimezone),
	}
	if !validInterval(tr.Interval) {
		return tr, errors.New("interval must be one of: day, week, month")
	}
	if _, err := time.LoadLocation(tr.Timezone); err != nil {
		return tr, errors.New("tz must be an IANA timezone")
	}

	startStr, endStr, lastDays := c.Query("start"), c.Query("end"), c.Query("last_days")
	if lastDays != "" && (startStr != "" || endStr != "") {
		return tr, errors.New("provide either last_days or start/end (not both)")
	}

	if lastDays != "" {
		d, err := strconv.Atoi(lastDays)
		if err != nil || d <= 0 || d > maxLookbackDays {
			return tr, errors.New("last_days must be between 1 and 366")
		}
		tr.End = now
		tr.Start = now.AddDate(0, 0, -d)
		return tr, nil
	}

	var err error
	if startStr != "" {
		if tr.Start, err = time.Parse(time.RFC3339, startStr); err != nil {
			return tr, errors.New("start must be RFC3339")
		}
	}
	if endStr != "" {
		if tr.End, err = time.Parse(time.RFC3339, endStr); err != nil {
			return tr, errors.New("end must be RFC3339")
		}
	}
	if tr.End.IsZero() {
		tr.End = now
	}
	if tr.Start.IsZero() {
		tr.Start = tr.End.AddDate(0, 0, -30)
	}
	if tr.Start.After(tr.End) {
		tr.Start, tr.End = tr.End, tr.Start
	}
	return tr, nil
}

func validInterval(s string) bool {
	switch s {
	case "day", "week", "month":
		return true
	default:
		return false
	}
}
