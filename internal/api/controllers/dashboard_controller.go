package controllers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"mlmadmin/internal/models/response_models"
	"mlmadmin/internal/services"
	"mlmadmin/pkg/utils"
)

const defaultDashboardDays = 30

var dashboardIntervals = map[string]bool{"day": true, "week": true, "month": true}

type DashboardController struct {
	dashboardService services.DashboardService
	now              func() time.Time
}

func NewDashboardController(dashboardService services.DashboardService) *DashboardController {
	return &DashboardController{dashboardService: dashboardService, now: time.Now}
}

// GetDashboard godoc
// @Summary Admin dashboard
// @Description Member, revenue and commission KPIs with bucketed series, plan mix, top earners and recent payments
// @Tags Dashboard
// @Produce json
// @Param start query string false "RFC3339 start"
// @Param end query string false "RFC3339 end"
// @Param last_days query int false "Lookback in days, instead of start/end (default 30)"
// @Param interval query string false "day | week | month" default(day)
// @Param tz query string false "IANA timezone used for bucketing" default(UTC)
// @Success 200 {object} utils.APIResponse
// @Failure 400 {object} utils.APIResponse
// @Security BearerAuth
// @Router /admin/dashboard [get]
func (d *DashboardController) GetDashboard(c *gin.Context) {
	interval := c.DefaultQuery("interval", "day")
	if !dashboardIntervals[interval] {
		utils.RespondError(c, http.StatusBadRequest, "interval must be one of: day, week, month")
		return
	}
	tz := c.DefaultQuery("tz", "UTC")
	if _, err := time.LoadLocation(tz); err != nil {
		utils.RespondError(c, http.StatusBadRequest, "tz must be an IANA timezone name")
		return
	}

	now := d.now()
	start, end, ok := timeRangeQuery(c, now)
	if !ok {
		return
	}
	if end.IsZero() {
		end = now.UTC().Truncate(time.Minute)
	}
	if start.IsZero() {
		start = end.AddDate(0, 0, -defaultDashboardDays)
	}
	if start.After(end) {
		start, end = end, start
	}

	report, err := d.dashboardService.BuildDashboard(c.Request.Context(), response_models.TimeRange{
		Start:    start,
		End:      end,
		Interval: interval,
		Timezone: tz,
	})
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}
	utils.RespondSuccess(c, report, "Dashboard data fetched successfully")
}
