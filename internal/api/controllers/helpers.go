package controllers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"mlmadmin/pkg/middleware"
	"mlmadmin/pkg/utils"
)

// currentUserID reads the authenticated user id set by JWTAuthMiddleware and
// answers 401 itself when it is missing.
func currentUserID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.GetString(middleware.ContextUserID))
	if err != nil {
		utils.RespondError(c, http.StatusUnauthorized, "Invalid user ID")
		return uuid.Nil, false
	}
	return id, true
}

func uuidParam(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, "Invalid "+name)
		return uuid.Nil, false
	}
	return id, true
}

func pagination(c *gin.Context) (int, int, bool) {
	page, pageSize, err := utils.ParsePagination(c, 20)
	if err != nil {
		utils.HandleServiceError(c, err)
		return 0, 0, false
	}
	return page, pageSize, true
}

func respondPage(c *gin.Context, items interface{}, page, pageSize int, total int64, message string) {
	utils.RespondSuccess(c, utils.PagedData{
		Items:    items,
		Page:     page,
		PageSize: pageSize,
		Total:    total,
	}, message)
}

// timeRangeQuery reads start/end (RFC3339) or last_days from the query.
// Bounds that were not given come back zero; a reversed pair is swapped.
// It answers 400 itself on bad input.
func timeRangeQuery(c *gin.Context, now time.Time) (start, end time.Time, ok bool) {
	startRaw, endRaw, lastDays := c.Query("start"), c.Query("end"), c.Query("last_days")

	if lastDays != "" {
		if startRaw != "" || endRaw != "" {
			utils.RespondError(c, http.StatusBadRequest, "provide either last_days or start/end, not both")
			return start, end, false
		}
		days, err := strconv.Atoi(lastDays)
		if err != nil || days <= 0 {
			utils.RespondError(c, http.StatusBadRequest, "last_days must be a positive integer")
			return start, end, false
		}
		end = now.UTC().Truncate(time.Minute)
		return end.AddDate(0, 0, -days), end, true
	}

	var err error
	if startRaw != "" {
		if start, err = time.Parse(time.RFC3339, startRaw); err != nil {
			utils.RespondError(c, http.StatusBadRequest, "start must be RFC3339 (e.g. 2026-01-01T00:00:00Z)")
			return start, end, false
		}
	}
	if endRaw != "" {
		if end, err = time.Parse(time.RFC3339, endRaw); err != nil {
			utils.RespondError(c, http.StatusBadRequest, "end must be RFC3339 (e.g. 2026-01-31T23:59:59Z)")
			return start, end, false
		}
	}
	if !start.IsZero() && !end.IsZero() && start.After(end) {
		start, end = end, start
	}
	return start, end, true
}
