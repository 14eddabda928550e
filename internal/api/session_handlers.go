package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/dawudu11/burptracker/internal"
	"github.com/dawudu11/burptracker/internal/service"
)

func PostBurpSession(app App) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req service.PersonalSessionRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			HandleError(c, app.Logger(), internal.NewValidationError("invalid JSON: "+err.Error()), "Invalid request")
			return
		}
		if err := service.ValidatePersonalSessionRequest(&req); err != nil {
			HandleError(c, app.Logger(), internal.NewValidationError(err.Error()), "Validation failed")
			return
		}

		stats, err := service.RecordPersonalSession(c.Request.Context(), app.Sessions(), req.Duration)
		if err != nil {
			HandleError(c, app.Logger(), err, "Failed to record session")
			return
		}

		HandleSuccess(c, app.Logger(), map[string]interface{}{"data": stats})
	}
}

func GetTodayStats(app App) gin.HandlerFunc {
	return func(c *gin.Context) {
		stats, err := service.PersonalTodayStats(c.Request.Context(), app.Sessions())
		if err != nil {
			HandleError(c, app.Logger(), err, "Failed to fetch today's stats")
			return
		}

		// DayStats fields directly, no envelope.
		c.JSON(http.StatusOK, stats)
	}
}

func GetHistory(app App) gin.HandlerFunc {
	return func(c *gin.Context) {
		days, err := strconv.Atoi(c.Param("days"))
		if err != nil || days < 1 {
			HandleError(c, app.Logger(), internal.NewValidationError("days must be a positive integer"), "Invalid request")
			return
		}

		history, err := service.PersonalHistory(c.Request.Context(), app.Sessions(), days)
		if err != nil {
			HandleError(c, app.Logger(), err, "Failed to fetch history")
			return
		}

		HandleSuccess(c, app.Logger(), map[string]interface{}{"data": history})
	}
}
