package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// RegisterRoutes wires the full HTTP and websocket surface onto the engine.
func RegisterRoutes(r *gin.Engine, app App) {
	r.Use(RequestIDMiddleware())

	apiGroup := r.Group("/api")
	{
		apiGroup.GET("/", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{"message": "Burp Tracker API is running"})
		})

		apiGroup.POST("/burp/session", PostBurpSession(app))
		apiGroup.GET("/burp/today", GetTodayStats(app))
		apiGroup.GET("/burp/history/:days", GetHistory(app))

		apiGroup.POST("/user/create", CreateUser(app))

		apiGroup.POST("/group/create", CreateGroup(app))
		apiGroup.POST("/group/join", JoinGroup(app))
		apiGroup.PUT("/group/:group_id/name", UpdateGroupName(app))
		apiGroup.POST("/group/:group_id/session", RecordGroupSession(app))
		apiGroup.GET("/group/:group_id/stats", GetGroupStats(app))
	}

	r.GET("/ws/:group_id/:user_id", ServeWS(app))
}
