package api

import (
	"github.com/gin-gonic/gin"

	"github.com/dawudu11/burptracker/internal"
	"github.com/dawudu11/burptracker/internal/service"
)

func CreateGroup(app App) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req service.CreateGroupRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			HandleError(c, app.Logger(), internal.NewValidationError("invalid JSON: "+err.Error()), "Invalid request")
			return
		}
		if err := service.ValidateCreateGroupRequest(&req); err != nil {
			HandleError(c, app.Logger(), internal.NewValidationError(err.Error()), "Validation failed")
			return
		}

		group, err := service.CreateGroup(c.Request.Context(), app.Users(), app.Groups(), req.Name, req.CreatorUsername)
		if err != nil {
			HandleError(c, app.Logger(), err, "Failed to create group")
			return
		}

		HandleSuccess(c, app.Logger(), map[string]interface{}{"group": group})
	}
}

func JoinGroup(app App) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req service.JoinGroupRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			HandleError(c, app.Logger(), internal.NewValidationError("invalid JSON: "+err.Error()), "Invalid request")
			return
		}
		if err := service.ValidateJoinGroupRequest(&req); err != nil {
			HandleError(c, app.Logger(), internal.NewValidationError(err.Error()), "Validation failed")
			return
		}

		user, group, err := service.JoinGroup(c.Request.Context(), app.Users(), app.Groups(), req.InviteCode, req.Username)
		if err != nil {
			HandleError(c, app.Logger(), err, "Failed to join group")
			return
		}

		HandleSuccess(c, app.Logger(), map[string]interface{}{"user": user, "group": group})
	}
}

func UpdateGroupName(app App) gin.HandlerFunc {
	return func(c *gin.Context) {
		groupID := c.Param("group_id")
		userID := c.Query("user_id")
		if userID == "" {
			HandleError(c, app.Logger(), internal.NewValidationError("user_id query parameter is required"), "Invalid request")
			return
		}

		var req service.RenameGroupRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			HandleError(c, app.Logger(), internal.NewValidationError("invalid JSON: "+err.Error()), "Invalid request")
			return
		}

		group, err := service.RenameGroup(c.Request.Context(), app.Groups(), groupID, userID, req.Name)
		if err != nil {
			HandleError(c, app.Logger(), err, "Failed to rename group")
			return
		}

		HandleSuccess(c, app.Logger(), map[string]interface{}{"group": group})
	}
}

func RecordGroupSession(app App) gin.HandlerFunc {
	return func(c *gin.Context) {
		groupID := c.Param("group_id")

		var req service.GroupSessionRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			HandleError(c, app.Logger(), internal.NewValidationError("invalid JSON: "+err.Error()), "Invalid request")
			return
		}
		if err := service.ValidateGroupSessionRequest(&req); err != nil {
			HandleError(c, app.Logger(), internal.NewValidationError(err.Error()), "Validation failed")
			return
		}

		session, stats, err := service.RecordGroupSession(
			c.Request.Context(), app.Users(), app.Groups(), app.Sessions(),
			groupID, req.UserID, req.Duration, req.DetectionMethod)
		if err != nil {
			HandleError(c, app.Logger(), err, "Failed to record group session")
			return
		}

		// Push the refreshed stats to everyone watching this group.
		app.Hub().BroadcastGroup(groupID, stats)

		HandleSuccess(c, app.Logger(), map[string]interface{}{"session": session, "group_stats": stats})
	}
}

func GetGroupStats(app App) gin.HandlerFunc {
	return func(c *gin.Context) {
		groupID := c.Param("group_id")

		stats, err := service.BuildGroupStats(
			c.Request.Context(), app.Users(), app.Groups(), app.Sessions(), groupID, service.Today())
		if err != nil {
			HandleError(c, app.Logger(), err, "Failed to fetch group stats")
			return
		}

		HandleSuccess(c, app.Logger(), map[string]interface{}{"data": stats})
	}
}
