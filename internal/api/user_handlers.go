package api

import (
	"github.com/gin-gonic/gin"

	"github.com/dawudu11/burptracker/internal"
	"github.com/dawudu11/burptracker/internal/service"
)

func CreateUser(app App) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req service.CreateUserRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			HandleError(c, app.Logger(), internal.NewValidationError("invalid JSON: "+err.Error()), "Invalid request")
			return
		}
		if err := service.ValidateCreateUserRequest(&req); err != nil {
			HandleError(c, app.Logger(), internal.NewValidationError(err.Error()), "Validation failed")
			return
		}

		user, err := service.CreateOrGetUser(c.Request.Context(), app.Users(), req.Username)
		if err != nil {
			HandleError(c, app.Logger(), err, "Failed to create user")
			return
		}

		HandleSuccess(c, app.Logger(), map[string]interface{}{"user": user})
	}
}
