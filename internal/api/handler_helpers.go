package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/dawudu11/burptracker/internal"
	"github.com/dawudu11/burptracker/internal/response"
)

// HandleError maps the error taxonomy onto HTTP statuses. Expected client
// errors carry their own message; anything else is an internal fault and
// only the generic msg leaks out.
func HandleError(c *gin.Context, logger internal.Logger, err error, msg string) {
	requestID := c.GetString("request_id")
	status := http.StatusInternalServerError
	detail := msg
	switch {
	case internal.IsValidation(err):
		status = http.StatusBadRequest
		detail = err.Error()
	case internal.IsNotFound(err):
		status = http.StatusNotFound
		detail = err.Error()
	case internal.IsPermission(err):
		status = http.StatusForbidden
		detail = err.Error()
	}
	logger.Errorf("[request_id=%s] %s: %v", requestID, msg, err)
	c.JSON(status, response.NewError(status, detail))
}

func HandleSuccess(c *gin.Context, logger internal.Logger, keys map[string]interface{}) {
	requestID := c.GetString("request_id")
	logger.Infof("[request_id=%s] Success", requestID)
	c.JSON(http.StatusOK, response.Success(keys))
}
