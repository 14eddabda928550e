package api

import (
	"github.com/gin-gonic/gin"

	"github.com/dawudu11/burptracker/internal/ws"
)

// ServeWS upgrades /ws/:group_id/:user_id to a websocket subscription.
// Upgrade failures are logged only; the upgrader has already written the
// HTTP error response.
func ServeWS(app App) gin.HandlerFunc {
	return func(c *gin.Context) {
		groupID := c.Param("group_id")
		userID := c.Param("user_id")

		if err := ws.Serve(app.Hub(), app.Logger(), c.Writer, c.Request, groupID, userID); err != nil {
			app.Logger().Warnf("ws: upgrade failed for group %s user %s: %v", groupID, userID, err)
		}
	}
}
