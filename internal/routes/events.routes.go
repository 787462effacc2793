package routes

import (
	"hwmonitor/internal/controllers"

	"github.com/gin-gonic/gin"
)

// RegisterEventRoutes registers the push-event websocket and triggers
func RegisterEventRoutes(r gin.IRoutes, events *controllers.EventsController) {
	r.GET("/ws", events.HandleWebSocket)
	r.POST("/events/open_settings", events.OpenSettings)
	r.POST("/events/error", events.EmitError)
}
