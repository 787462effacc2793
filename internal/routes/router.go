package routes

import (
	"hwmonitor/internal/config"
	"hwmonitor/internal/controllers"
	"hwmonitor/internal/middleware"
	"hwmonitor/internal/services"

	"github.com/gin-gonic/gin"
)

// Dependencies are the services the router hands to its controllers
type Dependencies struct {
	Config    config.ServerConfig
	Source    services.HardwareSource
	History   *services.HistoryCollector
	Processes *services.ProcessCollector
	Settings  *services.SettingsService
	Hub       *services.EventHub
	Auth      middleware.TokenValidator
	Logger    *middleware.SecurityLogger
}

// NewRouter builds the gin engine for the backend command interface
func NewRouter(deps Dependencies) *gin.Engine {
	r := gin.New()
	r.Use(gin.Logger(), gin.Recovery())
	r.Use(middleware.SecurityHeadersMiddleware())
	r.Use(middleware.CORSMiddleware(deps.Config.AllowedOrigins))
	if deps.Config.RateLimit > 0 {
		r.Use(middleware.RateLimitMiddleware(middleware.NewRateLimiter(deps.Config.RateLimit, deps.Config.RateBurst)))
	}

	logger := deps.Logger
	if logger == nil {
		logger = middleware.NewSecurityLogger()
	}

	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok", "listeners": deps.Hub.ClientCount()})
	})

	api := r.Group("")
	if deps.Config.RequireAuth && deps.Auth != nil {
		api.Use(middleware.AuthMiddleware(deps.Auth, logger))
	}

	RegisterHardwareRoutes(api, controllers.NewHardwareController(deps.Source, deps.History, deps.Processes))
	RegisterSettingsRoutes(api, controllers.NewSettingsController(deps.Settings))
	RegisterEventRoutes(api, controllers.NewEventsController(deps.Hub, logger, deps.Config.AllowedOrigins))

	return r
}
