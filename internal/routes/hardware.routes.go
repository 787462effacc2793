package routes

import (
	"hwmonitor/internal/controllers"

	"github.com/gin-gonic/gin"
)

func RegisterHardwareRoutes(r gin.IRouter, hardware *controllers.HardwareController) {
	group := r.Group("/hardware")
	{
		group.GET("/usage/:target", hardware.GetUsage)
		group.GET("/history/:target", hardware.GetHistory)
		group.GET("/temperature/:target", hardware.GetTemperature)
		group.GET("/fan/:target", hardware.GetFan)
		group.GET("/info", hardware.GetHardwareInfo)
		group.GET("/processes", hardware.GetProcesses)
	}
}
