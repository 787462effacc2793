package routes

import (
	"hwmonitor/internal/controllers"

	"github.com/gin-gonic/gin"
)

func RegisterSettingsRoutes(r gin.IRouter, settings *controllers.SettingsController) {
	group := r.Group("/settings")
	{
		group.GET("", settings.GetSettings)
		group.PUT("/language", settings.SetLanguage)
		group.PUT("/theme", settings.SetTheme)
		group.PUT("/display_targets", settings.SetDisplayTargets)
		group.PUT("/graph_size", settings.SetGraphSize)
		group.PUT("/line_graph_border", settings.SetLineGraphBorder())
		group.PUT("/line_graph_fill", settings.SetLineGraphFill())
		group.PUT("/line_graph_color", settings.SetLineGraphColor)
		group.PUT("/line_graph_mix", settings.SetLineGraphMix())
		group.PUT("/line_graph_show_legend", settings.SetLineGraphShowLegend())
		group.PUT("/line_graph_show_scale", settings.SetLineGraphShowScale())
		group.PUT("/state", settings.SetState)
	}
}
