package v1

import (
	"github.com/gin-gonic/gin"

	"advisorhub/advisor-api/internal/interfaces/httpserver/handlers"
)

func registerTeamRoutes(router gin.IRouter, provider *handlers.Provider) {
	teams := router.Group("/teams")
	teams.POST("/provision", provider.Provision.ProvisionTeam)
	teams.GET("/templates", provider.Template.ListTemplates)
	teams.GET("/templates/:id", provider.Template.GetTemplate)
}
