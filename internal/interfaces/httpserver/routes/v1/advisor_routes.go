package v1

import (
	"github.com/gin-gonic/gin"

	"advisorhub/advisor-api/internal/interfaces/httpserver/handlers"
)

func registerAdvisorRoutes(router gin.IRouter, handler *handlers.AdvisorHandler) {
	advisors := router.Group("/advisors")
	advisors.POST("", handler.CreateAdvisor)
	advisors.GET("", handler.ListAdvisors)
	advisors.GET("/:id", handler.GetAdvisor)
}
