package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"advisorhub/advisor-api/internal/domain/team"
	"advisorhub/advisor-api/internal/utils/platformerrors"
)

// TemplateHandler serves read access to the team template registry.
type TemplateHandler struct {
	registry *team.Registry
	log      zerolog.Logger
}

// NewTemplateHandler wires dependencies for template routes.
func NewTemplateHandler(registry *team.Registry, log zerolog.Logger) *TemplateHandler {
	return &TemplateHandler{
		registry: registry,
		log:      log.With().Str("component", "template-handler").Logger(),
	}
}

// ListTemplates godoc
// @Summary      List available team templates
// @Tags         teams
// @Produce      json
// @Success      200  {array}  team.Template
// @Router       /v1/teams/templates [get]
func (h *TemplateHandler) ListTemplates(c *gin.Context) {
	c.JSON(http.StatusOK, h.registry.List())
}

// GetTemplate godoc
// @Summary      Fetch one team template
// @Tags         teams
// @Produce      json
// @Param        id   path      string  true  "template id"
// @Success      200  {object}  team.Template
// @Failure      404  {object}  platformerrors.HTTPErrorResponse
// @Router       /v1/teams/templates/{id} [get]
func (h *TemplateHandler) GetTemplate(c *gin.Context) {
	tpl, err := h.registry.Resolve(c.Param("id"))
	if err != nil {
		platformerrors.WriteError(c, err, h.log)
		return
	}
	c.JSON(http.StatusOK, tpl)
}
