package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"advisorhub/advisor-api/internal/domain/provision"
	"advisorhub/advisor-api/internal/infrastructure/auth"
	"advisorhub/advisor-api/internal/utils/platformerrors"
)

// ProvisionRequest is the payload for team provisioning.
type ProvisionRequest struct {
	TemplateID     string `json:"template_id" binding:"required"`
	IdempotencyKey string `json:"idempotency_key"`
}

// ProvisionHandler invokes the provisioning orchestrator.
type ProvisionHandler struct {
	service *provision.Service
	log     zerolog.Logger
}

// NewProvisionHandler wires dependencies for provisioning routes.
func NewProvisionHandler(service *provision.Service, log zerolog.Logger) *ProvisionHandler {
	return &ProvisionHandler{
		service: service,
		log:     log.With().Str("component", "provision-handler").Logger(),
	}
}

// ProvisionTeam godoc
// @Summary      Provision an advisor team from a template
// @Description  Creates all advisors defined by the template's blueprint items for the authenticated user.
// @Tags         teams
// @Accept       json
// @Produce      json
// @Param        request  body      ProvisionRequest  true  "template id and optional idempotency key"
// @Success      200      {object}  provision.Result
// @Failure      400      {object}  platformerrors.HTTPErrorResponse
// @Failure      401      {object}  platformerrors.HTTPErrorResponse
// @Failure      404      {object}  platformerrors.HTTPErrorResponse
// @Failure      429      {object}  platformerrors.HTTPErrorResponse
// @Router       /v1/teams/provision [post]
func (h *ProvisionHandler) ProvisionTeam(c *gin.Context) {
	var req ProvisionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		platformerrors.WriteError(c, platformerrors.NewError(platformerrors.LayerHandler,
			platformerrors.ErrorTypeInvalidPayload, "template_id is required", err), h.log)
		return
	}

	// An idempotency key may also arrive via the conventional header.
	if req.IdempotencyKey == "" {
		req.IdempotencyKey = c.GetHeader("Idempotency-Key")
	}

	principal, _ := auth.PrincipalFromContext(c)

	result, err := h.service.Provision(c.Request.Context(), principal, req.TemplateID, req.IdempotencyKey)
	if err != nil {
		platformerrors.WriteError(c, err, h.log)
		return
	}

	c.JSON(http.StatusOK, result)
}
