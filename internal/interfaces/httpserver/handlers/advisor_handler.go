package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"advisorhub/advisor-api/internal/domain/advisor"
	"advisorhub/advisor-api/internal/infrastructure/auth"
	"advisorhub/advisor-api/internal/infrastructure/metrics"
	"advisorhub/advisor-api/internal/utils/platformerrors"
)

// AdvisorHandler invokes domain logic for advisor CRUD.
type AdvisorHandler struct {
	service *advisor.Service
	log     zerolog.Logger
}

// NewAdvisorHandler wires dependencies for advisor routes.
func NewAdvisorHandler(service *advisor.Service, log zerolog.Logger) *AdvisorHandler {
	return &AdvisorHandler{
		service: service,
		log:     log.With().Str("component", "advisor-handler").Logger(),
	}
}

// CreateAdvisor godoc
// @Summary      Create a single advisor
// @Tags         advisors
// @Accept       json
// @Produce      json
// @Param        request  body      advisor.CreateParams  true  "advisor payload"
// @Success      201      {object}  advisor.Advisor
// @Failure      400      {object}  platformerrors.HTTPErrorResponse
// @Failure      401      {object}  platformerrors.HTTPErrorResponse
// @Router       /v1/advisors [post]
func (h *AdvisorHandler) CreateAdvisor(c *gin.Context) {
	var params advisor.CreateParams
	if err := c.ShouldBindJSON(&params); err != nil {
		platformerrors.WriteError(c, platformerrors.NewError(platformerrors.LayerHandler,
			platformerrors.ErrorTypeInvalidPayload, "malformed advisor payload", err), h.log)
		return
	}

	principal, _ := auth.PrincipalFromContext(c)

	created, err := h.service.Create(c.Request.Context(), principal, params)
	if err != nil {
		platformerrors.WriteError(c, err, h.log)
		return
	}

	metrics.AdvisorsCreatedTotal.WithLabelValues(created.Metadata.Source).Inc()
	c.JSON(http.StatusCreated, created)
}

// GetAdvisor godoc
// @Summary      Fetch one advisor owned by the caller
// @Tags         advisors
// @Produce      json
// @Param        id   path      string  true  "advisor id"
// @Success      200  {object}  advisor.Advisor
// @Failure      404  {object}  platformerrors.HTTPErrorResponse
// @Router       /v1/advisors/{id} [get]
func (h *AdvisorHandler) GetAdvisor(c *gin.Context) {
	principal, _ := auth.PrincipalFromContext(c)

	adv, err := h.service.Get(c.Request.Context(), principal, c.Param("id"))
	if err != nil {
		platformerrors.WriteError(c, err, h.log)
		return
	}

	c.JSON(http.StatusOK, adv)
}

// ListAdvisors godoc
// @Summary      List the caller's advisors
// @Tags         advisors
// @Produce      json
// @Success      200  {array}  advisor.Advisor
// @Failure      401  {object}  platformerrors.HTTPErrorResponse
// @Router       /v1/advisors [get]
func (h *AdvisorHandler) ListAdvisors(c *gin.Context) {
	principal, _ := auth.PrincipalFromContext(c)

	advisors, err := h.service.ListOwn(c.Request.Context(), principal)
	if err != nil {
		platformerrors.WriteError(c, err, h.log)
		return
	}
	if advisors == nil {
		advisors = []*advisor.Advisor{}
	}

	c.JSON(http.StatusOK, advisors)
}
