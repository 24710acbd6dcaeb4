package handlers

import (
	"github.com/rs/zerolog"

	"advisorhub/advisor-api/internal/domain/advisor"
	"advisorhub/advisor-api/internal/domain/provision"
	"advisorhub/advisor-api/internal/domain/team"
)

// Provider wires all HTTP handlers for dependency injection.
type Provider struct {
	Provision *ProvisionHandler
	Advisor   *AdvisorHandler
	Template  *TemplateHandler
}

// NewProvider constructs the handler provider with domain services.
func NewProvider(
	provisionService *provision.Service,
	advisorService *advisor.Service,
	registry *team.Registry,
	log zerolog.Logger,
) *Provider {
	return &Provider{
		Provision: NewProvisionHandler(provisionService, log),
		Advisor:   NewAdvisorHandler(advisorService, log),
		Template:  NewTemplateHandler(registry, log),
	}
}
