package routes

import (
	"github.com/gin-gonic/gin"

	"advisorhub/advisor-api/internal/interfaces/httpserver/handlers"
	v1 "advisorhub/advisor-api/internal/interfaces/httpserver/routes/v1"
)

// Provider wires versioned route registrars.
type Provider struct {
	v1 *v1.Routes
}

// NewProvider constructs the route provider.
func NewProvider(handlerProvider *handlers.Provider) *Provider {
	return &Provider{
		v1: v1.NewRoutes(handlerProvider),
	}
}

// Register attaches all API routes to the engine.
func (p *Provider) Register(engine *gin.Engine) {
	p.v1.Register(engine)
}
