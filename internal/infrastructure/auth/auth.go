package auth

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/MicahParks/keyfunc/v2"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"

	"advisorhub/advisor-api/internal/config"
	"advisorhub/advisor-api/internal/domain"
)

const principalContextKey = "principal"

// Validator validates JWTs using JWKS and resolves the request principal.
type Validator struct {
	cfg  *config.Config
	log  zerolog.Logger
	jwks *keyfunc.JWKS
}

// NewValidator initializes JWKS fetching when auth is enabled.
func NewValidator(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*Validator, error) {
	if !cfg.AuthEnabled {
		return &Validator{cfg: cfg, log: log}, nil
	}

	options := keyfunc.Options{
		Ctx:               ctx,
		RefreshInterval:   time.Hour,
		RefreshUnknownKID: true,
		RefreshErrorHandler: func(err error) {
			log.Error().Err(err).Msg("jwks refresh error")
		},
	}

	jwks, err := keyfunc.Get(cfg.AuthJWKSURL, options)
	if err != nil {
		return nil, err
	}

	return &Validator{
		cfg:  cfg,
		log:  log,
		jwks: jwks,
	}, nil
}

// Middleware resolves the caller identity and stores it in the gin context.
// With auth disabled a development principal is injected (overridable via the
// X-User-Id header) so local runs and tests have an identity to work with.
func (v *Validator) Middleware() gin.HandlerFunc {
	if v == nil || !v.cfg.AuthEnabled {
		return func(c *gin.Context) {
			id := c.GetHeader("X-User-Id")
			if id == "" {
				id = "dev-user"
			}
			SetPrincipal(c, domain.Principal{
				ID:         id,
				Subject:    id,
				AuthMethod: domain.AuthMethodDev,
			})
			c.Next()
		}
	}

	return func(c *gin.Context) {
		tokenString := bearerToken(c.GetHeader("Authorization"))
		if tokenString == "" {
			abortUnauthorized(c, "missing bearer token")
			return
		}

		parseOpts := []jwt.ParserOption{
			jwt.WithIssuer(v.cfg.AuthIssuer),
			jwt.WithValidMethods([]string{"RS256", "RS384", "RS512"}),
		}
		if v.cfg.AuthAudience != "" {
			parseOpts = append(parseOpts, jwt.WithAudience(v.cfg.AuthAudience))
		}

		token, err := jwt.Parse(tokenString, v.jwks.Keyfunc, parseOpts...)
		if err != nil || !token.Valid {
			abortUnauthorized(c, "invalid token")
			return
		}

		principal, err := principalFromToken(token)
		if err != nil {
			v.log.Warn().Err(err).Msg("token missing subject claim")
			abortUnauthorized(c, "invalid token")
			return
		}

		SetPrincipal(c, principal)
		c.Next()
	}
}

// SetPrincipal stores the principal in the gin context.
func SetPrincipal(c *gin.Context, principal domain.Principal) {
	c.Set(principalContextKey, principal)
}

// PrincipalFromContext returns the authenticated principal, if any.
func PrincipalFromContext(c *gin.Context) (domain.Principal, bool) {
	val, ok := c.Get(principalContextKey)
	if !ok {
		return domain.Principal{}, false
	}
	principal, ok := val.(domain.Principal)
	return principal, ok && !principal.IsZero()
}

func principalFromToken(token *jwt.Token) (domain.Principal, error) {
	subject, err := token.Claims.GetSubject()
	if err != nil || subject == "" {
		return domain.Principal{}, err
	}
	issuer, _ := token.Claims.GetIssuer()

	principal := domain.Principal{
		ID:         subject,
		Subject:    subject,
		Issuer:     issuer,
		AuthMethod: domain.AuthMethodJWT,
	}
	if claims, ok := token.Claims.(jwt.MapClaims); ok {
		if email, ok := claims["email"].(string); ok {
			principal.Email = email
		}
		if name, ok := claims["name"].(string); ok {
			principal.Name = name
		}
	}
	return principal, nil
}

func bearerToken(header string) string {
	if header == "" {
		return ""
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}

func abortUnauthorized(c *gin.Context, message string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
		"error": message,
	})
}
