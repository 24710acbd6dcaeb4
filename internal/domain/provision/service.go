package provision

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"advisorhub/advisor-api/internal/domain"
	"advisorhub/advisor-api/internal/domain/advisor"
	"advisorhub/advisor-api/internal/domain/idempotency"
	"advisorhub/advisor-api/internal/domain/ratelimit"
	"advisorhub/advisor-api/internal/domain/team"
	"advisorhub/advisor-api/internal/infrastructure/metrics"
	"advisorhub/advisor-api/internal/utils/idgen"
	"advisorhub/advisor-api/internal/utils/platformerrors"
)

// ActionProvisionTeam is the rate-limited action name for team provisioning.
const ActionProvisionTeam = "provision_team"

// Options carries the provisioning guardrail configuration.
type Options struct {
	RateLimit  int
	RateWindow time.Duration
	ResultTTL  time.Duration
}

// AdvisorCreator is the entity-creation collaborator. The orchestrator treats
// it as a black box: one call creates one advisor plus its ownership link.
type AdvisorCreator interface {
	Create(ctx context.Context, principal domain.Principal, params advisor.CreateParams) (*advisor.Advisor, error)
}

// FailedItem reports one blueprint item that could not be created.
type FailedItem struct {
	Name   string `json:"name"`
	Reason string `json:"reason"`
}

// Result is the outcome of a provisioning call. AdvisorIDs holds the ids of
// successfully created advisors in blueprint order; Failed lists the items
// that were skipped, so callers can tell full success from partial.
type Result struct {
	OK         bool         `json:"ok"`
	TemplateID string       `json:"template_id"`
	Version    string       `json:"version"`
	AdvisorIDs []string     `json:"advisor_ids"`
	Failed     []FailedItem `json:"failed,omitempty"`
}

// Service orchestrates template-driven team provisioning: rate limiting,
// idempotent replay, template resolution, and the per-blueprint creation loop.
type Service struct {
	registry *team.Registry
	creator  AdvisorCreator
	limiter  *ratelimit.Limiter
	guard    *idempotency.Guard
	opts     Options
	log      zerolog.Logger
}

// NewService wires the provisioning orchestrator.
func NewService(
	registry *team.Registry,
	creator AdvisorCreator,
	limiter *ratelimit.Limiter,
	guard *idempotency.Guard,
	opts Options,
	log zerolog.Logger,
) *Service {
	return &Service{
		registry: registry,
		creator:  creator,
		limiter:  limiter,
		guard:    guard,
		opts:     opts,
		log:      log.With().Str("component", "provision-service").Logger(),
	}
}

// Provision applies the template for the authenticated principal.
//
// The rate limit is charged before the idempotency lookup: a replayed call
// with a cached key still consumes a slot in the window. When clientKey is
// empty a fresh per-request token is derived, so omitting the key means "no
// deduplication" rather than collapsing all keyless calls onto one cached
// scope.
func (s *Service) Provision(ctx context.Context, principal domain.Principal, templateID, clientKey string) (*Result, error) {
	if principal.IsZero() {
		metrics.ProvisionCallsTotal.WithLabelValues("unauthenticated").Inc()
		return nil, platformerrors.NewError(platformerrors.LayerDomain, platformerrors.ErrorTypeUnauthenticated,
			"provisioning requires an authenticated user", nil)
	}

	if err := s.limiter.Allow(ctx, principal.ID, ActionProvisionTeam, s.opts.RateLimit, s.opts.RateWindow); err != nil {
		if platformerrors.IsErrorType(err, platformerrors.ErrorTypeRateLimited) {
			metrics.ProvisionCallsTotal.WithLabelValues("rate_limited").Inc()
			metrics.RateLimitRejectionsTotal.WithLabelValues(ActionProvisionTeam).Inc()
		}
		return nil, err
	}

	// Resolved before anything is cached: a not-found result is never stored,
	// every call for a bad id re-resolves and fails identically.
	tpl, err := s.registry.Resolve(templateID)
	if err != nil {
		metrics.ProvisionCallsTotal.WithLabelValues("template_not_found").Inc()
		return nil, err
	}

	key, err := s.composeKey(principal.ID, templateID, clientKey)
	if err != nil {
		return nil, err
	}

	payload, cached, err := s.guard.Do(ctx, key, s.opts.ResultTTL, func(ctx context.Context) ([]byte, error) {
		return s.applyTemplate(ctx, principal, tpl)
	})
	if cached {
		metrics.IdempotencyLookupsTotal.WithLabelValues("hit").Inc()
	} else {
		metrics.IdempotencyLookupsTotal.WithLabelValues("miss").Inc()
	}
	if err != nil {
		metrics.ProvisionCallsTotal.WithLabelValues("error").Inc()
		return nil, err
	}

	var result Result
	if err := json.Unmarshal(payload, &result); err != nil {
		return nil, platformerrors.NewError(platformerrors.LayerDomain, platformerrors.ErrorTypePersistence,
			"failed to decode cached provisioning result", err)
	}

	metrics.ProvisionCallsTotal.WithLabelValues("ok").Inc()
	s.log.Info().
		Str("actor_id", principal.ID).
		Str("template_id", tpl.ID).
		Str("template_version", tpl.Version).
		Int("created", len(result.AdvisorIDs)).
		Int("failed", len(result.Failed)).
		Bool("replayed", cached).
		Msg("team provisioned")

	return &result, nil
}

// applyTemplate runs the per-blueprint creation loop. Item validation
// failures are recorded and skipped; a persistence failure aborts the
// remaining loop but the partial result is still cached under the key before
// the error propagates, so a retry with the same key replays the partial
// outcome instead of duplicating advisors.
func (s *Service) applyTemplate(ctx context.Context, principal domain.Principal, tpl *team.Template) ([]byte, error) {
	result := Result{
		OK:         true,
		TemplateID: tpl.ID,
		Version:    tpl.Version,
		AdvisorIDs: make([]string, 0, len(tpl.Blueprints)),
	}

	for _, item := range tpl.Blueprints {
		adv, err := s.creator.Create(ctx, principal, creatorParams(item, tpl))
		if err != nil {
			if platformerrors.IsErrorType(err, platformerrors.ErrorTypePersistence) {
				result.Failed = append(result.Failed, FailedItem{Name: item.Name, Reason: failureReason(err)})
				result.OK = false
				payload, merr := json.Marshal(result)
				if merr != nil {
					return nil, err
				}
				return payload, err
			}

			s.log.Warn().
				Err(err).
				Str("template_id", tpl.ID).
				Str("item", item.Name).
				Msg("blueprint item skipped")
			result.Failed = append(result.Failed, FailedItem{Name: item.Name, Reason: failureReason(err)})
			continue
		}

		result.AdvisorIDs = append(result.AdvisorIDs, adv.ID)
		metrics.AdvisorsCreatedTotal.WithLabelValues(advisor.SourceTeam).Inc()
	}

	result.OK = len(result.Failed) == 0
	return json.Marshal(result)
}

func creatorParams(item team.BlueprintItem, tpl *team.Template) advisor.CreateParams {
	style := item.AdviceStyle
	if style == "" {
		style = advisor.DefaultAdviceStyle
	}
	tags := item.Specialties
	if tags == nil {
		tags = []string{}
	}
	return advisor.CreateParams{
		Name:        item.Name,
		OneLiner:    item.OneLiner,
		Mission:     item.Mission,
		Tags:        tags,
		AdviceStyle: style,
		Metadata: advisor.Metadata{
			TemplateID:      tpl.ID,
			TemplateVersion: tpl.Version,
			Source:          advisor.SourceTeam,
		},
	}
}

func (s *Service) composeKey(actorID, templateID, clientKey string) (string, error) {
	if clientKey == "" {
		token, err := idgen.GenerateSecureID("req", 24)
		if err != nil {
			return "", platformerrors.NewError(platformerrors.LayerDomain, platformerrors.ErrorTypePersistence,
				"failed to generate request token", err)
		}
		clientKey = token
	}
	return fmt.Sprintf("%s:%s:%s", actorID, templateID, clientKey), nil
}

func failureReason(err error) string {
	if pe := platformerrors.GetPlatformError(err); pe != nil {
		return fmt.Sprintf("%s: %s", pe.Type, pe.Message)
	}
	return err.Error()
}
