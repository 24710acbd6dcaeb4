package advisor

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"advisorhub/advisor-api/internal/domain"
	"advisorhub/advisor-api/internal/utils/idgen"
	"advisorhub/advisor-api/internal/utils/platformerrors"
)

// maxHandleAttempts bounds the collision-resolution loop. Exhaustion means the
// storage layer is returning inconsistent answers and is treated as a
// persistence failure.
const maxHandleAttempts = 20

var handlePattern = regexp.MustCompile(`^[a-z0-9]+(-[a-z0-9]+)*$`)

// Service creates advisors on behalf of an authenticated user. Each creation
// is an independent unit of work; the service has no knowledge of the team
// template a creation may be part of.
type Service struct {
	repo     Repository
	validate *validator.Validate
	log      zerolog.Logger
}

// NewService wires the advisor service with its repository.
func NewService(repo Repository, log zerolog.Logger) *Service {
	v := validator.New(validator.WithRequiredStructEnabled())
	// "handle" tag: lowercase alphanumerics with single hyphens between runs.
	_ = v.RegisterValidation("handle", func(fl validator.FieldLevel) bool {
		return handlePattern.MatchString(fl.Field().String())
	})

	return &Service{
		repo:     repo,
		validate: v,
		log:      log.With().Str("component", "advisor-service").Logger(),
	}
}

// Create validates the payload and persists a new advisor plus its ownership
// link. The owner is always derived from the principal, never from the payload.
func (s *Service) Create(ctx context.Context, principal domain.Principal, params CreateParams) (*Advisor, error) {
	if principal.IsZero() {
		return nil, platformerrors.NewError(platformerrors.LayerDomain, platformerrors.ErrorTypeUnauthenticated,
			"advisor creation requires an authenticated user", nil)
	}

	if err := s.validate.Struct(params); err != nil {
		return nil, invalidPayload(err)
	}

	handle, err := s.resolveHandle(ctx, principal.ID, params)
	if err != nil {
		return nil, err
	}

	id, err := idgen.GenerateSecureID("adv", 16)
	if err != nil {
		return nil, platformerrors.NewError(platformerrors.LayerDomain, platformerrors.ErrorTypePersistence,
			"failed to generate advisor id", err)
	}

	style := params.AdviceStyle
	if style == "" {
		style = DefaultAdviceStyle
	}
	metadata := params.Metadata
	if metadata.Source == "" {
		metadata.Source = SourceManual
	}

	adv := &Advisor{
		ID:          id,
		OwnerID:     principal.ID,
		Name:        params.Name,
		Handle:      handle,
		OneLiner:    params.OneLiner,
		Mission:     params.Mission,
		AvatarURL:   params.AvatarURL,
		WebsiteURL:  params.WebsiteURL,
		Tags:        params.Tags,
		AdviceStyle: style,
		Metadata:    metadata,
		CreatedAt:   time.Now().UTC(),
	}

	if err := s.repo.Create(ctx, adv); err != nil {
		return nil, platformerrors.NewError(platformerrors.LayerRepository, platformerrors.ErrorTypePersistence,
			"failed to persist advisor", err)
	}

	linkID, err := idgen.GenerateSecureID("link", 16)
	if err != nil {
		return nil, platformerrors.NewError(platformerrors.LayerDomain, platformerrors.ErrorTypePersistence,
			"failed to generate link id", err)
	}
	link := &Link{
		ID:        linkID,
		UserID:    principal.ID,
		AdvisorID: adv.ID,
		Source:    metadata.Source,
		CreatedAt: adv.CreatedAt,
	}
	if err := s.repo.CreateLink(ctx, link); err != nil {
		return nil, platformerrors.NewError(platformerrors.LayerRepository, platformerrors.ErrorTypePersistence,
			"failed to persist advisor link", err)
	}

	s.log.Info().
		Str("advisor_id", adv.ID).
		Str("owner_id", adv.OwnerID).
		Str("handle", adv.Handle).
		Str("source", metadata.Source).
		Msg("advisor created")

	return adv, nil
}

// Get returns one advisor owned by the principal.
func (s *Service) Get(ctx context.Context, principal domain.Principal, id string) (*Advisor, error) {
	if principal.IsZero() {
		return nil, platformerrors.NewError(platformerrors.LayerDomain, platformerrors.ErrorTypeUnauthenticated,
			"advisor lookup requires an authenticated user", nil)
	}
	adv, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if adv.OwnerID != principal.ID {
		return nil, platformerrors.NewError(platformerrors.LayerDomain, platformerrors.ErrorTypeNotFound,
			fmt.Sprintf("advisor %s not found", id), nil)
	}
	return adv, nil
}

// ListOwn returns all advisors owned by the principal.
func (s *Service) ListOwn(ctx context.Context, principal domain.Principal) ([]*Advisor, error) {
	if principal.IsZero() {
		return nil, platformerrors.NewError(platformerrors.LayerDomain, platformerrors.ErrorTypeUnauthenticated,
			"advisor listing requires an authenticated user", nil)
	}
	return s.repo.FindByOwner(ctx, principal.ID)
}

// resolveHandle derives a handle from the payload (or the display name) and
// resolves collisions within the owner's scope by deterministic suffixing:
// ceo-coach, ceo-coach-2, ceo-coach-3, ...
func (s *Service) resolveHandle(ctx context.Context, ownerID string, params CreateParams) (string, error) {
	base := params.Handle
	if base == "" {
		base = Slugify(params.Name)
	}

	candidate := base
	for attempt := 2; attempt <= maxHandleAttempts+1; attempt++ {
		exists, err := s.repo.HandleExists(ctx, ownerID, candidate)
		if err != nil {
			return "", platformerrors.NewError(platformerrors.LayerRepository, platformerrors.ErrorTypePersistence,
				"failed to check handle uniqueness", err)
		}
		if !exists {
			return candidate, nil
		}
		candidate = suffixHandle(base, attempt)
	}

	return "", platformerrors.NewError(platformerrors.LayerDomain, platformerrors.ErrorTypePersistence,
		fmt.Sprintf("could not find a free handle for %q after %d attempts", base, maxHandleAttempts), nil)
}

// suffixHandle appends -n to base, trimming the base first so the candidate
// never exceeds the handle length cap.
func suffixHandle(base string, n int) string {
	suffix := fmt.Sprintf("-%d", n)
	if len(base)+len(suffix) > maxHandleLen {
		base = strings.TrimRight(base[:maxHandleLen-len(suffix)], "-")
	}
	return base + suffix
}

func invalidPayload(err error) error {
	var verrs validator.ValidationErrors
	if ok := asValidationErrors(err, &verrs); ok && len(verrs) > 0 {
		fe := verrs[0]
		detail := fmt.Sprintf("field %q failed %q validation", fe.Field(), fe.Tag())
		return platformerrors.NewError(platformerrors.LayerDomain, platformerrors.ErrorTypeInvalidPayload, detail, err)
	}
	return platformerrors.NewError(platformerrors.LayerDomain, platformerrors.ErrorTypeInvalidPayload,
		"invalid advisor payload", err)
}

func asValidationErrors(err error, target *validator.ValidationErrors) bool {
	verrs, ok := err.(validator.ValidationErrors)
	if ok {
		*target = verrs
	}
	return ok
}
