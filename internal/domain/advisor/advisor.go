package advisor

import (
	"context"
	"time"
)

// Advisor is a user-owned AI advisor persona.
type Advisor struct {
	ID          string    `json:"id"`
	OwnerID     string    `json:"owner_id"`
	Name        string    `json:"name"`
	Handle      string    `json:"handle"`
	OneLiner    string    `json:"one_liner,omitempty"`
	Mission     string    `json:"mission"`
	AvatarURL   string    `json:"avatar_url,omitempty"`
	WebsiteURL  string    `json:"website_url,omitempty"`
	Tags        []string  `json:"tags,omitempty"`
	AdviceStyle string    `json:"advice_style"`
	Metadata    Metadata  `json:"metadata"`
	CreatedAt   time.Time `json:"created_at"`
}

// Metadata records where an advisor came from.
type Metadata struct {
	TemplateID      string `json:"template_id,omitempty"`
	TemplateVersion string `json:"template_version,omitempty"`
	Source          string `json:"source"`
}

// Link associates an advisor with the user who owns it. Every advisor has
// exactly one link, created in the same unit of work as the advisor itself.
type Link struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	AdvisorID string    `json:"advisor_id"`
	Source    string    `json:"source"`
	CreatedAt time.Time `json:"created_at"`
}

// Creation sources.
const (
	SourceManual = "manual"
	SourceTeam   = "team"
)

// Advice styles accepted by validation.
const (
	StyleDirect     = "direct"
	StyleSocratic   = "socratic"
	StyleSupportive = "supportive"
	StyleTactical   = "tactical"
)

// DefaultAdviceStyle is applied when a payload leaves the style empty.
const DefaultAdviceStyle = StyleSupportive

// CreateParams is the validated payload for creating one advisor.
type CreateParams struct {
	Name        string   `json:"name" validate:"required,min=2,max=80"`
	OneLiner    string   `json:"one_liner" validate:"max=140"`
	Mission     string   `json:"mission" validate:"required,min=10,max=2000"`
	Handle      string   `json:"handle" validate:"omitempty,min=2,max=40,handle"`
	AvatarURL   string   `json:"avatar_url" validate:"omitempty,url,max=500"`
	WebsiteURL  string   `json:"website_url" validate:"omitempty,url,max=500"`
	Tags        []string `json:"tags" validate:"max=10,dive,min=1,max=30"`
	AdviceStyle string   `json:"advice_style" validate:"omitempty,oneof=direct socratic supportive tactical"`
	Metadata    Metadata `json:"-"`
}

// Repository exposes data access for advisors and their ownership links.
type Repository interface {
	Create(ctx context.Context, adv *Advisor) error
	CreateLink(ctx context.Context, link *Link) error
	FindByID(ctx context.Context, id string) (*Advisor, error)
	FindByOwner(ctx context.Context, ownerID string) ([]*Advisor, error)
	HandleExists(ctx context.Context, ownerID, handle string) (bool, error)
}
