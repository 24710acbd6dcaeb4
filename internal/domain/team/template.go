package team

// BlueprintItem describes one advisor to create when a template is applied.
type BlueprintItem struct {
	Name        string   `json:"name" yaml:"name"`
	OneLiner    string   `json:"one_liner" yaml:"one_liner"`
	Mission     string   `json:"mission" yaml:"mission"`
	Specialties []string `json:"specialties,omitempty" yaml:"specialties"`
	AdviceStyle string   `json:"advice_style,omitempty" yaml:"advice_style"`
}

// Template is a versioned, named set of blueprint items. Templates are static
// configuration: loaded at process start and never mutated afterwards.
type Template struct {
	ID         string          `json:"id" yaml:"id"`
	Version    string          `json:"version" yaml:"version"`
	Category   string          `json:"category" yaml:"category"`
	Name       string          `json:"name" yaml:"name"`
	Blueprints []BlueprintItem `json:"blueprints" yaml:"blueprints"`
}

// Template categories.
const (
	CategoryStartup  = "startup"
	CategoryCreator  = "creator"
	CategoryWellness = "wellness"
)

// builtinTemplates seeds the registry. The startup-squad template is the
// canonical three-advisor team used throughout the product.
func builtinTemplates() []*Template {
	return []*Template{
		{
			ID:       "startup-squad",
			Version:  "v1",
			Category: CategoryStartup,
			Name:     "Startup Squad",
			Blueprints: []BlueprintItem{
				{
					Name:        "CEO Coach",
					OneLiner:    "Executive sparring partner for founders",
					Mission:     "Helps founders sharpen strategy, prioritize ruthlessly, and communicate a clear vision to their team and investors.",
					Specialties: []string{"strategy", "fundraising", "leadership"},
					AdviceStyle: "direct",
				},
				{
					Name:        "PM Coach",
					OneLiner:    "Product sense on demand",
					Mission:     "Guides product decisions from discovery to delivery, pushing for crisp problem statements and measurable outcomes.",
					Specialties: []string{"product", "roadmapping", "user-research"},
					AdviceStyle: "socratic",
				},
				{
					Name:        "GTM Coach",
					OneLiner:    "From zero to repeatable revenue",
					Mission:     "Shapes positioning, pricing, and channel strategy so early teams can find and win their first hundred customers.",
					Specialties: []string{"marketing", "sales", "positioning"},
					AdviceStyle: "tactical",
				},
			},
		},
		{
			ID:       "creator-collective",
			Version:  "v1",
			Category: CategoryCreator,
			Name:     "Creator Collective",
			Blueprints: []BlueprintItem{
				{
					Name:        "Content Strategist",
					OneLiner:    "Turns ideas into a publishing engine",
					Mission:     "Builds sustainable content systems: pillars, cadence, and repurposing loops that compound an audience over time.",
					Specialties: []string{"content", "audience-growth"},
					AdviceStyle: "supportive",
				},
				{
					Name:        "Brand Coach",
					OneLiner:    "A distinct voice in a crowded feed",
					Mission:     "Sharpens positioning and visual identity so creators stand out and attract the partnerships they actually want.",
					Specialties: []string{"branding", "partnerships"},
					AdviceStyle: "direct",
				},
			},
		},
	}
}
