package team

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"advisorhub/advisor-api/internal/utils/platformerrors"
)

// Registry resolves team templates by id. The table is assembled once at
// construction and is read-only afterwards, so lookups need no locking.
type Registry struct {
	templates map[string]*Template
	order     []string
}

// NewRegistry builds a registry from the built-in templates.
func NewRegistry() *Registry {
	r := &Registry{templates: make(map[string]*Template)}
	for _, tpl := range builtinTemplates() {
		r.add(tpl)
	}
	return r
}

// NewRegistryFromFile builds the built-in registry and merges templates from a
// YAML file on top. File entries with an existing id replace the built-in.
func NewRegistryFromFile(path string) (*Registry, error) {
	r := NewRegistry()
	if path == "" {
		return r, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read templates file: %w", err)
	}

	var doc struct {
		Templates []*Template `yaml:"templates"`
	}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse templates file: %w", err)
	}

	for i, tpl := range doc.Templates {
		if tpl == nil {
			return nil, fmt.Errorf("template %d: null entry", i)
		}
		if err := validateTemplate(tpl); err != nil {
			return nil, fmt.Errorf("template %q: %w", tpl.ID, err)
		}
		r.add(tpl)
	}
	return r, nil
}

func (r *Registry) add(tpl *Template) {
	if _, exists := r.templates[tpl.ID]; !exists {
		r.order = append(r.order, tpl.ID)
	}
	r.templates[tpl.ID] = tpl
}

// Resolve returns the template for the given id. Resolution is a pure read;
// a miss is never cached anywhere and every call for a bad id fails the same way.
func (r *Registry) Resolve(templateID string) (*Template, error) {
	tpl, ok := r.templates[templateID]
	if !ok {
		return nil, platformerrors.NewError(platformerrors.LayerDomain, platformerrors.ErrorTypeTemplateNotFound,
			fmt.Sprintf("unknown team template %q", templateID), nil)
	}
	return tpl, nil
}

// List returns all templates in registration order.
func (r *Registry) List() []*Template {
	out := make([]*Template, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.templates[id])
	}
	return out
}

func validateTemplate(tpl *Template) error {
	if tpl == nil || tpl.ID == "" {
		return fmt.Errorf("missing id")
	}
	if tpl.Version == "" {
		return fmt.Errorf("missing version")
	}
	if len(tpl.Blueprints) == 0 {
		return fmt.Errorf("no blueprint items")
	}
	for i, item := range tpl.Blueprints {
		if item.Name == "" {
			return fmt.Errorf("blueprint %d: missing name", i)
		}
	}
	return nil
}
