package team

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"advisorhub/advisor-api/internal/utils/platformerrors"
)

func TestResolveBuiltinTemplate(t *testing.T) {
	registry := NewRegistry()

	tpl, err := registry.Resolve("startup-squad")
	require.NoError(t, err)
	assert.Equal(t, "v1", tpl.Version)
	assert.Equal(t, CategoryStartup, tpl.Category)
	require.Len(t, tpl.Blueprints, 3)
	assert.Equal(t, "CEO Coach", tpl.Blueprints[0].Name)
	assert.Equal(t, "PM Coach", tpl.Blueprints[1].Name)
	assert.Equal(t, "GTM Coach", tpl.Blueprints[2].Name)
}

func TestResolveUnknownTemplate(t *testing.T) {
	registry := NewRegistry()

	_, err := registry.Resolve("does-not-exist")
	require.Error(t, err)
	assert.True(t, platformerrors.IsErrorType(err, platformerrors.ErrorTypeTemplateNotFound))
}

func TestNewRegistryFromFile(t *testing.T) {
	content := `templates:
  - id: solo-founder
    version: v2
    category: startup
    name: Solo Founder
    blueprints:
      - name: Generalist Coach
        one_liner: One advisor to rule them all
        mission: Covers strategy, product, and go-to-market for founders who are not ready for a full squad.
        specialties: [strategy, product]
        advice_style: supportive
  - id: startup-squad
    version: v9
    category: startup
    name: Startup Squad Override
    blueprints:
      - name: Only Coach
        mission: Replaces the built-in squad for this deployment.
`
	path := filepath.Join(t.TempDir(), "templates.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	registry, err := NewRegistryFromFile(path)
	require.NoError(t, err)

	tpl, err := registry.Resolve("solo-founder")
	require.NoError(t, err)
	assert.Equal(t, "v2", tpl.Version)
	require.Len(t, tpl.Blueprints, 1)

	// file entries override built-ins with the same id
	override, err := registry.Resolve("startup-squad")
	require.NoError(t, err)
	assert.Equal(t, "v9", override.Version)
	assert.Len(t, override.Blueprints, 1)
}

func TestNewRegistryFromFileRejectsInvalid(t *testing.T) {
	content := `templates:
  - id: broken
    version: v1
    blueprints: []
`
	path := filepath.Join(t.TempDir(), "templates.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	_, err := NewRegistryFromFile(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "broken")
}

func TestNewRegistryFromFileRejectsNullEntry(t *testing.T) {
	content := "templates:\n  -\n"
	path := filepath.Join(t.TempDir(), "templates.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	_, err := NewRegistryFromFile(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "null entry")
}

func TestListPreservesOrder(t *testing.T) {
	registry := NewRegistry()
	templates := registry.List()
	require.NotEmpty(t, templates)
	assert.Equal(t, "startup-squad", templates[0].ID)
}
