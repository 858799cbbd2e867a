package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSaveValue_PreservesComments(t *testing.T) {
	path := writeConfig(t, `# my settings
render:
  style: dark # reading mode
  width: 0
theme:
  preset: default
`)

	require.NoError(t, SaveValue(path, "theme.preset", "nord"))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Contains(t, string(data), "# my settings")
	require.Contains(t, string(data), "# reading mode")
	require.Contains(t, string(data), "preset: nord")

	cfg, err := Load(NewViper(path))
	require.NoError(t, err)
	require.Equal(t, "nord", cfg.Theme.Preset)
	require.Equal(t, "dark", cfg.Render.Style)
}

func TestSaveValue_CreatesNestedKeys(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sub", "config.yaml")

	require.NoError(t, SaveValue(path, "render.width", 72))
	require.NoError(t, SaveValue(path, "decorate.diagram_languages", []string{"mermaid", "dot"}))

	cfg, err := Load(NewViper(path))
	require.NoError(t, err)
	require.Equal(t, 72, cfg.Render.Width)
	require.Equal(t, []string{"mermaid", "dot"}, cfg.Decorate.DiagramLanguages)
}

func TestSaveValue_ReplacesExistingValue(t *testing.T) {
	path := writeConfig(t, "render:\n  width: 40\n")

	require.NoError(t, SaveValue(path, "render.width", 100))

	cfg, err := Load(NewViper(path))
	require.NoError(t, err)
	require.Equal(t, 100, cfg.Render.Width)
}

func TestSaveValue_Errors(t *testing.T) {
	path := writeConfig(t, "render: dark\n")

	require.ErrorContains(t, SaveValue(path, "render.style", "light"), "not a mapping")
	require.ErrorContains(t, SaveValue(path, "render..style", "light"), "invalid config key")

	list := writeConfig(t, "- a\n- b\n")
	require.ErrorContains(t, SaveValue(list, "render.style", "light"), "not a mapping")

	bad := writeConfig(t, "render: [\n")
	require.ErrorContains(t, SaveValue(bad, "render.style", "light"), "parsing config")
}

func TestSaveValue_NoTempFilesLeft(t *testing.T) {
	path := writeConfig(t, "render:\n  width: 1\n")
	require.NoError(t, SaveValue(path, "render.width", 2))

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	require.Len(t, entries, 1)
}
