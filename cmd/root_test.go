package cmd

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/require"

	"github.com/zjrosen/mdlive/internal/config"
)

// resetFlags puts every flag back to its default so one test's flags do not
// leak into the next Execute on the shared command tree.
func resetFlags(c *cobra.Command) {
	reset := func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	}
	c.Flags().VisitAll(reset)
	c.PersistentFlags().VisitAll(reset)
	for _, sub := range c.Commands() {
		resetFlags(sub)
	}
}

// execute runs the CLI with a throwaway config file and returns stdout.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Setenv("MDLIVE_DEBUG", "")
	resetFlags(rootCmd)

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetIn(strings.NewReader(""))
	cfgPath := filepath.Join(t.TempDir(), "config.yaml")
	rootCmd.SetArgs(append([]string{"--config", cfgPath}, args...))
	t.Cleanup(func() { rootCmd.SetArgs(nil) })

	err := Execute()
	return out.String(), err
}

func writeDoc(t *testing.T, text string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "doc.md")
	require.NoError(t, os.WriteFile(path, []byte(text), 0o644))
	return path
}

func TestDecorate_Unfocused(t *testing.T) {
	path := writeDoc(t, "# Title\n\n- [ ] task\n")

	out, err := execute(t, "decorate", path)
	require.NoError(t, err)
	require.Contains(t, out, "conceal [0, 2)")
	require.Contains(t, out, "checkbox(")
}

func TestDecorate_CursorRevealsHeading(t *testing.T) {
	path := writeDoc(t, "# Title\n\nbody\n")

	out, err := execute(t, "decorate", path, "--line", "1", "--col", "3")
	require.NoError(t, err)
	require.NotContains(t, out, "conceal [0, 2)")
}

func TestDecorate_JSON(t *testing.T) {
	path := writeDoc(t, "- [x] done\n")

	out, err := execute(t, "decorate", path, "--json")
	require.NoError(t, err)

	var rows []instructionJSON
	require.NoError(t, json.Unmarshal([]byte(out), &rows))
	var kinds []string
	for _, r := range rows {
		kinds = append(kinds, r.Widget)
	}
	require.Contains(t, kinds, "checkbox")
}

func TestDecorate_MissingFile(t *testing.T) {
	_, err := execute(t, "decorate", filepath.Join(t.TempDir(), "nope.md"))
	require.Error(t, err)
}

func TestOutline(t *testing.T) {
	path := writeDoc(t, "# A\n\ntext\n\n## B\n")

	out, err := execute(t, "outline", path)
	require.NoError(t, err)
	require.Equal(t, "A  (line 1)\n  B  (line 5)\n", out)
}

func TestRender(t *testing.T) {
	path := writeDoc(t, "# Title\n\nSome *text*.\n")

	out, err := execute(t, "render", path, "--width", "40", "--style", "notty")
	require.NoError(t, err)
	require.Contains(t, out, "Title")
	require.Contains(t, out, "text")
}

func TestRenderWidth(t *testing.T) {
	require.Equal(t, 72, renderWidth(72))
	require.Positive(t, renderWidth(0))
}

func TestConfigInit(t *testing.T) {
	cfgPath := filepath.Join(t.TempDir(), "config.yaml")

	out, err := execute(t, "--config", cfgPath, "config", "init")
	require.NoError(t, err)
	require.Contains(t, out, cfgPath)
	require.FileExists(t, cfgPath)

	_, err = execute(t, "--config", cfgPath, "config", "init")
	require.ErrorContains(t, err, "already exists")

	_, err = execute(t, "--config", cfgPath, "config", "init", "--force")
	require.NoError(t, err)
}

func TestConfigSet(t *testing.T) {
	cfgPath := filepath.Join(t.TempDir(), "config.yaml")

	_, err := execute(t, "--config", cfgPath, "config", "set", "render.width", "100")
	require.NoError(t, err)
	_, err = execute(t, "--config", cfgPath, "config", "set", "theme.preset", "nord")
	require.NoError(t, err)

	loaded, err := config.Load(config.NewViper(cfgPath))
	require.NoError(t, err)
	require.Equal(t, 100, loaded.Render.Width)
	require.Equal(t, "nord", loaded.Theme.Preset)
}

func TestConfigPath(t *testing.T) {
	cfgPath := filepath.Join(t.TempDir(), "config.yaml")

	out, err := execute(t, "--config", cfgPath, "config", "path")
	require.NoError(t, err)
	require.Equal(t, cfgPath+"\n", out)
}

func TestBadConfigFails(t *testing.T) {
	cfgPath := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("render: [unclosed"), 0o600))

	_, err := execute(t, "--config", cfgPath, "config", "path")
	require.Error(t, err)
}

func TestImageRoot(t *testing.T) {
	require.Equal(t, "", imageRoot(""))
	require.Equal(t, "", imageRoot("-"))
	require.Equal(t, filepath.Join("notes", "daily"), imageRoot(filepath.Join("notes", "daily", "today.md")))
}

func TestNewRenderers_ImagesResolveAgainstDocument(t *testing.T) {
	path := writeDoc(t, "![alt](pic.png)\n")
	require.NoError(t, os.WriteFile(filepath.Join(filepath.Dir(path), "pic.png"), []byte("png"), 0o644))
	t.Chdir(t.TempDir())

	r := newRenderers(config.Defaults(), path)
	defer r.Close()
	require.False(t, r.NewImage("pic.png", "alt").Hidden())
}
