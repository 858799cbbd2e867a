package livepreview

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/x/ansi"
	"github.com/charmbracelet/x/exp/teatest"
	zone "github.com/lrstanley/bubblezone"
	"github.com/stretchr/testify/require"

	"github.com/zjrosen/mdlive/internal/decorate"
	"github.com/zjrosen/mdlive/internal/log"
	"github.com/zjrosen/mdlive/internal/pubsub"
	"github.com/zjrosen/mdlive/internal/widget"
)

func writeFile(t *testing.T, dir, name, text string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(text), 0o600))
	return path
}

func newModel(t *testing.T, text string) Model {
	t.Helper()
	path := writeFile(t, t.TempDir(), "doc.md", text)
	return open(t, Config{Path: path})
}

func open(t *testing.T, cfg Config) Model {
	t.Helper()
	m, err := New(cfg)
	require.NoError(t, err)
	t.Cleanup(m.Close)
	return update(t, m, tea.WindowSizeMsg{Width: 80, Height: 24})
}

func update(t *testing.T, m Model, msg tea.Msg) Model {
	t.Helper()
	next, _ := m.Update(msg)
	return next.(Model)
}

func updateCmd(t *testing.T, m Model, msg tea.Msg) (Model, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	return next.(Model), cmd
}

func press(t *testing.T, m Model, keys ...tea.KeyType) Model {
	t.Helper()
	for _, k := range keys {
		m = update(t, m, tea.KeyMsg{Type: k})
	}
	return m
}

func typeText(t *testing.T, m Model, s string) Model {
	t.Helper()
	return update(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)})
}

func TestNew_MissingFileOpensEmptyBuffer(t *testing.T) {
	path := filepath.Join(t.TempDir(), "new.md")
	m := open(t, Config{Path: path})

	require.Empty(t, m.Text())
	require.False(t, m.Dirty())
	require.Equal(t, path, m.Path())
}

func TestNew_UnreadablePath(t *testing.T) {
	_, err := New(Config{Path: t.TempDir()})
	require.Error(t, err)
}

func TestTyping(t *testing.T) {
	m := newModel(t, "")

	m = typeText(t, m, "hi")
	m = update(t, m, tea.KeyMsg{Type: tea.KeySpace})
	m = typeText(t, m, "you")
	m = press(t, m, tea.KeyEnter)

	require.Equal(t, "hi you\n", m.Text())
	require.Equal(t, 7, m.Cursor())
	require.True(t, m.Dirty())
}

func TestBackspaceAndDelete_Graphemes(t *testing.T) {
	m := newModel(t, "héllo")

	m = press(t, m, tea.KeyRight, tea.KeyRight, tea.KeyBackspace)
	require.Equal(t, "hllo", m.Text())
	require.Equal(t, 1, m.Cursor())

	m = press(t, m, tea.KeyDelete)
	require.Equal(t, "hlo", m.Text())
}

func TestBackspaceAtStartIsNoop(t *testing.T) {
	m := newModel(t, "abc")

	m = press(t, m, tea.KeyBackspace)

	require.Equal(t, "abc", m.Text())
	require.False(t, m.Dirty())
}

func TestVerticalMovementKeepsColumn(t *testing.T) {
	m := newModel(t, "abcd\nx\nabcd")

	m = press(t, m, tea.KeyRight, tea.KeyRight, tea.KeyRight, tea.KeyDown)
	require.Equal(t, 6, m.Cursor(), "clamped to the end of the short line")

	m = press(t, m, tea.KeyDown)
	require.Equal(t, 10, m.Cursor())

	m = press(t, m, tea.KeyHome)
	require.Equal(t, 7, m.Cursor())
	m = press(t, m, tea.KeyEnd)
	require.Equal(t, 11, m.Cursor())
}

func TestFocusControlsReveal(t *testing.T) {
	m := newModel(t, "# Title\n\nbody")
	require.Empty(t, m.Decorations(), "cursor on the heading reveals it")

	m = update(t, m, tea.BlurMsg{})
	require.Len(t, m.Decorations(), 1)
	require.Equal(t, decorate.OpConceal, m.Decorations()[0].Op)
	require.NotContains(t, ansi.Strip(m.View()), "# Title")

	m = update(t, m, tea.FocusMsg{})
	require.Empty(t, m.Decorations())
}

func TestTogglePreview(t *testing.T) {
	m := newModel(t, "text\n\n# Title")
	require.NotEmpty(t, m.Decorations())

	m = press(t, m, tea.KeyCtrlP)
	require.Empty(t, m.Decorations())
	require.Contains(t, ansi.Strip(m.View()), "# Title")

	m = press(t, m, tea.KeyCtrlP)
	require.NotEmpty(t, m.Decorations())
}

func TestActivate_TogglesCheckbox(t *testing.T) {
	m := newModel(t, "- [ ] task\n")

	m = press(t, m, tea.KeyCtrlO)
	require.Equal(t, "- [x] task\n", m.Text())

	m = press(t, m, tea.KeyCtrlO)
	require.Equal(t, "- [ ] task\n", m.Text())
}

func TestImagesResolveAgainstOpenDocument(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "pic.png", "png")
	path := writeFile(t, dir, "a.md", "![alt](pic.png)\n")
	sub := filepath.Join(dir, "sub")
	require.NoError(t, os.Mkdir(sub, 0o755))
	writeFile(t, sub, "b.md", "# B\n")
	t.Chdir(t.TempDir())

	m := open(t, Config{Path: path})
	require.False(t, m.renderers.NewImage("pic.png", "alt").Hidden())

	m.renderers.SetImageRoot(documentDir(filepath.Join(sub, "b.md")))
	require.True(t, m.renderers.NewImage("pic.png", "alt").Hidden())
	require.Equal(t, "", documentDir(""))
}

func TestMouse_ClickTogglesCheckbox(t *testing.T) {
	m := newModel(t, "- [ ] task\n")

	from := -1
	for _, ins := range m.Decorations() {
		if ins.Op == decorate.OpSubstitute && ins.Widget.Kind() == widget.KindCheckbox {
			from = ins.From
		}
	}
	require.GreaterOrEqual(t, from, 0, "checkbox is decorated")

	m.View()
	var z *zone.ZoneInfo
	require.Eventually(t, func() bool {
		z = zone.Get(zoneID(from))
		return z != nil && !z.IsZero()
	}, time.Second, 10*time.Millisecond)

	m = update(t, m, tea.MouseMsg{
		X:      z.StartX,
		Y:      z.StartY,
		Action: tea.MouseActionPress,
		Button: tea.MouseButtonLeft,
	})
	require.Equal(t, "- [x] task\n", m.Text())

	outside := tea.MouseMsg{X: z.EndX + 5, Y: z.StartY, Action: tea.MouseActionPress, Button: tea.MouseButtonLeft}
	m = update(t, m, outside)
	require.Equal(t, "- [x] task\n", m.Text())
}

func TestActivate_FollowsWikiLink(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "a.md", "see [[b]]\n")
	target := writeFile(t, dir, "b.md", "# B\n")
	m := open(t, Config{Path: path})

	m, cmd := updateCmd(t, m, tea.KeyMsg{Type: tea.KeyCtrlO})
	require.NotNil(t, cmd)
	m = update(t, m, cmd())

	require.Equal(t, target, m.Path())
	require.Equal(t, "# B\n", m.Text())
	require.Zero(t, m.Cursor())
}

func TestFollowLink_MissingPage(t *testing.T) {
	m := newModel(t, "x")

	m = update(t, m, m.openLink("nowhere")())

	require.Equal(t, "x", m.Text())
	require.Contains(t, m.toast.Message(), "no page nowhere")
}

func TestFollowLink_RefusedWhenDirty(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "a.md", "a")
	writeFile(t, dir, "b.md", "b")
	m := open(t, Config{Path: path})
	m = typeText(t, m, "!")

	m = update(t, m, m.openLink("b")())

	require.Equal(t, path, m.Path())
	require.Equal(t, "!a", m.Text())
}

func TestResolveLink(t *testing.T) {
	tests := []struct {
		from, target, want string
	}{
		{"/notes/a.md", "b", "/notes/b.md"},
		{"/notes/a.md", "sub/c.txt", "/notes/sub/c.txt"},
		{"/notes/a.md", "b#Heading", "/notes/b.md"},
		{"", "b", "b.md"},
	}
	for _, tt := range tests {
		t.Run(tt.target, func(t *testing.T) {
			require.Equal(t, filepath.FromSlash(tt.want), resolveLink(filepath.FromSlash(tt.from), tt.target))
		})
	}
}

func TestSave(t *testing.T) {
	m := newModel(t, "a")
	m = typeText(t, m, "b")

	m, cmd := updateCmd(t, m, tea.KeyMsg{Type: tea.KeyCtrlS})
	require.NotNil(t, cmd)
	m = update(t, m, cmd())

	require.False(t, m.Dirty())
	data, err := os.ReadFile(m.Path())
	require.NoError(t, err)
	require.Equal(t, "ba", string(data))
	require.Contains(t, m.toast.Message(), "saved doc.md")
}

func TestSave_ScratchBuffer(t *testing.T) {
	m := open(t, Config{})
	m = typeText(t, m, "x")

	m, cmd := updateCmd(t, m, tea.KeyMsg{Type: tea.KeyCtrlS})
	m = update(t, m, cmd())

	require.True(t, m.Dirty())
	require.Contains(t, m.toast.Message(), "no file name")
}

func TestReload_RemapsCursor(t *testing.T) {
	m := newModel(t, "hello world")
	m = press(t, m, tea.KeyRight, tea.KeyRight, tea.KeyRight, tea.KeyRight, tea.KeyRight, tea.KeyRight)
	require.Equal(t, 6, m.Cursor())

	require.NoError(t, os.WriteFile(m.Path(), []byte("say hello world"), 0o600))
	m = update(t, m, m.readForReload()())

	require.Equal(t, "say hello world", m.Text())
	require.Equal(t, 10, m.Cursor())
	require.False(t, m.Dirty())
}

func TestReload_KeepsUnsavedEdits(t *testing.T) {
	m := newModel(t, "a")
	m = typeText(t, m, "x")

	require.NoError(t, os.WriteFile(m.Path(), []byte("changed"), 0o600))
	m = update(t, m, m.readForReload()())

	require.Equal(t, "xa", m.Text())
	require.Contains(t, m.toast.Message(), "changed on disk")
}

func TestReload_IgnoresOtherPath(t *testing.T) {
	m := newModel(t, "a")

	m = update(t, m, reloadMsg{path: "/elsewhere.md", text: "b"})

	require.Equal(t, "a", m.Text())
}

func TestRemapCursor(t *testing.T) {
	require.Equal(t, 10, remapCursor("hello world", "say hello world", 6))
	require.Equal(t, 1, remapCursor("abc def", "def", 5))
	require.Equal(t, 3, remapCursor("abc", "abc", 3))
}

func TestQuit_ConfirmsUnsavedChanges(t *testing.T) {
	m := newModel(t, "")
	m = typeText(t, m, "x")

	m, cmd := updateCmd(t, m, tea.KeyMsg{Type: tea.KeyCtrlQ})
	require.True(t, m.quitArmed)
	require.NotNil(t, cmd)

	_, cmd = updateCmd(t, m, tea.KeyMsg{Type: tea.KeyCtrlQ})
	require.IsType(t, tea.QuitMsg{}, cmd())
}

func TestQuit_ArmResetByOtherKeys(t *testing.T) {
	m := newModel(t, "")
	m = typeText(t, m, "x")

	m = press(t, m, tea.KeyCtrlQ, tea.KeyLeft)

	require.False(t, m.quitArmed)
}

func TestQuit_Clean(t *testing.T) {
	m := newModel(t, "x")

	_, cmd := updateCmd(t, m, tea.KeyMsg{Type: tea.KeyCtrlC})

	require.IsType(t, tea.QuitMsg{}, cmd())
}

func TestReadingMode(t *testing.T) {
	m := newModel(t, "# Title\n\nSome **bold** text\n")

	m = press(t, m, tea.KeyTab)
	require.True(t, m.reading)
	view := ansi.Strip(m.View())
	require.Contains(t, view, "Title")
	require.NotContains(t, view, "**bold**")
	require.Contains(t, view, "reading")

	m = press(t, m, tea.KeyEsc)
	require.False(t, m.reading)
}

func TestHelpOverlay(t *testing.T) {
	m := newModel(t, "")

	m = press(t, m, tea.KeyF1)
	require.Contains(t, ansi.Strip(m.View()), "Press any key to close")

	m = typeText(t, m, "x")
	require.False(t, m.showHelp)
	require.Empty(t, m.Text(), "closing key is not typed")
}

func TestLogOverlay(t *testing.T) {
	m := newModel(t, "")

	m = update(t, m, log.Batch{{Type: pubsub.LoggedEvent, Payload: "[INFO] [ui] hello log"}})
	m = press(t, m, tea.KeyCtrlX)
	require.Contains(t, ansi.Strip(m.View()), "hello log")

	m = press(t, m, tea.KeyEsc)
	require.False(t, m.logs.Visible())
}

func TestView_StatusBar(t *testing.T) {
	m := newModel(t, "ab\ncd")
	m = press(t, m, tea.KeyDown, tea.KeyRight)

	view := ansi.Strip(m.View())
	lines := strings.Split(view, "\n")
	require.Len(t, lines, 24)
	status := lines[len(lines)-1]
	require.Contains(t, status, "doc.md")
	require.Contains(t, status, "2:2")
	require.Contains(t, status, "live")

	m = typeText(t, m, "!")
	require.Contains(t, ansi.Strip(m.View()), "doc.md [+]")
}

func TestView_EmptyBeforeSize(t *testing.T) {
	m, err := New(Config{})
	require.NoError(t, err)
	t.Cleanup(m.Close)

	require.Empty(t, m.View())
}

func TestScrollFollowsCursor(t *testing.T) {
	var b strings.Builder
	for i := 0; i < 100; i++ {
		b.WriteString("line\n")
	}
	m := newModel(t, b.String())
	m = update(t, m, tea.WindowSizeMsg{Width: 40, Height: 10})

	for i := 0; i < 30; i++ {
		m = press(t, m, tea.KeyDown)
	}
	require.Equal(t, 31, m.doc.LineAt(m.Cursor()).Number)
	require.Equal(t, 23, m.top)

	m = press(t, m, tea.KeyPgUp, tea.KeyPgUp, tea.KeyPgUp, tea.KeyPgUp)
	require.Equal(t, 1, m.top)
}

func TestTeatest_TypeAndQuit(t *testing.T) {
	path := filepath.Join(t.TempDir(), "doc.md")
	m, err := New(Config{Path: path})
	require.NoError(t, err)
	t.Cleanup(m.Close)

	tm := teatest.NewTestModel(t, m, teatest.WithInitialTermSize(60, 12))
	tm.Type("hello")
	teatest.WaitFor(t, tm.Output(), func(b []byte) bool {
		return bytes.Contains(b, []byte("hello"))
	}, teatest.WithDuration(3*time.Second))

	tm.Send(tea.KeyMsg{Type: tea.KeyCtrlQ})
	tm.Send(tea.KeyMsg{Type: tea.KeyCtrlQ})

	final := tm.FinalModel(t, teatest.WithFinalTimeout(3*time.Second)).(Model)
	require.Equal(t, "hello", final.Text())
	require.True(t, final.Dirty())
}
