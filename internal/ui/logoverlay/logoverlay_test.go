package logoverlay

import (
	"fmt"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/x/ansi"
	"github.com/stretchr/testify/require"
)

func keyMsg(s string) tea.KeyMsg {
	switch s {
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "ctrl+x":
		return tea.KeyMsg{Type: tea.KeyCtrlX}
	case "ctrl+c":
		return tea.KeyMsg{Type: tea.KeyCtrlC}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func visible(t *testing.T, entries ...string) Model {
	t.Helper()
	m := New(0)
	m.SetSize(100, 40)
	for _, e := range entries {
		m.Append(e)
	}
	m.Toggle()
	require.True(t, m.Visible())
	return m
}

func TestAppend_DropsOldest(t *testing.T) {
	m := New(3)
	for i := 0; i < 5; i++ {
		m.Append(fmt.Sprintf("entry %d", i))
	}

	require.Equal(t, 3, m.Len())
	require.Equal(t, []string{"entry 2", "entry 3", "entry 4"}, m.entries)
}

func TestNew_DefaultLimit(t *testing.T) {
	require.Equal(t, DefaultLimit, New(-1).limit)
}

func TestView_HiddenIsEmpty(t *testing.T) {
	m := New(10)
	m.Append("[INFO] [ui] hello")

	require.Empty(t, m.View())
	require.Equal(t, "bg", m.Overlay("bg"))
}

func TestView_ShowsEntries(t *testing.T) {
	m := visible(t, "[INFO] [ui] hello", "[ERROR] [widget] boom")

	view := ansi.Strip(m.View())
	require.Contains(t, view, "Logs")
	require.Contains(t, view, "hello")
	require.Contains(t, view, "boom")
}

func TestView_EmptyBuffer(t *testing.T) {
	m := visible(t)

	require.Contains(t, ansi.Strip(m.View()), "No logs to display")
}

func TestUpdate_FilterLevel(t *testing.T) {
	m := visible(t, "[DEBUG] [syntax] parsed", "[WARN] [config] missing", "plain line")

	m, _ = m.Update(keyMsg("w"))
	view := ansi.Strip(m.View())
	require.NotContains(t, view, "parsed")
	require.Contains(t, view, "missing")
	require.Contains(t, view, "plain line", "entries without a level always show")

	m, _ = m.Update(keyMsg("d"))
	require.Contains(t, ansi.Strip(m.View()), "parsed")
}

func TestUpdate_Clear(t *testing.T) {
	m := visible(t, "[INFO] [ui] one")

	m, _ = m.Update(keyMsg("c"))

	require.Zero(t, m.Len())
	require.Contains(t, ansi.Strip(m.View()), "No logs to display")
}

func TestUpdate_Close(t *testing.T) {
	for _, k := range []string{"esc", "ctrl+x"} {
		t.Run(k, func(t *testing.T) {
			m := visible(t)
			m, _ = m.Update(keyMsg(k))
			require.False(t, m.Visible())
		})
	}
}

func TestUpdate_CtrlCQuits(t *testing.T) {
	m := visible(t)

	_, cmd := m.Update(keyMsg("ctrl+c"))

	require.NotNil(t, cmd)
	require.IsType(t, tea.QuitMsg{}, cmd())
}

func TestUpdate_IgnoredWhenHidden(t *testing.T) {
	m := New(10)
	m.Append("[INFO] [ui] one")

	m, cmd := m.Update(keyMsg("c"))

	require.Nil(t, cmd)
	require.Equal(t, 1, m.Len())
}

func TestLevelOf(t *testing.T) {
	_, known := levelOf("no level here")
	require.False(t, known)

	lvl, known := levelOf("12:00 [WARN] [watcher] x")
	require.True(t, known)
	require.Equal(t, "WARN", lvl.String())
}
