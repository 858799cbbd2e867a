package toaster

import (
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/x/ansi"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	m := New()

	require.False(t, m.Visible())
	require.Empty(t, m.View())
}

func TestShow(t *testing.T) {
	m, cmd := New().Show("saved notes.md", StyleSuccess, time.Millisecond)

	require.NotNil(t, cmd)
	require.True(t, m.Visible())
	require.Contains(t, ansi.Strip(m.View()), "✓ saved notes.md")
}

func TestDismiss(t *testing.T) {
	m, cmd := New().Show("saved", StyleSuccess, time.Millisecond)

	m = m.Update(cmd())
	require.False(t, m.Visible())
}

func TestDismiss_StaleTimerKeepsNewerToast(t *testing.T) {
	m, first := New().Show("first", StyleInfo, time.Millisecond)
	m, _ = m.Show("second", StyleError, time.Hour)

	m = m.Update(first())
	require.True(t, m.Visible())
	require.Equal(t, "second", m.Message())
}

func TestView_Icons(t *testing.T) {
	tests := []struct {
		style Style
		icon  string
	}{
		{StyleSuccess, "✓"},
		{StyleError, "✗"},
		{StyleInfo, "i"},
		{StyleWarn, "!"},
	}
	for _, tt := range tests {
		m, _ := New().Show("msg", tt.style, time.Second)
		require.Contains(t, ansi.Strip(m.View()), tt.icon+" msg")
	}
}

func TestOverlay(t *testing.T) {
	bg := strings.Repeat(strings.Repeat(".", 30)+"\n", 9) + strings.Repeat(".", 30)

	m := New()
	require.Equal(t, bg, m.Overlay(bg, 30, 10))

	m, _ = m.Show("hi", StyleSuccess, time.Second)
	lines := strings.Split(ansi.Strip(m.Overlay(bg, 30, 10)), "\n")
	require.Len(t, lines, 10)
	require.Contains(t, lines[7], "✓ hi")
	require.Equal(t, strings.Repeat(".", 30), lines[0])
}
