package keys

import (
	"testing"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/require"
)

func TestEditor_HelpTextDefined(t *testing.T) {
	for _, row := range Editor.FullHelp() {
		for _, b := range row {
			help := b.Help()
			require.NotEmpty(t, help.Key, "key help should not be empty for %v", b.Keys())
			require.NotEmpty(t, help.Desc, "description should not be empty for %v", b.Keys())
		}
	}
}

func TestEditor_NoPrintableKeys(t *testing.T) {
	// printable keys are typed into the buffer
	for _, row := range Editor.FullHelp() {
		for _, b := range row {
			for _, k := range b.Keys() {
				require.Greater(t, len([]rune(k)), 1, "binding %q would swallow typed text", k)
			}
		}
	}
}

func TestEditor_NoDuplicateKeys(t *testing.T) {
	seen := map[string]string{}
	for _, row := range Editor.FullHelp() {
		for _, b := range row {
			for _, k := range b.Keys() {
				prev, dup := seen[k]
				require.False(t, dup, "key %q bound to both %q and %q", k, prev, b.Help().Desc)
				seen[k] = b.Help().Desc
			}
		}
	}
}

func TestEditor_Matches(t *testing.T) {
	tests := []struct {
		name    string
		msg     tea.KeyMsg
		binding key.Binding
	}{
		{"ctrl+s saves", tea.KeyMsg{Type: tea.KeyCtrlS}, Editor.Save},
		{"tab toggles reading", tea.KeyMsg{Type: tea.KeyTab}, Editor.ToggleReading},
		{"enter inserts newline", tea.KeyMsg{Type: tea.KeyEnter}, Editor.Newline},
		{"ctrl+c quits", tea.KeyMsg{Type: tea.KeyCtrlC}, Editor.Quit},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.True(t, key.Matches(tt.msg, tt.binding))
		})
	}
}

func TestShortHelp(t *testing.T) {
	require.Equal(t, []key.Binding{Editor.Save, Editor.ToggleReading, Editor.Help, Editor.Quit}, Editor.ShortHelp())
	require.Len(t, Reading.ShortHelp(), 4)
	require.Len(t, Reading.FullHelp(), 2)
}

func TestReading_BackLeavesOnTab(t *testing.T) {
	require.Equal(t, []string{"tab", "esc"}, Reading.Back.Keys())
}
