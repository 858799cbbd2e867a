// Package toaster shows short-lived notices (saved, reloaded, theme changed)
// over the bottom of the editor.
package toaster

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/zjrosen/mdlive/internal/ui/overlay"
	"github.com/zjrosen/mdlive/internal/ui/styles"
)

// Style determines the border color and icon of the toast.
type Style int

const (
	StyleSuccess Style = iota
	StyleError
	StyleInfo
	StyleWarn
)

// DefaultDuration is how long a toast stays up.
const DefaultDuration = 2 * time.Second

// Model holds the toaster state.
type Model struct {
	message string
	style   Style
	seq     int
}

// New creates an empty toaster.
func New() Model {
	return Model{}
}

// DismissMsg hides the toast it was scheduled for. A newer toast is left up.
type DismissMsg struct {
	seq int
}

// Show displays message and returns the command that dismisses it after d.
func (m Model) Show(message string, style Style, d time.Duration) (Model, tea.Cmd) {
	m.message = message
	m.style = style
	m.seq++
	seq := m.seq
	return m, tea.Tick(d, func(time.Time) tea.Msg { return DismissMsg{seq: seq} })
}

// Update handles DismissMsg.
func (m Model) Update(msg tea.Msg) Model {
	if d, ok := msg.(DismissMsg); ok && d.seq == m.seq {
		m.message = ""
	}
	return m
}

// Visible reports whether a toast is showing.
func (m Model) Visible() bool {
	return m.message != ""
}

// Message returns the current toast text.
func (m Model) Message() string {
	return m.message
}

// View renders the toast box.
func (m Model) View() string {
	if m.message == "" {
		return ""
	}

	box := lipgloss.NewStyle().Padding(0, 1).Border(lipgloss.RoundedBorder())
	var icon string
	switch m.style {
	case StyleError:
		box = box.BorderForeground(styles.StatusErrorColor)
		icon = "✗ "
	case StyleInfo:
		box = box.BorderForeground(styles.WidgetLinkColor)
		icon = "i "
	case StyleWarn:
		box = box.BorderForeground(styles.StatusWarningColor)
		icon = "! "
	default:
		box = box.BorderForeground(styles.WidgetCheckboxColor)
		icon = "✓ "
	}
	return box.Render(icon + m.message)
}

// Overlay draws the toast near the bottom of bg.
func (m Model) Overlay(bg string, width, height int) string {
	if m.message == "" {
		return bg
	}
	return overlay.Place(overlay.Config{
		Width:    width,
		Height:   height,
		Position: overlay.Bottom,
		Margin:   1,
	}, m.View(), bg)
}
