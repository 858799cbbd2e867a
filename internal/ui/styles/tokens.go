// Package styles contains Lip Gloss style definitions.
package styles

// ColorToken represents a named, themeable color.
type ColorToken string

// Color tokens organized by category.
// These are the keys users can override in their config.
const (
	// Text hierarchy
	TokenTextPrimary ColorToken = "text.primary"
	TokenTextMuted   ColorToken = "text.muted"

	// Status indicators
	TokenStatusWarning ColorToken = "status.warning"
	TokenStatusError   ColorToken = "status.error"

	// Widgets
	TokenWidgetBadge    ColorToken = "widget.badge"
	TokenWidgetBadgeBg  ColorToken = "widget.badge.bg"
	TokenWidgetLink     ColorToken = "widget.link"
	TokenWidgetMath     ColorToken = "widget.math"
	TokenWidgetRule     ColorToken = "widget.rule"
	TokenWidgetCheckbox ColorToken = "widget.checkbox"
	TokenWidgetBullet   ColorToken = "widget.bullet"
	TokenWidgetDiagram  ColorToken = "widget.diagram"

	// Markup revealed under the cursor
	TokenMarkup ColorToken = "markup"

	// Editor chrome
	TokenCursor          ColorToken = "editor.cursor"
	TokenStatusBar       ColorToken = "editor.statusbar"
	TokenOverlayBorder   ColorToken = "overlay.border"
	TokenHeading         ColorToken = "markdown.heading"
	TokenCodeBlockBorder ColorToken = "markdown.code.border"
)

// AllTokens returns every token in a stable order, used by config docs and
// validation.
func AllTokens() []ColorToken {
	return []ColorToken{
		TokenTextPrimary,
		TokenTextMuted,
		TokenStatusWarning,
		TokenStatusError,
		TokenWidgetBadge,
		TokenWidgetBadgeBg,
		TokenWidgetLink,
		TokenWidgetMath,
		TokenWidgetRule,
		TokenWidgetCheckbox,
		TokenWidgetBullet,
		TokenWidgetDiagram,
		TokenMarkup,
		TokenCursor,
		TokenStatusBar,
		TokenOverlayBorder,
		TokenHeading,
		TokenCodeBlockBorder,
	}
}

func isValidToken(token ColorToken) bool {
	for _, t := range AllTokens() {
		if t == token {
			return true
		}
	}
	return false
}
