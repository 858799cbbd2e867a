package styles

import (
	"fmt"
	"maps"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// styleRebuilders holds callbacks to rebuild styles in other packages.
// This avoids import cycles (styles can't import the editor, but the editor can register).
var styleRebuilders []func()

// RegisterStyleRebuilder adds a callback that will be called after ApplyTheme
// updates colors. Use this to rebuild styles in packages that depend on styles.
func RegisterStyleRebuilder(fn func()) {
	styleRebuilders = append(styleRebuilders, fn)
}

// ThemeConfig mirrors config.ThemeConfig to avoid circular imports.
type ThemeConfig struct {
	Preset string
	Colors map[string]string
}

// ApplyTheme applies a complete theme configuration.
// Order of application:
// 1. Start with default colors
// 2. Apply preset (if specified)
// 3. Apply individual color overrides
// 4. Rebuild all Style objects
func ApplyTheme(cfg ThemeConfig) error {
	colors := maps.Clone(DefaultPreset.Colors)

	if cfg.Preset != "" && cfg.Preset != "default" {
		preset, ok := Presets[cfg.Preset]
		if !ok {
			return fmt.Errorf("unknown theme preset: %s", cfg.Preset)
		}
		maps.Copy(colors, preset.Colors)
	}

	for key, value := range cfg.Colors {
		token := ColorToken(key)
		if !isValidToken(token) {
			return fmt.Errorf("unknown color token: %s", key)
		}
		if !isValidHexColor(value) {
			return fmt.Errorf("invalid hex color for %s: %s", key, value)
		}
		colors[token] = value
	}

	applyColors(colors)
	rebuildStyles()
	for _, fn := range styleRebuilders {
		fn()
	}

	return nil
}

// colorTargets maps each token to the package variable it drives.
func colorTargets() map[ColorToken]*lipgloss.AdaptiveColor {
	return map[ColorToken]*lipgloss.AdaptiveColor{
		TokenTextPrimary:     &TextPrimaryColor,
		TokenTextMuted:       &TextMutedColor,
		TokenStatusWarning:   &StatusWarningColor,
		TokenStatusError:     &StatusErrorColor,
		TokenWidgetBadge:     &WidgetBadgeColor,
		TokenWidgetBadgeBg:   &WidgetBadgeBgColor,
		TokenWidgetLink:      &WidgetLinkColor,
		TokenWidgetMath:      &WidgetMathColor,
		TokenWidgetRule:      &WidgetRuleColor,
		TokenWidgetCheckbox:  &WidgetCheckboxColor,
		TokenWidgetBullet:    &WidgetBulletColor,
		TokenWidgetDiagram:   &WidgetDiagramColor,
		TokenMarkup:          &MarkupColor,
		TokenCursor:          &CursorColor,
		TokenStatusBar:       &StatusBarColor,
		TokenOverlayBorder:   &OverlayBorderColor,
		TokenHeading:         &HeadingColor,
		TokenCodeBlockBorder: &CodeBlockBorderColor,
	}
}

func applyColors(colors map[ColorToken]string) {
	// Same color for both modes once a theme is chosen explicitly
	targets := colorTargets()
	for token, hex := range colors {
		if target, ok := targets[token]; ok {
			*target = lipgloss.AdaptiveColor{Light: hex, Dark: hex}
		}
	}
}

func isValidHexColor(s string) bool {
	if !strings.HasPrefix(s, "#") {
		return false
	}
	hex := s[1:]
	if len(hex) != 3 && len(hex) != 6 {
		return false
	}
	_, err := strconv.ParseUint(hex, 16, 64)
	return err == nil
}
