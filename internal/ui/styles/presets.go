package styles

import "sort"

// Preset represents a complete color theme.
type Preset struct {
	Name        string
	Description string
	Colors      map[ColorToken]string
}

// Presets contains all built-in theme presets.
var Presets = map[string]Preset{
	"default":       DefaultPreset,
	"nord":          NordPreset,
	"high-contrast": HighContrastPreset,
}

// PresetNames returns the preset names in sorted order.
func PresetNames() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// DefaultPreset is the stock mdlive color scheme.
var DefaultPreset = Preset{
	Name:        "default",
	Description: "Default mdlive theme",
	Colors: map[ColorToken]string{
		TokenTextPrimary:     "#CCCCCC",
		TokenTextMuted:       "#696969",
		TokenStatusWarning:   "#FECA57",
		TokenStatusError:     "#FF8787",
		TokenWidgetBadge:     "#CBA6F7",
		TokenWidgetBadgeBg:   "#313244",
		TokenWidgetLink:      "#54A0FF",
		TokenWidgetMath:      "#94E2D5",
		TokenWidgetRule:      "#696969",
		TokenWidgetCheckbox:  "#73F59F",
		TokenWidgetBullet:    "#FAB387",
		TokenWidgetDiagram:   "#89B4FA",
		TokenMarkup:          "#777777",
		TokenCursor:          "#FFFFFF",
		TokenStatusBar:       "#BBBBBB",
		TokenOverlayBorder:   "#8C8C8C",
		TokenHeading:         "#F9E2AF",
		TokenCodeBlockBorder: "#45475A",
	},
}

// NordPreset uses the Nord palette.
var NordPreset = Preset{
	Name:        "nord",
	Description: "Arctic, north-bluish palette",
	Colors: map[ColorToken]string{
		TokenTextPrimary:     "#D8DEE9",
		TokenTextMuted:       "#4C566A",
		TokenStatusWarning:   "#EBCB8B",
		TokenStatusError:     "#BF616A",
		TokenWidgetBadge:     "#B48EAD",
		TokenWidgetBadgeBg:   "#3B4252",
		TokenWidgetLink:      "#88C0D0",
		TokenWidgetMath:      "#8FBCBB",
		TokenWidgetRule:      "#4C566A",
		TokenWidgetCheckbox:  "#A3BE8C",
		TokenWidgetBullet:    "#D08770",
		TokenWidgetDiagram:   "#81A1C1",
		TokenMarkup:          "#616E88",
		TokenCursor:          "#ECEFF4",
		TokenStatusBar:       "#E5E9F0",
		TokenOverlayBorder:   "#4C566A",
		TokenHeading:         "#EBCB8B",
		TokenCodeBlockBorder: "#434C5E",
	},
}

// HighContrastPreset maximizes legibility.
var HighContrastPreset = Preset{
	Name:        "high-contrast",
	Description: "Maximum contrast for accessibility",
	Colors: map[ColorToken]string{
		TokenTextPrimary:     "#FFFFFF",
		TokenTextMuted:       "#AAAAAA",
		TokenStatusWarning:   "#FFFF00",
		TokenStatusError:     "#FF0000",
		TokenWidgetBadge:     "#FFFFFF",
		TokenWidgetBadgeBg:   "#000080",
		TokenWidgetLink:      "#00FFFF",
		TokenWidgetMath:      "#00FF00",
		TokenWidgetRule:      "#FFFFFF",
		TokenWidgetCheckbox:  "#00FF00",
		TokenWidgetBullet:    "#FFFF00",
		TokenWidgetDiagram:   "#00FFFF",
		TokenMarkup:          "#AAAAAA",
		TokenCursor:          "#FFFF00",
		TokenStatusBar:       "#FFFFFF",
		TokenOverlayBorder:   "#FFFFFF",
		TokenHeading:         "#FFFF00",
		TokenCodeBlockBorder: "#FFFFFF",
	},
}
