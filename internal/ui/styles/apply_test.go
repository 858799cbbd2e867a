package styles

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestApplyTheme_Default(t *testing.T) {
	err := ApplyTheme(ThemeConfig{})
	require.NoError(t, err)
	require.Equal(t, DefaultPreset.Colors[TokenWidgetMath], WidgetMathColor.Dark)
}

func TestApplyTheme_Preset(t *testing.T) {
	err := ApplyTheme(ThemeConfig{Preset: "nord"})
	require.NoError(t, err)
	require.Equal(t, NordPreset.Colors[TokenWidgetLink], WidgetLinkColor.Dark)

	require.NoError(t, ApplyTheme(ThemeConfig{}))
}

func TestApplyTheme_ColorOverride(t *testing.T) {
	err := ApplyTheme(ThemeConfig{
		Preset: "nord",
		Colors: map[string]string{
			"widget.math": "#00FF00", // Override preset
		},
	})
	require.NoError(t, err)
	require.Equal(t, "#00FF00", WidgetMathColor.Dark)
	require.Equal(t, NordPreset.Colors[TokenWidgetBullet], WidgetBulletColor.Dark)

	require.NoError(t, ApplyTheme(ThemeConfig{}))
}

func TestApplyTheme_Errors(t *testing.T) {
	tests := []struct {
		name string
		cfg  ThemeConfig
		msg  string
	}{
		{"unknown preset", ThemeConfig{Preset: "solarized-neon"}, "unknown theme preset"},
		{"unknown token", ThemeConfig{Colors: map[string]string{"button.primary": "#FFF"}}, "unknown color token"},
		{"bad hex", ThemeConfig{Colors: map[string]string{"widget.math": "green"}}, "invalid hex color"},
		{"bad hex length", ThemeConfig{Colors: map[string]string{"widget.math": "#12345"}}, "invalid hex color"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ApplyTheme(tt.cfg)
			require.Error(t, err)
			require.Contains(t, err.Error(), tt.msg)
		})
	}
}

func TestApplyTheme_RunsRebuilders(t *testing.T) {
	calls := 0
	RegisterStyleRebuilder(func() { calls++ })
	defer func() { styleRebuilders = styleRebuilders[:len(styleRebuilders)-1] }()

	require.NoError(t, ApplyTheme(ThemeConfig{}))
	require.Equal(t, 1, calls)
}

func TestPresetsCoverAllTokens(t *testing.T) {
	for name, preset := range Presets {
		for _, token := range AllTokens() {
			_, ok := preset.Colors[token]
			require.True(t, ok, "preset %s missing %s", name, token)
		}
	}
}

func TestPresetNames(t *testing.T) {
	require.Equal(t, []string{"default", "high-contrast", "nord"}, PresetNames())
}
