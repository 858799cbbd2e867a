package styles

import "github.com/charmbracelet/lipgloss"

var (
	TextPrimaryColor   = lipgloss.AdaptiveColor{Light: "#333333", Dark: "#CCCCCC"}
	TextMutedColor     = lipgloss.AdaptiveColor{Light: "#999999", Dark: "#696969"}
	StatusWarningColor = lipgloss.AdaptiveColor{Light: "#FECA57", Dark: "#FECA57"}
	StatusErrorColor   = lipgloss.AdaptiveColor{Light: "#FF6B6B", Dark: "#FF8787"}

	WidgetBadgeColor    = lipgloss.AdaptiveColor{Light: "#8839EF", Dark: "#CBA6F7"}
	WidgetBadgeBgColor  = lipgloss.AdaptiveColor{Light: "#E6E9EF", Dark: "#313244"}
	WidgetLinkColor     = lipgloss.AdaptiveColor{Light: "#1E66F5", Dark: "#54A0FF"}
	WidgetMathColor     = lipgloss.AdaptiveColor{Light: "#179299", Dark: "#94E2D5"}
	WidgetRuleColor     = lipgloss.AdaptiveColor{Light: "#9CA0B0", Dark: "#696969"}
	WidgetCheckboxColor = lipgloss.AdaptiveColor{Light: "#43BF6D", Dark: "#73F59F"}
	WidgetBulletColor   = lipgloss.AdaptiveColor{Light: "#FE640B", Dark: "#FAB387"}
	WidgetDiagramColor  = lipgloss.AdaptiveColor{Light: "#1E66F5", Dark: "#89B4FA"}

	MarkupColor          = lipgloss.AdaptiveColor{Light: "#AAAAAA", Dark: "#777777"}
	CursorColor          = lipgloss.AdaptiveColor{Light: "#000000", Dark: "#FFFFFF"}
	StatusBarColor       = lipgloss.AdaptiveColor{Light: "#666666", Dark: "#BBBBBB"}
	OverlayBorderColor   = lipgloss.AdaptiveColor{Light: "#D9DCCF", Dark: "#8C8C8C"}
	HeadingColor         = lipgloss.AdaptiveColor{Light: "#DF8E1D", Dark: "#F9E2AF"}
	CodeBlockBorderColor = lipgloss.AdaptiveColor{Light: "#CCD0DA", Dark: "#45475A"}
)

var (
	BadgeStyle       lipgloss.Style
	LinkStyle        lipgloss.Style
	MathStyle        lipgloss.Style
	RuleStyle        lipgloss.Style
	CheckboxStyle    lipgloss.Style
	BulletStyle      lipgloss.Style
	DiagramStyle     lipgloss.Style
	WidgetErrorStyle lipgloss.Style
	PlaceholderStyle lipgloss.Style
	ImageStyle       lipgloss.Style

	MarkupStyle    lipgloss.Style
	HeadingStyle   lipgloss.Style
	CursorStyle    lipgloss.Style
	StatusBarStyle lipgloss.Style
	GutterStyle    lipgloss.Style
	ErrorStyle     lipgloss.Style
)

func init() {
	rebuildStyles()
}

func rebuildStyles() {
	BadgeStyle = lipgloss.NewStyle().
		Foreground(WidgetBadgeColor).
		Background(WidgetBadgeBgColor).
		Padding(0, 1)
	LinkStyle = lipgloss.NewStyle().Foreground(WidgetLinkColor).Underline(true)
	MathStyle = lipgloss.NewStyle().Foreground(WidgetMathColor).Italic(true)
	RuleStyle = lipgloss.NewStyle().Foreground(WidgetRuleColor)
	CheckboxStyle = lipgloss.NewStyle().Foreground(WidgetCheckboxColor).Bold(true)
	BulletStyle = lipgloss.NewStyle().Foreground(WidgetBulletColor)
	DiagramStyle = lipgloss.NewStyle().
		Foreground(WidgetDiagramColor).
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(CodeBlockBorderColor)
	WidgetErrorStyle = lipgloss.NewStyle().Foreground(StatusErrorColor)
	PlaceholderStyle = lipgloss.NewStyle().Foreground(TextMutedColor).Italic(true)
	ImageStyle = lipgloss.NewStyle().Foreground(WidgetLinkColor)

	MarkupStyle = lipgloss.NewStyle().Foreground(MarkupColor)
	HeadingStyle = lipgloss.NewStyle().Foreground(HeadingColor).Bold(true)
	CursorStyle = lipgloss.NewStyle().Reverse(true)
	StatusBarStyle = lipgloss.NewStyle().Foreground(StatusBarColor).Padding(0, 1)
	GutterStyle = lipgloss.NewStyle().Foreground(TextMutedColor)
	ErrorStyle = lipgloss.NewStyle().Foreground(StatusErrorColor).Bold(true)
}
