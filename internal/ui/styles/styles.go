// Package styles contains Lip Gloss style definitions.
package styles

import "github.com/charmbracelet/lipgloss"

var (
	// Text hierarchy
	TextPrimaryColor     = lipgloss.AdaptiveColor{Light: "#333333", Dark: "#CCCCCC"}
	TextSecondaryColor   = lipgloss.AdaptiveColor{Light: "#AAAAAA", Dark: "#BBBBBB"} // scrollbar thumb, status
	TextMutedColor       = lipgloss.AdaptiveColor{Light: "#D9DCCF", Dark: "#696969"} // hints, track, placeholders
	TextDescriptionColor = lipgloss.AdaptiveColor{Light: "#666666", Dark: "#999999"}

	StatusWarningColor = lipgloss.AdaptiveColor{Light: "#FECA57", Dark: "#FECA57"}

	// Selection indicator color (used for ">" prefix in lists)
	SelectionIndicatorColor = lipgloss.AdaptiveColor{Light: "#000000", Dark: "#FFFFFF"}

	SelectionIndicatorStyle = lipgloss.NewStyle().Bold(true).Foreground(SelectionIndicatorColor)

	TitleStyle         = lipgloss.NewStyle().Foreground(TextPrimaryColor)
	SelectedTitleStyle = lipgloss.NewStyle().Bold(true).Foreground(SelectionIndicatorColor)
	BodyStyle          = lipgloss.NewStyle().Foreground(TextDescriptionColor)
	PlaceholderStyle   = lipgloss.NewStyle().Foreground(TextMutedColor)
	StatusBarStyle     = lipgloss.NewStyle().Foreground(TextSecondaryColor)
	ScrollingStyle     = lipgloss.NewStyle().Foreground(StatusWarningColor)
	EmptyStyle         = lipgloss.NewStyle().Foreground(TextMutedColor).Italic(true)
)
