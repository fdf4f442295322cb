package ui

import "github.com/charmbracelet/lipgloss"

// Colors and styles are rebuilt by updateStyles whenever the theme changes.
var (
	Subtle    lipgloss.Color
	Highlight lipgloss.Color
	Special   lipgloss.Color
	Error     lipgloss.Color
	StatusBar lipgloss.Color
	Border    lipgloss.Color

	TitleStyle        lipgloss.Style
	SelectedItemStyle lipgloss.Style
	DescriptionStyle  lipgloss.Style
	LabelStyle        lipgloss.Style
	InputStyle        lipgloss.Style
	OutputStyle       lipgloss.Style

	StatusConnectingStyle lipgloss.Style
	StatusConnectedStyle  lipgloss.Style
	StatusDefaultStyle    lipgloss.Style
	StatusBarStyle        lipgloss.Style

	ButtonStyle  lipgloss.Style
	SuccessStyle lipgloss.Style
	ErrorStyle   lipgloss.Style

	WindowStyle lipgloss.Style
	DialogStyle lipgloss.Style
)

// CenterText centers text within width.
func CenterText(text string, width int) string {
	return lipgloss.PlaceHorizontal(width, lipgloss.Center, text)
}
