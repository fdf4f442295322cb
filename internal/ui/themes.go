package ui

import "github.com/charmbracelet/lipgloss"

type Theme struct {
	Name string

	Subtle    lipgloss.Color
	Highlight lipgloss.Color
	Special   lipgloss.Color
	Error     lipgloss.Color
	StatusBar lipgloss.Color
	Border    lipgloss.Color

	LabelColor  lipgloss.Color
	InputColor  lipgloss.Color
	OutputColor lipgloss.Color
}

var (
	currentThemeIndex = 0

	themes = []Theme{
		{
			Name:      "default",
			Subtle:    lipgloss.Color("#6C7086"),
			Highlight: lipgloss.Color("#7DC4E4"),
			Special:   lipgloss.Color("#FF9E64"),
			Error:     lipgloss.Color("#F38BA8"),
			StatusBar: lipgloss.Color("#313244"),
			Border:    lipgloss.Color("#33B2FF"),

			LabelColor:  lipgloss.Color("#A6ADC8"),
			InputColor:  lipgloss.Color("#FFFFFF"),
			OutputColor: lipgloss.Color("#CDD6F4"),
		},
		{
			Name:      "dracula",
			Subtle:    lipgloss.Color("#6272A4"),
			Highlight: lipgloss.Color("#8BE9FD"),
			Special:   lipgloss.Color("#FF79C6"),
			Error:     lipgloss.Color("#FF5555"),
			StatusBar: lipgloss.Color("#44475A"),
			Border:    lipgloss.Color("#BD93F9"),

			LabelColor:  lipgloss.Color("#F8F8F2"),
			InputColor:  lipgloss.Color("#F8F8F2"),
			OutputColor: lipgloss.Color("#50FA7B"),
		},
		{
			// Green phosphor, for the old-school packet cluster look.
			Name:      "terminal",
			Subtle:    lipgloss.Color("#2F6F3F"),
			Highlight: lipgloss.Color("#7CFC00"),
			Special:   lipgloss.Color("#ADFF2F"),
			Error:     lipgloss.Color("#FF6347"),
			StatusBar: lipgloss.Color("#0B3D1A"),
			Border:    lipgloss.Color("#32CD32"),

			LabelColor:  lipgloss.Color("#9ACD32"),
			InputColor:  lipgloss.Color("#E0FFE0"),
			OutputColor: lipgloss.Color("#33FF33"),
		},
	}
)

func init() {
	updateStyles(themes[currentThemeIndex])
}

// CurrentTheme returns the theme in use.
func CurrentTheme() Theme {
	return themes[currentThemeIndex]
}

// SwitchTheme moves to the next theme and rebuilds every style.
func SwitchTheme() Theme {
	currentThemeIndex = (currentThemeIndex + 1) % len(themes)
	theme := themes[currentThemeIndex]
	updateStyles(theme)
	return theme
}

func updateStyles(theme Theme) {
	Subtle = theme.Subtle
	Highlight = theme.Highlight
	Special = theme.Special
	Error = theme.Error
	StatusBar = theme.StatusBar
	Border = theme.Border

	TitleStyle = lipgloss.NewStyle().
		Bold(true).
		Foreground(Highlight).
		MarginLeft(2)

	SelectedItemStyle = lipgloss.NewStyle().
		Foreground(Highlight).
		Bold(true)

	DescriptionStyle = lipgloss.NewStyle().
		Foreground(Subtle).
		MarginLeft(2)

	LabelStyle = lipgloss.NewStyle().
		Foreground(theme.LabelColor).
		Width(10)

	InputStyle = lipgloss.NewStyle().
		Foreground(theme.InputColor).
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(Highlight).
		Padding(0, 1)

	OutputStyle = lipgloss.NewStyle().
		Foreground(theme.OutputColor)

	StatusConnectingStyle = lipgloss.NewStyle().
		Foreground(Highlight).
		Bold(true)

	StatusConnectedStyle = lipgloss.NewStyle().
		Foreground(Special).
		Bold(true)

	StatusDefaultStyle = lipgloss.NewStyle().
		Foreground(Subtle)

	StatusBarStyle = lipgloss.NewStyle().
		Foreground(theme.InputColor).
		Background(StatusBar).
		Bold(true).
		Padding(0, 1)

	ButtonStyle = lipgloss.NewStyle().
		Foreground(Special).
		Bold(true)

	SuccessStyle = lipgloss.NewStyle().
		Foreground(Special).
		Bold(true)

	ErrorStyle = lipgloss.NewStyle().
		Foreground(Error).
		Bold(true)

	WindowStyle = lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(Border).
		Padding(1, 2)

	DialogStyle = lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(Border).
		Padding(1, 2)
}
