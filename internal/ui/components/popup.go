package components

import (
	"strings"

	"dxcluster/internal/ui"

	"github.com/charmbracelet/lipgloss"
)

type PopupType int

const (
	PopupNone PopupType = iota
	PopupConfirm
	PopupMessage
)

// Popup is a centered dialog drawn over the whole screen.
type Popup struct {
	Type         PopupType
	Title        string
	Message      string
	Width        int
	ScreenWidth  int
	ScreenHeight int
}

func NewPopup(popupType PopupType, title, message string, width, screenWidth, screenHeight int) *Popup {
	return &Popup{
		Type:         popupType,
		Title:        title,
		Message:      message,
		Width:        width,
		ScreenWidth:  screenWidth,
		ScreenHeight: screenHeight,
	}
}

func (p *Popup) Render() string {
	popupStyle := ui.DialogStyle.Width(p.Width)

	titleStyle := ui.TitleStyle.
		Align(lipgloss.Center).
		Width(p.Width - 4)

	var content strings.Builder
	content.WriteString(titleStyle.Render(p.Title) + "\n\n")
	content.WriteString(p.Message + "\n")

	var keys string
	switch p.Type {
	case PopupConfirm:
		keys = "y - Yes, n - No"
	default:
		keys = "ESC/ENTER - Close"
	}
	content.WriteString("\n" + ui.DescriptionStyle.Render(keys))

	return lipgloss.Place(
		p.ScreenWidth,
		p.ScreenHeight,
		lipgloss.Center,
		lipgloss.Center,
		popupStyle.Render(content.String()),
		lipgloss.WithWhitespaceForeground(lipgloss.Color("0")),
	)
}
