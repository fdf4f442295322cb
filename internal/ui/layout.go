package ui

import (
	"github.com/charmbracelet/lipgloss"
	ltable "github.com/charmbracelet/lipgloss/table"
)

const (
	minWidth  = 40
	minHeight = 12
)

// BaseLayout holds the screen split shared by every view.
type BaseLayout struct {
	Width         int
	Height        int
	HeaderHeight  int
	FooterHeight  int
	ContentHeight int
}

// NewBaseLayout splits a width x height screen into header, content and
// footer. Tiny terminals are clamped.
func NewBaseLayout(width, height int) BaseLayout {
	const (
		headerHeight = 2
		footerHeight = 4
	)

	width = max(width, minWidth)
	height = max(height, minHeight)

	return BaseLayout{
		Width:         width,
		Height:        height,
		HeaderHeight:  headerHeight,
		FooterHeight:  footerHeight,
		ContentHeight: height - headerHeight - footerHeight,
	}
}

func (l BaseLayout) Header() lipgloss.Style {
	return lipgloss.NewStyle().
		Width(l.Width).
		Height(l.HeaderHeight - 1).
		BorderStyle(lipgloss.NormalBorder()).
		BorderBottom(true).
		BorderForeground(Border)
}

func (l BaseLayout) Footer() lipgloss.Style {
	return lipgloss.NewStyle().
		Width(l.Width).
		BorderStyle(lipgloss.NormalBorder()).
		BorderTop(true).
		BorderForeground(Border)
}

// ContentArea is the style of the scrolling region between header and footer.
func (l BaseLayout) ContentArea() lipgloss.Style {
	return lipgloss.NewStyle().
		Width(l.Width).
		Height(l.ContentHeight)
}

// RenderTable renders a bordered table in the current theme.
func RenderTable(headers []string, rows [][]string) string {
	tableStyle := func(row, col int) lipgloss.Style {
		switch {
		case row == ltable.HeaderRow:
			return lipgloss.NewStyle().
				Padding(0, 1).
				Foreground(Highlight).
				Bold(true)
		default:
			return lipgloss.NewStyle().
				Padding(0, 1)
		}
	}

	return ltable.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(Border)).
		StyleFunc(tableStyle).
		Headers(headers...).
		Rows(rows...).
		Render()
}
