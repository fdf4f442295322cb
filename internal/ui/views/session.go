package views

import (
	"strings"

	"dxcluster/internal/ui"
	"dxcluster/internal/ui/messages"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
)

type sessionView struct {
	model    *ui.Model
	viewport viewport.Model
	input    textinput.Model
	help     help.Model
}

// NewSessionView shows the server output of the active session with a
// command line below it.
func NewSessionView(model *ui.Model) *sessionView {
	input := textinput.New()
	input.Placeholder = "command, e.g. sh/dx 10"
	input.Prompt = "> "
	input.CharLimit = 256
	input.Focus()

	v := &sessionView{
		model:    model,
		viewport: viewport.New(0, 0),
		input:    input,
		help:     help.New(),
	}
	v.resize()
	v.refresh(true)
	return v
}

func (v *sessionView) Init() tea.Cmd {
	return textinput.Blink
}

func (v *sessionView) resize() {
	layout := v.model.Layout()
	v.viewport.Width = layout.Width
	v.viewport.Height = layout.ContentHeight
	v.input.Width = layout.Width - 4
}

// refresh reloads the transcript, following the tail when the view was
// already at the bottom.
func (v *sessionView) refresh(follow bool) {
	follow = follow || v.viewport.AtBottom()
	text := strings.ReplaceAll(v.model.Controller().Transcript(), "\r", "")
	v.viewport.SetContent(ui.OutputStyle.Render(text))
	if follow {
		v.viewport.GotoBottom()
	}
}

func (v *sessionView) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	keys := v.model.Keys()

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.resize()
		v.refresh(false)
		return v, nil

	case messages.OutputMsg:
		v.refresh(false)
		return v, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Back):
			v.model.SetActiveView(ui.ViewMain)
			return v, nil

		case key.Matches(msg, keys.Disconnect):
			v.model.Controller().RequestDisconnect()
			return v, nil

		case key.Matches(msg, keys.Send):
			line := v.input.Value()
			if v.model.Controller().RequestSend(line) {
				v.input.Reset()
			}
			return v, nil

		case msg.Type == tea.KeyPgUp, msg.Type == tea.KeyPgDown:
			var cmd tea.Cmd
			v.viewport, cmd = v.viewport.Update(msg)
			return v, cmd
		}
	}

	var cmd tea.Cmd
	v.input, cmd = v.input.Update(msg)
	return v, cmd
}

func (v *sessionView) View() string {
	layout := v.model.Layout()
	keys := v.model.Keys()

	title := "Session"
	if p, ok := v.model.ActiveProfile(); ok {
		title = p.String()
	}
	header := layout.Header().Render(ui.StatusConnectedStyle.Render(title))

	footer := v.input.View() + "\n" + v.help.ShortHelpView([]key.Binding{keys.Send, keys.Back, keys.Disconnect})
	if status := v.model.StatusView(); status != "" {
		footer += "\n" + status
	}

	return header + "\n" + layout.ContentArea().Render(v.viewport.View()) + "\n" + layout.Footer().Render(footer)
}
