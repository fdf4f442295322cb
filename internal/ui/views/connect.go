package views

import (
	"strings"

	"dxcluster/internal/apperr"
	"dxcluster/internal/cluster"
	"dxcluster/internal/models"
	"dxcluster/internal/ui"
	"dxcluster/internal/ui/messages"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

const (
	fieldHost = iota
	fieldPort
	fieldUsername
	fieldPassword
	fieldCount
)

var fieldLabels = [fieldCount]string{"Host", "Port", "Username", "Password"}

type connectView struct {
	model      *ui.Model
	inputs     [fieldCount]textinput.Model
	focused    int
	save       bool
	connecting bool
	errMsg     string
	help       help.Model
}

// NewConnectView is the form for a connection that is not bookmarked yet.
func NewConnectView(model *ui.Model) *connectView {
	v := &connectView{model: model, help: help.New()}

	for i := range v.inputs {
		ti := textinput.New()
		ti.CharLimit = 128
		ti.Width = 40
		v.inputs[i] = ti
	}
	v.inputs[fieldHost].Placeholder = "dxc.example.org"
	v.inputs[fieldPort].Placeholder = "23"
	v.inputs[fieldPort].CharLimit = 5
	v.inputs[fieldUsername].Placeholder = "callsign (optional)"
	v.inputs[fieldPassword].Placeholder = "optional"
	v.inputs[fieldPassword].EchoMode = textinput.EchoPassword
	v.inputs[fieldPassword].EchoCharacter = '•'

	v.inputs[fieldHost].Focus()
	return v
}

func (v *connectView) Init() tea.Cmd {
	return textinput.Blink
}

func (v *connectView) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	keys := v.model.Keys()

	switch msg := msg.(type) {
	case messages.StateChangedMsg:
		if cluster.State(msg) == cluster.StateIdle {
			v.connecting = false
		}
		return v, nil

	case messages.ConnectDoneMsg:
		v.connecting = false
		if msg.Err != nil && apperr.IsType(msg.Err, apperr.ValidationError) {
			v.errMsg = apperr.Reason(msg.Err)
		}
		return v, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Back):
			if v.connecting {
				v.model.Controller().RequestDisconnect()
				v.connecting = false
				v.model.SetStatus("Connection attempt cancelled", false)
				return v, nil
			}
			v.model.ClearStatus()
			v.model.SetActiveView(ui.ViewMain)
			return v, nil

		case v.connecting:
			return v, nil

		case key.Matches(msg, keys.ToggleSave):
			v.save = !v.save
			return v, nil

		case key.Matches(msg, keys.NextField):
			return v, v.focus(v.focused + 1)

		case key.Matches(msg, keys.PrevField):
			return v, v.focus(v.focused - 1)

		case key.Matches(msg, keys.Enter):
			return v.submit()
		}
	}

	var cmd tea.Cmd
	v.inputs[v.focused], cmd = v.inputs[v.focused].Update(msg)
	return v, cmd
}

func (v *connectView) focus(i int) tea.Cmd {
	i = (i + fieldCount) % fieldCount
	v.inputs[v.focused].Blur()
	v.focused = i
	return v.inputs[i].Focus()
}

func (v *connectView) submit() (tea.Model, tea.Cmd) {
	p, err := v.Profile()
	if err != nil {
		v.errMsg = apperr.Reason(err)
		return v, nil
	}
	if strings.TrimSpace(v.inputs[fieldPort].Value()) == "" {
		v.model.Logger().Warn("no port given, using default", "port", models.DefaultPort)
	}

	v.errMsg = ""
	v.connecting = true
	v.model.ClearStatus()
	return v, connectCmd(v.model.Controller(), p, v.save)
}

// Profile builds a profile from the form fields.
func (v *connectView) Profile() (models.Profile, error) {
	return models.NewProfile(
		v.inputs[fieldHost].Value(),
		strings.TrimSpace(v.inputs[fieldPort].Value()),
		strings.TrimSpace(v.inputs[fieldUsername].Value()),
		v.inputs[fieldPassword].Value(),
	)
}

func (v *connectView) View() string {
	keys := v.model.Keys()
	var content strings.Builder

	if v.connecting {
		content.WriteString(ui.TitleStyle.Render("Connecting...") + "\n\n")
	} else {
		content.WriteString(ui.TitleStyle.Render("New connection") + "\n\n")
	}

	for i, input := range v.inputs {
		label := ui.LabelStyle.Render(fieldLabels[i])
		if i == v.focused {
			label = ui.SelectedItemStyle.Inherit(ui.LabelStyle).Render(fieldLabels[i])
		}
		content.WriteString(label + " " + ui.InputStyle.Render(input.View()) + "\n")
	}

	check := "[ ]"
	if v.save {
		check = "[x]"
	}
	content.WriteString("\n" + ui.ButtonStyle.Render(check) + " Save as bookmark\n\n")

	content.WriteString(v.help.ShortHelpView([]key.Binding{
		keys.Enter, keys.NextField, keys.ToggleSave, keys.Back,
	}))

	if v.errMsg != "" {
		content.WriteString("\n\n" + ui.ErrorStyle.Render(v.errMsg))
	} else if status := v.model.StatusView(); status != "" {
		content.WriteString("\n\n" + status)
	}

	return ui.WindowStyle.Render(content.String())
}
