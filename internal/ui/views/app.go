package views

import (
	"fmt"

	"dxcluster/internal/apperr"
	"dxcluster/internal/ui"
	"dxcluster/internal/ui/messages"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
)

// App is the root program model. It owns the current view and feeds
// controller events from the queue into the shared model and the view.
type App struct {
	model   *ui.Model
	current tea.Model
	active  ui.View
}

func NewApp(model *ui.Model) *App {
	if err := model.RefreshBookmarks(); err != nil {
		model.Logger().Warn("could not load bookmarks", "error", err)
	}
	a := &App{model: model}
	a.switchView()
	return a
}

func (a *App) Init() tea.Cmd {
	return tea.Batch(a.current.Init(), a.model.Events().Wait())
}

func (a *App) switchView() {
	a.active = a.model.GetActiveView()
	switch a.active {
	case ui.ViewConnect:
		a.current = NewConnectView(a.model)
	case ui.ViewSession:
		a.current = NewSessionView(a.model)
	default:
		a.current = NewMainView(a.model)
	}
}

// Current returns the view being shown.
func (a *App) Current() tea.Model {
	return a.current
}

func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if a.model.IsQuitting() {
		return a, tea.Quit
	}

	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.model.SetTerminalSize(msg.Width, msg.Height)

	case tea.KeyMsg:
		keys := a.model.Keys()
		switch {
		case msg.Type == tea.KeyCtrlC:
			a.model.Quit()
			return a, tea.Quit
		case key.Matches(msg, keys.Theme):
			theme := ui.SwitchTheme()
			a.model.SetStatus(fmt.Sprintf("Theme: %s", theme.Name), false)
			return a, nil
		}

	case messages.EventsReadyMsg:
		for _, ev := range a.model.Events().Drain() {
			a.model.Apply(ev)
			cmds = append(cmds, a.forward(ev))
		}
		cmds = append(cmds, a.model.Events().Wait())
		return a, tea.Batch(cmds...)

	case messages.ConnectDoneMsg:
		if msg.Err != nil && apperr.IsType(msg.Err, apperr.ValidationError) {
			a.model.SetStatus(apperr.Reason(msg.Err), true)
		}
	}

	cmds = append(cmds, a.forward(msg))
	return a, tea.Batch(cmds...)
}

// forward passes msg to the current view and swaps views when the active
// view changed.
func (a *App) forward(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	a.current, cmd = a.current.Update(msg)

	if a.model.GetActiveView() != a.active {
		a.switchView()
		return tea.Batch(cmd, a.current.Init())
	}
	return cmd
}

func (a *App) View() string {
	if a.model.IsQuitting() {
		return "73!\n"
	}
	return a.current.View()
}
