package ui

import (
	"fmt"
	"log/slog"

	"dxcluster/internal/cluster"
	"dxcluster/internal/models"
	"dxcluster/internal/ui/messages"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
)

// KeyMap holds every key binding of the TUI.
type KeyMap struct {
	Enter      key.Binding
	Send       key.Binding
	Back       key.Binding
	Quit       key.Binding
	New        key.Binding
	Session    key.Binding
	Disconnect key.Binding
	Refresh    key.Binding
	Theme      key.Binding
	NextField  key.Binding
	PrevField  key.Binding
	ToggleSave key.Binding
	Yes        key.Binding
	No         key.Binding
}

// DefaultKeyMap returns the default key bindings.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Enter: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "connect"),
		),
		Send: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "send"),
		),
		Back: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "back"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
		New: key.NewBinding(
			key.WithKeys("n"),
			key.WithHelp("n", "new connection"),
		),
		Session: key.NewBinding(
			key.WithKeys("s"),
			key.WithHelp("s", "session"),
		),
		Disconnect: key.NewBinding(
			key.WithKeys("ctrl+d"),
			key.WithHelp("ctrl+d", "disconnect"),
		),
		Refresh: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "reload"),
		),
		Theme: key.NewBinding(
			key.WithKeys("ctrl+t"),
			key.WithHelp("ctrl+t", "theme"),
		),
		NextField: key.NewBinding(
			key.WithKeys("tab", "down"),
			key.WithHelp("tab", "next field"),
		),
		PrevField: key.NewBinding(
			key.WithKeys("shift+tab", "up"),
			key.WithHelp("shift+tab", "previous field"),
		),
		ToggleSave: key.NewBinding(
			key.WithKeys("ctrl+s"),
			key.WithHelp("ctrl+s", "save bookmark"),
		),
		Yes: key.NewBinding(
			key.WithKeys("y", "Y"),
			key.WithHelp("y", "yes"),
		),
		No: key.NewBinding(
			key.WithKeys("n", "N", "esc"),
			key.WithHelp("n", "no"),
		),
	}
}

// Status is the one-line message shown at the bottom of every view.
type Status struct {
	Message string
	IsError bool
}

type View int

const (
	ViewMain View = iota
	ViewConnect
	ViewSession
)

// Model is the state shared by all views.
type Model struct {
	keys       KeyMap
	status     Status
	activeView View
	ctrl       *cluster.Controller
	events     *EventQueue
	logger     *slog.Logger
	state      cluster.State
	bookmarks  []string
	width      int
	height     int
	quitting   bool
}

// NewModel creates the shared model. events must be the listener ctrl was
// created with.
func NewModel(ctrl *cluster.Controller, events *EventQueue, logger *slog.Logger) *Model {
	if logger == nil {
		logger = slog.Default()
	}
	return &Model{
		keys:       DefaultKeyMap(),
		activeView: ViewMain,
		ctrl:       ctrl,
		events:     events,
		logger:     logger.With("component", "ui"),
		state:      ctrl.State(),
	}
}

func (m *Model) Keys() KeyMap {
	return m.keys
}

func (m *Model) Controller() *cluster.Controller {
	return m.ctrl
}

func (m *Model) Events() *EventQueue {
	return m.events
}

func (m *Model) Logger() *slog.Logger {
	return m.logger
}

// Apply folds a controller event into the shared state. It reports whether
// msg was a controller event.
func (m *Model) Apply(msg tea.Msg) bool {
	switch msg := msg.(type) {
	case messages.StateChangedMsg:
		m.setState(cluster.State(msg))
	case messages.ConnectErrorMsg:
		m.SetStatus(string(msg), true)
	case messages.WarningMsg:
		m.SetStatus(string(msg), true)
	case messages.BookmarksChangedMsg:
		m.bookmarks = []string(msg)
	case messages.OutputMsg:
	default:
		return false
	}
	return true
}

func (m *Model) setState(state cluster.State) {
	prev := m.state
	m.state = state

	switch state {
	case cluster.StateConnecting:
		m.SetStatus(fmt.Sprintf("Connecting to %s...", m.profileLabel()), false)
	case cluster.StateActive:
		m.SetStatus(fmt.Sprintf("Connected to %s", m.profileLabel()), false)
		m.SetActiveView(ViewSession)
	case cluster.StateIdle:
		if prev == cluster.StateActive {
			m.SetStatus("Disconnected", false)
		}
		if m.activeView == ViewSession {
			m.SetActiveView(ViewMain)
		}
	}
}

func (m *Model) profileLabel() string {
	if p, ok := m.ctrl.Profile(); ok {
		return p.String()
	}
	return "cluster"
}

// State is the controller state as last reported by an event.
func (m *Model) State() cluster.State {
	return m.state
}

func (m *Model) IsConnected() bool {
	return m.state == cluster.StateActive
}

// ActiveProfile returns the profile of the current session.
func (m *Model) ActiveProfile() (models.Profile, bool) {
	return m.ctrl.Profile()
}

// RefreshBookmarks reloads the bookmark keys from disk.
func (m *Model) RefreshBookmarks() error {
	keys, err := m.ctrl.Bookmarks()
	if err != nil {
		m.SetStatus(fmt.Sprintf("Could not load bookmarks: %v", err), true)
		return err
	}
	m.bookmarks = keys
	return nil
}

func (m *Model) Bookmarks() []string {
	return m.bookmarks
}

// SetStatus sets the status line.
func (m *Model) SetStatus(msg string, isError bool) {
	m.status = Status{
		Message: msg,
		IsError: isError,
	}
}

func (m *Model) ClearStatus() {
	m.status = Status{}
}

func (m *Model) Status() Status {
	return m.status
}

// StatusView renders the status line, or nothing.
func (m *Model) StatusView() string {
	if m.status.Message == "" {
		return ""
	}
	if m.status.IsError {
		return ErrorStyle.Render(m.status.Message)
	}
	return SuccessStyle.Render(m.status.Message)
}

func (m *Model) SetActiveView(view View) {
	m.activeView = view
}

func (m *Model) GetActiveView() View {
	return m.activeView
}

func (m *Model) SetTerminalSize(width, height int) {
	m.width = width
	m.height = height
}

func (m *Model) Layout() BaseLayout {
	return NewBaseLayout(m.width, m.height)
}

// Quit disconnects any session and marks the program as finished.
func (m *Model) Quit() {
	m.ctrl.RequestDisconnect()
	m.quitting = true
}

func (m *Model) IsQuitting() bool {
	return m.quitting
}
