package views

import (
	"fmt"
	"strings"

	"dxcluster/internal/cluster"
	"dxcluster/internal/ui"
	"dxcluster/internal/ui/components"
	"dxcluster/internal/ui/messages"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
)

// BookmarkItem is a list entry for one saved profile.
type BookmarkItem struct {
	key string
}

func (i BookmarkItem) Title() string       { return i.key }
func (i BookmarkItem) Description() string { return "" }
func (i BookmarkItem) FilterValue() string { return i.key }

type mainView struct {
	model *ui.Model
	list  list.Model
	popup *components.Popup
}

// NewMainView lists the bookmarks and the available actions.
func NewMainView(model *ui.Model) *mainView {
	keys := model.Keys()

	delegate := list.NewDefaultDelegate()
	delegate.ShowDescription = false

	l := list.New(nil, delegate, 0, 0)
	l.Title = "Bookmarks"
	l.SetShowStatusBar(false)
	l.SetFilteringEnabled(false)
	l.KeyMap.Quit.SetEnabled(false)
	l.KeyMap.ForceQuit.SetEnabled(false)
	l.AdditionalShortHelpKeys = func() []key.Binding {
		return []key.Binding{keys.Enter, keys.New, keys.Session, keys.Refresh, keys.Quit}
	}

	v := &mainView{model: model, list: l}
	v.setItems(model.Bookmarks())
	v.resize()
	return v
}

func (v *mainView) Init() tea.Cmd {
	return nil
}

func (v *mainView) setItems(keys []string) {
	items := make([]list.Item, 0, len(keys))
	for _, k := range keys {
		items = append(items, BookmarkItem{key: k})
	}
	v.list.SetItems(items)
}

func (v *mainView) resize() {
	layout := v.model.Layout()
	v.list.SetSize(layout.Width-6, layout.ContentHeight-2)
}

// Selected returns the highlighted bookmark key.
func (v *mainView) Selected() (string, bool) {
	item, ok := v.list.SelectedItem().(BookmarkItem)
	if !ok {
		return "", false
	}
	return item.key, true
}

func (v *mainView) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	keys := v.model.Keys()

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.resize()
		return v, nil

	case messages.BookmarksChangedMsg:
		v.setItems(msg)
		return v, nil

	case tea.KeyMsg:
		if v.popup != nil {
			return v.updatePopup(msg)
		}

		switch {
		case key.Matches(msg, keys.Quit):
			if v.model.State() != cluster.StateIdle {
				layout := v.model.Layout()
				v.popup = components.NewPopup(components.PopupConfirm, "Quit",
					fmt.Sprintf("Disconnect from %s and quit?", v.sessionLabel()),
					60, layout.Width, layout.Height)
				return v, nil
			}
			v.model.Quit()
			return v, tea.Quit

		case key.Matches(msg, keys.Enter):
			bookmark, ok := v.Selected()
			if !ok {
				v.model.SetStatus("No bookmarks yet. Press 'n' to connect to a new cluster.", true)
				return v, nil
			}
			if v.model.State() == cluster.StateConnecting {
				v.model.SetStatus("Connection attempt already in progress", true)
				return v, nil
			}
			v.model.ClearStatus()
			return v, connectBookmarkCmd(v.model.Controller(), bookmark)

		case key.Matches(msg, keys.New):
			v.model.ClearStatus()
			v.model.SetActiveView(ui.ViewConnect)
			return v, nil

		case key.Matches(msg, keys.Session):
			if !v.model.IsConnected() {
				v.model.SetStatus("No active session", true)
				return v, nil
			}
			v.model.SetActiveView(ui.ViewSession)
			return v, nil

		case key.Matches(msg, keys.Disconnect):
			v.model.Controller().RequestDisconnect()
			return v, nil

		case key.Matches(msg, keys.Refresh):
			if err := v.model.RefreshBookmarks(); err == nil {
				v.setItems(v.model.Bookmarks())
				v.model.SetStatus("Bookmarks reloaded", false)
			}
			return v, nil
		}
	}

	var cmd tea.Cmd
	v.list, cmd = v.list.Update(msg)
	return v, cmd
}

func (v *mainView) updatePopup(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	keys := v.model.Keys()

	switch {
	case key.Matches(msg, keys.Yes):
		v.popup = nil
		v.model.Quit()
		return v, tea.Quit
	case key.Matches(msg, keys.No):
		v.popup = nil
	}
	return v, nil
}

func (v *mainView) sessionLabel() string {
	if p, ok := v.model.ActiveProfile(); ok {
		return p.String()
	}
	return "the cluster"
}

func (v *mainView) View() string {
	if v.popup != nil {
		return v.popup.Render()
	}

	var content strings.Builder
	content.WriteString(ui.TitleStyle.Render("DX Cluster") + "\n\n")

	switch v.model.State() {
	case cluster.StateActive:
		content.WriteString(ui.StatusConnectedStyle.Render("Connected to "+v.sessionLabel()) + "\n\n")
	case cluster.StateConnecting:
		content.WriteString(ui.StatusConnectingStyle.Render("Connecting to "+v.sessionLabel()+"...") + "\n\n")
	default:
		content.WriteString(ui.StatusDefaultStyle.Render("No active connection") + "\n\n")
	}

	if len(v.model.Bookmarks()) == 0 {
		content.WriteString(ui.DescriptionStyle.Render("No bookmarks saved. Press 'n' to connect to a new cluster.") + "\n")
	} else {
		content.WriteString(v.list.View() + "\n")
	}

	if status := v.model.StatusView(); status != "" {
		content.WriteString("\n" + status)
	}

	return ui.WindowStyle.Render(content.String())
}
