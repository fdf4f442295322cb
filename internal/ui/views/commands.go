package views

import (
	"context"

	"dxcluster/internal/cluster"
	"dxcluster/internal/models"
	"dxcluster/internal/ui/messages"

	tea "github.com/charmbracelet/bubbletea"
)

// Connecting blocks on dial and handshake, so it runs as a command. State
// changes and failures also arrive through the event queue.

func connectCmd(ctrl *cluster.Controller, p models.Profile, save bool) tea.Cmd {
	return func() tea.Msg {
		return messages.ConnectDoneMsg{Err: ctrl.RequestConnect(context.Background(), p, save)}
	}
}

func connectBookmarkCmd(ctrl *cluster.Controller, key string) tea.Cmd {
	return func() tea.Msg {
		return messages.ConnectDoneMsg{Err: ctrl.RequestConnectByBookmark(context.Background(), key)}
	}
}
