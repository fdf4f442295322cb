package messages

import "dxcluster/internal/cluster"

// Controller events, delivered through the UI event queue.
type OutputMsg string
type StateChangedMsg cluster.State
type ConnectErrorMsg string
type BookmarksChangedMsg []string
type WarningMsg string

// EventsReadyMsg signals that the event queue has messages to drain.
type EventsReadyMsg struct{}

// ConnectDoneMsg carries the result of a connect request run in the
// background.
type ConnectDoneMsg struct {
	Err error
}
