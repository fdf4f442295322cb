package ui

import (
	"sync"

	"dxcluster/internal/cluster"
	"dxcluster/internal/ui/messages"

	tea "github.com/charmbracelet/bubbletea"
)

// EventQueue is the controller listener used by the TUI. Callbacks only
// append to the queue, so they never block the controller; the program
// drains it on its own goroutine.
type EventQueue struct {
	mu      sync.Mutex
	pending []tea.Msg
	notify  chan struct{}
}

var _ cluster.Listener = (*EventQueue)(nil)

func NewEventQueue() *EventQueue {
	return &EventQueue{notify: make(chan struct{}, 1)}
}

func (q *EventQueue) OnOutputText(chunk string) {
	q.push(messages.OutputMsg(chunk))
}

func (q *EventQueue) OnStateChanged(state cluster.State) {
	q.push(messages.StateChangedMsg(state))
}

func (q *EventQueue) OnConnectError(message string) {
	q.push(messages.ConnectErrorMsg(message))
}

func (q *EventQueue) OnBookmarksChanged(keys []string) {
	q.push(messages.BookmarksChangedMsg(append([]string(nil), keys...)))
}

func (q *EventQueue) OnWarning(message string) {
	q.push(messages.WarningMsg(message))
}

func (q *EventQueue) push(msg tea.Msg) {
	q.mu.Lock()
	// Adjacent output chunks are merged.
	if out, ok := msg.(messages.OutputMsg); ok && len(q.pending) > 0 {
		if last, ok := q.pending[len(q.pending)-1].(messages.OutputMsg); ok {
			q.pending[len(q.pending)-1] = last + out
			q.mu.Unlock()
			q.signal()
			return
		}
	}
	q.pending = append(q.pending, msg)
	q.mu.Unlock()
	q.signal()
}

func (q *EventQueue) signal() {
	select {
	case q.notify <- struct{}{}:
	default:
	}
}

// Wait returns a command that resolves once events are pending.
func (q *EventQueue) Wait() tea.Cmd {
	return func() tea.Msg {
		<-q.notify
		return messages.EventsReadyMsg{}
	}
}

// Drain removes and returns every pending event in arrival order.
func (q *EventQueue) Drain() []tea.Msg {
	q.mu.Lock()
	defer q.mu.Unlock()
	msgs := q.pending
	q.pending = nil
	return msgs
}
