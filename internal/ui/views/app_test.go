package views

import (
	"context"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"dxcluster/internal/apperr"
	"dxcluster/internal/cluster"
	"dxcluster/internal/config"
	"dxcluster/internal/models"
	"dxcluster/internal/ui"
	"dxcluster/internal/ui/messages"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubSession struct {
	mu     sync.Mutex
	sent   []string
	output []string
	closed bool
}

func (s *stubSession) Send(line string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sent = append(s.sent, line)
	return nil
}

func (s *stubSession) Poll() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.output) == 0 {
		return "", nil
	}
	text := s.output[0]
	s.output = s.output[1:]
	return text, nil
}

func (s *stubSession) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

type nopScheduler struct{}

func (nopScheduler) Every(time.Duration, func()) cluster.Timer { return nopTimer{} }

type nopTimer struct{}

func (nopTimer) Stop() {}

const unreachableHost = "unreachable.invalid"

type harness struct {
	model   *ui.Model
	store   *config.BookmarkStore
	session *stubSession
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	h := &harness{
		store:   config.NewBookmarkStore(filepath.Join(t.TempDir(), "bookmarks.ini"), nil),
		session: &stubSession{},
	}
	opener := func(_ context.Context, p models.Profile) (cluster.Session, error) {
		if p.Host == unreachableHost {
			return nil, apperr.New(apperr.ConnectError, "could not connect to "+p.Address(), nil)
		}
		return h.session, nil
	}
	queue := ui.NewEventQueue()
	ctrl := cluster.New(opener, h.store, queue, cluster.Options{Scheduler: nopScheduler{}})
	h.model = ui.NewModel(ctrl, queue, nil)
	h.model.SetTerminalSize(100, 30)
	t.Cleanup(ctrl.RequestDisconnect)
	return h
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

// deliver hands every queued controller event to the app.
func deliver(a *App) {
	a.Update(messages.EventsReadyMsg{})
}

func TestApp_StartsOnBookmarkList(t *testing.T) {
	h := newHarness(t)
	_, err := h.store.Put(models.Profile{Host: "dxc.example.org", Port: 7300, Username: "N0CALL"})
	require.NoError(t, err)

	a := NewApp(h.model)

	main, ok := a.Current().(*mainView)
	require.True(t, ok)
	assert.Equal(t, []string{"N0CALL@dxc.example.org:7300"}, h.model.Bookmarks())
	key, ok := main.Selected()
	require.True(t, ok)
	assert.Equal(t, "N0CALL@dxc.example.org:7300", key)
	assert.Contains(t, a.View(), "No active connection")
}

func TestApp_NewConnectionFlow(t *testing.T) {
	h := newHarness(t)
	a := NewApp(h.model)

	a.Update(runes("n"))
	form, ok := a.Current().(*connectView)
	require.True(t, ok)

	a.Update(runes("dxc.example.org"))
	a.Update(tea.KeyMsg{Type: tea.KeyTab})
	a.Update(runes("7300"))
	a.Update(tea.KeyMsg{Type: tea.KeyCtrlS})

	p, err := form.Profile()
	require.NoError(t, err)
	assert.Equal(t, models.Profile{Host: "dxc.example.org", Port: 7300}, p)
	assert.True(t, form.save)

	_, cmd := form.Update(tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, cmd)
	assert.True(t, form.connecting)

	done, ok := cmd().(messages.ConnectDoneMsg)
	require.True(t, ok)
	require.NoError(t, done.Err)
	a.Update(done)
	deliver(a)

	_, ok = a.Current().(*sessionView)
	require.True(t, ok, "active session switches to the session view")
	assert.Equal(t, []string{"dxc.example.org:7300"}, h.model.Bookmarks())
	assert.Equal(t, "Connected to dxc.example.org:7300", h.model.Status().Message)
}

func TestConnectView_Validation(t *testing.T) {
	tests := []struct {
		name string
		host string
		port string
		want string
	}{
		{name: "empty host", host: "", port: "23", want: "empty host"},
		{name: "blank host", host: "   ", port: "", want: "empty host"},
		{name: "non-numeric port", host: "h", port: "abc", want: "invalid port"},
		{name: "port out of range", host: "h", port: "99999", want: "invalid port"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t)
			form := NewConnectView(h.model)
			form.inputs[fieldHost].SetValue(tt.host)
			form.inputs[fieldPort].SetValue(tt.port)

			_, cmd := form.Update(tea.KeyMsg{Type: tea.KeyEnter})

			assert.Nil(t, cmd)
			assert.False(t, form.connecting)
			assert.Equal(t, tt.want, form.errMsg)
			assert.Contains(t, form.View(), tt.want)
		})
	}
}

func TestConnectView_Failure(t *testing.T) {
	h := newHarness(t)
	a := NewApp(h.model)
	a.Update(runes("n"))
	form := a.Current().(*connectView)
	form.inputs[fieldHost].SetValue(unreachableHost)

	_, cmd := form.Update(tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, cmd)
	done := cmd().(messages.ConnectDoneMsg)
	require.Error(t, done.Err)

	a.Update(done)
	deliver(a)

	assert.Same(t, form, a.Current(), "stays on the form")
	assert.False(t, form.connecting)
	assert.Equal(t, ui.Status{Message: "could not connect to unreachable.invalid:23", IsError: true}, h.model.Status())
	assert.Equal(t, cluster.StateIdle, h.model.State())
}

func TestConnectView_BackToMain(t *testing.T) {
	h := newHarness(t)
	a := NewApp(h.model)
	a.Update(runes("n"))
	require.IsType(t, &connectView{}, a.Current())

	a.Update(tea.KeyMsg{Type: tea.KeyEsc})

	assert.IsType(t, &mainView{}, a.Current())
}

func connectedApp(t *testing.T) (*harness, *App) {
	t.Helper()
	h := newHarness(t)
	a := NewApp(h.model)
	require.NoError(t, h.model.Controller().RequestConnect(context.Background(), models.Profile{Host: "dxc.example.org"}, false))
	deliver(a)
	require.IsType(t, &sessionView{}, a.Current())
	return h, a
}

func TestSessionView_SendAndOutput(t *testing.T) {
	h, a := connectedApp(t)
	session := a.Current().(*sessionView)

	a.Update(runes("sh/dx 5"))
	a.Update(tea.KeyMsg{Type: tea.KeyEnter})

	assert.Equal(t, []string{"sh/dx 5"}, h.session.sent)
	assert.Empty(t, session.input.Value(), "input cleared after send")

	h.session.output = []string{"DX de K1ABC:     14025.0  JA1XYZ\r\n"}
	h.model.Controller().Poll()
	deliver(a)

	assert.Contains(t, a.View(), "JA1XYZ")
	assert.NotContains(t, a.View(), "\r")
}

func TestSessionView_Disconnect(t *testing.T) {
	h, a := connectedApp(t)

	a.Update(tea.KeyMsg{Type: tea.KeyCtrlD})
	deliver(a)

	assert.IsType(t, &mainView{}, a.Current())
	assert.True(t, h.session.closed)
	assert.Equal(t, "Disconnected", h.model.Status().Message)
	assert.Equal(t, cluster.StateIdle, h.model.State())
}

func TestSessionView_BackKeepsSession(t *testing.T) {
	h, a := connectedApp(t)

	a.Update(tea.KeyMsg{Type: tea.KeyEsc})
	assert.IsType(t, &mainView{}, a.Current())
	assert.True(t, h.model.IsConnected())
	assert.Contains(t, a.View(), "Connected to dxc.example.org:23")

	a.Update(runes("s"))
	assert.IsType(t, &sessionView{}, a.Current())
}

func TestMainView_QuitWhileConnectedAsks(t *testing.T) {
	h, a := connectedApp(t)
	a.Update(tea.KeyMsg{Type: tea.KeyEsc})

	a.Update(runes("q"))
	assert.Contains(t, a.View(), "Disconnect from dxc.example.org:23 and quit?")
	assert.False(t, h.model.IsQuitting())

	a.Update(runes("n"))
	assert.NotContains(t, a.View(), "and quit?")
	assert.True(t, h.model.IsConnected())

	a.Update(runes("q"))
	_, cmd := a.Update(runes("y"))
	assert.NotNil(t, cmd)
	assert.True(t, h.model.IsQuitting())
	assert.True(t, h.session.closed)
	assert.Equal(t, cluster.StateIdle, h.model.Controller().State())
}

func TestMainView_ConnectBookmark(t *testing.T) {
	h := newHarness(t)
	_, err := h.store.Put(models.Profile{Host: "dxc.example.org", Port: 7300})
	require.NoError(t, err)
	a := NewApp(h.model)

	main := a.Current().(*mainView)
	_, cmd := main.Update(tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, cmd)
	done := cmd().(messages.ConnectDoneMsg)
	require.NoError(t, done.Err)
	deliver(a)

	assert.IsType(t, &sessionView{}, a.Current())
	p, ok := h.model.ActiveProfile()
	require.True(t, ok)
	assert.Equal(t, 7300, p.Port)
}

func TestMainView_EnterWithoutBookmarks(t *testing.T) {
	h := newHarness(t)
	a := NewApp(h.model)

	_, cmd := a.Current().Update(tea.KeyMsg{Type: tea.KeyEnter})

	assert.Nil(t, cmd)
	assert.True(t, h.model.Status().IsError)
}

func TestApp_QuitOnCtrlC(t *testing.T) {
	h, a := connectedApp(t)

	_, cmd := a.Update(tea.KeyMsg{Type: tea.KeyCtrlC})

	assert.NotNil(t, cmd)
	assert.True(t, h.model.IsQuitting())
	assert.True(t, h.session.closed)
	assert.Equal(t, "73!\n", a.View())
}
