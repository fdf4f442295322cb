package cluster

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"dxcluster/internal/config"
	"dxcluster/internal/models"
	"dxcluster/internal/telnet"
	"dxcluster/internal/telnet/telnettest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// echoCluster greets the client and echoes every command it receives.
func echoCluster(c *telnettest.Conn) {
	if err := c.Send("Hello from the test cluster\r\n"); err != nil {
		return
	}
	for {
		line, err := c.ReadLine()
		if err != nil {
			return
		}
		if err := c.Send("echo: " + line + "\r\n"); err != nil {
			return
		}
	}
}

func TestController_EndToEnd(t *testing.T) {
	srv := telnettest.NewServer(t, echoCluster)
	store := config.NewBookmarkStore(filepath.Join(t.TempDir(), "bookmarks.ini"), nil)
	events := &recorder{}
	opener := TelnetOpener(telnet.Options{
		DialTimeout:   2 * time.Second,
		PromptTimeout: 2 * time.Second,
	})
	ctrl := New(opener, store, events, Options{PollInterval: 10 * time.Millisecond})
	t.Cleanup(ctrl.RequestDisconnect)

	profile := models.Profile{Host: "127.0.0.1", Port: srv.Port()}
	require.NoError(t, ctrl.RequestConnect(context.Background(), profile, true))
	assert.Equal(t, []State{StateConnecting, StateActive}, events.stateList())

	key := fmt.Sprintf("127.0.0.1:%d", srv.Port())
	keys, found, err := store.Load()
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, []string{key}, keys)

	require.Eventually(t, func() bool {
		return strings.Contains(events.outputText(), "Hello from the test cluster")
	}, telnettest.DefaultTimeout, 10*time.Millisecond)

	require.True(t, ctrl.RequestSend("sh/dx 5"))
	require.Eventually(t, func() bool {
		return strings.Contains(ctrl.Transcript(), "echo: sh/dx 5")
	}, telnettest.DefaultTimeout, 10*time.Millisecond)

	ctrl.RequestDisconnect()
	assert.Equal(t, StateIdle, ctrl.State())
	assert.Empty(t, ctrl.Transcript())

	require.NoError(t, ctrl.RequestConnectByBookmark(context.Background(), key))
	assert.Equal(t, StateActive, ctrl.State())
	p, ok := ctrl.Profile()
	require.True(t, ok)
	assert.Equal(t, srv.Port(), p.Port)
	assert.Equal(t, []State{StateConnecting, StateActive, StateIdle, StateConnecting, StateActive}, events.stateList())
}

func TestController_EndToEndRemoteClose(t *testing.T) {
	srv := telnettest.NewServer(t, func(c *telnettest.Conn) {
		_ = c.Send("bye\r\n")
		c.Close()
	})
	events := &recorder{}
	ctrl := New(TelnetOpener(telnet.Options{}), nil, events, Options{PollInterval: 10 * time.Millisecond})
	t.Cleanup(ctrl.RequestDisconnect)

	require.NoError(t, ctrl.RequestConnect(context.Background(), srv.Profile("", ""), false))

	require.Eventually(t, func() bool { return ctrl.State() == StateIdle }, telnettest.DefaultTimeout, 10*time.Millisecond)
	assert.Contains(t, events.outputText(), "bye")
	events.mu.Lock()
	assert.Equal(t, []string{"connection closed by remote host"}, events.errors)
	events.mu.Unlock()
}
