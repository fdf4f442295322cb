// Package telnet implements the client side of a plain-text cluster
// session: dial, optional login handshake, non-blocking drain of server
// output and line writes.
package telnet

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"os"
	"strings"
	"sync"
	"time"

	"dxcluster/internal/apperr"
	"dxcluster/internal/models"
)

// Prompts answered during the login handshake.
const (
	LoginPrompt    = "login: "
	PasswordPrompt = "password: "
)

const (
	readChunk     = 4096
	maxDrainBytes = 64 << 10
	// maxPromptScan bounds how much pre-prompt output is buffered while
	// waiting for a prompt.
	maxPromptScan = 64 << 10
	bell          = "\a"
)

// ErrNotConnected is returned by Send on a session that is not connected.
var ErrNotConnected = errors.New("telnet: not connected")

// State is the lifecycle state of a session.
type State int

const (
	StateDisconnected State = iota
	StateConnecting
	StateConnected
)

func (s State) String() string {
	switch s {
	case StateDisconnected:
		return "disconnected"
	case StateConnecting:
		return "connecting"
	case StateConnected:
		return "connected"
	default:
		return "unknown"
	}
}

// Dialer opens the transport connection. *net.Dialer satisfies it.
type Dialer interface {
	DialContext(ctx context.Context, network, address string) (net.Conn, error)
}

// Options tunes Open. Zero values select the defaults.
type Options struct {
	DialTimeout   time.Duration
	PromptTimeout time.Duration
	WriteTimeout  time.Duration
	// DrainWait is the read deadline used for each read inside Poll.
	DrainWait time.Duration
	Charset   string
	Dialer    Dialer
	Logger    *slog.Logger
}

func (o Options) withDefaults() Options {
	if o.DialTimeout <= 0 {
		o.DialTimeout = 10 * time.Second
	}
	if o.PromptTimeout <= 0 {
		o.PromptTimeout = 10 * time.Second
	}
	if o.WriteTimeout <= 0 {
		o.WriteTimeout = 5 * time.Second
	}
	if o.DrainWait <= 0 {
		o.DrainWait = 10 * time.Millisecond
	}
	if o.Dialer == nil {
		o.Dialer = &net.Dialer{}
	}
	if o.Logger == nil {
		o.Logger = slog.Default()
	}
	return o
}

// Session owns one transport connection. No other component reads from or
// writes to the connection.
type Session struct {
	mu      sync.Mutex
	conn    net.Conn
	state   State
	profile models.Profile
	opts    Options
	logger  *slog.Logger

	filter  commandFilter
	decoder *Decoder
	// pending holds bytes that arrived after the last handshake prompt.
	pending []byte
	buf     []byte
}

// Open connects to the server described by p and performs the optional
// handshake. The returned session is connected.
func Open(ctx context.Context, p models.Profile, opts Options) (*Session, error) {
	opts = opts.withDefaults()

	if strings.TrimSpace(p.Host) == "" {
		return nil, apperr.New(apperr.ConnectError, "empty host", nil)
	}
	p = p.WithDefaults()
	if !models.ValidPort(p.Port) {
		return nil, apperr.New(apperr.ConnectError, "invalid port", fmt.Errorf("%d out of range 1-65535", p.Port))
	}
	decoder, err := NewDecoder(opts.Charset)
	if err != nil {
		return nil, apperr.New(apperr.ValidationError, "unknown charset", err)
	}

	s := &Session{
		state:   StateConnecting,
		profile: p,
		opts:    opts,
		logger:  opts.Logger.With("component", "telnet", "server", p.Identity()),
		decoder: decoder,
		buf:     make([]byte, readChunk),
	}

	addr := p.Address()
	s.logger.Debug("attempting connection", "addr", addr)

	dialCtx, cancel := context.WithTimeout(ctx, opts.DialTimeout)
	defer cancel()
	conn, err := opts.Dialer.DialContext(dialCtx, "tcp", addr)
	if err != nil {
		s.state = StateDisconnected
		return nil, apperr.New(apperr.ConnectError, fmt.Sprintf("could not connect to %s", addr), err)
	}
	s.conn = conn

	if err := s.handshake(ctx); err != nil {
		s.closeLocked()
		return nil, err
	}

	s.state = StateConnected
	s.logger.Info("connected", "addr", addr)
	return s, nil
}

// handshake answers the login and password prompts. Each step only happens
// when its credential is present.
func (s *Session) handshake(ctx context.Context) error {
	if !s.profile.HasLogin() {
		return nil
	}

	stop := context.AfterFunc(ctx, func() {
		_ = s.conn.SetReadDeadline(time.Unix(1, 0))
	})
	defer stop()

	if err := s.expect(ctx, LoginPrompt); err != nil {
		return err
	}
	if err := s.writeLine(s.profile.Username); err != nil {
		return apperr.New(apperr.ConnectError, "could not send username", err)
	}
	s.logger.Debug("sent username")

	if s.profile.HasPassword() {
		if err := s.expect(ctx, PasswordPrompt); err != nil {
			return err
		}
		if err := s.writeLine(s.profile.Password); err != nil {
			return apperr.New(apperr.ConnectError, "could not send password", err)
		}
		s.logger.Debug("sent password")
	}

	return s.conn.SetReadDeadline(time.Time{})
}

// expect reads until prompt appears. Output before the prompt is dropped;
// output after it is kept for the first Poll.
func (s *Session) expect(ctx context.Context, prompt string) error {
	if err := ctx.Err(); err != nil {
		return apperr.New(apperr.ConnectError, "handshake cancelled", err)
	}
	if err := s.conn.SetReadDeadline(time.Now().Add(s.opts.PromptTimeout)); err != nil {
		return apperr.New(apperr.ConnectError, "handshake failed", err)
	}

	needle := []byte(prompt)
	acc := s.pending
	s.pending = nil
	for {
		if i := bytes.Index(acc, needle); i >= 0 {
			s.pending = append([]byte(nil), acc[i+len(needle):]...)
			return nil
		}
		if len(acc) > maxPromptScan {
			acc = append([]byte(nil), acc[len(acc)-len(needle):]...)
		}

		n, err := s.conn.Read(s.buf)
		if n > 0 {
			acc = append(acc, s.receive(s.buf[:n])...)
			continue
		}
		if err != nil {
			switch {
			case ctx.Err() != nil:
				return apperr.New(apperr.ConnectError, "handshake cancelled", ctx.Err())
			case isTimeout(err):
				return apperr.New(apperr.ConnectError, fmt.Sprintf("timed out waiting for %q", prompt), err)
			default:
				return apperr.New(apperr.ConnectError, fmt.Sprintf("connection closed while waiting for %q", prompt), err)
			}
		}
	}
}

// receive strips telnet commands from b and answers option requests.
func (s *Session) receive(b []byte) []byte {
	data, reply := s.filter.filter(b)
	if len(reply) > 0 {
		_ = s.conn.SetWriteDeadline(time.Now().Add(s.opts.WriteTimeout))
		if _, err := s.conn.Write(reply); err != nil {
			s.logger.Debug("could not refuse telnet options", "error", err)
		}
	}
	return data
}

func (s *Session) writeLine(line string) error {
	if err := s.conn.SetWriteDeadline(time.Now().Add(s.opts.WriteTimeout)); err != nil {
		return err
	}
	_, err := s.conn.Write([]byte(line + "\n"))
	return err
}

// Send writes line followed by a newline. It does not wait for a response.
func (s *Session) Send(line string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StateConnected {
		return ErrNotConnected
	}
	if err := s.writeLine(line); err != nil {
		return apperr.New(apperr.ConnectError, "could not send command", err)
	}
	return nil
}

// Poll drains the bytes already buffered by the transport and returns them
// as text with bell characters removed. It returns promptly even when
// nothing has arrived. When the server has closed the connection, the text
// received so far is returned together with a ConnectError and the session
// is disconnected.
func (s *Session) Poll() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StateConnected {
		return "", nil
	}

	raw := s.pending
	s.pending = nil
	var readErr error
	for len(raw) < maxDrainBytes {
		if err := s.conn.SetReadDeadline(time.Now().Add(s.opts.DrainWait)); err != nil {
			readErr = err
			break
		}
		n, err := s.conn.Read(s.buf)
		if n > 0 {
			raw = append(raw, s.receive(s.buf[:n])...)
		}
		if err != nil {
			if !isTimeout(err) {
				readErr = err
			}
			break
		}
		// A short read means the transport buffer is empty.
		if n < len(s.buf) {
			break
		}
	}

	text := stripBell(s.decoder.Decode(raw))
	if readErr != nil {
		text += s.decoder.Flush()
		s.logger.Info("connection closed by remote host", "error", readErr)
		s.closeLocked()
		return text, apperr.New(apperr.ConnectError, "connection closed by remote host", readErr)
	}
	return text, nil
}

// Close releases the connection. Closing a disconnected session is a no-op.
func (s *Session) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closeLocked()
}

func (s *Session) closeLocked() error {
	var err error
	if s.conn != nil {
		err = s.conn.Close()
		s.conn = nil
		s.logger.Debug("connection closed")
	}
	s.state = StateDisconnected
	s.pending = nil
	return err
}

// State returns the current session state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Profile returns the profile the session was opened with.
func (s *Session) Profile() models.Profile {
	return s.profile
}

func stripBell(s string) string {
	return strings.ReplaceAll(s, bell, "")
}

func isTimeout(err error) bool {
	if errors.Is(err, os.ErrDeadlineExceeded) {
		return true
	}
	var ne net.Error
	return errors.As(err, &ne) && ne.Timeout()
}
