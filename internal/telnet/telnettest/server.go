// Package telnettest provides a loopback cluster server for tests.
package telnettest

import (
	"bufio"
	"net"
	"strings"
	"sync"
	"testing"
	"time"

	"dxcluster/internal/models"
)

// DefaultTimeout bounds every blocking helper in this package.
const DefaultTimeout = 5 * time.Second

// Server accepts connections on 127.0.0.1. With a nil handler, accepted
// connections are queued for Accept; otherwise each one is passed to the
// handler on its own goroutine.
type Server struct {
	ln      net.Listener
	handler func(*Conn)
	conns   chan *Conn

	mu     sync.Mutex
	open   []*Conn
	closed bool
	wg     sync.WaitGroup
}

// NewServer starts a server that is shut down when the test ends.
func NewServer(t testing.TB, handler func(*Conn)) *Server {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("telnettest: listen: %v", err)
	}
	s := &Server{
		ln:      ln,
		handler: handler,
		conns:   make(chan *Conn, 16),
	}
	s.wg.Add(1)
	go s.serve()
	t.Cleanup(s.Close)
	return s
}

func (s *Server) serve() {
	defer s.wg.Done()
	for {
		nc, err := s.ln.Accept()
		if err != nil {
			return
		}
		c := &Conn{Conn: nc, r: bufio.NewReader(nc)}

		s.mu.Lock()
		if s.closed {
			s.mu.Unlock()
			nc.Close()
			return
		}
		s.open = append(s.open, c)
		s.mu.Unlock()

		if s.handler != nil {
			s.wg.Add(1)
			go func() {
				defer s.wg.Done()
				s.handler(c)
			}()
			continue
		}
		s.conns <- c
	}
}

// Addr returns the listening address.
func (s *Server) Addr() string {
	return s.ln.Addr().String()
}

// Port returns the listening port.
func (s *Server) Port() int {
	return s.ln.Addr().(*net.TCPAddr).Port
}

// Profile returns a profile pointing at the server with the given
// credentials.
func (s *Server) Profile(username, password string) models.Profile {
	return models.Profile{
		Host:     "127.0.0.1",
		Port:     s.Port(),
		Username: username,
		Password: password,
	}
}

// Accept returns the next queued connection, or nil after DefaultTimeout.
func (s *Server) Accept() *Conn {
	select {
	case c := <-s.conns:
		return c
	case <-time.After(DefaultTimeout):
		return nil
	}
}

// Close stops accepting and closes every connection.
func (s *Server) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	open := s.open
	s.open = nil
	s.mu.Unlock()

	s.ln.Close()
	for _, c := range open {
		c.Close()
	}
	s.wg.Wait()
}

// Conn is the server side of one client connection.
type Conn struct {
	net.Conn
	r *bufio.Reader
}

// Send writes text to the client.
func (c *Conn) Send(text string) error {
	return c.SendBytes([]byte(text))
}

// SendBytes writes raw bytes to the client.
func (c *Conn) SendBytes(b []byte) error {
	_ = c.SetWriteDeadline(time.Now().Add(DefaultTimeout))
	_, err := c.Write(b)
	return err
}

// ReadLine reads one line sent by the client, without the trailing newline.
func (c *Conn) ReadLine() (string, error) {
	_ = c.SetReadDeadline(time.Now().Add(DefaultTimeout))
	line, err := c.r.ReadString('\n')
	return strings.TrimRight(line, "\r\n"), err
}

// ReadBytes reads exactly n bytes sent by the client.
func (c *Conn) ReadBytes(n int) ([]byte, error) {
	_ = c.SetReadDeadline(time.Now().Add(DefaultTimeout))
	buf := make([]byte, n)
	read := 0
	for read < n {
		m, err := c.r.Read(buf[read:])
		read += m
		if err != nil {
			return buf[:read], err
		}
	}
	return buf, nil
}

// Login plays the server side of the handshake and returns the credentials
// the client sent. An empty password prompt is skipped.
func (c *Conn) Login(askPassword bool) (username, password string, err error) {
	if err := c.Send("Welcome to the test cluster\r\nlogin: "); err != nil {
		return "", "", err
	}
	username, err = c.ReadLine()
	if err != nil || !askPassword {
		return username, "", err
	}
	if err := c.Send("password: "); err != nil {
		return username, "", err
	}
	password, err = c.ReadLine()
	return username, password, err
}
