// Package cluster sequences user actions against a single cluster session:
// connect (directly or through a bookmark), disconnect, send and the
// recurring poll that republishes server output.
package cluster

import (
	"context"
	"log/slog"
	"sync"
	"time"
	"unicode/utf8"

	"dxcluster/internal/apperr"
	"dxcluster/internal/models"
	"dxcluster/internal/telnet"
)

const (
	DefaultPollInterval = time.Second
	maxTranscript       = 256 << 10
)

// State is the controller lifecycle: Idle → Connecting → Active → Idle.
type State int

const (
	StateIdle State = iota
	StateConnecting
	StateActive
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateConnecting:
		return "connecting"
	case StateActive:
		return "active"
	default:
		return "unknown"
	}
}

// Session is the part of a telnet session the controller drives.
type Session interface {
	Send(line string) error
	Poll() (string, error)
	Close() error
}

// Opener opens and authenticates a session for p.
type Opener func(ctx context.Context, p models.Profile) (Session, error)

// TelnetOpener opens sessions with telnet.Open.
func TelnetOpener(opts telnet.Options) Opener {
	return func(ctx context.Context, p models.Profile) (Session, error) {
		s, err := telnet.Open(ctx, p, opts)
		if err != nil {
			return nil, err
		}
		return s, nil
	}
}

// BookmarkStore persists profiles under their identity key.
type BookmarkStore interface {
	Load() (keys []string, found bool, err error)
	Get(key string) (models.Profile, error)
	Put(p models.Profile) (string, error)
}

type Options struct {
	PollInterval time.Duration
	Scheduler    Scheduler
	Logger       *slog.Logger
}

// Controller owns the single active session. All state is guarded by mu,
// including listener callbacks.
type Controller struct {
	mu       sync.Mutex
	opener   Opener
	store    BookmarkStore
	listener Listener
	interval time.Duration
	sched    Scheduler
	logger   *slog.Logger

	state      State
	session    Session
	profile    models.Profile
	timer      Timer
	cancel     context.CancelFunc
	generation uint64
	transcript []byte
}

// New creates an idle controller. A nil listener discards events.
func New(opener Opener, store BookmarkStore, listener Listener, opts Options) *Controller {
	if listener == nil {
		listener = NopListener{}
	}
	if opts.PollInterval <= 0 {
		opts.PollInterval = DefaultPollInterval
	}
	if opts.Scheduler == nil {
		opts.Scheduler = TickerScheduler{}
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Controller{
		opener:   opener,
		store:    store,
		listener: listener,
		interval: opts.PollInterval,
		sched:    opts.Scheduler,
		logger:   logger.With("component", "cluster"),
	}
}

// RequestConnect validates p, optionally saves it as a bookmark and opens a
// session. An already active session is closed first. Failures after
// validation are also reported through OnConnectError.
func (c *Controller) RequestConnect(ctx context.Context, p models.Profile, save bool) error {
	if err := p.Validate(); err != nil {
		return err
	}
	p = p.WithDefaults()

	c.mu.Lock()
	if c.state == StateConnecting {
		c.mu.Unlock()
		err := apperr.New(apperr.ConnectError, "connection attempt already in progress", nil)
		c.reportConnectError(err)
		return err
	}

	if save {
		c.saveLocked(p)
	}
	if c.state == StateActive {
		c.logger.Info("closing active session before new connect", "profile", c.profile.String())
		c.teardownLocked()
	}

	ctx, cancel := context.WithCancel(ctx)
	c.generation++
	gen := c.generation
	c.cancel = cancel
	c.profile = p
	c.setStateLocked(StateConnecting)
	c.mu.Unlock()

	c.logger.Info("connecting", "profile", p.String())
	sess, err := c.opener(ctx, p)

	c.mu.Lock()
	defer c.mu.Unlock()
	cancel()

	if gen != c.generation {
		// Disconnected or superseded while the attempt was in flight.
		if sess != nil {
			sess.Close()
		}
		return apperr.New(apperr.ConnectError, "connection attempt cancelled", context.Canceled)
	}
	c.cancel = nil

	if err != nil {
		c.logger.Warn("connect failed", "profile", p.String(), "error", err)
		c.profile = models.Profile{}
		c.setStateLocked(StateIdle)
		c.listener.OnConnectError(apperr.Reason(err))
		return err
	}

	c.session = sess
	c.transcript = c.transcript[:0]
	c.setStateLocked(StateActive)
	c.timer = c.sched.Every(c.interval, func() { c.pollGeneration(gen) })
	c.logger.Info("connected", "profile", p.String())
	return nil
}

// RequestConnectByBookmark resolves key and connects without re-saving.
func (c *Controller) RequestConnectByBookmark(ctx context.Context, key string) error {
	if c.store == nil {
		err := apperr.New(apperr.NotFoundError, "bookmark not found", nil)
		c.reportConnectError(err)
		return err
	}

	p, err := c.store.Get(key)
	if err != nil {
		c.logger.Warn("bookmark lookup failed", "key", key, "error", err)
		c.reportConnectError(err)
		return err
	}
	if err := p.Validate(); err != nil {
		c.logger.Warn("bookmark is not usable", "key", key, "error", err)
		c.reportConnectError(err)
		return err
	}
	return c.RequestConnect(ctx, p, false)
}

// RequestDisconnect stops polling, closes the session and clears the
// transcript. It cancels an attempt that is still connecting. No output is
// delivered after it returns.
func (c *Controller) RequestDisconnect() {
	c.mu.Lock()
	defer c.mu.Unlock()

	switch c.state {
	case StateIdle:
		return
	case StateConnecting:
		c.logger.Info("cancelling connect", "profile", c.profile.String())
	default:
		c.logger.Info("disconnecting", "profile", c.profile.String())
	}
	c.teardownLocked()
}

// RequestSend forwards line to the active session. It reports false when
// nothing was sent.
func (c *Controller) RequestSend(line string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state != StateActive || c.session == nil {
		return false
	}
	if err := c.session.Send(line); err != nil {
		c.logger.Warn("send failed", "profile", c.profile.String(), "error", err)
		c.teardownLocked()
		c.listener.OnConnectError(apperr.Reason(err))
		return false
	}
	return true
}

// Poll drains the active session once. It is what the scheduler runs on
// every tick.
func (c *Controller) Poll() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.pollLocked()
}

func (c *Controller) pollGeneration(gen uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if gen != c.generation {
		return
	}
	c.pollLocked()
}

func (c *Controller) pollLocked() {
	if c.state != StateActive || c.session == nil {
		return
	}

	text, err := c.session.Poll()
	if text != "" {
		c.appendTranscript(text)
		c.listener.OnOutputText(text)
	}
	if err != nil {
		c.logger.Warn("session lost", "profile", c.profile.String(), "error", err)
		c.teardownLocked()
		c.listener.OnConnectError(apperr.Reason(err))
	}
}

// Bookmarks reloads the bookmark keys and publishes them.
func (c *Controller) Bookmarks() ([]string, error) {
	if c.store == nil {
		return nil, nil
	}

	keys, _, err := c.store.Load()
	if err != nil {
		c.logger.Warn("could not load bookmarks", "error", err)
		return nil, err
	}

	c.mu.Lock()
	c.listener.OnBookmarksChanged(keys)
	c.mu.Unlock()
	return keys, nil
}

func (c *Controller) CanConnect() bool {
	return c.State() == StateIdle
}

func (c *Controller) CanDisconnect() bool {
	return c.State() == StateActive
}

func (c *Controller) CanSend() bool {
	return c.State() == StateActive
}

func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Profile returns the profile of the current or pending session.
func (c *Controller) Profile() (models.Profile, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.profile, c.state != StateIdle
}

// Transcript returns the most recent output of the current session.
func (c *Controller) Transcript() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return string(c.transcript)
}

func (c *Controller) saveLocked(p models.Profile) {
	if c.store == nil {
		return
	}

	key, err := c.store.Put(p)
	if err != nil {
		c.logger.Warn("bookmark not saved", "profile", p.String(), "error", err)
		c.listener.OnWarning("bookmark not saved: " + apperr.Reason(err))
		return
	}
	c.logger.Info("bookmark saved", "key", key)

	keys, _, err := c.store.Load()
	if err != nil {
		c.logger.Warn("could not reload bookmarks", "error", err)
		return
	}
	c.listener.OnBookmarksChanged(keys)
}

// teardownLocked returns the controller to Idle from any state. Bumping the
// generation makes pending ticks and in-flight connects stale.
func (c *Controller) teardownLocked() {
	c.generation++

	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
	if c.cancel != nil {
		c.cancel()
		c.cancel = nil
	}
	if c.session != nil {
		if err := c.session.Close(); err != nil {
			c.logger.Debug("close failed", "error", err)
		}
		c.session = nil
	}

	c.transcript = c.transcript[:0]
	c.profile = models.Profile{}
	c.setStateLocked(StateIdle)
}

func (c *Controller) setStateLocked(s State) {
	if c.state == s {
		return
	}
	c.state = s
	c.listener.OnStateChanged(s)
}

func (c *Controller) reportConnectError(err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.listener.OnConnectError(apperr.Reason(err))
}

func (c *Controller) appendTranscript(text string) {
	c.transcript = append(c.transcript, text...)
	if over := len(c.transcript) - maxTranscript; over > 0 {
		for over < len(c.transcript) && !utf8.RuneStart(c.transcript[over]) {
			over++
		}
		c.transcript = append(c.transcript[:0], c.transcript[over:]...)
	}
}
