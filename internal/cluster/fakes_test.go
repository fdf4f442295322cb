package cluster

import (
	"context"
	"sync"
	"time"

	"dxcluster/internal/apperr"
	"dxcluster/internal/models"
)

type pollResult struct {
	text string
	err  error
}

type fakeSession struct {
	mu      sync.Mutex
	sent    []string
	polls   []pollResult
	sendErr error
	closed  int
}

func (s *fakeSession) Send(line string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.sendErr != nil {
		return s.sendErr
	}
	s.sent = append(s.sent, line)
	return nil
}

func (s *fakeSession) Poll() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.polls) == 0 {
		return "", nil
	}
	r := s.polls[0]
	s.polls = s.polls[1:]
	return r.text, r.err
}

func (s *fakeSession) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed++
	return nil
}

func (s *fakeSession) queue(text string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.polls = append(s.polls, pollResult{text: text, err: err})
}

// fakeOpener hands out sessions in order and records the profiles it saw.
type fakeOpener struct {
	mu       sync.Mutex
	profiles []models.Profile
	sessions []*fakeSession
	err      error
}

func (o *fakeOpener) open(_ context.Context, p models.Profile) (Session, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.profiles = append(o.profiles, p)
	if o.err != nil {
		return nil, o.err
	}
	s := &fakeSession{}
	o.sessions = append(o.sessions, s)
	return s, nil
}

func (o *fakeOpener) calls() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return len(o.profiles)
}

func (o *fakeOpener) last() *fakeSession {
	o.mu.Lock()
	defer o.mu.Unlock()
	if len(o.sessions) == 0 {
		return nil
	}
	return o.sessions[len(o.sessions)-1]
}

type fakeStore struct {
	keys     []string
	profiles map[string]models.Profile
	putErr   error
}

func newFakeStore() *fakeStore {
	return &fakeStore{profiles: make(map[string]models.Profile)}
}

func (s *fakeStore) Load() ([]string, bool, error) {
	if len(s.keys) == 0 {
		return nil, false, nil
	}
	return append([]string(nil), s.keys...), true, nil
}

func (s *fakeStore) Get(key string) (models.Profile, error) {
	p, ok := s.profiles[key]
	if !ok {
		return models.Profile{}, apperr.New(apperr.NotFoundError, "bookmark not found", nil)
	}
	return p, nil
}

func (s *fakeStore) Put(p models.Profile) (string, error) {
	if s.putErr != nil {
		return "", s.putErr
	}
	key := p.Identity()
	if _, ok := s.profiles[key]; !ok {
		s.keys = append(s.keys, key)
	}
	s.profiles[key] = p
	return key, nil
}

// manualScheduler records jobs; tests fire them explicitly.
type manualScheduler struct {
	mu   sync.Mutex
	jobs []*manualTimer
}

type manualTimer struct {
	interval time.Duration
	fn       func()
	stopped  bool
}

func (t *manualTimer) Stop() { t.stopped = true }

func (s *manualScheduler) Every(interval time.Duration, fn func()) Timer {
	s.mu.Lock()
	defer s.mu.Unlock()
	t := &manualTimer{interval: interval, fn: fn}
	s.jobs = append(s.jobs, t)
	return t
}

func (s *manualScheduler) job(i int) *manualTimer {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.jobs[i]
}

// recorder captures every event in order.
type recorder struct {
	mu        sync.Mutex
	output    []string
	states    []State
	errors    []string
	bookmarks [][]string
	warnings  []string
}

func (r *recorder) OnOutputText(chunk string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.output = append(r.output, chunk)
}

func (r *recorder) OnStateChanged(state State) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.states = append(r.states, state)
}

func (r *recorder) OnConnectError(message string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.errors = append(r.errors, message)
}

func (r *recorder) OnBookmarksChanged(keys []string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.bookmarks = append(r.bookmarks, keys)
}

func (r *recorder) OnWarning(message string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.warnings = append(r.warnings, message)
}

func (r *recorder) outputText() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out string
	for _, chunk := range r.output {
		out += chunk
	}
	return out
}

func (r *recorder) stateList() []State {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]State(nil), r.states...)
}
