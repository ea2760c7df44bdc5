package authsession

import (
	"context"
	"errors"
	"sort"
	"sync"
	"testing"
	"time"
)

var testEpoch = time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC)

/*
====================================
MANUAL CLOCK
====================================
*/

// manualClock only fires timers from Advance, never from AfterFunc, so callbacks can
// take the Manager lock.
type manualClock struct {
	mu     sync.Mutex
	now    time.Time
	timers []*manualTimer
}

type manualTimer struct {
	clock   *manualClock
	at      time.Time
	fn      func()
	stopped bool
	fired   bool
}

func newManualClock(now time.Time) *manualClock {
	return &manualClock{now: now}
}

func (c *manualClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *manualClock) AfterFunc(d time.Duration, f func()) Timer {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := &manualTimer{clock: c, at: c.now.Add(d), fn: f}
	c.timers = append(c.timers, t)
	return t
}

// Advance moves time forward and runs every due callback in deadline order.
func (c *manualClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	var due []*manualTimer
	pending := c.timers[:0]
	for _, t := range c.timers {
		switch {
		case t.stopped || t.fired:
		case !t.at.After(c.now):
			t.fired = true
			due = append(due, t)
		default:
			pending = append(pending, t)
		}
	}
	c.timers = pending
	c.mu.Unlock()

	sort.Slice(due, func(i, j int) bool { return due[i].at.Before(due[j].at) })
	for _, t := range due {
		t.fn()
	}
}

// Pending reports timers that are neither stopped nor fired.
func (c *manualClock) Pending() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for _, t := range c.timers {
		if !t.stopped && !t.fired {
			n++
		}
	}
	return n
}

func (t *manualTimer) Stop() bool {
	t.clock.mu.Lock()
	defer t.clock.mu.Unlock()
	if t.stopped || t.fired {
		return false
	}
	t.stopped = true
	return true
}

/*
====================================
FAKE TRANSPORT
====================================
*/

type fakeTransport struct {
	mu        sync.Mutex
	loginRes  *LoginResult
	loginErr  error
	signupRes *SignupResult
	signupErr error
	logins    int
	signups   int
	lastCreds Credentials
}

func (f *fakeTransport) SignUp(_ context.Context, creds Credentials) (*SignupResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.signups++
	f.lastCreds = creds
	if f.signupErr != nil {
		return nil, f.signupErr
	}
	if f.signupRes == nil {
		return &SignupResult{UserName: creds.UserName}, nil
	}
	res := *f.signupRes
	return &res, nil
}

func (f *fakeTransport) Login(_ context.Context, creds Credentials) (*LoginResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.logins++
	f.lastCreds = creds
	if f.loginErr != nil {
		return nil, f.loginErr
	}
	if f.loginRes == nil {
		return nil, nil
	}
	res := *f.loginRes
	return &res, nil
}

func (f *fakeTransport) setLogin(res *LoginResult, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.loginRes = res
	f.loginErr = err
}

func okLogin(token string, expiresIn int64) *LoginResult {
	return &LoginResult{User: "alice", Token: token, ExpiresIn: expiresIn, UserID: "u1"}
}

/*
====================================
STORE WITH FAULT INJECTION
====================================
*/

var errDiskFull = errors.New("disk full")

type memStore struct {
	mu         sync.Mutex
	data       map[string]string
	failSet    bool
	failRemove bool
	failGet    bool

	// cancel runs after cancelAfterSets successful writes.
	cancel          context.CancelFunc
	cancelAfterSets int
	sets            int
}

func newMemStore() *memStore {
	return &memStore{data: map[string]string{}}
}

func (s *memStore) Get(ctx context.Context, key string) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := ctx.Err(); err != nil {
		return "", false, err
	}
	if s.failGet {
		return "", false, errDiskFull
	}
	v, ok := s.data[key]
	return v, ok, nil
}

func (s *memStore) Set(ctx context.Context, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := ctx.Err(); err != nil {
		return err
	}
	if s.failSet {
		return errDiskFull
	}
	s.data[key] = value
	s.sets++
	if s.cancel != nil && s.sets == s.cancelAfterSets {
		s.cancel()
	}
	return nil
}

func (s *memStore) Remove(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := ctx.Err(); err != nil {
		return err
	}
	if s.failRemove {
		return errDiskFull
	}
	delete(s.data, key)
	return nil
}

func (s *memStore) value(key string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.data[key]
	return v, ok
}

func (s *memStore) size() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.data)
}

func (s *memStore) seed(token, expiration, userID, userName string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[KeyToken] = token
	s.data[KeyExpiration] = expiration
	s.data[KeyUserID] = userID
	s.data[KeyUserName] = userName
}

/*
====================================
NAVIGATION RECORDER
====================================
*/

type navRecorder struct {
	mu     sync.Mutex
	routes []string
}

func (n *navRecorder) Navigate(route string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.routes = append(n.routes, route)
}

func (n *navRecorder) count() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.routes)
}

/*
====================================
HARNESS
====================================
*/

type harness struct {
	m         *Manager
	clock     *manualClock
	transport *fakeTransport
	store     *memStore
	nav       *navRecorder
	status    *Subscription
}

func newHarness(t *testing.T, mutate ...func(*Config)) *harness {
	t.Helper()

	cfg := DefaultConfig()
	cfg.Metrics.Enabled = true
	for _, fn := range mutate {
		fn(&cfg)
	}

	h := &harness{
		clock:     newManualClock(testEpoch),
		transport: &fakeTransport{},
		store:     newMemStore(),
		nav:       &navRecorder{},
	}
	m, err := New().
		WithConfig(cfg).
		WithTransport(h.transport).
		WithStore(h.store).
		WithNavigator(h.nav).
		WithClock(h.clock).
		Build()
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	h.m = m
	h.status = m.AuthStatusListener()
	t.Cleanup(m.Close)
	return h
}

func (h *harness) login(t *testing.T, token string, expiresIn int64) {
	t.Helper()
	h.transport.setLogin(okLogin(token, expiresIn), nil)
	if err := h.m.Login(context.Background(), "alice", "alice@example.com", "pw"); err != nil {
		t.Fatalf("Login failed: %v", err)
	}
}

func expectStatus(t *testing.T, sub *Subscription, want bool) {
	t.Helper()
	select {
	case got, ok := <-sub.C():
		if !ok {
			t.Fatalf("status channel closed, expected %v", want)
		}
		if got != want {
			t.Fatalf("expected status %v, got %v", want, got)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("timed out waiting for status %v", want)
	}
}

func expectNoStatus(t *testing.T, sub *Subscription) {
	t.Helper()
	select {
	case got, ok := <-sub.C():
		if ok {
			t.Fatalf("unexpected status %v", got)
		}
	case <-time.After(50 * time.Millisecond):
	}
}
