package authsession

import (
	"context"
	"sync"
	"time"

	"github.com/MrEthical07/authsession/internal/flows"
	"go.uber.org/zap"
)

// Manager owns the client-side session state machine.
//
// All transitions (login, restore, logout, expiry) run under one lock, so status values
// are published in the order the transitions happen. Backend requests run outside the
// lock: two overlapping Login calls are not coordinated and the one that completes last
// decides the final session and timer.
type Manager struct {
	config    Config
	transport CredentialTransport
	records   *recordStore
	navigator Navigator
	clock     Clock
	logger    *zap.Logger
	status    *StatusBroadcaster
	audit     *auditDispatcher
	metrics   *Metrics
	deps      flows.Deps

	mu              sync.Mutex
	token           string
	userID          string
	userName        string
	isAuthenticated bool
	expiresAt       time.Time
	timer           Timer
	timerGen        uint64
	closed          bool
}

// Token returns the current session token, or "" when unauthenticated.
func (m *Manager) Token() string {
	if m == nil {
		return ""
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.token
}

// IsAuth reports whether the session is authenticated.
func (m *Manager) IsAuth() bool {
	if m == nil {
		return false
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.isAuthenticated
}

// UserID returns the authenticated user id, or "".
func (m *Manager) UserID() string {
	if m == nil {
		return ""
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.userID
}

// UserName returns the authenticated user name, or "".
func (m *Manager) UserName() string {
	if m == nil {
		return ""
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.userName
}

// ExpiresAt returns the absolute expiry of the session, or the zero time.
func (m *Manager) ExpiresAt() time.Time {
	if m == nil {
		return time.Time{}
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.expiresAt
}

// Session returns a consistent copy of every session field.
func (m *Manager) Session() SessionInfo {
	if m == nil {
		return SessionInfo{}
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return SessionInfo{
		Token:           m.token,
		UserID:          m.userID,
		UserName:        m.userName,
		IsAuthenticated: m.isAuthenticated,
		ExpiresAt:       m.expiresAt,
	}
}

// AuthStatusListener subscribes to authentication status changes. Values published
// before the call are not replayed; read IsAuth for the current state. Close the
// subscription when done.
func (m *Manager) AuthStatusListener() *Subscription {
	return m.status.Subscribe()
}

// OnAuthStatus calls fn with every status value published after registration, from a
// dedicated goroutine. The returned function unregisters fn.
func (m *Manager) OnAuthStatus(fn func(authenticated bool)) (cancel func()) {
	sub := m.status.Subscribe()
	go func() {
		for v := range sub.C() {
			fn(v)
		}
	}()
	return sub.Close
}

// Close stops the expiry timer and background dispatchers. The session is neither
// logged out nor removed from the durable store. Close is idempotent.
func (m *Manager) Close() {
	if m == nil {
		return
	}
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return
	}
	m.closed = true
	m.stopTimerLocked()
	m.mu.Unlock()

	m.status.Close()
	m.audit.Close()
}

// AuditDropped returns the number of audit events dropped under backpressure.
func (m *Manager) AuditDropped() uint64 {
	if m == nil || m.audit == nil {
		return 0
	}
	return m.audit.Dropped()
}

// MetricsSnapshot describes the metricssnapshot operation and its observable behavior.
//
// MetricsSnapshot does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (m *Manager) MetricsSnapshot() MetricsSnapshot {
	if m == nil || m.metrics == nil {
		return MetricsSnapshot{
			Counters:   map[MetricID]uint64{},
			Histograms: map[MetricID][]uint64{},
		}
	}
	return m.metrics.Snapshot()
}

func (m *Manager) metricInc(id MetricID) {
	if m == nil || m.metrics == nil {
		return
	}
	m.metrics.Inc(id)
}

func (m *Manager) emitAudit(ctx context.Context, event AuditEvent) {
	if m.audit == nil {
		return
	}
	event.Timestamp = m.clock.Now().UTC()
	m.audit.Emit(ctx, event)
}

// publishLocked must be called with m.mu held so publication order follows
// transition order.
func (m *Manager) publishLocked(authenticated bool) {
	m.status.Publish(authenticated)
	m.metricInc(MetricStatusPublished)
}

func (m *Manager) navigateHome() {
	route := m.config.Navigation.HomeRoute
	defer func() {
		if r := recover(); r != nil {
			m.logger.Error("authsession: navigator panicked",
				zap.String("route", route),
				zap.Any("panic", r),
			)
		}
	}()
	m.navigator.Navigate(route)
}

func (m *Manager) clearLocked() {
	m.token = ""
	m.userID = ""
	m.userName = ""
	m.isAuthenticated = false
	m.expiresAt = time.Time{}
}

/*
====================================
EXPIRY TIMER
====================================
*/

// armTimerLocked replaces any pending expiry timer with one firing after d.
func (m *Manager) armTimerLocked(d time.Duration) {
	m.stopTimerLocked()
	gen := m.timerGen
	m.timer = m.clock.AfterFunc(d, func() {
		m.expire(gen)
	})
	m.logger.Debug("authsession: expiry timer armed", zap.Duration("in", d))
}

// stopTimerLocked cancels the pending timer. Bumping the generation also defuses a
// callback that already fired and is waiting for the lock.
func (m *Manager) stopTimerLocked() {
	if m.timer != nil {
		m.timer.Stop()
		m.timer = nil
	}
	m.timerGen++
}

func (m *Manager) expire(gen uint64) {
	m.mu.Lock()
	if m.closed || gen != m.timerGen {
		m.mu.Unlock()
		return
	}
	m.timer = nil
	out := m.logoutLocked(context.Background(), LogoutExpired)
	m.mu.Unlock()

	m.metricInc(MetricSessionExpired)
	m.finishLogout(context.Background(), out)
}
