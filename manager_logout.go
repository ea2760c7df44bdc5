package authsession

import (
	"context"

	"go.uber.org/zap"
)

type logoutOutcome struct {
	reason   LogoutReason
	wasAuth  bool
	userID   string
	userName string
	err      error
}

// Logout ends the session: it cancels the expiry timer, clears the in-memory fields and
// the persisted record, publishes false and navigates home.
//
// Logout is idempotent. On an already logged-out session the store is cleared and
// navigation repeats, but false is not published a second time. A store removal
// failure is returned (wrapping ErrStoreUnavailable) after the in-memory teardown.
func (m *Manager) Logout(ctx context.Context) error {
	return m.logoutWithReason(ctx, LogoutUser)
}

// Invalidate logs the session out because the backend rejected its token, for example
// with a 401 on an API call. It behaves like Logout otherwise.
func (m *Manager) Invalidate(ctx context.Context) error {
	return m.logoutWithReason(ctx, LogoutUnauthorized)
}

func (m *Manager) logoutWithReason(ctx context.Context, reason LogoutReason) error {
	if m == nil {
		return ErrManagerNotReady
	}

	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return ErrManagerClosed
	}
	out := m.logoutLocked(ctx, reason)
	m.mu.Unlock()

	m.finishLogout(ctx, out)
	return out.err
}

// logoutLocked performs every state change of a logout; the caller must hold m.mu and
// call finishLogout after releasing it.
func (m *Manager) logoutLocked(ctx context.Context, reason LogoutReason) logoutOutcome {
	out := logoutOutcome{
		reason:   reason,
		wasAuth:  m.isAuthenticated,
		userID:   m.userID,
		userName: m.userName,
	}

	m.stopTimerLocked()
	m.clearLocked()
	// the record goes even when the caller's context is already done
	out.err = m.records.clear(context.WithoutCancel(ctx))

	if out.wasAuth {
		m.publishLocked(false)
	}
	return out
}

// finishLogout runs the side effects of a logout that must not hold the lock.
func (m *Manager) finishLogout(ctx context.Context, out logoutOutcome) {
	m.metricInc(MetricLogout)
	if out.err != nil {
		m.metricInc(MetricStoreFailure)
		m.logger.Error("authsession: clearing persisted session failed",
			zap.String("reason", string(out.reason)),
			zap.Error(out.err),
		)
	}

	if out.wasAuth {
		m.logger.Info("authsession: logged out",
			zap.String("user_id", out.userID),
			zap.String("reason", string(out.reason)),
		)
		eventType := AuditLogout
		if out.reason == LogoutExpired {
			eventType = AuditSessionExpired
		}
		event := AuditEvent{
			EventType: eventType,
			UserID:    out.userID,
			UserName:  out.userName,
			Success:   out.err == nil,
			Metadata:  map[string]string{"reason": string(out.reason)},
		}
		if out.err != nil {
			event.Error = out.err.Error()
		}
		m.emitAudit(ctx, event)
	}

	m.navigateHome()
}
