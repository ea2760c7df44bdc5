package authsession

import (
	"context"
	"errors"
	"fmt"

	"github.com/MrEthical07/authsession/internal/flows"
	"go.uber.org/zap"
)

// CreateAccount sends a signup request. Success navigates home but does not log the
// user in. Failure publishes false, leaves the session untouched and returns an error
// wrapping ErrTransportFailure.
func (m *Manager) CreateAccount(ctx context.Context, userName, email, password string) error {
	if m == nil {
		return ErrManagerNotReady
	}
	if m.isClosed() {
		return ErrManagerClosed
	}

	res, err := m.transport.SignUp(ctx, Credentials{UserName: userName, Email: email, Password: password})
	if err != nil {
		m.mu.Lock()
		m.publishLocked(false)
		m.mu.Unlock()

		m.metricInc(MetricSignupFailure)
		m.logger.Warn("authsession: signup failed", zap.String("user_name", userName), zap.Error(err))
		m.emitAudit(ctx, AuditEvent{EventType: AuditSignup, UserName: userName, Success: false, Error: err.Error()})
		return fmt.Errorf("%w: %w", ErrTransportFailure, err)
	}

	event := AuditEvent{EventType: AuditSignup, UserName: userName, Success: true}
	if res != nil {
		event.UserID = res.UserID
	}
	m.metricInc(MetricSignupSuccess)
	m.logger.Info("authsession: account created", zap.String("user_name", userName))
	m.emitAudit(ctx, event)
	m.navigateHome()
	return nil
}

// Login sends a login request and, on success, authenticates the session: it sets the
// in-memory fields, arms the expiry timer, persists the record, publishes true and
// navigates home.
//
// A transport failure publishes false and returns an error wrapping
// ErrTransportFailure. A response without a token (or without a positive lifetime)
// changes nothing and returns ErrIncompleteResponse. A failed durable write logs the
// session out again and returns an error wrapping ErrStoreUnavailable.
//
// A non-positive expiresIn is not a zero-second session: the token's exp claim is used
// when Expiry.UseTokenExpiry allows it, otherwise the response counts as incomplete.
// An expiresIn too large for a time.Duration saturates instead of wrapping.
func (m *Manager) Login(ctx context.Context, userName, email, password string) error {
	if m == nil {
		return ErrManagerNotReady
	}
	if m.isClosed() {
		return ErrManagerClosed
	}

	start := m.clock.Now()
	res, err := m.transport.Login(ctx, Credentials{UserName: userName, Email: email, Password: password})
	if m.metrics.LatencyEnabled() {
		m.metrics.Observe(MetricLoginLatency, m.clock.Now().Sub(start))
	}
	if err != nil {
		m.mu.Lock()
		m.publishLocked(false)
		m.mu.Unlock()

		m.metricInc(MetricLoginFailure)
		m.logger.Warn("authsession: login failed", zap.String("user_name", userName), zap.Error(err))
		m.emitAudit(ctx, AuditEvent{EventType: AuditLogin, UserName: userName, Success: false, Error: err.Error()})
		return fmt.Errorf("%w: %w", ErrTransportFailure, err)
	}
	if res == nil {
		res = &LoginResult{}
	}

	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return ErrManagerClosed
	}

	plan, err := flows.PlanLogin(m.clock.Now(), flows.LoginResponse{
		Token:     res.Token,
		ExpiresIn: res.ExpiresIn,
	}, m.deps.Login)
	if err != nil {
		m.mu.Unlock()

		m.metricInc(MetricLoginIncomplete)
		m.logger.Warn("authsession: login response ignored",
			zap.String("user_name", userName),
			zap.Bool("has_token", res.Token != ""),
			zap.Int64("expires_in", res.ExpiresIn),
			zap.Error(err),
		)
		return fmt.Errorf("%w: %v", ErrIncompleteResponse, err)
	}

	m.token = res.Token
	m.userID = res.UserID
	m.userName = res.User
	m.isAuthenticated = true
	m.expiresAt = plan.ExpiresAt
	m.armTimerLocked(plan.Lifetime)

	rec := SessionRecord{
		Token:          m.token,
		UserID:         m.userID,
		UserName:       m.userName,
		ExpirationDate: plan.ExpiresAt,
	}
	if err := m.records.save(ctx, rec); err != nil {
		out := m.logoutLocked(ctx, LogoutStoreFailure)
		m.mu.Unlock()

		m.metricInc(MetricStoreFailure)
		m.logger.Error("authsession: persisting session failed", zap.String("user_id", rec.UserID), zap.Error(err))
		m.finishLogout(ctx, out)
		return errors.Join(err, out.err)
	}

	m.publishLocked(true)
	m.mu.Unlock()

	m.metricInc(MetricLoginSuccess)
	m.logger.Info("authsession: logged in",
		zap.String("user_id", rec.UserID),
		zap.Time("expires_at", plan.ExpiresAt),
		zap.Bool("lifetime_from_token", plan.FromToken),
	)
	m.emitAudit(ctx, AuditEvent{
		EventType: AuditLogin,
		UserID:    rec.UserID,
		UserName:  rec.UserName,
		Success:   true,
		Metadata:  map[string]string{"expires_at": FormatExpiration(plan.ExpiresAt)},
	})
	m.navigateHome()
	return nil
}

func (m *Manager) isClosed() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.closed
}
