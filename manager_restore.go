package authsession

import (
	"context"
	"errors"

	"github.com/MrEthical07/authsession/internal/flows"
	"go.uber.org/zap"
)

// RestoreSession rebuilds the session from the durable store; call it once at startup.
// No request is sent.
//
// Without a persisted record it does nothing. A record whose expiration is now or in
// the past (or does not parse) is stale: the session stays unauthenticated, nothing is
// published, and the record is left in the store unless Expiry.ClearStaleOnRestore is
// set. Otherwise the session is repopulated, the expiry timer is armed for the
// remaining lifetime and true is published.
func (m *Manager) RestoreSession(ctx context.Context) error {
	if m == nil {
		return ErrManagerNotReady
	}

	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return ErrManagerClosed
	}

	rec, err := m.records.load(ctx)
	if errors.Is(err, ErrSessionNotFound) {
		m.mu.Unlock()
		m.metricInc(MetricRestoreMissing)
		m.logger.Debug("authsession: no persisted session")
		return nil
	}
	if err != nil {
		m.mu.Unlock()
		m.metricInc(MetricStoreFailure)
		m.logger.Error("authsession: reading persisted session failed", zap.Error(err))
		m.emitAudit(ctx, AuditEvent{EventType: AuditRestore, Success: false, Error: err.Error()})
		return err
	}

	decision, remaining := flows.DecideRestore(m.clock.Now(), rec.ExpirationDate)
	if decision == flows.RestoreStale {
		var clearErr error
		if m.config.Expiry.ClearStaleOnRestore {
			clearErr = m.records.clear(context.WithoutCancel(ctx))
		}
		m.mu.Unlock()

		m.metricInc(MetricRestoreStale)
		if clearErr != nil {
			m.metricInc(MetricStoreFailure)
			m.logger.Error("authsession: clearing stale session failed", zap.Error(clearErr))
		}
		m.logger.Info("authsession: persisted session is stale",
			zap.String("user_id", rec.UserID),
			zap.String("expiration", rec.RawExpiration),
			zap.Bool("cleared", m.config.Expiry.ClearStaleOnRestore && clearErr == nil),
		)
		m.emitAudit(ctx, AuditEvent{
			EventType: AuditRestore,
			UserID:    rec.UserID,
			UserName:  rec.UserName,
			Success:   false,
			Error:     ErrStaleSession.Error(),
		})
		return nil
	}

	m.token = rec.Token
	m.userID = rec.UserID
	m.userName = rec.UserName
	m.isAuthenticated = true
	m.expiresAt = rec.ExpirationDate
	m.armTimerLocked(remaining)
	m.publishLocked(true)
	m.mu.Unlock()

	m.metricInc(MetricRestoreSuccess)
	m.logger.Info("authsession: session restored",
		zap.String("user_id", rec.UserID),
		zap.Duration("remaining", remaining),
	)
	m.emitAudit(ctx, AuditEvent{
		EventType: AuditRestore,
		UserID:    rec.UserID,
		UserName:  rec.UserName,
		Success:   true,
	})
	return nil
}
