package authsession

import (
	"errors"

	"github.com/MrEthical07/authsession/internal/flows"
	"github.com/MrEthical07/authsession/jwt"
	"go.uber.org/zap"
)

// Builder defines a public type used by authsession APIs.
//
// Builder instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Builder struct {
	config Config

	transport CredentialTransport
	store     DurableStore
	navigator Navigator
	clock     Clock
	logger    *zap.Logger
	auditSink AuditSink

	built bool
}

// New returns a Builder seeded with DefaultConfig.
func New() *Builder {
	return &Builder{
		config: defaultConfig(),
	}
}

// WithConfig describes the withconfig operation and its observable behavior.
//
// WithConfig replaces the whole configuration; call it before the other With* setters
// that touch Config fields.
func (b *Builder) WithConfig(cfg Config) *Builder {
	b.config = cloneConfig(cfg)
	return b
}

// WithTransport sets the credential transport. Required.
func (b *Builder) WithTransport(t CredentialTransport) *Builder {
	b.transport = t
	return b
}

// WithStore sets the durable store holding the session record. Required.
func (b *Builder) WithStore(s DurableStore) *Builder {
	b.store = s
	return b
}

// WithNavigator sets the navigation trigger. Defaults to a no-op.
func (b *Builder) WithNavigator(n Navigator) *Builder {
	b.navigator = n
	return b
}

// WithClock replaces the system clock, mostly for tests.
func (b *Builder) WithClock(c Clock) *Builder {
	b.clock = c
	return b
}

// WithLogger sets the structured logger. Defaults to zap.NewNop.
func (b *Builder) WithLogger(l *zap.Logger) *Builder {
	b.logger = l
	return b
}

// WithAuditSink describes the withauditsink operation and its observable behavior.
//
// WithAuditSink has no effect unless Config.Audit.Enabled is set.
func (b *Builder) WithAuditSink(sink AuditSink) *Builder {
	b.auditSink = sink
	return b
}

// WithMetricsEnabled describes the withmetricsenabled operation and its observable behavior.
func (b *Builder) WithMetricsEnabled(enabled bool) *Builder {
	b.config.Metrics.Enabled = enabled
	return b
}

// WithLatencyHistograms describes the withlatencyhistograms operation and its observable behavior.
func (b *Builder) WithLatencyHistograms(enabled bool) *Builder {
	b.config.Metrics.EnableLatencyHistograms = enabled
	return b
}

// Build validates the configuration and returns a Manager in the unauthenticated
// state. A Builder can be used once.
func (b *Builder) Build() (*Manager, error) {
	if b.built {
		return nil, errors.New("builder already used")
	}

	cfg := cloneConfig(b.config)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	if b.transport == nil {
		return nil, errors.New("credential transport required")
	}
	if b.store == nil {
		return nil, errors.New("durable store required")
	}

	m := &Manager{
		config:    cfg,
		transport: b.transport,
		records:   newRecordStore(b.store, cfg.Store.KeyPrefix),
		navigator: b.navigator,
		clock:     b.clock,
		logger:    b.logger,
	}
	if m.navigator == nil {
		m.navigator = noopNavigator{}
	}
	if m.clock == nil {
		m.clock = systemClock{}
	}
	if m.logger == nil {
		m.logger = zap.NewNop()
	}

	m.deps = flows.Deps{
		Login: flows.LoginDeps{
			InspectExpiry:  jwt.ExpiryOf,
			UseTokenExpiry: cfg.Expiry.UseTokenExpiry,
			MaxLifetime:    cfg.Expiry.MaxLifetime,
		},
	}
	m.status = NewStatusBroadcaster(cfg.Status.SubscriberBuffer)
	m.audit = newAuditDispatcher(cfg.Audit, b.auditSink)
	m.metrics = NewMetrics(cfg.Metrics)

	b.built = true

	return m, nil
}
