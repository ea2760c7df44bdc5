package authsession

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"sync/atomic"
	"testing"
	"time"
)

type countingSink struct {
	count atomic.Int64
}

func (s *countingSink) Emit(context.Context, AuditEvent) {
	s.count.Add(1)
}

type gateSink struct {
	gate chan struct{}
}

func (s *gateSink) Emit(context.Context, AuditEvent) {
	<-s.gate
}

func TestAuditDispatcherDisabled(t *testing.T) {
	d := newAuditDispatcher(AuditConfig{Enabled: false}, &countingSink{})
	if d != nil {
		t.Fatal("disabled audit must not start a dispatcher")
	}
	d.Emit(context.Background(), AuditEvent{EventType: AuditLogin})
	d.Close()
	if d.Dropped() != 0 {
		t.Fatal("nil dispatcher must report zero drops")
	}
}

func TestAuditDispatcherDrainsOnClose(t *testing.T) {
	sink := &countingSink{}
	d := newAuditDispatcher(AuditConfig{Enabled: true, BufferSize: 64}, sink)

	for i := 0; i < 50; i++ {
		d.Emit(context.Background(), AuditEvent{EventType: AuditLogin})
	}
	d.Close()

	if got := sink.count.Load(); got != 50 {
		t.Fatalf("expected 50 delivered events, got %d", got)
	}

	d.Emit(context.Background(), AuditEvent{EventType: AuditLogin})
	if got := sink.count.Load(); got != 50 {
		t.Fatalf("emit after Close must be ignored, got %d", got)
	}
}

func TestAuditDispatcherDropsWhenFull(t *testing.T) {
	sink := &gateSink{gate: make(chan struct{})}
	d := newAuditDispatcher(AuditConfig{Enabled: true, BufferSize: 1, DropIfFull: true}, sink)

	// one event held by the sink, one in the buffer, the rest dropped
	deadline := time.Now().Add(2 * time.Second)
	for d.Dropped() == 0 && time.Now().Before(deadline) {
		d.Emit(context.Background(), AuditEvent{EventType: AuditLogout})
	}
	if d.Dropped() == 0 {
		t.Fatal("expected dropped events under backpressure")
	}

	close(sink.gate)
	d.Close()
}

func TestAuditDispatcherBlockingRespectsContext(t *testing.T) {
	sink := &gateSink{gate: make(chan struct{})}
	d := newAuditDispatcher(AuditConfig{Enabled: true, BufferSize: 1, DropIfFull: false}, sink)
	defer func() {
		close(sink.gate)
		d.Close()
	}()

	done := make(chan struct{})
	go func() {
		defer close(done)
		// the sink holds one event and the buffer one more; later emits must give up
		for i := 0; i < 4; i++ {
			ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
			d.Emit(ctx, AuditEvent{})
			cancel()
		}
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("blocking Emit ignored context cancellation")
	}
	if d.Dropped() != 0 {
		t.Fatalf("blocking mode must not count drops, got %d", d.Dropped())
	}
}

func TestJSONWriterSink(t *testing.T) {
	var buf bytes.Buffer
	sink := NewJSONWriterSink(&buf)

	sink.Emit(context.Background(), AuditEvent{
		Timestamp: testEpoch,
		EventType: AuditLogin,
		UserID:    "u1",
		Success:   true,
		Metadata:  map[string]string{"expires_at": "2024-01-01T11:00:00.000Z"},
	})
	sink.Emit(context.Background(), AuditEvent{EventType: AuditLogout})

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines, got %d: %q", len(lines), buf.String())
	}

	var ev AuditEvent
	if err := json.Unmarshal([]byte(lines[0]), &ev); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if ev.EventType != AuditLogin || ev.UserID != "u1" || !ev.Success || !ev.Timestamp.Equal(testEpoch) {
		t.Fatalf("unexpected event %+v", ev)
	}
}

func TestManagerAuditTimestampsUseClock(t *testing.T) {
	sink := NewChannelSink(4)
	cfg := DefaultConfig()
	cfg.Audit.Enabled = true

	m, err := New().
		WithConfig(cfg).
		WithTransport(&fakeTransport{loginRes: okLogin("abc", 3600)}).
		WithStore(newMemStore()).
		WithClock(newManualClock(testEpoch)).
		WithAuditSink(sink).
		Build()
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	defer m.Close()

	if err := m.Login(context.Background(), "alice", "", "pw"); err != nil {
		t.Fatalf("Login failed: %v", err)
	}

	select {
	case ev := <-sink.Events():
		if !ev.Timestamp.Equal(testEpoch) {
			t.Fatalf("expected timestamp %v, got %v", testEpoch, ev.Timestamp)
		}
		if ev.Metadata["expires_at"] != "2024-01-01T11:00:00.000Z" {
			t.Fatalf("unexpected metadata %v", ev.Metadata)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for audit event")
	}
}
