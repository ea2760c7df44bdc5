package test

import (
	"net/http/httptest"
	"testing"
	"time"

	"github.com/MrEthical07/authsession"
	"github.com/MrEthical07/authsession/backend"
	"github.com/MrEthical07/authsession/password"
	"github.com/MrEthical07/authsession/transport"
	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

const testPassword = "correct-horse"

// testBackend is the reference backend behind an httptest server.
type testBackend struct {
	server  *backend.Server
	srv     *httptest.Server
	baseURL string
}

func newTestBackend(t *testing.T) *testBackend {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cfg := backend.DefaultConfig([]byte("integration-secret-integration-0"))
	cfg.Password = password.Config{Memory: 8 * 1024, Time: 1, Parallelism: 1, SaltLength: 16, KeyLength: 16}
	s, err := backend.NewServer(cfg, nil)
	if err != nil {
		t.Fatalf("backend init failed: %v", err)
	}

	srv := httptest.NewServer(s.Handler())
	t.Cleanup(srv.Close)
	return &testBackend{server: s, srv: srv, baseURL: srv.URL + backend.DefaultBasePath}
}

func newManager(t *testing.T, b *testBackend, kv authsession.DurableStore, mutate ...func(*authsession.Config)) *authsession.Manager {
	t.Helper()

	cfg := authsession.DefaultConfig()
	cfg.Backend.BaseURL = b.baseURL
	cfg.Backend.Timeout = 5 * time.Second
	for _, fn := range mutate {
		fn(&cfg)
	}

	tr, err := transport.New(cfg.Backend, transport.WithHTTPClient(b.srv.Client()))
	if err != nil {
		t.Fatalf("transport init failed: %v", err)
	}
	m, err := authsession.New().
		WithConfig(cfg).
		WithTransport(tr).
		WithStore(kv).
		Build()
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	t.Cleanup(m.Close)
	return m
}

func newMiniredis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return mr, rdb
}

func expectStatus(t *testing.T, sub *authsession.Subscription, want bool) {
	t.Helper()
	select {
	case got, ok := <-sub.C():
		if !ok || got != want {
			t.Fatalf("expected status %v, got %v (open=%v)", want, got, ok)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("timed out waiting for status %v", want)
	}
}
