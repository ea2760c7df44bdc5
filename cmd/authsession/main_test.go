package main

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/MrEthical07/authsession/backend"
	"github.com/MrEthical07/authsession/password"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newBackend(t *testing.T) string {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cfg := backend.DefaultConfig([]byte("cli-test-secret-cli-test-secret0"))
	cfg.Password = password.Config{Memory: 8 * 1024, Time: 1, Parallelism: 1, SaltLength: 16, KeyLength: 16}
	s, err := backend.NewServer(cfg, nil)
	require.NoError(t, err)

	srv := httptest.NewServer(s.Handler())
	t.Cleanup(srv.Close)
	return srv.URL + backend.DefaultBasePath
}

func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	err := run(context.Background(), args, &stdout, &stderr)
	return stdout.String(), err
}

func TestCLISessionLifecycle(t *testing.T) {
	for _, driver := range []string{"file", "sqlite"} {
		t.Run(driver, func(t *testing.T) {
			base := []string{
				"-base-url", newBackend(t),
				"-store", driver,
				"-path", filepath.Join(t.TempDir(), "session"),
			}
			cmd := func(args ...string) (string, error) {
				return runCLI(t, append(append([]string{}, base...), args...)...)
			}

			out, err := cmd("signup", "-user", "alice", "-email", "alice@example.com", "-password", "correct-horse")
			require.NoError(t, err)
			assert.Contains(t, out, "account created for alice")

			out, err = cmd("status")
			require.NoError(t, err)
			assert.Equal(t, "not logged in\n", out)

			out, err = cmd("login", "-user", "alice", "-password", "correct-horse")
			require.NoError(t, err)
			assert.Contains(t, out, "logged in as alice")

			out, err = cmd("status", "-json", "-show-token")
			require.NoError(t, err)
			var st statusOutput
			require.NoError(t, json.Unmarshal([]byte(out), &st))
			assert.True(t, st.Authenticated)
			assert.Equal(t, "alice", st.UserName)
			assert.NotEmpty(t, st.UserID)
			assert.NotEmpty(t, st.Token)

			out, err = cmd("logout")
			require.NoError(t, err)
			assert.Equal(t, "logged out\n", out)

			out, err = cmd("status")
			require.NoError(t, err)
			assert.Equal(t, "not logged in\n", out)
		})
	}
}

func TestCLILoginRejected(t *testing.T) {
	url := newBackend(t)
	_, err := runCLI(t, "-base-url", url, "-store", "memory", "login", "-user", "nobody", "-password", "whatever-pw")
	assert.Error(t, err)
}

func TestCLIEmbeddedRedis(t *testing.T) {
	out, err := runCLI(t, "-base-url", newBackend(t), "-store", "redis", "-redis-addr", embeddedRedis, "watch", "-exit-on-logout")
	require.NoError(t, err)
	assert.Equal(t, "not logged in\n", out)
}

func TestCLIUsageErrors(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{name: "no command", args: []string{"-store", "memory"}},
		{name: "unknown command", args: []string{"-store", "memory", "frobnicate"}},
		{name: "unknown driver", args: []string{"-store", "etcd", "status"}},
		{name: "missing password", args: []string{"-store", "memory", "login", "-user", "alice"}},
		{name: "missing user", args: []string{"-store", "memory", "signup", "-password", "correct-horse"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := runCLI(t, tt.args...)
			assert.Error(t, err)
		})
	}
}
