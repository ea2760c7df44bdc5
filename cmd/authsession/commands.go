package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/MrEthical07/authsession"
	"github.com/MrEthical07/authsession/metrics/export/prometheus"
	"go.uber.org/zap"
)

type cli struct {
	m      *authsession.Manager
	out    io.Writer
	errOut io.Writer
	logger *zap.Logger
}

type credentialFlags struct {
	user     string
	email    string
	password string
}

func (c *cli) credentials(name string, args []string) (credentialFlags, error) {
	var f credentialFlags
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(c.errOut)
	fs.StringVar(&f.user, "user", "", "user name")
	fs.StringVar(&f.email, "email", "", "email address")
	fs.StringVar(&f.password, "password", "", "password")
	if err := fs.Parse(args); err != nil {
		return f, err
	}
	if f.user == "" && f.email == "" {
		return f, errors.New("-user or -email required")
	}
	if f.password == "" {
		return f, errors.New("-password required")
	}
	return f, nil
}

func (c *cli) signup(ctx context.Context, args []string) error {
	f, err := c.credentials("signup", args)
	if err != nil {
		return err
	}
	if err := c.m.CreateAccount(ctx, f.user, f.email, f.password); err != nil {
		return err
	}
	fmt.Fprintf(c.out, "account created for %s\n", displayName(f))
	return nil
}

func (c *cli) login(ctx context.Context, args []string) error {
	f, err := c.credentials("login", args)
	if err != nil {
		return err
	}
	if err := c.m.Login(ctx, f.user, f.email, f.password); err != nil {
		return err
	}
	s := c.m.Session()
	fmt.Fprintf(c.out, "logged in as %s (%s), expires %s\n",
		s.UserName, s.UserID, s.ExpiresAt.Local().Format(time.RFC3339))
	return nil
}

type statusOutput struct {
	Authenticated bool   `json:"authenticated"`
	UserID        string `json:"userId,omitempty"`
	UserName      string `json:"userName,omitempty"`
	ExpiresAt     string `json:"expiresAt,omitempty"`
	ExpiresIn     string `json:"expiresIn,omitempty"`
	Token         string `json:"token,omitempty"`
}

func (c *cli) status(ctx context.Context, args []string) error {
	var asJSON, showToken bool
	fs := flag.NewFlagSet("status", flag.ContinueOnError)
	fs.SetOutput(c.errOut)
	fs.BoolVar(&asJSON, "json", false, "print JSON")
	fs.BoolVar(&showToken, "show-token", false, "include the token")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if err := c.m.RestoreSession(ctx); err != nil {
		return err
	}

	s := c.m.Session()
	out := statusOutput{Authenticated: s.IsAuthenticated}
	if s.IsAuthenticated {
		out.UserID = s.UserID
		out.UserName = s.UserName
		out.ExpiresAt = authsession.FormatExpiration(s.ExpiresAt)
		out.ExpiresIn = time.Until(s.ExpiresAt).Round(time.Second).String()
		if showToken {
			out.Token = s.Token
		}
	}

	if asJSON {
		enc := json.NewEncoder(c.out)
		enc.SetIndent("", "  ")
		return enc.Encode(out)
	}
	if !out.Authenticated {
		fmt.Fprintln(c.out, "not logged in")
		return nil
	}
	fmt.Fprintf(c.out, "logged in as %s (%s), expires %s (in %s)\n", out.UserName, out.UserID, out.ExpiresAt, out.ExpiresIn)
	if showToken {
		fmt.Fprintln(c.out, out.Token)
	}
	return nil
}

func (c *cli) logout(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("logout", flag.ContinueOnError)
	fs.SetOutput(c.errOut)
	if err := fs.Parse(args); err != nil {
		return err
	}

	// the record is cleared even when it is stale, so restore first only for the log line
	if err := c.m.RestoreSession(ctx); err != nil {
		c.logger.Warn("restore before logout failed", zap.Error(err))
	}
	if err := c.m.Logout(ctx); err != nil {
		return err
	}
	fmt.Fprintln(c.out, "logged out")
	return nil
}

// watch restores the session and prints every status change until ctx ends, or until
// the session ends when -exit-on-logout is set.
func (c *cli) watch(ctx context.Context, args []string) error {
	var (
		metricsAddr  string
		exitOnLogout bool
	)
	fs := flag.NewFlagSet("watch", flag.ContinueOnError)
	fs.SetOutput(c.errOut)
	fs.StringVar(&metricsAddr, "metrics-addr", "", "serve Prometheus metrics on this address")
	fs.BoolVar(&exitOnLogout, "exit-on-logout", false, "return once the session ends")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if metricsAddr != "" {
		stop := c.serveMetrics(metricsAddr)
		defer stop()
	}

	sub := c.m.AuthStatusListener()
	defer sub.Close()

	if err := c.m.RestoreSession(ctx); err != nil {
		return err
	}
	if !c.m.IsAuth() {
		fmt.Fprintln(c.out, "not logged in")
		if exitOnLogout {
			return nil
		}
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case v, ok := <-sub.C():
			if !ok {
				return nil
			}
			if v {
				s := c.m.Session()
				fmt.Fprintf(c.out, "authenticated as %s until %s\n", s.UserName, authsession.FormatExpiration(s.ExpiresAt))
				continue
			}
			fmt.Fprintln(c.out, "session ended")
			if exitOnLogout {
				return nil
			}
		}
	}
}

func (c *cli) serveMetrics(addr string) (stop func()) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", prometheus.NewExporter(c.m).Handler())
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			c.logger.Error("metrics server failed", zap.Error(err))
		}
	}()
	c.logger.Info("serving metrics", zap.String("addr", addr))

	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctx)
	}
}

func displayName(f credentialFlags) string {
	if f.user != "" {
		return f.user
	}
	return f.email
}
