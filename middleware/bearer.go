package middleware

import (
	"context"
	"net/http"
)

// Session is the slice of *authsession.Manager the client middleware needs.
type Session interface {
	Token() string
	Invalidate(ctx context.Context) error
}

// BearerTransport adds "Authorization: Bearer <token>" to requests that do not already
// carry an Authorization header. Requests pass through untouched when the session has no token.
type BearerTransport struct {
	// Base is the underlying transport. Nil uses http.DefaultTransport.
	Base http.RoundTripper
	// Session supplies the token. Required.
	Session Session
	// InvalidateOnUnauthorized logs the session out when a request that carried the
	// session token is answered with 401.
	InvalidateOnUnauthorized bool
}

// NewBearerClient returns an http.Client whose transport is a BearerTransport over
// http.DefaultTransport with InvalidateOnUnauthorized set.
func NewBearerClient(s Session) *http.Client {
	return &http.Client{
		Transport: &BearerTransport{Session: s, InvalidateOnUnauthorized: true},
	}
}

func (t *BearerTransport) base() http.RoundTripper {
	if t.Base != nil {
		return t.Base
	}
	return http.DefaultTransport
}

// RoundTrip implements http.RoundTripper.
func (t *BearerTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if t.Session == nil || req.Header.Get("Authorization") != "" {
		return t.base().RoundTrip(req)
	}

	token := t.Session.Token()
	if token == "" {
		return t.base().RoundTrip(req)
	}

	// RoundTrippers must not modify the caller's request.
	out := req.Clone(req.Context())
	out.Header.Set("Authorization", "Bearer "+token)

	resp, err := t.base().RoundTrip(out)
	if err != nil {
		return nil, err
	}

	// Only drop the session if the rejected token is still the current one; a login that
	// raced this request must survive.
	if resp.StatusCode == http.StatusUnauthorized && t.InvalidateOnUnauthorized && t.Session.Token() == token {
		_ = t.Session.Invalidate(context.WithoutCancel(req.Context()))
	}
	return resp, nil
}
