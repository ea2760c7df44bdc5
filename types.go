package authsession

import (
	"context"
	"time"
)

// Credentials is the payload sent to the backend for both signup and login.
type Credentials struct {
	UserName string `json:"userName"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// SignupResult is the backend answer to a successful signup.
type SignupResult struct {
	UserName string `json:"userName"`
	UserID   string `json:"userId,omitempty"`
}

// LoginResult is the backend answer to a successful login. ExpiresIn is expressed in
// seconds relative to the moment the response is received.
type LoginResult struct {
	User      string `json:"user"`
	Token     string `json:"token"`
	ExpiresIn int64  `json:"expiresIn"`
	UserID    string `json:"userId"`
}

// CredentialTransport sends credentials to the backend. Implementations report every
// failure through the returned error and must not panic.
type CredentialTransport interface {
	SignUp(ctx context.Context, creds Credentials) (*SignupResult, error)
	Login(ctx context.Context, creds Credentials) (*LoginResult, error)
}

// DurableStore is a small string-keyed key-value store that outlives the process.
// Get reports a missing key with ok == false and a nil error.
type DurableStore interface {
	Get(ctx context.Context, key string) (value string, ok bool, err error)
	Set(ctx context.Context, key, value string) error
	Remove(ctx context.Context, key string) error
}

// Navigator receives fire-and-forget route changes after signup, login and logout.
type Navigator interface {
	Navigate(route string)
}

// NavigatorFunc adapts a plain function to Navigator.
type NavigatorFunc func(route string)

// Navigate calls f(route).
func (f NavigatorFunc) Navigate(route string) {
	f(route)
}

type noopNavigator struct{}

func (noopNavigator) Navigate(string) {}

// SessionInfo is a point-in-time copy of the in-memory session.
type SessionInfo struct {
	Token           string
	UserID          string
	UserName        string
	IsAuthenticated bool
	ExpiresAt       time.Time
}

// LogoutReason records why a session was torn down.
type LogoutReason string

const (
	// LogoutUser is a logout requested by the application.
	LogoutUser LogoutReason = "user"
	// LogoutExpired is a logout triggered by the expiry timer.
	LogoutExpired LogoutReason = "expired"
	// LogoutStoreFailure is a logout triggered by a failed durable store write.
	LogoutStoreFailure LogoutReason = "store_failure"
	// LogoutUnauthorized is a logout triggered by a 401 observed on an API call.
	LogoutUnauthorized LogoutReason = "unauthorized"
)
