package authsession

import "errors"

var (
	// ErrTransportFailure is returned when a signup or login request fails at the transport
	// or backend level. The status stream receives false whenever it is returned.
	ErrTransportFailure = errors.New("credential transport failure")
	// ErrInvalidCredentials is returned by transports when the backend rejects credentials.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrIncompleteResponse is returned when a login succeeded but carried no token or no
	// usable lifetime. Session state is left untouched.
	ErrIncompleteResponse = errors.New("incomplete login response")
	// ErrStaleSession classifies a persisted session whose expiration is not in the future.
	ErrStaleSession = errors.New("persisted session expired")
	// ErrSessionNotFound classifies a durable store without a persisted session.
	ErrSessionNotFound = errors.New("persisted session not found")
	// ErrStoreUnavailable wraps durable store read, write and remove failures.
	ErrStoreUnavailable = errors.New("durable store unavailable")
	// ErrManagerClosed is returned by operations invoked after Close.
	ErrManagerClosed = errors.New("session manager closed")
	// ErrManagerNotReady is returned by methods called on a nil Manager.
	ErrManagerNotReady = errors.New("session manager not initialized")
)
