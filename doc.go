// Package authsession manages client-side authentication session state: it sends
// credentials to a backend, persists the returned session token, expires it
// automatically, and broadcasts authentication status changes to the rest of an
// application.
//
// The package is designed around a single [Manager] per process. Manager methods are
// safe to call from multiple goroutines after construction through [Builder.Build];
// every state transition is serialized behind one lock so observers see transitions in
// the order they happen.
//
// # Architecture boundaries
//
// authsession is the public surface. It exposes [Manager], [Builder], [Config] and the
// collaborator interfaces ([CredentialTransport], [DurableStore], [Navigator]). Concrete
// collaborators live in sibling packages: store/ (memory, file, SQLite and Redis durable
// stores), transport/ (HTTP credential transport), middleware/ (bearer-token round
// tripper), backend/ (reference signup/login backend) and jwt/ (token inspection).
//
// # What this package must NOT do
//
//   - Validate token signatures. The client trusts the token and lifetime the backend
//     returns; jwt.Inspect only reads claims.
//   - Retry failed backend requests or rotate refresh tokens.
//   - Import any sub-package that re-imports authsession (no import cycles).
//
// # Lifecycle
//
// A Manager starts unauthenticated. [Manager.RestoreSession] rebuilds the session from
// the durable store at startup, [Manager.Login] creates one, and [Manager.Logout] (or the
// expiry timer) tears it down. Each transition to or from the authenticated state is
// published on the status stream returned by [Manager.AuthStatusListener].
package authsession
