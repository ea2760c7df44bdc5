// Package middleware connects HTTP traffic to a session.
//
// # Client side
//
//   - [BearerTransport]: an http.RoundTripper that attaches the current session token
//     to outgoing API calls and tears the session down when the API answers 401.
//
// # Server side
//
//   - [Guard]: verifies the bearer token with a jwt.Manager and injects the claims into
//     the request context. The reference backend mounts it on /api/user/me.
//
// # What this package must NOT do
//
//   - Persist tokens (the Manager owns the durable store).
//   - Issue tokens.
package middleware
