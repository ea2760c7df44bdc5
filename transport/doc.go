// Package transport implements authsession.CredentialTransport over HTTP+JSON.
//
// Requests are POSTed to BaseURL+SignupPath and BaseURL+LoginPath with a JSON body of
// {"userName","email","password"}. Every request carries an X-Request-ID so backend
// logs can be correlated with client logs.
//
// # Error mapping
//
//   - 401 and 403 wrap authsession.ErrInvalidCredentials.
//   - Any other non-2xx status returns a *StatusError.
//   - Network errors and undecodable bodies are returned as-is.
//
// # What this package must NOT do
//
//   - Touch the durable store or session state (the Manager owns both).
//   - Retry; a failed request is reported once.
package transport
