// Package jwt reads and issues session tokens.
//
// [Inspect] decodes the claims of a token WITHOUT verifying its signature. The client
// trusts the backend that handed it the token, so Inspect is only used to recover a
// lifetime or subject the login response left out. [Manager] signs tokens for the
// reference backend and verifies them there.
package jwt
