// Package internal holds helpers that are private to authsession.
//
// # Sub-packages
//
//   - flows: pure decision functions for login lifetimes and restore classification
//
// # What this package must NOT do
//
//   - Export types that appear in the public authsession API.
//   - Be imported by any package outside the authsession module.
package internal
