// Package backend is a reference credential backend for authsession clients.
//
// It serves the two endpoints the client expects under a configurable base path
// (default /api/user):
//
//	POST /signup  {"userName","email","password"} -> 201 {"userName","userId"}
//	POST /login   {"userName","email","password"} -> 200 {"user","token","expiresIn","userId"}
//	GET  /me      Authorization: Bearer <token>   -> 200 {"userId","userName","expiresAt"}
//
// Passwords are hashed with Argon2id, tokens are JWTs issued by jwt.Manager and user
// ids are random UUIDs. Users live in memory; the server is meant for tests, the CLI
// and the example, not production.
package backend
