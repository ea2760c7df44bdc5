// Package store provides durable key-value stores for the persisted session record.
//
// Every store implements the same three operations (Get, Set, Remove) on string keys
// and values, which is the shape authsession.DurableStore expects. Get reports a
// missing key with ok == false and a nil error.
//
// # Implementations
//
//   - [MemoryStore]: process-local map, for tests and ephemeral sessions.
//   - [FileStore]: one JSON document in the user's config directory, the CLI default.
//   - [SQLiteStore]: a single table in an SQLite database (pure-Go driver).
//   - [RedisStore]: keys under a namespace in Redis.
//
// # What this package must NOT do
//
//   - Import authsession (no upward imports).
//   - Interpret the stored values; expiry decisions belong to the Manager.
package store
