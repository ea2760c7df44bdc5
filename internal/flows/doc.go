// Package flows contains pure decision functions for every Manager operation.
//
// Each flow function (PlanLogin, DecideRestore) accepts a typed dependency struct or
// plain values and returns a decision without side effects. The Manager applies the
// decision to its state, store and timer while holding its lock.
//
// # Architecture boundaries
//
// Flow functions compute lifetimes and classify persisted records. They do NOT own
// the durable store, the timer or the status broadcaster; ownership stays with the
// Manager.
//
// # What this package must NOT do
//
//   - Hold mutable state between calls.
//   - Import authsession (to avoid import cycles).
//   - Perform I/O.
package flows
