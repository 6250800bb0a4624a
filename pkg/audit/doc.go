// Package audit provides an append-only log of security-relevant events.
//
// An Event records who did what and from where: an optional actor id (nil
// for anonymous or system actions), an event kind, a free-form metadata map,
// the client IP and user agent, and a creation timestamp. Events are
// immutable once stored; there is no update or delete surface on Storage.
//
// The Logger composes an event per call from three sources, in increasing
// precedence: context extractors configured at construction, then explicit
// EventOptions at the call site. Metadata must never contain raw secrets,
// one-time codes, or passwords; store derived facts (an index, a count, a
// reason string) instead.
//
// Two Storage implementations ship with the package: MemoryStorage for tests
// and PostgresStorage for production, writing to the audit_logs table.
package audit
