// Package pg bootstraps the PostgreSQL layer: a pgx/v5 connection pool
// configured from environment variables, goose schema migrations from an
// embedded filesystem, and a handful of error helpers for SQLSTATE checks.
//
// The API surface is intentionally small. Connect retries with linear
// backoff until the database accepts connections; Migrate brings the schema
// up to date before the service starts handling requests. Both take a
// context and return wrapped sentinel errors that callers match with
// errors.Is.
package pg
