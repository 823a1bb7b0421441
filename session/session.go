// Package session defines the Session capability the core consumes (spec
// §6.1): a query executor and a savepoint-capable execution context. How a
// caller obtains a *pgx.Conn/*sql.DB, pools it, or negotiates TLS is outside
// this package's concern; Connect below is the thin on-ramp the CLI
// boundary uses.
package session

import "context"

// Value is a single decoded column value. Implementations normalize
// PostgreSQL wire types into the language-neutral shapes spec §6.1 requires:
// int8 as int64 (Go's native big-enough integer), int2vector/arrays as
// []Value, and NULL as a nil Value.
type Value any

// Row is one result row, column values in select-list order.
type Row []Value

// Session is the capability the core's components are given; it is never
// implemented by the core itself.
type Session interface {
	// Query runs a parameterized statement and returns all rows.
	Query(ctx context.Context, sql string, params ...any) ([]Row, error)
	// QueryUnsafe runs administrative SQL with no parameter binding and no
	// result rows expected (DDL, SET, savepoint control).
	QueryUnsafe(ctx context.Context, sql string) error
	// Begin opens the transaction block the Round Apply Engine (component
	// F) runs its whole pass inside; SAVEPOINT/RELEASE/ROLLBACK TO are
	// only meaningful nested inside one.
	Begin(ctx context.Context) error
	// Commit and Rollback end the transaction Begin opened.
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
	// Savepoint begins a named savepoint; Release/Rollback end it. The
	// Round Apply Engine (component F) uses these to isolate one
	// statement's failure from the rest of the round.
	Savepoint(ctx context.Context, name string) error
	ReleaseSavepoint(ctx context.Context, name string) error
	RollbackToSavepoint(ctx context.Context, name string) error
	// Cancel aborts the statement currently in flight, if any, and marks
	// the current savepoint (if inside one) for rollback.
	Cancel()
}

// ErrorHook is invoked by Session implementations when the server raises
// an error; the core registers one to recognize and suppress
// admin_shutdown (SQLSTATE 57P01) the way spec §6.1 requires, rather than
// surfacing a spurious fatal error on a routine connection close.
type ErrorHook func(err error)
