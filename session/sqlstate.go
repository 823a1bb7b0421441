package session

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
)

// SQLState is a 5-character Postgres error code.
type SQLState string

// Retryable codes per spec §4.5: errors where the failing statement "may
// succeed after more objects exist" and is therefore safe to defer to the
// next apply round instead of being marked permanently failed.
const (
	UndefinedTable           SQLState = "42P01"
	UndefinedFunction        SQLState = "42883"
	UndefinedObject          SQLState = "42704"
	InvalidObjectDefinition  SQLState = "42P17"
	DuplicateTable           SQLState = "42P07"
	AdminShutdown            SQLState = "57P01"
)

// DefaultRetryable is the default retryable-code allowlist the Round Apply
// Engine uses, kept as a package-level var (rather than a const set) so
// applyengine.Options can start from it and extend/narrow it instead of
// being stuck with a hardcoded switch.
var DefaultRetryable = map[SQLState]bool{
	UndefinedTable:          true,
	UndefinedFunction:       true,
	UndefinedObject:         true,
	InvalidObjectDefinition: true,
	DuplicateTable:          true,
}

// ErrorCode extracts the SQLSTATE from a driver error, recognizing both
// pgx's *pgconn.PgError and lib/pq's *pq.Error so callers observing errors
// from either driver family get a uniform code. Returns "" if err does not
// carry a recognizable SQLSTATE.
func ErrorCode(err error) SQLState {
	if err == nil {
		return ""
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return SQLState(pgErr.Code)
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return SQLState(pqErr.Code)
	}
	return ""
}

// ErrorMessage extracts the server-reported message from a driver error,
// falling back to err.Error() for errors with no structured form.
func ErrorMessage(err error) string {
	if err == nil {
		return ""
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Message
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Message
	}
	return err.Error()
}

// IsAdminShutdown reports whether err is the admin_shutdown error the
// session's on_error hook (spec §6.1) should recognize and suppress.
func IsAdminShutdown(err error) bool {
	return ErrorCode(err) == AdminShutdown
}
