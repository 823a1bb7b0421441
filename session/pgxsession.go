package session

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
)

// PGXSession is the production Session backed by a single *pgx.Conn.
// It does not pool connections or negotiate TLS itself; that is the
// caller's concern (spec §1 "out of scope: connection pooling and TLS
// handshake"). Connect below just wraps pgx.Connect with the masking env
// vars from internal/config applied by the caller before dialing.
type PGXSession struct {
	conn      *pgx.Conn
	onError   ErrorHook
	cancel    context.CancelFunc
	savepoint int
}

// NewPGXSession wraps an already-established *pgx.Conn.
func NewPGXSession(conn *pgx.Conn, onError ErrorHook) *PGXSession {
	return &PGXSession{conn: conn, onError: onError}
}

// Connect dials dsn and returns a ready Session.
func Connect(ctx context.Context, dsn string, onError ErrorHook) (*PGXSession, error) {
	conn, err := pgx.Connect(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("session: connect: %w", err)
	}
	return NewPGXSession(conn, onError), nil
}

// Close releases the underlying connection.
func (s *PGXSession) Close(ctx context.Context) error {
	return s.conn.Close(ctx)
}

func (s *PGXSession) Query(ctx context.Context, sql string, params ...any) ([]Row, error) {
	ctx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	defer cancel()

	rows, err := s.conn.Query(ctx, sql, params...)
	if err != nil {
		s.reportError(err)
		return nil, err
	}
	defer rows.Close()

	var out []Row
	for rows.Next() {
		vals, err := rows.Values()
		if err != nil {
			s.reportError(err)
			return nil, err
		}
		row := make(Row, len(vals))
		for i, v := range vals {
			row[i] = v
		}
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		s.reportError(err)
		return nil, err
	}
	return out, nil
}

func (s *PGXSession) QueryUnsafe(ctx context.Context, sql string) error {
	ctx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	defer cancel()

	_, err := s.conn.Exec(ctx, sql)
	if err != nil {
		s.reportError(err)
	}
	return err
}

func (s *PGXSession) Begin(ctx context.Context) error {
	return s.QueryUnsafe(ctx, "BEGIN")
}

func (s *PGXSession) Commit(ctx context.Context) error {
	return s.QueryUnsafe(ctx, "COMMIT")
}

func (s *PGXSession) Rollback(ctx context.Context) error {
	return s.QueryUnsafe(ctx, "ROLLBACK")
}

func (s *PGXSession) Savepoint(ctx context.Context, name string) error {
	return s.QueryUnsafe(ctx, "SAVEPOINT "+quoteSavepoint(name))
}

func (s *PGXSession) ReleaseSavepoint(ctx context.Context, name string) error {
	return s.QueryUnsafe(ctx, "RELEASE SAVEPOINT "+quoteSavepoint(name))
}

func (s *PGXSession) RollbackToSavepoint(ctx context.Context, name string) error {
	return s.QueryUnsafe(ctx, "ROLLBACK TO SAVEPOINT "+quoteSavepoint(name))
}

// Cancel aborts the in-flight statement, if any. The current savepoint (if
// inside one) is left for the caller to roll back, per spec §5.
func (s *PGXSession) Cancel() {
	if s.cancel != nil {
		s.cancel()
	}
}

func (s *PGXSession) reportError(err error) {
	if s.onError != nil && IsAdminShutdown(err) {
		s.onError(err)
	}
}

func quoteSavepoint(name string) string {
	return `"` + name + `"`
}
