package applyengine

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/supabase/pg-toolbelt-sub004/session"
)

// fakeSession is a minimal in-memory session.Session: a statement matching a
// key in failFor fails with the given SQLSTATE for its first N attempts
// (tracked per distinct SQL text, since each apply round reissues pending
// statements verbatim), then succeeds. Savepoints are tracked only to assert
// Release/Rollback pairing is correct.
type fakeSession struct {
	failFor        map[string]int
	failCode       map[string]string
	attempts       map[string]int
	openSavepoints map[string]bool
	inTransaction  bool
	committed      bool
	queryUnsafeLog []string
	functionDefs   []session.Row
	validateFails  map[string]bool
}

func newFakeSession() *fakeSession {
	return &fakeSession{
		failFor:        map[string]int{},
		failCode:       map[string]string{},
		attempts:       map[string]int{},
		openSavepoints: map[string]bool{},
	}
}

func (f *fakeSession) Query(ctx context.Context, sql string, params ...any) ([]session.Row, error) {
	if strings.Contains(sql, "pg_get_functiondef") {
		return f.functionDefs, nil
	}
	return nil, nil
}

func (f *fakeSession) QueryUnsafe(ctx context.Context, sql string) error {
	f.queryUnsafeLog = append(f.queryUnsafeLog, sql)
	if f.validateFails[sql] {
		return &pgconn.PgError{Code: "42601", Message: "bad function definition"}
	}
	if n, ok := f.failFor[sql]; ok {
		f.attempts[sql]++
		if f.attempts[sql] <= n {
			return &pgconn.PgError{Code: f.failCode[sql], Message: "fake failure"}
		}
	}
	return nil
}

func (f *fakeSession) Begin(ctx context.Context) error {
	f.inTransaction = true
	return nil
}

func (f *fakeSession) Commit(ctx context.Context) error {
	if !f.inTransaction {
		return fmt.Errorf("commit outside transaction")
	}
	f.inTransaction = false
	f.committed = true
	return nil
}

func (f *fakeSession) Rollback(ctx context.Context) error {
	if !f.inTransaction {
		return fmt.Errorf("rollback outside transaction")
	}
	f.inTransaction = false
	return nil
}

func (f *fakeSession) Savepoint(ctx context.Context, name string) error {
	f.openSavepoints[name] = true
	return nil
}

func (f *fakeSession) ReleaseSavepoint(ctx context.Context, name string) error {
	if !f.openSavepoints[name] {
		return fmt.Errorf("release of unopened savepoint %s", name)
	}
	delete(f.openSavepoints, name)
	return nil
}

func (f *fakeSession) RollbackToSavepoint(ctx context.Context, name string) error {
	if !f.openSavepoints[name] {
		return fmt.Errorf("rollback of unopened savepoint %s", name)
	}
	delete(f.openSavepoints, name)
	return nil
}

func (f *fakeSession) Cancel() {}

func TestRoundApplyAllSucceedFirstRound(t *testing.T) {
	sess := newFakeSession()
	result := RoundApply(context.Background(), Options{
		Session:    sess,
		Statements: []string{"CREATE SCHEMA app;", "CREATE TABLE app.orders(id bigint);"},
		MaxRounds:  3,
	})

	if result.Status != StatusSuccess {
		t.Fatalf("status = %s, want success", result.Status)
	}
	if result.TotalApplied != 2 || result.TotalRounds != 1 {
		t.Errorf("TotalApplied=%d TotalRounds=%d, want 2 and 1", result.TotalApplied, result.TotalRounds)
	}
	if len(sess.openSavepoints) != 0 {
		t.Errorf("expected all savepoints released, leaked: %v", sess.openSavepoints)
	}
}

func TestRoundApplyRetriesUndefinedFunction(t *testing.T) {
	sess := newFakeSession()
	createFn := "CREATE FUNCTION app.fn() RETURNS trigger AS $$ ... $$ LANGUAGE plpgsql;"
	createTrig := "CREATE TRIGGER t BEFORE INSERT ON app.orders EXECUTE FUNCTION app.fn();"
	sess.failFor[createTrig] = 1
	sess.failCode[createTrig] = string(session.UndefinedFunction)

	var rounds []RoundResult
	result := RoundApply(context.Background(), Options{
		Session:         sess,
		Statements:      []string{createTrig, createFn},
		MaxRounds:       3,
		OnRoundComplete: func(rr RoundResult) { rounds = append(rounds, rr) },
	})

	if result.Status != StatusSuccess {
		t.Fatalf("status = %s, want success, rounds=%+v", result.Status, result.Rounds)
	}
	if len(rounds) < 2 {
		t.Fatalf("expected at least 2 rounds, got %d", len(rounds))
	}
	if len(rounds[0].Errors) != 1 || rounds[0].Errors[0].SQLState != session.UndefinedFunction {
		t.Errorf("round 1 errors = %+v, want one UndefinedFunction", rounds[0].Errors)
	}
}

func TestRoundApplyPartialFailureOnNonRetryableError(t *testing.T) {
	sess := newFakeSession()
	bad := "CREATE TABLE app.orders(id bad_type);"
	sess.failFor[bad] = 1000
	sess.failCode[bad] = "42601" // syntax_error, not in the retryable set

	result := RoundApply(context.Background(), Options{
		Session:    sess,
		Statements: []string{bad},
		MaxRounds:  3,
	})

	if result.Status != StatusPartialFailure {
		t.Fatalf("status = %s, want partial_failure", result.Status)
	}
	if len(result.Rounds) != 1 {
		t.Errorf("a non-retryable failure should not consume extra rounds, got %d rounds", len(result.Rounds))
	}
}

func TestRoundApplyStopsWhenNoProgress(t *testing.T) {
	sess := newFakeSession()
	stuck := "CREATE TRIGGER t BEFORE INSERT ON app.orders EXECUTE FUNCTION app.never_created();"
	sess.failFor[stuck] = 1000
	sess.failCode[stuck] = string(session.UndefinedFunction)

	result := RoundApply(context.Background(), Options{
		Session:    sess,
		Statements: []string{stuck},
		MaxRounds:  5,
	})

	if result.Status != StatusPartialFailure {
		t.Fatalf("status = %s, want partial_failure", result.Status)
	}
	if len(result.Rounds) != 1 {
		t.Errorf("expected the engine to stop after the first round with zero progress, got %d rounds", len(result.Rounds))
	}
}

func TestRoundApplyFinalValidationPasses(t *testing.T) {
	sess := newFakeSession()
	sess.functionDefs = []session.Row{
		{"app.total", "CREATE OR REPLACE FUNCTION app.total() RETURNS int AS $$ SELECT 1 $$ LANGUAGE sql;"},
	}

	result := RoundApply(context.Background(), Options{
		Session:         sess,
		Statements:      []string{"CREATE FUNCTION app.total() RETURNS int AS $$ SELECT 1 $$ LANGUAGE sql;"},
		MaxRounds:       1,
		FinalValidation: true,
	})

	if result.Status != StatusSuccess {
		t.Fatalf("status = %s, want success, validation errors = %+v", result.Status, result.ValidationErrors)
	}
}

func TestRoundApplyFinalValidationFails(t *testing.T) {
	sess := newFakeSession()
	badDef := "CREATE OR REPLACE FUNCTION app.broken() RETURNS int AS $$ SELECT bogus $$ LANGUAGE sql;"
	sess.functionDefs = []session.Row{{"app.broken", badDef}}
	sess.validateFails = map[string]bool{badDef: true}

	result := RoundApply(context.Background(), Options{
		Session:         sess,
		Statements:      []string{"CREATE FUNCTION app.broken() RETURNS int AS $$ SELECT bogus $$ LANGUAGE sql;"},
		MaxRounds:       1,
		FinalValidation: true,
	})

	if result.Status != StatusValidationFail {
		t.Fatalf("status = %s, want validation_failed", result.Status)
	}
	if len(result.ValidationErrors) != 1 || result.ValidationErrors[0].Object != "app.broken" {
		t.Errorf("ValidationErrors = %+v, want one entry for app.broken", result.ValidationErrors)
	}
}
