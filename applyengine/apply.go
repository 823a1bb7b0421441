package applyengine

import (
	"context"
	"fmt"

	"github.com/supabase/pg-toolbelt-sub004/internal/logger"
	"github.com/supabase/pg-toolbelt-sub004/session"
)

// OnRoundComplete is invoked after every round, success or not.
type OnRoundComplete func(RoundResult)

// Options configures one RoundApply call.
type Options struct {
	Session                   session.Session
	Statements                []string
	MaxRounds                 int
	DisableCheckFunctionBodies bool
	FinalValidation           bool
	OnRoundComplete           OnRoundComplete
	// RetryableCodes overrides session.DefaultRetryable; nil uses the
	// default set (spec §4.5's fixed allowlist made a constructor option).
	RetryableCodes map[session.SQLState]bool
}

type statementState struct {
	sql    string
	status Status
	lastErr *StatementError
}

// RoundApply executes Options.Statements in order, savepointing each one,
// and retries statements in StatusRetryable across rounds until every
// statement applies, a round makes no progress, or MaxRounds is reached.
func RoundApply(ctx context.Context, opts Options) ApplyResult {
	logger.WithComponent("applyengine").Debug("applying statements", "count", len(opts.Statements), "max_rounds", opts.MaxRounds)
	if opts.MaxRounds <= 0 {
		opts.MaxRounds = 1
	}
	retryable := opts.RetryableCodes
	if retryable == nil {
		retryable = session.DefaultRetryable
	}

	states := make([]*statementState, len(opts.Statements))
	for i, sql := range opts.Statements {
		states[i] = &statementState{sql: sql, status: StatusPending}
	}

	// SAVEPOINT/RELEASE/ROLLBACK TO only mean anything inside a transaction
	// block; the whole round-apply pass runs inside one so each statement's
	// savepoint gives it real isolation from the rest of the round.
	if err := opts.Session.Begin(ctx); err != nil {
		logger.WithComponent("applyengine").Error("begin transaction failed", "err", err)
		return ApplyResult{
			Status: StatusPartialFailure,
			Rounds: []RoundResult{{Round: 1, Errors: []StatementError{
				{SQLState: session.ErrorCode(err), Message: session.ErrorMessage(err)},
			}}},
		}
	}

	result := ApplyResult{}
	for round := 1; round <= opts.MaxRounds; round++ {
		rr := RoundResult{Round: round}
		progressed := false

		for i, st := range states {
			if st.status != StatusPending && st.status != StatusRetryable {
				continue
			}
			applyErr := applyOne(ctx, opts.Session, fmt.Sprintf("pgdelta_stmt_%d_%d", round, i), st.sql, opts.DisableCheckFunctionBodies)
			if applyErr == nil {
				st.status = StatusApplied
				rr.Applied = append(rr.Applied, i)
				progressed = true
				continue
			}
			code := session.ErrorCode(applyErr)
			st.lastErr = &StatementError{StatementIndex: i, SQLState: code, Message: session.ErrorMessage(applyErr)}
			rr.Errors = append(rr.Errors, *st.lastErr)
			if retryable[code] {
				st.status = StatusRetryable
			} else {
				st.status = StatusFailed
			}
		}

		for i, st := range states {
			if st.status == StatusPending || st.status == StatusRetryable {
				rr.Skipped = append(rr.Skipped, i)
			}
		}

		result.Rounds = append(result.Rounds, rr)
		if opts.OnRoundComplete != nil {
			opts.OnRoundComplete(rr)
		}

		if !progressed {
			break
		}
		if allTerminal(states) {
			break
		}
	}

	for _, st := range states {
		if st.status == StatusApplied {
			result.TotalApplied++
		} else {
			result.TotalSkipped++
		}
	}
	result.TotalRounds = len(result.Rounds)

	if allApplied(states) {
		result.Status = StatusSuccess
	} else {
		result.Status = StatusPartialFailure
	}

	if opts.FinalValidation && result.Status == StatusSuccess {
		verrs := runFinalValidation(ctx, opts.Session)
		if len(verrs) > 0 {
			result.ValidationErrors = verrs
			result.Status = StatusValidationFail
		}
	}

	// Whatever applied successfully commits regardless of overall status;
	// the failed/skipped statements never made it past their own savepoint
	// rollback, so committing here only persists the statements already
	// marked StatusApplied.
	if err := opts.Session.Commit(ctx); err != nil {
		logger.WithComponent("applyengine").Error("commit transaction failed", "err", err)
		_ = opts.Session.Rollback(ctx)
		if result.Status == StatusSuccess {
			result.Status = StatusPartialFailure
		}
	}

	return result
}

// applyOne executes sql inside its own savepoint, returning nil on success
// or the failure that caused the savepoint to be rolled back.
func applyOne(ctx context.Context, sess session.Session, savepoint, sql string, disableCheckFunctionBodies bool) error {
	if err := sess.Savepoint(ctx, savepoint); err != nil {
		logger.WithComponent("applyengine").Error("open savepoint failed", "savepoint", savepoint, "err", err)
		return err
	}
	if disableCheckFunctionBodies {
		if err := sess.QueryUnsafe(ctx, "SET LOCAL check_function_bodies = off"); err != nil {
			_ = sess.RollbackToSavepoint(ctx, savepoint)
			return err
		}
	}
	if err := sess.QueryUnsafe(ctx, sql); err != nil {
		_ = sess.RollbackToSavepoint(ctx, savepoint)
		return err
	}
	return sess.ReleaseSavepoint(ctx, savepoint)
}

func allTerminal(states []*statementState) bool {
	for _, st := range states {
		if st.status == StatusPending || st.status == StatusRetryable {
			return false
		}
	}
	return true
}

func allApplied(states []*statementState) bool {
	for _, st := range states {
		if st.status != StatusApplied {
			return false
		}
	}
	return true
}

// runFinalValidation re-parses every user function/procedure's definition
// via pg_get_functiondef and runs it through a no-op CREATE OR REPLACE
// inside its own savepoint, per spec §4.5's final validation pass. A
// failure here never rolls back statements already applied.
func runFinalValidation(ctx context.Context, sess session.Session) []ValidationError {
	if err := sess.QueryUnsafe(ctx, "SET check_function_bodies = on"); err != nil {
		return []ValidationError{{Object: "<session>", Message: err.Error()}}
	}
	if _, err := sess.Query(ctx, "SELECT 1"); err != nil {
		return []ValidationError{{Object: "<session>", Message: err.Error()}}
	}

	rows, err := sess.Query(ctx, `
		SELECT n.nspname || '.' || p.proname AS object, pg_get_functiondef(p.oid) AS def
		FROM pg_proc p
		JOIN pg_namespace n ON n.oid = p.pronamespace
		WHERE p.prokind IN ('f', 'p')
		  AND n.nspname NOT IN ('pg_catalog', 'information_schema')
	`)
	if err != nil {
		return []ValidationError{{Object: "<catalog>", Message: err.Error()}}
	}

	var verrs []ValidationError
	for i, row := range rows {
		object, _ := row[0].(string)
		def, _ := row[1].(string)
		savepoint := fmt.Sprintf("pgdelta_validate_%d", i)
		if err := sess.Savepoint(ctx, savepoint); err != nil {
			verrs = append(verrs, ValidationError{Object: object, Message: err.Error()})
			continue
		}
		if err := sess.QueryUnsafe(ctx, def); err != nil {
			_ = sess.RollbackToSavepoint(ctx, savepoint)
			verrs = append(verrs, ValidationError{Object: object, Message: session.ErrorMessage(err)})
			continue
		}
		_ = sess.ReleaseSavepoint(ctx, savepoint)
	}
	return verrs
}
