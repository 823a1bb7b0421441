// Package errs defines the typed error kinds of spec §7. Every error
// reachable from user-recoverable SQL is captured into an ApplyResult
// rather than thrown; extraction and internal-invariant failures propagate
// to the caller as Go errors carrying the offending statement/stable ID.
package errs

import (
	"fmt"

	"github.com/google/uuid"
)

// ExtractionError wraps a failed catalog query. Fatal.
type ExtractionError struct {
	SQL         string
	SQLState    string
	Cause       error
	CorrelationID string
}

func NewExtractionError(sql, sqlState string, cause error) *ExtractionError {
	return &ExtractionError{SQL: sql, SQLState: sqlState, Cause: cause, CorrelationID: uuid.NewString()}
}

func (e *ExtractionError) Error() string {
	return fmt.Sprintf("extraction error [%s] (sqlstate=%s): %v\nquery: %s", e.CorrelationID, e.SQLState, e.Cause, e.SQL)
}

func (e *ExtractionError) Unwrap() error { return e.Cause }

// DiffError signals an internal invariant violation (e.g. a stable-ID
// collision). Fatal; indicates a bug in the Differ, not bad input.
type DiffError struct {
	Invariant string
	Detail    string
}

func NewDiffError(invariant, detail string) *DiffError {
	return &DiffError{Invariant: invariant, Detail: detail}
}

func (e *DiffError) Error() string {
	return fmt.Sprintf("diff invariant violated (%s): %s", e.Invariant, e.Detail)
}

// PlanningError is a cycle the Planner could not break, or a refinement
// pass that failed to converge. Non-fatal: callers get a best-effort plan
// plus this as a diagnostic.
type PlanningError struct {
	Reason        string
	Involved      []string // stable IDs involved in the cycle/non-convergence
	CorrelationID string
}

func NewPlanningError(reason string, involved []string) *PlanningError {
	return &PlanningError{Reason: reason, Involved: involved, CorrelationID: uuid.NewString()}
}

func (e *PlanningError) Error() string {
	return fmt.Sprintf("planning diagnostic [%s]: %s (involved: %v)", e.CorrelationID, e.Reason, e.Involved)
}

// StatementError is one DDL statement's failure, carrying enough to retry
// or report it without re-parsing the plan.
type StatementError struct {
	StableID string
	SQLState string
	Message  string
	Retryable bool
}

func (e *StatementError) Error() string {
	return fmt.Sprintf("statement failed for %s [%s]: %s", e.StableID, e.SQLState, e.Message)
}

// ValidationError is a final-validation failure (spec §4.5): a function
// body re-parse/no-op CREATE OR REPLACE failed after apply. Non-fatal;
// previously applied statements are not rolled back.
type ValidationError struct {
	StableID string
	Message  string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed for %s: %s", e.StableID, e.Message)
}

// DiagnosticCode enumerates the static-analysis diagnostics the Static
// Topological Sorter (component E) can raise.
type DiagnosticCode string

const (
	ParseError            DiagnosticCode = "PARSE_ERROR"
	UnknownStatementClass DiagnosticCode = "UNKNOWN_STATEMENT_CLASS"
	UnresolvedDependency  DiagnosticCode = "UNRESOLVED_DEPENDENCY"
	DuplicateProducer     DiagnosticCode = "DUPLICATE_PRODUCER"
	CycleDetected         DiagnosticCode = "CYCLE_DETECTED"
	InvalidAnnotation     DiagnosticCode = "INVALID_ANNOTATION"
)

// DiagnosticWarning is one non-fatal static-analysis finding.
type DiagnosticWarning struct {
	Code    DiagnosticCode
	Message string
	// SourceLabel/StatementIndex identify the offending statement, when
	// one exists (PARSE_ERROR on the whole input may have neither).
	SourceLabel    string
	StatementIndex int
}

func (w *DiagnosticWarning) Error() string {
	return fmt.Sprintf("%s: %s (%s#%d)", w.Code, w.Message, w.SourceLabel, w.StatementIndex)
}
