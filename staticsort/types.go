// Package staticsort implements the Static Topological Sorter (component
// E): a pure function that orders a batch of raw SQL strings by the
// dependencies it can infer from parsing them, without ever touching a
// database, by walking the parsed AST of each statement to derive the
// object references it provides and requires.
package staticsort

// StatementID identifies one statement within one input string.
type StatementID struct {
	SourceLabel    string
	StatementIndex int
}

// StatementNode is one parsed, classified statement plus its inferred
// dependency references.
type StatementNode struct {
	ID       StatementID
	SQL      string
	Class    string   // create_table, create_function, grant, ...
	Phase    string   // bootstrap, pre_data, data_structures, routines, post_data, privileges
	Provides []string // object references this statement brings into existence
	Requires []string // object references this statement must run after
}

// DiagnosticCode enumerates the non-fatal issues AnalyzeAndSort can report.
type DiagnosticCode string

const (
	DiagParseError           DiagnosticCode = "PARSE_ERROR"
	DiagUnknownStatementClass DiagnosticCode = "UNKNOWN_STATEMENT_CLASS"
	DiagUnresolvedDependency DiagnosticCode = "UNRESOLVED_DEPENDENCY"
	DiagDuplicateProducer    DiagnosticCode = "DUPLICATE_PRODUCER"
	DiagCycleDetected        DiagnosticCode = "CYCLE_DETECTED"
	DiagInvalidAnnotation    DiagnosticCode = "INVALID_ANNOTATION"
)

// Diagnostic is one non-fatal finding surfaced alongside the ordered result.
type Diagnostic struct {
	Code    DiagnosticCode
	Message string
	ID      StatementID
}

// GraphEdge is one "From must run before To" edge in the dependency graph,
// exposed so cmd's --explain flag can render an adjacency list.
type GraphEdge struct {
	From StatementID
	To   StatementID
	Via  string // the object reference that produced this edge
}

// GraphReport is the adjacency-list view of the statement graph.
type GraphReport struct {
	Edges []GraphEdge
}

// Result is AnalyzeAndSort's return value.
type Result struct {
	Ordered     []StatementNode
	Diagnostics []Diagnostic
	Graph       GraphReport
}
