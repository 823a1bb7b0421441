package staticsort

// ParsedStatement is one statement's class and inferred object references,
// independent of whatever AST library produced them.
type ParsedStatement struct {
	SQL      string
	Class    string
	Provides []string
	Requires []string
}

// SQLParser is the capability the sorter consumes to turn raw SQL text into
// classified statements (spec §6.2). Consumers inject their own
// implementation so the sorter itself never imports a parsing library
// directly; pgquery.go provides the production implementation.
type SQLParser interface {
	Parse(sql string) ([]ParsedStatement, error)
}
