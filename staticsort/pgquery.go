package staticsort

import (
	"fmt"
	"strings"

	pg_query "github.com/pganalyze/pg_query_go/v6"
)

// PgQueryParser implements SQLParser on top of pganalyze/pg_query_go, a
// Postgres-grammar AST library. It only derives provides/requires for the
// statement classes the Planner and Apply Engine actually emit; anything
// else comes back with class "unknown" and no inferred edges, which
// AnalyzeAndSort reports as UNKNOWN_STATEMENT_CLASS rather than failing the
// batch.
type PgQueryParser struct{}

func (PgQueryParser) Parse(sql string) ([]ParsedStatement, error) {
	stmts, err := pg_query.SplitWithParser(sql, true)
	if err != nil {
		return nil, fmt.Errorf("split sql: %w", err)
	}

	out := make([]ParsedStatement, 0, len(stmts))
	for _, s := range stmts {
		result, err := pg_query.Parse(s)
		if err != nil {
			return nil, fmt.Errorf("parse statement %q: %w", truncate(s, 60), err)
		}
		for _, raw := range result.Stmts {
			out = append(out, classify(s, raw.Stmt))
		}
	}
	return out, nil
}

func truncate(s string, n int) string {
	s = strings.TrimSpace(s)
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}

func relRef(kind string, rv *pg_query.RangeVar) string {
	schema := rv.GetSchemaname()
	if schema == "" {
		schema = "public"
	}
	return kind + ":" + schema + "." + rv.GetRelname()
}

func classify(sql string, n *pg_query.Node) ParsedStatement {
	ps := ParsedStatement{SQL: sql, Class: "unknown"}

	switch {
	case n.GetCreateStmt() != nil:
		c := n.GetCreateStmt()
		ps.Class = "create_table"
		ps.Provides = append(ps.Provides, relRef("relation", c.GetRelation()))
		for _, elt := range c.GetTableElts() {
			if cons := elt.GetConstraint(); cons != nil && cons.GetContype() == pg_query.ConstrType_CONSTR_FOREIGN {
				if pk := cons.GetPktable(); pk != nil {
					ps.Requires = append(ps.Requires, relRef("relation", pk))
				}
			}
		}
		for _, inh := range c.GetInhRelations() {
			if rv := inh.GetRangeVar(); rv != nil {
				ps.Requires = append(ps.Requires, relRef("relation", rv))
			}
		}

	case n.GetIndexStmt() != nil:
		idx := n.GetIndexStmt()
		ps.Class = "create_index"
		ps.Provides = append(ps.Provides, "index:"+idx.GetIdxname())
		ps.Requires = append(ps.Requires, relRef("relation", idx.GetRelation()))

	case n.GetViewStmt() != nil:
		v := n.GetViewStmt()
		ps.Class = "create_view"
		ps.Provides = append(ps.Provides, relRef("relation", v.GetView()))
		ps.Requires = append(ps.Requires, referencedRelations(v.GetQuery())...)

	case n.GetCreateFunctionStmt() != nil:
		f := n.GetCreateFunctionStmt()
		ps.Class = "create_function"
		ps.Provides = append(ps.Provides, "function:"+funcName(f.GetFuncname()))

	case n.GetCreateSeqStmt() != nil:
		s := n.GetCreateSeqStmt()
		ps.Class = "create_sequence"
		ps.Provides = append(ps.Provides, relRef("sequence", s.GetSequence()))

	case n.GetCreateTrigStmt() != nil:
		t := n.GetCreateTrigStmt()
		ps.Class = "create_trigger"
		ps.Provides = append(ps.Provides, "trigger:"+t.GetTrigname())
		ps.Requires = append(ps.Requires, relRef("relation", t.GetRelation()))
		ps.Requires = append(ps.Requires, "function:"+funcName(t.GetFuncname()))

	case n.GetCreatePolicyStmt() != nil:
		p := n.GetCreatePolicyStmt()
		ps.Class = "create_policy"
		ps.Provides = append(ps.Provides, "policy:"+p.GetPolicyName())
		ps.Requires = append(ps.Requires, relRef("relation", p.GetTable()))

	case n.GetAlterTableStmt() != nil:
		a := n.GetAlterTableStmt()
		ps.Class = "alter_table"
		ps.Requires = append(ps.Requires, relRef("relation", a.GetRelation()))
		for _, cmdNode := range a.GetCmds() {
			cmd := cmdNode.GetAlterTableCmd()
			if cmd == nil {
				continue
			}
			if cons := cmd.GetDef().GetConstraint(); cons != nil && cons.GetContype() == pg_query.ConstrType_CONSTR_FOREIGN {
				if pk := cons.GetPktable(); pk != nil {
					ps.Requires = append(ps.Requires, relRef("relation", pk))
				}
				if cons.GetConname() != "" {
					ps.Provides = append(ps.Provides, "constraint:"+relRef("relation", a.GetRelation())[len("relation:"):]+"."+cons.GetConname())
				}
			}
		}

	case n.GetGrantStmt() != nil:
		g := n.GetGrantStmt()
		ps.Class = "grant"
		for _, obj := range g.GetObjects() {
			if rv := obj.GetRangeVar(); rv != nil {
				ps.Requires = append(ps.Requires, relRef("relation", rv))
			}
		}

	case n.GetCommentStmt() != nil:
		ps.Class = "comment"

	case n.GetCreateSchemaStmt() != nil:
		ps.Class = "create_schema"
		ps.Provides = append(ps.Provides, "schema:"+n.GetCreateSchemaStmt().GetSchemaname())

	case n.GetCreateExtensionStmt() != nil:
		ps.Class = "create_extension"
		ps.Provides = append(ps.Provides, "extension:"+n.GetCreateExtensionStmt().GetExtname())
	}

	return ps
}

// referencedRelations walks a view's query tree one level deep for the
// FROM-clause relations it selects from; enough to order "view depends on
// base table" without implementing a full query-rewrite-aware resolver
// (out of scope per spec.md's "dynamic SQL resolution" non-goal).
func referencedRelations(q *pg_query.Node) []string {
	sel := q.GetSelectStmt()
	if sel == nil {
		return nil
	}
	var refs []string
	for _, f := range sel.GetFromClause() {
		if rv := f.GetRangeVar(); rv != nil {
			refs = append(refs, relRef("relation", rv))
		}
	}
	return refs
}

func funcName(parts []*pg_query.Node) string {
	names := make([]string, 0, len(parts))
	for _, p := range parts {
		if s := p.GetString_(); s != nil {
			names = append(names, s.GetSval())
		}
	}
	return strings.Join(names, ".")
}
