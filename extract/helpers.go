package extract

import (
	"context"
	"fmt"

	"github.com/supabase/pg-toolbelt-sub004/internal/errs"
	"github.com/supabase/pg-toolbelt-sub004/session"
)

// query runs sql and wraps any failure into an *errs.ExtractionError
// carrying the offending fragment, per spec §4.1 "Failure".
func query(ctx context.Context, sess session.Session, sql string, params ...any) ([]session.Row, error) {
	rows, err := sess.Query(ctx, sql, params...)
	if err != nil {
		return nil, errs.NewExtractionError(sql, string(session.ErrorCode(err)), err)
	}
	return rows, nil
}

func str(v session.Value) string {
	if v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprintf("%v", v)
}

func boolv(v session.Value) bool {
	if b, ok := v.(bool); ok {
		return b
	}
	return str(v) == "t" || str(v) == "true"
}

func intv(v session.Value) int64 {
	switch n := v.(type) {
	case int64:
		return n
	case int32:
		return int64(n)
	case int:
		return int64(n)
	}
	var n int64
	fmt.Sscanf(str(v), "%d", &n)
	return n
}

func floatv(v session.Value) float64 {
	switch n := v.(type) {
	case float64:
		return n
	case float32:
		return float64(n)
	}
	var f float64
	fmt.Sscanf(str(v), "%g", &f)
	return f
}

// textArray decodes a ::text[] column value, either already a []Value
// (pgx's native array decoding) or the literal text form requiring
// session.ParseArrayLiteral (when the query casts to the textual form
// explicitly to force a byte-stable representation, e.g. for ordered
// option lists).
func textArray(v session.Value) []string {
	if v == nil {
		return nil
	}
	if vals, ok := v.([]session.Value); ok {
		out := make([]string, 0, len(vals))
		for _, e := range vals {
			out = append(out, str(e))
		}
		return out
	}
	parsed, err := session.ParseArrayLiteral(str(v))
	if err != nil {
		return nil
	}
	out := make([]string, 0, len(parsed))
	for _, e := range parsed {
		out = append(out, str(e))
	}
	return out
}

// schemaFilter renders the SQL fragment restricting a query to the
// extractor's target schemas, or, when no target schemas are set, one that
// excludes only pg_catalog, information_schema and pg_toast.
func (e *Extractor) schemaFilter(column string) string {
	if len(e.opts.Schemas) == 0 {
		return fmt.Sprintf("%s NOT IN ('pg_catalog','information_schema','pg_toast')", column)
	}
	list := ""
	for i, s := range e.opts.Schemas {
		if i > 0 {
			list += ","
		}
		list += "'" + escapeLiteral(s) + "'"
	}
	return fmt.Sprintf("%s IN (%s)", column, list)
}

// extensionExclusionClause renders the anti-join predicate that excludes
// objects belonging to an installed extension (spec §4.1.1), unless that
// extension's schema is in ManagedExtensionSchemas. relOIDExpr is the SQL
// expression yielding the object's OID (e.g. "c.oid").
func (e *Extractor) extensionExclusionClause(relOIDExpr, classIDExpr string) string {
	managed := "false"
	if len(e.opts.ManagedExtensionSchemas) > 0 {
		list := ""
		for s := range e.opts.ManagedExtensionSchemas {
			if list != "" {
				list += ","
			}
			list += "'" + escapeLiteral(s) + "'"
		}
		managed = fmt.Sprintf("n.nspname IN (%s)", list)
	}
	return fmt.Sprintf(`NOT EXISTS (
		SELECT 1 FROM pg_depend d
		WHERE d.objid = %s AND d.classid = %s
		  AND d.deptype = 'e'
	) OR (%s)`, relOIDExpr, classIDExpr, managed)
}

func escapeLiteral(s string) string {
	out := make([]byte, 0, len(s))
	for i := 0; i < len(s); i++ {
		if s[i] == '\'' {
			out = append(out, '\'', '\'')
			continue
		}
		out = append(out, s[i])
	}
	return string(out)
}
