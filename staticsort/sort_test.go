package staticsort

import (
	"strings"
	"testing"
)

// fakeParser returns a fixed ParsedStatement for any input containing a
// matching key, letting tests exercise AnalyzeAndSort's graph and
// tie-breaking logic without depending on a real SQL grammar.
type fakeParser struct {
	byContains map[string]ParsedStatement
}

func (f fakeParser) Parse(sql string) ([]ParsedStatement, error) {
	for key, ps := range f.byContains {
		if strings.Contains(sql, key) {
			ps.SQL = sql
			return []ParsedStatement{ps}, nil
		}
	}
	return []ParsedStatement{{SQL: sql, Class: "unknown"}}, nil
}

func TestAnalyzeAndSortOrdersByRequiresProvides(t *testing.T) {
	parser := fakeParser{byContains: map[string]ParsedStatement{
		"CREATE TABLE app.orders": {Class: "create_table", Provides: []string{"relation:app.orders"}, Requires: []string{"relation:app.customers"}},
		"CREATE TABLE app.customers": {Class: "create_table", Provides: []string{"relation:app.customers"}},
	}}

	sqls := []string{"CREATE TABLE app.orders(...);", "CREATE TABLE app.customers(...);"}
	result := AnalyzeAndSort(sqls, parser)

	if len(result.Ordered) != 2 {
		t.Fatalf("expected 2 ordered statements, got %d", len(result.Ordered))
	}
	if !strings.Contains(result.Ordered[0].SQL, "customers") {
		t.Errorf("expected customers first, got order %+v", result.Ordered)
	}
}

func TestAnalyzeAndSortReportsUnresolvedDependency(t *testing.T) {
	parser := fakeParser{byContains: map[string]ParsedStatement{
		"CREATE INDEX": {Class: "create_index", Provides: []string{"index:idx1"}, Requires: []string{"relation:app.missing"}},
	}}

	result := AnalyzeAndSort([]string{"CREATE INDEX idx1 ON app.missing(id);"}, parser)

	var found bool
	for _, d := range result.Diagnostics {
		if d.Code == DiagUnresolvedDependency {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected UNRESOLVED_DEPENDENCY diagnostic, got %+v", result.Diagnostics)
	}
}

func TestAnalyzeAndSortReportsDuplicateProducer(t *testing.T) {
	parser := fakeParser{byContains: map[string]ParsedStatement{
		"one": {Class: "create_table", Provides: []string{"relation:app.orders"}},
		"two": {Class: "create_table", Provides: []string{"relation:app.orders"}},
	}}

	result := AnalyzeAndSort([]string{"-- one\nCREATE TABLE app.orders(...);", "-- two\nCREATE TABLE app.orders(...);"}, parser)

	var found bool
	for _, d := range result.Diagnostics {
		if d.Code == DiagDuplicateProducer {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected DUPLICATE_PRODUCER diagnostic, got %+v", result.Diagnostics)
	}
}

func TestAnalyzeAndSortHonorsPhaseAnnotation(t *testing.T) {
	parser := fakeParser{byContains: map[string]ParsedStatement{
		"GRANT": {Class: "grant"},
	}}

	sql := "-- pg-topo:phase bootstrap\nGRANT SELECT ON app.orders TO reporting;"
	result := AnalyzeAndSort([]string{sql}, parser)

	if len(result.Ordered) != 1 || result.Ordered[0].Phase != "bootstrap" {
		t.Fatalf("expected annotation to override phase to bootstrap, got %+v", result.Ordered)
	}
}

func TestAnalyzeAndSortFlagsInvalidAnnotation(t *testing.T) {
	parser := fakeParser{byContains: map[string]ParsedStatement{
		"GRANT": {Class: "grant"},
	}}

	sql := "-- pg-topo:bogus_directive foo\nGRANT SELECT ON app.orders TO reporting;"
	result := AnalyzeAndSort([]string{sql}, parser)

	var found bool
	for _, d := range result.Diagnostics {
		if d.Code == DiagInvalidAnnotation {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected INVALID_ANNOTATION diagnostic, got %+v", result.Diagnostics)
	}
}

func TestAnalyzeAndSortBreaksCycleOnAlterTable(t *testing.T) {
	parser := fakeParser{byContains: map[string]ParsedStatement{
		"CREATE TABLE app.orders": {Class: "create_table", Provides: []string{"relation:app.orders"}},
		"CREATE TABLE app.customers": {Class: "create_table", Provides: []string{"relation:app.customers"}},
		"orders_customer_fk": {Class: "alter_table", Provides: []string{"constraint:app.orders.orders_customer_fk"}, Requires: []string{"relation:app.customers", "relation:app.orders"}},
		"customers_last_order_fk": {Class: "alter_table", Provides: []string{"constraint:app.customers.customers_last_order_fk"}, Requires: []string{"relation:app.orders", "relation:app.customers"}},
	}}

	sqls := []string{
		"CREATE TABLE app.orders(...);",
		"CREATE TABLE app.customers(...);",
		"ALTER TABLE app.orders ADD CONSTRAINT orders_customer_fk ...;",
		"ALTER TABLE app.customers ADD CONSTRAINT customers_last_order_fk ...;",
	}
	result := AnalyzeAndSort(sqls, parser)

	if len(result.Ordered) != 4 {
		t.Fatalf("expected all 4 statements scheduled, got %d: %+v", len(result.Ordered), result.Ordered)
	}
}
