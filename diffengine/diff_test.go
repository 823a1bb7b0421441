package diffengine

import (
	"strings"
	"testing"

	"github.com/supabase/pg-toolbelt-sub004/catalog"
)

func TestDiffSchemaAddedAndDropped(t *testing.T) {
	main := catalog.New()
	main.Schemas["legacy"] = &catalog.Schema{ID: catalog.SchemaID("legacy"), Name: "legacy", Owner: "postgres"}

	branch := catalog.New()
	branch.Schemas["app"] = &catalog.Schema{ID: catalog.SchemaID("app"), Name: "app", Owner: "postgres"}

	changes := Diff(main, branch)

	var created, dropped bool
	for _, c := range changes {
		if c.Scope == ScopeSchema && c.Operation == OpCreate && strings.Contains(c.SQL, `"app"`) {
			created = true
		}
		if c.Scope == ScopeSchema && c.Operation == OpDrop && strings.Contains(c.SQL, `"legacy"`) {
			dropped = true
		}
	}
	if !created {
		t.Errorf("expected CREATE SCHEMA app, got %+v", changes)
	}
	if !dropped {
		t.Errorf("expected DROP SCHEMA legacy, got %+v", changes)
	}
}

func TestDiffIsDeterministicAcrossRuns(t *testing.T) {
	main := catalog.New()
	branch := catalog.New()
	for _, name := range []string{"z_schema", "a_schema", "m_schema"} {
		branch.Schemas[name] = &catalog.Schema{ID: catalog.SchemaID(name), Name: name, Owner: "postgres"}
	}

	first := Diff(main, branch)
	second := Diff(main, branch)

	if len(first) != len(second) {
		t.Fatalf("change count differs between runs: %d vs %d", len(first), len(second))
	}
	for i := range first {
		if first[i].SQL != second[i].SQL {
			t.Fatalf("change %d differs between runs: %q vs %q", i, first[i].SQL, second[i].SQL)
		}
	}
}

func newTestTable(schema, name string, cols ...*catalog.Column) *catalog.Table {
	return &catalog.Table{
		ID:             catalog.TableID(schema, name),
		Schema:         schema,
		Name:           name,
		Kind:           catalog.TableRegular,
		Columns:        cols,
		Constraints:    map[string]*catalog.Constraint{},
		Indexes:        map[string]*catalog.Index{},
		Triggers:       map[string]*catalog.Trigger{},
		Policies:       map[string]*catalog.RLSPolicy{},
		Rules:          map[string]*catalog.Rule{},
		ColumnComments: map[string]string{},
	}
}

func TestDiffNewTableDoesNotDuplicateColumns(t *testing.T) {
	main := catalog.New()
	branch := catalog.New()
	tbl := newTestTable("app", "orders",
		&catalog.Column{Name: "id", Position: 1, DataType: "bigint", NotNull: true},
		&catalog.Column{Name: "total", Position: 2, DataType: "numeric"},
	)
	branch.Tables[tbl.ID] = tbl

	changes := Diff(main, branch)

	var creates, addColumns int
	for _, c := range changes {
		if c.Scope == ScopeTable && c.Operation == OpCreate {
			creates++
			if !strings.Contains(c.SQL, `"id"`) || !strings.Contains(c.SQL, `"total"`) {
				t.Errorf("CREATE TABLE missing inline columns: %s", c.SQL)
			}
		}
		if c.Scope == ScopeColumn && c.Operation == OpCreate {
			addColumns++
		}
	}
	if creates != 1 {
		t.Fatalf("expected exactly one CREATE TABLE change, got %d", creates)
	}
	if addColumns != 0 {
		t.Errorf("expected no ADD COLUMN changes for a brand-new table, got %d", addColumns)
	}
}

func TestDiffTableColumnAdded(t *testing.T) {
	main := catalog.New()
	branch := catalog.New()

	oldTbl := newTestTable("app", "orders", &catalog.Column{Name: "id", Position: 1, DataType: "bigint"})
	main.Tables[oldTbl.ID] = oldTbl

	newTbl := newTestTable("app", "orders",
		&catalog.Column{Name: "id", Position: 1, DataType: "bigint"},
		&catalog.Column{Name: "status", Position: 2, DataType: "text", NotNull: true},
	)
	branch.Tables[newTbl.ID] = newTbl

	changes := Diff(main, branch)

	var found bool
	for _, c := range changes {
		if c.Scope == ScopeColumn && c.Operation == OpCreate && strings.Contains(c.SQL, `"status"`) {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected ADD COLUMN status, got %+v", changes)
	}
}

func TestDiffEnumAddsValuesPositionally(t *testing.T) {
	main := catalog.New()
	branch := catalog.New()

	id := catalog.TypeID("app", "status")
	old := &catalog.Type{ID: id, Schema: "app", Name: "status", Kind: catalog.TypeEnum, EnumValues: []string{"pending", "done"}}
	main.Types[id] = old

	updated := &catalog.Type{ID: id, Schema: "app", Name: "status", Kind: catalog.TypeEnum, EnumValues: []string{"pending", "in_progress", "done"}}
	branch.Types[id] = updated

	changes := Diff(main, branch)

	var sql string
	for _, c := range changes {
		if c.Scope == ScopeType && strings.Contains(c.SQL, "in_progress") {
			sql = c.SQL
		}
	}
	if sql == "" {
		t.Fatalf("expected an ADD VALUE change for in_progress, got %+v", changes)
	}
	if !strings.Contains(sql, "AFTER 'pending'") {
		t.Errorf("expected positional AFTER clause, got %q", sql)
	}
}

func TestDiffServerOptionsChange(t *testing.T) {
	main := catalog.New()
	branch := catalog.New()

	id := catalog.ServerID("pg_remote")
	main.Servers[id] = &catalog.Server{ID: id, Name: "pg_remote", FDW: "postgres_fdw", Options: optMap("host", "10.0.0.1")}
	branch.Servers[id] = &catalog.Server{ID: id, Name: "pg_remote", FDW: "postgres_fdw", Options: optMap("host", "10.0.0.2")}

	changes := Diff(main, branch)

	var found bool
	for _, c := range changes {
		if c.Scope == ScopeServer && c.Operation == OpAlter && strings.Contains(c.SQL, "SET host") {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected ALTER SERVER ... SET host, got %+v", changes)
	}
}

func TestDiffSubscriptionIgnoresMaskedConnInfo(t *testing.T) {
	main := catalog.New()
	branch := catalog.New()

	id := catalog.SubscriptionID("sub1")
	main.Subscriptions[id] = &catalog.Subscription{ID: id, Name: "sub1", Enabled: true, ConnInfo: optMap("password", "__CONN_PASSWORD__")}
	branch.Subscriptions[id] = &catalog.Subscription{ID: id, Name: "sub1", Enabled: true, ConnInfo: optMap("password", "__CONN_PASSWORD__")}

	if changes := Diff(main, branch); len(changes) != 0 {
		t.Errorf("expected no changes for identical masked subscriptions, got %+v", changes)
	}
}
