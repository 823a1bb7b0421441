package catalog

import "testing"

func TestQuoteIdent(t *testing.T) {
	cases := map[string]string{
		"users":      "users",
		"User":       `"User"`,
		"order":      `"order"`,
		"my col":     `"my col"`,
		`has"quote`:  `"has""quote"`,
	}
	for in, want := range cases {
		if got := QuoteIdent(in); got != want {
			t.Errorf("QuoteIdent(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestFunctionIDDistinguishesOverloads(t *testing.T) {
	a := FunctionID("function", "app", "fn", "integer")
	b := FunctionID("function", "app", "fn", "integer,text")
	if a == b {
		t.Fatalf("expected distinct stable IDs for overloads, got %q == %q", a, b)
	}
}

func TestStableIDKindQualifier(t *testing.T) {
	id := TableID("app", "users")
	if id.Kind() != "table" {
		t.Errorf("Kind() = %q, want table", id.Kind())
	}
	if id.Qualifier() != "app.users" {
		t.Errorf("Qualifier() = %q, want app.users", id.Qualifier())
	}
}

func TestDependencyGraphLookups(t *testing.T) {
	g := NewDependencyGraph()
	tbl := TableID("app", "orders")
	seq := SequenceID("app", "orders_id_seq")
	g.Add(tbl, seq, DepAuto)

	deps := g.DependenciesOf(tbl)
	if len(deps) != 1 || deps[0].Referenced != seq {
		t.Fatalf("DependenciesOf(tbl) = %+v", deps)
	}
	dependents := g.DependentsOf(seq)
	if len(dependents) != 1 || dependents[0].Dependent != tbl {
		t.Fatalf("DependentsOf(seq) = %+v", dependents)
	}
}
