package planner

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"

	"github.com/supabase/pg-toolbelt-sub004/catalog"
	"github.com/supabase/pg-toolbelt-sub004/diffengine"
)

// TestPlanIsDeterministic asserts the property spec §8 requires: the same
// Changes and catalogs always produce byte-identical statement order,
// independent of map iteration order inside Plan. Feeding the same changes
// in reversed slice order catches an accidental reliance on slice position
// rather than the (phase, class, ID) tiebreak.
func TestPlanIsDeterministic(t *testing.T) {
	changes := []diffengine.Change{
		{ID: catalog.TableID("app", "orders"), Scope: diffengine.ScopeTable, Operation: diffengine.OpCreate, SQL: "CREATE TABLE app.orders(...);"},
		{ID: catalog.SchemaID("app"), Scope: diffengine.ScopeSchema, Operation: diffengine.OpCreate, SQL: "CREATE SCHEMA app;"},
		{ID: catalog.RoleID("app_owner"), Scope: diffengine.ScopeRole, Operation: diffengine.OpCreate, SQL: "CREATE ROLE app_owner;"},
		{ID: catalog.IndexID("app", "orders_pkey"), Scope: diffengine.ScopeIndex, Operation: diffengine.OpCreate, SQL: "CREATE UNIQUE INDEX orders_pkey ON app.orders(id);"},
	}
	main, branch := catalog.New(), catalog.New()

	first, err := Plan(changes, main, branch, Options{})
	require.NoError(t, err)

	reversed := make([]diffengine.Change, len(changes))
	for i, c := range changes {
		reversed[len(changes)-1-i] = c
	}
	second, err := Plan(reversed, main, branch, Options{})
	require.NoError(t, err)

	if diff := cmp.Diff(first.Statements, second.Statements); diff != "" {
		t.Errorf("Plan is not order-independent (-first +second):\n%s", diff)
	}
}
