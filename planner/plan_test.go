package planner

import (
	"strings"
	"testing"

	"github.com/supabase/pg-toolbelt-sub004/catalog"
	"github.com/supabase/pg-toolbelt-sub004/diffengine"
)

func idxOf(t *testing.T, stmts []string, substr string) int {
	t.Helper()
	for i, s := range stmts {
		if strings.Contains(s, substr) {
			return i
		}
	}
	t.Fatalf("statement containing %q not found in %v", substr, stmts)
	return -1
}

func TestPlanOrdersBootstrapBeforeDataStructures(t *testing.T) {
	changes := []diffengine.Change{
		{ID: catalog.TableID("app", "orders"), Scope: diffengine.ScopeTable, Operation: diffengine.OpCreate, SQL: "CREATE TABLE app.orders(...);"},
		{ID: catalog.SchemaID("app"), Scope: diffengine.ScopeSchema, Operation: diffengine.OpCreate, SQL: "CREATE SCHEMA app;"},
		{ID: catalog.RoleID("app_owner"), Scope: diffengine.ScopeRole, Operation: diffengine.OpCreate, SQL: "CREATE ROLE app_owner;"},
	}
	main, branch := catalog.New(), catalog.New()

	plan, err := Plan(changes, main, branch, Options{})
	if err != nil {
		t.Fatalf("Plan: %v", err)
	}

	schemaIdx := idxOf(t, plan.Statements, "CREATE SCHEMA")
	roleIdx := idxOf(t, plan.Statements, "CREATE ROLE")
	tableIdx := idxOf(t, plan.Statements, "CREATE TABLE")

	if schemaIdx > tableIdx || roleIdx > tableIdx {
		t.Errorf("expected bootstrap changes before table, got order %v", plan.Statements)
	}
}

func TestPlanRespectsDesiredStateEdges(t *testing.T) {
	seqID := catalog.SequenceID("app", "orders_id_seq")
	tblID := catalog.TableID("app", "orders")

	branch := catalog.New()
	branch.Deps.Add(tblID, seqID, catalog.DepNormal)

	changes := []diffengine.Change{
		{ID: tblID, Scope: diffengine.ScopeTable, Operation: diffengine.OpCreate, SQL: "CREATE TABLE app.orders(id bigint DEFAULT nextval('app.orders_id_seq'));"},
		{ID: seqID, Scope: diffengine.ScopeSequence, Operation: diffengine.OpCreate, SQL: "CREATE SEQUENCE app.orders_id_seq;"},
	}
	main := catalog.New()

	plan, err := Plan(changes, main, branch, Options{})
	if err != nil {
		t.Fatalf("Plan: %v", err)
	}

	seqIdx := idxOf(t, plan.Statements, "CREATE SEQUENCE")
	tblIdx := idxOf(t, plan.Statements, "CREATE TABLE")
	if seqIdx > tblIdx {
		t.Errorf("expected sequence before table, got %v", plan.Statements)
	}
}

func TestPlanRespectsMainStateEdgesOnDrop(t *testing.T) {
	tblID := catalog.TableID("app", "orders")
	constraintID := catalog.ConstraintID("app", "orders", "orders_customer_fk")

	main := catalog.New()
	main.Deps.Add(constraintID, tblID, catalog.DepNormal)

	changes := []diffengine.Change{
		{ID: tblID, Scope: diffengine.ScopeTable, Operation: diffengine.OpDrop, SQL: "DROP TABLE app.orders;"},
		{ID: constraintID, Scope: diffengine.ScopeConstraint, Operation: diffengine.OpDrop, SQL: "ALTER TABLE app.orders DROP CONSTRAINT orders_customer_fk;"},
	}
	branch := catalog.New()

	plan, err := Plan(changes, main, branch, Options{})
	if err != nil {
		t.Fatalf("Plan: %v", err)
	}

	dropConstraintIdx := idxOf(t, plan.Statements, "DROP CONSTRAINT")
	dropTableIdx := idxOf(t, plan.Statements, "DROP TABLE")
	if dropConstraintIdx > dropTableIdx {
		t.Errorf("expected constraint dropped before table, got %v", plan.Statements)
	}
}

func TestPlanBreaksMutualForeignKeyCycle(t *testing.T) {
	ordersID := catalog.TableID("app", "orders")
	customersID := catalog.TableID("app", "customers")
	fk1 := catalog.ConstraintID("app", "orders", "orders_customer_fk")
	fk2 := catalog.ConstraintID("app", "customers", "customers_last_order_fk")

	branch := catalog.New()
	branch.Deps.Add(fk1, customersID, catalog.DepNormal)
	branch.Deps.Add(fk2, ordersID, catalog.DepNormal)
	branch.Deps.Add(fk1, ordersID, catalog.DepInternal)
	branch.Deps.Add(fk2, customersID, catalog.DepInternal)

	changes := []diffengine.Change{
		{ID: ordersID, Scope: diffengine.ScopeTable, Operation: diffengine.OpCreate, SQL: "CREATE TABLE app.orders(...);"},
		{ID: customersID, Scope: diffengine.ScopeTable, Operation: diffengine.OpCreate, SQL: "CREATE TABLE app.customers(...);"},
		{ID: fk1, Scope: diffengine.ScopeConstraint, Operation: diffengine.OpCreate, SQL: "ALTER TABLE app.orders ADD CONSTRAINT orders_customer_fk ...;"},
		{ID: fk2, Scope: diffengine.ScopeConstraint, Operation: diffengine.OpCreate, SQL: "ALTER TABLE app.customers ADD CONSTRAINT customers_last_order_fk ...;"},
	}
	main := catalog.New()

	plan, err := Plan(changes, main, branch, Options{})
	if err != nil {
		t.Fatalf("Plan: %v", err)
	}
	if len(plan.Statements) != 4 {
		t.Fatalf("expected all 4 statements to be scheduled despite the cycle, got %v", plan.Statements)
	}
}

func TestPlanPrefixesSetRole(t *testing.T) {
	changes := []diffengine.Change{
		{ID: catalog.SchemaID("app"), Scope: diffengine.ScopeSchema, Operation: diffengine.OpCreate, SQL: "CREATE SCHEMA app;"},
	}
	main, branch := catalog.New(), catalog.New()

	plan, err := Plan(changes, main, branch, Options{Role: "deploy_role"})
	if err != nil {
		t.Fatalf("Plan: %v", err)
	}
	if !strings.Contains(plan.Statements[0], "SET ROLE") || !strings.Contains(plan.Statements[0], "deploy_role") {
		t.Fatalf("expected leading SET ROLE statement, got %v", plan.Statements)
	}
}

func TestPlanSortChangesCallbackSeedsAdversarialOrder(t *testing.T) {
	seqID := catalog.SequenceID("app", "orders_id_seq")
	tblID := catalog.TableID("app", "orders")

	branch := catalog.New()
	branch.Deps.Add(tblID, seqID, catalog.DepNormal)

	changes := []diffengine.Change{
		{ID: tblID, Scope: diffengine.ScopeTable, Operation: diffengine.OpCreate, SQL: "CREATE TABLE app.orders(...);"},
		{ID: seqID, Scope: diffengine.ScopeSequence, Operation: diffengine.OpCreate, SQL: "CREATE SEQUENCE app.orders_id_seq;"},
	}
	main := catalog.New()

	adversarial := func(a, b diffengine.Change) int {
		// deliberately reverse whatever order the caller handed in
		if a.ID > b.ID {
			return -1
		}
		if a.ID < b.ID {
			return 1
		}
		return 0
	}

	plan, err := Plan(changes, main, branch, Options{SortChangesCallback: adversarial})
	if err != nil {
		t.Fatalf("Plan: %v", err)
	}

	seqIdx := idxOf(t, plan.Statements, "CREATE SEQUENCE")
	tblIdx := idxOf(t, plan.Statements, "CREATE TABLE")
	if seqIdx > tblIdx {
		t.Errorf("dependency edges must win over the adversarial seed order, got %v", plan.Statements)
	}
}
