// Package diffengine implements the Differ (component C): given a main
// catalog.Catalog and a branch catalog.Catalog, it produces the ordered set
// of typed Changes needed to bring main to branch's state, generalized from
// a table-centric comparison to the full catalog.Catalog model and from ad
// hoc SQL-string diffs to a typed Change carrying pre-rendered SQL, which
// the Dependency Planner (component D) is free to reorder without
// re-deriving it.
package diffengine

import (
	"github.com/oapi-codegen/nullable"

	"github.com/supabase/pg-toolbelt-sub004/catalog"
)

// Operation is the DDL verb a Change applies.
type Operation string

const (
	OpCreate  Operation = "CREATE"
	OpAlter   Operation = "ALTER"
	OpDrop    Operation = "DROP"
	OpComment Operation = "COMMENT"
)

// Scope categorizes a Change's object kind for phase assignment in the
// Planner (spec §4.3's phase table is keyed by Scope).
type Scope string

const (
	ScopeSchema       Scope = "schema"
	ScopeExtension    Scope = "extension"
	ScopeRole         Scope = "role"
	ScopeCollation    Scope = "collation"
	ScopeType         Scope = "type"
	ScopeSequence     Scope = "sequence"
	ScopeTable        Scope = "table"
	ScopeColumn       Scope = "column"
	ScopeConstraint   Scope = "constraint"
	ScopeIndex        Scope = "index"
	ScopeTrigger      Scope = "trigger"
	ScopeEventTrigger Scope = "event_trigger"
	ScopeRule         Scope = "rule"
	ScopePolicy       Scope = "policy"
	ScopeRLS          Scope = "rls"
	ScopeView         Scope = "view"
	ScopeMatview      Scope = "matview"
	ScopeFunction     Scope = "function"
	ScopeAggregate    Scope = "aggregate"
	ScopeFDW          Scope = "fdw"
	ScopeServer       Scope = "server"
	ScopeUserMapping  Scope = "user_mapping"
	ScopePublication  Scope = "publication"
	ScopeSubscription Scope = "subscription"
	ScopePrivilege    Scope = "privilege"
	ScopePartition    Scope = "partition"
	ScopeComment      Scope = "comment"
)

// Change is one DDL statement plus the metadata the Planner needs to order
// and the Apply Engine needs to execute and report it.
type Change struct {
	// ID is the StableID of the object this Change targets (its Dependent
	// side in the dependency graph).
	ID StableIDLike
	// Scope groups this change into the Planner's phase table.
	Scope Scope
	// Operation is CREATE/ALTER/DROP/COMMENT.
	Operation Operation
	// SQL is the exact statement text to execute, already fully rendered
	// (identifiers quoted, literals escaped).
	SQL string
	// Description is a short human-readable summary for plan output and
	// logging, e.g. "create table public.orders".
	Description string
	// Payload carries facet-specific structured detail a caller may want
	// without re-parsing SQL. Only ColumnDefaultChange currently populates
	// it (spec §4.1's "absent vs explicitly cleared" distinction for a
	// dropped DEFAULT); other Changes leave it nil.
	Payload any
}

// ColumnDefaultChange is the Payload of an ALTER COLUMN ... SET/DROP
// DEFAULT Change: a null Default means the column's default was dropped, a
// non-null one carries the new expression.
type ColumnDefaultChange struct {
	Column  string                    `json:"column"`
	Default nullable.Nullable[string] `json:"default"`
}

// StableIDLike is catalog.StableID; aliased so this package's exported
// surface does not force every caller to import catalog just to name the
// field type in struct literals outside this package.
type StableIDLike = catalog.StableID

// changeBuilder accumulates Changes and nothing else; it exists purely to
// make the long Diff orchestration read as a sequence of "append changes
// for this object kind" steps instead of bare slice mutation.
type changeBuilder struct {
	changes []Change
}

func (b *changeBuilder) add(c Change) {
	b.changes = append(b.changes, c)
}

func (b *changeBuilder) addAll(cs []Change) {
	b.changes = append(b.changes, cs...)
}
