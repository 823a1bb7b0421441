package diffengine

import (
	"fmt"
	"sort"

	"github.com/supabase/pg-toolbelt-sub004/catalog"
	"github.com/supabase/pg-toolbelt-sub004/internal/logger"
)

// Diff compares main (the catalog as currently deployed) against branch (the
// desired catalog) and returns every Change needed to move main to branch.
// Changes are not yet ordered for execution; that is the Dependency
// Planner's job (component D). This only performs the per-facet
// only-in-branch / only-in-main / in-both set comparison (spec §4.2) and
// renders the resulting SQL.
func Diff(main, branch *catalog.Catalog) []Change {
	logger.WithComponent("diffengine").Debug("diffing catalogs",
		"main_tables", len(main.Tables), "branch_tables", len(branch.Tables))
	b := &changeBuilder{}

	diffSchemas(b, main, branch)
	diffExtensions(b, main, branch)
	diffRoles(b, main, branch)
	diffDefaultPrivileges(b, main, branch)
	diffCollations(b, main, branch)
	diffTypes(b, main, branch)
	diffSequences(b, main, branch)
	diffTables(b, main, branch)
	diffPartitionAttachments(b, main, branch)
	diffViews(b, main, branch)
	diffFunctions(b, main, branch)
	diffAggregates(b, main, branch)
	diffEventTriggers(b, main, branch)
	diffFDWs(b, main, branch)
	diffPublications(b, main, branch)
	diffSubscriptions(b, main, branch)

	sort.SliceStable(b.changes, func(i, j int) bool {
		ci, cj := b.changes[i], b.changes[j]
		if ci.ID != cj.ID {
			return ci.ID < cj.ID
		}
		if ci.Scope != cj.Scope {
			return ci.Scope < cj.Scope
		}
		return ci.Description < cj.Description
	})

	return b.changes
}

func diffSchemas(b *changeBuilder, main, branch *catalog.Catalog) {
	for _, name := range sortedStrings(branch.Schemas) {
		s := branch.Schemas[name]
		old, existed := main.Schemas[name]
		if !existed {
			b.add(Change{ID: s.ID, Scope: ScopeSchema, Operation: OpCreate, SQL: createSchemaSQL(s), Description: "create schema " + name})
			b.addAll(diffPrivileges(s.ID, "SCHEMA "+q(s.Name), "schema "+name, nil, s.Privileges))
			if s.Comment != "" {
				b.add(Change{ID: s.ID, Scope: ScopeComment, Operation: OpComment, SQL: commentSQL("SCHEMA "+q(s.Name), s.Comment), Description: "comment on schema " + name})
			}
			continue
		}
		if old.Owner != s.Owner {
			b.add(Change{ID: s.ID, Scope: ScopeSchema, Operation: OpAlter, SQL: alterSchemaOwnerSQL(s), Description: "alter schema owner " + name})
		}
		b.addAll(diffPrivileges(s.ID, "SCHEMA "+q(s.Name), "schema "+name, old.Privileges, s.Privileges))
		if old.Comment != s.Comment {
			b.add(Change{ID: s.ID, Scope: ScopeComment, Operation: OpComment, SQL: commentSQL("SCHEMA "+q(s.Name), s.Comment), Description: "comment on schema " + name})
		}
	}
	for _, name := range sortedStrings(main.Schemas) {
		if _, ok := branch.Schemas[name]; !ok {
			s := main.Schemas[name]
			b.add(Change{ID: s.ID, Scope: ScopeSchema, Operation: OpDrop, SQL: dropSchemaSQL(s), Description: "drop schema " + name})
		}
	}
}

func diffExtensions(b *changeBuilder, main, branch *catalog.Catalog) {
	for _, name := range sortedStrings(branch.Extensions) {
		e := branch.Extensions[name]
		if old, ok := main.Extensions[name]; !ok {
			b.add(Change{ID: e.ID, Scope: ScopeExtension, Operation: OpCreate, SQL: createExtensionSQL(e), Description: "create extension " + name})
		} else if old.Version != e.Version {
			b.add(Change{ID: e.ID, Scope: ScopeExtension, Operation: OpAlter, SQL: alterExtensionVersionSQL(e), Description: "update extension " + name})
		}
	}
	for _, name := range sortedStrings(main.Extensions) {
		if _, ok := branch.Extensions[name]; !ok {
			e := main.Extensions[name]
			b.add(Change{ID: e.ID, Scope: ScopeExtension, Operation: OpDrop, SQL: dropExtensionSQL(e), Description: "drop extension " + name})
		}
	}
}

func diffRoles(b *changeBuilder, main, branch *catalog.Catalog) {
	for _, name := range sortedStrings(branch.Roles) {
		r := branch.Roles[name]
		if old, ok := main.Roles[name]; !ok {
			b.add(Change{ID: r.ID, Scope: ScopeRole, Operation: OpCreate, SQL: createRoleSQL(r), Description: "create role " + name})
		} else if !roleAttrsEqual(old, r) {
			b.add(Change{ID: r.ID, Scope: ScopeRole, Operation: OpAlter, SQL: alterRoleAttrsSQL(r), Description: "alter role " + name})
		}
	}
	for _, name := range sortedStrings(main.Roles) {
		if _, ok := branch.Roles[name]; !ok {
			r := main.Roles[name]
			b.add(Change{ID: r.ID, Scope: ScopeRole, Operation: OpDrop, SQL: dropRoleSQL(r), Description: "drop role " + name})
		}
	}
}

func roleAttrsEqual(a, c *catalog.Role) bool {
	return a.Superuser == c.Superuser && a.CreateDB == c.CreateDB && a.CreateRole == c.CreateRole &&
		a.CanLogin == c.CanLogin && a.Replication == c.Replication && a.ConnectionLimit == c.ConnectionLimit
}

func diffCollations(b *changeBuilder, main, branch *catalog.Catalog) {
	for _, id := range branch.SortedCollationIDs() {
		c := branch.Collations[id]
		if _, ok := main.Collations[id]; !ok {
			b.add(Change{ID: id, Scope: ScopeCollation, Operation: OpCreate, SQL: createCollationSQL(c), Description: "create collation " + c.Name})
		}
	}
	for _, id := range main.SortedCollationIDs() {
		if _, ok := branch.Collations[id]; !ok {
			c := main.Collations[id]
			b.add(Change{ID: id, Scope: ScopeCollation, Operation: OpDrop, SQL: dropCollationSQL(c), Description: "drop collation " + c.Name})
		}
	}
}

func diffTypes(b *changeBuilder, main, branch *catalog.Catalog) {
	for _, id := range branch.SortedTypeIDs() {
		nt := branch.Types[id]
		objRef := "TYPE " + qq(nt.Schema, nt.Name)
		if ot, ok := main.Types[id]; !ok {
			b.add(Change{ID: id, Scope: ScopeType, Operation: OpCreate, SQL: createTypeSQL(nt), Description: "create type " + nt.Name})
			b.addAll(diffPrivileges(id, objRef, "type "+nt.Name, nil, nt.Privileges))
			if nt.Comment != "" {
				b.add(Change{ID: id, Scope: ScopeComment, Operation: OpComment, SQL: commentSQL(objRef, nt.Comment), Description: "comment on type " + nt.Name})
			}
		} else {
			diffTypeBody(b, id, ot, nt)
			b.addAll(diffPrivileges(id, objRef, "type "+nt.Name, ot.Privileges, nt.Privileges))
			if ot.Comment != nt.Comment {
				b.add(Change{ID: id, Scope: ScopeComment, Operation: OpComment, SQL: commentSQL(objRef, nt.Comment), Description: "comment on type " + nt.Name})
			}
		}
	}
	for _, id := range main.SortedTypeIDs() {
		if _, ok := branch.Types[id]; !ok {
			ot := main.Types[id]
			b.add(Change{ID: id, Scope: ScopeType, Operation: OpDrop, SQL: dropTypeSQL(ot), Description: "drop type " + ot.Name})
		}
	}
}

// diffTypeBody compares an existing enum/domain/composite/range body.
// Enum values are diffed positionally (spec §3.2's "positional enum diff"):
// each added value that has a predecessor in the branch's list, whether at
// the tail or mid-sequence, is ADD VALUE ... AFTER that predecessor, since
// Postgres has no enum-reorder primitive and removing values is not
// supported at all.
func diffTypeBody(b *changeBuilder, id catalog.StableID, ot, nt *catalog.Type) {
	if nt.Kind != catalog.TypeEnum {
		return
	}
	oldSet := make(map[string]bool, len(ot.EnumValues))
	for _, v := range ot.EnumValues {
		oldSet[v] = true
	}
	prev := ""
	for _, v := range nt.EnumValues {
		if !oldSet[v] {
			b.add(Change{ID: id, Scope: ScopeType, Operation: OpAlter, SQL: addEnumValueSQL(nt, v, prev), Description: "add enum value " + nt.Name + "." + v})
		}
		prev = v
	}
}

func diffSequences(b *changeBuilder, main, branch *catalog.Catalog) {
	for _, id := range branch.SortedSequenceIDs() {
		ns := branch.Sequences[id]
		if ns.OwnedByTable != "" {
			continue // identity-backed sequences follow their column
		}
		os, existed := main.Sequences[id]
		if !existed {
			b.add(Change{ID: id, Scope: ScopeSequence, Operation: OpCreate, SQL: createSequenceSQL(ns), Description: "create sequence " + ns.Name})
			b.addAll(diffPrivileges(id, "SEQUENCE "+qq(ns.Schema, ns.Name), "sequence "+ns.Name, nil, ns.Privileges))
			if ns.Comment != "" {
				b.add(Change{ID: id, Scope: ScopeComment, Operation: OpComment, SQL: commentSQL("SEQUENCE "+qq(ns.Schema, ns.Name), ns.Comment), Description: "comment on sequence " + ns.Name})
			}
			continue
		}
		if !sequenceEqual(os, ns) {
			b.add(Change{ID: id, Scope: ScopeSequence, Operation: OpAlter, SQL: alterSequenceSQL(ns), Description: "alter sequence " + ns.Name})
		}
		b.addAll(diffPrivileges(id, "SEQUENCE "+qq(ns.Schema, ns.Name), "sequence "+ns.Name, os.Privileges, ns.Privileges))
		if os.Comment != ns.Comment {
			b.add(Change{ID: id, Scope: ScopeComment, Operation: OpComment, SQL: commentSQL("SEQUENCE "+qq(ns.Schema, ns.Name), ns.Comment), Description: "comment on sequence " + ns.Name})
		}
	}
	for _, id := range main.SortedSequenceIDs() {
		os := main.Sequences[id]
		if os.OwnedByTable != "" {
			continue
		}
		if _, ok := branch.Sequences[id]; !ok {
			b.add(Change{ID: id, Scope: ScopeSequence, Operation: OpDrop, SQL: dropSequenceSQL(os), Description: "drop sequence " + os.Name})
		}
	}
}

func sequenceEqual(a, c *catalog.Sequence) bool {
	return a.Increment == c.Increment && a.Min == c.Min && a.Max == c.Max && a.CacheSize == c.CacheSize && a.Cycle == c.Cycle
}

func diffTables(b *changeBuilder, main, branch *catalog.Catalog) {
	for _, id := range branch.SortedTableIDs() {
		nt := branch.Tables[id]
		if ot, ok := main.Tables[id]; !ok {
			b.add(Change{ID: id, Scope: ScopeTable, Operation: OpCreate, SQL: createTableSQL(nt), Description: "create table " + nt.Schema + "." + nt.Name})
			// Columns are already inlined into the CREATE TABLE statement
			// above; only the facets CREATE TABLE can't express (table-level
			// constraints, indexes, triggers, policies, rules, RLS, column
			// privileges and column comments) still need their own Changes
			// for a brand-new table.
			emptyOld := &catalog.Table{Schema: nt.Schema, Name: nt.Name}
			diffConstraints(b, id, emptyOld, nt)
			diffIndexes(b, id, emptyOld, nt)
			diffTriggers(b, id, emptyOld, nt)
			diffPolicies(b, id, emptyOld, nt)
			diffRules(b, id, emptyOld, nt)
			diffRLS(b, id, emptyOld, nt)
			for _, c := range sortedColumns(nt.Columns) {
				b.addAll(diffColumnPrivileges(id, nt.Schema, nt.Name, c.Name, nil, c.Privileges))
				if c.Comment != "" {
					onClause := "COLUMN " + qq(nt.Schema, nt.Name) + "." + q(c.Name)
					b.add(Change{ID: id, Scope: ScopeComment, Operation: OpComment, SQL: commentSQL(onClause, c.Comment), Description: "comment on column " + nt.Name + "." + c.Name})
				}
			}
			b.addAll(diffPrivileges(id, "TABLE "+qq(nt.Schema, nt.Name), "table "+nt.Name, nil, nt.Privileges))
			if nt.Comment != "" {
				b.add(Change{ID: id, Scope: ScopeComment, Operation: OpComment, SQL: commentSQL("TABLE "+qq(nt.Schema, nt.Name), nt.Comment), Description: "comment on table " + nt.Name})
			}
		} else {
			diffTableChildren(b, id, ot, nt)
		}
	}
	for _, id := range main.SortedTableIDs() {
		if _, ok := branch.Tables[id]; !ok {
			ot := main.Tables[id]
			b.add(Change{ID: id, Scope: ScopeTable, Operation: OpDrop, SQL: dropTableSQL(ot), Description: "drop table " + ot.Schema + "." + ot.Name})
		}
	}
}

func diffTableChildren(b *changeBuilder, id catalog.StableID, ot, nt *catalog.Table) {
	diffColumns(b, id, ot, nt)
	diffConstraints(b, id, ot, nt)
	diffIndexes(b, id, ot, nt)
	diffTriggers(b, id, ot, nt)
	diffPolicies(b, id, ot, nt)
	diffRules(b, id, ot, nt)
	diffRLS(b, id, ot, nt)
	b.addAll(diffPrivileges(id, "TABLE "+qq(nt.Schema, nt.Name), "table "+nt.Name, ot.Privileges, nt.Privileges))
	if ot.Comment != nt.Comment {
		b.add(Change{ID: id, Scope: ScopeComment, Operation: OpComment, SQL: commentSQL("TABLE "+qq(nt.Schema, nt.Name), nt.Comment), Description: "comment on table " + nt.Name})
	}
}

func diffColumns(b *changeBuilder, id catalog.StableID, ot, nt *catalog.Table) {
	oldCols := make(map[string]*catalog.Column, len(ot.Columns))
	for _, c := range ot.Columns {
		oldCols[c.Name] = c
	}
	newCols := make(map[string]*catalog.Column, len(nt.Columns))
	for _, c := range nt.Columns {
		newCols[c.Name] = c
	}
	for _, c := range sortedColumns(nt.Columns) {
		oc, existed := oldCols[c.Name]
		if !existed {
			b.add(Change{ID: id, Scope: ScopeColumn, Operation: OpCreate, SQL: addColumnSQL(nt.Schema, nt.Name, c), Description: "add column " + nt.Name + "." + c.Name})
			b.addAll(diffColumnPrivileges(id, nt.Schema, nt.Name, c.Name, nil, c.Privileges))
			if c.Comment != "" {
				onClause := "COLUMN " + qq(nt.Schema, nt.Name) + "." + q(c.Name)
				b.add(Change{ID: id, Scope: ScopeComment, Operation: OpComment, SQL: commentSQL(onClause, c.Comment), Description: "comment on column " + nt.Name + "." + c.Name})
			}
			continue
		}
		if oc.DataType != c.DataType || oc.Collation != c.Collation {
			b.add(Change{ID: id, Scope: ScopeColumn, Operation: OpAlter, SQL: alterColumnTypeSQL(nt.Schema, nt.Name, c), Description: "alter column type " + nt.Name + "." + c.Name})
		}
		if oc.NotNull != c.NotNull {
			b.add(Change{ID: id, Scope: ScopeColumn, Operation: OpAlter, SQL: alterColumnNullabilitySQL(nt.Schema, nt.Name, c.Name, c.NotNull), Description: "alter column nullability " + nt.Name + "." + c.Name})
		}
		if !defaultsEqual(oc.Default, c.Default) {
			b.add(Change{
				ID: id, Scope: ScopeColumn, Operation: OpAlter,
				SQL:         alterColumnDefaultSQL(nt.Schema, nt.Name, c.Name, c.Default),
				Description: "alter column default " + nt.Name + "." + c.Name,
				Payload:     columnDefaultPayload(c),
			})
		}
		b.addAll(diffColumnPrivileges(id, nt.Schema, nt.Name, c.Name, oc.Privileges, c.Privileges))
		if oc.Comment != c.Comment {
			onClause := "COLUMN " + qq(nt.Schema, nt.Name) + "." + q(c.Name)
			b.add(Change{ID: id, Scope: ScopeComment, Operation: OpComment, SQL: commentSQL(onClause, c.Comment), Description: "comment on column " + nt.Name + "." + c.Name})
		}
	}
	for _, c := range sortedColumns(ot.Columns) {
		if _, ok := newCols[c.Name]; !ok {
			b.add(Change{ID: id, Scope: ScopeColumn, Operation: OpDrop, SQL: dropColumnSQL(nt.Schema, nt.Name, c.Name), Description: "drop column " + nt.Name + "." + c.Name})
		}
	}
}

func sortedColumns(cols []*catalog.Column) []*catalog.Column {
	out := make([]*catalog.Column, len(cols))
	copy(out, cols)
	sort.Slice(out, func(i, j int) bool { return out[i].Position < out[j].Position })
	return out
}

func diffConstraints(b *changeBuilder, id catalog.StableID, ot, nt *catalog.Table) {
	for _, name := range sortedStrings(nt.Constraints) {
		nc := nt.Constraints[name]
		oc, ok := ot.Constraints[name]
		cid := catalog.ConstraintID(nt.Schema, nt.Name, name)
		if !ok {
			b.add(Change{ID: cid, Scope: ScopeConstraint, Operation: OpCreate, SQL: addConstraintSQL(nt.Schema, nt.Name, nc), Description: "add constraint " + name})
		} else if constraintDefSQL(oc) != constraintDefSQL(nc) {
			b.add(Change{ID: cid, Scope: ScopeConstraint, Operation: OpDrop, SQL: dropConstraintSQL(nt.Schema, nt.Name, name), Description: "drop constraint " + name + " (recreate)"})
			b.add(Change{ID: cid, Scope: ScopeConstraint, Operation: OpCreate, SQL: addConstraintSQL(nt.Schema, nt.Name, nc), Description: "recreate constraint " + name})
		}
	}
	for _, name := range sortedStrings(ot.Constraints) {
		if _, ok := nt.Constraints[name]; !ok {
			cid := catalog.ConstraintID(nt.Schema, nt.Name, name)
			b.add(Change{ID: cid, Scope: ScopeConstraint, Operation: OpDrop, SQL: dropConstraintSQL(nt.Schema, nt.Name, name), Description: "drop constraint " + name})
		}
	}
}

func diffIndexes(b *changeBuilder, id catalog.StableID, ot, nt *catalog.Table) {
	for _, name := range sortedStrings(nt.Indexes) {
		ni := nt.Indexes[name]
		iid := catalog.IndexID(nt.Schema, name)
		if _, ok := ot.Indexes[name]; !ok {
			b.add(Change{ID: iid, Scope: ScopeIndex, Operation: OpCreate, SQL: createIndexSQL(ni), Description: "create index " + name})
		}
	}
	for _, name := range sortedStrings(ot.Indexes) {
		if _, ok := nt.Indexes[name]; !ok {
			oi := ot.Indexes[name]
			iid := catalog.IndexID(nt.Schema, name)
			b.add(Change{ID: iid, Scope: ScopeIndex, Operation: OpDrop, SQL: dropIndexSQL(oi), Description: "drop index " + name})
		}
	}
}

func diffTriggers(b *changeBuilder, id catalog.StableID, ot, nt *catalog.Table) {
	for _, name := range sortedStrings(nt.Triggers) {
		nTrig := nt.Triggers[name]
		tid := catalog.TriggerID(nt.Schema, nt.Name, name)
		if _, ok := ot.Triggers[name]; !ok {
			b.add(Change{ID: tid, Scope: ScopeTrigger, Operation: OpCreate, SQL: createTriggerSQL(nTrig), Description: "create trigger " + name})
		}
	}
	for _, name := range sortedStrings(ot.Triggers) {
		if _, ok := nt.Triggers[name]; !ok {
			oTrig := ot.Triggers[name]
			tid := catalog.TriggerID(nt.Schema, nt.Name, name)
			b.add(Change{ID: tid, Scope: ScopeTrigger, Operation: OpDrop, SQL: dropTriggerSQL(oTrig), Description: "drop trigger " + name})
		}
	}
}

func diffPolicies(b *changeBuilder, id catalog.StableID, ot, nt *catalog.Table) {
	for _, name := range sortedStrings(nt.Policies) {
		np := nt.Policies[name]
		pid := catalog.PolicyID(nt.Schema, nt.Name, name)
		if _, ok := ot.Policies[name]; !ok {
			b.add(Change{ID: pid, Scope: ScopePolicy, Operation: OpCreate, SQL: createPolicySQL(np), Description: "create policy " + name})
		}
	}
	for _, name := range sortedStrings(ot.Policies) {
		if _, ok := nt.Policies[name]; !ok {
			op := ot.Policies[name]
			pid := catalog.PolicyID(nt.Schema, nt.Name, name)
			b.add(Change{ID: pid, Scope: ScopePolicy, Operation: OpDrop, SQL: dropPolicySQL(op), Description: "drop policy " + name})
		}
	}
}

func diffRules(b *changeBuilder, id catalog.StableID, ot, nt *catalog.Table) {
	for _, name := range sortedStrings(nt.Rules) {
		nr := nt.Rules[name]
		rid := catalog.RuleID(nt.Schema, nt.Name, name)
		if _, ok := ot.Rules[name]; !ok {
			b.add(Change{ID: rid, Scope: ScopeRule, Operation: OpCreate, SQL: createRuleSQL(nr), Description: "create rule " + name})
		}
	}
	for _, name := range sortedStrings(ot.Rules) {
		if _, ok := nt.Rules[name]; !ok {
			or := ot.Rules[name]
			rid := catalog.RuleID(nt.Schema, nt.Name, name)
			b.add(Change{ID: rid, Scope: ScopeRule, Operation: OpDrop, SQL: dropRuleSQL(or), Description: "drop rule " + name})
		}
	}
}

func diffRLS(b *changeBuilder, id catalog.StableID, ot, nt *catalog.Table) {
	if ot.RLSEnabled != nt.RLSEnabled || ot.RLSForced != nt.RLSForced {
		b.add(Change{ID: id, Scope: ScopeRLS, Operation: OpAlter, SQL: alterRLSSQL(nt.Schema, nt.Name, nt.RLSEnabled, nt.RLSForced), Description: "alter row level security " + nt.Name})
	}
}

func diffPartitionAttachments(b *changeBuilder, main, branch *catalog.Catalog) {
	mainAtt := make(map[string]*catalog.PartitionAttachment)
	for _, a := range main.PartitionAttachments {
		mainAtt[a.ChildSchema+"."+a.ChildTable] = a
	}
	branchAtt := make(map[string]*catalog.PartitionAttachment)
	for _, a := range branch.PartitionAttachments {
		branchAtt[a.ChildSchema+"."+a.ChildTable] = a
	}
	keys := make([]string, 0, len(branchAtt))
	for k := range branchAtt {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		a := branchAtt[k]
		if _, ok := mainAtt[k]; !ok {
			id := catalog.TableID(a.ChildSchema, a.ChildTable)
			b.add(Change{ID: id, Scope: ScopePartition, Operation: OpAlter, SQL: attachPartitionSQL(catalog.TableID(a.ParentSchema, a.ParentTable), a.ParentSchema, a.ParentTable, a), Description: "attach partition " + k})
		}
	}
	mKeys := make([]string, 0, len(mainAtt))
	for k := range mainAtt {
		mKeys = append(mKeys, k)
	}
	sort.Strings(mKeys)
	for _, k := range mKeys {
		a := mainAtt[k]
		if _, ok := branchAtt[k]; !ok {
			id := catalog.TableID(a.ChildSchema, a.ChildTable)
			b.add(Change{ID: id, Scope: ScopePartition, Operation: OpAlter, SQL: detachPartitionSQL(a.ParentSchema, a.ParentTable, a.ChildSchema, a.ChildTable), Description: "detach partition " + k})
		}
	}
}

func diffViews(b *changeBuilder, main, branch *catalog.Catalog) {
	for _, id := range branch.SortedViewIDs() {
		nv := branch.Views[id]
		objRef := viewObjectRef(nv)
		ov, existed := main.Views[id]
		if !existed {
			b.add(Change{ID: id, Scope: viewScope(nv), Operation: OpCreate, SQL: createViewSQL(nv), Description: "create view " + nv.Name})
			b.addAll(diffPrivileges(id, objRef, "view "+nv.Name, nil, nv.Privileges))
			if nv.Comment != "" {
				b.add(Change{ID: id, Scope: ScopeComment, Operation: OpComment, SQL: commentSQL(objRef, nv.Comment), Description: "comment on view " + nv.Name})
			}
			continue
		}
		if ov.Definition != nv.Definition {
			if nv.Materialized {
				b.add(Change{ID: id, Scope: ScopeMatview, Operation: OpDrop, SQL: dropViewSQL(ov), Description: "drop materialized view " + nv.Name + " (recreate)"})
				b.add(Change{ID: id, Scope: ScopeMatview, Operation: OpCreate, SQL: createViewSQL(nv), Description: "recreate materialized view " + nv.Name})
			} else {
				b.add(Change{ID: id, Scope: ScopeView, Operation: OpAlter, SQL: replaceViewSQL(nv), Description: "replace view " + nv.Name})
			}
		}
		b.addAll(diffPrivileges(id, objRef, "view "+nv.Name, ov.Privileges, nv.Privileges))
		if ov.Comment != nv.Comment {
			b.add(Change{ID: id, Scope: ScopeComment, Operation: OpComment, SQL: commentSQL(objRef, nv.Comment), Description: "comment on view " + nv.Name})
		}
	}
	for _, id := range main.SortedViewIDs() {
		if _, ok := branch.Views[id]; !ok {
			ov := main.Views[id]
			b.add(Change{ID: id, Scope: viewScope(ov), Operation: OpDrop, SQL: dropViewSQL(ov), Description: "drop view " + ov.Name})
		}
	}
}

func viewScope(v *catalog.View) Scope {
	if v.Materialized {
		return ScopeMatview
	}
	return ScopeView
}

func viewObjectRef(v *catalog.View) string {
	if v.Materialized {
		return "MATERIALIZED VIEW " + qq(v.Schema, v.Name)
	}
	return "VIEW " + qq(v.Schema, v.Name)
}

func diffFunctions(b *changeBuilder, main, branch *catalog.Catalog) {
	for _, id := range branch.SortedFunctionIDs() {
		nf := branch.Functions[id]
		objRef := functionObjectRef(nf)
		of, existed := main.Functions[id]
		if !existed {
			b.add(Change{ID: id, Scope: ScopeFunction, Operation: OpCreate, SQL: createFunctionSQL(nf), Description: "create function " + nf.Name})
			b.addAll(diffPrivileges(id, objRef, "function "+nf.Name, nil, nf.Privileges))
			if nf.Comment != "" {
				b.add(Change{ID: id, Scope: ScopeComment, Operation: OpComment, SQL: commentSQL(objRef, nf.Comment), Description: "comment on function " + nf.Name})
			}
			continue
		}
		if of.Body != nf.Body || of.Volatility != nf.Volatility {
			b.add(Change{ID: id, Scope: ScopeFunction, Operation: OpAlter, SQL: createFunctionSQL(nf), Description: "replace function " + nf.Name})
		}
		b.addAll(diffPrivileges(id, objRef, "function "+nf.Name, of.Privileges, nf.Privileges))
		if of.Comment != nf.Comment {
			b.add(Change{ID: id, Scope: ScopeComment, Operation: OpComment, SQL: commentSQL(objRef, nf.Comment), Description: "comment on function " + nf.Name})
		}
	}
	for _, id := range main.SortedFunctionIDs() {
		if _, ok := branch.Functions[id]; !ok {
			of := main.Functions[id]
			b.add(Change{ID: id, Scope: ScopeFunction, Operation: OpDrop, SQL: dropFunctionSQL(of), Description: "drop function " + of.Name})
		}
	}
}

func diffAggregates(b *changeBuilder, main, branch *catalog.Catalog) {
	for _, id := range branch.SortedAggregateIDs() {
		na := branch.Aggregates[id]
		objRef := aggregateObjectRef(na)
		oa, existed := main.Aggregates[id]
		if !existed {
			b.add(Change{ID: id, Scope: ScopeAggregate, Operation: OpCreate, SQL: createAggregateSQL(na), Description: "create aggregate " + na.Name})
			b.addAll(diffPrivileges(id, objRef, "aggregate "+na.Name, nil, na.Privileges))
			if na.Comment != "" {
				b.add(Change{ID: id, Scope: ScopeComment, Operation: OpComment, SQL: commentSQL(objRef, na.Comment), Description: "comment on aggregate " + na.Name})
			}
			continue
		}
		b.addAll(diffPrivileges(id, objRef, "aggregate "+na.Name, oa.Privileges, na.Privileges))
		if oa.Comment != na.Comment {
			b.add(Change{ID: id, Scope: ScopeComment, Operation: OpComment, SQL: commentSQL(objRef, na.Comment), Description: "comment on aggregate " + na.Name})
		}
	}
	for _, id := range main.SortedAggregateIDs() {
		if _, ok := branch.Aggregates[id]; !ok {
			oa := main.Aggregates[id]
			b.add(Change{ID: id, Scope: ScopeAggregate, Operation: OpDrop, SQL: dropAggregateSQL(oa), Description: "drop aggregate " + oa.Name})
		}
	}
}

func diffEventTriggers(b *changeBuilder, main, branch *catalog.Catalog) {
	for _, id := range branch.SortedEventTriggerIDs() {
		nt := branch.EventTriggers[id]
		if ot, ok := main.EventTriggers[id]; !ok {
			b.add(Change{ID: id, Scope: ScopeEventTrigger, Operation: OpCreate, SQL: createEventTriggerSQL(nt), Description: "create event trigger " + nt.Name})
		} else if ot.Enabled != nt.Enabled {
			b.add(Change{ID: id, Scope: ScopeEventTrigger, Operation: OpAlter, SQL: alterEventTriggerEnabledSQL(nt), Description: "alter event trigger " + nt.Name})
		}
	}
	for _, id := range main.SortedEventTriggerIDs() {
		if _, ok := branch.EventTriggers[id]; !ok {
			ot := main.EventTriggers[id]
			b.add(Change{ID: id, Scope: ScopeEventTrigger, Operation: OpDrop, SQL: dropEventTriggerSQL(ot), Description: "drop event trigger " + ot.Name})
		}
	}
}

func diffFDWs(b *changeBuilder, main, branch *catalog.Catalog) {
	for _, id := range branch.SortedFDWIDs() {
		nf := branch.FDWs[id]
		if of, ok := main.FDWs[id]; !ok {
			b.add(Change{ID: id, Scope: ScopeFDW, Operation: OpCreate, SQL: createFDWSQL(nf), Description: "create foreign data wrapper " + nf.Name})
			b.addAll(diffPrivileges(id, "FOREIGN DATA WRAPPER "+q(nf.Name), "foreign data wrapper "+nf.Name, nil, nf.Privileges))
		} else {
			b.addAll(diffPrivileges(id, "FOREIGN DATA WRAPPER "+q(nf.Name), "foreign data wrapper "+nf.Name, of.Privileges, nf.Privileges))
		}
	}
	for _, id := range main.SortedFDWIDs() {
		if _, ok := branch.FDWs[id]; !ok {
			of := main.FDWs[id]
			b.add(Change{ID: id, Scope: ScopeFDW, Operation: OpDrop, SQL: dropFDWSQL(of), Description: "drop foreign data wrapper " + of.Name})
		}
	}

	for _, id := range branch.SortedServerIDs() {
		ns := branch.Servers[id]
		if os, ok := main.Servers[id]; !ok {
			b.add(Change{ID: id, Scope: ScopeServer, Operation: OpCreate, SQL: createServerSQL(ns), Description: "create server " + ns.Name})
			b.addAll(diffPrivileges(id, "FOREIGN SERVER "+q(ns.Name), "server "+ns.Name, nil, ns.Privileges))
		} else {
			changes := diffOptions(os.Options, ns.Options)
			if len(changes) > 0 {
				sql := fmt.Sprintf("ALTER SERVER %s%s;", q(ns.Name), alterOptionsClause(changes))
				b.add(Change{ID: id, Scope: ScopeServer, Operation: OpAlter, SQL: sql, Description: "alter server options " + ns.Name})
			}
			b.addAll(diffPrivileges(id, "FOREIGN SERVER "+q(ns.Name), "server "+ns.Name, os.Privileges, ns.Privileges))
		}
	}
	for _, id := range main.SortedServerIDs() {
		if _, ok := branch.Servers[id]; !ok {
			os := main.Servers[id]
			b.add(Change{ID: id, Scope: ScopeServer, Operation: OpDrop, SQL: dropServerSQL(os), Description: "drop server " + os.Name})
		}
	}

	for _, id := range branch.SortedUserMappingIDs() {
		nu := branch.UserMappings[id]
		if _, ok := main.UserMappings[id]; !ok {
			b.add(Change{ID: id, Scope: ScopeUserMapping, Operation: OpCreate, SQL: createUserMappingSQL(nu), Description: "create user mapping " + nu.User + "@" + nu.Server})
		}
	}
	for _, id := range main.SortedUserMappingIDs() {
		if _, ok := branch.UserMappings[id]; !ok {
			ou := main.UserMappings[id]
			b.add(Change{ID: id, Scope: ScopeUserMapping, Operation: OpDrop, SQL: dropUserMappingSQL(ou), Description: "drop user mapping " + ou.User + "@" + ou.Server})
		}
	}
}

func diffPublications(b *changeBuilder, main, branch *catalog.Catalog) {
	for _, id := range branch.SortedPublicationIDs() {
		np := branch.Publications[id]
		if _, ok := main.Publications[id]; !ok {
			b.add(Change{ID: id, Scope: ScopePublication, Operation: OpCreate, SQL: createPublicationSQL(np), Description: "create publication " + np.Name})
		}
	}
	for _, id := range main.SortedPublicationIDs() {
		if _, ok := branch.Publications[id]; !ok {
			op := main.Publications[id]
			b.add(Change{ID: id, Scope: ScopePublication, Operation: OpDrop, SQL: dropPublicationSQL(op), Description: "drop publication " + op.Name})
		}
	}
}

// diffSubscriptions never compares ConnInfo for a change, since both sides
// are masked placeholders (__CONN_<KEY>__): comparing masked values would
// either spuriously flag every subscription as changed (if masking isn't
// deterministic) or, worse, silently miss a real credential rotation. Of an
// existing subscription only Enabled is compared; a change to its
// publication list produces no Change.
func diffSubscriptions(b *changeBuilder, main, branch *catalog.Catalog) {
	for _, id := range branch.SortedSubscriptionIDs() {
		ns := branch.Subscriptions[id]
		if os, ok := main.Subscriptions[id]; !ok {
			b.add(Change{ID: id, Scope: ScopeSubscription, Operation: OpCreate, SQL: createSubscriptionSQL(ns), Description: "create subscription " + ns.Name})
		} else if os.Enabled != ns.Enabled {
			b.add(Change{ID: id, Scope: ScopeSubscription, Operation: OpAlter, SQL: alterSubscriptionEnabledSQL(ns), Description: "alter subscription " + ns.Name})
		}
	}
	for _, id := range main.SortedSubscriptionIDs() {
		if _, ok := branch.Subscriptions[id]; !ok {
			os := main.Subscriptions[id]
			b.add(Change{ID: id, Scope: ScopeSubscription, Operation: OpDrop, SQL: dropSubscriptionSQL(os), Description: "drop subscription " + os.Name})
		}
	}
}

func sortedStrings[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
