package diffengine

import (
	"fmt"
	"sort"
	"strings"

	"github.com/supabase/pg-toolbelt-sub004/catalog"
)

// privKey identifies one (grantee, privilege kind) entry within a single
// object's Privileges slice.
type privKey struct {
	Grantee string
	Kind    string
}

// privilegeDeltas buckets the difference between old and new privilege sets
// into the four statement shapes a privilege diff can produce: a revoke
// (privilege removed entirely), a narrow "REVOKE GRANT OPTION FOR" (the
// privilege survives, only its grant option was downgraded, so the
// privilege itself is never touched), a plain grant, and a grant with the
// WITH GRANT OPTION clause. Each map is keyed by grantee with its kinds
// collected so the caller can render one statement per grantee instead of
// one per (grantee, kind) pair.
func privilegeDeltas(old, new []catalog.Privilege) (revoke, revokeOptOnly, grant, grantWithOpt map[string][]string) {
	revoke = map[string][]string{}
	revokeOptOnly = map[string][]string{}
	grant = map[string][]string{}
	grantWithOpt = map[string][]string{}

	oldState := make(map[privKey]bool, len(old))
	for _, p := range old {
		oldState[privKey{p.Grantee, p.Kind}] = p.WithGrantOption
	}
	newState := make(map[privKey]bool, len(new))
	for _, p := range new {
		newState[privKey{p.Grantee, p.Kind}] = p.WithGrantOption
	}

	for k := range oldState {
		if _, ok := newState[k]; !ok {
			revoke[k.Grantee] = append(revoke[k.Grantee], k.Kind)
		}
	}
	for k, grantable := range newState {
		old, existed := oldState[k]
		if !existed {
			if grantable {
				grantWithOpt[k.Grantee] = append(grantWithOpt[k.Grantee], k.Kind)
			} else {
				grant[k.Grantee] = append(grant[k.Grantee], k.Kind)
			}
			continue
		}
		if old == grantable {
			continue
		}
		if old && !grantable {
			revokeOptOnly[k.Grantee] = append(revokeOptOnly[k.Grantee], k.Kind)
		} else {
			grantWithOpt[k.Grantee] = append(grantWithOpt[k.Grantee], k.Kind)
		}
	}
	return revoke, revokeOptOnly, grant, grantWithOpt
}

func sortedKeys(m map[string][]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func sortedUnique(vals []string) []string {
	set := make(map[string]bool, len(vals))
	for _, v := range vals {
		set[v] = true
	}
	out := make([]string, 0, len(set))
	for v := range set {
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}

func granteeSQL(name string) string {
	if name == "" || name == "PUBLIC" {
		return "PUBLIC"
	}
	return q(name)
}

// diffPrivileges compares an object's old and new Privilege slices and
// returns GRANT/REVOKE Changes scoped to ScopePrivilege so they land in the
// privileges phase (spec §4.3.3).
func diffPrivileges(id catalog.StableID, objectRef, label string, old, new []catalog.Privilege) []Change {
	revoke, revokeOptOnly, grant, grantWithOpt := privilegeDeltas(old, new)
	var changes []Change
	for _, grantee := range sortedKeys(revoke) {
		changes = append(changes, Change{
			ID: id, Scope: ScopePrivilege, Operation: OpDrop,
			SQL:         fmt.Sprintf("REVOKE %s ON %s FROM %s;", strings.Join(sortedUnique(revoke[grantee]), ", "), objectRef, granteeSQL(grantee)),
			Description: "revoke " + label + " from " + grantee,
		})
	}
	for _, grantee := range sortedKeys(revokeOptOnly) {
		changes = append(changes, Change{
			ID: id, Scope: ScopePrivilege, Operation: OpAlter,
			SQL:         fmt.Sprintf("REVOKE GRANT OPTION FOR %s ON %s FROM %s;", strings.Join(sortedUnique(revokeOptOnly[grantee]), ", "), objectRef, granteeSQL(grantee)),
			Description: "revoke grant option for " + label + " from " + grantee,
		})
	}
	for _, grantee := range sortedKeys(grant) {
		changes = append(changes, Change{
			ID: id, Scope: ScopePrivilege, Operation: OpCreate,
			SQL:         fmt.Sprintf("GRANT %s ON %s TO %s;", strings.Join(sortedUnique(grant[grantee]), ", "), objectRef, granteeSQL(grantee)),
			Description: "grant " + label + " to " + grantee,
		})
	}
	for _, grantee := range sortedKeys(grantWithOpt) {
		changes = append(changes, Change{
			ID: id, Scope: ScopePrivilege, Operation: OpCreate,
			SQL:         fmt.Sprintf("GRANT %s ON %s TO %s WITH GRANT OPTION;", strings.Join(sortedUnique(grantWithOpt[grantee]), ", "), objectRef, granteeSQL(grantee)),
			Description: "grant " + label + " to " + grantee + " with grant option",
		})
	}
	return changes
}

// diffColumnPrivileges is diffPrivileges specialized to the column-grant
// syntax, which places the column list in parens ahead of ON TABLE instead
// of after a plain object reference.
func diffColumnPrivileges(id catalog.StableID, schema, table, column string, old, new []catalog.Privilege) []Change {
	revoke, revokeOptOnly, grant, grantWithOpt := privilegeDeltas(old, new)
	tableRef, colRef := qq(schema, table), q(column)
	label := table + "." + column
	var changes []Change
	for _, grantee := range sortedKeys(revoke) {
		changes = append(changes, Change{
			ID: id, Scope: ScopePrivilege, Operation: OpDrop,
			SQL:         fmt.Sprintf("REVOKE %s (%s) ON TABLE %s FROM %s;", strings.Join(sortedUnique(revoke[grantee]), ", "), colRef, tableRef, granteeSQL(grantee)),
			Description: "revoke column privilege " + label + " from " + grantee,
		})
	}
	for _, grantee := range sortedKeys(revokeOptOnly) {
		changes = append(changes, Change{
			ID: id, Scope: ScopePrivilege, Operation: OpAlter,
			SQL:         fmt.Sprintf("REVOKE GRANT OPTION FOR %s (%s) ON TABLE %s FROM %s;", strings.Join(sortedUnique(revokeOptOnly[grantee]), ", "), colRef, tableRef, granteeSQL(grantee)),
			Description: "revoke grant option for column privilege " + label + " from " + grantee,
		})
	}
	for _, grantee := range sortedKeys(grant) {
		changes = append(changes, Change{
			ID: id, Scope: ScopePrivilege, Operation: OpCreate,
			SQL:         fmt.Sprintf("GRANT %s (%s) ON TABLE %s TO %s;", strings.Join(sortedUnique(grant[grantee]), ", "), colRef, tableRef, granteeSQL(grantee)),
			Description: "grant column privilege " + label + " to " + grantee,
		})
	}
	for _, grantee := range sortedKeys(grantWithOpt) {
		changes = append(changes, Change{
			ID: id, Scope: ScopePrivilege, Operation: OpCreate,
			SQL:         fmt.Sprintf("GRANT %s (%s) ON TABLE %s TO %s WITH GRANT OPTION;", strings.Join(sortedUnique(grantWithOpt[grantee]), ", "), colRef, tableRef, granteeSQL(grantee)),
			Description: "grant column privilege " + label + " to " + grantee + " with grant option",
		})
	}
	return changes
}

// defaultPrivGroup identifies one ALTER DEFAULT PRIVILEGES statement: its
// entries share grantor, grantee, object type and schema, and their Kinds
// are joined into one GRANT/REVOKE list per group.
type defaultPrivGroup struct {
	Grantor    string
	Grantee    string
	ObjectType string
	Schema     string
}

func diffDefaultPrivileges(b *changeBuilder, main, branch *catalog.Catalog) {
	for _, name := range sortedStrings(branch.Roles) {
		nr := branch.Roles[name]
		var old []catalog.DefaultPrivilege
		if or, ok := main.Roles[name]; ok {
			old = or.DefaultPrivileges
		}
		b.addAll(diffDefaultPrivilegeSet(nr.ID, old, nr.DefaultPrivileges))
	}
}

func diffDefaultPrivilegeSet(roleID catalog.StableID, old, new []catalog.DefaultPrivilege) []Change {
	type entry struct {
		group defaultPrivGroup
		kind  string
	}
	oldSet := make(map[entry]bool, len(old))
	for _, p := range old {
		oldSet[entry{defaultPrivGroup{p.Grantor, p.Grantee, p.ObjectType, p.Schema}, p.Kind}] = true
	}
	newSet := make(map[entry]bool, len(new))
	for _, p := range new {
		newSet[entry{defaultPrivGroup{p.Grantor, p.Grantee, p.ObjectType, p.Schema}, p.Kind}] = true
	}

	toRevoke := map[defaultPrivGroup][]string{}
	toGrant := map[defaultPrivGroup][]string{}
	for e := range oldSet {
		if !newSet[e] {
			toRevoke[e.group] = append(toRevoke[e.group], e.kind)
		}
	}
	for e := range newSet {
		if !oldSet[e] {
			toGrant[e.group] = append(toGrant[e.group], e.kind)
		}
	}

	var changes []Change
	for _, g := range sortedDefaultPrivGroups(toRevoke) {
		sql := fmt.Sprintf("ALTER DEFAULT PRIVILEGES %sREVOKE %s ON %s FROM %s;",
			defaultPrivilegeScopeClause(g), strings.Join(sortedUnique(toRevoke[g]), ", "), g.ObjectType, granteeSQL(g.Grantee))
		changes = append(changes, Change{
			ID: roleID, Scope: ScopePrivilege, Operation: OpDrop, SQL: sql,
			Description: "revoke default privilege on " + g.ObjectType + " from " + g.Grantee,
		})
	}
	for _, g := range sortedDefaultPrivGroups(toGrant) {
		sql := fmt.Sprintf("ALTER DEFAULT PRIVILEGES %sGRANT %s ON %s TO %s;",
			defaultPrivilegeScopeClause(g), strings.Join(sortedUnique(toGrant[g]), ", "), g.ObjectType, granteeSQL(g.Grantee))
		changes = append(changes, Change{
			ID: roleID, Scope: ScopePrivilege, Operation: OpCreate, SQL: sql,
			Description: "grant default privilege on " + g.ObjectType + " to " + g.Grantee,
		})
	}
	return changes
}

func defaultPrivilegeScopeClause(g defaultPrivGroup) string {
	clause := "FOR ROLE " + q(g.Grantor) + " "
	if g.Schema != "" {
		clause += "IN SCHEMA " + q(g.Schema) + " "
	}
	return clause
}

func sortedDefaultPrivGroups(m map[defaultPrivGroup][]string) []defaultPrivGroup {
	groups := make([]defaultPrivGroup, 0, len(m))
	for g := range m {
		groups = append(groups, g)
	}
	sort.Slice(groups, func(i, j int) bool {
		a, b := groups[i], groups[j]
		if a.Grantor != b.Grantor {
			return a.Grantor < b.Grantor
		}
		if a.Schema != b.Schema {
			return a.Schema < b.Schema
		}
		if a.ObjectType != b.ObjectType {
			return a.ObjectType < b.ObjectType
		}
		return a.Grantee < b.Grantee
	})
	return groups
}
