package planner

import "github.com/supabase/pg-toolbelt-sub004/diffengine"

// Phase buckets Changes into the coarse execution order pg_dump-style tools
// use: bootstrap objects first, structural objects before the things that
// reference them, constraints and indexes after table bodies exist, and
// privileges last. Implemented as data (an ordered enum plus lookup tables)
// rather than a switch buried in the sorter, so the refinement pass and
// tests can iterate phases generically.
type Phase int

const (
	PhaseBootstrap Phase = iota
	PhasePreData
	PhaseDataStructures
	PhaseRoutines
	PhasePostData
	PhasePrivileges
	phaseCount
)

func (p Phase) String() string {
	switch p {
	case PhaseBootstrap:
		return "bootstrap"
	case PhasePreData:
		return "pre_data"
	case PhaseDataStructures:
		return "data_structures"
	case PhaseRoutines:
		return "routines"
	case PhasePostData:
		return "post_data"
	case PhasePrivileges:
		return "privileges"
	default:
		return "unknown"
	}
}

// createPhaseByScope assigns each Scope to the phase its CREATE/ALTER
// changes belong in, per the phase table.
var createPhaseByScope = map[diffengine.Scope]Phase{
	diffengine.ScopeRole:         PhaseBootstrap,
	diffengine.ScopeExtension:    PhaseBootstrap,
	diffengine.ScopeSchema:       PhaseBootstrap,
	diffengine.ScopeType:         PhasePreData,
	diffengine.ScopeCollation:    PhasePreData,
	diffengine.ScopeSequence:     PhasePreData,
	diffengine.ScopeFunction:     PhasePreData,
	diffengine.ScopeAggregate:    PhasePreData,
	diffengine.ScopeFDW:          PhasePreData,
	diffengine.ScopeServer:       PhasePreData,
	diffengine.ScopeUserMapping:  PhasePreData,
	diffengine.ScopeTable:        PhaseDataStructures,
	diffengine.ScopeColumn:       PhaseDataStructures,
	diffengine.ScopePartition:    PhaseDataStructures,
	diffengine.ScopeView:         PhaseRoutines,
	diffengine.ScopeMatview:      PhaseRoutines,
	diffengine.ScopeTrigger:      PhaseRoutines,
	diffengine.ScopeEventTrigger: PhaseRoutines,
	diffengine.ScopeRule:         PhaseRoutines,
	diffengine.ScopeConstraint:   PhasePostData,
	diffengine.ScopeIndex:        PhasePostData,
	diffengine.ScopePolicy:       PhasePostData,
	diffengine.ScopeRLS:          PhasePostData,
	diffengine.ScopePublication:  PhasePostData,
	diffengine.ScopeSubscription: PhasePostData,
	diffengine.ScopePrivilege:    PhasePrivileges,
	diffengine.ScopeComment:      PhasePrivileges,
}

// phaseOf returns the phase a Change belongs to. Drops traverse the same
// table but run in reverse phase order (handled by the caller negating the
// comparison for OpDrop), per spec §4.3.3 "Drops traverse phases in reverse".
func phaseOf(c diffengine.Change) Phase {
	if p, ok := createPhaseByScope[c.Scope]; ok {
		return p
	}
	return PhaseDataStructures
}

// statementClassPriority orders changes within the same phase, pg_dump
// style: schema < role < extension < type < sequence < function < table <
// constraint < view < matview < trigger < policy < index < grant.
var statementClassPriority = map[diffengine.Scope]int{
	diffengine.ScopeSchema:       0,
	diffengine.ScopeRole:         1,
	diffengine.ScopeExtension:    2,
	diffengine.ScopeType:         3,
	diffengine.ScopeCollation:    4,
	diffengine.ScopeSequence:     5,
	diffengine.ScopeFunction:     6,
	diffengine.ScopeAggregate:    6,
	diffengine.ScopeFDW:          7,
	diffengine.ScopeServer:       7,
	diffengine.ScopeUserMapping:  7,
	diffengine.ScopeTable:        8,
	diffengine.ScopeColumn:       8,
	diffengine.ScopePartition:    8,
	diffengine.ScopeConstraint:   9,
	diffengine.ScopeView:         10,
	diffengine.ScopeMatview:      11,
	diffengine.ScopeTrigger:      12,
	diffengine.ScopeEventTrigger: 12,
	diffengine.ScopeRule:         12,
	diffengine.ScopePolicy:       13,
	diffengine.ScopeRLS:          13,
	diffengine.ScopeIndex:        14,
	diffengine.ScopePublication:  14,
	diffengine.ScopeSubscription: 14,
	diffengine.ScopePrivilege:    15,
	diffengine.ScopeComment:      16,
}

func classPriority(c diffengine.Change) int {
	if p, ok := statementClassPriority[c.Scope]; ok {
		return p
	}
	return len(statementClassPriority)
}
