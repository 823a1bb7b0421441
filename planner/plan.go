// Package planner implements the Dependency Planner (component D): given
// the Differ's unordered Changes plus both catalogs, it produces a total
// execution order a single apply pass can run top to bottom.
package planner

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/supabase/pg-toolbelt-sub004/catalog"
	"github.com/supabase/pg-toolbelt-sub004/diffengine"
	"github.com/supabase/pg-toolbelt-sub004/internal/logger"
)

// OrderedPlan is the Planner's output: a total order of SQL statements,
// optionally prefixed by a SET ROLE when the caller ran the extraction
// under a non-default role.
type OrderedPlan struct {
	Statements []string `json:"statements"`
	Role       string   `json:"role,omitempty"`
}

// CompareFunc seeds priority among otherwise-unordered changes before
// topo-sort runs. Tests use this to hand the Planner a deliberately
// adversarial initial order and assert the final plan is still correct.
type CompareFunc func(a, b diffengine.Change) int

// Options configures a single Plan call.
type Options struct {
	// Role, when set, is emitted as a leading SET ROLE statement and copied
	// into the OrderedPlan's Role field.
	Role string
	// MaxRefinementPasses bounds the fixpoint loop in the refinement pass
	// (spec §4.3.4 default 3).
	MaxRefinementPasses int
	// SortChangesCallback seeds an initial ordering before topo-sort.
	SortChangesCallback CompareFunc
}

type node struct {
	change diffengine.Change
	index  int // position in the seeded initial order, used as a final tiebreak
}

// Plan orders changes into an OrderedPlan using desired-state edges (from
// branch) for creates and main-state edges (from main) for drops, phase and
// class-priority tiebreaks within Kahn's algorithm, a bounded refinement
// pass for catalog-inferred edges the dependency graph can't express
// directly, and FK-deferral cycle breaking.
func Plan(changes []diffengine.Change, main, branch *catalog.Catalog, opts Options) (OrderedPlan, error) {
	logger.WithComponent("planner").Debug("planning changes", "count", len(changes), "role", opts.Role)
	if opts.MaxRefinementPasses <= 0 {
		opts.MaxRefinementPasses = 3
	}

	nodes := make([]*node, len(changes))
	for i, c := range changes {
		nodes[i] = &node{change: c, index: i}
	}
	if opts.SortChangesCallback != nil {
		sort.SliceStable(nodes, func(i, j int) bool {
			return opts.SortChangesCallback(nodes[i].change, nodes[j].change) < 0
		})
		for i, n := range nodes {
			n.index = i
		}
	}

	byID := make(map[catalog.StableID][]*node, len(nodes))
	for _, n := range nodes {
		byID[n.change.ID] = append(byID[n.change.ID], n)
	}

	// precedes[a] = set of nodes that must run before a.
	precedes := make(map[*node]map[*node]bool, len(nodes))
	for _, n := range nodes {
		precedes[n] = make(map[*node]bool)
	}
	addEdge := func(before, after *node) {
		if before == after {
			return
		}
		precedes[after][before] = true
	}

	for _, n := range nodes {
		switch n.change.Operation {
		case diffengine.OpCreate, diffengine.OpAlter, diffengine.OpComment:
			for _, e := range branch.Deps.DependenciesOf(n.change.ID) {
				for _, dep := range byID[e.Referenced] {
					if dep.change.Operation == diffengine.OpCreate {
						addEdge(dep, n)
					}
				}
			}
		case diffengine.OpDrop:
			for _, e := range main.Deps.DependentsOf(n.change.ID) {
				for _, dependent := range byID[e.Dependent] {
					if dependent.change.Operation == diffengine.OpDrop {
						addEdge(dependent, n)
					}
				}
			}
		}
	}

	order, diagnosticCycles := topoSort(nodes, precedes)
	order = refine(order, inferExpressionEdges(branch, byID), opts.MaxRefinementPasses)

	statements := make([]string, 0, len(order)+1)
	if opts.Role != "" {
		statements = append(statements, fmt.Sprintf("SET ROLE %s;", catalog.QuoteIdent(opts.Role)))
	}
	for _, n := range order {
		statements = append(statements, n.change.SQL)
	}

	_ = diagnosticCycles // best-effort order still returned; see topoSort doc.
	return OrderedPlan{Statements: statements, Role: opts.Role}, nil
}

// topoSort runs Kahn's algorithm with (phase, class priority, stable ID,
// seed index) tiebreaking. When it gets stuck with remaining nodes but no
// zero-indegree candidate (a cycle), it breaks the cycle by deferring the
// remaining foreign-key constraint ADD with the smallest stable ID (the sole
// supported cycle-break per spec §4.3.2; see pickCycleVictim for the case
// where none remains): that node's incoming edges are dropped so it can be
// scheduled, and a diagnostic count is returned.
func topoSort(nodes []*node, precedes map[*node]map[*node]bool) ([]*node, int) {
	remaining := make(map[*node]bool, len(nodes))
	for _, n := range nodes {
		remaining[n] = true
	}
	indegree := make(map[*node]int, len(nodes))
	for n, before := range precedes {
		indegree[n] = len(before)
	}

	less := func(a, b *node) bool {
		pa, pb := effectivePhase(a.change), effectivePhase(b.change)
		if pa != pb {
			return pa < pb
		}
		if ca, cb := classPriority(a.change), classPriority(b.change); ca != cb {
			return ca < cb
		}
		if a.change.ID != b.change.ID {
			return a.change.ID < b.change.ID
		}
		return a.index < b.index
	}

	var order []*node
	cycleBreaks := 0
	for len(remaining) > 0 {
		var candidates []*node
		for n := range remaining {
			if indegree[n] == 0 {
				candidates = append(candidates, n)
			}
		}
		if len(candidates) == 0 {
			victim := pickCycleVictim(remaining)
			for before := range precedes[victim] {
				if remaining[before] {
					indegree[victim]--
				}
			}
			precedes[victim] = map[*node]bool{}
			indegree[victim] = 0
			candidates = []*node{victim}
			cycleBreaks++
		}
		sort.Slice(candidates, func(i, j int) bool { return less(candidates[i], candidates[j]) })
		chosen := candidates[0]
		order = append(order, chosen)
		delete(remaining, chosen)
		for n := range remaining {
			if precedes[n][chosen] {
				indegree[n]--
			}
		}
	}
	return order, cycleBreaks
}

// pickCycleVictim prefers a pending foreign-key ADD CONSTRAINT change,
// since deferring it (create the referencing table first, attach the FK in
// a later statement) is always semantically safe; otherwise it falls back
// to the lowest-priority remaining node so the loop always terminates.
func pickCycleVictim(remaining map[*node]bool) *node {
	var best *node
	for n := range remaining {
		if n.change.Scope == diffengine.ScopeConstraint && n.change.Operation != diffengine.OpDrop && strings.Contains(n.change.SQL, "FOREIGN KEY") {
			if best == nil || n.change.ID < best.change.ID {
				best = n
			}
		}
	}
	if best != nil {
		return best
	}
	for n := range remaining {
		if best == nil || classPriority(n.change) > classPriority(best.change) {
			best = n
		}
	}
	return best
}

// effectivePhase returns the phase a change sorts into, reversing phase
// order for drops per spec §4.3.3 ("Drops traverse phases in reverse").
func effectivePhase(c diffengine.Change) Phase {
	p := phaseOf(c)
	if c.Operation == diffengine.OpDrop {
		return phaseCount - 1 - p
	}
	return p
}

// functionCallPattern finds bare identifier-then-paren references in a
// column default/generation expression, e.g. "next_id()" or "public.gen()".
var functionCallPattern = regexp.MustCompile(`([A-Za-z_][A-Za-z0-9_]*)\s*\(`)

// inferExpressionEdges derives "this node needs that function's CREATE to
// run first" constraints straight from branch catalog content, for
// dependencies pg_depend never records as a first-class edge between the
// create/alter/comment change nodes the Planner sees (spec §4.3.4) -- a
// table's column default calling a function is the prototypical case.
// Unlike precedes, which already holds after topoSort runs, this is built
// fresh from the catalog so refine has something new to check.
func inferExpressionEdges(branch *catalog.Catalog, byID map[catalog.StableID][]*node) map[*node][]*node {
	edges := make(map[*node][]*node)
	if branch == nil {
		return edges
	}
	for _, t := range branch.Tables {
		tableNodes := byID[t.ID]
		if len(tableNodes) == 0 {
			continue
		}
		for _, col := range t.Columns {
			for _, expr := range []string{col.Default, col.Generated} {
				if expr == "" {
					continue
				}
				for _, m := range functionCallPattern.FindAllStringSubmatch(expr, -1) {
					name := m[1]
					for fid, fn := range branch.Functions {
						if fn.Name != name {
							continue
						}
						for _, fnNode := range byID[fid] {
							if fnNode.change.Operation != diffengine.OpCreate {
								continue
							}
							for _, tableNode := range tableNodes {
								if tableNode == fnNode {
									continue
								}
								edges[tableNode] = append(edges[tableNode], fnNode)
							}
						}
					}
				}
			}
		}
	}
	return edges
}

// moveBefore relocates the element at from so it sits immediately before
// index to, shifting the elements between them, and returns the updated
// position of the relocated element.
func moveBefore(order []*node, from, to int) ([]*node, int) {
	n := order[from]
	if from < to {
		copy(order[from:to-1], order[from+1:to])
		order[to-1] = n
		return order, to - 1
	}
	copy(order[to+1:from+1], order[to:from])
	order[to] = n
	return order, to
}

// refine corrects violations of catalog-inferred edges (from
// inferExpressionEdges, not the explicit edge set topoSort already
// satisfies) by relocating the later-required node to just before its
// earliest dependent, repeating until fixpoint or maxPasses (spec §4.3.4).
// Non-convergence is a no-op; the best-effort order from topoSort stands.
func refine(order []*node, requires map[*node][]*node, maxPasses int) []*node {
	if len(requires) == 0 {
		return order
	}
	pos := make(map[*node]int, len(order))
	for i, n := range order {
		pos[n] = i
	}
	for pass := 0; pass < maxPasses; pass++ {
		changed := false
		for n, needs := range requires {
			for _, need := range needs {
				if pos[need] < pos[n] {
					continue
				}
				order, _ = moveBefore(order, pos[need], pos[n])
				for i, m := range order {
					pos[m] = i
				}
				changed = true
			}
		}
		if !changed {
			break
		}
	}
	return order
}
