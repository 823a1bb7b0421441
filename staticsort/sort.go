package staticsort

import (
	"sort"
	"strconv"
)

var classPhase = map[string]string{
	"create_schema":    "bootstrap",
	"create_extension": "bootstrap",
	"create_sequence":  "pre_data",
	"create_function":  "pre_data",
	"create_table":     "data_structures",
	"alter_table":      "post_data",
	"create_view":      "routines",
	"create_trigger":   "routines",
	"create_policy":    "post_data",
	"create_index":     "post_data",
	"grant":            "privileges",
	"comment":          "privileges",
	"unknown":          "data_structures",
}

var phaseOrder = map[string]int{
	"bootstrap":        0,
	"pre_data":         1,
	"data_structures":  2,
	"routines":         3,
	"post_data":        4,
	"privileges":       5,
}

var classPriority = map[string]int{
	"create_schema":    0,
	"create_extension": 2,
	"create_sequence":  5,
	"create_function":  6,
	"create_table":     8,
	"alter_table":      9,
	"create_view":      10,
	"create_trigger":   12,
	"create_policy":    13,
	"create_index":     14,
	"grant":            15,
	"comment":          15,
	"unknown":          16,
}

// AnalyzeAndSort parses every sql string with parser, infers a dependency
// graph from each statement's provides/requires (overridable per-statement
// via leading `-- pg-topo:` annotations), and returns a topologically
// sorted StatementNode list plus any diagnostics encountered. It is a pure
// function: no session, no side effects.
func AnalyzeAndSort(sqls []string, parser SQLParser) Result {
	var nodes []StatementNode
	var diags []Diagnostic

	for srcIdx, sql := range sqls {
		label := sourceLabel(srcIdx)
		parsed, err := parser.Parse(sql)
		if err != nil {
			diags = append(diags, Diagnostic{Code: DiagParseError, Message: err.Error(), ID: StatementID{SourceLabel: label}})
			continue
		}
		for stmtIdx, p := range parsed {
			id := StatementID{SourceLabel: label, StatementIndex: stmtIdx}
			ann, annDiags := parseAnnotations(p.SQL, id)
			diags = append(diags, annDiags...)

			class := p.Class
			if class == "" || class == "unknown" {
				diags = append(diags, Diagnostic{Code: DiagUnknownStatementClass, Message: "unrecognized statement class", ID: id})
				class = "unknown"
			}
			phase := classPhase[class]
			if ann.phase != "" {
				phase = ann.phase
			}
			provides := append(append([]string{}, p.Provides...), ann.provides...)
			requires := append(append([]string{}, p.Requires...), ann.requires...)
			requires = append(requires, ann.dependsOn...)

			nodes = append(nodes, StatementNode{
				ID:       id,
				SQL:      p.SQL,
				Class:    class,
				Phase:    phase,
				Provides: provides,
				Requires: requires,
			})
		}
	}

	producedBy := make(map[string]int) // object ref -> node index
	for i, n := range nodes {
		for _, ref := range n.Provides {
			if _, ok := producedBy[ref]; ok {
				diags = append(diags, Diagnostic{Code: DiagDuplicateProducer, Message: "multiple statements provide " + ref, ID: n.ID})
				continue
			}
			producedBy[ref] = i
		}
	}

	precedes := make([][]bool, len(nodes)) // precedes[i][j] = node j must run before node i
	for i := range nodes {
		precedes[i] = make([]bool, len(nodes))
	}
	var edges []GraphEdge
	for i, n := range nodes {
		for _, ref := range n.Requires {
			producer, ok := producedBy[ref]
			if !ok {
				diags = append(diags, Diagnostic{Code: DiagUnresolvedDependency, Message: "no producer for " + ref, ID: n.ID})
				continue
			}
			if producer == i {
				continue
			}
			precedes[i][producer] = true
			edges = append(edges, GraphEdge{From: nodes[producer].ID, To: n.ID, Via: ref})
		}
	}

	order, cyclic := topoSortNodes(nodes, precedes)
	if cyclic {
		diags = append(diags, Diagnostic{Code: DiagCycleDetected, Message: "dependency cycle detected; broken by deferring the lowest-priority foreign key constraint"})
	}

	return Result{Ordered: order, Diagnostics: diags, Graph: GraphReport{Edges: edges}}
}

func sourceLabel(i int) string {
	return "<input:" + strconv.Itoa(i) + ">"
}

// topoSortNodes runs Kahn's algorithm with (phase, class priority, source
// label + statement index) tiebreaking, same shape as the Planner's
// topoSort, breaking any remaining cycle by dropping the unresolved incoming
// edges of the first remaining alter_table statement in input order, or of
// the first remaining statement when no alter_table is left (spec
// §4.3.2/§4.4).
func topoSortNodes(nodes []StatementNode, precedes [][]bool) ([]StatementNode, bool) {
	n := len(nodes)
	indegree := make([]int, n)
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			if precedes[i][j] {
				indegree[i]++
			}
		}
	}
	done := make([]bool, n)
	less := func(a, b int) bool {
		pa, pb := phaseOrder[nodes[a].Phase], phaseOrder[nodes[b].Phase]
		if pa != pb {
			return pa < pb
		}
		if ca, cb := classPriority[nodes[a].Class], classPriority[nodes[b].Class]; ca != cb {
			return ca < cb
		}
		if nodes[a].ID.SourceLabel != nodes[b].ID.SourceLabel {
			return nodes[a].ID.SourceLabel < nodes[b].ID.SourceLabel
		}
		return nodes[a].ID.StatementIndex < nodes[b].ID.StatementIndex
	}

	var order []StatementNode
	remaining := n
	cyclic := false
	for remaining > 0 {
		var candidates []int
		for i := 0; i < n; i++ {
			if !done[i] && indegree[i] == 0 {
				candidates = append(candidates, i)
			}
		}
		if len(candidates) == 0 {
			victim := -1
			for i := 0; i < n; i++ {
				if done[i] {
					continue
				}
				if nodes[i].Class == "alter_table" {
					victim = i
					break
				}
			}
			if victim == -1 {
				for i := 0; i < n; i++ {
					if !done[i] {
						victim = i
						break
					}
				}
			}
			for j := 0; j < n; j++ {
				if precedes[victim][j] && !done[j] {
					precedes[victim][j] = false
				}
			}
			indegree[victim] = 0
			candidates = []int{victim}
			cyclic = true
		}
		sort.Slice(candidates, func(i, j int) bool { return less(candidates[i], candidates[j]) })
		chosen := candidates[0]
		order = append(order, nodes[chosen])
		done[chosen] = true
		remaining--
		for i := 0; i < n; i++ {
			if precedes[i][chosen] && !done[i] {
				indegree[i]--
			}
		}
	}
	return order, cyclic
}
