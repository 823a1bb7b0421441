package staticsort

import (
	"strings"
)

// annotations is the decoded form of a statement's leading `-- pg-topo:`
// comment block (spec §6.6). Only contiguous leading comment lines are
// parsed; the first non-comment line ends the block.
type annotations struct {
	phase     string
	dependsOn []string
	requires  []string
	provides  []string
}

// parseAnnotations scans sql's leading lines for `-- pg-topo:<directive> ...`
// comments. Malformed or conflicting directives are reported as diagnostics
// but never abort parsing; the statement is still scheduled using whatever
// annotations did parse.
func parseAnnotations(sql string, id StatementID) (annotations, []Diagnostic) {
	var ann annotations
	var diags []Diagnostic
	phaseSeen := false

	for _, line := range strings.Split(sql, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}
		if !strings.HasPrefix(trimmed, "--") {
			break
		}
		body := strings.TrimSpace(strings.TrimPrefix(trimmed, "--"))
		if !strings.HasPrefix(body, "pg-topo:") {
			continue
		}
		directive := strings.TrimPrefix(body, "pg-topo:")
		key, value, ok := strings.Cut(directive, " ")
		if !ok {
			diags = append(diags, Diagnostic{Code: DiagInvalidAnnotation, Message: "malformed pg-topo directive: " + trimmed, ID: id})
			continue
		}
		value = strings.TrimSpace(value)
		switch key {
		case "phase":
			if phaseSeen {
				diags = append(diags, Diagnostic{Code: DiagInvalidAnnotation, Message: "conflicting pg-topo:phase directives", ID: id})
				continue
			}
			ann.phase = value
			phaseSeen = true
		case "depends_on":
			ann.dependsOn = append(ann.dependsOn, value)
		case "requires":
			ann.requires = append(ann.requires, value)
		case "provides":
			ann.provides = append(ann.provides, value)
		default:
			diags = append(diags, Diagnostic{Code: DiagInvalidAnnotation, Message: "unknown pg-topo directive: " + key, ID: id})
		}
	}
	return ann, diags
}
