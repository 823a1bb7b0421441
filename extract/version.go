package extract

import (
	"context"
	"fmt"
	"regexp"

	"golang.org/x/mod/semver"

	"github.com/supabase/pg-toolbelt-sub004/catalog"
	"github.com/supabase/pg-toolbelt-sub004/session"
)

// serverVersion is the connected server's reported version, both as the raw
// server_version_num integer (e.g. 170005 for 17.5) and as a semver string
// usable with golang.org/x/mod/semver, which requires a leading "v" and
// rejects the bare two-part form Postgres reports.
type serverVersion struct {
	num    int64
	semver string
}

// queryServerVersion reads server_version_num (the same SHOW and /10000
// major-version decomposition Postgres tooling commonly uses) and converts
// it into an x/mod/semver-comparable string.
func queryServerVersion(ctx context.Context, sess session.Session) (serverVersion, error) {
	rows, err := query(ctx, sess, `SHOW server_version_num`)
	if err != nil {
		return serverVersion{}, err
	}
	if len(rows) == 0 {
		return serverVersion{}, nil
	}
	num := intv(rows[0][0])
	major := num / 10000
	minor := num % 10000
	return serverVersion{num: num, semver: fmt.Sprintf("v%d.%d.0", major, minor)}, nil
}

// atLeast reports whether the server is running the given major version or
// newer, e.g. sv.atLeast(17).
func (sv serverVersion) atLeast(major int) bool {
	if sv.semver == "" {
		return false
	}
	return semver.Compare(sv.semver, fmt.Sprintf("v%d.0.0", major)) >= 0
}

var ruleutilsDoubleSpace = regexp.MustCompile(`  +`)

// canonicalizeViewDefinition applies the one server-version-gated fixup the
// extractor performs on pg_get_viewdef's pretty-printed output (spec
// §4.1.3): PostgreSQL's ruleutils pretty-printer before 17 occasionally
// leaves a doubled space where a CASE/boolean operand was deparenthesized,
// which 17 and newer no longer produce. Applying this unconditionally would
// make a correctly-formatted PG17 definition spuriously diff against a
// differently-indented but semantically-identical main-branch definition
// captured on an older server, so it is gated on serverVersion rather than
// always-on.
func canonicalizeViewDefinition(def string, sv serverVersion) string {
	if sv.atLeast(17) {
		return def
	}
	return ruleutilsDoubleSpace.ReplaceAllString(def, " ")
}

func (e *Extractor) buildServerVersion(ctx context.Context, sess session.Session, cat *catalog.Catalog) error {
	sv, err := queryServerVersion(ctx, sess)
	if err != nil {
		return err
	}
	e.serverVersion = sv
	return nil
}
