// Package extract implements the Catalog Extractor (component B): reading
// PostgreSQL's system catalogs through a session.Session and materializing
// a catalog.Catalog, running one fixed query per object kind against
// pg_catalog/information_schema and assembling the result incrementally
// across the richer catalog.Catalog model (roles, FDWs, collations, event
// triggers, ...).
package extract

import (
	"context"
	"fmt"

	"github.com/supabase/pg-toolbelt-sub004/catalog"
	"github.com/supabase/pg-toolbelt-sub004/internal/errs"
	"github.com/supabase/pg-toolbelt-sub004/internal/logger"
	"github.com/supabase/pg-toolbelt-sub004/internal/maskconfig"
	"github.com/supabase/pg-toolbelt-sub004/session"
)

// Options configures one extraction pass.
type Options struct {
	// Schemas restricts extraction to the named schemas; empty means "all
	// non-system schemas" (everything but pg_catalog/information_schema/
	// pg_toast).
	Schemas []string
	// ManagedExtensionSchemas names schemas whose extension-owned objects
	// are managed (spec §4.1.1). Its only reader is extensionExclusionClause,
	// which no extraction query uses: objects that belong to an installed
	// extension are extracted whether or not their schema is listed here.
	ManagedExtensionSchemas map[string]bool
	// Role, when set, is used for catalog queries requiring an explicit
	// SET ROLE (spec §4.3.6 plan.role) so the extracted privilege/ownership
	// picture matches what the eventual plan will run as.
	Role string
	// Mask overrides the sensitive-key configuration; nil uses defaults.
	Mask *maskconfig.Config
}

// Extractor reads a Catalog from a session.Session.
type Extractor struct {
	opts Options
	// oidIndex maps (pg_depend classid relname, objid) pairs to the
	// StableID of the corresponding extracted object; populated by
	// buildOIDIndex and consumed by buildDependencies.
	oidIndex map[oidKey]catalog.StableID
	// serverVersion is populated by buildServerVersion and consulted by
	// buildViews for the PG15-vs-PG17 pg_get_viewdef canonicalization
	// fixup (see version.go).
	serverVersion serverVersion
}

// New returns an Extractor configured with opts.
func New(opts Options) *Extractor {
	return &Extractor{opts: opts}
}

// Extract runs every fixed catalog query in sequence and assembles a
// catalog.Catalog. A failed catalog query is fatal (spec §4.1 "Failure"):
// the offending SQL is captured in the returned *errs.ExtractionError.
func (e *Extractor) Extract(ctx context.Context, sess session.Session) (*catalog.Catalog, error) {
	log := logger.WithComponent("extract")
	cat := catalog.New()

	if e.opts.Role != "" {
		if err := sess.QueryUnsafe(ctx, fmt.Sprintf("SET ROLE %s", catalog.QuoteIdent(e.opts.Role))); err != nil {
			return nil, errs.NewExtractionError("SET ROLE", string(session.ErrorCode(err)), err)
		}
	}

	steps := []struct {
		name string
		fn   func(context.Context, session.Session, *catalog.Catalog) error
	}{
		{"metadata", e.buildMetadata},
		{"server_version", e.buildServerVersion},
		{"schemas", e.buildSchemas},
		{"extensions", e.buildExtensions},
		{"roles", e.buildRoles},
		{"collations", e.buildCollations},
		{"types", e.buildTypes},
		{"sequences", e.buildSequences},
		{"tables", e.buildTables},
		{"columns", e.buildColumns},
		{"constraints", e.buildConstraints},
		{"indexes", e.buildIndexes},
		{"triggers", e.buildTriggers},
		{"event_triggers", e.buildEventTriggers},
		{"rules", e.buildRules},
		{"policies", e.buildPolicies},
		{"views", e.buildViews},
		{"functions", e.buildFunctions},
		{"aggregates", e.buildAggregates},
		{"fdw", e.buildFDWs},
		{"publications", e.buildPublications},
		{"subscriptions", e.buildSubscriptions},
		{"partitions", e.buildPartitions},
		{"privileges", e.buildPrivileges},
		{"default_privileges", e.buildDefaultPrivileges},
		{"oid_index", e.buildOIDIndex},
		{"dependencies", e.buildDependencies},
	}

	for _, step := range steps {
		log.Debug("extracting", "step", step.name)
		if err := step.fn(ctx, sess, cat); err != nil {
			var extErr *errs.ExtractionError
			if ok := errorsAsExtraction(err, &extErr); ok {
				return nil, extErr
			}
			return nil, errs.NewExtractionError(step.name, string(session.ErrorCode(err)), err)
		}
	}

	return cat, nil
}

func errorsAsExtraction(err error, target **errs.ExtractionError) bool {
	if e, ok := err.(*errs.ExtractionError); ok {
		*target = e
		return true
	}
	return false
}
