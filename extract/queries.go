package extract

import (
	"context"
	"fmt"

	"github.com/supabase/pg-toolbelt-sub004/catalog"
	"github.com/supabase/pg-toolbelt-sub004/session"
)

func (e *Extractor) buildMetadata(ctx context.Context, sess session.Session, cat *catalog.Catalog) error {
	rows, err := query(ctx, sess, `SELECT version()`)
	if err != nil {
		return err
	}
	if len(rows) > 0 {
		cat.Metadata.DatabaseVersion = str(rows[0][0])
	}
	cat.Metadata.ExtractedBy = "pgdelta"
	return nil
}

func (e *Extractor) buildSchemas(ctx context.Context, sess session.Session, cat *catalog.Catalog) error {
	sql := fmt.Sprintf(`
		SELECT n.nspname, pg_get_userbyid(n.nspowner),
		       obj_description(n.oid, 'pg_namespace')
		FROM pg_namespace n
		WHERE %s
		ORDER BY n.nspname`, e.schemaFilter("n.nspname"))
	rows, err := query(ctx, sess, sql)
	if err != nil {
		return err
	}
	for _, r := range rows {
		name := str(r[0])
		s := cat.GetOrCreateSchema(name)
		s.Owner = str(r[1])
		s.Comment = str(r[2])
	}
	return nil
}

func (e *Extractor) buildExtensions(ctx context.Context, sess session.Session, cat *catalog.Catalog) error {
	sql := `
		SELECT e.extname, n.nspname, e.extversion, obj_description(e.oid, 'pg_extension')
		FROM pg_extension e
		JOIN pg_namespace n ON n.oid = e.extnamespace
		ORDER BY e.extname`
	rows, err := query(ctx, sess, sql)
	if err != nil {
		return err
	}
	for _, r := range rows {
		name := str(r[0])
		cat.Extensions[name] = &catalog.Extension{
			ID:              catalog.ExtensionID(name),
			Name:            name,
			InstalledSchema: str(r[1]),
			Version:         str(r[2]),
			Comment:         str(r[3]),
		}
	}
	return nil
}

func (e *Extractor) buildRoles(ctx context.Context, sess session.Session, cat *catalog.Catalog) error {
	// Password is never selected: masking rule in spec §4.1.
	sql := `
		SELECT r.rolname, r.rolcanlogin, r.rolsuper, r.rolcreatedb, r.rolcreaterole,
		       r.rolreplication, r.rolconnlimit,
		       COALESCE(r.rolconfig::text[], '{}'::text[]),
		       shobj_description(r.oid, 'pg_authid')
		FROM pg_roles r
		WHERE r.rolname NOT LIKE 'pg\_%'
		ORDER BY r.rolname`
	rows, err := query(ctx, sess, sql)
	if err != nil {
		return err
	}
	for _, r := range rows {
		name := str(r[0])
		role := &catalog.Role{
			ID:              catalog.RoleID(name),
			Name:            name,
			CanLogin:        boolv(r[1]),
			Superuser:       boolv(r[2]),
			CreateDB:        boolv(r[3]),
			CreateRole:      boolv(r[4]),
			Replication:     boolv(r[5]),
			ConnectionLimit: int(intv(r[6])),
			Config:          parseConfigArray(textArray(r[7])),
			Comment:         str(r[8]),
		}
		cat.Roles[name] = role
	}

	membSQL := `
		SELECT m.roleid::regrole::text, m.member::regrole::text, m.admin_option
		FROM pg_auth_members m`
	rows, err = query(ctx, sess, membSQL)
	if err != nil {
		return err
	}
	for _, r := range rows {
		group, member, admin := str(r[0]), str(r[1]), boolv(r[2])
		if role, ok := cat.Roles[member]; ok {
			role.Memberships = append(role.Memberships, catalog.RoleMembership{Group: group, AdminOption: admin})
		}
	}
	return nil
}

// parseConfigArray decodes a pg_roles/pg_proc "key=value" text array into a
// map, the same representation used for SET-config options on functions.
func parseConfigArray(entries []string) map[string]string {
	if len(entries) == 0 {
		return nil
	}
	out := make(map[string]string, len(entries))
	for _, entry := range entries {
		for i := 0; i < len(entry); i++ {
			if entry[i] == '=' {
				out[entry[:i]] = entry[i+1:]
				break
			}
		}
	}
	return out
}

func (e *Extractor) buildCollations(ctx context.Context, sess session.Session, cat *catalog.Catalog) error {
	sql := fmt.Sprintf(`
		SELECT n.nspname, c.collname, c.collcollate, c.collprovider, c.collisdeterministic,
		       c.collversion, pg_get_userbyid(c.collowner), obj_description(c.oid, 'pg_collation')
		FROM pg_collation c
		JOIN pg_namespace n ON n.oid = c.collnamespace
		WHERE %s
		ORDER BY n.nspname, c.collname`, e.schemaFilter("n.nspname"))
	rows, err := query(ctx, sess, sql)
	if err != nil {
		return err
	}
	for _, r := range rows {
		schema, name := str(r[0]), str(r[1])
		id := catalog.CollationID(schema, name)
		cat.Collations[id] = &catalog.Collation{
			ID:            id,
			Schema:        schema,
			Name:          name,
			Locale:        str(r[2]),
			Provider:      providerName(str(r[3])),
			Deterministic: boolv(r[4]),
			Version:       str(r[5]),
			Owner:         str(r[6]),
			Comment:       str(r[7]),
		}
	}
	return nil
}

func providerName(code string) string {
	switch code {
	case "c":
		return "libc"
	case "i":
		return "icu"
	case "b":
		return "builtin"
	default:
		return code
	}
}

func (e *Extractor) buildTypes(ctx context.Context, sess session.Session, cat *catalog.Catalog) error {
	sql := fmt.Sprintf(`
		SELECT n.nspname, t.typname, t.typtype, pg_get_userbyid(t.typowner),
		       obj_description(t.oid, 'pg_type')
		FROM pg_type t
		JOIN pg_namespace n ON n.oid = t.typnamespace
		WHERE %s AND t.typtype IN ('e','c','d','r') AND t.typrelid = 0 OR
		      (t.typtype = 'c' AND EXISTS (SELECT 1 FROM pg_class cl WHERE cl.oid = t.typrelid AND cl.relkind = 'c'))
		ORDER BY n.nspname, t.typname`, e.schemaFilter("n.nspname"))
	rows, err := query(ctx, sess, sql)
	if err != nil {
		return err
	}
	for _, r := range rows {
		schema, name, kindCode := str(r[0]), str(r[1]), str(r[2])
		id := catalog.TypeID(schema, name)
		t := &catalog.Type{
			ID:      id,
			Schema:  schema,
			Name:    name,
			Owner:   str(r[3]),
			Comment: str(r[4]),
		}
		switch kindCode {
		case "e":
			t.Kind = catalog.TypeEnum
		case "c":
			t.Kind = catalog.TypeComposite
		case "d":
			t.Kind = catalog.TypeDomain
		case "r":
			t.Kind = catalog.TypeRange
		}
		cat.Types[id] = t
	}

	if err := e.fillEnumValues(ctx, sess, cat); err != nil {
		return err
	}
	if err := e.fillCompositeAttrs(ctx, sess, cat); err != nil {
		return err
	}
	if err := e.fillDomains(ctx, sess, cat); err != nil {
		return err
	}
	return e.fillRanges(ctx, sess, cat)
}

func (e *Extractor) fillEnumValues(ctx context.Context, sess session.Session, cat *catalog.Catalog) error {
	sql := fmt.Sprintf(`
		SELECT n.nspname, t.typname, en.enumlabel
		FROM pg_enum en
		JOIN pg_type t ON t.oid = en.enumtypid
		JOIN pg_namespace n ON n.oid = t.typnamespace
		WHERE %s
		ORDER BY n.nspname, t.typname, en.enumsortorder`, e.schemaFilter("n.nspname"))
	rows, err := query(ctx, sess, sql)
	if err != nil {
		return err
	}
	for _, r := range rows {
		id := catalog.TypeID(str(r[0]), str(r[1]))
		if t, ok := cat.Types[id]; ok {
			t.EnumValues = append(t.EnumValues, str(r[2]))
		}
	}
	return nil
}

func (e *Extractor) fillCompositeAttrs(ctx context.Context, sess session.Session, cat *catalog.Catalog) error {
	sql := fmt.Sprintf(`
		SELECT n.nspname, t.typname, a.attname, format_type(a.atttypid, a.atttypmod), a.attnum
		FROM pg_type t
		JOIN pg_namespace n ON n.oid = t.typnamespace
		JOIN pg_attribute a ON a.attrelid = t.typrelid
		WHERE t.typtype = 'c' AND a.attnum > 0 AND NOT a.attisdropped AND %s
		ORDER BY n.nspname, t.typname, a.attnum`, e.schemaFilter("n.nspname"))
	rows, err := query(ctx, sess, sql)
	if err != nil {
		return err
	}
	for _, r := range rows {
		id := catalog.TypeID(str(r[0]), str(r[1]))
		if t, ok := cat.Types[id]; ok {
			t.Attrs = append(t.Attrs, &catalog.CompositeAttr{
				Name: str(r[2]), DataType: str(r[3]), Position: int(intv(r[4])),
			})
		}
	}
	return nil
}

func (e *Extractor) fillDomains(ctx context.Context, sess session.Session, cat *catalog.Catalog) error {
	sql := fmt.Sprintf(`
		SELECT n.nspname, t.typname, format_type(t.typbasetype, t.typtypmod),
		       t.typnotnull, COALESCE(pg_get_expr(t.typdefaultbin, 0), t.typdefault, ''),
		       COALESCE(co.collname, '')
		FROM pg_type t
		JOIN pg_namespace n ON n.oid = t.typnamespace
		LEFT JOIN pg_collation co ON co.oid = t.typcollation
		WHERE t.typtype = 'd' AND %s`, e.schemaFilter("n.nspname"))
	rows, err := query(ctx, sess, sql)
	if err != nil {
		return err
	}
	for _, r := range rows {
		id := catalog.TypeID(str(r[0]), str(r[1]))
		t, ok := cat.Types[id]
		if !ok {
			continue
		}
		t.BaseType = str(r[2])
		t.NotNull = boolv(r[3])
		t.Default = str(r[4])
		t.Collation = str(r[5])
	}

	checkSQL := fmt.Sprintf(`
		SELECT n.nspname, t.typname, c.conname, pg_get_constraintdef(c.oid)
		FROM pg_constraint c
		JOIN pg_type t ON t.oid = c.contypid
		JOIN pg_namespace n ON n.oid = t.typnamespace
		WHERE %s
		ORDER BY n.nspname, t.typname, c.conname`, e.schemaFilter("n.nspname"))
	rows, err = query(ctx, sess, checkSQL)
	if err != nil {
		return err
	}
	for _, r := range rows {
		id := catalog.TypeID(str(r[0]), str(r[1]))
		if t, ok := cat.Types[id]; ok {
			t.Checks = append(t.Checks, &catalog.DomainCheck{Name: str(r[2]), Definition: str(r[3])})
		}
	}
	return nil
}

func (e *Extractor) fillRanges(ctx context.Context, sess session.Session, cat *catalog.Catalog) error {
	sql := fmt.Sprintf(`
		SELECT n.nspname, t.typname, format_type(rng.rngsubtype, NULL),
		       COALESCE(op.opcname, ''), COALESCE(canon.proname, ''), COALESCE(diff.proname, '')
		FROM pg_range rng
		JOIN pg_type t ON t.oid = rng.rngtypid
		JOIN pg_namespace n ON n.oid = t.typnamespace
		LEFT JOIN pg_opclass op ON op.oid = rng.rngsubopc
		LEFT JOIN pg_proc canon ON canon.oid = rng.rngcanonical
		LEFT JOIN pg_proc diff ON diff.oid = rng.rngsubdiff
		WHERE %s`, e.schemaFilter("n.nspname"))
	rows, err := query(ctx, sess, sql)
	if err != nil {
		return err
	}
	for _, r := range rows {
		id := catalog.TypeID(str(r[0]), str(r[1]))
		t, ok := cat.Types[id]
		if !ok {
			continue
		}
		t.Subtype = str(r[2])
		t.SubtypeOpclass = str(r[3])
		t.Canonical = str(r[4])
		t.Diff = str(r[5])
	}
	return nil
}

func (e *Extractor) buildSequences(ctx context.Context, sess session.Session, cat *catalog.Catalog) error {
	sql := fmt.Sprintf(`
		SELECT n.nspname, c.relname, s.seqtypid::regtype::text, s.seqstart, s.seqmin, s.seqmax,
		       s.seqincrement, s.seqcache, s.seqcycle, pg_get_userbyid(c.relowner),
		       obj_description(c.oid, 'pg_class')
		FROM pg_sequence s
		JOIN pg_class c ON c.oid = s.seqrelid
		JOIN pg_namespace n ON n.oid = c.relnamespace
		WHERE %s
		ORDER BY n.nspname, c.relname`, e.schemaFilter("n.nspname"))
	rows, err := query(ctx, sess, sql)
	if err != nil {
		return err
	}
	for _, r := range rows {
		schema, name := str(r[0]), str(r[1])
		id := catalog.SequenceID(schema, name)
		cat.Sequences[id] = &catalog.Sequence{
			ID: id, Schema: schema, Name: name,
			DataType:  str(r[2]),
			Start:     intv(r[3]),
			Min:       intv(r[4]),
			Max:       intv(r[5]),
			Increment: intv(r[6]),
			CacheSize: intv(r[7]),
			Cycle:     boolv(r[8]),
			Owner:     str(r[9]),
			Comment:   str(r[10]),
		}
	}

	ownedSQL := `
		SELECT ns.nspname, sc.relname, nt.nspname, tc.relname, a.attname
		FROM pg_depend d
		JOIN pg_class sc ON sc.oid = d.objid AND sc.relkind = 'S'
		JOIN pg_namespace ns ON ns.oid = sc.relnamespace
		JOIN pg_class tc ON tc.oid = d.refobjid
		JOIN pg_namespace nt ON nt.oid = tc.relnamespace
		JOIN pg_attribute a ON a.attrelid = tc.oid AND a.attnum = d.refobjsubid
		WHERE d.deptype = 'a' AND d.classid = 'pg_class'::regclass`
	rows, err = query(ctx, sess, ownedSQL)
	if err != nil {
		return err
	}
	for _, r := range rows {
		id := catalog.SequenceID(str(r[0]), str(r[1]))
		if seq, ok := cat.Sequences[id]; ok {
			seq.OwnedByTable = str(r[2]) + "." + str(r[3])
			seq.OwnedByColumn = str(r[4])
		}
	}
	return nil
}

func (e *Extractor) buildTables(ctx context.Context, sess session.Session, cat *catalog.Catalog) error {
	sql := fmt.Sprintf(`
		SELECT n.nspname, c.relname, c.relkind, c.relrowsecurity, c.relforcerowsecurity,
		       pg_get_userbyid(c.relowner), obj_description(c.oid, 'pg_class'),
		       c.relispartition, COALESCE(p.partstrat, ''), COALESCE(pg_get_partkeydef(c.oid), '')
		FROM pg_class c
		JOIN pg_namespace n ON n.oid = c.relnamespace
		LEFT JOIN pg_partitioned_table p ON p.partrelid = c.oid
		WHERE c.relkind IN ('r','p','f') AND %s
		ORDER BY n.nspname, c.relname`, e.schemaFilter("n.nspname"))
	rows, err := query(ctx, sess, sql)
	if err != nil {
		return err
	}
	for _, r := range rows {
		schema, name, kind := str(r[0]), str(r[1]), str(r[2])
		id := catalog.TableID(schema, name)
		t := &catalog.Table{
			ID:             id,
			Schema:         schema,
			Name:           name,
			Constraints:    make(map[string]*catalog.Constraint),
			Indexes:        make(map[string]*catalog.Index),
			Triggers:       make(map[string]*catalog.Trigger),
			Policies:       make(map[string]*catalog.RLSPolicy),
			Rules:          make(map[string]*catalog.Rule),
			ColumnComments: make(map[string]string),
			RLSEnabled:     boolv(r[3]),
			RLSForced:      boolv(r[4]),
			Owner:          str(r[5]),
			Comment:        str(r[6]),
		}
		switch kind {
		case "f":
			t.Kind = catalog.TableForeign
		case "p":
			t.Kind = catalog.TablePartitioned
		default:
			t.Kind = catalog.TableRegular
		}
		if boolv(r[7]) {
			t.Kind = catalog.TablePartition
		}
		if strat := str(r[8]); strat != "" {
			t.Partition = &catalog.PartitionInfo{Strategy: partitionStrategyName(strat), Key: str(r[9])}
		}
		cat.Tables[id] = t
	}
	return nil
}

func partitionStrategyName(code string) string {
	switch code {
	case "r":
		return "RANGE"
	case "l":
		return "LIST"
	case "h":
		return "HASH"
	default:
		return code
	}
}

func (e *Extractor) buildColumns(ctx context.Context, sess session.Session, cat *catalog.Catalog) error {
	sql := fmt.Sprintf(`
		SELECT n.nspname, c.relname, a.attname, a.attnum, format_type(a.atttypid, a.atttypmod),
		       a.attnotnull, a.atthasdef, COALESCE(pg_get_expr(ad.adbin, ad.adrelid), ''),
		       a.attidentity, COALESCE(co.collname, ''), col_description(c.oid, a.attnum),
		       COALESCE(a.attgenerated, '')
		FROM pg_attribute a
		JOIN pg_class c ON c.oid = a.attrelid
		JOIN pg_namespace n ON n.oid = c.relnamespace
		LEFT JOIN pg_attrdef ad ON ad.adrelid = c.oid AND ad.adnum = a.attnum
		LEFT JOIN pg_collation co ON co.oid = a.attcollation
		WHERE a.attnum > 0 AND NOT a.attisdropped AND c.relkind IN ('r','p','f') AND %s
		ORDER BY n.nspname, c.relname, a.attnum`, e.schemaFilter("n.nspname"))
	rows, err := query(ctx, sess, sql)
	if err != nil {
		return err
	}
	for _, r := range rows {
		id := catalog.TableID(str(r[0]), str(r[1]))
		t, ok := cat.Tables[id]
		if !ok {
			continue
		}
		col := &catalog.Column{
			Name:       str(r[2]),
			Position:   int(intv(r[3])),
			DataType:   str(r[4]),
			NotNull:    boolv(r[5]),
			HasDefault: boolv(r[6]),
			Default:    str(r[7]),
			Collation:  str(r[9]),
			Comment:    str(r[10]),
			Generated:  str(r[11]),
		}
		if identity := str(r[8]); identity == "a" || identity == "d" {
			col.Identity = &catalog.Identity{Generation: identityGeneration(identity)}
		}
		t.Columns = append(t.Columns, col)
		if col.Comment != "" {
			t.ColumnComments[col.Name] = col.Comment
		}
	}
	return nil
}

func identityGeneration(code string) string {
	if code == "a" {
		return "ALWAYS"
	}
	return "BY_DEFAULT"
}

func (e *Extractor) buildConstraints(ctx context.Context, sess session.Session, cat *catalog.Catalog) error {
	sql := fmt.Sprintf(`
		SELECT n.nspname, c.relname, con.conname, con.contype,
		       pg_get_constraintdef(con.oid), con.condeferrable, con.condeferred,
		       obj_description(con.oid, 'pg_constraint'),
		       fn.nspname, fc.relname
		FROM pg_constraint con
		JOIN pg_class c ON c.oid = con.conrelid
		JOIN pg_namespace n ON n.oid = c.relnamespace
		LEFT JOIN pg_class fc ON fc.oid = con.confrelid
		LEFT JOIN pg_namespace fn ON fn.oid = fc.relnamespace
		WHERE con.contype IN ('p','u','f','c','x') AND %s
		ORDER BY n.nspname, c.relname, con.conname`, e.schemaFilter("n.nspname"))
	rows, err := query(ctx, sess, sql)
	if err != nil {
		return err
	}
	for _, r := range rows {
		schema, table, name := str(r[0]), str(r[1]), str(r[2])
		tid := catalog.TableID(schema, table)
		t, ok := cat.Tables[tid]
		if !ok {
			continue
		}
		con := &catalog.Constraint{
			Schema:            schema,
			Table:             table,
			Name:              name,
			Type:              constraintTypeFromCode(str(r[3])),
			Deferrable:        boolv(r[5]),
			InitiallyDeferred: boolv(r[6]),
			Comment:           str(r[7]),
			ReferencedSchema:  str(r[8]),
			ReferencedTable:   str(r[9]),
		}
		if con.Type == catalog.ConstraintCheck {
			con.CheckClause = str(r[4])
		}
		if con.Type == catalog.ConstraintExclusion {
			con.ExclusionElements = str(r[4])
		}
		t.Constraints[name] = con
	}
	return nil
}

func constraintTypeFromCode(code string) catalog.ConstraintType {
	switch code {
	case "p":
		return catalog.ConstraintPrimaryKey
	case "u":
		return catalog.ConstraintUnique
	case "f":
		return catalog.ConstraintForeignKey
	case "c":
		return catalog.ConstraintCheck
	case "x":
		return catalog.ConstraintExclusion
	default:
		return catalog.ConstraintType(code)
	}
}

func (e *Extractor) buildIndexes(ctx context.Context, sess session.Session, cat *catalog.Catalog) error {
	sql := fmt.Sprintf(`
		SELECT n.nspname, c.relname, i.relname, am.amname, ix.indisunique, ix.indisprimary,
		       COALESCE(pg_get_expr(ix.indpred, ix.indrelid), ''), obj_description(i.oid, 'pg_class')
		FROM pg_index ix
		JOIN pg_class c ON c.oid = ix.indrelid
		JOIN pg_class i ON i.oid = ix.indexrelid
		JOIN pg_namespace n ON n.oid = c.relnamespace
		JOIN pg_am am ON am.oid = i.relam
		WHERE NOT ix.indisexclusion AND %s
		ORDER BY n.nspname, c.relname, i.relname`, e.schemaFilter("n.nspname"))
	rows, err := query(ctx, sess, sql)
	if err != nil {
		return err
	}
	for _, r := range rows {
		schema, table, name := str(r[0]), str(r[1]), str(r[2])
		tid := catalog.TableID(schema, table)
		t, ok := cat.Tables[tid]
		if !ok {
			continue
		}
		idx := &catalog.Index{
			Schema:  schema,
			Table:   table,
			Name:    name,
			Method:  str(r[3]),
			Unique:  boolv(r[4]),
			Primary: boolv(r[5]),
			Where:   str(r[6]),
			Comment: str(r[7]),
		}
		t.Indexes[name] = idx
	}

	colSQL := fmt.Sprintf(`
		SELECT n.nspname, c.relname, i.relname, a.attname, k.n,
		       (ix.indoption[k.n-1] & 1) != 0 AS is_desc,
		       (ix.indoption[k.n-1] & 2) != 0 AS nulls_first
		FROM pg_index ix
		JOIN pg_class c ON c.oid = ix.indrelid
		JOIN pg_class i ON i.oid = ix.indexrelid
		JOIN pg_namespace n ON n.oid = c.relnamespace
		CROSS JOIN LATERAL generate_series(1, ix.indnkeyatts) AS k(n)
		LEFT JOIN pg_attribute a ON a.attrelid = c.oid AND a.attnum = ix.indkey[k.n-1]
		WHERE %s
		ORDER BY n.nspname, c.relname, i.relname, k.n`, e.schemaFilter("n.nspname"))
	rows, err = query(ctx, sess, colSQL)
	if err != nil {
		return err
	}
	for _, r := range rows {
		schema, table, iname := str(r[0]), str(r[1]), str(r[2])
		tid := catalog.TableID(schema, table)
		t, ok := cat.Tables[tid]
		if !ok {
			continue
		}
		idx, ok := t.Indexes[iname]
		if !ok {
			continue
		}
		idx.Columns = append(idx.Columns, catalog.IndexColumn{
			Name:       str(r[3]),
			Position:   int(intv(r[4])),
			Desc:       boolv(r[5]),
			NullsFirst: boolv(r[6]),
		})
	}
	return nil
}

func (e *Extractor) buildTriggers(ctx context.Context, sess session.Session, cat *catalog.Catalog) error {
	sql := fmt.Sprintf(`
		SELECT n.nspname, c.relname, tg.tgname, tg.tgtype, p.proname, pn.nspname,
		       tg.tgenabled, obj_description(tg.oid, 'pg_trigger')
		FROM pg_trigger tg
		JOIN pg_class c ON c.oid = tg.tgrelid
		JOIN pg_namespace n ON n.oid = c.relnamespace
		JOIN pg_proc p ON p.oid = tg.tgfoid
		JOIN pg_namespace pn ON pn.oid = p.pronamespace
		WHERE NOT tg.tgisinternal AND %s
		ORDER BY n.nspname, c.relname, tg.tgname`, e.schemaFilter("n.nspname"))
	rows, err := query(ctx, sess, sql)
	if err != nil {
		return err
	}
	for _, r := range rows {
		schema, table, name := str(r[0]), str(r[1]), str(r[2])
		tid := catalog.TableID(schema, table)
		t, ok := cat.Tables[tid]
		if !ok {
			continue
		}
		bitmask := int(intv(r[3]))
		trig := &catalog.Trigger{
			Schema:   schema,
			Table:    table,
			Name:     name,
			Timing:   triggerTiming(bitmask),
			Events:   triggerEvents(bitmask),
			Row:      bitmask&1 != 0,
			Function: catalog.FunctionID("function", str(r[5]), str(r[4]), ""),
			Enabled:  str(r[6]) != "D",
			Comment:  str(r[7]),
		}
		t.Triggers[name] = trig
	}
	return nil
}

// triggerTiming/triggerEvents decode pg_trigger.tgtype's bitmask, the same
// fields pg_get_triggerdef reads internally.
func triggerTiming(bitmask int) catalog.TriggerTiming {
	switch {
	case bitmask&2 != 0:
		return catalog.TimingBefore
	case bitmask&64 != 0:
		return catalog.TimingInsteadOf
	default:
		return catalog.TimingAfter
	}
}

func triggerEvents(bitmask int) []string {
	var events []string
	if bitmask&4 != 0 {
		events = append(events, "INSERT")
	}
	if bitmask&8 != 0 {
		events = append(events, "DELETE")
	}
	if bitmask&16 != 0 {
		events = append(events, "UPDATE")
	}
	if bitmask&32 != 0 {
		events = append(events, "TRUNCATE")
	}
	return events
}

func (e *Extractor) buildEventTriggers(ctx context.Context, sess session.Session, cat *catalog.Catalog) error {
	sql := `
		SELECT et.evtname, et.evtevent, COALESCE(et.evttags, '{}'::text[]), p.proname, n.nspname,
		       et.evtenabled, obj_description(et.oid, 'pg_event_trigger')
		FROM pg_event_trigger et
		JOIN pg_proc p ON p.oid = et.evtfoid
		JOIN pg_namespace n ON n.oid = p.pronamespace
		ORDER BY et.evtname`
	rows, err := query(ctx, sess, sql)
	if err != nil {
		return err
	}
	for _, r := range rows {
		name := str(r[0])
		id := catalog.EventTriggerID(name)
		cat.EventTriggers[id] = &catalog.EventTrigger{
			ID:       id,
			Name:     name,
			Event:    str(r[1]),
			Tags:     textArray(r[2]),
			Function: catalog.FunctionID("function", str(r[4]), str(r[3]), ""),
			Enabled:  str(r[5]) != "D",
			Comment:  str(r[6]),
		}
	}
	return nil
}

func (e *Extractor) buildRules(ctx context.Context, sess session.Session, cat *catalog.Catalog) error {
	sql := fmt.Sprintf(`
		SELECT n.nspname, c.relname, r.rulename, pg_get_ruledef(r.oid)
		FROM pg_rewrite r
		JOIN pg_class c ON c.oid = r.ev_class
		JOIN pg_namespace n ON n.oid = c.relnamespace
		WHERE r.rulename <> '_RETURN' AND %s
		ORDER BY n.nspname, c.relname, r.rulename`, e.schemaFilter("n.nspname"))
	rows, err := query(ctx, sess, sql)
	if err != nil {
		return err
	}
	for _, r := range rows {
		schema, table, name := str(r[0]), str(r[1]), str(r[2])
		tid := catalog.TableID(schema, table)
		t, ok := cat.Tables[tid]
		if !ok {
			continue
		}
		t.Rules[name] = &catalog.Rule{Schema: schema, Table: table, Name: name, Actions: []string{str(r[3])}}
	}
	return nil
}

func (e *Extractor) buildPolicies(ctx context.Context, sess session.Session, cat *catalog.Catalog) error {
	sql := fmt.Sprintf(`
		SELECT n.nspname, c.relname, p.polname, p.polcmd, p.polpermissive,
		       COALESCE(p.polroles::text[], '{}'::text[]),
		       COALESCE(pg_get_expr(p.polqual, p.polrelid), ''),
		       COALESCE(pg_get_expr(p.polwithcheck, p.polrelid), '')
		FROM pg_policy p
		JOIN pg_class c ON c.oid = p.polrelid
		JOIN pg_namespace n ON n.oid = c.relnamespace
		WHERE %s
		ORDER BY n.nspname, c.relname, p.polname`, e.schemaFilter("n.nspname"))
	rows, err := query(ctx, sess, sql)
	if err != nil {
		return err
	}
	for _, r := range rows {
		schema, table, name := str(r[0]), str(r[1]), str(r[2])
		tid := catalog.TableID(schema, table)
		t, ok := cat.Tables[tid]
		if !ok {
			continue
		}
		t.Policies[name] = &catalog.RLSPolicy{
			Schema:     schema,
			Table:      table,
			Name:       name,
			Command:    policyCommandFromCode(str(r[3])),
			Permissive: boolv(r[4]),
			Roles:      textArray(r[5]),
			Using:      str(r[6]),
			WithCheck:  str(r[7]),
		}
	}
	return nil
}

func policyCommandFromCode(code string) catalog.PolicyCommand {
	switch code {
	case "r":
		return catalog.PolicySelect
	case "a":
		return catalog.PolicyInsert
	case "w":
		return catalog.PolicyUpdate
	case "d":
		return catalog.PolicyDelete
	default:
		return catalog.PolicyAll
	}
}

// buildViews extracts both plain and materialized views via
// pg_get_viewdef(oid, true), then runs the definition through
// canonicalizeViewDefinition (version.go), the one place server-version is
// consulted, to absorb the pre-17 ruleutils formatting quirk described there.
func (e *Extractor) buildViews(ctx context.Context, sess session.Session, cat *catalog.Catalog) error {
	sql := fmt.Sprintf(`
		SELECT n.nspname, c.relname, c.relkind, pg_get_viewdef(c.oid, true),
		       pg_get_userbyid(c.relowner), obj_description(c.oid, 'pg_class')
		FROM pg_class c
		JOIN pg_namespace n ON n.oid = c.relnamespace
		WHERE c.relkind IN ('v','m') AND %s
		ORDER BY n.nspname, c.relname`, e.schemaFilter("n.nspname"))
	rows, err := query(ctx, sess, sql)
	if err != nil {
		return err
	}
	for _, r := range rows {
		schema, name, kind := str(r[0]), str(r[1]), str(r[2])
		materialized := kind == "m"
		var id catalog.StableID
		if materialized {
			id = catalog.MatviewID(schema, name)
		} else {
			id = catalog.ViewID(schema, name)
		}
		cat.Views[id] = &catalog.View{
			ID:             id,
			Schema:         schema,
			Name:           name,
			Materialized:   materialized,
			Definition:     canonicalizeViewDefinition(str(r[3]), e.serverVersion),
			Owner:          str(r[4]),
			Comment:        str(r[5]),
			ColumnComments: make(map[string]string),
		}
	}
	return nil
}

func (e *Extractor) buildFunctions(ctx context.Context, sess session.Session, cat *catalog.Catalog) error {
	sql := fmt.Sprintf(`
		SELECT n.nspname, p.proname, p.prokind, pg_get_function_arguments(p.oid),
		       pg_get_function_identity_arguments(p.oid), pg_get_function_result(p.oid),
		       l.lanname, p.provolatile, p.proisstrict, p.prosecdef, p.proparallel,
		       p.procost, p.prorows, COALESCE(p.prosrc, ''), pg_get_userbyid(p.proowner),
		       obj_description(p.oid, 'pg_proc')
		FROM pg_proc p
		JOIN pg_namespace n ON n.oid = p.pronamespace
		JOIN pg_language l ON l.oid = p.prolang
		WHERE p.prokind IN ('f','p') AND %s
		ORDER BY n.nspname, p.proname, pg_get_function_identity_arguments(p.oid)`, e.schemaFilter("n.nspname"))
	rows, err := query(ctx, sess, sql)
	if err != nil {
		return err
	}
	for _, r := range rows {
		schema, name, kindCode := str(r[0]), str(r[1]), str(r[2])
		argSig := str(r[4])
		kind := catalog.RoutineFunction
		idPrefix := "function"
		if kindCode == "p" {
			kind = catalog.RoutineProcedure
			idPrefix = "procedure"
		}
		id := catalog.FunctionID(idPrefix, schema, name, argSig)
		cat.Functions[id] = &catalog.Function{
			ID:              id,
			Schema:          schema,
			Name:            name,
			Kind:            kind,
			ArgSignature:    argSig,
			Arguments:       str(r[3]),
			ReturnType:      str(r[5]),
			Language:        str(r[6]),
			Volatility:      volatilityName(str(r[7])),
			Strict:          boolv(r[8]),
			SecurityDefiner: boolv(r[9]),
			Parallel:        parallelName(str(r[10])),
			Cost:            floatv(r[11]),
			Rows:            floatv(r[12]),
			Body:            str(r[13]),
			Owner:           str(r[14]),
			Comment:         str(r[15]),
		}
	}
	return nil
}

func volatilityName(code string) string {
	switch code {
	case "i":
		return "IMMUTABLE"
	case "s":
		return "STABLE"
	default:
		return "VOLATILE"
	}
}

func parallelName(code string) string {
	switch code {
	case "s":
		return "SAFE"
	case "r":
		return "RESTRICTED"
	default:
		return "UNSAFE"
	}
}

func (e *Extractor) buildAggregates(ctx context.Context, sess session.Session, cat *catalog.Catalog) error {
	sql := fmt.Sprintf(`
		SELECT n.nspname, p.proname, pg_get_function_identity_arguments(p.oid),
		       pg_get_function_result(p.oid), tfn.proname, tfns.nspname,
		       format_type(a.aggtranstype, NULL), COALESCE(a.agginitval, ''),
		       pg_get_userbyid(p.proowner), obj_description(p.oid, 'pg_proc')
		FROM pg_aggregate a
		JOIN pg_proc p ON p.oid = a.aggfnoid
		JOIN pg_namespace n ON n.oid = p.pronamespace
		JOIN pg_proc tfn ON tfn.oid = a.aggtransfn
		JOIN pg_namespace tfns ON tfns.oid = tfn.pronamespace
		WHERE %s
		ORDER BY n.nspname, p.proname`, e.schemaFilter("n.nspname"))
	rows, err := query(ctx, sess, sql)
	if err != nil {
		return err
	}
	for _, r := range rows {
		schema, name, argSig := str(r[0]), str(r[1]), str(r[2])
		id := catalog.FunctionID("aggregate", schema, name, argSig)
		cat.Aggregates[id] = &catalog.Aggregate{
			ID:                 id,
			Schema:             schema,
			Name:               name,
			ArgSignature:       argSig,
			ReturnType:         str(r[3]),
			TransitionFunction: catalog.FunctionID("function", str(r[5]), str(r[4]), ""),
			StateType:          str(r[6]),
			InitialCondition:   str(r[7]),
			Owner:              str(r[8]),
			Comment:            str(r[9]),
		}
	}
	return nil
}

func (e *Extractor) buildFDWs(ctx context.Context, sess session.Session, cat *catalog.Catalog) error {
	sql := `
		SELECT f.fdwname, COALESCE(h.proname, ''), COALESCE(v.proname, ''),
		       COALESCE(f.fdwoptions, '{}'::text[]), pg_get_userbyid(f.fdwowner),
		       obj_description(f.oid, 'pg_foreign_data_wrapper')
		FROM pg_foreign_data_wrapper f
		LEFT JOIN pg_proc h ON h.oid = f.fdwhandler
		LEFT JOIN pg_proc v ON v.oid = f.fdwvalidator
		ORDER BY f.fdwname`
	rows, err := query(ctx, sess, sql)
	if err != nil {
		return err
	}
	for _, r := range rows {
		name := str(r[0])
		id := catalog.FDWID(name)
		cat.FDWs[id] = &catalog.FDW{
			ID:        id,
			Name:      name,
			Handler:   str(r[1]),
			Validator: str(r[2]),
			Options:   optionMapFromEntries(textArray(r[3]), e.opts.Mask),
			Owner:     str(r[4]),
			Comment:   str(r[5]),
		}
	}

	srvSQL := `
		SELECT s.srvname, f.fdwname, COALESCE(s.srvtype, ''), COALESCE(s.srvversion, ''),
		       COALESCE(s.srvoptions, '{}'::text[]), pg_get_userbyid(s.srvowner),
		       obj_description(s.oid, 'pg_foreign_server')
		FROM pg_foreign_server s
		JOIN pg_foreign_data_wrapper f ON f.oid = s.srvfdw
		ORDER BY s.srvname`
	rows, err = query(ctx, sess, srvSQL)
	if err != nil {
		return err
	}
	for _, r := range rows {
		name := str(r[0])
		id := catalog.ServerID(name)
		cat.Servers[id] = &catalog.Server{
			ID:      id,
			Name:    name,
			FDW:     str(r[1]),
			Type:    str(r[2]),
			Version: str(r[3]),
			Options: optionMapFromEntries(textArray(r[4]), e.opts.Mask),
			Owner:   str(r[5]),
			Comment: str(r[6]),
		}
	}

	umSQL := `
		SELECT s.srvname, r.rolname, COALESCE(u.umoptions, '{}'::text[])
		FROM pg_user_mapping u
		JOIN pg_foreign_server s ON s.oid = u.umserver
		LEFT JOIN pg_roles r ON r.oid = u.umuser
		ORDER BY s.srvname, r.rolname`
	rows, err = query(ctx, sess, umSQL)
	if err != nil {
		return err
	}
	for _, r := range rows {
		server, user := str(r[0]), str(r[1])
		id := catalog.UserMappingID(server, user)
		cat.UserMappings[id] = &catalog.UserMapping{
			ID:      id,
			Server:  server,
			User:    user,
			Options: optionMapFromEntries(textArray(r[2]), e.opts.Mask),
		}
	}
	return nil
}

func (e *Extractor) buildPublications(ctx context.Context, sess session.Session, cat *catalog.Catalog) error {
	sql := `
		SELECT p.pubname, p.puballtables, p.pubinsert, p.pubupdate, p.pubdelete, p.pubtruncate,
		       pg_get_userbyid(p.pubowner), obj_description(p.oid, 'pg_publication')
		FROM pg_publication p
		ORDER BY p.pubname`
	rows, err := query(ctx, sess, sql)
	if err != nil {
		return err
	}
	for _, r := range rows {
		name := str(r[0])
		id := catalog.PublicationID(name)
		var ops []string
		if boolv(r[2]) {
			ops = append(ops, "insert")
		}
		if boolv(r[3]) {
			ops = append(ops, "update")
		}
		if boolv(r[4]) {
			ops = append(ops, "delete")
		}
		if boolv(r[5]) {
			ops = append(ops, "truncate")
		}
		cat.Publications[id] = &catalog.Publication{
			ID:         id,
			Name:       name,
			AllTables:  boolv(r[1]),
			PublishOps: ops,
			Owner:      str(r[6]),
			Comment:    str(r[7]),
		}
	}

	tblSQL := `
		SELECT p.pubname, n.nspname, c.relname
		FROM pg_publication_rel pr
		JOIN pg_publication p ON p.oid = pr.prpubid
		JOIN pg_class c ON c.oid = pr.prrelid
		JOIN pg_namespace n ON n.oid = c.relnamespace
		ORDER BY p.pubname, n.nspname, c.relname`
	rows, err = query(ctx, sess, tblSQL)
	if err != nil {
		return err
	}
	for _, r := range rows {
		id := catalog.PublicationID(str(r[0]))
		if pub, ok := cat.Publications[id]; ok {
			pub.Tables = append(pub.Tables, str(r[1])+"."+str(r[2]))
		}
	}
	return nil
}

// buildSubscriptions masks the connection string at extraction time: each
// key in the conninfo string is replaced by __CONN_<KEY>__ (spec §4.1
// "Masking"), which is also the diff-time invariant S5 relies on.
func (e *Extractor) buildSubscriptions(ctx context.Context, sess session.Session, cat *catalog.Catalog) error {
	sql := `
		SELECT s.subname, s.subconninfo, COALESCE(s.subpublications, '{}'::text[]),
		       s.subenabled, pg_get_userbyid(s.subowner), obj_description(s.oid, 'pg_subscription')
		FROM pg_subscription s
		ORDER BY s.subname`
	rows, err := query(ctx, sess, sql)
	if err != nil {
		return err
	}
	for _, r := range rows {
		name := str(r[0])
		id := catalog.SubscriptionID(name)
		cat.Subscriptions[id] = &catalog.Subscription{
			ID:           id,
			Name:         name,
			ConnInfo:     maskConnInfo(str(r[1]), e.opts.Mask),
			Publications: textArray(r[2]),
			Enabled:      boolv(r[3]),
			Owner:        str(r[4]),
			Comment:      str(r[5]),
		}
	}
	return nil
}

func (e *Extractor) buildPartitions(ctx context.Context, sess session.Session, cat *catalog.Catalog) error {
	sql := fmt.Sprintf(`
		SELECT pn.nspname, pc.relname, cn.nspname, cc.relname, pg_get_expr(cc.relpartbound, cc.oid)
		FROM pg_inherits i
		JOIN pg_class cc ON cc.oid = i.inhrelid
		JOIN pg_class pc ON pc.oid = i.inhparent
		JOIN pg_namespace pn ON pn.oid = pc.relnamespace
		JOIN pg_namespace cn ON cn.oid = cc.relnamespace
		WHERE cc.relispartition AND %s
		ORDER BY pn.nspname, pc.relname, cn.nspname, cc.relname`, e.schemaFilter("cn.nspname"))
	rows, err := query(ctx, sess, sql)
	if err != nil {
		return err
	}
	for _, r := range rows {
		att := &catalog.PartitionAttachment{
			ParentSchema: str(r[0]), ParentTable: str(r[1]),
			ChildSchema: str(r[2]), ChildTable: str(r[3]), Bound: str(r[4]),
		}
		cat.PartitionAttachments = append(cat.PartitionAttachments, att)
		if child, ok := cat.Tables[catalog.TableID(att.ChildSchema, att.ChildTable)]; ok {
			if child.Partition == nil {
				child.Partition = &catalog.PartitionInfo{}
			}
			child.Partition.Parent = catalog.TableID(att.ParentSchema, att.ParentTable)
			child.Partition.Bound = att.Bound
		}
	}

	idxSQL := fmt.Sprintf(`
		SELECT pn.nspname, pi.relname, cn.nspname, ci.relname
		FROM pg_inherits i
		JOIN pg_class ci ON ci.oid = i.inhrelid AND ci.relkind = 'I'
		JOIN pg_class pi ON pi.oid = i.inhparent
		JOIN pg_namespace pn ON pn.oid = pi.relnamespace
		JOIN pg_namespace cn ON cn.oid = ci.relnamespace
		WHERE %s
		ORDER BY pn.nspname, pi.relname`, e.schemaFilter("cn.nspname"))
	rows, err = query(ctx, sess, idxSQL)
	if err != nil {
		return err
	}
	for _, r := range rows {
		cat.IndexAttachments = append(cat.IndexAttachments, &catalog.IndexAttachment{
			ParentSchema: str(r[0]), ParentIndex: str(r[1]),
			ChildSchema: str(r[2]), ChildIndex: str(r[3]),
		})
	}
	return nil
}

// oidKey identifies a catalog row by its (catalog relation, oid) pair, the
// same compound key pg_depend uses to reference an object.
type oidKey struct {
	classOID string
	objOID   string
}

// buildOIDIndex populates e.oidIndex, mapping every object the extractor
// already materialized to its StableID, so buildDependencies can resolve
// pg_depend's OID pairs without re-deriving each kind's identity logic.
// Grounded on the same join shapes used in the buildXxx queries above;
// function identity reuses pg_get_function_identity_arguments for the
// overload-disambiguating qualifier (spec §3.3 "stable IDs").
func (e *Extractor) buildOIDIndex(ctx context.Context, sess session.Session, cat *catalog.Catalog) error {
	e.oidIndex = make(map[oidKey]catalog.StableID)

	rows, err := query(ctx, sess, `SELECT oid::text, nspname FROM pg_namespace`)
	if err != nil {
		return err
	}
	for _, r := range rows {
		e.oidIndex[oidKey{"pg_namespace", str(r[0])}] = catalog.SchemaID(str(r[1]))
	}

	rows, err = query(ctx, sess, `SELECT oid::text, extname FROM pg_extension`)
	if err != nil {
		return err
	}
	for _, r := range rows {
		e.oidIndex[oidKey{"pg_extension", str(r[0])}] = catalog.ExtensionID(str(r[1]))
	}

	rows, err = query(ctx, sess, `SELECT oid::text, rolname FROM pg_roles`)
	if err != nil {
		return err
	}
	for _, r := range rows {
		e.oidIndex[oidKey{"pg_authid", str(r[0])}] = catalog.RoleID(str(r[1]))
	}

	rows, err = query(ctx, sess, `SELECT oid::text, collname FROM pg_collation`)
	if err != nil {
		return err
	}
	for _, r := range rows {
		e.oidIndex[oidKey{"pg_collation", str(r[0])}] = r2CollationID(cat, str(r[1]))
	}

	rows, err = query(ctx, sess, `
		SELECT c.oid::text, n.nspname, c.relname, c.relkind
		FROM pg_class c JOIN pg_namespace n ON n.oid = c.relnamespace`)
	if err != nil {
		return err
	}
	for _, r := range rows {
		schema, name, kind := str(r[1]), str(r[2]), str(r[3])
		var id catalog.StableID
		switch kind {
		case "r", "p", "f":
			id = catalog.TableID(schema, name)
		case "v":
			id = catalog.ViewID(schema, name)
		case "m":
			id = catalog.MatviewID(schema, name)
		case "S":
			id = catalog.SequenceID(schema, name)
		case "i", "I":
			id = catalog.IndexID(schema, name)
		default:
			continue
		}
		e.oidIndex[oidKey{"pg_class", str(r[0])}] = id
	}

	// pg_attrdef rows are what pg_depend actually links a column default's
	// function/type references to (not the table's own pg_class entry), so
	// they need their own oidIndex slot: one that resolves straight through
	// to the owning table's already-known StableID.
	rows, err = query(ctx, sess, `SELECT oid::text, adrelid::text FROM pg_attrdef`)
	if err != nil {
		return err
	}
	for _, r := range rows {
		tableID, ok := e.oidIndex[oidKey{"pg_class", str(r[1])}]
		if !ok {
			continue
		}
		e.oidIndex[oidKey{"pg_attrdef", str(r[0])}] = tableID
	}

	rows, err = query(ctx, sess, `
		SELECT t.oid::text, n.nspname, t.typname
		FROM pg_type t JOIN pg_namespace n ON n.oid = t.typnamespace`)
	if err != nil {
		return err
	}
	for _, r := range rows {
		e.oidIndex[oidKey{"pg_type", str(r[0])}] = catalog.TypeID(str(r[1]), str(r[2]))
	}

	rows, err = query(ctx, sess, `
		SELECT p.oid::text, n.nspname, p.proname, p.prokind,
		       pg_get_function_identity_arguments(p.oid)
		FROM pg_proc p JOIN pg_namespace n ON n.oid = p.pronamespace`)
	if err != nil {
		return err
	}
	for _, r := range rows {
		schema, name, kind, args := str(r[1]), str(r[2]), str(r[3]), str(r[4])
		prefix := "function"
		if kind == "p" {
			prefix = "procedure"
		} else if kind == "a" {
			prefix = "aggregate"
		}
		e.oidIndex[oidKey{"pg_proc", str(r[0])}] = catalog.FunctionID(prefix, schema, name, args)
	}

	rows, err = query(ctx, sess, `
		SELECT con.oid::text, n.nspname, c.relname, con.conname
		FROM pg_constraint con
		JOIN pg_class c ON c.oid = con.conrelid
		JOIN pg_namespace n ON n.oid = c.relnamespace`)
	if err != nil {
		return err
	}
	for _, r := range rows {
		e.oidIndex[oidKey{"pg_constraint", str(r[0])}] = catalog.ConstraintID(str(r[1]), str(r[2]), str(r[3]))
	}

	rows, err = query(ctx, sess, `SELECT oid::text, fdwname FROM pg_foreign_data_wrapper`)
	if err != nil {
		return err
	}
	for _, r := range rows {
		e.oidIndex[oidKey{"pg_foreign_data_wrapper", str(r[0])}] = catalog.FDWID(str(r[1]))
	}

	rows, err = query(ctx, sess, `SELECT oid::text, srvname FROM pg_foreign_server`)
	if err != nil {
		return err
	}
	for _, r := range rows {
		e.oidIndex[oidKey{"pg_foreign_server", str(r[0])}] = catalog.ServerID(str(r[1]))
	}

	rows, err = query(ctx, sess, `SELECT oid::text, pubname FROM pg_publication`)
	if err != nil {
		return err
	}
	for _, r := range rows {
		e.oidIndex[oidKey{"pg_publication", str(r[0])}] = catalog.PublicationID(str(r[1]))
	}

	rows, err = query(ctx, sess, `SELECT oid::text, subname FROM pg_subscription`)
	if err != nil {
		return err
	}
	for _, r := range rows {
		e.oidIndex[oidKey{"pg_subscription", str(r[0])}] = catalog.SubscriptionID(str(r[1]))
	}

	return nil
}

func r2CollationID(cat *catalog.Catalog, name string) catalog.StableID {
	for id, c := range cat.Collations {
		if c.Name == name {
			return id
		}
	}
	return catalog.CollationID("", name)
}

// buildDependencies mirrors pg_depend into the catalog's DependencyGraph
// (spec §3.4), restricted to edges where both endpoints resolved through
// e.oidIndex, i.e. both objects were actually materialized by this
// extraction pass, so the Planner never sees an edge to an object it can't
// also see.
func (e *Extractor) buildDependencies(ctx context.Context, sess session.Session, cat *catalog.Catalog) error {
	sql := `
		SELECT d.classid::text, d.objid::text, d.refclassid::text, d.refobjid::text, d.deptype
		FROM pg_depend d
		WHERE d.deptype IN ('n','a','i','e') AND d.objid != d.refobjid`
	rows, err := query(ctx, sess, sql)
	if err != nil {
		return err
	}
	classNames, err := e.regclassNames(ctx, sess)
	if err != nil {
		return err
	}
	for _, r := range rows {
		classOID, objOID, refClassOID, refObjOID, deptype := str(r[0]), str(r[1]), str(r[2]), str(r[3]), str(r[4])
		dependent, ok := e.oidIndex[oidKey{classNames[classOID], objOID}]
		if !ok {
			continue
		}
		referenced, ok := e.oidIndex[oidKey{classNames[refClassOID], refObjOID}]
		if !ok {
			continue
		}
		cat.Deps.Add(dependent, referenced, catalog.DepType(deptype[0]))
	}
	return nil
}

// regclassNames maps pg_class OIDs (as text) to the relation name pg_depend
// expects for classid/refclassid comparisons (e.g. "pg_class", "pg_proc"),
// avoiding a ::regclass cast per row.
func (e *Extractor) regclassNames(ctx context.Context, sess session.Session) (map[string]string, error) {
	rows, err := query(ctx, sess, `SELECT oid::text, relname FROM pg_class WHERE relnamespace = 'pg_catalog'::regnamespace`)
	if err != nil {
		return nil, err
	}
	out := make(map[string]string, len(rows))
	for _, r := range rows {
		out[str(r[0])] = str(r[1])
	}
	return out, nil
}
