package extract

import (
	"context"
	"fmt"

	"github.com/supabase/pg-toolbelt-sub004/catalog"
	"github.com/supabase/pg-toolbelt-sub004/session"
)

// buildPrivileges populates every extracted entity's Privileges field from
// the relevant ACL column, via aclexplode (spec §3.3's "privileges" facet).
// A NULL acl column means the object carries only the implicit
// owner/PUBLIC defaults Postgres assigns at creation time and has nothing
// explicit to record, so those objects are skipped entirely rather than
// synthesizing a Privileges entry for them.
func (e *Extractor) buildPrivileges(ctx context.Context, sess session.Session, cat *catalog.Catalog) error {
	if err := e.buildSchemaPrivileges(ctx, sess, cat); err != nil {
		return err
	}
	if err := e.buildRelationPrivileges(ctx, sess, cat); err != nil {
		return err
	}
	if err := e.buildColumnPrivileges(ctx, sess, cat); err != nil {
		return err
	}
	if err := e.buildRoutinePrivileges(ctx, sess, cat); err != nil {
		return err
	}
	if err := e.buildTypePrivileges(ctx, sess, cat); err != nil {
		return err
	}
	return e.buildFDWPrivileges(ctx, sess, cat)
}

func privilegeFromRow(r session.Row, granteeIdx, kindIdx, grantableIdx int) catalog.Privilege {
	return catalog.Privilege{
		Grantee:         str(r[granteeIdx]),
		Kind:            str(r[kindIdx]),
		WithGrantOption: boolv(r[grantableIdx]),
	}
}

func (e *Extractor) buildSchemaPrivileges(ctx context.Context, sess session.Session, cat *catalog.Catalog) error {
	sql := fmt.Sprintf(`
		SELECT n.nspname, COALESCE(r.rolname, 'PUBLIC'), a.privilege_type, a.is_grantable
		FROM pg_namespace n, LATERAL aclexplode(n.nspacl) AS a(grantor, grantee, privilege_type, is_grantable)
		LEFT JOIN pg_roles r ON r.oid = a.grantee
		WHERE n.nspacl IS NOT NULL AND %s
		ORDER BY n.nspname, r.rolname, a.privilege_type`, e.schemaFilter("n.nspname"))
	rows, err := query(ctx, sess, sql)
	if err != nil {
		return err
	}
	for _, r := range rows {
		s, ok := cat.Schemas[str(r[0])]
		if !ok {
			continue
		}
		s.Privileges = append(s.Privileges, privilegeFromRow(r, 1, 2, 3))
	}
	return nil
}

func (e *Extractor) buildRelationPrivileges(ctx context.Context, sess session.Session, cat *catalog.Catalog) error {
	sql := fmt.Sprintf(`
		SELECT n.nspname, c.relname, c.relkind, COALESCE(r.rolname, 'PUBLIC'), a.privilege_type, a.is_grantable
		FROM pg_class c
		JOIN pg_namespace n ON n.oid = c.relnamespace,
		     LATERAL aclexplode(c.relacl) AS a(grantor, grantee, privilege_type, is_grantable)
		LEFT JOIN pg_roles r ON r.oid = a.grantee
		WHERE c.relacl IS NOT NULL AND c.relkind IN ('r','p','f','v','m','S') AND %s
		ORDER BY n.nspname, c.relname, r.rolname, a.privilege_type`, e.schemaFilter("n.nspname"))
	rows, err := query(ctx, sess, sql)
	if err != nil {
		return err
	}
	for _, r := range rows {
		schema, name, kind := str(r[0]), str(r[1]), str(r[2])
		p := privilegeFromRow(r, 3, 4, 5)
		switch kind {
		case "r", "p", "f":
			if t, ok := cat.Tables[catalog.TableID(schema, name)]; ok {
				t.Privileges = append(t.Privileges, p)
			}
		case "v":
			if v, ok := cat.Views[catalog.ViewID(schema, name)]; ok {
				v.Privileges = append(v.Privileges, p)
			}
		case "m":
			if v, ok := cat.Views[catalog.MatviewID(schema, name)]; ok {
				v.Privileges = append(v.Privileges, p)
			}
		case "S":
			if s, ok := cat.Sequences[catalog.SequenceID(schema, name)]; ok {
				s.Privileges = append(s.Privileges, p)
			}
		}
	}
	return nil
}

func (e *Extractor) buildColumnPrivileges(ctx context.Context, sess session.Session, cat *catalog.Catalog) error {
	sql := fmt.Sprintf(`
		SELECT n.nspname, c.relname, att.attname, COALESCE(r.rolname, 'PUBLIC'), a.privilege_type, a.is_grantable
		FROM pg_attribute att
		JOIN pg_class c ON c.oid = att.attrelid
		JOIN pg_namespace n ON n.oid = c.relnamespace,
		     LATERAL aclexplode(att.attacl) AS a(grantor, grantee, privilege_type, is_grantable)
		LEFT JOIN pg_roles r ON r.oid = a.grantee
		WHERE att.attacl IS NOT NULL AND att.attnum > 0 AND NOT att.attisdropped
		  AND c.relkind IN ('r','p','f') AND %s
		ORDER BY n.nspname, c.relname, att.attname, r.rolname, a.privilege_type`, e.schemaFilter("n.nspname"))
	rows, err := query(ctx, sess, sql)
	if err != nil {
		return err
	}
	for _, r := range rows {
		t, ok := cat.Tables[catalog.TableID(str(r[0]), str(r[1]))]
		if !ok {
			continue
		}
		colName := str(r[2])
		for _, col := range t.Columns {
			if col.Name == colName {
				col.Privileges = append(col.Privileges, privilegeFromRow(r, 3, 4, 5))
				break
			}
		}
	}
	return nil
}

func (e *Extractor) buildRoutinePrivileges(ctx context.Context, sess session.Session, cat *catalog.Catalog) error {
	sql := fmt.Sprintf(`
		SELECT n.nspname, p.proname, p.prokind, pg_get_function_identity_arguments(p.oid),
		       COALESCE(r.rolname, 'PUBLIC'), a.privilege_type, a.is_grantable
		FROM pg_proc p
		JOIN pg_namespace n ON n.oid = p.pronamespace,
		     LATERAL aclexplode(p.proacl) AS a(grantor, grantee, privilege_type, is_grantable)
		LEFT JOIN pg_roles r ON r.oid = a.grantee
		WHERE p.proacl IS NOT NULL AND %s
		ORDER BY n.nspname, p.proname, r.rolname, a.privilege_type`, e.schemaFilter("n.nspname"))
	rows, err := query(ctx, sess, sql)
	if err != nil {
		return err
	}
	for _, r := range rows {
		schema, name, kindCode, argSig := str(r[0]), str(r[1]), str(r[2]), str(r[3])
		p := privilegeFromRow(r, 4, 5, 6)
		switch kindCode {
		case "a":
			if agg, ok := cat.Aggregates[catalog.FunctionID("aggregate", schema, name, argSig)]; ok {
				agg.Privileges = append(agg.Privileges, p)
			}
		case "p":
			if fn, ok := cat.Functions[catalog.FunctionID("procedure", schema, name, argSig)]; ok {
				fn.Privileges = append(fn.Privileges, p)
			}
		default:
			if fn, ok := cat.Functions[catalog.FunctionID("function", schema, name, argSig)]; ok {
				fn.Privileges = append(fn.Privileges, p)
			}
		}
	}
	return nil
}

func (e *Extractor) buildTypePrivileges(ctx context.Context, sess session.Session, cat *catalog.Catalog) error {
	sql := `
		SELECT n.nspname, t.typname, COALESCE(r.rolname, 'PUBLIC'), a.privilege_type, a.is_grantable
		FROM pg_type t
		JOIN pg_namespace n ON n.oid = t.typnamespace,
		     LATERAL aclexplode(t.typacl) AS a(grantor, grantee, privilege_type, is_grantable)
		LEFT JOIN pg_roles r ON r.oid = a.grantee
		WHERE t.typacl IS NOT NULL
		ORDER BY n.nspname, t.typname, r.rolname, a.privilege_type`
	rows, err := query(ctx, sess, sql)
	if err != nil {
		return err
	}
	for _, r := range rows {
		id := catalog.TypeID(str(r[0]), str(r[1]))
		if ty, ok := cat.Types[id]; ok {
			ty.Privileges = append(ty.Privileges, privilegeFromRow(r, 2, 3, 4))
		}
	}
	return nil
}

func (e *Extractor) buildFDWPrivileges(ctx context.Context, sess session.Session, cat *catalog.Catalog) error {
	fdwSQL := `
		SELECT f.fdwname, COALESCE(r.rolname, 'PUBLIC'), a.privilege_type, a.is_grantable
		FROM pg_foreign_data_wrapper f,
		     LATERAL aclexplode(f.fdwacl) AS a(grantor, grantee, privilege_type, is_grantable)
		LEFT JOIN pg_roles r ON r.oid = a.grantee
		WHERE f.fdwacl IS NOT NULL
		ORDER BY f.fdwname, r.rolname, a.privilege_type`
	rows, err := query(ctx, sess, fdwSQL)
	if err != nil {
		return err
	}
	for _, r := range rows {
		if f, ok := cat.FDWs[catalog.FDWID(str(r[0]))]; ok {
			f.Privileges = append(f.Privileges, privilegeFromRow(r, 1, 2, 3))
		}
	}

	srvSQL := `
		SELECT s.srvname, COALESCE(r.rolname, 'PUBLIC'), a.privilege_type, a.is_grantable
		FROM pg_foreign_server s,
		     LATERAL aclexplode(s.srvacl) AS a(grantor, grantee, privilege_type, is_grantable)
		LEFT JOIN pg_roles r ON r.oid = a.grantee
		WHERE s.srvacl IS NOT NULL
		ORDER BY s.srvname, r.rolname, a.privilege_type`
	rows, err = query(ctx, sess, srvSQL)
	if err != nil {
		return err
	}
	for _, r := range rows {
		if s, ok := cat.Servers[catalog.ServerID(str(r[0]))]; ok {
			s.Privileges = append(s.Privileges, privilegeFromRow(r, 1, 2, 3))
		}
	}
	return nil
}

// buildDefaultPrivileges populates Role.DefaultPrivileges from pg_default_acl
// (the ALTER DEFAULT PRIVILEGES facet, spec §3.3), one DefaultPrivilege per
// exploded (grantor, schema, object type, grantee, privilege kind) row. The
// grant option is selected but not recorded.
func (e *Extractor) buildDefaultPrivileges(ctx context.Context, sess session.Session, cat *catalog.Catalog) error {
	sql := `
		SELECT pg_get_userbyid(d.defaclrole), COALESCE(n.nspname, ''), d.defaclobjtype,
		       COALESCE(r.rolname, 'PUBLIC'), a.privilege_type, a.is_grantable
		FROM pg_default_acl d
		LEFT JOIN pg_namespace n ON n.oid = d.defaclnamespace,
		     LATERAL aclexplode(d.defaclacl) AS a(grantor, grantee, privilege_type, is_grantable)
		LEFT JOIN pg_roles r ON r.oid = a.grantee
		ORDER BY pg_get_userbyid(d.defaclrole), n.nspname, d.defaclobjtype, r.rolname, a.privilege_type`
	rows, err := query(ctx, sess, sql)
	if err != nil {
		return err
	}
	for _, r := range rows {
		grantor, schema, objType := str(r[0]), str(r[1]), defaultPrivilegeObjectType(str(r[2]))
		role, ok := cat.Roles[grantor]
		if !ok {
			continue
		}
		role.DefaultPrivileges = append(role.DefaultPrivileges, catalog.DefaultPrivilege{
			Grantor:    grantor,
			Grantee:    str(r[3]),
			ObjectType: objType,
			Kind:       str(r[4]),
			Schema:     schema,
		})
	}
	return nil
}

// defaultPrivilegeObjectType maps a pg_default_acl.defaclobjtype code to the
// keyword ALTER DEFAULT PRIVILEGES ... FOR <type> expects.
func defaultPrivilegeObjectType(code string) string {
	switch code {
	case "r":
		return "TABLES"
	case "S":
		return "SEQUENCES"
	case "f":
		return "FUNCTIONS"
	case "T":
		return "TYPES"
	case "n":
		return "SCHEMAS"
	default:
		return ""
	}
}
