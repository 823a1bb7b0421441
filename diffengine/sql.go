package diffengine

import (
	"fmt"
	"strings"

	"github.com/supabase/pg-toolbelt-sub004/catalog"
)

func q(name string) string { return catalog.QuoteIdent(name) }
func qq(schema, name string) string {
	if schema == "" {
		return q(name)
	}
	return catalog.QuoteQualifiedName(schema, name)
}

func quoteLiteral(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}

// -- schema --------------------------------------------------------------

func createSchemaSQL(s *catalog.Schema) string {
	return fmt.Sprintf("CREATE SCHEMA %s AUTHORIZATION %s;", q(s.Name), q(s.Owner))
}

func dropSchemaSQL(s *catalog.Schema) string {
	return fmt.Sprintf("DROP SCHEMA %s;", q(s.Name))
}

func alterSchemaOwnerSQL(s *catalog.Schema) string {
	return fmt.Sprintf("ALTER SCHEMA %s OWNER TO %s;", q(s.Name), q(s.Owner))
}

// -- extension -------------------------------------------------------------

func createExtensionSQL(e *catalog.Extension) string {
	return fmt.Sprintf("CREATE EXTENSION %s SCHEMA %s VERSION %s;", q(e.Name), q(e.InstalledSchema), quoteLiteral(e.Version))
}

func dropExtensionSQL(e *catalog.Extension) string {
	return fmt.Sprintf("DROP EXTENSION %s;", q(e.Name))
}

func alterExtensionVersionSQL(e *catalog.Extension) string {
	return fmt.Sprintf("ALTER EXTENSION %s UPDATE TO %s;", q(e.Name), quoteLiteral(e.Version))
}

// -- role ------------------------------------------------------------------

func createRoleSQL(r *catalog.Role) string {
	return fmt.Sprintf("CREATE ROLE %s WITH %s;", q(r.Name), roleAttrClause(r))
}

func dropRoleSQL(r *catalog.Role) string {
	return fmt.Sprintf("DROP ROLE %s;", q(r.Name))
}

func alterRoleAttrsSQL(r *catalog.Role) string {
	return fmt.Sprintf("ALTER ROLE %s WITH %s;", q(r.Name), roleAttrClause(r))
}

func roleAttrClause(r *catalog.Role) string {
	parts := []string{boolAttr(r.Superuser, "SUPERUSER", "NOSUPERUSER")}
	parts = append(parts, boolAttr(r.CreateDB, "CREATEDB", "NOCREATEDB"))
	parts = append(parts, boolAttr(r.CreateRole, "CREATEROLE", "NOCREATEROLE"))
	parts = append(parts, boolAttr(r.CanLogin, "LOGIN", "NOLOGIN"))
	parts = append(parts, boolAttr(r.Replication, "REPLICATION", "NOREPLICATION"))
	parts = append(parts, fmt.Sprintf("CONNECTION LIMIT %d", r.ConnectionLimit))
	return strings.Join(parts, " ")
}

func boolAttr(v bool, yes, no string) string {
	if v {
		return yes
	}
	return no
}

// -- collation ---------------------------------------------------------

func createCollationSQL(c *catalog.Collation) string {
	return fmt.Sprintf("CREATE COLLATION %s (PROVIDER = %s, LOCALE = %s, DETERMINISTIC = %t);",
		qq(c.Schema, c.Name), c.Provider, quoteLiteral(c.Locale), c.Deterministic)
}

func dropCollationSQL(c *catalog.Collation) string {
	return fmt.Sprintf("DROP COLLATION %s;", qq(c.Schema, c.Name))
}

// -- type --------------------------------------------------------------

func createTypeSQL(t *catalog.Type) string {
	switch t.Kind {
	case catalog.TypeEnum:
		vals := make([]string, len(t.EnumValues))
		for i, v := range t.EnumValues {
			vals[i] = quoteLiteral(v)
		}
		return fmt.Sprintf("CREATE TYPE %s AS ENUM (%s);", qq(t.Schema, t.Name), strings.Join(vals, ", "))
	case catalog.TypeComposite:
		attrs := make([]string, len(t.Attrs))
		for i, a := range t.Attrs {
			attrs[i] = fmt.Sprintf("%s %s", q(a.Name), a.DataType)
		}
		return fmt.Sprintf("CREATE TYPE %s AS (%s);", qq(t.Schema, t.Name), strings.Join(attrs, ", "))
	case catalog.TypeDomain:
		sql := fmt.Sprintf("CREATE DOMAIN %s AS %s", qq(t.Schema, t.Name), t.BaseType)
		if t.Collation != "" {
			sql += fmt.Sprintf(" COLLATE %s", q(t.Collation))
		}
		if t.Default != "" {
			sql += " DEFAULT " + t.Default
		}
		if t.NotNull {
			sql += " NOT NULL"
		}
		for _, c := range t.Checks {
			sql += fmt.Sprintf(" CONSTRAINT %s CHECK (%s)", q(c.Name), c.Definition)
		}
		return sql + ";"
	case catalog.TypeRange:
		sql := fmt.Sprintf("CREATE TYPE %s AS RANGE (SUBTYPE = %s", qq(t.Schema, t.Name), t.Subtype)
		if t.SubtypeOpclass != "" {
			sql += ", SUBTYPE_OPCLASS = " + t.SubtypeOpclass
		}
		if t.Canonical != "" {
			sql += ", CANONICAL = " + t.Canonical
		}
		if t.Diff != "" {
			sql += ", SUBTYPE_DIFF = " + t.Diff
		}
		return sql + ");"
	}
	return ""
}

func dropTypeSQL(t *catalog.Type) string {
	verb := "TYPE"
	if t.Kind == catalog.TypeDomain {
		verb = "DOMAIN"
	}
	return fmt.Sprintf("DROP %s %s;", verb, qq(t.Schema, t.Name))
}

func addEnumValueSQL(t *catalog.Type, value string, after string) string {
	if after == "" {
		return fmt.Sprintf("ALTER TYPE %s ADD VALUE %s;", qq(t.Schema, t.Name), quoteLiteral(value))
	}
	return fmt.Sprintf("ALTER TYPE %s ADD VALUE %s AFTER %s;", qq(t.Schema, t.Name), quoteLiteral(value), quoteLiteral(after))
}

// -- sequence ------------------------------------------------------------

func createSequenceSQL(s *catalog.Sequence) string {
	sql := fmt.Sprintf("CREATE SEQUENCE %s AS %s INCREMENT %d MINVALUE %d MAXVALUE %d START %d CACHE %d",
		qq(s.Schema, s.Name), s.DataType, s.Increment, s.Min, s.Max, s.Start, s.CacheSize)
	if s.Cycle {
		sql += " CYCLE"
	}
	return sql + ";"
}

func dropSequenceSQL(s *catalog.Sequence) string {
	return fmt.Sprintf("DROP SEQUENCE %s;", qq(s.Schema, s.Name))
}

func alterSequenceSQL(s *catalog.Sequence) string {
	sql := fmt.Sprintf("ALTER SEQUENCE %s INCREMENT %d MINVALUE %d MAXVALUE %d CACHE %d",
		qq(s.Schema, s.Name), s.Increment, s.Min, s.Max, s.CacheSize)
	if s.Cycle {
		sql += " CYCLE"
	} else {
		sql += " NO CYCLE"
	}
	return sql + ";"
}

// -- table -----------------------------------------------------------------

func createTableSQL(t *catalog.Table) string {
	var b strings.Builder
	verb := "TABLE"
	if t.Kind == catalog.TableForeign {
		verb = "FOREIGN TABLE"
	}
	fmt.Fprintf(&b, "CREATE %s %s (\n", verb, qq(t.Schema, t.Name))
	cols := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		cols[i] = "    " + columnDefSQL(c)
	}
	b.WriteString(strings.Join(cols, ",\n"))
	b.WriteString("\n)")
	if t.Kind == catalog.TableForeign {
		fmt.Fprintf(&b, " SERVER %s", q(t.ForeignServer))
	}
	if t.Partition != nil && t.Partition.Strategy != "" {
		fmt.Fprintf(&b, " PARTITION BY %s (%s)", t.Partition.Strategy, t.Partition.Key)
	}
	b.WriteString(";")
	return b.String()
}

func columnDefSQL(c *catalog.Column) string {
	sql := fmt.Sprintf("%s %s", q(c.Name), c.DataType)
	if c.Collation != "" {
		sql += fmt.Sprintf(" COLLATE %s", q(c.Collation))
	}
	if c.NotNull {
		sql += " NOT NULL"
	}
	if c.HasDefault && c.Default != "" {
		sql += " DEFAULT " + c.Default
	}
	if c.Identity != nil {
		sql += fmt.Sprintf(" GENERATED %s AS IDENTITY", strings.ReplaceAll(c.Identity.Generation, "_", " "))
	}
	if c.Generated != "" {
		sql += fmt.Sprintf(" GENERATED ALWAYS AS (%s) STORED", c.Generated)
	}
	return sql
}

func dropTableSQL(t *catalog.Table) string {
	verb := "TABLE"
	if t.Kind == catalog.TableForeign {
		verb = "FOREIGN TABLE"
	}
	return fmt.Sprintf("DROP %s %s;", verb, qq(t.Schema, t.Name))
}

func attachPartitionSQL(parent catalog.StableID, parentSchema, parentTable string, att *catalog.PartitionAttachment) string {
	return fmt.Sprintf("ALTER TABLE %s ATTACH PARTITION %s %s;",
		qq(parentSchema, parentTable), qq(att.ChildSchema, att.ChildTable), att.Bound)
}

func detachPartitionSQL(parentSchema, parentTable, childSchema, childTable string) string {
	return fmt.Sprintf("ALTER TABLE %s DETACH PARTITION %s;", qq(parentSchema, parentTable), qq(childSchema, childTable))
}

func addColumnSQL(schema, table string, c *catalog.Column) string {
	return fmt.Sprintf("ALTER TABLE %s ADD COLUMN %s;", qq(schema, table), columnDefSQL(c))
}

func dropColumnSQL(schema, table, column string) string {
	return fmt.Sprintf("ALTER TABLE %s DROP COLUMN %s;", qq(schema, table), q(column))
}

func alterColumnTypeSQL(schema, table string, c *catalog.Column) string {
	sql := fmt.Sprintf("ALTER TABLE %s ALTER COLUMN %s TYPE %s", qq(schema, table), q(c.Name), c.DataType)
	if c.Collation != "" {
		sql += fmt.Sprintf(" COLLATE %s", q(c.Collation))
	}
	return sql + ";"
}

func alterColumnNullabilitySQL(schema, table, column string, notNull bool) string {
	verb := "DROP NOT NULL"
	if notNull {
		verb = "SET NOT NULL"
	}
	return fmt.Sprintf("ALTER TABLE %s ALTER COLUMN %s %s;", qq(schema, table), q(column), verb)
}

func alterColumnDefaultSQL(schema, table, column, def string) string {
	if def == "" {
		return fmt.Sprintf("ALTER TABLE %s ALTER COLUMN %s DROP DEFAULT;", qq(schema, table), q(column))
	}
	return fmt.Sprintf("ALTER TABLE %s ALTER COLUMN %s SET DEFAULT %s;", qq(schema, table), q(column), def)
}

// -- constraint --------------------------------------------------------

func addConstraintSQL(schema, table string, c *catalog.Constraint) string {
	return fmt.Sprintf("ALTER TABLE %s ADD CONSTRAINT %s %s;", qq(schema, table), q(c.Name), constraintDefSQL(c))
}

func constraintDefSQL(c *catalog.Constraint) string {
	switch c.Type {
	case catalog.ConstraintPrimaryKey:
		return fmt.Sprintf("PRIMARY KEY (%s)", strings.Join(quoteIdents(c.Columns), ", "))
	case catalog.ConstraintUnique:
		return fmt.Sprintf("UNIQUE (%s)", strings.Join(quoteIdents(c.Columns), ", "))
	case catalog.ConstraintForeignKey:
		sql := fmt.Sprintf("FOREIGN KEY (%s) REFERENCES %s (%s)",
			strings.Join(quoteIdents(c.Columns), ", "), qq(c.ReferencedSchema, c.ReferencedTable), strings.Join(quoteIdents(c.ReferencedColumns), ", "))
		if c.UpdateRule != "" {
			sql += " ON UPDATE " + c.UpdateRule
		}
		if c.DeleteRule != "" {
			sql += " ON DELETE " + c.DeleteRule
		}
		if c.Deferrable {
			sql += " DEFERRABLE"
			if c.InitiallyDeferred {
				sql += " INITIALLY DEFERRED"
			}
		}
		return sql
	case catalog.ConstraintCheck:
		return fmt.Sprintf("CHECK (%s)", c.CheckClause)
	case catalog.ConstraintExclusion:
		return fmt.Sprintf("EXCLUDE %s", c.ExclusionElements)
	}
	return ""
}

func quoteIdents(names []string) []string {
	out := make([]string, len(names))
	for i, n := range names {
		out[i] = q(n)
	}
	return out
}

func dropConstraintSQL(schema, table, name string) string {
	return fmt.Sprintf("ALTER TABLE %s DROP CONSTRAINT %s;", qq(schema, table), q(name))
}

// -- index -----------------------------------------------------------------

func createIndexSQL(idx *catalog.Index) string {
	unique := ""
	if idx.Unique {
		unique = "UNIQUE "
	}
	cols := make([]string, len(idx.Columns))
	for i, c := range idx.Columns {
		col := c.Name
		if col == "" {
			col = c.Expression
		} else {
			col = q(col)
		}
		if c.Desc {
			col += " DESC"
		}
		if c.NullsFirst {
			col += " NULLS FIRST"
		}
		cols[i] = col
	}
	sql := fmt.Sprintf("CREATE %sINDEX %s ON %s USING %s (%s)", unique, q(idx.Name), qq(idx.Schema, idx.Table), idx.Method, strings.Join(cols, ", "))
	if idx.Where != "" {
		sql += " WHERE " + idx.Where
	}
	return sql + ";"
}

func dropIndexSQL(idx *catalog.Index) string {
	return fmt.Sprintf("DROP INDEX %s;", qq(idx.Schema, idx.Name))
}

// -- trigger -----------------------------------------------------------

func createTriggerSQL(t *catalog.Trigger) string {
	timing := strings.ReplaceAll(string(t.Timing), "_", " ")
	level := "STATEMENT"
	if t.Row {
		level = "ROW"
	}
	sql := fmt.Sprintf("CREATE TRIGGER %s %s %s ON %s FOR EACH %s",
		q(t.Name), timing, strings.Join(t.Events, " OR "), qq(t.Schema, t.Table), level)
	if t.Condition != "" {
		sql += " WHEN (" + t.Condition + ")"
	}
	sql += fmt.Sprintf(" EXECUTE FUNCTION %s(%s)", t.Function.Qualifier(), strings.Join(t.Arguments, ", "))
	return sql + ";"
}

func dropTriggerSQL(t *catalog.Trigger) string {
	return fmt.Sprintf("DROP TRIGGER %s ON %s;", q(t.Name), qq(t.Schema, t.Table))
}

// -- policy --------------------------------------------------------------

func createPolicySQL(p *catalog.RLSPolicy) string {
	permissive := "PERMISSIVE"
	if !p.Permissive {
		permissive = "RESTRICTIVE"
	}
	sql := fmt.Sprintf("CREATE POLICY %s ON %s AS %s FOR %s", q(p.Name), qq(p.Schema, p.Table), permissive, p.Command)
	if len(p.Roles) > 0 {
		sql += " TO " + strings.Join(quoteIdents(p.Roles), ", ")
	}
	if p.Using != "" {
		sql += " USING (" + p.Using + ")"
	}
	if p.WithCheck != "" {
		sql += " WITH CHECK (" + p.WithCheck + ")"
	}
	return sql + ";"
}

func dropPolicySQL(p *catalog.RLSPolicy) string {
	return fmt.Sprintf("DROP POLICY %s ON %s;", q(p.Name), qq(p.Schema, p.Table))
}

func alterRLSSQL(schema, table string, enable, force bool) string {
	verb := "DISABLE"
	if enable {
		verb = "ENABLE"
	}
	sql := fmt.Sprintf("ALTER TABLE %s %s ROW LEVEL SECURITY;", qq(schema, table), verb)
	if force {
		sql += fmt.Sprintf(" ALTER TABLE %s FORCE ROW LEVEL SECURITY;", qq(schema, table))
	}
	return sql
}

// -- view --------------------------------------------------------------

func createViewSQL(v *catalog.View) string {
	verb := "VIEW"
	if v.Materialized {
		verb = "MATERIALIZED VIEW"
	}
	return fmt.Sprintf("CREATE %s %s AS %s", verb, qq(v.Schema, v.Name), v.Definition)
}

func replaceViewSQL(v *catalog.View) string {
	return fmt.Sprintf("CREATE OR REPLACE VIEW %s AS %s", qq(v.Schema, v.Name), v.Definition)
}

func dropViewSQL(v *catalog.View) string {
	verb := "VIEW"
	if v.Materialized {
		verb = "MATERIALIZED VIEW"
	}
	return fmt.Sprintf("DROP %s %s;", verb, qq(v.Schema, v.Name))
}

// -- function ------------------------------------------------------------

func createFunctionSQL(f *catalog.Function) string {
	verb := "FUNCTION"
	if f.Kind == catalog.RoutineProcedure {
		verb = "PROCEDURE"
	}
	sql := fmt.Sprintf("CREATE OR REPLACE %s %s(%s)", verb, qq(f.Schema, f.Name), f.Arguments)
	if f.Kind == catalog.RoutineFunction {
		sql += fmt.Sprintf(" RETURNS %s", f.ReturnType)
	}
	sql += fmt.Sprintf(" LANGUAGE %s", f.Language)
	if f.Kind == catalog.RoutineFunction {
		sql += " " + f.Volatility
		if f.Strict {
			sql += " STRICT"
		}
		if f.SecurityDefiner {
			sql += " SECURITY DEFINER"
		}
	}
	sql += fmt.Sprintf(" AS %s", functionBodyLiteral(f.Body, f.Language))
	return sql + ";"
}

// functionBodyLiteral renders the function body as a dollar-quoted string,
// the form pg_get_functiondef itself emits, avoiding escaping headaches
// with embedded single quotes in PL/pgSQL bodies.
func functionBodyLiteral(body, language string) string {
	return "$function$" + body + "$function$"
}

func dropFunctionSQL(f *catalog.Function) string {
	verb := "FUNCTION"
	if f.Kind == catalog.RoutineProcedure {
		verb = "PROCEDURE"
	}
	return fmt.Sprintf("DROP %s %s(%s);", verb, qq(f.Schema, f.Name), f.ArgSignature)
}

// functionObjectRef is the GRANT/COMMENT/ALTER DEFAULT PRIVILEGES object
// reference for a function or procedure, identified by its argument types
// rather than the full CREATE-time argument list.
func functionObjectRef(f *catalog.Function) string {
	verb := "FUNCTION"
	if f.Kind == catalog.RoutineProcedure {
		verb = "PROCEDURE"
	}
	return fmt.Sprintf("%s %s(%s)", verb, qq(f.Schema, f.Name), f.ArgSignature)
}

func aggregateObjectRef(a *catalog.Aggregate) string {
	return fmt.Sprintf("AGGREGATE %s(%s)", qq(a.Schema, a.Name), a.ArgSignature)
}

// -- fdw / server / user mapping -----------------------------------------

func createFDWSQL(f *catalog.FDW) string {
	sql := fmt.Sprintf("CREATE FOREIGN DATA WRAPPER %s", q(f.Name))
	if f.Handler != "" {
		sql += " HANDLER " + f.Handler
	}
	if f.Validator != "" {
		sql += " VALIDATOR " + f.Validator
	}
	sql += optionsClause(f.Options, "ADD")
	return sql + ";"
}

func dropFDWSQL(f *catalog.FDW) string {
	return fmt.Sprintf("DROP FOREIGN DATA WRAPPER %s;", q(f.Name))
}

func createServerSQL(s *catalog.Server) string {
	sql := fmt.Sprintf("CREATE SERVER %s", q(s.Name))
	if s.Type != "" {
		sql += fmt.Sprintf(" TYPE %s", quoteLiteral(s.Type))
	}
	if s.Version != "" {
		sql += fmt.Sprintf(" VERSION %s", quoteLiteral(s.Version))
	}
	sql += fmt.Sprintf(" FOREIGN DATA WRAPPER %s", q(s.FDW))
	sql += optionsClause(s.Options, "ADD")
	return sql + ";"
}

func dropServerSQL(s *catalog.Server) string {
	return fmt.Sprintf("DROP SERVER %s;", q(s.Name))
}

func createUserMappingSQL(u *catalog.UserMapping) string {
	sql := fmt.Sprintf("CREATE USER MAPPING FOR %s SERVER %s", q(u.User), q(u.Server))
	sql += optionsClause(u.Options, "ADD")
	return sql + ";"
}

func dropUserMappingSQL(u *catalog.UserMapping) string {
	return fmt.Sprintf("DROP USER MAPPING FOR %s SERVER %s;", q(u.User), q(u.Server))
}

// optionsClause renders a full OPTIONS (...) clause for CREATE statements
// (always the ADD form since nothing pre-exists yet).
func optionsClause(opts catalog.OptionMap, action string) string {
	if opts == nil || opts.Len() == 0 {
		return ""
	}
	var parts []string
	for pair := opts.Oldest(); pair != nil; pair = pair.Next() {
		parts = append(parts, fmt.Sprintf("%s %s", pair.Key, quoteLiteral(pair.Value)))
	}
	return fmt.Sprintf(" OPTIONS (%s)", strings.Join(parts, ", "))
}

func alterOptionsClause(changes []catalog.OptionChange) string {
	parts := make([]string, len(changes))
	for i, c := range changes {
		switch c.Action {
		case catalog.OptionDrop:
			parts[i] = fmt.Sprintf("DROP %s", c.Key)
		default:
			parts[i] = fmt.Sprintf("%s %s %s", string(c.Action), c.Key, quoteLiteral(c.Value))
		}
	}
	return fmt.Sprintf(" OPTIONS (%s)", strings.Join(parts, ", "))
}

// -- publication / subscription ------------------------------------------

func createPublicationSQL(p *catalog.Publication) string {
	sql := fmt.Sprintf("CREATE PUBLICATION %s", q(p.Name))
	if p.AllTables {
		sql += " FOR ALL TABLES"
	} else if len(p.Tables) > 0 {
		sql += " FOR TABLE " + strings.Join(p.Tables, ", ")
	}
	if len(p.PublishOps) > 0 {
		sql += fmt.Sprintf(" WITH (publish = %s)", quoteLiteral(strings.Join(p.PublishOps, ",")))
	}
	return sql + ";"
}

func dropPublicationSQL(p *catalog.Publication) string {
	return fmt.Sprintf("DROP PUBLICATION %s;", q(p.Name))
}

func createSubscriptionSQL(s *catalog.Subscription) string {
	conninfoParts := []string{}
	if s.ConnInfo != nil {
		for pair := s.ConnInfo.Oldest(); pair != nil; pair = pair.Next() {
			conninfoParts = append(conninfoParts, pair.Key+"="+pair.Value)
		}
	}
	return fmt.Sprintf("CREATE SUBSCRIPTION %s CONNECTION %s PUBLICATION %s;",
		q(s.Name), quoteLiteral(strings.Join(conninfoParts, " ")), strings.Join(s.Publications, ", "))
}

func dropSubscriptionSQL(s *catalog.Subscription) string {
	return fmt.Sprintf("DROP SUBSCRIPTION %s;", q(s.Name))
}

func alterSubscriptionEnabledSQL(s *catalog.Subscription) string {
	verb := "DISABLE"
	if s.Enabled {
		verb = "ENABLE"
	}
	return fmt.Sprintf("ALTER SUBSCRIPTION %s %s;", q(s.Name), verb)
}

// -- aggregate -------------------------------------------------------------

func createAggregateSQL(a *catalog.Aggregate) string {
	sql := fmt.Sprintf("CREATE AGGREGATE %s(%s) (SFUNC = %s, STYPE = %s",
		qq(a.Schema, a.Name), a.Arguments, a.TransitionFunction.Qualifier(), a.StateType)
	if a.FinalFunction != "" {
		sql += fmt.Sprintf(", FINALFUNC = %s", a.FinalFunction.Qualifier())
	}
	if a.InitialCondition != "" {
		sql += fmt.Sprintf(", INITCOND = %s", quoteLiteral(a.InitialCondition))
	}
	return sql + ");"
}

func dropAggregateSQL(a *catalog.Aggregate) string {
	return fmt.Sprintf("DROP AGGREGATE %s(%s);", qq(a.Schema, a.Name), a.ArgSignature)
}

// -- rule --------------------------------------------------------------

func createRuleSQL(r *catalog.Rule) string {
	verb := "ALSO"
	if r.Instead {
		verb = "INSTEAD"
	}
	sql := fmt.Sprintf("CREATE RULE %s AS ON %s TO %s", q(r.Name), r.Event, qq(r.Schema, r.Table))
	if r.Condition != "" {
		sql += " WHERE " + r.Condition
	}
	sql += fmt.Sprintf(" DO %s ", verb)
	if len(r.Actions) == 0 {
		sql += "NOTHING"
	} else {
		sql += strings.Join(r.Actions, "; ")
	}
	return sql + ";"
}

func dropRuleSQL(r *catalog.Rule) string {
	return fmt.Sprintf("DROP RULE %s ON %s;", q(r.Name), qq(r.Schema, r.Table))
}

// -- event trigger -----------------------------------------------------

func createEventTriggerSQL(t *catalog.EventTrigger) string {
	sql := fmt.Sprintf("CREATE EVENT TRIGGER %s ON %s", q(t.Name), t.Event)
	if len(t.Tags) > 0 {
		tags := make([]string, len(t.Tags))
		for i, tag := range t.Tags {
			tags[i] = quoteLiteral(tag)
		}
		sql += fmt.Sprintf(" WHEN TAG IN (%s)", strings.Join(tags, ", "))
	}
	sql += fmt.Sprintf(" EXECUTE FUNCTION %s()", t.Function.Qualifier())
	return sql + ";"
}

func dropEventTriggerSQL(t *catalog.EventTrigger) string {
	return fmt.Sprintf("DROP EVENT TRIGGER %s;", q(t.Name))
}

func alterEventTriggerEnabledSQL(t *catalog.EventTrigger) string {
	verb := "DISABLE"
	if t.Enabled {
		verb = "ENABLE"
	}
	return fmt.Sprintf("ALTER EVENT TRIGGER %s %s;", q(t.Name), verb)
}

// -- comments --------------------------------------------------------------

func commentSQL(onClause string, comment string) string {
	if comment == "" {
		return fmt.Sprintf("COMMENT ON %s IS NULL;", onClause)
	}
	return fmt.Sprintf("COMMENT ON %s IS %s;", onClause, quoteLiteral(comment))
}
