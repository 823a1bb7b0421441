package catalog

import "strings"

// StableID is the canonical "kind:qualifier" identity of a catalog entity.
// It is stable across extractions of the same schema and unique within a
// single Catalog. Function/procedure/aggregate qualifiers embed the
// canonical argument-type list so overloads get distinct IDs.
type StableID string

// Kind returns the portion of the stable ID before the first colon.
func (id StableID) Kind() string {
	k, _, _ := strings.Cut(string(id), ":")
	return k
}

// Qualifier returns the portion of the stable ID after the first colon.
func (id StableID) Qualifier() string {
	_, q, _ := strings.Cut(string(id), ":")
	return q
}

// QuoteIdent double-quotes a Postgres identifier if it needs quoting
// (contains anything other than lowercase letters, digits and underscore,
// or collides with a reserved word).
func QuoteIdent(name string) string {
	if name == "" {
		return `""`
	}
	needsQuote := false
	for i, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r == '_':
		case r >= '0' && r <= '9' && i > 0:
		default:
			needsQuote = true
		}
	}
	if isReservedWord(name) {
		needsQuote = true
	}
	if !needsQuote {
		return name
	}
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

// QuoteQualifiedName renders "schema"."name", omitting the schema quote
// dance when schema is empty (cluster-scoped objects).
func QuoteQualifiedName(schema, name string) string {
	if schema == "" {
		return QuoteIdent(name)
	}
	return QuoteIdent(schema) + "." + QuoteIdent(name)
}

var reservedWords = map[string]bool{
	"select": true, "table": true, "order": true, "group": true, "user": true,
	"column": true, "default": true, "check": true, "primary": true,
	"references": true, "unique": true, "grant": true, "all": true,
	"analyze": true, "between": true, "case": true, "collation": true,
}

func isReservedWord(name string) bool {
	return reservedWords[strings.ToLower(name)]
}

// SchemaID builds the stable ID of a schema.
func SchemaID(schema string) StableID {
	return StableID("schema:" + schema)
}

// ExtensionID builds the stable ID of an extension (cluster-scoped name).
func ExtensionID(name string) StableID {
	return StableID("extension:" + name)
}

// RoleID builds the stable ID of a role (cluster-scoped).
func RoleID(name string) StableID {
	return StableID("role:" + name)
}

// TableID builds the stable ID of a table/view/sequence-bearing relation.
func TableID(schema, name string) StableID {
	return StableID("table:" + qualify(schema, name))
}

// ViewID builds the stable ID of a view.
func ViewID(schema, name string) StableID {
	return StableID("view:" + qualify(schema, name))
}

// MatviewID builds the stable ID of a materialized view.
func MatviewID(schema, name string) StableID {
	return StableID("matview:" + qualify(schema, name))
}

// SequenceID builds the stable ID of a sequence.
func SequenceID(schema, name string) StableID {
	return StableID("sequence:" + qualify(schema, name))
}

// ConstraintID builds the stable ID of a table constraint.
func ConstraintID(schema, table, name string) StableID {
	return StableID("constraint:" + qualify(schema, table) + "." + QuoteIdent(name))
}

// IndexID builds the stable ID of an index.
func IndexID(schema, name string) StableID {
	return StableID("index:" + qualify(schema, name))
}

// TriggerID builds the stable ID of a table-scoped trigger.
func TriggerID(schema, table, name string) StableID {
	return StableID("trigger:" + qualify(schema, table) + "." + QuoteIdent(name))
}

// EventTriggerID builds the stable ID of a database-scoped event trigger.
func EventTriggerID(name string) StableID {
	return StableID("event_trigger:" + QuoteIdent(name))
}

// RuleID builds the stable ID of a rewrite rule.
func RuleID(schema, table, name string) StableID {
	return StableID("rule:" + qualify(schema, table) + "." + QuoteIdent(name))
}

// PolicyID builds the stable ID of an RLS policy.
func PolicyID(schema, table, name string) StableID {
	return StableID("policy:" + qualify(schema, table) + "." + QuoteIdent(name))
}

// FunctionID builds the stable ID of a function/procedure/aggregate,
// embedding the canonical argument-type list so overloads are distinct.
// canonicalArgs must already be the comma-joined, type-resolved argument
// list as reported by pg_get_function_arguments-equivalent extraction.
func FunctionID(kind, schema, name, canonicalArgs string) StableID {
	return StableID(kind + ":" + qualify(schema, name) + "(" + canonicalArgs + ")")
}

// TypeID builds the stable ID of a user-defined type (enum/composite/domain/range).
func TypeID(schema, name string) StableID {
	return StableID("type:" + qualify(schema, name))
}

// CollationID builds the stable ID of a collation.
func CollationID(schema, name string) StableID {
	return StableID("collation:" + qualify(schema, name))
}

// FDWID builds the stable ID of a foreign data wrapper.
func FDWID(name string) StableID {
	return StableID("fdw:" + QuoteIdent(name))
}

// ServerID builds the stable ID of a foreign server.
func ServerID(name string) StableID {
	return StableID("server:" + QuoteIdent(name))
}

// UserMappingID builds the stable ID of a user mapping (server + role).
func UserMappingID(server, user string) StableID {
	return StableID("user_mapping:" + QuoteIdent(server) + "." + QuoteIdent(user))
}

// PublicationID builds the stable ID of a logical replication publication.
func PublicationID(name string) StableID {
	return StableID("publication:" + QuoteIdent(name))
}

// SubscriptionID builds the stable ID of a logical replication subscription.
func SubscriptionID(name string) StableID {
	return StableID("subscription:" + QuoteIdent(name))
}

func qualify(schema, name string) string {
	return QuoteIdent(schema) + "." + QuoteIdent(name)
}
