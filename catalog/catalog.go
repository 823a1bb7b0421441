// Package catalog is the typed, normalized in-memory representation of
// every PostgreSQL object pgdelta understands (component A). Cross-
// references between entities are by StableID, never by pointer, so the
// Catalog can represent cyclic relationships (a view referencing a table
// that references a sequence that is owned by a column on that same view's
// base table) without cyclic Go ownership.
package catalog

import "sort"

// Metadata carries provenance about one extraction pass.
type Metadata struct {
	DatabaseVersion string
	ExtractedBy     string // "pgdelta"
}

// Catalog is a single extraction's complete object graph, plus the
// dependency edges the Planner needs (spec §3.4).
type Catalog struct {
	Metadata             Metadata
	Schemas              map[string]*Schema
	Extensions           map[string]*Extension
	Roles                map[string]*Role
	Tables               map[StableID]*Table
	Views                map[StableID]*View
	Sequences            map[StableID]*Sequence
	Functions            map[StableID]*Function
	Aggregates           map[StableID]*Aggregate
	Types                map[StableID]*Type
	Collations           map[StableID]*Collation
	EventTriggers        map[StableID]*EventTrigger
	FDWs                 map[StableID]*FDW
	Servers              map[StableID]*Server
	UserMappings         map[StableID]*UserMapping
	Publications         map[StableID]*Publication
	Subscriptions        map[StableID]*Subscription
	PartitionAttachments []*PartitionAttachment
	IndexAttachments     []*IndexAttachment

	Deps *DependencyGraph
}

// New returns an empty Catalog with every collection initialized.
func New() *Catalog {
	return &Catalog{
		Schemas:       make(map[string]*Schema),
		Extensions:    make(map[string]*Extension),
		Roles:         make(map[string]*Role),
		Tables:        make(map[StableID]*Table),
		Views:         make(map[StableID]*View),
		Sequences:     make(map[StableID]*Sequence),
		Functions:     make(map[StableID]*Function),
		Aggregates:    make(map[StableID]*Aggregate),
		Types:         make(map[StableID]*Type),
		Collations:    make(map[StableID]*Collation),
		EventTriggers: make(map[StableID]*EventTrigger),
		FDWs:          make(map[StableID]*FDW),
		Servers:       make(map[StableID]*Server),
		UserMappings:  make(map[StableID]*UserMapping),
		Publications:  make(map[StableID]*Publication),
		Subscriptions: make(map[StableID]*Subscription),
		Deps:          NewDependencyGraph(),
	}
}

// GetOrCreateSchema returns the named schema, creating it if absent.
func (c *Catalog) GetOrCreateSchema(name string) *Schema {
	if s, ok := c.Schemas[name]; ok {
		return s
	}
	s := &Schema{ID: SchemaID(name), Name: name}
	c.Schemas[name] = s
	return s
}

// SortedSchemaNames returns schema names in ascending order.
func (c *Catalog) SortedSchemaNames() []string {
	names := make([]string, 0, len(c.Schemas))
	for n := range c.Schemas {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// SortedTableIDs returns table stable IDs in ascending order, the
// deterministic order the Differ and Planner both rely on for tie-breaking
// (spec §3.2 invariant: deterministic child ordering; §4.2: stable sort by
// stable ID then scope then sub-key).
func (c *Catalog) SortedTableIDs() []StableID {
	return sortedIDs(c.Tables)
}

// SortedConstraintNames returns a table's constraint names in ascending
// order (name ascending, per the invariant in spec §3.2; OID tiebreak is
// not needed here because names are unique per table).
func (t *Table) SortedConstraintNames() []string {
	names := make([]string, 0, len(t.Constraints))
	for n := range t.Constraints {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// SortedIndexNames returns a table's index names in ascending order.
func (t *Table) SortedIndexNames() []string {
	names := make([]string, 0, len(t.Indexes))
	for n := range t.Indexes {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// SortedTriggerNames returns a table's trigger names in ascending order.
func (t *Table) SortedTriggerNames() []string {
	names := make([]string, 0, len(t.Triggers))
	for n := range t.Triggers {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// SortedPolicyNames returns a table's RLS policy names in ascending order.
func (t *Table) SortedPolicyNames() []string {
	names := make([]string, 0, len(t.Policies))
	for n := range t.Policies {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

func sortedIDs[V any](m map[StableID]V) []StableID {
	ids := make([]StableID, 0, len(m))
	for id := range m {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// SortedViewIDs, SortedSequenceIDs, ... follow the same deterministic
// ascending-by-stable-ID convention.
func (c *Catalog) SortedViewIDs() []StableID      { return sortedIDs(c.Views) }
func (c *Catalog) SortedSequenceIDs() []StableID   { return sortedIDs(c.Sequences) }
func (c *Catalog) SortedFunctionIDs() []StableID   { return sortedIDs(c.Functions) }
func (c *Catalog) SortedAggregateIDs() []StableID  { return sortedIDs(c.Aggregates) }
func (c *Catalog) SortedTypeIDs() []StableID       { return sortedIDs(c.Types) }
func (c *Catalog) SortedCollationIDs() []StableID  { return sortedIDs(c.Collations) }
func (c *Catalog) SortedFDWIDs() []StableID        { return sortedIDs(c.FDWs) }
func (c *Catalog) SortedServerIDs() []StableID     { return sortedIDs(c.Servers) }
func (c *Catalog) SortedUserMappingIDs() []StableID { return sortedIDs(c.UserMappings) }
func (c *Catalog) SortedPublicationIDs() []StableID { return sortedIDs(c.Publications) }
func (c *Catalog) SortedSubscriptionIDs() []StableID { return sortedIDs(c.Subscriptions) }
func (c *Catalog) SortedEventTriggerIDs() []StableID { return sortedIDs(c.EventTriggers) }

// SortedRoleNames returns role names in ascending order.
func (c *Catalog) SortedRoleNames() []string {
	names := make([]string, 0, len(c.Roles))
	for n := range c.Roles {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// SortedExtensionNames returns extension names in ascending order.
func (c *Catalog) SortedExtensionNames() []string {
	names := make([]string, 0, len(c.Extensions))
	for n := range c.Extensions {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}
