package catalog

// DepType mirrors a pg_depend deptype code.
type DepType byte

const (
	// DepNormal: dependent may exist without referenced; dropping referenced
	// fails unless CASCADE.
	DepNormal DepType = 'n'
	// DepAuto: dependent is auto-dropped when referenced is dropped.
	DepAuto DepType = 'a'
	// DepInternal: dependent is part of referenced's implementation.
	DepInternal DepType = 'i'
	// DepExtension: dependent belongs to an extension, never dropped alone.
	DepExtension DepType = 'e'
)

// Edge is one dependency edge: Dependent requires Referenced to exist.
type Edge struct {
	Dependent  StableID
	Referenced StableID
	Type       DepType
}

// DependencyGraph is the derived edge set accompanying a Catalog, per
// spec §3.4. It is built by the Extractor from pg_depend, with every row
// resolved through an oid index covering not just first-class objects
// (tables, types, functions, constraints, ...) but also the auxiliary
// catalogs pg_depend itself points through, such as pg_attrdef for
// column-default expressions, so a default's function/type references
// surface as edges on the owning column's table.
type DependencyGraph struct {
	edges []Edge
	// byDependent indexes edges by their Dependent id for fast lookup.
	byDependent map[StableID][]Edge
	// byReferenced indexes edges by their Referenced id.
	byReferenced map[StableID][]Edge
}

// NewDependencyGraph returns an empty graph.
func NewDependencyGraph() *DependencyGraph {
	return &DependencyGraph{
		byDependent:  make(map[StableID][]Edge),
		byReferenced: make(map[StableID][]Edge),
	}
}

// Add records one dependency edge.
func (g *DependencyGraph) Add(dependent, referenced StableID, t DepType) {
	e := Edge{Dependent: dependent, Referenced: referenced, Type: t}
	g.edges = append(g.edges, e)
	g.byDependent[dependent] = append(g.byDependent[dependent], e)
	g.byReferenced[referenced] = append(g.byReferenced[referenced], e)
}

// DependenciesOf returns the edges where id is the Dependent (i.e. the
// objects id requires to exist).
func (g *DependencyGraph) DependenciesOf(id StableID) []Edge {
	return g.byDependent[id]
}

// DependentsOf returns the edges where id is the Referenced (i.e. the
// objects that require id to exist).
func (g *DependencyGraph) DependentsOf(id StableID) []Edge {
	return g.byReferenced[id]
}

// All returns every edge in the graph.
func (g *DependencyGraph) All() []Edge {
	return g.edges
}
