package catalog

import (
	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// OptionAction is the verb applied to a single FDW/server/subscription/user
// mapping option when rendered as an ALTER ... OPTIONS (...) clause.
type OptionAction string

const (
	OptionAdd OptionAction = "ADD"
	OptionSet OptionAction = "SET"
	OptionDrop OptionAction = "DROP"
)

// OptionChange is one (action, key, value) triple from an option ALTER list.
// Order matters: Postgres applies OPTIONS clauses left to right, and the
// Differ emits the sequence in the insertion order of the option maps.
type OptionChange struct {
	Action OptionAction
	Key    string
	Value  string
}

// OptionMap is the current-state key->value view of an option bag (FDW,
// SERVER, USER MAPPING, SUBSCRIPTION). It preserves insertion order because
// option rendering order is part of the round-trip fidelity contract
// (extracting and re-emitting must not reorder options PostgreSQL itself
// would not reorder).
type OptionMap = *orderedmap.OrderedMap[string, string]

// NewOptionMap returns an empty, order-preserving option map.
func NewOptionMap() OptionMap {
	return orderedmap.New[string, string]()
}

// CloneOptionMap returns a shallow copy preserving key order.
func CloneOptionMap(src OptionMap) OptionMap {
	dst := NewOptionMap()
	if src == nil {
		return dst
	}
	for pair := src.Oldest(); pair != nil; pair = pair.Next() {
		dst.Set(pair.Key, pair.Value)
	}
	return dst
}
