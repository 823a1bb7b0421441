package diffengine

import "github.com/supabase/pg-toolbelt-sub004/catalog"

// diffOptions produces the ordered ADD/SET/DROP sequence that turns old into
// new, iterating old's keys first (for SET/DROP) then new's keys (for ADD).
// Both maps are ordered, so the result follows their insertion order: the
// same maps built in the same order always give the same sequence
// (spec §3.2 "ordered option-list diffing").
func diffOptions(oldOpts, newOpts catalog.OptionMap) []catalog.OptionChange {
	var changes []catalog.OptionChange
	if oldOpts != nil {
		for pair := oldOpts.Oldest(); pair != nil; pair = pair.Next() {
			if newOpts == nil {
				changes = append(changes, catalog.OptionChange{Action: catalog.OptionDrop, Key: pair.Key})
				continue
			}
			if newVal, ok := newOpts.Get(pair.Key); ok {
				if newVal != pair.Value {
					changes = append(changes, catalog.OptionChange{Action: catalog.OptionSet, Key: pair.Key, Value: newVal})
				}
			} else {
				changes = append(changes, catalog.OptionChange{Action: catalog.OptionDrop, Key: pair.Key})
			}
		}
	}
	if newOpts != nil {
		for pair := newOpts.Oldest(); pair != nil; pair = pair.Next() {
			if oldOpts == nil {
				changes = append(changes, catalog.OptionChange{Action: catalog.OptionAdd, Key: pair.Key, Value: pair.Value})
				continue
			}
			if _, ok := oldOpts.Get(pair.Key); !ok {
				changes = append(changes, catalog.OptionChange{Action: catalog.OptionAdd, Key: pair.Key, Value: pair.Value})
			}
		}
	}
	return changes
}
