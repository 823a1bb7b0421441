package diffengine

import (
	"testing"

	"github.com/supabase/pg-toolbelt-sub004/catalog"
)

func optMap(pairs ...string) catalog.OptionMap {
	m := catalog.NewOptionMap()
	for i := 0; i+1 < len(pairs); i += 2 {
		m.Set(pairs[i], pairs[i+1])
	}
	return m
}

func TestDiffOptionsAddSetDrop(t *testing.T) {
	old := optMap("host", "a", "port", "5432", "dbname", "app")
	new := optMap("host", "b", "dbname", "app", "sslmode", "require")

	changes := diffOptions(old, new)

	byKey := make(map[string]catalog.OptionChange, len(changes))
	for _, c := range changes {
		byKey[c.Key] = c
	}

	if c := byKey["host"]; c.Action != catalog.OptionSet || c.Value != "b" {
		t.Errorf("host change = %+v, want SET b", c)
	}
	if c := byKey["port"]; c.Action != catalog.OptionDrop {
		t.Errorf("port change = %+v, want DROP", c)
	}
	if _, ok := byKey["dbname"]; ok {
		t.Errorf("dbname unchanged but present in diff: %+v", byKey["dbname"])
	}
	if c := byKey["sslmode"]; c.Action != catalog.OptionAdd || c.Value != "require" {
		t.Errorf("sslmode change = %+v, want ADD require", c)
	}
}

func TestDiffOptionsNilOld(t *testing.T) {
	changes := diffOptions(nil, optMap("host", "a"))
	if len(changes) != 1 || changes[0].Action != catalog.OptionAdd {
		t.Fatalf("diffOptions(nil, ...) = %+v, want single ADD", changes)
	}
}

func TestDiffOptionsNilNew(t *testing.T) {
	changes := diffOptions(optMap("host", "a"), nil)
	if len(changes) != 1 || changes[0].Action != catalog.OptionDrop {
		t.Fatalf("diffOptions(..., nil) = %+v, want single DROP", changes)
	}
}

func TestDiffOptionsNoChange(t *testing.T) {
	old := optMap("host", "a", "port", "5432")
	new := optMap("host", "a", "port", "5432")
	if changes := diffOptions(old, new); len(changes) != 0 {
		t.Errorf("diffOptions(identical) = %+v, want empty", changes)
	}
}
