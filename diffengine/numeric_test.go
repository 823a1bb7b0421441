package diffengine

import (
	"testing"

	"github.com/supabase/pg-toolbelt-sub004/catalog"
)

func TestDefaultsEqualComparesNumericLiteralsByValue(t *testing.T) {
	cases := []struct {
		a, c string
		want bool
	}{
		{"100.0", "100.00", true},
		{"100.1", "100.10", true},
		{"100.1", "100.2", false},
		{"now()", "now()", true},
		{"now()", "current_timestamp", false},
		{"'x'::text", "'x'::text", true},
	}
	for _, tc := range cases {
		if got := defaultsEqual(tc.a, tc.c); got != tc.want {
			t.Errorf("defaultsEqual(%q, %q) = %v, want %v", tc.a, tc.c, got, tc.want)
		}
	}
}

func TestColumnDefaultPayloadDistinguishesDroppedFromSet(t *testing.T) {
	dropped := columnDefaultPayload(&catalog.Column{Name: "status", HasDefault: false})
	if !dropped.Default.IsNull() {
		t.Fatal("expected a dropped default to serialize as an explicit null, not an absent field")
	}

	set := columnDefaultPayload(&catalog.Column{Name: "status", HasDefault: true, Default: "'active'"})
	v, err := set.Default.Get()
	if err != nil {
		t.Fatalf("expected set default to have a value: %v", err)
	}
	if v != "'active'" {
		t.Errorf("expected default value %q, got %q", "'active'", v)
	}
}
