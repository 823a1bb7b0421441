package extract

import "testing"

func TestServerVersionAtLeast(t *testing.T) {
	sv := serverVersion{num: 170005, semver: "v17.5.0"}
	if !sv.atLeast(17) {
		t.Errorf("expected v17.5.0 to be atLeast(17)")
	}
	if sv.atLeast(18) {
		t.Errorf("expected v17.5.0 to not be atLeast(18)")
	}

	old := serverVersion{num: 150003, semver: "v15.3.0"}
	if old.atLeast(17) {
		t.Errorf("expected v15.3.0 to not be atLeast(17)")
	}

	var zero serverVersion
	if zero.atLeast(0) {
		t.Errorf("a zero-value serverVersion should never report atLeast")
	}
}

func TestCanonicalizeViewDefinitionLeavesPG17Untouched(t *testing.T) {
	def := "SELECT a,  b FROM t"
	got := canonicalizeViewDefinition(def, serverVersion{num: 170000, semver: "v17.0.0"})
	if got != def {
		t.Errorf("PG17+ definitions should pass through unchanged, got %q", got)
	}
}

func TestCanonicalizeViewDefinitionCollapsesDoubleSpacesOnOlderServers(t *testing.T) {
	def := "SELECT CASE WHEN a THEN  1 ELSE 0 END FROM t"
	got := canonicalizeViewDefinition(def, serverVersion{num: 150003, semver: "v15.3.0"})
	want := "SELECT CASE WHEN a THEN 1 ELSE 0 END FROM t"
	if got != want {
		t.Errorf("canonicalizeViewDefinition(pre-17) = %q, want %q", got, want)
	}
}
