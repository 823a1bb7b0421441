package extract

import (
	"context"
	"strings"
	"testing"

	"github.com/supabase/pg-toolbelt-sub004/catalog"
	"github.com/supabase/pg-toolbelt-sub004/session"
)

// fakeSession answers a fixed set of catalog queries by SQL substring match
// and returns zero rows for everything else, letting Extract's 27-step
// pipeline run to completion without a real server.
type fakeSession struct {
	byContains map[string][]session.Row
}

func (f *fakeSession) Query(ctx context.Context, sql string, params ...any) ([]session.Row, error) {
	for key, rows := range f.byContains {
		if strings.Contains(sql, key) {
			return rows, nil
		}
	}
	return nil, nil
}

func (f *fakeSession) QueryUnsafe(ctx context.Context, sql string) error { return nil }
func (f *fakeSession) Begin(ctx context.Context) error { return nil }
func (f *fakeSession) Commit(ctx context.Context) error { return nil }
func (f *fakeSession) Rollback(ctx context.Context) error { return nil }
func (f *fakeSession) Savepoint(ctx context.Context, name string) error { return nil }
func (f *fakeSession) ReleaseSavepoint(ctx context.Context, name string) error { return nil }
func (f *fakeSession) RollbackToSavepoint(ctx context.Context, name string) error { return nil }
func (f *fakeSession) Cancel() {}

func TestExtractRunsFullPipelineAndRecordsMetadata(t *testing.T) {
	sess := &fakeSession{byContains: map[string][]session.Row{
		"SELECT version()":       {{"PostgreSQL 17.5 on x86_64-pc-linux-gnu"}},
		"SHOW server_version_num": {{int64(170005)}},
		"obj_description(n.oid, 'pg_namespace')": {
			{"app", "postgres", nil},
		},
	}}

	cat, err := New(Options{}).Extract(context.Background(), sess)
	if err != nil {
		t.Fatalf("Extract failed: %v", err)
	}
	if cat.Metadata.DatabaseVersion == "" {
		t.Errorf("expected DatabaseVersion to be populated from SELECT version()")
	}
	if cat.Metadata.ExtractedBy != "pgdelta" {
		t.Errorf("ExtractedBy = %q, want pgdelta", cat.Metadata.ExtractedBy)
	}
	if _, ok := cat.Schemas["app"]; !ok {
		t.Errorf("expected schema app to be extracted, got %+v", cat.Schemas)
	}
}

func TestExtractCanonicalizesViewDefinitionByServerVersion(t *testing.T) {
	sess := &fakeSession{byContains: map[string][]session.Row{
		"SELECT version()":       {{"PostgreSQL 15.3 on x86_64-pc-linux-gnu"}},
		"SHOW server_version_num": {{int64(150003)}},
		"pg_get_viewdef": {
			{"app", "active_users", "v", "SELECT CASE WHEN a THEN  1 ELSE 0 END FROM t", "postgres", ""},
		},
	}}

	cat, err := New(Options{}).Extract(context.Background(), sess)
	if err != nil {
		t.Fatalf("Extract failed: %v", err)
	}
	view, ok := cat.Views[catalog.ViewID("app", "active_users")]
	if !ok {
		t.Fatalf("expected view app.active_users to be extracted, views=%+v", cat.Views)
	}
	want := "SELECT CASE WHEN a THEN 1 ELSE 0 END FROM t"
	if view.Definition != want {
		t.Errorf("Definition = %q, want canonicalized %q", view.Definition, want)
	}
}

func TestExtractPropagatesExtractionErrorOnQueryFailure(t *testing.T) {
	sess := &failingSession{failOn: "SELECT version()"}
	_, err := New(Options{}).Extract(context.Background(), sess)
	if err == nil {
		t.Fatalf("expected Extract to propagate the failing query as an error")
	}
}

type failingSession struct {
	failOn string
}

func (f *failingSession) Query(ctx context.Context, sql string, params ...any) ([]session.Row, error) {
	if strings.Contains(sql, f.failOn) {
		return nil, &fakeQueryError{}
	}
	return nil, nil
}
func (f *failingSession) QueryUnsafe(ctx context.Context, sql string) error { return nil }
func (f *failingSession) Begin(ctx context.Context) error { return nil }
func (f *failingSession) Commit(ctx context.Context) error { return nil }
func (f *failingSession) Rollback(ctx context.Context) error { return nil }
func (f *failingSession) Savepoint(ctx context.Context, name string) error { return nil }
func (f *failingSession) ReleaseSavepoint(ctx context.Context, name string) error { return nil }
func (f *failingSession) RollbackToSavepoint(ctx context.Context, name string) error { return nil }
func (f *failingSession) Cancel() {}

type fakeQueryError struct{}

func (e *fakeQueryError) Error() string { return "relation does not exist" }
