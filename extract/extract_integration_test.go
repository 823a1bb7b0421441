package extract

import (
	"context"
	"testing"

	"github.com/supabase/pg-toolbelt-sub004/catalog"
	"github.com/supabase/pg-toolbelt-sub004/testutil"
)

func TestExtractAgainstRealServer(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	ctx := context.Background()
	pg := testutil.StartEmbedded(ctx, t)
	defer pg.Close(ctx)

	if err := pg.Session.QueryUnsafe(ctx, `
		CREATE SCHEMA app;
		CREATE TABLE app.widgets (
			id bigint GENERATED ALWAYS AS IDENTITY PRIMARY KEY,
			name text NOT NULL,
			created_at timestamptz NOT NULL DEFAULT now()
		);
		CREATE VIEW app.widget_names AS SELECT name FROM app.widgets;
	`); err != nil {
		t.Fatalf("seeding schema: %v", err)
	}

	cat, err := New(Options{}).Extract(ctx, pg.Session)
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}

	if _, ok := cat.Schemas["app"]; !ok {
		t.Fatal("expected schema app to be extracted")
	}
	if _, ok := cat.Tables[catalog.TableID("app", "widgets")]; !ok {
		t.Fatal("expected table app.widgets to be extracted")
	}
	if _, ok := cat.Views[catalog.ViewID("app", "widget_names")]; !ok {
		t.Fatal("expected view app.widget_names to be extracted")
	}
}
