package applyengine

import (
	"context"
	"testing"

	"github.com/supabase/pg-toolbelt-sub004/testutil"
)

func TestRoundApplyAgainstRealServer(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	ctx := context.Background()
	pg := testutil.StartEmbedded(ctx, t)
	defer pg.Close(ctx)

	statements := []string{
		"CREATE SCHEMA app",
		// references parent before it exists in issue order, forcing a retry round.
		"CREATE TABLE app.child (id bigint PRIMARY KEY, parent_id bigint REFERENCES app.parent(id))",
		"CREATE TABLE app.parent (id bigint PRIMARY KEY)",
		"CREATE FUNCTION app.noop() RETURNS void LANGUAGE sql AS $$ SELECT 1 $$",
	}

	result := RoundApply(ctx, Options{
		Session:         pg.Session,
		Statements:      statements,
		MaxRounds:       3,
		FinalValidation: true,
	})

	if result.Status != StatusSuccess {
		t.Fatalf("expected success, got %s (rounds=%+v)", result.Status, result.Rounds)
	}
	if result.TotalApplied != len(statements) {
		t.Fatalf("expected %d statements applied, got %d", len(statements), result.TotalApplied)
	}
}
