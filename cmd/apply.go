package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/supabase/pg-toolbelt-sub004/applyengine"
	"github.com/supabase/pg-toolbelt-sub004/internal/planschema"
	"github.com/supabase/pg-toolbelt-sub004/session"
	"github.com/supabase/pg-toolbelt-sub004/staticsort"
)

var (
	applyFromDir    string
	applyMaxRounds  int
	applyNoValidate bool
	applyExplain    bool
)

var applyCmd = &cobra.Command{
	Use:   "apply <target-url>",
	Short: "Statically order a directory of SQL files and apply them round by round",
	Args:  cobra.ExactArgs(1),
	RunE:  runApply,
}

func init() {
	applyCmd.Flags().StringVar(&applyFromDir, "from-dir", "", "directory of .sql files to order and apply")
	applyCmd.Flags().IntVar(&applyMaxRounds, "max-rounds", 5, "maximum retry rounds for statements with a retryable failure")
	applyCmd.Flags().BoolVar(&applyNoValidate, "no-validate", false, "skip the final function-body validation pass")
	applyCmd.Flags().BoolVar(&applyExplain, "explain", false, "print the inferred dependency graph instead of applying")
	applyCmd.MarkFlagRequired("from-dir")
}

func runApply(cmd *cobra.Command, args []string) error {
	targetURL := args[0]
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	sqls, err := readSQLFiles(applyFromDir)
	if err != nil {
		return failUsage(err)
	}

	result := staticsort.AnalyzeAndSort(sqls, staticsort.PgQueryParser{})
	for _, d := range result.Diagnostics {
		pterm.Warning.Printf("%s: %s (%s#%d)\n", d.Code, d.Message, d.ID.SourceLabel, d.ID.StatementIndex)
	}

	if applyExplain {
		for _, e := range result.Graph.Edges {
			fmt.Printf("%s#%d -> %s#%d via %s\n", e.From.SourceLabel, e.From.StatementIndex, e.To.SourceLabel, e.To.StatementIndex, e.Via)
		}
		if hasFatalDiagnostic(result) {
			return failDiagnostic(fmt.Errorf("%d diagnostic(s) reported", len(result.Diagnostics)))
		}
		return nil
	}

	sess, err := session.Connect(ctx, targetURL, nil)
	if err != nil {
		return failUsage(fmt.Errorf("connecting to target: %w", err))
	}
	defer sess.Close(ctx)

	statements := make([]string, len(result.Ordered))
	for i, n := range result.Ordered {
		statements[i] = n.SQL
	}

	spinner, _ := pterm.DefaultSpinner.WithText("applying round 1...").Start()
	applyResult := applyengine.RoundApply(ctx, applyengine.Options{
		Session:         sess,
		Statements:      statements,
		MaxRounds:       applyMaxRounds,
		FinalValidation: !applyNoValidate,
		OnRoundComplete: func(rr applyengine.RoundResult) {
			spinner.UpdateText(fmt.Sprintf("round %d: %d applied, %d skipped, %d errors",
				rr.Round, len(rr.Applied), len(rr.Skipped), len(rr.Errors)))
		},
	})

	switch applyResult.Status {
	case applyengine.StatusSuccess:
		spinner.Success(fmt.Sprintf("applied %d statement(s) in %d round(s)", applyResult.TotalApplied, applyResult.TotalRounds))
	default:
		spinner.Fail(fmt.Sprintf("apply ended in status %s", applyResult.Status))
	}

	data, err := json.MarshalIndent(applyResult, "", "  ")
	if err == nil {
		if verr := planschema.ValidateApplyResult(data); verr != nil {
			pterm.Warning.Printf("apply result failed its own schema: %v\n", verr)
		}
	}

	if applyResult.Status != applyengine.StatusSuccess {
		return failPlanApply(fmt.Errorf("apply ended in status %s", applyResult.Status))
	}
	return nil
}

// readSQLFiles reads every *.sql file in dir in lexical filename order,
// using numbered migration filenames for authoring order before dependency
// ordering overrides it.
func readSQLFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading --from-dir: %w", err)
	}
	var names []string
	for _, e := range entries {
		if e.IsDir() || filepath.Ext(e.Name()) != ".sql" {
			continue
		}
		names = append(names, e.Name())
	}
	sort.Strings(names)

	sqls := make([]string, 0, len(names))
	for _, name := range names {
		data, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", name, err)
		}
		sqls = append(sqls, string(data))
	}
	if len(sqls) == 0 {
		return nil, fmt.Errorf("no .sql files found in %s", dir)
	}
	return sqls, nil
}

func hasFatalDiagnostic(r staticsort.Result) bool {
	for _, d := range r.Diagnostics {
		if d.Code == staticsort.DiagCycleDetected || d.Code == staticsort.DiagUnresolvedDependency {
			return true
		}
	}
	return false
}
