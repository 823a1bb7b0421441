package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/supabase/pg-toolbelt-sub004/catalog"
	"github.com/supabase/pg-toolbelt-sub004/diffengine"
	"github.com/supabase/pg-toolbelt-sub004/extract"
	"github.com/supabase/pg-toolbelt-sub004/internal/planschema"
	"github.com/supabase/pg-toolbelt-sub004/planner"
	"github.com/supabase/pg-toolbelt-sub004/session"
)

var (
	planRole       string
	planOutputJSON string
)

var planCmd = &cobra.Command{
	Use:   "plan <main-url> <branch-url>",
	Short: "Extract both databases, diff them, and print an ordered plan",
	Args:  cobra.ExactArgs(2),
	RunE:  runPlan,
}

func init() {
	planCmd.Flags().StringVar(&planRole, "role", "", "role to SET ROLE before extracting and to prefix the plan with")
	planCmd.Flags().StringVar(&planOutputJSON, "output-json", "", "write the OrderedPlan as JSON to this path instead of stdout SQL")
}

func runPlan(cmd *cobra.Command, args []string) error {
	mainURL, branchURL := args[0], args[1]
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	mainSess, err := session.Connect(ctx, mainURL, nil)
	if err != nil {
		return failUsage(fmt.Errorf("connecting to main: %w", err))
	}
	defer mainSess.Close(ctx)

	branchSess, err := session.Connect(ctx, branchURL, nil)
	if err != nil {
		return failUsage(fmt.Errorf("connecting to branch: %w", err))
	}
	defer branchSess.Close(ctx)

	extractorOpts := extract.Options{Role: planRole}

	// The two extractions touch independent connections and share no
	// mutable state, so they run concurrently via an errgroup.Group.
	var mainCat, branchCat *catalog.Catalog
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		c, err := extract.New(extractorOpts).Extract(gctx, mainSess)
		if err != nil {
			return err
		}
		mainCat = c
		return nil
	})
	g.Go(func() error {
		c, err := extract.New(extractorOpts).Extract(gctx, branchSess)
		if err != nil {
			return err
		}
		branchCat = c
		return nil
	})
	if err := g.Wait(); err != nil {
		return failPlanApply(fmt.Errorf("extraction failed: %w", err))
	}

	changes := diffengine.Diff(mainCat, branchCat)
	result, err := planner.Plan(changes, mainCat, branchCat, planner.Options{Role: planRole})
	if err != nil {
		return failDiagnostic(fmt.Errorf("planning failed: %w", err))
	}

	if planOutputJSON != "" {
		return writePlanJSON(result, planOutputJSON)
	}

	for _, stmt := range result.Statements {
		fmt.Println(stmt)
	}
	return nil
}

func writePlanJSON(plan planner.OrderedPlan, path string) error {
	data, err := json.MarshalIndent(plan, "", "  ")
	if err != nil {
		return failPlanApply(fmt.Errorf("marshaling plan: %w", err))
	}
	if err := planschema.ValidatePlan(data); err != nil {
		return failPlanApply(fmt.Errorf("plan failed its own schema: %w", err))
	}
	if path == "-" {
		_, err := os.Stdout.Write(append(data, '\n'))
		return err
	}
	return os.WriteFile(path, data, 0o644)
}
