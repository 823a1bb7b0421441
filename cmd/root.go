// Package cmd is the illustrative CLI boundary (spec §6.4): the plan and
// apply subcommands plus a hidden describe subcommand, wired to the core
// components through
// session.Connect and staticsort.PgQueryParser. None of the core packages
// import this one.
package cmd

import (
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/supabase/pg-toolbelt-sub004/internal/logger"
)

var debug bool

// exitError carries the process exit code spec §6.4 assigns to a failure
// mode (1 plan/apply failure, 2 diagnostic-only, 3 usage error) through
// cobra's RunE return path, which otherwise only distinguishes success/fail.
type exitError struct {
	code int
	err  error
}

func (e *exitError) Error() string { return e.err.Error() }
func (e *exitError) Unwrap() error { return e.err }

func failPlanApply(err error) error     { return &exitError{code: 1, err: err} }
func failDiagnostic(err error) error    { return &exitError{code: 2, err: err} }
func failUsage(err error) error         { return &exitError{code: 3, err: err} }

var rootCmd = &cobra.Command{
	Use:   "pgdelta",
	Short: "Declarative PostgreSQL schema diff and apply engine",
	Long: `pgdelta extracts a normalized catalog from a pair of databases, diffs
them into an ordered execution plan, and can statically order and apply a
directory of declarative SQL files round by round.`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		setupLogger()
	},
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")
	rootCmd.AddCommand(planCmd)
	rootCmd.AddCommand(applyCmd)
}

func setupLogger() {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})
	logger.SetGlobal(slog.New(handler), debug)
}

// Execute runs the root command and maps the result to spec §6.4's exit
// codes: 0 success, 1 plan/apply failure, 2 diagnostic-only, 3 usage error.
func Execute() int {
	err := rootCmd.Execute()
	if err == nil {
		return 0
	}
	var ee *exitError
	if errors.As(err, &ee) {
		fmt.Fprintln(os.Stderr, ee.err)
		return ee.code
	}
	fmt.Fprintln(os.Stderr, err)
	return 3
}
