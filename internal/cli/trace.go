package cli

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/strataml/strata/internal/trace"
)

// TraceOptions holds flags for the trace command.
type TraceOptions struct {
	*RootOptions
}

// TraceListResult is the JSON payload for a run listing.
type TraceListResult struct {
	Runs []trace.Run `json:"runs"`
}

// TraceRunResult is the JSON payload for a single run dump.
type TraceRunResult struct {
	Run      trace.Run       `json:"run"`
	Rewrites []trace.Rewrite `json:"rewrites"`
}

// NewTraceCommand creates the trace command.
func NewTraceCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &TraceOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "trace <trace.db> [run-id]",
		Short: "Inspect a recorded rewrite trace",
		Long: `List the lowering runs recorded in a trace database, or dump one
run's rewrite log in application order.`,
		Args:          cobra.RangeArgs(1, 2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTrace(opts, args, cmd)
		},
	}

	return cmd
}

func runTrace(opts *TraceOptions, args []string, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	path := args[0]
	if _, err := os.Stat(path); os.IsNotExist(err) {
		formatter.Error(ErrCodeNotFound, fmt.Sprintf("trace database not found: %s", path), nil)
		return NewExitError(ExitCommandError, "trace database not found")
	}

	store, err := trace.Open(path)
	if err != nil {
		formatter.Error(ErrCodeTraceFailed, err.Error(), nil)
		return WrapExitError(ExitCommandError, "opening trace database", err)
	}
	defer store.Close()

	ctx := context.Background()
	if len(args) == 1 {
		return listRuns(ctx, formatter, store)
	}
	return dumpRun(ctx, formatter, store, args[1])
}

func listRuns(ctx context.Context, formatter *OutputFormatter, store *trace.Store) error {
	runs, err := store.ListRuns(ctx)
	if err != nil {
		formatter.Error(ErrCodeTraceFailed, err.Error(), nil)
		return WrapExitError(ExitCommandError, "listing runs", err)
	}

	if formatter.Format == "json" {
		return formatter.Success(&TraceListResult{Runs: runs})
	}

	if len(runs) == 0 {
		return formatter.Success("no runs recorded")
	}
	var sb strings.Builder
	for _, r := range runs {
		changed := "unchanged"
		if r.Changed() {
			changed = "changed"
		}
		fmt.Fprintf(&sb, "%s  %-10s %-8s %d rewrite(s), module %s\n",
			r.ID, changed, r.Status, r.RewritesApplied, r.ModuleName)
	}
	return formatter.SuccessText(sb.String(), nil)
}

func dumpRun(ctx context.Context, formatter *OutputFormatter, store *trace.Store, runID string) error {
	run, err := store.GetRun(ctx, runID)
	if err != nil {
		formatter.Error(ErrCodeNotFound, fmt.Sprintf("run not found: %s", runID), nil)
		return WrapExitError(ExitCommandError, "reading run", err)
	}
	rewrites, err := store.RewritesForRun(ctx, runID)
	if err != nil {
		formatter.Error(ErrCodeTraceFailed, err.Error(), nil)
		return WrapExitError(ExitCommandError, "reading rewrites", err)
	}

	if formatter.Format == "json" {
		return formatter.Success(&TraceRunResult{Run: *run, Rewrites: rewrites})
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "run %s (module %s, status %s)\n", run.ID, run.ModuleName, run.Status)
	fmt.Fprintf(&sb, "  before %s\n", run.HashBefore)
	fmt.Fprintf(&sb, "  after  %s\n", run.HashAfter)
	for _, rw := range rewrites {
		fmt.Fprintf(&sb, "  %4d  %-24s %s %s\n", rw.Seq, rw.Pattern, rw.Action, rw.Op)
	}
	return formatter.SuccessText(sb.String(), nil)
}
