package cli

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/strataml/strata/internal/ir"
	"github.com/strataml/strata/internal/lower"
	"github.com/strataml/strata/internal/rewrite"
	"github.com/strataml/strata/internal/trace"
)

// LowerOptions holds flags for the lower command.
type LowerOptions struct {
	*RootOptions
	Output  string // output file path
	TraceDB string // optional rewrite trace database
}

// LowerResult is the JSON payload for a successful lowering.
type LowerResult struct {
	Module     string `json:"module"`
	Applied    int    `json:"rewrites_applied"`
	HashBefore string `json:"hash_before"`
	HashAfter  string `json:"hash_after"`
	RunID      string `json:"run_id,omitempty"`
	Text       string `json:"text"`
}

// NewLowerCommand creates the lower command.
func NewLowerCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &LowerOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "lower <program.cue>",
		Short: "Lower a tensor program to explicit affine loops",
		Long: `Compile a CUE tensor program to strata IR and run the tile-to-affine
lowering pipeline.

Every tile.parallel becomes a nest of sequential affine.for loops and
every tile.reduce becomes an explicit load/compute/store sequence. The
lowered module is printed (or written with --output).`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLower(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVarP(&opts.Output, "output", "o", "", "output file path")
	cmd.Flags().StringVar(&opts.TraceDB, "trace", "", "record the rewrite trace to this SQLite database")

	return cmd
}

func runLower(opts *LowerOptions, path string, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	m, err := LoadProgram(path)
	if err != nil {
		return reportLoadError(formatter, err)
	}
	formatter.VerboseLog("Compiled program %s from %s", m.Name, path)

	hashBefore, err := ir.Fingerprint(m)
	if err != nil {
		formatter.Error(ErrCodeLowerFailed, err.Error(), nil)
		return NewExitError(ExitFailure, err.Error())
	}

	var driverOpts []rewrite.Option
	var store *trace.Store
	var runID string
	if opts.TraceDB != "" {
		store, err = trace.Open(opts.TraceDB)
		if err != nil {
			formatter.Error(ErrCodeTraceFailed, err.Error(), nil)
			return WrapExitError(ExitCommandError, "opening trace database", err)
		}
		defer store.Close()

		runID = trace.NewRunID()
		ctx := context.Background()
		if err := store.BeginRun(ctx, runID, m.Name, hashBefore); err != nil {
			formatter.Error(ErrCodeTraceFailed, err.Error(), nil)
			return WrapExitError(ExitCommandError, "recording run", err)
		}
		driverOpts = append(driverOpts, rewrite.WithTracer(func(ev rewrite.Event) {
			// Trace failures must not corrupt the lowering; surface
			// them as verbose diagnostics only.
			if err := store.RecordRewrite(ctx, runID, ev); err != nil {
				formatter.VerboseLog("trace: %v", err)
			}
		}))
		formatter.VerboseLog("Recording trace as run %s", runID)
	}

	result, err := lower.Lower(m, driverOpts...)
	if err != nil {
		if store != nil {
			_ = store.FinishRun(context.Background(), runID, "", "failed", result.Applied)
		}
		return reportLowerError(formatter, err)
	}

	hashAfter, err := ir.Fingerprint(m)
	if err != nil {
		formatter.Error(ErrCodeLowerFailed, err.Error(), nil)
		return NewExitError(ExitFailure, err.Error())
	}
	if store != nil {
		if err := store.FinishRun(context.Background(), runID, hashAfter, "ok", result.Applied); err != nil {
			formatter.VerboseLog("trace: %v", err)
		}
	}

	text := ir.Print(m)
	formatter.VerboseLog("Applied %d rewrite(s)", result.Applied)

	if opts.Output != "" {
		if err := os.WriteFile(opts.Output, []byte(text), 0o644); err != nil {
			formatter.Error(ErrCodeWriteFailed, fmt.Sprintf("writing output file: %v", err), nil)
			return WrapExitError(ExitCommandError, "writing output", err)
		}
	}

	return formatter.SuccessText(text, &LowerResult{
		Module:     m.Name,
		Applied:    result.Applied,
		HashBefore: hashBefore,
		HashAfter:  hashAfter,
		RunID:      runID,
		Text:       text,
	})
}

// reportLoadError renders a load/compile failure and maps it to an
// exit code.
func reportLoadError(formatter *OutputFormatter, err error) error {
	var loadErr *LoadError
	if errors.As(err, &loadErr) {
		formatter.Error(loadErr.Code, loadErr.Message, nil)
		return WrapExitError(ExitCommandError, "loading program", err)
	}
	formatter.Error(ErrCodeCompileFailed, err.Error(), nil)
	return WrapExitError(ExitFailure, "compiling program", err)
}

// reportLowerError renders a conversion failure, attaching the IR dump
// for post-condition violations.
func reportLowerError(formatter *OutputFormatter, err error) error {
	var passErr *rewrite.PassError
	if errors.As(err, &passErr) {
		formatter.Error(ErrCodeLowerFailed, passErr.Error(), passErr.Dump)
		return WrapExitError(ExitFailure, "lowering failed", err)
	}
	formatter.Error(ErrCodeLowerFailed, err.Error(), nil)
	return WrapExitError(ExitFailure, "lowering failed", err)
}
