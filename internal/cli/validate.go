package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/strataml/strata/internal/ir"
)

// ValidateOptions holds flags for the validate command.
type ValidateOptions struct {
	*RootOptions
}

// ValidateResult is the JSON payload for a validation run.
type ValidateResult struct {
	Module string `json:"module"`
	Funcs  int    `json:"funcs"`
	Ops    int    `json:"ops"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ValidateOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "validate <program.cue>",
		Short: "Compile and structurally validate a tensor program",
		Long: `Compile a CUE tensor program to strata IR and check the structural
invariants (dimension counts, operand arity, terminator placement)
without lowering it.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(opts, args[0], cmd)
		},
	}

	return cmd
}

func runValidate(opts *ValidateOptions, path string, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	// The frontend already validates on compile; a failure here is a
	// validation failure from the user's point of view.
	m, err := LoadProgram(path)
	if err != nil {
		return reportLoadError(formatter, err)
	}

	ops := 0
	m.Walk(func(*ir.Operation) bool { ops++; return true })

	result := &ValidateResult{Module: m.Name, Funcs: len(m.Funcs), Ops: ops}
	if opts.Format == "json" {
		return formatter.Success(result)
	}
	return formatter.Success(fmt.Sprintf("%s: ok (%d func(s), %d op(s))", m.Name, result.Funcs, result.Ops))
}
