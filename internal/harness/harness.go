package harness

import (
	"fmt"

	"github.com/strataml/strata/internal/cli"
	"github.com/strataml/strata/internal/ir"
	"github.com/strataml/strata/internal/lower"
	"github.com/strataml/strata/internal/rewrite"
)

// Result captures one scenario execution.
type Result struct {
	// Before is the printed module before lowering.
	Before string

	// After is the printed module after lowering.
	After string

	// Applied is the number of rewrites the driver reported.
	Applied int

	// Events holds the rewrite trace in application order.
	Events []rewrite.Event

	// Module is the lowered module, for structural assertions.
	Module *ir.Module
}

// Run compiles the scenario's program, prints it, runs the lowering
// pipeline with an event tracer, and prints the result. A compile or
// lowering failure fails the run.
func Run(s *Scenario) (*Result, error) {
	m, err := cli.CompileProgramSource(s.Name+".cue", []byte(s.Source))
	if err != nil {
		return nil, fmt.Errorf("scenario %s: %w", s.Name, err)
	}

	result := &Result{Before: ir.Print(m), Module: m}

	res, err := lower.Lower(m, rewrite.WithTracer(func(ev rewrite.Event) {
		result.Events = append(result.Events, ev)
	}))
	if err != nil {
		return nil, fmt.Errorf("scenario %s: %w", s.Name, err)
	}

	result.Applied = res.Applied
	result.After = ir.Print(m)
	return result, nil
}

// RunAndCheck runs the scenario and evaluates its expect clause.
func RunAndCheck(s *Scenario) (*Result, error) {
	result, err := Run(s)
	if err != nil {
		return nil, err
	}
	if err := checkExpect(s, result); err != nil {
		return result, err
	}
	return result, nil
}

func checkExpect(s *Scenario, result *Result) error {
	for _, name := range s.Expect.NoOps {
		if n := countOps(result.Module, ir.OpName(name)); n > 0 {
			return &AssertionError{
				Scenario: s.Name,
				Type:     "no_ops",
				Expected: fmt.Sprintf("no %s operations", name),
				Actual:   fmt.Sprintf("%d found", n),
				After:    result.After,
			}
		}
	}
	for name, want := range s.Expect.OpCounts {
		if got := countOps(result.Module, ir.OpName(name)); got != want {
			return &AssertionError{
				Scenario: s.Name,
				Type:     "op_counts",
				Expected: fmt.Sprintf("%d %s operation(s)", want, name),
				Actual:   fmt.Sprintf("%d found", got),
				After:    result.After,
			}
		}
	}
	if s.Expect.Applied > 0 && result.Applied != s.Expect.Applied {
		return &AssertionError{
			Scenario: s.Name,
			Type:     "applied",
			Expected: fmt.Sprintf("%d rewrite(s) applied", s.Expect.Applied),
			Actual:   fmt.Sprintf("%d applied", result.Applied),
			After:    result.After,
		}
	}
	return nil
}

func countOps(m *ir.Module, name ir.OpName) int {
	n := 0
	m.Walk(func(op *ir.Operation) bool {
		if op.Name() == name {
			n++
		}
		return true
	})
	return n
}
