package harness

import (
	"fmt"
	"strings"
)

// AssertionError is returned when a scenario expectation fails.
// It includes the lowered module text to help debug the failure.
type AssertionError struct {
	Scenario string // Scenario name
	Type     string // Assertion type for categorization
	Expected string // Human-readable expected outcome
	Actual   string // Human-readable actual outcome
	After    string // Printed lowered module for context
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	var buf strings.Builder
	fmt.Fprintf(&buf, "Assertion failed: %s (scenario %s)\n", e.Type, e.Scenario)
	fmt.Fprintf(&buf, "  Expected: %s\n", e.Expected)
	fmt.Fprintf(&buf, "  Actual: %s\n", e.Actual)
	fmt.Fprintf(&buf, "\nLowered module:\n%s", e.After)
	return buf.String()
}
