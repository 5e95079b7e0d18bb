// Package harness provides a conformance testing framework for the
// lowering pipeline.
//
// A scenario pairs a CUE tensor program with expectations about the
// lowered module: which op kinds must be gone, how many of each op
// kind must exist, and (via golden files) the exact printed output.
// Scenarios can be defined inline in test code or loaded from YAML
// files next to the tests.
package harness

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Scenario defines one lowering conformance scenario.
type Scenario struct {
	// Name uniquely identifies this scenario. Golden files are keyed
	// by it.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description,omitempty"`

	// Source is the CUE program text (must define a top-level
	// "program" struct).
	Source string `yaml:"source"`

	// Expect validates the lowered module.
	Expect ExpectClause `yaml:"expect,omitempty"`
}

// ExpectClause specifies expectations on the lowered module.
type ExpectClause struct {
	// NoOps lists op names that must not appear after lowering
	// (e.g. "tile.parallel").
	NoOps []string `yaml:"no_ops,omitempty"`

	// OpCounts maps op names to exact expected counts.
	OpCounts map[string]int `yaml:"op_counts,omitempty"`

	// Applied, if positive, is the exact number of rewrites the
	// driver must report. Zero skips the check.
	Applied int `yaml:"applied,omitempty"`
}

// LoadScenario reads a scenario from a YAML file.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading scenario file: %w", err)
	}

	var s Scenario
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&s); err != nil {
		return nil, fmt.Errorf("parsing scenario %s: %w", path, err)
	}
	if s.Name == "" {
		return nil, fmt.Errorf("scenario %s: name is required", path)
	}
	if s.Source == "" {
		return nil, fmt.Errorf("scenario %s: source is required", path)
	}
	return &s, nil
}
