package harness

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Scenario is a sequence of procedure calls with expectations.
type Scenario struct {
	// Name uniquely identifies this scenario. It also names the golden file.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Steps are executed in order.
	Steps []Step `yaml:"steps"`

	// Assertions validate the trace and call log after all steps ran.
	Assertions []Assertion `yaml:"assertions,omitempty"`
}

// Step calls one procedure.
type Step struct {
	// Call is the procedure's qualified name.
	Call string `yaml:"call"`

	// Args are the positional arguments.
	Args []any `yaml:"args"`

	// Expect validates the outcome. Without it the call must succeed.
	Expect *Expect `yaml:"expect,omitempty"`
}

// Expect describes the outcome of a step.
type Expect struct {
	// Rows, when set, must equal the produced rows exactly. Each row is
	// keyed by column name.
	Rows []map[string]any `yaml:"rows,omitempty"`

	// Error, when set, must appear in the call's error message.
	Error string `yaml:"error,omitempty"`
}

// Assertion validates the trace or call log.
type Assertion struct {
	// Type is one of the Assert* constants.
	Type string `yaml:"type"`

	// Procedure is used by trace_contains, trace_count and call_log.
	Procedure string `yaml:"procedure,omitempty"`

	// Args, when set, must equal the call's args (trace_contains).
	Args []any `yaml:"args,omitempty"`

	// Procedures is the expected order (trace_order).
	Procedures []string `yaml:"procedures,omitempty"`

	// Count is the expected number of calls (trace_count).
	Count int `yaml:"count,omitempty"`

	// Rows and Exhausted are compared with the recorded call (call_log).
	Rows      *int  `yaml:"rows,omitempty"`
	Exhausted *bool `yaml:"exhausted,omitempty"`
}

// Assertion type constants.
const (
	AssertTraceContains = "trace_contains"
	AssertTraceOrder    = "trace_order"
	AssertTraceCount    = "trace_count"
	AssertCallLog       = "call_log"
)

// LoadScenario reads and parses a scenario YAML file.
// Returns an error if the file doesn't exist, is malformed,
// contains unknown fields (typos), or is missing required fields.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}
	return ParseScenario(data)
}

// ParseScenario parses scenario YAML.
func ParseScenario(data []byte) (*Scenario, error) {
	// Strict field validation catches typos like "assertion:" vs "assertions:"
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}

	return &scenario, nil
}

// validateScenario checks that required fields are present and valid.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}

	if s.Description == "" {
		return fmt.Errorf("description is required")
	}

	if len(s.Steps) == 0 {
		return fmt.Errorf("steps list is required and must be non-empty")
	}

	for i, step := range s.Steps {
		if step.Call == "" {
			return fmt.Errorf("steps[%d]: call is required", i)
		}
		if step.Expect != nil && step.Expect.Rows != nil && step.Expect.Error != "" {
			return fmt.Errorf("steps[%d].expect: rows and error are mutually exclusive", i)
		}
	}

	for i, assertion := range s.Assertions {
		if err := validateAssertion(i, &assertion); err != nil {
			return err
		}
	}

	return nil
}

// validateAssertion validates a single assertion based on its type.
func validateAssertion(index int, a *Assertion) error {
	if a.Type == "" {
		return fmt.Errorf("assertions[%d]: type is required", index)
	}

	switch a.Type {
	case AssertTraceContains:
		if a.Procedure == "" {
			return fmt.Errorf("assertions[%d]: procedure is required for trace_contains", index)
		}
	case AssertTraceOrder:
		if len(a.Procedures) == 0 {
			return fmt.Errorf("assertions[%d]: procedures list is required for trace_order", index)
		}
	case AssertTraceCount:
		if a.Procedure == "" {
			return fmt.Errorf("assertions[%d]: procedure is required for trace_count", index)
		}
		if a.Count < 0 {
			return fmt.Errorf("assertions[%d]: count must be non-negative for trace_count", index)
		}
	case AssertCallLog:
		if a.Procedure == "" {
			return fmt.Errorf("assertions[%d]: procedure is required for call_log", index)
		}
		if a.Rows == nil && a.Exhausted == nil {
			return fmt.Errorf("assertions[%d]: rows or exhausted is required for call_log", index)
		}
	default:
		return fmt.Errorf("assertions[%d]: unknown assertion type %q", index, a.Type)
	}

	return nil
}
