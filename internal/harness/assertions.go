package harness

import (
	"fmt"
	"reflect"
	"strings"
)

// AssertionError is returned when an assertion fails.
// It includes detailed context to help debug the failure.
type AssertionError struct {
	Type     string       // Assertion type for categorization
	Expected string       // Human-readable expected outcome
	Actual   string       // Human-readable actual outcome
	Trace    []TraceEvent // Full trace for debugging context
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	var buf strings.Builder

	fmt.Fprintf(&buf, "Assertion failed: %s\n", e.Type)
	fmt.Fprintf(&buf, "  Expected: %s\n", e.Expected)
	fmt.Fprintf(&buf, "  Actual: %s\n", e.Actual)

	if len(e.Trace) > 0 {
		fmt.Fprintf(&buf, "\nCalls:\n")
		for _, event := range e.Trace {
			if event.Type == EventCall {
				fmt.Fprintf(&buf, "  [%d] %s %v\n", event.Seq, event.Procedure, event.Args)
			}
		}
	}

	return buf.String()
}

// assertTraceContains checks for a call to the procedure, with exactly the
// given args when the assertion has any.
func assertTraceContains(trace []TraceEvent, assertion Assertion) error {
	want, err := normalizeSlice(assertion.Args)
	if err != nil {
		return fmt.Errorf("trace_contains: failed to convert args: %w", err)
	}

	for _, event := range trace {
		if event.Type != EventCall || event.Procedure != assertion.Procedure {
			continue
		}
		if len(assertion.Args) == 0 || reflect.DeepEqual(event.Args, want) {
			return nil
		}
	}

	expected := "call to " + assertion.Procedure
	if len(assertion.Args) > 0 {
		expected += fmt.Sprintf(" with args %v", want)
	}
	return &AssertionError{
		Type:     AssertTraceContains,
		Expected: expected,
		Actual:   "not found in trace",
		Trace:    trace,
	}
}

// assertTraceOrder checks that procedures are first called in the given
// order. Other calls may come in between.
func assertTraceOrder(trace []TraceEvent, assertion Assertion) error {
	positions := make(map[string]int64)
	for _, event := range trace {
		if event.Type == EventCall && positions[event.Procedure] == 0 {
			positions[event.Procedure] = event.Seq
		}
	}

	for _, name := range assertion.Procedures {
		if positions[name] == 0 {
			return &AssertionError{
				Type:     AssertTraceOrder,
				Expected: fmt.Sprintf("all procedures called: %v", assertion.Procedures),
				Actual:   fmt.Sprintf("missing call: %s", name),
				Trace:    trace,
			}
		}
	}

	for i := 1; i < len(assertion.Procedures); i++ {
		prev, curr := assertion.Procedures[i-1], assertion.Procedures[i]
		if positions[prev] >= positions[curr] {
			return &AssertionError{
				Type:     AssertTraceOrder,
				Expected: fmt.Sprintf("calls in order: %v", assertion.Procedures),
				Actual: fmt.Sprintf("%s (seq %d) should be before %s (seq %d)",
					prev, positions[prev], curr, positions[curr]),
				Trace: trace,
			}
		}
	}

	return nil
}

// assertTraceCount checks that the procedure is called exactly Count times.
func assertTraceCount(trace []TraceEvent, assertion Assertion) error {
	count := 0
	for _, event := range trace {
		if event.Type == EventCall && event.Procedure == assertion.Procedure {
			count++
		}
	}

	if count != assertion.Count {
		return &AssertionError{
			Type:     AssertTraceCount,
			Expected: fmt.Sprintf("%d calls to %s", assertion.Count, assertion.Procedure),
			Actual:   fmt.Sprintf("%d calls", count),
			Trace:    trace,
		}
	}
	return nil
}

// assertCallLog checks the most recent recorded call to the procedure.
func assertCallLog(result *Result, assertion Assertion) error {
	for _, rec := range result.Calls {
		if rec.Procedure != assertion.Procedure {
			continue
		}
		if assertion.Rows != nil && rec.Rows != *assertion.Rows {
			return &AssertionError{
				Type:     AssertCallLog,
				Expected: fmt.Sprintf("%s recorded with %d row(s)", assertion.Procedure, *assertion.Rows),
				Actual:   fmt.Sprintf("%d row(s) in call %s", rec.Rows, rec.ID),
			}
		}
		if assertion.Exhausted != nil && rec.Exhausted != *assertion.Exhausted {
			return &AssertionError{
				Type:     AssertCallLog,
				Expected: fmt.Sprintf("%s recorded with exhausted=%t", assertion.Procedure, *assertion.Exhausted),
				Actual:   fmt.Sprintf("exhausted=%t in call %s", rec.Exhausted, rec.ID),
			}
		}
		return nil
	}

	return &AssertionError{
		Type:     AssertCallLog,
		Expected: fmt.Sprintf("a recorded call to %s", assertion.Procedure),
		Actual:   fmt.Sprintf("%d recorded call(s), none to %s", len(result.Calls), assertion.Procedure),
	}
}

// EvaluateAssertions evaluates all assertions against the result.
// Returns a slice of error messages for failed assertions.
func EvaluateAssertions(result *Result, assertions []Assertion) []string {
	var errors []string

	for i, assertion := range assertions {
		var err error

		switch assertion.Type {
		case AssertTraceContains:
			err = assertTraceContains(result.Trace, assertion)
		case AssertTraceOrder:
			err = assertTraceOrder(result.Trace, assertion)
		case AssertTraceCount:
			err = assertTraceCount(result.Trace, assertion)
		case AssertCallLog:
			err = assertCallLog(result, assertion)
		default:
			err = fmt.Errorf("assertion[%d]: unknown assertion type %q", i, assertion.Type)
		}

		if err != nil {
			errors = append(errors, err.Error())
		}
	}

	return errors
}
