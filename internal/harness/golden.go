package harness

import (
	"testing"

	"github.com/sebdah/goldie/v2"

	"github.com/roach88/procrt/internal/ir"
	"github.com/roach88/procrt/internal/procedure"
)

// TraceSnapshot captures the complete trace for a scenario run.
// All fields use canonical JSON serialization for deterministic comparison.
type TraceSnapshot struct {
	ScenarioName string       `json:"scenario"`
	Trace        []TraceEvent `json:"trace"`
}

// toCanonicalMap converts a TraceSnapshot to a map[string]any for canonical
// JSON serialization. Empty fields are left out.
func (s *TraceSnapshot) toCanonicalMap() map[string]any {
	traceList := make([]any, len(s.Trace))
	for i, event := range s.Trace {
		eventMap := map[string]any{
			"type":      event.Type,
			"procedure": event.Procedure,
			"seq":       event.Seq,
		}
		if len(event.Args) > 0 {
			eventMap["args"] = event.Args
		}
		if event.Level != "" {
			eventMap["level"] = event.Level
			eventMap["message"] = event.Message
		}
		if len(event.Rows) > 0 {
			rows := make([]any, len(event.Rows))
			for j, row := range event.Rows {
				rows[j] = row
			}
			eventMap["rows"] = rows
		}
		if event.Error != "" {
			eventMap["error"] = event.Error
		}
		traceList[i] = eventMap
	}

	return map[string]any{
		"scenario": s.ScenarioName,
		"trace":    traceList,
	}
}

// MarshalTrace renders a trace as canonical JSON followed by a newline.
// Floats and nulls in args or rows are rejected.
func MarshalTrace(name string, trace []TraceEvent) ([]byte, error) {
	snapshot := TraceSnapshot{ScenarioName: name, Trace: trace}
	data, err := ir.MarshalCanonical(snapshot.toCanonicalMap())
	if err != nil {
		return nil, err
	}
	return append(data, '\n'), nil
}

// RunWithGolden runs a scenario and compares the trace against a golden
// file stored in testdata/golden/{scenario.Name}.golden.
//
// To regenerate golden files, run:
//
//	go test ./internal/harness -update
//
// Returns the run's result. Test failure (via goldie) occurs if the trace
// doesn't match the golden file.
func RunWithGolden(t *testing.T, scenario *Scenario, groups ...procedure.Group) (*Result, error) {
	t.Helper()

	result, err := Run(t.Context(), scenario, groups...)
	if err != nil {
		return nil, err
	}

	traceJSON, err := MarshalTrace(scenario.Name, result.Trace)
	if err != nil {
		return nil, err
	}

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, scenario.Name, traceJSON)

	return result, nil
}
