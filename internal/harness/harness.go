package harness

import (
	"context"
	"fmt"
	"log/slog"
	"reflect"
	"strings"
	"time"

	"github.com/roach88/procrt/internal/capability"
	"github.com/roach88/procrt/internal/catalog"
	"github.com/roach88/procrt/internal/compiler"
	"github.com/roach88/procrt/internal/ir"
	"github.com/roach88/procrt/internal/procedure"
	"github.com/roach88/procrt/internal/proclog"
	"github.com/roach88/procrt/internal/testutil"
	"github.com/roach88/procrt/internal/typemap"
)

// Epoch is the start time of every run's clock.
var Epoch = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

// Harness holds the per-run catalog and spies.
type Harness struct {
	catalog *catalog.Catalog
	calls   *catalog.MemoryLog
	spy     *testutil.SpyLog
}

// Run compiles groups into a fresh catalog, executes the scenario's steps
// and evaluates its assertions.
//
// Execution flow:
// 1. Compile and register every group (a compile error aborts the run)
// 2. Call each step's procedure and drain its rows
// 3. Record the trace and validate expect clauses
// 4. Evaluate assertions against the trace and call log
//
// The returned error reports a harness failure. Unmet expectations are
// reported through Result.Errors instead.
func Run(ctx context.Context, scenario *Scenario, groups ...procedure.Group) (*Result, error) {
	ids := make([]string, len(scenario.Steps))
	for i := range ids {
		ids[i] = fmt.Sprintf("call-%d", i+1)
	}
	clock := testutil.NewDeterministicClock(Epoch, time.Second)
	logger := slog.New(slog.DiscardHandler)

	h := &Harness{
		calls: catalog.NewMemoryLog(len(scenario.Steps)),
		spy:   testutil.NewSpyLog(),
	}
	h.catalog = catalog.New(
		catalog.WithRecorder(h.calls),
		catalog.WithIDGenerator(testutil.NewFixedGenerator(ids...)),
		catalog.WithClock(clock.Now),
		catalog.WithLogger(logger),
	)

	reg := capability.NewRegistry()
	capability.Instance[proclog.Log](reg, h.spy)

	comp := compiler.New(typemap.New(), reg, compiler.WithLogger(logger))
	for _, g := range groups {
		handles, err := comp.Compile(g)
		if err != nil {
			return nil, fmt.Errorf("failed to compile %s: %w", g.Type().Name(), err)
		}
		if err := h.catalog.Register(handles...); err != nil {
			return nil, fmt.Errorf("failed to register %s: %w", g.Type().Name(), err)
		}
	}

	result := NewResult()
	for i, step := range scenario.Steps {
		if err := h.executeStep(ctx, i, step, result); err != nil {
			return nil, fmt.Errorf("step %d: %w", i, err)
		}
	}

	calls, err := h.calls.ReadCalls(ctx, 0)
	if err != nil {
		return nil, fmt.Errorf("failed to read call log: %w", err)
	}
	result.Calls = calls

	for _, msg := range EvaluateAssertions(result, scenario.Assertions) {
		result.AddError(msg)
	}

	return result, nil
}

// executeStep calls one procedure, drains its rows and checks the step's
// expect clause.
func (h *Harness) executeStep(ctx context.Context, index int, step Step, result *Result) error {
	args, err := normalizeSlice(step.Args)
	if err != nil {
		return fmt.Errorf("failed to convert args: %w", err)
	}

	result.addEvent(TraceEvent{Type: EventCall, Procedure: step.Call, Args: args})

	logged := len(h.spy.Calls())
	var rows []ir.Row
	r, callErr := h.catalog.Call(ctx, step.Call, args)
	if callErr == nil {
		rows, callErr = r.Collect()
	}

	for _, c := range h.spy.Calls()[logged:] {
		result.addEvent(TraceEvent{
			Type:      EventLog,
			Procedure: step.Call,
			Level:     c.Level,
			Message:   c.Msg,
		})
	}

	named := h.namedRows(step.Call, rows)
	ev := TraceEvent{Type: EventResult, Procedure: step.Call, Rows: named}
	if callErr != nil {
		ev.Error = callErr.Error()
	}
	result.addEvent(ev)

	return checkExpect(index, step, named, callErr, result)
}

// namedRows keys each row by the procedure's output column names.
func (h *Harness) namedRows(name string, rows []ir.Row) []map[string]any {
	handle, ok := h.catalog.Get(name)
	if !ok || len(rows) == 0 {
		return nil
	}
	cols := handle.Signature().Outputs
	out := make([]map[string]any, len(rows))
	for i, row := range rows {
		m := make(map[string]any, len(cols))
		for j, col := range cols {
			if j < len(row) {
				m[col.Name] = row[j]
			}
		}
		out[i] = m
	}
	return out
}

func checkExpect(index int, step Step, rows []map[string]any, callErr error, result *Result) error {
	prefix := fmt.Sprintf("step %d (%s)", index, step.Call)

	switch {
	case step.Expect != nil && step.Expect.Error != "":
		if callErr == nil {
			result.AddError(fmt.Sprintf("%s: expected error containing %q, got %d row(s)", prefix, step.Expect.Error, len(rows)))
		} else if !strings.Contains(callErr.Error(), step.Expect.Error) {
			result.AddError(fmt.Sprintf("%s: expected error containing %q, got %q", prefix, step.Expect.Error, callErr.Error()))
		}
	case callErr != nil:
		result.AddError(fmt.Sprintf("%s: unexpected error: %v", prefix, callErr))
	case step.Expect != nil && step.Expect.Rows != nil:
		want := make([]map[string]any, len(step.Expect.Rows))
		for i, row := range step.Expect.Rows {
			v, err := procedure.NormalizeValue(row)
			if err != nil {
				return fmt.Errorf("failed to convert expected row %d: %w", i, err)
			}
			want[i] = v.(map[string]any)
		}
		if !rowsEqual(want, rows) {
			result.AddError(fmt.Sprintf("%s: expected rows %v, got %v", prefix, want, rows))
		}
	}
	return nil
}

func rowsEqual(a, b []map[string]any) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !reflect.DeepEqual(a[i], b[i]) {
			return false
		}
	}
	return true
}

// normalizeSlice converts YAML-decoded values (int, []interface{}, ...) to
// the procedure value model (int64, []any, ...). A nil slice becomes empty.
func normalizeSlice(values []any) ([]any, error) {
	out := make([]any, len(values))
	for i, v := range values {
		n, err := procedure.NormalizeValue(v)
		if err != nil {
			return nil, fmt.Errorf("[%d]: %w", i, err)
		}
		out[i] = n
	}
	return out, nil
}
