package harness

import "github.com/roach88/procrt/internal/catalog"

// Trace event types.
const (
	EventCall   = "call"
	EventLog    = "log"
	EventResult = "result"
)

// TraceEvent is one entry of a run's trace: a call, a log line written
// by the procedure through its injected Log, or the call's result.
type TraceEvent struct {
	Type      string           `json:"type"`
	Procedure string           `json:"procedure"`
	Args      []any            `json:"args,omitempty"`
	Level     string           `json:"level,omitempty"`
	Message   string           `json:"message,omitempty"`
	Rows      []map[string]any `json:"rows,omitempty"`
	Error     string           `json:"error,omitempty"`
	Seq       int64            `json:"seq"`
}

// Result is the outcome of a scenario run.
type Result struct {
	// Pass is true when every expect clause and assertion held.
	Pass bool `json:"pass"`

	// Trace holds calls, log lines and results in order.
	Trace []TraceEvent `json:"trace"`

	// Errors explains each failed expectation. Empty if Pass is true.
	Errors []string `json:"errors,omitempty"`

	// Calls is the call log at the end of the run, newest first.
	Calls []catalog.CallRecord `json:"calls,omitempty"`
}

// NewResult creates a new passing result.
func NewResult() *Result {
	return &Result{
		Pass:   true,
		Trace:  []TraceEvent{},
		Errors: []string{},
	}
}

// AddError adds a failure message and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}

func (r *Result) addEvent(ev TraceEvent) {
	ev.Seq = int64(len(r.Trace) + 1)
	r.Trace = append(r.Trace, ev)
}
