// Package harness runs procedure scenarios: a sequence of calls against a
// freshly compiled catalog, with expected rows or errors per call and
// assertions over the resulting trace and call log.
//
// # Scenario Format
//
// Scenarios are defined in YAML files with the following structure:
//
//	name: scenario_name
//	description: "What this scenario validates"
//	steps:
//	  - call: db.people.greet
//	    args: ["Bonnie"]
//	    expect:
//	      rows:
//	        - { greeting: "Hello, Bonnie!" }
//	  - call: db.people.greet
//	    args: [""]
//	    expect:
//	      error: "name must not be empty"
//	assertions:
//	  - type: trace_contains
//	    procedure: db.people.greet
//	    args: ["Bonnie"]
//	  - type: call_log
//	    procedure: db.people.greet
//	    rows: 1
//	    exhausted: true
//
// # Assertion Types
//
//   - trace_contains: a call to the procedure appears, optionally with exact args
//   - trace_order: procedures are first called in the given order
//   - trace_count: the procedure is called exactly N times
//   - call_log: the most recent recorded call to the procedure matches
//
// # Deterministic Testing
//
// Every run gets its own capability registry and catalog, fixed call IDs
// (call-1, call-2, ...), a deterministic clock, and a spy in place of the
// logging capability. Log calls made by procedures become trace events, so
// traces are identical across runs and can be compared with golden files.
//
// # Usage
//
//	scenario, err := harness.LoadScenario("testdata/scenarios/greet.yaml")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	result, err := harness.Run(ctx, scenario, demo.Group())
//	if !result.Pass {
//	    for _, msg := range result.Errors {
//	        log.Println(msg)
//	    }
//	}
package harness
