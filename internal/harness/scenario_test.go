package harness

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadScenario(t *testing.T) {
	scenario, err := LoadScenario("testdata/scenarios/people.yaml")
	require.NoError(t, err)

	assert.Equal(t, "people", scenario.Name)
	require.Len(t, scenario.Steps, 4)
	assert.Equal(t, "db.people.greet", scenario.Steps[2].Call)
	assert.Equal(t, []any{"Bonnie"}, scenario.Steps[2].Args)
	require.NotNil(t, scenario.Steps[3].Expect)
	assert.Equal(t, "name must not be empty", scenario.Steps[3].Expect.Error)

	require.Len(t, scenario.Assertions, 5)
	require.NotNil(t, scenario.Assertions[3].Rows)
	assert.Equal(t, 2, *scenario.Assertions[3].Rows)
}

func TestLoadScenario_MissingFile(t *testing.T) {
	_, err := LoadScenario(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorContains(t, err, "failed to read scenario file")
}

func TestLoadScenario_FromDisk(t *testing.T) {
	path := filepath.Join(t.TempDir(), "s.yaml")
	require.NoError(t, os.WriteFile(path, []byte("name: s\ndescription: d\nsteps:\n  - call: a.b\n"), 0o644))

	scenario, err := LoadScenario(path)
	require.NoError(t, err)
	assert.Nil(t, scenario.Steps[0].Expect)
}

func TestParseScenario_Invalid(t *testing.T) {
	tests := []struct {
		name string
		yaml string
		want string
	}{
		{"unknown field", "name: s\ndescription: d\nstep: []\n", "failed to parse YAML"},
		{"missing name", "description: d\nsteps: [{call: a}]\n", "name is required"},
		{"missing description", "name: s\nsteps: [{call: a}]\n", "description is required"},
		{"no steps", "name: s\ndescription: d\n", "steps list is required"},
		{"missing call", "name: s\ndescription: d\nsteps: [{args: [1]}]\n", "steps[0]: call is required"},
		{
			"rows and error",
			"name: s\ndescription: d\nsteps: [{call: a, expect: {rows: [{x: 1}], error: boom}}]\n",
			"mutually exclusive",
		},
		{
			"assertion without type",
			"name: s\ndescription: d\nsteps: [{call: a}]\nassertions: [{procedure: a}]\n",
			"assertions[0]: type is required",
		},
		{
			"unknown assertion",
			"name: s\ndescription: d\nsteps: [{call: a}]\nassertions: [{type: final_state}]\n",
			`unknown assertion type "final_state"`,
		},
		{
			"trace_order without procedures",
			"name: s\ndescription: d\nsteps: [{call: a}]\nassertions: [{type: trace_order}]\n",
			"procedures list is required",
		},
		{
			"negative count",
			"name: s\ndescription: d\nsteps: [{call: a}]\nassertions: [{type: trace_count, procedure: a, count: -1}]\n",
			"count must be non-negative",
		},
		{
			"empty call_log",
			"name: s\ndescription: d\nsteps: [{call: a}]\nassertions: [{type: call_log, procedure: a}]\n",
			"rows or exhausted is required",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseScenario([]byte(tt.yaml))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}
