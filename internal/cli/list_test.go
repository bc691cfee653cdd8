package cli

import (
	"encoding/json"
	"testing"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func newGoldie(t *testing.T) *goldie.Goldie {
	return goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
}

func TestList_Text(t *testing.T) {
	out, errOut, err := execute(t, "list")
	require.NoError(t, err)
	assert.Empty(t, errOut)

	newGoldie(t).Assert(t, "list_text", []byte(out))
}

func TestList_JSONHonoursAllowlist(t *testing.T) {
	path := writeConfig(t, `procedures: allow: ["db.people.greet"]`)

	out, _, err := execute(t, "--config", path, "--format", "json", "list")
	require.NoError(t, err)

	newGoldie(t).Assert(t, "list_json_greet", []byte(out))
}

func TestList_YAML(t *testing.T) {
	path := writeConfig(t, `procedures: allow: ["db.people.*"]`)

	out, _, err := execute(t, "--config", path, "--format", "yaml", "list")
	require.NoError(t, err)

	var resp struct {
		Status string `yaml:"status"`
		Data   []struct {
			Namespace []string `yaml:"namespace"`
			Name      string   `yaml:"name"`
			Outputs   []struct {
				Name string `yaml:"name"`
				Type string `yaml:"type"`
			} `yaml:"outputs"`
		} `yaml:"data"`
	}
	require.NoError(t, yaml.Unmarshal([]byte(out), &resp))

	assert.Equal(t, "ok", resp.Status)
	require.Len(t, resp.Data, 4)
	assert.Equal(t, []string{"db", "people"}, resp.Data[1].Namespace)
	assert.Equal(t, "listBananaOwningPeople", resp.Data[1].Name)
	require.Len(t, resp.Data[1].Outputs, 2)
	assert.Equal(t, "bananas", resp.Data[1].Outputs[1].Name)
	assert.Equal(t, "INTEGER", resp.Data[1].Outputs[1].Type)
}

func TestList_VerboseLogsCompilation(t *testing.T) {
	_, errOut, err := execute(t, "--verbose", "list")
	require.NoError(t, err)

	assert.Contains(t, errOut, "procedure compiled")
	assert.Contains(t, errOut, "db.people.greet")
}

func TestList_JSONLogFormat(t *testing.T) {
	path := writeConfig(t, `log: {level: "debug", format: "json"}`)

	_, errOut, err := execute(t, "--config", path, "list")
	require.NoError(t, err)

	lines := splitLines(errOut)
	require.NotEmpty(t, lines)
	for _, line := range lines {
		var entry map[string]any
		require.NoError(t, json.Unmarshal([]byte(line), &entry), line)
		assert.Equal(t, "DEBUG", entry["level"])
	}
}
