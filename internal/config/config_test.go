package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "text", cfg.Log.Format)
	assert.Equal(t, "", cfg.Store.Path)
	assert.Equal(t, []string{"*"}, cfg.Procedures.Allow)
	assert.Equal(t, 100, cfg.Procedures.RetainCalls)
}

func TestParse_Overrides(t *testing.T) {
	cfg, err := Parse([]byte(`
log: level: "debug"
store: path: "/var/lib/procrt/procrt.db"
procedures: allow: ["db.people.*", "dbms.*"]
`), "procrt.cue")
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "text", cfg.Log.Format, "unset fields keep their defaults")
	assert.Equal(t, "/var/lib/procrt/procrt.db", cfg.Store.Path)
	assert.Equal(t, []string{"db.people.*", "dbms.*"}, cfg.Procedures.Allow)
}

func TestParse_RejectsInvalidValues(t *testing.T) {
	tests := []struct {
		name string
		data string
		want string
	}{
		{"unknown level", `log: level: "loud"`, "log.level"},
		{"unknown format", `log: format: "xml"`, "log.format"},
		{"non-positive retain", `procedures: retain_calls: 0`, "procedures.retain_calls"},
		{"syntax error", `log: {`, "procrt.cue"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.data), "procrt.cue")
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "procrt.cue")
	require.NoError(t, os.WriteFile(path, []byte(`log: format: "json"`), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "json", cfg.Log.Format)

	cfg, err = Load("")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)

	_, err = Load(filepath.Join(t.TempDir(), "missing.cue"))
	assert.ErrorContains(t, err, "read config")
}
