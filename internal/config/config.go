// Package config loads procrt configuration from a CUE file validated
// against an embedded schema.
package config

import (
	_ "embed"
	"fmt"
	"os"
	"strings"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"cuelang.org/go/cue/errors"
)

//go:embed schema.cue
var schemaCUE []byte

// schemaPath is the root definition in schema.cue.
const schemaPath = "#Config"

// Config is the decoded configuration.
type Config struct {
	Log        LogConfig        `json:"log"`
	Store      StoreConfig      `json:"store"`
	Procedures ProceduresConfig `json:"procedures"`
}

// LogConfig controls the host's slog handler.
type LogConfig struct {
	Level  string `json:"level"`
	Format string `json:"format"`
}

// StoreConfig locates the SQLite store.
type StoreConfig struct {
	Path string `json:"path"`
}

// ProceduresConfig controls which procedures are registered.
type ProceduresConfig struct {
	Allow       []string `json:"allow"`
	RetainCalls int      `json:"retain_calls"`
}

// Default returns the configuration an empty file produces.
func Default() *Config {
	cfg, err := Parse(nil, "<default>")
	if err != nil {
		// The embedded schema is part of the binary; failing here is a bug.
		panic(fmt.Sprintf("config: default configuration invalid: %v", err))
	}
	return cfg
}

// Load reads and validates the file at path. An empty path returns the
// defaults.
func Load(path string) (*Config, error) {
	if path == "" {
		return Default(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	return Parse(data, path)
}

// Parse validates data against the schema and decodes it.
//
// The flow is: compile the schema, compile the data and unify it with
// #Config, validate that every field is concrete, then decode.
func Parse(data []byte, filename string) (*Config, error) {
	ctx := cuecontext.New()

	schema := ctx.CompileBytes(schemaCUE)
	if schema.Err() != nil {
		return nil, fmt.Errorf("internal error: failed to compile schema: %w", schema.Err())
	}

	user := ctx.CompileBytes(data, cue.Filename(filename))
	if user.Err() != nil {
		return nil, formatError(user.Err(), filename)
	}

	root := schema.LookupPath(cue.ParsePath(schemaPath))
	if root.Err() != nil {
		return nil, fmt.Errorf("internal error: schema definition %s not found: %w", schemaPath, root.Err())
	}

	unified := root.Unify(user)
	if err := unified.Validate(cue.Concrete(true)); err != nil {
		return nil, formatError(err, filename)
	}

	var cfg Config
	if err := unified.Decode(&cfg); err != nil {
		return nil, formatError(err, filename)
	}
	return &cfg, nil
}

// formatError flattens CUE errors into one message per offending field.
func formatError(err error, filename string) error {
	errs := errors.Errors(err)
	if len(errs) == 0 {
		return fmt.Errorf("%s: %w", filename, err)
	}

	lines := make([]string, 0, len(errs))
	for _, e := range errs {
		path := strings.Join(errors.Path(e), ".")
		msg := e.Error()
		if path != "" && !strings.HasPrefix(msg, path) {
			msg = path + ": " + msg
		}
		lines = append(lines, msg)
	}
	if len(lines) == 1 {
		return fmt.Errorf("%s: %s", filename, lines[0])
	}
	return fmt.Errorf("%s: validation failed:\n  %s", filename, strings.Join(lines, "\n  "))
}
