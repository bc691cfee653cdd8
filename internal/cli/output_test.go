package cli

import (
	"bytes"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestOutputFormatter_JSONSuccess(t *testing.T) {
	buf := &bytes.Buffer{}
	formatter := &OutputFormatter{
		Format: "json",
		Writer: buf,
	}

	data := map[string]string{"result": "success"}
	err := formatter.Success(data)
	require.NoError(t, err)

	var resp CLIResponse
	err = json.Unmarshal(buf.Bytes(), &resp)
	require.NoError(t, err)
	assert.Equal(t, "ok", resp.Status)
	assert.NotNil(t, resp.Data)
}

func TestOutputFormatter_JSONError(t *testing.T) {
	buf := &bytes.Buffer{}
	formatter := &OutputFormatter{
		Format: "json",
		Writer: buf,
	}

	err := formatter.Error(NewExitError(ExitCommandError, "unknown procedure"))
	require.NoError(t, err)

	var resp CLIResponse
	err = json.Unmarshal(buf.Bytes(), &resp)
	require.NoError(t, err)
	assert.Equal(t, "error", resp.Status)
	require.NotNil(t, resp.Error)
	assert.Equal(t, ExitCommandError, resp.Error.Code)
	assert.Equal(t, "unknown procedure", resp.Error.Message)
}

func TestOutputFormatter_YAMLSuccess(t *testing.T) {
	buf := &bytes.Buffer{}
	formatter := &OutputFormatter{
		Format: "yaml",
		Writer: buf,
	}

	require.NoError(t, formatter.Success(map[string]int{"count": 42}))
	assert.Equal(t, "status: ok\ndata:\n  count: 42\n", buf.String())
}

func TestOutputFormatter_TextSuccess(t *testing.T) {
	buf := &bytes.Buffer{}
	formatter := &OutputFormatter{
		Format: "text",
		Writer: buf,
	}

	err := formatter.Success("all good")
	require.NoError(t, err)
	assert.Equal(t, "all good\n", buf.String())
}

func TestOutputFormatter_TextError(t *testing.T) {
	buf := &bytes.Buffer{}
	formatter := &OutputFormatter{
		Format: "text",
		Writer: buf,
	}

	err := formatter.Error(errors.New("call failed"))
	require.NoError(t, err)
	assert.Equal(t, "Error: call failed\n", buf.String())
}

func TestOutputFormatter_Structured(t *testing.T) {
	assert.True(t, (&OutputFormatter{Format: "json"}).Structured())
	assert.True(t, (&OutputFormatter{Format: "yaml"}).Structured())
	assert.False(t, (&OutputFormatter{Format: "text"}).Structured())
}

func TestGetExitCode(t *testing.T) {
	assert.Equal(t, ExitSuccess, GetExitCode(nil))
	assert.Equal(t, ExitFailure, GetExitCode(errors.New("plain")))
	assert.Equal(t, ExitCommandError, GetExitCode(NewExitError(ExitCommandError, "bad flag")))

	wrapped := WrapExitError(ExitFailure, "call failed", errors.New("boom"))
	assert.Equal(t, "call failed: boom", wrapped.Error())
	assert.Equal(t, "boom", errors.Unwrap(wrapped).Error())
}

func TestCLIResponse_YAMLRoundTrip(t *testing.T) {
	resp := CLIResponse{
		Status: "error",
		Error:  &CLIError{Code: 2, Message: "no store configured"},
	}

	data, err := yaml.Marshal(resp)
	require.NoError(t, err)

	var decoded CLIResponse
	require.NoError(t, yaml.Unmarshal(data, &decoded))
	assert.Equal(t, resp.Status, decoded.Status)
	assert.Equal(t, resp.Error, decoded.Error)
}
