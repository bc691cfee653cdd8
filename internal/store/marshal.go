package store

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/roach88/procrt/internal/ir"
)

// marshalJSON encodes v without HTML escaping, matching what the CLI prints.
func marshalJSON(v any) (string, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return "", err
	}
	// Encoder adds a trailing newline, remove it
	return strings.TrimSpace(buf.String()), nil
}

// marshalArgs converts call arguments to JSON TEXT for storage.
// Arguments may contain floats, so this is plain JSON rather than the
// canonical form used for fingerprints.
func marshalArgs(args []any) (string, error) {
	if args == nil {
		args = []any{}
	}
	data, err := marshalJSON(args)
	if err != nil {
		return "", fmt.Errorf("marshal args: %w", err)
	}
	return data, nil
}

// unmarshalArgs parses JSON TEXT back into arguments. Integral numbers
// become int64 so they round-trip without float64 precision loss.
func unmarshalArgs(data string) ([]any, error) {
	if data == "" || data == "[]" {
		return []any{}, nil
	}
	dec := json.NewDecoder(strings.NewReader(data))
	dec.UseNumber()
	var args []any
	if err := dec.Decode(&args); err != nil {
		return nil, fmt.Errorf("unmarshal args: %w", err)
	}
	for i, a := range args {
		args[i] = ir.FromJSONNumbers(a)
	}
	return args, nil
}

func marshalSignature(sig ir.Signature) (string, error) {
	data, err := marshalJSON(sig)
	if err != nil {
		return "", fmt.Errorf("marshal signature %s: %w", sig.QualifiedName(), err)
	}
	return data, nil
}

func unmarshalSignature(data string) (ir.Signature, error) {
	var sig ir.Signature
	if err := json.Unmarshal([]byte(data), &sig); err != nil {
		return ir.Signature{}, fmt.Errorf("unmarshal signature: %w", err)
	}
	return sig, nil
}
