package cli

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/procrt/internal/catalog"
	"github.com/roach88/procrt/internal/ir"
)

// CallOptions holds flags for the call command.
type CallOptions struct {
	*RootOptions
	Args string
}

// CallResult is the structured output of the call command.
type CallResult struct {
	Procedure string   `json:"procedure" yaml:"procedure"`
	Columns   []string `json:"columns" yaml:"columns"`
	Rows      []ir.Row `json:"rows" yaml:"rows"`
}

// NewCallCommand creates the call command.
func NewCallCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &CallOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "call <qualified-name>",
		Short: "Call a procedure and print its rows",
		Long: `Call a procedure by qualified name and print every row it produces.

Arguments are positional and given as a JSON array.

Example:
  procrt call db.people.listCoolPeople
  procrt call db.people.greet --args '["Bonnie"]'`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return callProcedure(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Args, "args", "[]", "positional arguments as a JSON array")

	return cmd
}

func callProcedure(opts *CallOptions, name string, cmd *cobra.Command) error {
	args, err := decodeArgs(opts.Args)
	if err != nil {
		return WrapExitError(ExitCommandError, "invalid --args JSON", err)
	}

	rt, err := openRuntime(cmd.Context(), opts.RootOptions, cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	defer rt.Close()

	h, ok := rt.catalog.Get(name)
	if !ok {
		return WrapExitError(ExitCommandError, "unknown procedure", fmt.Errorf("%w: %s", catalog.ErrNotFound, name))
	}

	rows, err := rt.catalog.Call(rt.withLogger(cmd.Context()), name, args)
	if err != nil {
		return WrapExitError(ExitFailure, "call failed", err)
	}
	defer rows.Close()

	result := CallResult{Procedure: name, Rows: []ir.Row{}}
	for _, col := range h.Signature().Outputs {
		result.Columns = append(result.Columns, col.Name)
	}
	collected, callErr := rows.Collect()
	result.Rows = append(result.Rows, collected...)

	// Rows produced before a failure are still printed.
	f := &OutputFormatter{Format: opts.Format, Writer: cmd.OutOrStdout()}
	if f.Structured() {
		if err := f.Success(result); err != nil {
			return err
		}
	} else {
		writeRows(cmd.OutOrStdout(), result)
	}

	if callErr != nil {
		return WrapExitError(ExitFailure, "call failed", callErr)
	}
	return nil
}

// decodeArgs parses a JSON array. Whole numbers become int64, other numbers
// float64.
func decodeArgs(s string) ([]any, error) {
	dec := json.NewDecoder(strings.NewReader(s))
	dec.UseNumber()

	var raw []any
	if err := dec.Decode(&raw); err != nil {
		return nil, err
	}
	if dec.More() {
		return nil, errors.New("unexpected data after the argument array")
	}
	if raw == nil {
		return nil, errors.New("arguments must be a JSON array")
	}
	for i, v := range raw {
		raw[i] = ir.FromJSONNumbers(v)
	}
	return raw, nil
}

// writeRows renders rows as aligned columns followed by a row count.
func writeRows(w io.Writer, result CallResult) {
	tw := newTable(w)
	fmt.Fprintln(tw, strings.Join(result.Columns, "\t"))
	for _, row := range result.Rows {
		cells := make([]string, len(row))
		for i, v := range row {
			cells[i] = formatCell(v)
		}
		fmt.Fprintln(tw, strings.Join(cells, "\t"))
	}
	tw.Flush()

	if len(result.Rows) == 1 {
		fmt.Fprintln(w, "(1 row)")
	} else {
		fmt.Fprintf(w, "(%d rows)\n", len(result.Rows))
	}
}

func formatCell(v any) string {
	switch v := v.(type) {
	case nil:
		return "null"
	case string:
		return v
	}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return fmt.Sprint(v)
	}
	return strings.TrimSuffix(buf.String(), "\n")
}
