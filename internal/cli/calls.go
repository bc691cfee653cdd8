package cli

import (
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"
)

// CallsOptions holds flags for the calls command.
type CallsOptions struct {
	*RootOptions
	Limit int
}

// NewCallsCommand creates the calls command.
func NewCallsCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &CallsOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "calls",
		Short: "Show recent procedure calls from the store",
		Long: `Show the most recent procedure calls, newest first.

Calls are only kept across runs when store.path is set in the config file.

Example:
  procrt calls --config procrt.cue --limit 5`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return showCalls(opts, cmd)
		},
	}

	cmd.Flags().IntVarP(&opts.Limit, "limit", "n", 20, "maximum number of calls to show (0 for all)")

	return cmd
}

func showCalls(opts *CallsOptions, cmd *cobra.Command) error {
	if opts.Limit < 0 {
		return NewExitError(ExitCommandError, "--limit must not be negative")
	}

	rt, err := openRuntime(cmd.Context(), opts.RootOptions, cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	defer rt.Close()

	if rt.store == nil {
		return NewExitError(ExitCommandError, "no store configured: set store.path in the config file")
	}

	records, err := rt.store.ReadCalls(cmd.Context(), opts.Limit)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to read calls", err)
	}

	f := &OutputFormatter{Format: opts.Format, Writer: cmd.OutOrStdout()}
	if f.Structured() {
		return f.Success(records)
	}

	tw := newTable(cmd.OutOrStdout())
	fmt.Fprintln(tw, "ID\tPROCEDURE\tROWS\tEXHAUSTED\tSTARTED\tERROR")
	for _, r := range records {
		fmt.Fprintf(tw, "%s\t%s\t%d\t%s\t%s\t%s\n",
			r.ID,
			r.Procedure,
			r.Rows,
			strconv.FormatBool(r.Exhausted),
			r.StartedAt.UTC().Format(time.RFC3339),
			r.Error)
	}
	return tw.Flush()
}
