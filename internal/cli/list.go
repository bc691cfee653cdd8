package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// NewListCommand creates the list command.
func NewListCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List the compiled procedures",
		Long: `List every procedure in the catalog with its signature.

Example:
  procrt list
  procrt list --format yaml`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return listProcedures(rootOpts, cmd)
		},
	}
	return cmd
}

func listProcedures(opts *RootOptions, cmd *cobra.Command) error {
	rt, err := openRuntime(cmd.Context(), opts, cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	defer rt.Close()

	sigs := rt.catalog.Signatures()

	f := &OutputFormatter{Format: opts.Format, Writer: cmd.OutOrStdout()}
	if f.Structured() {
		return f.Success(sigs)
	}

	w := cmd.OutOrStdout()
	for _, sig := range sigs {
		fmt.Fprintln(w, sig.String())
		if sig.Description != "" {
			fmt.Fprintf(w, "    %s\n", sig.Description)
		}
	}
	return nil
}
