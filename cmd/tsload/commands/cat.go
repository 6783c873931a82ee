package commands

import "github.com/spf13/cobra"

func (c *CLI) newCatCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "cat <name>",
		Short: "Print a file the way the loader serves it",
		Long: "Print a file through the loader. Names ending in .ts or .ts.js are " +
			"compiled; every other name is printed unchanged.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.app.Cat(cmd.Context(), args[0], cmd.OutOrStdout())
		},
	}
}
