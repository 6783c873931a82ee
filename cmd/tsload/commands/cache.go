package commands

import "github.com/spf13/cobra"

func (c *CLI) newCacheCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Manage the compilation cache",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "clean",
		Short: "Remove the disk cache directory",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return c.app.CleanCache(cmd.Context())
		},
	})

	return cmd
}
