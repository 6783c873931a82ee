package commands

import (
	"github.com/spf13/cobra"
	"go.trai.ch/tsload/internal/app"
)

func (c *CLI) newWatchCmd() *cobra.Command {
	var (
		outDir string
		root   string
	)

	cmd := &cobra.Command{
		Use:   "watch <file.ts>...",
		Short: "Recompile TypeScript files whenever their sources change",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.app.Watch(cmd.Context(), args, app.WatchOptions{
				CompileOptions: app.CompileOptions{
					OutDir: outDir,
					Stdout: cmd.OutOrStdout(),
				},
				Root: root,
			})
		},
	}

	cmd.Flags().StringVarP(&outDir, "out-dir", "o", "", "Write compiled files into this directory")
	cmd.Flags().StringVar(&root, "root", ".", "Directory to watch for changes")

	return cmd
}
