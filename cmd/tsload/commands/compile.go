package commands

import (
	"github.com/spf13/cobra"
	"go.trai.ch/tsload/internal/app"
)

func (c *CLI) newCompileCmd() *cobra.Command {
	var outDir string

	cmd := &cobra.Command{
		Use:   "compile <file.ts>...",
		Short: "Compile TypeScript files to JavaScript",
		Long: "Compile each file and print the JavaScript to stdout, " +
			"or write one .js file per input into the output directory.",
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.app.Compile(cmd.Context(), args, app.CompileOptions{
				OutDir: outDir,
				Stdout: cmd.OutOrStdout(),
			})
		},
	}

	cmd.Flags().StringVarP(&outDir, "out-dir", "o", "", "Write compiled files into this directory")

	return cmd
}
