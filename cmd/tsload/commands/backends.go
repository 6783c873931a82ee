package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"go.trai.ch/tsload/internal/ui/style"
)

func (c *CLI) newBackendsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "backends",
		Short: "List compiler backends in priority order",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			statuses, err := c.app.Backends(cmd.Context())
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			for _, s := range statuses {
				detail := strings.ReplaceAll(s.Reason, "\n", ": ")
				switch {
				case s.Selected:
					detail = "selected"
				case s.Available:
					detail = "available"
				}
				_, _ = fmt.Fprintf(out, "%s %-7s %s\n", style.Status(s.Available), s.Kind, detail)
			}
			return nil
		},
	}
}
