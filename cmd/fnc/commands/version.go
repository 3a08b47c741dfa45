package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/fnctui/fnc/pkg/version"
)

// NewVersionCommand builds the `version` subcommand.
func NewVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "fnc %s (commit: %s, built: %s)\n", version.Version, version.Commit, version.Date)
		},
	}
}
