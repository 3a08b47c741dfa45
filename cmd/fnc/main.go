// Package main provides the entry point for the fnc CLI tool.
package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/fnctui/fnc/cmd/fnc/commands"
	"github.com/fnctui/fnc/pkg/config"
	"github.com/fnctui/fnc/pkg/logging"
	"github.com/fnctui/fnc/pkg/version"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "fnc [path]",
		Short: "fnc browses a repository's history from the terminal",
		Long: `fnc is a read-only, keyboard-driven browser for a repository's history.

Commands:
  timeline  Browse the commit history (the default with no subcommand)
  diff      Show a checkin's diff against its parent
  tree      Browse a checkin's file tree
  blame     Annotate each line of a file with its introducing commit
  version   Show version information`,
		Args:          cobra.ArbitraryArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(*cobra.Command, []string) error {
			return initLogging()
		},
	}

	showVersion := rootCmd.Flags().BoolP("version", "v", false, "show version information")

	// The bare program is equivalent to `timeline`: borrow that subcommand's
	// flag set and handler directly onto the root command.
	timelineCmd := commands.NewTimelineCommand()
	rootCmd.RunE = func(cmd *cobra.Command, args []string) error {
		if *showVersion {
			fmt.Fprintf(cmd.OutOrStdout(), "fnc %s (commit: %s, built: %s)\n", version.Version, version.Commit, version.Date)

			return nil
		}

		return timelineCmd.RunE(cmd, args)
	}
	rootCmd.Flags().AddFlagSet(timelineCmd.Flags())

	rootCmd.AddCommand(timelineCmd)
	rootCmd.AddCommand(commands.NewDiffCommand())
	rootCmd.AddCommand(commands.NewTreeCommand())
	rootCmd.AddCommand(commands.NewBlameCommand())
	rootCmd.AddCommand(commands.NewVersionCommand())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "fnc: %v\n", err)
		os.Exit(1)
	}
}

// initLogging installs the structured logger built from configuration as the
// process-wide slog default before any subcommand runs. Since the TUI owns
// the terminal's alt-screen buffer for most of the process lifetime, this
// defaults to stderr (or a file) rather than stdout so log output never
// corrupts the rendered view.
func initLogging() error {
	cfg, err := config.LoadConfig("")
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger, err := logging.New(cfg.Logging)
	if err != nil {
		return fmt.Errorf("init logging: %w", err)
	}

	slog.SetDefault(logger)

	return nil
}
