package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/fnctui/fnc/pkg/config"
	"github.com/fnctui/fnc/pkg/ui"
)

type treeOptions struct {
	noColor bool
	commit  string
	path    string
	cfgFile string
}

// NewTreeCommand builds the `tree` subcommand.
func NewTreeCommand() *cobra.Command {
	opts := &treeOptions{}

	cmd := &cobra.Command{
		Use:   "tree [path]",
		Short: "Browse a checkin's file tree",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			if len(args) == 1 {
				opts.path = args[0]
			}

			return runTree(opts)
		},
	}

	cmd.Flags().BoolVarP(&opts.noColor, "no-color", "C", false, "disable coloured output (enabled by default)")
	cmd.Flags().StringVarP(&opts.commit, "commit", "c", "", "checkin to browse (default HEAD)")
	cmd.Flags().StringVar(&opts.cfgFile, "config", "", "configuration file path")

	return cmd
}

func runTree(opts *treeOptions) error {
	cfg, err := config.LoadConfig(opts.cfgFile)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	repo, err := openRepository(cfg, "")
	if err != nil {
		return err
	}
	defer repo.Free()

	commit, err := resolveCommit(repo, opts.commit)
	if err != nil {
		return err
	}
	defer commit.Free()

	view, err := ui.NewTreeViewAtPath(repo, commit.Hash().String(), opts.path)
	if err != nil {
		return fmt.Errorf("open tree: %w", err)
	}

	view.SetColorEnabled(!opts.noColor)

	return runLoop(view)
}
