package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/fnctui/fnc/pkg/config"
	"github.com/fnctui/fnc/pkg/scm"
	"github.com/fnctui/fnc/pkg/ui"
)

type timelineOptions struct {
	tag     string
	branch  string
	commit  string
	limit   int
	types   []string
	user    string
	utc     bool
	path    string
	cfgFile string
}

// NewTimelineCommand builds the `timeline` subcommand, which the bare
// program also runs when invoked with no subcommand.
func NewTimelineCommand() *cobra.Command {
	opts := &timelineOptions{}

	cmd := &cobra.Command{
		Use:   "timeline [path]",
		Short: "Browse the commit history",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			if len(args) == 1 {
				opts.path = args[0]
			}

			return runTimeline(opts)
		},
	}

	cmd.Flags().StringVarP(&opts.tag, "tag", "T", "", "accepted but not applied: rows are not filtered by tag")
	cmd.Flags().StringVarP(&opts.branch, "branch", "b", "", "restrict to a branch")
	cmd.Flags().StringVarP(&opts.commit, "commit", "c", "", "start the timeline at this commit")
	cmd.Flags().IntVarP(&opts.limit, "limit", "n", 0, "limit the number of rows materialized (0 = unbounded)")
	cmd.Flags().StringSliceVarP(&opts.types, "type", "t", nil, "restrict to artifact types (repeatable)")
	cmd.Flags().StringVarP(&opts.user, "user", "u", "", "restrict to commits by this user")
	cmd.Flags().BoolVarP(&opts.utc, "utc", "z", false, "render timestamps in UTC")
	cmd.Flags().StringVar(&opts.cfgFile, "config", "", "configuration file path")

	return cmd
}

func runTimeline(opts *timelineOptions) error {
	cfg, err := config.LoadConfig(opts.cfgFile)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	repo, err := openRepository(cfg, "")
	if err != nil {
		return err
	}
	defer repo.Free()

	logOpts := &scm.LogOptions{}

	if opts.commit != "" {
		c, err := resolveCommit(repo, opts.commit)
		if err != nil {
			return err
		}

		hash := c.Hash()
		logOpts.Start = &hash

		c.Free()
	}

	view, err := ui.NewTimelineView(repo, logOpts, ui.TimelineFilter{
		Branch: opts.branch,
		Tag:    opts.tag,
		User:   opts.user,
		Path:   opts.path,
		Types:  opts.types,
		Limit:  opts.limit,
		UTC:    opts.utc,
	})
	if err != nil {
		return fmt.Errorf("open timeline: %w", err)
	}

	view.SetMetrics(sharedMetrics())

	return runLoop(view)
}
