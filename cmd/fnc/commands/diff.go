package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/fnctui/fnc/pkg/artifact"
	"github.com/fnctui/fnc/pkg/config"
	"github.com/fnctui/fnc/pkg/diffengine"
	"github.com/fnctui/fnc/pkg/scm"
	"github.com/fnctui/fnc/pkg/ui"
)

type diffOptions struct {
	noColor          bool
	invert           bool
	quiet            bool
	ignoreWhitespace bool
	contextLines     int
	cfgFile          string
}

// NewDiffCommand builds the `diff` subcommand.
func NewDiffCommand() *cobra.Command {
	opts := &diffOptions{contextLines: diffengine.DefaultContextLines}

	cmd := &cobra.Command{
		Use:   "diff [commit [commit]]",
		Short: "Show a checkin's diff against its parent",
		Args:  cobra.MaximumNArgs(2),
		RunE: func(_ *cobra.Command, args []string) error {
			return runDiff(opts, args)
		},
	}

	cmd.Flags().BoolVarP(&opts.noColor, "no-color", "C", false, "disable coloured output (enabled by default)")
	cmd.Flags().BoolVarP(&opts.invert, "invert", "i", false, "invert the diff direction")
	cmd.Flags().BoolVarP(&opts.quiet, "quiet", "q", false, "suppress the header/changeset summary")
	cmd.Flags().BoolVarP(&opts.ignoreWhitespace, "ignore-whitespace", "w", false, "accepted but not applied: whitespace-only changes are still shown")
	cmd.Flags().IntVarP(&opts.contextLines, "context", "x", diffengine.DefaultContextLines, "number of context lines")
	cmd.Flags().StringVar(&opts.cfgFile, "config", "", "configuration file path")

	return cmd
}

// artifactFromCommit builds the synthetic Artifact a Diff View needs from a
// live commit handle, the way ui.NewDiffViewFromHash does for blame
// pivots that have no Producer-backed queue entry.
func artifactFromCommit(rid int, c *scm.Commit) *artifact.Artifact {
	var parentHash *string

	if c.NumParents() > 0 {
		h := c.ParentHash(0).String()
		parentHash = &h
	}

	author := c.Author()

	return artifact.New(rid, 0, c.Hash().String(), parentHash, author.Name, author.When, c.Message(), "", artifact.TypeCheckin, nil)
}

func runDiff(opts *diffOptions, args []string) error {
	cfg, err := config.LoadConfig(opts.cfgFile)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	repo, err := openRepository(cfg, "")
	if err != nil {
		return err
	}
	defer repo.Free()

	targetRev, parentRev := "", ""

	switch len(args) {
	case 1:
		targetRev = args[0]
	case 2:
		parentRev, targetRev = args[0], args[1]
	}

	target, err := resolveCommit(repo, targetRev)
	if err != nil {
		return err
	}
	defer target.Free()

	targetArtifact := artifactFromCommit(1, target)

	var parentCommit *scm.Commit

	switch {
	case parentRev != "":
		parentCommit, err = resolveCommit(repo, parentRev)
		if err != nil {
			return err
		}

		defer parentCommit.Free()
	case target.NumParents() > 0:
		parentCommit, err = target.Parent(0)
		if err != nil {
			return fmt.Errorf("load parent commit: %w", err)
		}

		defer parentCommit.Free()
	}

	var parentArtifact *artifact.Artifact

	if parentCommit != nil {
		parentArtifact = artifactFromCommit(0, parentCommit)
		targetArtifact.ParentRID = 0
	}

	view := ui.NewDiffViewWithOptions(repo, targetArtifact, parentArtifact, diffengine.Options{
		ContextLines:     opts.contextLines,
		ShowMeta:         !opts.quiet,
		Invert:           opts.invert,
		IgnoreWhitespace: opts.ignoreWhitespace,
		Cache:            sharedDiffCache(cfg),
		Metrics:          sharedMetrics(),
	})
	view.SetColorEnabled(!opts.noColor)

	return runLoop(view)
}
