package commands

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/fnctui/fnc/pkg/blame"
	"github.com/fnctui/fnc/pkg/config"
	"github.com/fnctui/fnc/pkg/ui"
)

// ErrReverseRequiresCommit is returned because -r is meaningless without an
// explicit starting commit to walk backward from.
var ErrReverseRequiresCommit = errors.New("blame: -r/--reverse requires -c/--commit")

type blameOptions struct {
	commit  string
	reverse bool
	limit   int
	cfgFile string
}

// NewBlameCommand builds the `blame` subcommand.
func NewBlameCommand() *cobra.Command {
	opts := &blameOptions{}

	cmd := &cobra.Command{
		Use:   "blame path",
		Short: "Annotate each line of a file with its introducing commit",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			return runBlame(opts, args[0])
		},
	}

	cmd.Flags().StringVarP(&opts.commit, "commit", "c", "", "starting commit (default HEAD)")
	cmd.Flags().BoolVarP(&opts.reverse, "reverse", "r", false, "bound the blame walk at --commit instead of the root commit (requires -c)")
	cmd.Flags().IntVarP(&opts.limit, "limit", "n", 0, "limit annotation to the first N lines (0 = unbounded)")
	cmd.Flags().StringVar(&opts.cfgFile, "config", "", "configuration file path")

	return cmd
}

func runBlame(opts *blameOptions, path string) error {
	if opts.reverse && opts.commit == "" {
		return ErrReverseRequiresCommit
	}

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

	blameOpts := blame.Options{Metrics: sharedMetrics(), BlobCache: sharedBlobCache(cfg)}
	if opts.limit > 0 {
		blameOpts.MaxLine = opts.limit
	}

	if opts.reverse {
		blameOpts.OldestCommit = commit.Hash()
	}

	view, err := ui.NewBlameViewWithOptions(repo, commit.Hash().String(), path, blameOpts)
	if err != nil {
		return fmt.Errorf("open blame: %w", err)
	}

	return runLoop(view)
}
