// Package commands implements fnc's CLI subcommands.
package commands

import (
	"fmt"
	"log/slog"

	git2go "github.com/libgit2/git2go/v34"

	"github.com/fnctui/fnc/pkg/config"
	"github.com/fnctui/fnc/pkg/scm"
)

// openRepository resolves the repository path from either an explicit flag
// or the configured default, falling back to the current directory and
// letting the underlying SCM library discover the repository root from
// there.
func openRepository(cfg *config.Config, path string) (*scm.Repository, error) {
	if path == "" {
		path = cfg.Repository.Path
	}

	if path == "" {
		path = "."
	}

	repo, err := scm.OpenRepository(path)
	if err != nil {
		return nil, fmt.Errorf("open repository at %q: %w", path, err)
	}

	slog.Debug("opened repository", "path", path)

	return repo, nil
}

// resolveCommit resolves a commit-ish (full hash, unambiguous hash prefix,
// branch, tag, or HEAD) to a Commit; a sufficiently long hash prefix
// resolves the same commit as the full hash.
func resolveCommit(repo *scm.Repository, rev string) (*scm.Commit, error) {
	if rev == "" {
		rev = "HEAD"
	}

	obj, err := repo.Native().RevparseSingle(rev)
	if err != nil {
		return nil, fmt.Errorf("resolve %q: %w", rev, err)
	}
	defer obj.Free()

	peeled, err := obj.Peel(git2go.ObjectCommit)
	if err != nil {
		return nil, fmt.Errorf("resolve %q to a commit: %w", rev, err)
	}
	defer peeled.Free()

	commit, err := repo.LookupCommit(scm.HashFromOid(peeled.Id()))
	if err != nil {
		return nil, fmt.Errorf("lookup commit %q: %w", rev, err)
	}

	return commit, nil
}
