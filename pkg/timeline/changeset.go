package timeline

import (
	"fmt"

	"github.com/fnctui/fnc/pkg/artifact"
	"github.com/fnctui/fnc/pkg/scm"
)

// DefaultChangesetBuilder classifies a commit's changeset against its
// primary parent using scm.TreeDiff. It distinguishes ADDED/REMOVED/MOD but
// not RENAMED: no rename detection is run, so a rename shows as REMOVED plus
// ADDED. This builder only needs to serve the timeline's lazy
// Artifact.Changeset(), which most rows never call.
func DefaultChangesetBuilder(repo *scm.Repository, hash scm.Hash, parentHash *scm.Hash) ([]artifact.ChangesetEntry, error) {
	commit, err := repo.LookupCommit(hash)
	if err != nil {
		return nil, fmt.Errorf("lookup commit %s: %w", hash, err)
	}
	defer commit.Free()

	newTree, err := commit.Tree()
	if err != nil {
		return nil, fmt.Errorf("commit tree: %w", err)
	}
	defer newTree.Free()

	var changes scm.Changes

	if parentHash == nil {
		changes, err = scm.InitialTreeChanges(repo, newTree)
		if err != nil {
			return nil, fmt.Errorf("initial tree changes: %w", err)
		}
	} else {
		parent, parentErr := repo.LookupCommit(*parentHash)
		if parentErr != nil {
			return nil, fmt.Errorf("lookup parent %s: %w", parentHash, parentErr)
		}
		defer parent.Free()

		parentTree, treeErr := parent.Tree()
		if treeErr != nil {
			return nil, fmt.Errorf("parent tree: %w", treeErr)
		}
		defer parentTree.Free()

		changes, err = scm.TreeDiff(repo, parentTree, newTree)
		if err != nil {
			return nil, fmt.Errorf("tree diff: %w", err)
		}
	}

	entries := make([]artifact.ChangesetEntry, 0, len(changes))

	for _, change := range changes {
		entries = append(entries, changesetEntryFromChange(change))
	}

	return entries, nil
}

func changesetEntryFromChange(change *scm.Change) artifact.ChangesetEntry {
	switch change.Action {
	case scm.Insert:
		return artifact.ChangesetEntry{Name: change.To.Name, Hash: change.To.Hash.String(), Kind: artifact.Added}
	case scm.Delete:
		return artifact.ChangesetEntry{Name: change.From.Name, Hash: change.From.Hash.String(), Kind: artifact.Removed}
	case scm.Modify:
		return artifact.ChangesetEntry{Name: change.To.Name, Hash: change.To.Hash.String(), Kind: artifact.Mod}
	default:
		return artifact.ChangesetEntry{Name: change.To.Name, Hash: change.To.Hash.String(), Kind: artifact.Mod}
	}
}
