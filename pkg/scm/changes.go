package scm

import (
	"fmt"
	"io"

	git2go "github.com/libgit2/git2go/v34"

	"github.com/fnctui/fnc/pkg/textutil"
)

// ChangeAction classifies one side of a Change the way §3's F-card pairing
// merge does before the diff engine refines ADDED/REMOVED/MOD further:
// renames and copies still arrive here as Modify, since distinguishing them
// needs the prior-name comparison §4.3's RENAMED rule describes, done by the
// caller once it has both sides' content.
type ChangeAction int

const (
	Insert ChangeAction = iota
	Delete
	Modify
)

// ChangeEntry is one side (old or new) of a Change.
type ChangeEntry struct {
	Name string
	Hash Hash
	Size int64
	Mode uint16
}

// Change is one path's delta between two trees, named for whichever side is
// relevant to its Action: Insert only populates To, Delete only From, Modify
// both.
type Change struct {
	Action ChangeAction
	From   ChangeEntry
	To     ChangeEntry
}

// Changes is an ordered run of path-level deltas between two trees, in the
// order libgit2's own delta list reports them.
type Changes []*Change

// TreeDiff runs libgit2's tree differ over oldTree/newTree and classifies
// each delta into a Change. Identical tree hashes short-circuit to an empty
// result without invoking the differ at all — cheap for metadata-only
// commits where the file tree didn't move.
func TreeDiff(repo *Repository, oldTree, newTree *Tree) (Changes, error) {
	if oldTree != nil && newTree != nil && oldTree.Hash() == newTree.Hash() {
		return Changes{}, nil
	}

	diff, err := repo.DiffTreeToTree(oldTree, newTree)
	if err != nil {
		return nil, fmt.Errorf("diff trees: %w", err)
	}
	defer diff.Free()

	numDeltas, err := diff.NumDeltas()
	if err != nil {
		return nil, fmt.Errorf("get num deltas: %w", err)
	}

	out := make(Changes, 0, numDeltas)

	for i := range numDeltas {
		delta, err := diff.Delta(i)
		if err != nil {
			continue
		}

		if change := changeFromDelta(delta); change != nil {
			out = append(out, change)
		}
	}

	return out, nil
}

// changeFromDelta converts one libgit2 delta into a Change, or nil for delta
// kinds that carry no path-level content change (unmodified, ignored,
// untracked, type changes libgit2 itself doesn't resolve, unreadable,
// conflicted).
func changeFromDelta(delta git2go.DiffDelta) *Change {
	switch delta.Status {
	case git2go.DeltaAdded:
		return &Change{
			Action: Insert,
			To:     entryFromDiffFile(delta.NewFile),
		}
	case git2go.DeltaDeleted:
		return &Change{
			Action: Delete,
			From:   entryFromDiffFile(delta.OldFile),
		}
	case git2go.DeltaModified, git2go.DeltaRenamed, git2go.DeltaCopied:
		return &Change{
			Action: Modify,
			From:   entryFromDiffFile(delta.OldFile),
			To:     entryFromDiffFile(delta.NewFile),
		}
	default:
		return nil
	}
}

func entryFromDiffFile(f git2go.DiffFile) ChangeEntry {
	return ChangeEntry{Name: f.Path, Hash: f.Hash, Size: f.Size}
}

// InitialTreeChanges synthesizes an Insert Change for every blob in tree,
// the shape a root checkin's changeset takes: every tracked path is new
// because there is no parent tree to diff against.
func InitialTreeChanges(repo *Repository, tree *Tree) (Changes, error) {
	if tree == nil {
		return nil, nil
	}

	var out Changes

	err := forEachBlob(repo, tree, "", func(path string, entry *TreeEntry) error {
		out = append(out, &Change{
			Action: Insert,
			To:     ChangeEntry{Name: path, Hash: entry.Hash()},
		})

		return nil
	})
	if err != nil {
		return nil, err
	}

	return out, nil
}

// forEachBlob walks tree depth-first, invoking visit with the repo-relative
// path of every blob entry reachable from it (directories are descended
// into, never visited themselves). A subtree this repository can't look up
// is skipped rather than failing the whole walk, since a dangling tree OID
// shouldn't stop the rest of a large checkin from rendering.
func forEachBlob(repo *Repository, tree *Tree, prefix string, visit func(path string, entry *TreeEntry) error) error {
	for i := range tree.EntryCount() {
		entry := tree.EntryByIndex(i)
		if entry == nil {
			continue
		}

		path := entry.Name()
		if prefix != "" {
			path = prefix + "/" + path
		}

		if entry.IsBlob() {
			if err := visit(path, entry); err != nil {
				return err
			}

			continue
		}

		if entry.Type() != git2go.ObjectTree {
			continue
		}

		subtree, err := repo.LookupTree(entry.Hash())
		if err != nil {
			continue
		}

		err = forEachBlob(repo, subtree, path, visit)
		subtree.Free()

		if err != nil {
			return err
		}
	}

	return nil
}

// File is one blob reachable from a tree walk, with its repo-relative path
// attached and its content fetched lazily through repo.
type File struct {
	Name string
	Hash Hash
	Mode uint16
	repo *Repository
}

// Contents fetches and returns the file's blob content.
func (f *File) Contents() ([]byte, error) {
	blob, err := f.repo.LookupBlob(f.Hash)
	if err != nil {
		return nil, err
	}
	defer blob.Free()

	return blob.Contents(), nil
}

// Reader adapts Contents to an io.ReadCloser.
func (f *File) Reader() (io.ReadCloser, error) {
	data, err := f.Contents()
	if err != nil {
		return nil, err
	}

	return textutil.Reader(data), nil
}

// Blob looks up and returns the underlying blob object for this file.
func (f *File) Blob() (*Blob, error) {
	return f.repo.LookupBlob(f.Hash)
}

// TreeFiles flattens every blob reachable from tree into a slice of Files,
// the full working-set a tree view or an initial-changeset computation needs
// rather than a streaming callback.
func TreeFiles(repo *Repository, tree *Tree) ([]*File, error) {
	var files []*File

	err := forEachBlob(repo, tree, "", func(path string, entry *TreeEntry) error {
		files = append(files, &File{Name: path, Hash: entry.Hash(), repo: repo})

		return nil
	})
	if err != nil {
		return nil, err
	}

	return files, nil
}
