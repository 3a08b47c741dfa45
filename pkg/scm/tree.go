package scm

import (
	"context"
	"fmt"

	git2go "github.com/libgit2/git2go/v34"
)

// Tree wraps a libgit2 tree — the F-card-bearing object a checkin's root
// (or any subdirectory within it) resolves to.
type Tree struct {
	tree *git2go.Tree
	repo *Repository
}

func (t *Tree) Hash() Hash { return HashFromOid(t.tree.Id()) }

func (t *Tree) EntryCount() uint64 { return t.tree.EntryCount() }

// EntryByIndex returns the entry at position i, or nil if i is out of range.
func (t *Tree) EntryByIndex(i uint64) *TreeEntry {
	entry := t.tree.EntryByIndex(i)
	if entry == nil {
		return nil
	}

	return &TreeEntry{entry: entry}
}

// EntryByPath resolves a repo-relative path to its tree entry.
func (t *Tree) EntryByPath(path string) (*TreeEntry, error) {
	entry, err := t.tree.EntryByPath(path)
	if err != nil {
		return nil, fmt.Errorf("entry by path: %w", err)
	}

	return &TreeEntry{entry: entry}, nil
}

// FilesContext flattens every blob reachable from the tree, the way Files
// does, but accepts a context so a caller walking a very large tree can
// cancel partway through a future streaming implementation. ctx is not
// consulted yet — TreeFiles runs to completion synchronously — but callers
// should thread a real context through rather than context.Background() so
// that wiring is a one-line change later.
func (t *Tree) FilesContext(ctx context.Context) *FileIter {
	_ = ctx

	files, err := TreeFiles(t.repo, t)
	if err != nil {
		return &FileIter{}
	}

	return &FileIter{files: files}
}

// Files flattens every blob reachable from the tree into an iterator.
func (t *Tree) Files() *FileIter {
	return t.FilesContext(context.Background())
}

// Free releases the tree. Safe to call more than once.
func (t *Tree) Free() {
	if t.tree == nil {
		return
	}

	t.tree.Free()
	t.tree = nil
}

// Native exposes the underlying libgit2 tree.
func (t *Tree) Native() *git2go.Tree {
	return t.tree
}

// TreeEntry wraps one entry of a Tree: a named child that is either another
// tree (a directory) or a blob (a tracked file).
type TreeEntry struct {
	entry *git2go.TreeEntry
}

func (e *TreeEntry) Name() string { return e.entry.Name }

func (e *TreeEntry) Hash() Hash { return HashFromOid(e.entry.Id) }

func (e *TreeEntry) Type() git2go.ObjectType { return e.entry.Type }

// IsBlob reports whether this entry is a file rather than a subdirectory.
func (e *TreeEntry) IsBlob() bool {
	return e.entry.Type == git2go.ObjectBlob
}

// Filemode returns the entry's git file mode (regular, executable, symlink,
// tree), the source the tree view's display-decoration suffix (`*`, `@`,
// `/`) reads from.
func (e *TreeEntry) Filemode() git2go.Filemode {
	return e.entry.Filemode
}
