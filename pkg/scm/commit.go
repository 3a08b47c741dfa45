package scm

import (
	"errors"
	"fmt"
	"io"
	"time"

	git2go "github.com/libgit2/git2go/v34"

	"github.com/fnctui/fnc/pkg/safeconv"
)

// ErrParentNotFound is returned when a requested parent index has no
// corresponding commit (out of range, or libgit2 failed to resolve it).
var ErrParentNotFound = errors.New("parent commit not found")

// Commit wraps a libgit2 commit with the Hash/Signature/Tree types this
// package exposes in place of raw git2go values.
type Commit struct {
	commit *git2go.Commit
	repo   *Repository
}

func (c *Commit) Hash() Hash { return HashFromOid(c.commit.Id()) }

// Author returns the commit's author identity.
func (c *Commit) Author() Signature { return signatureFrom(c.commit.Author()) }

// Committer returns the commit's committer identity, distinct from Author
// for commits rebased or applied by someone other than their author.
func (c *Commit) Committer() Signature { return signatureFrom(c.commit.Committer()) }

func signatureFrom(sig *git2go.Signature) Signature {
	return Signature{Name: sig.Name, Email: sig.Email, When: sig.When}
}

func (c *Commit) Message() string { return c.commit.Message() }

func (c *Commit) NumParents() int {
	return safeconv.MustUintToInt(c.commit.ParentCount())
}

// Parent looks up and returns the n-th parent commit.
func (c *Commit) Parent(n int) (*Commit, error) {
	parent := c.commit.Parent(safeconv.MustIntToUint(n))
	if parent == nil {
		return nil, ErrParentNotFound
	}

	return &Commit{commit: parent, repo: c.repo}, nil
}

// ParentHash returns the hash of the n-th parent without fetching the full
// parent commit object, the shape the timeline producer wants when it only
// needs parent_hash for a row.
func (c *Commit) ParentHash(n int) Hash {
	return HashFromOid(c.commit.ParentId(safeconv.MustIntToUint(n)))
}

// Tree returns this commit's root tree.
func (c *Commit) Tree() (*Tree, error) {
	tree, err := c.commit.Tree()
	if err != nil {
		return nil, fmt.Errorf("get commit tree: %w", err)
	}

	return &Tree{tree: tree, repo: c.repo}, nil
}

// Files returns every file reachable from this commit's tree.
func (c *Commit) Files() (*FileIter, error) {
	tree, err := c.Tree()
	if err != nil {
		return nil, err
	}
	defer tree.Free()

	files, err := TreeFiles(c.repo, tree)
	if err != nil {
		return nil, err
	}

	return &FileIter{files: files}, nil
}

// File resolves a single repo-relative path within this commit's tree.
func (c *Commit) File(path string) (*File, error) {
	tree, err := c.Tree()
	if err != nil {
		return nil, err
	}
	defer tree.Free()

	entry, err := tree.EntryByPath(path)
	if err != nil {
		return nil, err
	}

	return &File{Name: path, Hash: entry.Hash(), repo: c.repo}, nil
}

// Free releases the commit. Safe to call more than once.
func (c *Commit) Free() {
	if c.commit == nil {
		return
	}

	c.commit.Free()
	c.commit = nil
}

// Native exposes the underlying libgit2 commit for call sites that need
// something this wrapper doesn't surface.
func (c *Commit) Native() *git2go.Commit {
	return c.commit
}

// CommitIter walks a revision range lazily, resolving each oid to a full
// Commit and stopping once an optional `since` bound excludes a commit's
// author time. It owns the underlying libgit2 walker: closing or draining
// the iterator frees it.
type CommitIter struct {
	walk  *git2go.RevWalk
	repo  *Repository
	since *time.Time
}

// Next returns the next commit that satisfies the since bound, or io.EOF
// once the walk is exhausted or the bound is crossed.
func (ci *CommitIter) Next() (*Commit, error) {
	for {
		if ci.walk == nil {
			return nil, io.EOF
		}

		var oid git2go.Oid

		if err := ci.walk.Next(&oid); err != nil {
			ci.Close()

			return nil, io.EOF
		}

		commit, err := ci.repo.repo.LookupCommit(&oid)
		if err != nil {
			continue
		}

		if ci.since != nil && commit.Author().When.Before(*ci.since) {
			commit.Free()
			ci.Close()

			return nil, io.EOF
		}

		return &Commit{commit: commit, repo: ci.repo}, nil
	}
}

// ForEach drives the iterator to completion, invoking cb with (and then
// freeing) each commit in turn; a non-nil cb error stops the walk early.
func (ci *CommitIter) ForEach(cb func(*Commit) error) error {
	for {
		commit, err := ci.Next()
		if errors.Is(err, io.EOF) {
			return nil
		}

		if err != nil {
			return err
		}

		cbErr := cb(commit)
		commit.Free()

		if cbErr != nil {
			return cbErr
		}
	}
}

// Close releases the walker if Next hasn't already exhausted it.
func (ci *CommitIter) Close() {
	if ci.walk == nil {
		return
	}

	ci.walk.Free()
	ci.walk = nil
}
