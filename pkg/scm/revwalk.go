package scm

import (
	"fmt"

	git2go "github.com/libgit2/git2go/v34"
)

// RevWalk is a handle-typed view over libgit2's revision walker: every
// method takes Hash in and hands Hash/Commit back out, so nothing above
// pkg/scm ever touches a raw *git2go.Oid.
type RevWalk struct {
	walk *git2go.RevWalk
	repo *Repository
}

// Push marks hash as a starting point for the walk.
func (w *RevWalk) Push(hash Hash) error {
	if err := w.walk.Push(hash.ToOid()); err != nil {
		return fmt.Errorf("push to revwalk: %w", err)
	}

	return nil
}

// PushHead marks the repository's current HEAD as a starting point.
func (w *RevWalk) PushHead() error {
	head, err := w.repo.Head()
	if err != nil {
		return err
	}

	if err := w.walk.Push(head.ToOid()); err != nil {
		return fmt.Errorf("push HEAD to revwalk: %w", err)
	}

	return nil
}

// Sorting selects the walk order (time, topological, or a combination).
func (w *RevWalk) Sorting(mode git2go.SortType) {
	w.walk.Sorting(mode)
}

// Next advances the walk and returns the next commit's hash. Callers use
// Iterate instead when they want the Commit object itself rather than just
// its hash.
func (w *RevWalk) Next() (Hash, error) {
	var oid git2go.Oid

	if err := w.walk.Next(&oid); err != nil {
		return Hash{}, fmt.Errorf("revwalk next: %w", err)
	}

	return HashFromOid(&oid), nil
}

// Iterate runs cb over every remaining commit in the walk, stopping early
// the moment cb returns false.
func (w *RevWalk) Iterate(cb func(*Commit) bool) error {
	err := w.walk.Iterate(func(raw *git2go.Commit) bool {
		return cb(&Commit{commit: raw, repo: w.repo})
	})
	if err != nil {
		return fmt.Errorf("revwalk iterate: %w", err)
	}

	return nil
}

// Free releases the walker. Safe to call more than once.
func (w *RevWalk) Free() {
	if w.walk == nil {
		return
	}

	w.walk.Free()
	w.walk = nil
}
