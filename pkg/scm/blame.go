package scm

import (
	"fmt"

	git2go "github.com/libgit2/git2go/v34"
)

// BlameOptions configures a blame computation.
type BlameOptions struct {
	// NewestCommit bounds the blame to history reachable from this commit.
	// The zero Hash means HEAD.
	NewestCommit Hash
	// OldestCommit stops the blame walk here, exclusive. The zero Hash means
	// walk to the root.
	OldestCommit Hash
	// MinLine and MaxLine restrict the blamed range (1-based, inclusive).
	// Zero for either means unbounded.
	MinLine int
	MaxLine int
}

// BlameHunk is a contiguous run of lines attributed to a single commit.
type BlameHunk struct {
	LineCount      int
	FinalCommit    Hash
	FinalStartLine int
	FinalSignature Signature
	OrigCommit     Hash
	OrigPath       string
	OrigStartLine  int
	OrigSignature  Signature
	Boundary       bool
}

// Blame wraps a libgit2 blame result for a single path.
type Blame struct {
	blame *git2go.Blame
}

// BlameFile runs a line-by-line blame of path as of opts.NewestCommit (HEAD
// if zero), attributing every line to the commit that last touched it.
func (r *Repository) BlameFile(path string, opts *BlameOptions) (*Blame, error) {
	nativeOpts, err := git2go.DefaultBlameOptions()
	if err != nil {
		return nil, fmt.Errorf("default blame options: %w", err)
	}

	if opts != nil {
		if opts.NewestCommit != ZeroHash() {
			nativeOpts.NewestCommit = *opts.NewestCommit.ToOid()
		}

		if opts.OldestCommit != ZeroHash() {
			nativeOpts.OldestCommit = *opts.OldestCommit.ToOid()
		}

		nativeOpts.MinLine = uint32(opts.MinLine)
		nativeOpts.MaxLine = uint32(opts.MaxLine)
	}

	blame, err := r.repo.BlameFile(path, &nativeOpts)
	if err != nil {
		return nil, fmt.Errorf("blame file %s: %w", path, err)
	}

	return &Blame{blame: blame}, nil
}

// HunkCount returns the number of hunks in the blame.
func (b *Blame) HunkCount() int {
	return b.blame.HunkCount()
}

// HunkByIndex returns the hunk at the given index.
func (b *Blame) HunkByIndex(index int) (BlameHunk, error) {
	hunk, err := b.blame.HunkByIndex(index)
	if err != nil {
		return BlameHunk{}, fmt.Errorf("blame hunk %d: %w", index, err)
	}

	return hunkFromNative(hunk), nil
}

// HunkByLine returns the hunk that covers the given 1-based line number.
func (b *Blame) HunkByLine(line int) (BlameHunk, error) {
	hunk, err := b.blame.HunkByLine(line)
	if err != nil {
		return BlameHunk{}, fmt.Errorf("blame line %d: %w", line, err)
	}

	return hunkFromNative(hunk), nil
}

// Free releases the blame resources.
func (b *Blame) Free() {
	if b.blame == nil {
		return
	}

	b.blame.Free()
	b.blame = nil
}

func hunkFromNative(hunk git2go.BlameHunk) BlameHunk {
	return BlameHunk{
		LineCount:      int(hunk.LinesInHunk),
		FinalCommit:    HashFromOid(&hunk.FinalCommitId),
		FinalStartLine: int(hunk.FinalStartLineNumber),
		FinalSignature: signatureFromNative(hunk.FinalSignature),
		OrigCommit:     HashFromOid(&hunk.OrigCommitId),
		OrigPath:       hunk.OrigPath,
		OrigStartLine:  int(hunk.OrigStartLineNumber),
		OrigSignature:  signatureFromNative(hunk.OrigSignature),
		Boundary:       hunk.Boundary,
	}
}

func signatureFromNative(sig *git2go.Signature) Signature {
	if sig == nil {
		return Signature{}
	}

	return Signature{
		Name:  sig.Name,
		Email: sig.Email,
		When:  sig.When,
	}
}
