// Package blame annotates each line of a file with the commit that last
// touched it, and maintains the pivot stack that lets the blame view walk
// backward through a file's history.
package blame

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/fnctui/fnc/pkg/cache"
	"github.com/fnctui/fnc/pkg/metrics"
	"github.com/fnctui/fnc/pkg/scm"
)

// ErrCancelled is returned by Annotate when ctx is cancelled mid-run. The
// view's close path treats it as a quiet abort, not a failure to report.
var ErrCancelled = errors.New("blame: cancelled")

// ErrNoParentPath is returned by ParentForPath when the file did not exist
// in the commit's primary parent, so a 'p' pivot cannot proceed.
var ErrNoParentPath = errors.New("blame: path did not exist in parent commit")

// Line is one line of the blamed file, annotated incrementally as the
// underlying hunk walk proceeds.
type Line struct {
	Number    int
	Text      string
	Hash      scm.Hash
	Annotated bool
}

// Result is a completed (or partially completed, if cancelled) blame run.
type Result struct {
	Path   string
	Commit scm.Hash
	Lines  []Line
}

// Options bounds an Annotate run the same way scm.BlameOptions does.
type Options struct {
	OldestCommit scm.Hash
	MinLine      int
	MaxLine      int

	// Metrics, if set, records how long each Annotate run takes.
	Metrics *metrics.Metrics
	// BlobCache, if set, is consulted for the blamed file's contents before
	// reading it from the tree, so re-blaming a path whose content hasn't
	// changed across the commits a pivot walks through skips the blob read.
	BlobCache *cache.LRUBlobCache
}

// Annotate blames path as of commit hash, filling in Result.Lines with the
// commit that last touched each line. It checks ctx between hunks so a view
// close can abort a blame in progress on a large file without waiting for
// the whole walk to finish.
func Annotate(ctx context.Context, repo *scm.Repository, hash scm.Hash, path string, opts Options) (*Result, error) {
	if opts.Metrics != nil {
		start := time.Now()
		defer func() { opts.Metrics.RecordBlame(time.Since(start)) }()
	}

	commit, err := repo.LookupCommit(hash)
	if err != nil {
		return nil, fmt.Errorf("blame: lookup commit: %w", err)
	}
	defer commit.Free()

	file, err := commit.File(path)
	if err != nil {
		return nil, fmt.Errorf("blame: lookup file %s: %w", path, err)
	}

	contents, err := readFileContents(file, opts.BlobCache)
	if err != nil {
		return nil, fmt.Errorf("blame: read file %s: %w", path, err)
	}

	result := &Result{Path: path, Commit: hash, Lines: linesOf(contents)}

	nativeOpts := &scm.BlameOptions{
		NewestCommit: hash,
		OldestCommit: opts.OldestCommit,
		MinLine:      opts.MinLine,
		MaxLine:      opts.MaxLine,
	}

	b, err := repo.BlameFile(path, nativeOpts)
	if err != nil {
		return nil, fmt.Errorf("blame: %w", err)
	}
	defer b.Free()

	hunkCount := b.HunkCount()

	for i := range hunkCount {
		if err := ctx.Err(); err != nil {
			return result, ErrCancelled
		}

		hunk, hunkErr := b.HunkByIndex(i)
		if hunkErr != nil {
			continue
		}

		applyHunk(result, hunk)
	}

	return result, nil
}

// readFileContents fetches f's contents, consulting blobCache by the file's
// blob hash first when one is supplied.
func readFileContents(f *scm.File, blobCache *cache.LRUBlobCache) ([]byte, error) {
	if blobCache == nil {
		return f.Contents()
	}

	if cached := blobCache.Get(f.Hash); cached != nil {
		return cached, nil
	}

	contents, err := f.Contents()
	if err != nil {
		return nil, err
	}

	blobCache.Put(f.Hash, contents)

	return contents, nil
}

// linesOf splits file content into unannotated Line records, excluding a
// trailing empty line produced by a final newline.
func linesOf(contents []byte) []Line {
	text := strings.TrimSuffix(string(contents), "\n")
	if text == "" {
		return nil
	}

	raw := strings.Split(text, "\n")
	lines := make([]Line, len(raw))

	for i, l := range raw {
		lines[i] = Line{Number: i + 1, Text: l}
	}

	return lines
}

// applyHunk assigns hunk.FinalCommit to every not-yet-annotated line it
// covers. Lines are 1-based and FinalStartLine is the hunk's first line.
func applyHunk(result *Result, hunk scm.BlameHunk) {
	start := hunk.FinalStartLine

	for n := start; n < start+hunk.LineCount; n++ {
		idx := n - 1
		if idx < 0 || idx >= len(result.Lines) {
			continue
		}

		if result.Lines[idx].Annotated {
			continue
		}

		result.Lines[idx].Hash = hunk.FinalCommit
		result.Lines[idx].Annotated = true
	}
}

// ParentForPath returns the hash of commit's primary parent, provided path
// still existed there. Used by the 'p' pivot, which is cancelled when the
// file has no history before commit.
func ParentForPath(repo *scm.Repository, hash scm.Hash, path string) (scm.Hash, error) {
	commit, err := repo.LookupCommit(hash)
	if err != nil {
		return scm.Hash{}, fmt.Errorf("blame: lookup commit: %w", err)
	}
	defer commit.Free()

	if commit.NumParents() == 0 {
		return scm.Hash{}, ErrNoParentPath
	}

	parent, err := commit.Parent(0)
	if err != nil {
		return scm.Hash{}, fmt.Errorf("blame: lookup parent: %w", err)
	}
	defer parent.Free()

	if _, err := parent.File(path); err != nil {
		return scm.Hash{}, ErrNoParentPath
	}

	return parent.Hash(), nil
}
