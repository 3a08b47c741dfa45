// Package diffengine assembles the byte buffer and line-offset index shown
// by the diff view: per-file metadata lines followed by unified-diff bodies,
// dispatching on artifact type and rid==0-ness the way the timeline's
// changeset classification does.
package diffengine

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	git2go "github.com/libgit2/git2go/v34"
	"github.com/sergi/go-diff/diffmatchpatch"

	"github.com/fnctui/fnc/pkg/artifact"
	"github.com/fnctui/fnc/pkg/metrics"
	"github.com/fnctui/fnc/pkg/scm"
)

const (
	// DefaultContextLines is used when Options.ContextLines is zero.
	DefaultContextLines = 5
	// MaxContextLines caps how far a view can expand context.
	MaxContextLines = 64
)

// ErrBinaryDiff marks a file pair the engine could not render textually.
var ErrBinaryDiff = errors.New("binary diff")

// Options configures a single diff build.
type Options struct {
	ContextLines     int
	ShowMeta         bool
	Invert           bool
	Verbose          bool
	IgnoreWhitespace bool

	// Cache, if set, is consulted before assembling an ordinary
	// checkin-with-parent diff and populated afterward. The rid==0
	// working-tree diff is never cached since the working directory can
	// change between views while its hash stays fixed.
	Cache *Cache
	// Metrics, if set, records diff build timing and cache hit/miss counts.
	Metrics *metrics.Metrics
}

// normalizedContextLines clamps opts.ContextLines into [0, MaxContextLines],
// substituting DefaultContextLines for an unset (zero) value.
func (o Options) normalizedContextLines() int {
	lines := o.ContextLines
	if lines == 0 {
		lines = DefaultContextLines
	}

	if lines > MaxContextLines {
		lines = MaxContextLines
	}

	if lines < 0 {
		lines = 0
	}

	return lines
}

// Result is a built diff: the assembled buffer plus the per-file ranges
// within it, for jump-to-file navigation.
type Result struct {
	Buffer *Buffer
	Files  []FileRange
}

// FileRange names the buffer lines occupied by one file's diff, header
// included.
type FileRange struct {
	Path      string
	StartLine int
	EndLine   int // exclusive
	Binary    bool
}

// Build assembles the diff of target against parent. parent is nil for an
// initial commit (everything is an addition). Wiki and technote artifacts
// diff their comment text against parent's comment rather than a tree pair;
// the other non-checkin types ignore parent.
func Build(repo *scm.Repository, target *artifact.Artifact, parent *artifact.Artifact, opts Options) (*Result, error) {
	if target == nil {
		return nil, errors.New("diffengine: nil target artifact")
	}

	cacheable := target.Type == artifact.TypeCheckin && !target.IsWorkingTree()

	if cacheable && opts.Cache != nil {
		hash, parentKey := diffCacheKey(target, parent, opts)
		if cached := opts.Cache.Get(hash, parentKey, opts.normalizedContextLines()); cached != nil {
			if opts.Metrics != nil {
				opts.Metrics.RecordCacheHit()
			}

			return cached, nil
		}

		if opts.Metrics != nil {
			opts.Metrics.RecordCacheMiss()
		}
	}

	buf := NewBuffer()
	result := &Result{Buffer: buf}

	if opts.ShowMeta {
		writeMetaHeader(buf, target)
	}

	start := time.Now()

	switch target.Type {
	case artifact.TypeCheckin:
		if err := buildCheckinBody(repo, buf, result, target, parent, opts); err != nil {
			return nil, err
		}
	default:
		buildLinearizedBody(buf, result, target, parent)
	}

	if opts.Metrics != nil {
		opts.Metrics.RecordDiffBuild(time.Since(start))
	}

	if cacheable && opts.Cache != nil {
		hash, parentKey := diffCacheKey(target, parent, opts)
		opts.Cache.Put(hash, parentKey, opts.normalizedContextLines(), result)
	}

	return result, nil
}

// diffCacheKey derives the (hash, parentHash) pair used to key a cached
// diff. The build flags not captured by ContextLines (ShowMeta, Invert,
// IgnoreWhitespace) are folded into the parent-hash component so distinct
// renderings of the same commit pair never collide in the cache. Of these,
// only ShowMeta and Invert change the rendered body; IgnoreWhitespace is not
// applied when rendering, so whitespace-only changes are still shown.
func diffCacheKey(target, parent *artifact.Artifact, opts Options) (hash, parentKey string) {
	parentHash := ""
	if parent != nil {
		parentHash = parent.Hash
	}

	return target.Hash, fmt.Sprintf("%s|m=%t|i=%t|w=%t", parentHash, opts.ShowMeta, opts.Invert, opts.IgnoreWhitespace)
}

func writeMetaHeader(buf *Buffer, target *artifact.Artifact) {
	buf.WriteLine(fmt.Sprintf("%s %s", target.Type, target.Hash))
	buf.WriteLine(fmt.Sprintf("user: %s", target.User))
	buf.WriteLine(fmt.Sprintf("date: %s", target.Timestamp.Format("2006-01-02 15:04:05")))
	buf.WriteLine("")
	buf.WriteText(target.Comment)
	buf.WriteLine("")
}

// buildCheckinBody dispatches between the rid==0 working-tree diff and an
// ordinary checkin-with-parent (or initial-commit) diff.
func buildCheckinBody(repo *scm.Repository, buf *Buffer, result *Result, target, parent *artifact.Artifact, opts Options) error {
	if target.IsWorkingTree() {
		return buildWorkdirBody(repo, buf, result, target, opts)
	}

	targetHash := scm.NewHash(target.Hash)

	commit, err := repo.LookupCommit(targetHash)
	if err != nil {
		return fmt.Errorf("diffengine: lookup target commit: %w", err)
	}
	defer commit.Free()

	newTree, err := commit.Tree()
	if err != nil {
		return fmt.Errorf("diffengine: target tree: %w", err)
	}
	defer newTree.Free()

	var oldTree *scm.Tree

	if parent != nil {
		parentHash := scm.NewHash(parent.Hash)

		parentCommit, lookupErr := repo.LookupCommit(parentHash)
		if lookupErr != nil {
			return fmt.Errorf("diffengine: lookup parent commit: %w", lookupErr)
		}
		defer parentCommit.Free()

		oldTree, err = parentCommit.Tree()
		if err != nil {
			return fmt.Errorf("diffengine: parent tree: %w", err)
		}
		defer oldTree.Free()
	}

	if opts.Invert {
		oldTree, newTree = newTree, oldTree
	}

	diff, err := repo.DiffTreeToTree(oldTree, newTree)
	if err != nil {
		return fmt.Errorf("diffengine: diff trees: %w", err)
	}
	defer diff.Free()

	return writeDeltas(repo, buf, result, diff, opts)
}

// buildWorkdirBody renders the rid==0 pseudo-commit: the diff between HEAD's
// tree and the on-disk working directory, reconciled against the index.
func buildWorkdirBody(repo *scm.Repository, buf *Buffer, result *Result, target *artifact.Artifact, opts Options) error {
	var headTree *scm.Tree

	if target.ParentHash != nil {
		headHash := scm.NewHash(*target.ParentHash)

		headCommit, err := repo.LookupCommit(headHash)
		if err != nil {
			return fmt.Errorf("diffengine: lookup HEAD commit: %w", err)
		}
		defer headCommit.Free()

		headTree, err = headCommit.Tree()
		if err != nil {
			return fmt.Errorf("diffengine: HEAD tree: %w", err)
		}
		defer headTree.Free()
	}

	diff, err := repo.DiffTreeToWorkdir(headTree)
	if err != nil {
		return fmt.Errorf("diffengine: diff workdir: %w", err)
	}
	defer diff.Free()

	return writeDeltas(repo, buf, result, diff, opts)
}

// writeDeltas walks a libgit2 diff's deltas, classifying each by its raw
// delta status and rendering a header plus textual body for each. No rename
// detection is run on the diff, so a renamed file appears as a REMOVED
// entry plus an ADDED entry.
func writeDeltas(repo *scm.Repository, buf *Buffer, result *Result, diff *scm.Diff, opts Options) error {
	numDeltas, err := diff.NumDeltas()
	if err != nil {
		return fmt.Errorf("diffengine: num deltas: %w", err)
	}

	for i := range numDeltas {
		delta, deltaErr := diff.Delta(i)
		if deltaErr != nil {
			continue
		}

		if writeErr := writeDeltaBody(repo, buf, result, delta, opts); writeErr != nil {
			return writeErr
		}
	}

	return nil
}

func writeDeltaBody(repo *scm.Repository, buf *Buffer, result *Result, delta scm.DiffDelta, opts Options) error {
	path := delta.NewFile.Path
	if path == "" {
		path = delta.OldFile.Path
	}

	start := buf.NumLines()

	writeFileHeader(buf, delta)

	oldBlob, newBlob, blobErr := lookupDeltaBlobs(repo, delta)
	if blobErr != nil {
		return blobErr
	}

	binary := false

	if oldBlob != nil || newBlob != nil {
		text, renderErr := scm.RenderTextDiff(oldBlob, newBlob, delta.OldFile.Path, delta.NewFile.Path, opts.normalizedContextLines())

		switch {
		case errors.Is(renderErr, scm.ErrBinaryContent):
			buf.WriteLine(fmt.Sprintf("cannot compute difference between binary files: %s", path))

			binary = true
		case renderErr != nil:
			if oldBlob != nil {
				oldBlob.Free()
			}

			if newBlob != nil {
				newBlob.Free()
			}

			return fmt.Errorf("diffengine: render diff for %s: %w", path, renderErr)
		default:
			buf.WriteText(text)
		}
	}

	if oldBlob != nil {
		oldBlob.Free()
	}

	if newBlob != nil {
		newBlob.Free()
	}

	result.Files = append(result.Files, FileRange{
		Path:      path,
		StartLine: start,
		EndLine:   buf.NumLines(),
		Binary:    binary,
	})

	return nil
}

func lookupDeltaBlobs(repo *scm.Repository, delta scm.DiffDelta) (oldBlob, newBlob *scm.Blob, err error) {
	if !delta.OldFile.Hash.IsZero() {
		oldBlob, err = repo.LookupBlob(delta.OldFile.Hash)
		if err != nil {
			return nil, nil, fmt.Errorf("diffengine: lookup old blob: %w", err)
		}
	}

	if !delta.NewFile.Hash.IsZero() {
		newBlob, err = repo.LookupBlob(delta.NewFile.Hash)
		if err != nil {
			if oldBlob != nil {
				oldBlob.Free()
			}

			return nil, nil, fmt.Errorf("diffengine: lookup new blob: %w", err)
		}
	}

	return oldBlob, newBlob, nil
}

func writeFileHeader(buf *Buffer, delta scm.DiffDelta) {
	kind := classifyDelta(delta)

	switch kind {
	case artifact.Added:
		buf.WriteLine(fmt.Sprintf("ADDED   %s", delta.NewFile.Path))
	case artifact.Removed:
		buf.WriteLine(fmt.Sprintf("REMOVED %s", delta.OldFile.Path))
	case artifact.Renamed:
		buf.WriteLine(fmt.Sprintf("RENAMED %s -> %s", delta.OldFile.Path, delta.NewFile.Path))
	default:
		buf.WriteLine(fmt.Sprintf("MOD     %s", delta.NewFile.Path))
	}

	buf.WriteLine(fmt.Sprintf("Index: %s", delta.NewFile.Path))
	buf.WriteLine(fmt.Sprintf("--- %s (hash %s)", delta.OldFile.Path, delta.OldFile.Hash))
	buf.WriteLine(fmt.Sprintf("+++ %s (hash %s)", delta.NewFile.Path, delta.NewFile.Hash))
}

// classifyDelta maps a raw libgit2 delta status to the changeset kinds the
// timeline view labels rows with. Renamed is returned only for a delta that
// libgit2 reports as renamed, which the diffs built here never contain.
func classifyDelta(delta scm.DiffDelta) artifact.ChangeKind {
	switch delta.Status {
	case git2go.DeltaAdded:
		return artifact.Added
	case git2go.DeltaDeleted:
		return artifact.Removed
	case git2go.DeltaRenamed:
		return artifact.Renamed
	default:
		return artifact.Mod
	}
}

// buildLinearizedBody renders non-checkin artifact types (wiki, technote,
// ticket, tag, forum, attachment) as a linearised presentation instead of a
// tree diff: field:value tuples for structured types, and a text diff
// against the parent revision's comment for free-text types.
func buildLinearizedBody(buf *Buffer, result *Result, target, parent *artifact.Artifact) {
	start := buf.NumLines()

	switch target.Type {
	case artifact.TypeWiki, artifact.TypeTechnote:
		writeTextRevisionDiff(buf, target, parent)
	case artifact.TypeTicket, artifact.TypeTag, artifact.TypeAttachment:
		writeFieldCard(buf, target)
	case artifact.TypeForum:
		buf.WriteText(target.Comment)
	default:
		buf.WriteText(target.Comment)
	}

	result.Files = append(result.Files, FileRange{
		Path:      string(target.Type),
		StartLine: start,
		EndLine:   buf.NumLines(),
	})
}

// writeTextRevisionDiff renders a unified-style text diff between a wiki or
// technote revision's comment body and its parent's, using go-diff's
// diffmatchpatch since there is no git blob pair to hand to libgit2.
func writeTextRevisionDiff(buf *Buffer, target, parent *artifact.Artifact) {
	if parent == nil {
		buf.WriteText(target.Comment)

		return
	}

	dmp := diffmatchpatch.New()

	diffs := dmp.DiffMain(parent.Comment, target.Comment, false)
	diffs = dmp.DiffCleanupSemantic(diffs)

	for _, d := range diffs {
		prefix := ' '

		switch d.Type {
		case diffmatchpatch.DiffInsert:
			prefix = '+'
		case diffmatchpatch.DiffDelete:
			prefix = '-'
		case diffmatchpatch.DiffEqual:
			prefix = ' '
		}

		for _, line := range strings.Split(strings.TrimSuffix(d.Text, "\n"), "\n") {
			buf.WriteLine(fmt.Sprintf("%c%s", prefix, line))
		}
	}

	if target.Type == artifact.TypeTechnote {
		buf.WriteLine("")
		buf.WriteLine("--- full content ---")
		buf.WriteText(target.Comment)
	}
}

// writeFieldCard renders a ticket, tag, or attachment's changeset entries as
// field:value tuples, sorted by name for stable output.
func writeFieldCard(buf *Buffer, target *artifact.Artifact) {
	entries, err := target.Changeset()
	if err != nil || len(entries) == 0 {
		buf.WriteText(target.Comment)

		return
	}

	sorted := make([]artifact.ChangesetEntry, len(entries))
	copy(sorted, entries)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Name < sorted[j].Name })

	for _, e := range sorted {
		buf.WriteLine(fmt.Sprintf("%s: %s", e.Name, e.Hash))
	}
}
