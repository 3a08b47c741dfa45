// Package timeline walks a repository's commit log in the background and
// delivers it to the UI in caller-paced batches through a small channel
// protocol: Replenish asks for more rows, Out delivers them.
package timeline

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/fnctui/fnc/pkg/artifact"
	"github.com/fnctui/fnc/pkg/metrics"
	"github.com/fnctui/fnc/pkg/scm"
)

// CommitBatch is one delivery of newly produced artifacts.
type CommitBatch struct {
	Artifacts  []*artifact.Artifact
	StartIndex int
}

// SearchStatus is the producer's forward-search state machine.
type SearchStatus int

const (
	SearchIdle SearchStatus = iota
	SearchContinue
	SearchNoMatch
)

// MatchFunc reports whether an artifact satisfies an in-flight search.
type MatchFunc func(*artifact.Artifact) bool

// ChangesetBuilder computes a commit's changeset against its primary parent,
// given only hashes — never a live commit handle, since the build runs
// lazily from Artifact.Changeset() long after the producer has freed the
// libgit2 commit object it first saw the row through.
type ChangesetBuilder func(repo *scm.Repository, hash scm.Hash, parentHash *scm.Hash) ([]artifact.ChangesetEntry, error)

// Producer walks a repository's commit log and delivers batches on demand:
// the consumer calls Replenish to request more rows instead of the producer
// running ahead unbounded. The producer goroutine is the sole owner of the
// underlying scm.CommitIter, so no locking is needed around it.
type Producer struct {
	repo  *scm.Repository
	iter  *scm.CommitIter
	build ChangesetBuilder

	out        chan CommitBatch
	replenish  chan int
	searchReq  chan MatchFunc
	searchStop chan struct{}
	status     chan SearchStatus

	filter  MatchFunc
	emitted int
	err     error

	metrics *metrics.Metrics
}

// SetFilter restricts emitted rows to artifacts matching f (e.g. a path or
// user predicate built from CLI flags). Commits that don't match are
// skipped without consuming replenish credit. Call before Run.
func (p *Producer) SetFilter(f MatchFunc) {
	p.filter = f
}

// SetMetrics attaches an instrument set that Run records commit production
// against. A nil Metrics (the default) disables recording.
func (p *Producer) SetMetrics(m *metrics.Metrics) {
	p.metrics = m
}

// NewProducer opens a commit log per opts and returns a Producer ready to
// Run. A nil build uses DefaultChangesetBuilder.
func NewProducer(repo *scm.Repository, opts *scm.LogOptions, build ChangesetBuilder) (*Producer, error) {
	iter, err := repo.Log(opts)
	if err != nil {
		return nil, fmt.Errorf("open commit log: %w", err)
	}

	if build == nil {
		build = DefaultChangesetBuilder
	}

	return &Producer{
		repo:       repo,
		iter:       iter,
		build:      build,
		out:        make(chan CommitBatch, 4),
		replenish:  make(chan int, 8),
		searchReq:  make(chan MatchFunc, 1),
		searchStop: make(chan struct{}, 1),
		status:     make(chan SearchStatus, 4),
	}, nil
}

// Out delivers commit batches as they are produced. Closed when Run returns.
func (p *Producer) Out() <-chan CommitBatch {
	return p.out
}

// SearchStatus delivers the two terminal forward-search outcomes the
// producer itself resolves (found, or exhausted the log without a match);
// the waiting state in between is owned by the view's search driver.
func (p *Producer) SearchStatus() <-chan SearchStatus {
	return p.status
}

// Replenish asks the producer for n more rows, the channel equivalent of
// incrementing ncommits_needed and signalling the consumer condvar.
func (p *Producer) Replenish(n int) {
	if n <= 0 {
		return
	}

	p.replenish <- n
}

// StartSearch puts the producer into forward-search mode: it keeps emitting
// rows past any outstanding replenish credit, testing each against match,
// until a row matches (SearchContinue) or the log is exhausted (SearchNoMatch).
func (p *Producer) StartSearch(match MatchFunc) {
	select {
	case p.searchReq <- match:
	default:
	}
}

// CancelSearch drops out of forward-search mode without affecting credit.
func (p *Producer) CancelSearch() {
	select {
	case p.searchStop <- struct{}{}:
	default:
	}
}

// Err returns the first non-EOF error the producer encountered, if any.
// Only meaningful after Out has been drained to closure.
func (p *Producer) Err() error {
	return p.err
}

// Run drives the producer loop until ctx is cancelled or the log is
// exhausted, closing Out on return. Call it in its own goroutine.
func (p *Producer) Run(ctx context.Context) {
	defer close(p.out)
	defer p.iter.Close()

	credit := 0

	var match MatchFunc

	for {
		if credit <= 0 && match == nil {
			select {
			case <-ctx.Done():
				return
			case n := <-p.replenish:
				credit += n

				continue
			case m := <-p.searchReq:
				match = m

				continue
			}
		}

		select {
		case <-ctx.Done():
			return
		case n := <-p.replenish:
			credit += n

			continue
		case m := <-p.searchReq:
			match = m

			continue
		case <-p.searchStop:
			match = nil

			continue
		default:
		}

		commit, nextErr := p.iter.Next()
		if nextErr != nil {
			if !errors.Is(nextErr, io.EOF) && p.err == nil {
				p.err = nextErr
			}

			if match != nil {
				p.sendStatus(ctx, SearchNoMatch)
			}

			return
		}

		a, buildErr := p.buildArtifact(commit)

		commit.Free()

		if buildErr != nil {
			if p.err == nil {
				p.err = buildErr
			}

			continue
		}

		if p.filter != nil && !p.filter(a) {
			continue
		}

		batch := CommitBatch{Artifacts: []*artifact.Artifact{a}, StartIndex: p.emitted}
		p.emitted++

		if p.metrics != nil {
			p.metrics.RecordCommitProduced()
		}

		select {
		case p.out <- batch:
		case <-ctx.Done():
			return
		}

		if credit > 0 {
			credit--
		}

		if match != nil && match(a) {
			p.sendStatus(ctx, SearchContinue)

			match = nil
		}
	}
}

func (p *Producer) sendStatus(ctx context.Context, s SearchStatus) {
	select {
	case p.status <- s:
	case <-ctx.Done():
	}
}

func (p *Producer) buildArtifact(commit *scm.Commit) (*artifact.Artifact, error) {
	hash := commit.Hash()

	var parentHash *scm.Hash

	if commit.NumParents() > 0 {
		h := commit.ParentHash(0)
		parentHash = &h
	}

	var parentHashStr *string

	if parentHash != nil {
		s := parentHash.String()
		parentHashStr = &s
	}

	build := p.build
	repo := p.repo

	changeset := func() ([]artifact.ChangesetEntry, error) {
		return build(repo, hash, parentHash)
	}

	author := commit.Author()

	// RIDs are a Fossil SQL rowid concept with no git equivalent; assign a
	// 1-based sequential id per emission so 0 stays reserved for the
	// working-tree pseudo-commit. parent_rid is left 0 (unlinked) since
	// navigation in this backend is by hash, not by row id.
	rid := p.emitted + 1

	return artifact.New(
		rid, 0,
		hash.String(),
		parentHashStr,
		author.Name,
		author.When,
		commit.Message(),
		"",
		artifact.TypeCheckin,
		changeset,
	), nil
}
