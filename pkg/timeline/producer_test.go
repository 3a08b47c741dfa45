package timeline_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	git2go "github.com/libgit2/git2go/v34"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fnctui/fnc/pkg/artifact"
	"github.com/fnctui/fnc/pkg/metrics"
	"github.com/fnctui/fnc/pkg/scm"
	"github.com/fnctui/fnc/pkg/timeline"
)

type testRepo struct {
	t      *testing.T
	path   string
	native *git2go.Repository
}

func newTestRepo(t *testing.T) *testRepo {
	t.Helper()

	dir := t.TempDir()

	repo, err := git2go.InitRepository(dir, false)
	require.NoError(t, err)

	t.Cleanup(repo.Free)

	return &testRepo{t: t, path: dir, native: repo}
}

func (tr *testRepo) commit(name, content, message string) scm.Hash {
	tr.t.Helper()

	require.NoError(tr.t, os.WriteFile(filepath.Join(tr.path, name), []byte(content), 0o644))

	index, err := tr.native.Index()
	require.NoError(tr.t, err)
	defer index.Free()

	require.NoError(tr.t, index.AddAll([]string{"*"}, git2go.IndexAddDefault, nil))
	require.NoError(tr.t, index.Write())

	treeID, err := index.WriteTree()
	require.NoError(tr.t, err)

	tree, err := tr.native.LookupTree(treeID)
	require.NoError(tr.t, err)
	defer tree.Free()

	sig := &git2go.Signature{Name: "Test User", Email: "test@example.com", When: time.Now()}

	var parents []*git2go.Commit

	if head, headErr := tr.native.Head(); headErr == nil {
		parent, parentErr := tr.native.LookupCommit(head.Target())
		require.NoError(tr.t, parentErr)

		parents = append(parents, parent)

		head.Free()
	}

	oid, err := tr.native.CreateCommit("HEAD", sig, sig, message, tree, parents...)
	require.NoError(tr.t, err)

	for _, parent := range parents {
		parent.Free()
	}

	return scm.HashFromOid(oid)
}

func drainBatches(t *testing.T, out <-chan timeline.CommitBatch, want int, timeout time.Duration) []*artifact.Artifact {
	t.Helper()

	var got []*artifact.Artifact

	deadline := time.After(timeout)

	for len(got) < want {
		select {
		case batch, ok := <-out:
			if !ok {
				return got
			}

			got = append(got, batch.Artifacts...)
		case <-deadline:
			t.Fatalf("timed out waiting for %d artifacts, got %d", want, len(got))
		}
	}

	return got
}

func TestProducerReplenishDeliversRequestedRows(t *testing.T) {
	tr := newTestRepo(t)

	firstHash := tr.commit("a.txt", "1", "first")
	secondHash := tr.commit("b.txt", "2", "second")

	repo, err := scm.OpenRepository(tr.path)
	require.NoError(t, err)
	t.Cleanup(repo.Free)

	producer, err := timeline.NewProducer(repo, &scm.LogOptions{}, nil)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	go producer.Run(ctx)

	producer.Replenish(2)

	got := drainBatches(t, producer.Out(), 2, 5*time.Second)
	require.Len(t, got, 2)

	// Log walks newest-first.
	assert.Equal(t, secondHash.String(), got[0].Hash)
	assert.Equal(t, firstHash.String(), got[1].Hash)
	assert.Nil(t, got[1].ParentHash)
	require.NotNil(t, got[0].ParentHash)
	assert.Equal(t, firstHash.String(), *got[0].ParentHash)
}

func TestProducerRecordsCommitsProducedWhenMetricsSet(t *testing.T) {
	tr := newTestRepo(t)
	tr.commit("a.txt", "1", "first")
	tr.commit("b.txt", "2", "second")

	repo, err := scm.OpenRepository(tr.path)
	require.NoError(t, err)
	t.Cleanup(repo.Free)

	producer, err := timeline.NewProducer(repo, &scm.LogOptions{}, nil)
	require.NoError(t, err)

	m := metrics.New()
	producer.SetMetrics(m)

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	go producer.Run(ctx)

	producer.Replenish(2)
	drainBatches(t, producer.Out(), 2, 5*time.Second)

	rendered, err := m.Render()
	require.NoError(t, err)
	assert.Contains(t, rendered, "fnc_commits_produced_total 2")
}

func TestProducerRIDsStartAtOneAndNeverCollideWithWorkingTree(t *testing.T) {
	tr := newTestRepo(t)
	tr.commit("a.txt", "1", "first")

	repo, err := scm.OpenRepository(tr.path)
	require.NoError(t, err)
	t.Cleanup(repo.Free)

	producer, err := timeline.NewProducer(repo, &scm.LogOptions{}, nil)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	go producer.Run(ctx)

	producer.Replenish(1)

	got := drainBatches(t, producer.Out(), 1, 5*time.Second)
	require.Len(t, got, 1)
	assert.Equal(t, 1, got[0].RID)
	assert.False(t, got[0].IsWorkingTree())
}

func TestProducerChangesetLazilyClassifiesAddedFiles(t *testing.T) {
	tr := newTestRepo(t)
	tr.commit("a.txt", "1", "first")

	repo, err := scm.OpenRepository(tr.path)
	require.NoError(t, err)
	t.Cleanup(repo.Free)

	producer, err := timeline.NewProducer(repo, &scm.LogOptions{}, nil)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	go producer.Run(ctx)

	producer.Replenish(1)

	got := drainBatches(t, producer.Out(), 1, 5*time.Second)
	require.Len(t, got, 1)

	changeset, err := got[0].Changeset()
	require.NoError(t, err)
	require.Len(t, changeset, 1)
	assert.Equal(t, "a.txt", changeset[0].Name)
	assert.Equal(t, artifact.Added, changeset[0].Kind)
}

func TestProducerStartSearchFindsMatch(t *testing.T) {
	tr := newTestRepo(t)
	tr.commit("a.txt", "1", "first commit")
	tr.commit("b.txt", "2", "needle commit")
	tr.commit("c.txt", "3", "third commit")

	repo, err := scm.OpenRepository(tr.path)
	require.NoError(t, err)
	t.Cleanup(repo.Free)

	producer, err := timeline.NewProducer(repo, &scm.LogOptions{}, nil)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	go producer.Run(ctx)

	producer.StartSearch(func(a *artifact.Artifact) bool {
		return a.Comment == "needle commit"
	})

	var status timeline.SearchStatus

	select {
	case status = <-producer.SearchStatus():
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for search status")
	}

	assert.Equal(t, timeline.SearchContinue, status)
}

func TestProducerStartSearchNoMatchAtEndOfLog(t *testing.T) {
	tr := newTestRepo(t)
	tr.commit("a.txt", "1", "first")

	repo, err := scm.OpenRepository(tr.path)
	require.NoError(t, err)
	t.Cleanup(repo.Free)

	producer, err := timeline.NewProducer(repo, &scm.LogOptions{}, nil)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	go producer.Run(ctx)

	producer.StartSearch(func(a *artifact.Artifact) bool {
		return a.Comment == "never matches"
	})

	var status timeline.SearchStatus

	select {
	case status = <-producer.SearchStatus():
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for search status")
	}

	assert.Equal(t, timeline.SearchNoMatch, status)
}

func TestProducerRunEndsOnContextCancel(t *testing.T) {
	tr := newTestRepo(t)
	tr.commit("a.txt", "1", "first")

	repo, err := scm.OpenRepository(tr.path)
	require.NoError(t, err)
	t.Cleanup(repo.Free)

	producer, err := timeline.NewProducer(repo, &scm.LogOptions{}, nil)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan struct{})

	go func() {
		producer.Run(ctx)
		close(done)
	}()

	cancel()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("producer did not stop after context cancellation")
	}
}
