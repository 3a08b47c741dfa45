package blame_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	git2go "github.com/libgit2/git2go/v34"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fnctui/fnc/pkg/blame"
	"github.com/fnctui/fnc/pkg/cache"
	"github.com/fnctui/fnc/pkg/metrics"
	"github.com/fnctui/fnc/pkg/scm"
)

type testRepo struct {
	dir    string
	native *git2go.Repository
	repo   *scm.Repository
}

func newTestRepo(t *testing.T) *testRepo {
	t.Helper()

	dir := t.TempDir()

	native, err := git2go.InitRepository(dir, false)
	require.NoError(t, err)

	repo, err := scm.OpenRepository(dir)
	require.NoError(t, err)

	tr := &testRepo{dir: dir, native: native, repo: repo}
	t.Cleanup(func() {
		repo.Free()
		native.Free()
	})

	return tr
}

func (tr *testRepo) writeFile(t *testing.T, name, content string) {
	t.Helper()

	path := filepath.Join(tr.dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func (tr *testRepo) commit(t *testing.T, message string) scm.Hash {
	t.Helper()

	index, err := tr.native.Index()
	require.NoError(t, err)
	defer index.Free()

	require.NoError(t, index.AddAll([]string{"*"}, git2go.IndexAddDefault, nil))
	require.NoError(t, index.Write())

	treeID, err := index.WriteTree()
	require.NoError(t, err)

	nativeTree, err := tr.native.LookupTree(treeID)
	require.NoError(t, err)
	defer nativeTree.Free()

	sig := &git2go.Signature{Name: "Test User", Email: "test@example.com", When: time.Now()}

	var parents []*git2go.Commit

	headRef, err := tr.native.Head()
	if err == nil {
		defer headRef.Free()

		headCommit, lookupErr := tr.native.LookupCommit(headRef.Target())
		require.NoError(t, lookupErr)

		defer headCommit.Free()

		parents = append(parents, headCommit)
	}

	oid, err := tr.native.CreateCommit("HEAD", sig, sig, message, nativeTree, parents...)
	require.NoError(t, err)

	return scm.HashFromOid(oid)
}

func TestAnnotateAttributesLinesToTheirIntroducingCommit(t *testing.T) {
	tr := newTestRepo(t)
	tr.writeFile(t, "file.txt", "one\n")
	first := tr.commit(t, "init")

	tr.writeFile(t, "file.txt", "one\ntwo\nthree\n")
	second := tr.commit(t, "extend")

	result, err := blame.Annotate(context.Background(), tr.repo, second, "file.txt", blame.Options{})
	require.NoError(t, err)
	require.Len(t, result.Lines, 3)

	assert.Equal(t, first, result.Lines[0].Hash)
	assert.True(t, result.Lines[0].Annotated)
	assert.Equal(t, second, result.Lines[2].Hash)
}

func TestAnnotateRecordsMetricsWhenSet(t *testing.T) {
	tr := newTestRepo(t)
	tr.writeFile(t, "file.txt", "one\n")
	hash := tr.commit(t, "init")

	m := metrics.New()

	_, err := blame.Annotate(context.Background(), tr.repo, hash, "file.txt", blame.Options{Metrics: m})
	require.NoError(t, err)

	rendered, err := m.Render()
	require.NoError(t, err)
	assert.Contains(t, rendered, "fnc_blame_duration_seconds_count 1")
}

func TestAnnotateServesFileContentsFromBlobCache(t *testing.T) {
	tr := newTestRepo(t)
	tr.writeFile(t, "file.txt", "one\ntwo\n")
	hash := tr.commit(t, "init")

	blobCache := cache.NewLRUBlobCache(cache.DefaultLRUCacheSize)

	first, err := blame.Annotate(context.Background(), tr.repo, hash, "file.txt", blame.Options{BlobCache: blobCache})
	require.NoError(t, err)

	stats := blobCache.Stats()
	assert.EqualValues(t, 0, stats.Hits)
	assert.EqualValues(t, 1, stats.Misses)

	second, err := blame.Annotate(context.Background(), tr.repo, hash, "file.txt", blame.Options{BlobCache: blobCache})
	require.NoError(t, err)

	stats = blobCache.Stats()
	assert.EqualValues(t, 1, stats.Hits)
	assert.Equal(t, first.Lines, second.Lines)
}

func TestAnnotateRespectsCancellation(t *testing.T) {
	tr := newTestRepo(t)
	tr.writeFile(t, "file.txt", "one\ntwo\n")
	hash := tr.commit(t, "init")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := blame.Annotate(ctx, tr.repo, hash, "file.txt", blame.Options{})
	assert.ErrorIs(t, err, blame.ErrCancelled)
}

func TestParentForPathReturnsParentWhenFileExisted(t *testing.T) {
	tr := newTestRepo(t)
	tr.writeFile(t, "file.txt", "one\n")
	first := tr.commit(t, "init")

	tr.writeFile(t, "file.txt", "one\ntwo\n")
	second := tr.commit(t, "extend")

	parent, err := blame.ParentForPath(tr.repo, second, "file.txt")
	require.NoError(t, err)
	assert.Equal(t, first, parent)
}

func TestParentForPathFailsOnInitialCommit(t *testing.T) {
	tr := newTestRepo(t)
	tr.writeFile(t, "file.txt", "one\n")
	hash := tr.commit(t, "init")

	_, err := blame.ParentForPath(tr.repo, hash, "file.txt")
	assert.ErrorIs(t, err, blame.ErrNoParentPath)
}

func TestStackPushPop(t *testing.T) {
	s := blame.NewStack()
	assert.Equal(t, 0, s.Len())

	h1 := scm.NewHash("aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa")
	h2 := scm.NewHash("bbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbb")

	s.Push(h1)
	s.Push(h2)
	assert.Equal(t, 2, s.Len())

	top, ok := s.Pop()
	require.True(t, ok)
	assert.Equal(t, h2, top)

	next, ok := s.Pop()
	require.True(t, ok)
	assert.Equal(t, h1, next)

	_, ok = s.Pop()
	assert.False(t, ok)
}
