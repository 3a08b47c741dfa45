package commands

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	git2go "github.com/libgit2/git2go/v34"
	"github.com/stretchr/testify/require"

	"github.com/fnctui/fnc/pkg/config"
	"github.com/fnctui/fnc/pkg/scm"
)

// testRepo is a minimal on-disk git repository for exercising repo.go's
// resolution helpers without a network fetch or a fixture checked into the
// tree, the way pkg/ui's views_test.go builds its fixtures.
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

func testConfig(path string) *config.Config {
	return &config.Config{Repository: config.RepositoryConfig{Path: path}}
}
