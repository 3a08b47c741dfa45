package reptree_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	git2go "github.com/libgit2/git2go/v34"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fnctui/fnc/pkg/reptree"
	"github.com/fnctui/fnc/pkg/scm"
)

func newCommitTree(t *testing.T, files map[string]string) (*scm.Repository, *scm.Tree) {
	t.Helper()

	dir := t.TempDir()

	native, err := git2go.InitRepository(dir, false)
	require.NoError(t, err)
	t.Cleanup(native.Free)

	for name, content := range files {
		path := filepath.Join(dir, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}

	index, err := native.Index()
	require.NoError(t, err)
	defer index.Free()

	require.NoError(t, index.AddAll([]string{"*"}, git2go.IndexAddDefault, nil))
	require.NoError(t, index.Write())

	treeID, err := index.WriteTree()
	require.NoError(t, err)

	sig := &git2go.Signature{Name: "Test User", Email: "test@example.com", When: time.Now()}

	nativeTree, err := native.LookupTree(treeID)
	require.NoError(t, err)
	defer nativeTree.Free()

	_, err = native.CreateCommit("HEAD", sig, sig, "init", nativeTree, nil)
	require.NoError(t, err)

	repo, err := scm.OpenRepository(dir)
	require.NoError(t, err)
	t.Cleanup(repo.Free)

	head, err := repo.Head()
	require.NoError(t, err)

	commit, err := repo.LookupCommit(head)
	require.NoError(t, err)
	t.Cleanup(commit.Free)

	tree, err := commit.Tree()
	require.NoError(t, err)
	t.Cleanup(tree.Free)

	return repo, tree
}

func TestBuildFlatFiles(t *testing.T) {
	repo, tree := newCommitTree(t, map[string]string{
		"b.txt": "b",
		"a.txt": "a",
	})

	rt, err := reptree.Build(repo, tree, nil)
	require.NoError(t, err)

	root := reptree.NewObject(rt, rt.Root())
	require.Equal(t, 2, root.Len())
	assert.Equal(t, "a.txt", root.Entries[0].Node.Basename)
	assert.Equal(t, "b.txt", root.Entries[1].Node.Basename)
	assert.False(t, root.Entries[0].Node.IsDir())
}

func TestBuildNestedDirectories(t *testing.T) {
	repo, tree := newCommitTree(t, map[string]string{
		"src/a.c": "a",
		"src/b.c": "b",
		"README":  "r",
	})

	rt, err := reptree.Build(repo, tree, nil)
	require.NoError(t, err)

	root := reptree.NewObject(rt, rt.Root())
	require.Equal(t, 2, root.Len())
	assert.Equal(t, "README", root.Entries[0].Node.Basename)
	assert.Equal(t, "src", root.Entries[1].Node.Basename)
	assert.True(t, root.Entries[1].Node.IsDir())

	srcObj := reptree.NewObject(rt, root.Entries[1].ID)
	require.Equal(t, 2, srcObj.Len())
	assert.Equal(t, "a.c", srcObj.Entries[0].Node.Basename)
	assert.Equal(t, "src/a.c", srcObj.Entries[0].Node.Path)
	assert.Equal(t, "b.c", srcObj.Entries[1].Node.Basename)
}

func TestNavigatorDescendAndAscend(t *testing.T) {
	repo, tree := newCommitTree(t, map[string]string{
		"src/a.c": "a",
		"src/b.c": "b",
	})

	rt, err := reptree.Build(repo, tree, nil)
	require.NoError(t, err)

	nav := reptree.NewNavigator(rt)
	assert.True(t, nav.AtRoot())

	root := nav.Current()
	require.Equal(t, 1, root.Len())
	assert.Equal(t, "src", root.Entries[0].Node.Basename)

	nav.Descend(0, 0, 0)
	assert.False(t, nav.AtRoot())

	srcObj := nav.Current()
	require.Equal(t, 2, srcObj.Len())

	frame, ok := nav.Ascend()
	require.True(t, ok)
	assert.Equal(t, 0, frame.SelectedIdx)
	assert.True(t, nav.AtRoot())

	_, ok = nav.Ascend()
	assert.False(t, ok)
}

func TestModeFromFilemode(t *testing.T) {
	assert.Equal(t, reptree.ModeDirectory, reptree.ModeFromFilemode(git2go.FilemodeTree))
	assert.Equal(t, reptree.ModeSymlink, reptree.ModeFromFilemode(git2go.FilemodeLink))
	assert.Equal(t, reptree.ModeExecutable, reptree.ModeFromFilemode(git2go.FilemodeBlobExecutable))
	assert.Equal(t, reptree.ModeRegular, reptree.ModeFromFilemode(git2go.FilemodeBlob))
}
