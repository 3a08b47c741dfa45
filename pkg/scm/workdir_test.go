package scm_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fnctui/fnc/pkg/scm"
)

func TestDiffTreeToWorkdirDetectsUncommittedChange(t *testing.T) {
	tr := newTestRepo(t)
	defer tr.cleanup()

	tr.createFile("a.txt", "one\n")
	headHash := tr.commit("init")

	tr.createFile("a.txt", "one\ntwo\n")

	repo, err := scm.OpenRepository(tr.path)
	require.NoError(t, err)
	defer repo.Free()

	commit, err := repo.LookupCommit(headHash)
	require.NoError(t, err)
	defer commit.Free()

	tree, err := commit.Tree()
	require.NoError(t, err)
	defer tree.Free()

	diff, err := repo.DiffTreeToWorkdir(tree)
	require.NoError(t, err)
	defer diff.Free()

	numDeltas, err := diff.NumDeltas()
	require.NoError(t, err)
	assert.Equal(t, 1, numDeltas)
}

func TestDiffTreeToWorkdirNilTree(t *testing.T) {
	tr := newTestRepo(t)
	defer tr.cleanup()

	tr.createFile("a.txt", "one\n")

	repo, err := scm.OpenRepository(tr.path)
	require.NoError(t, err)
	defer repo.Free()

	diff, err := repo.DiffTreeToWorkdir(nil)
	require.NoError(t, err)
	defer diff.Free()

	numDeltas, err := diff.NumDeltas()
	require.NoError(t, err)
	assert.Equal(t, 1, numDeltas)
}
