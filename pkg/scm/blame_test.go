package scm_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fnctui/fnc/pkg/scm"
)

func TestBlameFile(t *testing.T) {
	tr := newTestRepo(t)
	defer tr.cleanup()

	tr.createFile("file.txt", "line one\nline two\n")
	firstHash := tr.commit("add file")

	tr.createFile("file.txt", "line one\nline two changed\nline three\n")
	secondHash := tr.commit("change file")

	repo, err := scm.OpenRepository(tr.path)
	require.NoError(t, err)

	defer repo.Free()

	blame, err := repo.BlameFile("file.txt", nil)
	require.NoError(t, err)

	defer blame.Free()

	assert.GreaterOrEqual(t, blame.HunkCount(), 2)

	firstHunk, err := blame.HunkByLine(1)
	require.NoError(t, err)
	assert.Equal(t, firstHash, firstHunk.FinalCommit)

	lastHunk, err := blame.HunkByLine(3)
	require.NoError(t, err)
	assert.Equal(t, secondHash, lastHunk.FinalCommit)
}

func TestBlameFileBounded(t *testing.T) {
	tr := newTestRepo(t)
	defer tr.cleanup()

	tr.createFile("file.txt", "a\nb\nc\n")
	firstHash := tr.commit("first")

	tr.createFile("file.txt", "a\nb changed\nc\n")
	tr.commit("second")

	repo, err := scm.OpenRepository(tr.path)
	require.NoError(t, err)

	defer repo.Free()

	blame, err := repo.BlameFile("file.txt", &scm.BlameOptions{NewestCommit: firstHash})
	require.NoError(t, err)

	defer blame.Free()

	assert.Equal(t, 1, blame.HunkCount())

	hunk, err := blame.HunkByIndex(0)
	require.NoError(t, err)
	assert.Equal(t, firstHash, hunk.FinalCommit)
	assert.Equal(t, 3, hunk.LineCount)
}

func TestBlameFileNotFound(t *testing.T) {
	tr := newTestRepo(t)
	defer tr.cleanup()

	tr.createFile("file.txt", "x\n")
	tr.commit("init")

	repo, err := scm.OpenRepository(tr.path)
	require.NoError(t, err)

	defer repo.Free()

	_, err = repo.BlameFile("missing.txt", nil)
	assert.Error(t, err)
}
