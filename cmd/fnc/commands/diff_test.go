package commands

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fnctui/fnc/pkg/artifact"
)

func TestArtifactFromCommitRootHasNoParent(t *testing.T) {
	tr := newTestRepo(t)
	tr.writeFile(t, "a.txt", "one\n")
	hash := tr.commit(t, "root")

	commit, err := resolveCommit(tr.repo, hash.String())
	require.NoError(t, err)
	defer commit.Free()

	a := artifactFromCommit(1, commit)
	assert.Equal(t, hash.String(), a.Hash)
	assert.Nil(t, a.ParentHash)
	assert.Equal(t, artifact.TypeCheckin, a.Type)
	assert.Equal(t, "root", a.Comment)
}

func TestArtifactFromCommitWithParentCarriesParentHash(t *testing.T) {
	tr := newTestRepo(t)
	tr.writeFile(t, "a.txt", "one\n")
	parentHash := tr.commit(t, "first")
	tr.writeFile(t, "a.txt", "one\ntwo\n")
	childHash := tr.commit(t, "second")

	commit, err := resolveCommit(tr.repo, childHash.String())
	require.NoError(t, err)
	defer commit.Free()

	a := artifactFromCommit(1, commit)
	require.NotNil(t, a.ParentHash)
	assert.Equal(t, parentHash.String(), *a.ParentHash)
}
