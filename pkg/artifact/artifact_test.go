package artifact_test

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fnctui/fnc/pkg/artifact"
)

func TestChangeKindString(t *testing.T) {
	cases := map[artifact.ChangeKind]string{
		artifact.Added:        "ADDED",
		artifact.Removed:      "REMOVED",
		artifact.Mod:          "MOD",
		artifact.Renamed:      "RENAMED",
		artifact.Missing:      "MISSING",
		artifact.MergeAdd:     "MERGE_ADD",
		artifact.IntegrateAdd: "INTEGRATE_ADD",
		artifact.ChangeKind(99): "UNKNOWN",
	}

	for kind, want := range cases {
		assert.Equal(t, want, kind.String())
	}
}

func TestArtifactIsWorkingTree(t *testing.T) {
	wt := artifact.New(0, 0, "", nil, "", time.Time{}, "", "", artifact.TypeCheckin, nil)
	assert.True(t, wt.IsWorkingTree())

	committed := artifact.New(1, 0, "abc", nil, "", time.Time{}, "", "", artifact.TypeCheckin, nil)
	assert.False(t, committed.IsWorkingTree())
}

func TestArtifactChangesetNilFunc(t *testing.T) {
	a := artifact.New(1, 0, "abc", nil, "alice", time.Now(), "msg", "trunk", artifact.TypeTag, nil)

	changeset, err := a.Changeset()
	require.NoError(t, err)
	assert.Nil(t, changeset)
}

func TestArtifactChangesetComputedOnce(t *testing.T) {
	calls := 0
	compute := func() ([]artifact.ChangesetEntry, error) {
		calls++

		return []artifact.ChangesetEntry{{Name: "file.go", Hash: "h1", Kind: artifact.Added}}, nil
	}

	a := artifact.New(1, 0, "abc", nil, "alice", time.Now(), "msg", "trunk", artifact.TypeCheckin, compute)

	first, err := a.Changeset()
	require.NoError(t, err)
	require.Len(t, first, 1)
	assert.Equal(t, "file.go", first[0].Name)

	second, err := a.Changeset()
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Equal(t, 1, calls)
}

func TestArtifactChangesetError(t *testing.T) {
	boom := errors.New("diff failed")
	a := artifact.New(1, 0, "abc", nil, "alice", time.Now(), "msg", "trunk", artifact.TypeCheckin, func() ([]artifact.ChangesetEntry, error) {
		return nil, boom
	})

	changeset, err := a.Changeset()
	assert.Nil(t, changeset)
	assert.ErrorIs(t, err, boom)
}

func TestArtifactWikiSigilExpansion(t *testing.T) {
	cases := map[string]string{
		"+New page":     "Added: New page",
		"-New page":     "Deleted: New page",
		":New page":     "Edited: New page",
		"no sigil here": "no sigil here",
		"":              "",
	}

	for comment, want := range cases {
		a := artifact.New(1, 0, "abc", nil, "alice", time.Now(), comment, "trunk", artifact.TypeWiki, nil)
		assert.Equal(t, want, a.Comment)
	}
}

func TestArtifactWikiSigilOnlyAppliesToWikiType(t *testing.T) {
	a := artifact.New(1, 0, "abc", nil, "alice", time.Now(), "+Checkin comment", "trunk", artifact.TypeCheckin, nil)
	assert.Equal(t, "+Checkin comment", a.Comment)
}

func TestArtifactChangesetRenamedEntry(t *testing.T) {
	prior := "old.go"
	entry := artifact.ChangesetEntry{Name: "new.go", Hash: "h2", PriorName: &prior, Kind: artifact.Renamed}

	assert.Equal(t, "RENAMED", entry.Kind.String())
	require.NotNil(t, entry.PriorName)
	assert.Equal(t, "old.go", *entry.PriorName)
}
