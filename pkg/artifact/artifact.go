// Package artifact models a single unit of repository history (a commit,
// wiki revision, ticket change, and so on) along with the queue that holds
// an ordered run of them as the timeline producer emits it.
package artifact

import (
	"sync"
	"time"
)

// Type identifies what kind of history event an Artifact represents.
type Type string

const (
	TypeCheckin    Type = "checkin"
	TypeWiki       Type = "wiki"
	TypeTag        Type = "tag"
	TypeTechnote   Type = "technote"
	TypeTicket     Type = "ticket"
	TypeForum      Type = "forum"
	TypeAttachment Type = "attachment"
)

// ChangeKind classifies how a single path differs between two checkin decks.
type ChangeKind int

const (
	Added ChangeKind = iota
	Removed
	Mod
	Renamed
	Missing
	MergeAdd
	IntegrateAdd
)

// String renders the change kind the way timeline/diff views label rows.
func (k ChangeKind) String() string {
	switch k {
	case Added:
		return "ADDED"
	case Removed:
		return "REMOVED"
	case Mod:
		return "MOD"
	case Renamed:
		return "RENAMED"
	case Missing:
		return "MISSING"
	case MergeAdd:
		return "MERGE_ADD"
	case IntegrateAdd:
		return "INTEGRATE_ADD"
	default:
		return "UNKNOWN"
	}
}

// ChangesetEntry is one path-level change within an artifact's changeset.
type ChangesetEntry struct {
	Name      string
	Hash      string
	PriorName *string
	Kind      ChangeKind
}

// ChangesetFunc lazily computes an artifact's changeset, typically by asking
// the diff engine to pair the artifact's tree against its parent's.
type ChangesetFunc func() ([]ChangesetEntry, error)

// Artifact is one commit, wiki revision, ticket change, tag, or other history
// event. RID 0 identifies the working-tree pseudo-commit. The changeset is
// computed lazily — most artifacts are never diffed, only listed.
type Artifact struct {
	RID        int
	ParentRID  int
	Hash       string
	ParentHash *string
	User       string
	Timestamp  time.Time
	Comment    string
	Branch     string
	Type       Type

	changesetFunc ChangesetFunc
	changesetOnce sync.Once
	changeset     []ChangesetEntry
	changesetErr  error
}

// New constructs an Artifact. computeChangeset may be nil for artifact kinds
// that never carry a changeset (e.g. a synthetic tag row).
//
// Wiki comments carry a leading sigil recording what kind of edit produced
// the revision: '+' for a new page, '-' for a deleted one, ':' for an
// ordinary edit. New expands that sigil into a readable prefix and strips it
// from the stored comment, the way a wiki artifact's row is rendered for
// display.
func New(rid, parentRID int, hash string, parentHash *string, user string, timestamp time.Time, comment, branch string, kind Type, computeChangeset ChangesetFunc) *Artifact {
	if kind == TypeWiki {
		comment = expandWikiSigil(comment)
	}

	return &Artifact{
		RID:           rid,
		ParentRID:     parentRID,
		Hash:          hash,
		ParentHash:    parentHash,
		User:          user,
		Timestamp:     timestamp,
		Comment:       comment,
		Branch:        branch,
		Type:          kind,
		changesetFunc: computeChangeset,
	}
}

// expandWikiSigil turns a raw wiki comment's leading edit-kind sigil into the
// prefix a reader expects on a timeline row, leaving comments with no
// recognized sigil untouched.
func expandWikiSigil(comment string) string {
	if comment == "" {
		return comment
	}

	switch comment[0] {
	case '+':
		return "Added: " + comment[1:]
	case '-':
		return "Deleted: " + comment[1:]
	case ':':
		return "Edited: " + comment[1:]
	default:
		return comment
	}
}

// IsWorkingTree reports whether this artifact is the rid==0 pseudo-commit.
func (a *Artifact) IsWorkingTree() bool {
	return a.RID == 0
}

// Changeset computes (once) and returns the artifact's ordered changeset.
// Returns nil, nil for artifacts with no changeset function configured.
func (a *Artifact) Changeset() ([]ChangesetEntry, error) {
	if a.changesetFunc == nil {
		return nil, nil
	}

	a.changesetOnce.Do(func() {
		a.changeset, a.changesetErr = a.changesetFunc()
	})

	return a.changeset, a.changesetErr
}
