package scm

import (
	"errors"
	"time"
)

// ErrMockNotImplemented is the sentinel every TestCommit method returns when
// a real Commit would need to touch libgit2 object data the mock never
// materializes (a tree, a blob, a parent lookup).
var ErrMockNotImplemented = errors.New("mock: operation not implemented")

// TestCommit stands in for a real *Commit in tests that only need hash,
// author/committer identity, message, and parent count/hashes — the fields
// the timeline producer and diff classifier read before ever touching tree
// or blob data. Anything past that returns ErrMockNotImplemented.
type TestCommit struct {
	hash         Hash
	author       Signature
	committer    Signature
	message      string
	parentHashes []Hash
}

// NewTestCommit builds a TestCommit with author and committer both set to
// author — most fixtures don't care about the distinction.
func NewTestCommit(hash Hash, author Signature, message string, parentHashes ...Hash) *TestCommit {
	return &TestCommit{
		hash:         hash,
		author:       author,
		committer:    author,
		message:      message,
		parentHashes: parentHashes,
	}
}

func (m *TestCommit) Hash() Hash           { return m.hash }
func (m *TestCommit) Author() Signature    { return m.author }
func (m *TestCommit) Committer() Signature { return m.committer }
func (m *TestCommit) Message() string      { return m.message }
func (m *TestCommit) NumParents() int      { return len(m.parentHashes) }

// ParentHash returns the hash of the i-th parent without requiring a full
// Commit lookup, the way a changeset test fixture wants a parent hash
// without standing up a real repository.
func (m *TestCommit) ParentHash(i int) (Hash, bool) {
	if i < 0 || i >= len(m.parentHashes) {
		return Hash{}, false
	}

	return m.parentHashes[i], true
}

func (m *TestCommit) Parent(_ int) (*Commit, error) { return nil, ErrMockNotImplemented }
func (m *TestCommit) Tree() (*Tree, error)          { return nil, ErrMockNotImplemented }
func (m *TestCommit) Files() (*FileIter, error)     { return nil, ErrMockNotImplemented }
func (m *TestCommit) File(_ string) (*File, error)  { return nil, ErrMockNotImplemented }

// Free is a no-op: TestCommit holds no libgit2 resources.
func (m *TestCommit) Free() {}

// TestSignature builds a Signature stamped with the current time, for
// fixtures that don't care about a specific commit instant.
func TestSignature(name, email string) Signature {
	return Signature{
		Name:  name,
		Email: email,
		When:  time.Now(),
	}
}
