// Package scm is the boundary between this browser and the underlying git
// object store: every other package talks to commits, trees, blobs, and
// diffs through the types here, never through git2go directly.
package scm

import (
	git2go "github.com/libgit2/git2go/v34"
)

const (
	// HashSize is a SHA-1 object id's length in raw bytes.
	HashSize = 20
	// HashHexSize is a SHA-1 object id's length as a hex string.
	HashHexSize = 40

	nibbleBits  = 4
	hexLetterLo = 10
)

// Hash is a git object id. The zero Hash (ZeroHash) never names a real
// object; it marks "no parent" the way a nil pointer would in a language
// with nullable references.
type Hash [HashSize]byte

// ZeroHash returns the all-zero Hash.
func ZeroHash() Hash {
	return Hash{}
}

// NewHash decodes a hex string into a Hash. A string shorter than
// HashHexSize fills only the bytes it covers, leaving the rest zero — this
// tolerance exists so a hash prefix can be embedded in a Hash-shaped value
// where only exact-length comparisons matter to the caller; it is not used
// for repository object lookup, which always resolves prefixes against the
// object store itself rather than zero-padding locally.
func NewHash(hex string) Hash {
	var h Hash

	for i := 0; i < HashSize && i*2+1 < len(hex); i++ {
		h[i] = nibble(hex[i*2])<<nibbleBits | nibble(hex[i*2+1])
	}

	return h
}

// nibble converts one hex digit to its 4-bit value; anything else decodes
// as 0 rather than erroring, matching NewHash's lenient contract.
func nibble(c byte) byte {
	switch {
	case c >= '0' && c <= '9':
		return c - '0'
	case c >= 'a' && c <= 'f':
		return c - 'a' + hexLetterLo
	case c >= 'A' && c <= 'F':
		return c - 'A' + hexLetterLo
	default:
		return 0
	}
}

// HashFromOid converts a libgit2 object id to Hash.
func HashFromOid(oid *git2go.Oid) Hash {
	var h Hash
	copy(h[:], oid[:])

	return h
}

const hexDigits = "0123456789abcdef"

// String renders the hash as lowercase hex.
func (h Hash) String() string {
	buf := make([]byte, HashHexSize)

	for i, b := range h {
		buf[i*2] = hexDigits[b>>nibbleBits]
		buf[i*2+1] = hexDigits[b&0x0f]
	}

	return string(buf)
}

// IsZero reports whether h is the all-zero Hash.
func (h Hash) IsZero() bool {
	return h == Hash{}
}

// ToOid converts Hash to a libgit2 object id.
func (h Hash) ToOid() *git2go.Oid {
	oid := new(git2go.Oid)
	copy(oid[:], h[:])

	return oid
}
