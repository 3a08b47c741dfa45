package scm

import (
	"io"

	git2go "github.com/libgit2/git2go/v34"

	"github.com/fnctui/fnc/pkg/textutil"
)

// Blob wraps a libgit2 blob: the raw content object a tree entry's hash
// resolves to.
type Blob struct {
	blob *git2go.Blob
}

func (b *Blob) Hash() Hash { return HashFromOid(b.blob.Id()) }

func (b *Blob) Size() int64 { return b.blob.Size() }

func (b *Blob) Contents() []byte { return b.blob.Contents() }

// IsBinary reports whether the blob's content looks binary, per
// textutil.Classify's NUL-byte sniff.
func (b *Blob) IsBinary() bool {
	return textutil.Classify(b.blob.Contents())
}

// Reader adapts the blob's in-memory contents to an io.Reader.
func (b *Blob) Reader() io.Reader {
	return textutil.Reader(b.blob.Contents())
}

// Free releases the blob. Safe to call more than once.
func (b *Blob) Free() {
	if b.blob == nil {
		return
	}

	b.blob.Free()
	b.blob = nil
}

// Native exposes the underlying libgit2 blob.
func (b *Blob) Native() *git2go.Blob {
	return b.blob
}
