// Package textutil holds the small text-classification helpers shared by
// the diff engine and the blob layer: deciding whether a blob's content is
// text or binary, and counting the lines a text blob carries so callers can
// size buffers or report progress before doing real work on the content.
package textutil

import (
	"bytes"
	"io"
)

// SniffWindow bounds how much of a blob is scanned when classifying it as
// text or binary. 8000 bytes is the same window Git itself samples.
const SniffWindow = 8000

// Classify reports whether data looks like binary content: a NUL byte
// anywhere within the first SniffWindow bytes. Nothing is assumed about
// data beyond that window, matching the heuristic every SCM that does this
// sniff-based detection uses rather than a full content scan.
func Classify(data []byte) (binary bool) {
	if len(data) == 0 {
		return false
	}

	window := data
	if len(window) > SniffWindow {
		window = window[:SniffWindow]
	}

	return bytes.IndexByte(window, 0) >= 0
}

// LineCount returns how many newline-delimited lines data contains, counting
// a trailing partial line (content after the last '\n', or all of data if it
// has no newline at all) as one more line. Empty input has zero lines.
func LineCount(data []byte) int {
	if len(data) == 0 {
		return 0
	}

	n := bytes.Count(data, []byte{'\n'})
	if data[len(data)-1] != '\n' {
		n++
	}

	return n
}

// Reader adapts a byte slice already held in memory (a blob's contents) to
// an [io.ReadCloser] for callers that want the io.Reader shape; Close is a
// no-op since there is nothing underneath to release.
func Reader(data []byte) io.ReadCloser {
	return io.NopCloser(bytes.NewReader(data))
}
