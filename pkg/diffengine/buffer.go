package diffengine

import "strings"

// Buffer is the assembled diff body plus its line-offset index, held
// entirely in memory since a single diff comfortably fits. Offsets has
// len(lines)+1 entries; offsets[i+1]-offsets[i] is the byte length of line i
// including its trailing newline.
type Buffer struct {
	data    []byte
	offsets []int
}

// NewBuffer returns an empty buffer with the index primed for line 0.
func NewBuffer() *Buffer {
	return &Buffer{offsets: []int{0}}
}

// WriteLine appends a line, adding a trailing newline if absent, and records
// the new line-start offset.
func (b *Buffer) WriteLine(line string) {
	b.data = append(b.data, line...)

	if !strings.HasSuffix(line, "\n") {
		b.data = append(b.data, '\n')
	}

	b.offsets = append(b.offsets, len(b.data))
}

// WriteText splits text on newlines and writes each as a line, preserving a
// trailing blank line only if text explicitly ends with "\n\n".
func (b *Buffer) WriteText(text string) {
	if text == "" {
		return
	}

	lines := strings.Split(strings.TrimSuffix(text, "\n"), "\n")
	for _, line := range lines {
		b.WriteLine(line)
	}
}

// NumLines returns the number of complete lines written.
func (b *Buffer) NumLines() int {
	return len(b.offsets) - 1
}

// Offsets returns the line-offset index (len() == NumLines()+1).
func (b *Buffer) Offsets() []int {
	return b.offsets
}

// Bytes returns the assembled buffer contents.
func (b *Buffer) Bytes() []byte {
	return b.data
}

// Line returns the text of line i (0-based), without its trailing newline.
func (b *Buffer) Line(i int) string {
	if i < 0 || i >= b.NumLines() {
		return ""
	}

	start, end := b.offsets[i], b.offsets[i+1]

	return strings.TrimSuffix(string(b.data[start:end]), "\n")
}
