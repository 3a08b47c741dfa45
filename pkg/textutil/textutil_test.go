package textutil

import (
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassify_EmptyData(t *testing.T) {
	t.Parallel()

	assert.False(t, Classify(nil))
	assert.False(t, Classify([]byte{}))
}

func TestClassify_PureText(t *testing.T) {
	t.Parallel()

	assert.False(t, Classify([]byte("hello world\n")))
}

func TestClassify_NullByte(t *testing.T) {
	t.Parallel()

	assert.True(t, Classify([]byte("hello\x00world")))
}

func TestClassify_NullAtStart(t *testing.T) {
	t.Parallel()

	assert.True(t, Classify([]byte("\x00start")))
}

func TestClassify_NullAtWindowBoundary(t *testing.T) {
	t.Parallel()

	data := make([]byte, SniffWindow)
	data[SniffWindow-1] = 0x00

	assert.True(t, Classify(data))
}

func TestClassify_NullBeyondWindow(t *testing.T) {
	t.Parallel()

	data := make([]byte, SniffWindow+100)
	for i := range data {
		data[i] = 'a'
	}

	data[SniffWindow+50] = 0x00

	assert.False(t, Classify(data))
}

func TestClassify_ShortDataNoNull(t *testing.T) {
	t.Parallel()

	assert.False(t, Classify([]byte("short")))
}

func TestLineCount_EmptyData(t *testing.T) {
	t.Parallel()

	assert.Equal(t, 0, LineCount(nil))
	assert.Equal(t, 0, LineCount([]byte{}))
}

func TestLineCount_SingleLineNoNewline(t *testing.T) {
	t.Parallel()

	assert.Equal(t, 1, LineCount([]byte("hello")))
}

func TestLineCount_SingleLineWithNewline(t *testing.T) {
	t.Parallel()

	assert.Equal(t, 1, LineCount([]byte("hello\n")))
}

func TestLineCount_MultipleLines(t *testing.T) {
	t.Parallel()

	assert.Equal(t, 3, LineCount([]byte("a\nb\nc\n")))
}

func TestLineCount_MultipleLinesNoTrailingNewline(t *testing.T) {
	t.Parallel()

	assert.Equal(t, 3, LineCount([]byte("a\nb\nc")))
}

func TestLineCount_EmptyLines(t *testing.T) {
	t.Parallel()

	assert.Equal(t, 3, LineCount([]byte("\n\n\n")))
}

func TestLineCount_SingleNewline(t *testing.T) {
	t.Parallel()

	assert.Equal(t, 1, LineCount([]byte("\n")))
}

func TestLineCount_LargeFile(t *testing.T) {
	t.Parallel()

	lines := strings.Repeat("line\n", 10000)

	assert.Equal(t, 10000, LineCount([]byte(lines)))
}

func TestReader_EmptyData(t *testing.T) {
	t.Parallel()

	rc := Reader(nil)
	defer rc.Close()

	data, err := io.ReadAll(rc)

	require.NoError(t, err)
	assert.Empty(t, data)
}

func TestReader_RoundTrip(t *testing.T) {
	t.Parallel()

	input := []byte("hello world")
	rc := Reader(input)

	defer rc.Close()

	data, err := io.ReadAll(rc)

	require.NoError(t, err)
	assert.Equal(t, input, data)
}

func TestReader_CloseIsIdempotent(t *testing.T) {
	t.Parallel()

	rc := Reader([]byte("test"))

	require.NoError(t, rc.Close())
	require.NoError(t, rc.Close())
}

func TestSniffWindow_Value(t *testing.T) {
	t.Parallel()

	assert.Equal(t, 8000, SniffWindow)
}
