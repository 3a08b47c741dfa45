package diffengine

import (
	"bytes"
	"encoding/binary"
	"sync"

	"github.com/pierrec/lz4/v4"
)

// cachedOffsets holds the lz4-compressed, delta-encoded line-offset index
// for one diff, plus the body bytes and per-file ranges needed to rebuild a
// Result on a cache hit.
type cachedOffsets struct {
	compressed []byte
	numLines   int
	body       []byte
	files      []FileRange
}

// Cache holds recently built diffs keyed by (hash, parentHash, contextLines)
// so repeated navigation over the same commit (context toggling, re-opening
// a diff already seen) skips re-running the textual differ. Offset indexes
// are lz4-compressed before caching — large diffs can carry thousands of
// offsets, and line-offset sequences are monotonically increasing, so delta
// encoding them first makes them compress well.
type Cache struct {
	mu      sync.Mutex
	entries map[cacheKey]*cachedOffsets
	order   []cacheKey
	maxSize int
}

type cacheKey struct {
	hash         string
	parentHash   string
	contextLines int
}

// NewCache returns a cache holding at most maxSize entries, evicting the
// oldest on overflow.
func NewCache(maxSize int) *Cache {
	if maxSize <= 0 {
		maxSize = 32
	}

	return &Cache{entries: make(map[cacheKey]*cachedOffsets), maxSize: maxSize}
}

// Get returns the result cached for the given key, or nil if absent.
func (c *Cache) Get(hash, parentHash string, contextLines int) *Result {
	key := cacheKey{hash, parentHash, contextLines}

	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.entries[key]
	if !ok {
		return nil
	}

	offsets := make([]uint32, entry.numLines+1)
	decompressUint32Slice(entry.compressed, offsets)
	deltaDecodeUint32Slice(offsets)

	buf := &Buffer{data: entry.body, offsets: make([]int, len(offsets))}
	for i, o := range offsets {
		buf.offsets[i] = int(o)
	}

	files := make([]FileRange, len(entry.files))
	copy(files, entry.files)

	return &Result{Buffer: buf, Files: files}
}

// Put stores result under the given key, compressing its offset index.
func (c *Cache) Put(hash, parentHash string, contextLines int, result *Result) {
	offsets := make([]uint32, len(result.Buffer.offsets))
	for i, o := range result.Buffer.offsets {
		offsets[i] = uint32(o)
	}

	deltaEncodeUint32Slice(offsets)
	compressed := compressUint32Slice(offsets)

	if compressed == nil {
		return
	}

	key := cacheKey{hash, parentHash, contextLines}

	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.entries[key]; !exists {
		if len(c.order) >= c.maxSize {
			oldest := c.order[0]
			c.order = c.order[1:]
			delete(c.entries, oldest)
		}

		c.order = append(c.order, key)
	}

	files := make([]FileRange, len(result.Files))
	copy(files, result.Files)

	c.entries[key] = &cachedOffsets{
		compressed: compressed,
		numLines:   result.Buffer.NumLines(),
		body:       result.Buffer.data,
		files:      files,
	}
}

const uint32ByteSize = 4

func compressUint32Slice(data []uint32) []byte {
	raw := new(bytes.Buffer)

	if err := binary.Write(raw, binary.LittleEndian, data); err != nil {
		return nil
	}

	compressed := make([]byte, lz4.CompressBlockBound(raw.Len()))

	written, err := lz4.CompressBlock(raw.Bytes(), compressed, nil)
	if err != nil || written == 0 {
		return nil
	}

	return compressed[:written]
}

func decompressUint32Slice(data []byte, result []uint32) {
	decompressed := make([]byte, len(result)*uint32ByteSize)

	if _, err := lz4.UncompressBlock(data, decompressed); err != nil {
		return
	}

	_ = binary.Read(bytes.NewReader(decompressed), binary.LittleEndian, result)
}

func deltaEncodeUint32Slice(data []uint32) {
	for i := len(data) - 1; i > 0; i-- {
		data[i] -= data[i-1]
	}
}

func deltaDecodeUint32Slice(data []uint32) {
	for i := 1; i < len(data); i++ {
		data[i] += data[i-1]
	}
}
