package cache_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fnctui/fnc/pkg/cache"
	"github.com/fnctui/fnc/pkg/scm"
)

func TestLRUBlobCachePutGet(t *testing.T) {
	c := cache.NewLRUBlobCache(1024)

	hash := scm.NewHash("aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa")
	c.Put(hash, []byte("hello world"))

	got := c.Get(hash)
	require.NotNil(t, got)
	assert.Equal(t, "hello world", string(got))

	stats := c.Stats()
	assert.Equal(t, int64(1), stats.Hits)
	assert.Equal(t, int64(0), stats.Misses)
}

func TestLRUBlobCacheMiss(t *testing.T) {
	c := cache.NewLRUBlobCache(1024)

	hash := scm.NewHash("bbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbb")
	got := c.Get(hash)
	assert.Nil(t, got)

	stats := c.Stats()
	assert.Equal(t, int64(1), stats.Misses)
}

func TestLRUBlobCacheEvictsUnderPressure(t *testing.T) {
	c := cache.NewLRUBlobCache(16)

	h1 := scm.NewHash("1111111111111111111111111111111111111111")
	h2 := scm.NewHash("2222222222222222222222222222222222222222")
	h3 := scm.NewHash("3333333333333333333333333333333333333333")

	c.Put(h1, []byte("01234567"))
	c.Put(h2, []byte("01234567"))
	c.Put(h3, []byte("01234567"))

	stats := c.Stats()
	assert.LessOrEqual(t, stats.CurrentSize, int64(16))
}

func TestLRUBlobCacheClear(t *testing.T) {
	c := cache.NewLRUBlobCache(1024)

	hash := scm.NewHash("cccccccccccccccccccccccccccccccccccccccc")
	c.Put(hash, []byte("data"))

	c.Clear()

	got := c.Get(hash)
	assert.Nil(t, got)
	assert.Equal(t, 0, c.Stats().Entries)
}

func TestStatsHitRate(t *testing.T) {
	stats := cache.LRUStats{Hits: 3, Misses: 1}
	assert.InDelta(t, 0.75, stats.HitRate(), 0.0001)

	empty := cache.LRUStats{}
	assert.Equal(t, 0.0, empty.HitRate())
}
