package commands

import (
	"sync"

	"github.com/fnctui/fnc/pkg/cache"
	"github.com/fnctui/fnc/pkg/config"
	"github.com/fnctui/fnc/pkg/diffengine"
	"github.com/fnctui/fnc/pkg/metrics"
)

const bytesPerMegabyte = 1024 * 1024

var (
	sharedMetricsOnce sync.Once
	sharedMetricsInst *metrics.Metrics

	sharedDiffCacheOnce sync.Once
	sharedDiffCacheInst *diffengine.Cache

	sharedBlobCacheOnce sync.Once
	sharedBlobCacheInst *cache.LRUBlobCache
)

// sharedMetrics returns the one instrument set shared by every view opened
// in this process, built lazily so commands that never touch a diff or
// blame (e.g. version) pay nothing for it.
func sharedMetrics() *metrics.Metrics {
	sharedMetricsOnce.Do(func() { sharedMetricsInst = metrics.New() })

	return sharedMetricsInst
}

// sharedDiffCache returns the process-wide diff cache sized from cfg, reused
// across diff views opened within the same run so re-navigating to an
// already-seen commit skips rebuilding its diff.
func sharedDiffCache(cfg *config.Config) *diffengine.Cache {
	sharedDiffCacheOnce.Do(func() { sharedDiffCacheInst = diffengine.NewCache(cfg.Cache.DiffCacheSize) })

	return sharedDiffCacheInst
}

// sharedBlobCache returns the process-wide blame blob cache sized from cfg
// (BlobCacheSize megabytes), reused across blame pivots within the same run.
func sharedBlobCache(cfg *config.Config) *cache.LRUBlobCache {
	sharedBlobCacheOnce.Do(func() {
		sharedBlobCacheInst = cache.NewLRUBlobCache(int64(cfg.Cache.BlobCacheSize) * bytesPerMegabyte)
	})

	return sharedBlobCacheInst
}
