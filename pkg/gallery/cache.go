package gallery

import (
	"os"
	"time"

	lru "github.com/hashicorp/golang-lru/v2/expirable"

	"pixivcrawler/internal/metrics"
	"pixivcrawler/pkg/manifest"
)

type cachedManifest struct {
	modTime time.Time
	size    int64
	names   []string
}

// manifestCache keeps parsed manifests keyed by path. An entry is reused
// only while the file's modification time and size are unchanged.
type manifestCache struct {
	inner *lru.LRU[string, cachedManifest]
}

func newManifestCache(size int, ttl time.Duration) *manifestCache {
	if size < 1 {
		size = 1
	}
	return &manifestCache{inner: lru.NewLRU[string, cachedManifest](size, nil, ttl)}
}

// Get returns the names listed in the manifest at path
func (c *manifestCache) Get(path string) ([]string, error) {
	info, err := os.Stat(path)
	if err != nil {
		c.inner.Remove(path)
		return nil, err
	}

	if entry, ok := c.inner.Get(path); ok && entry.modTime.Equal(info.ModTime()) && entry.size == info.Size() {
		metrics.ManifestCacheHitsTotal.Inc()
		return entry.names, nil
	}
	metrics.ManifestCacheMissesTotal.Inc()

	names, err := manifest.Read(path)
	if err != nil {
		c.inner.Remove(path)
		return nil, err
	}
	c.inner.Add(path, cachedManifest{modTime: info.ModTime(), size: info.Size(), names: names})
	return names, nil
}

func (c *manifestCache) Len() int {
	return c.inner.Len()
}
