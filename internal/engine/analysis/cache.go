package analysis

import (
	"crypto/sha256"
	"encoding/hex"
	"sort"
	"sync"
	"time"

	"pylens/internal/engine/parser"
	"pylens/internal/shared/observability"
)

// ResultCache is a TTL-bounded store of finished analysis results keyed by
// content hash. Entries are evicted lazily on lookup. All-empty results are
// never stored, so a transient parse failure cannot stick until expiry.
type ResultCache struct {
	mu      sync.Mutex
	ttl     time.Duration
	entries map[string]cacheEntry
}

type cacheEntry struct {
	value     *parser.AnalysisResult
	timestamp time.Time
}

func NewResultCache(ttl time.Duration) *ResultCache {
	return &ResultCache{
		ttl:     ttl,
		entries: make(map[string]cacheEntry),
	}
}

func (c *ResultCache) Get(key string) *parser.AnalysisResult {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.entries[key]
	if !ok {
		observability.CacheMissesTotal.Inc()
		return nil
	}
	if time.Since(entry.timestamp) > c.ttl {
		delete(c.entries, key)
		observability.CacheMissesTotal.Inc()
		return nil
	}
	observability.CacheHitsTotal.Inc()
	return entry.value
}

func (c *ResultCache) Put(key string, value *parser.AnalysisResult) {
	if value.IsEmpty() {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = cacheEntry{value: value, timestamp: time.Now()}
}

func (c *ResultCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// ContentKey returns the single-file cache key: a sha256 digest of the
// exact source text.
func ContentKey(code string) string {
	sum := sha256.Sum256([]byte(code))
	return hex.EncodeToString(sum[:])
}

// CrossFileKey returns the project-analysis cache key. It hashes the target
// content together with every sibling's path and content in sorted order, so
// any edit anywhere in the project produces a fresh key.
func CrossFileKey(targetFile, targetCode string, files map[string]string) string {
	paths := make([]string, 0, len(files))
	for path := range files {
		paths = append(paths, path)
	}
	sort.Strings(paths)

	h := sha256.New()
	h.Write([]byte(targetFile))
	h.Write([]byte{0})
	h.Write([]byte(targetCode))
	for _, path := range paths {
		h.Write([]byte{0})
		h.Write([]byte(path))
		h.Write([]byte{0})
		h.Write([]byte(files[path]))
	}
	return "cross:" + hex.EncodeToString(h.Sum(nil))
}
