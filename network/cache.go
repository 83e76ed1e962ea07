package network

import (
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"
)

// defaultTTL applies to responses without freshness headers.
const defaultTTL = 5 * time.Minute

// CacheEntry is a cached response and when it stops being fresh.
type CacheEntry struct {
	Response *Response
	CachedAt time.Time
	Expires  time.Time
}

// Fresh reports whether the entry may still be served at now.
func (e *CacheEntry) Fresh(now time.Time) bool {
	return now.Before(e.Expires)
}

// Cache is a bounded in-memory response cache keyed by URL. When full, the
// oldest entry is evicted. It is safe for concurrent use.
type Cache struct {
	mu      sync.Mutex
	entries map[string]*CacheEntry
	maxSize int
	now     func() time.Time
}

// NewCache creates a cache holding at most maxSize entries. A non-positive
// size means 100.
func NewCache(maxSize int) *Cache {
	if maxSize <= 0 {
		maxSize = 100
	}
	return &Cache{
		entries: make(map[string]*CacheEntry),
		maxSize: maxSize,
		now:     time.Now,
	}
}

// Get returns the fresh entry for url. Stale entries are dropped.
func (c *Cache) Get(url string) (*CacheEntry, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.entries[url]
	if !ok {
		return nil, false
	}
	if !entry.Fresh(c.now()) {
		delete(c.entries, url)
		return nil, false
	}
	return entry, true
}

// Set stores resp under url unless its headers forbid it. Freshness comes
// from Cache-Control max-age, then Expires, then defaultTTL.
func (c *Cache) Set(url string, resp *Response) {
	directives := cacheDirectives(resp.Headers.Get("Cache-Control"))
	if _, ok := directives["no-store"]; ok {
		return
	}

	now := c.now()
	entry := &CacheEntry{Response: resp, CachedAt: now, Expires: now.Add(defaultTTL)}
	if _, ok := directives["no-cache"]; ok {
		entry.Expires = now
	} else if v, ok := directives["max-age"]; ok {
		if secs, err := strconv.Atoi(v); err == nil && secs >= 0 {
			entry.Expires = now.Add(time.Duration(secs) * time.Second)
		}
	} else if exp := resp.Headers.Get("Expires"); exp != "" {
		if t, err := http.ParseTime(exp); err == nil {
			entry.Expires = t
		}
	}
	if !entry.Fresh(now) {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if _, exists := c.entries[url]; !exists && len(c.entries) >= c.maxSize {
		c.evictOldest()
	}
	c.entries[url] = entry
}

// Len returns the number of entries, fresh or not.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// Clear drops every entry.
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	clear(c.entries)
}

// evictOldest must be called with c.mu held.
func (c *Cache) evictOldest() {
	var oldest string
	var oldestAt time.Time
	for url, entry := range c.entries {
		if oldest == "" || entry.CachedAt.Before(oldestAt) {
			oldest, oldestAt = url, entry.CachedAt
		}
	}
	delete(c.entries, oldest)
}

// cacheDirectives parses a Cache-Control value into lower-cased directive
// names mapped to their (unquoted) arguments.
func cacheDirectives(value string) map[string]string {
	out := make(map[string]string)
	for part := range strings.SplitSeq(value, ",") {
		name, arg, _ := strings.Cut(strings.TrimSpace(part), "=")
		if name == "" {
			continue
		}
		out[strings.ToLower(name)] = strings.Trim(arg, `"`)
	}
	return out
}
