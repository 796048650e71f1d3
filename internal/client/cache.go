package client

import (
	"sync"
	"time"

	"github.com/Zehui-sudo/learnlink-mcp/pkg/types"
)

// cacheEntry stores one cached response with the metadata the eviction
// policy needs.
type cacheEntry struct {
	value     *Response
	timestamp time.Time
	hits      int
}

// queryCache is a TTL cache over query keys. Eviction under capacity
// pressure removes the entry with the lowest blend of recency and use:
// timestamp + hits*hitWeight. Each hit thus buys the entry extra lifetime
// against eviction (not against the TTL, which is absolute).
//
// The policy differs from a plain LRU in that a frequently hit old entry
// outlives a never-hit recent one, so it is implemented directly rather
// than on a library LRU.
type queryCache struct {
	mu        sync.Mutex
	entries   map[string]*cacheEntry
	capacity  int
	ttl       time.Duration
	hitWeight time.Duration
	hits      int

	stop chan struct{}
	once sync.Once
}

func newQueryCache(capacity int, ttl, hitWeight, sweepInterval time.Duration) *queryCache {
	c := &queryCache{
		entries:   make(map[string]*cacheEntry),
		capacity:  capacity,
		ttl:       ttl,
		hitWeight: hitWeight,
		stop:      make(chan struct{}),
	}
	go c.sweep(sweepInterval)
	return c
}

// get returns a copy of the cached response so callers cannot mutate the
// stored value. A hit bumps the entry's hit counter.
func (c *queryCache) get(key string) (*Response, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.entries[key]
	if !ok {
		return nil, false
	}
	if time.Since(entry.timestamp) > c.ttl {
		delete(c.entries, key)
		return nil, false
	}
	entry.hits++
	c.hits++
	return copyResponse(entry.value), true
}

func (c *queryCache) put(key string, value *Response) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.entries[key]; !exists && len(c.entries) >= c.capacity {
		c.evictLocked()
	}
	c.entries[key] = &cacheEntry{
		value:     copyResponse(value),
		timestamp: time.Now(),
	}
}

// evictLocked removes the entry with the lowest eviction score.
func (c *queryCache) evictLocked() {
	var victim string
	var victimScore time.Time
	first := true
	for key, entry := range c.entries {
		score := entry.timestamp.Add(time.Duration(entry.hits) * c.hitWeight)
		if first || score.Before(victimScore) {
			victim = key
			victimScore = score
			first = false
		}
	}
	if !first {
		delete(c.entries, victim)
	}
}

// sweep purges expired entries in the background so the cache does not
// accumulate dead weight between lookups.
func (c *queryCache) sweep(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-c.stop:
			return
		case <-ticker.C:
			c.mu.Lock()
			now := time.Now()
			for key, entry := range c.entries {
				if now.Sub(entry.timestamp) > c.ttl {
					delete(c.entries, key)
				}
			}
			c.mu.Unlock()
		}
	}
}

func (c *queryCache) close() {
	c.once.Do(func() { close(c.stop) })
}

func (c *queryCache) stats() (entries, hits int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries), c.hits
}

// copyResponse clones a response so the cache and its callers never share
// a Data slice.
func copyResponse(r *Response) *Response {
	if r == nil {
		return nil
	}
	clone := *r
	clone.Data = make([]types.KnowledgeLink, len(r.Data))
	copy(clone.Data, r.Data)
	return &clone
}
