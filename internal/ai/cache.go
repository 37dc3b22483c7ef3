package ai

import (
	"fmt"
	"hash/fnv"
	"strings"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

// DefaultCacheTTL is how long an AI response is served from cache for
// identical queries from the same sender.
const DefaultCacheTTL = 300 * time.Second

const defaultCacheSize = 4096

// Cache is a shared expiring response cache. Identical near-simultaneous
// queries from the same sender hit the cache instead of multiplying
// provider calls.
type Cache struct {
	lru *expirable.LRU[string, string]
}

// NewCache creates a response cache. Non-positive size or ttl fall back to
// defaults.
func NewCache(size int, ttl time.Duration) *Cache {
	if size <= 0 {
		size = defaultCacheSize
	}
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	return &Cache{lru: expirable.NewLRU[string, string](size, nil, ttl)}
}

// Get returns the cached response for a key, if present and unexpired.
func (c *Cache) Get(key string) (string, bool) {
	return c.lru.Get(key)
}

// Set stores a response under a key.
func (c *Cache) Set(key, value string) {
	c.lru.Add(key, value)
}

// Key derives the stable cache key for a sender/message pair. The message
// is lowercased and trimmed so trivially different spellings share an
// entry.
func Key(sender, message string) string {
	h := fnv.New64a()
	fmt.Fprintf(h, "%s:%s", sender, strings.ToLower(strings.TrimSpace(message)))
	return fmt.Sprintf("ai_response:%x", h.Sum64())
}
