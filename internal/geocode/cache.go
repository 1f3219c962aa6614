package geocode

import (
	"strings"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

const (
	DefaultCacheSize = 4096
	DefaultCacheTTL  = 24 * time.Hour
)

type cached[V any] struct {
	value V
	err   error
}

// Cache remembers definitive lookup answers, including "nothing found",
// so identical queries within one run hit the API only once.
type Cache[V any] struct {
	lru *expirable.LRU[string, cached[V]]
}

// NewCache creates a cache holding up to size answers for ttl
func NewCache[V any](size int, ttl time.Duration) *Cache[V] {
	if size <= 0 {
		size = DefaultCacheSize
	}
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	return &Cache[V]{lru: expirable.NewLRU[string, cached[V]](size, nil, ttl)}
}

// cacheKey normalizes a query so spacing and case do not split entries
func cacheKey(query string) string {
	return strings.ToLower(strings.Join(strings.Fields(query), " "))
}

// Do returns the cached answer for query or calls fetch and remembers its
// answer when it is definitive.
func (c *Cache[V]) Do(query string, fetch func() (V, error)) (V, error) {
	key := cacheKey(query)
	if hit, ok := c.lru.Get(key); ok {
		return hit.value, hit.err
	}

	value, err := fetch()
	if Definitive(err) {
		c.lru.Add(key, cached[V]{value: value, err: err})
	}
	return value, err
}

// Len returns the number of cached answers
func (c *Cache[V]) Len() int {
	return c.lru.Len()
}
