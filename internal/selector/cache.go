package selector

import (
	"fmt"
	"slices"

	lru "github.com/hashicorp/golang-lru/v2"

	"pulse/internal/domain"
)

// DefaultCacheSize covers every category with a handful of query/sort variants.
const DefaultCacheSize = 64

type cacheKey struct {
	scope   string
	version uint64
	query   string
	sort    domain.SortConfig
}

// Cache memoizes Process by (scope, store version, query, sort config).
// A store version identifies the token contents, so the input slice itself is
// not part of the key.
type Cache struct {
	lru *lru.Cache[cacheKey, []domain.Token]
}

// NewCache creates a cache holding up to size results.
func NewCache(size int) (*Cache, error) {
	if size <= 0 {
		size = DefaultCacheSize
	}
	c, err := lru.New[cacheKey, []domain.Token](size)
	if err != nil {
		return nil, fmt.Errorf("selector cache: %w", err)
	}
	return &Cache{lru: c}, nil
}

// Process returns the memoized result or computes and stores it.
// The returned slice is a copy the caller may modify.
func (c *Cache) Process(scope string, version uint64, tokens []domain.Token, query string, cfg domain.SortConfig) []domain.Token {
	key := cacheKey{scope: scope, version: version, query: query, sort: cfg}
	if hit, ok := c.lru.Get(key); ok {
		return slices.Clone(hit)
	}
	out := Process(tokens, query, cfg)
	c.lru.Add(key, out)
	return slices.Clone(out)
}

// Len returns the number of cached results
func (c *Cache) Len() int {
	return c.lru.Len()
}

// Purge drops every cached result.
func (c *Cache) Purge() {
	c.lru.Purge()
}
