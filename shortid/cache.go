package shortid

import (
	"fmt"

	"github.com/c360studio/semstreams/pkg/cache"

	"github.com/c360studio/semgraph/rdf"
)

// Cache memoizes ShortID results. A cache assumes one namespace table: share it only
// between conversions that use the same table. Cache is safe for concurrent use.
type Cache struct {
	entries cache.Cache[string]
}

// NewCache returns an empty cache.
func NewCache() *Cache {
	entries, err := cache.NewSimple[string]()
	if err != nil {
		// Only metrics registration can fail and none is requested.
		panic(fmt.Sprintf("shortid: create cache: %v", err))
	}
	return &Cache{entries: entries}
}

// Resolve returns the cached short key for iri, computing and storing it on a miss.
// Errors are not cached.
func (c *Cache) Resolve(iri string, ns rdf.Namespaces) (string, error) {
	if short, ok := c.entries.Get(iri); ok {
		return short, nil
	}

	short, err := ShortID(iri, ns)
	if err != nil {
		return "", err
	}
	// Concurrent misses compute the same key for the same table, so last write wins.
	if _, err := c.entries.Set(iri, short); err != nil {
		return "", fmt.Errorf("cache short id for %s: %w", iri, err)
	}
	return short, nil
}

// Get returns a cached entry without computing it.
func (c *Cache) Get(iri string) (string, bool) {
	return c.entries.Get(iri)
}

// Len returns the number of cached identifiers.
func (c *Cache) Len() int {
	return c.entries.Size()
}

// Snapshot returns a copy of the cached mappings.
func (c *Cache) Snapshot() map[string]string {
	keys := c.entries.Keys()
	out := make(map[string]string, len(keys))
	for _, k := range keys {
		if v, ok := c.entries.Get(k); ok {
			out[k] = v
		}
	}
	return out
}
