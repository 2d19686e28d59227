package store

import (
	"LatticeDB/types"
	"fmt"

	"github.com/dgraph-io/ristretto/v2"
)

// readCache is a small bounded hot-key accelerator sitting in front of the gated
// tree lookup. It is never a second source of truth: a miss always falls through to
// the tree, and Store invalidates an entry in the same write critical section that
// changes the underlying key (see rwgate.go and store.go).
type readCache struct {
	cache *ristretto.Cache[string, types.Value]
}

func newReadCache() (*readCache, error) {
	c, err := ristretto.NewCache(&ristretto.Config[string, types.Value]{
		NumCounters: 100_000,
		MaxCost:     10_000,
		BufferItems: 64,
	})
	if err != nil {
		return nil, fmt.Errorf("store: creating read cache: %w", err)
	}
	return &readCache{cache: c}, nil
}

func (c *readCache) get(key string) (types.Value, bool) {
	return c.cache.Get(key)
}

func (c *readCache) put(key string, value types.Value) {
	c.cache.Set(key, value, 1)
}

func (c *readCache) invalidate(key string) {
	c.cache.Del(key)
}

func (c *readCache) close() {
	c.cache.Close()
}
