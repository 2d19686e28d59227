// Package store wraps the (a,b)-tree engine in the readers-writer discipline from the
// spec's concurrency model and exposes Add/Remove/Find for the server orchestrator to
// call from any session's goroutine.
package store

import (
	"LatticeDB/abtree"
	"LatticeDB/types"
	"fmt"
)

// Store is the concurrent façade over a single (a,b)-tree. The tree is the only
// shared mutable state; it is reachable exclusively through Add/Remove/Find, which
// take the write or read gate before touching it.
type Store struct {
	gate  rwGate
	tree  *abtree.Tree
	cache *readCache
}

// New builds a Store backed by a fresh (a,b)-tree with the given parameters.
func New(a, b int) (*Store, error) {
	tree, err := abtree.New(a, b)
	if err != nil {
		return nil, fmt.Errorf("store: %w", err)
	}
	cache, err := newReadCache()
	if err != nil {
		return nil, err
	}
	return &Store{tree: tree, cache: cache}, nil
}

// Add inserts key with value, or overwrites it if already present. It runs inside
// the write critical section.
func (s *Store) Add(key types.Key, value types.Value) {
	s.gate.enterWrite()
	defer s.gate.exitWrite()

	s.tree.Add(key, value)
	s.cache.invalidate(key)
}

// Remove deletes key if present; it always succeeds, even if key was absent. It
// runs inside the write critical section.
func (s *Store) Remove(key types.Key) {
	s.gate.enterWrite()
	defer s.gate.exitWrite()

	s.tree.Remove(key)
	s.cache.invalidate(key)
}

// Find looks up key. A cache hit short-circuits the read gate entirely; a miss falls
// through to the gated tree lookup and populates the cache.
func (s *Store) Find(key types.Key) (types.Value, bool) {
	if v, ok := s.cache.get(key); ok {
		return v, true
	}

	s.gate.enterRead()
	defer s.gate.exitRead()

	v, ok := s.tree.Find(key)
	if ok {
		s.cache.put(key, v)
	}
	return v, ok
}

// Close releases resources held by the store's read cache.
func (s *Store) Close() {
	s.cache.close()
}
