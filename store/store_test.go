package store

import (
	"LatticeDB/types"
	"fmt"
	"sync"
	"testing"
)

func TestStoreAddFindRemove(t *testing.T) {
	s, err := New(2, 3)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer s.Close()

	s.Add("k", types.NewStringValue("v1"))
	if v, ok := s.Find("k"); !ok {
		t.Fatalf("expected to find k")
	} else if got, _ := v.AsString(); got != "v1" {
		t.Fatalf("got %q, want v1", got)
	}

	s.Add("k", types.NewStringValue("v2"))
	if v, ok := s.Find("k"); !ok || func() string { s, _ := v.AsString(); return s }() != "v2" {
		t.Fatalf("expected overwritten value v2")
	}

	s.Remove("k")
	if _, ok := s.Find("k"); ok {
		t.Fatalf("expected k removed")
	}

	// Removing an absent key always succeeds (no panic, no error).
	s.Remove("never-existed")
}

func TestStoreCacheInvalidatedOnWrite(t *testing.T) {
	s, err := New(2, 3)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer s.Close()

	s.Add("k", types.NewIntValue(1))
	if _, ok := s.Find("k"); !ok {
		t.Fatalf("expected to find k")
	}

	s.Add("k", types.NewIntValue(2))
	v, ok := s.Find("k")
	if !ok {
		t.Fatalf("expected to find k after overwrite")
	}
	n, _ := v.AsInt()
	if n != 2 {
		t.Fatalf("Find returned stale cached value %d, want 2", n)
	}
}

// TestConcurrentReadersAndWriters exercises N readers racing M writers over a small
// key universe and checks that no reader observes a malformed value and that a write
// made after all goroutines have finished is observable.
func TestConcurrentReadersAndWriters(t *testing.T) {
	s, err := New(2, 4)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer s.Close()

	const (
		writers    = 8
		readers    = 16
		opsPerGor  = 200
		keyUniverse = 20
	)

	keys := make([]string, keyUniverse)
	for i := range keys {
		keys[i] = fmt.Sprintf("key-%d", i)
	}

	var wg sync.WaitGroup
	for w := 0; w < writers; w++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			for i := 0; i < opsPerGor; i++ {
				key := keys[(id+i)%keyUniverse]
				if i%5 == 0 {
					s.Remove(key)
				} else {
					s.Add(key, types.NewIntValue(int32(id*1000+i)))
				}
			}
		}(w)
	}
	for r := 0; r < readers; r++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			for i := 0; i < opsPerGor; i++ {
				key := keys[(id+i)%keyUniverse]
				if v, ok := s.Find(key); ok {
					if _, err := v.AsInt(); err != nil {
						t.Errorf("corrupted value observed for %q: %v", key, err)
					}
				}
			}
		}(r)
	}
	wg.Wait()

	s.Add("final", types.NewStringValue("done"))
	v, ok := s.Find("final")
	if !ok {
		t.Fatalf("expected to find final sentinel key")
	}
	if got, _ := v.AsString(); got != "done" {
		t.Fatalf("got %q, want done", got)
	}
}
