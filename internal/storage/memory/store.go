// Package memory implements the basket store as an in-memory keyed map.
// Baskets live for the lifetime of the process; there is no eviction.
package memory

import (
	"context"
	"sync"

	"github.com/shopbasket/basket-api/internal/domain/basket"
)

var _ basket.Store = (*Store)(nil)

// entry pairs a basket with its own mutex so read-modify-write sequences
// (for example the quantity increment on a duplicate add) are atomic
// end-to-end without serializing operations on unrelated baskets.
type entry struct {
	mu     sync.Mutex
	basket *basket.Basket
}

// Store is a concurrent basket collection with get-or-create semantics.
type Store struct {
	mu      sync.RWMutex
	entries map[string]*entry
}

// NewStore returns an empty Store.
func NewStore() *Store {
	return &Store{entries: make(map[string]*entry)}
}

// getOrCreate returns the entry for id, inserting a new empty basket if
// none exists. Two concurrent calls for the same unseen id observe the same
// entry: the insert is re-checked under the write lock.
func (s *Store) getOrCreate(id string) *entry {
	s.mu.RLock()
	e, ok := s.entries[id]
	s.mu.RUnlock()
	if ok {
		return e
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if e, ok := s.entries[id]; ok {
		return e
	}
	e = &entry{basket: basket.New(id)}
	s.entries[id] = e
	return e
}

// Get returns a snapshot of the basket, creating it on first reference.
func (s *Store) Get(ctx context.Context, id string) (*basket.Basket, error) {
	return s.Update(ctx, id, nil)
}

// Update materializes the basket, runs fn against it under the per-basket
// lock, and returns a deep-copied snapshot. When fn fails, its error is
// returned without a snapshot.
func (s *Store) Update(_ context.Context, id string, fn func(*basket.Basket) error) (*basket.Basket, error) {
	e := s.getOrCreate(id)

	e.mu.Lock()
	defer e.mu.Unlock()

	if fn != nil {
		if err := fn(e.basket); err != nil {
			return nil, err
		}
	}
	return e.basket.Clone(), nil
}

// Len reports the number of live baskets.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}
