// Package data provides the TUI's shared fetch caches.
package data

import (
	"context"
	"fmt"
	"sync"

	"golang.org/x/sync/singleflight"
)

// FetchFunc retrieves the value for one key.
type FetchFunc[K comparable, T any] func(ctx context.Context, key K) (T, error)

// KeyedCache memoizes per-key fetches. Concurrent GetOrFetch calls for the
// same key share one fetch. GetOrFetch and Invalidate are the only write
// paths.
//
// Each key carries a generation. Invalidate bumps it, so a fetch that was
// already in flight when the key was invalidated still returns its value to
// its callers but does not store it. Clear bumps a cache-wide epoch the
// same way, covering keys whose first fetch has not landed yet.
type KeyedCache[K comparable, T any] struct {
	mu      sync.RWMutex
	entries map[K]T
	gens    map[K]uint64
	epoch   uint64
	fetch   FetchFunc[K, T]
	flight  singleflight.Group
	fetches uint64
}

// NewKeyedCache creates an empty cache backed by fetch.
func NewKeyedCache[K comparable, T any](fetch FetchFunc[K, T]) *KeyedCache[K, T] {
	return &KeyedCache[K, T]{
		entries: make(map[K]T),
		gens:    make(map[K]uint64),
		fetch:   fetch,
	}
}

// Peek returns the cached value without fetching.
func (c *KeyedCache[K, T]) Peek(key K) (T, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	v, ok := c.entries[key]
	return v, ok
}

// GetOrFetch returns the cached value for key, fetching it on a miss.
func (c *KeyedCache[K, T]) GetOrFetch(ctx context.Context, key K) (T, error) {
	c.mu.RLock()
	if v, ok := c.entries[key]; ok {
		c.mu.RUnlock()
		return v, nil
	}
	gen, epoch := c.gens[key], c.epoch
	c.mu.RUnlock()

	v, err, _ := c.flight.Do(c.flightKey(key, gen, epoch), func() (any, error) {
		c.mu.Lock()
		c.fetches++
		c.mu.Unlock()

		val, err := c.fetch(ctx, key)
		if err != nil {
			return val, err
		}

		c.mu.Lock()
		defer c.mu.Unlock()
		if c.gens[key] == gen && c.epoch == epoch {
			c.entries[key] = val
		}
		return val, nil
	})
	if err != nil {
		var zero T
		return zero, err
	}
	return v.(T), nil
}

// Invalidate drops the cached value for key. A fetch in flight for the key
// will not repopulate it.
func (c *KeyedCache[K, T]) Invalidate(key K) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, key)
	c.gens[key]++
}

// Clear invalidates every key, including keys still being fetched.
func (c *KeyedCache[K, T]) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.epoch++
	c.entries = make(map[K]T)
}

// Len returns the number of cached keys.
func (c *KeyedCache[K, T]) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// Fetches returns how many fetches have run since the cache was created.
func (c *KeyedCache[K, T]) Fetches() uint64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.fetches
}

// flightKey includes the generation and epoch so callers arriving after an
// Invalidate or Clear start a new fetch instead of joining the stale one.
func (c *KeyedCache[K, T]) flightKey(key K, gen, epoch uint64) string {
	return fmt.Sprintf("%v#%d.%d", key, gen, epoch)
}
