// Package cache provides a small LRU cache for compiled transforms.
// Compilation (lex, parse, generate, script compile) dominates the cost of
// one-shot evaluation, so callers evaluating the same source repeatedly
// should share a cache.
package cache

import (
	"container/list"
	"sync"

	"github.com/morphlang/morph/pkg/types"
)

// DefaultSize is the cache capacity used when none is configured.
const DefaultSize = 128

// Cache is a fixed-capacity LRU of compiled transforms, safe for concurrent
// use. Keys combine the source text with the compilation mode, so the same
// source compiled strict and forgiving occupies two slots.
type Cache struct {
	mu       sync.Mutex
	capacity int
	order    *list.List // front = most recently used
	entries  map[string]*list.Element
}

type entry struct {
	key   string
	value *types.CompiledTransform
}

// New creates a cache with the given capacity. Non-positive capacities fall
// back to DefaultSize.
func New(capacity int) *Cache {
	if capacity <= 0 {
		capacity = DefaultSize
	}
	return &Cache{
		capacity: capacity,
		order:    list.New(),
		entries:  make(map[string]*list.Element, capacity),
	}
}

// Get returns the cached transform for key, marking it most recently used.
func (c *Cache) Get(key string) (*types.CompiledTransform, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	elem, ok := c.entries[key]
	if !ok {
		return nil, false
	}
	c.order.MoveToFront(elem)
	return elem.Value.(*entry).value, true
}

// Put stores a compiled transform, evicting the least recently used entry
// when the cache is full.
func (c *Cache) Put(key string, value *types.CompiledTransform) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if elem, ok := c.entries[key]; ok {
		c.order.MoveToFront(elem)
		elem.Value.(*entry).value = value
		return
	}

	elem := c.order.PushFront(&entry{key: key, value: value})
	c.entries[key] = elem

	if c.order.Len() > c.capacity {
		oldest := c.order.Back()
		if oldest != nil {
			c.order.Remove(oldest)
			delete(c.entries, oldest.Value.(*entry).key)
		}
	}
}

// GetOrCompile returns the cached transform for key, or compiles and caches
// it. Concurrent callers may compile the same key simultaneously; both
// results are equivalent and the later Put wins.
func (c *Cache) GetOrCompile(key string, compile func() (*types.CompiledTransform, error)) (*types.CompiledTransform, error) {
	if cached, ok := c.Get(key); ok {
		return cached, nil
	}
	compiled, err := compile()
	if err != nil {
		return nil, err
	}
	c.Put(key, compiled)
	return compiled, nil
}

// Len returns the number of cached transforms.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.order.Len()
}

// Purge empties the cache.
func (c *Cache) Purge() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.order.Init()
	c.entries = make(map[string]*list.Element, c.capacity)
}
