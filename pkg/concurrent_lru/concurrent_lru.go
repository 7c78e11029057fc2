package concurrent_lru

import (
	"sync"

	"github.com/pmkol/poollist/pkg/lru"
)

// ConcurrentLRU is a lru.LRU guarded by a mutex.
type ConcurrentLRU[K comparable, V any] struct {
	sync.Mutex
	lru *lru.LRU[K, V]
}

func NewConcurrentLRU[K comparable, V any](
	maxSize int,
	onEvict func(key K, v V),
) *ConcurrentLRU[K, V] {
	return &ConcurrentLRU[K, V]{
		lru: lru.NewLRU[K, V](maxSize, onEvict),
	}
}

func (c *ConcurrentLRU[K, V]) Add(key K, v V) {
	c.Lock()
	c.lru.Add(key, v)
	c.Unlock()
}

func (c *ConcurrentLRU[K, V]) Get(key K) (v V, ok bool) {
	c.Lock()
	v, ok = c.lru.Get(key)
	c.Unlock()
	return
}

// GetOrLoad returns the cached value of key, or calls load and caches its
// result. load runs with the lock held and must not call back into c.
// Errors are not cached.
func (c *ConcurrentLRU[K, V]) GetOrLoad(key K, load func() (V, error)) (V, error) {
	c.Lock()
	defer c.Unlock()

	if v, ok := c.lru.Get(key); ok {
		return v, nil
	}
	v, err := load()
	if err != nil {
		return v, err
	}
	c.lru.Add(key, v)
	return v, nil
}

func (c *ConcurrentLRU[K, V]) Len() int {
	c.Lock()
	n := c.lru.Len()
	c.Unlock()
	return n
}
