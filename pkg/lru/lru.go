package lru

import (
	"fmt"

	"github.com/pmkol/poollist/pkg/pool"
)

// LRU is a fixed size least recently used cache. Entries live in a
// pool.Slots arena and are linked by index, so Add never allocates
// once the map has grown to maxSize.
type LRU[K comparable, V any] struct {
	onEvict func(key K, v V)

	slots       *pool.Slots[entry[K, V]]
	m           map[K]pool.Index
	front, back pool.Index // front is the oldest
}

type entry[K comparable, V any] struct {
	key        K
	v          V
	prev, next pool.Index
}

func NewLRU[K comparable, V any](maxSize int, onEvict func(key K, v V)) *LRU[K, V] {
	if maxSize <= 0 {
		panic(fmt.Sprintf("LRU: invalid max size: %d", maxSize))
	}

	return &LRU[K, V]{
		onEvict: onEvict,
		slots:   pool.NewSlots[entry[K, V]](maxSize),
		m:       make(map[K]pool.Index, maxSize),
		front:   pool.InvalidIndex,
		back:    pool.InvalidIndex,
	}
}

func (q *LRU[K, V]) Add(key K, v V) {
	// Update existing
	if i, ok := q.m[key]; ok {
		q.slots.At(i).v = v
		q.moveToBack(i)
		return
	}

	ref, ok := q.slots.Alloc()
	if !ok {
		// Full, the oldest slot is recycled.
		q.delIndex(q.front, true)
		ref, _ = q.slots.Alloc()
	}

	e := q.slots.At(ref.Index)
	e.key = key
	e.v = v
	q.m[key] = ref.Index
	q.pushBack(ref.Index)
}

func (q *LRU[K, V]) Get(key K) (v V, ok bool) {
	i, ok := q.m[key]
	if !ok {
		return
	}
	q.moveToBack(i)
	return q.slots.At(i).v, true
}

func (q *LRU[K, V]) Del(key K) {
	i, ok := q.m[key]
	if !ok {
		return
	}
	q.delIndex(i, true)
}

// PopOldest removes the oldest entry. onEvict is not called.
func (q *LRU[K, V]) PopOldest() (key K, v V, ok bool) {
	if q.front == pool.InvalidIndex {
		return
	}

	e := q.slots.At(q.front)
	key, v = e.key, e.v
	q.delIndex(q.front, false)
	return key, v, true
}

// Clean removes all entries for which f returns true.
func (q *LRU[K, V]) Clean(f func(key K, v V) bool) (removed int) {
	i := q.front
	for i != pool.InvalidIndex {
		e := q.slots.At(i)
		next := e.next
		if f(e.key, e.v) {
			q.delIndex(i, true)
			removed++
		}
		i = next
	}
	return
}

func (q *LRU[K, V]) Len() int {
	return q.slots.Len()
}

func (q *LRU[K, V]) pushBack(i pool.Index) {
	e := q.slots.At(i)
	e.prev = q.back
	e.next = pool.InvalidIndex

	if q.back == pool.InvalidIndex {
		q.front = i
	} else {
		q.slots.At(q.back).next = i
	}
	q.back = i
}

func (q *LRU[K, V]) detach(i pool.Index) {
	e := q.slots.At(i)
	if e.prev != pool.InvalidIndex {
		q.slots.At(e.prev).next = e.next
	} else {
		q.front = e.next
	}
	if e.next != pool.InvalidIndex {
		q.slots.At(e.next).prev = e.prev
	} else {
		q.back = e.prev
	}
}

func (q *LRU[K, V]) moveToBack(i pool.Index) {
	if q.back == i {
		return
	}
	q.detach(i)
	q.pushBack(i)
}

func (q *LRU[K, V]) delIndex(i pool.Index, evict bool) {
	e := q.slots.At(i)
	key, v := e.key, e.v

	q.detach(i)
	delete(q.m, key)
	q.slots.ReleaseIndex(i)

	if evict && q.onEvict != nil {
		q.onEvict(key, v)
	}
}
