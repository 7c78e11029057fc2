package lru

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLRU_eviction(t *testing.T) {
	var evicted []int
	q := NewLRU[int, string](3, func(key int, _ string) {
		evicted = append(evicted, key)
	})

	q.Add(1, "a")
	q.Add(2, "b")
	q.Add(3, "c")
	require.Equal(t, 3, q.Len())

	// touch 1, so 2 becomes the oldest
	v, ok := q.Get(1)
	require.True(t, ok)
	require.Equal(t, "a", v)

	q.Add(4, "d")
	require.Equal(t, []int{2}, evicted)
	require.Equal(t, 3, q.Len())
	_, ok = q.Get(2)
	require.False(t, ok)

	// update in place does not evict
	q.Add(3, "cc")
	require.Equal(t, []int{2}, evicted)
	v, _ = q.Get(3)
	require.Equal(t, "cc", v)

	key, v, ok := q.PopOldest()
	require.True(t, ok)
	require.Equal(t, 1, key)
	require.Equal(t, "a", v)
	require.Equal(t, []int{2}, evicted)
}

func TestLRU_delAndClean(t *testing.T) {
	evicted := 0
	q := NewLRU[int, int](8, func(int, int) { evicted++ })
	for i := 0; i < 8; i++ {
		q.Add(i, i*10)
	}

	q.Del(3)
	q.Del(100)
	require.Equal(t, 7, q.Len())
	require.Equal(t, 1, evicted)

	removed := q.Clean(func(key, _ int) bool { return key%2 == 0 })
	require.Equal(t, 4, removed)
	require.Equal(t, 3, q.Len())
	require.Equal(t, 5, evicted)

	for _, want := range []int{1, 5, 7} {
		k, _, ok := q.PopOldest()
		require.True(t, ok)
		require.Equal(t, want, k)
	}
	_, _, ok := q.PopOldest()
	require.False(t, ok)
	require.Zero(t, q.Len())

	// the arena is reusable after draining
	for i := 0; i < 20; i++ {
		q.Add(i, i)
	}
	require.Equal(t, 8, q.Len())
}

func TestNewLRU_invalidSize(t *testing.T) {
	require.Panics(t, func() { NewLRU[int, int](0, nil) })
}
