package pool

import (
	"fmt"
	"math"
)

// Index is the position of a slot inside a Slots arena.
type Index uint32

// InvalidIndex is used when a link doesn't point anywhere. It is the
// equivalent of a nil pointer for index-linked structures.
const InvalidIndex Index = math.MaxUint32

// Ref identifies one allocation of a slot. The generation is bumped every
// time the slot is released, so a Ref kept after Release never validates
// again, even if the same slot was handed out to somebody else.
type Ref struct {
	Index Index
	Gen   uint32
}

// Slots is a fixed capacity arena of T with a stack of free slot indices.
// It never grows. Not safe for concurrent use.
type Slots[T any] struct {
	slots []T
	gens  []uint32
	used  []bool
	free  []Index // stack, top is the last element
}

func NewSlots[T any](capacity int) *Slots[T] {
	if capacity <= 0 || capacity >= int(InvalidIndex) {
		panic(fmt.Sprintf("pool: invalid capacity: %d", capacity))
	}

	s := &Slots[T]{
		slots: make([]T, capacity),
		gens:  make([]uint32, capacity),
		used:  make([]bool, capacity),
		free:  make([]Index, capacity),
	}

	// Lowest index on top so a fresh arena hands out slot 0 first.
	for i := range s.free {
		s.free[i] = Index(capacity - 1 - i)
	}
	return s
}

// Alloc pops a free slot. ok is false when the arena is saturated.
// The slot content is always the zero T.
func (s *Slots[T]) Alloc() (ref Ref, ok bool) {
	n := len(s.free)
	if n == 0 {
		return Ref{Index: InvalidIndex}, false
	}

	i := s.free[n-1]
	s.free = s.free[:n-1]
	s.used[i] = true
	return Ref{Index: i, Gen: s.gens[i]}, true
}

// Release zeroes the slot and pushes it back onto the free stack.
// It returns false and changes nothing if ref is stale or not allocated.
func (s *Slots[T]) Release(ref Ref) bool {
	if !s.Valid(ref) {
		return false
	}
	s.ReleaseIndex(ref.Index)
	return true
}

// ReleaseIndex is Release for callers that own the slot and do not keep a Ref,
// e.g. list nodes which are only reachable through their owner's links.
func (s *Slots[T]) ReleaseIndex(i Index) {
	if int(i) >= len(s.slots) || !s.used[i] {
		panic(fmt.Sprintf("pool: release of free slot %d", i))
	}

	var zero T
	s.slots[i] = zero
	s.used[i] = false
	s.gens[i]++
	s.free = append(s.free, i)
}

// Valid reports whether ref still refers to a live allocation.
func (s *Slots[T]) Valid(ref Ref) bool {
	if int(ref.Index) >= len(s.slots) {
		return false
	}
	return s.used[ref.Index] && s.gens[ref.Index] == ref.Gen
}

// At returns the slot at i. The pointer stays valid for the lifetime
// of s because the backing array never moves.
func (s *Slots[T]) At(i Index) *T {
	return &s.slots[i]
}

// Cap returns the number of slots.
func (s *Slots[T]) Cap() int {
	return len(s.slots)
}

// Len returns the number of allocated slots.
func (s *Slots[T]) Len() int {
	return len(s.slots) - len(s.free)
}

// Available returns the number of free slots.
func (s *Slots[T]) Available() int {
	return len(s.free)
}
