package list

import (
	"github.com/pmkol/poollist/pkg/pool"
)

// node is a slot of the node pool. prev and next are indices into the same
// pool, pool.InvalidIndex at either end of a list.
type node[V any] struct {
	item       V
	prev, next pool.Index
}

// header is a slot of the header pool.
type header struct {
	head, tail pool.Index
	current    pool.Index
	pos        Position
	count      int
}

func (h *header) reset() {
	h.head = pool.InvalidIndex
	h.tail = pool.InvalidIndex
	h.current = pool.InvalidIndex
	h.pos = Empty
	h.count = 0
}

func (h *header) clearCursor(pos Position) {
	h.current = pool.InvalidIndex
	h.pos = pos
}

func (h *header) setCursor(i pool.Index, pos Position) {
	h.current = i
	h.pos = pos
}

// forwardPos is the tag for node i when reached moving towards the tail.
// A single item counts as the last one.
func (h *header) forwardPos(i pool.Index) Position {
	switch i {
	case h.tail:
		return OnLast
	case h.head:
		return OnFirst
	}
	return Interior
}

// backwardPos is the tag for node i when reached moving towards the head.
// A single item counts as the first one.
func (h *header) backwardPos(i pool.Index) Position {
	switch i {
	case h.head:
		return OnFirst
	case h.tail:
		return OnLast
	}
	return Interior
}

// Stats is a snapshot of pool occupancy.
type Stats struct {
	Lists    int
	MaxLists int
	Nodes    int
	MaxNodes int
}

// Context owns a header pool and a node pool. Every list created from a
// Context draws its nodes from the same node pool. Contexts share nothing
// with each other. A Context and its lists are not safe for concurrent use.
type Context[V any] struct {
	heads *pool.Slots[header]
	nodes *pool.Slots[node[V]]
}

// NewContext creates a Context that can hold at most maxHeads lists and
// maxNodes items summed over all of its lists.
func NewContext[V any](maxHeads, maxNodes int) *Context[V] {
	return &Context[V]{
		heads: pool.NewSlots[header](maxHeads),
		nodes: pool.NewSlots[node[V]](maxNodes),
	}
}

// Create returns a new empty list, or ErrHeadPoolExhausted.
func (c *Context[V]) Create() (List[V], error) {
	ref, ok := c.heads.Alloc()
	if !ok {
		return List[V]{}, ErrHeadPoolExhausted
	}
	c.heads.At(ref.Index).reset()
	return List[V]{ctx: c, ref: ref}, nil
}

func (c *Context[V]) Stats() Stats {
	return Stats{
		Lists:    c.heads.Len(),
		MaxLists: c.heads.Cap(),
		Nodes:    c.nodes.Len(),
		MaxNodes: c.nodes.Cap(),
	}
}

func (c *Context[V]) node(i pool.Index) *node[V] {
	return c.nodes.At(i)
}

// newNode takes a node from the pool. Callers must check the error before
// touching any link.
func (c *Context[V]) newNode(item V) (pool.Index, error) {
	ref, ok := c.nodes.Alloc()
	if !ok {
		return pool.InvalidIndex, ErrNodePoolExhausted
	}
	n := c.nodes.At(ref.Index)
	n.item = item
	n.prev = pool.InvalidIndex
	n.next = pool.InvalidIndex
	return ref.Index, nil
}

// connect links prev and next as adjacent nodes.
func (c *Context[V]) connect(prev, next pool.Index) {
	c.node(prev).next = next
	c.node(next).prev = prev
}

// linkSole makes i the only node of an empty list, with the cursor on it.
func (c *Context[V]) linkSole(h *header, i pool.Index) {
	h.head = i
	h.tail = i
	h.count = 1
	h.setCursor(i, OnFirst)
}

func (c *Context[V]) linkFront(h *header, i pool.Index) {
	c.connect(i, h.head)
	h.head = i
	h.count++
}

func (c *Context[V]) linkBack(h *header, i pool.Index) {
	c.connect(h.tail, i)
	h.tail = i
	h.count++
}

// linkAfter inserts i right after mark. mark must not be the tail.
func (c *Context[V]) linkAfter(h *header, mark, i pool.Index) {
	c.connect(i, c.node(mark).next)
	c.connect(mark, i)
	h.count++
}

// linkBefore inserts i right before mark. mark must not be the head.
func (c *Context[V]) linkBefore(h *header, mark, i pool.Index) {
	c.connect(c.node(mark).prev, i)
	c.connect(i, mark)
	h.count++
}

// unlink removes node i from the list, releases its slot and returns its item.
// The cursor is left to the caller.
func (c *Context[V]) unlink(h *header, i pool.Index) V {
	n := c.node(i)
	item, prev, next := n.item, n.prev, n.next

	if prev != pool.InvalidIndex {
		c.node(prev).next = next
	} else {
		h.head = next
	}

	if next != pool.InvalidIndex {
		c.node(next).prev = prev
	} else {
		h.tail = prev
	}

	h.count--
	c.nodes.ReleaseIndex(i)
	return item
}
