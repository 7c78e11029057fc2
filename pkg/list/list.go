package list

import (
	"github.com/pmkol/poollist/pkg/pool"
)

// List is a handle to a cursor list living in a Context. It is a small value
// and can be copied freely; all copies refer to the same list. Once the list
// is freed or consumed by Concat, every copy becomes stale.
type List[V any] struct {
	ctx *Context[V]
	ref pool.Ref
}

// header returns nil if l is stale.
func (l List[V]) header() *header {
	if l.ctx == nil || !l.ctx.heads.Valid(l.ref) {
		return nil
	}
	return l.ctx.heads.At(l.ref.Index)
}

func (l List[V]) Valid() bool {
	return l.header() != nil
}

// Count returns the number of items, 0 for a stale handle.
func (l List[V]) Count() int {
	h := l.header()
	if h == nil {
		return 0
	}
	return h.count
}

// Position returns the cursor position, Empty for a stale handle.
func (l List[V]) Position() Position {
	h := l.header()
	if h == nil {
		return Empty
	}
	return h.pos
}

// All returns the items from head to tail. The cursor is not moved.
func (l List[V]) All() []V {
	h := l.header()
	if h == nil {
		return nil
	}
	all := make([]V, 0, h.count)
	for i := h.head; i != pool.InvalidIndex; i = l.ctx.node(i).next {
		all = append(all, l.ctx.node(i).item)
	}
	return all
}

// First makes the first item the current one and returns it.
func (l List[V]) First() (v V, ok bool) {
	h := l.header()
	if h == nil || h.count == 0 {
		return
	}
	h.setCursor(h.head, OnFirst)
	return l.ctx.node(h.head).item, true
}

// Last makes the last item the current one and returns it.
func (l List[V]) Last() (v V, ok bool) {
	h := l.header()
	if h == nil || h.count == 0 {
		return
	}
	h.setCursor(h.tail, OnLast)
	return l.ctx.node(h.tail).item, true
}

// Curr returns the current item.
func (l List[V]) Curr() (v V, ok bool) {
	h := l.header()
	if h == nil || !h.pos.OnItem() {
		return
	}
	return l.ctx.node(h.current).item, true
}

// Next advances the cursor and returns the new current item. Advancing from
// the last item moves the cursor past the end and returns none.
func (l List[V]) Next() (v V, ok bool) {
	h := l.header()
	if h == nil {
		return
	}

	var i pool.Index
	switch h.pos {
	case BeforeStart:
		i = h.head
	case OnFirst, Interior, OnLast:
		i = l.ctx.node(h.current).next
		if i == pool.InvalidIndex {
			h.clearCursor(PastEnd)
			return
		}
	default:
		return
	}

	h.setCursor(i, h.forwardPos(i))
	return l.ctx.node(i).item, true
}

// Prev backs the cursor up and returns the new current item. Backing up from
// the first item moves the cursor before the start and returns none. From
// past the end, Prev re-enters the list on the last item.
func (l List[V]) Prev() (v V, ok bool) {
	h := l.header()
	if h == nil {
		return
	}

	var i pool.Index
	switch h.pos {
	case PastEnd:
		h.setCursor(h.tail, OnLast)
		return l.ctx.node(h.tail).item, true
	case OnFirst, Interior, OnLast:
		i = l.ctx.node(h.current).prev
		if i == pool.InvalidIndex {
			h.clearCursor(BeforeStart)
			return
		}
	default:
		return
	}

	h.setCursor(i, h.backwardPos(i))
	return l.ctx.node(i).item, true
}

// mutableHeader is header for operations that report errors.
func (l List[V]) mutableHeader() (*header, error) {
	h := l.header()
	if h == nil {
		return nil, ErrStaleList
	}
	return h, nil
}

// Add inserts item right after the current item and makes it the current one.
// Before the start the item goes to the front, past the end to the back.
func (l List[V]) Add(item V) error {
	h, err := l.mutableHeader()
	if err != nil {
		return err
	}
	i, err := l.ctx.newNode(item)
	if err != nil {
		return err
	}

	switch {
	case h.pos == Empty:
		l.ctx.linkSole(h, i)
	case h.pos == BeforeStart:
		l.ctx.linkFront(h, i)
		h.setCursor(i, OnFirst)
	case h.pos == PastEnd, h.current == h.tail:
		l.ctx.linkBack(h, i)
		h.setCursor(i, OnLast)
	default:
		l.ctx.linkAfter(h, h.current, i)
		h.setCursor(i, Interior)
	}
	return nil
}

// Insert inserts item right before the current item. Before the start or on
// the first item, the item goes to the front and becomes current; past the
// end it goes to the back and becomes current. Otherwise the cursor stays
// on the item it was on.
func (l List[V]) Insert(item V) error {
	h, err := l.mutableHeader()
	if err != nil {
		return err
	}
	i, err := l.ctx.newNode(item)
	if err != nil {
		return err
	}

	switch {
	case h.pos == Empty:
		l.ctx.linkSole(h, i)
	case h.pos == PastEnd:
		l.ctx.linkBack(h, i)
		h.setCursor(i, OnLast)
	case h.pos == BeforeStart, h.current == h.head:
		l.ctx.linkFront(h, i)
		h.setCursor(i, OnFirst)
	default:
		l.ctx.linkBefore(h, h.current, i)
	}
	return nil
}

// Append adds item to the back of the list and makes it the current one.
func (l List[V]) Append(item V) error {
	h, err := l.mutableHeader()
	if err != nil {
		return err
	}
	i, err := l.ctx.newNode(item)
	if err != nil {
		return err
	}

	if h.pos == Empty {
		l.ctx.linkSole(h, i)
		return nil
	}
	l.ctx.linkBack(h, i)
	h.setCursor(i, OnLast)
	return nil
}

// Prepend adds item to the front of the list and makes it the current one.
func (l List[V]) Prepend(item V) error {
	h, err := l.mutableHeader()
	if err != nil {
		return err
	}
	i, err := l.ctx.newNode(item)
	if err != nil {
		return err
	}

	if h.pos == Empty {
		l.ctx.linkSole(h, i)
		return nil
	}
	l.ctx.linkFront(h, i)
	h.setCursor(i, OnFirst)
	return nil
}

// Remove takes the current item out of the list and returns it. The item that
// followed it becomes current. If the cursor is not on an item, Remove does
// nothing and returns none.
func (l List[V]) Remove() (v V, ok bool) {
	h := l.header()
	if h == nil || !h.pos.OnItem() {
		return
	}

	cur := h.current
	succ := l.ctx.node(cur).next
	v = l.ctx.unlink(h, cur)

	switch {
	case h.count == 0:
		h.reset()
	case succ == pool.InvalidIndex:
		h.clearCursor(PastEnd)
	default:
		h.setCursor(succ, h.backwardPos(succ))
	}
	return v, true
}

// Trim takes the last item out of the list and returns it. The new last item
// becomes current, wherever the cursor was.
func (l List[V]) Trim() (v V, ok bool) {
	h := l.header()
	if h == nil || h.count == 0 {
		return
	}

	v = l.ctx.unlink(h, h.tail)
	if h.count == 0 {
		h.reset()
	} else {
		h.setCursor(h.tail, OnLast)
	}
	return v, true
}

// Search scans from the current item (or from the first one if the cursor is
// before the start) towards the end, and stops at the first item for which
// match returns true. That item becomes current and is returned. If nothing
// matches, the cursor is left past the end. Search returns none without
// scanning if the list is empty or the cursor is already past the end.
//
// match must not modify the list.
func (l List[V]) Search(match func(item V) bool) (v V, ok bool) {
	h := l.header()
	if h == nil {
		return
	}

	var i pool.Index
	switch h.pos {
	case BeforeStart:
		i = h.head
	case OnFirst, Interior, OnLast:
		i = h.current
	default:
		return
	}

	for i != pool.InvalidIndex {
		n := l.ctx.node(i)
		if match(n.item) {
			h.setCursor(i, h.backwardPos(i))
			return n.item, true
		}
		i = n.next
	}

	h.clearCursor(PastEnd)
	return
}

// SearchArg is Search with a comparator that takes a separate comparison
// argument.
func SearchArg[V, A any](l List[V], match func(item V, arg A) bool, arg A) (V, bool) {
	return l.Search(func(item V) bool {
		return match(item, arg)
	})
}

// Concat moves all items of other to the back of l. other is consumed: its
// header is released and the handle becomes stale. The cursor of l stays on
// the same item. If l is empty, it takes over the items and cursor of other
// while keeping its own identity.
func (l List[V]) Concat(other List[V]) error {
	h, err := l.mutableHeader()
	if err != nil {
		return err
	}
	if other.ctx != nil && other.ctx != l.ctx {
		return ErrForeignList
	}
	oh, err := other.mutableHeader()
	if err != nil {
		return err
	}
	if other.ref == l.ref {
		return ErrSelfConcat
	}

	switch {
	case oh.count == 0:
	case h.count == 0:
		*h = *oh
	default:
		l.ctx.connect(h.tail, oh.head)
		h.tail = oh.tail
		h.count += oh.count
		if h.pos.OnItem() {
			// The old tail is no longer the last item.
			h.pos = h.backwardPos(h.current)
		}
	}

	l.ctx.heads.Release(other.ref)
	return nil
}

// Free calls releaser, if not nil, once for every item from head to tail,
// returns all nodes and the header to their pools. l becomes stale.
func (l List[V]) Free(releaser func(item V)) error {
	h, err := l.mutableHeader()
	if err != nil {
		return err
	}

	for i := h.head; i != pool.InvalidIndex; {
		n := l.ctx.node(i)
		item, next := n.item, n.next
		if releaser != nil {
			releaser(item)
		}
		l.ctx.nodes.ReleaseIndex(i)
		i = next
	}

	h.reset()
	l.ctx.heads.Release(l.ref)
	return nil
}
