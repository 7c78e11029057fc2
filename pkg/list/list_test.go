package list

import (
	"errors"
	"math/rand"
	"strconv"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/pmkol/poollist/pkg/pool"
)

const none = "<none>"

func item(v string, ok bool) string {
	if !ok {
		return none
	}
	return v
}

func newList(t *testing.T, ctx *Context[string], items ...string) List[string] {
	t.Helper()
	l, err := ctx.Create()
	require.NoError(t, err)
	for _, v := range items {
		require.NoError(t, l.Append(v))
	}
	return l
}

// requireConsistent checks the header and link invariants of l.
func requireConsistent[V any](t *testing.T, l List[V]) {
	t.Helper()
	h := l.header()
	require.NotNil(t, h, "stale list")

	if h.count == 0 {
		require.Equal(t, pool.InvalidIndex, h.head)
		require.Equal(t, pool.InvalidIndex, h.tail)
		require.Equal(t, pool.InvalidIndex, h.current)
		require.Equal(t, Empty, h.pos)
		return
	}

	seen := make(map[pool.Index]struct{}, h.count)
	prev := pool.InvalidIndex
	for i := h.head; i != pool.InvalidIndex; i = l.ctx.node(i).next {
		require.Equal(t, prev, l.ctx.node(i).prev, "broken prev link at %d", i)
		seen[i] = struct{}{}
		prev = i
		require.LessOrEqual(t, len(seen), h.count, "chain longer than count")
	}
	require.Len(t, seen, h.count)
	require.Equal(t, h.tail, prev)
	if h.count == 1 {
		require.Equal(t, h.head, h.tail)
	}

	switch h.pos {
	case BeforeStart, PastEnd:
		require.Equal(t, pool.InvalidIndex, h.current)
	case OnFirst:
		require.Equal(t, h.head, h.current)
	case OnLast:
		require.Equal(t, h.tail, h.current)
	case Interior:
		require.Contains(t, seen, h.current)
		require.NotEqual(t, h.head, h.current)
		require.NotEqual(t, h.tail, h.current)
	default:
		t.Fatalf("non-empty list in position %s", h.pos)
	}
}

func Test_List_walkthrough(t *testing.T) {
	ctx := NewContext[string](2, 10)
	l := newList(t, ctx)

	require.Zero(t, l.Count())
	require.Equal(t, none, item(l.First()))
	require.Equal(t, none, item(l.Last()))
	require.Equal(t, none, item(l.Next()))
	require.Equal(t, none, item(l.Prev()))
	require.Equal(t, Empty, l.Position())

	// single item
	require.NoError(t, l.Add("1"))
	require.Equal(t, "1", item(l.Curr()))
	require.Equal(t, none, item(l.Next()))
	require.Equal(t, "1", item(l.Prev()))
	require.Equal(t, none, item(l.Prev()))
	require.Equal(t, "1", item(l.Trim()))
	require.Zero(t, l.Count())
	require.Equal(t, none, item(l.First()))
	require.Equal(t, Empty, l.Position())

	require.NoError(t, l.Insert("5"))
	require.NoError(t, l.Insert("4"))
	require.NoError(t, l.Insert("3"))
	require.NoError(t, l.Append("6"))
	require.NoError(t, l.Append("7"))
	require.NoError(t, l.Prepend("2"))
	require.NoError(t, l.Prepend("1"))
	require.Equal(t, "7", item(l.Last()))
	require.NoError(t, l.Add("8"))
	require.NoError(t, l.Add("9"))
	require.NoError(t, l.Add("10"))
	requireConsistent(t, l)

	require.Equal(t, "1", item(l.First()))
	require.Equal(t, none, item(l.Prev()))
	for i := 1; i <= 10; i++ {
		require.Equal(t, strconv.Itoa(i), item(l.Next()))
	}
	require.Equal(t, none, item(l.Next()))
	for i := 10; i >= 1; i-- {
		require.Equal(t, strconv.Itoa(i), item(l.Prev()))
	}
	require.Equal(t, none, item(l.Prev()))

	// node pool is full
	for _, op := range []func(string) error{l.Add, l.Insert, l.Prepend, l.Append} {
		err := op("11")
		require.ErrorIs(t, err, ErrNodePoolExhausted)
		require.ErrorIs(t, err, ErrPoolExhausted)
	}
	require.Equal(t, 10, l.Count())

	l2 := newList(t, ctx)
	_, err := ctx.Create()
	require.ErrorIs(t, err, ErrHeadPoolExhausted)
	require.ErrorIs(t, err, ErrPoolExhausted)
	for _, op := range []func(string) error{l2.Add, l2.Insert, l2.Prepend, l2.Append} {
		require.ErrorIs(t, op("11"), ErrNodePoolExhausted)
	}
	require.Zero(t, l2.Count())
	require.Equal(t, Empty, l2.Position())

	require.Equal(t, "10", item(l.Trim()))
	require.Equal(t, "9", item(l.Trim()))
	require.Equal(t, "8", item(l.Trim()))
	require.Equal(t, "6", item(l.Prev()))
	require.Equal(t, "6", item(l.Remove()))
	require.Equal(t, "7", item(l.Curr()))
	require.Equal(t, "7", item(l.Remove()))
	require.Equal(t, PastEnd, l.Position())

	require.NoError(t, l2.Add("6"))
	for _, v := range []string{"7", "8", "9", "10"} {
		require.NoError(t, l2.Append(v))
	}

	require.NoError(t, l.Concat(l2))
	require.False(t, l2.Valid())
	require.Equal(t, 10, l.Count())
	requireConsistent(t, l)

	// still past the end
	for i := 10; i >= 1; i-- {
		require.Equal(t, strconv.Itoa(i), item(l.Prev()))
	}
	require.Equal(t, none, item(l.Prev()))
	for i := 1; i <= 10; i++ {
		require.Equal(t, strconv.Itoa(i), item(l.Next()))
	}
	require.Equal(t, none, item(l.Next()))

	// the consumed header is available again, nodes are not
	l4 := newList(t, ctx)
	for _, op := range []func(string) error{l4.Add, l4.Insert, l4.Prepend, l4.Append} {
		require.ErrorIs(t, op("11"), ErrNodePoolExhausted)
	}

	freed := 0
	require.NoError(t, l.Free(func(v string) {
		require.NotEmpty(t, v)
		freed++
	}))
	require.Equal(t, 10, freed)

	for i := 10; i >= 1; i-- {
		require.NoError(t, l4.Prepend(strconv.Itoa(i)))
	}
	require.Equal(t, none, item(l4.Prev()))
	for i := 1; i <= 10; i++ {
		require.Equal(t, strconv.Itoa(i), item(l4.Next()))
	}
	require.Equal(t, none, item(l4.Next()))
	for i := 10; i >= 1; i-- {
		require.Equal(t, strconv.Itoa(i), item(l4.Prev()))
	}
	require.Equal(t, none, item(l4.Prev()))

	eq := func(v, arg string) bool { return v == arg }
	require.Equal(t, "5", item(SearchArg(l4, eq, "5")))
	require.Equal(t, none, item(SearchArg(l4, eq, "4")))
	l4.First()
	require.Equal(t, "6", item(SearchArg(l4, eq, "6")))
	require.Equal(t, none, item(SearchArg(l4, eq, "5")))
	l4.First()
	require.Equal(t, none, item(SearchArg(l4, eq, "11")))
	requireConsistent(t, l4)
}

func Test_List_orderPreservation(t *testing.T) {
	ctx := NewContext[string](1, 3)
	l := newList(t, ctx, "a", "b", "c")

	l.First()
	require.Equal(t, none, item(l.Prev()))
	require.Equal(t, BeforeStart, l.Position())

	var got []string
	for v, ok := l.Next(); ok; v, ok = l.Next() {
		got = append(got, v)
	}
	require.Equal(t, []string{"a", "b", "c"}, got)
	require.Equal(t, PastEnd, l.Position())

	got = got[:0]
	for v, ok := l.Prev(); ok; v, ok = l.Prev() {
		got = append(got, v)
	}
	require.Equal(t, []string{"c", "b", "a"}, got)
	require.Equal(t, BeforeStart, l.Position())
}

func Test_List_capacity(t *testing.T) {
	ctx := NewContext[string](3, 5)
	a := newList(t, ctx, "a1", "a2")
	b := newList(t, ctx, "b1")
	c := newList(t, ctx, "c1", "c2")

	_, err := ctx.Create()
	require.ErrorIs(t, err, ErrHeadPoolExhausted)
	require.Equal(t, Stats{Lists: 3, MaxLists: 3, Nodes: 5, MaxNodes: 5}, ctx.Stats())

	b.First()
	for _, l := range []List[string]{a, b, c} {
		pos := l.Position()
		cur := item(l.Curr())
		require.ErrorIs(t, l.Add("x"), ErrNodePoolExhausted)
		require.ErrorIs(t, l.Insert("x"), ErrNodePoolExhausted)
		// nothing changed on failure
		require.Equal(t, pos, l.Position())
		require.Equal(t, cur, item(l.Curr()))
		requireConsistent(t, l)
	}
	require.Equal(t, []string{"a1", "a2"}, a.All())

	// releasing a node from any list frees room for any other list
	require.Equal(t, "c2", item(c.Trim()))
	require.NoError(t, b.Append("b2"))
	require.ErrorIs(t, a.Append("a3"), ErrNodePoolExhausted)

	require.Equal(t, "b1", item(b.First()))
	require.Equal(t, "b1", item(b.Remove()))
	require.NoError(t, a.Append("a3"))
	require.Equal(t, []string{"a1", "a2", "a3"}, a.All())

	require.NoError(t, c.Free(nil))
	require.Equal(t, Stats{Lists: 2, MaxLists: 3, Nodes: 4, MaxNodes: 5}, ctx.Stats())
	d := newList(t, ctx, "d1")
	require.True(t, d.Valid())
	require.ErrorIs(t, d.Append("d2"), ErrNodePoolExhausted)
}

func Test_List_randomOps(t *testing.T) {
	const (
		heads = 4
		nodes = 24
	)
	ctx := NewContext[int](heads, nodes)
	r := rand.New(rand.NewSource(7))

	var lists []List[int]
	for i := 0; i < heads; i++ {
		l, err := ctx.Create()
		require.NoError(t, err)
		lists = append(lists, l)
	}

	freed := 0
	for step := 0; step < 5000; step++ {
		k := r.Intn(len(lists))
		l := lists[k]

		switch op := r.Intn(16); op {
		case 0:
			l.First()
		case 1:
			l.Last()
		case 2, 3:
			l.Next()
		case 4, 5:
			l.Prev()
		case 6:
			err := l.Add(step)
			if err != nil {
				require.ErrorIs(t, err, ErrNodePoolExhausted)
			}
		case 7:
			err := l.Insert(step)
			if err != nil {
				require.ErrorIs(t, err, ErrNodePoolExhausted)
			}
		case 8:
			_ = l.Append(step)
		case 9:
			_ = l.Prepend(step)
		case 10, 11:
			l.Remove()
		case 12:
			l.Trim()
		case 13:
			want := r.Intn(step + 1)
			l.Search(func(v int) bool { return v == want })
		case 14:
			other := lists[(k+1)%len(lists)]
			require.NoError(t, l.Concat(other))
			require.False(t, other.Valid())
			nl, err := ctx.Create()
			require.NoError(t, err)
			lists[(k+1)%len(lists)] = nl
		case 15:
			n := l.Count()
			calls := 0
			require.NoError(t, l.Free(func(int) { calls++ }))
			require.Equal(t, n, calls)
			freed += calls
			nl, err := ctx.Create()
			require.NoError(t, err)
			lists[k] = nl
		}

		total := 0
		for _, l := range lists {
			requireConsistent(t, l)
			total += l.Count()
		}
		require.Equal(t, total, ctx.Stats().Nodes)
		require.Equal(t, heads, ctx.Stats().Lists)
	}
	require.NotZero(t, freed)
}

func Test_List_staleHandle(t *testing.T) {
	ctx := NewContext[string](1, 4)
	old := newList(t, ctx, "a", "b")
	require.NoError(t, old.Free(nil))

	// the same header slot now belongs to a new list
	fresh := newList(t, ctx, "x")
	require.False(t, old.Valid())
	require.True(t, fresh.Valid())

	require.Zero(t, old.Count())
	require.Equal(t, Empty, old.Position())
	require.Nil(t, old.All())
	require.Equal(t, none, item(old.First()))
	require.Equal(t, none, item(old.Last()))
	require.Equal(t, none, item(old.Next()))
	require.Equal(t, none, item(old.Prev()))
	require.Equal(t, none, item(old.Curr()))
	require.Equal(t, none, item(old.Remove()))
	require.Equal(t, none, item(old.Trim()))
	require.Equal(t, none, item(old.Search(func(string) bool { return true })))
	require.ErrorIs(t, old.Add("y"), ErrStaleList)
	require.ErrorIs(t, old.Insert("y"), ErrStaleList)
	require.ErrorIs(t, old.Append("y"), ErrStaleList)
	require.ErrorIs(t, old.Prepend("y"), ErrStaleList)
	require.ErrorIs(t, old.Free(nil), ErrStaleList)
	require.ErrorIs(t, old.Concat(fresh), ErrStaleList)
	require.ErrorIs(t, fresh.Concat(old), ErrStaleList)

	require.Equal(t, []string{"x"}, fresh.All())
	require.Equal(t, 1, ctx.Stats().Lists)

	var zero List[string]
	require.False(t, zero.Valid())
	require.ErrorIs(t, zero.Append("y"), ErrStaleList)
	require.True(t, errors.Is(fresh.Concat(zero), ErrStaleList))
}

func Test_NewContext_invalid(t *testing.T) {
	require.Panics(t, func() { NewContext[int](0, 1) })
	require.Panics(t, func() { NewContext[int](1, 0) })
}
