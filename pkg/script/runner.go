package script

import (
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/pmkol/poollist/pkg/list"
)

// ErrExpectation is wrapped by every error caused by a step whose result
// did not match its expectations.
var ErrExpectation = errors.New("script: expectation failed")

var expectErrs = map[string]error{
	"exhausted": list.ErrPoolExhausted,
	"stale":     list.ErrStaleList,
	"self":      list.ErrSelfConcat,
	"foreign":   list.ErrForeignList,
}

// Result summarizes one script run.
type Result struct {
	Name  string
	Steps int
	Stats list.Stats
}

// Runner executes scripts against one list.Context. Lists are bound to
// names and the names outlive a single Run, so consecutive scripts on the
// same Runner see each other's lists. A consumed list keeps its name with a
// stale handle until the name is created again.
//
// A Runner is not safe for concurrent use.
type Runner struct {
	ctx    *list.Context[string]
	lists  map[string]list.List[string]
	exprs  *ExprCache
	logger *zap.Logger
}

// NewRunner creates a Runner. exprs may be shared between runners, a nil
// exprs gives the runner a private cache. A nil logger disables logging.
func NewRunner(ctx *list.Context[string], exprs *ExprCache, logger *zap.Logger) *Runner {
	if exprs == nil {
		exprs = NewExprCache(0)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Runner{
		ctx:    ctx,
		lists:  make(map[string]list.List[string]),
		exprs:  exprs,
		logger: logger,
	}
}

// Run executes the steps of s in order and stops at the first failure.
func (r *Runner) Run(s *Script) (*Result, error) {
	res := &Result{Name: s.Name}
	for i := range s.Steps {
		st := &s.Steps[i]
		if err := r.exec(st); err != nil {
			res.Stats = r.ctx.Stats()
			return res, fmt.Errorf("%s: step #%d (%s %s): %w", s.Name, i, st.Op, st.List, err)
		}
		res.Steps++
	}
	res.Stats = r.ctx.Stats()
	return res, nil
}

// Items returns the items of a named list from head to tail.
func (r *Runner) Items(name string) ([]string, bool) {
	l, ok := r.lists[name]
	if !ok || !l.Valid() {
		return nil, false
	}
	return l.All(), true
}

func (r *Runner) list(name string) (list.List[string], error) {
	l, ok := r.lists[name]
	if !ok {
		return l, fmt.Errorf("unknown list %q", name)
	}
	return l, nil
}

func (r *Runner) exec(st *Step) error {
	if st.Op == "create" {
		if l, ok := r.lists[st.List]; ok && l.Valid() {
			return fmt.Errorf("list %q already exists", st.List)
		}
		l, err := r.ctx.Create()
		if err := checkErr(st, err); err != nil {
			return err
		}
		if err == nil {
			r.lists[st.List] = l
		}
		return nil
	}

	l, err := r.list(st.List)
	if err != nil {
		return err
	}

	switch st.Op {
	case "count":
		err = checkInt(st.ExpectCount, l.Count(), "count")
	case "first":
		err = checkItem(st, l.First)
	case "last":
		err = checkItem(st, l.Last)
	case "next":
		err = checkItem(st, l.Next)
	case "prev":
		err = checkItem(st, l.Prev)
	case "curr":
		err = checkItem(st, l.Curr)
	case "remove":
		err = checkItem(st, l.Remove)
	case "trim":
		err = checkItem(st, l.Trim)
	case "add":
		err = checkErr(st, l.Add(st.Item))
	case "insert":
		err = checkErr(st, l.Insert(st.Item))
	case "append":
		err = checkErr(st, l.Append(st.Item))
	case "prepend":
		err = checkErr(st, l.Prepend(st.Item))
	case "search":
		err = r.search(st, l)
	case "concat":
		other, lerr := r.list(st.Other)
		if lerr != nil {
			return lerr
		}
		err = checkErr(st, l.Concat(other))
	case "free":
		freed := 0
		ferr := l.Free(func(string) { freed++ })
		if err = checkErr(st, ferr); err == nil && ferr == nil {
			err = checkInt(st.ExpectFreed, freed, "freed")
		}
	case "dump":
		r.logger.Info("list dump",
			zap.String("list", st.List),
			zap.Strings("items", l.All()),
			zap.Stringer("position", l.Position()),
		)
	default:
		return fmt.Errorf("unknown op %q", st.Op)
	}
	if err != nil {
		return err
	}

	if len(st.ExpectPos) > 0 && l.Position().String() != st.ExpectPos {
		return fmt.Errorf("%w: position is %s, want %s", ErrExpectation, l.Position(), st.ExpectPos)
	}

	r.logger.Debug("step done",
		zap.String("op", st.Op),
		zap.String("list", st.List),
		zap.Int("count", l.Count()),
		zap.Stringer("position", l.Position()),
	)
	return nil
}

func (r *Runner) search(st *Step, l list.List[string]) error {
	if len(st.Expr) == 0 {
		return errors.New("search needs an expr")
	}
	e, err := r.exprs.compile(st.Expr)
	if err != nil {
		return fmt.Errorf("invalid expr %q: %w", st.Expr, err)
	}

	var evalErr error
	match := matcher(e, &evalErr)
	v, ok := list.SearchArg(l, match, st.Arg)
	if evalErr != nil {
		return fmt.Errorf("failed to evaluate %q: %w", st.Expr, evalErr)
	}
	return checkResult(st, v, ok)
}

func checkItem(st *Step, f func() (string, bool)) error {
	v, ok := f()
	return checkResult(st, v, ok)
}

func checkResult(st *Step, v string, ok bool) error {
	switch {
	case st.ExpectNone && ok:
		return fmt.Errorf("%w: got %q, want none", ErrExpectation, v)
	case st.Expect != nil && !ok:
		return fmt.Errorf("%w: got none, want %q", ErrExpectation, *st.Expect)
	case st.Expect != nil && v != *st.Expect:
		return fmt.Errorf("%w: got %q, want %q", ErrExpectation, v, *st.Expect)
	}
	return nil
}

// checkErr matches err against the step's expect_err.
func checkErr(st *Step, err error) error {
	if len(st.ExpectErr) == 0 {
		return err
	}

	want, ok := expectErrs[st.ExpectErr]
	if !ok {
		return fmt.Errorf("unknown expect_err %q", st.ExpectErr)
	}
	if err == nil {
		return fmt.Errorf("%w: no error, want %s", ErrExpectation, st.ExpectErr)
	}
	if !errors.Is(err, want) {
		return fmt.Errorf("%w: got error %v, want %s", ErrExpectation, err, st.ExpectErr)
	}
	return nil
}

func checkInt(want *int, got int, what string) error {
	if want != nil && *want != got {
		return fmt.Errorf("%w: %s is %d, want %d", ErrExpectation, what, got, *want)
	}
	return nil
}
