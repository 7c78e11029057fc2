package script

import (
	"fmt"

	"github.com/Knetic/govaluate"

	"github.com/pmkol/poollist/pkg/concurrent_lru"
)

const defaultExprCacheSize = 64

// ExprCache holds compiled search expressions. It is safe for concurrent use
// and can be shared by runners working on different contexts.
type ExprCache struct {
	lru *concurrent_lru.ConcurrentLRU[string, *govaluate.EvaluableExpression]
}

func NewExprCache(size int) *ExprCache {
	if size <= 0 {
		size = defaultExprCacheSize
	}
	return &ExprCache{
		lru: concurrent_lru.NewConcurrentLRU[string, *govaluate.EvaluableExpression](size, nil),
	}
}

func (c *ExprCache) compile(expr string) (*govaluate.EvaluableExpression, error) {
	return c.lru.GetOrLoad(expr, func() (*govaluate.EvaluableExpression, error) {
		return govaluate.NewEvaluableExpression(expr)
	})
}

// Len returns the number of cached expressions.
func (c *ExprCache) Len() int {
	return c.lru.Len()
}

// matcher evaluates e against an item. Expressions see the item as "item" and
// the step argument as "arg", and must produce a bool. The first evaluation
// error stops matching and is kept in *errp.
func matcher(e *govaluate.EvaluableExpression, errp *error) func(item, arg string) bool {
	params := make(map[string]interface{}, 2)
	return func(item, arg string) bool {
		if *errp != nil {
			return false
		}
		params["item"] = item
		params["arg"] = arg
		res, err := e.Evaluate(params)
		if err != nil {
			*errp = err
			return false
		}
		b, ok := res.(bool)
		if !ok {
			*errp = fmt.Errorf("expression %q returned %T, want bool", e.String(), res)
			return false
		}
		return b
	}
}
