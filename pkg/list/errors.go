package list

import (
	"errors"
	"fmt"
)

var (
	// ErrPoolExhausted is the base error for both pools running out of slots.
	ErrPoolExhausted = errors.New("list: pool exhausted")

	// ErrHeadPoolExhausted indicates that no list header is free.
	ErrHeadPoolExhausted = fmt.Errorf("%w: no free list header", ErrPoolExhausted)

	// ErrNodePoolExhausted indicates that no node is free.
	ErrNodePoolExhausted = fmt.Errorf("%w: no free node", ErrPoolExhausted)

	// ErrStaleList indicates a zero handle, or a handle whose list was freed or
	// consumed by Concat.
	ErrStaleList = errors.New("list: stale list handle")

	// ErrSelfConcat indicates an attempt to concat a list onto itself.
	ErrSelfConcat = errors.New("list: cannot concat a list with itself")

	// ErrForeignList indicates that two lists passed to Concat come from
	// different contexts.
	ErrForeignList = errors.New("list: lists belong to different contexts")
)
