// Copyright 2022, Pulumi Corporation.  All rights reserved.

// Package step runs computations in the background and hands their results
// to whoever waits for them.
package step

import (
	"context"
)

// Step is a value that is being computed, like a future. It either succeeds
// once, or is canceled.
type Step[T any] struct {
	data T
	// Closed once data is set.
	done chan struct{}
	// Canceled when the computation fails or the parent context ends.
	ctx context.Context
}

// TryGetResult returns the result if it is already available. It never blocks.
func (s *Step[T]) TryGetResult() (T, bool) {
	select {
	case <-s.done:
		return s.data, true
	default:
		return Zero[T](), false
	}
}

// GetResult blocks until the result is available. It returns Zero[T](), false
// when the step failed or was canceled. A nil Step is treated as failed.
func (s *Step[T]) GetResult() (T, bool) {
	if s == nil {
		return Zero[T](), false
	}
	select {
	case <-s.done:
		return s.data, true
	case <-s.ctx.Done():
		return Zero[T](), false
	}
}

// New starts f in its own goroutine. f reports failure with false, which
// cancels the step.
func New[T any, F func() (T, bool)](ctx context.Context, f F) *Step[T] {
	ctx, cancel := context.WithCancel(ctx)
	s := &Step[T]{
		ctx:  ctx,
		done: make(chan struct{}),
	}
	go func() {
		data, ok := f()
		if !ok {
			cancel()
			return
		}
		s.data = data
		close(s.done)
	}()
	return s
}

// Then feeds the result of s into f, once s succeeds.
func Then[T, U any, F func(T) (U, bool)](s *Step[T], f F) *Step[U] {
	return New(s.ctx, func() (U, bool) {
		t, ok := s.GetResult()
		if !ok {
			return Zero[U](), false
		}
		return f(t)
	})
}

// After runs f with the result of s, once s succeeds.
func After[T any, F func(T)](s *Step[T], f F) {
	Then(s, func(t T) (struct{}, bool) {
		f(t)
		return struct{}{}, true
	})
}

// Zero returns the zero value for a type.
func Zero[T any]() (zero T) {
	return
}
