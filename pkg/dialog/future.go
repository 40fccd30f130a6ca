package dialog

import (
	"context"
	"errors"
	"sync"
)

// ErrNotSettled is returned by Future.Result when the future has not settled yet.
var ErrNotSettled = errors.New("future not settled")

// Future is a value that becomes available exactly once. The first call to
// settle wins; later calls are ignored.
type Future[T any] struct {
	done  chan struct{}
	once  sync.Once
	value T
	err   error
}

func newFuture[T any]() *Future[T] {
	return &Future[T]{done: make(chan struct{})}
}

// NewPromise returns an unsettled future with the functions that settle it.
// Both functions are safe to call from any goroutine and any number of times.
func NewPromise[T any]() (f *Future[T], resolve func(T), reject func(error)) {
	f = newFuture[T]()
	resolve = func(v T) { f.settle(v, nil) }
	reject = func(err error) {
		var zero T
		f.settle(zero, err)
	}
	return f, resolve, reject
}

// Resolved returns a future already settled with v.
func Resolved[T any](v T) *Future[T] {
	f := newFuture[T]()
	f.settle(v, nil)
	return f
}

// Rejected returns a future already settled with err.
func Rejected[T any](err error) *Future[T] {
	f := newFuture[T]()
	var zero T
	f.settle(zero, err)
	return f
}

// Go runs fn on a new goroutine and returns a future for its outcome.
func Go[T any](fn func() (T, error)) *Future[T] {
	f := newFuture[T]()
	go func() {
		v, err := fn()
		f.settle(v, err)
	}()
	return f
}

// settle reports whether this call was the one that settled the future.
func (f *Future[T]) settle(v T, err error) bool {
	settled := false
	f.once.Do(func() {
		f.value = v
		f.err = err
		close(f.done)
		settled = true
	})
	return settled
}

// Done returns a channel that is closed once the future settles.
func (f *Future[T]) Done() <-chan struct{} {
	return f.done
}

// Settled reports whether the future has a value or an error.
func (f *Future[T]) Settled() bool {
	select {
	case <-f.done:
		return true
	default:
		return false
	}
}

// Wait blocks until the future settles or ctx is done.
func (f *Future[T]) Wait(ctx context.Context) (T, error) {
	select {
	case <-f.done:
		return f.value, f.err
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}

// Result returns the settled outcome without blocking.
func (f *Future[T]) Result() (T, error) {
	if !f.Settled() {
		var zero T
		return zero, ErrNotSettled
	}
	return f.value, f.err
}
