package responder

import (
	"context"
	"fmt"
	"sync"
)

// Future is a single-assignment result. It resolves exactly once and may
// be awaited from any number of goroutines.
type Future[T any] struct {
	done chan struct{}
	once sync.Once
	val  T
	err  error
}

func newFuture[T any]() *Future[T] {
	return &Future[T]{done: make(chan struct{})}
}

// Completed returns a Future already resolved with v.
func Completed[T any](v T) *Future[T] {
	f := newFuture[T]()
	f.complete(v, nil)
	return f
}

// Failed returns a Future already resolved with err.
func Failed[T any](err error) *Future[T] {
	f := newFuture[T]()
	var zero T
	f.complete(zero, err)
	return f
}

// Async runs fn on exec and returns a Future for its result. A rejected
// submission or a panic in fn resolves the Future with an error.
func Async[T any](ctx context.Context, exec Executor, fn func(context.Context) (T, error)) *Future[T] {
	f := newFuture[T]()
	var zero T

	err := exec.Submit(ctx, func(context.Context) {
		defer func() {
			if r := recover(); r != nil {
				f.complete(zero, fmt.Errorf("%w: %v", ErrTaskPanicked, r))
			}
		}()
		if err := ctx.Err(); err != nil {
			f.complete(zero, err)
			return
		}
		v, err := fn(ctx)
		f.complete(v, err)
	})
	if err != nil {
		f.complete(zero, fmt.Errorf("%w: %w", ErrRejected, err))
	}
	return f
}

func (f *Future[T]) complete(v T, err error) {
	f.once.Do(func() {
		f.val, f.err = v, err
		close(f.done)
	})
}

// Done is closed once the Future has resolved.
func (f *Future[T]) Done() <-chan struct{} { return f.done }

// IsDone reports whether the Future has resolved.
func (f *Future[T]) IsDone() bool {
	select {
	case <-f.done:
		return true
	default:
		return false
	}
}

// Await blocks until the Future resolves or ctx ends. A resolved Future is
// returned even if ctx is already done.
func (f *Future[T]) Await(ctx context.Context) (T, error) {
	select {
	case <-f.done:
		return f.val, f.err
	default:
	}
	select {
	case <-f.done:
		return f.val, f.err
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}
