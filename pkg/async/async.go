package async

import (
	"context"
	"sync"
)

// Future represents the result of an asynchronous computation.
// Any number of goroutines may wait on the same Future.
type Future[U any] struct {
	result U
	err    error
	once   sync.Once
	done   chan struct{}
}

// Async executes fn with param in its own goroutine and returns a Future for its result.
// If ctx is already cancelled, fn is not called and the Future completes with ctx.Err().
func Async[T any, U any](ctx context.Context, param T, fn func(context.Context, T) (U, error)) *Future[U] {
	f := &Future[U]{done: make(chan struct{})}

	go func() {
		if err := ctx.Err(); err != nil {
			var zero U
			f.complete(zero, err)
			return
		}

		res, err := fn(ctx, param)
		f.complete(res, err)
	}()

	return f
}

// Resolved returns a Future that is already complete.
func Resolved[U any](value U, err error) *Future[U] {
	f := &Future[U]{done: make(chan struct{})}
	f.complete(value, err)
	return f
}

func (f *Future[U]) complete(value U, err error) {
	f.once.Do(func() {
		f.result = value
		f.err = err
		close(f.done)
	})
}

// Await blocks until the computation completes or ctx is done.
// Cancelling ctx only stops this waiter; the computation keeps running for others.
func (f *Future[U]) Await(ctx context.Context) (U, error) {
	select {
	case <-f.done:
		return f.result, f.err
	case <-ctx.Done():
		var zero U
		return zero, ctx.Err()
	}
}

// Done returns a channel closed once the computation has completed.
func (f *Future[U]) Done() <-chan struct{} {
	return f.done
}

// IsComplete reports completion without blocking.
func (f *Future[U]) IsComplete() bool {
	select {
	case <-f.done:
		return true
	default:
		return false
	}
}
