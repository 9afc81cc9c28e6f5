// Copyright (c) 2021 Silvano DAL ZILIO
//
// MIT License

package teq

import "context"

// Future is the result of a computation running in its own goroutine.
type Future[T any] struct {
	done chan struct{}
	val  T
	err  error
}

// Go starts f in a new goroutine and returns a Future for its result.
func Go[T any](ctx context.Context, f func(context.Context) (T, error)) *Future[T] {
	fut := &Future[T]{done: make(chan struct{})}
	go func() {
		defer close(fut.done)
		fut.val, fut.err = f(ctx)
	}()
	return fut
}

// Await waits for the computation to finish, or for ctx to be done.
func (f *Future[T]) Await(ctx context.Context) (T, error) {
	select {
	case <-f.done:
		return f.val, f.err
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}
