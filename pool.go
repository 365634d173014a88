package memocache

import "context"

// DefaultWorkers is the default bound on concurrently executing
// blocking computations.
const DefaultWorkers = 16

// workerPool bounds the number of blocking computations running at
// once. A buffered channel acts as the semaphore; acquiring a slot
// honors context cancellation.
type workerPool struct {
	sem chan struct{}
}

func newWorkerPool(size int) *workerPool {
	if size <= 0 {
		size = DefaultWorkers
	}
	return &workerPool{sem: make(chan struct{}, size)}
}

type result[T any] struct {
	val T
	err error
}

// submit runs fn on the pool and suspends the caller until it completes
// or ctx is cancelled. On cancellation the worker keeps running to
// completion but its result is discarded — the caller unwinds with
// ctx.Err() and nothing downstream sees the value.
func submit[T any](ctx context.Context, p *workerPool, fn func() (T, error)) (T, error) {
	var zero T
	select {
	case p.sem <- struct{}{}:
	case <-ctx.Done():
		return zero, ctx.Err()
	}
	ch := make(chan result[T], 1)
	go func() {
		defer func() { <-p.sem }()
		val, err := fn()
		ch <- result[T]{val: val, err: err}
	}()
	select {
	case r := <-ch:
		return r.val, r.err
	case <-ctx.Done():
		return zero, ctx.Err()
	}
}
