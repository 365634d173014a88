package backend

import (
	"context"
	"time"
)

type compositeBackend struct {
	backends []Backend
}

var _ Backend = (*compositeBackend)(nil)

// NewComposite returns a Backend that chains multiple stores together,
// e.g. an in-memory L1 in front of a Redis L2. Get checks stores in
// order and returns the first hit. Set, Clear, and Close apply to all.
// At least one store must be provided; panics if empty.
func NewComposite(backends ...Backend) Backend {
	if len(backends) == 0 {
		panic("backend: NewComposite requires at least one backend")
	}
	return &compositeBackend{backends: backends}
}

func (c *compositeBackend) Get(ctx context.Context, key string) ([]byte, bool, error) {
	for _, b := range c.backends {
		data, found, err := b.Get(ctx, key)
		if err != nil {
			return nil, false, err
		}
		if found {
			return data, true, nil
		}
	}
	return nil, false, nil
}

func (c *compositeBackend) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	var firstErr error
	for _, b := range c.backends {
		if err := b.Set(ctx, key, value, ttl); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// Clear applies to every store; the count reported is the largest count
// any single store removed, since the same entry may live in several
// tiers at once.
func (c *compositeBackend) Clear(ctx context.Context, prefix, key string) (int, error) {
	var most int
	for _, b := range c.backends {
		removed, err := b.Clear(ctx, prefix, key)
		if err != nil {
			return most, err
		}
		if removed > most {
			most = removed
		}
	}
	return most, nil
}

func (c *compositeBackend) Close(ctx context.Context) error {
	var firstErr error
	for _, b := range c.backends {
		if err := b.Close(ctx); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
