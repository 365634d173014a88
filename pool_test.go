package memocache

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPoolSubmit(t *testing.T) {
	p := newWorkerPool(2)
	v, err := submit(context.Background(), p, func() (int, error) {
		return 42, nil
	})
	require.NoError(t, err)
	assert.Equal(t, 42, v)
}

func TestPoolSubmitError(t *testing.T) {
	p := newWorkerPool(2)
	boom := errors.New("boom")
	_, err := submit(context.Background(), p, func() (int, error) {
		return 0, boom
	})
	assert.ErrorIs(t, err, boom)
}

func TestPoolBoundsConcurrency(t *testing.T) {
	p := newWorkerPool(2)
	var running, peak atomic.Int32
	gate := make(chan struct{})
	entered := make(chan struct{}, 2)

	var wg sync.WaitGroup
	for i := 0; i < 6; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = submit(context.Background(), p, func() (int, error) {
				n := running.Add(1)
				for {
					old := peak.Load()
					if n <= old || peak.CompareAndSwap(old, n) {
						break
					}
				}
				select {
				case entered <- struct{}{}:
				default:
				}
				<-gate
				running.Add(-1)
				return 0, nil
			})
		}()
	}

	// Wait for the pool to fill, then release everyone.
	<-entered
	<-entered
	close(gate)
	wg.Wait()
	assert.LessOrEqual(t, peak.Load(), int32(2))
}

func TestPoolCancelWhileWaitingForSlot(t *testing.T) {
	p := newWorkerPool(1)
	gate := make(chan struct{})
	started := make(chan struct{})

	go func() {
		_, _ = submit(context.Background(), p, func() (int, error) {
			close(started)
			<-gate
			return 0, nil
		})
	}()
	<-started

	// The only slot is held; a cancelled caller must not block.
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := submit(ctx, p, func() (int, error) { return 0, nil })
	assert.ErrorIs(t, err, context.Canceled)
	close(gate)
}

func TestPoolDefaultSize(t *testing.T) {
	p := newWorkerPool(0)
	assert.Equal(t, DefaultWorkers, cap(p.sem))
	p = newWorkerPool(-5)
	assert.Equal(t, DefaultWorkers, cap(p.sem))
}
