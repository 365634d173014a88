package backend

import (
	"context"
	"strings"
	"sync"
	"time"
)

type entry struct {
	data    []byte
	expires time.Time // zero means no expiry
}

func (e *entry) expired(now time.Time) bool {
	return !e.expires.IsZero() && e.expires.Before(now)
}

type memoryBackend struct {
	ctx       context.Context
	cancel    context.CancelFunc
	entries   map[string]*entry
	mutex     sync.RWMutex
	waitGroup sync.WaitGroup
	once      sync.Once
	cfg       config
}

var _ Backend = (*memoryBackend)(nil)

// NewMemory returns an in-process Backend backed by a map. Expired
// entries are treated as absent on read and removed by a background
// sweeper at the configured interval. The store grows without bound
// until entries expire or are cleared.
func NewMemory(parent context.Context, opts ...Option) Backend {
	cfg := applyOptions(opts)
	ctx, cancel := context.WithCancel(parent)
	b := &memoryBackend{
		ctx:     ctx,
		cancel:  cancel,
		entries: make(map[string]*entry),
		cfg:     cfg,
	}
	b.waitGroup.Add(1)
	go b.run()
	return b
}

func (b *memoryBackend) Get(_ context.Context, key string) ([]byte, bool, error) {
	b.mutex.RLock()
	e, ok := b.entries[key]
	if ok && !e.expired(time.Now()) {
		data := e.data
		b.mutex.RUnlock()
		return data, true, nil
	}
	b.mutex.RUnlock()
	if !ok {
		return nil, false, nil
	}
	// Lazily drop the expired entry.
	b.mutex.Lock()
	if e, ok := b.entries[key]; ok && e.expired(time.Now()) {
		delete(b.entries, key)
	}
	b.mutex.Unlock()
	return nil, false, nil
}

func (b *memoryBackend) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	e := &entry{data: value}
	if ttl > 0 {
		e.expires = time.Now().Add(ttl)
	}
	b.mutex.Lock()
	b.entries[key] = e
	b.mutex.Unlock()
	return nil
}

func (b *memoryBackend) Clear(_ context.Context, prefix, key string) (int, error) {
	b.mutex.Lock()
	defer b.mutex.Unlock()
	if key != "" {
		if _, ok := b.entries[key]; ok {
			delete(b.entries, key)
			return 1, nil
		}
		return 0, nil
	}
	if prefix != "" {
		var removed int
		for k := range b.entries {
			if strings.HasPrefix(k, prefix) {
				delete(b.entries, k)
				removed++
			}
		}
		return removed, nil
	}
	removed := len(b.entries)
	b.entries = make(map[string]*entry)
	return removed, nil
}

func (b *memoryBackend) Close(_ context.Context) error {
	b.once.Do(func() {
		b.cancel()
		b.waitGroup.Wait()
	})
	return nil
}

func (b *memoryBackend) run() {
	defer b.waitGroup.Done()
	ticker := time.NewTicker(b.cfg.sweepInterval)
	defer ticker.Stop()
	for {
		select {
		case <-b.ctx.Done():
			return
		case <-ticker.C:
			now := time.Now()
			b.mutex.Lock()
			for key, e := range b.entries {
				if e.expired(now) {
					delete(b.entries, key)
				}
			}
			b.mutex.Unlock()
		}
	}
}
