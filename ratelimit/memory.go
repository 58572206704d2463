package ratelimit

import (
	"context"
	"hash/fnv"
	"sync"
	"time"
)

const (
	memoryShardCount     = 64
	defaultSweepInterval = time.Minute
)

// MemoryStoreConfig tunes the in-process counter store.
type MemoryStoreConfig struct {
	// SweepInterval is how often the janitor scans for idle windows.
	// Defaults to one minute.
	SweepInterval time.Duration
	// Now is the clock; defaults to time.Now.
	Now func() time.Time
}

type memoryWindow struct {
	start   time.Time
	count   int64
	lastHit time.Time
	window  time.Duration
}

type memoryShard struct {
	mu      sync.Mutex
	windows map[string]*memoryWindow
}

// MemoryStore is the single-process [CounterStore]: sharded maps guarded by
// per-shard mutexes. Windows idle for a full window duration are evicted by
// a background janitor, bounding memory to the active key set.
type MemoryStore struct {
	shards    [memoryShardCount]memoryShard
	now       func() time.Time
	done      chan struct{}
	closeOnce sync.Once
	wg        sync.WaitGroup
}

// NewMemoryStore creates the store and starts its janitor goroutine. Callers
// must Close it to stop the janitor.
func NewMemoryStore(cfg MemoryStoreConfig) *MemoryStore {
	if cfg.SweepInterval <= 0 {
		cfg.SweepInterval = defaultSweepInterval
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}

	s := &MemoryStore{
		now:  cfg.Now,
		done: make(chan struct{}),
	}
	for i := range s.shards {
		s.shards[i].windows = make(map[string]*memoryWindow)
	}

	s.wg.Add(1)
	go s.janitor(cfg.SweepInterval)

	return s
}

// Incr implements [CounterStore]. The context is accepted for interface
// symmetry with remote backends; no I/O happens here.
func (s *MemoryStore) Incr(_ context.Context, key string, window time.Duration, now time.Time) (int64, time.Time, error) {
	shard := &s.shards[shardIndex(key)]

	shard.mu.Lock()
	defer shard.mu.Unlock()

	w := shard.windows[key]
	if w == nil || now.Sub(w.start) >= window {
		w = &memoryWindow{start: now, window: window}
		shard.windows[key] = w
	}
	w.count++
	w.lastHit = now

	return w.count, w.start, nil
}

// Len reports the number of live windows across all shards.
func (s *MemoryStore) Len() int {
	total := 0
	for i := range s.shards {
		shard := &s.shards[i]
		shard.mu.Lock()
		total += len(shard.windows)
		shard.mu.Unlock()
	}
	return total
}

// Sweep evicts windows that have been idle for at least their window
// duration and returns the number removed. The janitor calls this
// periodically; tests call it directly.
func (s *MemoryStore) Sweep() int {
	now := s.now()
	removed := 0

	for i := range s.shards {
		shard := &s.shards[i]
		shard.mu.Lock()
		for key, w := range shard.windows {
			if now.Sub(w.lastHit) >= w.window {
				delete(shard.windows, key)
				removed++
			}
		}
		shard.mu.Unlock()
	}

	return removed
}

// Close stops the janitor. Idempotent.
func (s *MemoryStore) Close() {
	s.closeOnce.Do(func() {
		close(s.done)
	})
	s.wg.Wait()
}

func (s *MemoryStore) janitor(every time.Duration) {
	defer s.wg.Done()

	ticker := time.NewTicker(every)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.Sweep()
		case <-s.done:
			return
		}
	}
}

func shardIndex(key string) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(key))
	return int(h.Sum32() % memoryShardCount)
}
